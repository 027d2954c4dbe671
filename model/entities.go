// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package model contains the public object model for OpenStreetMap PBF
// decoding: nodes, ways, relations, their tags and metadata, and the file
// header.  Entities own all the data they expose and remain valid after the
// block they were decoded from is gone.
package model

import (
	"cmp"
	"time"
)

// ID is the primary key of an entity.
type ID int64

// UID is the primary key for a user.
type UID int32

// Info represents information common to Node, Way, and Relation entities.
type Info struct {
	Version   int32
	UID       UID
	Timestamp time.Time
	Changeset int64
	User      string
	Visible   bool
}

// EntityType is an enumeration of PBF entity types.  The declaration order
// fixes the sort precedence: nodes before ways before relations.
type EntityType int32

const (
	// NODE denotes that the entity is a node.
	NODE EntityType = iota

	// WAY denotes that the entity is a way.
	WAY

	// RELATION denotes that the entity is a relation.
	RELATION
)

func (t EntityType) String() string {
	switch t {
	case NODE:
		return "NODE"
	case WAY:
		return "WAY"
	case RELATION:
		return "RELATION"
	default:
		return "UNKNOWN"
	}
}

// Entity is the closed variant over Node, Way, and Relation.
type Entity interface {
	isEntity() // prevents extensions

	// Type returns the kind discriminant.
	Type() EntityType

	// GetID returns the entity's id.
	GetID() ID

	// GetTags returns the entity's tags in encounter order.
	GetTags() Tags

	// GetInfo returns the optional entity metadata.
	GetInfo() *Info
}

// Compare orders entities by kind first, node < way < relation, then by id.
// It is suitable for sorting mixed-kind sequences deterministically.
func Compare(a, b Entity) int {
	if c := cmp.Compare(a.Type(), b.Type()); c != 0 {
		return c
	}

	return cmp.Compare(a.GetID(), b.GetID())
}

// Node represents a specific point on the earth's surface defined by its
// latitude and longitude. Each node comprises at least an id number and a
// pair of coordinates.
type Node struct {
	ID   ID
	Tags Tags
	Info *Info
	Lat  Degrees
	Lon  Degrees
}

var _ Entity = Node{}

func (n Node) isEntity() {}

// Type returns NODE.
func (n Node) Type() EntityType { return NODE }

// GetID returns the node's id.
func (n Node) GetID() ID { return n.ID }

// GetTags returns the node's tags.
func (n Node) GetTags() Tags { return n.Tags }

// GetInfo returns the node's metadata.
func (n Node) GetInfo() *Info { return n.Info }

// Way is an ordered list of between 2 and 2,000 nodes that define a polyline.
type Way struct {
	ID      ID
	Tags    Tags
	Info    *Info
	NodeIDs []ID
}

var _ Entity = Way{}

func (w Way) isEntity() {}

// Type returns WAY.
func (w Way) Type() EntityType { return WAY }

// GetID returns the way's id.
func (w Way) GetID() ID { return w.ID }

// GetTags returns the way's tags.
func (w Way) GetTags() Tags { return w.Tags }

// GetInfo returns the way's metadata.
func (w Way) GetInfo() *Info { return w.Info }

// Member is one ordered (id, kind, role) reference held by a relation.
type Member struct {
	ID   ID
	Type EntityType
	Role string
}

// Relation is a multipurpose data structure that documents a relationship
// between two or more data entities (nodes, ways, and/or other relations).
type Relation struct {
	ID      ID
	Tags    Tags
	Info    *Info
	Members Members
}

var _ Entity = Relation{}

func (r Relation) isEntity() {}

// Type returns RELATION.
func (r Relation) Type() EntityType { return RELATION }

// GetID returns the relation's id.
func (r Relation) GetID() ID { return r.ID }

// GetTags returns the relation's tags.
func (r Relation) GetTags() Tags { return r.Tags }

// GetInfo returns the relation's metadata.
func (r Relation) GetInfo() *Info { return r.Info }
