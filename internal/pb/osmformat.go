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

package pb

import (
	"github.com/osm-tools/pbf/internal/wire"
)

// Format defaults that apply when a PrimitiveBlock omits the fields.
const (
	DefaultGranularity     = 100
	DefaultDateGranularity = 1000
	DefaultInfoVersion     = -1
)

// HeaderBBox is the bounding box of a header block, in nanodegrees.
type HeaderBBox struct {
	Left   int64
	Right  int64
	Top    int64
	Bottom int64
}

// Unmarshal decodes a HeaderBBox message.
func (m *HeaderBBox) Unmarshal(buf []byte) error {
	s := wire.NewScanner(buf)

	for s.More() {
		num, wt, err := s.Field()
		if err != nil {
			return err
		}

		switch num {
		case 1:
			m.Left, err = s.Sint64()
		case 2:
			m.Right, err = s.Sint64()
		case 3:
			m.Top, err = s.Sint64()
		case 4:
			m.Bottom, err = s.Sint64()
		default:
			err = s.Skip(wt)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// HeaderBlock is the OSMHeader payload.
type HeaderBlock struct {
	Bbox                             *HeaderBBox
	RequiredFeatures                 []string
	OptionalFeatures                 []string
	Writingprogram                   string
	Source                           string
	OsmosisReplicationTimestamp      int64
	HasReplicationTimestamp          bool
	OsmosisReplicationSequenceNumber int64
	OsmosisReplicationBaseURL        string
}

// Unmarshal decodes a HeaderBlock message.
func (m *HeaderBlock) Unmarshal(buf []byte) error {
	s := wire.NewScanner(buf)

	for s.More() {
		num, wt, err := s.Field()
		if err != nil {
			return err
		}

		switch num {
		case 1:
			var b []byte
			if b, err = s.Bytes(); err == nil {
				m.Bbox = &HeaderBBox{}
				err = m.Bbox.Unmarshal(b)
			}
		case 4:
			var f string
			if f, err = s.String(); err == nil {
				m.RequiredFeatures = append(m.RequiredFeatures, f)
			}
		case 5:
			var f string
			if f, err = s.String(); err == nil {
				m.OptionalFeatures = append(m.OptionalFeatures, f)
			}
		case 16:
			m.Writingprogram, err = s.String()
		case 17:
			m.Source, err = s.String()
		case 32:
			if m.OsmosisReplicationTimestamp, err = s.Int64(); err == nil {
				m.HasReplicationTimestamp = true
			}
		case 33:
			m.OsmosisReplicationSequenceNumber, err = s.Int64()
		case 34:
			m.OsmosisReplicationBaseURL, err = s.String()
		default:
			err = s.Skip(wt)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// PrimitiveBlock is the OSMData payload: a string table, block-wide
// coordinate parameters, and the primitive groups.
type PrimitiveBlock struct {
	Stringtable     []string
	Primitivegroup  []*PrimitiveGroup
	Granularity     int32
	DateGranularity int32
	LatOffset       int64
	LonOffset       int64
}

// Unmarshal decodes a PrimitiveBlock message.
func (m *PrimitiveBlock) Unmarshal(buf []byte) error {
	m.Granularity = DefaultGranularity
	m.DateGranularity = DefaultDateGranularity

	s := wire.NewScanner(buf)

	for s.More() {
		num, wt, err := s.Field()
		if err != nil {
			return err
		}

		switch num {
		case 1:
			var b []byte
			if b, err = s.Bytes(); err == nil {
				err = m.unmarshalStringTable(b)
			}
		case 2:
			var b []byte
			if b, err = s.Bytes(); err == nil {
				pg := &PrimitiveGroup{}
				if err = pg.Unmarshal(b); err == nil {
					m.Primitivegroup = append(m.Primitivegroup, pg)
				}
			}
		case 17:
			m.Granularity, err = s.Int32()
		case 18:
			m.DateGranularity, err = s.Int32()
		case 19:
			m.LatOffset, err = s.Sint64()
		case 20:
			m.LonOffset, err = s.Sint64()
		default:
			err = s.Skip(wt)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (m *PrimitiveBlock) unmarshalStringTable(buf []byte) error {
	s := wire.NewScanner(buf)

	for s.More() {
		num, wt, err := s.Field()
		if err != nil {
			return err
		}

		if num == 1 {
			var str string
			if str, err = s.String(); err == nil {
				m.Stringtable = append(m.Stringtable, str)
			}
		} else {
			err = s.Skip(wt)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// PrimitiveGroup holds entities of exactly one kind.
type PrimitiveGroup struct {
	Nodes      []*Node
	Dense      *DenseNodes
	Ways       []*Way
	Relations  []*Relation
	Changesets []*ChangeSet
}

// Unmarshal decodes a PrimitiveGroup message.
func (m *PrimitiveGroup) Unmarshal(buf []byte) error {
	s := wire.NewScanner(buf)

	for s.More() {
		num, wt, err := s.Field()
		if err != nil {
			return err
		}

		var b []byte

		switch num {
		case 1:
			if b, err = s.Bytes(); err == nil {
				n := &Node{}
				if err = n.Unmarshal(b); err == nil {
					m.Nodes = append(m.Nodes, n)
				}
			}
		case 2:
			if b, err = s.Bytes(); err == nil {
				m.Dense = &DenseNodes{}
				err = m.Dense.Unmarshal(b)
			}
		case 3:
			if b, err = s.Bytes(); err == nil {
				w := &Way{}
				if err = w.Unmarshal(b); err == nil {
					m.Ways = append(m.Ways, w)
				}
			}
		case 4:
			if b, err = s.Bytes(); err == nil {
				r := &Relation{}
				if err = r.Unmarshal(b); err == nil {
					m.Relations = append(m.Relations, r)
				}
			}
		case 5:
			if b, err = s.Bytes(); err == nil {
				cs := &ChangeSet{}
				if err = cs.Unmarshal(b); err == nil {
					m.Changesets = append(m.Changesets, cs)
				}
			}
		default:
			err = s.Skip(wt)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// Info is the optional metadata of a non-dense entity.
type Info struct {
	Version    int32
	Timestamp  int64
	Changeset  int64
	UID        int32
	UserSid    uint32
	Visible    bool
	HasVisible bool
}

// Unmarshal decodes an Info message.
func (m *Info) Unmarshal(buf []byte) error {
	m.Version = DefaultInfoVersion

	s := wire.NewScanner(buf)

	for s.More() {
		num, wt, err := s.Field()
		if err != nil {
			return err
		}

		switch num {
		case 1:
			m.Version, err = s.Int32()
		case 2:
			m.Timestamp, err = s.Int64()
		case 3:
			m.Changeset, err = s.Int64()
		case 4:
			m.UID, err = s.Int32()
		case 5:
			m.UserSid, err = s.Uint32()
		case 6:
			if m.Visible, err = s.Bool(); err == nil {
				m.HasVisible = true
			}
		default:
			err = s.Skip(wt)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// Node is the plain, non-dense node encoding.
type Node struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Lat  int64
	Lon  int64
}

// Unmarshal decodes a Node message.
func (m *Node) Unmarshal(buf []byte) error {
	s := wire.NewScanner(buf)

	for s.More() {
		num, wt, err := s.Field()
		if err != nil {
			return err
		}

		switch num {
		case 1:
			m.ID, err = s.Sint64()
		case 2:
			m.Keys, err = appendUint32s(s, wt, m.Keys)
		case 3:
			m.Vals, err = appendUint32s(s, wt, m.Vals)
		case 4:
			var b []byte
			if b, err = s.Bytes(); err == nil {
				m.Info = &Info{}
				err = m.Info.Unmarshal(b)
			}
		case 8:
			m.Lat, err = s.Sint64()
		case 9:
			m.Lon, err = s.Sint64()
		default:
			err = s.Skip(wt)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// DenseNodes carries many nodes as parallel delta-encoded arrays.
type DenseNodes struct {
	ID        []int64
	Denseinfo *DenseInfo
	Lat       []int64
	Lon       []int64
	KeysVals  []int32
}

// Unmarshal decodes a DenseNodes message.
func (m *DenseNodes) Unmarshal(buf []byte) error {
	s := wire.NewScanner(buf)

	for s.More() {
		num, wt, err := s.Field()
		if err != nil {
			return err
		}

		switch num {
		case 1:
			m.ID, err = appendSint64s(s, wt, m.ID)
		case 5:
			var b []byte
			if b, err = s.Bytes(); err == nil {
				m.Denseinfo = &DenseInfo{}
				err = m.Denseinfo.Unmarshal(b)
			}
		case 8:
			m.Lat, err = appendSint64s(s, wt, m.Lat)
		case 9:
			m.Lon, err = appendSint64s(s, wt, m.Lon)
		case 10:
			m.KeysVals, err = appendInt32s(s, wt, m.KeysVals)
		default:
			err = s.Skip(wt)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// DenseInfo carries the metadata arrays parallel to DenseNodes.  All but
// Version are delta-encoded.
type DenseInfo struct {
	Version   []int32
	Timestamp []int64
	Changeset []int64
	UID       []int32
	UserSid   []int32
	Visible   []bool
}

// Unmarshal decodes a DenseInfo message.
func (m *DenseInfo) Unmarshal(buf []byte) error {
	s := wire.NewScanner(buf)

	for s.More() {
		num, wt, err := s.Field()
		if err != nil {
			return err
		}

		switch num {
		case 1:
			m.Version, err = appendInt32s(s, wt, m.Version)
		case 2:
			m.Timestamp, err = appendSint64s(s, wt, m.Timestamp)
		case 3:
			m.Changeset, err = appendSint64s(s, wt, m.Changeset)
		case 4:
			m.UID, err = appendSint32s(s, wt, m.UID)
		case 5:
			m.UserSid, err = appendSint32s(s, wt, m.UserSid)
		case 6:
			m.Visible, err = appendBools(s, wt, m.Visible)
		default:
			err = s.Skip(wt)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// Way is an ordered list of node references plus tags.
type Way struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Refs []int64
}

// Unmarshal decodes a Way message.
func (m *Way) Unmarshal(buf []byte) error {
	s := wire.NewScanner(buf)

	for s.More() {
		num, wt, err := s.Field()
		if err != nil {
			return err
		}

		switch num {
		case 1:
			m.ID, err = s.Int64()
		case 2:
			m.Keys, err = appendUint32s(s, wt, m.Keys)
		case 3:
			m.Vals, err = appendUint32s(s, wt, m.Vals)
		case 4:
			var b []byte
			if b, err = s.Bytes(); err == nil {
				m.Info = &Info{}
				err = m.Info.Unmarshal(b)
			}
		case 8:
			m.Refs, err = appendSint64s(s, wt, m.Refs)
		default:
			err = s.Skip(wt)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// MemberType is the 3-valued member kind enum of a Relation.
type MemberType int32

// Relation member kinds.
const (
	MemberNode MemberType = iota
	MemberWay
	MemberRelation
)

// Relation documents a relationship between entities.
type Relation struct {
	ID       int64
	Keys     []uint32
	Vals     []uint32
	Info     *Info
	RolesSid []int32
	Memids   []int64
	Types    []int32
}

// Unmarshal decodes a Relation message.
func (m *Relation) Unmarshal(buf []byte) error {
	s := wire.NewScanner(buf)

	for s.More() {
		num, wt, err := s.Field()
		if err != nil {
			return err
		}

		switch num {
		case 1:
			m.ID, err = s.Int64()
		case 2:
			m.Keys, err = appendUint32s(s, wt, m.Keys)
		case 3:
			m.Vals, err = appendUint32s(s, wt, m.Vals)
		case 4:
			var b []byte
			if b, err = s.Bytes(); err == nil {
				m.Info = &Info{}
				err = m.Info.Unmarshal(b)
			}
		case 8:
			m.RolesSid, err = appendInt32s(s, wt, m.RolesSid)
		case 9:
			m.Memids, err = appendSint64s(s, wt, m.Memids)
		case 10:
			m.Types, err = appendInt32s(s, wt, m.Types)
		default:
			err = s.Skip(wt)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// ChangeSet groups are recognized so a stream carrying them still decodes,
// but they contribute no entities.
type ChangeSet struct {
	ID int64
}

// Unmarshal decodes a ChangeSet message.
func (m *ChangeSet) Unmarshal(buf []byte) error {
	s := wire.NewScanner(buf)

	for s.More() {
		num, wt, err := s.Field()
		if err != nil {
			return err
		}

		if num == 1 {
			m.ID, err = s.Int64()
		} else {
			err = s.Skip(wt)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// Repeated scalar fields may arrive packed (one length-delimited run) or as
// individual occurrences; both forms append to the same slice.

func appendSint64s(s *wire.Scanner, wt wire.Type, out []int64) ([]int64, error) {
	if wt == wire.TypeBytes {
		b, err := s.Bytes()
		if err != nil {
			return nil, err
		}

		return wire.AppendPackedSint64(out, b)
	}

	v, err := s.Sint64()
	if err != nil {
		return nil, err
	}

	return append(out, v), nil
}

func appendSint32s(s *wire.Scanner, wt wire.Type, out []int32) ([]int32, error) {
	if wt == wire.TypeBytes {
		b, err := s.Bytes()
		if err != nil {
			return nil, err
		}

		return wire.AppendPackedSint32(out, b)
	}

	v, err := s.Sint32()
	if err != nil {
		return nil, err
	}

	return append(out, v), nil
}

func appendInt32s(s *wire.Scanner, wt wire.Type, out []int32) ([]int32, error) {
	if wt == wire.TypeBytes {
		b, err := s.Bytes()
		if err != nil {
			return nil, err
		}

		return wire.AppendPackedInt32(out, b)
	}

	v, err := s.Int32()
	if err != nil {
		return nil, err
	}

	return append(out, v), nil
}

func appendUint32s(s *wire.Scanner, wt wire.Type, out []uint32) ([]uint32, error) {
	if wt == wire.TypeBytes {
		b, err := s.Bytes()
		if err != nil {
			return nil, err
		}

		return wire.AppendPackedUint32(out, b)
	}

	v, err := s.Uint32()
	if err != nil {
		return nil, err
	}

	return append(out, v), nil
}

func appendBools(s *wire.Scanner, wt wire.Type, out []bool) ([]bool, error) {
	if wt == wire.TypeBytes {
		b, err := s.Bytes()
		if err != nil {
			return nil, err
		}

		return wire.AppendPackedBool(out, b)
	}

	v, err := s.Bool()
	if err != nil {
		return nil, err
	}

	return append(out, v), nil
}
