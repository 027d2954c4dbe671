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

package model_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osm-tools/pbf/model"
)

func TestEntityTypeString(t *testing.T) {
	assert.Equal(t, "NODE", model.NODE.String())
	assert.Equal(t, "WAY", model.WAY.String())
	assert.Equal(t, "RELATION", model.RELATION.String())
}

func TestCompare(t *testing.T) {
	node := model.Node{ID: 100}
	way := model.Way{ID: 1}
	rel := model.Relation{ID: 1}

	// kind precedence beats id
	assert.Negative(t, model.Compare(node, way))
	assert.Negative(t, model.Compare(way, rel))
	assert.Negative(t, model.Compare(node, rel))
	assert.Positive(t, model.Compare(rel, node))

	assert.Negative(t, model.Compare(model.Node{ID: 1}, model.Node{ID: 2}))
	assert.Zero(t, model.Compare(model.Node{ID: 1}, model.Node{ID: 1}))
}

func TestCompareSortsTypeThenID(t *testing.T) {
	entities := []model.Entity{
		model.Relation{ID: 1},
		model.Node{ID: 9},
		model.Way{ID: 4},
		model.Node{ID: 2},
	}

	sort.Slice(entities, func(i, j int) bool {
		return model.Compare(entities[i], entities[j]) < 0
	})

	assert.Equal(t, []model.Entity{
		model.Node{ID: 2},
		model.Node{ID: 9},
		model.Way{ID: 4},
		model.Relation{ID: 1},
	}, entities)
}

func TestEntityAccessors(t *testing.T) {
	info := &model.Info{Version: 3, Visible: true}
	tags := model.Tags{{Key: "k", Value: "v"}}

	node := model.Node{ID: 1, Tags: tags, Info: info}
	assert.Equal(t, model.NODE, node.Type())
	assert.Equal(t, model.ID(1), node.GetID())
	assert.Equal(t, tags, node.GetTags())
	assert.Equal(t, info, node.GetInfo())

	way := model.Way{ID: 2, NodeIDs: []model.ID{1, 5}}
	assert.Equal(t, model.WAY, way.Type())
	assert.Equal(t, model.ID(2), way.GetID())

	rel := model.Relation{ID: 3, Members: model.Members{{ID: 2, Type: model.WAY}}}
	assert.Equal(t, model.RELATION, rel.Type())
	assert.Equal(t, model.ID(3), rel.GetID())
}
