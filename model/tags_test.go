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

func TestTagsPreserveOrder(t *testing.T) {
	tags := model.Tags{
		{Key: "name", Value: "Elm Street"},
		{Key: "highway", Value: "residential"},
	}

	assert.Equal(t, "name", tags[0].Key)
	assert.Equal(t, "highway", tags[1].Key)
}

func TestTagsSort(t *testing.T) {
	tags := model.Tags{
		{Key: "name", Value: "Elm Street"},
		{Key: "highway", Value: "residential"},
		{Key: "highway", Value: "primary"},
	}

	sort.Sort(tags)

	assert.Equal(t, model.Tags{
		{Key: "highway", Value: "primary"},
		{Key: "highway", Value: "residential"},
		{Key: "name", Value: "Elm Street"},
	}, tags)
}

func TestTagsGet(t *testing.T) {
	tags := model.Tags{{Key: "amenity", Value: "pub"}}

	v, ok := tags.Get("amenity")
	assert.True(t, ok)
	assert.Equal(t, "pub", v)

	_, ok = tags.Get("name")
	assert.False(t, ok)

	assert.True(t, tags.Has("amenity"))
	assert.False(t, tags.Has("name"))
}

func TestTagsEmpty(t *testing.T) {
	assert.True(t, model.Tags(nil).Empty())
	assert.False(t, model.Tags{{Key: "k", Value: "v"}}.Empty())
}

func TestTagsMap(t *testing.T) {
	tags := model.Tags{
		{Key: "highway", Value: "residential"},
		{Key: "name", Value: "Elm Street"},
	}

	assert.Equal(t, map[string]string{
		"highway": "residential",
		"name":    "Elm Street",
	}, tags.Map())
}

func TestTagsString(t *testing.T) {
	tags := model.Tags{
		{Key: "highway", Value: "residential"},
		{Key: "name", Value: "Elm Street"},
	}

	assert.Equal(t, "{highway=residential, name=Elm Street}", tags.String())
}

func TestMembersSort(t *testing.T) {
	members := model.Members{
		{ID: 5, Type: model.RELATION, Role: "child"},
		{ID: 5, Type: model.NODE, Role: "stop"},
		{ID: 3, Type: model.WAY, Role: "outer"},
		{ID: 3, Type: model.WAY, Role: "inner"},
	}

	sort.Sort(members)

	assert.Equal(t, model.Members{
		{ID: 5, Type: model.NODE, Role: "stop"},
		{ID: 3, Type: model.WAY, Role: "inner"},
		{ID: 3, Type: model.WAY, Role: "outer"},
		{ID: 5, Type: model.RELATION, Role: "child"},
	}, members)
}
