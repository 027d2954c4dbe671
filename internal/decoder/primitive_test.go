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

package decoder_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osm-tools/pbf/internal/decoder"
	"github.com/osm-tools/pbf/internal/testenc"
	"github.com/osm-tools/pbf/model"
)

func decodeBlock(t *testing.T, spec testenc.BlockSpec) []model.Entity {
	t.Helper()

	entities, err := decoder.ParsePrimitiveBlock(testenc.EncodeBlock(spec))
	require.NoError(t, err)

	return entities
}

func TestDenseNodeDeltas(t *testing.T) {
	entities := decodeBlock(t, testenc.BlockSpec{
		Strings: []string{""},
		Groups: []testenc.GroupSpec{{
			Dense: &testenc.DenseSpec{
				IDs:  []int64{100, 2, -1},
				Lats: testenc.Deltas([]int64{205, 210, 215}),
				Lons: testenc.Deltas([]int64{-1000, -990, -980}),
			},
		}},
	})

	require.Len(t, entities, 3)

	ids := make([]model.ID, 0, 3)
	for _, e := range entities {
		ids = append(ids, e.GetID())
	}

	assert.Equal(t, []model.ID{100, 102, 101}, ids)

	node, ok := entities[0].(model.Node)
	require.True(t, ok)

	// granularity defaults to 100, so 205 units is 20,500 nanodegrees
	assert.True(t, node.Lat.EqualWithin(model.Degrees(0.0000205), model.E9))
	assert.True(t, node.Lon.EqualWithin(model.Degrees(-0.0001), model.E9))
}

func TestDenseNodeOffsetsAndGranularity(t *testing.T) {
	entities := decodeBlock(t, testenc.BlockSpec{
		Strings: []string{""},
		Groups: []testenc.GroupSpec{{
			Dense: &testenc.DenseSpec{
				IDs:  []int64{1},
				Lats: []int64{7},
				Lons: []int64{-3},
			},
		}},
		Granularity: 1000,
		LatOffset:   500,
		LonOffset:   -200,
	})

	require.Len(t, entities, 1)

	node := entities[0].(model.Node)
	assert.True(t, node.Lat.EqualWithin(model.Degrees(7.5e-6), model.E9))
	assert.True(t, node.Lon.EqualWithin(model.Degrees(-3.2e-6), model.E9))
}

func TestDenseNodeTags(t *testing.T) {
	entities := decodeBlock(t, testenc.BlockSpec{
		Strings: []string{"", "highway", "residential", "name", "Elm Street"},
		Groups: []testenc.GroupSpec{{
			Dense: &testenc.DenseSpec{
				IDs:  []int64{1, 1, 1},
				Lats: []int64{0, 0, 0},
				Lons: []int64{0, 0, 0},
				// first node: two tags, second: none, third: one tag
				KeysVals: []int32{1, 2, 3, 4, 0, 0, 3, 4, 0},
			},
		}},
	})

	require.Len(t, entities, 3)

	first := entities[0].(model.Node)
	require.Len(t, first.Tags, 2)
	assert.Equal(t, model.Tag{Key: "highway", Value: "residential"}, first.Tags[0])
	assert.Equal(t, model.Tag{Key: "name", Value: "Elm Street"}, first.Tags[1])

	assert.True(t, entities[1].GetTags().Empty())

	v, ok := entities[2].GetTags().Get("name")
	assert.True(t, ok)
	assert.Equal(t, "Elm Street", v)
}

func TestDenseNodeTagsAbsent(t *testing.T) {
	// keys_vals may be omitted entirely when no node in the group is tagged
	entities := decodeBlock(t, testenc.BlockSpec{
		Strings: []string{""},
		Groups: []testenc.GroupSpec{{
			Dense: &testenc.DenseSpec{
				IDs:  []int64{1, 1},
				Lats: []int64{0, 0},
				Lons: []int64{0, 0},
			},
		}},
	})

	require.Len(t, entities, 2)
	assert.True(t, entities[0].GetTags().Empty())
	assert.True(t, entities[1].GetTags().Empty())
}

func TestDenseNodeTagsTruncatedRun(t *testing.T) {
	_, err := decoder.ParsePrimitiveBlock(testenc.EncodeBlock(testenc.BlockSpec{
		Strings: []string{"", "k", "v"},
		Groups: []testenc.GroupSpec{{
			Dense: &testenc.DenseSpec{
				IDs:      []int64{1},
				Lats:     []int64{0},
				Lons:     []int64{0},
				KeysVals: []int32{1}, // key with no value, no sentinel
			},
		}},
	}))
	assert.Error(t, err)
}

func TestDenseNodeInfo(t *testing.T) {
	visibles := []bool{true, false}

	entities := decodeBlock(t, testenc.BlockSpec{
		Strings: []string{"", "alice", "bob"},
		Groups: []testenc.GroupSpec{{
			Dense: &testenc.DenseSpec{
				IDs:  []int64{1, 1},
				Lats: []int64{0, 0},
				Lons: []int64{0, 0},
				Info: &testenc.DenseInfoSpec{
					Versions:   []int32{3, 7},
					Timestamps: testenc.Deltas([]int64{1_500_000, 1_500_060}),
					Changesets: testenc.Deltas([]int64{42, 43}),
					UIDs:       testenc.Deltas([]int32{10, 11}),
					UserSids:   testenc.Deltas([]int32{1, 2}),
					Visibles:   visibles,
				},
			},
		}},
	})

	require.Len(t, entities, 2)

	info := entities[0].GetInfo()
	require.NotNil(t, info)
	assert.Equal(t, int32(3), info.Version)
	assert.Equal(t, model.UID(10), info.UID)
	assert.Equal(t, int64(42), info.Changeset)
	assert.Equal(t, "alice", info.User)
	assert.True(t, info.Visible)

	// date_granularity defaults to 1000 ms per unit
	assert.Equal(t, time.UnixMilli(1_500_000_000).UTC(), info.Timestamp)

	second := entities[1].GetInfo()
	require.NotNil(t, second)
	assert.Equal(t, int32(7), second.Version)
	assert.Equal(t, "bob", second.User)
	assert.False(t, second.Visible)
}

func TestDenseNodeInfoVisibleDefaultsTrue(t *testing.T) {
	entities := decodeBlock(t, testenc.BlockSpec{
		Strings: []string{"", "carol"},
		Groups: []testenc.GroupSpec{{
			Dense: &testenc.DenseSpec{
				IDs:  []int64{1},
				Lats: []int64{0},
				Lons: []int64{0},
				Info: &testenc.DenseInfoSpec{
					Versions:   []int32{1},
					Timestamps: []int64{0},
					Changesets: []int64{0},
					UIDs:       []int32{7},
					UserSids:   []int32{1},
				},
			},
		}},
	})

	require.Len(t, entities, 1)
	assert.True(t, entities[0].GetInfo().Visible)
}

func TestPlainNodes(t *testing.T) {
	visible := true

	entities := decodeBlock(t, testenc.BlockSpec{
		Strings: []string{"", "amenity", "pub", "dave"},
		Groups: []testenc.GroupSpec{{
			Nodes: []testenc.NodeSpec{{
				ID:   17,
				Keys: []uint32{1},
				Vals: []uint32{2},
				Info: &testenc.InfoSpec{
					Version:   2,
					Timestamp: 1_700_000_000,
					Changeset: 99,
					UID:       5,
					UserSid:   3,
					Visible:   &visible,
				},
				Lat: 450_000_000,
				Lon: -750_000_000,
			}},
		}},
	})

	require.Len(t, entities, 1)

	node, ok := entities[0].(model.Node)
	require.True(t, ok)
	assert.Equal(t, model.ID(17), node.ID)
	assert.True(t, node.Lat.EqualWithin(model.Degrees(45.0), model.E7))
	assert.True(t, node.Lon.EqualWithin(model.Degrees(-75.0), model.E7))

	v, ok := node.Tags.Get("amenity")
	assert.True(t, ok)
	assert.Equal(t, "pub", v)

	require.NotNil(t, node.Info)
	assert.Equal(t, int32(2), node.Info.Version)
	assert.Equal(t, "dave", node.Info.User)
	assert.Equal(t, time.UnixMilli(1_700_000_000_000).UTC(), node.Info.Timestamp)
}

func TestWays(t *testing.T) {
	entities := decodeBlock(t, testenc.BlockSpec{
		Strings: []string{"", "highway", "primary"},
		Groups: []testenc.GroupSpec{{
			Ways: []testenc.WaySpec{{
				ID:   301,
				Keys: []uint32{1},
				Vals: []uint32{2},
				Refs: testenc.Deltas([]int64{1000, 1001, 999}),
			}},
		}},
	})

	require.Len(t, entities, 1)

	way, ok := entities[0].(model.Way)
	require.True(t, ok)
	assert.Equal(t, model.ID(301), way.ID)
	assert.Equal(t, []model.ID{1000, 1001, 999}, way.NodeIDs)
	assert.True(t, way.Tags.Has("highway"))
}

func TestRelations(t *testing.T) {
	entities := decodeBlock(t, testenc.BlockSpec{
		Strings: []string{"", "type", "route", "stop", "", "platform"},
		Groups: []testenc.GroupSpec{{
			Relations: []testenc.RelationSpec{{
				ID:       9001,
				Keys:     []uint32{1},
				Vals:     []uint32{2},
				RolesSid: []int32{3, 4, 5},
				Memids:   testenc.Deltas([]int64{11, 22, 21}),
				Types:    []int32{0, 1, 2},
			}},
		}},
	})

	require.Len(t, entities, 1)

	rel, ok := entities[0].(model.Relation)
	require.True(t, ok)
	assert.Equal(t, model.ID(9001), rel.ID)
	assert.Equal(t, model.Members{
		{ID: 11, Type: model.NODE, Role: "stop"},
		{ID: 22, Type: model.WAY, Role: ""},
		{ID: 21, Type: model.RELATION, Role: "platform"},
	}, rel.Members)
}

func TestRelationInvalidMemberType(t *testing.T) {
	_, err := decoder.ParsePrimitiveBlock(testenc.EncodeBlock(testenc.BlockSpec{
		Strings: []string{"", "r"},
		Groups: []testenc.GroupSpec{{
			Relations: []testenc.RelationSpec{{
				ID:       1,
				RolesSid: []int32{1},
				Memids:   []int64{5},
				Types:    []int32{3},
			}},
		}},
	}))
	assert.ErrorIs(t, err, decoder.ErrInvalidMemberType)
}

func TestBadStringTableIndex(t *testing.T) {
	_, err := decoder.ParsePrimitiveBlock(testenc.EncodeBlock(testenc.BlockSpec{
		Strings: []string{"", "only"},
		Groups: []testenc.GroupSpec{{
			Dense: &testenc.DenseSpec{
				IDs:      []int64{1},
				Lats:     []int64{0},
				Lons:     []int64{0},
				KeysVals: []int32{5, 5, 0},
			},
		}},
	}))
	assert.ErrorIs(t, err, decoder.ErrBadStringTableIndex)
}

func TestGroupOrderPreserved(t *testing.T) {
	entities := decodeBlock(t, testenc.BlockSpec{
		Strings: []string{""},
		Groups: []testenc.GroupSpec{
			{Dense: &testenc.DenseSpec{
				IDs:  []int64{1, 1},
				Lats: []int64{0, 0},
				Lons: []int64{0, 0},
			}},
			{Ways: []testenc.WaySpec{{ID: 10, Refs: []int64{1, 1}}}},
			{Relations: []testenc.RelationSpec{{ID: 20}}},
		},
	})

	require.Len(t, entities, 4)
	assert.Equal(t, model.NODE, entities[0].Type())
	assert.Equal(t, model.NODE, entities[1].Type())
	assert.Equal(t, model.WAY, entities[2].Type())
	assert.Equal(t, model.RELATION, entities[3].Type())
}

func TestChangesetsContributeNothing(t *testing.T) {
	entities := decodeBlock(t, testenc.BlockSpec{
		Strings: []string{""},
		Groups: []testenc.GroupSpec{
			{Changesets: []int64{1, 2, 3}},
			{Ways: []testenc.WaySpec{{ID: 4, Refs: []int64{1, 1}}}},
		},
	})

	require.Len(t, entities, 1)
	assert.Equal(t, model.WAY, entities[0].Type())
}

func TestBlockEntitiesRestartable(t *testing.T) {
	block, err := decoder.ParseBlock(testenc.EncodeBlock(testenc.BlockSpec{
		Strings: []string{""},
		Groups: []testenc.GroupSpec{{
			Dense: &testenc.DenseSpec{
				IDs:  []int64{5, 1},
				Lats: []int64{0, 0},
				Lons: []int64{0, 0},
			},
		}},
	}))
	require.NoError(t, err)

	first, err := block.Entities()
	require.NoError(t, err)

	second, err := block.Entities()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
