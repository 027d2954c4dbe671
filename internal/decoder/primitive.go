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

package decoder

import (
	"fmt"
	"time"

	"github.com/osm-tools/pbf/internal/pb"
	"github.com/osm-tools/pbf/internal/wire"
	"github.com/osm-tools/pbf/model"
)

// Block is one decoded primitive block.  It is read-only after ParseBlock;
// Entities may be called repeatedly and always replays the same sequence.
type Block struct {
	blk *pb.PrimitiveBlock
}

// ParseBlock unmarshals an OSMData payload.
func ParseBlock(buf []byte) (*Block, error) {
	blk := &pb.PrimitiveBlock{}
	if err := blk.Unmarshal(buf); err != nil {
		return nil, fmt.Errorf("unable to unmarshal primitive block: %w", err)
	}

	return &Block{blk: blk}, nil
}

// Entities decodes the block's groups, in encounter order, into owned
// entities.  Each entity copies what it needs from the block's string
// table, so it outlives the block.
func (b *Block) Entities() ([]model.Entity, error) {
	c := newBlockContext(b.blk)

	entities := make([]model.Entity, 0)

	for _, pg := range b.blk.Primitivegroup {
		var err error

		if entities, err = c.decodeNodes(entities, pg.Nodes); err != nil {
			return nil, err
		}

		if pg.Dense != nil {
			if entities, err = c.decodeDenseNodes(entities, pg.Dense); err != nil {
				return nil, err
			}
		}

		if entities, err = c.decodeWays(entities, pg.Ways); err != nil {
			return nil, err
		}

		if entities, err = c.decodeRelations(entities, pg.Relations); err != nil {
			return nil, err
		}

		// Changeset groups contribute no entities.
	}

	return entities, nil
}

// ParsePrimitiveBlock unmarshals an OSMData payload and decodes all of its
// entities in one step.
func ParsePrimitiveBlock(buf []byte) ([]model.Entity, error) {
	b, err := ParseBlock(buf)
	if err != nil {
		return nil, err
	}

	return b.Entities()
}

type blockContext struct {
	strings         []string
	granularity     int32
	latOffset       int64
	lonOffset       int64
	dateGranularity int32
}

func newBlockContext(blk *pb.PrimitiveBlock) *blockContext {
	return &blockContext{
		strings:         blk.Stringtable,
		granularity:     blk.Granularity,
		latOffset:       blk.LatOffset,
		lonOffset:       blk.LonOffset,
		dateGranularity: blk.DateGranularity,
	}
}

func (c *blockContext) lookup(idx uint32) (string, error) {
	if int(idx) >= len(c.strings) {
		return "", fmt.Errorf("index %d with table of %d: %w", idx, len(c.strings), ErrBadStringTableIndex)
	}

	return c.strings[idx], nil
}

func (c *blockContext) decodeNodes(entities []model.Entity, nodes []*pb.Node) ([]model.Entity, error) {
	for _, node := range nodes {
		tags, err := c.decodeTags(node.Keys, node.Vals)
		if err != nil {
			return nil, err
		}

		info, err := c.decodeInfo(node.Info)
		if err != nil {
			return nil, err
		}

		entities = append(entities, model.Node{
			ID:   model.ID(node.ID),
			Tags: tags,
			Info: info,
			Lat:  model.ToDegrees(c.latOffset, c.granularity, node.Lat),
			Lon:  model.ToDegrees(c.lonOffset, c.granularity, node.Lon),
		})
	}

	return entities, nil
}

func (c *blockContext) decodeDenseNodes(entities []model.Entity, dense *pb.DenseNodes) ([]model.Entity, error) {
	ids := dense.ID

	if len(dense.Lat) != len(ids) || len(dense.Lon) != len(ids) {
		return nil, fmt.Errorf("dense arrays of %d ids, %d lats, %d lons: %w",
			len(ids), len(dense.Lat), len(dense.Lon), wire.ErrMalformed)
	}

	tic := c.newTagsContext(dense.KeysVals)
	dic := c.newDenseInfoContext(dense.Denseinfo)

	// One accumulator per array; every delta array starts relative to zero.
	var id, lat, lon int64

	for i := range ids {
		id += ids[i]
		lat += dense.Lat[i]
		lon += dense.Lon[i]

		tags, err := tic.next()
		if err != nil {
			return nil, err
		}

		info, err := dic.next(i)
		if err != nil {
			return nil, err
		}

		entities = append(entities, model.Node{
			ID:   model.ID(id),
			Tags: tags,
			Info: info,
			Lat:  model.ToDegrees(c.latOffset, c.granularity, lat),
			Lon:  model.ToDegrees(c.lonOffset, c.granularity, lon),
		})
	}

	if err := tic.finish(); err != nil {
		return nil, err
	}

	return entities, nil
}

func (c *blockContext) decodeWays(entities []model.Entity, ways []*pb.Way) ([]model.Entity, error) {
	for _, way := range ways {
		tags, err := c.decodeTags(way.Keys, way.Vals)
		if err != nil {
			return nil, err
		}

		info, err := c.decodeInfo(way.Info)
		if err != nil {
			return nil, err
		}

		nodeIDs := make([]model.ID, len(way.Refs))

		var ref int64
		for i, delta := range way.Refs {
			ref += delta
			nodeIDs[i] = model.ID(ref)
		}

		entities = append(entities, model.Way{
			ID:      model.ID(way.ID),
			Tags:    tags,
			Info:    info,
			NodeIDs: nodeIDs,
		})
	}

	return entities, nil
}

func (c *blockContext) decodeRelations(entities []model.Entity, relations []*pb.Relation) ([]model.Entity, error) {
	for _, rel := range relations {
		tags, err := c.decodeTags(rel.Keys, rel.Vals)
		if err != nil {
			return nil, err
		}

		info, err := c.decodeInfo(rel.Info)
		if err != nil {
			return nil, err
		}

		members, err := c.decodeMembers(rel)
		if err != nil {
			return nil, err
		}

		entities = append(entities, model.Relation{
			ID:      model.ID(rel.ID),
			Tags:    tags,
			Info:    info,
			Members: members,
		})
	}

	return entities, nil
}

func (c *blockContext) decodeMembers(rel *pb.Relation) (model.Members, error) {
	if len(rel.Types) != len(rel.Memids) || len(rel.RolesSid) != len(rel.Memids) {
		return nil, fmt.Errorf("relation %d member arrays of %d ids, %d types, %d roles: %w",
			rel.ID, len(rel.Memids), len(rel.Types), len(rel.RolesSid), wire.ErrMalformed)
	}

	members := make(model.Members, len(rel.Memids))

	var memid int64

	for i := range rel.Memids {
		memid += rel.Memids[i]

		kind, err := decodeMemberType(rel.Types[i])
		if err != nil {
			return nil, fmt.Errorf("relation %d: %w", rel.ID, err)
		}

		role, err := c.lookup(uint32(rel.RolesSid[i]))
		if err != nil {
			return nil, err
		}

		members[i] = model.Member{
			ID:   model.ID(memid),
			Type: kind,
			Role: role,
		}
	}

	return members, nil
}

func (c *blockContext) decodeTags(keyIDs, valIDs []uint32) (model.Tags, error) {
	if len(keyIDs) != len(valIDs) {
		return nil, fmt.Errorf("%d keys zipped with %d vals: %w", len(keyIDs), len(valIDs), wire.ErrMalformed)
	}

	if len(keyIDs) == 0 {
		return nil, nil
	}

	tags := make(model.Tags, len(keyIDs))

	for i, keyID := range keyIDs {
		key, err := c.lookup(keyID)
		if err != nil {
			return nil, err
		}

		val, err := c.lookup(valIDs[i])
		if err != nil {
			return nil, err
		}

		tags[i] = model.Tag{Key: key, Value: val}
	}

	return tags, nil
}

func (c *blockContext) decodeInfo(info *pb.Info) (*model.Info, error) {
	out := &model.Info{Visible: true}

	if info == nil {
		return out, nil
	}

	user, err := c.lookup(info.UserSid)
	if err != nil {
		return nil, err
	}

	out.Version = info.Version
	out.Timestamp = toTimestamp(c.dateGranularity, info.Timestamp)
	out.Changeset = info.Changeset
	out.UID = model.UID(info.UID)
	out.User = user

	if info.HasVisible {
		out.Visible = info.Visible
	}

	return out, nil
}

// tagsContext walks the flat keys_vals array of a dense group: per node, a
// run of key/value index pairs terminated by a 0 sentinel.  An empty array
// means the whole group is tag-free.
type tagsContext struct {
	c       *blockContext
	keyVals []int32
	i       int
}

func (c *blockContext) newTagsContext(keyVals []int32) *tagsContext {
	return &tagsContext{c: c, keyVals: keyVals}
}

func (tic *tagsContext) next() (model.Tags, error) {
	if len(tic.keyVals) == 0 {
		return nil, nil
	}

	var tags model.Tags

	for {
		if tic.i >= len(tic.keyVals) {
			return nil, fmt.Errorf("keys_vals ends mid-run at %d: %w", tic.i, wire.ErrMalformed)
		}

		keyID := tic.keyVals[tic.i]
		tic.i++

		if keyID == 0 {
			return tags, nil
		}

		if tic.i >= len(tic.keyVals) {
			return nil, fmt.Errorf("keys_vals key %d has no value: %w", keyID, wire.ErrMalformed)
		}

		valID := tic.keyVals[tic.i]
		tic.i++

		if keyID < 0 || valID < 0 {
			return nil, fmt.Errorf("negative keys_vals index: %w", ErrBadStringTableIndex)
		}

		key, err := tic.c.lookup(uint32(keyID))
		if err != nil {
			return nil, err
		}

		val, err := tic.c.lookup(uint32(valID))
		if err != nil {
			return nil, err
		}

		tags = append(tags, model.Tag{Key: key, Value: val})
	}
}

// finish verifies that the runs covered the array exactly, one sentinel-
// terminated run per node.
func (tic *tagsContext) finish() error {
	if tic.i != len(tic.keyVals) {
		return fmt.Errorf("keys_vals has %d leftover entries: %w", len(tic.keyVals)-tic.i, wire.ErrMalformed)
	}

	return nil
}

// denseInfoContext folds the delta-encoded metadata arrays of a dense
// group.  Versions are absolute; everything else is a running sum.
type denseInfoContext struct {
	c  *blockContext
	di *pb.DenseInfo

	timestamp int64
	changeset int64
	uid       int32
	userSid   int32
}

func (c *blockContext) newDenseInfoContext(di *pb.DenseInfo) *denseInfoContext {
	return &denseInfoContext{c: c, di: di}
}

func (dic *denseInfoContext) next(i int) (*model.Info, error) {
	if dic.di == nil {
		return nil, nil
	}

	info := &model.Info{Visible: true}

	if i < len(dic.di.Version) {
		info.Version = dic.di.Version[i]
	}

	if i < len(dic.di.Timestamp) {
		dic.timestamp += dic.di.Timestamp[i]
		info.Timestamp = toTimestamp(dic.c.dateGranularity, dic.timestamp)
	}

	if i < len(dic.di.Changeset) {
		dic.changeset += dic.di.Changeset[i]
		info.Changeset = dic.changeset
	}

	if i < len(dic.di.UID) {
		dic.uid += dic.di.UID[i]
		info.UID = model.UID(dic.uid)
	}

	if i < len(dic.di.UserSid) {
		dic.userSid += dic.di.UserSid[i]

		if dic.userSid < 0 {
			return nil, fmt.Errorf("negative user_sid: %w", ErrBadStringTableIndex)
		}

		user, err := dic.c.lookup(uint32(dic.userSid))
		if err != nil {
			return nil, err
		}

		info.User = user
	}

	if i < len(dic.di.Visible) {
		info.Visible = dic.di.Visible[i]
	}

	return info, nil
}

// decodeMemberType converts the wire member-kind enum to an EntityType.
func decodeMemberType(mt int32) (model.EntityType, error) {
	switch pb.MemberType(mt) {
	case pb.MemberNode:
		return model.NODE, nil
	case pb.MemberWay:
		return model.WAY, nil
	case pb.MemberRelation:
		return model.RELATION, nil
	default:
		return 0, fmt.Errorf("member type %d: %w", mt, ErrInvalidMemberType)
	}
}

// toTimestamp converts a timestamp in date-granularity units to a UTC
// time.  Units are milliseconds scaled by the block's date_granularity.
func toTimestamp(granularity int32, timestamp int64) time.Time {
	return time.UnixMilli(timestamp * int64(granularity)).UTC()
}
