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

package testenc

// HeaderSpec describes a synthetic OSMHeader block.
type HeaderSpec struct {
	RequiredFeatures []string
	OptionalFeatures []string
	WritingProgram   string
	Source           string

	// Bbox, when non-nil, is left/right/top/bottom in nanodegrees.
	Bbox *[4]int64

	ReplicationTimestamp      int64
	ReplicationSequenceNumber int64
	ReplicationBaseURL        string
}

// EncodeHeader renders a HeaderBlock message.
func EncodeHeader(h HeaderSpec) []byte {
	var b []byte

	if h.Bbox != nil {
		var bbox []byte
		for i, v := range h.Bbox {
			bbox = AppendSintField(bbox, int32(i+1), v)
		}

		b = AppendBytesField(b, 1, bbox)
	}

	for _, f := range h.RequiredFeatures {
		b = AppendStringField(b, 4, f)
	}

	for _, f := range h.OptionalFeatures {
		b = AppendStringField(b, 5, f)
	}

	if h.WritingProgram != "" {
		b = AppendStringField(b, 16, h.WritingProgram)
	}

	if h.Source != "" {
		b = AppendStringField(b, 17, h.Source)
	}

	if h.ReplicationTimestamp != 0 {
		b = AppendVarintField(b, 32, uint64(h.ReplicationTimestamp))
	}

	if h.ReplicationSequenceNumber != 0 {
		b = AppendVarintField(b, 33, uint64(h.ReplicationSequenceNumber))
	}

	if h.ReplicationBaseURL != "" {
		b = AppendStringField(b, 34, h.ReplicationBaseURL)
	}

	return b
}

// InfoSpec describes entity metadata.
type InfoSpec struct {
	Version   int32
	Timestamp int64
	Changeset int64
	UID       int32
	UserSid   uint32
	Visible   *bool
}

// EncodeInfo renders an Info message.
func EncodeInfo(i InfoSpec) []byte {
	var b []byte
	b = AppendVarintField(b, 1, uint64(i.Version))
	b = AppendVarintField(b, 2, uint64(i.Timestamp))
	b = AppendVarintField(b, 3, uint64(i.Changeset))
	b = AppendVarintField(b, 4, uint64(i.UID))
	b = AppendVarintField(b, 5, uint64(i.UserSid))

	if i.Visible != nil {
		var v uint64
		if *i.Visible {
			v = 1
		}

		b = AppendVarintField(b, 6, v)
	}

	return b
}

// NodeSpec describes a plain node; coordinates are in granularity units.
type NodeSpec struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *InfoSpec
	Lat  int64
	Lon  int64
}

// DenseInfoSpec holds raw (already delta-encoded) metadata arrays.
type DenseInfoSpec struct {
	Versions   []int32
	Timestamps []int64
	Changesets []int64
	UIDs       []int32
	UserSids   []int32
	Visibles   []bool
}

// DenseSpec holds raw (already delta-encoded) dense node arrays.
type DenseSpec struct {
	IDs      []int64
	Lats     []int64
	Lons     []int64
	KeysVals []int32
	Info     *DenseInfoSpec
}

// WaySpec describes a way; Refs are raw deltas.
type WaySpec struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *InfoSpec
	Refs []int64
}

// RelationSpec describes a relation; Memids are raw deltas.
type RelationSpec struct {
	ID       int64
	Keys     []uint32
	Vals     []uint32
	Info     *InfoSpec
	RolesSid []int32
	Memids   []int64
	Types    []int32
}

// GroupSpec describes one primitive group; populate exactly one kind.
type GroupSpec struct {
	Nodes      []NodeSpec
	Dense      *DenseSpec
	Ways       []WaySpec
	Relations  []RelationSpec
	Changesets []int64
}

// BlockSpec describes a primitive block.  Zero granularity values are left
// off the wire so decoders fall back to the format defaults.
type BlockSpec struct {
	Strings         []string
	Groups          []GroupSpec
	Granularity     int32
	DateGranularity int32
	LatOffset       int64
	LonOffset       int64
}

// EncodeBlock renders a PrimitiveBlock message.
func EncodeBlock(spec BlockSpec) []byte {
	var table []byte
	for _, s := range spec.Strings {
		table = AppendStringField(table, 1, s)
	}

	var b []byte
	b = AppendBytesField(b, 1, table)

	for _, g := range spec.Groups {
		b = AppendBytesField(b, 2, encodeGroup(g))
	}

	if spec.Granularity != 0 {
		b = AppendVarintField(b, 17, uint64(spec.Granularity))
	}

	if spec.DateGranularity != 0 {
		b = AppendVarintField(b, 18, uint64(spec.DateGranularity))
	}

	if spec.LatOffset != 0 {
		b = AppendSintField(b, 19, spec.LatOffset)
	}

	if spec.LonOffset != 0 {
		b = AppendSintField(b, 20, spec.LonOffset)
	}

	return b
}

func encodeGroup(g GroupSpec) []byte {
	var b []byte

	for _, n := range g.Nodes {
		b = AppendBytesField(b, 1, encodeNode(n))
	}

	if g.Dense != nil {
		b = AppendBytesField(b, 2, encodeDense(*g.Dense))
	}

	for _, w := range g.Ways {
		b = AppendBytesField(b, 3, encodeWay(w))
	}

	for _, r := range g.Relations {
		b = AppendBytesField(b, 4, encodeRelation(r))
	}

	for _, id := range g.Changesets {
		var cs []byte
		cs = AppendVarintField(cs, 1, uint64(id))
		b = AppendBytesField(b, 5, cs)
	}

	return b
}

func encodeNode(n NodeSpec) []byte {
	var b []byte
	b = AppendSintField(b, 1, n.ID)
	b = AppendPackedVarint(b, 2, n.Keys)
	b = AppendPackedVarint(b, 3, n.Vals)

	if n.Info != nil {
		b = AppendBytesField(b, 4, EncodeInfo(*n.Info))
	}

	b = AppendSintField(b, 8, n.Lat)
	b = AppendSintField(b, 9, n.Lon)

	return b
}

func encodeDense(d DenseSpec) []byte {
	var b []byte
	b = AppendPackedSint64(b, 1, d.IDs)

	if d.Info != nil {
		var di []byte
		di = AppendPackedVarint(di, 1, d.Info.Versions)
		di = AppendPackedSint64(di, 2, d.Info.Timestamps)
		di = AppendPackedSint64(di, 3, d.Info.Changesets)
		di = AppendPackedSint32(di, 4, d.Info.UIDs)
		di = AppendPackedSint32(di, 5, d.Info.UserSids)
		di = AppendPackedBool(di, 6, d.Info.Visibles)
		b = AppendBytesField(b, 5, di)
	}

	b = AppendPackedSint64(b, 8, d.Lats)
	b = AppendPackedSint64(b, 9, d.Lons)
	b = AppendPackedVarint(b, 10, d.KeysVals)

	return b
}

func encodeWay(w WaySpec) []byte {
	var b []byte
	b = AppendVarintField(b, 1, uint64(w.ID))
	b = AppendPackedVarint(b, 2, w.Keys)
	b = AppendPackedVarint(b, 3, w.Vals)

	if w.Info != nil {
		b = AppendBytesField(b, 4, EncodeInfo(*w.Info))
	}

	b = AppendPackedSint64(b, 8, w.Refs)

	return b
}

func encodeRelation(r RelationSpec) []byte {
	var b []byte
	b = AppendVarintField(b, 1, uint64(r.ID))
	b = AppendPackedVarint(b, 2, r.Keys)
	b = AppendPackedVarint(b, 3, r.Vals)

	if r.Info != nil {
		b = AppendBytesField(b, 4, EncodeInfo(*r.Info))
	}

	b = AppendPackedVarint(b, 8, r.RolesSid)
	b = AppendPackedSint64(b, 9, r.Memids)
	b = AppendPackedVarint(b, 10, r.Types)

	return b
}
