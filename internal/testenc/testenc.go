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

// Package testenc builds synthetic OSM PBF streams for tests.  It writes
// protobuf wire data by hand so fixtures stay byte-exact and independent of
// the code under test.
package testenc

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"

	"golang.org/x/exp/constraints"
)

const (
	typeVarint byte = 0
	typeBytes  byte = 2
)

// AppendUvarint appends v as an unsigned varint.
func AppendUvarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}

	return append(b, byte(v))
}

// AppendZigzag appends v zig-zag encoded.
func AppendZigzag(b []byte, v int64) []byte {
	return AppendUvarint(b, uint64((v<<1)^(v>>63)))
}

// AppendTag appends a field tag.
func AppendTag(b []byte, num int32, wt byte) []byte {
	return AppendUvarint(b, uint64(num)<<3|uint64(wt))
}

// AppendVarintField appends a complete varint field.
func AppendVarintField(b []byte, num int32, v uint64) []byte {
	b = AppendTag(b, num, typeVarint)

	return AppendUvarint(b, v)
}

// AppendSintField appends a complete zig-zag varint field.
func AppendSintField(b []byte, num int32, v int64) []byte {
	b = AppendTag(b, num, typeVarint)

	return AppendZigzag(b, v)
}

// AppendBytesField appends a complete length-delimited field.
func AppendBytesField(b []byte, num int32, data []byte) []byte {
	b = AppendTag(b, num, typeBytes)
	b = AppendUvarint(b, uint64(len(data)))

	return append(b, data...)
}

// AppendStringField appends a complete string field.
func AppendStringField(b []byte, num int32, s string) []byte {
	return AppendBytesField(b, num, []byte(s))
}

// AppendPackedSint64 appends vals as one packed zig-zag field.
func AppendPackedSint64(b []byte, num int32, vals []int64) []byte {
	if len(vals) == 0 {
		return b
	}

	var body []byte
	for _, v := range vals {
		body = AppendZigzag(body, v)
	}

	return AppendBytesField(b, num, body)
}

// AppendPackedSint32 appends vals as one packed zig-zag field.
func AppendPackedSint32(b []byte, num int32, vals []int32) []byte {
	if len(vals) == 0 {
		return b
	}

	var body []byte
	for _, v := range vals {
		body = AppendZigzag(body, int64(v))
	}

	return AppendBytesField(b, num, body)
}

// AppendPackedVarint appends vals as one packed plain-varint field.
func AppendPackedVarint[T constraints.Integer](b []byte, num int32, vals []T) []byte {
	if len(vals) == 0 {
		return b
	}

	var body []byte
	for _, v := range vals {
		body = AppendUvarint(body, uint64(v))
	}

	return AppendBytesField(b, num, body)
}

// AppendPackedBool appends vals as one packed varint field.
func AppendPackedBool(b []byte, num int32, vals []bool) []byte {
	if len(vals) == 0 {
		return b
	}

	var body []byte

	for _, v := range vals {
		var u uint64
		if v {
			u = 1
		}

		body = AppendUvarint(body, u)
	}

	return AppendBytesField(b, num, body)
}

// Deltas converts a series of true values into consecutive deltas, the
// inverse of the running-sum reconstruction.
func Deltas[T constraints.Integer](vals []T) []T {
	out := make([]T, len(vals))

	var last T
	for i, v := range vals {
		out[i] = v - last
		last = v
	}

	return out
}

// ZlibCompress deflates data with default settings.
func ZlibCompress(data []byte) []byte {
	var buf bytes.Buffer

	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		panic(err)
	}

	if err := w.Close(); err != nil {
		panic(err)
	}

	return buf.Bytes()
}

// Frame wraps a block payload into one [length][BlobHeader][Blob] stream
// frame.  When compress is set, the payload travels as zlib_data with its
// raw_size declared; otherwise as raw.
func Frame(blockType string, payload []byte, compress bool) []byte {
	var blob []byte
	if compress {
		blob = AppendBytesField(blob, 3, ZlibCompress(payload))
		blob = AppendVarintField(blob, 2, uint64(len(payload)))
	} else {
		blob = AppendBytesField(blob, 1, payload)
	}

	var header []byte
	header = AppendStringField(header, 1, blockType)
	header = AppendVarintField(header, 3, uint64(len(blob)))

	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(len(header)))
	out = append(out, header...)

	return append(out, blob...)
}

// Stream concatenates frames into a single readable stream.
func Stream(frames ...[]byte) []byte {
	var out []byte
	for _, f := range frames {
		out = append(out, f...)
	}

	return out
}
