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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osm-tools/pbf/internal/decoder"
	"github.com/osm-tools/pbf/internal/pb"
	"github.com/osm-tools/pbf/internal/testenc"
)

func TestUnpackRaw(t *testing.T) {
	payload := []byte("raw block bytes")

	out, err := decoder.Unpack(&pb.Blob{Compression: pb.CompressionRaw, Data: payload})
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestUnpackZlib(t *testing.T) {
	payload := []byte("a block that travelled deflated")

	out, err := decoder.Unpack(&pb.Blob{
		Compression: pb.CompressionZlib,
		Data:        testenc.ZlibCompress(payload),
		RawSize:     int32(len(payload)),
	})
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestUnpackZlibCorrupt(t *testing.T) {
	_, err := decoder.Unpack(&pb.Blob{
		Compression: pb.CompressionZlib,
		Data:        []byte{0xde, 0xad, 0xbe, 0xef},
		RawSize:     4,
	})
	assert.ErrorIs(t, err, decoder.ErrDecompression)
}

func TestUnpackSizeMismatch(t *testing.T) {
	payload := []byte("sized wrong on purpose")

	_, err := decoder.Unpack(&pb.Blob{
		Compression: pb.CompressionZlib,
		Data:        testenc.ZlibCompress(payload),
		RawSize:     int32(len(payload)) + 1,
	})
	assert.ErrorIs(t, err, decoder.ErrSizeMismatch)
}

func TestUnpackBzip2Unsupported(t *testing.T) {
	_, err := decoder.Unpack(&pb.Blob{Compression: pb.CompressionBzip2, Data: []byte{0x42}})
	assert.ErrorIs(t, err, decoder.ErrUnsupportedCompression)
}

func TestUnpackMissingData(t *testing.T) {
	_, err := decoder.Unpack(&pb.Blob{})
	assert.ErrorIs(t, err, decoder.ErrUnsupportedCompression)
}
