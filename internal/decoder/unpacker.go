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
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz/lzma"

	"github.com/osm-tools/pbf/internal/pb"
)

// Unpack returns the blob's raw block bytes, inflating compressed payloads.
// Inflated output must match the blob's declared raw_size exactly.
func Unpack(blob *pb.Blob) ([]byte, error) {
	var factory func(*pb.Blob) (io.Reader, error)

	switch blob.Compression {
	case pb.CompressionRaw:
		return blob.Data, nil
	case pb.CompressionZlib:
		factory = func(b *pb.Blob) (io.Reader, error) {
			return zlib.NewReader(bytes.NewReader(b.Data))
		}
	case pb.CompressionLzma:
		factory = func(b *pb.Blob) (io.Reader, error) {
			return lzma.NewReader(bytes.NewReader(b.Data))
		}
	case pb.CompressionLz4:
		factory = func(b *pb.Blob) (io.Reader, error) {
			return lz4.NewReader(bytes.NewReader(b.Data)), nil
		}
	case pb.CompressionZstd:
		factory = func(b *pb.Blob) (io.Reader, error) {
			return zstd.NewReader(bytes.NewReader(b.Data))
		}
	case pb.CompressionBzip2:
		return nil, fmt.Errorf("bzip2: %w", ErrUnsupportedCompression)
	default:
		return nil, fmt.Errorf("blob carries no data field: %w", ErrUnsupportedCompression)
	}

	rdr, err := factory(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}

	out := bytes.NewBuffer(make([]byte, 0, int(blob.RawSize)+bytes.MinRead))

	if _, err := out.ReadFrom(rdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}

	if out.Len() != int(blob.RawSize) {
		return nil, fmt.Errorf("inflated blob is %d bytes but raw_size declares %d: %w",
			out.Len(), blob.RawSize, ErrSizeMismatch)
	}

	return out.Bytes(), nil
}
