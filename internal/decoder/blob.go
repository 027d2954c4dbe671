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

// Package decoder turns the PBF byte stream into decoded OSM entities: it
// frames blobs, inflates them, and interprets header and primitive blocks.
package decoder

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/osm-tools/pbf/internal/core"
	"github.com/osm-tools/pbf/internal/pb"
	"github.com/osm-tools/pbf/internal/wire"
)

// Block type strings carried by BlobHeader.
const (
	BlockTypeHeader = "OSMHeader"
	BlockTypeData   = "OSMData"
)

// Limits on declared sizes, matching what sane writers produce.  Anything
// beyond them is treated as malformed rather than honored with a giant
// allocation.
const (
	maxBlobHeaderSize = 64 << 10
	maxBlobSize       = 32 << 20
)

// Blob pairs a parsed BlobHeader with its still-possibly-compressed Blob.
type Blob struct {
	Type string
	Blob *pb.Blob
}

// ReadBlob reads one [length][BlobHeader][Blob] frame.  A clean end of the
// stream, including a zero-length frame, is reported as io.EOF.
func ReadBlob(rdr io.Reader) (*Blob, error) {
	header, err := readBlobHeader(rdr)
	if err != nil {
		return nil, err
	}

	blob, err := readBlobData(rdr, header.Datasize)
	if err != nil {
		return nil, fmt.Errorf("blob of type %q: %w", header.Type, err)
	}

	return &Blob{Type: header.Type, Blob: blob}, nil
}

// GenerateBlobs returns an iterator over the stream's blobs.  The iterator
// stops on context cancellation, on a clean end of stream, or after
// yielding the first error.
func GenerateBlobs(ctx context.Context, rdr io.Reader) func(yield func(*Blob, error) bool) {
	return func(yield func(*Blob, error) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			blob, err := ReadBlob(rdr)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					slog.Error("unable to read blob", "error", err)
					yield(nil, err)
				}

				return
			}

			if !yield(blob, nil) {
				return
			}
		}
	}
}

// readBlobHeader reads the 4-byte big-endian length and the BlobHeader
// message that follows it.
func readBlobHeader(rdr io.Reader) (*pb.BlobHeader, error) {
	var size uint32

	err := binary.Read(rdr, binary.BigEndian, &size)

	switch {
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("blob header length: %w", wire.ErrTruncated)
	case err != nil:
		return nil, fmt.Errorf("blob header length: %w", err)
	}

	if size == 0 {
		return nil, io.EOF
	}

	if size > maxBlobHeaderSize {
		return nil, fmt.Errorf("blob header of %d bytes exceeds limit: %w", size, wire.ErrMalformed)
	}

	buf := core.NewPooledBuffer()
	defer buf.Close()

	if err := copyExactly(buf, rdr, int64(size)); err != nil {
		return nil, fmt.Errorf("blob header: %w", err)
	}

	header := &pb.BlobHeader{}
	if err := header.Unmarshal(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("blob header: %w", err)
	}

	if header.Datasize < 0 || header.Datasize > maxBlobSize {
		return nil, fmt.Errorf("blob of %d bytes exceeds limit: %w", header.Datasize, wire.ErrMalformed)
	}

	return header, nil
}

// readBlobData reads exactly size bytes and decodes them as a Blob message.
func readBlobData(rdr io.Reader, size int32) (*pb.Blob, error) {
	buf := core.NewPooledBuffer()
	defer buf.Close()

	if err := copyExactly(buf, rdr, int64(size)); err != nil {
		return nil, err
	}

	blob := &pb.Blob{}
	if err := blob.Unmarshal(buf.Bytes()); err != nil {
		return nil, err
	}

	// The blob's payload sub-slices the pooled buffer; copy it out before
	// the buffer is recycled.
	blob.Data = append([]byte(nil), blob.Data...)

	return blob, nil
}

// copyExactly transfers exactly n bytes, mapping a short read to the
// truncation error.
func copyExactly(dst io.Writer, src io.Reader, n int64) error {
	copied, err := io.CopyN(dst, src, n)

	switch {
	case errors.Is(err, io.EOF):
		return fmt.Errorf("declared %d bytes, got %d: %w", n, copied, wire.ErrTruncated)
	case err != nil:
		return err
	default:
		return nil
	}
}
