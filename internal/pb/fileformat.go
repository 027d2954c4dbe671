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

// Package pb holds hand-written counterparts of the OSM PBF wire messages,
// unmarshalled with the wire scanner rather than a protobuf runtime.  Field
// numbers follow the published fileformat.proto and osmformat.proto.
package pb

import (
	"github.com/osm-tools/pbf/internal/wire"
)

// BlobHeader declares the type and byte length of the blob that follows it
// in the stream.
type BlobHeader struct {
	Type      string
	IndexData []byte
	Datasize  int32
}

// Unmarshal decodes a BlobHeader message.
func (m *BlobHeader) Unmarshal(buf []byte) error {
	s := wire.NewScanner(buf)

	for s.More() {
		num, wt, err := s.Field()
		if err != nil {
			return err
		}

		switch num {
		case 1:
			m.Type, err = s.String()
		case 2:
			var b []byte
			if b, err = s.Bytes(); err == nil {
				m.IndexData = append([]byte(nil), b...)
			}
		case 3:
			m.Datasize, err = s.Int32()
		default:
			err = s.Skip(wt)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// Compression identifies which data field a Blob carried.
type Compression uint8

// Blob payload encodings.  Bzip2 is recognized for the sake of a precise
// error but never inflated.
const (
	CompressionNone Compression = iota
	CompressionRaw
	CompressionZlib
	CompressionLzma
	CompressionBzip2
	CompressionLz4
	CompressionZstd
)

// Blob is the length-prefixed container for one header or primitive block,
// optionally compressed.  Data holds whichever payload field was present;
// Compression says how to interpret it.
type Blob struct {
	Compression Compression
	Data        []byte
	RawSize     int32
}

// Unmarshal decodes a Blob message.
func (m *Blob) Unmarshal(buf []byte) error {
	s := wire.NewScanner(buf)

	for s.More() {
		num, wt, err := s.Field()
		if err != nil {
			return err
		}

		switch num {
		case 1:
			err = m.setData(s, CompressionRaw)
		case 2:
			m.RawSize, err = s.Int32()
		case 3:
			err = m.setData(s, CompressionZlib)
		case 4:
			err = m.setData(s, CompressionLzma)
		case 5:
			err = m.setData(s, CompressionBzip2)
		case 6:
			err = m.setData(s, CompressionLz4)
		case 7:
			err = m.setData(s, CompressionZstd)
		default:
			err = s.Skip(wt)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (m *Blob) setData(s *wire.Scanner, c Compression) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}

	m.Compression = c
	m.Data = b

	return nil
}
