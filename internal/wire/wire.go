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

// Package wire reads protobuf wire data from raw byte slices.  It covers
// only what the PBF file format needs: varints, zig-zag integers, and a
// field scanner that walks one message's tag/value records.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Type is a protobuf wire type.
type Type uint8

// Wire types used by the PBF format.  Groups are long dead and are treated
// as malformed input.
const (
	TypeVarint  Type = 0
	TypeFixed64 Type = 1
	TypeBytes   Type = 2
	TypeFixed32 Type = 5
)

var (
	// ErrTruncated is returned when the input ends before a declared
	// length or mid-varint.
	ErrTruncated = errors.New("truncated input")

	// ErrMalformed is returned for an invalid tag, an unknown wire type,
	// or a length-delimited field that overruns the buffer.
	ErrMalformed = errors.New("malformed protobuf")
)

// maxVarintLen is the longest encoding of a 64-bit varint.
const maxVarintLen = 10

// Uvarint reads an unsigned varint from buf starting at pos and returns the
// value along with the position of the first byte after it.
func Uvarint(buf []byte, pos int) (uint64, int, error) {
	var v uint64

	for i := 0; ; i++ {
		if pos+i >= len(buf) {
			return 0, 0, fmt.Errorf("varint at offset %d: %w", pos, ErrTruncated)
		}

		if i == maxVarintLen {
			return 0, 0, fmt.Errorf("varint at offset %d overflows 64 bits: %w", pos, ErrMalformed)
		}

		b := buf[pos+i]
		v |= uint64(b&0x7f) << (7 * uint(i))

		if b < 0x80 {
			return v, pos + i + 1, nil
		}
	}
}

// Zigzag maps an unsigned zig-zag value back to its signed form, e.g.
// 0, 1, 2, 3, 4 become 0, -1, 1, -2, 2.
func Zigzag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// Scanner walks the tag/value records of a single protobuf message held in
// memory.  Callers alternate between Field and exactly one value read (or
// Skip) per field.  Unknown field numbers are the caller's business; the
// scanner itself never rejects them.
type Scanner struct {
	buf []byte
	pos int
}

// NewScanner returns a Scanner over one message's bytes.
func NewScanner(buf []byte) *Scanner {
	return &Scanner{buf: buf}
}

// More reports whether any bytes remain.
func (s *Scanner) More() bool {
	return s.pos < len(s.buf)
}

// Field reads the next field tag and returns its number and wire type.
func (s *Scanner) Field() (int32, Type, error) {
	tag, pos, err := Uvarint(s.buf, s.pos)
	if err != nil {
		return 0, 0, err
	}

	num := int32(tag >> 3)
	wt := Type(tag & 0x7)

	if num <= 0 {
		return 0, 0, fmt.Errorf("field number %d: %w", num, ErrMalformed)
	}

	switch wt {
	case TypeVarint, TypeFixed64, TypeBytes, TypeFixed32:
	default:
		return 0, 0, fmt.Errorf("wire type %d for field %d: %w", wt, num, ErrMalformed)
	}

	s.pos = pos

	return num, wt, nil
}

// Varint reads a varint payload.
func (s *Scanner) Varint() (uint64, error) {
	v, pos, err := Uvarint(s.buf, s.pos)
	if err != nil {
		return 0, err
	}

	s.pos = pos

	return v, nil
}

// Fixed64 reads an 8-byte little-endian payload.
func (s *Scanner) Fixed64() (uint64, error) {
	if s.pos+8 > len(s.buf) {
		return 0, fmt.Errorf("fixed64 at offset %d: %w", s.pos, ErrTruncated)
	}

	v := binary.LittleEndian.Uint64(s.buf[s.pos:])
	s.pos += 8

	return v, nil
}

// Fixed32 reads a 4-byte little-endian payload.
func (s *Scanner) Fixed32() (uint32, error) {
	if s.pos+4 > len(s.buf) {
		return 0, fmt.Errorf("fixed32 at offset %d: %w", s.pos, ErrTruncated)
	}

	v := binary.LittleEndian.Uint32(s.buf[s.pos:])
	s.pos += 4

	return v, nil
}

// Bytes reads a length-delimited payload and returns a sub-slice of the
// underlying buffer; it is valid as long as the buffer is.
func (s *Scanner) Bytes() ([]byte, error) {
	n, pos, err := Uvarint(s.buf, s.pos)
	if err != nil {
		return nil, err
	}

	if n > uint64(len(s.buf)-pos) {
		return nil, fmt.Errorf("length-delimited field of %d bytes exceeds remaining %d: %w",
			n, len(s.buf)-pos, ErrMalformed)
	}

	s.pos = pos + int(n)

	return s.buf[pos : pos+int(n)], nil
}

// String reads a length-delimited payload as a string copy.
func (s *Scanner) String() (string, error) {
	b, err := s.Bytes()
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Int32 reads a varint payload as an int32.
func (s *Scanner) Int32() (int32, error) {
	v, err := s.Varint()

	return int32(v), err
}

// Int64 reads a varint payload as an int64.
func (s *Scanner) Int64() (int64, error) {
	v, err := s.Varint()

	return int64(v), err
}

// Uint32 reads a varint payload as a uint32.
func (s *Scanner) Uint32() (uint32, error) {
	v, err := s.Varint()

	return uint32(v), err
}

// Sint32 reads a zig-zag varint payload as an int32.
func (s *Scanner) Sint32() (int32, error) {
	v, err := s.Varint()

	return int32(Zigzag(v)), err
}

// Sint64 reads a zig-zag varint payload as an int64.
func (s *Scanner) Sint64() (int64, error) {
	v, err := s.Varint()

	return Zigzag(v), err
}

// Bool reads a varint payload as a bool.
func (s *Scanner) Bool() (bool, error) {
	v, err := s.Varint()

	return v != 0, err
}

// Skip discards the payload of a field with the given wire type.  This is
// the forward-compatibility path for unknown field numbers.
func (s *Scanner) Skip(wt Type) error {
	switch wt {
	case TypeVarint:
		_, err := s.Varint()

		return err
	case TypeFixed64:
		_, err := s.Fixed64()

		return err
	case TypeBytes:
		_, err := s.Bytes()

		return err
	case TypeFixed32:
		_, err := s.Fixed32()

		return err
	default:
		return fmt.Errorf("wire type %d: %w", wt, ErrMalformed)
	}
}
