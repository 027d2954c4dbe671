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

package wire

// Packed repeated scalars arrive as one length-delimited field holding
// back-to-back varints.  These helpers append the decoded values to out,
// which lets callers accumulate values across multiple occurrences of the
// same field.

// AppendPackedSint64 decodes a packed run of zig-zag encoded int64 values.
func AppendPackedSint64(out []int64, data []byte) ([]int64, error) {
	for pos := 0; pos < len(data); {
		v, next, err := Uvarint(data, pos)
		if err != nil {
			return nil, err
		}

		out = append(out, Zigzag(v))
		pos = next
	}

	return out, nil
}

// AppendPackedSint32 decodes a packed run of zig-zag encoded int32 values.
func AppendPackedSint32(out []int32, data []byte) ([]int32, error) {
	for pos := 0; pos < len(data); {
		v, next, err := Uvarint(data, pos)
		if err != nil {
			return nil, err
		}

		out = append(out, int32(Zigzag(v)))
		pos = next
	}

	return out, nil
}

// AppendPackedInt64 decodes a packed run of plain varint int64 values.
func AppendPackedInt64(out []int64, data []byte) ([]int64, error) {
	for pos := 0; pos < len(data); {
		v, next, err := Uvarint(data, pos)
		if err != nil {
			return nil, err
		}

		out = append(out, int64(v))
		pos = next
	}

	return out, nil
}

// AppendPackedInt32 decodes a packed run of plain varint int32 values.
func AppendPackedInt32(out []int32, data []byte) ([]int32, error) {
	for pos := 0; pos < len(data); {
		v, next, err := Uvarint(data, pos)
		if err != nil {
			return nil, err
		}

		out = append(out, int32(v))
		pos = next
	}

	return out, nil
}

// AppendPackedUint32 decodes a packed run of varint uint32 values.
func AppendPackedUint32(out []uint32, data []byte) ([]uint32, error) {
	for pos := 0; pos < len(data); {
		v, next, err := Uvarint(data, pos)
		if err != nil {
			return nil, err
		}

		out = append(out, uint32(v))
		pos = next
	}

	return out, nil
}

// AppendPackedBool decodes a packed run of varint bool values.
func AppendPackedBool(out []bool, data []byte) ([]bool, error) {
	for pos := 0; pos < len(data); {
		v, next, err := Uvarint(data, pos)
		if err != nil {
			return nil, err
		}

		out = append(out, v != 0)
		pos = next
	}

	return out, nil
}
