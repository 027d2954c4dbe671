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

package pbf

import (
	"github.com/osm-tools/pbf/internal/decoder"
	"github.com/osm-tools/pbf/internal/wire"
)

// The decoding failure classes, re-exported so callers can classify errors
// with errors.Is without importing internal packages.  Every error is fatal
// to the blob or block it occurred in; the decoder never substitutes
// partial data for a corrupt block.
var (
	// ErrTruncatedInput: the stream ended before a declared length.
	ErrTruncatedInput = wire.ErrTruncated

	// ErrMalformedProtobuf: an invalid tag, wire type, or field size.
	ErrMalformedProtobuf = wire.ErrMalformed

	// ErrDecompression: a compressed payload that cannot be inflated.
	ErrDecompression = decoder.ErrDecompression

	// ErrSizeMismatch: inflated length disagrees with the declared raw_size.
	ErrSizeMismatch = decoder.ErrSizeMismatch

	// ErrUnsupportedCompression: a blob encoding this decoder does not inflate.
	ErrUnsupportedCompression = decoder.ErrUnsupportedCompression

	// ErrBadStringTableIndex: a tag, user, or role index outside the table.
	ErrBadStringTableIndex = decoder.ErrBadStringTableIndex

	// ErrInvalidMemberType: a relation member kind outside the enum.
	ErrInvalidMemberType = decoder.ErrInvalidMemberType

	// ErrUnrecognizedRequiredFeature: the header demands a capability this
	// decoder lacks.
	ErrUnrecognizedRequiredFeature = decoder.ErrUnrecognizedRequiredFeature
)
