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
	"errors"
)

// Decoding failure classes.  Wire-level truncation and malformed-message
// errors come from the wire package; these cover the blob and block layers.
var (
	// ErrDecompression marks a compressed payload that cannot be inflated.
	ErrDecompression = errors.New("corrupt compressed blob")

	// ErrSizeMismatch marks an inflated payload whose length disagrees
	// with the blob's declared raw_size.
	ErrSizeMismatch = errors.New("decompressed size mismatch")

	// ErrUnsupportedCompression marks a blob encoding this decoder does
	// not inflate (bzip2, or a data field it does not know).
	ErrUnsupportedCompression = errors.New("unsupported blob compression")

	// ErrBadStringTableIndex marks a tag, user, or role reference outside
	// the block's string table.
	ErrBadStringTableIndex = errors.New("string table index out of range")

	// ErrInvalidMemberType marks a relation member kind outside the
	// node/way/relation enum.
	ErrInvalidMemberType = errors.New("invalid relation member type")

	// ErrUnrecognizedRequiredFeature marks a header demanding a capability
	// this decoder lacks.
	ErrUnrecognizedRequiredFeature = errors.New("unrecognized required feature")
)
