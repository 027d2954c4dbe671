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
	"log/slog"

	"github.com/destel/rill"

	"github.com/osm-tools/pbf/model"
)

// DecodeBlob unpacks one blob and decodes it into entities.  Header blobs
// are validated but contribute none; unknown block types are skipped for
// forward compatibility.
func DecodeBlob(blob *Blob) ([]model.Entity, error) {
	switch blob.Type {
	case BlockTypeHeader:
		data, err := Unpack(blob.Blob)
		if err != nil {
			return nil, err
		}

		_, err = ParseHeader(data)

		return nil, err
	case BlockTypeData:
		data, err := Unpack(blob.Blob)
		if err != nil {
			return nil, err
		}

		return ParsePrimitiveBlock(data)
	default:
		return nil, nil
	}
}

// DecodeBatch decodes a batch of blobs and sends each blob's entities down
// the returned channel, preserving blob order within the batch.
func DecodeBatch(blobs []*Blob) <-chan rill.Try[[]model.Entity] {
	ch := make(chan rill.Try[[]model.Entity])

	go func() {
		defer close(ch)

		for _, blob := range blobs {
			entities, err := DecodeBlob(blob)
			if err != nil {
				slog.Error("unable to decode blob", "error", err)
				ch <- rill.Try[[]model.Entity]{Error: err}

				return
			}

			ch <- rill.Try[[]model.Entity]{Value: entities}
		}
	}()

	return ch
}
