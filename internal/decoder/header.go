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
	"fmt"
	"time"

	"github.com/osm-tools/pbf/internal/pb"
	"github.com/osm-tools/pbf/model"
)

// supportedFeatures are the required_features this decoder understands.  A
// header demanding anything else aborts before any primitive block is read;
// skipping an unknown mandatory capability risks misreading every entity
// that follows.
var supportedFeatures = map[string]struct{}{
	"OsmSchema-V0.6":        {},
	"DenseNodes":            {},
	"HistoricalInformation": {},
}

// ParseHeader unmarshals an OSMHeader payload and validates its required
// features.  Optional features are recorded but never checked.
func ParseHeader(buf []byte) (*model.Header, error) {
	hb := &pb.HeaderBlock{}
	if err := hb.Unmarshal(buf); err != nil {
		return nil, fmt.Errorf("unable to unmarshal header block: %w", err)
	}

	for _, f := range hb.RequiredFeatures {
		if _, ok := supportedFeatures[f]; !ok {
			return nil, fmt.Errorf("%q: %w", f, ErrUnrecognizedRequiredFeature)
		}
	}

	header := &model.Header{
		RequiredFeatures:                 hb.RequiredFeatures,
		OptionalFeatures:                 hb.OptionalFeatures,
		WritingProgram:                   hb.Writingprogram,
		Source:                           hb.Source,
		OsmosisReplicationBaseURL:        hb.OsmosisReplicationBaseURL,
		OsmosisReplicationSequenceNumber: hb.OsmosisReplicationSequenceNumber,
	}

	if hb.Bbox != nil {
		header.BoundingBox = &model.BoundingBox{
			Left:   model.ToDegrees(0, 1, hb.Bbox.Left),
			Right:  model.ToDegrees(0, 1, hb.Bbox.Right),
			Top:    model.ToDegrees(0, 1, hb.Bbox.Top),
			Bottom: model.ToDegrees(0, 1, hb.Bbox.Bottom),
		}
	}

	if hb.HasReplicationTimestamp {
		header.OsmosisReplicationTimestamp = time.Unix(hb.OsmosisReplicationTimestamp, 0)
	}

	return header, nil
}
