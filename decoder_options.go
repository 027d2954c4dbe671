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
	"runtime"
)

const (
	// DefaultBatchSize is the default number of blobs handed to a worker
	// at a time when decoding in parallel.
	DefaultBatchSize = 16
)

// DefaultNCpu provides a reasonable worker count for parallel decoding.
func DefaultNCpu() uint16 {
	cpus := uint16(runtime.GOMAXPROCS(-1))

	return max(cpus-1, 1)
}

// decoderOptions provides optional configuration parameters for Decoder construction.
type decoderOptions struct {
	batchSize int    // blobs per worker batch
	nCPU      uint16 // workers decoding blocks; 1 keeps decoding lazy and in-line
}

// DecoderOption configures how we set up the decoder.
type DecoderOption func(*decoderOptions)

// WithBatchSize sets the number of blobs handed to a worker at a time.  It
// only matters with more than one CPU.
func WithBatchSize(s int) DecoderOption {
	return func(o *decoderOptions) {
		if s > 0 {
			o.batchSize = s
		}
	}
}

// WithNCpus sets the number of CPUs used for background block decoding.
// With the default of one, blocks are decoded in-line, one per pull, and
// never ahead of the consumer.
func WithNCpus(n uint16) DecoderOption {
	return func(o *decoderOptions) {
		if n > 0 {
			o.nCPU = n
		}
	}
}

// defaultDecoderConfig provides a default configuration for decoders.
var defaultDecoderConfig = decoderOptions{
	batchSize: DefaultBatchSize,
	nCPU:      1,
}
