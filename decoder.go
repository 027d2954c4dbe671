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

// Package pbf reads the OpenStreetMap PBF exchange format: a stream of
// length-prefixed, optionally compressed blobs holding a header block and
// primitive blocks of densely encoded nodes, ways, and relations.
//
// A Decoder exposes the stream as a lazy, forward-only sequence of
// model.Entity values.  Decoding is eager within a block and lazy across
// blocks, so peak memory stays near one block's worth of entities no
// matter how large the file is.  With WithNCpus(n) for n > 1, whole blocks
// are decoded on background workers with their order preserved.
package pbf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"

	"github.com/destel/rill"

	"github.com/osm-tools/pbf/internal/decoder"
	"github.com/osm-tools/pbf/model"
)

// Decoder reads and decodes OpenStreetMap entities from a PBF input stream.
type Decoder struct {
	// Header is the stream's header block.  It stays zero for the rare
	// stream that carries no OSMHeader blob.
	Header model.Header

	cfg    decoderOptions
	ctx    context.Context
	cancel context.CancelFunc
	reader io.Reader

	pending  *decoder.Blob // first data blob of a headerless stream
	pipeline <-chan rill.Try[[]model.Entity]

	buffer []model.Entity
	pos    int
	err    error

	closeOnce sync.Once
}

// NewDecoder returns a new decoder, configured with options, that reads
// from rdr.  The leading OSMHeader blob, when present, is decoded eagerly
// so Header is populated before the first Decode call; its required
// features are validated here, before any primitive block is touched.
func NewDecoder(ctx context.Context, rdr io.Reader, opts ...DecoderOption) (*Decoder, error) {
	cfg := defaultDecoderConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Decoder{cfg: cfg, reader: rdr}
	if err := d.init(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Decoder) init(ctx context.Context) error {
	blob, err := decoder.ReadBlob(d.reader)

	switch {
	case errors.Is(err, io.EOF):
		d.err = io.EOF
	case err != nil:
		return err
	case blob.Type == decoder.BlockTypeHeader:
		data, err := decoder.Unpack(blob.Blob)
		if err != nil {
			return err
		}

		header, err := decoder.ParseHeader(data)
		if err != nil {
			return err
		}

		d.Header = *header
	default:
		d.pending = blob
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	if d.cfg.nCPU > 1 && d.err == nil {
		d.pipeline = d.startPipeline()
	}

	return nil
}

// Decode returns the next entity in stream order.  The end of the input is
// reported by io.EOF; any other error is fatal and repeated on subsequent
// calls.
func (d *Decoder) Decode() (model.Entity, error) {
	for d.pos >= len(d.buffer) {
		if d.err != nil {
			return nil, d.err
		}

		var (
			entities []model.Entity
			err      error
		)

		if d.pipeline != nil {
			entities, err = d.nextBatch()
		} else {
			entities, err = d.nextBlock()
		}

		if err != nil {
			d.err = err

			return nil, err
		}

		d.buffer = entities
		d.pos = 0
	}

	e := d.buffer[d.pos]
	d.pos++

	return e, nil
}

// nextBlock reads and decodes blobs in-line until one yields entities.
func (d *Decoder) nextBlock() ([]model.Entity, error) {
	for {
		if err := d.ctx.Err(); err != nil {
			return nil, err
		}

		blob := d.pending
		d.pending = nil

		if blob == nil {
			var err error

			blob, err = decoder.ReadBlob(d.reader)
			if err != nil {
				return nil, err
			}
		}

		entities, err := decoder.DecodeBlob(blob)
		if err != nil {
			return nil, err
		}

		if len(entities) > 0 {
			return entities, nil
		}
	}
}

// nextBatch pulls the next decoded block off the background pipeline.
func (d *Decoder) nextBatch() ([]model.Entity, error) {
	res, ok := <-d.pipeline
	if !ok {
		return nil, io.EOF
	}

	if res.Error != nil {
		return nil, res.Error
	}

	return res.Value, nil
}

// startPipeline fans blob decoding out over nCPU workers.  Blobs are read
// sequentially, batched, decoded concurrently, and re-emitted in their
// original order.
func (d *Decoder) startPipeline() <-chan rill.Try[[]model.Entity] {
	blobs := make(chan rill.Try[*decoder.Blob], d.cfg.batchSize)

	pending := d.pending
	d.pending = nil

	go func() {
		defer close(blobs)

		if pending != nil {
			select {
			case <-d.ctx.Done():
				return
			case blobs <- rill.Try[*decoder.Blob]{Value: pending}:
			}
		}

		for blob, err := range decoder.GenerateBlobs(d.ctx, d.reader) {
			select {
			case <-d.ctx.Done():
				return
			case blobs <- rill.Try[*decoder.Blob]{Value: blob, Error: err}:
			}
		}
	}()

	batches := rill.Batch(blobs, d.cfg.batchSize, -1)

	return rill.OrderedFlatMap(batches, int(d.cfg.nCPU), decoder.DecodeBatch)
}

// Close cancels any background decoding and makes further Decode calls
// return io.EOF.  It is safe to call more than once.
func (d *Decoder) Close() {
	d.closeOnce.Do(func() {
		d.cancel()

		if d.pipeline != nil {
			pipeline := d.pipeline

			go func() {
				for range pipeline {
				}
			}()
		}

		d.buffer = nil
		d.pos = 0

		if d.err == nil {
			d.err = io.EOF
		}
	})
}

// Reset rewinds the decoder to the start of the stream and replays it.  It
// requires the underlying source to implement io.Seeker and otherwise
// reports an error.
func (d *Decoder) Reset(ctx context.Context) error {
	seeker, ok := d.reader.(io.Seeker)
	if !ok {
		return fmt.Errorf("source of type %T is not seekable", d.reader)
	}

	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return err
	}

	d.cancel()

	if d.pipeline != nil {
		for range d.pipeline {
		}

		d.pipeline = nil
	}

	d.Header = model.Header{}
	d.pending = nil
	d.buffer = nil
	d.pos = 0
	d.err = nil
	d.closeOnce = sync.Once{}

	return d.init(ctx)
}

// All returns the remaining entities as a single-use iterator.  Iteration
// ends at the end of the stream or right after the first error.
func (d *Decoder) All() iter.Seq2[model.Entity, error] {
	return func(yield func(model.Entity, error) bool) {
		for {
			e, err := d.Decode()
			if errors.Is(err, io.EOF) {
				return
			}

			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// Tagged filters All down to entities with at least one tag.
func (d *Decoder) Tagged() iter.Seq2[model.Entity, error] {
	return filtered(d.All(), func(e model.Entity) bool {
		return !e.GetTags().Empty()
	})
}

// Untagged filters All down to entities with no tags.
func (d *Decoder) Untagged() iter.Seq2[model.Entity, error] {
	return filtered(d.All(), func(e model.Entity) bool {
		return e.GetTags().Empty()
	})
}

func filtered(seq iter.Seq2[model.Entity, error], keep func(model.Entity) bool) iter.Seq2[model.Entity, error] {
	return func(yield func(model.Entity, error) bool) {
		for e, err := range seq {
			if err != nil {
				yield(nil, err)

				return
			}

			if keep(e) && !yield(e, nil) {
				return
			}
		}
	}
}
