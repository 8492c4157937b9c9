/*
Copyright (C) 2026  LogEngine Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package logstore implements the orchestrator (spec component 7): it
// owns the byte log, the offset log, the index registry, and the stream
// registry, and drives the insert/get/extract/filter protocol across
// them. It is the only component that knows how to turn a raw index_id
// back into a (width class, slot) pair.
package logstore

import (
	"fmt"
	"sync"

	"github.com/docker/go-units"
	"github.com/google/uuid"

	"github.com/launix-de/logengine/internal/bytelog"
	"github.com/launix-de/logengine/internal/errs"
	"github.com/launix-de/logengine/internal/offsetlog"
	"github.com/launix-de/logengine/internal/postinglist"
	"github.com/launix-de/logengine/internal/stream"
	"github.com/launix-de/logengine/internal/tieredindex"
)

// minDivisor is the fixed minimum used to split an index_id into its
// width class and its slot within that class: class = id / minDivisor,
// slot = id % minDivisor (spec §3 index descriptor).
const minDivisor = 1024

// classOf returns the width class code for a token width in 1..8:
// 1, 2, 4, 8, 16, 32, 64, 128 respectively (base(w) = 2^(w-1)).
func classOf(width int) uint32 {
	return uint32(1) << uint(width-1)
}

// Options configures the component sizes a Store allocates internally.
type Options struct {
	ByteLogBucketSize   uint64
	OffsetLogBucketSize uint64
}

// DefaultOptions holds the same bucket sizes as pkg/options' defaults
// (DefaultByteLogBucketSize, DefaultOffsetLogBucketSize), a reasonable
// default for small-to-medium logs.
var DefaultOptions = Options{
	ByteLogBucketSize:   1 << 20,
	OffsetLogBucketSize: 1 << 16,
}

// indexSlot pairs a tiered index with the token width it was created for.
type indexSlot struct {
	width int
	idx   *tieredindex.Index
}

// Store is the log store orchestrator.
type Store struct {
	ID      uuid.UUID // labels this instance's persistence segments and diagnostics
	opts    Options
	bytes   *bytelog.ByteLog
	offsets *offsetlog.OffsetLog

	mu      sync.Mutex             // guards slots and streams registries only; hot path never takes it
	slots   map[uint32][]indexSlot // class -> slots, in creation order
	streams []*stream.Stream
}

// New returns an empty Store configured with opts.
func New(opts Options) *Store {
	return &Store{
		ID:      newStoreID(),
		opts:    opts,
		bytes:   bytelog.New(opts.ByteLogBucketSize),
		offsets: offsetlog.New(opts.OffsetLogBucketSize),
		slots:   make(map[uint32][]indexSlot),
	}
}

// Options returns the configuration the store was constructed with, for
// use by a persistence collaborator that needs matching bucket sizes to
// reconstruct a snapshot.
func (s *Store) Options() Options {
	return s.opts
}

// AddIndex registers a new tiered index over tokens of the given width
// (1..8 bytes) and returns its index_id. Returns 0 if width is out of
// range.
func (s *Store) AddIndex(width int) uint32 {
	if width < tieredindex.MinWidth || width > tieredindex.MaxWidth {
		return 0
	}
	class := classOf(width)
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := uint32(len(s.slots[class]))
	s.slots[class] = append(s.slots[class], indexSlot{width: width, idx: tieredindex.New(width)})
	return class*minDivisor + slot
}

// AddStream registers pred as a new stream and returns its stream_id (an
// index into the stream registry).
func (s *Store) AddStream(pred stream.Predicate) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streams = append(s.streams, stream.New(pred))
	return uint32(len(s.streams) - 1)
}

// Stream returns the stream registered under id, or nil if id is unknown.
func (s *Store) Stream(id uint32) *stream.Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(id) >= len(s.streams) {
		return nil
	}
	return s.streams[id]
}

// index resolves an index_id back to its tiered index, or nil if unknown.
func (s *Store) index(indexID uint32) *tieredindex.Index {
	class := indexID / minDivisor
	slot := indexID % minDivisor
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := s.slots[class]
	if int(slot) >= len(slots) {
		return nil
	}
	return slots[slot].idx
}

// IndexInfo is a read-only snapshot of one registered index, returned by
// Indexes for diagnostics.
type IndexInfo struct {
	IndexID uint32
	Width   int
}

// Indexes returns a snapshot of every registered index, in registration
// order within each width class.
func (s *Store) Indexes() []IndexInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []IndexInfo
	for class, slots := range s.slots {
		for slot, is := range slots {
			out = append(out, IndexInfo{IndexID: class*minDivisor + uint32(slot), Width: is.width})
		}
	}
	return out
}

// Streams returns the number of registered streams. Streams carry no
// further descriptive metadata (a predicate is an opaque function), so
// the stream_id values themselves (0..Streams()-1) are the registry.
func (s *Store) Streams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams)
}

// IndexWidth returns the token width an index_id was created with, and
// whether indexID is known.
func (s *Store) IndexWidth(indexID uint32) (int, bool) {
	class := indexID / minDivisor
	slot := indexID % minDivisor
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := s.slots[class]
	if int(slot) >= len(slots) {
		return 0, false
	}
	return slots[slot].width, true
}

// Token is one (index_id, value) pair attached to a record at insert
// time.
type Token struct {
	IndexID uint32
	Value   uint64
}

// Insert appends a new record, dispatches its tokens to the relevant
// indexes, evaluates every registered stream, and publishes the record.
// It implements the six-step protocol of spec §4.7, and is the
// linearisation point (step 6) for every invariant in §3.
func (s *Store) Insert(payload []byte, tokens []Token) (uint64, error) {
	if len(payload) == 0 {
		return 0, errs.ErrEmptyRecord
	}
	if len(payload) > offsetlog.MaxLength {
		return 0, errs.ErrRecordTooLarge
	}

	offset, err := s.bytes.Reserve(uint64(len(payload)))
	if err != nil {
		return 0, err
	}
	recordID := s.offsets.BeginAppend(offset, uint16(len(payload)))

	s.bytes.Write(offset, payload)

	tokenMap := make(map[uint32]uint64, len(tokens))
	for _, tok := range tokens {
		tokenMap[tok.IndexID] = tok.Value
		if idx := s.index(tok.IndexID); idx != nil {
			idx.AddEntry(tok.Value, recordID)
		}
	}

	s.mu.Lock()
	streams := s.streams
	s.mu.Unlock()
	for _, st := range streams {
		st.Evaluate(recordID, payload, tokenMap)
	}

	s.offsets.EndAppend(recordID)
	return recordID, nil
}

// Get copies record id's payload into buf and returns true, or returns
// false if id is not yet visible. buf must be exactly the record's
// length; callers that don't know the length ahead of time should use
// Extract.
func (s *Store) Get(id uint64, buf []byte) bool {
	if !s.offsets.IsVisible(id) {
		return false
	}
	offset, length := s.offsets.Lookup(id)
	if uint16(len(buf)) != length {
		buf = buf[:length]
	}
	s.bytes.Read(offset, buf)
	return true
}

// Extract copies up to len bytes of record id, starting at off, into buf,
// clamping len to the record's actual remaining length. It returns
// whether the record was visible and the number of bytes actually copied.
func (s *Store) Extract(id uint64, off uint64, length uint64, buf []byte) (bool, uint64) {
	if !s.offsets.IsVisible(id) {
		return false, 0
	}
	offset, recordLen := s.offsets.Lookup(id)
	if off >= uint64(recordLen) {
		return true, 0
	}
	remaining := uint64(recordLen) - off
	if length > remaining {
		length = remaining
	}
	s.bytes.Read(offset+off, buf[:length])
	return true, length
}

// NumRecords returns the number of currently visible (published) records.
func (s *Store) NumRecords() uint64 {
	return s.offsets.NumVisible()
}

// Size returns the number of bytes reserved in the byte log.
func (s *Store) Size() uint64 {
	return s.bytes.Size()
}

// Filter returns a lazy, snapshot-consistent iterator over every visible
// record id carrying a token in [vLo, vHi] under indexID. Returns an
// iterator that yields nothing if indexID names no known index.
func (s *Store) Filter(indexID uint32, vLo, vHi uint64) *Iterator {
	ceiling := s.offsets.NumVisible()
	idx := s.index(indexID)
	if idx == nil {
		return newIterator(nil, ceiling)
	}
	var leaves []*postinglist.Relaxed
	idx.PopulatedLeaves(vLo, vHi, func(value uint64, pl *postinglist.Relaxed) {
		leaves = append(leaves, pl)
	})
	return newIterator(leaves, ceiling)
}

// StorageFootprint reports the physical memory held by each component,
// for diagnostics and capacity planning.
type StorageFootprint struct {
	ByteLogBytes   uint64
	OffsetLogBytes uint64
	IndexBytes     uint64
	StreamBytes    uint64
}

// Total sums every component's footprint.
func (f StorageFootprint) Total() uint64 {
	return f.ByteLogBytes + f.OffsetLogBytes + f.IndexBytes + f.StreamBytes
}

// String renders a human-readable breakdown, e.g. "12MiB (bytes=8MiB
// offsets=2MiB index=1.5MiB streams=512KiB)".
func (f StorageFootprint) String() string {
	return fmt.Sprintf("%s (bytes=%s offsets=%s index=%s streams=%s)",
		units.BytesSize(float64(f.Total())),
		units.BytesSize(float64(f.ByteLogBytes)),
		units.BytesSize(float64(f.OffsetLogBytes)),
		units.BytesSize(float64(f.IndexBytes)),
		units.BytesSize(float64(f.StreamBytes)))
}

// ByteLogBytes returns a fresh copy of every byte reserved in the byte
// log, for use by a persistence collaborator taking a snapshot.
func (s *Store) ByteLogBytes() []byte {
	buf := make([]byte, s.bytes.Size())
	s.bytes.Read(0, buf)
	return buf
}

// OffsetLog exposes the underlying offset log for a persistence
// collaborator. The returned pointer must only be used for reads.
func (s *Store) OffsetLog() *offsetlog.OffsetLog {
	return s.offsets
}

// IndexesRaw returns every registered tiered index keyed by its
// index_id, for use by a persistence collaborator taking a snapshot.
func (s *Store) IndexesRaw() map[uint32]*tieredindex.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint32]*tieredindex.Index)
	for class, slots := range s.slots {
		for slot, is := range slots {
			out[class*minDivisor+uint32(slot)] = is.idx
		}
	}
	return out
}

// StreamsRaw returns every registered stream, in stream_id order, for
// use by a persistence collaborator taking a snapshot.
func (s *Store) StreamsRaw() []*stream.Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*stream.Stream, len(s.streams))
	copy(out, s.streams)
	return out
}

// StorageFootprint computes the current physical memory footprint across
// every component.
func (s *Store) StorageFootprint() StorageFootprint {
	f := StorageFootprint{
		ByteLogBytes:   s.bytes.ComputeSize(),
		OffsetLogBytes: s.offsets.ComputeSize(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slots := range s.slots {
		for _, slot := range slots {
			f.IndexBytes += slot.idx.ComputeSize()
		}
	}
	for _, st := range s.streams {
		f.StreamBytes += st.ComputeSize()
	}
	return f
}
