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

// Package offsetlog implements the publication boundary of the entire log
// store (spec component 4): a coarse monolog of packed (offset, length)
// words indexed by record id, plus the write_tail/read_tail pair whose
// relationship encodes invariants I1-I3.
package offsetlog

import (
	"sync/atomic"

	"github.com/launix-de/logengine/internal/monolog"
)

// MaxLength is the 16-bit cap on a single record's length (spec §4.4).
const MaxLength = 1<<16 - 1

// OffsetLog is the per-record-id array of (offset, length) entries plus
// the write/read tails that together form the visibility boundary.
type OffsetLog struct {
	words     *monolog.CoarseWords
	writeTail atomic.Uint64 // next record id to assign
	readTail  atomic.Uint64 // next record id to publish
}

// New returns an OffsetLog whose coarse buckets hold bucketSize entries
// each.
func New(bucketSize uint64) *OffsetLog {
	return &OffsetLog{words: monolog.NewCoarseWords(bucketSize)}
}

func pack(offset uint64, length uint16) uint64 {
	return (uint64(length) << 48) | (offset & (1<<48 - 1))
}

func unpack(word uint64) (offset uint64, length uint16) {
	offset = word & (1<<48 - 1)
	length = uint16(word >> 48)
	return
}

// BeginAppend assigns the next record id, packs and stores its
// offset/length word, and returns the id. The id is not yet visible to
// readers; the caller must call EndAppend to publish it.
func (o *OffsetLog) BeginAppend(byteOffset uint64, length uint16) uint64 {
	id := o.writeTail.Add(1) - 1
	o.words.Set(id, pack(byteOffset, length))
	return id
}

// EndAppend publishes id by spinning on a CAS that advances read_tail
// from id to id+1, re-reading the expected value on failure. Because the
// CAS only succeeds when read_tail already equals id, publication order
// is forced to equal id-assignment order (I1-I3): an insert whose id is r
// cannot publish before the insert for r-1 has published. The wait is
// bounded by the slowest in-flight insert immediately below this id.
func (o *OffsetLog) EndAppend(id uint64) {
	for !o.readTail.CompareAndSwap(id, id+1) {
		// spin: the predecessor record hasn't published yet.
	}
}

// ReserveIDs assigns a contiguous batch of n ids via fetch-add and
// pre-allocates the underlying array range, returning the first id.
func (o *OffsetLog) ReserveIDs(n uint64) uint64 {
	start := o.writeTail.Add(n) - n
	o.words.EnsureAllocated(start, start+n)
	return start
}

// EndAppendRange publishes a contiguous batch [start, start+n) in one CAS,
// exactly once, analogous to EndAppend but for the batch path.
func (o *OffsetLog) EndAppendRange(start, n uint64) {
	for !o.readTail.CompareAndSwap(start, start+n) {
		// spin: an earlier batch or single insert hasn't published yet.
	}
}

// Lookup returns the (offset, length) pair stored for record id.
func (o *OffsetLog) Lookup(id uint64) (offset uint64, length uint16) {
	return unpack(o.words.Get(id))
}

// IsVisible reports whether id is strictly less than the current
// read_tail (I2).
func (o *OffsetLog) IsVisible(id uint64) bool {
	return id < o.readTail.Load()
}

// IsVisibleAt reports whether id is strictly less than a caller-supplied
// ceiling, for use by snapshot iterators (spec §4.4).
func (o *OffsetLog) IsVisibleAt(id, ceiling uint64) bool {
	return id < ceiling
}

// NumVisible returns the acquire-loaded read_tail: the number of
// published, visible records.
func (o *OffsetLog) NumVisible() uint64 {
	return o.readTail.Load()
}

// WriteTail returns the number of record ids assigned so far, including
// any not yet published. Exposed for diagnostics and tests; callers
// needing the visible count must use NumVisible.
func (o *OffsetLog) WriteTail() uint64 {
	return o.writeTail.Load()
}

// ComputeSize reports the bytes of physical memory currently allocated.
func (o *OffsetLog) ComputeSize() uint64 {
	return o.words.ComputeSize()
}
