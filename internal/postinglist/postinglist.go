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

// Package postinglist implements the append-only sequence of record ids
// under one (index, token value) key (spec component 3). Two consistency
// modes are provided, both built on the same fine-grained monolog of
// 64-bit words:
//
//   - Relaxed: used by secondary-index postings. push_back claims a slot
//     via fetch-add and stores into it; Size() returns the claimed tail
//     immediately, so a concurrent reader can observe a size that counts
//     a slot whose store has not landed yet. Such a slot reads back as
//     ^uint64(0), which is at or above any visibility ceiling, so a reader
//     that also checks the record id against its own ceiling never acts on
//     a torn read (I6): the record itself only becomes visible after every
//     index entry for it has been written.
//   - Consistent: used by streams. A second read_tail only advances (via
//     CAS) after the element's store has completed, so Size() never
//     exposes a reserved-but-unwritten slot.
package postinglist

import (
	"sync/atomic"

	"github.com/launix-de/logengine/internal/monolog"
)

// Relaxed is the posting-list variant used for secondary-index entries.
type Relaxed struct {
	words monolog.FineWords
	tail  atomic.Uint64
}

// PushBack appends r and returns the index it was written to.
func (p *Relaxed) PushBack(r uint64) uint64 {
	idx := p.tail.Add(1) - 1
	// stored as r+1 so that an unwritten (zero) slot is distinguishable
	p.words.Set(idx, r+1)
	return idx
}

// Size returns the current tail with acquire ordering. Per spec §4.3 this
// may include a slot whose store has not yet landed (I6).
func (p *Relaxed) Size() uint64 {
	return p.tail.Load()
}

// Get returns the value at index k. If k is claimed but the writer's store
// has not landed yet, the result is ^uint64(0) until the writer catches
// up; callers that need a consistency guarantee must use the Consistent
// variant or cross-check against an externally supplied ceiling (I6).
func (p *Relaxed) Get(k uint64) uint64 {
	return p.words.Get(k) - 1
}

// ComputeSize reports the bytes of physical memory currently allocated.
func (p *Relaxed) ComputeSize() uint64 {
	return p.words.ComputeSize()
}

// Consistent is the posting-list variant used for streams: Size() never
// exposes a reserved-but-unwritten slot.
type Consistent struct {
	words    monolog.FineWords
	tail     atomic.Uint64 // write tail: next slot to claim
	readTail atomic.Uint64 // publication tail: next slot visible to readers
}

// PushBack claims a slot, writes r, then publishes the slot by spinning on
// a CAS of readTail — the same bounded spin the offset log uses in
// end_append, so publication order equals claim order.
func (p *Consistent) PushBack(r uint64) uint64 {
	idx := p.tail.Add(1) - 1
	p.words.Set(idx, r)
	for !p.readTail.CompareAndSwap(idx, idx+1) {
		// another claimant ahead of us hasn't published yet; spin.
	}
	return idx
}

// Size returns the number of published elements (acquire read of readTail).
func (p *Consistent) Size() uint64 {
	return p.readTail.Load()
}

// Get returns the value at index k. Valid for k < Size().
func (p *Consistent) Get(k uint64) uint64 {
	return p.words.Get(k)
}

// ComputeSize reports the bytes of physical memory currently allocated.
func (p *Consistent) ComputeSize() uint64 {
	return p.words.ComputeSize()
}
