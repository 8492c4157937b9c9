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

// Package stream implements the derived posting list fed by a filter
// predicate invoked on every insert (spec component 6). A stream pairs a
// caller-supplied predicate with a posting list in the consistent
// concurrency mode, so a reader's Size() never exposes a record id whose
// predicate evaluation raced ahead of its publication.
package stream

import "github.com/launix-de/logengine/internal/postinglist"

// Predicate decides whether a freshly inserted record should be appended
// to a stream's posting list. It is invoked synchronously, on the
// inserting goroutine, once per insert, and must be pure and side-effect
// free: it may be called concurrently from arbitrary writer goroutines
// and must not block.
type Predicate func(recordID uint64, payload []byte, tokens map[uint32]uint64) bool

// Stream is a (predicate, posting_list) pair. The log store appends to
// Matches via Evaluate; readers use Size and Get.
type Stream struct {
	Pred    Predicate
	Matches postinglist.Consistent
}

// New returns a Stream that will append to Matches whenever pred returns
// true.
func New(pred Predicate) *Stream {
	return &Stream{Pred: pred}
}

// Evaluate runs the predicate against one freshly-reserved record and, if
// it matches, appends the record id to the stream's posting list. Called
// by the log store once per insert, before the record is published.
func (s *Stream) Evaluate(recordID uint64, payload []byte, tokens map[uint32]uint64) {
	if s.Pred(recordID, payload, tokens) {
		s.Matches.PushBack(recordID)
	}
}

// Size reports the number of published matches.
func (s *Stream) Size() uint64 {
	return s.Matches.Size()
}

// Get returns the k-th matching record id. Valid for k < Size().
func (s *Stream) Get(k uint64) uint64 {
	return s.Matches.Get(k)
}

// ComputeSize reports the bytes of physical memory currently allocated by
// the stream's posting list.
func (s *Stream) ComputeSize() uint64 {
	return s.Matches.ComputeSize()
}
