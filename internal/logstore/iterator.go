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

package logstore

import "github.com/launix-de/logengine/internal/postinglist"

// Iterator is the lazy, lock-free cursor returned by Store.Filter (spec
// component 8). It walks the leaves of one tiered index that overlap a
// token range, in ascending token order, yielding only record ids below
// the ceiling snapshotted at construction time.
//
// A relaxed posting list's insertion order need not match numeric record
// id order across concurrent inserters, so the cursor cannot simply stop
// the first time it sees an id at or past the ceiling: it must keep
// scanning the rest of that leaf, skipping ids past the ceiling, because
// an older (sub-ceiling) id can legitimately appear later in the array.
type Iterator struct {
	leaves  []*postinglist.Relaxed
	ceiling uint64
	leafPos int
	elemPos uint64
	done    bool
}

func newIterator(leaves []*postinglist.Relaxed, ceiling uint64) *Iterator {
	if len(leaves) == 0 {
		return &Iterator{done: true}
	}
	return &Iterator{leaves: leaves, ceiling: ceiling}
}

// Next returns the next visible record id and true, or (0, false) once
// the range is exhausted.
func (it *Iterator) Next() (uint64, bool) {
	if it.done {
		return 0, false
	}
	for it.leafPos < len(it.leaves) {
		pl := it.leaves[it.leafPos]
		if it.elemPos >= pl.Size() {
			it.leafPos++
			it.elemPos = 0
			continue
		}
		id := pl.Get(it.elemPos)
		it.elemPos++
		if id >= it.ceiling {
			continue
		}
		return id, true
	}
	it.done = true
	return 0, false
}

// NextBatch pulls up to n ids at once, returning fewer than n only when
// the range is exhausted.
func (it *Iterator) NextBatch(n int) []uint64 {
	out := make([]uint64, 0, n)
	for len(out) < n {
		id, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, id)
	}
	return out
}

// IsFinished reports whether the iterator has no more ids to yield. It
// may transition from false to true purely as a byproduct of a prior
// Next() call discovering that every remaining leaf is exhausted.
func (it *Iterator) IsFinished() bool {
	return it.done
}
