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

// Package monolog implements the bucketed, grow-on-demand array that
// underlies every storage component in the log store: the byte log, the
// offset log, and every posting list. Physical memory grows only as
// indices are touched; a fully populated bucket is never moved or
// reallocated once published.
//
// Two layouts are provided. The fine-grained layout (FineWords) doubles
// bucket size on every step and is meant for small, numerous arrays such
// as posting lists. The coarse-grained layout (CoarseBytes, CoarseWords)
// uses equal-sized buckets and backs the byte log and offset log, where
// one huge contiguous region is the natural unit of allocation.
//
// Every bucket pointer in this package is published with the same
// protocol: allocate a zeroed region, then CompareAndSwap the slot from
// nil to the new pointer with release ordering. A losing allocator
// discards its allocation and re-reads the slot with acquire ordering.
// This is invariant I5 from the log store's data model: a non-nil bucket
// slot always refers to a fully initialised child region.
package monolog

import (
	"math/bits"
	"sync/atomic"
)

// FineBucketShift is log2(FBS); FBS=16 per the fine-grained bucket layout.
const (
	FineBucketShift = 4
	fineBaseSize    = 1 << FineBucketShift // FBS = 16
	fineMaxBuckets  = 32
)

// fineBucketFor maps a logical index to (bucket, offsetInBucket) using the
// double-spaced layout: pos = i + FBS, bucket = floor(log2(pos)) - log2FBS,
// offset = pos xor 2^floor(log2(pos)).
func fineBucketFor(i uint64) (bucket int, offset int) {
	pos := i + fineBaseSize
	lg := bits.Len64(pos) - 1
	bucket = lg - FineBucketShift
	offset = int(pos ^ (uint64(1) << uint(lg)))
	return
}

// fineBucketSize returns the element count of bucket k: 2^(k+log2FBS).
func fineBucketSize(k int) uint64 {
	return uint64(1) << uint(k+FineBucketShift)
}

// Publish implements the exactly-once bucket/node publication protocol
// (I5): allocate, CAS from nil with release ordering, and on failure
// discard the loser's allocation and re-read with acquire ordering.
// Readers that load the same slot with acquire ordering always observe
// either nil or a fully-initialised region — never a partially
// constructed one. Exported so the tiered index can publish its node and
// leaf pointers with the same protocol used for bucket growth.
func Publish[T any](slot *atomic.Pointer[T], alloc func() *T) *T {
	if existing := slot.Load(); existing != nil {
		return existing
	}
	candidate := alloc()
	if slot.CompareAndSwap(nil, candidate) {
		return candidate
	}
	// lost the race: the loser's allocation is simply dropped for the GC.
	return slot.Load()
}
