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

package monolog

import "sync/atomic"

// FineWords is the fine-grained growable array of 64-bit words used by
// posting lists: bucket sizes double at every step (FBS=16), so small
// posting lists stay cheap while the structure can still grow to roughly
// 2^36 entries across its 32 buckets.
type FineWords struct {
	buckets [fineMaxBuckets]atomic.Pointer[[]atomic.Uint64]
}

// EnsureAllocated allocates every bucket covering [lo, hi).
func (w *FineWords) EnsureAllocated(lo, hi uint64) {
	if hi <= lo {
		return
	}
	loBucket, _ := fineBucketFor(lo)
	hiBucket, _ := fineBucketFor(hi - 1)
	for b := loBucket; b <= hiBucket; b++ {
		w.ensureBucket(b)
	}
}

func (w *FineWords) ensureBucket(b int) *[]atomic.Uint64 {
	return Publish(&w.buckets[b], func() *[]atomic.Uint64 {
		size := fineBucketSize(b)
		region := make([]atomic.Uint64, size)
		return &region
	})
}

// Get returns the value at index i with acquire ordering on the element.
func (w *FineWords) Get(i uint64) uint64 {
	b, off := fineBucketFor(i)
	bucket := w.buckets[b].Load()
	if bucket == nil {
		return 0
	}
	return (*bucket)[off].Load()
}

// Set stores v at index i with release ordering on the element, allocating
// the covering bucket first if needed.
func (w *FineWords) Set(i uint64, v uint64) {
	b, off := fineBucketFor(i)
	bucket := w.ensureBucket(b)
	(*bucket)[off].Store(v)
}

// ComputeSize reports the bytes currently held by allocated buckets, for
// storage_footprint() reporting.
func (w *FineWords) ComputeSize() uint64 {
	var total uint64
	for b := 0; b < fineMaxBuckets; b++ {
		if bucket := w.buckets[b].Load(); bucket != nil {
			total += uint64(len(*bucket)) * 8
		}
	}
	return total
}
