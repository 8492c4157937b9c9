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

// CoarseWords is the equal-sized-bucket array of 64-bit words backing the
// offset log: one packed (offset,length) word per record id.
type CoarseWords struct {
	BucketSize uint64
	buckets    [coarseMaxBuckets]atomic.Pointer[[]atomic.Uint64]
}

// NewCoarseWords returns a CoarseWords with the given bucket size (entries
// per bucket).
func NewCoarseWords(bucketSize uint64) *CoarseWords {
	return &CoarseWords{BucketSize: bucketSize}
}

func (c *CoarseWords) bucketFor(i uint64) (bucket int, offset int) {
	bucket = int(i / c.BucketSize)
	offset = int(i % c.BucketSize)
	return
}

func (c *CoarseWords) ensureBucket(b int) *[]atomic.Uint64 {
	return Publish(&c.buckets[b], func() *[]atomic.Uint64 {
		region := make([]atomic.Uint64, c.BucketSize)
		return &region
	})
}

// EnsureAllocated allocates every bucket covering the index range [lo, hi).
func (c *CoarseWords) EnsureAllocated(lo, hi uint64) {
	if hi <= lo {
		return
	}
	loBucket, _ := c.bucketFor(lo)
	hiBucket, _ := c.bucketFor(hi - 1)
	for b := loBucket; b <= hiBucket; b++ {
		c.ensureBucket(b)
	}
}

// Get loads the word at index i with acquire ordering. Unallocated buckets
// read back as zero.
func (c *CoarseWords) Get(i uint64) uint64 {
	b, off := c.bucketFor(i)
	bucket := c.buckets[b].Load()
	if bucket == nil {
		return 0
	}
	return (*bucket)[off].Load()
}

// Set stores v at index i with release ordering, allocating the covering
// bucket first if needed.
func (c *CoarseWords) Set(i uint64, v uint64) {
	b, off := c.bucketFor(i)
	bucket := c.ensureBucket(b)
	(*bucket)[off].Store(v)
}

// CompareAndSwap performs an atomic CAS on the word at index i.
func (c *CoarseWords) CompareAndSwap(i uint64, old, new uint64) bool {
	b, off := c.bucketFor(i)
	bucket := c.ensureBucket(b)
	return (*bucket)[off].CompareAndSwap(old, new)
}

// ComputeSize reports the bytes currently held by allocated buckets.
func (c *CoarseWords) ComputeSize() uint64 {
	var total uint64
	for b := 0; b < coarseMaxBuckets; b++ {
		if bucket := c.buckets[b].Load(); bucket != nil {
			total += uint64(len(*bucket)) * 8
		}
	}
	return total
}
