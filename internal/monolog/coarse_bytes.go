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

const coarseMaxBuckets = 1024

// CoarseBytes is the equal-sized-bucket byte array backing the byte log.
// All buckets are BucketSize bytes; bucket = i / BucketSize.
type CoarseBytes struct {
	BucketSize uint64
	buckets    [coarseMaxBuckets]atomic.Pointer[[]byte]
}

// NewCoarseBytes returns a CoarseBytes with the given bucket size.
func NewCoarseBytes(bucketSize uint64) *CoarseBytes {
	return &CoarseBytes{BucketSize: bucketSize}
}

func (c *CoarseBytes) bucketFor(i uint64) (bucket int, offset int) {
	bucket = int(i / c.BucketSize)
	offset = int(i % c.BucketSize)
	return
}

func (c *CoarseBytes) ensureBucket(b int) *[]byte {
	return Publish(&c.buckets[b], func() *[]byte {
		region := make([]byte, c.BucketSize)
		return &region
	})
}

// EnsureAllocated allocates every bucket covering the byte range [lo, hi).
func (c *CoarseBytes) EnsureAllocated(lo, hi uint64) {
	if hi <= lo {
		return
	}
	loBucket, _ := c.bucketFor(lo)
	hiBucket, _ := c.bucketFor(hi - 1)
	for b := loBucket; b <= hiBucket; b++ {
		c.ensureBucket(b)
	}
}

// Write copies n bytes from src into the array starting at offset,
// splitting the copy across bucket boundaries as needed. The caller is
// responsible for having called EnsureAllocated over the target range.
func (c *CoarseBytes) Write(offset uint64, src []byte) {
	remaining := src
	pos := offset
	for len(remaining) > 0 {
		b, off := c.bucketFor(pos)
		bucket := c.ensureBucket(b)
		n := copy((*bucket)[off:], remaining)
		remaining = remaining[n:]
		pos += uint64(n)
	}
}

// Read copies n bytes starting at offset into dst, splitting across bucket
// boundaries as needed. dst must have length n. Unallocated buckets read
// back as zero.
func (c *CoarseBytes) Read(offset uint64, dst []byte) {
	remaining := dst
	pos := offset
	for len(remaining) > 0 {
		b, off := c.bucketFor(pos)
		bucket := c.buckets[b].Load()
		if bucket == nil {
			// never written: zero-fill this bucket's worth
			n := len(remaining)
			if avail := int(c.BucketSize) - off; avail < n {
				n = avail
			}
			for i := 0; i < n; i++ {
				remaining[i] = 0
			}
			remaining = remaining[n:]
			pos += uint64(n)
			continue
		}
		n := copy(remaining, (*bucket)[off:])
		remaining = remaining[n:]
		pos += uint64(n)
	}
}

// ComputeSize reports the bytes currently held by allocated buckets.
func (c *CoarseBytes) ComputeSize() uint64 {
	var total uint64
	for b := 0; b < coarseMaxBuckets; b++ {
		if bucket := c.buckets[b].Load(); bucket != nil {
			total += uint64(len(*bucket))
		}
	}
	return total
}
