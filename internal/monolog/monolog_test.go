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

import (
	"sync"
	"testing"
)

func TestFineBucketForIsMonotonic(t *testing.T) {
	prevBucket := -1
	for i := uint64(0); i < 1<<20; i++ {
		b, off := fineBucketFor(i)
		if b < prevBucket {
			t.Fatalf("bucket decreased at i=%d: %d -> %d", i, prevBucket, b)
		}
		if off < 0 || uint64(off) >= fineBucketSize(b) {
			t.Fatalf("offset %d out of range for bucket %d (size %d) at i=%d", off, b, fineBucketSize(b), i)
		}
		prevBucket = b
	}
}

func TestFineWordsSetGetRoundTrip(t *testing.T) {
	var w FineWords
	for i := uint64(0); i < 5000; i++ {
		w.Set(i, i*7+1)
	}
	for i := uint64(0); i < 5000; i++ {
		if got := w.Get(i); got != i*7+1 {
			t.Fatalf("index %d: got %d, want %d", i, got, i*7+1)
		}
	}
	if got := w.Get(999999); got != 0 {
		t.Fatalf("unwritten index should read back zero, got %d", got)
	}
}

func TestFineWordsConcurrentDistinctIndices(t *testing.T) {
	var w FineWords
	const n = 20000
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := g; i < n; i += 8 {
				w.Set(uint64(i), uint64(i))
			}
		}(g)
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		if got := w.Get(uint64(i)); got != uint64(i) {
			t.Fatalf("index %d: got %d, want %d", i, got, i)
		}
	}
}

func TestCoarseBytesWriteReadAcrossBuckets(t *testing.T) {
	c := NewCoarseBytes(64)
	data := make([]byte, 300)
	for i := range data {
		data[i] = byte(i)
	}
	c.EnsureAllocated(10, 10+uint64(len(data)))
	c.Write(10, data)

	got := make([]byte, len(data))
	c.Read(10, got)
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("byte %d: got %d, want %d", i, got[i], data[i])
		}
	}
}

func TestCoarseBytesReadUnwrittenIsZero(t *testing.T) {
	c := NewCoarseBytes(64)
	dst := make([]byte, 10)
	c.Read(1000, dst)
	for _, b := range dst {
		if b != 0 {
			t.Fatalf("expected zero-filled read of unwritten bucket, got %v", dst)
		}
	}
}

func TestCoarseWordsCompareAndSwap(t *testing.T) {
	c := NewCoarseWords(16)
	c.Set(5, 100)
	if !c.CompareAndSwap(5, 100, 200) {
		t.Fatal("expected CAS to succeed")
	}
	if c.CompareAndSwap(5, 100, 300) {
		t.Fatal("expected stale CAS to fail")
	}
	if got := c.Get(5); got != 200 {
		t.Fatalf("got %d, want 200", got)
	}
}

func TestBucketPublicationIsExactlyOnce(t *testing.T) {
	c := NewCoarseBytes(128)
	var wg sync.WaitGroup
	ptrs := make([]*[]byte, 32)
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ptrs[g] = c.ensureBucket(0)
		}(g)
	}
	wg.Wait()
	first := ptrs[0]
	for _, p := range ptrs {
		if p != first {
			t.Fatal("concurrent ensureBucket calls published distinct regions for the same slot")
		}
	}
}
