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

import (
	"strings"
	"sync"
	"testing"

	"github.com/launix-de/logengine/internal/errs"
)

func smallOptions() Options {
	return Options{ByteLogBucketSize: 4096, OffsetLogBucketSize: 64}
}

// S1: single insert, single get.
func TestSingleInsertSingleGet(t *testing.T) {
	s := New(smallOptions())
	idx := s.AddIndex(2)
	if idx < 65536 {
		t.Fatalf("idx = %d, want >= 65536", idx)
	}
	id, err := s.Insert([]byte{0x41, 0x42, 0x43}, []Token{{IndexID: idx, Value: 258}})
	if err != nil || id != 0 {
		t.Fatalf("insert: id=%d err=%v", id, err)
	}
	buf := make([]byte, 3)
	if ok := s.Get(0, buf); !ok {
		t.Fatal("get(0) = false")
	}
	if string(buf) != "ABC" {
		t.Fatalf("got %q, want ABC", buf)
	}
	if s.NumRecords() != 1 {
		t.Fatalf("num_records = %d, want 1", s.NumRecords())
	}
}

// S2: range filter.
func TestRangeFilter(t *testing.T) {
	s := New(smallOptions())
	idx := s.AddIndex(1)
	for i := 0; i < 100; i++ {
		if _, err := s.Insert([]byte{byte(i)}, []Token{{IndexID: idx, Value: uint64(i)}}); err != nil {
			t.Fatal(err)
		}
	}
	it := s.Filter(idx, 10, 19)
	got := map[uint64]bool{}
	for {
		id, ok := it.Next()
		if !ok {
			break
		}
		got[id] = true
	}
	if len(got) != 10 {
		t.Fatalf("got %d ids, want 10", len(got))
	}
	for id := uint64(10); id <= 19; id++ {
		if !got[id] {
			t.Fatalf("missing record id %d", id)
		}
	}
}

// S3: stream.
func TestStreamMultiplesOfTen(t *testing.T) {
	s := New(smallOptions())
	sid := s.AddStream(func(r uint64, payload []byte, tokens map[uint32]uint64) bool {
		return len(payload) > 0 && payload[0]%10 == 0
	})
	for i := 0; i < 100; i++ {
		if _, err := s.Insert([]byte{byte(i)}, nil); err != nil {
			t.Fatal(err)
		}
	}
	st := s.Stream(sid)
	if st.Size() != 10 {
		t.Fatalf("stream size = %d, want 10", st.Size())
	}
}

// S4 (scaled down): concurrent inserters.
func TestConcurrentInserters(t *testing.T) {
	s := New(smallOptions())
	idx := s.AddIndex(1)
	const threads = 4
	const perThread = 500
	var wg sync.WaitGroup
	for g := 0; g < threads; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perThread; i++ {
				if _, err := s.Insert([]byte{byte(g)}, []Token{{IndexID: idx, Value: uint64(g)}}); err != nil {
					t.Error(err)
				}
			}
		}(g)
	}
	wg.Wait()

	if s.NumRecords() != threads*perThread {
		t.Fatalf("num_records = %d, want %d", s.NumRecords(), threads*perThread)
	}
	for g := 0; g < threads; g++ {
		it := s.Filter(idx, uint64(g), uint64(g))
		count := 0
		for {
			if _, ok := it.Next(); !ok {
				break
			}
			count++
		}
		if count != perThread {
			t.Fatalf("thread %d: posting count = %d, want %d", g, count, perThread)
		}
	}
}

// S6: width/id round-trip.
func TestWidthIDRoundTrip(t *testing.T) {
	wantClass := map[int]uint32{1: 1, 2: 2, 3: 4, 4: 8, 5: 16, 6: 32, 7: 64, 8: 128}
	s := New(smallOptions())
	for w := 1; w <= 8; w++ {
		id := s.AddIndex(w)
		if id/minDivisor != wantClass[w] {
			t.Fatalf("width %d: class = %d, want %d", w, id/minDivisor, wantClass[w])
		}
		if id%minDivisor != 0 {
			t.Fatalf("width %d: slot = %d, want 0", w, id%minDivisor)
		}
		width, ok := s.IndexWidth(id)
		if !ok || width != w {
			t.Fatalf("IndexWidth(%d) = %d,%v want %d,true", id, width, ok, w)
		}
	}
}

// B1: record length 1 and 65535 round-trip.
func TestBoundaryRecordLengths(t *testing.T) {
	s := New(smallOptions())
	small := []byte{0x7f}
	id1, err := s.Insert(small, nil)
	if err != nil {
		t.Fatal(err)
	}
	big := make([]byte, 65535)
	for i := range big {
		big[i] = byte(i)
	}
	id2, err := s.Insert(big, nil)
	if err != nil {
		t.Fatal(err)
	}

	got := make([]byte, 1)
	if !s.Get(id1, got) || got[0] != 0x7f {
		t.Fatal("short record mismatch")
	}
	gotBig := make([]byte, 65535)
	if !s.Get(id2, gotBig) {
		t.Fatal("long record not visible")
	}
	for i := range gotBig {
		if gotBig[i] != byte(i) {
			t.Fatalf("long record mismatch at %d", i)
		}
	}
}

func TestInsertRejectsOversizedRecord(t *testing.T) {
	s := New(smallOptions())
	if _, err := s.Insert(make([]byte, 65536), nil); err != errs.ErrRecordTooLarge {
		t.Fatalf("err = %v, want ErrRecordTooLarge", err)
	}
}

func TestInsertRejectsEmptyRecord(t *testing.T) {
	s := New(smallOptions())
	if _, err := s.Insert(nil, nil); err != errs.ErrEmptyRecord {
		t.Fatalf("err = %v, want ErrEmptyRecord", err)
	}
}

// B2: token value 0 and max are indexed and retrievable.
func TestBoundaryTokenValues(t *testing.T) {
	s := New(smallOptions())
	idx := s.AddIndex(1)
	maxVal := uint64(255)
	idZero, _ := s.Insert([]byte{0}, []Token{{IndexID: idx, Value: 0}})
	idMax, _ := s.Insert([]byte{1}, []Token{{IndexID: idx, Value: maxVal}})

	it := s.Filter(idx, 0, 0)
	id, ok := it.Next()
	if !ok || id != idZero {
		t.Fatalf("filter(0,0) = %d,%v want %d,true", id, ok, idZero)
	}

	it = s.Filter(idx, maxVal, maxVal)
	id, ok = it.Next()
	if !ok || id != idMax {
		t.Fatalf("filter(max,max) = %d,%v want %d,true", id, ok, idMax)
	}
}

// B3: filter on an absent value returns an empty iterator.
func TestFilterAbsentValueIsEmpty(t *testing.T) {
	s := New(smallOptions())
	idx := s.AddIndex(1)
	s.Insert([]byte{1}, []Token{{IndexID: idx, Value: 5}})
	it := s.Filter(idx, 6, 6)
	if _, ok := it.Next(); ok {
		t.Fatal("expected empty iterator")
	}
	if !it.IsFinished() {
		t.Fatal("expected IsFinished after exhausting empty iterator")
	}
}

// B4: get(num_records()) is false; get(num_records()-1) is true.
func TestGetBoundaryAroundNumRecords(t *testing.T) {
	s := New(smallOptions())
	for i := 0; i < 5; i++ {
		s.Insert([]byte{byte(i)}, nil)
	}
	n := s.NumRecords()
	buf := make([]byte, 1)
	if s.Get(n, buf) {
		t.Fatal("get(num_records()) should be false")
	}
	if !s.Get(n-1, buf) {
		t.Fatal("get(num_records()-1) should be true")
	}
}

// P4: filter never yields an id >= the ceiling sampled at creation time.
func TestFilterRespectsCeiling(t *testing.T) {
	s := New(smallOptions())
	idx := s.AddIndex(1)
	for i := 0; i < 10; i++ {
		s.Insert([]byte{1}, []Token{{IndexID: idx, Value: 7}})
	}
	ceiling := s.NumRecords()
	it := s.Filter(idx, 7, 7)
	for i := 0; i < 10; i++ {
		s.Insert([]byte{1}, []Token{{IndexID: idx, Value: 7}})
	}
	count := 0
	for {
		id, ok := it.Next()
		if !ok {
			break
		}
		if id >= ceiling {
			t.Fatalf("iterator yielded id %d >= ceiling %d", id, ceiling)
		}
		count++
	}
	if count != 10 {
		t.Fatalf("count = %d, want 10", count)
	}
}

// Extract clamps length to the record's remaining bytes.
func TestExtractClampsLength(t *testing.T) {
	s := New(smallOptions())
	id, _ := s.Insert([]byte("hello world"), nil)
	buf := make([]byte, 100)
	ok, n := s.Extract(id, 6, 100, buf)
	if !ok || n != 5 {
		t.Fatalf("extract ok=%v n=%d, want true,5", ok, n)
	}
	if string(buf[:n]) != "world" {
		t.Fatalf("got %q", buf[:n])
	}
}

func TestAddIndexRejectsInvalidWidth(t *testing.T) {
	s := New(smallOptions())
	if id := s.AddIndex(0); id != 0 {
		t.Fatalf("AddIndex(0) = %d, want 0", id)
	}
	if id := s.AddIndex(9); id != 0 {
		t.Fatalf("AddIndex(9) = %d, want 0", id)
	}
}

func TestStorageFootprintStringIsHumanReadable(t *testing.T) {
	s := New(smallOptions())
	idx := s.AddIndex(1)
	if _, err := s.Insert([]byte("hello"), []Token{{IndexID: idx, Value: 1}}); err != nil {
		t.Fatal(err)
	}
	str := s.StorageFootprint().String()
	if !strings.Contains(str, "bytes=") || !strings.Contains(str, "index=") {
		t.Fatalf("unexpected StorageFootprint.String() output: %q", str)
	}
}
