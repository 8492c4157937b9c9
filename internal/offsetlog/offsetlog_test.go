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

package offsetlog

import (
	"sync"
	"testing"
)

func TestBeginEndAppendRoundTrip(t *testing.T) {
	ol := New(64)
	id := ol.BeginAppend(42, 7)
	if ol.IsVisible(id) {
		t.Fatal("record should not be visible before EndAppend")
	}
	ol.EndAppend(id)
	if !ol.IsVisible(id) {
		t.Fatal("record should be visible after EndAppend")
	}
	off, length := ol.Lookup(id)
	if off != 42 || length != 7 {
		t.Fatalf("lookup = (%d, %d), want (42, 7)", off, length)
	}
}

func TestPublicationOrderEqualsAssignmentOrder(t *testing.T) {
	ol := New(64)
	ids := make([]uint64, 50)
	for i := range ids {
		ids[i] = ol.BeginAppend(uint64(i), 1)
	}
	// publish in reverse order concurrently; EndAppend must block each
	// goroutine until its predecessor has published.
	var wg sync.WaitGroup
	for i := len(ids) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			ol.EndAppend(id)
		}(ids[i])
	}
	wg.Wait()
	if ol.NumVisible() != uint64(len(ids)) {
		t.Fatalf("num visible %d, want %d", ol.NumVisible(), len(ids))
	}
}

func TestBatchReserveAndPublish(t *testing.T) {
	ol := New(64)
	start := ol.ReserveIDs(10)
	for i := uint64(0); i < 10; i++ {
		ol.words.Set(start+i, pack(i*100, uint16(i)))
	}
	ol.EndAppendRange(start, 10)
	if ol.NumVisible() != 10 {
		t.Fatalf("num visible %d, want 10", ol.NumVisible())
	}
	for i := uint64(0); i < 10; i++ {
		off, length := ol.Lookup(start + i)
		if off != i*100 || length != uint16(i) {
			t.Fatalf("entry %d: got (%d, %d)", i, off, length)
		}
	}
}

func TestIsVisibleAtCeiling(t *testing.T) {
	ol := New(64)
	for i := 0; i < 5; i++ {
		id := ol.BeginAppend(uint64(i), 1)
		ol.EndAppend(id)
	}
	ceiling := ol.NumVisible()
	newID := ol.BeginAppend(99, 1)
	ol.EndAppend(newID)

	if !ol.IsVisibleAt(0, ceiling) {
		t.Fatal("id 0 should be visible at the old ceiling")
	}
	if ol.IsVisibleAt(newID, ceiling) {
		t.Fatal("new id should not be visible at the old ceiling")
	}
}

func TestConcurrentInsertsProduceDensePrefix(t *testing.T) {
	ol := New(1024)
	const writers = 8
	const perWriter = 2000
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				id := ol.BeginAppend(id2offset(i), 1)
				ol.EndAppend(id)
			}
		}()
	}
	wg.Wait()
	if ol.NumVisible() != writers*perWriter {
		t.Fatalf("num visible %d, want %d", ol.NumVisible(), writers*perWriter)
	}
	for id := uint64(0); id < ol.NumVisible(); id++ {
		if !ol.IsVisible(id) {
			t.Fatalf("id %d should be visible (dense prefix, I1)", id)
		}
	}
}

func id2offset(i int) uint64 { return uint64(i) }
