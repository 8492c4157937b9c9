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

package persistence

import (
	"testing"

	"github.com/launix-de/logengine/internal/logstore"
)

func TestSnapshotRoundTripsByteLog(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}

	store := logstore.New(logstore.Options{ByteLogBucketSize: 4096, OffsetLogBucketSize: 64})
	idx := store.AddIndex(1)
	for i := 0; i < 20; i++ {
		if _, err := store.Insert([]byte{byte(i)}, []logstore.Token{{IndexID: idx, Value: uint64(i)}}); err != nil {
			t.Fatal(err)
		}
	}

	mgr := NewManager(backend)
	if err := mgr.Snapshot(store); err != nil {
		t.Fatal(err)
	}

	bucketSize, data, err := mgr.LoadByteLog(store.ID)
	if err != nil {
		t.Fatal(err)
	}
	if bucketSize != 4096 {
		t.Fatalf("bucketSize = %d, want 4096", bucketSize)
	}
	if len(data) != 20 {
		t.Fatalf("len(data) = %d, want 20", len(data))
	}
	for i := 0; i < 20; i++ {
		if data[i] != byte(i) {
			t.Fatalf("byte %d mismatch: got %d", i, data[i])
		}
	}

	ol, err := mgr.LoadOffsetLog(store.ID, 64)
	if err != nil {
		t.Fatal(err)
	}
	if ol.NumVisible() != 20 {
		t.Fatalf("NumVisible = %d, want 20", ol.NumVisible())
	}

	restoredIdx, err := mgr.LoadIndex(store.ID, idx, 1)
	if err != nil {
		t.Fatal(err)
	}
	pl := restoredIdx.Lookup(5)
	if pl == nil || pl.Size() != 1 || pl.Get(0) != 5 {
		t.Fatalf("restored index lookup(5) mismatch")
	}
}

func TestRemoveSegment(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}
	w, err := backend.WriteSegment("x")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("hi"))
	w.Close()

	if err := backend.RemoveSegment("x"); err != nil {
		t.Fatal(err)
	}
	r, err := backend.ReadSegment("x")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	buf := make([]byte, 1)
	if _, err := r.Read(buf); err == nil {
		t.Fatal("expected error reading removed segment")
	}
}
