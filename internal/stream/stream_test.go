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

package stream

import (
	"sync"
	"testing"
)

func TestEvaluateAppendsOnlyMatches(t *testing.T) {
	s := New(func(recordID uint64, payload []byte, tokens map[uint32]uint64) bool {
		return len(payload) > 0 && payload[0]%10 == 0
	})
	for i := uint64(0); i < 100; i++ {
		s.Evaluate(i, []byte{byte(i)}, nil)
	}
	if s.Size() != 10 {
		t.Fatalf("size = %d, want 10", s.Size())
	}
	for k := uint64(0); k < s.Size(); k++ {
		if s.Get(k)%10 != 0 {
			t.Fatalf("match %d not a multiple of 10", s.Get(k))
		}
	}
}

func TestConcurrentEvaluateNeverExposesUnwrittenSlot(t *testing.T) {
	s := New(func(recordID uint64, payload []byte, tokens map[uint32]uint64) bool { return true })
	const n = 2000
	var wg sync.WaitGroup
	for i := uint64(0); i < n; i++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			s.Evaluate(id, []byte{byte(id)}, nil)
		}(i)
	}
	wg.Wait()
	if s.Size() != n {
		t.Fatalf("size = %d, want %d", s.Size(), n)
	}
	seen := make(map[uint64]bool, n)
	for k := uint64(0); k < s.Size(); k++ {
		seen[s.Get(k)] = true
	}
	if len(seen) != n {
		t.Fatalf("got %d distinct ids, want %d", len(seen), n)
	}
}
