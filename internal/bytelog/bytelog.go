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

// Package bytelog implements the linear, offset-addressable byte storage
// for variable-length records (spec component 2). It is a thin coarse
// monolog plus a single process-wide atomic tail: reserve(n) claims a byte
// range via fetch-add, and the reserver owns that range exclusively until
// it writes into it.
package bytelog

import (
	"sync/atomic"

	"github.com/launix-de/logengine/internal/errs"
	"github.com/launix-de/logengine/internal/monolog"
)

// MaxOffset is the 48-bit cap on byte-log offsets (spec §4.4): the offset
// log packs offset into 48 bits, so the byte log cannot grow past 2^48
// bytes (256 TiB).
const MaxOffset = uint64(1) << 48

// ByteLog is the append-only byte store backing record payloads.
type ByteLog struct {
	arr      *monolog.CoarseBytes
	byteTail atomic.Uint64
}

// New returns a ByteLog whose coarse buckets are bucketSize bytes each.
func New(bucketSize uint64) *ByteLog {
	return &ByteLog{arr: monolog.NewCoarseBytes(bucketSize)}
}

// Reserve claims [offset, offset+n) via an atomic fetch-add on the byte
// tail and ensures the covering buckets are allocated. The caller owns
// that range exclusively and is responsible for writing it before any
// reader can observe the record through the offset log.
func (b *ByteLog) Reserve(n uint64) (offset uint64, err error) {
	offset = b.byteTail.Add(n) - n
	if offset+n > MaxOffset {
		return 0, errs.ErrCapacityExhausted
	}
	b.arr.EnsureAllocated(offset, offset+n)
	return offset, nil
}

// Write copies src into the byte log at offset. The range must already be
// allocated (normally via Reserve).
func (b *ByteLog) Write(offset uint64, src []byte) {
	b.arr.Write(offset, src)
}

// Read copies len(dst) bytes starting at offset into dst.
func (b *ByteLog) Read(offset uint64, dst []byte) {
	b.arr.Read(offset, dst)
}

// EnsureAllocated allocates every bucket covering [lo, hi) ahead of
// concurrent writers racing on that range.
func (b *ByteLog) EnsureAllocated(lo, hi uint64) {
	b.arr.EnsureAllocated(lo, hi)
}

// Size returns the number of bytes reserved so far (the byte tail).
func (b *ByteLog) Size() uint64 {
	return b.byteTail.Load()
}

// ComputeSize returns the bytes of physical memory currently allocated
// across all buckets (storage_footprint()).
func (b *ByteLog) ComputeSize() uint64 {
	return b.arr.ComputeSize()
}
