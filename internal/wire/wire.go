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

// Package wire implements the serialised form of every storage
// component, for consumption by the persistence collaborator (spec §6).
// It follows the teacher's binary.Write/binary.Read style
// (storage/storage-seq.go) rather than a general-purpose codec: every
// encoder writes fixed-width fields directly to an io.Writer, and every
// decoder reads the matching shape back from an io.Reader. All fields are
// little-endian except a tiered index's chunk path, which is big-endian.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/launix-de/logengine/internal/monolog"
	"github.com/launix-de/logengine/internal/offsetlog"
	"github.com/launix-de/logengine/internal/postinglist"
	"github.com/launix-de/logengine/internal/tieredindex"
)

// WritePostingList writes a u32 length followed by that many little-endian
// u64 record ids.
func WritePostingList(w io.Writer, p *postinglist.Relaxed) error {
	n := p.Size()
	if err := binary.Write(w, binary.LittleEndian, uint32(n)); err != nil {
		return err
	}
	for i := uint64(0); i < n; i++ {
		if err := binary.Write(w, binary.LittleEndian, p.Get(i)); err != nil {
			return err
		}
	}
	return nil
}

// ReadPostingList reads back a posting list written by WritePostingList.
func ReadPostingList(r io.Reader) (*postinglist.Relaxed, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	p := &postinglist.Relaxed{}
	for i := uint32(0); i < n; i++ {
		var id uint64
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, err
		}
		p.PushBack(id)
	}
	return p, nil
}

// WriteConsistentPostingList writes a stream's posting list with the same
// wire shape as WritePostingList: a u32 length followed by that many
// little-endian u64 record ids.
func WriteConsistentPostingList(w io.Writer, p *postinglist.Consistent) error {
	n := p.Size()
	if err := binary.Write(w, binary.LittleEndian, uint32(n)); err != nil {
		return err
	}
	for i := uint64(0); i < n; i++ {
		if err := binary.Write(w, binary.LittleEndian, p.Get(i)); err != nil {
			return err
		}
	}
	return nil
}

// ReadConsistentPostingList reads back a stream's posting list written by
// WriteConsistentPostingList.
func ReadConsistentPostingList(r io.Reader) (*postinglist.Consistent, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	p := &postinglist.Consistent{}
	for i := uint32(0); i < n; i++ {
		var id uint64
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, err
		}
		p.PushBack(id)
	}
	return p, nil
}

// leafEntry is one (chunk path, posting list) pair discovered by a tiered
// index walk, ready for serialisation.
type leafEntry struct {
	value uint64
	pl    *postinglist.Relaxed
}

// WriteTieredIndex writes a u64 populated-leaf count, then for each
// populated leaf (ascending token order): the token value packed into
// width bytes, followed by its posting list.
func WriteTieredIndex(w io.Writer, idx *tieredindex.Index) error {
	var leaves []leafEntry
	idx.PopulatedLeaves(0, idx.MaxValue(), func(value uint64, pl *postinglist.Relaxed) {
		leaves = append(leaves, leafEntry{value: value, pl: pl})
	})

	if err := binary.Write(w, binary.LittleEndian, uint64(len(leaves))); err != nil {
		return err
	}
	for _, le := range leaves {
		if err := writeChunkPath(w, le.value, idx.Width); err != nil {
			return err
		}
		if err := WritePostingList(w, le.pl); err != nil {
			return err
		}
	}
	return nil
}

// ReadTieredIndex reads back a tiered index of the given width written by
// WriteTieredIndex, re-inserting every posting so that concurrent-append
// semantics remain available on the restored index.
func ReadTieredIndex(r io.Reader, width int) (*tieredindex.Index, error) {
	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	idx := tieredindex.New(width)
	for i := uint64(0); i < count; i++ {
		value, err := readChunkPath(r, width)
		if err != nil {
			return nil, err
		}
		pl, err := ReadPostingList(r)
		if err != nil {
			return nil, err
		}
		for k := uint64(0); k < pl.Size(); k++ {
			idx.AddEntry(value, pl.Get(k))
		}
	}
	return idx, nil
}

// writeChunkPath writes value's low width*8 bits as width big-endian
// bytes, so the on-disk byte order matches the most-significant-chunk-first
// traversal order the tiered index already guarantees.
func writeChunkPath(w io.Writer, value uint64, width int) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	_, err := w.Write(buf[8-width:])
	return err
}

func readChunkPath(r io.Reader, width int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[8-width:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// WriteOffsetLog writes the underlying growable array of u64 words
// (write_tail entries) followed by the u64 read_tail, per spec §6: at
// quiescent serialisation time read_tail equals write_tail.
func WriteOffsetLog(w io.Writer, o *offsetlog.OffsetLog) error {
	n := o.WriteTail()
	if err := binary.Write(w, binary.LittleEndian, n); err != nil {
		return err
	}
	for id := uint64(0); id < n; id++ {
		offset, length := o.Lookup(id)
		word := (uint64(length) << 48) | (offset & (1<<48 - 1))
		if err := binary.Write(w, binary.LittleEndian, word); err != nil {
			return err
		}
	}
	return binary.Write(w, binary.LittleEndian, o.NumVisible())
}

// ReadOffsetLog reads back an offset log written by WriteOffsetLog.
func ReadOffsetLog(r io.Reader, bucketSize uint64) (*offsetlog.OffsetLog, error) {
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	o := offsetlog.New(bucketSize)
	for id := uint64(0); id < n; id++ {
		var word uint64
		if err := binary.Read(r, binary.LittleEndian, &word); err != nil {
			return nil, err
		}
		offset := word & (1<<48 - 1)
		length := uint16(word >> 48)
		got := o.BeginAppend(offset, length)
		if got != id {
			// the log was built by sequential BeginAppend calls above, so
			// ids are assigned in the same order they were serialised.
			panic("logengine: offset log record id mismatch during deserialisation")
		}
	}
	var readTail uint64
	if err := binary.Read(r, binary.LittleEndian, &readTail); err != nil {
		return nil, err
	}
	o.EndAppendRange(0, readTail)
	return o, nil
}

// WriteByteLog writes the underlying coarse array as bucket-size-prefixed
// segments: a u64 bucket size, a u64 total length, then that many bytes.
func WriteByteLog(w io.Writer, data []byte, bucketSize uint64) error {
	if err := binary.Write(w, binary.LittleEndian, bucketSize); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// ReadByteLog reads back a byte log segment written by WriteByteLog,
// returning its bucket size and raw bytes.
func ReadByteLog(r io.Reader) (bucketSize uint64, data []byte, err error) {
	if err = binary.Read(r, binary.LittleEndian, &bucketSize); err != nil {
		return 0, nil, err
	}
	var n uint64
	if err = binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, nil, err
	}
	data = make([]byte, n)
	_, err = io.ReadFull(r, data)
	return bucketSize, data, err
}

// WriteFineWords writes a u32 logical size followed by that many
// serialised u64 elements, the growable-array encoding spec §6 prescribes
// for fine-grained arrays (posting lists are the concrete instance above;
// this entry point is for any other fine-grained word array).
func WriteFineWords(w io.Writer, words *monolog.FineWords, size uint64) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(size)); err != nil {
		return err
	}
	for i := uint64(0); i < size; i++ {
		if err := binary.Write(w, binary.LittleEndian, words.Get(i)); err != nil {
			return err
		}
	}
	return nil
}

// ReadFineWords reads back a fine-grained word array written by
// WriteFineWords.
func ReadFineWords(r io.Reader) (*monolog.FineWords, uint64, error) {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, 0, err
	}
	words := &monolog.FineWords{}
	words.EnsureAllocated(0, uint64(size))
	for i := uint32(0); i < size; i++ {
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, 0, err
		}
		words.Set(uint64(i), v)
	}
	return words, uint64(size), nil
}
