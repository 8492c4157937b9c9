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
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"

	"github.com/launix-de/logengine/internal/logstore"
	"github.com/launix-de/logengine/internal/offsetlog"
	"github.com/launix-de/logengine/internal/postinglist"
	"github.com/launix-de/logengine/internal/tieredindex"
	"github.com/launix-de/logengine/internal/wire"
)

// segment name suffixes within a snapshot. Every segment is additionally
// prefixed with the store's own UUID (internal/logstore/id.go) so that
// snapshots from distinct Store instances sharing one Backend never
// collide.
const (
	byteLogSuffix   = "bytelog"
	offsetLogSuffix = "offsetlog"
)

func indexSuffix(id uint32) string { return fmt.Sprintf("index-%d", id) }
func streamSuffix(i int) string    { return fmt.Sprintf("stream-%d", i) }

func segmentName(storeID uuid.UUID, suffix string) string {
	return storeID.String() + "-" + suffix
}

// Manager snapshots a log store's components to a Backend, LZ4-compressing
// each segment (github.com/pierrec/lz4/v4, already in the teacher's
// dependency graph for its column-store block compression) and fanning
// the per-component work out across goroutines with
// golang.org/x/sync/errgroup, the same concurrency idiom the teacher's
// S3 persistence layer uses for parallel shard uploads.
type Manager struct {
	Backend Backend
}

// NewManager returns a Manager writing snapshots to backend.
func NewManager(backend Backend) *Manager {
	return &Manager{Backend: backend}
}

// Snapshot writes every component of store to the backend as independent,
// LZ4-compressed segments. Components are encoded and uploaded
// concurrently; Snapshot returns the first error encountered, if any,
// after every goroutine has finished.
func (m *Manager) Snapshot(store *logstore.Store) error {
	var g errgroup.Group
	id := store.ID

	g.Go(func() error {
		return m.writeCompressed(segmentName(id, byteLogSuffix), func(w io.Writer) error {
			return wire.WriteByteLog(w, store.ByteLogBytes(), store.Options().ByteLogBucketSize)
		})
	})

	g.Go(func() error {
		return m.writeCompressed(segmentName(id, offsetLogSuffix), func(w io.Writer) error {
			return wire.WriteOffsetLog(w, store.OffsetLog())
		})
	})

	for indexID, idx := range store.IndexesRaw() {
		indexID, idx := indexID, idx
		g.Go(func() error {
			return m.writeCompressed(segmentName(id, indexSuffix(indexID)), func(w io.Writer) error {
				return wire.WriteTieredIndex(w, idx)
			})
		})
	}

	for i, st := range store.StreamsRaw() {
		i, st := i, st
		g.Go(func() error {
			return m.writeCompressed(segmentName(id, streamSuffix(i)), func(w io.Writer) error {
				return wire.WriteConsistentPostingList(w, &st.Matches)
			})
		})
	}

	return g.Wait()
}

func (m *Manager) writeCompressed(name string, encode func(io.Writer) error) error {
	raw, err := m.Backend.WriteSegment(name)
	if err != nil {
		return fmt.Errorf("persistence: open segment %s: %w", name, err)
	}
	zw := lz4.NewWriter(raw)
	if err := encode(zw); err != nil {
		zw.Close()
		raw.Close()
		return fmt.Errorf("persistence: encode segment %s: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		raw.Close()
		return fmt.Errorf("persistence: flush segment %s: %w", name, err)
	}
	if err := raw.Close(); err != nil {
		return fmt.Errorf("persistence: close segment %s: %w", name, err)
	}
	return nil
}

// LoadByteLog reads and decompresses storeID's byte-log segment, returning
// its bucket size and raw bytes.
func (m *Manager) LoadByteLog(storeID uuid.UUID) (bucketSize uint64, data []byte, err error) {
	r, err := m.Backend.ReadSegment(segmentName(storeID, byteLogSuffix))
	if err != nil {
		return 0, nil, err
	}
	defer r.Close()
	return wire.ReadByteLog(lz4.NewReader(r))
}

// LoadOffsetLog reads and decompresses storeID's offset-log segment.
func (m *Manager) LoadOffsetLog(storeID uuid.UUID, bucketSize uint64) (*offsetlog.OffsetLog, error) {
	r, err := m.Backend.ReadSegment(segmentName(storeID, offsetLogSuffix))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return wire.ReadOffsetLog(lz4.NewReader(r), bucketSize)
}

// LoadIndex reads and decompresses one of storeID's tiered index segments.
func (m *Manager) LoadIndex(storeID uuid.UUID, id uint32, width int) (*tieredindex.Index, error) {
	r, err := m.Backend.ReadSegment(segmentName(storeID, indexSuffix(id)))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return wire.ReadTieredIndex(lz4.NewReader(r), width)
}

// LoadStream reads and decompresses one of storeID's stream posting-list
// segments.
func (m *Manager) LoadStream(storeID uuid.UUID, i int) (*postinglist.Consistent, error) {
	r, err := m.Backend.ReadSegment(segmentName(storeID, streamSuffix(i)))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return wire.ReadConsistentPostingList(lz4.NewReader(r))
}
