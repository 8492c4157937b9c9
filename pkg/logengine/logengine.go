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

// Package logengine is the public facade over the embedded log store
// (spec §6): an in-memory, append-only, lock-free log with secondary
// tiered indexes and derived streams. No wire protocol, CLI, or
// environment variables are part of this surface — a caller embeds
// Engine directly, the way a caller of the teacher's storage package
// embeds a *storage.Database.
package logengine

import (
	"errors"
	"sync/atomic"

	"github.com/dc0d/onexit"
	"github.com/google/uuid"

	"github.com/launix-de/logengine/internal/logstore"
	"github.com/launix-de/logengine/internal/persistence"
	"github.com/launix-de/logengine/internal/stream"
	"github.com/launix-de/logengine/pkg/options"
)

// ErrClosed is returned by Insert, and by Close itself, once the engine
// has been closed. After Close, Get and Extract report every record as
// not visible; the remaining methods keep working on the in-memory state.
var ErrClosed = errors.New("logengine: operation on closed engine")

// Token is one (index_id, value) pair attached to a record at insert
// time.
type Token = logstore.Token

// Predicate decides whether a freshly inserted record belongs in a
// stream.
type Predicate = stream.Predicate

// Iterator is the lazy cursor returned by Filter.
type Iterator = logstore.Iterator

// StorageFootprint reports the physical memory held by each component.
type StorageFootprint = logstore.StorageFootprint

// IndexInfo is a read-only snapshot of one registered index.
type IndexInfo = logstore.IndexInfo

// Engine is an embedded log store instance.
type Engine struct {
	store  *logstore.Store
	mgr    *persistence.Manager
	closed atomic.Bool
}

// Open constructs a new, empty Engine configured by opts. If opts
// enables persistence, Open also registers a process-exit hook (via
// github.com/dc0d/onexit, the teacher's own shutdown-hook library —
// storage/settings.go registers one the same way) that snapshots the
// engine on process exit as a best-effort durability measure.
func Open(opts options.Options) (*Engine, error) {
	store := logstore.New(logstore.Options{
		ByteLogBucketSize:   opts.ByteLogBucketSize,
		OffsetLogBucketSize: opts.OffsetLogBucketSize,
	})

	e := &Engine{store: store}

	switch opts.Persistence {
	case options.PersistenceFile:
		backend, err := persistence.NewFileBackend(opts.FileDir)
		if err != nil {
			return nil, err
		}
		e.mgr = persistence.NewManager(backend)
	case options.PersistenceS3:
		backend := persistence.NewS3Backend(persistence.S3Config{
			AccessKeyID:     opts.S3.AccessKeyID,
			SecretAccessKey: opts.S3.SecretAccessKey,
			Region:          opts.S3.Region,
			Endpoint:        opts.S3.Endpoint,
			Bucket:          opts.S3.Bucket,
			Prefix:          opts.S3.Prefix,
			ForcePathStyle:  opts.S3.ForcePathStyle,
		})
		e.mgr = persistence.NewManager(backend)
	case options.PersistenceCeph:
		backend := persistence.NewCephBackend(persistence.CephConfig{
			UserName:    opts.Ceph.UserName,
			ClusterName: opts.Ceph.ClusterName,
			ConfFile:    opts.Ceph.ConfFile,
			Pool:        opts.Ceph.Pool,
			Prefix:      opts.Ceph.Prefix,
		})
		e.mgr = persistence.NewManager(backend)
	case options.PersistenceNone:
		// memory-only; no collaborator.
	default:
		return nil, errors.New("logengine: unsupported persistence kind")
	}

	if e.mgr != nil {
		onexit.Register(func() { _ = e.Snapshot() })
	}

	return e, nil
}

// ID returns the engine's low-entropy-safe instance identifier, used to
// label its persistence segments (internal/persistence.Manager) and to
// tell engines apart in diagnostics.
func (e *Engine) ID() uuid.UUID {
	return e.store.ID
}

// AddIndex registers a new tiered index over tokens of the given width
// (1..8 bytes) and returns its index_id, or 0 if width is unsupported.
func (e *Engine) AddIndex(width int) uint32 {
	return e.store.AddIndex(width)
}

// AddStream registers pred as a new stream and returns its stream_id.
func (e *Engine) AddStream(pred Predicate) uint32 {
	return e.store.AddStream(pred)
}

// Insert appends a new record and returns its record_id.
func (e *Engine) Insert(payload []byte, tokens []Token) (uint64, error) {
	if e.closed.Load() {
		return 0, ErrClosed
	}
	return e.store.Insert(payload, tokens)
}

// Get copies record id's full payload into buf, returning false if id is
// not yet visible.
func (e *Engine) Get(id uint64, buf []byte) bool {
	if e.closed.Load() {
		return false
	}
	return e.store.Get(id, buf)
}

// Extract copies up to length bytes of record id starting at off into
// buf, clamped to the record's remaining length.
func (e *Engine) Extract(id, off, length uint64, buf []byte) (bool, uint64) {
	if e.closed.Load() {
		return false, 0
	}
	return e.store.Extract(id, off, length, buf)
}

// Filter returns a lazy, snapshot-consistent iterator over every visible
// record id carrying a token in [vLo, vHi] under indexID.
func (e *Engine) Filter(indexID uint32, vLo, vHi uint64) *Iterator {
	return e.store.Filter(indexID, vLo, vHi)
}

// NumRecords returns the number of currently visible records.
func (e *Engine) NumRecords() uint64 {
	return e.store.NumRecords()
}

// Size returns the number of bytes reserved in the byte log.
func (e *Engine) Size() uint64 {
	return e.store.Size()
}

// StorageFootprint reports the current physical memory footprint across
// every component.
func (e *Engine) StorageFootprint() StorageFootprint {
	return e.store.StorageFootprint()
}

// Indexes returns a snapshot of every registered index.
func (e *Engine) Indexes() []IndexInfo {
	return e.store.Indexes()
}

// Streams returns the number of registered streams.
func (e *Engine) Streams() int {
	return e.store.Streams()
}

// Snapshot writes the engine's current state to its configured
// persistence backend. It is a no-op returning nil if no backend was
// configured at Open.
func (e *Engine) Snapshot() error {
	if e.mgr == nil {
		return nil
	}
	return e.mgr.Snapshot(e.store)
}

// Close marks the engine closed and then takes a final snapshot if
// persistence is configured. Close is idempotent: subsequent calls
// return ErrClosed.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return e.Snapshot()
}
