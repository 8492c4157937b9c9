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

// Package persistence is the optional durable collaborator spec §6
// describes: the core never imports it, but a caller that wants crash
// recovery can ask a Manager to snapshot a log store's components to one
// of the Backend implementations below. The Backend interface is a
// narrowed form of the teacher's PersistenceEngine (storage/persistence.go):
// where the teacher's engine knows about schemas, columns, and per-shard
// logs, a log store has exactly one kind of durable artifact — a named
// segment, an opaque byte blob — so the interface collapses to three
// operations over named segments.
package persistence

import "io"

// Backend is a durable store for named segments. Implementations need
// not support partial writes or appends: a segment is always written in
// full. S3Backend and CephBackend replace the stored object whole on
// Close; FileBackend truncates the file when the segment is opened and
// writes into it directly, so the replacement is not atomic there.
type Backend interface {
	WriteSegment(name string) (io.WriteCloser, error)
	ReadSegment(name string) (io.ReadCloser, error)
	RemoveSegment(name string) error
}

// ErrorReader is a Backend.ReadSegment result for a segment that could
// not be opened; it reflects the error on the first Read call, mirroring
// the teacher's storage.ErrorReader (storage/persistence.go).
type ErrorReader struct {
	Err error
}

func (r ErrorReader) Read([]byte) (int, error) { return 0, r.Err }
func (r ErrorReader) Close() error             { return nil }
