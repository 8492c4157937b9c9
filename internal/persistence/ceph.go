//go:build ceph

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
	"bytes"
	"io"
	"path"
	"sync"

	"github.com/ceph/go-ceph/rados"
)

// CephConfig names the RADOS cluster and pool a CephBackend writes
// segments into, grounded on the teacher's CephFactory
// (storage/persistence-ceph.go).
type CephConfig struct {
	UserName    string
	ClusterName string
	ConfFile    string
	Pool        string
	Prefix      string
}

// CephBackend persists segments as whole RADOS objects, one per segment
// name. RADOS has no append primitive usable here, so like S3Backend a
// write buffers in memory and uses WriteFull (atomic overwrite) on Close.
type CephBackend struct {
	cfg CephConfig

	mu     sync.Mutex
	conn   *rados.Conn
	ioctx  *rados.IOContext
	opened bool
}

// NewCephBackend returns a CephBackend for cfg. The connection opens
// lazily on first use.
func NewCephBackend(cfg CephConfig) *CephBackend {
	return &CephBackend{cfg: cfg}
}

func (b *CephBackend) ensureOpen() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.opened {
		return nil
	}

	conn, err := rados.NewConnWithClusterAndUser(b.cfg.ClusterName, b.cfg.UserName)
	if err != nil {
		return err
	}
	if b.cfg.ConfFile != "" {
		if err := conn.ReadConfigFile(b.cfg.ConfFile); err != nil {
			return err
		}
	} else {
		_ = conn.ReadDefaultConfigFile()
	}
	if err := conn.Connect(); err != nil {
		return err
	}
	ioctx, err := conn.OpenIOContext(b.cfg.Pool)
	if err != nil {
		conn.Shutdown()
		return err
	}

	b.conn = conn
	b.ioctx = ioctx
	b.opened = true
	return nil
}

func (b *CephBackend) obj(name string) string {
	return path.Join(b.cfg.Prefix, name)
}

func (b *CephBackend) WriteSegment(name string) (io.WriteCloser, error) {
	if err := b.ensureOpen(); err != nil {
		return nil, err
	}
	return &cephSegmentWriter{backend: b, obj: b.obj(name)}, nil
}

func (b *CephBackend) ReadSegment(name string) (io.ReadCloser, error) {
	if err := b.ensureOpen(); err != nil {
		return ErrorReader{err}, nil
	}
	obj := b.obj(name)
	stat, err := b.ioctx.Stat(obj)
	if err != nil {
		return ErrorReader{err}, nil
	}
	data := make([]byte, stat.Size)
	n, err := b.ioctx.Read(obj, data, 0)
	if err != nil {
		return ErrorReader{err}, nil
	}
	return io.NopCloser(bytes.NewReader(data[:n])), nil
}

func (b *CephBackend) RemoveSegment(name string) error {
	if err := b.ensureOpen(); err != nil {
		return err
	}
	return b.ioctx.Delete(b.obj(name))
}

type cephSegmentWriter struct {
	backend *CephBackend
	obj     string
	buf     bytes.Buffer
	closed  bool
}

func (w *cephSegmentWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	return w.buf.Write(p)
}

func (w *cephSegmentWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.backend.ioctx.WriteFull(w.obj, w.buf.Bytes())
}
