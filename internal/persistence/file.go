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
	"io"
	"os"
	"path/filepath"
)

// FileBackend persists segments as plain files under a base directory,
// grounded on the teacher's FileStorage (storage/persistence-files.go).
type FileBackend struct {
	Dir string
}

// NewFileBackend returns a FileBackend rooted at dir, creating it if
// necessary.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}
	return &FileBackend{Dir: dir}, nil
}

func (f *FileBackend) path(name string) string {
	return filepath.Join(f.Dir, name)
}

func (f *FileBackend) WriteSegment(name string) (io.WriteCloser, error) {
	return os.Create(f.path(name))
}

func (f *FileBackend) ReadSegment(name string) (io.ReadCloser, error) {
	r, err := os.Open(f.path(name))
	if err != nil {
		return ErrorReader{err}, nil
	}
	return r, nil
}

func (f *FileBackend) RemoveSegment(name string) error {
	return os.Remove(f.path(name))
}
