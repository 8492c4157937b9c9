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

// Package options configures an embedded log engine: the bucket sizes of
// its growable arrays and, optionally, the persistence backend a caller
// wants snapshots written to. It follows the functional-options shape of
// the iamNilotpal/ignite pack repo's pkg/options, adapted to the much
// smaller surface a log store actually needs (no segment rotation, no
// compaction interval — this engine never rewrites or deletes a record).
package options

// PersistenceKind selects which durable backend a Manager writes
// snapshots to.
type PersistenceKind int

const (
	// PersistenceNone disables persistence; the engine is memory-only.
	PersistenceNone PersistenceKind = iota
	PersistenceFile
	PersistenceS3
	PersistenceCeph
)

// Options configures an embedded log engine.
type Options struct {
	// ByteLogBucketSize is the size, in bytes, of each coarse bucket in
	// the byte log.
	ByteLogBucketSize uint64 `json:"byteLogBucketSize"`

	// OffsetLogBucketSize is the number of entries per coarse bucket in
	// the offset log.
	OffsetLogBucketSize uint64 `json:"offsetLogBucketSize"`

	// Persistence selects the optional durable collaborator. Zero value
	// (PersistenceNone) runs the engine memory-only.
	Persistence PersistenceKind `json:"persistence"`

	// FileDir is the base directory used when Persistence ==
	// PersistenceFile.
	FileDir string `json:"fileDir,omitempty"`

	// S3 carries the bucket configuration used when Persistence ==
	// PersistenceS3.
	S3 S3Config `json:"s3,omitempty"`

	// Ceph carries the RADOS pool configuration used when Persistence ==
	// PersistenceCeph.
	Ceph CephConfig `json:"ceph,omitempty"`
}

// S3Config names the connection parameters for an S3-compatible bucket
// backend (internal/persistence.S3Backend).
type S3Config struct {
	AccessKeyID     string `json:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty"`
	Region          string `json:"region,omitempty"`
	Endpoint        string `json:"endpoint,omitempty"`
	Bucket          string `json:"bucket"`
	Prefix          string `json:"prefix,omitempty"`
	ForcePathStyle  bool   `json:"forcePathStyle,omitempty"`
}

// CephConfig names the RADOS cluster and pool a Ceph backend
// (internal/persistence.CephBackend) writes segments into.
type CephConfig struct {
	UserName    string `json:"userName,omitempty"`
	ClusterName string `json:"clusterName,omitempty"`
	ConfFile    string `json:"confFile,omitempty"`
	Pool        string `json:"pool"`
	Prefix      string `json:"prefix,omitempty"`
}

const (
	// DefaultByteLogBucketSize is 2^20 bytes, scaled down from the
	// original's "e.g. 2^28" coarse bucket size suggestion to a size that
	// keeps small engines and tests cheap (spec.md leaves the exact
	// constant a parameter, not a fixed value).
	DefaultByteLogBucketSize = 1 << 20

	// DefaultOffsetLogBucketSize is the number of (offset,length) entries
	// per coarse bucket in the offset log.
	DefaultOffsetLogBucketSize = 1 << 16
)

// OptionFunc mutates an Options value being built by New.
type OptionFunc func(*Options)

// New builds an Options value from sane defaults plus any overrides.
func New(opts ...OptionFunc) Options {
	o := Options{
		ByteLogBucketSize:   DefaultByteLogBucketSize,
		OffsetLogBucketSize: DefaultOffsetLogBucketSize,
		Persistence:         PersistenceNone,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithByteLogBucketSize overrides the byte log's coarse bucket size.
func WithByteLogBucketSize(size uint64) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.ByteLogBucketSize = size
		}
	}
}

// WithOffsetLogBucketSize overrides the offset log's coarse bucket size
// (entries, not bytes).
func WithOffsetLogBucketSize(size uint64) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.OffsetLogBucketSize = size
		}
	}
}

// WithFilePersistence enables snapshotting to the local filesystem under
// dir.
func WithFilePersistence(dir string) OptionFunc {
	return func(o *Options) {
		o.Persistence = PersistenceFile
		o.FileDir = dir
	}
}

// WithS3Persistence enables snapshotting to an S3-compatible bucket.
func WithS3Persistence(cfg S3Config) OptionFunc {
	return func(o *Options) {
		o.Persistence = PersistenceS3
		o.S3 = cfg
	}
}

// WithCephPersistence enables snapshotting to a Ceph RADOS pool. Requires
// the engine binary to be built with -tags=ceph; without that tag,
// opening an engine configured this way panics (internal/persistence's
// no-cgo stub).
func WithCephPersistence(cfg CephConfig) OptionFunc {
	return func(o *Options) {
		o.Persistence = PersistenceCeph
		o.Ceph = cfg
	}
}
