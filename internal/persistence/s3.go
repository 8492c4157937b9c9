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
	"context"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config names the connection parameters for an S3-compatible bucket,
// grounded on the teacher's S3Factory (storage/persistence-s3.go) — the
// same fields, minus the schema/shard-oriented ones that don't apply to
// a flat segment namespace.
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string
	Bucket          string
	Prefix          string
	ForcePathStyle  bool
}

// S3Backend persists segments as objects under Prefix in Bucket. S3 has
// no append; a segment write is buffered in memory and replaces the
// object whole on Close, the same trade-off the teacher's S3Storage makes
// for its log segments.
type S3Backend struct {
	cfg S3Config

	mu     sync.Mutex
	client *s3.Client
}

// NewS3Backend returns an S3Backend for cfg. The client connects lazily
// on first use.
func NewS3Backend(cfg S3Config) *S3Backend {
	return &S3Backend{cfg: cfg}
}

func (b *S3Backend) ensureClient(ctx context.Context) (*s3.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client != nil {
		return b.client, nil
	}

	var opts []func(*config.LoadOptions) error
	if b.cfg.Region != "" {
		opts = append(opts, config.WithRegion(b.cfg.Region))
	}
	if b.cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(b.cfg.AccessKeyID, b.cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	b.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if b.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(b.cfg.Endpoint)
		}
		o.UsePathStyle = b.cfg.ForcePathStyle
	})
	return b.client, nil
}

func (b *S3Backend) key(name string) string {
	if b.cfg.Prefix == "" {
		return name
	}
	return strings.TrimSuffix(b.cfg.Prefix, "/") + "/" + name
}

func (b *S3Backend) WriteSegment(name string) (io.WriteCloser, error) {
	return &s3SegmentWriter{backend: b, name: name}, nil
}

func (b *S3Backend) ReadSegment(name string) (io.ReadCloser, error) {
	ctx := context.Background()
	client, err := b.ensureClient(ctx)
	if err != nil {
		return ErrorReader{err}, nil
	}
	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(b.key(name)),
	})
	if err != nil {
		return ErrorReader{err}, nil
	}
	return resp.Body, nil
}

func (b *S3Backend) RemoveSegment(name string) error {
	ctx := context.Background()
	client, err := b.ensureClient(ctx)
	if err != nil {
		return err
	}
	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(b.key(name)),
	})
	return err
}

// s3SegmentWriter buffers a segment in memory and uploads it whole on
// Close, since S3 objects cannot be appended to incrementally.
type s3SegmentWriter struct {
	backend *S3Backend
	name    string
	buf     bytes.Buffer
}

func (w *s3SegmentWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *s3SegmentWriter) Close() error {
	ctx := context.Background()
	client, err := w.backend.ensureClient(ctx)
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.backend.cfg.Bucket),
		Key:    aws.String(w.backend.key(w.name)),
		Body:   bytes.NewReader(w.buf.Bytes()),
	})
	return err
}
