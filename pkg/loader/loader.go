// Package loader opens pipeline inputs independent of where they live.
//
// Inputs are addressed by path: "s3://bucket/key" for objects, anything else
// for the local filesystem. All inputs may be gzip compressed; OpenText
// detects compression from the stream itself, not from the file name.
package loader

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// S3Scheme prefixes object storage paths.
const S3Scheme = "s3://"

// FileLoader opens the raw bytes behind a path.
type FileLoader interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Mux routes s3:// paths to the S3 loader and all other paths to the local loader.
type Mux struct {
	Local FileLoader
	S3    FileLoader
}

// Open implements FileLoader.
func (m *Mux) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if IsS3(path) {
		if m.S3 == nil {
			return nil, fmt.Errorf("no s3 loader configured for %s", path)
		}
		return m.S3.Open(ctx, path)
	}
	if m.Local == nil {
		return nil, fmt.Errorf("no local loader configured for %s", path)
	}
	return m.Local.Open(ctx, path)
}

// IsS3 reports whether path addresses object storage.
func IsS3(path string) bool {
	return strings.HasPrefix(path, S3Scheme)
}

// SplitS3URI splits "s3://bucket/some/key" into bucket and key.
func SplitS3URI(uri string) (bucket, key string, err error) {
	if !IsS3(uri) {
		return "", "", fmt.Errorf("not an s3 uri: %s", uri)
	}
	rest := strings.TrimPrefix(uri, S3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri must name bucket and key: %s", uri)
	}
	return bucket, key, nil
}

var gzipMagic = []byte{0x1f, 0x8b}

type textReader struct {
	io.Reader
	closers []io.Closer
}

func (t *textReader) Close() error {
	var errs []error
	for _, c := range t.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// OpenText opens path through l and transparently decompresses gzip content.
func OpenText(ctx context.Context, l FileLoader, path string) (io.ReadCloser, error) {
	raw, err := l.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	br := bufio.NewReaderSize(raw, 1<<20)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		raw.Close()
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if len(head) == len(gzipMagic) && head[0] == gzipMagic[0] && head[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
		}
		return &textReader{Reader: gz, closers: []io.Closer{gz, raw}}, nil
	}

	return &textReader{Reader: br, closers: []io.Closer{raw}}, nil
}
