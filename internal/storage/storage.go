// Package storage creates the writers for pipeline outputs: checkpoints and
// the scored pairs file. Local paths are written in place; s3:// paths are
// buffered and uploaded when the writer is closed.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/kblink/pkg/loader"
)

// Writer creates outputs.
type Writer struct {
	s3 objectPutter
}

// NewWriter creates a Writer. client may be nil when no s3:// outputs are used.
func NewWriter(client objectPutter) *Writer {
	return &Writer{s3: client}
}

// Create opens path for writing. The returned writer must be closed; for
// s3:// paths the upload happens in Close and its error is returned there.
func (w *Writer) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	if loader.IsS3(path) {
		if w.s3 == nil {
			return nil, fmt.Errorf("no s3 client configured for %s", path)
		}
		bucket, key, err := loader.SplitS3URI(path)
		if err != nil {
			return nil, err
		}
		return &s3Writer{ctx: ctx, client: w.s3, bucket: bucket, key: key}, nil
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return &fileWriter{File: f}, nil
}

// fileWriter removes the partially written file on Abort.
type fileWriter struct {
	*os.File
}

func (w *fileWriter) Abort() error {
	w.File.Close()
	if err := os.Remove(w.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", w.Name(), err)
	}
	return nil
}

type s3Writer struct {
	ctx    context.Context
	client objectPutter
	bucket string
	key    string
	buf    bytes.Buffer
	closed bool
}

func (w *s3Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("write to closed s3 writer s3://%s/%s", w.bucket, w.key)
	}
	return w.buf.Write(p)
}

func (w *s3Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return putObject(w.ctx, w.client, w.bucket, w.key, contentType(w.key), w.buf.Bytes())
}

// Abort drops the buffered content without uploading it.
func (w *s3Writer) Abort() error {
	w.closed = true
	w.buf.Reset()
	return nil
}

func contentType(key string) string {
	if strings.HasSuffix(key, ".gz") {
		return "application/gzip"
	}
	if t := mime.TypeByExtension(filepath.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func newBodyReader(b []byte) io.ReadSeeker {
	return bytes.NewReader(b)
}
