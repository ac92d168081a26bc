// Package checkpoint persists intermediate pipeline results as gzip
// compressed msgpack blobs.
//
// Every blob carries a kind tag so a correspondence checkpoint cannot be
// loaded where a label map is expected.
package checkpoint

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"

	"github.com/OFFIS-RIT/kblink/pkg/loader"

	"github.com/vmihailenco/msgpack/v5"
)

const version = 1

// Checkpoint kinds written by the pipelines.
const (
	KindCorrespondence = "correspondence"
	KindTargetIDLabels = "target-id-labels"
)

type envelope struct {
	Kind    string             `msgpack:"kind"`
	Version int                `msgpack:"version"`
	Data    msgpack.RawMessage `msgpack:"data"`
}

// Creator opens outputs for writing.
type Creator interface {
	Create(ctx context.Context, path string) (io.WriteCloser, error)
}

// Aborter is implemented by writers that can discard what was written instead
// of committing it on Close.
type Aborter interface {
	Abort() error
}

// Discard releases w after a failed write. Writers implementing Aborter are
// aborted so no partial output is published; others are closed.
func Discard(w io.WriteCloser) {
	if a, ok := w.(Aborter); ok {
		a.Abort()
		return
	}
	w.Close()
}

// Save writes v to w.
func Save(w io.Writer, kind string, v any) error {
	data, err := marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s checkpoint: %w", kind, err)
	}
	blob, err := marshal(envelope{Kind: kind, Version: version, Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode %s checkpoint: %w", kind, err)
	}

	gz := gzip.NewWriter(w)
	if _, err := gz.Write(blob); err != nil {
		return fmt.Errorf("failed to write %s checkpoint: %w", kind, err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to write %s checkpoint: %w", kind, err)
	}
	return nil
}

// Load reads a checkpoint of the given kind from r into v.
func Load(r io.Reader, kind string, v any) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to open %s checkpoint: %w", kind, err)
	}
	defer gz.Close()

	var env envelope
	if err := msgpack.NewDecoder(gz).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode %s checkpoint: %w", kind, err)
	}
	if env.Kind != kind {
		return fmt.Errorf("checkpoint holds %q, expected %q", env.Kind, kind)
	}
	if env.Version != version {
		return fmt.Errorf("unsupported %s checkpoint version %d", kind, env.Version)
	}
	if err := msgpack.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s checkpoint: %w", kind, err)
	}
	return nil
}

// SaveFile writes v to path.
func SaveFile(ctx context.Context, c Creator, path, kind string, v any) error {
	w, err := c.Create(ctx, path)
	if err != nil {
		return err
	}
	if err := Save(w, kind, v); err != nil {
		Discard(w)
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a checkpoint from path into v.
func LoadFile(ctx context.Context, l loader.FileLoader, path, kind string, v any) error {
	r, err := l.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer r.Close()
	return Load(r, kind, v)
}

// marshal sorts map keys so equal inputs produce byte-identical checkpoints.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
