package io

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	if err := os.WriteFile(path, []byte("10\tfoo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewIOFileLoader()
	r, err := l.Open(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil || string(b) != "10\tfoo\n" {
		t.Fatalf("unexpected content %q, %v", b, err)
	}
}

func TestOpenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewIOFileLoader().Open(ctx, "missing"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
