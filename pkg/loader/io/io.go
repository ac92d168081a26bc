package io

import (
	"context"
	"io"
	"os"
)

// IOFileLoader loads files directly from the local filesystem.
type IOFileLoader struct{}

// NewIOFileLoader creates a new filesystem-based file loader.
func NewIOFileLoader() *IOFileLoader {
	return &IOFileLoader{}
}

// Open opens the file for reading. The context is only checked before the
// file is opened; local reads are not cancellable.
func (l *IOFileLoader) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(path)
}
