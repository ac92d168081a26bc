package relvec

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRelation is returned when a relation has no pairs to average.
	ErrEmptyRelation = errors.New("relation has no qualifying pairs")
	// ErrMissingVector is returned when an entity cannot be resolved to a vector.
	ErrMissingVector = errors.New("no vector for entity")
	// ErrDimensionMismatch is returned when two vectors cannot be combined.
	ErrDimensionMismatch = errors.New("vector dimensions differ")
)

// ParseError reports a malformed relation record.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
