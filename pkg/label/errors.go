package label

import (
	"errors"
	"fmt"
)

// ErrDuplicateLabel is returned under DuplicateFail when one label names two
// different source identifiers.
var ErrDuplicateLabel = errors.New("label maps to more than one source id")

// ParseError reports a malformed input line. Parsing stops at the first one.
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
