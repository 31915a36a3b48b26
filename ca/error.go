package ca

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Builder. Wrap with errors.Is to test for a
// specific failure kind; cmd/ca_cli maps these to process exit codes.
var (
	// ErrNestedRepetition: a counted Repeat was found inside another
	// counted Repeat. Counters do not nest.
	ErrNestedRepetition = errors.New("ca: nested counted repetition")

	// ErrUnsupportedOperation: the AST used a construct the builder
	// refuses (word boundaries, back-references, look-around).
	ErrUnsupportedOperation = errors.New("ca: unsupported regexp operation")

	// ErrWeirdAnchor: ^ or $ appeared somewhere other than the outermost
	// concatenation's boundaries.
	ErrWeirdAnchor = errors.New("ca: anchor outside outermost concatenation")

	// ErrInvalidUTF8: a rune could not be encoded to UTF-8 bytes.
	ErrInvalidUTF8 = errors.New("ca: invalid UTF-8 rune")

	// ErrFailedToParse: the external regexp/syntax parser rejected the
	// pattern.
	ErrFailedToParse = errors.New("ca: failed to parse pattern")
)

// BuildError wraps a builder failure with the sentinel it corresponds to,
// plus a human-readable detail string.
type BuildError struct {
	Err    error
	Detail string
}

func (e *BuildError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("ca build error: %v", e.Err)
	}
	return fmt.Sprintf("ca build error: %v: %s", e.Err, e.Detail)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
