// Package exitcode maps the ca/csa packages' sentinel errors onto the
// process exit codes a CLI should terminate with. It is the only place in
// this module that knows about process exit codes: ca and csa themselves
// only ever return error, never call os.Exit.
package exitcode

import (
	"errors"

	"github.com/coregx/countauto/ca"
	"github.com/coregx/countauto/csa"
)

// Process exit codes for engine failures, reserved 10-16 so they don't
// collide with the CLI's own usage-error code (1).
const (
	DoubleIncr           = 10
	InternalFailure      = 11
	NestedRepetition     = 12
	UnsupportedOperation = 13
	InvalidUTF8          = 14
	FailedToParse        = 15
	WeirdAnchor          = 16

	// OK and Usage cover the non-engine cases a CLI also needs.
	OK    = 0
	Usage = 1
)

// For reports the exit code that corresponds to err, or Usage if err
// doesn't match any known engine sentinel (the caller should treat that as
// a generic failure, not silently succeed).
func For(err error) int {
	if err == nil {
		return OK
	}
	switch {
	case errors.Is(err, csa.ErrDoubleIncr):
		return DoubleIncr
	case errors.Is(err, csa.ErrInternalFailure):
		return InternalFailure
	case errors.Is(err, ca.ErrNestedRepetition):
		return NestedRepetition
	case errors.Is(err, ca.ErrUnsupportedOperation):
		return UnsupportedOperation
	case errors.Is(err, ca.ErrInvalidUTF8):
		return InvalidUTF8
	case errors.Is(err, ca.ErrFailedToParse):
		return FailedToParse
	case errors.Is(err, ca.ErrWeirdAnchor):
		return WeirdAnchor
	default:
		return Usage
	}
}
