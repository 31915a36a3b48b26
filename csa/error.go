package csa

import (
	"errors"
	"fmt"
)

// Sentinel errors a running Config can hit. These mirror the builder's
// ca.BuildError family but arise while stepping a matcher rather than
// while compiling one.
var (
	// ErrDoubleIncr: a counter position was asked to satisfy a CanIncr
	// guard while it still carried a postponed increment from the
	// previous step that was never folded into the buffer (an
	// unresolved Plus slot), or two transitions wrote conflicting
	// read-kinds — one plain, one postponed — into the same buffer slot
	// for the same target state in a single step. Either way the engine
	// can express at most one pending increment per position per byte;
	// seeing two is a construction bug, not a bad pattern.
	ErrDoubleIncr = errors.New("csa: counter position incremented twice in one step")

	// ErrInternalFailure: an invariant the transition builder relies on
	// did not hold (an update program referenced a slot it never
	// allocated, or similar).
	ErrInternalFailure = errors.New("csa: internal invariant violated")
)

// RuntimeError wraps a sentinel with the state the engine was in when it
// fired.
type RuntimeError struct {
	Err    error
	Detail string
}

func (e *RuntimeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("csa runtime error: %v", e.Err)
	}
	return fmt.Sprintf("csa runtime error: %v: %s", e.Err, e.Detail)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
