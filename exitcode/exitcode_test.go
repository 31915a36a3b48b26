package exitcode

import (
	"fmt"
	"testing"

	"github.com/coregx/countauto/ca"
	"github.com/coregx/countauto/csa"
)

func TestFor_Nil(t *testing.T) {
	if got := For(nil); got != OK {
		t.Errorf("For(nil) = %d, want %d", got, OK)
	}
}

func TestFor_KnownSentinels(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ca.ErrNestedRepetition, NestedRepetition},
		{ca.ErrUnsupportedOperation, UnsupportedOperation},
		{ca.ErrWeirdAnchor, WeirdAnchor},
		{ca.ErrInvalidUTF8, InvalidUTF8},
		{ca.ErrFailedToParse, FailedToParse},
		{csa.ErrDoubleIncr, DoubleIncr},
		{csa.ErrInternalFailure, InternalFailure},
	}
	for _, tc := range tests {
		if got := For(tc.err); got != tc.want {
			t.Errorf("For(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestFor_WrappedSentinel(t *testing.T) {
	wrapped := &ca.BuildError{Err: ca.ErrNestedRepetition, Detail: "inside {2,3}"}
	if got := For(wrapped); got != NestedRepetition {
		t.Errorf("For(wrapped) = %d, want %d", got, NestedRepetition)
	}
}

func TestFor_UnknownError(t *testing.T) {
	if got := For(fmt.Errorf("something else entirely")); got != Usage {
		t.Errorf("For(unknown) = %d, want %d", got, Usage)
	}
}
