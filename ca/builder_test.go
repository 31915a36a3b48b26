package ca

import (
	"errors"
	"testing"
)

// run is a tiny backtracking simulator over a compiled CA, used to check
// end-to-end acceptance without involving the lazy determinization csa
// implements. It ignores counter guards, treating every transition as
// unconditional: fine for plain literals/alternation/star shapes, and
// deliberately not used for Repeat-bearing patterns (those are checked
// structurally instead, since their semantics depend on counting sets).
func run(a *CA, s StateID, input []byte, depth int) bool {
	if depth > 10_000 {
		return false
	}
	st := a.States[s]
	if len(input) == 0 {
		return st.Final == FinalTrue
	}
	class := a.ClassOf(input[0])
	for _, t := range st.Transitions {
		if t.Matches(class, a.Wildcard) && run(a, t.Target, input[1:], depth+1) {
			return true
		}
	}
	return false
}

func accepts(t *testing.T, a *CA, s string) bool {
	t.Helper()
	return run(a, InitialState, []byte(s), 0)
}

func TestCompile_Literal(t *testing.T) {
	a, err := Compile("abc")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !accepts(t, a, "xxabcxx") {
		t.Error("unanchored literal should match as a substring")
	}
	if accepts(t, a, "xx") {
		t.Error("should not match when literal is absent")
	}
}

func TestCompile_AnchoredLiteral(t *testing.T) {
	a, err := Compile("^abc$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !accepts(t, a, "abc") {
		t.Error("anchored literal should match exactly")
	}
	if accepts(t, a, "xabc") || accepts(t, a, "abcx") {
		t.Error("anchored literal should not match with extra surrounding bytes")
	}
}

func TestCompile_CharClassAndAlternate(t *testing.T) {
	a, err := Compile("^(cat|dog)$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !accepts(t, a, "cat") || !accepts(t, a, "dog") {
		t.Error("alternation should accept both branches")
	}
	if accepts(t, a, "cow") {
		t.Error("alternation should reject a non-matching branch")
	}
}

func TestCompile_Star(t *testing.T) {
	a, err := Compile("^a*$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, s := range []string{"", "a", "aaaa"} {
		if !accepts(t, a, s) {
			t.Errorf("a* should accept %q", s)
		}
	}
	if accepts(t, a, "b") {
		t.Error("a* should reject 'b'")
	}
}

func TestCompile_WeirdAnchorRejected(t *testing.T) {
	_, err := Compile("a^b")
	if !errors.Is(err, ErrWeirdAnchor) {
		t.Errorf("Compile(\"a^b\") error = %v, want ErrWeirdAnchor", err)
	}
}

func TestCompile_WordBoundaryUnsupported(t *testing.T) {
	_, err := Compile(`\bfoo\b`)
	if !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("Compile with \\b error = %v, want ErrUnsupportedOperation", err)
	}
}

func TestCompile_NestedRepetitionRejected(t *testing.T) {
	_, err := Compile("(a{2,3}){4,5}")
	if !errors.Is(err, ErrNestedRepetition) {
		t.Errorf("Compile with nested repeat error = %v, want ErrNestedRepetition", err)
	}
}

func TestCompile_RepeatAllocatesCounter(t *testing.T) {
	a, err := Compile("a{3,7}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(a.Counters) != 2 {
		t.Fatalf("len(Counters) = %d, want 2 (sentinel + one real counter)", len(a.Counters))
	}
	c := a.Counters[1]
	if c.Min != 3 || c.Max != 7 {
		t.Errorf("counter = {%d,%d}, want {3,7}", c.Min, c.Max)
	}

	var sawIncr, sawCanIncrGuard bool
	for _, st := range a.States {
		if st.Counter != 1 {
			continue
		}
		for _, tr := range st.Transitions {
			if tr.Op == OpIncr {
				sawIncr = true
			}
			if tr.Guard == GuardCanIncr {
				sawCanIncrGuard = true
			}
		}
	}
	if !sawIncr {
		t.Error("expected at least one OpIncr transition inside the counter's scope")
	}
	if !sawCanIncrGuard {
		t.Error("expected the bounded counter's back-edge to carry GuardCanIncr")
	}
}

func TestCompile_UnboundedRepeatHasNoUpperGuard(t *testing.T) {
	a, err := Compile("a{3,}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	c := a.Counters[1]
	if c.Max != -1 {
		t.Errorf("Max = %d, want -1 (unbounded)", c.Max)
	}
	for _, st := range a.States {
		if st.Counter != 1 {
			continue
		}
		for _, tr := range st.Transitions {
			if tr.Op == OpIncr && tr.Guard == GuardCanIncr {
				t.Error("unbounded counter should never carry GuardCanIncr")
			}
		}
	}
}

func TestCompile_InvalidPattern(t *testing.T) {
	_, err := Compile("(unterminated")
	if !errors.Is(err, ErrFailedToParse) {
		t.Errorf("Compile with invalid pattern error = %v, want ErrFailedToParse", err)
	}
}

func TestCompile_ASCIIOnlyAnyChar(t *testing.T) {
	a, err := Compile("^.$", WithASCIIOnly(true))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !accepts(t, a, "\xff") {
		t.Error("ASCII-only '.' should match a raw non-UTF-8 byte")
	}
}
