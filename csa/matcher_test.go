package csa

import (
	"testing"

	"github.com/coregx/countauto/ca"
)

func mustMatch(t *testing.T, m *Matcher, s string) bool {
	t.Helper()
	ok, err := m.MatchString(s)
	if err != nil {
		t.Fatalf("MatchString(%q): %v", s, err)
	}
	return ok
}

func TestMatcher_BoundedRepeat(t *testing.T) {
	m, err := Compile("^a{3,5}$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tests := []struct {
		in   string
		want bool
	}{
		{"aa", false},
		{"aaa", true},
		{"aaaa", true},
		{"aaaaa", true},
		{"aaaaaa", false},
	}
	for _, tc := range tests {
		if got := mustMatch(t, m, tc.in); got != tc.want {
			t.Errorf("MatchString(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMatcher_ExactRepeat(t *testing.T) {
	m, err := Compile("^a{4}$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !mustMatch(t, m, "aaaa") {
		t.Error("a{4} should match exactly 4 a's")
	}
	if mustMatch(t, m, "aaa") || mustMatch(t, m, "aaaaa") {
		t.Error("a{4} should reject 3 or 5 a's")
	}
}

func TestMatcher_UnanchoredSubstring(t *testing.T) {
	m, err := Compile("a{2,3}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !mustMatch(t, m, "xxaaxx") {
		t.Error("unanchored a{2,3} should find the match inside the line")
	}
	if mustMatch(t, m, "xxaxx") {
		t.Error("unanchored a{2,3} should not match a single 'a'")
	}
}

func TestMatcher_ConcatenatedCounters(t *testing.T) {
	m, err := Compile("^a{2,3}b{1,2}$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, s := range []string{"aab", "aaab", "aabb", "aaabb"} {
		if !mustMatch(t, m, s) {
			t.Errorf("%q should match a{2,3}b{1,2}", s)
		}
	}
	for _, s := range []string{"ab", "aaaab", "aabbb"} {
		if mustMatch(t, m, s) {
			t.Errorf("%q should not match a{2,3}b{1,2}", s)
		}
	}
}

func TestMatcher_ResetIsIdempotent(t *testing.T) {
	m, err := Compile("^a{2,4}$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	first := mustMatch(t, m, "aaa")
	second := mustMatch(t, m, "aaa")
	if first != second || !first {
		t.Errorf("repeated MatchString calls should give the same result: %v, %v", first, second)
	}
}

func TestMatcher_UnboundedMin(t *testing.T) {
	m, err := Compile("^a{3,}$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if mustMatch(t, m, "aa") {
		t.Error("a{3,} should reject fewer than 3 a's")
	}
	if !mustMatch(t, m, "aaa") || !mustMatch(t, m, "aaaaaaaaaa") {
		t.Error("a{3,} should accept 3 or more a's")
	}
}

func TestMatcher_LargeBoundStaysBounded(t *testing.T) {
	// A stress check that a wide bound doesn't blow up: correctness at
	// the edges of a{1,64} is what matters here, not performance, but a
	// slow/incorrect implementation would very likely get one of these
	// wrong or hang.
	m, err := Compile("^a{1,64}$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for n := 0; n <= 70; n++ {
		s := make([]byte, n)
		for i := range s {
			s[i] = 'a'
		}
		want := n >= 1 && n <= 64
		if got := mustMatch(t, m, string(s)); got != want {
			t.Errorf("len %d: MatchString = %v, want %v", n, got, want)
		}
	}
}

func TestMatcher_PrefilterAgreesWithUnfiltered(t *testing.T) {
	// "^foo.*a{2,3}$" has a required literal ("foo") that a prefilter can
	// reject on, but Match's result must be identical to running the CSA
	// directly either way.
	m, err := Compile("^foo.*a{2,3}$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	bare := New(m.automaton)

	for _, s := range []string{"fooaa", "fooaaa", "fooaaaa", "baraa", "fo", ""} {
		want, err := bare.Match([]byte(s))
		if err != nil {
			t.Fatalf("bare.Match(%q): %v", s, err)
		}
		got, err := m.Match([]byte(s))
		if err != nil {
			t.Fatalf("Match(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("Match(%q) = %v, want %v (prefiltered result disagrees with unfiltered)", s, got, want)
		}
	}
}

func TestCSA_ExpandAll(t *testing.T) {
	a, err := ca.Compile("^a{2,3}$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	graph := NewCSA(a).ExpandAll(1000)
	if len(graph.Nodes) == 0 {
		t.Fatal("expected at least one reachable node")
	}
	if _, ok := graph.Nodes[graph.Start]; !ok {
		t.Error("graph should contain its own start shape")
	}
}
