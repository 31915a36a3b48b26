package csa

import (
	"regexp/syntax"

	"github.com/coregx/countauto/ca"
	"github.com/coregx/countauto/prefilter"
)

// Matcher wraps a compiled CA with a lazily-determinized counting-set
// engine, giving a simple match-a-line-at-a-time API to callers that
// don't need direct access to the stepping protocol.
//
// The determinization cache (Config shapes and their byte-class
// transition tables) lives for as long as the Matcher does and is shared
// across every call to Match: the first line exercising a given shape
// pays to compute its transitions, every later line reusing that shape
// doesn't. Per-match state — which cached Config is current and the live
// counter buffer — resets on every call.
//
// When the pattern has a required literal, Matcher also carries a prefilter
// that can reject a line without ever stepping the automaton. The prefilter
// is wrapped in a prefilter.Tracker so a literal that turns out to be a poor
// filter for the input actually being scanned (many candidates, few
// confirmed matches) gets retired rather than costing more than it saves.
// Either way Match's result is identical with or without the prefilter.
type Matcher struct {
	automaton *ca.CA
	eng       *engine
	cur       *cachedConfig
	buf       []CountingSet
	pf        prefilter.Prefilter
}

// Compile parses pattern once, builds the CA, and derives a required-literal
// prefilter from the same AST.
func Compile(pattern string, opts ...ca.BuildOption) (*Matcher, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, &ca.BuildError{Err: ca.ErrFailedToParse, Detail: err.Error()}
	}
	a, err := ca.CompileAST(re, opts...)
	if err != nil {
		return nil, err
	}
	m := New(a)
	m.pf = prefilter.WrapWithTracking(prefilter.FromAST(re))
	return m, nil
}

// New wraps an already-built CA with no prefilter.
func New(a *ca.CA) *Matcher {
	eng := newEngine(a)
	return &Matcher{automaton: a, eng: eng, cur: eng.initial}
}

// Reset returns the matcher to the initial configuration, discarding any
// live counter buffer.
func (m *Matcher) Reset() {
	m.cur = m.eng.initial
	m.buf = m.buf[:0]
}

// Step advances the match by one input byte, returning false once the
// configuration is dead (no further byte can ever make it accept, so the
// caller may stop feeding input).
func (m *Matcher) Step(b byte) (bool, error) {
	class := m.automaton.ClassOf(b)
	next, buf, err := m.eng.step(m.cur, m.buf, class)
	if err != nil {
		return false, err
	}
	m.cur, m.buf = next, buf
	return !m.dead(), nil
}

func (m *Matcher) dead() bool {
	return len(m.cur.config.Normal) == 0 && len(m.cur.config.Counters) == 0
}

// Accepting reports whether the current configuration accepts the input
// consumed so far.
func (m *Matcher) Accepting() bool {
	return testFinalCondition(m.automaton, &m.cur.config, m.buf)
}

// Match reports whether any substring of b is accepted.
func (m *Matcher) Match(b []byte) (bool, error) {
	if m.pf != nil {
		// A retired tracker's Find always reports -1, so it is only
		// consulted while still active.
		tracked, ok := m.pf.(*prefilter.TrackedPrefilter)
		if (!ok || tracked.IsActive()) && m.pf.Find(b, 0) == -1 {
			return false, nil
		}
	}

	m.Reset()
	for _, c := range b {
		alive, err := m.Step(c)
		if err != nil {
			return false, err
		}
		if !alive {
			return false, nil
		}
	}
	matched := m.Accepting()
	if tracked, ok := m.pf.(*prefilter.TrackedPrefilter); ok && matched {
		tracked.ConfirmMatch()
	}
	return matched, nil
}

// MatchString is the string convenience form of Match.
func (m *Matcher) MatchString(s string) (bool, error) {
	return m.Match([]byte(s))
}

// CA returns the underlying compiled automaton.
func (m *Matcher) CA() *ca.CA { return m.automaton }
