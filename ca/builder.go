package ca

import (
	"regexp/syntax"
	"unicode/utf8"

	"github.com/coregx/countauto/internal/conv"
)

// BuildOption configures Compile.
type BuildOption func(*buildConfig)

type buildConfig struct {
	maxRecursionDepth int
	asciiOnly         bool
}

func defaultBuildConfig() buildConfig {
	return buildConfig{maxRecursionDepth: 100}
}

// WithMaxRecursionDepth bounds the recursive AST walk. Patterns nested
// deeper than this fail with ErrUnsupportedOperation rather than
// overflowing the Go call stack.
func WithMaxRecursionDepth(n int) BuildOption {
	return func(c *buildConfig) { c.maxRecursionDepth = n }
}

// WithASCIIOnly selects the raw single-byte encoding for "." (AnyByte)
// instead of the full Unicode rune trie (AnyChar). Useful when the input
// is known to be ASCII or arbitrary binary data.
func WithASCIIOnly(asciiOnly bool) BuildOption {
	return func(c *buildConfig) { c.asciiOnly = asciiOnly }
}

// position is a Glushkov position: a CA state paired with the byte range
// (or wildcard) a predecessor must consume to reach it.
type position struct {
	state    StateID
	lo, hi   byte
	wildcard bool
}

// fragment is a partially built sub-automaton: its first positions (entry
// points), last states (exit points to be wired to whatever follows), and
// whether it accepts the empty string.
type fragment struct {
	first         []position
	last          []StateID
	nullable      bool
	frontAnchored bool
	backAnchored  bool
}

type rawTransition struct {
	lo, hi   byte
	wildcard bool
	target   StateID
	guard    Guard
	op       Operator
}

// Builder constructs a CA from a regexp/syntax AST using Glushkov's
// position-automaton technique, augmented with counters for bounded
// repetition. The byte-class alphabet is computed incrementally: every
// literal or character class range contributes boundaries to a
// ByteClassSet, folded into real classes only once the whole pattern has
// been walked (finalize).
type Builder struct {
	ca             CA
	rawTransitions [][]rawTransition
	classSet       *ByteClassSet
	rangeBuilder   *RangeBuilder
	curCounter     CounterID
	depth          int
	cfg            buildConfig
}

const (
	anyCharKey      = "ca.AnyChar"
	anyCharNotNLKey = "ca.AnyCharNotNL"
)

func newBuilder(cfg buildConfig) *Builder {
	b := &Builder{
		classSet:     NewByteClassSet(),
		rangeBuilder: NewRangeBuilder(),
		cfg:          cfg,
	}
	b.ca.Counters = append(b.ca.Counters, Counter{}) // index 0: unused sentinel
	b.addState(NoCounter)                            // state 0: InitialState
	return b
}

// Compile parses pattern with regexp/syntax and builds a CA from it.
// Unlike Simplify()-based compilation, bounded Repeat nodes are preserved
// as counters rather than unrolled into concatenations — that preservation
// is the entire point of this engine.
func Compile(pattern string, opts ...BuildOption) (*CA, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, &BuildError{Err: ErrFailedToParse, Detail: err.Error()}
	}
	return CompileAST(re, opts...)
}

// CompileAST builds a CA directly from an already-parsed AST, letting a
// caller that also needs the AST for its own purposes (prefilter literal
// extraction, say) parse the pattern exactly once.
func CompileAST(re *syntax.Regexp, opts ...BuildOption) (*CA, error) {
	cfg := defaultBuildConfig()
	for _, o := range opts {
		o(&cfg)
	}

	b := newBuilder(cfg)
	frag, err := b.compileTop(re)
	if err != nil {
		return nil, err
	}
	b.finish(frag)
	b.finalize()
	return &b.ca, nil
}

func (b *Builder) addState(counter CounterID) StateID {
	id := StateID(conv.IntToUint32(len(b.ca.States)))
	b.ca.States = append(b.ca.States, State{Counter: counter})
	b.rawTransitions = append(b.rawTransitions, nil)
	return id
}

// edgeGuardOp implements the edge-construction rule: the guard and
// operator a transition from origin to target must carry, determined
// purely by the two states' attached counters.
func (b *Builder) edgeGuardOp(origin, target StateID) (Guard, Operator) {
	oc := b.ca.States[origin].Counter
	tc := b.ca.States[target].Counter
	switch {
	case oc == NoCounter && tc == NoCounter:
		return GuardTrue, OpNoop
	case oc == NoCounter && tc != NoCounter:
		return GuardTrue, OpRst
	case oc == tc:
		return GuardTrue, OpID
	case tc == NoCounter:
		if b.ca.Counters[oc].Min == 0 {
			return GuardTrue, OpNoop
		}
		return GuardCanExit, OpNoop
	default:
		if b.ca.Counters[oc].Min == 0 {
			return GuardTrue, OpRst
		}
		return GuardCanExit, OpRst
	}
}

func (b *Builder) addTransition(origin StateID, lo, hi byte, target StateID) {
	g, op := b.edgeGuardOp(origin, target)
	b.classSet.SetRange(lo, hi)
	b.rawTransitions[origin] = append(b.rawTransitions[origin], rawTransition{lo: lo, hi: hi, target: target, guard: g, op: op})
}

func (b *Builder) addWildcardTransition(origin, target StateID) {
	g, op := b.edgeGuardOp(origin, target)
	b.rawTransitions[origin] = append(b.rawTransitions[origin], rawTransition{wildcard: true, target: target, guard: g, op: op})
}

// addTransitionStar is the back-edge rule for a Star not nested in any
// counter: the origin's own counter (if any, from an enclosing scope that
// doesn't exist here by construction) is irrelevant; only the target's
// counter decides between Noop and Rst, and the guard is always True —
// a star outside a counter never needs a CanExit guard to loop.
func (b *Builder) addTransitionStar(origin StateID, lo, hi byte, wildcard bool, target StateID) {
	tc := b.ca.States[target].Counter
	op := OpNoop
	if tc != NoCounter {
		op = OpRst
	}
	if !wildcard {
		b.classSet.SetRange(lo, hi)
	}
	b.rawTransitions[origin] = append(b.rawTransitions[origin], rawTransition{lo: lo, hi: hi, wildcard: wildcard, target: target, guard: GuardTrue, op: op})
}

// addTransitionRepeat is the back-edge rule for a bounded Repeat: CanIncr
// guarded if the counter has an upper bound, unconditional otherwise.
func (b *Builder) addTransitionRepeat(origin StateID, lo, hi byte, wildcard bool, target StateID, counter CounterID) {
	g := GuardTrue
	if b.ca.Counters[counter].Max != -1 {
		g = GuardCanIncr
	}
	if !wildcard {
		b.classSet.SetRange(lo, hi)
	}
	b.rawTransitions[origin] = append(b.rawTransitions[origin], rawTransition{lo: lo, hi: hi, wildcard: wildcard, target: target, guard: g, op: OpIncr})
}

func (b *Builder) wireInto(origin StateID, p position) {
	if p.wildcard {
		b.addWildcardTransition(origin, p.state)
	} else {
		b.addTransition(origin, p.lo, p.hi, p.state)
	}
}

func (b *Builder) addBackEdges(sf fragment) {
	for _, last := range sf.last {
		for _, p := range sf.first {
			if b.curCounter == NoCounter {
				b.addTransitionStar(last, p.lo, p.hi, p.wildcard, p.state)
			} else {
				b.wireInto(last, p)
			}
		}
	}
}

func (b *Builder) markFinal(s StateID) {
	st := &b.ca.States[s]
	if st.Counter == NoCounter {
		st.Final = FinalTrue
		return
	}
	if b.ca.Counters[st.Counter].Min == 0 {
		st.Final = FinalTrue
	} else {
		st.Final = FinalCanExit
	}
}

// finish wires the top-level fragment into InitialState, auto-wrapping an
// unanchored .* loop on whichever end the pattern didn't anchor itself.
func (b *Builder) finish(frag fragment) {
	if frag.frontAnchored {
		for _, p := range frag.first {
			b.wireInto(InitialState, p)
		}
	} else {
		b.addWildcardTransition(InitialState, InitialState)
		for _, p := range frag.first {
			b.wireInto(InitialState, p)
		}
	}

	if frag.backAnchored {
		for _, s := range frag.last {
			b.markFinal(s)
		}
		if frag.nullable {
			b.ca.States[InitialState].Final = FinalTrue
		}
		return
	}

	sink := b.addState(NoCounter)
	b.ca.States[sink].Final = FinalTrue
	b.addWildcardTransition(sink, sink)
	for _, s := range frag.last {
		b.markFinal(s)
		b.addWildcardTransition(s, sink)
	}
	if frag.nullable {
		b.ca.States[InitialState].Final = FinalTrue
		if frag.frontAnchored {
			b.addWildcardTransition(InitialState, sink)
		}
	}
}

// finalize folds the recorded byte-range boundaries into real classes and
// rewrites every raw transition in terms of them.
func (b *Builder) finalize() {
	bc := b.classSet.ByteClasses()
	wildcard := conv.IntToUint16(bc.AlphabetLen())
	b.ca.Classes = bc
	b.ca.Wildcard = wildcard

	for sid := range b.ca.States {
		var out []Transition
		for _, rt := range b.rawTransitions[sid] {
			if rt.wildcard {
				out = append(out, Transition{Class: wildcard, Target: rt.target, Guard: rt.guard, Op: rt.op})
				continue
			}
			c := rt.lo
			for {
				cls := bc.Get(c)
				runEnd := c
				for runEnd < rt.hi && bc.Get(runEnd+1) == cls {
					runEnd++
				}
				out = append(out, Transition{Class: uint16(cls), Target: rt.target, Guard: rt.guard, Op: rt.op})
				if runEnd == rt.hi {
					break
				}
				c = runEnd + 1
			}
		}
		b.ca.States[sid].Transitions = out
	}
}

// compileTop handles the outermost Concat specially: BeginText/EndText are
// only legal as its first/last child.
func (b *Builder) compileTop(re *syntax.Regexp) (fragment, error) {
	switch re.Op {
	case syntax.OpConcat:
		return b.compileConcat(re.Sub, true)
	case syntax.OpBeginText, syntax.OpEndText:
		return b.compileConcat([]*syntax.Regexp{re}, true)
	default:
		return b.compile(re)
	}
}

func (b *Builder) compile(re *syntax.Regexp) (fragment, error) {
	b.depth++
	defer func() { b.depth-- }()
	if b.depth > b.cfg.maxRecursionDepth {
		return fragment{}, &BuildError{Err: ErrUnsupportedOperation, Detail: "max recursion depth exceeded"}
	}

	switch re.Op {
	case syntax.OpEmptyMatch, syntax.OpNoMatch:
		return fragment{nullable: re.Op == syntax.OpEmptyMatch}, nil
	case syntax.OpLiteral:
		return b.compileLiteral(re)
	case syntax.OpCharClass:
		return b.compileCharClass(re)
	case syntax.OpAnyChar:
		return b.compileAnyChar()
	case syntax.OpAnyCharNotNL:
		return b.compileAnyCharNotNL()
	case syntax.OpCapture:
		return b.compile(re.Sub[0])
	case syntax.OpConcat:
		return b.compileConcat(re.Sub, false)
	case syntax.OpAlternate:
		return b.compileAlternate(re.Sub)
	case syntax.OpStar:
		return b.compileStar(re.Sub[0])
	case syntax.OpPlus:
		return b.compilePlus(re.Sub[0])
	case syntax.OpQuest:
		return b.compileQuest(re.Sub[0])
	case syntax.OpRepeat:
		return b.compileRepeat(re.Sub[0], re.Min, re.Max)
	case syntax.OpBeginText, syntax.OpEndText:
		return fragment{}, &BuildError{Err: ErrWeirdAnchor}
	default:
		// OpBeginLine, OpEndLine, OpWordBoundary, OpNoWordBoundary and any
		// future syntax.Op this builder doesn't know about.
		return fragment{}, &BuildError{Err: ErrUnsupportedOperation}
	}
}

func (b *Builder) concatTwo(a, f fragment) fragment {
	for _, last := range a.last {
		for _, p := range f.first {
			b.wireInto(last, p)
		}
	}
	first := append([]position{}, a.first...)
	if a.nullable {
		first = append(first, f.first...)
	}
	last := append([]StateID{}, f.last...)
	if f.nullable {
		last = append(last, a.last...)
	}
	return fragment{first: first, last: last, nullable: a.nullable && f.nullable}
}

func (b *Builder) compileConcat(subs []*syntax.Regexp, topLevel bool) (fragment, error) {
	if len(subs) == 0 {
		return fragment{nullable: true}, nil
	}

	start, end := 0, len(subs)
	frontAnchor := false
	backAnchor := false
	if topLevel && subs[start].Op == syntax.OpBeginText {
		frontAnchor = true
		start++
	}
	if topLevel && end > start && subs[end-1].Op == syntax.OpEndText {
		backAnchor = true
		end--
	}

	result := fragment{nullable: true}
	for i := start; i < end; i++ {
		sf, err := b.compile(subs[i])
		if err != nil {
			return fragment{}, err
		}
		result = b.concatTwo(result, sf)
	}
	result.frontAnchored = frontAnchor
	result.backAnchored = backAnchor
	return result, nil
}

func (b *Builder) compileAlternate(subs []*syntax.Regexp) (fragment, error) {
	var result fragment
	for _, s := range subs {
		sf, err := b.compile(s)
		if err != nil {
			return fragment{}, err
		}
		result.first = append(result.first, sf.first...)
		result.last = append(result.last, sf.last...)
		result.nullable = result.nullable || sf.nullable
	}
	return result, nil
}

func (b *Builder) compileStar(sub *syntax.Regexp) (fragment, error) {
	sf, err := b.compile(sub)
	if err != nil {
		return fragment{}, err
	}
	b.addBackEdges(sf)
	sf.nullable = true
	return sf, nil
}

// compilePlus adds the same back-edges compileStar would, but only marks
// the fragment nullable if the body already was — this gives the same
// transition structure as concatenating a copy of the body with its own
// star, without actually duplicating any states.
func (b *Builder) compilePlus(sub *syntax.Regexp) (fragment, error) {
	sf, err := b.compile(sub)
	if err != nil {
		return fragment{}, err
	}
	b.addBackEdges(sf)
	return sf, nil
}

func (b *Builder) compileQuest(sub *syntax.Regexp) (fragment, error) {
	sf, err := b.compile(sub)
	if err != nil {
		return fragment{}, err
	}
	sf.nullable = true
	return sf, nil
}

func (b *Builder) compileRepeat(sub *syntax.Regexp, min, max int) (fragment, error) {
	if min == 0 && max == -1 {
		return b.compileStar(sub)
	}
	if b.curCounter != NoCounter {
		return fragment{}, &BuildError{Err: ErrNestedRepetition}
	}

	cid := CounterID(conv.IntToUint32(len(b.ca.Counters)))
	b.ca.Counters = append(b.ca.Counters, Counter{Min: min, Max: max})

	b.curCounter = cid
	sf, err := b.compile(sub)
	b.curCounter = NoCounter
	if err != nil {
		return fragment{}, err
	}

	for _, last := range sf.last {
		for _, p := range sf.first {
			b.addTransitionRepeat(last, p.lo, p.hi, p.wildcard, p.state, cid)
		}
	}

	if sf.nullable {
		b.ca.Counters[cid].Min = 0
	}
	sf.nullable = b.ca.Counters[cid].Min == 0
	return sf, nil
}

func (b *Builder) compileLiteral(re *syntax.Regexp) (fragment, error) {
	result := fragment{nullable: true}
	for _, r := range re.Rune {
		rf, err := b.runeFrag(r)
		if err != nil {
			return fragment{}, err
		}
		result = b.concatTwo(result, rf)
	}
	return result, nil
}

func (b *Builder) runeFrag(r rune) (fragment, error) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	if r > utf8.MaxRune || (r == utf8.RuneError && n == 1 && r != '�') {
		return fragment{}, &BuildError{Err: ErrInvalidUTF8}
	}

	var first position
	var prev StateID
	for i := 0; i < n; i++ {
		st := b.addState(b.curCounter)
		if i == 0 {
			first = position{state: st, lo: buf[0], hi: buf[0]}
		} else {
			b.addTransition(prev, buf[i], buf[i], st)
		}
		prev = st
	}
	return fragment{first: []position{first}, last: []StateID{prev}}, nil
}

func (b *Builder) byteRangeFrag(ranges [][2]byte) fragment {
	st := b.addState(b.curCounter)
	var first []position
	for _, r := range ranges {
		first = append(first, position{state: st, lo: r[0], hi: r[1]})
	}
	return fragment{first: first, last: []StateID{st}}
}

func (b *Builder) compileCharClass(re *syntax.Regexp) (fragment, error) {
	b.rangeBuilder.Prepare(re)
	for i := 0; i+1 < len(re.Rune); i += 2 {
		b.rangeBuilder.AddRuneRange(re.Rune[i], re.Rune[i+1])
	}
	return b.rangeFrag(b.rangeBuilder), nil
}

func (b *Builder) compileAnyChar() (fragment, error) {
	if b.cfg.asciiOnly {
		return b.byteRangeFrag([][2]byte{{0x00, 0xFF}}), nil
	}
	b.rangeBuilder.Prepare(anyCharKey)
	b.rangeBuilder.AddRuneRange(0, utf8.MaxRune)
	return b.rangeFrag(b.rangeBuilder), nil
}

func (b *Builder) compileAnyCharNotNL() (fragment, error) {
	if b.cfg.asciiOnly {
		return b.byteRangeFrag([][2]byte{{0x00, 0x09}, {0x0B, 0xFF}}), nil
	}
	b.rangeBuilder.Prepare(anyCharNotNLKey)
	b.rangeBuilder.AddRuneRange(0, '\n'-1)
	b.rangeBuilder.AddRuneRange('\n'+1, utf8.MaxRune)
	return b.rangeFrag(b.rangeBuilder), nil
}

// rangeFrag materializes a RangeBuilder trie into fresh CA states. Each
// trie node becomes exactly one position; nodes whose only continuation
// is RangeSeqEnd become the fragment's last states directly — no
// separate join state is needed since the trie is already acyclic and
// terminal nodes never get revisited.
func (b *Builder) rangeFrag(rb *RangeBuilder) fragment {
	memo := make(map[RangeID]StateID)
	var last []StateID

	var visit func(id RangeID) StateID
	visit = func(id RangeID) StateID {
		if st, ok := memo[id]; ok {
			return st
		}
		st := b.addState(b.curCounter)
		memo[id] = st

		terminal := true
		for _, childID := range rb.ranges[id].next {
			if childID == RangeSeqEnd {
				continue
			}
			terminal = false
			child := rb.ranges[childID]
			childSt := visit(childID)
			b.addTransition(st, child.lo, child.hi, childSt)
		}
		if terminal {
			last = append(last, st)
		}
		return st
	}

	var first []position
	for _, rootID := range rb.Root() {
		node := rb.ranges[rootID]
		st := visit(rootID)
		first = append(first, position{state: st, lo: node.lo, hi: node.hi})
	}
	return fragment{first: first, last: last}
}
