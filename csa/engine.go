package csa

import "github.com/coregx/countauto/ca"

// cachedConfig pairs a structural Config with its lazily-computed,
// byte-class-indexed transition table. It is always referenced by
// pointer: once interned, the same cachedConfig is shared by every
// Config.key() match for the lifetime of the engine.
type cachedConfig struct {
	config Config
	trans  []Trans
}

// engine is the shared, per-Matcher determinization cache: every distinct
// Config shape reached while matching is computed once and reused for as
// long as the Matcher lives, across as many Match calls as the caller
// makes.
type engine struct {
	automaton *ca.CA
	configs   map[string]*cachedConfig
	initial   *cachedConfig
}

func newEngine(a *ca.CA) *engine {
	e := &engine{automaton: a, configs: make(map[string]*cachedConfig)}
	e.initial = e.intern(Config{Normal: []ca.StateID{ca.InitialState}})
	return e
}

func (e *engine) intern(cfg Config) *cachedConfig {
	key := cfg.key()
	if c, ok := e.configs[key]; ok {
		return c
	}
	c := &cachedConfig{config: cfg, trans: make([]Trans, e.automaton.Wildcard)}
	e.configs[key] = c
	return c
}

// step computes (lazily, memoized) the transition out of cur on the given
// byte class and applies it to buf, returning the next cached config and
// the counter buffer to carry forward.
func (e *engine) step(cur *cachedConfig, buf []CountingSet, class uint16) (*cachedConfig, []CountingSet, error) {
	tr := &cur.trans[class]
	if tr.kind == transNotComputed {
		computed, err := e.computeTrans(cur, class)
		if err != nil {
			return nil, nil, err
		}
		*tr = computed
	}

	switch tr.kind {
	case transWithoutCounter:
		return tr.next, buf, nil
	case transSimple:
		return tr.simple.newConfig, executeUpdate(tr.simple, buf), nil
	case transSmall:
		idx := getGuardIndex(e.automaton, &cur.config, buf, tr.small.guards)
		u := tr.small.updates[idx]
		return u.newConfig, executeUpdate(u, buf), nil
	case transLarge:
		u, err := e.getUpdateLarge(cur, buf, tr.large)
		if err != nil {
			return nil, nil, err
		}
		return u.newConfig, executeUpdate(u, buf), nil
	default:
		return nil, nil, &RuntimeError{Err: ErrInternalFailure, Detail: "uncomputed transition reached"}
	}
}

// evalGuard evaluates a single guard's condition against the live counter
// buffer. A state's Plus slots carry a postponed increment, accounted for
// lazily by evaluating the guard against one more than the slot's stored
// value rather than mutating the buffer.
func evalGuard(a *ca.CA, g guard, cfg *Config, buf []CountingSet) bool {
	cs := findCounterState(cfg.Counters, g.state)
	cnt, _ := a.CounterOf(g.state)
	switch g.condition {
	case ca.GuardCanIncr:
		for _, slot := range cs.Normal {
			if cnt.CanIncr(int(buf[slot].Min())) {
				return true
			}
		}
		for _, slot := range cs.Plus {
			if cnt.CanIncr(int(buf[slot].Min()) + 1) {
				return true
			}
		}
		return false
	case ca.GuardCanExit:
		for _, slot := range cs.Normal {
			if cnt.CanExit(int(buf[slot].Max())) {
				return true
			}
		}
		for _, slot := range cs.Plus {
			if cnt.CanExit(int(buf[slot].Max()) + 1) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func getGuardIndex(a *ca.CA, cfg *Config, buf []CountingSet, guards []guard) int {
	idx := 0
	for i, g := range guards {
		if evalGuard(a, g, cfg, buf) {
			idx |= 1 << i
		}
	}
	return idx
}

// getUpdateLarge evaluates a partialTrans's guards against the live
// buffer and returns the (possibly newly-computed, then cached) update
// for the resulting bitmask.
func (e *engine) getUpdateLarge(cur *cachedConfig, buf []CountingSet, pt *partialTrans) (*update, error) {
	sat := make([]bool, len(pt.guards))
	mask := 0
	for i, g := range pt.guards {
		if evalGuard(e.automaton, g, &cur.config, buf) {
			sat[i] = true
			mask |= 1 << i
		}
	}
	if u, ok := pt.updates[mask]; ok {
		return u, nil
	}
	u, err := e.getUpdateForEvaluation(sat, pt)
	if err != nil {
		return nil, err
	}
	pt.updates[mask] = u
	return u, nil
}

// getUpdateForEvaluation builds the Update for one guard-satisfaction
// combination: it clones the transition's unconditional base state, folds
// in every conditionally-satisfied guard's contribution, and compiles the
// result.
func (e *engine) getUpdateForEvaluation(sat []bool, pt *partialTrans) (*update, error) {
	normalStates := append([]ca.StateID(nil), pt.normalStates...)
	counterStates := cloneCounterStates(pt.counterStates)
	lvalTab := pt.lvalTab.clone()
	rst := pt.reset.clone()

	for i, ok := range sat {
		if !ok {
			continue
		}
		for _, gl := range pt.guardedLVals[i] {
			if err := lvalTab.add(gl.slot, gl.lval); err != nil {
				return nil, &RuntimeError{Err: err, Detail: "conflicting postponed increment on a guarded transition"}
			}
			counterStates = insertCounterStateIfAbsent(counterStates, gl.lval.state)
		}
		for _, s := range pt.guardedReset[i] {
			counterStates = insertCounterStateIfAbsent(counterStates, s)
			rst.addState(s, e.automaton.States[s].Counter)
		}
		for _, s := range pt.guardedStates[i] {
			normalStates = insertSortedStateID(normalStates, s)
		}
	}

	prog, bufferSize, kind := buildUpdate(e.automaton, counterStates, lvalTab, rst)
	cfg := Config{Normal: normalStates, Counters: counterStates, BufferSize: bufferSize}
	cached := e.intern(cfg)
	return &update{kind: kind, newConfig: cached, prog: prog}, nil
}

func (e *engine) buildSimpleTrans(normalStates []ca.StateID, counterStates []CounterState, lvalTab *lvalueTable, rst *countersToReset) Trans {
	prog, bufferSize, kind := buildUpdate(e.automaton, counterStates, lvalTab, rst)
	cfg := Config{Normal: normalStates, Counters: counterStates, BufferSize: bufferSize}
	cached := e.intern(cfg)
	return Trans{kind: transSimple, simple: &update{kind: kind, newConfig: cached, prog: prog}}
}

func (e *engine) buildSmallTrans(pt *partialTrans) (Trans, error) {
	n := 1 << len(pt.guards)
	updates := make([]*update, n)
	for mask := 0; mask < n; mask++ {
		sat := make([]bool, len(pt.guards))
		for i := range pt.guards {
			sat[i] = mask&(1<<i) != 0
		}
		u, err := e.getUpdateForEvaluation(sat, pt)
		if err != nil {
			return Trans{}, err
		}
		updates[mask] = u
	}
	return Trans{kind: transSmall, small: &smallTrans{guards: pt.guards, updates: updates}}, nil
}

// computeTransNoCounter handles the transition out of a counter-free
// config: the result is either itself counter-free (transWithoutCounter,
// a pure structural move shared across every byte that reaches it) or the
// first entry into one or more fresh counter scopes (transSimple with an
// updateEnter that allocates a brand-new buffer, every slot {1}).
func (e *engine) computeTransNoCounter(newNormal []ca.StateID, newCounters []CounterState, rst *countersToReset) Trans {
	if len(newCounters) == 0 {
		cached := e.intern(Config{Normal: newNormal})
		return Trans{kind: transWithoutCounter, next: cached}
	}

	var groups slotGroups
	for _, g := range rst.groups {
		groups.indexOf(g.states)
	}
	for _, g := range rst.groups {
		idx := groups.indexOf(g.states)
		for _, s := range g.states {
			cs := findCounterState(newCounters, s)
			cs.Normal = insertSortedUint32(cs.Normal, uint32(idx))
		}
	}
	bufferSize := len(groups.groups)
	cached := e.intern(Config{Normal: newNormal, Counters: newCounters, BufferSize: bufferSize})
	return Trans{kind: transSimple, simple: &update{kind: updateEnter, newConfig: cached}}
}

// computeTrans builds the Trans for cur's outgoing edge on class, the
// core determinization step: walk every live position's matching
// transitions, classify counter-bearing positions' guarded edges by how
// many distinct guards they introduce, and dispatch to the matching
// eager/lazy update strategy.
func (e *engine) computeTrans(cur *cachedConfig, class uint16) (Trans, error) {
	a := e.automaton

	var newNormal []ca.StateID
	var newCounters []CounterState
	rst := &countersToReset{}

	for _, s := range cur.config.Normal {
		for _, t := range a.States[s].Transitions {
			if !t.Matches(class, a.Wildcard) {
				continue
			}
			if a.States[t.Target].Counter == ca.NoCounter {
				newNormal = insertSortedStateID(newNormal, t.Target)
				continue
			}
			newCounters = insertCounterStateIfAbsent(newCounters, t.Target)
			rst.addState(t.Target, a.States[t.Target].Counter)
		}
	}

	if len(cur.config.Counters) == 0 {
		return e.computeTransNoCounter(newNormal, newCounters, rst), nil
	}

	lvalTab := newLValueTable(cur.config.BufferSize)
	var guards []guard
	var guardedLVals [][]guardedLVal
	var guardedReset [][]ca.StateID
	var guardedStates [][]ca.StateID

	for _, cs := range cur.config.Counters {
		canIncrIdx, canExitIdx := -1, -1
		for _, t := range a.States[cs.State].Transitions {
			if !t.Matches(class, a.Wildcard) {
				continue
			}
			switch t.Guard {
			case ca.GuardCanIncr:
				if len(cs.Plus) != 0 {
					return Trans{}, &RuntimeError{Err: ErrDoubleIncr, Detail: "counter position still carries a postponed increment"}
				}
				if canIncrIdx == -1 {
					guards = append(guards, guard{state: cs.State, condition: ca.GuardCanIncr})
					guardedLVals = append(guardedLVals, nil)
					guardedReset = append(guardedReset, nil)
					guardedStates = append(guardedStates, nil)
					canIncrIdx = len(guards) - 1
				}
				for _, slot := range cs.Normal {
					guardedLVals[canIncrIdx] = append(guardedLVals[canIncrIdx], guardedLVal{slot: int(slot), lval: lvalue{state: t.Target, kind: lvalPlus}})
				}

			case ca.GuardCanExit:
				if canExitIdx == -1 {
					guards = append(guards, guard{state: cs.State, condition: ca.GuardCanExit})
					guardedLVals = append(guardedLVals, nil)
					guardedReset = append(guardedReset, nil)
					guardedStates = append(guardedStates, nil)
					canExitIdx = len(guards) - 1
				}
				switch t.Op {
				case ca.OpNoop:
					guardedStates[canExitIdx] = append(guardedStates[canExitIdx], t.Target)
				case ca.OpRst:
					guardedReset[canExitIdx] = append(guardedReset[canExitIdx], t.Target)
				default:
					return Trans{}, &RuntimeError{Err: ErrInternalFailure, Detail: "unexpected operator on a CanExit-guarded transition"}
				}

			case ca.GuardTrue:
				switch t.Op {
				case ca.OpID:
					newCounters = insertCounterStateIfAbsent(newCounters, t.Target)
					for _, slot := range cs.Normal {
						if err := lvalTab.add(int(slot), lvalue{state: t.Target, kind: lvalNoop}); err != nil {
							return Trans{}, &RuntimeError{Err: err, Detail: "conflicting identity transition"}
						}
					}
					for _, slot := range cs.Plus {
						if err := lvalTab.add(int(slot), lvalue{state: t.Target, kind: lvalPlus}); err != nil {
							return Trans{}, &RuntimeError{Err: err, Detail: "conflicting identity transition"}
						}
					}
				case ca.OpRst:
					newCounters = insertCounterStateIfAbsent(newCounters, t.Target)
					rst.addState(t.Target, a.States[t.Target].Counter)
				case ca.OpIncr:
					if len(cs.Plus) != 0 {
						return Trans{}, &RuntimeError{Err: ErrDoubleIncr, Detail: "counter position still carries a postponed increment"}
					}
					newCounters = insertCounterStateIfAbsent(newCounters, t.Target)
					for _, slot := range cs.Normal {
						if err := lvalTab.add(int(slot), lvalue{state: t.Target, kind: lvalPlus}); err != nil {
							return Trans{}, &RuntimeError{Err: err, Detail: "conflicting increment transition"}
						}
					}
				default:
					return Trans{}, &RuntimeError{Err: ErrInternalFailure, Detail: "unexpected operator on an unconditional counter transition"}
				}
			}
		}
	}

	switch {
	case len(guards) == 0:
		return e.buildSimpleTrans(newNormal, newCounters, lvalTab, rst), nil
	case len(guards) <= maxSmallGuards:
		return e.buildSmallTrans(&partialTrans{
			normalStates: newNormal, counterStates: newCounters,
			lvalTab: lvalTab, reset: rst, guards: guards,
			guardedLVals: guardedLVals, guardedReset: guardedReset, guardedStates: guardedStates,
		})
	default:
		return Trans{kind: transLarge, large: &partialTrans{
			normalStates: newNormal, counterStates: newCounters,
			lvalTab: lvalTab, reset: rst, guards: guards,
			guardedLVals: guardedLVals, guardedReset: guardedReset, guardedStates: guardedStates,
			updates: make(map[int]*update),
		}}, nil
	}
}

// testFinalCondition reports whether cfg, with the live values in buf,
// accepts.
func testFinalCondition(a *ca.CA, cfg *Config, buf []CountingSet) bool {
	for _, s := range cfg.Normal {
		if a.States[s].Final == ca.FinalTrue {
			return true
		}
	}
	for _, cs := range cfg.Counters {
		switch a.States[cs.State].Final {
		case ca.FinalTrue:
			return true
		case ca.FinalCanExit:
			cnt, _ := a.CounterOf(cs.State)
			for _, slot := range cs.Normal {
				if cnt.CanExit(int(buf[slot].Max())) {
					return true
				}
			}
			for _, slot := range cs.Plus {
				if cnt.CanExit(int(buf[slot].Max())+1) {
					return true
				}
			}
		}
	}
	return false
}
