package csa

import "github.com/coregx/countauto/ca"

// maxSmallGuards bounds how many guards a transition may carry before its
// 2^n update combinations stop being enumerated eagerly and fall back to
// lazy, bitmask-keyed memoization.
const maxSmallGuards = 2

// guard is one conditional gate a transition's outcome depends on: whether
// a counter-bearing state's CanIncr or CanExit guard is currently
// satisfied, evaluated against the live counter buffer.
type guard struct {
	state     ca.StateID
	condition ca.Guard
}

// guardedLVal is an lvalue-table contribution that only applies when a
// particular guard is satisfied (as opposed to the unconditional
// contributions folded directly into the base lvalue table).
type guardedLVal struct {
	slot int
	lval lvalue
}

// transKind selects which payload a Trans carries.
type transKind uint8

const (
	// transNotComputed is the zero value: this transition hasn't been
	// computed yet for its Config and byte class.
	transNotComputed transKind = iota
	// transWithoutCounter: a pure structural move with no counter buffer
	// involved on either side, straight to another cached Config.
	transWithoutCounter
	// transSimple: exactly one update applies unconditionally (no
	// guards at all).
	transSimple
	// transSmall: up to maxSmallGuards guards, every combination
	// precomputed eagerly.
	transSmall
	// transLarge: more than maxSmallGuards guards, combinations computed
	// and cached lazily by bitmask as they're actually observed.
	transLarge
)

// Trans is one outgoing byte-class edge of a cached Config, computed the
// first time it's needed and memoized in the Config's transition table
// from then on.
type Trans struct {
	kind   transKind
	next   *cachedConfig // transWithoutCounter
	simple *update       // transSimple
	small  *smallTrans   // transSmall
	large  *partialTrans // transLarge
}

// smallTrans eagerly holds every 2^len(guards) update outcome, indexed
// directly by a guard-satisfaction bitmask.
type smallTrans struct {
	guards  []guard
	updates []*update
}

// partialTrans holds a transition whose guard count exceeds
// maxSmallGuards: the shared base contributions plus each guard's
// conditional contributions, with per-bitmask updates computed and cached
// lazily as the match actually exercises them.
type partialTrans struct {
	normalStates  []ca.StateID
	counterStates []CounterState
	lvalTab       *lvalueTable
	reset         *countersToReset

	guards        []guard
	guardedLVals  [][]guardedLVal
	guardedReset  [][]ca.StateID
	guardedStates [][]ca.StateID

	updates map[int]*update
}
