package csa

import "github.com/coregx/countauto/ca"

// lvalueKind distinguishes a plain carry-forward from a position that
// received a postponed increment this step.
type lvalueKind uint8

const (
	lvalNoop lvalueKind = iota
	lvalPlus
)

// lvalue records that old slot row should contribute to state's counting
// set, either unchanged (lvalNoop) or with a pending +1 (lvalPlus).
type lvalue struct {
	state ca.StateID
	kind  lvalueKind
}

// lvalueTable groups, per old buffer slot, every state that wants to read
// that slot's value this step. A row mixing lvalNoop and lvalPlus entries
// for the SAME state is a double-increment: the position would need to be
// read both as-is and as-incremented in the same step, which the engine
// cannot express with a single in-place counter mutation.
type lvalueTable struct {
	rows [][]lvalue
}

func newLValueTable(size int) *lvalueTable {
	return &lvalueTable{rows: make([][]lvalue, size)}
}

func (t *lvalueTable) clone() *lvalueTable {
	rows := make([][]lvalue, len(t.rows))
	for i, row := range t.rows {
		rows[i] = append([]lvalue(nil), row...)
	}
	return &lvalueTable{rows: rows}
}

// add records that state reads old slot row with the given kind. It
// reports ErrDoubleIncr if row already holds a conflicting kind for the
// same state.
func (t *lvalueTable) add(row int, lv lvalue) error {
	for i := range t.rows[row] {
		if t.rows[row][i].state == lv.state {
			if t.rows[row][i].kind != lv.kind {
				return ErrDoubleIncr
			}
			return nil
		}
	}
	t.rows[row] = append(t.rows[row], lv)
	return nil
}

// resetGroup is every state entering a counter's scope together this step,
// sharing a single fresh {1} slot.
type resetGroup struct {
	counter ca.CounterID
	states  []ca.StateID
}

// countersToReset accumulates resetGroups as computeTrans walks outgoing
// transitions, one group per distinct counter entered this step.
type countersToReset struct {
	groups []resetGroup
}

func (r *countersToReset) addState(state ca.StateID, counter ca.CounterID) {
	for i := range r.groups {
		if r.groups[i].counter == counter {
			r.groups[i].states = insertSortedStateID(r.groups[i].states, state)
			return
		}
	}
	r.groups = append(r.groups, resetGroup{counter: counter, states: []ca.StateID{state}})
}

func (r *countersToReset) clone() *countersToReset {
	groups := make([]resetGroup, len(r.groups))
	for i, g := range r.groups {
		groups[i] = resetGroup{counter: g.counter, states: append([]ca.StateID(nil), g.states...)}
	}
	return &countersToReset{groups: groups}
}
