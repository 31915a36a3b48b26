package csa

import "github.com/coregx/countauto/ca"

// cntSetOp names one instruction in a compiled counter-buffer update
// program.
type cntSetOp uint8

const (
	// opMove carries an old slot's value into a new slot, merging with
	// whatever else lands there.
	opMove cntSetOp = iota
	// opIncr advances every live count in a slot by one, in place.
	opIncr
	// opInsert1 adds a fresh count of 1 into a slot that already holds
	// values moved in from elsewhere.
	opInsert1
	// opRstTo1 replaces a slot wholesale with {1}, used instead of
	// opInsert1 when nothing else moves into the slot this step.
	opRstTo1
)

// cntSetInst is one instruction. Which fields are meaningful depends on
// op: opIncr uses index/max; opMove uses origin/target; opInsert1 and
// opRstTo1 each use a single slot, stored in target/origin respectively.
type cntSetInst struct {
	op     cntSetOp
	index  int
	max    int
	origin int
	target int
}

// updateKind says how execute applies a compiled program to the live
// counter buffer.
type updateKind uint8

const (
	// updateID leaves the buffer untouched: the configuration's shape
	// didn't move to anything new.
	updateID updateKind = iota
	// updateEnter builds a fresh buffer of size bufferSize, every slot
	// set to {1} — entering counted repetition from a configuration that
	// previously held no counters at all.
	updateEnter
	// updateKeepBuffer mutates the existing buffer in place: every slot
	// instruction below targets the same slot index across the step.
	updateKeepBuffer
	// updateNewBuffer builds a new buffer, since at least one instruction
	// genuinely moves a value to a different slot index or the buffer's
	// size changed.
	updateNewBuffer
)

// update is a compiled transition effect: what to do to the counter
// buffer, and which cached Config the match moves to.
type update struct {
	kind      updateKind
	newConfig *cachedConfig
	prog      []cntSetInst
}

// buildUpdate compiles an update program from the accumulated lvalue table
// and reset groups, filling in Normal/Plus on newCounterStates as it
// assigns slot indices.
func buildUpdate(a *ca.CA, newCounterStates []CounterState, lvalTab *lvalueTable, rst *countersToReset) ([]cntSetInst, int, updateKind) {
	var groups slotGroups
	var prog []cntSetInst

	for i, row := range lvalTab.rows {
		if len(row) == 0 {
			continue
		}
		allPlus := true
		var states []ca.StateID
		for _, lv := range row {
			if lv.kind != lvalPlus {
				allPlus = false
			}
			states = insertSortedStateID(states, lv.state)
		}
		if allPlus {
			cnt, _ := a.CounterOf(row[0].state)
			prog = append(prog, cntSetInst{op: opIncr, index: i, max: cnt.Max})
			for j := range row {
				lvalTab.rows[i][j].kind = lvalNoop
			}
		}
		groups.indexOf(states)
	}
	for _, g := range rst.groups {
		groups.indexOf(g.states)
	}
	bufferSize := len(groups.groups)

	for i, row := range lvalTab.rows {
		if len(row) == 0 {
			continue
		}
		var states []ca.StateID
		for _, lv := range row {
			states = insertSortedStateID(states, lv.state)
		}
		idx := groups.indexOf(states)
		prog = append(prog, cntSetInst{op: opMove, origin: i, target: idx})
		for _, lv := range row {
			cs := findCounterState(newCounterStates, lv.state)
			if lv.kind == lvalNoop {
				cs.Normal = insertSortedUint32(cs.Normal, uint32(idx))
			} else {
				cs.Plus = insertSortedUint32(cs.Plus, uint32(idx))
			}
		}
	}
	for _, g := range rst.groups {
		idx := groups.indexOf(g.states)
		prog = append(prog, cntSetInst{op: opInsert1, origin: idx, target: idx})
		for _, s := range g.states {
			cs := findCounterState(newCounterStates, s)
			cs.Normal = insertSortedUint32(cs.Normal, uint32(idx))
		}
	}

	kind, prog := finalizeUpdate(prog, len(lvalTab.rows), bufferSize)
	return prog, bufferSize, kind
}

// finalizeUpdate decides KEEP_BUFFER vs NEW_BUFFER: if the buffer size is
// unchanged and every move instruction is a true no-op (origin == target),
// the existing buffer can be mutated in place and the (now redundant) move
// instructions are dropped; an insert-1 that nothing moves into becomes a
// direct reset instead.
func finalizeUpdate(prog []cntSetInst, oldSize, newSize int) (updateKind, []cntSetInst) {
	if oldSize != newSize {
		return updateNewBuffer, prog
	}
	movedTo := make([]bool, newSize)
	allUseless := true
	for _, inst := range prog {
		if inst.op == opMove {
			if inst.origin != inst.target {
				allUseless = false
				break
			}
			movedTo[inst.target] = true
		}
	}
	if !allUseless {
		return updateNewBuffer, prog
	}
	var out []cntSetInst
	for _, inst := range prog {
		switch inst.op {
		case opIncr:
			out = append(out, inst)
		case opInsert1:
			if movedTo[inst.target] {
				out = append(out, inst)
			} else {
				inst.op = opRstTo1
				out = append(out, inst)
			}
		case opMove:
			// Dropped: origin == target, value already in place.
		}
	}
	return updateKeepBuffer, out
}

// executeUpdate applies u to buf, returning the buffer the match should
// carry forward (possibly the same slice, mutated, possibly a fresh one).
func executeUpdate(u *update, buf []CountingSet) []CountingSet {
	switch u.kind {
	case updateID:
		return buf
	case updateEnter:
		out := make([]CountingSet, u.newConfig.config.BufferSize)
		for i := range out {
			out[i] = NewCountingSet1()
		}
		return out
	case updateKeepBuffer:
		for _, inst := range u.prog {
			switch inst.op {
			case opIncr:
				buf[inst.index].Increment(inst.max)
			case opInsert1:
				buf[inst.target].Insert1()
			case opRstTo1:
				buf[inst.origin] = NewCountingSet1()
			case opMove:
				// Never emitted for updateKeepBuffer.
			}
		}
		return buf
	case updateNewBuffer:
		out := make([]CountingSet, u.newConfig.config.BufferSize)
		for _, inst := range u.prog {
			switch inst.op {
			case opIncr:
				buf[inst.index].Increment(inst.max)
			case opInsert1:
				out[inst.target].Insert1()
			case opMove:
				out[inst.target].Merge(buf[inst.origin])
			case opRstTo1:
				// Never emitted for updateNewBuffer.
			}
		}
		return out
	}
	return buf
}
