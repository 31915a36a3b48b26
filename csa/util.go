package csa

import "github.com/coregx/countauto/ca"

// insertSortedStateID inserts s into a sorted, deduplicated slice.
func insertSortedStateID(list []ca.StateID, s ca.StateID) []ca.StateID {
	i := 0
	for i < len(list) && list[i] < s {
		i++
	}
	if i < len(list) && list[i] == s {
		return list
	}
	list = append(list, 0)
	copy(list[i+1:], list[i:])
	list[i] = s
	return list
}

// insertSortedUint32 inserts v into a sorted, deduplicated slice.
func insertSortedUint32(list []uint32, v uint32) []uint32 {
	i := 0
	for i < len(list) && list[i] < v {
		i++
	}
	if i < len(list) && list[i] == v {
		return list
	}
	list = append(list, 0)
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}

func stateIDSliceEqual(a, b []ca.StateID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// slotGroups interns state-id groups into stable slot indices, find-or-insert
// style. Two groups with identical (sorted) membership always map to the
// same slot.
type slotGroups struct {
	groups [][]ca.StateID
}

func (g *slotGroups) indexOf(states []ca.StateID) int {
	for i, grp := range g.groups {
		if stateIDSliceEqual(grp, states) {
			return i
		}
	}
	cp := append([]ca.StateID(nil), states...)
	g.groups = append(g.groups, cp)
	return len(g.groups) - 1
}
