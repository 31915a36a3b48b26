package csa

import "github.com/coregx/countauto/ca"

// CSA is the lazily-determinized view of a CA: an engine plus the
// machinery to explore and cache the graph of reachable configurations
// for debugging.
type CSA struct {
	automaton *ca.CA
}

// NewCSA wraps a compiled CA.
func NewCSA(a *ca.CA) *CSA { return &CSA{automaton: a} }

// Node is one entry in an explored reachability graph: the shape
// (positions live, values ignored) it represents, whether a
// representative instantiation of that shape accepts, and its outgoing
// edges by byte class.
type Node struct {
	Shape       string
	Accepting   bool
	Transitions map[uint16]string // byte class -> target shape
}

// Graph is the explored subset of reachable shapes, keyed by Node.Shape.
type Graph struct {
	Nodes map[string]*Node
	Start string
	// Truncated is set if exploration stopped at maxNodes before the
	// shape space was exhausted.
	Truncated bool
}

// ExpandAll performs a breadth-first exploration of every Config shape
// reachable from the initial configuration, up to maxNodes distinct
// shapes. It is a debugging aid, not a matching code path: a single
// representative instantiation is used per shape (the counting sets
// carried along the first path that discovered it), so an outgoing edge
// gated by a CanIncr/CanExit guard that only becomes true for counter
// values the representative does not hold may be under-approximated.
// maxNodes <= 0 means unbounded.
func (c *CSA) ExpandAll(maxNodes int) *Graph {
	eng := newEngine(c.automaton)
	startShape := eng.initial.config.key()
	g := &Graph{Nodes: make(map[string]*Node), Start: startShape}

	type queued struct {
		cur *cachedConfig
		buf []CountingSet
	}
	queue := []queued{{cur: eng.initial, buf: nil}}
	seen := map[string]bool{startShape: true}

	alphabetLen := int(c.automaton.Wildcard)
	for len(queue) > 0 {
		if maxNodes > 0 && len(g.Nodes) >= maxNodes {
			g.Truncated = true
			break
		}
		item := queue[0]
		queue = queue[1:]
		shape := item.cur.config.key()

		accepting := testFinalCondition(c.automaton, &item.cur.config, item.buf)
		node := &Node{Shape: shape, Accepting: accepting, Transitions: make(map[uint16]string)}
		g.Nodes[shape] = node

		for class := 0; class < alphabetLen; class++ {
			if _, ok := representativeByte(c.automaton, uint16(class)); !ok {
				continue
			}
			nextCur, nextBuf, err := eng.step(item.cur, cloneBuf(item.buf), uint16(class))
			if err != nil {
				continue
			}
			if len(nextCur.config.Normal) == 0 && len(nextCur.config.Counters) == 0 {
				continue
			}
			nextShape := nextCur.config.key()
			node.Transitions[uint16(class)] = nextShape
			if !seen[nextShape] {
				seen[nextShape] = true
				queue = append(queue, queued{cur: nextCur, buf: nextBuf})
			}
		}
	}
	return g
}

// cloneBuf deep-copies a counter buffer so exploring one branch of the
// shape graph doesn't disturb another branch's state.
func cloneBuf(buf []CountingSet) []CountingSet {
	if buf == nil {
		return nil
	}
	out := make([]CountingSet, len(buf))
	for i, cs := range buf {
		out[i] = cs.Clone()
	}
	return out
}

// representativeByte returns any raw byte belonging to class, since
// ExpandAll only needs one witness per equivalence class; wildcard
// transitions are already exercised by every real class's witness.
func representativeByte(a *ca.CA, class uint16) (byte, bool) {
	for b := 0; b < 256; b++ {
		if a.ClassOf(byte(b)) == class {
			return byte(b), true
		}
	}
	return 0, false
}
