package csa

import (
	"fmt"
	"io"
	"sort"
)

// WriteDOT renders an explored Graph in Graphviz DOT format, one node per
// reachable shape. Accepting shapes are filled green.
//
//	$ dot -Tps csa.dot -o csa.ps
func (g *Graph) WriteDOT(out io.Writer, name string) {
	ids := make(map[string]int, len(g.Nodes))
	shapes := make([]string, 0, len(g.Nodes))
	for s := range g.Nodes {
		shapes = append(shapes, s)
	}
	sort.Strings(shapes)
	for i, s := range shapes {
		ids[s] = i
	}

	fmt.Fprintf(out, "digraph %s {\n", name)
	for _, s := range shapes {
		n := g.Nodes[s]
		if n.Accepting {
			fmt.Fprintf(out, "  %d[style=filled,color=green,label=%q];\n", ids[s], s)
		} else {
			fmt.Fprintf(out, "  %d[label=%q];\n", ids[s], s)
		}
	}
	for _, s := range shapes {
		n := g.Nodes[s]
		classes := make([]int, 0, len(n.Transitions))
		for class := range n.Transitions {
			classes = append(classes, int(class))
		}
		sort.Ints(classes)
		for _, class := range classes {
			target := n.Transitions[uint16(class)]
			fmt.Fprintf(out, "  %d -> %d[label=\"c%d\"];\n", ids[s], ids[target], class)
		}
	}
	if g.Truncated {
		fmt.Fprintln(out, "  // exploration truncated at the node cap")
	}
	fmt.Fprintln(out, "}")
}
