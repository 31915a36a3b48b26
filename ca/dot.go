package ca

import (
	"fmt"
	"io"
)

// WriteDOT renders a in Graphviz DOT format to out, one state per node.
// Accepting states are filled green; CanExit-final states are filled
// yellow to distinguish "always accepts" from "accepts depending on the
// counting set".
//
//	$ dot -Tps ca.dot -o ca.ps
func (a *CA) WriteDOT(out io.Writer, name string) {
	fmt.Fprintf(out, "digraph %s {\n  rankdir=LR;\n", name)
	for sid, st := range a.States {
		switch st.Final {
		case FinalTrue:
			fmt.Fprintf(out, "  %d[shape=doublecircle,style=filled,color=green];\n", sid)
		case FinalCanExit:
			fmt.Fprintf(out, "  %d[shape=doublecircle,style=filled,color=yellow];\n", sid)
		default:
			fmt.Fprintf(out, "  %d[shape=circle];\n", sid)
		}
		if st.Counter != NoCounter {
			c := a.Counters[st.Counter]
			fmt.Fprintf(out, "  %d[xlabel=\"c%d{%d,%d}\"];\n", sid, st.Counter, c.Min, c.Max)
		}
	}
	for sid, st := range a.States {
		for _, t := range st.Transitions {
			label := classLabel(t.Class, a.Wildcard)
			fmt.Fprintf(out, "  %d -> %d[label=\"%s/%s,%s\"];\n", sid, t.Target, label, t.Guard, t.Op)
		}
	}
	fmt.Fprintln(out, "}")
}

func classLabel(class, wildcard uint16) string {
	if class == wildcard {
		return "*"
	}
	return fmt.Sprintf("c%d", class)
}
