package prefilter

import (
	"regexp/syntax"

	"github.com/coregx/countauto/literal"
)

// FromAST builds the best available prefilter for re's required literals,
// or nil if no literal is guaranteed to appear in every accepting match.
//
// The returned prefilter is a pure accelerant: a candidate position it
// reports still has to be confirmed by running the full automaton, and a
// pattern it can't build a prefilter for (e.g. pure ".{3,5}") simply skips
// straight to the automaton with no loss of correctness.
func FromAST(re *syntax.Regexp) Prefilter {
	lits := RequiredLiterals(re)
	if len(lits) == 0 {
		return nil
	}

	ls := make([]literal.Literal, len(lits))
	for i, b := range lits {
		ls[i] = literal.NewLiteral(b, false)
	}
	seq := literal.NewSeq(ls...)

	return NewBuilder(seq, nil).Build()
}
