// Package prefilter accelerates line scanning with a required-literal
// check ahead of the counting automaton: a line that cannot possibly
// contain any of a pattern's required substrings is rejected without
// ever stepping the automaton.
package prefilter

import "regexp/syntax"

// RequiredLiterals returns a set of alternative literal byte strings, at
// least one of which must appear in any string the pattern accepts, or
// nil if no such guarantee can be derived. This is a conservative
// under-approximation: returning nil is always safe (it disables the
// prefilter for this pattern), returning a wrong answer is not.
func RequiredLiterals(re *syntax.Regexp) [][]byte {
	lits, required := requiredLiterals(re)
	if !required {
		return nil
	}
	return lits
}

// requiredLiterals returns the literals that could stand in for re, and
// whether re is guaranteed to require at least one of them.
func requiredLiterals(re *syntax.Regexp) ([][]byte, bool) {
	switch re.Op {
	case syntax.OpLiteral:
		return [][]byte{runesToBytes(re.Rune)}, true

	case syntax.OpCapture:
		return requiredLiterals(re.Sub[0])

	case syntax.OpConcat:
		var best []byte
		for _, sub := range re.Sub {
			lits, ok := requiredLiterals(sub)
			if !ok || len(lits) != 1 {
				continue
			}
			if len(lits[0]) > len(best) {
				best = lits[0]
			}
		}
		if best == nil {
			return nil, false
		}
		return [][]byte{best}, true

	case syntax.OpAlternate:
		var all [][]byte
		for _, sub := range re.Sub {
			lits, ok := requiredLiterals(sub)
			if !ok {
				return nil, false
			}
			all = append(all, lits...)
		}
		return all, true

	case syntax.OpPlus:
		return requiredLiterals(re.Sub[0])

	case syntax.OpRepeat:
		if re.Min >= 1 {
			return requiredLiterals(re.Sub[0])
		}
		return nil, false

	default:
		// OpStar, OpQuest, OpRepeat{min==0}, CharClass, AnyChar, Empty,
		// and anything else: no guaranteed contribution, but this
		// doesn't block a sibling Concat branch from contributing.
		return nil, false
	}
}

func runesToBytes(runes []rune) []byte {
	out := make([]byte, 0, len(runes))
	for _, r := range runes {
		out = append(out, string(r)...)
	}
	return out
}
