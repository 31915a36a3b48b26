// Package csa lazily determinizes a ca.CA into a Counting Set Automaton:
// instead of tracking every reachable counter value as a separate DFA
// state (which blows up exponentially for wide bounds), it tracks one
// CountingSet per group of counter-bearing positions that currently share
// identical future behavior.
package csa

// CountingSet is an ordered set of live counter values, encoded as
// offsets from a running base so that advancing every value by one
// (the common case, once per input byte) is O(1) rather than O(|set|).
//
// list is kept sorted ascending by actual count: list[0] is the most
// recently started count (the minimum), list[len-1] is the oldest (the
// maximum). A raw entry's actual count is offset - entry.
type CountingSet struct {
	list   []uint32
	offset uint32
}

// NewCountingSet1 returns the counting set {1}, the value a counter's
// positions hold the instant they are entered.
func NewCountingSet1() CountingSet {
	return CountingSet{list: []uint32{0}, offset: 1}
}

// Max returns the largest live count in the set.
func (c *CountingSet) Max() uint32 {
	return c.offset - c.list[len(c.list)-1]
}

// Min returns the smallest live count in the set.
func (c *CountingSet) Min() uint32 {
	return c.offset - c.list[0]
}

// Empty reports whether the set holds no values (all were pruned by a
// bounded Increment).
func (c *CountingSet) Empty() bool {
	return len(c.list) == 0
}

// Values returns every live count, ascending. For diagnostics and tests
// only.
func (c *CountingSet) Values() []uint32 {
	out := make([]uint32, len(c.list))
	for i, r := range c.list {
		out[i] = c.offset - r
	}
	return out
}

// Increment advances every live count by one. max == -1 means unbounded;
// otherwise any count that would exceed max is dropped, since a bounded
// counter can never use it again.
func (c *CountingSet) Increment(max int) {
	c.offset++
	if max != -1 && len(c.list) > 0 && int(c.offset-c.list[len(c.list)-1]) > max {
		c.list = c.list[:len(c.list)-1]
	}
}

// RstTo1 discards every live count and replaces the set with {1}: the
// counter has just been (re-)entered from outside its own scope.
func (c *CountingSet) RstTo1() {
	c.offset = 1
	c.list = []uint32{0}
}

// Insert1 adds a fresh count of 1 to the set, used when a counter is
// entered again from outside its scope while other values are still live
// (e.g. unanchored "a{2,4}", whose leading any-byte loop re-enters the
// counter on every 'a' while earlier runs are still being tracked). A
// no-op if 1 is already present.
func (c *CountingSet) Insert1() {
	if len(c.list) > 0 && c.list[0] == c.offset-1 {
		return
	}
	c.list = append([]uint32{c.offset - 1}, c.list...)
}

// Merge folds other's live counts into c, deduplicating equal counts.
// Used when two previously distinct groups of counter positions collapse
// into one because they now share the same reachable future.
func (c *CountingSet) Merge(other CountingSet) {
	if other.Empty() {
		return
	}
	if c.Empty() {
		*c = other
		return
	}

	av, bv := c.Values(), other.Values()
	merged := make([]uint32, 0, len(av)+len(bv))
	i, j := 0, 0
	for i < len(av) && j < len(bv) {
		switch {
		case av[i] < bv[j]:
			merged = append(merged, av[i])
			i++
		case av[i] > bv[j]:
			merged = append(merged, bv[j])
			j++
		default:
			merged = append(merged, av[i])
			i++
			j++
		}
	}
	merged = append(merged, av[i:]...)
	merged = append(merged, bv[j:]...)

	offset := merged[len(merged)-1]
	list := make([]uint32, len(merged))
	for k, cnt := range merged {
		list[k] = offset - cnt
	}
	c.offset = offset
	c.list = list
}

// Clone returns an independent copy, since groups frequently need to fork
// their set across several outgoing transitions.
func (c CountingSet) Clone() CountingSet {
	list := make([]uint32, len(c.list))
	copy(list, c.list)
	return CountingSet{list: list, offset: c.offset}
}
