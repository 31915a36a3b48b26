package csa

import (
	"strconv"

	"github.com/coregx/countauto/ca"
)

// CounterState is a CA position inside a counter's scope, described purely
// structurally: which buffer slots its live counting-set values currently
// occupy. Normal holds slots read as-is; Plus holds slots that must be
// read as if incremented by one more than the buffer actually stores — a
// postponed increment the engine hasn't committed to the shared slot yet,
// because other consumers of the same slot still need the un-incremented
// value this step.
type CounterState struct {
	State  ca.StateID
	Normal []uint32
	Plus   []uint32
}

func cloneCounterStates(in []CounterState) []CounterState {
	out := make([]CounterState, len(in))
	for i, cs := range in {
		out[i] = CounterState{
			State:  cs.State,
			Normal: append([]uint32(nil), cs.Normal...),
			Plus:   append([]uint32(nil), cs.Plus...),
		}
	}
	return out
}

func findCounterState(states []CounterState, s ca.StateID) *CounterState {
	for i := range states {
		if states[i].State == s {
			return &states[i]
		}
	}
	return nil
}

func insertCounterStateIfAbsent(states []CounterState, s ca.StateID) []CounterState {
	if findCounterState(states, s) != nil {
		return states
	}
	states = append(states, CounterState{State: s})
	for i := len(states) - 1; i > 0 && states[i].State < states[i-1].State; i-- {
		states[i], states[i-1] = states[i-1], states[i]
	}
	return states
}

// Config is a determinized matching configuration: which CA positions are
// live, split into counter-free positions (Normal) and counter-bearing
// positions (Counters), plus how many slots a run's counter buffer needs
// while this Config is current. A Config holds no counting values itself
// — those live in a per-match buffer of CountingSets, indexed by the slot
// numbers recorded here — so the same Config, and the byte-class
// transition table built for it, is shared by every match that happens to
// reach the same shape, regardless of the actual repetition counts it is
// carrying.
type Config struct {
	Normal     []ca.StateID
	Counters   []CounterState
	BufferSize int
}

// key canonicalizes a Config into a string suitable for interning: two
// Configs with the same key behave identically for every future byte.
func (c Config) key() string {
	b := make([]byte, 0, 32)
	for _, s := range c.Normal {
		b = strconv.AppendUint(b, uint64(s), 10)
		b = append(b, ',')
	}
	b = append(b, '|')
	for _, cs := range c.Counters {
		b = strconv.AppendUint(b, uint64(cs.State), 10)
		b = append(b, '[')
		for _, n := range cs.Normal {
			b = strconv.AppendUint(b, uint64(n), 10)
			b = append(b, ',')
		}
		b = append(b, ';')
		for _, p := range cs.Plus {
			b = strconv.AppendUint(b, uint64(p), 10)
			b = append(b, ',')
		}
		b = append(b, ']')
	}
	return string(b)
}
