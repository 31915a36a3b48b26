package ca

import "testing"

func TestCounter_CanIncr(t *testing.T) {
	bounded := Counter{Min: 3, Max: 7}
	if !bounded.CanIncr(6) {
		t.Error("CanIncr(6) on {3,7} = false, want true")
	}
	if bounded.CanIncr(7) {
		t.Error("CanIncr(7) on {3,7} = true, want false")
	}

	unbounded := Counter{Min: 0, Max: -1}
	if !unbounded.CanIncr(1_000_000) {
		t.Error("CanIncr on unbounded counter should always be true")
	}
}

func TestCounter_CanExit(t *testing.T) {
	c := Counter{Min: 3, Max: 7}
	if c.CanExit(2) {
		t.Error("CanExit(2) on {3,7} = true, want false")
	}
	if !c.CanExit(3) {
		t.Error("CanExit(3) on {3,7} = false, want true")
	}
	if !c.CanExit(7) {
		t.Error("CanExit(7) on {3,7} = false, want true")
	}
}

func TestTransition_Matches(t *testing.T) {
	wildcard := uint16(4)
	exact := Transition{Class: 2}
	if !exact.Matches(2, wildcard) {
		t.Error("exact class transition should match its own class")
	}
	if exact.Matches(3, wildcard) {
		t.Error("exact class transition should not match a different class")
	}

	any := Transition{Class: wildcard}
	if !any.Matches(0, wildcard) || !any.Matches(3, wildcard) {
		t.Error("wildcard transition should match every class")
	}
}

func TestCA_CounterOf(t *testing.T) {
	a := CA{
		States:   []State{{Counter: NoCounter}, {Counter: 1}},
		Counters: []Counter{{}, {Min: 1, Max: 3}},
	}
	if _, ok := a.CounterOf(0); ok {
		t.Error("state 0 has NoCounter, CounterOf should report false")
	}
	c, ok := a.CounterOf(1)
	if !ok || c.Min != 1 || c.Max != 3 {
		t.Errorf("CounterOf(1) = %+v, %v; want {1,3}, true", c, ok)
	}
}
