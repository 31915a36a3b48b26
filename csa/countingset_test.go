package csa

import (
	"reflect"
	"testing"
)

func TestCountingSet1(t *testing.T) {
	cs := NewCountingSet1()
	if cs.Max() != 1 || cs.Min() != 1 {
		t.Errorf("Max()=%d Min()=%d, want 1,1", cs.Max(), cs.Min())
	}
}

func TestCountingSet_Increment(t *testing.T) {
	cs := NewCountingSet1()
	cs.Increment(-1)
	cs.Increment(-1)
	if cs.Max() != 3 || cs.Min() != 3 {
		t.Errorf("after two increments: Max()=%d Min()=%d, want 3,3", cs.Max(), cs.Min())
	}
}

func TestCountingSet_IncrementDropsOverflow(t *testing.T) {
	cs := NewCountingSet1()
	cs.Increment(3) // -> 2
	cs.Increment(3) // -> 3
	cs.Increment(3) // -> 4, exceeds max=3, should be dropped
	if !cs.Empty() {
		t.Errorf("expected set to be empty after exceeding bound, got %v", cs.Values())
	}
}

func TestCountingSet_Insert1(t *testing.T) {
	cs := NewCountingSet1()
	cs.Increment(-1) // {2}
	cs.Insert1()     // {1,2}
	got := cs.Values()
	want := []uint32{1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Values() = %v, want %v", got, want)
	}

	cs.Insert1() // already has 1, no-op
	got = cs.Values()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Insert1 should be idempotent when 1 already present: got %v, want %v", got, want)
	}
}

func TestCountingSet_RstTo1(t *testing.T) {
	cs := NewCountingSet1()
	cs.Increment(-1)
	cs.Increment(-1)
	cs.RstTo1()
	if !reflect.DeepEqual(cs.Values(), []uint32{1}) {
		t.Errorf("after RstTo1: Values() = %v, want [1]", cs.Values())
	}
}

func TestCountingSet_Merge(t *testing.T) {
	a := NewCountingSet1()
	a.Increment(-1) // {2}
	b := NewCountingSet1()
	b.Increment(-1)
	b.Increment(-1) // {3}

	a.Merge(b)
	got := a.Values()
	want := []uint32{2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merge result = %v, want %v", got, want)
	}
}

func TestCountingSet_MergeDedup(t *testing.T) {
	a := NewCountingSet1()
	b := NewCountingSet1()
	a.Merge(b)
	if !reflect.DeepEqual(a.Values(), []uint32{1}) {
		t.Errorf("merging two identical sets should dedup: got %v", a.Values())
	}
}
