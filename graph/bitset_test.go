package graph

import "testing"

func TestBitsetSetContains(t *testing.T) {
	b := NewBitset(10)
	if b.Contains(3) {
		t.Fatal("fresh bitset should not contain 3")
	}
	b.Set(3)
	if !b.Contains(3) {
		t.Fatal("bitset should contain 3 after Set")
	}
	if b.Contains(4) {
		t.Fatal("bitset should not contain unrelated id 4")
	}
}

func TestBitsetGrowsBeyondInitialSize(t *testing.T) {
	b := NewBitset(1)
	b.Set(200)
	if !b.Contains(200) {
		t.Fatal("bitset should grow to accommodate id 200")
	}
}

func TestBitsetReset(t *testing.T) {
	b := NewBitset(64)
	b.Set(10)
	b.Set(20)
	b.Reset()
	if b.Contains(10) || b.Contains(20) {
		t.Fatal("Reset should clear all bits")
	}
}

func TestBitsetPoolRecyclesCleared(t *testing.T) {
	pool := NewBitsetPool(8)
	b1 := pool.Get(8)
	b1.Set(3)
	pool.Put(b1)

	b2 := pool.Get(8)
	if b2.Contains(3) {
		t.Fatal("pooled bitset should come back cleared")
	}
}
