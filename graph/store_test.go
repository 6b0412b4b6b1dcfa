package graph

import "testing"

func TestStoreAppendAssignsSequentialIDs(t *testing.T) {
	s := NewStore[string](0)
	id0 := s.Append("a", 0, mmaxAtFor(5, 10))
	id1 := s.Append("b", 0, mmaxAtFor(5, 10))
	if id0 != 0 || id1 != 1 {
		t.Fatalf("ids = %d, %d, want 0, 1", id0, id1)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.Item(id0) != "a" || s.Item(id1) != "b" {
		t.Fatalf("items not stored in insertion order")
	}
}

func TestStoreConnectAndNeighborsAt(t *testing.T) {
	s := NewStore[string](0)
	a := s.Append("a", 1, mmaxAtFor(5, 10))
	b := s.Append("b", 1, mmaxAtFor(5, 10))

	s.AppendNeighbor(a, 0, b)
	if got := s.NeighborsAt(a, 0); len(got) != 1 || got[0] != b {
		t.Fatalf("NeighborsAt(a, 0) = %v, want [%d]", got, b)
	}

	s.SetNeighborsAt(a, 0, []uint32{b, a})
	if got := s.NeighborsAt(a, 0); len(got) != 2 {
		t.Fatalf("SetNeighborsAt did not replace list: %v", got)
	}
}

func TestStoreNodeOutOfRange(t *testing.T) {
	s := NewStore[string](0)
	s.Append("a", 0, mmaxAtFor(5, 10))
	if n := s.Node(5); n != nil {
		t.Fatalf("Node(5) on 1-element store = %v, want nil", n)
	}
}

func TestStoreMaxLayer(t *testing.T) {
	s := NewStore[string](0)
	id := s.Append("a", 3, mmaxAtFor(5, 10))
	if got := s.MaxLayer(id); got != 3 {
		t.Errorf("MaxLayer = %d, want 3", got)
	}
}
