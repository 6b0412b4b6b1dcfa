package graph

// Store is the append-only backing array for a graph's nodes and items.
// An id is simply an index into both; ids are never reused. Store owns no
// locking of its own — the hnsw package's writer gate and version counter
// are what make concurrent access to a Store safe.
type Store[T any] struct {
	nodes []Node
	items []T
}

// NewStore pre-allocates both arrays to the given capacity hint.
func NewStore[T any](capacityHint int) *Store[T] {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &Store[T]{
		nodes: make([]Node, 0, capacityHint),
		items: make([]T, 0, capacityHint),
	}
}

// Len returns the number of nodes currently stored.
func (s *Store[T]) Len() int {
	return len(s.nodes)
}

// Append adds a new item/node pair and returns its freshly assigned id.
func (s *Store[T]) Append(item T, maxLayer int, mmaxAt func(layer int) int) uint32 {
	id := uint32(len(s.nodes))
	s.nodes = append(s.nodes, NewNode(id, maxLayer, mmaxAt))
	s.items = append(s.items, item)
	return id
}

// Node returns a pointer to the node for id. The pointer is valid until
// the next Append (which may grow the backing slice); callers inside the
// writer gate must not retain it across an Append call.
func (s *Store[T]) Node(id uint32) *Node {
	if int(id) >= len(s.nodes) {
		return nil
	}
	return &s.nodes[id]
}

// Item returns the stored item for id.
func (s *Store[T]) Item(id uint32) T {
	return s.items[id]
}

// NeighborsAt returns the neighbor ids of id at layer.
func (s *Store[T]) NeighborsAt(id uint32, layer int) []uint32 {
	n := s.Node(id)
	if n == nil {
		return nil
	}
	return n.Neighbors(layer)
}

// AppendNeighbor appends neighbor to id's adjacency list at layer without
// any capacity check — the caller decides whether and how to shrink
// afterward (see spec.md §9's "overshoot then shrink" design note).
func (s *Store[T]) AppendNeighbor(id uint32, layer int, neighbor uint32) {
	s.nodes[id].appendNeighbor(layer, neighbor)
}

// SetNeighborsAt replaces id's adjacency list at layer wholesale, used
// after a shrink has computed the retained neighbor set.
func (s *Store[T]) SetNeighborsAt(id uint32, layer int, ids []uint32) {
	s.nodes[id].setNeighbors(layer, ids)
}

// MaxLayer returns the max layer assigned to id at creation.
func (s *Store[T]) MaxLayer(id uint32) int {
	return s.nodes[id].MaxLayer
}
