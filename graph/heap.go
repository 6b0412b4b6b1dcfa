package graph

import "cmp"

// Scored pairs a distance with the node id it was computed for. Equal
// distances are broken by smaller id, the deterministic tie-break spec.md
// §4.1/§9 requires given a fixed seed and single-threaded writer.
type Scored[D cmp.Ordered] struct {
	Dist D
	ID   uint32
}

func less[D cmp.Ordered](a, b Scored[D]) bool {
	if a.Dist != b.Dist {
		return a.Dist < b.Dist
	}
	return a.ID < b.ID
}

// MinHeap keeps the smallest-distance element on top ("closer-is-on-top",
// used for the expansion/candidate frontier in SEARCH-LAYER).
type MinHeap[D cmp.Ordered] struct {
	items []Scored[D]
}

// NewMinHeap allocates a MinHeap with the given initial capacity.
func NewMinHeap[D cmp.Ordered](capacity int) *MinHeap[D] {
	return &MinHeap[D]{items: make([]Scored[D], 0, capacity)}
}

func (h *MinHeap[D]) Len() int { return len(h.items) }

// Peek returns the top element without removing it. Panics if empty —
// popping or peeking an empty queue is a programmer error (spec.md §7).
func (h *MinHeap[D]) Peek() Scored[D] {
	if len(h.items) == 0 {
		panic("graph: Peek on empty MinHeap")
	}
	return h.items[0]
}

func (h *MinHeap[D]) Push(s Scored[D]) {
	h.items = append(h.items, s)
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap[D]) Pop() Scored[D] {
	if len(h.items) == 0 {
		panic("graph: Pop on empty MinHeap")
	}
	top := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items = h.items[:last]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top
}

// Reset empties the heap while retaining its backing array's capacity,
// so pooled heaps don't reallocate on reuse.
func (h *MinHeap[D]) Reset() { h.items = h.items[:0] }

func (h *MinHeap[D]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if less(h.items[i], h.items[parent]) {
			h.items[i], h.items[parent] = h.items[parent], h.items[i]
			i = parent
		} else {
			break
		}
	}
}

func (h *MinHeap[D]) siftDown(i int) {
	n := len(h.items)
	for {
		left, right, smallest := 2*i+1, 2*i+2, i
		if left < n && less(h.items[left], h.items[smallest]) {
			smallest = left
		}
		if right < n && less(h.items[right], h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// MaxHeap keeps the largest-distance element on top ("farther-is-on-top",
// used for SEARCH-LAYER's bounded result set W).
type MaxHeap[D cmp.Ordered] struct {
	items []Scored[D]
}

// NewMaxHeap allocates a MaxHeap with the given initial capacity.
func NewMaxHeap[D cmp.Ordered](capacity int) *MaxHeap[D] {
	return &MaxHeap[D]{items: make([]Scored[D], 0, capacity)}
}

func (h *MaxHeap[D]) Len() int { return len(h.items) }

func (h *MaxHeap[D]) Peek() Scored[D] {
	if len(h.items) == 0 {
		panic("graph: Peek on empty MaxHeap")
	}
	return h.items[0]
}

func (h *MaxHeap[D]) Push(s Scored[D]) {
	h.items = append(h.items, s)
	h.siftUp(len(h.items) - 1)
}

func (h *MaxHeap[D]) Pop() Scored[D] {
	if len(h.items) == 0 {
		panic("graph: Pop on empty MaxHeap")
	}
	top := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items = h.items[:last]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *MaxHeap[D]) Reset() { h.items = h.items[:0] }

// Items exposes the current backing slice, unordered beyond the heap
// property. Used by callers that want to drain and sort the final result
// set themselves (e.g. hnsw.searchLayer's caller).
func (h *MaxHeap[D]) Items() []Scored[D] { return h.items }

func (h *MaxHeap[D]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if less(h.items[parent], h.items[i]) {
			h.items[i], h.items[parent] = h.items[parent], h.items[i]
			i = parent
		} else {
			break
		}
	}
}

func (h *MaxHeap[D]) siftDown(i int) {
	n := len(h.items)
	for {
		left, right, largest := 2*i+1, 2*i+2, i
		if left < n && less(h.items[largest], h.items[left]) {
			largest = left
		}
		if right < n && less(h.items[largest], h.items[right]) {
			largest = right
		}
		if largest == i {
			return
		}
		h.items[i], h.items[largest] = h.items[largest], h.items[i]
		i = largest
	}
}
