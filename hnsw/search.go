package hnsw

import (
	"cmp"
	"sort"
	"sync/atomic"

	"github.com/vecgraph/hnsw/graph"
)

// costFunc computes the distance from a fixed (but call-site-specific)
// target to a stored node id. Insert routes this through the distance
// oracle's cache; Search computes it ad hoc against the query item and
// never touches the cache (spec.md §4.3/§4.8).
type costFunc[D cmp.Ordered] func(id uint32) D

// keepFunc reports whether id may enter the result set. A nil keepFunc
// means "always true" — searchLayer treats it that way rather than
// requiring every caller to pass a trivial closure.
type keepFunc func(id uint32) bool

func (k keepFunc) allows(id uint32) bool {
	return k == nil || k(id)
}

// scratch bundles the pooled buffers one searchLayer call needs, owned
// by the Index so hot-path calls never allocate (Design Notes §9).
type scratch[D cmp.Ordered] struct {
	heaps   *graph.HeapPool[D]
	visited *graph.BitsetPool
}

// searchLayer implements Algorithm 2 (SEARCH-LAYER) from spec.md §4.6: a
// bounded-beam best-first traversal within a single layer, honoring an
// optional result-only filter, cooperative cancellation, and an
// optimistic version check that turns a concurrent structural mutation
// into a retryable ErrGraphChanged instead of a data race.
func searchLayer[T any, D cmp.Ordered](
	store *graph.Store[T],
	sc *scratch[D],
	entry uint32,
	cost costFunc[D],
	layer, ef int,
	keep keepFunc,
	cancel <-chan struct{},
	version *atomic.Uint64,
	startVersion uint64,
) ([]graph.Scored[D], error) {
	visited := sc.visited.Get(store.Len())
	defer sc.visited.Put(visited)

	result := sc.heaps.GetMax()
	expansion := sc.heaps.GetMin()
	defer sc.heaps.PutMax(result)
	defer sc.heaps.PutMin(expansion)

	entryDist := cost(entry)
	entryScored := graph.Scored[D]{Dist: entryDist, ID: entry}
	expansion.Push(entryScored)
	if keep.allows(entry) {
		result.Push(entryScored)
	}
	visited.Set(entry)

	for expansion.Len() > 0 {
		select {
		case <-cancel:
			return drainSorted(result), nil
		default:
		}
		if version.Load() != startVersion {
			return nil, ErrGraphChanged
		}

		c := expansion.Pop()
		if result.Len() > 0 && cmp.Compare(c.Dist, result.Peek().Dist) > 0 {
			break
		}

		for _, n := range store.NeighborsAt(c.ID, layer) {
			if visited.Contains(n) {
				continue
			}
			visited.Set(n)

			fits := result.Len() < ef
			if !fits {
				fits = cmp.Compare(cost(n), result.Peek().Dist) < 0
			}
			if !fits {
				continue
			}

			dist := cost(n)
			scored := graph.Scored[D]{Dist: dist, ID: n}
			expansion.Push(scored)
			if keep.allows(n) {
				result.Push(scored)
				if result.Len() > ef {
					result.Pop()
				}
			}
		}
	}

	return drainSorted(result), nil
}

// greedyLayerDescentAt performs the ef=1 special case of SEARCH-LAYER as
// a simple hill-climb: repeatedly step to the first strictly-closer
// neighbor at layer until none exists. This is the teacher's
// greedySearchLayer optimization, preserved because it's the same
// algorithm at ef=1, just without heap bookkeeping overhead; it backs
// both Insert's upper-layer descent phase and Search's descent phase.
func greedyLayerDescentAt[T any, D cmp.Ordered](store *graph.Store[T], entry uint32, cost costFunc[D], layer int) uint32 {
	current := entry
	best := cost(current)
	for {
		improved := false
		for _, n := range store.NeighborsAt(current, layer) {
			d := cost(n)
			if cmp.Compare(d, best) < 0 {
				best = d
				current = n
				improved = true
				break
			}
		}
		if !improved {
			return current
		}
	}
}

// drainSorted copies a result MaxHeap's contents out as a slice sorted
// ascending by (distance, id), leaving the heap itself untouched (it is
// about to be returned to its pool).
func drainSorted[D cmp.Ordered](h *graph.MaxHeap[D]) []graph.Scored[D] {
	items := h.Items()
	out := make([]graph.Scored[D], len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dist != out[j].Dist {
			return out[i].Dist < out[j].Dist
		}
		return out[i].ID < out[j].ID
	})
	return out
}
