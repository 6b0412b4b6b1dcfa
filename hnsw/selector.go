package hnsw

import (
	"cmp"
	"sort"

	"github.com/vecgraph/hnsw/graph"
)

// selectFunc picks up to cap neighbors for target from candidates. Both
// strategies share this signature so Index can store the chosen one as a
// plain function value at construction time — spec.md's Design Notes §9
// calls for "a tagged variant... no virtual call on the hot path of
// SEARCH-LAYER", which a function value set once achieves without an
// interface indirection on every call.
type selectFunc[T any, D cmp.Ordered] func(
	oracle *distanceOracle[T, D],
	targetCost func(id uint32) D,
	candidates []graph.Scored[D],
	cap int,
	expandCandidates bool,
	keepPruned bool,
	layerNeighbors func(id uint32) []uint32,
) []uint32

// selectSimple implements spec.md §4.5's "Simple (top-M)" strategy: the
// cap closest candidates, ties broken by smaller id. Grounded on the
// teacher's hnsw/search.go simpleSelectNeighbors.
func selectSimple[T any, D cmp.Ordered](
	_ *distanceOracle[T, D],
	_ func(id uint32) D,
	candidates []graph.Scored[D],
	capN int,
	_ bool,
	_ bool,
	_ func(id uint32) []uint32,
) []uint32 {
	sorted := append([]graph.Scored[D](nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Dist != sorted[j].Dist {
			return sorted[i].Dist < sorted[j].Dist
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > capN {
		sorted = sorted[:capN]
	}
	out := make([]uint32, len(sorted))
	for i, s := range sorted {
		out[i] = s.ID
	}
	return out
}

// selectHeuristic implements paper Algorithm 4 as spec.md §4.5 states it:
// an optional pre-pass that extends the candidate set with each
// candidate's own layer neighbors, then a loop that greedily accepts a
// candidate into R only if it's closer to the target than the farthest
// candidate already in R is to the target, discarding the rest into Wd
// and optionally topping R back up from Wd if it falls short of cap.
//
// Grounded on other_examples' selectNeighborsHeuristic implementations
// (mjm918-tur/pkg/hnsw, liliang-cn-sqvect/pkg/index/hnsw), which share
// this exact extend/accept/discard/top-up shape.
func selectHeuristic[T any, D cmp.Ordered](
	oracle *distanceOracle[T, D],
	targetCost func(id uint32) D,
	candidates []graph.Scored[D],
	capN int,
	expandCandidates bool,
	keepPruned bool,
	layerNeighbors func(id uint32) []uint32,
) []uint32 {
	seen := make(map[uint32]struct{}, len(candidates)*2)
	working := graph.NewMinHeap[D](len(candidates) * 2)
	for _, c := range candidates {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		working.Push(c)
	}

	if expandCandidates {
		for _, c := range candidates {
			for _, n := range layerNeighbors(c.ID) {
				if _, ok := seen[n]; ok {
					continue
				}
				seen[n] = struct{}{}
				working.Push(graph.Scored[D]{Dist: targetCost(n), ID: n})
			}
		}
	}

	result := make([]graph.Scored[D], 0, capN)
	discarded := graph.NewMinHeap[D](working.Len())

	for working.Len() > 0 && len(result) < capN {
		e := working.Pop()

		accept := len(result) == 0
		if !accept {
			worst := result[len(result)-1].Dist
			accept = e.Dist < worst
			// result is kept sorted ascending as we insert, so the last
			// element is the current farthest member of R.
		}
		if accept {
			result = insertSorted(result, e)
		} else {
			discarded.Push(e)
		}
	}

	if keepPruned {
		for len(result) < capN && discarded.Len() > 0 {
			result = insertSorted(result, discarded.Pop())
		}
	}

	out := make([]uint32, len(result))
	for i, s := range result {
		out[i] = s.ID
	}
	_ = oracle // oracle unused directly: distances already computed via targetCost
	return out
}

// insertSorted inserts s into a slice kept sorted ascending by (Dist,
// ID), the same tie-break every heap in this module uses.
func insertSorted[D cmp.Ordered](sorted []graph.Scored[D], s graph.Scored[D]) []graph.Scored[D] {
	i := sort.Search(len(sorted), func(i int) bool {
		if sorted[i].Dist != s.Dist {
			return sorted[i].Dist > s.Dist
		}
		return sorted[i].ID > s.ID
	})
	sorted = append(sorted, graph.Scored[D]{})
	copy(sorted[i+1:], sorted[i:])
	sorted[i] = s
	return sorted
}
