package hnsw

import (
	"math"

	"github.com/vecgraph/hnsw/graph"
)

// randomLevel samples max_layer = floor(-ln(u) * lambda), u ~ U(0,1],
// per spec.md §3 invariant 5 / §4.7 step 2.
func (idx *Index[T, D]) randomLevel() int {
	u := idx.params.Rand()
	if u <= 0 {
		u = math.SmallestNonzeroFloat64
	}
	return int(-math.Log(u) * idx.params.LevelLambda)
}

// Add appends items to the index, building graph connections for each in
// insertion order. Writer-exclusive under ThreadSafe: holds the facade's
// gate for the whole call, bumping the version counter around every
// structural mutation so a concurrently-running (gate-disabled) reader
// can detect the change via ErrGraphChanged. Returns the freshly assigned
// ids, in the same order as items.
func (idx *Index[T, D]) Add(items ...T) ([]uint32, error) {
	if len(items) == 0 {
		return nil, nil
	}

	idx.lockWriter()
	defer idx.unlockWriter()

	ids := make([]uint32, 0, len(items))
	for _, item := range items {
		id := idx.insertOne(item)
		ids = append(ids, id)
	}

	idx.params.Metrics.IncInserts(len(items))
	idx.params.Metrics.SetNodeCount(idx.store.Len())
	idx.logger.Debug().
		Int("count", len(items)).
		Uint64("version", idx.version.Load()).
		Msg("hnsw: items added")

	return ids, nil
}

// insertOne runs Algorithm 1 (INSERT) from spec.md §4.7 for a single
// item. Caller must already hold the writer gate.
func (idx *Index[T, D]) insertOne(item T) uint32 {
	idx.bumpVersion()

	level := idx.randomLevel()
	id := idx.store.Append(item, level, idx.params.mmaxAt)
	idx.oracle.growTo(idx.store.Len())

	hadEntry := idx.entrySet
	prevEntry, prevEntryLevel := idx.entryPoint, idx.entryMaxLayer

	if !hadEntry {
		idx.setEntryPoint(id, level)
		return id
	}

	cost := idx.cachedCost(id)
	best := prevEntry

	for lc := prevEntryLevel; lc > level; lc-- {
		best = greedyLayerDescentAt[T, D](idx.store, best, cost, lc)
	}

	top := min(level, prevEntryLevel)
	for lc := top; lc >= 0; lc-- {
		candidates, err := searchLayer[T, D](idx.store, idx.scratch, best, cost, lc, idx.params.EfConstruction, nil, idx.noCancel, &idx.version, idx.version.Load())
		if err != nil {
			// Single-writer during Add: the version can't move under us.
			panic("hnsw: unexpected GraphChanged during insertion")
		}

		maxConn := idx.params.mmaxAt(lc)
		selected := idx.selectFn(idx.oracle, cost, candidates, maxConn, idx.params.ExpandBestSelection, idx.params.KeepPrunedConnections, func(nid uint32) []uint32 {
			return idx.store.NeighborsAt(nid, lc)
		})

		idx.connectBidirectional(id, selected, lc, maxConn)

		if len(candidates) > 0 {
			best = candidates[0].ID
		}
	}

	if level > prevEntryLevel {
		idx.setEntryPoint(id, level)
	}

	return id
}

// connectBidirectional wires id to each of selected at layer, then
// mirrors the edge back (spec.md §4.7 step 6) and shrinks the neighbor's
// list with the configured selector if it now exceeds maxConn. The edge
// is always appended first and only shrunk if over cap — the
// "overshoot then shrink" path spec.md §9 explicitly calls out as an
// open question this module resolves by reproducing it exactly.
func (idx *Index[T, D]) connectBidirectional(id uint32, selected []uint32, layer, maxConn int) {
	idx.bumpVersion()
	for _, s := range selected {
		idx.store.AppendNeighbor(id, layer, s)
	}

	for _, s := range selected {
		idx.bumpVersion()
		idx.store.AppendNeighbor(s, layer, id)

		if len(idx.store.NeighborsAt(s, layer)) <= maxConn {
			continue
		}

		sCost := idx.cachedCost(s)
		current := idx.store.NeighborsAt(s, layer)
		candidates := make([]graph.Scored[D], len(current))
		for i, n := range current {
			candidates[i] = graph.Scored[D]{Dist: sCost(n), ID: n}
		}

		shrunk := idx.selectFn(idx.oracle, sCost, candidates, maxConn, idx.params.ExpandBestSelection, idx.params.KeepPrunedConnections, func(nid uint32) []uint32 {
			return idx.store.NeighborsAt(nid, layer)
		})
		idx.store.SetNeighborsAt(s, layer, shrunk)
	}
}

// cachedCost returns a costFunc that routes through the construction
// distance cache, for use while target is a real stored node id.
func (idx *Index[T, D]) cachedCost(target uint32) costFunc[D] {
	return func(id uint32) D {
		return idx.oracle.Distance(id, target)
	}
}
