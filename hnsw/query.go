package hnsw

import (
	"cmp"
	"time"

	"github.com/vecgraph/hnsw/graph"
)

// Neighbor is one result of a Search call: the stored item, its id, and
// its distance to the query.
type Neighbor[T any, D cmp.Ordered] struct {
	ID       uint32
	Item     T
	Distance D
}

// SearchOptions configures a single Search call. The zero value uses the
// Index's configured EfSearch and applies no filter.
type SearchOptions struct {
	// Ef overrides Parameters.EfSearch for this call when positive.
	// Whichever value wins is raised to k when it is smaller.
	Ef int

	// Filter, when non-nil, restricts which ids may enter the result set.
	// It never affects graph traversal — only what gets returned
	// (spec.md §4.8's keep(id) semantics).
	Filter func(id uint32) bool

	// Cancel, when non-nil, lets a caller request early termination;
	// Search returns whatever partial result the beam holds at that
	// point, never an error (spec.md §5).
	Cancel <-chan struct{}
}

// Search runs Algorithm 5 (K-NN-SEARCH) from spec.md §4.8: greedy descent
// through the upper layers to a single entry candidate, then a
// bounded-beam search at layer 0 with ef = max(k, EfSearch), returning the
// k nearest results honoring opts.Filter.
//
// On a concurrent structural change mid-search, the layer-0 beam is
// retried from scratch against the new version, up to maxSearchRetries
// times, before giving up with ErrGraphChanged (spec.md §5).
func (idx *Index[T, D]) Search(query T, k int, opts SearchOptions) ([]Neighbor[T, D], error) {
	idx.lockReader()
	defer idx.unlockReader()

	start := time.Now()
	defer func() { idx.params.Metrics.ObserveSearchSeconds(time.Since(start).Seconds()) }()

	idx.params.Metrics.IncSearches()

	if !idx.entrySet || k <= 0 {
		return nil, nil
	}

	ef := opts.Ef
	if ef <= 0 {
		ef = idx.params.EfSearch
	}
	if ef < k {
		ef = k
	}

	cancel := opts.Cancel
	if cancel == nil {
		cancel = idx.noCancel
	}

	cost := func(id uint32) D {
		return idx.oracle.DistanceToItem(id, query)
	}

	best := idx.entryPoint
	for lc := idx.entryMaxLayer; lc > 0; lc-- {
		best = greedyLayerDescentAt[T, D](idx.store, best, cost, lc)
	}

	var (
		results []graph.Scored[D]
		err     error
	)
	for attempt := 0; attempt < maxSearchRetries; attempt++ {
		startVersion := idx.version.Load()
		raw, searchErr := searchLayer[T, D](idx.store, idx.scratch, best, cost, 0, ef, keepFunc(opts.Filter), cancel, &idx.version, startVersion)
		if searchErr == nil {
			results = raw
			err = nil
			break
		}
		err = searchErr
		idx.params.Metrics.IncGraphChangedRetry()
	}
	if err != nil {
		return nil, err
	}

	if len(results) > k {
		results = results[:k]
	}

	out := make([]Neighbor[T, D], len(results))
	for i, r := range results {
		out[i] = Neighbor[T, D]{ID: r.ID, Item: idx.store.Item(r.ID), Distance: r.Dist}
	}
	return out, nil
}
