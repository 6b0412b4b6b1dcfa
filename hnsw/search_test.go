package hnsw

import (
	"math/rand"
	"testing"
)

func buildTestIndex(t *testing.T, n int, seed int64) (*Index[[]float32, float32], [][]float32) {
	t.Helper()
	p := testParameters()
	p.Rand = deterministicRand(seed)
	idx, err := NewIndex[[]float32, float32](p)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	r := rand.New(rand.NewSource(seed))
	items := make([][]float32, n)
	for i := range items {
		items[i] = randomVector(r, 8)
	}
	if _, err := idx.Add(items...); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return idx, items
}

func TestSearchFindsExactItem(t *testing.T) {
	idx, items := buildTestIndex(t, 200, 11)

	for _, target := range []int{0, 37, 199} {
		results, err := idx.Search(items[target], 1, SearchOptions{})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("len(results) = %d, want 1", len(results))
		}
		if results[0].ID != uint32(target) {
			t.Errorf("nearest to items[%d] was id %d (dist %v), want self", target, results[0].ID, results[0].Distance)
		}
	}
}

func TestSearchReturnsKResultsSortedAscending(t *testing.T) {
	idx, items := buildTestIndex(t, 150, 12)
	results, err := idx.Search(items[0], 10, SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 10 {
		t.Fatalf("len(results) = %d, want 10", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Errorf("results not sorted ascending at index %d: %v < %v", i, results[i].Distance, results[i-1].Distance)
		}
	}
}

func TestSearchOnEmptyIndexReturnsNil(t *testing.T) {
	p := testParameters()
	idx, err := NewIndex[[]float32, float32](p)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	results, err := idx.Search([]float32{1, 2}, 5, SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
}

func TestSearchFilterOnlyRestrictsResults(t *testing.T) {
	idx, items := buildTestIndex(t, 200, 13)

	allowed := map[uint32]bool{5: true, 42: true, 99: true}
	results, err := idx.Search(items[0], 3, SearchOptions{
		Ef:     128,
		Filter: func(id uint32) bool { return allowed[id] },
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range results {
		if !allowed[r.ID] {
			t.Errorf("result id %d was not in the allowed set", r.ID)
		}
	}
}

func TestSearchHonorsCancellation(t *testing.T) {
	idx, items := buildTestIndex(t, 300, 14)

	cancel := make(chan struct{})
	close(cancel)

	results, err := idx.Search(items[0], 5, SearchOptions{Cancel: cancel})
	if err != nil {
		t.Fatalf("Search with an already-closed cancel channel returned an error: %v", err)
	}
	// Cancellation yields a partial (possibly empty, possibly incomplete)
	// result, never an error.
	_ = results
}

func TestGreedyLayerDescentNeverWorsensDistance(t *testing.T) {
	idx, items := buildTestIndex(t, 100, 15)
	cost := func(id uint32) float32 {
		return euclidean(idx.store.Item(id), items[0])
	}
	startDist := cost(idx.entryPoint)
	best := greedyLayerDescentAt[[]float32, float32](idx.store, idx.entryPoint, cost, 0)
	if cost(best) > startDist {
		t.Fatalf("descent made things worse: started at %v, ended at %v", startDist, cost(best))
	}
}
