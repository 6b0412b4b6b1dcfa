package hnsw

import (
	"cmp"

	"github.com/vecgraph/hnsw/graph"
	"github.com/vecgraph/hnsw/metrics"
)

// cacheSlot is one entry of the direct-mapped distance cache. A zero
// value has occupied == false, so the zero cacheSlot is a legitimate
// "empty slot" without needing a separate validity bitmap.
type cacheSlot[D any] struct {
	key      uint64
	occupied bool
	value    D
}

// distanceOracle wraps a user-supplied metric with the bounded,
// direct-mapped, pair-keyed cache spec.md §4.3 describes. Cache writes
// are single-writer by construction: only Insert's write path ever calls
// distance through the cache; Search always calls dist() directly
// against the ad hoc query item (spec.md §4.3/§5).
type distanceOracle[T any, D cmp.Ordered] struct {
	store   *graph.Store[T]
	dist    func(a, b T) D
	metrics *metrics.Collector

	enabled bool
	slots   []cacheSlot[D]
	mask    uint64
	maxCap  int
}

func newDistanceOracle[T any, D cmp.Ordered](store *graph.Store[T], dist func(a, b T) D, m *metrics.Collector, enabled bool, initialSize, maxCacheEntries int) *distanceOracle[T, D] {
	o := &distanceOracle[T, D]{
		store:   store,
		dist:    dist,
		metrics: m,
		enabled: enabled,
		maxCap:  maxCacheEntries,
	}
	if enabled {
		o.allocate(initialSize)
	}
	return o
}

func (o *distanceOracle[T, D]) allocate(hintEntries int) {
	capacity := graph.NextPowerOfTwo(uint64(hintEntries))
	if capacity > uint64(o.maxCap) && o.maxCap > 0 {
		capacity = graph.NextPowerOfTwo(uint64(o.maxCap))
		if capacity > uint64(o.maxCap) {
			// NextPowerOfTwo may overshoot maxCap; clamp down to the
			// largest power of two that does not exceed it.
			capacity >>= 1
			if capacity == 0 {
				capacity = 1
			}
		}
	}
	o.slots = make([]cacheSlot[D], capacity)
	o.mask = capacity - 1
}

// capacityFor computes the direct-mapped table size for n stored items,
// per spec.md §4.3: next_power_of_two(n*(n+1)/2) clamped to maxCacheEntries.
func (o *distanceOracle[T, D]) capacityFor(n int) uint64 {
	raw := uint64(n) * (uint64(n) + 1) / 2
	capacity := graph.NextPowerOfTwo(raw)
	if o.maxCap > 0 && capacity > uint64(o.maxCap) {
		capacity = graph.NextPowerOfTwo(uint64(o.maxCap))
		for capacity > uint64(o.maxCap) {
			capacity >>= 1
		}
		if capacity == 0 {
			capacity = 1
		}
	}
	if capacity == 0 {
		capacity = 1
	}
	return capacity
}

// growTo resizes the cache's backing table if the ideal capacity for n
// stored items exceeds the current one. Existing entries are discarded
// (the cache is advisory and lossy by design) rather than rehashed.
func (o *distanceOracle[T, D]) growTo(n int) {
	if !o.enabled {
		return
	}
	want := o.capacityFor(n)
	if want <= uint64(len(o.slots)) {
		return
	}
	o.slots = make([]cacheSlot[D], want)
	o.mask = want - 1
}

// Resize reallocates the cache to hold newCapacity entries (rounded up to
// a power of two), preserving slots that still land within the new table
// and zero-filling the rest. Used by Index.ResizeDistanceCache.
func (o *distanceOracle[T, D]) Resize(newCapacity int) {
	capacity := graph.NextPowerOfTwo(uint64(newCapacity))
	fresh := make([]cacheSlot[D], capacity)
	mask := capacity - 1
	for _, slot := range o.slots {
		if !slot.occupied {
			continue
		}
		idx := slot.key & mask
		if !fresh[idx].occupied || fresh[idx].key == slot.key {
			fresh[idx] = slot
		}
	}
	o.slots = fresh
	o.mask = mask
	o.enabled = true
}

// Distance returns d(i, j) for two stored node ids, consulting and
// populating the cache when enabled.
func (o *distanceOracle[T, D]) Distance(i, j uint32) D {
	if !o.enabled || len(o.slots) == 0 {
		return o.dist(o.store.Item(i), o.store.Item(j))
	}
	key := graph.PairKey(i, j)
	idx := key & o.mask
	if o.slots[idx].occupied && o.slots[idx].key == key {
		o.metrics.IncCacheHit()
		return o.slots[idx].value
	}
	o.metrics.IncCacheMiss()
	value := o.dist(o.store.Item(i), o.store.Item(j))
	o.slots[idx] = cacheSlot[D]{key: key, occupied: true, value: value}
	return value
}

// DistanceToItem returns d(id, target) for an ad hoc target item that is
// not (yet, or ever) a stored node — used for the query item during
// Search, which spec.md §4.8 routes through a one-off oracle bypassing
// the construction cache entirely.
func (o *distanceOracle[T, D]) DistanceToItem(id uint32, target T) D {
	return o.dist(o.store.Item(id), target)
}

// Reset clears every cache slot without changing capacity.
func (o *distanceOracle[T, D]) Reset() {
	for i := range o.slots {
		o.slots[i] = cacheSlot[D]{}
	}
}
