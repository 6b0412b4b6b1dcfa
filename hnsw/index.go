package hnsw

import (
	"cmp"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vecgraph/hnsw/graph"
)

// Index is a generic HNSW approximate nearest-neighbor graph over items of
// type T under a distance function returning D. The zero value is not
// usable; construct with NewIndex.
//
// Grounded on the teacher's hnsw.HNSW facade, generalized from a
// []float32-only struct to T/D type parameters and from pointer-chasing
// adjacency to the id-addressed graph.Store.
type Index[T any, D cmp.Ordered] struct {
	id     uuid.UUID
	params Parameters[T, D]
	logger zerolog.Logger

	store    *graph.Store[T]
	oracle   *distanceOracle[T, D]
	selectFn selectFunc[T, D]
	scratch  *scratch[D]

	gate    sync.RWMutex
	version atomic.Uint64

	entryPoint    uint32
	entryMaxLayer int
	entrySet      bool

	noCancel chan struct{}
}

// NewIndex validates params, applies defaults, and returns an empty Index
// ready for Add/Search. Grounded on the teacher's NewHNSW constructor.
func NewIndex[T any, D cmp.Ordered](params Parameters[T, D]) (*Index[T, D], error) {
	params = withDefaults(params)
	if err := validateParameters(params); err != nil {
		return nil, err
	}

	store := graph.NewStore[T](params.InitialItemsSize)
	oracle := newDistanceOracle[T, D](store, params.Distance, params.Metrics, params.EnableConstructionCache, params.InitialDistanceCacheSize, params.MaxCacheEntries)

	selectFn := selectFunc[T, D](selectSimple[T, D])
	if params.NeighbourHeuristic == Heuristic {
		selectFn = selectHeuristic[T, D]
	}

	idx := &Index[T, D]{
		id:     uuid.New(),
		params: params,
		logger: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger(),

		store:    store,
		oracle:   oracle,
		selectFn: selectFn,
		scratch: &scratch[D]{
			heaps:   graph.NewHeapPool[D](params.EfConstruction + 1),
			visited: graph.NewBitsetPool(params.InitialItemsSize),
		},

		noCancel: make(chan struct{}),
	}

	idx.logger = idx.logger.With().Str("index_id", idx.id.String()).Logger()
	idx.logger.Info().
		Int("m", params.M).
		Str("selector", params.NeighbourHeuristic.String()).
		Bool("thread_safe", params.ThreadSafe).
		Msg("hnsw: index created")

	return idx, nil
}

func (idx *Index[T, D]) lockWriter() {
	if idx.params.ThreadSafe {
		idx.gate.Lock()
	}
}

func (idx *Index[T, D]) unlockWriter() {
	if idx.params.ThreadSafe {
		idx.gate.Unlock()
	}
}

func (idx *Index[T, D]) lockReader() {
	if idx.params.ThreadSafe {
		idx.gate.RLock()
	}
}

func (idx *Index[T, D]) unlockReader() {
	if idx.params.ThreadSafe {
		idx.gate.RUnlock()
	}
}

func (idx *Index[T, D]) bumpVersion() {
	idx.version.Add(1)
}

func (idx *Index[T, D]) setEntryPoint(id uint32, level int) {
	idx.entryPoint = id
	idx.entryMaxLayer = level
	idx.entrySet = true
}

// Len reports the number of items currently stored.
func (idx *Index[T, D]) Len() int {
	idx.lockReader()
	defer idx.unlockReader()
	return idx.store.Len()
}

// Item returns the item stored at id. Panics if id is out of range, the
// same contract graph.Store.Item carries (spec.md §7: programmer error,
// not a recoverable condition).
func (idx *Index[T, D]) Item(id uint32) T {
	idx.lockReader()
	defer idx.unlockReader()
	return idx.store.Item(id)
}

// ResizeDistanceCache reallocates the construction distance cache to hold
// newCapacity entries, discarding any entries that no longer fit. Exposed
// so long-running callers can grow the cache ahead of a large bulk Add.
func (idx *Index[T, D]) ResizeDistanceCache(newCapacity int) {
	idx.lockWriter()
	defer idx.unlockWriter()
	idx.oracle.Resize(newCapacity)
}
