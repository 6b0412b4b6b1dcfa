package hnsw

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-playground/validator/v10"
	"github.com/vecgraph/hnsw/metrics"
)

// SelectorStrategy picks which neighbor-selection algorithm Insert uses
// when building connections at a layer (spec.md §4.5).
type SelectorStrategy int

const (
	// Simple selects the M closest candidates, ties broken by smaller id.
	Simple SelectorStrategy = iota
	// Heuristic implements paper Algorithm 4 (R/W/Wd sets, optional
	// candidate expansion and pruned-connection retention).
	Heuristic
)

func (s SelectorStrategy) String() string {
	switch s {
	case Simple:
		return "simple"
	case Heuristic:
		return "heuristic"
	default:
		return fmt.Sprintf("SelectorStrategy(%d)", int(s))
	}
}

// Parameters configures an Index. Only M is independently settable for
// the per-layer degree cap: Mmax(0)=2M and Mmax(l>0)=M are derived, per
// spec.md §6 — this is a deliberate narrowing of the teacher's
// independently-settable Mmax/Mmax0 fields (see DESIGN.md, Open Question
// resolution #3).
type Parameters[T any, D cmp.Ordered] struct {
	// M is the target degree per layer. Mmax(0) = 2*M, Mmax(l>0) = M.
	M int `validate:"gt=0" yaml:"m"`

	// LevelLambda scales the exponential level-sampling distribution.
	// Defaults to 1/ln(M) when zero. Validated manually (must be >= 0)
	// since zero is a legal sentinel meaning "use the default".
	LevelLambda float64 `yaml:"levelLambda"`

	// NeighbourHeuristic selects Simple or Heuristic neighbor selection.
	NeighbourHeuristic SelectorStrategy `yaml:"neighbourHeuristic"`

	// EfConstruction is the beam width used while inserting.
	EfConstruction int `validate:"gt=0" yaml:"efConstruction"`

	// EfSearch is the default beam width used while querying, when a
	// call doesn't override it; raised to k at call time when smaller.
	EfSearch int `validate:"gt=0" yaml:"efSearch"`

	// ExpandBestSelection enables the heuristic selector's pre-pass that
	// folds each candidate's own neighbors into the working set.
	ExpandBestSelection bool `yaml:"expandBestSelection"`

	// KeepPrunedConnections enables the heuristic selector's top-up from
	// the discarded set when the result set falls short of M.
	KeepPrunedConnections bool `yaml:"keepPrunedConnections"`

	// EnableConstructionCache turns on the direct-mapped distance cache
	// during Add. Search never uses the cache regardless of this flag.
	EnableConstructionCache bool `yaml:"enableConstructionCache"`

	// InitialDistanceCacheSize seeds the cache's starting capacity.
	InitialDistanceCacheSize int `validate:"gte=0" yaml:"initialDistanceCacheSize"`

	// MaxCacheEntries clamps how large the distance cache may grow.
	// Defaults to 2^28 when zero.
	MaxCacheEntries int `validate:"gte=0" yaml:"maxCacheEntries"`

	// InitialItemsSize pre-allocates the node/item store.
	InitialItemsSize int `validate:"gte=0" yaml:"initialItemsSize"`

	// ThreadSafe enables the RWMutex writer gate. When false, the caller
	// must guarantee external synchronization (spec.md §5).
	ThreadSafe bool `yaml:"threadSafe"`

	// Distance is the caller-supplied metric. Must satisfy d(x,y)=d(y,x)
	// and never return NaN. Cannot be validated by struct tag; checked
	// manually in validateParameters.
	Distance func(a, b T) D `validate:"-" yaml:"-"`

	// Rand produces uniform values for level sampling; a value <= 0 is
	// treated as the smallest positive float64. Defaults to
	// math/rand/v2.Float64 (range [0,1)) when nil. Need not be
	// cryptographic but must be deterministic when the caller seeds it
	// themselves.
	Rand func() float64 `validate:"-" yaml:"-"`

	// Metrics, when non-nil, receives construction/query instrumentation.
	// A nil Metrics is a fully functional no-metrics mode.
	Metrics *metrics.Collector `validate:"-" yaml:"-"`
}

// DefaultParameters returns the spec.md §6 defaults for the given item
// and distance types; Distance must still be supplied by the caller.
func DefaultParameters[T any, D cmp.Ordered]() Parameters[T, D] {
	return Parameters[T, D]{
		M:                        10,
		LevelLambda:              1 / math.Log(10),
		NeighbourHeuristic:       Simple,
		EfConstruction:           200,
		EfSearch:                 200,
		ExpandBestSelection:      false,
		KeepPrunedConnections:    false,
		EnableConstructionCache:  true,
		InitialDistanceCacheSize: 1 << 20,
		MaxCacheEntries:          1 << 28,
		InitialItemsSize:         1024,
		ThreadSafe:               true,
		Rand:                     rand.Float64,
		Metrics:                  nil,
	}
}

// mmax0 returns Mmax(0) = 2*M.
func (p Parameters[T, D]) mmax0() int { return 2 * p.M }

// mmaxAt returns Mmax(l): 2*M at layer 0, M otherwise.
func (p Parameters[T, D]) mmaxAt(layer int) int {
	if layer == 0 {
		return p.mmax0()
	}
	return p.M
}

var paramValidator = validator.New()

// validateParameters checks Parameters against both its struct tags and
// the manual checks validator tags can't express (function fields,
// cross-field defaults). Returns an error wrapping ErrInvalidParameters.
func validateParameters[T any, D cmp.Ordered](p Parameters[T, D]) error {
	if p.LevelLambda < 0 {
		return fmt.Errorf("%w: LevelLambda must be non-negative", ErrInvalidParameters)
	}
	if err := paramValidator.Struct(&p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	if p.Distance == nil {
		return fmt.Errorf("%w: Distance must be provided", ErrInvalidParameters)
	}
	if p.NeighbourHeuristic != Simple && p.NeighbourHeuristic != Heuristic {
		return fmt.Errorf("%w: unknown NeighbourHeuristic %v", ErrInvalidParameters, p.NeighbourHeuristic)
	}
	return nil
}

// withDefaults fills in zero-valued optional fields (LevelLambda,
// MaxCacheEntries, Rand) the way NewHNSW/DefaultConfig do in the teacher.
func withDefaults[T any, D cmp.Ordered](p Parameters[T, D]) Parameters[T, D] {
	if p.LevelLambda == 0 && p.M > 1 {
		p.LevelLambda = 1 / math.Log(float64(p.M))
	}
	if p.MaxCacheEntries == 0 {
		p.MaxCacheEntries = 1 << 28
	}
	if p.Rand == nil {
		p.Rand = rand.Float64
	}
	return p
}
