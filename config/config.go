// Package config loads hnsw.Parameters from YAML, the ambient
// configuration concern the distilled algorithm spec leaves unaddressed.
// Grounded on dd0wney-graphdb's config package, which pairs
// gopkg.in/yaml.v3 unmarshaling with go-playground/validator/v10
// struct-tag validation the same way.
package config

import (
	"cmp"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vecgraph/hnsw/hnsw"
)

var fileValidator = validator.New()

// file mirrors hnsw.Parameters' yaml-tagged fields. The function and
// pointer fields (Distance, Rand, Metrics) have no YAML representation
// and are left for the caller to set on the returned Parameters.
type file struct {
	M                        int    `yaml:"m" validate:"gt=0"`
	LevelLambda              float64 `yaml:"levelLambda"`
	NeighbourHeuristic       string  `yaml:"neighbourHeuristic"`
	EfConstruction           int     `yaml:"efConstruction" validate:"gt=0"`
	EfSearch                 int     `yaml:"efSearch" validate:"gt=0"`
	ExpandBestSelection      bool    `yaml:"expandBestSelection"`
	KeepPrunedConnections    bool    `yaml:"keepPrunedConnections"`
	EnableConstructionCache  bool    `yaml:"enableConstructionCache"`
	InitialDistanceCacheSize int     `yaml:"initialDistanceCacheSize" validate:"gte=0"`
	MaxCacheEntries          int     `yaml:"maxCacheEntries" validate:"gte=0"`
	InitialItemsSize         int     `yaml:"initialItemsSize" validate:"gte=0"`
	ThreadSafe               bool    `yaml:"threadSafe"`
}

// Load reads a YAML file at path into an hnsw.Parameters[T, D], starting
// from hnsw.DefaultParameters so any field the file omits keeps its
// default. The caller must still assign Distance (and, optionally, Rand
// and Metrics) before passing the result to hnsw.NewIndex.
func Load[T any, D cmp.Ordered](path string) (hnsw.Parameters[T, D], error) {
	defaults := hnsw.DefaultParameters[T, D]()

	raw, err := os.ReadFile(path)
	if err != nil {
		return defaults, fmt.Errorf("config: reading %s: %w", path, err)
	}

	f := file{
		M:                        defaults.M,
		LevelLambda:              defaults.LevelLambda,
		NeighbourHeuristic:       defaults.NeighbourHeuristic.String(),
		EfConstruction:           defaults.EfConstruction,
		EfSearch:                 defaults.EfSearch,
		ExpandBestSelection:      defaults.ExpandBestSelection,
		KeepPrunedConnections:    defaults.KeepPrunedConnections,
		EnableConstructionCache:  defaults.EnableConstructionCache,
		InitialDistanceCacheSize: defaults.InitialDistanceCacheSize,
		MaxCacheEntries:          defaults.MaxCacheEntries,
		InitialItemsSize:         defaults.InitialItemsSize,
		ThreadSafe:               defaults.ThreadSafe,
	}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return defaults, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := fileValidator.Struct(&f); err != nil {
		return defaults, fmt.Errorf("config: validating %s: %w", path, err)
	}

	strategy, err := parseStrategy(f.NeighbourHeuristic)
	if err != nil {
		return defaults, fmt.Errorf("config: %s: %w", path, err)
	}

	p := defaults
	p.M = f.M
	p.LevelLambda = f.LevelLambda
	p.NeighbourHeuristic = strategy
	p.EfConstruction = f.EfConstruction
	p.EfSearch = f.EfSearch
	p.ExpandBestSelection = f.ExpandBestSelection
	p.KeepPrunedConnections = f.KeepPrunedConnections
	p.EnableConstructionCache = f.EnableConstructionCache
	p.InitialDistanceCacheSize = f.InitialDistanceCacheSize
	p.MaxCacheEntries = f.MaxCacheEntries
	p.InitialItemsSize = f.InitialItemsSize
	p.ThreadSafe = f.ThreadSafe

	return p, nil
}

func parseStrategy(s string) (hnsw.SelectorStrategy, error) {
	switch s {
	case "simple", "":
		return hnsw.Simple, nil
	case "heuristic":
		return hnsw.Heuristic, nil
	default:
		return 0, fmt.Errorf("unknown neighbourHeuristic %q", s)
	}
}
