package benchmarks

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/vecgraph/hnsw/hnsw"
)

func euclideanDistance(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return float32(math.Sqrt(float64(sum)))
}

// BenchmarkIndexConstruction mirrors the teacher's BenchmarkHNSWConstruction,
// adapted to build a generic hnsw.Index[[]float32, float32] instead of the
// fixed []float32 HNSW facade. A seeded math/rand/v2 generator keeps the
// vectors reproducible across runs, honoring HNSW_RAND_SEED the same way
// the teacher does.
func BenchmarkIndexConstruction(b *testing.B) {
	seedStr := os.Getenv("HNSW_RAND_SEED")
	seedVal := uint64(42)
	if seedStr != "" {
		if val, err := strconv.ParseUint(seedStr, 10, 64); err == nil {
			seedVal = val
		}
	}
	rng := rand.New(rand.NewPCG(seedVal, seedVal))
	runtime.GC()

	configs := []struct {
		name      string
		numVecs   int
		dimension int
	}{
		{"small", 2000, 64},
		{"medium", 10000, 64},
	}

	for _, cfg := range configs {
		vectors := generateRandomVectorsWithRNG(cfg.numVecs, cfg.dimension, rng)

		b.Run(fmt.Sprintf("Build_%s_%dv_%dd", cfg.name, cfg.numVecs, cfg.dimension), func(b *testing.B) {
			fmt.Printf("NumCPU: %d, GOMAXPROCS: %d\n", runtime.NumCPU(), runtime.GOMAXPROCS(0))

			b.ResetTimer()
			b.ReportAllocs()

			var totalInsertTime time.Duration
			var totalVectors int

			for i := 0; i < b.N; i++ {
				b.StopTimer()
				params := hnsw.DefaultParameters[[]float32, float32]()
				params.M = 16
				params.EfConstruction = 100
				params.Distance = euclideanDistance
				idx, err := hnsw.NewIndex[[]float32, float32](params)
				if err != nil {
					b.Fatalf("NewIndex: %v", err)
				}
				runtime.GC()
				b.StartTimer()

				start := time.Now()
				if _, err := idx.Add(vectors...); err != nil {
					b.Fatalf("Add: %v", err)
				}
				elapsed := time.Since(start)
				totalInsertTime += elapsed
				totalVectors += cfg.numVecs

				b.ReportMetric(float64(cfg.numVecs)/elapsed.Seconds(), "vectors/sec")
			}

			avgVectorsPerSecond := float64(totalVectors) / totalInsertTime.Seconds()
			fmt.Printf("Average insertion rate: %.2f vectors/sec\n", avgVectorsPerSecond)
		})
	}
}

// BenchmarkIndexSearch measures k-NN query throughput against a fixed,
// pre-built index — the counterpart query-side benchmark the teacher's
// suite never had (it only benchmarked construction).
func BenchmarkIndexSearch(b *testing.B) {
	rng := rand.New(rand.NewPCG(7, 7))
	vectors := generateRandomVectorsWithRNG(20000, 64, rng)

	params := hnsw.DefaultParameters[[]float32, float32]()
	params.M = 16
	params.EfConstruction = 100
	params.Distance = euclideanDistance
	idx, err := hnsw.NewIndex[[]float32, float32](params)
	if err != nil {
		b.Fatalf("NewIndex: %v", err)
	}
	if _, err := idx.Add(vectors...); err != nil {
		b.Fatalf("Add: %v", err)
	}

	queries := generateRandomVectorsWithRNG(b.N, 64, rng)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := idx.Search(queries[i], 10, hnsw.SearchOptions{}); err != nil {
			b.Fatalf("Search: %v", err)
		}
	}
}

func generateRandomVectorsWithRNG(count, dim int, rng *rand.Rand) [][]float32 {
	vectors := make([][]float32, count)
	for i := range vectors {
		vectors[i] = make([]float32, dim)
		for j := range vectors[i] {
			vectors[i][j] = rng.Float32()
		}
	}
	return vectors
}
