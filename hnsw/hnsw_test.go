package hnsw

import (
	"math"
	"math/rand"
)

// euclidean is the distance function shared by this package's tests,
// operating on fixed-dimension float32 vectors.
func euclidean(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return float32(math.Sqrt(float64(sum)))
}

func testParameters() Parameters[[]float32, float32] {
	p := DefaultParameters[[]float32, float32]()
	p.M = 8
	p.EfConstruction = 64
	p.EfSearch = 64
	p.InitialDistanceCacheSize = 1024
	p.InitialItemsSize = 64
	p.Distance = euclidean
	return p
}

// deterministicRand returns a seeded (*rand.Rand).Float64-backed
// generator so level sampling is reproducible across test runs.
func deterministicRand(seed int64) func() float64 {
	r := rand.New(rand.NewSource(seed))
	return r.Float64
}

func randomVector(r *rand.Rand, dims int) []float32 {
	v := make([]float32, dims)
	for i := range v {
		v[i] = r.Float32()
	}
	return v
}
