// Package metrics provides optional Prometheus instrumentation for an
// hnsw.Index. A nil *Collector is a legitimate no-metrics mode; every
// method on Collector is nil-receiver safe.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the counters/histograms exposed for one Index.
// Grounded on dd0wney-graphdb/pkg/metrics, which registers this shape of
// counter/histogram against a caller-supplied registry rather than the
// global default one, so multiple indexes in one process don't collide.
type Collector struct {
	inserts       prometheus.Counter
	searches      prometheus.Counter
	searchLatency prometheus.Histogram
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	graphChanged  prometheus.Counter
	nodeCount     prometheus.Gauge
}

// New builds a Collector with the given label values (e.g. an Index's
// instance id) attached to every metric via a constant label set.
func New(constLabels prometheus.Labels) *Collector {
	return &Collector{
		inserts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hnsw_inserts_total",
			Help:        "Number of items inserted into the index.",
			ConstLabels: constLabels,
		}),
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hnsw_searches_total",
			Help:        "Number of k-NN searches performed.",
			ConstLabels: constLabels,
		}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "hnsw_search_duration_seconds",
			Help:        "Latency of k-NN searches.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hnsw_distance_cache_hits_total",
			Help:        "Distance cache hits during construction.",
			ConstLabels: constLabels,
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hnsw_distance_cache_misses_total",
			Help:        "Distance cache misses during construction.",
			ConstLabels: constLabels,
		}),
		graphChanged: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hnsw_graph_changed_retries_total",
			Help:        "Number of GraphChanged retries during search.",
			ConstLabels: constLabels,
		}),
		nodeCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "hnsw_nodes",
			Help:        "Current number of nodes in the index.",
			ConstLabels: constLabels,
		}),
	}
}

// Register registers every metric against reg. Safe to call with a
// fresh, non-shared registry per Index.
func (c *Collector) Register(reg *prometheus.Registry) error {
	if c == nil {
		return nil
	}
	collectors := []prometheus.Collector{
		c.inserts, c.searches, c.searchLatency,
		c.cacheHits, c.cacheMisses, c.graphChanged, c.nodeCount,
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) IncInserts(n int) {
	if c == nil {
		return
	}
	c.inserts.Add(float64(n))
}

func (c *Collector) IncSearches() {
	if c == nil {
		return
	}
	c.searches.Inc()
}

func (c *Collector) ObserveSearchSeconds(s float64) {
	if c == nil {
		return
	}
	c.searchLatency.Observe(s)
}

func (c *Collector) IncCacheHit() {
	if c == nil {
		return
	}
	c.cacheHits.Inc()
}

func (c *Collector) IncCacheMiss() {
	if c == nil {
		return
	}
	c.cacheMisses.Inc()
}

func (c *Collector) IncGraphChangedRetry() {
	if c == nil {
		return
	}
	c.graphChanged.Inc()
}

func (c *Collector) SetNodeCount(n int) {
	if c == nil {
		return
	}
	c.nodeCount.Set(float64(n))
}
