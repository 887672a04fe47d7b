package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	searches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "songslide",
		Name:      "searches_total",
		Help:      "Total number of searches by whether suggestions were requested",
	}, []string{"suggestions"})
	searchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "songslide",
		Name:      "search_errors_total",
		Help:      "Total number of searches that failed",
	})
	searchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "songslide",
		Name:      "search_duration_seconds",
		Help:      "Histogram of search durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms up to ~4s
	})
	searchResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "songslide",
		Name:      "search_results",
		Help:      "Number of ranked results returned per search",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
	})
	searchCandidates = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "songslide",
		Name:      "search_candidates",
		Help:      "Number of candidate songs scored per search",
		Buckets:   []float64{0, 10, 50, 100, 300, 450, 650},
	})
	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "songslide",
		Name:      "search_cache_total",
		Help:      "Search cache lookups by outcome (hit, stale, miss)",
	}, []string{"outcome"})
	weightLoadFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "songslide",
		Name:      "weight_load_failures_total",
		Help:      "Times stored search weights could not be loaded and defaults were used",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(searches, searchErrors, searchDuration, searchResults, searchCandidates,
			cacheLookups, weightLoadFailures)
	})
}

// Cache outcomes.
const (
	CacheHit   = "hit"
	CacheStale = "stale"
	CacheMiss  = "miss"
)

// ObserveSearch records one completed search.
func ObserveSearch(withSuggestions bool, d time.Duration, candidates, results int) {
	searches.WithLabelValues(strconv.FormatBool(withSuggestions)).Inc()
	searchDuration.Observe(d.Seconds())
	searchCandidates.Observe(float64(candidates))
	searchResults.Observe(float64(results))
}

func IncSearchErrors()       { searchErrors.Inc() }
func IncWeightLoadFailures() { weightLoadFailures.Inc() }
func IncCache(outcome string) {
	cacheLookups.WithLabelValues(outcome).Inc()
}
