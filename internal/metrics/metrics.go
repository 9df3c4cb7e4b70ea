// Package metrics is the counter/histogram registry the crawler and
// indexer report completed work into, and the search planner observes
// latency into, built on the Prometheus client. Each Registry owns its
// own prometheus.Registry so a process exposes exactly the series it
// recorded, and tests can construct registries freely without
// colliding on global registration.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SearchLatencyBuckets are the histogram boundaries for
// search_latency_ms, in milliseconds.
var SearchLatencyBuckets = []float64{5, 10, 20, 30, 40, 50, 75, 100, 200, 400, 800}

// Registry holds every metric the pipeline emits.
type Registry struct {
	reg *prometheus.Registry

	crawlerPagesTotal *prometheus.CounterVec
	indexerDocsTotal  prometheus.Counter
	searchLatencyMs   prometheus.Histogram
}

// New builds a Registry with the pipeline's counters and the standard
// search-latency buckets registered on a fresh prometheus.Registry.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		crawlerPagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_pages_total",
				Help: "Pages persisted by the crawler, by domain.",
			},
			[]string{"domain"},
		),
		indexerDocsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "indexer_docs_total",
				Help: "Documents upserted by the indexer.",
			},
		),
		searchLatencyMs: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_latency_ms",
				Help:    "Search planner latency in milliseconds.",
				Buckets: SearchLatencyBuckets,
			},
		),
	}
}

// RecordCrawl increments crawler_pages_total{domain}.
func (r *Registry) RecordCrawl(domain string) {
	r.crawlerPagesTotal.WithLabelValues(domain).Inc()
}

// RecordIndex increments indexer_docs_total.
func (r *Registry) RecordIndex() {
	r.indexerDocsTotal.Inc()
}

// ObserveSearchLatency records one search_latency_ms observation.
func (r *Registry) ObserveSearchLatency(ms float64) {
	r.searchLatencyMs.Observe(ms)
}

// Gatherer exposes the underlying registry for an HTTP exposition
// handler to scrape.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
