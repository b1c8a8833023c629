package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	IngestBatches    prometheus.Counter
	IngestSuccesses  prometheus.Counter
	IngestFailures   prometheus.Counter
	SearchRequests   prometheus.Counter
	SearchDuration   prometheus.Histogram
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	CompaniesTotal   prometheus.Gauge
	EmailsTotal      prometheus.Gauge
	CompaniesCreated prometheus.Counter
}

// NewMetrics creates new Prometheus metrics on the default registry
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates new Prometheus metrics on the given registerer.
// Tests use this with a fresh registry to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IngestBatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "email_catalog_ingest_batches_total",
			Help: "Total number of bulk ingest batches processed",
		}),
		IngestSuccesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "email_catalog_ingest_successes_total",
			Help: "Total number of email records successfully ingested",
		}),
		IngestFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "email_catalog_ingest_failures_total",
			Help: "Total number of email records that failed ingestion",
		}),
		SearchRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "email_catalog_search_requests_total",
			Help: "Total number of email search requests",
		}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "email_catalog_search_duration_seconds",
			Help:    "Time spent executing email searches",
			Buckets: prometheus.DefBuckets,
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "email_catalog_cache_hits_total",
			Help: "Total number of search cache hits",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "email_catalog_cache_misses_total",
			Help: "Total number of search cache misses",
		}),
		CompaniesTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "email_catalog_companies_total",
			Help: "Number of companies currently registered in the catalog",
		}),
		EmailsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "email_catalog_emails_total",
			Help: "Number of emails currently stored in the catalog",
		}),
		CompaniesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "email_catalog_companies_created_total",
			Help: "Total number of companies created",
		}),
	}
}
