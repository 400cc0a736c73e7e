package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "newsbrief"

// Metrics counts summary pipeline outcomes. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	generationFailures *prometheus.CounterVec
	parseDegraded      *prometheus.CounterVec
	duplicateInserts   prometheus.Counter
	requestDuration    *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_hits_total",
			Help:      "Summaries served from the cache store.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_misses_total",
			Help:      "Summary requests that required generation.",
		}),
		generationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_generation_failures_total",
			Help:      "Failed external generation calls by reason.",
		}, []string{"reason"}),
		parseDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_parse_degraded_total",
			Help:      "Model responses that needed fallback parsing, by reason.",
		}, []string{"reason"}),
		duplicateInserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_duplicate_inserts_total",
			Help:      "Cache writes rejected because another writer stored the URL first.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   []float64{.005, .05, .25, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.cacheHits,
		m.cacheMisses,
		m.generationFailures,
		m.parseDegraded,
		m.duplicateInserts,
		m.requestDuration,
	)

	return m
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

func (m *Metrics) GenerationFailed(reason string) {
	if m == nil {
		return
	}
	m.generationFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ParseDegraded(reason string) {
	if m == nil {
		return
	}
	m.parseDegraded.WithLabelValues(reason).Inc()
}

func (m *Metrics) DuplicateInsert() {
	if m == nil {
		return
	}
	m.duplicateInserts.Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
