package cache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/metric"
)

// cacheMetrics tracks schema store traffic and mutations. A nil
// *cacheMetrics records nothing.
type cacheMetrics struct {
	fetches       *prometheus.CounterVec // outcome: ok|error
	fetchDuration prometheus.Histogram
	queries       *prometheus.CounterVec // kind: root|subclass|property|search|load|ancestor
	mutations     *prometheus.CounterVec // op, result: applied|skipped
}

func newCacheMetrics(registry *metric.MetricsRegistry) (*cacheMetrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &cacheMetrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ontocache",
			Subsystem: "ontology",
			Name:      "fetch_total",
			Help:      "Class forest loads from the schema store, by outcome",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ontocache",
			Subsystem: "ontology",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of class forest loads",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ontocache",
			Subsystem: "ontology",
			Name:      "queries_total",
			Help:      "Queries sent to the schema store, by kind",
		}, []string{"kind"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ontocache",
			Subsystem: "ontology",
			Name:      "mutations_total",
			Help:      "Cache mutations, by operation and result",
		}, []string{"op", "result"}),
	}

	const service = "ontology-cache"
	if err := registry.RegisterCounterVec(service, "fetch_total", m.fetches); err != nil {
		return nil, errors.WrapTransient(err, "ontology-cache", "newCacheMetrics", "fetch metric registration")
	}
	if err := registry.RegisterHistogram(service, "fetch_duration", m.fetchDuration); err != nil {
		return nil, errors.WrapTransient(err, "ontology-cache", "newCacheMetrics", "duration metric registration")
	}
	if err := registry.RegisterCounterVec(service, "queries_total", m.queries); err != nil {
		return nil, errors.WrapTransient(err, "ontology-cache", "newCacheMetrics", "query metric registration")
	}
	if err := registry.RegisterCounterVec(service, "mutations_total", m.mutations); err != nil {
		return nil, errors.WrapTransient(err, "ontology-cache", "newCacheMetrics", "mutation metric registration")
	}
	return m, nil
}

func (m *cacheMetrics) fetch(start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.fetches.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(time.Since(start).Seconds())
}

func (m *cacheMetrics) query(kind string) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(kind).Inc()
}

func (m *cacheMetrics) mutation(op string, applied bool) {
	if m == nil {
		return
	}
	result := "skipped"
	if applied {
		result = "applied"
	}
	m.mutations.WithLabelValues(op, result).Inc()
}
