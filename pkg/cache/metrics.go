package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/metric"
)

// cacheMetrics holds Prometheus metrics for cache operations.
type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	sets      prometheus.Counter
	deletes   prometheus.Counter
	evictions *prometheus.CounterVec // reason: capacity|expired
	size      prometheus.Gauge
}

func newCacheMetrics(registry *metric.MetricsRegistry, prefix string) (*cacheMetrics, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ontocache",
			Subsystem:   "store",
			Name:        name,
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        help,
		})
	}

	m := &cacheMetrics{
		hits:    counter("hits_total", "Total number of cache hits"),
		misses:  counter("misses_total", "Total number of cache misses"),
		sets:    counter("sets_total", "Total number of cache set operations"),
		deletes: counter("deletes_total", "Total number of cache delete operations"),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "ontocache",
			Subsystem:   "store",
			Name:        "evictions_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of entries evicted, by reason",
		}, []string{"reason"}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ontocache",
			Subsystem:   "store",
			Name:        "size",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Current number of entries in cache",
		}),
	}

	if err := registry.RegisterCounter(prefix, "store_hits", m.hits); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "store_misses", m.misses); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "store_sets", m.sets); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "store_deletes", m.deletes); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec(prefix, "store_evictions", m.evictions); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "store_size", m.size); err != nil {
		return nil, err
	}
	return m, nil
}

// recorder fans every cache event out to the always-on Statistics and the
// optional Prometheus metrics.
type recorder struct {
	stats   *Statistics
	metrics *cacheMetrics
}

func newRecorder[V any](opts *cacheOptions[V], constructor string) (*recorder, error) {
	r := &recorder{stats: NewStatistics()}
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		m, err := newCacheMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "cache", constructor, "metrics registration")
		}
		r.metrics = m
	}
	return r, nil
}

func (r *recorder) hit() {
	r.stats.Hit()
	if r.metrics != nil {
		r.metrics.hits.Inc()
	}
}

func (r *recorder) miss() {
	r.stats.Miss()
	if r.metrics != nil {
		r.metrics.misses.Inc()
	}
}

func (r *recorder) set() {
	r.stats.Set()
	if r.metrics != nil {
		r.metrics.sets.Inc()
	}
}

func (r *recorder) delete() {
	r.stats.Delete()
	if r.metrics != nil {
		r.metrics.deletes.Inc()
	}
}

func (r *recorder) evict() {
	r.stats.Eviction()
	if r.metrics != nil {
		r.metrics.evictions.WithLabelValues("capacity").Inc()
	}
}

func (r *recorder) expire() {
	r.stats.Expiry()
	if r.metrics != nil {
		r.metrics.evictions.WithLabelValues("expired").Inc()
	}
}

func (r *recorder) size(n int) {
	r.stats.UpdateSize(int64(n))
	if r.metrics != nil {
		r.metrics.size.Set(float64(n))
	}
}
