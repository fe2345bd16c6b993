package metric

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ontocache/errors"
)

func gatheredNames(t *testing.T, r *MetricsRegistry) map[string]bool {
	t.Helper()
	families, err := r.PrometheusRegistry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	return names
}

func TestMetricsRegistry_RegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter", Help: "A test counter"})
	require.NoError(t, registry.RegisterCounter("ontology", "test_counter", counter))
	counter.Inc()

	assert.True(t, gatheredNames(t, registry)["test_counter"])
}

func TestMetricsRegistry_DuplicateIsInvalid(t *testing.T) {
	registry := NewMetricsRegistry()

	g1 := prometheus.NewGauge(prometheus.GaugeOpts{Name: "dup_gauge", Help: "x"})
	g2 := prometheus.NewGauge(prometheus.GaugeOpts{Name: "dup_gauge", Help: "x"})

	require.NoError(t, registry.RegisterGauge("svc", "dup", g1))

	err := registry.RegisterGauge("svc", "dup", g2)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	err = registry.RegisterGauge("other", "dup", g2)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err), "prometheus-level conflicts are invalid too")
}

func TestMetricsRegistry_VecsAndUnregister(t *testing.T) {
	registry := NewMetricsRegistry()

	cv := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "queries_total", Help: "q"}, []string{"kind"})
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "query_seconds", Help: "q"}, []string{"kind"})
	require.NoError(t, registry.RegisterCounterVec("ontology", "queries", cv))
	require.NoError(t, registry.RegisterHistogramVec("ontology", "query_seconds", hv))
	cv.WithLabelValues("root").Inc()
	hv.WithLabelValues("root").Observe(0.1)

	names := gatheredNames(t, registry)
	assert.True(t, names["queries_total"])
	assert.True(t, names["query_seconds"])

	assert.True(t, registry.Unregister("ontology", "queries"))
	assert.False(t, registry.Unregister("ontology", "queries"))
	assert.False(t, gatheredNames(t, registry)["queries_total"])
}

func TestServer_Handler(t *testing.T) {
	registry := NewMetricsRegistry()
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "fetch_seconds", Help: "f"})
	require.NoError(t, registry.RegisterHistogram("ontology", "fetch", h))
	h.Observe(0.2)

	srv := httptest.NewServer(NewServer("", "", registry).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestServer_CustomHealth(t *testing.T) {
	server := NewServer("", "", NewMetricsRegistry())
	server.HandleHealth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
