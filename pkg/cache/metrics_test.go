package cache

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ontocache/metric"
)

func TestWithMetrics_ExportsCounters(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	c, err := NewLRU[int](1, WithMetrics[int](registry, "classes"))
	require.NoError(t, err)

	_, _ = c.Set("a", 1)
	_, _ = c.Get("a")
	_, _ = c.Get("b")
	_, _ = c.Set("b", 2)

	bc := c.(*boundedCache[int])
	m := bc.rec.metrics
	require.NotNil(t, m)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sets))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evictions.WithLabelValues("capacity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.size))
}

func TestWithMetrics_DuplicatePrefixFails(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	_, err := NewSimple[int](WithMetrics[int](registry, "dup"))
	require.NoError(t, err)

	_, err = NewSimple[int](WithMetrics[int](registry, "dup"))
	assert.Error(t, err)
}
