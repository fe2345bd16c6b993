package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name string
		subs []Status
		want string
	}{
		{"empty", nil, StateHealthy},
		{"all healthy", []Status{NewHealthy("a", ""), NewHealthy("b", "")}, StateHealthy},
		{"one degraded", []Status{NewHealthy("a", ""), NewDegraded("b", "")}, StateDegraded},
		{"unhealthy wins", []Status{NewDegraded("a", ""), NewUnhealthy("b", "")}, StateUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate("system", tt.subs)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, tt.want == StateHealthy, got.Healthy)
			assert.Len(t, got.SubStatuses, len(tt.subs))
		})
	}
}

func TestFromError(t *testing.T) {
	ok := FromError("schema_store", nil)
	assert.True(t, ok.IsHealthy())

	bad := FromError("schema_store",
		errors.New("query https://db.internal:7200/repositories/onto failed: password=hunter2"))
	assert.True(t, bad.IsUnhealthy())
	assert.NotContains(t, bad.Message, "db.internal")
	assert.NotContains(t, bad.Message, "hunter2")
	assert.Contains(t, bad.Message, "[URL]")
}

func TestSanitizeErrorMessage(t *testing.T) {
	tests := []struct {
		in       string
		contains string
		hidden   string
	}{
		{"open /etc/ontocache/zoo.nt: no such file", "[PATH]", "/etc/ontocache"},
		{"dial tcp 10.0.0.12 refused", "[IP]", "10.0.0.12"},
		{`open C:\data\zoo.nt failed`, "[PATH]", `C:\data`},
		{"auth failed, token=abc123", "[REDACTED]", "abc123"},
	}
	for _, tt := range tests {
		got := sanitizeErrorMessage(tt.in)
		assert.Contains(t, got, tt.contains, tt.in)
		assert.NotContains(t, got, tt.hidden, tt.in)
	}
	assert.Empty(t, sanitizeErrorMessage(""))
}

func TestMonitor(t *testing.T) {
	m := NewMonitor()
	m.UpdateHealthy("schema_store", "loaded")
	m.UpdateDegraded("class_cache", "slow")

	status, ok := m.Get("schema_store")
	require.True(t, ok)
	assert.Equal(t, "schema_store", status.Component)
	assert.False(t, status.Timestamp.IsZero())

	agg := m.AggregateHealth("ontocache")
	assert.True(t, agg.IsDegraded())
	require.Len(t, agg.SubStatuses, 2)
	assert.Equal(t, "class_cache", agg.SubStatuses[0].Component)

	m.Remove("class_cache")
	assert.True(t, m.AggregateHealth("ontocache").IsHealthy())
	_, ok = m.Get("class_cache")
	assert.False(t, ok)
}

func TestMonitor_Concurrent(t *testing.T) {
	m := NewMonitor()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.UpdateHealthy("store", "ok")
		}()
		go func() {
			defer wg.Done()
			_ = m.AggregateHealth("ontocache")
		}()
	}
	wg.Wait()
	_, ok := m.Get("store")
	assert.True(t, ok)
}

func TestHandler(t *testing.T) {
	m := NewMonitor()
	m.UpdateHealthy("schema_store", "loaded")
	srv := httptest.NewServer(Handler(m, "ontocache"))
	defer srv.Close()

	get := func() (int, Status) {
		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()
		var s Status
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
		return resp.StatusCode, s
	}

	code, s := get()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ontocache", s.Component)

	m.UpdateDegraded("class_cache", "slow")
	code, s = get()
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, s.IsDegraded())

	m.UpdateUnhealthy("schema_store", "down")
	code, s = get()
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.True(t, s.IsUnhealthy())
}
