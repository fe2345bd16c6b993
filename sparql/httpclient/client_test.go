package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/pkg/retry"
	"github.com/c360/ontocache/sparql"
	"github.com/c360/ontocache/vocabulary"
)

const selectResult = `{
  "head": {"vars": ["uri", "name_en", "parent"]},
  "results": {"bindings": [
    {"uri": {"type": "uri", "value": "http://ex.org/Dog"},
     "name_en": {"type": "literal", "value": "Dog", "xml:lang": "en"},
     "parent": {"type": "uri", "value": "http://ex.org/Animal"}},
    {"uri": {"type": "uri", "value": "http://ex.org/Cat"},
     "legs": {"type": "literal", "value": "4", "datatype": "http://www.w3.org/2001/XMLSchema#integer"},
     "r": {"type": "bnode", "value": "b0"}}
  ]}
}`

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{Endpoint: srv.URL, Retry: fastRetry()}, nil, nil)
	require.NoError(t, err)
	return c
}

func TestExecuteSelectStream(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		gotQuery = r.PostForm.Get("query")
		assert.Equal(t, resultsMediaType, r.Header.Get("Accept"))
		w.Header().Set("Content-Type", resultsMediaType)
		_, _ = w.Write([]byte(selectResult))
	})

	q := sparql.Select("uri")
	q.Where.Where(sparql.Triple(sparql.Var("uri"), sparql.IRI(vocabulary.RdfType), sparql.IRI(vocabulary.OwlClass)))

	rows, err := sparql.Collect(context.Background(), c, q)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, q.String(), gotQuery)
	assert.Equal(t, sparql.IRI("http://ex.org/Dog"), rows[0]["uri"])
	assert.Equal(t, sparql.LangLiteral("Dog", "en"), rows[0]["name_en"])
	assert.Equal(t, vocabulary.XsdInteger, rows[1]["legs"].Datatype)
	assert.True(t, rows[1]["r"].IsBlank())
	assert.False(t, rows[1].Has("parent"))
}

func TestExecuteSelectStream_CallbackStops(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(selectResult))
	})

	stop := errors.ErrInvalidData
	calls := 0
	err := c.ExecuteSelectStream(context.Background(), sparql.Select(), func(sparql.Row) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestExecuteAsk(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"head": {}, "boolean": true}`))
	})

	ok, err := c.ExecuteAsk(context.Background(), sparql.Ask(sparql.NewGroup()))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"boolean": false}`))
	})

	ok, err := c.ExecuteAsk(context.Background(), sparql.Ask(sparql.NewGroup()))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "parse error", http.StatusBadRequest)
	})

	_, err := c.ExecuteAsk(context.Background(), sparql.Ask(sparql.NewGroup()))
	require.Error(t, err)
	assert.ErrorIs(t, err, sparql.ErrQueryFailed)
	assert.True(t, errors.IsInvalid(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestExhaustedRetriesAreTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})

	err := c.ExecuteSelectStream(context.Background(), sparql.Select(), func(sparql.Row) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, sparql.ErrQueryFailed)
	assert.True(t, errors.IsTransient(err))
}

func TestMalformedResults(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"no results", `{"head": {}}`},
		{"bad term type", `{"results": {"bindings": [{"x": {"type": "weird", "value": "?"}}]}}`},
		{"truncated", `{"results": {"bindings": [{"x": {"type": "uri", "value": "a"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			err := c.ExecuteSelectStream(context.Background(), sparql.Select(), func(sparql.Row) error { return nil })
			require.Error(t, err)
			assert.ErrorIs(t, err, sparql.ErrMalformedResult)
		})
	}
}

func TestNew_InvalidEndpoint(t *testing.T) {
	_, err := New(Config{Endpoint: "not a url"}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}
