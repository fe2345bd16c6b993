// Package httpclient implements sparql.Service over the SPARQL 1.1 Protocol.
//
// Queries are POSTed as application/x-www-form-urlencoded and results are
// read as application/sparql-results+json. SELECT results are decoded one
// binding at a time so large subclass and property result sets are never held
// in memory as a whole.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/pkg/retry"
	"github.com/c360/ontocache/sparql"
)

const (
	// maxErrorBodySize limits how much of an error response body is kept.
	maxErrorBodySize = 4096

	resultsMediaType = "application/sparql-results+json"
)

// Config configures a Client.
type Config struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
	Retry    retry.Config  `json:"retry" yaml:"retry"`
}

// Client is a SPARQL 1.1 Protocol client.
type Client struct {
	endpoint   string
	httpClient *http.Client
	retry      retry.Config
	logger     *slog.Logger
}

var _ sparql.Service = (*Client)(nil)

// New creates a client. A nil httpClient gets one with cfg.Timeout (30s by
// default); a nil logger uses slog.Default().
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "httpclient", "New",
			fmt.Sprintf("invalid endpoint %q", cfg.Endpoint))
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	policy := cfg.Retry
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultConfig()
	}
	policy.Retryable = errors.IsTransient

	return &Client{
		endpoint:   cfg.Endpoint,
		httpClient: httpClient,
		retry:      policy,
		logger:     logger,
	}, nil
}

// ExecuteAsk runs an ASK query.
func (c *Client) ExecuteAsk(ctx context.Context, q *sparql.AskQuery) (bool, error) {
	body, err := c.post(ctx, "ExecuteAsk", q.String())
	if err != nil {
		return false, err
	}
	defer body.Close()

	var result struct {
		Boolean *bool `json:"boolean"`
	}
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return false, errors.WrapInvalid(fmt.Errorf("%w: %v", sparql.ErrMalformedResult, err),
			"httpclient", "ExecuteAsk", "decode response")
	}
	if result.Boolean == nil {
		return false, errors.WrapInvalid(sparql.ErrMalformedResult, "httpclient", "ExecuteAsk",
			"response has no boolean")
	}
	return *result.Boolean, nil
}

// ExecuteSelectStream runs a SELECT query and decodes bindings as they
// arrive. Only the request itself is retried; once rows have been delivered a
// failure is returned to the caller.
func (c *Client) ExecuteSelectStream(ctx context.Context, q *sparql.SelectQuery, fn func(sparql.Row) error) error {
	body, err := c.post(ctx, "ExecuteSelectStream", q.String())
	if err != nil {
		return err
	}
	defer body.Close()

	return decodeBindings(json.NewDecoder(body), fn)
}

// LoadByIdentifier loads a resource through a SELECT against the endpoint.
func (c *Client) LoadByIdentifier(ctx context.Context, rdfType, uri, lang string) (*sparql.Resource, bool, error) {
	return sparql.LoadByIdentifier(ctx, c, rdfType, uri, lang)
}

func (c *Client) post(ctx context.Context, method, query string) (io.ReadCloser, error) {
	start := time.Now()

	body, err := retry.DoWithResult(ctx, c.retry, func() (io.ReadCloser, error) {
		return c.do(ctx, query)
	})
	if err != nil {
		c.logger.Error("SPARQL query failed", "method", method, "endpoint", c.endpoint, "error", err)
		if errors.IsInvalid(err) {
			return nil, errors.WrapInvalid(err, "httpclient", method, "execute query")
		}
		return nil, errors.WrapTransient(err, "httpclient", method, "execute query")
	}

	c.logger.Debug("SPARQL query sent", "method", method, "duration_ms", time.Since(start).Milliseconds())
	return body, nil
}

func (c *Client) do(ctx context.Context, query string) (io.ReadCloser, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, retry.NonRetryable(errors.WrapInvalid(err, "httpclient", "do", "create request"))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", resultsMediaType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, retry.NonRetryable(ctx.Err())
		}
		return nil, errors.WrapTransient(fmt.Errorf("%w: %v", errors.ErrNoConnection, err),
			"httpclient", "do", "send request")
	}

	if resp.StatusCode == http.StatusOK {
		return resp.Body, nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	resp.Body.Close()

	statusErr := fmt.Errorf("%w: endpoint returned %d: %s", sparql.ErrQueryFailed, resp.StatusCode,
		strings.TrimSpace(string(msg)))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, errors.WrapTransient(statusErr, "httpclient", "do", "query endpoint")
	}
	return nil, retry.NonRetryable(errors.WrapInvalid(statusErr, "httpclient", "do", "query endpoint"))
}
