package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPOption configures an HTTPRunner.
type HTTPOption func(*HTTPRunner)

// WithHTTPClient overrides the HTTP client. The runner clones it so a request
// timeout can be applied without touching the caller's client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(r *HTTPRunner) {
		if client != nil {
			clone := *client
			r.client = &clone
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) HTTPOption {
	return func(r *HTTPRunner) {
		if strings.TrimSpace(key) == "" {
			return
		}
		r.headers.Set(key, value)
	}
}

// WithBearerToken sets the Authorization header.
func WithBearerToken(token string) HTTPOption {
	return func(r *HTTPRunner) {
		if token = strings.TrimSpace(token); token != "" {
			r.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithTimeout caps the duration of a single request.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(r *HTTPRunner) {
		r.timeout = timeout
	}
}

// HTTPRunner posts GraphQL requests as JSON to an endpoint.
type HTTPRunner struct {
	endpoint string
	client   *http.Client
	headers  http.Header
	timeout  time.Duration
}

var _ Runner = (*HTTPRunner)(nil)

// NewHTTPRunner constructs a runner for endpoint.
func NewHTTPRunner(endpoint string, options ...HTTPOption) (*HTTPRunner, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("graphql: endpoint is required")
	}
	r := &HTTPRunner{
		endpoint: endpoint,
		client:   &http.Client{},
		headers:  make(http.Header),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r, nil
}

type response struct {
	Data   map[string]any  `json:"data"`
	Errors []ResponseError `json:"errors"`
}

// Run implements Runner.
func (r *HTTPRunner) Run(ctx context.Context, req Request) (map[string]any, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("graphql: encode request: %w", err)
	}

	reqCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("graphql: request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for key, values := range r.headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("graphql: do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("graphql: read response: %w", err)
	}

	var payload response
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("graphql: unexpected status %s", resp.Status)
		}
		return nil, fmt.Errorf("graphql: decode response: %w", err)
	}
	if len(payload.Errors) > 0 {
		return nil, &Error{Errors: payload.Errors}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("graphql: unexpected status %s", resp.Status)
	}
	return payload.Data, nil
}
