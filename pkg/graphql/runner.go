// Package graphql holds the narrow query-execution seam used to hydrate
// relationship data: a Runner executing plain-text GraphQL documents, a Schema
// handle naming list queries, and a label-field lookup memoised per handle.
package graphql

import (
	"context"
	"errors"
	"strings"
)

// ErrNoRunner is returned when a Schema has no Runner configured.
var ErrNoRunner = errors.New("graphql: runner is not configured")

// Request is a GraphQL document plus its variables.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Runner executes a request and returns the response data. Responses carrying
// GraphQL errors must be reported as an error (see Error).
type Runner interface {
	Run(ctx context.Context, req Request) (map[string]any, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, req Request) (map[string]any, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, req Request) (map[string]any, error) {
	return f(ctx, req)
}

// ErrorLocation points at a position inside the query document.
type ErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ResponseError is a single entry of a GraphQL errors array.
type ResponseError struct {
	Message   string          `json:"message"`
	Path      []any           `json:"path,omitempty"`
	Locations []ErrorLocation `json:"locations,omitempty"`
}

// Error wraps the errors array of a GraphQL response.
type Error struct {
	Errors []ResponseError
}

func (e *Error) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return "graphql: request failed"
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		msgs = append(msgs, item.Message)
	}
	return "graphql: " + strings.Join(msgs, "; ")
}
