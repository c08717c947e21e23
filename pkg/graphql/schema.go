package graphql

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gertd/go-pluralize"
)

// Names are the root query fields generated for a list.
type Names struct {
	ItemQueryName string
	ListQueryName string
}

// SchemaOption configures a Schema.
type SchemaOption func(*Schema)

// WithNames overrides the query names of listKey.
func WithNames(listKey string, names Names) SchemaOption {
	return func(s *Schema) {
		s.names[listKey] = names
	}
}

// Schema is a handle on one GraphQL API instance. Per-schema derived data, such
// as the label field of every list, is cached by handle identity, so callers
// should create one handle per API and reuse it.
type Schema struct {
	runner Runner
	names  map[string]Names
}

// NewSchema returns a handle executing queries through runner.
func NewSchema(runner Runner, options ...SchemaOption) *Schema {
	s := &Schema{
		runner: runner,
		names:  make(map[string]Names),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Run executes req against the schema's runner.
func (s *Schema) Run(ctx context.Context, req Request) (map[string]any, error) {
	if s == nil || s.runner == nil {
		return nil, ErrNoRunner
	}
	return s.runner.Run(ctx, req)
}

// Names returns the query names for listKey: the lower-camel list key for the
// item query and its plural for the list query, unless overridden.
func (s *Schema) Names(listKey string) Names {
	if s != nil {
		if n, ok := s.names[listKey]; ok {
			return n
		}
	}
	return DefaultNames(listKey)
}

var plural = pluralize.NewClient()

// DefaultNames derives query names from a list key ("BlogPost" -> "blogPost",
// "blogPosts").
func DefaultNames(listKey string) Names {
	item := lowerFirst(strings.TrimSpace(listKey))
	list := plural.Plural(item)
	if list == item {
		list = "all" + upperFirst(item)
	}
	return Names{ItemQueryName: item, ListQueryName: list}
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
