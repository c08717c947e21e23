// Package relationship fetches the records referenced by relationship fields
// and relationship nodes, and defines the hydrated Data shape.
package relationship

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-docblocks/pkg/graphql"
	"github.com/goliatone/go-docblocks/pkg/schema"
)

// Aliases keep the synthetic id/label selections from colliding with fields
// named in a caller-supplied selection.
const (
	labelFieldAlias = "____document_field_relationship_item_label"
	idFieldAlias    = "____document_field_relationship_item_id"
)

// ErrUnknownList is returned when the schema exposes no label field for a list.
var ErrUnknownList = errors.New("relationship: unknown list")

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger used for missing-record diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithQuietMissing suppresses missing-record diagnostics (test mode).
func WithQuietMissing(quiet bool) Option {
	return func(f *Fetcher) {
		f.quietMissing = quiet
	}
}

// WithMetrics records query counts and durations.
func WithMetrics(m *Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// WithTracer overrides the tracer used for fetch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(f *Fetcher) {
		if tracer != nil {
			f.tracer = tracer
		}
	}
}

// Fetcher loads relationship data through a GraphQL schema handle.
type Fetcher struct {
	schema       *graphql.Schema
	logger       zerolog.Logger
	quietMissing bool
	metrics      *Metrics
	tracer       trace.Tracer
}

// NewFetcher returns a Fetcher querying s.
func NewFetcher(s *graphql.Schema, options ...Option) *Fetcher {
	f := &Fetcher{
		schema: s,
		logger: zerolog.Nop(),
		tracer: otel.Tracer("github.com/goliatone/go-docblocks/pkg/relationship"),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// Fetch resolves a relationship field value. Its signature matches
// resolve.FetchFunc.
func (f *Fetcher) Fetch(ctx context.Context, rel *schema.Relationship, current any) (any, error) {
	return f.FetchRelationshipData(ctx, rel.ListKey, rel.Many, rel.Selection, current)
}

// FetchRelationshipData resolves current, a single reference or a sequence of
// references depending on many. Many lookups issue one batched query and return
// []any of Data in input id order, dropping records that were not returned.
func (f *Fetcher) FetchRelationshipData(ctx context.Context, listKey string, many bool, selection string, current any) (any, error) {
	if !many {
		return f.FetchOne(ctx, listKey, selection, current)
	}

	ids := collectIDs(current)
	if len(ids) == 0 {
		return []any{}, nil
	}

	ctx, span := f.tracer.Start(ctx, "relationship.fetch_many", trace.WithAttributes(
		attribute.String("list", listKey),
		attribute.Int("ids", len(ids)),
	))
	defer span.End()

	labelField, err := f.labelField(ctx, listKey)
	if err != nil {
		return nil, fail(span, err)
	}

	query := fmt.Sprintf("query($ids: [ID!]!) {items:%s(where: { id: { in: $ids } }) {%s:id %s:%s\n%s}}",
		f.schema.Names(listKey).ListQueryName, idFieldAlias, labelFieldAlias, labelField, selection)

	started := time.Now()
	data, err := f.schema.Run(ctx, graphql.Request{
		Query:     query,
		Variables: map[string]any{"ids": ids},
	})
	f.metrics.observeQuery(listKey, "many", started)
	if err != nil {
		return nil, fail(span, fmt.Errorf("relationship: fetch %s: %w", listKey, err))
	}

	items, _ := data["items"].([]any)
	found := make(map[string]Data, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id, ok := idString(item[idFieldAlias])
		if !ok {
			continue
		}
		found[id] = toData(id, item)
	}

	out := make([]any, 0, len(found))
	for _, id := range ids {
		if d, ok := found[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// FetchOne resolves a single reference. A value without an id resolves to nil
// without querying. A record that cannot be read resolves to Data with only the
// id set and logs a diagnostic unless quiet mode is on; query errors are
// returned.
func (f *Fetcher) FetchOne(ctx context.Context, listKey, selection string, current any) (any, error) {
	id, ok := IDOf(current)
	if !ok {
		return nil, nil
	}

	ctx, span := f.tracer.Start(ctx, "relationship.fetch_one", trace.WithAttributes(
		attribute.String("list", listKey),
		attribute.String("id", id),
	))
	defer span.End()

	labelField, err := f.labelField(ctx, listKey)
	if err != nil {
		return nil, fail(span, err)
	}

	query := fmt.Sprintf("query($id: ID!) {item:%s(where: {id:$id}) {%s:%s\n%s}}",
		f.schema.Names(listKey).ItemQueryName, labelFieldAlias, labelField, selection)

	started := time.Now()
	data, err := f.schema.Run(ctx, graphql.Request{
		Query:     query,
		Variables: map[string]any{"id": id},
	})
	f.metrics.observeQuery(listKey, "one", started)
	if err != nil {
		return nil, fail(span, fmt.Errorf("relationship: fetch %s %s: %w", listKey, id, err))
	}

	switch item := data["item"].(type) {
	case nil:
		f.metrics.observeMissing(listKey)
		if !f.quietMissing {
			f.logger.Error().
				Str("list", listKey).
				Bool("many", false).
				Str("selection", selection).
				Str("id", id).
				Msg("unable to fetch relationship data")
		}
		return Data{ID: id}, nil
	case map[string]any:
		return toData(id, item), nil
	default:
		return nil, fail(span, fmt.Errorf("relationship: fetch %s %s: unexpected item %T", listKey, id, item))
	}
}

func (f *Fetcher) labelField(ctx context.Context, listKey string) (string, error) {
	fields, err := graphql.LabelFields(ctx, f.schema)
	if err != nil {
		return "", err
	}
	field, ok := fields[listKey]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownList, listKey)
	}
	return field, nil
}

func toData(id string, item map[string]any) Data {
	rest := make(map[string]any, len(item))
	for k, v := range item {
		if k == labelFieldAlias || k == idFieldAlias {
			continue
		}
		rest[k] = v
	}
	d := Data{ID: id, Data: rest}
	switch label := item[labelFieldAlias].(type) {
	case nil:
	case string:
		d.Label = &label
	default:
		s := fmt.Sprint(label)
		d.Label = &s
	}
	return d
}

func collectIDs(current any) []string {
	var items []any
	switch v := current.(type) {
	case []any:
		items = v
	case []Data:
		items = make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
	default:
		return nil
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		id, ok := IDOf(item)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
