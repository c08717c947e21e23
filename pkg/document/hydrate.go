package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-docblocks/pkg/registry"
	"github.com/goliatone/go-docblocks/pkg/resolve"
	"github.com/goliatone/go-docblocks/pkg/schema"
)

// Fetcher is the relationship fetch primitive used during hydration.
// *relationship.Fetcher implements it.
type Fetcher interface {
	FetchOne(ctx context.Context, listKey, selection string, current any) (any, error)
	FetchRelationshipData(ctx context.Context, listKey string, many bool, selection string, current any) (any, error)
}

// Option configures a Hydrator.
type Option func(*Hydrator)

// WithComponents sets the component registry.
func WithComponents(components *registry.Components) Option {
	return func(h *Hydrator) {
		h.components = components
	}
}

// WithRelationships sets the relationship registry.
func WithRelationships(relationships *registry.Relationships) Option {
	return func(h *Hydrator) {
		h.relationships = relationships
	}
}

// WithRegistry sets both registries from a loaded Set.
func WithRegistry(set *registry.Set) Option {
	return func(h *Hydrator) {
		if set == nil {
			return
		}
		h.components = set.Components
		h.relationships = set.Relationships
	}
}

// WithLogger sets the logger used for unknown-definition debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Hydrator) {
		h.logger = logger
	}
}

// WithTracer overrides the tracer used for hydration spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(h *Hydrator) {
		if tracer != nil {
			h.tracer = tracer
		}
	}
}

// Hydrator attaches relationship data to a document tree.
type Hydrator struct {
	fetcher       Fetcher
	components    *registry.Components
	relationships *registry.Relationships
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// New constructs a Hydrator. Registries default to empty, so every node passes
// through with only its children walked.
func New(fetcher Fetcher, options ...Option) *Hydrator {
	h := &Hydrator{
		fetcher: fetcher,
		logger:  zerolog.Nop(),
		tracer:  otel.Tracer("github.com/goliatone/go-docblocks/pkg/document"),
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Hydrate is a convenience wrapper around New(...).Hydrate.
func Hydrate(ctx context.Context, nodes []Node, fetcher Fetcher, relationships *registry.Relationships, components *registry.Components) ([]Node, error) {
	return New(fetcher, WithRelationships(relationships), WithComponents(components)).Hydrate(ctx, nodes)
}

// Hydrate returns a copy of nodes in which relationship nodes carry fetched
// data and registered component blocks carry resolved props. Siblings are
// processed concurrently; output order matches input order. The first error
// fails the whole call.
func (h *Hydrator) Hydrate(ctx context.Context, nodes []Node) ([]Node, error) {
	if h.fetcher == nil {
		return nil, errors.New("document: fetcher is required")
	}

	ctx, span := h.tracer.Start(ctx, "document.hydrate", trace.WithAttributes(
		attribute.Int("nodes", len(nodes)),
	))
	defer span.End()

	out := make([]Node, len(nodes))
	var g errgroup.Group
	for i, node := range nodes {
		g.Go(func() error {
			hydrated, err := h.hydrateNode(ctx, node)
			if err != nil {
				return err
			}
			out[i] = hydrated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

func (h *Hydrator) hydrateChildren(ctx context.Context, children []any) ([]any, error) {
	out := make([]any, len(children))
	var g errgroup.Group
	for i, child := range children {
		node, ok := asNode(child)
		if !ok {
			out[i] = child
			continue
		}
		g.Go(func() error {
			hydrated, err := h.hydrateNode(ctx, node)
			if err != nil {
				return err
			}
			out[i] = map[string]any(hydrated)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *Hydrator) hydrateNode(ctx context.Context, node Node) (Node, error) {
	switch node.Type() {
	case TypeRelationship:
		name, _ := node["relationship"].(string)
		def, ok := h.relationships.Get(name)
		if !ok {
			h.logger.Debug().Str("relationship", name).Msg("unknown relationship, passing node through")
			return node, nil
		}
		data, err := h.fetcher.FetchOne(ctx, def.ListKey, def.Selection, node["data"])
		if err != nil {
			return nil, fmt.Errorf("document: relationship %q: %w", name, err)
		}
		out := node.clone()
		out["data"] = data
		return out, nil

	case TypeComponentBlock:
		name, _ := node["component"].(string)
		block, ok := h.components.Get(name)
		if !ok {
			h.logger.Debug().Str("component", name).Msg("unknown component, hydrating children only")
			break
		}
		return h.hydrateComponent(ctx, node, block)
	}

	children, ok := node.Children()
	if !ok {
		return node, nil
	}
	hydrated, err := h.hydrateChildren(ctx, children)
	if err != nil {
		return nil, err
	}
	out := node.clone()
	out["children"] = hydrated
	return out, nil
}

func (h *Hydrator) hydrateComponent(ctx context.Context, node Node, block registry.ComponentBlock) (Node, error) {
	children, hasChildren := node.Children()

	var (
		props    any
		hydrated []any
		g        errgroup.Group
	)
	g.Go(func() error {
		var err error
		props, err = resolve.ResolveComponentProps(ctx, block.Schema, node["props"], h.fetchField)
		if err != nil {
			return fmt.Errorf("document: component %q props: %w", block.Name, err)
		}
		return nil
	})
	if hasChildren {
		g.Go(func() error {
			var err error
			hydrated, err = h.hydrateChildren(ctx, children)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := node.clone()
	out["props"] = props
	if hasChildren {
		out["children"] = hydrated
	}
	return out, nil
}

func (h *Hydrator) fetchField(ctx context.Context, rel *schema.Relationship, current any) (any, error) {
	return h.fetcher.FetchRelationshipData(ctx, rel.ListKey, rel.Many, rel.Selection, current)
}
