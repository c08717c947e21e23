// Package docblocks hydrates stored rich-text documents: relationship nodes and
// component-block props receive the records they reference, fetched through a
// GraphQL endpoint, and the result can be rendered to HTML.
package docblocks

import (
	"context"

	"github.com/goliatone/go-docblocks/pkg/document"
	"github.com/goliatone/go-docblocks/pkg/orchestrator"
	"github.com/goliatone/go-docblocks/pkg/registry"
)

// Node aliases document.Node for callers that only import the root package.
type Node = document.Node

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// HydrateDocument loads the registry at source and hydrates nodes against it.
func HydrateDocument(ctx context.Context, source registry.Source, nodes []Node, options ...orchestrator.Option) ([]Node, error) {
	return orchestrator.New(options...).Hydrate(ctx, Request{Source: source, Document: nodes})
}

// GenerateHTML hydrates nodes and renders them with the built-in templates.
func GenerateHTML(ctx context.Context, source registry.Source, nodes []Node, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, Request{Source: source, Document: nodes})
}

// NewLoader constructs a registry loader.
func NewLoader(options ...registry.LoaderOption) *registry.Loader {
	return registry.NewLoader(options...)
}
