package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-docblocks/pkg/document"
	"github.com/goliatone/go-docblocks/pkg/graphql"
	"github.com/goliatone/go-docblocks/pkg/registry"
	"github.com/goliatone/go-docblocks/pkg/relationship"
	"github.com/goliatone/go-docblocks/pkg/render"
	"github.com/goliatone/go-docblocks/pkg/validation"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry seeds the component and relationship definitions.
func WithRegistry(set *registry.Set) Option {
	return func(o *Orchestrator) {
		o.registry = set
	}
}

// WithLoader injects the loader used for Request.Source.
func WithLoader(loader *registry.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithFetcher injects the relationship fetcher. It takes precedence over
// WithGraphQLEndpoint.
func WithFetcher(fetcher document.Fetcher) Option {
	return func(o *Orchestrator) {
		o.fetcher = fetcher
	}
}

// WithGraphQLEndpoint builds the default fetcher over an HTTP GraphQL runner.
func WithGraphQLEndpoint(endpoint string, options ...graphql.HTTPOption) Option {
	return func(o *Orchestrator) {
		o.endpoint = endpoint
		o.httpOptions = append(o.httpOptions, options...)
	}
}

// WithFetcherOptions configures the default fetcher.
func WithFetcherOptions(options ...relationship.Option) Option {
	return func(o *Orchestrator) {
		o.fetcherOptions = append(o.fetcherOptions, options...)
	}
}

// WithRenderOptions configures the HTML renderer. Components are always taken
// from the orchestrator registry.
func WithRenderOptions(options ...render.Option) Option {
	return func(o *Orchestrator) {
		o.renderOptions = append(o.renderOptions, options...)
	}
}

// WithHydratorOptions configures the document hydrator.
func WithHydratorOptions(options ...document.Option) Option {
	return func(o *Orchestrator) {
		o.hydratorOptions = append(o.hydratorOptions, options...)
	}
}

// WithLogger sets the logger used by the orchestrator and the components it
// builds.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator coordinates the pipeline from a stored document to hydrated
// nodes and rendered HTML.
type Orchestrator struct {
	registry        *registry.Set
	loader          *registry.Loader
	fetcher         document.Fetcher
	endpoint        string
	httpOptions     []graphql.HTTPOption
	fetcherOptions  []relationship.Option
	renderOptions   []render.Option
	hydratorOptions []document.Option
	logger          zerolog.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{logger: zerolog.Nop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Registry returns the definitions the orchestrator hydrates against.
func (o *Orchestrator) Registry() *registry.Set {
	return o.registry
}

// Request describes one document run.
type Request struct {
	// Source names extra registry definitions merged into the configured
	// registry for this request only.
	Source registry.Source

	// Document holds the stored nodes.
	Document []document.Node
}

// Hydrate loads the request registry and attaches relationship data to the
// document.
func (o *Orchestrator) Hydrate(ctx context.Context, req Request) ([]document.Node, error) {
	set, err := o.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return o.hydrate(ctx, set, req.Document)
}

// Generate hydrates the document and renders it to HTML.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	set, err := o.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	nodes, err := o.hydrate(ctx, set, req.Document)
	if err != nil {
		return nil, err
	}
	return o.Render(set, nodes)
}

func (o *Orchestrator) prepare(ctx context.Context, req Request) (*registry.Set, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if o.fetcher == nil {
		return nil, errors.New("orchestrator: fetcher is required, configure WithFetcher or WithGraphQLEndpoint")
	}
	return o.resolveRegistry(ctx, req)
}

func (o *Orchestrator) hydrate(ctx context.Context, set *registry.Set, nodes []document.Node) ([]document.Node, error) {
	options := append([]document.Option{document.WithRegistry(set), document.WithLogger(o.logger)}, o.hydratorOptions...)
	out, err := document.New(o.fetcher, options...).Hydrate(ctx, nodes)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: hydrate document: %w", err)
	}
	return out, nil
}

// Render renders already hydrated nodes against set.
func (o *Orchestrator) Render(set *registry.Set, nodes []document.Node) ([]byte, error) {
	if set == nil {
		set = o.registry
	}
	options := append([]render.Option{render.WithLogger(o.logger)}, o.renderOptions...)
	options = append(options, render.WithComponents(set.Components))
	renderer, err := render.New(options...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer: %w", err)
	}
	output, err := renderer.RenderDocument(nodes)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Validate checks the stored props of every registered component block in the
// request document. The error reports registry problems only; invalid props
// are described by the result.
func (o *Orchestrator) Validate(ctx context.Context, req Request) (validation.Result, error) {
	set, err := o.resolveRegistry(ctx, req)
	if err != nil {
		return validation.Result{}, err
	}
	return validation.ValidateDocument(set.Components, req.Document), nil
}

func (o *Orchestrator) resolveRegistry(ctx context.Context, req Request) (*registry.Set, error) {
	if req.Source == nil {
		return o.registry, nil
	}
	extra, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load registry: %w", err)
	}
	merged := registry.NewSet()
	if err := merged.Merge(o.registry); err != nil {
		return nil, fmt.Errorf("orchestrator: merge registry: %w", err)
	}
	if err := merged.Merge(extra); err != nil {
		return nil, fmt.Errorf("orchestrator: merge registry: %w", err)
	}
	return merged, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.registry == nil {
		o.registry = registry.NewSet()
	}
	if o.loader == nil {
		o.loader = registry.NewLoader()
	}
	if o.fetcher != nil || o.endpoint == "" {
		return
	}

	runner, err := graphql.NewHTTPRunner(o.endpoint, o.httpOptions...)
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: graphql runner: %w", err)
		return
	}
	options := append([]relationship.Option{relationship.WithLogger(o.logger)}, o.fetcherOptions...)
	o.fetcher = relationship.NewFetcher(graphql.NewSchema(runner), options...)
}
