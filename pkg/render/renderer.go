// Package render turns hydrated documents into HTML. Every node type maps to
// a pongo2 template under nodes/, component blocks to components/<name>.tpl
// (falling back to components/default.tpl), and each component field to
// props/prop.tpl. Callers can shadow any template through WithTemplatesFS or
// WithBaseDir. The final markup always passes through a bluemonday policy.
package render

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-docblocks/pkg/document"
	"github.com/goliatone/go-docblocks/pkg/registry"
	"github.com/goliatone/go-docblocks/pkg/relationship"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithComponents supplies the component blocks used to render props.
func WithComponents(components *registry.Components) Option {
	return func(r *Renderer) {
		r.components = components
	}
}

// WithTemplatesFS adds a template source that shadows the embedded defaults.
// Later calls take precedence over earlier ones.
func WithTemplatesFS(fsys fs.FS) Option {
	return func(r *Renderer) {
		if fsys != nil {
			r.overrides = append([]fs.FS{fsys}, r.overrides...)
		}
	}
}

// WithBaseDir is WithTemplatesFS over a directory on disk.
func WithBaseDir(dir string) Option {
	return func(r *Renderer) {
		if dir != "" {
			r.overrides = append([]fs.FS{os.DirFS(dir)}, r.overrides...)
		}
	}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// Renderer renders documents to HTML.
type Renderer struct {
	components *registry.Components
	overrides  []fs.FS
	logger     zerolog.Logger
	engine     *engine
}

// New builds a Renderer.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{logger: zerolog.Nop()}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	eng, err := newEngine(r.overrides)
	if err != nil {
		return nil, err
	}
	r.engine = eng
	return r, nil
}

// RenderDocument renders the top level nodes of a document.
func (r *Renderer) RenderDocument(nodes []document.Node) ([]byte, error) {
	var b strings.Builder
	for i, node := range nodes {
		html, err := r.renderNode(node)
		if err != nil {
			return nil, fmt.Errorf("render: node %d: %w", i, err)
		}
		b.WriteString(html)
	}
	return []byte(contentPolicy().Sanitize(b.String())), nil
}

func (r *Renderer) renderChildren(node document.Node) (string, error) {
	children, ok := node.Children()
	if !ok {
		return "", nil
	}
	var b strings.Builder
	for _, child := range children {
		n, ok := asNode(child)
		if !ok {
			continue
		}
		html, err := r.renderNode(n)
		if err != nil {
			return "", err
		}
		b.WriteString(html)
	}
	return b.String(), nil
}

func (r *Renderer) renderNode(node document.Node) (string, error) {
	typ := node.Type()
	if typ == "" {
		if _, isText := node["text"]; isText {
			return r.engine.render("nodes/text.tpl", pongo2.Context(node))
		}
	}

	children, err := r.renderChildren(node)
	if err != nil {
		return "", err
	}

	switch typ {
	case document.TypeRelationship:
		return r.renderRelationship(node)
	case document.TypeComponentBlock:
		return r.renderComponent(node, children)
	}

	data, err := nodeContext(node)
	if err != nil {
		return "", err
	}
	data["children"] = children

	switch typ {
	case "heading":
		data["level"] = headingLevel(node["level"])
	case "link":
		data["href"] = safeHref(node["href"])
	}

	name := "nodes/" + typ + ".tpl"
	if typ == "" || !r.engine.has(name) {
		r.logger.Debug().Str("type", typ).Msg("no node template, using default")
		name = "nodes/default.tpl"
	}
	return r.engine.render(name, data)
}

func (r *Renderer) renderRelationship(node document.Node) (string, error) {
	name, _ := node["relationship"].(string)
	id, _ := relationship.IDOf(node["data"])
	label, missing := relationshipText(node["data"])
	if missing {
		label = ""
	}
	return r.engine.render("nodes/relationship.tpl", pongo2.Context{
		"relationship": name,
		"id":           id,
		"label":        label,
		"missing":      missing,
	})
}

func (r *Renderer) renderComponent(node document.Node, children string) (string, error) {
	name, _ := node["component"].(string)
	block, ok := r.components.Get(name)
	if !ok {
		r.logger.Debug().Str("component", name).Msg("unknown component, rendering children only")
		return r.engine.render("nodes/default.tpl", pongo2.Context{"children": children})
	}

	props, _ := node["props"].(map[string]any)
	fields := make([]string, 0, len(block.Schema.Fields))
	byName := make(map[string]string, len(block.Schema.Fields))
	for _, f := range block.Schema.Fields {
		html, err := r.renderProp(f.Name, f.Schema, props[f.Name])
		if err != nil {
			return "", fmt.Errorf("component %q field %q: %w", name, f.Name, err)
		}
		fields = append(fields, html)
		byName[f.Name] = html
	}

	values, err := jsonToAny(props)
	if err != nil {
		return "", fmt.Errorf("component %q: %w", name, err)
	}

	tpl := "components/" + name + ".tpl"
	if !r.engine.has(tpl) {
		tpl = "components/default.tpl"
	}
	return r.engine.render(tpl, pongo2.Context{
		"component": name,
		"label":     block.Label,
		"fields":    fields,
		"field":     byName,
		"values":    values,
		"children":  children,
	})
}

func nodeContext(node document.Node) (pongo2.Context, error) {
	flat := make(map[string]any, len(node))
	for k, v := range node {
		if k != "children" {
			flat[k] = v
		}
	}
	return jsonToContext(flat)
}

func asNode(v any) (document.Node, bool) {
	switch t := v.(type) {
	case document.Node:
		return t, true
	case map[string]any:
		return document.Node(t), true
	}
	return nil, false
}

func headingLevel(v any) int {
	var level int
	switch t := v.(type) {
	case int:
		level = t
	case int64:
		level = int(t)
	case float64:
		level = int(t)
	case fmt.Stringer:
		fmt.Sscan(t.String(), &level)
	}
	return min(max(level, 1), 6)
}

func safeHref(v any) string {
	raw, _ := v.(string)
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return u.String()
	}
	return ""
}
