package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates
var embedded embed.FS

// engine wraps a pongo2 template set whose loaders are consulted in order, so
// caller templates shadow the embedded defaults.
type engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	sources   []fs.FS
	templates map[string]*pongo2.Template
}

func newEngine(overrides []fs.FS) (*engine, error) {
	defaults, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("render: embedded templates: %w", err)
	}
	sources := append(append([]fs.FS(nil), overrides...), defaults)

	loaders := make([]pongo2.TemplateLoader, len(sources))
	for i, src := range sources {
		loaders[i] = pongo2.NewFSLoader(src)
	}

	registerFilters()
	return &engine{
		set:       pongo2.NewSet("docblocks", loaders...),
		sources:   sources,
		templates: make(map[string]*pongo2.Template),
	}, nil
}

// has reports whether any source provides name.
func (e *engine) has(name string) bool {
	for _, src := range e.sources {
		if _, err := fs.Stat(src, name); err == nil {
			return true
		}
	}
	return false
}

func (e *engine) render(name string, data pongo2.Context) (string, error) {
	tmpl, err := e.template(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(data, &buf); err != nil {
		return "", fmt.Errorf("render: execute template %q: %w", name, err)
	}
	return buf.String(), nil
}

func (e *engine) template(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[name]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("render: load template %q: %w", name, err)
	}
	e.templates[name] = tmpl
	return tmpl, nil
}

var filtersOnce sync.Once

func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("strip") {
			_ = pongo2.RegisterFilter("strip", filterStrip)
		}
		if !pongo2.FilterExists("sanitize") {
			_ = pongo2.RegisterFilter("sanitize", filterSanitize)
		}
	})
}

// filterStrip removes all markup; the output is already entity-escaped.
func filterStrip(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(stripPolicy().Sanitize(in.String())), nil
}

// filterSanitize keeps inline user markup allowed by the content policy.
func filterSanitize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(contentPolicy().Sanitize(in.String())), nil
}

func jsonToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func jsonToContext(v any) (pongo2.Context, error) {
	out, err := jsonToAny(v)
	if err != nil {
		return nil, err
	}
	m, ok := out.(map[string]any)
	if !ok {
		return nil, errors.New("render: template data is not an object")
	}
	return pongo2.Context(m), nil
}

// TemplatesFS returns the embedded default templates rooted at the template
// names used by the renderer (nodes/, components/, props/).
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return embedded
	}
	return sub
}
