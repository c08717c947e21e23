package render_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-docblocks/pkg/document"
	"github.com/goliatone/go-docblocks/pkg/registry"
	"github.com/goliatone/go-docblocks/pkg/relationship"
	"github.com/goliatone/go-docblocks/pkg/render"
	"github.com/goliatone/go-docblocks/pkg/schema"
)

func label(s string) *string { return &s }

func quoteComponents(t *testing.T) *registry.Components {
	t.Helper()
	components, err := registry.NewComponents(registry.ComponentBlock{
		Name:  "quote",
		Label: "Quote",
		Schema: schema.ObjectField(
			schema.F("attribution", schema.Text("Attribution", "")),
			schema.F("author", schema.RelationshipField("Author", "User", false, "")),
			schema.F("tone", schema.Select("Tone", []schema.Option{{Label: "Calm", Value: "calm"}, {Label: "Loud", Value: "loud"}}, "calm")),
			schema.F("tags", schema.ArrayField("Tags", schema.Text("Tag", ""))),
			schema.F("body", schema.ChildField(schema.ChildBlock, "")),
		),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return components
}

func quoteNode() document.Node {
	return document.Node{
		"type":      document.TypeComponentBlock,
		"component": "quote",
		"props": map[string]any{
			"attribution": "Ada & co",
			"author":      relationship.Data{ID: "1", Label: label("Ada Lovelace"), Data: map[string]any{}},
			"tone":        "loud",
			"tags":        []any{"math", "engines"},
			"body":        nil,
		},
		"children": []any{
			map[string]any{"type": "component-block-prop", "propPath": []any{"body"}, "children": []any{
				map[string]any{"type": "paragraph", "children": []any{map[string]any{"text": "Quoted"}}},
			}},
		},
	}
}

func renderString(t *testing.T, r *render.Renderer, nodes ...document.Node) string {
	t.Helper()
	out, err := r.RenderDocument(nodes)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, html string, parts ...string) {
	t.Helper()
	for _, part := range parts {
		if !strings.Contains(html, part) {
			t.Errorf("expected output to contain %q\n%s", part, html)
		}
	}
}

func TestRenderDocument_TextMarksAndEscaping(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	html := renderString(t, r, document.Node{
		"type": "paragraph",
		"children": []any{
			map[string]any{"text": "plain "},
			map[string]any{"text": "loud", "bold": true, "italic": true},
			map[string]any{"text": "<script>alert(1)</script>"},
		},
	})

	assertContains(t, html, "<p>plain <strong><em>loud</em></strong>", "&lt;script&gt;")
	if strings.Contains(html, "<script>") {
		t.Fatalf("script tag leaked into output: %s", html)
	}
}

func TestRenderDocument_HeadingAndLink(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	html := renderString(t, r,
		document.Node{"type": "heading", "level": 9, "children": []any{map[string]any{"text": "Title"}}},
		document.Node{"type": "paragraph", "children": []any{
			map[string]any{"type": "link", "href": "https://example.com/a", "children": []any{map[string]any{"text": "ok"}}},
			map[string]any{"type": "link", "href": "javascript:alert(1)", "children": []any{map[string]any{"text": "bad"}}},
		}},
	)

	assertContains(t, html, "<h6>Title</h6>", `href="https://example.com/a"`, "bad")
	if strings.Contains(html, "javascript") {
		t.Fatalf("unsafe href leaked into output: %s", html)
	}
}

func TestRenderDocument_Relationships(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	html := renderString(t, r, document.Node{
		"type": "paragraph",
		"children": []any{
			map[string]any{"type": "relationship", "relationship": "mention", "data": relationship.Data{ID: "7", Label: label("Grace"), Data: map[string]any{}}},
			map[string]any{"type": "relationship", "relationship": "mention", "data": relationship.Data{ID: "404"}},
		},
	})

	assertContains(t, html,
		`data-relationship="mention" data-id="7">Grace</span>`,
		`data-id="404">404</span>`,
	)
}

func TestRenderDocument_DefaultComponentTemplate(t *testing.T) {
	r, err := render.New(render.WithComponents(quoteComponents(t)))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	html := renderString(t, r, quoteNode())

	assertContains(t, html,
		`data-component="quote"`,
		"<header>Quote</header>",
		"<dt>Attribution</dt>",
		"Ada &amp; co",
		`<dt>Author</dt><dd data-kind="relationship">Ada Lovelace</dd>`,
		"Loud",
		"<dt>Tags</dt>",
		"math",
		`data-prop-path="body"`,
		"<p>Quoted</p>",
	)
}

func TestRenderDocument_ComponentTemplateOverride(t *testing.T) {
	overrides := fstest.MapFS{
		"components/quote.tpl": {Data: []byte(`<div class="quote">{{ values.attribution }}|{{ field.author|safe }}</div>`)},
	}
	r, err := render.New(render.WithComponents(quoteComponents(t)), render.WithTemplatesFS(overrides))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	html := renderString(t, r, quoteNode())

	assertContains(t, html, `<div class="quote">Ada &amp; co|<dt>Author</dt>`, "Ada Lovelace")
	if strings.Contains(html, "<header>") {
		t.Fatalf("default component template used despite override: %s", html)
	}
}

func TestRenderDocument_UnknownComponentRendersChildren(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	html := renderString(t, r, document.Node{
		"type":      document.TypeComponentBlock,
		"component": "unregistered",
		"props":     map[string]any{"a": "b"},
		"children":  []any{map[string]any{"type": "paragraph", "children": []any{map[string]any{"text": "inside"}}}},
	})

	if html != "<p>inside</p>" {
		t.Fatalf("unexpected output: %q", html)
	}
}

func TestRenderDocument_NodeTemplateOverride(t *testing.T) {
	overrides := fstest.MapFS{
		"nodes/callout.tpl": {Data: []byte(`<div class="callout">{{ children|safe }}</div>`)},
	}
	r, err := render.New(render.WithTemplatesFS(overrides))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	html := renderString(t, r,
		document.Node{"type": "callout", "children": []any{map[string]any{"text": "note"}}},
		document.Node{"type": "mystery", "children": []any{map[string]any{"text": "falls back"}}},
	)

	if html != `<div class="callout">note</div>falls back` {
		t.Fatalf("unexpected output: %q", html)
	}
}
