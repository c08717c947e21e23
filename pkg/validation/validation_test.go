package validation_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docblocks/pkg/document"
	"github.com/goliatone/go-docblocks/pkg/registry"
	"github.com/goliatone/go-docblocks/pkg/schema"
	"github.com/goliatone/go-docblocks/pkg/validation"
)

func components(t *testing.T) *registry.Components {
	t.Helper()
	c, err := registry.NewComponents(registry.ComponentBlock{
		Name: "quote",
		Schema: schema.ObjectField(
			schema.F("attribution", schema.Text("Attribution", "")),
			schema.F("tone", schema.Select("Tone", []schema.Option{{Label: "Calm", Value: "calm"}, {Label: "Loud", Value: "loud"}}, "calm")),
			schema.F("count", schema.Integer("Count", 0)),
			schema.F("author", schema.RelationshipField("Author", "User", false, "")),
			schema.F("body", schema.ChildField(schema.ChildBlock, "")),
		),
	})
	if err != nil {
		t.Fatalf("components: %v", err)
	}
	return c
}

func TestValidateDocument_Valid(t *testing.T) {
	nodes := []document.Node{
		{"type": "paragraph", "children": []any{map[string]any{"text": "hi"}}},
		{"type": "component-block", "component": "quote", "props": map[string]any{
			"attribution": "Ada",
			"tone":        "loud",
			"count":       int64(3),
			"author":      map[string]any{"id": "1"},
			"body":        nil,
		}},
	}

	result := validation.ValidateDocument(components(t), nodes)
	if !result.Valid || result.Err() != nil {
		t.Fatalf("expected valid document, got %+v", result.Issues)
	}
}

func TestValidateDocument_ReportsFieldsAndNestedNodes(t *testing.T) {
	nodes := []document.Node{
		{"type": "layout", "children": []any{
			map[string]any{"type": "component-block", "component": "quote", "props": map[string]any{
				"attribution": 5,
				"tone":        "shouty",
				"count":       1.5,
				"author":      map[string]any{"id": "1"},
			}},
		}},
		{"type": "component-block", "component": "unknown", "props": map[string]any{"anything": true}},
	}

	result := validation.ValidateDocument(components(t), nodes)
	if result.Valid {
		t.Fatal("expected invalid document")
	}

	seen := map[string]bool{}
	for _, issue := range result.Issues {
		if issue.Node != "0.children.0" || issue.Component != "quote" {
			t.Fatalf("unexpected issue location: %+v", issue)
		}
		if issue.Message == "" {
			t.Fatalf("issue without message: %+v", issue)
		}
		seen[issue.Field] = true
	}
	fields := make([]string, 0, len(seen))
	for field := range seen {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	if diff := cmp.Diff([]string{"attribution", "count", "tone"}, fields); diff != "" {
		t.Fatalf("issue fields mismatch (-want +got):\n%s", diff)
	}

	if err := result.Err(); err == nil || !strings.Contains(err.Error(), `0.children.0 component "quote" field tone`) {
		t.Fatalf("unexpected joined error: %v", err)
	}
}

func TestValidateProps_UnknownProperty(t *testing.T) {
	s := schema.ObjectField(schema.F("title", schema.Text("Title", "")))

	issues := validation.ValidateProps(s, map[string]any{"title": "x", "extra": 1})
	if len(issues) == 0 {
		t.Fatal("expected an issue for the undeclared property")
	}
}
