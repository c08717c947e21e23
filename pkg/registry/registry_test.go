package registry_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docblocks/pkg/registry"
	"github.com/goliatone/go-docblocks/pkg/schema"
)

func TestComponents_RegisterAndGet(t *testing.T) {
	components, err := registry.NewComponents(registry.ComponentBlock{
		Name:   "quote",
		Schema: schema.ObjectField(schema.F("text", schema.Text("Text", ""))),
	})
	if err != nil {
		t.Fatalf("new components: %v", err)
	}

	if _, ok := components.Get("quote"); !ok {
		t.Fatalf("expected quote to be registered")
	}
	if _, ok := components.Get("missing"); ok {
		t.Fatalf("unexpected component")
	}

	err = components.Register(registry.ComponentBlock{Name: "quote", Schema: schema.ObjectField()})
	if !errors.Is(err, registry.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := components.Register(registry.ComponentBlock{Name: "bare"}); err == nil {
		t.Fatalf("expected error for component without schema")
	}
}

func TestNilRegistriesAreEmpty(t *testing.T) {
	var components *registry.Components
	var relationships *registry.Relationships
	if _, ok := components.Get("x"); ok {
		t.Fatalf("nil components returned a block")
	}
	if _, ok := relationships.Get("x"); ok {
		t.Fatalf("nil relationships returned a definition")
	}
	if components.Names() != nil || relationships.Names() != nil {
		t.Fatalf("nil registries must list nothing")
	}
}

func TestRelationships_RequireListKey(t *testing.T) {
	if _, err := registry.NewRelationships(registry.RelationshipDef{Name: "mention"}); err == nil {
		t.Fatalf("expected error for relationship without listKey")
	}
}

func TestLoaderLoadFile(t *testing.T) {
	set, err := registry.NewLoader().Load(context.Background(), registry.SourceFromFile(filepath.Join("testdata", "registry.yaml")))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if diff := cmp.Diff([]string{"hero", "quote"}, set.Components.Names()); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}

	mention, ok := set.Relationships.Get("mention")
	if !ok {
		t.Fatalf("mention relationship missing")
	}
	want := registry.RelationshipDef{Name: "mention", Label: "Mention", ListKey: "User", Selection: "email"}
	if diff := cmp.Diff(want, mention); diff != "" {
		t.Fatalf("relationship mismatch (-want +got):\n%s", diff)
	}

	quote, _ := set.Components.Get("quote")
	if diff := cmp.Diff([]string{"content", "attribution", "author"}, quote.Schema.Names()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	author, _ := quote.Schema.Field("author")
	rel, ok := author.(*schema.Relationship)
	if !ok || rel.ListKey != "User" || rel.Many || rel.Selection != "name" {
		t.Fatalf("unexpected author schema %#v", author)
	}

	hero, _ := set.Components.Get("hero")
	cta, _ := hero.Schema.Field("cta")
	cond, ok := cta.(*schema.Conditional)
	if !ok {
		t.Fatalf("expected conditional cta, got %T", cta)
	}
	if _, ok := cond.Branch(true); !ok {
		t.Fatalf("expected a true branch")
	}
	wantDefault := map[string]any{"discriminant": false, "value": ""}
	if diff := cmp.Diff(wantDefault, schema.DefaultValue(cta)); diff != "" {
		t.Fatalf("cta default mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFS_MergesFiles(t *testing.T) {
	set, err := registry.LoadFS(os.DirFS(filepath.Join("testdata", "split")))
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if diff := cmp.Diff([]string{"notice"}, set.Components.Names()); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}
	post, ok := set.Relationships.Get("post")
	if !ok || post.Label != "post" || post.Selection != "slug" {
		t.Fatalf("unexpected post relationship %#v", post)
	}
	notice, _ := set.Components.Get("notice")
	if notice.Label != "notice" {
		t.Fatalf("label should default to the name, got %q", notice.Label)
	}
}

func TestLoadFS_DuplicateAcrossFiles(t *testing.T) {
	doc := []byte("relationships:\n  mention: { listKey: User }\n")
	fsys := fstest.MapFS{
		"a.yaml": {Data: doc},
		"b.yml":  {Data: doc},
	}
	_, err := registry.LoadFS(fsys)
	if !errors.Is(err, registry.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"empty":           "   ",
		"unknown section": "widgets: {}\n",
		"missing schema":  "components:\n  quote: { label: Quote }\n",
		"bad kind":        "components:\n  quote:\n    schema:\n      a: { kind: nope }\n",
		"not a mapping":   "- a\n- b\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := registry.Parse([]byte(doc), name); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoaderLoadURL(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "registry.yaml"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/registry.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	defer server.Close()

	set, err := registry.LoadPath(context.Background(), server.URL+"/registry.yaml")
	if err != nil {
		t.Fatalf("load url: %v", err)
	}
	if _, ok := set.Components.Get("quote"); !ok {
		t.Fatalf("expected quote from URL source")
	}

	src, err := registry.SourceFromURL(server.URL + "/missing.yaml")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if _, err := registry.NewLoader().Load(context.Background(), src); err == nil {
		t.Fatalf("expected http disabled error")
	}
	if _, err := registry.NewLoader(registry.WithHTTPClient(server.Client())).Load(context.Background(), src); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestLoadPath(t *testing.T) {
	set, err := registry.LoadPath(context.Background(), filepath.Join("testdata", "split"))
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if _, ok := set.Components.Get("notice"); !ok {
		t.Fatalf("expected notice from directory")
	}

	empty, err := registry.LoadPath(context.Background(), "")
	if err != nil || len(empty.Components.Names()) != 0 {
		t.Fatalf("empty path should yield an empty set, got %v", err)
	}
}
