package document_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docblocks/pkg/document"
	"github.com/goliatone/go-docblocks/pkg/registry"
	"github.com/goliatone/go-docblocks/pkg/relationship"
	"github.com/goliatone/go-docblocks/pkg/schema"
)

type call struct {
	ListKey string
	Many    bool
	Current any
}

type stubFetcher struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func label(s string) *string { return &s }

func (f *stubFetcher) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *stubFetcher) FetchOne(_ context.Context, listKey, _ string, current any) (any, error) {
	f.record(call{ListKey: listKey, Current: current})
	if f.err != nil {
		return nil, f.err
	}
	id, ok := relationship.IDOf(current)
	if !ok {
		return nil, nil
	}
	return relationship.Data{ID: id, Label: label(listKey + " " + id), Data: map[string]any{}}, nil
}

func (f *stubFetcher) FetchRelationshipData(ctx context.Context, listKey string, many bool, selection string, current any) (any, error) {
	if !many {
		return f.FetchOne(ctx, listKey, selection, current)
	}
	f.record(call{ListKey: listKey, Many: true, Current: current})
	items, _ := current.([]any)
	out := []any{}
	for _, item := range items {
		if id, ok := relationship.IDOf(item); ok {
			out = append(out, relationship.Data{ID: id, Label: label(listKey + " " + id), Data: map[string]any{}})
		}
	}
	return out, nil
}

func testRegistry(t *testing.T) *registry.Set {
	t.Helper()
	set := registry.NewSet()
	set.Components.MustRegister(registry.ComponentBlock{
		Name: "quote",
		Schema: schema.ObjectField(
			schema.F("content", schema.ChildField(schema.ChildBlock, "")),
			schema.F("attribution", schema.Text("Attribution", "")),
			schema.F("author", schema.RelationshipField("Author", "User", false, "")),
			schema.F("posts", schema.RelationshipField("Posts", "Post", true, "")),
		),
	})
	if err := set.Relationships.Register(registry.RelationshipDef{Name: "mention", ListKey: "User"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	return set
}

func TestHydrate_UnregisteredComponentKeepsProps(t *testing.T) {
	fetcher := &stubFetcher{}
	nodes := []document.Node{
		{"type": "paragraph", "children": []any{
			map[string]any{"text": "hello "},
			map[string]any{"type": "relationship", "relationship": "mention", "data": map[string]any{"id": "7"}, "children": []any{map[string]any{"text": ""}}},
		}},
		{"type": "component-block", "component": "unregistered", "props": map[string]any{"author": map[string]any{"id": "1"}}, "children": []any{
			map[string]any{"type": "relationship", "relationship": "mention", "data": map[string]any{"id": "8"}},
		}},
	}

	set := testRegistry(t)
	got, err := document.Hydrate(context.Background(), nodes, fetcher, set.Relationships, set.Components)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	want := []document.Node{
		{"type": "paragraph", "children": []any{
			map[string]any{"text": "hello "},
			map[string]any{"type": "relationship", "relationship": "mention", "data": relationship.Data{ID: "7", Label: label("User 7"), Data: map[string]any{}}, "children": []any{map[string]any{"text": ""}}},
		}},
		{"type": "component-block", "component": "unregistered", "props": map[string]any{"author": map[string]any{"id": "1"}}, "children": []any{
			map[string]any{"type": "relationship", "relationship": "mention", "data": relationship.Data{ID: "8", Label: label("User 8"), Data: map[string]any{}}},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hydrated tree mismatch (-want +got):\n%s", diff)
	}

	// The input tree is not mutated.
	if _, ok := nodes[0]["children"].([]any)[1].(map[string]any)["data"].(map[string]any); !ok {
		t.Fatalf("input node was mutated")
	}
}

func TestHydrate_RegisteredComponent(t *testing.T) {
	fetcher := &stubFetcher{}
	nodes := []document.Node{{
		"type":      "component-block",
		"component": "quote",
		"props": map[string]any{
			"content":     nil,
			"attribution": "Ada",
			"author":      map[string]any{"id": "42"},
			"posts":       []any{map[string]any{"id": "2"}, map[string]any{"id": "1"}},
		},
		"children": []document.Node{{"type": "component-block-prop", "propPath": []any{"content"}, "children": []any{map[string]any{"text": "quoted"}}}},
	}}

	got, err := document.New(fetcher, document.WithRegistry(testRegistry(t))).Hydrate(context.Background(), nodes)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	wantProps := map[string]any{
		"content":     nil,
		"attribution": "Ada",
		"author":      relationship.Data{ID: "42", Label: label("User 42"), Data: map[string]any{}},
		"posts": []any{
			relationship.Data{ID: "2", Label: label("Post 2"), Data: map[string]any{}},
			relationship.Data{ID: "1", Label: label("Post 1"), Data: map[string]any{}},
		},
	}
	if diff := cmp.Diff(wantProps, got[0]["props"]); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}
	wantChildren := []any{map[string]any{"type": "component-block-prop", "propPath": []any{"content"}, "children": []any{map[string]any{"text": "quoted"}}}}
	if diff := cmp.Diff(wantChildren, got[0]["children"]); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}
	if len(fetcher.calls) != 2 {
		t.Fatalf("expected one single and one many fetch, got %d", len(fetcher.calls))
	}
}

func TestHydrate_UnknownRelationshipPassesThrough(t *testing.T) {
	fetcher := &stubFetcher{}
	node := document.Node{"type": "relationship", "relationship": "gone", "data": map[string]any{"id": "1"}}
	got, err := document.New(fetcher).Hydrate(context.Background(), []document.Node{node})
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if diff := cmp.Diff([]document.Node{node}, got); diff != "" {
		t.Fatalf("node mismatch (-want +got):\n%s", diff)
	}
	if len(fetcher.calls) != 0 {
		t.Fatalf("unknown relationship must not fetch")
	}
}

func TestHydrate_FetchErrorFailsDocument(t *testing.T) {
	boom := errors.New("boom")
	fetcher := &stubFetcher{err: boom}
	nodes := []document.Node{
		{"type": "paragraph", "children": []any{map[string]any{"text": "ok"}}},
		{"type": "relationship", "relationship": "mention", "data": map[string]any{"id": "1"}},
	}
	_, err := document.New(fetcher, document.WithRegistry(testRegistry(t))).Hydrate(context.Background(), nodes)
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestHydrate_RequiresFetcher(t *testing.T) {
	if _, err := document.New(nil).Hydrate(context.Background(), nil); err == nil {
		t.Fatalf("expected error without a fetcher")
	}
}

func TestDecode(t *testing.T) {
	nodes, err := document.Decode(strings.NewReader(`{"document":[{"type":"paragraph","children":[{"text":"a","n":1}]}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	children, ok := nodes[0].Children()
	if !ok || len(children) != 1 || nodes[0].Type() != "paragraph" {
		t.Fatalf("unexpected nodes %#v", nodes)
	}

	if _, err := document.Decode(strings.NewReader(`{"document":"x"}`)); err == nil {
		t.Fatalf("expected error for non-array document")
	}
	if _, err := document.Decode(strings.NewReader(`[1]`)); err == nil {
		t.Fatalf("expected error for non-object node")
	}
}

// gatedFetcher answers like stubFetcher, but only once n fetches are in flight
// together.
type gatedFetcher struct {
	stubFetcher
	arrived sync.WaitGroup
	all     chan struct{}
}

func newGatedFetcher(n int) *gatedFetcher {
	f := &gatedFetcher{all: make(chan struct{})}
	f.arrived.Add(n)
	go func() {
		f.arrived.Wait()
		close(f.all)
	}()
	return f
}

func (f *gatedFetcher) wait() error {
	f.arrived.Done()
	select {
	case <-f.all:
		return nil
	case <-time.After(2 * time.Second):
		return errors.New("fetches were not in flight together")
	}
}

func (f *gatedFetcher) FetchOne(ctx context.Context, listKey, selection string, current any) (any, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	return f.stubFetcher.FetchOne(ctx, listKey, selection, current)
}

func (f *gatedFetcher) FetchRelationshipData(ctx context.Context, listKey string, many bool, selection string, current any) (any, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	return f.stubFetcher.FetchRelationshipData(ctx, listKey, many, selection, current)
}

func TestHydrate_IssuesSiblingFetchesConcurrently(t *testing.T) {
	mention := func(id string) map[string]any {
		return map[string]any{"type": "relationship", "relationship": "mention", "data": map[string]any{"id": id}}
	}
	nodes := []document.Node{
		mention("1"),
		{"type": "paragraph", "children": []any{mention("2"), mention("3")}},
		{"type": "component-block", "component": "quote", "props": map[string]any{
			"content":     nil,
			"attribution": "",
			"author":      map[string]any{"id": "4"},
			"posts":       []any{map[string]any{"id": "5"}},
		}, "children": []any{mention("6")}},
	}

	// Three mentions, the component's two relationship fields and the mention
	// inside the component's children.
	fetcher := newGatedFetcher(6)
	set := testRegistry(t)
	got, err := document.New(fetcher, document.WithRegistry(set)).Hydrate(context.Background(), nodes)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	want := relationship.Data{ID: "3", Label: label("User 3"), Data: map[string]any{}}
	third := got[1]["children"].([]any)[1].(map[string]any)["data"]
	if diff := cmp.Diff(want, third); diff != "" {
		t.Fatalf("nested mention mismatch (-want +got):\n%s", diff)
	}
	posts := got[2]["props"].(map[string]any)["posts"]
	wantPosts := []any{relationship.Data{ID: "5", Label: label("Post 5"), Data: map[string]any{}}}
	if diff := cmp.Diff(wantPosts, posts); diff != "" {
		t.Fatalf("posts mismatch (-want +got):\n%s", diff)
	}
}
