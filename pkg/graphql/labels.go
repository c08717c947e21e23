package graphql

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"weak"
)

const labelFieldsQuery = `query {
  keystone {
    adminMeta {
      lists {
        key
        labelField
      }
    }
  }
}`

// LabelFields returns the label field name of every list exposed by s, keyed by
// list key. The introspection query runs at most once per live Schema handle;
// concurrent callers wait for the in-flight query. Failed lookups are not
// cached. The returned map is shared and must not be modified.
func LabelFields(ctx context.Context, s *Schema) (map[string]string, error) {
	return labels.get(ctx, s)
}

type labelEntry struct {
	done   chan struct{}
	fields map[string]string
	err    error
}

// labelCache is keyed by weak pointers so entries disappear with their Schema.
type labelCache struct {
	mu      sync.Mutex
	entries map[weak.Pointer[Schema]]*labelEntry
}

var labels = &labelCache{entries: make(map[weak.Pointer[Schema]]*labelEntry)}

func (c *labelCache) get(ctx context.Context, s *Schema) (map[string]string, error) {
	if s == nil {
		return nil, ErrNoRunner
	}
	key := weak.Make(s)

	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		entry = &labelEntry{done: make(chan struct{})}
		c.entries[key] = entry
		runtime.AddCleanup(s, c.evict, key)
		// Detached from ctx: every waiter shares the result.
		go c.fill(context.WithoutCancel(ctx), key, entry, s)
	}
	c.mu.Unlock()

	select {
	case <-entry.done:
		return entry.fields, entry.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *labelCache) fill(ctx context.Context, key weak.Pointer[Schema], entry *labelEntry, s *Schema) {
	entry.fields, entry.err = introspectLabelFields(ctx, s)
	if entry.err != nil {
		c.mu.Lock()
		if c.entries[key] == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	close(entry.done)
}

func (c *labelCache) evict(key weak.Pointer[Schema]) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *labelCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func introspectLabelFields(ctx context.Context, s *Schema) (map[string]string, error) {
	data, err := s.Run(ctx, Request{Query: labelFieldsQuery})
	if err != nil {
		return nil, fmt.Errorf("graphql: introspect label fields: %w", err)
	}

	keystone, _ := data["keystone"].(map[string]any)
	adminMeta, _ := keystone["adminMeta"].(map[string]any)
	lists, ok := adminMeta["lists"].([]any)
	if !ok {
		return nil, fmt.Errorf("graphql: introspect label fields: missing keystone.adminMeta.lists")
	}

	out := make(map[string]string, len(lists))
	for _, raw := range lists {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		key, _ := item["key"].(string)
		labelField, _ := item["labelField"].(string)
		if key == "" || labelField == "" {
			continue
		}
		out[key] = labelField
	}
	return out, nil
}
