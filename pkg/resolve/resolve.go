// Package resolve replaces relationship references inside component props with
// fetched records. Sibling fields and array elements are resolved concurrently
// and reassembled in schema order once every branch has finished.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-docblocks/pkg/schema"
)

var (
	// ErrValueShape is returned when a value does not match its schema.
	ErrValueShape = errors.New("resolve: value does not match schema")
	// ErrUnknownDiscriminant is returned when a conditional value names a
	// discriminant that has no branch.
	ErrUnknownDiscriminant = errors.New("resolve: unknown discriminant")
)

// FetchFunc resolves the current value of a relationship field. Its result is
// used verbatim.
type FetchFunc func(ctx context.Context, rel *schema.Relationship, current any) (any, error)

// ResolveComponentProps walks value according to s and returns a new value with
// every relationship replaced by the result of fetch. Form and child values are
// returned unchanged, only the active branch of a conditional is visited, and
// the first fetch error fails the whole subtree.
func ResolveComponentProps(ctx context.Context, s schema.ComponentSchema, value any, fetch FetchFunc) (any, error) {
	if fetch == nil {
		return nil, errors.New("resolve: fetch function is required")
	}
	return resolve(ctx, s, value, fetch, "")
}

func resolve(ctx context.Context, s schema.ComponentSchema, value any, fetch FetchFunc, path string) (any, error) {
	switch s := s.(type) {
	case *schema.Form, *schema.Child:
		return value, nil

	case *schema.Relationship:
		return fetch(ctx, s, value)

	case *schema.Object:
		var fields map[string]any
		switch v := value.(type) {
		case nil:
		case map[string]any:
			fields = v
		default:
			return nil, shapeError(path, "object", value)
		}

		results := make([]any, len(s.Fields))
		var g errgroup.Group
		for i, f := range s.Fields {
			g.Go(func() error {
				out, err := resolve(ctx, f.Schema, fields[f.Name], fetch, join(path, f.Name))
				if err != nil {
					return err
				}
				results[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		out := make(map[string]any, len(s.Fields))
		for i, f := range s.Fields {
			out[f.Name] = results[i]
		}
		return out, nil

	case *schema.Conditional:
		discriminant, inner, ok := schema.ConditionalParts(value)
		if !ok {
			return nil, shapeError(path, "conditional", value)
		}
		branch, ok := s.Branch(discriminant)
		if !ok {
			return nil, fmt.Errorf("%w: %v at %q", ErrUnknownDiscriminant, discriminant, path)
		}
		resolved, err := resolve(ctx, branch, inner, fetch, join(path, "value"))
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"discriminant": discriminant,
			"value":        resolved,
		}, nil

	case *schema.Array:
		var items []any
		switch v := value.(type) {
		case nil:
		case []any:
			items = v
		default:
			return nil, shapeError(path, "array", value)
		}

		out := make([]any, len(items))
		var g errgroup.Group
		for i, item := range items {
			g.Go(func() error {
				resolved, err := resolve(ctx, s.Element, item, fetch, fmt.Sprintf("%s[%d]", path, i))
				if err != nil {
					return err
				}
				out[i] = resolved
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil

	default:
		return schema.Unreachable(s), nil
	}
}

func shapeError(path, want string, got any) error {
	return fmt.Errorf("%w: expected %s at %q, got %T", ErrValueShape, want, path, got)
}

func join(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}
