package preview

import "github.com/goliatone/go-docblocks/pkg/schema"

// Valid reports whether every reachable form value passes its validator. Only
// the active branch of a conditional is checked.
func Valid(s schema.ComponentSchema, value any) bool {
	switch s := s.(type) {
	case *schema.Form:
		return s.Validate == nil || s.Validate(value)
	case *schema.Child, *schema.Relationship:
		return true
	case *schema.Object:
		fields, _ := value.(map[string]any)
		for _, f := range s.Fields {
			if !Valid(f.Schema, fields[f.Name]) {
				return false
			}
		}
		return true
	case *schema.Conditional:
		discriminant, inner, ok := schema.ConditionalParts(value)
		if !ok {
			return false
		}
		if s.Discriminant != nil && !Valid(s.Discriminant, discriminant) {
			return false
		}
		branch, ok := s.Branch(discriminant)
		return ok && Valid(branch, inner)
	case *schema.Array:
		items, _ := value.([]any)
		for _, item := range items {
			if !Valid(s.Element, item) {
				return false
			}
		}
		return true
	default:
		schema.Unreachable(s)
		return false
	}
}
