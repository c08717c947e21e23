package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DiscriminantKey converts a discriminant value into the key used by
// Conditional.Values. Booleans map to "true"/"false", strings map to
// themselves.
func DiscriminantKey(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// DefaultValue returns the initial value for a schema: the form default, nil for
// child regions and single relationships, an empty sequence for many
// relationships and arrays, per-field defaults for objects and the default
// discriminant plus its branch default for conditionals.
func DefaultValue(s ComponentSchema) any {
	switch s := s.(type) {
	case *Form:
		return s.DefaultValue
	case *Child:
		return nil
	case *Relationship:
		if s.Many {
			return []any{}
		}
		return nil
	case *Object:
		out := make(map[string]any, len(s.Fields))
		for _, f := range s.Fields {
			out[f.Name] = DefaultValue(f.Schema)
		}
		return out
	case *Conditional:
		var discriminant any
		if s.Discriminant != nil {
			discriminant = s.Discriminant.DefaultValue
		}
		var value any
		if branch, ok := s.Branch(discriminant); ok {
			value = DefaultValue(branch)
		}
		return map[string]any{
			"discriminant": discriminant,
			"value":        value,
		}
	case *Array:
		return []any{}
	default:
		return Unreachable(s)
	}
}

// ConditionalParts splits a stored conditional value into its discriminant and
// branch value. A nil value yields nil parts.
func ConditionalParts(v any) (discriminant any, value any, ok bool) {
	switch t := v.(type) {
	case nil:
		return nil, nil, true
	case map[string]any:
		return t["discriminant"], t["value"], true
	default:
		return nil, nil, false
	}
}
