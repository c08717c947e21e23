package schema

import (
	"encoding/json"
	"math"
	"net/url"
	"strings"
)

// Text returns a text form field.
func Text(label string, defaultValue string) *Form {
	return &Form{
		Label:        label,
		Control:      ControlText,
		DefaultValue: defaultValue,
		Validate: func(value any) bool {
			_, ok := value.(string)
			return ok
		},
	}
}

// Integer returns a form field accepting integral numbers.
func Integer(label string, defaultValue int64) *Form {
	return &Form{
		Label:        label,
		Control:      ControlInteger,
		DefaultValue: defaultValue,
		Validate:     isIntegral,
	}
}

// URL returns a form field accepting an empty string or an absolute http(s)
// URL.
func URL(label string, defaultValue string) *Form {
	return &Form{
		Label:        label,
		Control:      ControlURL,
		DefaultValue: defaultValue,
		Validate: func(value any) bool {
			s, ok := value.(string)
			if !ok {
				return false
			}
			if s == "" {
				return true
			}
			u, err := url.Parse(s)
			if err != nil {
				return false
			}
			return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
		},
	}
}

// Checkbox returns a boolean form field.
func Checkbox(label string, defaultValue bool) *Form {
	return &Form{
		Label:        label,
		Control:      ControlCheckbox,
		DefaultValue: defaultValue,
		Validate: func(value any) bool {
			_, ok := value.(bool)
			return ok
		},
	}
}

// Select returns a form field restricted to options. The default value must be
// one of the option values.
func Select(label string, options []Option, defaultValue string) *Form {
	opts := append([]Option(nil), options...)
	return &Form{
		Label:        label,
		Control:      ControlSelect,
		DefaultValue: defaultValue,
		Options:      opts,
		Validate: func(value any) bool {
			s, ok := value.(string)
			if !ok {
				return false
			}
			for _, o := range opts {
				if o.Value == s {
					return true
				}
			}
			return false
		},
	}
}

// ChildField returns a child region schema.
func ChildField(kind ChildKind, placeholder string) *Child {
	return &Child{ChildKind: kind, Placeholder: placeholder}
}

// RelationshipField returns a relationship schema.
func RelationshipField(label, listKey string, many bool, selection string) *Relationship {
	return &Relationship{
		Label:     label,
		ListKey:   listKey,
		Many:      many,
		Selection: strings.TrimSpace(selection),
	}
}

// ObjectField returns an object schema over the given fields, in order.
func ObjectField(fields ...Field) *Object {
	return &Object{Fields: append([]Field(nil), fields...)}
}

// F is shorthand for a Field literal.
func F(name string, s ComponentSchema) Field {
	return Field{Name: name, Schema: s}
}

// ConditionalField returns a conditional schema. Keys of values are the
// DiscriminantKey of each discriminant value ("true"/"false" for checkboxes).
func ConditionalField(discriminant *Form, values map[string]ComponentSchema) *Conditional {
	copied := make(map[string]ComponentSchema, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Conditional{Discriminant: discriminant, Values: copied}
}

// ArrayField returns an array schema.
func ArrayField(label string, element ComponentSchema) *Array {
	return &Array{Label: label, Element: element}
}

func isIntegral(value any) bool {
	switch n := value.(type) {
	case int, int32, int64:
		return true
	case float64:
		return !math.IsInf(n, 0) && !math.IsNaN(n) && n == math.Trunc(n)
	case json.Number:
		_, err := n.Int64()
		return err == nil
	default:
		return false
	}
}
