package schema

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
)

// ToOpenAPI describes the stored (unresolved) value shape of s as an OpenAPI
// schema. Child regions accept anything because their content lives in the
// document tree, not in props.
func ToOpenAPI(s ComponentSchema) *openapi3.Schema {
	switch s := s.(type) {
	case *Form:
		return formSchema(s)
	case *Child:
		out := &openapi3.Schema{Nullable: true}
		out.Description = "child region (" + string(s.ChildKind) + ")"
		return out
	case *Relationship:
		item := openapi3.NewObjectSchema().
			WithProperty("id", openapi3.NewStringSchema()).
			WithProperty("label", openapi3.NewStringSchema().WithNullable()).
			WithProperty("data", openapi3.NewObjectSchema().WithNullable())
		item.Required = []string{"id"}
		if s.Many {
			out := openapi3.NewArraySchema().WithItems(item)
			out.Description = "relationship to " + s.ListKey
			return out
		}
		item.Nullable = true
		item.Description = "relationship to " + s.ListKey
		return item
	case *Object:
		out := openapi3.NewObjectSchema().WithoutAdditionalProperties()
		for _, f := range s.Fields {
			out.WithProperty(f.Name, ToOpenAPI(f.Schema))
			if f.Schema.Kind() != KindChild {
				out.Required = append(out.Required, f.Name)
			}
		}
		return out
	case *Conditional:
		keys := make([]string, 0, len(s.Values))
		for k := range s.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		branches := make([]*openapi3.Schema, 0, len(keys))
		for _, key := range keys {
			branch := openapi3.NewObjectSchema().
				WithProperty("discriminant", discriminantSchema(s.Discriminant, key)).
				WithProperty("value", ToOpenAPI(s.Values[key]))
			branch.Required = []string{"discriminant"}
			branches = append(branches, branch)
		}
		return openapi3.NewOneOfSchema(branches...)
	case *Array:
		out := openapi3.NewArraySchema().WithItems(ToOpenAPI(s.Element))
		out.Title = s.Label
		return out
	default:
		return Unreachable(s).(*openapi3.Schema)
	}
}

// ValidateValue checks a stored value against the OpenAPI rendition of s.
func ValidateValue(s ComponentSchema, value any) error {
	if err := ToOpenAPI(s).VisitJSON(value); err != nil {
		return fmt.Errorf("schema: value does not match: %w", err)
	}
	return nil
}

func formSchema(f *Form) *openapi3.Schema {
	var out *openapi3.Schema
	switch f.Control {
	case ControlInteger:
		out = openapi3.NewIntegerSchema()
	case ControlCheckbox:
		out = openapi3.NewBoolSchema()
	case ControlSelect:
		out = openapi3.NewStringSchema()
		if opts, ok := f.Options.([]Option); ok {
			values := make([]any, len(opts))
			for i, o := range opts {
				values[i] = o.Value
			}
			out.WithEnum(values...)
		}
	case ControlText, ControlURL:
		out = openapi3.NewStringSchema()
	default:
		out = &openapi3.Schema{}
	}
	out.Title = f.Label
	if f.DefaultValue != nil {
		out.Default = f.DefaultValue
	}
	return out
}

func discriminantSchema(f *Form, key string) *openapi3.Schema {
	if f != nil && f.Control == ControlCheckbox {
		if b, err := strconv.ParseBool(key); err == nil {
			return openapi3.NewBoolSchema().WithEnum(b)
		}
	}
	return openapi3.NewStringSchema().WithEnum(key)
}
