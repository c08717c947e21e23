package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-docblocks/pkg/relationship"
	"github.com/goliatone/go-docblocks/pkg/schema"
)

const propTemplate = "props/prop.tpl"

// renderProp renders one schema field of a component block as a dt/dd pair.
func (r *Renderer) renderProp(name string, s schema.ComponentSchema, value any) (string, error) {
	view := pongo2.Context{
		"label": name,
		"kind":  string(s.Kind()),
	}

	switch t := s.(type) {
	case *schema.Form:
		if t.Label != "" {
			view["label"] = t.Label
		}
		view["text"] = formText(t, value)

	case *schema.Child:

	case *schema.Relationship:
		if t.Label != "" {
			view["label"] = t.Label
		}
		if t.Many {
			items, _ := value.([]any)
			labels := make([]string, 0, len(items))
			for _, item := range items {
				text, _ := relationshipText(item)
				labels = append(labels, text)
			}
			view["items"] = labels
		} else {
			text, missing := relationshipText(value)
			view["text"] = text
			view["missing"] = missing
		}

	case *schema.Object:
		values, _ := value.(map[string]any)
		nested, err := r.renderFields(t, values)
		if err != nil {
			return "", err
		}
		view["nested"] = nested

	case *schema.Conditional:
		current, _ := value.(map[string]any)
		discriminant := current["discriminant"]
		if t.Discriminant != nil {
			if t.Discriminant.Label != "" {
				view["label"] = t.Discriminant.Label
			}
			view["text"] = formText(t.Discriminant, discriminant)
		}
		if branch, ok := t.Branch(discriminant); ok {
			nested, err := r.renderBranch(branch, current["value"])
			if err != nil {
				return "", err
			}
			view["nested"] = nested
		}

	case *schema.Array:
		if t.Label != "" {
			view["label"] = t.Label
		}
		elements, _ := value.([]any)
		items := make([]string, len(elements))
		for i, el := range elements {
			html, err := r.renderBranch(t.Element, el)
			if err != nil {
				return "", err
			}
			items[i] = "<dl>" + html + "</dl>"
		}
		view["items"] = items

	default:
		schema.Unreachable(s)
	}

	return r.engine.render(propTemplate, view)
}

func (r *Renderer) renderFields(obj *schema.Object, values map[string]any) (string, error) {
	var b strings.Builder
	for _, f := range obj.Fields {
		html, err := r.renderProp(f.Name, f.Schema, values[f.Name])
		if err != nil {
			return "", err
		}
		b.WriteString(html)
	}
	return b.String(), nil
}

// renderBranch flattens object values into their fields; anything else is
// rendered as a single entry.
func (r *Renderer) renderBranch(s schema.ComponentSchema, value any) (string, error) {
	if obj, ok := s.(*schema.Object); ok {
		values, _ := value.(map[string]any)
		return r.renderFields(obj, values)
	}
	return r.renderProp("value", s, value)
}

func formText(f *schema.Form, value any) string {
	switch f.Control {
	case schema.ControlCheckbox:
		if on, _ := value.(bool); on {
			return "Yes"
		}
		return "No"
	case schema.ControlSelect:
		key := schema.DiscriminantKey(value)
		options, _ := f.Options.([]schema.Option)
		for _, o := range options {
			if o.Value == key {
				return o.Label
			}
		}
		return key
	}
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

// relationshipText returns the display label of a relationship value, falling
// back to its id when the record is missing or was never hydrated.
func relationshipText(v any) (string, bool) {
	switch t := v.(type) {
	case relationship.Data:
		if t.Label != nil {
			return *t.Label, false
		}
		return t.ID, t.Missing()
	case *relationship.Data:
		if t == nil {
			return "", false
		}
		return relationshipText(*t)
	case map[string]any:
		if label, ok := t["label"].(string); ok {
			return label, false
		}
		id, _ := relationship.IDOf(t)
		_, hasData := t["data"]
		return id, !hasData
	}
	return "", false
}
