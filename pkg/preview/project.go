package preview

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-docblocks/pkg/schema"
)

// CreatePreviewProps returns a projector for s. onChange receives the full
// replacement value whenever any nested OnChange fires.
func CreatePreviewProps(s schema.ComponentSchema, onChange func(value any)) func(value any) Props {
	if onChange == nil {
		onChange = func(any) {}
	}
	return func(value any) Props {
		return project(s, value, onChange, nil)
	}
}

func project(s schema.ComponentSchema, value any, onChange func(any), path []string) Props {
	switch s := s.(type) {
	case *schema.Form:
		return &FormProps{Schema: s, Value: value, Options: s.Options, OnChange: onChange}

	case *schema.Child:
		return &ChildProps{Schema: s, Path: append([]string(nil), path...)}

	case *schema.Relationship:
		return &RelationshipProps{Schema: s, Value: value, OnChange: onChange}

	case *schema.Object:
		current, _ := value.(map[string]any)
		fields := make(map[string]Props, len(s.Fields))
		for _, f := range s.Fields {
			name := f.Name
			fields[name] = project(f.Schema, current[name], func(next any) {
				copied := make(map[string]any, len(current)+1)
				for k, v := range current {
					copied[k] = v
				}
				copied[name] = next
				onChange(copied)
			}, with(path, name))
		}
		return &ObjectProps{Schema: s, Fields: fields}

	case *schema.Conditional:
		discriminant, inner, ok := schema.ConditionalParts(value)
		if !ok || value == nil {
			discriminant, inner, _ = schema.ConditionalParts(schema.DefaultValue(s))
		}
		props := &ConditionalProps{
			Schema:       s,
			Discriminant: discriminant,
			OnChange: func(next any) {
				if schema.DiscriminantKey(next) == schema.DiscriminantKey(discriminant) {
					return
				}
				branch, ok := s.Branch(next)
				if !ok {
					return
				}
				onChange(map[string]any{
					"discriminant": next,
					"value":        schema.DefaultValue(branch),
				})
			},
		}
		if s.Discriminant != nil {
			props.Options = s.Discriminant.Options
		}
		if branch, ok := s.Branch(discriminant); ok {
			props.Value = project(branch, inner, func(next any) {
				onChange(map[string]any{
					"discriminant": discriminant,
					"value":        next,
				})
			}, with(path, "value"))
		}
		return props

	case *schema.Array:
		current, _ := value.([]any)
		elements := make([]Props, len(current))
		for i, item := range current {
			elements[i] = project(s.Element, item, func(next any) {
				copied := append([]any(nil), current...)
				copied[i] = next
				onChange(copied)
			}, with(path, strconv.Itoa(i)))
		}
		return &ArrayProps{Schema: s, Elements: elements, value: current, onChange: onChange}

	default:
		schema.Unreachable(s)
		return nil
	}
}

// Len returns the number of elements.
func (a *ArrayProps) Len() int { return len(a.value) }

// Value returns the current sequence. It must not be modified.
func (a *ArrayProps) Value() []any { return a.value }

// Insert commits a sequence with value placed at index. A nil value inserts the
// element schema's default.
func (a *ArrayProps) Insert(index int, value any) error {
	if index < 0 || index > len(a.value) {
		return fmt.Errorf("preview: insert index %d out of range [0,%d]", index, len(a.value))
	}
	if value == nil {
		value = schema.DefaultValue(a.Schema.Element)
	}
	next := make([]any, 0, len(a.value)+1)
	next = append(next, a.value[:index]...)
	next = append(next, value)
	next = append(next, a.value[index:]...)
	a.onChange(next)
	return nil
}

// Append inserts value at the end.
func (a *ArrayProps) Append(value any) {
	_ = a.Insert(len(a.value), value)
}

// Remove commits a sequence without the element at index.
func (a *ArrayProps) Remove(index int) error {
	if index < 0 || index >= len(a.value) {
		return fmt.Errorf("preview: remove index %d out of range [0,%d)", index, len(a.value))
	}
	next := make([]any, 0, len(a.value)-1)
	next = append(next, a.value[:index]...)
	next = append(next, a.value[index+1:]...)
	a.onChange(next)
	return nil
}

// Move commits a sequence with the element at from relocated to to.
func (a *ArrayProps) Move(from, to int) error {
	n := len(a.value)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("preview: move %d->%d out of range [0,%d)", from, to, n)
	}
	if from == to {
		return nil
	}
	next := append([]any(nil), a.value...)
	item := next[from]
	copy(next[from:], next[from+1:])
	next = next[:n-1]
	next = append(next[:to], append([]any{item}, next[to:]...)...)
	a.onChange(next)
	return nil
}

// Set commits values as the whole sequence.
func (a *ArrayProps) Set(values []any) {
	a.onChange(append([]any{}, values...))
}

// At walks props along path: field names through objects, "value" into a
// conditional's active branch, and decimal indexes into arrays.
func At(p Props, path ...string) (Props, bool) {
	for _, segment := range path {
		switch t := p.(type) {
		case *ObjectProps:
			next, ok := t.Fields[segment]
			if !ok {
				return nil, false
			}
			p = next
		case *ConditionalProps:
			if segment != "value" || t.Value == nil {
				return nil, false
			}
			p = t.Value
		case *ArrayProps:
			i, err := strconv.Atoi(segment)
			if err != nil || i < 0 || i >= len(t.Elements) {
				return nil, false
			}
			p = t.Elements[i]
		default:
			return nil, false
		}
	}
	return p, p != nil
}

func with(path []string, segment string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = segment
	return out
}
