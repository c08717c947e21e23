package schema

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDefinition is wrapped by every decoding failure.
var ErrInvalidDefinition = errors.New("schema: invalid definition")

type definition struct {
	Kind        Kind     `yaml:"kind"`
	Label       string   `yaml:"label"`
	Control     Control  `yaml:"control"`
	Default     any      `yaml:"default"`
	Options     []Option `yaml:"options"`
	ChildKind   string   `yaml:"childKind"`
	Placeholder string   `yaml:"placeholder"`
	ListKey     string   `yaml:"listKey"`
	Many        bool     `yaml:"many"`
	Selection   string   `yaml:"selection"`
}

// Decode parses a JSON or YAML schema definition.
func Decode(data []byte) (ComponentSchema, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return DecodeNode(&node)
}

// DecodeNode decodes a schema definition from a YAML node, keeping mapping order
// for object fields.
func DecodeNode(node *yaml.Node) (ComponentSchema, error) {
	return decodeNode(unwrapDocument(node), "")
}

// DecodeFields decodes a mapping of field name to definition into an object
// schema, the shape used by component registrations.
func DecodeFields(node *yaml.Node) (*Object, error) {
	return decodeFields(unwrapDocument(node), "")
}

func decodeNode(node *yaml.Node, path string) (ComponentSchema, error) {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, invalid(path, "expected a mapping")
	}

	var def definition
	if err := node.Decode(&def); err != nil {
		return nil, invalid(path, err.Error())
	}

	switch def.Kind {
	case KindForm:
		return decodeForm(def, path)
	case KindChild:
		kind := ChildKind(strings.ToLower(strings.TrimSpace(def.ChildKind)))
		switch kind {
		case "":
			kind = ChildBlock
		case ChildBlock, ChildInline:
		default:
			return nil, invalid(path, fmt.Sprintf("unknown childKind %q", def.ChildKind))
		}
		return ChildField(kind, def.Placeholder), nil
	case KindRelationship:
		if strings.TrimSpace(def.ListKey) == "" {
			return nil, invalid(path, "relationship requires listKey")
		}
		return RelationshipField(def.Label, strings.TrimSpace(def.ListKey), def.Many, def.Selection), nil
	case KindObject:
		return decodeFields(mappingValue(node, "fields"), path)
	case KindConditional:
		discNode := mappingValue(node, "discriminant")
		disc, err := decodeNode(discNode, join(path, "discriminant"))
		if err != nil {
			return nil, err
		}
		form, ok := disc.(*Form)
		if !ok {
			return nil, invalid(path, "conditional discriminant must be a form field")
		}
		valuesNode := mappingValue(node, "values")
		if valuesNode == nil || valuesNode.Kind != yaml.MappingNode {
			return nil, invalid(path, "conditional requires values")
		}
		values := make(map[string]ComponentSchema, len(valuesNode.Content)/2)
		for i := 0; i+1 < len(valuesNode.Content); i += 2 {
			key := valuesNode.Content[i].Value
			branch, err := decodeNode(valuesNode.Content[i+1], join(path, key))
			if err != nil {
				return nil, err
			}
			values[key] = branch
		}
		if _, ok := values[DiscriminantKey(form.DefaultValue)]; !ok {
			return nil, invalid(path, fmt.Sprintf("no branch for default discriminant %v", form.DefaultValue))
		}
		return ConditionalField(form, values), nil
	case KindArray:
		element, err := decodeNode(mappingValue(node, "element"), join(path, "element"))
		if err != nil {
			return nil, err
		}
		return ArrayField(def.Label, element), nil
	case "":
		return nil, invalid(path, "missing kind")
	default:
		return nil, invalid(path, fmt.Sprintf("unknown kind %q", def.Kind))
	}
}

func decodeForm(def definition, path string) (*Form, error) {
	switch def.Control {
	case ControlText, "":
		s, _ := def.Default.(string)
		return Text(def.Label, s), nil
	case ControlURL:
		s, _ := def.Default.(string)
		return URL(def.Label, s), nil
	case ControlInteger:
		var n int64
		switch v := def.Default.(type) {
		case int:
			n = int64(v)
		case int64:
			n = v
		case float64:
			n = int64(v)
		}
		return Integer(def.Label, n), nil
	case ControlCheckbox:
		b, _ := def.Default.(bool)
		return Checkbox(def.Label, b), nil
	case ControlSelect:
		if len(def.Options) == 0 {
			return nil, invalid(path, "select requires options")
		}
		defaultValue := def.Options[0].Value
		if s, ok := def.Default.(string); ok && s != "" {
			defaultValue = s
		}
		form := Select(def.Label, def.Options, defaultValue)
		if !form.Validate(defaultValue) {
			return nil, invalid(path, fmt.Sprintf("default %q is not an option", defaultValue))
		}
		return form, nil
	default:
		return nil, invalid(path, fmt.Sprintf("unknown control %q", def.Control))
	}
}

func decodeFields(node *yaml.Node, path string) (*Object, error) {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, invalid(path, "object requires a fields mapping")
	}
	fields := make([]Field, 0, len(node.Content)/2)
	seen := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := strings.TrimSpace(node.Content[i].Value)
		if name == "" {
			return nil, invalid(path, "empty field name")
		}
		if _, dup := seen[name]; dup {
			return nil, invalid(path, fmt.Sprintf("duplicate field %q", name))
		}
		seen[name] = struct{}{}
		s, err := decodeNode(node.Content[i+1], join(path, name))
		if err != nil {
			return nil, err
		}
		fields = append(fields, F(name, s))
	}
	return ObjectField(fields...), nil
}

func unwrapDocument(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	return node
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func join(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}

func invalid(path, msg string) error {
	if path == "" {
		return fmt.Errorf("%w: %s", ErrInvalidDefinition, msg)
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidDefinition, path, msg)
}
