package schema

import "fmt"

// Kind identifies a component schema variant.
type Kind string

const (
	KindForm         Kind = "form"
	KindChild        Kind = "child"
	KindRelationship Kind = "relationship"
	KindObject       Kind = "object"
	KindConditional  Kind = "conditional"
	KindArray        Kind = "array"
)

// ComponentSchema is implemented by *Form, *Child, *Relationship, *Object,
// *Conditional and *Array. The interface is sealed so type switches over it are
// exhaustive.
type ComponentSchema interface {
	Kind() Kind
	componentSchema()
}

// Control selects the editing widget for a form field.
type Control string

const (
	ControlText     Control = "text"
	ControlInteger  Control = "integer"
	ControlURL      Control = "url"
	ControlCheckbox Control = "checkbox"
	ControlSelect   Control = "select"
)

// Option is a single choice exposed by select controls.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Form is a leaf holding an arbitrary serialisable value. Options is a fixed
// metadata blob surfaced verbatim through preview props ([]Option for selects,
// nil otherwise).
type Form struct {
	Label        string
	Control      Control
	DefaultValue any
	Options      any
	// Validate reports whether a value is acceptable. Nil accepts everything.
	Validate func(value any) bool
}

// ChildKind distinguishes block and inline child regions.
type ChildKind string

const (
	ChildBlock  ChildKind = "block"
	ChildInline ChildKind = "inline"
)

// Child is an editable rich-content sub-region. Its value passes through
// untouched; the editing surface owns its content.
type Child struct {
	ChildKind   ChildKind
	Placeholder string
}

// Relationship references records of another list.
type Relationship struct {
	Label     string
	ListKey   string
	Many      bool
	Selection string
}

// Field is a named entry of an Object schema.
type Field struct {
	Name   string
	Schema ComponentSchema
}

// Object maps field names to nested schemas. Field order is significant for
// rendering and is preserved by every traversal.
type Object struct {
	Fields []Field
}

// Conditional selects one nested schema based on the value of a discriminant
// form. Values is keyed by DiscriminantKey of each possible discriminant value.
type Conditional struct {
	Discriminant *Form
	Values       map[string]ComponentSchema
}

// Array applies Element to every entry of a sequence.
type Array struct {
	Label   string
	Element ComponentSchema
}

func (*Form) Kind() Kind         { return KindForm }
func (*Child) Kind() Kind        { return KindChild }
func (*Relationship) Kind() Kind { return KindRelationship }
func (*Object) Kind() Kind       { return KindObject }
func (*Conditional) Kind() Kind  { return KindConditional }
func (*Array) Kind() Kind        { return KindArray }

func (*Form) componentSchema()         {}
func (*Child) componentSchema()        {}
func (*Relationship) componentSchema() {}
func (*Object) componentSchema()       {}
func (*Conditional) componentSchema()  {}
func (*Array) componentSchema()        {}

// Field returns the schema registered under name.
func (o *Object) Field(name string) (ComponentSchema, bool) {
	if o == nil {
		return nil, false
	}
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Schema, true
		}
	}
	return nil, false
}

// Names returns field names in declaration order.
func (o *Object) Names() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		out[i] = f.Name
	}
	return out
}

// Branch returns the schema selected by discriminant.
func (c *Conditional) Branch(discriminant any) (ComponentSchema, bool) {
	if c == nil {
		return nil, false
	}
	s, ok := c.Values[DiscriminantKey(discriminant)]
	return s, ok && s != nil
}

// Unreachable panics. Traversals call it from the default arm of a type switch
// over ComponentSchema; reaching it means a nil or foreign schema slipped into
// a tree, which is a programming error.
func Unreachable(s ComponentSchema) any {
	panic(fmt.Sprintf("schema: unreachable component schema %T", s))
}
