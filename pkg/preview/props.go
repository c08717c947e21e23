// Package preview projects a component value onto an editable view model.
//
// CreatePreviewProps pairs every node of a schema with the value at that
// position and an OnChange callback. A callback never mutates the value it was
// built from: it copies its parent container, replaces its own slot, and hands
// the copy to the parent's callback, so a single replacement of the whole value
// reaches the root handler. Projections are rebuilt from the current value on
// every read; nothing is cached between reads.
package preview

import (
	"github.com/goliatone/go-docblocks/pkg/schema"
)

// Props is the view model for one schema node. The concrete types are
// *FormProps, *ChildProps, *RelationshipProps, *ObjectProps, *ConditionalProps
// and *ArrayProps.
type Props interface {
	Kind() schema.Kind
	previewProps()
}

// FormProps exposes a leaf form value.
type FormProps struct {
	Schema   *schema.Form
	Value    any
	Options  any
	OnChange func(value any)
}

// ChildProps marks a rich-content sub-region. Path locates it inside the
// component's props.
type ChildProps struct {
	Schema *schema.Child
	Path   []string
}

// RelationshipProps exposes a relationship value; a sequence when the schema
// is many, otherwise a single reference or nil.
type RelationshipProps struct {
	Schema   *schema.Relationship
	Value    any
	OnChange func(value any)
}

// ObjectProps holds the projection of every field, keyed by field name. Use
// Schema.Names for the declaration order.
type ObjectProps struct {
	Schema *schema.Object
	Fields map[string]Props
}

// ConditionalProps exposes the discriminant and the projection of the active
// branch. OnChange takes a new discriminant and resets the branch value to
// the branch default.
type ConditionalProps struct {
	Schema       *schema.Conditional
	Discriminant any
	Options      any
	OnChange     func(discriminant any)
	// Value is nil when the discriminant has no branch.
	Value Props
}

// ArrayProps exposes every element and sequence-level edits. Edits commit a
// new sequence; untouched elements keep their identity and relative order.
type ArrayProps struct {
	Schema   *schema.Array
	Elements []Props

	value    []any
	onChange func(any)
}

func (*FormProps) Kind() schema.Kind         { return schema.KindForm }
func (*ChildProps) Kind() schema.Kind        { return schema.KindChild }
func (*RelationshipProps) Kind() schema.Kind { return schema.KindRelationship }
func (*ObjectProps) Kind() schema.Kind       { return schema.KindObject }
func (*ConditionalProps) Kind() schema.Kind  { return schema.KindConditional }
func (*ArrayProps) Kind() schema.Kind        { return schema.KindArray }

func (*FormProps) previewProps()         {}
func (*ChildProps) previewProps()        {}
func (*RelationshipProps) previewProps() {}
func (*ObjectProps) previewProps()       {}
func (*ConditionalProps) previewProps()  {}
func (*ArrayProps) previewProps()        {}
