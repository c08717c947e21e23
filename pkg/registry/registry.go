// Package registry holds the named component-block and relationship
// definitions a document may reference, and loads them from JSON or YAML files.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-docblocks/pkg/schema"
)

// ErrDuplicate is returned when a name is registered twice.
var ErrDuplicate = errors.New("registry: duplicate definition")

// ComponentBlock is a registered component. Its props are described by an
// object schema.
type ComponentBlock struct {
	Name   string
	Label  string
	Schema *schema.Object
}

// RelationshipDef describes a named inline relationship node.
type RelationshipDef struct {
	Name      string
	Label     string
	ListKey   string
	Many      bool
	Selection string
}

// Components stores component blocks by name.
type Components struct {
	mu     sync.RWMutex
	blocks map[string]ComponentBlock
}

// NewComponents creates a registry holding blocks.
func NewComponents(blocks ...ComponentBlock) (*Components, error) {
	c := &Components{blocks: make(map[string]ComponentBlock, len(blocks))}
	for _, block := range blocks {
		if err := c.Register(block); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds a component block. Duplicate names return ErrDuplicate.
func (c *Components) Register(block ComponentBlock) error {
	name := strings.TrimSpace(block.Name)
	if name == "" {
		return fmt.Errorf("registry: component name is required")
	}
	if block.Schema == nil {
		return fmt.Errorf("registry: component %q has no schema", name)
	}
	block.Name = name

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.blocks == nil {
		c.blocks = make(map[string]ComponentBlock)
	}
	if _, exists := c.blocks[name]; exists {
		return fmt.Errorf("%w: component %q", ErrDuplicate, name)
	}
	c.blocks[name] = block
	return nil
}

// MustRegister panics on registration failure.
func (c *Components) MustRegister(block ComponentBlock) {
	if err := c.Register(block); err != nil {
		panic(err)
	}
}

// Get looks up a component block. A nil registry holds nothing.
func (c *Components) Get(name string) (ComponentBlock, bool) {
	if c == nil {
		return ComponentBlock{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	block, ok := c.blocks[name]
	return block, ok
}

// Names returns the sorted component names.
func (c *Components) Names() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.blocks)
}

// Relationships stores relationship definitions by name.
type Relationships struct {
	mu   sync.RWMutex
	defs map[string]RelationshipDef
}

// NewRelationships creates a registry holding defs.
func NewRelationships(defs ...RelationshipDef) (*Relationships, error) {
	r := &Relationships{defs: make(map[string]RelationshipDef, len(defs))}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a relationship definition. Duplicate names return ErrDuplicate.
func (r *Relationships) Register(def RelationshipDef) error {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return fmt.Errorf("registry: relationship name is required")
	}
	if strings.TrimSpace(def.ListKey) == "" {
		return fmt.Errorf("registry: relationship %q has no listKey", name)
	}
	def.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.defs == nil {
		r.defs = make(map[string]RelationshipDef)
	}
	if _, exists := r.defs[name]; exists {
		return fmt.Errorf("%w: relationship %q", ErrDuplicate, name)
	}
	r.defs[name] = def
	return nil
}

// Get looks up a relationship definition. A nil registry holds nothing.
func (r *Relationships) Get(name string) (RelationshipDef, bool) {
	if r == nil {
		return RelationshipDef{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Names returns the sorted relationship names.
func (r *Relationships) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.defs)
}

// Set bundles the two registries a document is hydrated against.
type Set struct {
	Components    *Components
	Relationships *Relationships
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{
		Components:    &Components{blocks: make(map[string]ComponentBlock)},
		Relationships: &Relationships{defs: make(map[string]RelationshipDef)},
	}
}

// Merge registers every definition of other into s.
func (s *Set) Merge(other *Set) error {
	if other == nil {
		return nil
	}
	for _, name := range other.Components.Names() {
		block, _ := other.Components.Get(name)
		if err := s.Components.Register(block); err != nil {
			return err
		}
	}
	for _, name := range other.Relationships.Names() {
		def, _ := other.Relationships.Get(name)
		if err := s.Relationships.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
