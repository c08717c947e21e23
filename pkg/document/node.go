// Package document walks a stored document tree and attaches relationship data
// to relationship nodes and component-block props, producing a new tree.
package document

import (
	"encoding/json"
	"fmt"
	"io"
)

// Node types with hydration behaviour.
const (
	TypeRelationship   = "relationship"
	TypeComponentBlock = "component-block"
)

// Node is a document tree node as decoded from JSON. Hydration never mutates a
// Node; it returns copies.
type Node map[string]any

// Type returns the node's "type" field.
func (n Node) Type() string {
	t, _ := n["type"].(string)
	return t
}

// Children returns the node's children and whether the node has a children
// sequence at all.
func (n Node) Children() ([]any, bool) {
	switch c := n["children"].(type) {
	case []any:
		return c, true
	case []Node:
		out := make([]any, len(c))
		for i := range c {
			out[i] = c[i]
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(c))
		for i := range c {
			out[i] = c[i]
		}
		return out, true
	default:
		return nil, false
	}
}

func (n Node) clone() Node {
	out := make(Node, len(n))
	for k, v := range n {
		out[k] = v
	}
	return out
}

func asNode(v any) (Node, bool) {
	switch n := v.(type) {
	case Node:
		return n, true
	case map[string]any:
		return Node(n), true
	default:
		return nil, false
	}
}

// Decode reads a JSON document: either an array of nodes or an object with a
// "document" array. Numbers are kept as json.Number.
func Decode(r io.Reader) ([]Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("document: decode: %w", err)
	}
	if obj, ok := raw.(map[string]any); ok {
		raw = obj["document"]
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("document: decode: expected an array of nodes, got %T", raw)
	}
	nodes := make([]Node, len(items))
	for i, item := range items {
		node, ok := asNode(item)
		if !ok {
			return nil, fmt.Errorf("document: decode: node %d is %T, not an object", i, item)
		}
		nodes[i] = node
	}
	return nodes, nil
}
