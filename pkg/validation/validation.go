// Package validation checks the stored props of component blocks in a document
// against the OpenAPI rendition of their schemas and reports every problem
// with its location.
package validation

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-docblocks/pkg/document"
	"github.com/goliatone/go-docblocks/pkg/registry"
	"github.com/goliatone/go-docblocks/pkg/schema"
)

// Issue is a single validation problem.
type Issue struct {
	// Node is the dotted index path of the component block in the document,
	// e.g. "2.children.0".
	Node      string `json:"node"`
	Component string `json:"component"`
	// Field is the dotted path inside the props, empty for the props root.
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(i.Node)
	b.WriteString(" component ")
	b.WriteString(strconv.Quote(i.Component))
	if i.Field != "" {
		b.WriteString(" field ")
		b.WriteString(i.Field)
	}
	b.WriteString(": ")
	b.WriteString(i.Message)
	return b.String()
}

// Result captures validation outcomes for a document.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Err returns nil for a valid result and otherwise joins every issue.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	errs := make([]error, len(r.Issues))
	for i, issue := range r.Issues {
		errs[i] = errors.New(issue.String())
	}
	return errors.Join(errs...)
}

// ValidateDocument validates every component block registered in components.
// Blocks naming unknown components are skipped.
func ValidateDocument(components *registry.Components, nodes []document.Node) Result {
	result := Result{Valid: true}
	walk(nodes, nil, func(path []string, node document.Node) {
		name, _ := node["component"].(string)
		block, ok := components.Get(name)
		if !ok {
			return
		}
		for _, issue := range ValidateProps(block.Schema, node["props"]) {
			issue.Node = strings.Join(path, ".")
			issue.Component = name
			result.Issues = append(result.Issues, issue)
		}
	})
	result.Valid = len(result.Issues) == 0
	return result
}

// ValidateProps validates a single props value. Node and Component are left
// empty on the returned issues.
func ValidateProps(s schema.ComponentSchema, props any) []Issue {
	// The OpenAPI validator compares plain numbers, not json.Number.
	raw, err := json.Marshal(props)
	if err != nil {
		return []Issue{{Message: err.Error()}}
	}
	var plain any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return []Issue{{Message: err.Error()}}
	}

	err = schema.ToOpenAPI(s).VisitJSON(plain, openapi3.MultiErrors())
	if err == nil {
		return nil
	}
	return issuesFromError(err)
}

func issuesFromError(err error) []Issue {
	switch e := err.(type) {
	case openapi3.MultiError:
		var out []Issue
		for _, inner := range e {
			out = append(out, issuesFromError(inner)...)
		}
		return out
	case *openapi3.SchemaError:
		return []Issue{{
			Field:   fieldPath(e.JSONPointer()),
			Message: strings.TrimSpace(e.Reason),
		}}
	default:
		return []Issue{{Message: strings.TrimSpace(err.Error())}}
	}
}

func fieldPath(pointer []string) string {
	out := make([]string, 0, len(pointer))
	for _, segment := range pointer {
		if segment != "" {
			out = append(out, segment)
		}
	}
	return strings.Join(out, ".")
}

func walk(nodes []document.Node, path []string, visit func([]string, document.Node)) {
	for i, node := range nodes {
		here := append(append([]string(nil), path...), strconv.Itoa(i))
		if node.Type() == document.TypeComponentBlock {
			visit(here, node)
		}
		children, ok := node.Children()
		if !ok {
			continue
		}
		nested := make([]document.Node, len(children))
		for j, child := range children {
			switch c := child.(type) {
			case document.Node:
				nested[j] = c
			case map[string]any:
				nested[j] = document.Node(c)
			}
		}
		walk(nested, append(here, "children"), visit)
	}
}
