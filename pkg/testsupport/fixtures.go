// Package testsupport loads document and registry fixtures for tests.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/goliatone/go-docblocks/pkg/document"
	"github.com/goliatone/go-docblocks/pkg/registry"
)

// LoadDocument reads a stored document fixture. Testing helpers fail the test
// on error to keep callers concise.
func LoadDocument(t *testing.T, path string) []document.Node {
	t.Helper()

	nodes, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return nodes
}

// LoadDocumentFromPath returns the nodes of a document fixture without
// requiring testing.T.
func LoadDocumentFromPath(path string) ([]document.Node, error) {
	if path == "" {
		return nil, errors.New("testsupport: document path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: open document: %w", err)
	}
	defer f.Close()
	return document.Decode(f)
}

// LoadRegistry reads a registry file or directory fixture.
func LoadRegistry(t *testing.T, path string) *registry.Set {
	t.Helper()

	set, err := registry.LoadPath(Context(), path)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return set
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
