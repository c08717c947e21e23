package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docblocks/pkg/schema"
)

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS sets the filesystem used for SourceKindFS sources.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithHTTPClient enables URL sources using a copy of client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		if client == nil {
			return
		}
		clone := *client
		l.http = &clone
	}
}

// WithRequestTimeout bounds URL fetches.
func WithRequestTimeout(timeout time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = timeout
	}
}

// Loader reads registry documents from files, an fs.FS, or HTTP.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// NewLoader constructs a Loader.
func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load reads and parses the document identified by src.
func (l *Loader) Load(ctx context.Context, src Source) (*Set, error) {
	if src == nil {
		return nil, errors.New("registry: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case SourceKindURL:
		if l.http == nil {
			return nil, errors.New("registry: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("registry: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return nil, err
	}
	return Parse(data, src.Location())
}

// LoadFS walks fsys and merges every JSON/YAML registry file it finds. A name
// defined in two files is an ErrDuplicate error.
func LoadFS(fsys fs.FS) (*Set, error) {
	set := NewSet()
	if fsys == nil {
		return set, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isRegistryFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("registry: read %s: %w", path, err)
		}
		parsed, err := Parse(data, path)
		if err != nil {
			return err
		}
		if err := set.Merge(parsed); err != nil {
			return fmt.Errorf("registry: file %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// LoadPath loads a registry from a directory, a single file, or an http(s)
// URL, as named by the DOCBLOCKS_REGISTRY setting.
func LoadPath(ctx context.Context, path string, options ...LoaderOption) (*Set, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return NewSet(), nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		src, err := SourceFromURL(path)
		if err != nil {
			return nil, err
		}
		opts := append([]LoaderOption{WithHTTPClient(http.DefaultClient)}, options...)
		return NewLoader(opts...).Load(ctx, src)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if info.IsDir() {
		return LoadFS(os.DirFS(path))
	}
	return NewLoader(options...).Load(ctx, SourceFromFile(path))
}

// Parse decodes a registry document. JSON is accepted as YAML; mapping order is
// kept so object fields render in declaration order.
func Parse(data []byte, source string) (*Set, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("registry: file %s is empty", source)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("registry: parse %s: invalid JSON or YAML: %w", source, err)
	}
	root := &doc
	for root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("registry: parse %s: expected a mapping", source)
	}

	set := NewSet()
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]
		var err error
		switch key {
		case "components":
			err = parseComponents(set.Components, value, source)
		case "relationships":
			err = parseRelationships(set.Relationships, value, source)
		default:
			err = fmt.Errorf("registry: file %s has unknown section %q", source, key)
		}
		if err != nil {
			return nil, err
		}
	}
	return set, nil
}

type componentFile struct {
	Label string `yaml:"label"`
}

type relationshipFile struct {
	Label     string `yaml:"label"`
	ListKey   string `yaml:"listKey"`
	Many      bool   `yaml:"many"`
	Selection string `yaml:"selection"`
}

func parseComponents(into *Components, node *yaml.Node, source string) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("registry: file %s: components must be a mapping", source)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, body := node.Content[i].Value, node.Content[i+1]

		var raw componentFile
		if err := body.Decode(&raw); err != nil {
			return fmt.Errorf("registry: file %s component %q: %w", source, name, err)
		}
		fields := mappingValue(body, "schema")
		if fields == nil {
			return fmt.Errorf("registry: file %s component %q has no schema", source, name)
		}
		obj, err := schema.DecodeFields(fields)
		if err != nil {
			return fmt.Errorf("registry: file %s component %q: %w", source, name, err)
		}
		label := raw.Label
		if label == "" {
			label = name
		}
		if err := into.Register(ComponentBlock{Name: name, Label: label, Schema: obj}); err != nil {
			return fmt.Errorf("registry: file %s: %w", source, err)
		}
	}
	return nil
}

func parseRelationships(into *Relationships, node *yaml.Node, source string) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("registry: file %s: relationships must be a mapping", source)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value

		var raw relationshipFile
		if err := node.Content[i+1].Decode(&raw); err != nil {
			return fmt.Errorf("registry: file %s relationship %q: %w", source, name, err)
		}
		def := RelationshipDef{
			Name:      name,
			Label:     raw.Label,
			ListKey:   raw.ListKey,
			Many:      raw.Many,
			Selection: raw.Selection,
		}
		if def.Label == "" {
			def.Label = name
		}
		if err := into.Register(def); err != nil {
			return fmt.Errorf("registry: file %s: %w", source, err)
		}
	}
	return nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func isRegistryFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func loadFile(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("registry: file path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func loadFromFS(ctx context.Context, files fs.FS, name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("registry: fs path is required")
	}
	if files == nil {
		return nil, errors.New("registry: fs is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(files, name)
}

func loadHTTP(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("registry: unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}
