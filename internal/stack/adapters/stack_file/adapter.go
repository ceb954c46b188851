// Package stackfile loads helmstack stack and overlay documents from disk.
package stackfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nathantilsley/helmstack/api"
	"github.com/nathantilsley/helmstack/internal/stack/adapters/yamlvalues"
	"github.com/nathantilsley/helmstack/internal/stack/domain"
)

// Adapter implements ports.StackDocumentPort on YAML files. Decoding is
// strict: unknown keys are parse errors.
type Adapter struct{}

// New creates a new stack file adapter.
func New() *Adapter {
	return &Adapter{}
}

// LoadStack reads and decodes the stack document at path.
func (a *Adapter) LoadStack(_ context.Context, path string) (domain.Stack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Stack{}, domain.NewConfigurationError(domain.ReasonStackNotFound,
				"stack file %s does not exist", path)
		}
		return domain.Stack{}, domain.NewParseError(domain.ReasonStackParseError, path, err)
	}

	var doc api.StackDocument
	if err := decodeStrict(data, &doc); err != nil {
		return domain.Stack{}, domain.NewParseError(domain.ReasonStackParseError, path, err)
	}

	stack, err := toStack(doc)
	if err != nil {
		return domain.Stack{}, domain.NewParseError(domain.ReasonStackParseError, path, err)
	}
	stack.Dir = filepath.Dir(path)
	return stack, nil
}

// LoadOverlay reads and decodes the overlay document at path. A missing
// file is reported like any other unparseable overlay.
func (a *Adapter) LoadOverlay(_ context.Context, path string) (domain.Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Overlay{}, domain.NewParseError(domain.ReasonOverlayParseError, path, err)
	}

	var doc api.OverlayDocument
	if err := decodeStrict(data, &doc); err != nil {
		return domain.Overlay{}, domain.NewParseError(domain.ReasonOverlayParseError, path, err)
	}

	ov, err := toOverlay(path, doc)
	if err != nil {
		return domain.Overlay{}, domain.NewParseError(domain.ReasonOverlayParseError, path, err)
	}
	return ov, nil
}

// EncodeReleases renders releases as a YAML `releases:` document.
func (a *Adapter) EncodeReleases(releases []domain.Release) ([]byte, error) {
	doc := api.OverlayDocument{Releases: make([]api.ReleaseEntry, 0, len(releases))}
	for _, r := range releases {
		doc.Releases = append(doc.Releases, fromRelease(r))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding releases: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding releases: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeStrict decodes a single YAML document, rejecting unknown fields.
// An empty document leaves out untouched.
func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func toStack(doc api.StackDocument) (domain.Stack, error) {
	stack := domain.Stack{
		Repositories: make([]domain.Repository, 0, len(doc.Repositories)),
		Releases:     make([]domain.Release, 0, len(doc.Releases)),
		Environments: make(map[string]domain.Environment, len(doc.Environments)),
	}

	for _, r := range doc.Repositories {
		stack.Repositories = append(stack.Repositories, domain.Repository{Name: r.Name, URL: r.URL})
	}

	for i, e := range doc.Releases {
		set, err := toSetValues(e.Set)
		if err != nil {
			return domain.Stack{}, fmt.Errorf("releases[%d] (%s): %w", i, e.Name, err)
		}
		stack.Releases = append(stack.Releases, domain.Release{
			Name:         e.Name,
			Chart:        deref(e.Chart),
			Namespace:    deref(e.Namespace),
			Version:      deref(e.Version),
			Values:       e.Values,
			Set:          set,
			Ignore:       e.Ignore != nil && *e.Ignore,
			RecreatePods: e.RecreatePods,
			Force:        e.Force,
		})
	}

	for name, env := range doc.Environments {
		stack.Environments[name] = domain.Environment{Name: name, Overlays: env.Overlay}
	}

	if doc.HelmDefaults != nil {
		stack.Defaults = domain.HelmDefaults{
			RecreatePods: doc.HelmDefaults.RecreatePods,
			Force:        doc.HelmDefaults.Force,
		}
	}
	return stack, nil
}

func toOverlay(path string, doc api.OverlayDocument) (domain.Overlay, error) {
	ov := domain.Overlay{
		Source:   path,
		Releases: make([]domain.ReleaseOverride, 0, len(doc.Releases)),
	}
	for i, e := range doc.Releases {
		if e.Name == "" {
			return domain.Overlay{}, fmt.Errorf("releases[%d]: override has no name", i)
		}
		set, err := toSetValues(e.Set)
		if err != nil {
			return domain.Overlay{}, fmt.Errorf("releases[%d] (%s): %w", i, e.Name, err)
		}
		ov.Releases = append(ov.Releases, domain.ReleaseOverride{
			Name:         e.Name,
			Chart:        e.Chart,
			Namespace:    e.Namespace,
			Version:      e.Version,
			Values:       e.Values,
			Set:          set,
			Ignore:       e.Ignore,
			RecreatePods: e.RecreatePods,
			Force:        e.Force,
		})
	}
	return ov, nil
}

// toSetValues accepts a literal string or a mapping. An absent or null
// set is empty.
func toSetValues(n yaml.Node) (domain.SetValues, error) {
	if n.Kind == 0 {
		return domain.SetValues{}, nil
	}
	node := &n
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	switch {
	case node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null":
		return domain.SetValues{}, nil
	case node.Kind == yaml.ScalarNode && node.ShortTag() == "!!str":
		literal := node.Value
		return domain.SetValues{Literal: &literal}, nil
	case node.Kind == yaml.MappingNode:
		tree, err := yamlvalues.FromYAML(node)
		if err != nil {
			return domain.SetValues{}, fmt.Errorf("set: %w", err)
		}
		return domain.SetValues{Tree: tree}, nil
	default:
		return domain.SetValues{}, fmt.Errorf("line %d: set must be a string or a mapping, got %s", node.Line, node.ShortTag())
	}
}

func fromRelease(r domain.Release) api.ReleaseEntry {
	e := api.ReleaseEntry{
		Name:         r.Name,
		Chart:        optional(r.Chart),
		Namespace:    optional(r.Namespace),
		Version:      optional(r.Version),
		Values:       r.Values,
		RecreatePods: r.RecreatePods,
		Force:        r.Force,
	}
	switch {
	case r.Set.Literal != nil:
		e.Set = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: *r.Set.Literal}
	case r.Set.Tree != nil:
		e.Set = *yamlvalues.ToYAML(r.Set.Tree)
	}
	if r.Ignore {
		ignore := true
		e.Ignore = &ignore
	}
	return e
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
