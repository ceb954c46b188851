// Package valuefiles writes release `set` blocks to temporary helm value
// files.
package valuefiles

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nathantilsley/helmstack/internal/stack/adapters/yamlvalues"
	"github.com/nathantilsley/helmstack/internal/stack/domain"
)

// Adapter implements ports.ValueFilePort on the local filesystem.
type Adapter struct {
	dir string
}

// New creates a value file adapter writing under dir, or the system temp
// directory when dir is empty.
func New(dir string) *Adapter {
	return &Adapter{dir: dir}
}

// Write serializes set to a new temporary file and returns its path.
func (a *Adapter) Write(releaseName string, set domain.SetValues) (string, error) {
	data, err := Encode(set)
	if err != nil {
		return "", err
	}

	pattern := "helmstack-" + strings.ReplaceAll(releaseName, string(os.PathSeparator), "_") + "-*.yaml"
	f, err := os.CreateTemp(a.dir, pattern)
	if err != nil {
		return "", fmt.Errorf("creating value file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing value file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("closing value file: %w", err)
	}
	return f.Name(), nil
}

// Remove deletes a file created by Write.
func (a *Adapter) Remove(path string) error {
	return os.Remove(path)
}

// Encode renders set as helm value file content. A literal is returned
// verbatim. A tree is rendered in document order with every scalar
// double-quoted as written, so helm cannot reinterpret yes, no or 1.0.
func Encode(set domain.SetValues) ([]byte, error) {
	if set.Literal != nil {
		return []byte(*set.Literal), nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlvalues.ToYAML(set.Tree)); err != nil {
		return nil, fmt.Errorf("encoding set values: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding set values: %w", err)
	}
	return buf.Bytes(), nil
}
