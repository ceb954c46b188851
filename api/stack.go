// Package api defines the on-disk schema of helmstack documents.
package api

import "gopkg.in/yaml.v3"

// StackDocument is the top-level schema of helmstack.yaml.
type StackDocument struct {
	Repositories []RepositoryEntry           `yaml:"repositories,omitempty"`
	Releases     []ReleaseEntry              `yaml:"releases,omitempty"`
	Environments map[string]EnvironmentEntry `yaml:"environments,omitempty"`
	HelmDefaults *HelmDefaultsEntry          `yaml:"helmDefaults,omitempty"`
}

// RepositoryEntry is a chart repository registered before a sync.
type RepositoryEntry struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ReleaseEntry is one release, either complete in a stack document or a
// partial override in an overlay document. Absent keys decode to nil.
// Set is kept as a raw node so scalars keep their source text and mappings
// keep their key order; it holds either a literal string or a mapping.
type ReleaseEntry struct {
	Name         string    `yaml:"name"`
	Chart        *string   `yaml:"chart,omitempty"`
	Namespace    *string   `yaml:"namespace,omitempty"`
	Version      *string   `yaml:"version,omitempty"`
	Values       []string  `yaml:"values,omitempty"`
	Set          yaml.Node `yaml:"set,omitempty"`
	Ignore       *bool     `yaml:"ignore,omitempty"`
	RecreatePods *bool     `yaml:"recreatePods,omitempty"`
	Force        *bool     `yaml:"force,omitempty"`
}

// EnvironmentEntry lists the overlay files applied, in order, for an
// environment.
type EnvironmentEntry struct {
	Overlay []string `yaml:"overlay"`
}

// HelmDefaultsEntry holds stack-wide helm flag defaults.
type HelmDefaultsEntry struct {
	RecreatePods bool `yaml:"recreatePods,omitempty"`
	Force        bool `yaml:"force,omitempty"`
}

// OverlayDocument is the schema of an environment overlay file.
type OverlayDocument struct {
	Releases []ReleaseEntry `yaml:"releases"`
}
