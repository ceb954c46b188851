package domain

// Repository is a chart repository registered with the helm binary before
// releases are synced.
type Repository struct {
	Name string
	URL  string
}

// HelmDefaults are stack-wide defaults for upgrade flags. Release-level and
// command-line values take precedence over them.
type HelmDefaults struct {
	RecreatePods bool
	Force        bool
}

// Environment names an ordered list of overlay files. Later overlays win
// conflicts against earlier ones.
type Environment struct {
	Name     string
	Overlays []string
}

// SetValues is a release's inline `set` block. It is either a literal
// document written verbatim or a structured mapping encoded as YAML.
type SetValues struct {
	Literal *string
	Tree    *ValueNode // always a MappingValue when set
}

// IsZero reports whether no `set` block was declared.
func (s SetValues) IsZero() bool {
	return s.Literal == nil && s.Tree == nil
}

// Release is one deployable unit of the stack.
type Release struct {
	Name      string
	Chart     string
	Namespace string
	Version   string
	Values    []string // value files, applied by helm left-to-right
	Set       SetValues
	Ignore    bool

	// Optional per-release overrides of the upgrade flags.
	RecreatePods *bool
	Force        *bool
}

// ReleaseOverride is a partial release from an overlay document. Nil
// pointers and a zero Set mean the key was absent.
type ReleaseOverride struct {
	Name         string
	Chart        *string
	Namespace    *string
	Version      *string
	Values       []string
	Set          SetValues
	Ignore       *bool
	RecreatePods *bool
	Force        *bool
}

// Overlay is an environment-specific document merged onto the stack's
// releases. It is never executed directly.
type Overlay struct {
	Source   string
	Releases []ReleaseOverride

	// Interpolated is set once placeholders have been substituted.
	Interpolated bool
}

// Stack is the root declarative document.
type Stack struct {
	Repositories []Repository
	Releases     []Release
	Environments map[string]Environment
	Defaults     HelmDefaults

	// Dir is the directory of the stack file; relative overlay paths are
	// resolved against it.
	Dir string

	// Interpolated is set once placeholders have been substituted. A
	// substituted value may itself contain ${...}; it is never expanded again.
	Interpolated bool
}

// ReleaseNames returns the names of releases in document order.
func ReleaseNames(releases []Release) []string {
	names := make([]string, 0, len(releases))
	for _, r := range releases {
		names = append(names, r.Name)
	}
	return names
}
