package app

import (
	"os"
	"regexp"

	"github.com/nathantilsley/helmstack/internal/stack/domain"
)

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LookupFunc resolves an environment variable. It has the signature of
// os.LookupEnv.
type LookupFunc func(name string) (string, bool)

// interpolator substitutes ${NAME} placeholders and remembers the first
// variable it could not resolve.
type interpolator struct {
	lookup  LookupFunc
	missing string
}

func newInterpolator(lookup LookupFunc) *interpolator {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &interpolator{lookup: lookup}
}

func (in *interpolator) expand(s string) string {
	if in.missing != "" {
		return s
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		v, ok := in.lookup(name)
		if !ok {
			if in.missing == "" {
				in.missing = name
			}
			return match
		}
		return v
	})
}

func (in *interpolator) expandPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := in.expand(*s)
	return &v
}

func (in *interpolator) expandAll(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = in.expand(s)
	}
	return out
}

func (in *interpolator) expandSet(set domain.SetValues) domain.SetValues {
	return domain.SetValues{
		Literal: in.expandPtr(set.Literal),
		Tree:    in.expandNode(set.Tree),
	}
}

// expandNode copies n, substituting placeholders in scalar text. Keys are
// left as written.
func (in *interpolator) expandNode(n *domain.ValueNode) *domain.ValueNode {
	out := n.Clone()
	in.expandInPlace(out)
	return out
}

func (in *interpolator) expandInPlace(n *domain.ValueNode) {
	if n == nil {
		return
	}
	switch n.Kind {
	case domain.ScalarValue:
		n.Text = in.expand(n.Text)
	case domain.MappingValue:
		for _, f := range n.Fields {
			in.expandInPlace(f.Value)
		}
	case domain.SequenceValue:
		for _, item := range n.Items {
			in.expandInPlace(item)
		}
	}
}

func (in *interpolator) err() error {
	if in.missing == "" {
		return nil
	}
	return domain.NewMissingEnvironmentVariableError(in.missing)
}

// InterpolateStack returns a copy of stack with every ${NAME} placeholder in
// the string fields of its releases and repositories substituted from the
// environment. If any referenced variable is unset the stack is returned
// unchanged together with a MissingEnvironmentVariable error. A stack that
// was already interpolated is returned as-is, so substituted text is never
// scanned twice.
func InterpolateStack(stack domain.Stack, lookup LookupFunc) (domain.Stack, error) {
	if stack.Interpolated {
		return stack, nil
	}
	in := newInterpolator(lookup)

	out := stack
	out.Repositories = make([]domain.Repository, len(stack.Repositories))
	for i, repo := range stack.Repositories {
		out.Repositories[i] = domain.Repository{
			Name: in.expand(repo.Name),
			URL:  in.expand(repo.URL),
		}
	}
	out.Releases = make([]domain.Release, len(stack.Releases))
	for i, r := range stack.Releases {
		cp := r
		cp.Name = in.expand(r.Name)
		cp.Chart = in.expand(r.Chart)
		cp.Namespace = in.expand(r.Namespace)
		cp.Version = in.expand(r.Version)
		cp.Values = in.expandAll(r.Values)
		cp.Set = in.expandSet(r.Set)
		out.Releases[i] = cp
	}

	if err := in.err(); err != nil {
		return stack, err
	}
	out.Interpolated = true
	return out, nil
}

// InterpolateOverlay is InterpolateStack for an overlay document.
func InterpolateOverlay(overlay domain.Overlay, lookup LookupFunc) (domain.Overlay, error) {
	if overlay.Interpolated {
		return overlay, nil
	}
	in := newInterpolator(lookup)

	out := overlay
	out.Releases = make([]domain.ReleaseOverride, len(overlay.Releases))
	for i, o := range overlay.Releases {
		cp := o
		cp.Name = in.expand(o.Name)
		cp.Chart = in.expandPtr(o.Chart)
		cp.Namespace = in.expandPtr(o.Namespace)
		cp.Version = in.expandPtr(o.Version)
		cp.Values = in.expandAll(o.Values)
		cp.Set = in.expandSet(o.Set)
		out.Releases[i] = cp
	}

	if err := in.err(); err != nil {
		return overlay, err
	}
	out.Interpolated = true
	return out, nil
}
