package app

import (
	"github.com/nathantilsley/helmstack/internal/stack/domain"
)

// MergeOverlays applies overlays to base in order. Each overlay is a full
// merge pass, so later overlays win conflicts against earlier ones and
// against the base.
func MergeOverlays(base []domain.Release, overlays ...domain.Overlay) []domain.Release {
	out := base
	for _, ov := range overlays {
		out = MergeOverlay(out, ov)
	}
	return out
}

// MergeOverlay returns a new release list with ov's overrides merged onto
// the base releases of the same name. Base releases the overlay does not
// mention are returned as-is, and overlay entries without a matching base
// release are ignored. base is not modified.
func MergeOverlay(base []domain.Release, ov domain.Overlay) []domain.Release {
	byName := make(map[string][]domain.ReleaseOverride, len(ov.Releases))
	for _, o := range ov.Releases {
		byName[o.Name] = append(byName[o.Name], o)
	}

	out := make([]domain.Release, 0, len(base))
	for _, r := range base {
		for _, o := range byName[r.Name] {
			r = MergeRelease(r, o)
		}
		out = append(out, r)
	}
	return out
}

// MergeRelease merges a single override onto a release. Keys present in the
// override replace the base value, except that `set` trees are merged
// recursively and `values` lists are concatenated base-first.
func MergeRelease(base domain.Release, o domain.ReleaseOverride) domain.Release {
	out := base

	if o.Chart != nil {
		out.Chart = *o.Chart
	}
	if o.Namespace != nil {
		out.Namespace = *o.Namespace
	}
	if o.Version != nil {
		out.Version = *o.Version
	}
	if o.Ignore != nil {
		out.Ignore = *o.Ignore
	}
	if o.RecreatePods != nil {
		out.RecreatePods = boolPtr(*o.RecreatePods)
	}
	if o.Force != nil {
		out.Force = boolPtr(*o.Force)
	}

	out.Set = mergeSet(base.Set, o.Set)

	values := make([]string, 0, len(base.Values)+len(o.Values))
	values = append(values, base.Values...)
	out.Values = append(values, o.Values...)

	return out
}

func mergeSet(base, o domain.SetValues) domain.SetValues {
	switch {
	case o.IsZero():
		return cloneSet(base)
	case base.Tree != nil && o.Tree != nil:
		return domain.SetValues{Tree: mergeTrees(base.Tree, o.Tree)}
	default:
		return cloneSet(o)
	}
}

// mergeTrees deep-merges src onto dst into a new mapping. When both sides
// hold a mapping for a key the merge recurses; otherwise src's value wins
// whole. Existing keys keep their position and new keys are appended.
func mergeTrees(dst, src *domain.ValueNode) *domain.ValueNode {
	out := dst.Clone()
	for _, sf := range src.Fields {
		i := fieldIndex(out, sf.Key)
		if i < 0 {
			out.Fields = append(out.Fields, domain.Field(sf.Key, sf.Value.Clone()))
			continue
		}
		dv := out.Fields[i].Value
		if dv != nil && sf.Value != nil && dv.Kind == domain.MappingValue && sf.Value.Kind == domain.MappingValue {
			out.Fields[i].Value = mergeTrees(dv, sf.Value)
			continue
		}
		out.Fields[i].Value = sf.Value.Clone()
	}
	return out
}

func fieldIndex(n *domain.ValueNode, key string) int {
	for i, f := range n.Fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

func cloneSet(s domain.SetValues) domain.SetValues {
	out := domain.SetValues{Tree: s.Tree.Clone()}
	if s.Literal != nil {
		lit := *s.Literal
		out.Literal = &lit
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}
