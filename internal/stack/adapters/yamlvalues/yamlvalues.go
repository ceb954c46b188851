// Package yamlvalues converts between yaml.v3 nodes and domain value trees
// without resolving scalars to Go types, so source text and key order
// survive a load and re-encode.
package yamlvalues

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nathantilsley/helmstack/internal/stack/domain"
)

const (
	nullTag  = "!!null"
	mergeTag = "!!merge"
)

// FromYAML converts n into a value tree. Aliases are followed and merge keys
// (<<) contribute the fields the mapping does not define itself.
func FromYAML(n *yaml.Node) (*domain.ValueNode, error) {
	n = deref(n)
	if n == nil {
		return domain.Null(), nil
	}

	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == nullTag {
			return domain.Null(), nil
		}
		return domain.Scalar(n.Value), nil
	case yaml.SequenceNode:
		items := make([]*domain.ValueNode, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := FromYAML(c)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, v)
		}
		return domain.Sequence(items...), nil
	case yaml.MappingNode:
		return fromMapping(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
	}
}

func fromMapping(n *yaml.Node) (*domain.ValueNode, error) {
	out := domain.Mapping()
	out.Fields = make([]domain.ValueField, 0, len(n.Content)/2)
	var merged []*yaml.Node

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := deref(n.Content[i]), n.Content[i+1]
		if k == nil || k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", n.Content[i].Line)
		}
		if k.ShortTag() == mergeTag {
			merged = append(merged, v)
			continue
		}
		if out.Get(k.Value) != nil {
			return nil, fmt.Errorf("line %d: duplicate key %q", k.Line, k.Value)
		}
		val, err := FromYAML(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k.Value, err)
		}
		out.Fields = append(out.Fields, domain.Field(k.Value, val))
	}

	for _, m := range merged {
		if err := mergeInto(out, m); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// mergeInto appends the fields of a merge source that out lacks. A source
// may be a mapping or a sequence of mappings; earlier ones win.
func mergeInto(out *domain.ValueNode, src *yaml.Node) error {
	src = deref(src)
	var sources []*yaml.Node
	switch {
	case src != nil && src.Kind == yaml.MappingNode:
		sources = []*yaml.Node{src}
	case src != nil && src.Kind == yaml.SequenceNode:
		for _, c := range src.Content {
			sources = append(sources, deref(c))
		}
	}
	if len(sources) == 0 {
		return fmt.Errorf("merge key value must be a mapping")
	}

	for _, s := range sources {
		if s == nil || s.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: merge key value must be a mapping", src.Line)
		}
		m, err := fromMapping(s)
		if err != nil {
			return err
		}
		for _, f := range m.Fields {
			if out.Get(f.Key) == nil {
				out.Fields = append(out.Fields, f)
			}
		}
	}
	return nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && (n.Kind == yaml.AliasNode || n.Kind == yaml.DocumentNode) {
		if n.Kind == yaml.AliasNode {
			n = n.Alias
			continue
		}
		if len(n.Content) == 0 {
			return nil
		}
		n = n.Content[0]
	}
	return n
}

// ToYAML renders v as a yaml node. Every scalar is emitted double-quoted
// with its text unchanged, so helm reads it back as the same string.
func ToYAML(v *domain.ValueNode) *yaml.Node {
	if v == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: nullTag, Value: "null"}
	}

	switch v.Kind {
	case domain.MappingValue:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range v.Fields {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
				ToYAML(f.Value),
			)
		}
		return n
	case domain.SequenceValue:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items {
			n.Content = append(n.Content, ToYAML(item))
		}
		return n
	case domain.NullValue:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: nullTag, Value: "null"}
	default:
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Style: yaml.DoubleQuotedStyle,
			Value: v.Text,
		}
	}
}
