package domain

// ValueKind tells which members of a ValueNode are meaningful.
type ValueKind int

const (
	ScalarValue ValueKind = iota
	NullValue
	MappingValue
	SequenceValue
)

// ValueNode is one node of a structured `set` tree. Scalars keep the text
// they were written with, so 1.10 stays 1.10, and mappings keep document
// order.
type ValueNode struct {
	Kind   ValueKind
	Text   string       // scalar source text
	Fields []ValueField // mapping entries in document order
	Items  []*ValueNode // sequence items
}

// ValueField is a single mapping entry.
type ValueField struct {
	Key   string
	Value *ValueNode
}

// Scalar returns a scalar node holding text verbatim.
func Scalar(text string) *ValueNode {
	return &ValueNode{Kind: ScalarValue, Text: text}
}

// Null returns an explicit null node.
func Null() *ValueNode {
	return &ValueNode{Kind: NullValue}
}

// Mapping returns a mapping node with fields in the given order.
func Mapping(fields ...ValueField) *ValueNode {
	return &ValueNode{Kind: MappingValue, Fields: fields}
}

// Sequence returns a sequence node.
func Sequence(items ...*ValueNode) *ValueNode {
	return &ValueNode{Kind: SequenceValue, Items: items}
}

// Field pairs a key with its value for Mapping.
func Field(key string, value *ValueNode) ValueField {
	return ValueField{Key: key, Value: value}
}

// Get returns the value stored under key in a mapping node, or nil.
func (n *ValueNode) Get(key string) *ValueNode {
	if n == nil || n.Kind != MappingValue {
		return nil
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Keys returns a mapping node's keys in document order.
func (n *ValueNode) Keys() []string {
	if n == nil || n.Kind != MappingValue {
		return nil
	}
	keys := make([]string, 0, len(n.Fields))
	for _, f := range n.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// Clone returns a deep copy of n.
func (n *ValueNode) Clone() *ValueNode {
	if n == nil {
		return nil
	}
	out := &ValueNode{Kind: n.Kind, Text: n.Text}
	if n.Fields != nil {
		out.Fields = make([]ValueField, len(n.Fields))
		for i, f := range n.Fields {
			out.Fields[i] = ValueField{Key: f.Key, Value: f.Value.Clone()}
		}
	}
	if n.Items != nil {
		out.Items = make([]*ValueNode, len(n.Items))
		for i, item := range n.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}
