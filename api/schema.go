package api

import "strings"

// Kind distinguishes the three shapes a wildcard tree node can take.
type Kind int

const (
	// KindGroup is a mapping of named children.
	KindGroup Kind = iota
	// KindList is a leaf list of template strings.
	KindList
	// KindScalar is any other value (a bare string, number, null...).
	// Scalars are neither walked by the validator nor resolvable.
	KindScalar
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindList:
		return "list"
	default:
		return "scalar"
	}
}

// Node is one entry of a wildcard tree.
// Groups keep their children in document order; keys are case-sensitive
// here and only folded when a wildcard reference is resolved.
type Node struct {
	// Key is the name under the parent group. Empty for the root.
	Key string
	// Kind selects which of the fields below is meaningful.
	Kind Kind
	// Children of a group, in document order.
	Children []*Node
	// Items of a leaf list. Non-string items are kept so the validator can
	// flag them.
	Items []any
	// Value of a scalar.
	Value any
}

// NewGroup builds a group node.
func NewGroup(key string, children ...*Node) *Node {
	return &Node{Key: key, Kind: KindGroup, Children: children}
}

// NewList builds a leaf list from string items.
func NewList(key string, items ...string) *Node {
	n := &Node{Key: key, Kind: KindList, Items: make([]any, 0, len(items))}
	for _, it := range items {
		n.Items = append(n.Items, it)
	}
	return n
}

// NewScalar builds a scalar node.
func NewScalar(key string, v any) *Node {
	return &Node{Key: key, Kind: KindScalar, Value: v}
}

// IsGroup reports whether n is a non-nil group.
func (n *Node) IsGroup() bool { return n != nil && n.Kind == KindGroup }

// IsList reports whether n is a non-nil leaf list.
func (n *Node) IsList() bool { return n != nil && n.Kind == KindList }

// Child returns the child with exactly this key, or nil.
func (n *Node) Child(key string) *Node {
	if !n.IsGroup() {
		return nil
	}
	for _, c := range n.Children {
		if c.Key == key {
			return c
		}
	}
	return nil
}

// ChildFold returns the first child (in document order) whose key equals
// key under case folding, or nil.
func (n *Node) ChildFold(key string) *Node {
	if !n.IsGroup() {
		return nil
	}
	for _, c := range n.Children {
		if strings.EqualFold(c.Key, key) {
			return c
		}
	}
	return nil
}

// Strings returns the string items of a leaf list, skipping anything else.
func (n *Node) Strings() []string {
	if !n.IsList() {
		return nil
	}
	out := make([]string, 0, len(n.Items))
	for _, it := range n.Items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Generic converts the subtree to plain Go values: groups become
// map[string]any, lists []any, scalars their value.
func (n *Node) Generic() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindGroup:
		m := make(map[string]any, len(n.Children))
		for _, c := range n.Children {
			m[c.Key] = c.Generic()
		}
		return m
	case KindList:
		out := make([]any, len(n.Items))
		copy(out, n.Items)
		return out
	default:
		return n.Value
	}
}

// Clone returns a deep copy of the subtree. Item values are copied by
// assignment.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Key: n.Key, Kind: n.Kind, Value: n.Value}
	if n.Items != nil {
		c.Items = make([]any, len(n.Items))
		copy(c.Items, n.Items)
	}
	for _, ch := range n.Children {
		c.Children = append(c.Children, ch.Clone())
	}
	return c
}
