package ingest

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/agentic-research/wildcards/api"
	"gopkg.in/yaml.v3"
)

// ErrRootNotMapping is returned for documents whose top level is not a
// mapping (a bare list or scalar).
var ErrRootNotMapping = errors.New("document root is not a mapping")

// LoadYAML parses a YAML (or JSON) document into a wildcard tree, keeping
// key order. A repeated key keeps its first position and takes the last
// value. Aliases and merge keys are expanded.
func LoadYAML(data []byte) (*api.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	root := api.NewGroup("")
	if len(doc.Content) == 0 {
		return root, nil
	}
	top := deref(doc.Content[0])
	switch {
	case top.Kind == yaml.MappingNode:
	case top.Kind == yaml.ScalarNode && top.Tag == "!!null":
		return root, nil
	default:
		return nil, ErrRootNotMapping
	}

	if err := fillGroup(root, top); err != nil {
		return nil, err
	}
	return root, nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func fillGroup(g *api.Node, m *yaml.Node) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], deref(m.Content[i+1])

		if k.Tag == "!!merge" {
			if err := mergeInto(g, v); err != nil {
				return err
			}
			continue
		}

		child, err := convert(k.Value, v)
		if err != nil {
			return fmt.Errorf("line %d: %w", k.Line, err)
		}
		putChild(g, child)
	}
	return nil
}

// mergeInto applies a "<<" merge value: a mapping or a list of mappings.
func mergeInto(g *api.Node, v *yaml.Node) error {
	switch v.Kind {
	case yaml.MappingNode:
		return fillGroup(g, v)
	case yaml.SequenceNode:
		for _, e := range v.Content {
			if e = deref(e); e.Kind == yaml.MappingNode {
				if err := fillGroup(g, e); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func convert(key string, v *yaml.Node) (*api.Node, error) {
	switch v.Kind {
	case yaml.MappingNode:
		g := api.NewGroup(key)
		if err := fillGroup(g, v); err != nil {
			return nil, err
		}
		return g, nil

	case yaml.SequenceNode:
		l := &api.Node{Key: key, Kind: api.KindList, Items: make([]any, 0, len(v.Content))}
		for _, e := range v.Content {
			e = deref(e)
			if e.Kind == yaml.ScalarNode && e.Tag == "!!str" {
				l.Items = append(l.Items, e.Value)
				continue
			}
			var x any
			if err := e.Decode(&x); err != nil {
				return nil, err
			}
			l.Items = append(l.Items, x)
		}
		return l, nil

	default:
		var x any
		if err := v.Decode(&x); err != nil {
			return nil, err
		}
		return api.NewScalar(key, x), nil
	}
}

// putChild replaces a same-key child in place or appends.
func putChild(g, child *api.Node) {
	for i, c := range g.Children {
		if c.Key == child.Key {
			g.Children[i] = child
			return
		}
	}
	g.Children = append(g.Children, child)
}

// DumpYAML serialises a tree as block YAML with two-space indentation,
// preserving key and item order.
func DumpYAML(root *api.Node) ([]byte, error) {
	doc, err := encodeNode(root)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeNode(n *api.Node) (*yaml.Node, error) {
	switch n.Kind {
	case api.KindGroup:
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, c := range n.Children {
			k := &yaml.Node{}
			if err := k.Encode(c.Key); err != nil {
				return nil, err
			}
			v, err := encodeNode(c)
			if err != nil {
				return nil, err
			}
			m.Content = append(m.Content, k, v)
		}
		return m, nil

	case api.KindList:
		s := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range n.Items {
			e := &yaml.Node{}
			if err := e.Encode(it); err != nil {
				return nil, err
			}
			s.Content = append(s.Content, e)
		}
		return s, nil

	default:
		v := &yaml.Node{}
		if err := v.Encode(n.Value); err != nil {
			return nil, err
		}
		return v, nil
	}
}
