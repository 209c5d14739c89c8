// Package tree holds the wildcard tree: reference lookup, pattern matching,
// structural edits and a hot-swappable store with a reference index.
package tree

import (
	"path"
	"strings"

	"github.com/agentic-research/wildcards/api"
)

// Normalize folds a wildcard reference the way lookups compare it:
// backslashes become "/" and letters are lowercased.
func Normalize(ref string) string {
	return strings.ToLower(strings.ReplaceAll(ref, `\`, "/"))
}

// Lookup walks root by a reference path. Each segment matches the first
// child whose lowercased key equals it. It returns nil when a segment is
// missing or the walk reaches a non-group early.
func Lookup(root *api.Node, ref string) *api.Node {
	node := root
	for _, part := range strings.Split(Normalize(ref), "/") {
		if !node.IsGroup() {
			return nil
		}
		var next *api.Node
		for _, c := range node.Children {
			if strings.ToLower(c.Key) == part {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

// Get walks root by exact, case-sensitive keys.
func Get(root *api.Node, keys []string) *api.Node {
	node := root
	for _, k := range keys {
		node = node.Child(k)
		if node == nil {
			return nil
		}
	}
	return node
}

// Leaf is a list node together with its slash-joined key path.
type Leaf struct {
	Path string
	Keys []string
	Node *api.Node
}

// Walk visits every node under root in document order, parents first.
// Returning false from fn skips the node's children.
func Walk(root *api.Node, fn func(keys []string, n *api.Node) bool) {
	walk(root, nil, fn)
}

func walk(n *api.Node, keys []string, fn func([]string, *api.Node) bool) {
	for _, c := range n.Children {
		k := append(keys[:len(keys):len(keys)], c.Key)
		if fn(k, c) && c.IsGroup() {
			walk(c, k, fn)
		}
	}
}

// Leaves returns every list node under root in document order.
func Leaves(root *api.Node) []Leaf {
	var out []Leaf
	Walk(root, func(keys []string, n *api.Node) bool {
		if n.IsList() {
			out = append(out, Leaf{Path: strings.Join(keys, "/"), Keys: keys, Node: n})
		}
		return true
	})
	return out
}

// MatchBasename collects the items of every list whose lowercased path
// matches base under MatchesBasename. base must already be normalized.
func MatchBasename(root *api.Node, base string) []any {
	var pool []any
	for _, l := range Leaves(root) {
		if MatchesBasename(strings.ToLower(l.Path), base) {
			pool = append(pool, l.Node.Items...)
		}
	}
	return pool
}

// MatchesBasename is the path test behind "__*/name__" references: the
// path equals base, starts with base+"/", ends with "/"+base or contains
// "/"+base+"/".
func MatchesBasename(fullPath, base string) bool {
	return fullPath == base ||
		strings.HasPrefix(fullPath, base+"/") ||
		strings.HasSuffix(fullPath, "/"+base) ||
		strings.Contains(fullPath, "/"+base+"/")
}

// MatchGlob collects the items of every list whose lowercased path matches
// pattern under path.Match rules. A malformed pattern matches nothing.
func MatchGlob(root *api.Node, pattern string) []any {
	var pool []any
	for _, l := range Leaves(root) {
		if ok, err := path.Match(pattern, strings.ToLower(l.Path)); err == nil && ok {
			pool = append(pool, l.Node.Items...)
		}
	}
	return pool
}
