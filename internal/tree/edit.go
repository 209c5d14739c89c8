package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentic-research/wildcards/api"
)

var (
	ErrNotFound  = errors.New("wildcard not found")
	ErrExists    = errors.New("wildcard already exists")
	ErrEmptyName = errors.New("wildcard name is empty")
	ErrNotList   = errors.New("wildcard is not a list")
)

// Set places n at keys, creating intermediate groups and replacing any
// non-group in the way. An existing entry keeps its position.
func Set(root *api.Node, keys []string, n *api.Node) error {
	if len(keys) == 0 {
		return ErrEmptyName
	}
	parent := root
	for _, k := range keys[:len(keys)-1] {
		next := parent.Child(k)
		if !next.IsGroup() {
			g := api.NewGroup(k)
			put(parent, g)
			next = g
		}
		parent = next
	}
	n.Key = keys[len(keys)-1]
	put(parent, n)
	return nil
}

func put(parent *api.Node, n *api.Node) {
	for i, c := range parent.Children {
		if c.Key == n.Key {
			parent.Children[i] = n
			return
		}
	}
	parent.Children = append(parent.Children, n)
}

// Append adds items to the list at keys, creating the list if missing.
func Append(root *api.Node, keys []string, items ...string) error {
	n := Get(root, keys)
	if n == nil {
		return Set(root, keys, api.NewList("", items...))
	}
	if !n.IsList() {
		return fmt.Errorf("%s: %w", strings.Join(keys, "/"), ErrNotList)
	}
	for _, it := range items {
		n.Items = append(n.Items, it)
	}
	return nil
}

// Delete removes the entry at keys.
func Delete(root *api.Node, keys []string) error {
	if len(keys) == 0 {
		return ErrEmptyName
	}
	parent := Get(root, keys[:len(keys)-1])
	if !parent.IsGroup() {
		return fmt.Errorf("%s: %w", strings.Join(keys, "/"), ErrNotFound)
	}
	name := keys[len(keys)-1]
	for i, c := range parent.Children {
		if c.Key == name {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", strings.Join(keys, "/"), ErrNotFound)
}

// Rename gives the entry at keys a new name under the same parent, keeping
// its position among siblings.
func Rename(root *api.Node, keys []string, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" || len(keys) == 0 {
		return ErrEmptyName
	}
	n := Get(root, keys)
	if n == nil {
		return fmt.Errorf("%s: %w", strings.Join(keys, "/"), ErrNotFound)
	}
	if n.Key == newName {
		return nil
	}
	parent := Get(root, keys[:len(keys)-1])
	if parent.Child(newName) != nil {
		return fmt.Errorf("%s: %w", newName, ErrExists)
	}
	n.Key = newName
	return nil
}

// CountItems returns the number of list items under n.
func CountItems(n *api.Node) int {
	switch {
	case n.IsList():
		return len(n.Items)
	case n.IsGroup():
		total := 0
		for _, c := range n.Children {
			total += CountItems(c)
		}
		return total
	default:
		return 0
	}
}
