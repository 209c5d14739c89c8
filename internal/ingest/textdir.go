package ingest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/tree"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// LoadDir builds a tree from a wildcard directory rooted at dir:
// each .txt file becomes a list keyed by its relative path without
// extension, and YAML/JSON files merge their top-level keys into the
// group of the directory that holds them.
func LoadDir(fsys billy.Filesystem, dir string) (*api.Node, error) {
	root := api.NewGroup("")
	err := util.Walk(fsys, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		ext := filepath.Ext(rel)
		keys := strings.Split(strings.TrimSuffix(rel, ext), "/")

		switch strings.ToLower(ext) {
		case ".txt":
			data, err := util.ReadFile(fsys, p)
			if err != nil {
				return err
			}
			return tree.Set(root, keys, api.NewList("", Lines(data)...))

		case ".yaml", ".yml", ".json":
			data, err := util.ReadFile(fsys, p)
			if err != nil {
				return err
			}
			sub, err := LoadYAML(data)
			if err != nil {
				return fmt.Errorf("%s: %w", rel, err)
			}
			merge(groupAt(root, keys[:len(keys)-1]), sub)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

// Lines splits a wildcard text file into items, dropping blank lines and
// a leading byte-order mark.
func Lines(data []byte) []string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// groupAt returns the group at keys, creating groups as needed.
func groupAt(root *api.Node, keys []string) *api.Node {
	g := root
	for _, k := range keys {
		next := g.Child(k)
		if !next.IsGroup() {
			next = api.NewGroup(k)
			putChild(g, next)
		}
		g = next
	}
	return g
}

// merge folds src's children into dst. Groups present on both sides merge
// recursively; anything else is replaced.
func merge(dst, src *api.Node) {
	for _, c := range src.Children {
		if existing := dst.Child(c.Key); existing.IsGroup() && c.IsGroup() {
			merge(existing, c)
			continue
		}
		putChild(dst, c)
	}
}
