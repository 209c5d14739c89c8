// Package ingest loads wildcard trees from YAML/JSON documents, wildcard
// text directories and SQLite snapshots, and writes them back out.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/wildcards/api"
	"github.com/go-git/go-billy/v5/osfs"
)

// ErrUnsupported is returned for paths with an unknown extension.
var ErrUnsupported = errors.New("unsupported wildcard source")

// Load reads a wildcard tree from path, picking the loader by file type:
// directories load as text wildcard trees, .yaml/.yml/.json as documents,
// .db/.sqlite as snapshots and a single .txt as one list named after it.
func Load(path string) (*api.Node, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		root, err := LoadDir(osfs.New(path), "/")
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		return root, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		root, err := LoadYAML(data)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		return root, nil

	case ".db", ".sqlite":
		return LoadSQLite(path)

	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return api.NewGroup("", api.NewList(name, Lines(data)...)), nil

	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
}

// IsDocument reports whether path is a single YAML/JSON document, the only
// kind of source the editing commands write back to.
func IsDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
