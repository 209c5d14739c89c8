package ingest

import (
	"database/sql"
	"fmt"

	"github.com/agentic-research/wildcards/api"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

// LoadSQLite rebuilds a tree from a snapshot written by Build.
func LoadSQLite(dbPath string) (*api.Node, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	root := api.NewGroup("")
	byID := map[int64]*api.Node{}

	rows, err := db.Query("SELECT id, parent_id, name, kind, value FROM nodes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	for rows.Next() {
		var (
			id     int64
			parent sql.NullInt64
			name   string
			kind   int
			value  sql.NullString
		)
		if err := rows.Scan(&id, &parent, &name, &kind, &value); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}

		n := &api.Node{Key: name, Kind: api.Kind(kind)}
		switch n.Kind {
		case api.KindList:
			n.Items = []any{}
		case api.KindScalar:
			if value.Valid {
				if n.Value, err = decodeValue(value.String); err != nil {
					return nil, fmt.Errorf("node %d: %w", id, err)
				}
			}
		}

		p := root
		if parent.Valid {
			if p = byID[parent.Int64]; p == nil {
				return nil, fmt.Errorf("node %d: parent %d missing", id, parent.Int64)
			}
		}
		p.Children = append(p.Children, n)
		byID[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := db.Query("SELECT node_id, value FROM items ORDER BY node_id, idx")
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer func() { _ = items.Close() }() // safe to ignore

	for items.Next() {
		var (
			nodeID int64
			raw    string
		)
		if err := items.Scan(&nodeID, &raw); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		n := byID[nodeID]
		if !n.IsList() {
			return nil, fmt.Errorf("item for node %d which is not a list", nodeID)
		}
		v, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", nodeID, err)
		}
		n.Items = append(n.Items, v)
	}
	return root, items.Err()
}

// ReferencingPaths lists "path[idx]" for every item in the snapshot that
// references token (already normalized).
func ReferencingPaths(dbPath, token string) ([]string, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	rows, err := db.Query(`
		SELECT n.path, r.idx FROM node_refs r
		JOIN nodes n ON n.id = r.node_id
		WHERE r.token = ?
		ORDER BY r.node_id, r.idx`, token)
	if err != nil {
		return nil, fmt.Errorf("query refs: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var out []string
	for rows.Next() {
		var (
			path string
			idx  int
		)
		if err := rows.Scan(&path, &idx); err != nil {
			return nil, fmt.Errorf("scan ref: %w", err)
		}
		out = append(out, fmt.Sprintf("%s[%d]", path, idx))
	}
	return out, rows.Err()
}

// decodeValue reads a stored JSON value. JSON is valid YAML, and the YAML
// decoder keeps integral numbers as int.
func decodeValue(raw string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return v, nil
}
