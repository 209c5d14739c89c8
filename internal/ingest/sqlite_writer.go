package ingest

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/grammar"
	"github.com/agentic-research/wildcards/internal/tree"
	_ "modernc.org/sqlite"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS nodes (
	id INTEGER PRIMARY KEY,
	parent_id INTEGER,
	name TEXT NOT NULL,
	kind INTEGER NOT NULL,
	path TEXT NOT NULL,
	value JSON
);
CREATE INDEX IF NOT EXISTS idx_parent ON nodes(parent_id);

CREATE TABLE IF NOT EXISTS items (
	node_id INTEGER NOT NULL,
	idx INTEGER NOT NULL,
	value JSON NOT NULL,
	PRIMARY KEY (node_id, idx)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS node_refs (
	token TEXT,
	node_id INTEGER,
	idx INTEGER,
	PRIMARY KEY (token, node_id, idx)
) WITHOUT ROWID;
`

// SQLiteWriter writes a tree snapshot in batched transactions.
type SQLiteWriter struct {
	db        *sql.DB
	tx        *sql.Tx
	stmtNode  *sql.Stmt
	stmtItem  *sql.Stmt
	stmtRef   *sql.Stmt
	batchSize int
	count     int
	nextID    int64
	mu        sync.Mutex
}

// NewSQLiteWriter creates a writer and initializes the schema.
func NewSQLiteWriter(dbPath string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Bulk insert tuning; the snapshot is rebuilt from source on failure.
	for _, pragma := range []string{"PRAGMA synchronous = OFF", "PRAGMA journal_mode = MEMORY"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &SQLiteWriter{db: db, batchSize: 10000}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLiteWriter) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return err
	}
	w.stmtNode, err = w.tx.Prepare(`
		INSERT INTO nodes (id, parent_id, name, kind, path, value)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	w.stmtItem, err = w.tx.Prepare(`INSERT INTO items (node_id, idx, value) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	w.stmtRef, err = w.tx.Prepare(`INSERT OR IGNORE INTO node_refs (token, node_id, idx) VALUES (?, ?, ?)`)
	return err
}

func (w *SQLiteWriter) commitTx() error {
	for _, st := range []*sql.Stmt{w.stmtNode, w.stmtItem, w.stmtRef} {
		if st != nil {
			_ = st.Close()
		}
	}
	return w.tx.Commit()
}

// tick counts one write and rolls the transaction over at batchSize.
// Must be called with w.mu held.
func (w *SQLiteWriter) tick() error {
	w.count++
	if w.count < w.batchSize {
		return nil
	}
	w.count = 0
	if err := w.commitTx(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return w.beginTx()
}

// AddNode writes n under parentID (0 for top level) and returns its ID.
// Children and items are not written.
func (w *SQLiteWriter) AddNode(parentID int64, n *api.Node, path string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	id := w.nextID

	var parent any
	if parentID > 0 {
		parent = parentID
	}
	var value any
	if n.Kind == api.KindScalar {
		raw, err := json.Marshal(n.Value)
		if err != nil {
			return 0, fmt.Errorf("encode %s: %w", path, err)
		}
		value = string(raw)
	}

	if _, err := w.stmtNode.Exec(id, parent, n.Key, int(n.Kind), path, value); err != nil {
		return 0, fmt.Errorf("insert node %s: %w", path, err)
	}
	return id, w.tick()
}

// AddItem writes one list item.
func (w *SQLiteWriter) AddItem(nodeID int64, idx int, item any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item %d: %w", idx, err)
	}
	if _, err := w.stmtItem.Exec(nodeID, idx, string(raw)); err != nil {
		return fmt.Errorf("insert item %d: %w", idx, err)
	}
	return w.tick()
}

// AddRef records that item idx of nodeID references token.
func (w *SQLiteWriter) AddRef(token string, nodeID int64, idx int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.stmtRef.Exec(token, nodeID, idx); err != nil {
		return fmt.Errorf("insert ref %s: %w", token, err)
	}
	return w.tick()
}

// Close commits pending writes and closes the database.
func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.commitTx()
	if cerr := w.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// Build writes root to a fresh snapshot database at dbPath, replacing any
// existing file.
func Build(root *api.Node, dbPath string) error {
	if err := os.Remove(dbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove old snapshot: %w", err)
	}
	w, err := NewSQLiteWriter(dbPath)
	if err != nil {
		return err
	}
	if err := writeChildren(w, 0, root, nil); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func writeChildren(w *SQLiteWriter, parentID int64, g *api.Node, keys []string) error {
	for _, c := range g.Children {
		k := append(keys[:len(keys):len(keys)], c.Key)
		id, err := w.AddNode(parentID, c, strings.Join(k, "/"))
		if err != nil {
			return err
		}
		switch c.Kind {
		case api.KindGroup:
			if err := writeChildren(w, id, c, k); err != nil {
				return err
			}
		case api.KindList:
			for i, item := range c.Items {
				if err := w.AddItem(id, i, item); err != nil {
					return err
				}
				s, ok := item.(string)
				if !ok {
					continue
				}
				for _, tok := range grammar.Wildcards(s) {
					if err := w.AddRef(tree.Normalize(tok.Path), id, i); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
