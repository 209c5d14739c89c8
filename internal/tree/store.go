package tree

import (
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/grammar"
	"go.uber.org/zap"
)

// Source hands out the tree a resolver or validator should read.
type Source interface {
	Snapshot() *api.Node
}

// Fixed is a Source that always returns the same tree.
type Fixed struct{ Root *api.Node }

// Snapshot implements Source.
func (f Fixed) Snapshot() *api.Node { return f.Root }

// Entry is one list item that carries wildcard references.
type Entry struct {
	Keys  []string
	Index int
	Text  string
}

// Store is a thread-safe holder of the current tree. Snapshots are never
// mutated after publication: Update edits a clone and swaps it in, so
// readers holding an older snapshot keep a consistent view.
type Store struct {
	mu   sync.RWMutex
	root *api.Node
	log  *zap.Logger

	// Reverse index: normalized reference -> set of entry IDs.
	refs    map[string]*roaring.Bitmap
	entries []Entry
}

// NewStore wraps root. A nil root starts empty.
func NewStore(root *api.Node, log *zap.Logger) *Store {
	if root == nil {
		root = api.NewGroup("")
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{log: log}
	s.publish(root)
	return s
}

// Snapshot implements Source.
func (s *Store) Snapshot() *api.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Swap atomically replaces the current tree.
func (s *Store) Swap(root *api.Node) {
	if root == nil {
		root = api.NewGroup("")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(root)
}

// Update applies fn to a copy of the current tree and publishes the copy if
// fn succeeds. Updates are serialised.
func (s *Store) Update(fn func(root *api.Node) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.root.Clone()
	if err := fn(next); err != nil {
		return err
	}
	s.publish(next)
	return nil
}

// publish installs root and rebuilds the reference index.
// Must be called with s.mu held.
func (s *Store) publish(root *api.Node) {
	s.root = root
	s.refs = make(map[string]*roaring.Bitmap)
	s.entries = nil

	for _, leaf := range Leaves(root) {
		for i, item := range leaf.Node.Items {
			text, ok := item.(string)
			if !ok {
				continue
			}
			toks := grammar.Wildcards(text)
			if len(toks) == 0 {
				continue
			}
			id := uint32(len(s.entries))
			s.entries = append(s.entries, Entry{Keys: leaf.Keys, Index: i, Text: text})
			for _, tok := range toks {
				ref := Normalize(tok.Path)
				bm, exists := s.refs[ref]
				if !exists {
					bm = roaring.New()
					s.refs[ref] = bm
				}
				bm.Add(id)
			}
		}
	}
	s.log.Debug("tree published",
		zap.Int("entries", len(s.entries)),
		zap.Int("references", len(s.refs)))
}

// Refs returns the list items that reference ref. Pattern references
// ("*/name" and globs) that cover ref are included.
func (s *Store) Refs(ref string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target := Normalize(ref)
	ids := roaring.New()
	for token, bm := range s.refs {
		if covers(token, target) {
			ids.Or(bm)
		}
	}

	out := make([]Entry, 0, ids.GetCardinality())
	it := ids.Iterator()
	for it.HasNext() {
		out = append(out, s.entries[it.Next()])
	}
	return out
}

// Unreferenced lists the paths of leaf lists that no item references.
func (s *Store) Unreferenced() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, leaf := range Leaves(s.root) {
		target := strings.ToLower(leaf.Path)
		used := false
		for token := range s.refs {
			if covers(token, target) {
				used = true
				break
			}
		}
		if !used {
			out = append(out, leaf.Path)
		}
	}
	return out
}

// References returns every distinct normalized reference, sorted.
func (s *Store) References() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.refs))
	for token := range s.refs {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// covers reports whether a reference token would draw from the list at
// target (both normalized).
func covers(token, target string) bool {
	switch {
	case strings.HasPrefix(token, "*/"):
		return MatchesBasename(target, token[2:])
	case strings.Contains(token, "*"):
		ok, err := path.Match(token, target)
		return err == nil && ok
	default:
		return token == target
	}
}
