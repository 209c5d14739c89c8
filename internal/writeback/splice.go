package writeback

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/ingest"
)

// Save serializes root as YAML, checks the result parses, and atomically
// replaces path with it.
func Save(path string, root *api.Node) error {
	if !ingest.IsDocument(path) {
		return fmt.Errorf("%s: %w", path, ingest.ErrUnsupported)
	}
	out, err := ingest.DumpYAML(root)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	// Output is always YAML, even when the document was JSON.
	if err := Check(out, ".yaml"); err != nil {
		return fmt.Errorf("refusing to write %s: %w", path, err)
	}
	return WriteFile(path, out)
}

// WriteFile replaces path with data. The write is atomic: content goes to a
// temp file in the same directory first, then is renamed over path.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".wildcards-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	_ = os.Chmod(tmpName, mode) // best-effort permission sync

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", path, err)
	}
	return nil
}
