package writeback

import (
	"bytes"
	"fmt"

	"github.com/agentic-research/wildcards/internal/ingest"
)

// Format rewrites a YAML or JSON wildcard document into the canonical
// layout Save produces. It reports whether the content changed.
func Format(content []byte) ([]byte, bool, error) {
	root, err := ingest.LoadYAML(content)
	if err != nil {
		return nil, false, err
	}
	out, err := ingest.DumpYAML(root)
	if err != nil {
		return nil, false, fmt.Errorf("encode: %w", err)
	}
	return out, !bytes.Equal(out, content), nil
}
