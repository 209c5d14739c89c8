// Package linter reports problems in wildcard YAML source that the loader
// silently tolerates.
package linter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/yaml"
)

type Diagnostic struct {
	Message string
	Line    uint32
	Column  uint32
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line+1, d.Message)
}

// Lint parses YAML source and reports duplicate keys within a mapping and
// keys that have no value. Diagnostics are in source order.
func Lint(content []byte) ([]Diagnostic, error) {
	lang := yaml.GetLanguage()
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	root := tree.RootNode()

	var diags []Diagnostic
	duplicateKeys(root, content, &diags)

	// Rule 2: "key:" with nothing after it loads as null, which is neither a
	// list nor a group and so can never be referenced.
	q, err := sitter.NewQuery([]byte(`(block_mapping_pair key: (_) @key) @pair`), lang)
	if err != nil {
		return nil, err
	}
	qc := sitter.NewQueryCursor()
	qc.Exec(q, root)
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var key, pair *sitter.Node
		for _, c := range m.Captures {
			switch q.CaptureNameForId(c.Index) {
			case "key":
				key = c.Node
			case "pair":
				pair = c.Node
			}
		}
		if key == nil || pair == nil || pair.ChildByFieldName("value") != nil {
			continue
		}
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("Key %q has no value", keyText(key, content)),
			Line:    key.StartPoint().Row,
			Column:  key.StartPoint().Column,
		})
	}

	sortDiagnostics(diags)
	return diags, nil
}

// Rule 1: a key repeated inside one mapping. The loader keeps the last
// value, so the earlier entry is lost.
func duplicateKeys(n *sitter.Node, src []byte, diags *[]Diagnostic) {
	switch n.Type() {
	case "block_mapping", "flow_mapping":
		seen := map[string]bool{}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			pair := n.NamedChild(i)
			if pair.Type() != "block_mapping_pair" && pair.Type() != "flow_pair" {
				continue
			}
			key := pair.ChildByFieldName("key")
			if key == nil {
				continue
			}
			name := keyText(key, src)
			if seen[name] {
				*diags = append(*diags, Diagnostic{
					Message: fmt.Sprintf("Duplicate key %q", name),
					Line:    key.StartPoint().Row,
					Column:  key.StartPoint().Column,
				})
			}
			seen[name] = true
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		duplicateKeys(n.NamedChild(i), src, diags)
	}
}

// keyText returns the unquoted text of a mapping key.
func keyText(key *sitter.Node, src []byte) string {
	s := strings.TrimSpace(key.Content(src))
	switch {
	case len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"':
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	case len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'':
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

func sortDiagnostics(diags []Diagnostic) {
	for i := 1; i < len(diags); i++ {
		for j := i; j > 0 && before(diags[j], diags[j-1]); j-- {
			diags[j], diags[j-1] = diags[j-1], diags[j]
		}
	}
}

func before(a, b Diagnostic) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}
