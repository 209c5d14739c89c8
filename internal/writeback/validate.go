// Package writeback writes edited wildcard trees back to their source
// documents. Every write is syntax-checked before it replaces the file.
package writeback

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/hcl"
	"github.com/smacker/go-tree-sitter/yaml"
)

// SyntaxError locates a parse error in a document.
type SyntaxError struct {
	FilePath string
	Line     uint32 // 0-indexed
	Column   uint32 // 0-indexed
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line+1, e.Column+1, e.Message)
}

// Check parses content with the grammar for filePath and returns the first
// syntax error, if any. Paths without a known grammar pass.
func Check(content []byte, filePath string) error {
	errs, err := syntaxErrors(content, filePath, true)
	if err != nil {
		return err
	}
	if len(errs) == 0 {
		return nil
	}
	return &errs[0]
}

// SyntaxErrors returns every error location in content, for reporting.
func SyntaxErrors(content []byte, filePath string) []SyntaxError {
	errs, _ := syntaxErrors(content, filePath, false)
	return errs
}

func syntaxErrors(content []byte, filePath string, firstOnly bool) ([]SyntaxError, error) {
	lang := languageForPath(filePath)
	if lang == nil {
		return nil, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse %s: empty tree", filePath)
	}
	if !root.HasError() {
		return nil, nil
	}

	var errs []SyntaxError
	collectErrors(root, filePath, firstOnly, &errs)
	if len(errs) == 0 {
		errs = append(errs, SyntaxError{FilePath: filePath, Message: "document contains errors"})
	}
	return errs, nil
}

// collectErrors gathers ERROR and MISSING nodes depth-first without
// descending into them.
func collectErrors(node *sitter.Node, filePath string, firstOnly bool, errs *[]SyntaxError) {
	if node.IsError() || node.IsMissing() {
		msg := "syntax error"
		if node.IsMissing() {
			msg = fmt.Sprintf("missing %s", node.Type())
		}
		*errs = append(*errs, SyntaxError{
			FilePath: filePath,
			Line:     node.StartPoint().Row,
			Column:   node.StartPoint().Column,
			Message:  msg,
		})
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if firstOnly && len(*errs) > 0 {
			return
		}
		child := node.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			collectErrors(child, filePath, firstOnly, errs)
		}
	}
}

// languageForPath maps wildcard documents and config files to grammars.
// JSON is parsed as YAML.
func languageForPath(filePath string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml", ".json":
		return yaml.GetLanguage()
	case ".hcl":
		return hcl.GetLanguage()
	default:
		return nil
	}
}
