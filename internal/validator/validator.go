// Package validator statically checks every template string of a wildcard
// tree and reports structured issues.
package validator

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/agentic-research/wildcards/api"
	"go.uber.org/zap"
)

// Validator walks a tree and accumulates issues. It is not safe for
// concurrent use; create one per pass.
type Validator struct {
	log    *zap.Logger
	issues []api.Issue
}

// New returns a Validator. A nil logger discards output.
func New(log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{log: log}
}

// Validate checks every list item under root. Items are visited in
// document order and each item's issues are emitted in check order, so the
// result is deterministic. Previous results are discarded.
func (v *Validator) Validate(root *api.Node) []api.Issue {
	v.issues = nil
	v.walk(root, root, nil)
	v.log.Debug("validation complete",
		zap.Int("issues", len(v.issues)),
		zap.Int("errors", v.Counts().Errors))
	return slices.Clone(v.issues)
}

// ValidateExpression checks a single template string as if it were the
// list item at path. References resolve against root.
func (v *Validator) ValidateExpression(root *api.Node, text string, path []string) []api.Issue {
	v.issues = nil
	v.item(root, text, path)
	return slices.Clone(v.issues)
}

// Counts tallies the issues of the last pass.
func (v *Validator) Counts() api.IssueCounts {
	return api.CountIssues(v.issues)
}

func (v *Validator) walk(root, n *api.Node, path []string) {
	switch {
	case n.IsList():
		for i, it := range n.Items {
			p := append(path[:len(path):len(path)], api.IndexSegment(i))
			text, ok := it.(string)
			if !ok {
				v.issues = append(v.issues, api.Issue{
					Severity:   api.SeverityError,
					Path:       p,
					Message:    "Wildcard options must be strings",
					Suggestion: fmt.Sprintf("Convert to string: %q", display(it)),
					Offset:     -1,
				})
				continue
			}
			v.item(root, text, p)
		}
	case n.IsGroup():
		for _, c := range n.Children {
			v.walk(root, c, append(path[:len(path):len(path)], c.Key))
		}
	}
}

func display(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// item runs every check over one template string.
func (v *Validator) item(root *api.Node, text string, path []string) {
	if strings.HasPrefix(strings.TrimSpace(text), "#") {
		v.issues = append(v.issues, api.Issue{
			Severity:   api.SeverityInfo,
			Path:       path,
			Message:    "Comment line detected",
			Suggestion: "Lines starting with # are comments and will be ignored during processing",
			Offset:     -1,
		})
		return
	}

	c := &checker{root: root, text: text, path: path}
	c.quantifiers()
	c.structure(text, 0)
	c.references()
	c.heuristics()
	v.issues = append(v.issues, c.issues...)
}

// checker collects the issues of one item.
type checker struct {
	root   *api.Node
	text   string
	path   []string
	issues []api.Issue

	// emptyBraces is set once the structural pass reported "{}".
	emptyBraces bool
}

// add records an issue anchored at a byte offset of the item text, or -1.
func (c *checker) add(sev api.Severity, offset int, message, suggestion, context string) {
	pos := -1
	if offset >= 0 {
		pos = utf8.RuneCountInString(c.text[:min(offset, len(c.text))])
	}
	c.issues = append(c.issues, api.Issue{
		Severity:   sev,
		Path:       c.path,
		Message:    message,
		Suggestion: suggestion,
		Context:    context,
		Offset:     pos,
	})
}

const contextRadius = 20

// snippet returns up to contextRadius characters on each side of a byte
// offset, with "..." marking truncation.
func (c *checker) snippet(offset int) string {
	runes := []rune(c.text)
	pos := utf8.RuneCountInString(c.text[:min(offset, len(c.text))])
	start := max(0, pos-contextRadius)
	end := min(len(runes), pos+contextRadius)
	s := string(runes[start:end])
	if start > 0 {
		s = "..." + s
	}
	if end < len(runes) {
		s += "..."
	}
	return s
}
