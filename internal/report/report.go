// Package report renders validation issues for terminals and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/agentic-research/wildcards/api"
	"github.com/charmbracelet/lipgloss"
)

var (
	errorColor   = lipgloss.Color("#e53935")
	warningColor = lipgloss.Color("#FFC107")
	infoColor    = lipgloss.Color("#2196F3")
	successColor = lipgloss.Color("#8BC34A")
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
)

// Icon returns the one-character marker for a severity.
func Icon(s api.Severity) string {
	switch s {
	case api.SeverityError:
		return "✕"
	case api.SeverityWarning:
		return "⚠"
	default:
		return "ℹ"
	}
}

// Only keeps issues of exactly one severity. "" and "all" keep everything.
func Only(issues []api.Issue, severity string) []api.Issue {
	sev, ok := api.ParseSeverity(severity)
	if !ok {
		return issues
	}
	out := make([]api.Issue, 0, len(issues))
	for _, it := range issues {
		if it.Severity == sev {
			out = append(out, it)
		}
	}
	return out
}

// Text writes a human report for one source. Colors are used only when w
// is a terminal.
type Text struct {
	w        io.Writer
	severity map[api.Severity]lipgloss.Style
	path     lipgloss.Style
	muted    lipgloss.Style
	success  lipgloss.Style
	title    lipgloss.Style
}

func NewText(w io.Writer) *Text {
	r := lipgloss.NewRenderer(w)
	return &Text{
		w: w,
		severity: map[api.Severity]lipgloss.Style{
			api.SeverityError:   r.NewStyle().Foreground(errorColor).Bold(true),
			api.SeverityWarning: r.NewStyle().Foreground(warningColor).Bold(true),
			api.SeverityInfo:    r.NewStyle().Foreground(infoColor),
		},
		path:    r.NewStyle().Underline(true),
		muted:   r.NewStyle().Foreground(mutedColor),
		success: r.NewStyle().Foreground(successColor).Bold(true),
		title:   r.NewStyle().Bold(true),
	}
}

// Render writes every issue followed by a summary line. counts should
// describe the unfiltered run so the summary stays truthful when issues
// were filtered.
func (t *Text) Render(source string, issues []api.Issue, counts api.IssueCounts) error {
	var b strings.Builder
	if source != "" {
		b.WriteString(t.title.Render(source))
		b.WriteByte('\n')
	}
	if len(issues) == 0 {
		b.WriteString(t.success.Render("✓ No issues found"))
		b.WriteByte('\n')
	}
	for _, it := range issues {
		style := t.severity[it.Severity]
		fmt.Fprintf(&b, "%s %s\n", style.Render(Icon(it.Severity)), it.Message)
		if p := it.PathString(); p != "" {
			fmt.Fprintf(&b, "  %s\n", t.path.Render(p))
		}
		if it.Suggestion != "" {
			fmt.Fprintf(&b, "  %s\n", t.muted.Render(it.Suggestion))
		}
		if it.Context != "" {
			fmt.Fprintf(&b, "  %s\n", t.muted.Render(it.Context))
		}
	}
	b.WriteString(t.summary(counts))
	b.WriteByte('\n')
	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *Text) summary(c api.IssueCounts) string {
	parts := []string{
		t.severity[api.SeverityError].Render(plural(c.Errors, "error")),
		t.severity[api.SeverityWarning].Render(plural(c.Warnings, "warning")),
		t.severity[api.SeverityInfo].Render(fmt.Sprintf("%d info", c.Info)),
	}
	return strings.Join(parts, t.muted.Render(", "))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// Document is the JSON report shape.
type Document struct {
	Source string          `json:"source,omitempty"`
	Issues []jsonIssue     `json:"issues"`
	Counts api.IssueCounts `json:"counts"`
}

type jsonIssue struct {
	api.Issue
	// PathText is the joined path, the form editors navigate by.
	PathText string `json:"pathText"`
}

// JSON writes one indented Document.
func JSON(w io.Writer, source string, issues []api.Issue, counts api.IssueCounts) error {
	doc := Document{Source: source, Issues: make([]jsonIssue, 0, len(issues)), Counts: counts}
	for _, it := range issues {
		if it.Path == nil {
			it.Path = []string{}
		}
		doc.Issues = append(doc.Issues, jsonIssue{Issue: it, PathText: it.PathString()})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}
