package api

import (
	"regexp"
	"strconv"
	"strings"
)

// Severity classifies a validation finding.
type Severity string

const (
	// SeverityError means the expression is malformed and will not resolve as intended.
	SeverityError Severity = "error"
	// SeverityWarning means it resolves but is likely unintended or fragile.
	SeverityWarning Severity = "warning"
	// SeverityInfo is notable but benign (comments, recognised idioms).
	SeverityInfo Severity = "info"
)

// Rank orders severities from most to least severe (error=0).
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// ParseSeverity accepts "error", "warning" or "info", case-insensitively.
func ParseSeverity(s string) (Severity, bool) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityError, SeverityWarning, SeverityInfo:
		return sev, true
	}
	return "", false
}

// FilterIssues keeps issues at least as severe as min. A min of "" or
// "all" keeps everything.
func FilterIssues(issues []Issue, min string) []Issue {
	sev, ok := ParseSeverity(min)
	if !ok {
		return issues
	}
	out := make([]Issue, 0, len(issues))
	for _, it := range issues {
		if it.Severity.Rank() <= sev.Rank() {
			out = append(out, it)
		}
	}
	return out
}

// PathSeparator joins issue path segments for display. Other tooling
// re-splits rendered paths on this exact token.
const PathSeparator = " → "

// Issue is one validator finding.
type Issue struct {
	Severity Severity `json:"severity"`
	// Path holds key segments; list positions appear as "[N]".
	Path       []string `json:"path"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion"`
	// Context is a short snippet around the finding, if any.
	Context string `json:"context,omitempty"`
	// Offset is the character offset inside the item, or -1.
	Offset int `json:"offset"`
}

// PathString renders the path with PathSeparator.
func (i Issue) PathString() string { return FormatPath(i.Path) }

// IssueCounts summarises an issue list for badges and filters.
type IssueCounts struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
	Total    int `json:"total"`
}

// CountIssues tallies issues by severity.
func CountIssues(issues []Issue) IssueCounts {
	var c IssueCounts
	for _, it := range issues {
		switch it.Severity {
		case SeverityError:
			c.Errors++
		case SeverityWarning:
			c.Warnings++
		case SeverityInfo:
			c.Info++
		}
	}
	c.Total = len(issues)
	return c
}

var indexSegment = regexp.MustCompile(`^\[\d+\]$`)

// FormatPath joins path segments with PathSeparator.
func FormatPath(path []string) string {
	return strings.Join(path, PathSeparator)
}

// ParsePath splits a rendered issue path back into tree keys, dropping
// blank and "[N]" index segments.
func ParsePath(s string) []string {
	var keys []string
	for _, part := range strings.Split(s, PathSeparator) {
		if strings.TrimSpace(part) == "" || indexSegment.MatchString(part) {
			continue
		}
		keys = append(keys, part)
	}
	return keys
}

// IndexSegment renders a list position as a path segment.
func IndexSegment(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
