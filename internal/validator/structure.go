package validator

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/grammar"
)

// largeQuantifier is the repeat count above which a quantifier is flagged.
const largeQuantifier = 20

func (c *checker) quantifiers() {
	for _, q := range grammar.Quantifiers(c.text) {
		if q.Count <= largeQuantifier {
			continue
		}
		c.add(api.SeverityWarning, q.Start,
			"Large quantifier may cause performance issues",
			fmt.Sprintf("Quantifier %d#__%s__ will repeat %d times", q.Count, q.Path, q.Count),
			c.text[q.Start:q.End])
	}
}

// structure scans text (found at byte offset base of the item) for brace
// groups and validates each one. Stray braces and groups are reported in
// the order they appear.
func (c *checker) structure(text string, base int) {
	scan := grammar.Groups(text, true)

	stray := scan.Stray
	for _, g := range scan.Groups {
		closeAt := g.End - 1
		for len(stray) > 0 && stray[0] < closeAt {
			c.strayBrace(base + stray[0])
			stray = stray[1:]
		}
		c.group(g.Content, base+g.Start)
	}
	for _, off := range stray {
		c.strayBrace(base + off)
	}

	if scan.Unclosed > 0 {
		plural := ""
		if scan.Unclosed > 1 {
			plural = "s"
		}
		c.add(api.SeverityError, base+scan.UnclosedAt,
			"Unmatched opening brace"+plural,
			fmt.Sprintf("%d unclosed { brace%s", scan.Unclosed, plural),
			c.snippet(base+scan.UnclosedAt))
	}
}

func (c *checker) strayBrace(offset int) {
	pos := utf8.RuneCountInString(c.text[:offset])
	c.add(api.SeverityError, offset,
		"Unmatched closing brace",
		fmt.Sprintf("Extra } at position %d", pos),
		c.snippet(offset))
}

// group validates the body of one "{...}" whose '{' sits at offset.
func (c *checker) group(content string, offset int) {
	if strings.TrimSpace(content) == "" {
		c.emptyBraces = true
		c.add(api.SeverityError, offset,
			"Empty selection braces found",
			"Remove {} or add options",
			c.snippet(offset))
		return
	}

	g := grammar.ParseGroup(content, offset+1)
	ctx := "{" + content + "}"
	if g.Multi {
		c.multiselect(g, offset, ctx)
		return
	}
	c.selection(g, offset, ctx)
}

// emptyIndices returns the positions of blank options.
func emptyIndices(opts []grammar.Choice) []int {
	var out []int
	for i, o := range opts {
		if o.Empty() {
			out = append(out, i)
		}
	}
	return out
}

// singleEdgeEmpty reports the optional-segment idiom: exactly one blank
// option, first or last.
func singleEdgeEmpty(empties []int, n int) bool {
	return len(empties) == 1 && (empties[0] == 0 || empties[0] == n-1)
}

func (c *checker) multiselect(g grammar.Group, offset int, ctx string) {
	if !grammar.ValidCountSpec(g.CountSpec) {
		c.add(api.SeverityError, offset,
			"Invalid multiselect count format",
			fmt.Sprintf("Count must be number or range (e.g., \"2\", \"1-3\", \"-3\"), got: %q", g.CountSpec),
			ctx)
	}

	if strings.TrimSpace(g.OptionsText) == "" {
		c.add(api.SeverityError, offset,
			"Multiselect has no options",
			"Add options separated by |",
			ctx)
		return
	}

	empties := emptyIndices(g.Options)
	usable := len(g.Options) - len(empties)
	if usable == 0 {
		c.add(api.SeverityError, offset,
			"Multiselect has no usable options",
			"Add at least one non-empty option",
			ctx)
		return
	}
	if len(empties) > 0 && !singleEdgeEmpty(empties, len(g.Options)) {
		c.add(api.SeverityWarning, offset,
			"Multiselect contains empty options",
			"Remove extra | separators or move the empty option to the edge if intentional",
			ctx)
	}

	for _, o := range g.Options {
		if !o.Empty() {
			c.weightedOption(o, offset, ctx)
		}
	}

	if a, b, ok := grammar.FindRange(g.CountSpec); ok && a > b {
		c.add(api.SeverityWarning, offset,
			"Multiselect range is reversed",
			fmt.Sprintf("Swap to %d-%d", b, a),
			ctx)
	}

	if n, ok := grammar.LeadingInt(g.CountSpec); ok && n > usable {
		c.add(api.SeverityWarning, offset,
			"Multiselect count exceeds available options",
			"Count will be capped by option count",
			ctx)
	}
}

func (c *checker) selection(g grammar.Group, offset int, ctx string) {
	if len(g.Options) == 1 {
		c.structure(g.Options[0].Raw, g.Options[0].Offset)
		return
	}

	empties := emptyIndices(g.Options)
	usable := len(g.Options) - len(empties)
	if usable == 0 {
		c.add(api.SeverityError, offset,
			"Selection has no usable options",
			"Add at least one non-empty option",
			ctx)
		return
	}
	if len(empties) > 0 && !singleEdgeEmpty(empties, len(g.Options)) {
		sev := api.SeverityWarning
		if len(empties) == 1 {
			sev = api.SeverityInfo
		}
		c.add(sev, offset,
			"Selection contains empty options",
			`Empty options can be valid (selecting "nothing"), or may be unintentional extra | separators`,
			ctx)
	}

	for _, o := range g.Options {
		if !o.Empty() {
			c.weightedOption(o, offset, ctx)
		}
	}

	c.commaLeading(g, len(empties), usable, offset, ctx)
}

func (c *checker) commaLeading(g grammar.Group, empties, usable, offset int, ctx string) {
	leading := 0
	for _, o := range g.Options {
		if strings.HasPrefix(strings.TrimSpace(o.Raw), ",") {
			leading++
		}
	}
	if leading == 0 {
		return
	}

	switch {
	case empties > 0 && len(g.Options) == 2:
		c.add(api.SeverityInfo, offset,
			"Optional syntax pattern detected",
			"Pattern {, text|} or {text,|} creates optional comma-prefixed text",
			ctx)
	case float64(leading)/float64(usable) >= 0.66:
		c.add(api.SeverityInfo, offset,
			"Comma-prefix formatting detected",
			"Most options start with comma for text separation - likely intentional formatting",
			ctx)
	default:
		c.add(api.SeverityWarning, offset,
			"Options start with commas",
			"Leading commas can create double commas when combined with surrounding text",
			ctx)
	}
}

// weightedOption checks the "weight::value" form of one option and recurses
// into its value.
func (c *checker) weightedOption(o grammar.Choice, offset int, ctx string) {
	switch len(o.Parts) {
	case 1:
		c.structure(o.Raw, o.Offset)
		return
	case 2:
	default:
		c.add(api.SeverityError, offset,
			"Multiple :: separators in weighted option",
			"Use only one :: separator per option",
			ctx)
		return
	}

	first := strings.TrimSpace(o.Parts[0].Text)
	second := strings.TrimSpace(o.Parts[1].Text)
	firstNum := grammar.IsNumeric(first)

	if !firstNum && grammar.IsNumeric(second) {
		c.add(api.SeverityError, offset,
			"Incorrect weighted selection syntax - weight must come FIRST",
			fmt.Sprintf("Change %q to %q", o.Raw, second+"::"+first),
			ctx)
	}
	if firstNum {
		if _, frac, ok := strings.Cut(first, "."); ok && len(frac) > 2 {
			c.add(api.SeverityWarning, offset,
				"Complex decimal weights may cause issues",
				"Consider integer ratio instead of "+first,
				ctx)
		}
	}

	lead := len(o.Parts[1].Text) - len(strings.TrimLeftFunc(o.Parts[1].Text, unicode.IsSpace))
	c.structure(second, o.Offset+o.Parts[1].Offset+lead)
}
