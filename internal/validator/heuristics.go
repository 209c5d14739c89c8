package validator

import (
	"regexp"

	"github.com/agentic-research/wildcards/api"
)

var (
	emptyBracesRe   = regexp.MustCompile(`\{\s*\}`)
	doubleCommaRe   = regexp.MustCompile(`,\s*,`)
	optionalCtxRe   = regexp.MustCompile(`(\{[^{}]*?,\|[^{}]*?\}|\{[^{}]*\|\})`)
	commaChainRe    = regexp.MustCompile(`(\{[^{}]*?(::)?\s*,[^{}]*?\|\}\s*){2,}`)
	percentageRe    = regexp.MustCompile(`\d+%`)
	detailerTokenRe = regexp.MustCompile(`\[(SEP|SKIP|STOP|CONCAT|LAB|ALL)\]`)
)

// heuristics flags patterns that are syntactically fine but usually wrong.
func (c *checker) heuristics() {
	if loc := emptyBracesRe.FindStringIndex(c.text); loc != nil && !c.emptyBraces {
		c.add(api.SeverityError, loc[0],
			"Empty selection braces found",
			"Remove {} or add options",
			c.text[loc[0]:loc[1]])
	}

	if loc := doubleCommaRe.FindStringIndex(c.text); loc != nil {
		before := c.text[max(0, loc[0]-20):loc[0]]
		after := c.text[loc[1]:max(loc[1], min(len(c.text), loc[0]+30))]
		if !optionalCtxRe.MatchString(before + c.text[loc[0]:loc[1]] + after) {
			c.add(api.SeverityWarning, loc[0],
				"Consecutive commas found",
				"Consecutive commas often mean an empty token; check optional segments",
				c.text[loc[0]:loc[1]])
		}
	}

	if loc := commaChainRe.FindStringIndex(c.text); loc != nil {
		c.add(api.SeverityInfo, loc[0],
			"Adjacent comma-leading optionals detected",
			"Back-to-back {, ...|} segments can expand to consecutive commas - this may be intentional",
			c.text[loc[0]:loc[1]])
	}

	if loc := percentageRe.FindStringIndex(c.text); loc != nil {
		c.add(api.SeverityWarning, loc[0],
			"Percentage sign found",
			"Use ratio syntax: {10::common|1::rare} (not percentages)",
			c.text[loc[0]:loc[1]])
	}

	if loc := detailerTokenRe.FindStringIndex(c.text); loc != nil {
		c.add(api.SeverityWarning, loc[0],
			"Detailer control syntax detected",
			"Detailer syntax ([SEP], [SKIP], etc.) only works in Detailer nodes",
			c.text[loc[0]:loc[1]])
	}
}
