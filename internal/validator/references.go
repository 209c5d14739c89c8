package validator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/grammar"
	"github.com/agentic-research/wildcards/internal/tree"
)

// references checks every "__path__" token of the item against the tree,
// using the same lookup rules the resolver applies.
func (c *checker) references() {
	for _, tok := range grammar.Wildcards(c.text) {
		ref := tok.Path
		match := c.text[tok.Start:tok.End]

		if strings.ContainsAny(ref, "{}|") {
			c.add(api.SeverityError, tok.Start,
				"Invalid characters in wildcard reference",
				"Wildcard paths should not contain {, }, or |",
				match)
		}
		if strings.IndexFunc(ref, unicode.IsSpace) >= 0 {
			c.add(api.SeverityWarning, tok.Start,
				"Wildcard reference contains spaces",
				"Spaces in wildcard paths are unusual",
				match)
		}

		norm := tree.Normalize(ref)
		if strings.HasPrefix(norm, "*/") {
			c.add(api.SeverityInfo, tok.Start,
				"Pattern matching wildcard",
				fmt.Sprintf("__*/name__ matches any wildcard ending with %q at any depth", ref[2:]),
				match)
			continue
		}
		if strings.Contains(norm, "*") {
			c.add(api.SeverityInfo, tok.Start,
				"Pattern matching wildcard",
				fmt.Sprintf("__%s__ draws from every wildcard whose path matches the pattern", ref),
				match)
			continue
		}

		if strings.Trim(norm, "/ \t") == "" {
			continue
		}

		n := tree.Lookup(c.root, ref)
		switch {
		case n == nil:
			c.add(api.SeverityWarning, tok.Start,
				"Wildcard reference not found",
				fmt.Sprintf("No wildcard found for %q", ref),
				match)
		case !n.IsList():
			c.add(api.SeverityWarning, tok.Start,
				"Wildcard reference does not point to a list",
				fmt.Sprintf("%q should resolve to a list of options", ref),
				match)
		case len(n.Items) == 0:
			c.add(api.SeverityWarning, tok.Start,
				"Wildcard reference points to an empty list",
				fmt.Sprintf("%q has no options and resolves to [wildcard not found]", ref),
				match)
		}
	}
}
