package ingest

import (
	"fmt"

	"github.com/agentic-research/wildcards/api"
	"github.com/ohler55/ojg/jp"
)

// Query evaluates a JSONPath expression against the plain-value form of
// the tree (groups as objects, lists as arrays).
func Query(root *api.Node, selector string) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	return x.Get(root.Generic()), nil
}
