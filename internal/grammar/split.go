// Package grammar holds the scanning primitives shared by the resolver and
// the validator: the top-level splitter, count specs, weighted choice, token
// scanners and the selection-group syntax tree.
//
// Every scanner here is a byte-level state machine. Wildcard mode is a parity
// toggle flipped by each "__" pair; while it is on, braces and delimiters are
// inert.
package grammar

import "strings"

// Segment is a piece of a split string together with its byte offset in the
// string that was split.
type Segment struct {
	Text   string
	Offset int
}

// SplitTopLevel splits input at every delimiter occurrence that sits at brace
// depth zero and outside wildcard mode. It always returns at least one element.
func SplitTopLevel(input, delimiter string) []string {
	segs := Split(input, delimiter)
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Text
	}
	return out
}

// Split is SplitTopLevel with offsets.
func Split(input, delimiter string) []Segment {
	var parts []Segment
	start := 0
	depth := 0
	inWildcard := false

	i := 0
	for i < len(input) {
		if isDoubleUnderscore(input, i) {
			inWildcard = !inWildcard
			i += 2
			continue
		}

		if !inWildcard {
			switch input[i] {
			case '{':
				depth++
			case '}':
				if depth > 0 {
					depth--
				}
			}

			if depth == 0 && delimiter != "" && strings.HasPrefix(input[i:], delimiter) {
				parts = append(parts, Segment{Text: input[start:i], Offset: start})
				i += len(delimiter)
				start = i
				continue
			}
		}
		i++
	}

	return append(parts, Segment{Text: input[start:], Offset: start})
}

func isDoubleUnderscore(s string, i int) bool {
	return i+1 < len(s) && s[i] == '_' && s[i+1] == '_'
}
