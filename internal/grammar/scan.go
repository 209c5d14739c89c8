package grammar

import "strings"

// Token is one "__path__" wildcard reference found in a string.
type Token struct {
	// Path is the text between the delimiters.
	Path string
	// Start and End bound the whole token including both "__" pairs.
	Start, End int
}

// Wildcards finds wildcard references left to right. The path is non-empty
// and ends at the first "__" after its first character, so "__a___" reads
// as "a" followed by a stray underscore.
func Wildcards(text string) []Token {
	var out []Token
	i := 0
	for i+1 < len(text) {
		if !isDoubleUnderscore(text, i) {
			i++
			continue
		}
		j := strings.Index(text[i+2:], "__")
		if j < 0 {
			break
		}
		if j == 0 {
			// "____": the path would be empty, so retry one byte later.
			i++
			continue
		}
		end := i + 2 + j + 2
		out = append(out, Token{Path: text[i+2 : i+2+j], Start: i, End: end})
		i = end
	}
	return out
}

// Quantifier is an "N#__path__" shorthand for N repetitions of a reference.
type Quantifier struct {
	Count int
	Path  string
	// Start and End bound the whole "N#__path__" text.
	Start, End int
}

// Quantifiers finds quantified references. Paths are limited to word
// characters plus ". - + / * \".
func Quantifiers(text string) []Quantifier {
	var out []Quantifier
	i := 0
	for i < len(text) {
		if !isDigit(text[i]) {
			i++
			continue
		}
		j := i
		for j < len(text) && isDigit(text[j]) {
			j++
		}
		if !strings.HasPrefix(text[j:], "#__") {
			i = j
			continue
		}
		s := j + 3
		if s >= len(text) {
			break
		}
		k := strings.Index(text[s+1:], "__")
		if k < 0 {
			i = j
			continue
		}
		pathEnd := s + 1 + k
		path := text[s:pathEnd]
		if !isQuantifierPath(path) {
			i = j
			continue
		}
		out = append(out, Quantifier{
			Count: atoiSat(text[i:j]),
			Path:  path,
			Start: i,
			End:   pathEnd + 2,
		})
		i = pathEnd + 2
	}
	return out
}

func isQuantifierPath(p string) bool {
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', isDigit(c):
		case c == '_', c == '.', c == '-', c == '+', c == '/', c == '*', c == '\\':
		default:
			return false
		}
	}
	return true
}

// Span is one balanced top-level "{...}" group.
type Span struct {
	// Start is the offset of '{', End the offset just past the matching '}'.
	Start, End int
	// Content is the text between the braces.
	Content string
}

// GroupScan is the result of a top-level brace scan.
type GroupScan struct {
	// Groups are the closed top-level groups in order.
	Groups []Span
	// Stray holds offsets of '}' seen at depth zero.
	Stray []int
	// Unclosed is the brace depth left open at end of input.
	Unclosed int
	// UnclosedAt is the offset of the still-open top-level '{', or -1.
	UnclosedAt int
}

// Groups scans text for top-level brace groups. With wildcardAware set,
// braces inside "__...__" are ignored; the resolver's brace pass runs after
// wildcard substitution and scans without it.
func Groups(text string, wildcardAware bool) GroupScan {
	scan := GroupScan{UnclosedAt: -1}
	depth := 0
	start := -1
	inWildcard := false

	i := 0
	for i < len(text) {
		if wildcardAware && isDoubleUnderscore(text, i) {
			inWildcard = !inWildcard
			i += 2
			continue
		}
		if inWildcard {
			i++
			continue
		}
		switch text[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				scan.Stray = append(scan.Stray, i)
				break
			}
			depth--
			if depth == 0 {
				scan.Groups = append(scan.Groups, Span{
					Start:   start,
					End:     i + 1,
					Content: text[start+1 : i],
				})
			}
		}
		i++
	}

	if depth > 0 {
		scan.Unclosed = depth
		scan.UnclosedAt = start
	}
	return scan
}
