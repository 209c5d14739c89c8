package grammar

import (
	"math"
	"regexp"
	"strings"
)

var (
	countFormat  = regexp.MustCompile(`^\s*-?\d+(\s*-\s*\d+)?\s*$`)
	rangeAnyware = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)
)

// ParseCountSpec interprets a multiselect count against maxOptions:
//
//	""     -> 0
//	"-N"   -> uniform in [1, min(N, maxOptions)]
//	"A-B"  -> uniform in [min(A,max), min(B,max)]; a reversed range yields the lower bound
//	"N"    -> min(N, maxOptions)
//	other  -> 0
func ParseCountSpec(spec string, maxOptions int, rng Rand) int {
	s := strings.TrimSpace(spec)
	if s == "" {
		return 0
	}

	if n, ok := negativeCount(s); ok {
		hi := min(n, maxOptions)
		if hi < 1 {
			return 1
		}
		return rng.IntN(hi) + 1
	}

	if a, b, ok := parseRange(s); ok {
		lo := min(a, maxOptions)
		hi := min(b, maxOptions)
		if hi < lo {
			return lo
		}
		if lo < 0 {
			return 0
		}
		return lo + rng.IntN(hi-lo+1)
	}

	if n, ok := LeadingInt(s); ok {
		return max(0, min(n, maxOptions))
	}
	return 0
}

// ValidCountSpec reports whether spec has the shape "N", "-N" or "A-B".
func ValidCountSpec(spec string) bool {
	return countFormat.MatchString(spec)
}

// FindRange returns the first "A-B" pair anywhere in spec.
func FindRange(spec string) (a, b int, ok bool) {
	m := rangeAnyware.FindStringSubmatch(spec)
	if m == nil {
		return 0, 0, false
	}
	return atoiSat(m[1]), atoiSat(m[2]), true
}

// LeadingInt parses an optional sign followed by digits at the start of s
// (after leading whitespace), ignoring whatever follows. Overflow saturates.
func LeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\r\n\f\v")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n := atoiSat(s[:end])
	if neg {
		n = -n
	}
	return n, true
}

// negativeCount matches "-N" with nothing else around it.
func negativeCount(s string) (int, bool) {
	if len(s) < 2 || s[0] != '-' || !allDigits(s[1:]) {
		return 0, false
	}
	return atoiSat(s[1:]), true
}

// parseRange matches "A-B" with optional whitespace around the dash.
func parseRange(s string) (a, b int, ok bool) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 {
		return 0, 0, false
	}
	left := s[:i]
	rest := strings.TrimLeft(s[i:], " \t")
	if rest == "" || rest[0] != '-' {
		return 0, 0, false
	}
	right := strings.TrimLeft(rest[1:], " \t")
	if !allDigits(right) {
		return 0, 0, false
	}
	return atoiSat(left), atoiSat(right), true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// atoiSat converts a run of ASCII digits, saturating at math.MaxInt.
func atoiSat(digits string) int {
	n := 0
	for i := 0; i < len(digits); i++ {
		d := int(digits[i] - '0')
		if n > (math.MaxInt-d)/10 {
			return math.MaxInt
		}
		n = n*10 + d
	}
	return n
}
