package grammar

import (
	"regexp"
	"strconv"
	"strings"
)

var numeric = regexp.MustCompile(`^\s*\d+(\.\d+)?\s*$`)

// IsNumeric reports whether s is a non-negative decimal number, optionally
// padded with whitespace.
func IsNumeric(s string) bool { return numeric.MatchString(s) }

// Choice is one "|"-separated option of a group.
type Choice struct {
	// Raw is the option text as written.
	Raw string
	// Offset of Raw in the text the group was parsed from.
	Offset int
	// Parts is Raw split at top-level "::".
	Parts []Segment
	// Weighted is set for the "weight::value" form.
	Weighted bool
	// Weight is 1 unless Weighted.
	Weight float64
	// Value is the part after "::" when Weighted, otherwise Raw.
	Value string
	// ValueOffset is the offset of Value.
	ValueOffset int
}

// Empty reports whether the option is blank.
func (c Choice) Empty() bool { return strings.TrimSpace(c.Raw) == "" }

// Group is the parsed body of a "{...}".
type Group struct {
	// Content is the text between the braces, at Offset.
	Content string
	Offset  int

	// Multi is set when Content has a top-level "$$": count$$[sep$$]options.
	Multi bool
	// CountSpec is the trimmed count part of a multiselect.
	CountSpec string
	// Separator joins multiselect picks. HasSeparator is false when the
	// group only has two "$$" parts.
	Separator    string
	HasSeparator bool

	// OptionsText is the "|" list, at OptionsOffset.
	OptionsText   string
	OptionsOffset int
	Options       []Choice
}

// ParseGroup parses the body of a selection group found at offset.
// Offsets in the result are absolute with respect to that same text.
func ParseGroup(content string, offset int) Group {
	g := Group{
		Content:       content,
		Offset:        offset,
		OptionsText:   content,
		OptionsOffset: offset,
	}

	if parts := Split(content, "$$"); len(parts) >= 2 {
		g.Multi = true
		g.CountSpec = strings.TrimSpace(parts[0].Text)
		rest := parts[1]
		if len(parts) >= 3 {
			g.Separator = parts[1].Text
			g.HasSeparator = true
			rest = parts[2]
		}
		// Further "$$" stay part of the options text.
		g.OptionsText = content[rest.Offset:]
		g.OptionsOffset = offset + rest.Offset
	}

	for _, seg := range Split(g.OptionsText, "|") {
		g.Options = append(g.Options, parseChoice(seg.Text, g.OptionsOffset+seg.Offset))
	}
	return g
}

func parseChoice(raw string, offset int) Choice {
	c := Choice{
		Raw:         raw,
		Offset:      offset,
		Parts:       Split(raw, "::"),
		Weight:      1,
		Value:       raw,
		ValueOffset: offset,
	}
	if len(c.Parts) == 2 && IsNumeric(c.Parts[0].Text) {
		c.Weighted = true
		w, err := strconv.ParseFloat(strings.TrimSpace(c.Parts[0].Text), 64)
		if err != nil || w < 0 {
			w = 0
		}
		c.Weight = w
		c.Value = c.Parts[1].Text
		c.ValueOffset = offset + c.Parts[1].Offset
	}
	return c
}
