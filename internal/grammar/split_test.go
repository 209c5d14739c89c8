package grammar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTopLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		delim string
		want  []string
	}{
		{"plain", "a|b|c", "|", []string{"a", "b", "c"}},
		{"nested braces", "a|{b|c}|d", "|", []string{"a", "{b|c}", "d"}},
		{"inside wildcard", "__x|y__|z", "|", []string{"__x|y__", "z"}},
		{"weight separator", "a::b::c", "::", []string{"a", "b", "c"}},
		{"multiselect", "2$$, $$a|b", "$$", []string{"2", ", ", "a|b"}},
		{"empty input", "", "|", []string{""}},
		{"edge delimiters", "|a|", "|", []string{"", "a", ""}},
		{"stray close clamps", "}a|b", "|", []string{"}a", "b"}},
		{"unclosed keeps rest", "{a|b", "|", []string{"{a|b"}},
		{"empty delimiter", "a|b", "", []string{"a|b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTopLevel(tt.input, tt.delim))
		})
	}
}

func TestSplitRoundTrip(t *testing.T) {
	inputs := []string{
		"a|b|c",
		"{a|{b|c}}|d|__e|f__",
		"||",
		"x",
		"2$$ $$__a__|{b|c}",
	}
	for _, in := range inputs {
		for _, d := range []string{"|", "$$", "::"} {
			assert.Equal(t, in, strings.Join(SplitTopLevel(in, d), d), "input %q delim %q", in, d)
		}
	}
}

func TestSplitOffsets(t *testing.T) {
	segs := Split("ab|{c|d}|e", "|")
	assert.Equal(t, []Segment{
		{Text: "ab", Offset: 0},
		{Text: "{c|d}", Offset: 3},
		{Text: "e", Offset: 9},
	}, segs)
}
