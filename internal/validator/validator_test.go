package validator

import (
	"testing"

	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/grammar"
	"github.com/agentic-research/wildcards/internal/resolver"
	"github.com/agentic-research/wildcards/internal/tree"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *api.Node {
	return api.NewGroup("",
		api.NewList("colors", "red", "blue"),
		api.NewGroup("clothing",
			api.NewList("size", "small", "large"),
		),
		api.NewList("empty"),
	)
}

func check(t *testing.T, text string) []api.Issue {
	t.Helper()
	return New(nil).ValidateExpression(testTree(), text, []string{"item", "[0]"})
}

func messages(issues []api.Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = string(is.Severity) + ": " + is.Message
	}
	return out
}

func TestValidateExpression(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"clean selection", "{a|b|c}", nil},
		{"clean weighted", "{5::a|rare}", nil},
		{"plain text", "a red shirt", nil},
		{"empty braces once", "{}", []string{"error: Empty selection braces found"}},
		{"nested empty braces once", "{a|{ }}", []string{"error: Empty selection braces found"}},
		{"value before weight", "{a::5|rare}", []string{"error: Incorrect weighted selection syntax - weight must come FIRST"}},
		{"unclosed", "{a|b", []string{"error: Unmatched opening brace"}},
		{"two unclosed", "{a|{b", []string{"error: Unmatched opening braces"}},
		{"invalid count", "{x$$a|b}", []string{"error: Invalid multiselect count format"}},
		{"no options", "{2$$}", []string{"error: Multiselect has no options"}},
		{"no usable multiselect options", "{2$$ | }", []string{"error: Multiselect has no usable options"}},
		{"multiselect empty option", "{2$$a||b}", []string{"warning: Multiselect contains empty options"}},
		{"reversed range", "{5-2$$a|b|c|d|e|f}", []string{"warning: Multiselect range is reversed"}},
		{"count exceeds", "{3$$a|b}", []string{"warning: Multiselect count exceeds available options"}},
		{"single middle empty", "{a||b}", []string{"info: Selection contains empty options"}},
		{"several empties", "{a|||b}", []string{"warning: Selection contains empty options"}},
		{"edge empty is an idiom", "{|a}", nil},
		{"no usable selection options", "{ | }", []string{"error: Selection has no usable options"}},
		{"optional comma", "{, red|}", []string{"info: Optional syntax pattern detected"}},
		{"comma formatting", "{, a|, b|c}", []string{"info: Comma-prefix formatting detected"}},
		{"stray leading comma", "{, a|b|c}", []string{"warning: Options start with commas"}},
		{"multiple weight separators", "{a::b::c|d}", []string{"error: Multiple :: separators in weighted option"}},
		{"complex decimal", "{1.125::a|b}", []string{"warning: Complex decimal weights may cause issues"}},
		{"large quantifier", "25#__colors__", []string{"warning: Large quantifier may cause performance issues"}},
		{"missing reference", "__missing__", []string{"warning: Wildcard reference not found"}},
		{"group reference", "__clothing__", []string{"warning: Wildcard reference does not point to a list"}},
		{"empty reference", "__empty__", []string{"warning: Wildcard reference points to an empty list"}},
		{"pattern reference", "__*/size__", []string{"info: Pattern matching wildcard"}},
		{"glob reference", "__clothing/s*__", []string{"info: Pattern matching wildcard"}},
		{"folded reference", `__Clothing\SIZE__`, nil},
		{"spaces in reference", "__a b__", []string{
			"warning: Wildcard reference contains spaces",
			"warning: Wildcard reference not found",
		}},
		{"braces in reference", "__a{b__", []string{
			"error: Invalid characters in wildcard reference",
			"warning: Wildcard reference not found",
		}},
		{"double comma", "a,, b", []string{"warning: Consecutive commas found"}},
		{"double comma in optional context", "{a,|},, b", nil},
		{"comma chain", "{, a|}{, b|}", []string{
			"info: Optional syntax pattern detected",
			"info: Optional syntax pattern detected",
			"info: Adjacent comma-leading optionals detected",
		}},
		{"percentage", "50% chance", []string{"warning: Percentage sign found"}},
		{"detailer token", "face [SEP] hands", []string{"warning: Detailer control syntax detected"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := messages(check(t, tt.text))
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmatchedClosingBraceOffset(t *testing.T) {
	issues := check(t, "text } extra")
	require.Len(t, issues, 1)
	is := issues[0]
	assert.Equal(t, api.SeverityError, is.Severity)
	assert.Equal(t, "Unmatched closing brace", is.Message)
	assert.Equal(t, 5, is.Offset)
	assert.Equal(t, "Extra } at position 5", is.Suggestion)
	assert.Equal(t, "text } extra", is.Context)
	assert.Equal(t, "item → [0]", is.PathString())
}

func TestOffsetsCountCharacters(t *testing.T) {
	issues := check(t, "é } x")
	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].Offset)
	assert.Equal(t, "Extra } at position 2", issues[0].Suggestion)
}

func TestContextTruncation(t *testing.T) {
	text := "0123456789012345678901234567890 } 0123456789012345678901234567890"
	issues := check(t, text)
	require.Len(t, issues, 1)
	assert.Equal(t, "...2345678901234567890 } 012345678901234567...", issues[0].Context)
}

func TestNestedOptionOffsets(t *testing.T) {
	// The empty group is an option of the outer one.
	issues := check(t, "ab {x|{}}")
	require.Len(t, issues, 1)
	assert.Equal(t, "Empty selection braces found", issues[0].Message)
	assert.Equal(t, 6, issues[0].Offset)
}

func TestValidateTree(t *testing.T) {
	colors := api.NewList("colors", "red")
	colors.Items = append(colors.Items, 5, nil)
	root := api.NewGroup("",
		colors,
		api.NewGroup("g", api.NewList("items", "# comment {", "{a|b")),
		api.NewScalar("note", "ignored"),
	)

	v := New(nil)
	issues := v.Validate(root)
	require.Len(t, issues, 4)

	assert.Equal(t, []string{"colors", "[1]"}, issues[0].Path)
	assert.Equal(t, `Convert to string: "5"`, issues[0].Suggestion)
	assert.Equal(t, -1, issues[0].Offset)
	assert.Equal(t, `Convert to string: "null"`, issues[1].Suggestion)

	assert.Equal(t, "Comment line detected", issues[2].Message)
	assert.Equal(t, "g → items → [0]", issues[2].PathString())
	assert.Equal(t, "Unmatched opening brace", issues[3].Message)

	assert.Equal(t, api.IssueCounts{Errors: 3, Warnings: 0, Info: 1, Total: 4}, v.Counts())
}

func TestValidateIsIdempotent(t *testing.T) {
	root := api.NewGroup("",
		api.NewList("a", "{x||y}", "__missing__ {", "text } more", "{2$$a}"),
		api.NewGroup("b", api.NewList("c", "{, a|}{, b|}", "50%", "{5-2$$a|b}")),
	)
	v := New(nil)
	first := v.Validate(root)
	second := v.Validate(root)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second pass differs (-first +second):\n%s", diff)
	}
	assert.NotEmpty(t, first)
}

// A reference the validator accepts must resolve, and one it reports as
// missing must not.
func TestReferencesAgreeWithResolver(t *testing.T) {
	root := testTree()
	r := resolver.New(tree.Fixed{Root: root}, grammar.NewRand(1))
	for _, ref := range []string{"colors", "COLORS", `clothing\size`, "clothing/size", "missing", "clothing", "empty", "colors/red"} {
		expr := "__" + ref + "__"
		issues := New(nil).ValidateExpression(root, expr, nil)
		resolved := r.Process(expr) != resolver.NotFound
		assert.Equal(t, len(issues) == 0, resolved, "reference %q", ref)
	}
}

func FuzzValidateExpression(f *testing.F) {
	for _, seed := range []string{
		"{a|b}", "{}", "text } extra", "{2$$, $$a|b}", "__a__", "{{{", "}}}",
		"{, a|}{, b|}", "25#__colors__", "é{ü|", "a,, b", "{1.125::a|b::c::d}",
	} {
		f.Add(seed)
	}
	root := testTree()
	f.Fuzz(func(t *testing.T, text string) {
		first := New(nil).ValidateExpression(root, text, nil)
		second := New(nil).ValidateExpression(root, text, nil)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("non-deterministic issues for %q:\n%s", text, diff)
		}
		for _, is := range first {
			if is.Offset < -1 || is.Offset > len([]rune(text)) {
				t.Fatalf("offset %d out of range for %q", is.Offset, text)
			}
		}
	})
}
