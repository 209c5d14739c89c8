package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/agentic-research/wildcards/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []api.Issue{
	{
		Severity:   api.SeverityError,
		Path:       []string{"clothing", "shirts", "[2]"},
		Message:    "Empty braces {}",
		Suggestion: "Remove empty braces or add options",
		Context:    "a {} b",
		Offset:     2,
	},
	{
		Severity:   api.SeverityInfo,
		Path:       []string{"colors", "[0]"},
		Message:    "Comment line detected",
		Suggestion: "This line will be ignored",
		Offset:     -1,
	},
}

func TestTextRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewText(&buf).Render("set.yaml", sample, api.CountIssues(sample)))

	want := "set.yaml\n" +
		"✕ Empty braces {}\n" +
		"  clothing → shirts → [2]\n" +
		"  Remove empty braces or add options\n" +
		"  a {} b\n" +
		"ℹ Comment line detected\n" +
		"  colors → [0]\n" +
		"  This line will be ignored\n" +
		"1 error, 0 warnings, 1 info\n"
	assert.Equal(t, want, buf.String())
}

func TestTextRenderClean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewText(&buf).Render("", nil, api.IssueCounts{}))
	assert.Equal(t, "✓ No issues found\n0 errors, 0 warnings, 0 info\n", buf.String())
}

func TestOnly(t *testing.T) {
	assert.Len(t, Only(sample, "all"), 2)
	assert.Len(t, Only(sample, ""), 2)
	got := Only(sample, "info")
	require.Len(t, got, 1)
	assert.Equal(t, "Comment line detected", got[0].Message)
	assert.Empty(t, Only(sample, "warning"))
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, "set.yaml", sample, api.CountIssues(sample)))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "set.yaml", doc["source"])

	issues := doc["issues"].([]any)
	require.Len(t, issues, 2)
	first := issues[0].(map[string]any)
	assert.Equal(t, "error", first["severity"])
	assert.Equal(t, "clothing → shirts → [2]", first["pathText"])
	assert.Equal(t, []any{"clothing", "shirts", "[2]"}, first["path"])
	assert.Equal(t, float64(2), first["offset"])

	counts := doc["counts"].(map[string]any)
	assert.Equal(t, float64(2), counts["total"])

	buf.Reset()
	require.NoError(t, JSON(&buf, "", nil, api.IssueCounts{}))
	assert.Contains(t, buf.String(), `"issues": []`)
}
