package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentic-research/wildcards/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataset = `colors:
  - red
  - blue
clothing:
  size: [S, M]
  outfit:
    - "__colors__ shirt, size __clothing/size__"
    - "{2$$ and $$__colors__|green}"
broken:
  - "{a|b"
`

// run executes the CLI in a scratch working directory so no stray config
// file is picked up.
func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "set.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateExitCodes(t *testing.T) {
	path := writeDataset(t, dataset)

	code, out, _ := run(t, "validate", path)
	assert.Equal(t, ExitIssues, code)
	assert.Contains(t, out, "✕ Unmatched opening brace")
	assert.Contains(t, out, "broken → [0]")
	assert.Contains(t, out, "1 error, 0 warnings, 0 info")

	code, _, _ = run(t, "validate", "--fail-on", "never", path)
	assert.Equal(t, ExitOK, code)

	code, out, _ = run(t, "validate", "--format", "json", "--fail-on", "never", path)
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, `"pathText": "broken → [0]"`)

	code, _, errOut := run(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, ExitFailed, code)
	assert.Contains(t, errOut, "Error:")

	code, _, _ = run(t, "validate", "--format", "xml", path)
	assert.Equal(t, ExitFailed, code)
}

func TestValidateManyFiles(t *testing.T) {
	bad := writeDataset(t, dataset)
	good := filepath.Join(filepath.Dir(bad), "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("colors: [red]\n"), 0o644))

	code, out, _ := run(t, "validate", good, bad)
	assert.Equal(t, ExitIssues, code)
	// Reports come out in argument order.
	assert.Less(t, strings.Index(out, good), strings.Index(out, bad))
	assert.Contains(t, out, "✓ No issues found")
}

func TestValidateUsesConfigFile(t *testing.T) {
	path := writeDataset(t, "a:\n  - \"# comment\"\n")
	require.NoError(t, os.WriteFile("wildcards.hcl", []byte("fail_on = \"warning\"\nmin_severity = \"warning\"\n"), 0o644))

	code, out, _ := run(t, "validate", path)
	assert.Equal(t, ExitOK, code, "info does not reach the warning threshold")
	assert.NotContains(t, out, "Comment line", "filtered by min_severity")
	assert.Contains(t, out, "0 errors, 0 warnings, 1 info")
}

func TestResolve(t *testing.T) {
	path := writeDataset(t, dataset)

	code, out, _ := run(t, "resolve", path, "__colors__", "--seed", "3", "-n", "4")
	require.Equal(t, ExitOK, code)
	lines := strings.Fields(out)
	assert.Len(t, lines, 4)
	for _, l := range lines {
		assert.Contains(t, []string{"red", "blue"}, l)
	}

	_, again, _ := run(t, "resolve", path, "__colors__", "--seed", "3", "-n", "4")
	assert.Equal(t, out, again)

	_, out, _ = run(t, "resolve", path, "__nope__")
	assert.Equal(t, "[wildcard not found]\n", out)

	_, out, _ = run(t, "resolve", path, "{x|y}", "--samples", "-n", "5")
	assert.ElementsMatch(t, []string{"x", "y"}, strings.Fields(out))
}

func TestBuildQueryRefs(t *testing.T) {
	path := writeDataset(t, dataset)
	db := filepath.Join(filepath.Dir(path), "set.db")

	code, out, _ := run(t, "build", path, db)
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "Wrote 4 lists, 7 items to "+db+"\n", out)

	code, out, _ = run(t, "query", db, "$.clothing.size")
	require.Equal(t, ExitOK, code)
	assert.JSONEq(t, `[["S", "M"]]`, out)

	code, out, _ = run(t, "refs", db, "__colors__")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "clothing/outfit[0]\nclothing/outfit[1]\n", out)

	code, out, _ = run(t, "refs", path, "Clothing/Size")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "clothing → outfit → [0]\t__colors__ shirt, size __clothing/size__\n", out)

	code, out, _ = run(t, "refs", path, "--unused")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "clothing/outfit\nbroken\n", out)

	code, _, _ = run(t, "refs", path)
	assert.Equal(t, ExitFailed, code)
}

func TestEditCommands(t *testing.T) {
	path := writeDataset(t, dataset)

	code, _, errOut := run(t, "set", path, "clothing/hats", "cap", "beanie")
	require.Equal(t, ExitOK, code, errOut)
	code, _, _ = run(t, "set", path, "colors", "green", "--append")
	require.Equal(t, ExitOK, code)
	code, _, _ = run(t, "mv", path, "broken", "fixed")
	require.Equal(t, ExitOK, code)
	code, _, _ = run(t, "rm", path, "clothing/size")
	require.Equal(t, ExitOK, code)

	root, err := ingest.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "blue", "green"}, root.Child("colors").Strings())
	assert.Equal(t, []string{"cap", "beanie"}, root.Child("clothing").Child("hats").Strings())
	assert.Nil(t, root.Child("clothing").Child("size"))
	assert.Nil(t, root.Child("broken"))
	assert.Equal(t, "fixed", root.Children[2].Key, "rename keeps position")

	code, _, errOut = run(t, "rm", path, "clothing/size")
	assert.Equal(t, ExitFailed, code)
	assert.Contains(t, errOut, "not found")

	code, _, _ = run(t, "mv", path, "colors", "fixed")
	assert.Equal(t, ExitFailed, code)
}

func TestFmt(t *testing.T) {
	path := writeDataset(t, "colors: [red, blue]\n")

	code, out, _ := run(t, "fmt", "--check", path)
	assert.Equal(t, ExitIssues, code)
	assert.Equal(t, path+"\n", out)

	code, _, _ = run(t, "fmt", path)
	require.Equal(t, ExitOK, code)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "colors:\n  - red\n  - blue\n", string(got))

	code, out, _ = run(t, "fmt", "--check", path)
	assert.Equal(t, ExitOK, code)
	assert.Empty(t, out)
}

func TestLint(t *testing.T) {
	path := writeDataset(t, "colors: [red]\ncolors: [blue]\n")

	code, out, _ := run(t, "lint", path)
	assert.Equal(t, ExitIssues, code)
	assert.Equal(t, path+":2:1: Duplicate key \"colors\"\n", out)

	// Not named wildcards.hcl, which the root command would load first.
	hcl := filepath.Join(filepath.Dir(path), "ci.hcl")
	require.NoError(t, os.WriteFile(hcl, []byte("format = \"xml\"\n"), 0o644))
	code, out, _ = run(t, "lint", hcl)
	assert.Equal(t, ExitIssues, code)
	assert.Contains(t, out, "format must be text or json")

	clean := filepath.Join(filepath.Dir(path), "clean.yaml")
	require.NoError(t, os.WriteFile(clean, []byte("colors: [red]\n"), 0o644))
	code, _, _ = run(t, "lint", clean)
	assert.Equal(t, ExitOK, code)
}
