package writeback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_ValidYAML(t *testing.T) {
	src := []byte("colors:\n  - red\n  - \"{a|b}\"\n")
	assert.NoError(t, Check(src, "set.yaml"))
	assert.NoError(t, Check([]byte(`{"a": ["b"]}`), "set.json"))
}

func TestCheck_BrokenYAML(t *testing.T) {
	src := []byte("colors: [red, blue\nsize: [small]\n")
	err := Check(src, "set.yaml")
	require.Error(t, err)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "set.yaml", se.FilePath)
	assert.NotEmpty(t, SyntaxErrors(src, "set.yaml"))
}

func TestCheck_HCL(t *testing.T) {
	assert.NoError(t, Check([]byte("max_depth = 12\n"), "wildcards.hcl"))
	assert.Error(t, Check([]byte("max_depth = = \n"), "wildcards.hcl"))
}

func TestCheck_UnknownExtensionPasses(t *testing.T) {
	assert.NoError(t, Check([]byte("{{{"), "notes.txt"))
	assert.Nil(t, SyntaxErrors([]byte("{{{"), "notes.txt"))
}

func TestWriteFile_PreservesMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "set.yaml")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	require.NoError(t, WriteFile(path, []byte("new")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "set.yaml")
	root := api.NewGroup("",
		api.NewList("colors", "red", "{2$$__colors__|blue}"),
		api.NewGroup("clothing", api.NewList("size", "S", "M")),
	)
	require.NoError(t, Save(path, root))

	loaded, err := ingest.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "{2$$__colors__|blue}"}, loaded.Child("colors").Strings())
	assert.Equal(t, []string{"S", "M"}, loaded.Child("clothing").Child("size").Strings())

	err = Save(filepath.Join(t.TempDir(), "set.db"), root)
	assert.ErrorIs(t, err, ingest.ErrUnsupported)
}

func TestFormat(t *testing.T) {
	out, changed, err := Format([]byte("colors: [red, blue]\n"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "colors:\n  - red\n  - blue\n", string(out))

	again, changed, err := Format(out)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, out, again)

	_, _, err = Format([]byte("- not\n- a mapping\n"))
	assert.ErrorIs(t, err, ingest.ErrRootNotMapping)
}
