package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentic-research/wildcards/api"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
colors:
  - red
  - "{2$$, $$__colors__|blue}"
clothing:
  size: [small, large]
  shirts:
    size:
      - S
      - 42
      - true
note: plain scalar
empty: []
`

func TestLoadYAMLKeepsOrder(t *testing.T) {
	root, err := LoadYAML([]byte(sampleYAML))
	require.NoError(t, err)

	want := api.NewGroup("",
		api.NewList("colors", "red", "{2$$, $$__colors__|blue}"),
		api.NewGroup("clothing",
			api.NewList("size", "small", "large"),
			api.NewGroup("shirts", &api.Node{Key: "size", Kind: api.KindList, Items: []any{"S", 42, true}}),
		),
		api.NewScalar("note", "plain scalar"),
		api.NewList("empty"),
	)
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAMLEdgeCases(t *testing.T) {
	root, err := LoadYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, root.Children)

	_, err = LoadYAML([]byte("- a\n- b\n"))
	assert.ErrorIs(t, err, ErrRootNotMapping)

	_, err = LoadYAML([]byte("a: [unclosed"))
	assert.Error(t, err)

	root, err = LoadYAML([]byte("a: [1]\nb: [2]\na: [3]\n"))
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "a", root.Children[0].Key, "duplicate keeps first position")
	assert.Equal(t, []any{3}, root.Children[0].Items, "duplicate takes last value")

	root, err = LoadYAML([]byte("base: &b\n  x: [1]\nderived:\n  <<: *b\n  y: [2]\n"))
	require.NoError(t, err)
	derived := root.Child("derived")
	require.NotNil(t, derived)
	assert.NotNil(t, derived.Child("x"))
	assert.NotNil(t, derived.Child("y"))

	root, err = LoadYAML([]byte(`{"json": ["works"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"works"}, root.Child("json").Strings())
}

func TestDumpYAMLRoundTrip(t *testing.T) {
	root, err := LoadYAML([]byte(sampleYAML))
	require.NoError(t, err)

	out, err := DumpYAML(root)
	require.NoError(t, err)
	assert.Contains(t, string(out), "colors:\n  - red\n")
	assert.Contains(t, string(out), "empty: []")

	again, err := LoadYAML(out)
	require.NoError(t, err)
	if diff := cmp.Diff(root, again); diff != "" {
		t.Fatalf("round trip mismatch (-first +second):\n%s", diff)
	}

	out, err = DumpYAML(api.NewGroup("", api.NewList("quoted", "true", "007", "a: b")))
	require.NoError(t, err)
	again, err = LoadYAML(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"true", "007", "a: b"}, again.Child("quoted").Strings())
}

func TestLoadDir(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/colors.txt", []byte("\xef\xbb\xbfred\r\n\nblue\n# comment\n"), 0o644))
	require.NoError(t, util.WriteFile(fs, "/clothing/size.txt", []byte("small\nlarge"), 0o644))
	require.NoError(t, util.WriteFile(fs, "/clothing/extra.yaml", []byte("hats: [cap]\n"), 0o644))
	require.NoError(t, util.WriteFile(fs, "/README.md", []byte("ignored"), 0o644))

	root, err := LoadDir(fs, "/")
	require.NoError(t, err)

	assert.Equal(t, []string{"red", "blue", "# comment"}, root.Child("colors").Strings())
	clothing := root.Child("clothing")
	require.True(t, clothing.IsGroup())
	assert.Equal(t, []string{"cap"}, clothing.Child("hats").Strings())
	assert.Equal(t, []string{"small", "large"}, clothing.Child("size").Strings())
	assert.Nil(t, root.Child("README"))
}

func TestLoadDirBadYAML(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/bad.yaml", []byte("- just\n- a list\n"), 0o644))
	_, err := LoadDir(fs, "/")
	assert.ErrorIs(t, err, ErrRootNotMapping)
}

func TestSQLiteRoundTrip(t *testing.T) {
	root, err := LoadYAML([]byte(sampleYAML))
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "wildcards.db")
	require.NoError(t, Build(root, dbPath))
	// Rebuilding over an existing snapshot replaces it.
	require.NoError(t, Build(root, dbPath))

	loaded, err := LoadSQLite(dbPath)
	require.NoError(t, err)
	if diff := cmp.Diff(root, loaded); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	refs, err := ReferencingPaths(dbPath, "colors")
	require.NoError(t, err)
	assert.Equal(t, []string{"colors[1]"}, refs)
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "set.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sampleYAML), 0o644))
	root, err := Load(yamlPath)
	require.NoError(t, err)
	assert.NotNil(t, root.Child("colors"))

	txtPath := filepath.Join(dir, "animals.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("cat\ndog\n"), 0o644))
	root, err = Load(txtPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog"}, root.Child("animals").Strings())

	root, err = Load(dir)
	require.NoError(t, err)
	assert.NotNil(t, root.Child("animals"))
	assert.NotNil(t, root.Child("clothing"), "yaml keys merge into the directory group")

	_, err = Load(filepath.Join(dir, "x.toml"))
	assert.Error(t, err)

	tomlPath := filepath.Join(dir, "x.toml")
	require.NoError(t, os.WriteFile(tomlPath, nil, 0o644))
	_, err = Load(tomlPath)
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.True(t, IsDocument("a.YML"))
	assert.False(t, IsDocument("a.db"))
}

func TestQuery(t *testing.T) {
	root, err := LoadYAML([]byte(sampleYAML))
	require.NoError(t, err)

	got, err := Query(root, "$.clothing.size[*]")
	require.NoError(t, err)
	assert.Equal(t, []any{"small", "large"}, got)

	got, err = Query(root, "$..size[0]")
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"small", "S"}, got)

	_, err = Query(root, "$[")
	assert.Error(t, err)
}
