package folder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		full := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0644))
	}
}

func TestSnapshot_ExcludesHiddenAndDependencyDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"index.js",
		"src/app.js",
		"src/lib/util.js",
		".env",
		".git/config",
		"node_modules/express/index.js",
		"vendor/pkg/pkg.go",
	)

	nodes := Snapshot(root)

	require.Len(t, nodes, 2)
	assert.Equal(t, "index.js", nodes[0].Name)
	assert.False(t, nodes[0].IsDir)
	assert.Equal(t, filepath.Join(root, "index.js"), nodes[0].Path)

	src := nodes[1]
	assert.Equal(t, "src", src.Name)
	assert.True(t, src.IsDir)
	require.Len(t, src.Children, 2)
	assert.Equal(t, "app.js", src.Children[0].Name)
	assert.Equal(t, "lib", src.Children[1].Name)

	assert.Equal(t, 3, CountFiles(nodes))
}

func TestSnapshot_MissingRoot(t *testing.T) {
	nodes := Snapshot(filepath.Join(t.TempDir(), "does-not-exist"))

	require.NotNil(t, nodes)
	assert.Empty(t, nodes)

	data, err := json.Marshal(nodes)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestNode_JSONShape(t *testing.T) {
	nodes := []Node{
		{Name: "a.txt", Path: "/p/a.txt"},
		{Name: "out", Path: "/p/out", IsDir: true, Children: []Node{
			{Name: "b.txt", Path: "/p/out/b.txt"},
		}},
		{Name: "empty", Path: "/p/empty", IsDir: true},
	}

	data, err := json.Marshal(nodes)
	require.NoError(t, err)
	assert.JSONEq(t, `["/p/a.txt", {"out": ["/p/out/b.txt"]}, {"empty": []}]`, string(data))

	var decoded []Node
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "a.txt", decoded[0].Name)
	assert.True(t, decoded[1].IsDir)
	assert.Equal(t, "/p/out/b.txt", decoded[1].Children[0].Path)
}

func TestNode_UnmarshalRejectsMultiKeyObject(t *testing.T) {
	var n Node
	err := json.Unmarshal([]byte(`{"a": [], "b": []}`), &n)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	nodes := []Node{
		{Name: "out", IsDir: true, Children: []Node{{Name: "a.txt", Path: "/p/out/a.txt"}}},
		{Name: "index.js", Path: "/p/index.js"},
	}

	assert.Equal(t, "out/\n  a.txt\nindex.js\n", Render(nodes))
}
