package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardmesh/internal/crawler"
	"cardmesh/internal/diag"
	"cardmesh/internal/graph"
	"cardmesh/internal/resolver"
)

func writeCards(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, text := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	}
	return root
}

func newIndexer(t *testing.T) *Indexer {
	t.Helper()
	r, err := resolver.NewDefault()
	require.NoError(t, err)
	return NewIndexer(crawler.NewCrawler(".link"), r, nil)
}

func TestIndexer_BuildGraph(t *testing.T) {
	root := writeCards(t, map[string]string{
		"app.link":                "load ./lib\n  find form user\n",
		"lib/base.link":           "form user\ntask save\n  hide\n",
		"deck/acme/kit/base.link": "deck @acme/kit\n  bear /lib\n",
		"notes.txt":               "not a card",
	})

	idx := newIndexer(t)
	g, b, err := idx.BuildGraph(root)
	require.NoError(t, err)

	assert.Len(t, g.Modules, 3)
	assert.Equal(t, int64(3), b.Stats.Parsed.Load(), "each card is parsed once per run")
	assert.Equal(t, graph.StateDeck, g.Modules[filepath.Join(root, "deck", "acme", "kit", "base.link")].State)
	assert.Empty(t, g.Unresolved)

	t.Run("JSON round trip", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "graph.json")
		require.NoError(t, idx.SaveGraph(g, out))

		loaded, err := idx.LoadGraph(out)
		require.NoError(t, err)
		assert.Len(t, loaded.Modules, 3)
		assert.Len(t, loaded.Lookup("user"), 1)
		assert.Equal(t, g.Edges, loaded.Edges)
	})
}

func TestIndexer_Strict(t *testing.T) {
	root := writeCards(t, map[string]string{
		"app.link":      "load ./lib\n  find form admin\n",
		"lib/base.link": "form user\n",
	})

	idx := newIndexer(t)
	g, _, err := idx.BuildGraph(root)
	require.NoError(t, err)
	assert.Equal(t, 1, g.UnresolvedReasonCounts()[graph.ReasonNoCandidate])

	idx.Strict = true
	_, b, err := idx.BuildGraph(root)
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.CodeModuleUnresolvable))
	assert.Equal(t, err, b.Err())
}

func TestIndexer_SyntaxError(t *testing.T) {
	root := writeCards(t, map[string]string{
		"bad.link": "form {user\n",
	})

	_, _, err := newIndexer(t).BuildGraph(root)
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.CodeSyntaxToken))

	e, _ := diag.As(err)
	assert.Equal(t, filepath.Join(root, "bad.link"), e.File)
}

func TestIndexer_LoadGraphMissing(t *testing.T) {
	_, err := newIndexer(t).LoadGraph(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
