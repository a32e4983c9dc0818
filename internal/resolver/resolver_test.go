package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardmesh/internal/card"
	"cardmesh/internal/deck"
	"cardmesh/internal/diag"
	"cardmesh/internal/mesh"
	"cardmesh/internal/scope"
)

func newRun(t *testing.T, files map[string]string) (*Resolver, *card.Base, *card.MemoryLoader) {
	t.Helper()
	r, err := NewDefault()
	require.NoError(t, err)
	l := card.NewMemoryLoader("/p", files)
	return r, card.NewBase(l, nil), l
}

func module(t *testing.T, b *card.Base, path string) *mesh.Module {
	t.Helper()
	c, ok := b.Cards.Lookup(path)
	require.True(t, ok, "%s is not registered", path)
	m, ok := Module(b, c)
	require.True(t, ok, "%s is not promoted", path)
	return m
}

func TestHandle_ParsesEachCardOnce(t *testing.T) {
	r, b, l := newRun(t, map[string]string{
		"/p/a.link": "load ./b\nload ./c\n",
		"/p/b.link": "host x 1\n",
		"/p/c.link": "load ./b\n",
	})

	require.NoError(t, r.Handle(b, "/p/a.link"))
	assert.Equal(t, int64(3), b.Stats.Parsed.Load())
	assert.Equal(t, int64(3), b.Stats.Promoted.Load())
	assert.Equal(t, int64(1), b.Stats.Skipped.Load())
	assert.Equal(t, 1, l.Reads["/p/b.link"])

	require.NoError(t, r.Handle(b, "/p/a.link"))
	require.NoError(t, r.Handle(b, "/p/./b.link"))
	assert.Equal(t, int64(3), b.Stats.Parsed.Load(), "a second request is a no-op")
	assert.Equal(t, int64(3), b.Stats.Skipped.Load())
	assert.Equal(t, 1, l.Reads["/p/a.link"])
	assert.Equal(t, 3, b.Cards.Len())
}

func TestHandle_Cycle(t *testing.T) {
	r, b, _ := newRun(t, map[string]string{
		"/p/a.link": "bear ./b\nform user\n",
		"/p/b.link": "load ./a\n  find form user\n",
	})

	require.NoError(t, r.Handle(b, "/p/a.link"))
	assert.Equal(t, int64(2), b.Stats.Parsed.Load())
	assert.Equal(t, int64(2), b.Stats.Promoted.Load())

	a := module(t, b, "/p/a.link")
	require.Len(t, a.Exports, 1)
	assert.Equal(t, "/p/b.link", a.Exports[0].Path)

	m := module(t, b, "/p/b.link")
	require.Len(t, m.Imports, 1)
	assert.Equal(t, []mesh.Selection{{Kind: mesh.Class, Name: "user"}}, m.Imports[0].Selections)
}

func TestHandle_ImportsBeforeExports(t *testing.T) {
	r, b, _ := newRun(t, map[string]string{
		"/p/a.link": "bear ./c\nload ./b\n",
		"/p/b.link": "",
		"/p/c.link": "",
	})

	require.NoError(t, r.Handle(b, "/p/a.link"))
	assert.Equal(t, []string{"/p/a.link", "/p/b.link", "/p/c.link"}, b.Cards.Paths())
}

func TestHandle_Visibility(t *testing.T) {
	r, b, _ := newRun(t, map[string]string{
		"/p/a.link": "form user\nform secret\n  hide\ntask save\ntask save\n  hide\n",
	})

	require.NoError(t, r.Handle(b, "/p/a.link"))
	m := module(t, b, "/p/a.link")

	_, ok := m.Public(mesh.Class, "user")
	assert.True(t, ok)
	_, ok = m.Public(mesh.Class, "secret")
	assert.False(t, ok)
	_, ok = m.Lookup(mesh.Class, "secret")
	assert.True(t, ok)

	d, ok := m.Lookup(mesh.Function, "save")
	require.True(t, ok)
	assert.True(t, d.Hidden, "the last duplicate wins")
	assert.Equal(t, []string{"save"}, m.Dupes[mesh.Function])

	for _, k := range mesh.Bucketed {
		for name, d := range m.Bucket(k).Public {
			assert.Contains(t, m.Bucket(k).All, name)
			assert.False(t, d.Hidden)
		}
	}
}

func TestHandle_Partial(t *testing.T) {
	r, b, _ := newRun(t, map[string]string{
		"/p/a.link": "fuse mixin\nload ./b\nbear ./c\n",
		"/p/b.link": "host x 1\n",
		"/p/c.link": "",
	})

	require.NoError(t, r.Handle(b, "/p/a.link"))
	assert.Equal(t, int64(1), b.Stats.Partial.Load())
	assert.Equal(t, int64(2), b.Stats.Promoted.Load())

	c, _ := b.Cards.Lookup("/p/a.link")
	_, ok := Module(b, c)
	assert.False(t, ok, "a card with a fuse site is not promoted")
	_, ok = card.Branch(b, c)
	assert.True(t, ok)

	module(t, b, "/p/b.link")
	module(t, b, "/p/c.link")
}

func TestHandle_NotesDoNotBlockPromotion(t *testing.T) {
	r, b, _ := newRun(t, map[string]string{
		"/p/a.link": "note <About this module.>\nhost x 1\n",
	})

	require.NoError(t, r.Handle(b, "/p/a.link"))
	m := module(t, b, "/p/a.link")
	_, ok := m.Public(mesh.Constant, "x")
	assert.True(t, ok)
}

func TestHandle_FailurePoisonsTheRun(t *testing.T) {
	r, b, _ := newRun(t, map[string]string{
		"/p/a.link": "load ./missing\n",
		"/p/b.link": "host x 1\n",
	})

	err := r.Handle(b, "/p/a.link")
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.CodeUnresolvedPath))
	assert.Equal(t, err, b.Err())

	e, _ := diag.As(err)
	assert.Equal(t, "/p/a.link", e.File)

	again := r.Handle(b, "/p/b.link")
	assert.Equal(t, err, again)
	assert.False(t, b.Cards.Has("/p/b.link"))
	assert.Equal(t, int64(1), b.Stats.Parsed.Load())
}

func TestHandle_MissingEntry(t *testing.T) {
	r, b, _ := newRun(t, nil)
	err := r.Handle(b, "/p/a.link")
	require.Error(t, err)
	assert.Equal(t, err, b.Err())
}

func TestHandle_Deck(t *testing.T) {
	r, b, _ := newRun(t, map[string]string{
		"/p/deck/acme/kit/base.link": "deck @acme/kit\n  mark 1\n  bear ../../../app\n",
		"/p/app/base.link":           "host x 1\n",
	})

	require.NoError(t, r.Handle(b, "/p/deck/acme/kit/base.link"))

	manifest, ok := b.Cards.Lookup("/p/deck/acme/kit/base.link")
	require.True(t, ok)
	assert.Equal(t, "deck", manifest.Target)
	d, ok := b.Arena.Get(manifest.Seed).(*deck.Deck)
	require.True(t, ok)
	assert.Equal(t, "kit", d.Name)

	app, ok := b.Cards.Lookup("/p/app/base.link")
	require.True(t, ok)
	assert.Equal(t, "code", app.Target)
	module(t, b, "/p/app/base.link")
}

func TestHandle_DeckLinkFromCode(t *testing.T) {
	r, b, _ := newRun(t, map[string]string{
		"/p/a.link":                  "load @acme/kit\n",
		"/p/deck/acme/kit/base.link": "deck @acme/kit\n",
	})

	require.NoError(t, r.Handle(b, "/p/a.link"))
	manifest, ok := b.Cards.Lookup("/p/deck/acme/kit/base.link")
	require.True(t, ok)
	assert.Equal(t, "deck", manifest.Target)
}

func TestContainerScope(t *testing.T) {
	_, b, _ := newRun(t, map[string]string{"/p/a.link": "form user\n"})
	c := b.Cards.Card("/p/a.link")

	s := containerScope(c)
	assert.Equal(t, scope.KindContainer, s.Kind)
	assert.Nil(t, s.Parent)

	path, ok := scope.Get(s, "path")
	require.True(t, ok)
	assert.Equal(t, "/p/a.link", path)
}
