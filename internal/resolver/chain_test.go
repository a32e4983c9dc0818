package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardmesh/internal/card"
)

type fakeTarget struct {
	name   string
	prefix string
}

func (f fakeTarget) Name() string { return f.name }

func (f fakeTarget) Match(path string) bool {
	return len(path) >= len(f.prefix) && path[:len(f.prefix)] == f.prefix
}

func (f fakeTarget) Resolve(*Resolver, *card.Base, *card.Card) error { return nil }

func TestTargetChain_Select(t *testing.T) {
	chain := NewTargetChain(CodeTarget{},
		fakeTarget{name: "docs", prefix: "/p/docs/"},
		fakeTarget{name: "all-docs", prefix: "/p/"},
	)
	chain.Register(fakeTarget{name: "late", prefix: "/q/"})

	assert.Equal(t, "docs", chain.Select("/p/docs/a.link").Name(), "the first match wins")
	assert.Equal(t, "all-docs", chain.Select("/p/a.link").Name())
	assert.Equal(t, "late", chain.Select("/q/a.link").Name())
	assert.Equal(t, "code", chain.Select("/r/a.link").Name())
	assert.Equal(t, []string{"docs", "all-docs", "late", "code"}, chain.Names())
}

func TestDeckTarget(t *testing.T) {
	dt, err := NewDeckTarget()
	require.NoError(t, err)
	assert.True(t, dt.Match("/p/deck/acme/kit/base.link"))
	assert.False(t, dt.Match("/p/deck/acme/kit/other.link"))
	assert.False(t, dt.Match("/p/deck/acme/base.link"))

	custom, err := NewDeckTarget(`/decks/[^/]+\.link$`)
	require.NoError(t, err)
	assert.True(t, custom.Match("/p/decks/kit.link"))
	assert.False(t, custom.Match("/p/deck/acme/kit/base.link"))

	_, err = NewDeckTarget(`(`)
	assert.Error(t, err)

	r, err := NewDefault()
	require.NoError(t, err)
	assert.Equal(t, []string{"deck", "code"}, r.Targets().Names())
}
