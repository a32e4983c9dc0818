package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardmesh/internal/card"
	"cardmesh/internal/diag"
)

const manifest = "/p/deck/acme/kit/base.link"

func process(t *testing.T, text string) (*card.Base, *card.Card, *Deck, error) {
	t.Helper()
	b := card.NewBase(card.NewMemoryLoader("/p", map[string]string{
		manifest:           text,
		"/p/app/base.link": "",
	}), nil)
	c := b.Cards.Card(manifest)
	require.NoError(t, card.Parse(b, c))
	d, err := Process(b, c)
	return b, c, d, err
}

func TestProcess(t *testing.T) {
	b, c, d, err := process(t, `deck @acme/kit
  mark 3
  bear ../../../app
  note <Starter kit.>
note <Published.>
`)
	require.NoError(t, err)

	assert.Equal(t, manifest, d.Path)
	assert.Equal(t, "acme", d.Host)
	assert.Equal(t, "kit", d.Name)
	assert.Equal(t, "3", d.Mark)
	assert.Equal(t, []string{"/p/app/base.link"}, d.Bears)
	assert.Equal(t, []string{"Starter kit.", "Published."}, d.Notes)

	promoted, ok := b.Arena.Get(c.Seed).(*Deck)
	require.True(t, ok, "the card's root is promoted to the deck")
	assert.Same(t, d, promoted)
}

func TestProcess_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		code diag.Code
	}{
		{"no deck term", "note <Nothing here.>\n", diag.CodeTermMissing},
		{"host without name", "deck @acme\n", diag.CodeInvalidDeckLink},
		{"link as text", "deck <@acme/kit>\n", diag.CodeInvalidDeckLink},
		{"missing link", "deck\n", diag.CodeTermMissing},
		{"two marks", "deck @acme/kit\n  mark 1, 2\n", diag.CodeInvalidNestChildrenLength},
		{"mark is not a string", "deck @acme/kit\n  mark x\n", diag.CodeMissingString},
		{"missing bear target", "deck @acme/kit\n  bear ./absent\n", diag.CodeUnresolvedPath},
		{"unknown top-level term", "deck @acme/kit\nwalk x\n", diag.CodeUnknownTerm},
		{"unlisted child", "deck @acme/kit\n  take x\n", diag.CodeUnhandledTermCase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := process(t, tt.text)
			require.Error(t, err)
			assert.Equal(t, tt.code, diag.CodeOf(err), err.Error())

			e, _ := diag.As(err)
			assert.Equal(t, manifest, e.File)
		})
	}
}
