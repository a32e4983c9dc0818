package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardmesh/internal/diag"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

func TestTokenize_SingleTerm(t *testing.T) {
	res, err := Tokenize("/p/a.link", "abc\n")
	require.NoError(t, err)
	require.Len(t, res.Tokens, 3)

	first := res.Tokens[0]
	assert.Equal(t, TermFragment, first.Kind)
	assert.Equal(t, "abc", first.Text)
	assert.Equal(t, Position{Line: 0, Character: 0}, first.Start)
	assert.Equal(t, Position{Line: 0, Character: 3}, first.End)

	assert.Equal(t, Line, res.Tokens[1].Kind)
	assert.Equal(t, "\n", res.Tokens[1].Text)

	last := res.Tokens[2]
	assert.Equal(t, Line, last.Kind)
	assert.Empty(t, last.Text)
	assert.Equal(t, last.Offset.Start, last.Offset.End)
}

func TestTokenize_ReproducesInput(t *testing.T) {
	inputs := []string{
		"",
		"abc",
		"abc\n",
		"form user\n  task save\n    hide\n",
		"load ./base\n  find form user\n    save person\n",
		"host x <hello {name} world>\n",
		"note <first\n  second>\n",
		"task {{nested {x} y}}, bind (a, b)\n",
		"# a comment\nhost pi 3.14\nhost n -12\nhost m 42\n#tag\n",
		"bear @drumwork/base\n",
		"call [walk] y\n",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			res, err := Tokenize("/p/a.link", in)
			require.NoError(t, err)
			assert.Equal(t, in, join(res.Tokens))
			assert.Equal(t, 1, Depth(res.Tokens))

			for i := 1; i < len(res.Tokens); i++ {
				prev, cur := res.Tokens[i-1], res.Tokens[i]
				assert.Equal(t, prev.Offset.End, cur.Offset.Start, "offsets are contiguous")
				assert.True(t,
					cur.Start.Line > prev.Start.Line ||
						(cur.Start.Line == prev.Start.Line && cur.Start.Character >= prev.Start.Character),
					"coordinates never go backwards")
			}
		})
	}
}

func TestTokenize_PatternPriority(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Kind
	}{
		{"unsigned integer", "42", []Kind{UnsignedInteger, Line}},
		{"signed integer", "-12", []Kind{SignedInteger, Line}},
		{"decimal", "3.14", []Kind{Decimal, Line}},
		{"hashtag", "#ff0000", []Kind{Hashtag, Line}},
		{"comment", "# note", []Kind{Comment, Line}},
		{"relative path", "./a/b", []Kind{Path, Line}},
		{"deck path", "@host/name", []Kind{Path, Line}},
		{"term with nesting", "host x", []Kind{TermFragment, OpenNesting, TermFragment, Line}},
		{"indentation", "  x", []Kind{OpenIndentation, TermFragment, Line}},
		{"text", "<a b>", []Kind{OpenText, String, CloseText, Line}},
		{"interpolation", "a{b}", []Kind{TermFragment, OpenInterpolation, TermFragment, CloseInterpolation, Line}},
		{"text interpolation", "<a{b}>", []Kind{OpenText, String, OpenInterpolation, TermFragment, CloseInterpolation, CloseText, Line}},
		{"comma", "a, b", []Kind{TermFragment, Comma, TermFragment, Line}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Tokenize("/p/a.link", tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kinds(res.Tokens))
		})
	}
}

func TestTokenize_Escapes(t *testing.T) {
	res, err := Tokenize("/p/a.link", `<a \> b \{ c>`)
	require.NoError(t, err)
	assert.Equal(t, []Kind{OpenText, String, CloseText, Line}, kinds(res.Tokens))
	assert.Equal(t, `a \> b \{ c`, res.Tokens[1].Text)
}

func TestTokenize_MultiLineText(t *testing.T) {
	res, err := Tokenize("/p/a.link", "note <a\nb>")
	require.NoError(t, err)
	assert.Equal(t, []Kind{TermFragment, OpenNesting, OpenText, String, Line, String, CloseText, Line}, kinds(res.Tokens))
	assert.Equal(t, 1, res.Tokens[5].Start.Line)
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unterminated interpolation", "a{b"},
		{"unterminated text", "<abc"},
		{"unterminated text in interpolation", "a{<b}"},
		{"stray closer", "a}"},
		{"stray text closer", ">"},
		{"mismatched closer", "<a{b>"},
		{"unknown character", "a = b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize("/p/a.link", tt.in)
			require.Error(t, err)
			assert.True(t, diag.Is(err, diag.CodeSyntaxToken))

			e, ok := diag.As(err)
			require.True(t, ok)
			assert.Equal(t, "/p/a.link", e.File)
			assert.NotEmpty(t, e.Text)
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "text-term-fragment", TermFragment.String())
	assert.Equal(t, "text-line", Line.String())
	assert.Equal(t, "text-unknown", Kind(99).String())
}
