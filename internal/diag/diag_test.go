package diag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardmesh/internal/posmap"
)

func TestCode(t *testing.T) {
	assert.Equal(t, "0021", CodeSyntaxToken.String())
	assert.Equal(t, "SyntaxTokenError", CodeSyntaxToken.Name())
	assert.Equal(t, "0013", CodeUnresolvedPath.String())
	assert.Equal(t, "Unknown", Code(99).Name())
}

func TestHighlight(t *testing.T) {
	lines := []string{"form user", "  task save", "    hide", "  bear x"}

	t.Run("underlines the start line", func(t *testing.T) {
		out := Highlight(lines, Range{Start: Cursor{Line: 1, Character: 2}, End: Cursor{Line: 1, Character: 6}})
		assert.Equal(t, strings.Join([]string{
			" |",
			"1 | form user",
			"2 |   task save",
			" |   ~~~~",
			"3 |     hide",
			"4 |   bear x",
			" |",
		}, "\n"), out)
	})

	t.Run("multi-line range runs to end of line", func(t *testing.T) {
		out := Highlight(lines, Range{Start: Cursor{Line: 0, Character: 5}, End: Cursor{Line: 2, Character: 1}})
		assert.Contains(t, out, "\n |      ~~~~\n")
	})

	t.Run("gutter widens with line numbers", func(t *testing.T) {
		many := make([]string, 12)
		for i := range many {
			many[i] = "x"
		}
		out := Highlight(many, Range{Start: Cursor{Line: 9}, End: Cursor{Line: 9, Character: 1}})
		assert.Contains(t, out, " 8 | x\n")
		assert.Contains(t, out, "10 | x\n")
		assert.Contains(t, out, "\n  | ~\n")
		assert.NotContains(t, out, " 7 | x")
	})

	t.Run("empty input", func(t *testing.T) {
		out := Highlight(nil, Range{})
		assert.Equal(t, " |\n1 | \n | \n |", out)
	})
}

func TestError(t *testing.T) {
	err := error(Raise(UnresolvedPath("/p/a.link", "./missing")))

	t.Run("As and Is", func(t *testing.T) {
		e, ok := As(err)
		require.True(t, ok)
		assert.Equal(t, CodeUnresolvedPath, e.Code)
		assert.True(t, Is(err, CodeUnresolvedPath))
		assert.False(t, Is(err, CodeSyntaxToken))
		assert.Equal(t, Code(0), CodeOf(assert.AnError))
	})

	t.Run("message", func(t *testing.T) {
		e, _ := As(err)
		msg := e.Message()
		assert.Contains(t, msg, "note <File not found ./missing.>")
		assert.Contains(t, msg, "code #0013")
		assert.Contains(t, msg, "file </p/a.link>")
		assert.Contains(t, err.Error(), "list base")
	})

	t.Run("frames", func(t *testing.T) {
		e, _ := As(err)
		frames := e.Frames()
		require.NotEmpty(t, frames)
		assert.Contains(t, frames[0].Function, "TestError")
	})
}

type fixedTranslator struct{}

func (fixedTranslator) OriginalPositionFor(line, column int) (posmap.Position, bool) {
	return posmap.Position{Source: "cards/base.link", Line: 7, Column: 3}, true
}

func TestError_WithPositions(t *testing.T) {
	e := Raise(NotImplemented("walk"))
	require.NotEmpty(t, e.Frames())
	file := e.Frames()[0].File

	table := posmap.NewTable()
	table.Register(file, fixedTranslator{})
	e.WithPositions(table)

	f := e.Frames()[0]
	assert.Equal(t, 7, f.Line)
	assert.Equal(t, 3, f.Column)
	assert.True(t, strings.HasSuffix(f.File, "cards/base.link"))
	assert.True(t, strings.HasSuffix(f.Site(), "cards/base.link:7:3"))
}

func TestNotes(t *testing.T) {
	assert.Equal(t, "Unknown term `walk` inside `form`.", UnknownTerm("", "walk", "form", "").Note)
	assert.Equal(t, "Object isn't type `declaration` or `deck`.", ObjectNotType("x", "declaration", "deck").Note)
	assert.Equal(t, "Module has unresolvable references: a, b.", ModuleUnresolvable("", "a", "b").Note)
	assert.Equal(t, "Scope is missing property hidden.", ScopePropertyMissing("hidden").Note)
}
