package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardmesh/internal/card"
	"cardmesh/internal/diag"
	"cardmesh/internal/mesh"
	"cardmesh/internal/scope"
	"cardmesh/internal/term"
	"cardmesh/internal/tree"
)

const entry = "/p/app/base.link"

// process parses the card at entry and dispatches its top-level nests.
func process(t *testing.T, text string, extra map[string]string) (*card.Base, []tree.Payload, error) {
	t.Helper()
	files := map[string]string{entry: text}
	for k, v := range extra {
		files[k] = v
	}
	b := card.NewBase(card.NewMemoryLoader("/p", files), nil)
	c := b.Cards.Card(entry)
	require.NoError(t, card.Parse(b, c))

	br, ok := card.Branch(b, c)
	require.True(t, ok)

	s := scope.Extend(scope.KindContainer, nil, nil)
	for i, id := range br.Children {
		in := &term.Input{Base: b, Card: c, Nest: br.Nest.Nests[i], Node: id, Index: i, Scope: s}
		if err := Process(in); err != nil {
			return b, nil, err
		}
	}

	out := make([]tree.Payload, len(br.Children))
	for i, id := range br.Children {
		out[i] = b.Arena.Get(id)
	}
	return b, out, nil
}

func declaration(t *testing.T, p tree.Payload) *mesh.Declaration {
	t.Helper()
	d, ok := p.(*mesh.Declaration)
	require.True(t, ok, "expected a declaration, got %s", p.Shape())
	return d
}

func TestProcess_Declarations(t *testing.T) {
	_, nodes, err := process(t, `host pi 3.14
host greeting <hello>
form user
  base record
  link name
  link secret
    hide
  task save
    take value
  note <A user.>
face store
  task put
task main
  take args
  free result
  walk args
  hide
tree row
  take item
suit checks
  test <adds>
    call main, 1
`, nil)
	require.NoError(t, err)
	require.Len(t, nodes, 7)

	pi := declaration(t, nodes[0])
	assert.Equal(t, mesh.Constant, pi.Kind)
	assert.Equal(t, "pi", pi.Name)
	assert.Equal(t, "3.14", pi.Value)
	assert.Equal(t, 1, pi.Line)
	assert.Equal(t, entry, pi.Card)

	assert.Equal(t, "hello", declaration(t, nodes[1]).Value)

	user := declaration(t, nodes[2])
	assert.Equal(t, mesh.Class, user.Kind)
	assert.Equal(t, []string{"record"}, user.Bases)
	assert.Equal(t, []string{"name", "save"}, user.Members, "hidden members are left out")
	assert.Equal(t, []string{"A user."}, user.Notes)
	assert.False(t, user.Hidden)

	assert.Equal(t, mesh.ClassInterface, declaration(t, nodes[3]).Kind)

	fn := declaration(t, nodes[4])
	assert.Equal(t, mesh.Function, fn.Kind)
	assert.True(t, fn.Hidden)
	assert.Equal(t, []string{"args"}, fn.Members)
	assert.Equal(t, "result", fn.Value)

	assert.Equal(t, mesh.Template, declaration(t, nodes[5]).Kind)
	assert.Equal(t, mesh.Test, declaration(t, nodes[6]).Kind)
}

func TestProcess_LoadAndBear(t *testing.T) {
	_, nodes, err := process(t, `load ./model
  find form user
  find task save
    save persist
  bear <user>
bear ../lib/util
  note <Re-exported.>
`, map[string]string{
		"/p/app/model/base.link": "",
		"/p/lib/util.link":       "",
	})
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	load := declaration(t, nodes[0])
	assert.Equal(t, mesh.Import, load.Kind)
	assert.Equal(t, "./model", load.Link)
	assert.Equal(t, "/p/app/model/base.link", load.Path)
	assert.Equal(t, []mesh.Selection{
		{Kind: mesh.Class, Name: "user"},
		{Kind: mesh.Function, Name: "save", Alias: "persist"},
	}, load.Selections)
	assert.Equal(t, []string{"user"}, load.Bears)

	bear := declaration(t, nodes[1])
	assert.Equal(t, mesh.Export, bear.Kind)
	assert.Equal(t, "/p/lib/util.link", bear.Path)
	assert.True(t, bear.IsTarget())
}

func TestProcess_FuseAndNote(t *testing.T) {
	_, nodes, err := process(t, "note <Top.>\nfuse mixin\n", nil)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	note, ok := nodes[0].(*mesh.Note)
	require.True(t, ok)
	assert.Equal(t, "Top.", note.Text)

	inject, ok := nodes[1].(*mesh.Inject)
	require.True(t, ok)
	assert.Equal(t, "mixin", inject.Name)
	assert.Equal(t, 2, inject.Line)
}

func TestProcess_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		code diag.Code
	}{
		{"unknown keyword", "walk x\n", diag.CodeUnknownTerm},
		{"unlisted child", "form user\n  take x\n", diag.CodeUnhandledTermCase},
		{"missing name", "form\n", diag.CodeTermMissing},
		{"dynamic name", "task {x}\n", diag.CodeUnhandledTermCase},
		{"interpolated child", "form user\n  note <a {b}>\n", diag.CodeUnhandledTermInterpolation},
		{"hide with children", "form user\n  hide x\n", diag.CodeUnhandledTermCase},
		{"missing target", "load ./absent\n", diag.CodeUnresolvedPath},
		{"missing link", "load\n", diag.CodeTermMissing},
		{"deck link without a name", "load @acme\n", diag.CodeInvalidDeckLink},
		{"save before find", "load ./base\n  find save x\n", diag.CodeTermMissing},
		{"value of the wrong shape", "host x #tag\n", diag.CodeUnhandledTermCase},
		{"term under a loaded bear", "load ./base\n  bear user\n", diag.CodeUnhandledTermCase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := process(t, tt.text, nil)
			require.Error(t, err)
			assert.Equal(t, tt.code, diag.CodeOf(err), err.Error())

			e, _ := diag.As(err)
			assert.Equal(t, entry, e.File)
		})
	}
}

func TestProcess_LoadBearTakesTexts(t *testing.T) {
	_, _, err := process(t, "load ./base\n  bear user\n", nil)
	require.Error(t, err)

	e, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, diag.CodeUnhandledTermCase, e.Code)
	assert.Equal(t, "Unhandled term case `user` inside `bear`.", e.Note)
}

func TestHide_OutsideDeclaration(t *testing.T) {
	b := card.NewBase(card.NewMemoryLoader("/p", map[string]string{entry: "hide\n"}), nil)
	c := b.Cards.Card(entry)
	require.NoError(t, card.Parse(b, c))
	br, _ := card.Branch(b, c)

	s := scope.Extend(scope.KindContainer, scope.Data{"path": entry}, nil)
	in := &term.Input{Base: b, Card: c, Nest: br.Nest.Nests[0], Node: br.Children[0], Scope: s}

	err := handleHide(in)
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.CodeScopePropertyMissing))
	assert.NotContains(t, s.Data, keyHidden, "a failed assignment declares nothing")

	e, _ := diag.As(err)
	assert.Equal(t, entry, e.File)
	assert.Contains(t, e.Text, "1 | hide")
}

func TestTable_Keywords(t *testing.T) {
	assert.Equal(t, []string{"bear", "face", "form", "fuse", "host", "load", "note", "suit", "task", "tree"}, Table.Keywords())
}
