// Package code processes code cards: every top-level nest is dispatched by its
// keyword and the nest's arena node is promoted to the record it declares.
package code

import (
	"cardmesh/internal/diag"
	"cardmesh/internal/mesh"
	"cardmesh/internal/scope"
	"cardmesh/internal/term"
	"cardmesh/internal/tree"
)

// Scope keys used by declaration handlers.
const (
	keyHidden      = "hidden"
	keyDeclaration = "declaration"
	keySelection   = "selection"
)

// Table is the closed keyword set of a code card's top level.
var Table = term.NewTable("code")

func init() {
	Table.
		RegisterFunc("load", handleLoad).
		RegisterFunc("bear", handleBear).
		RegisterFunc("host", declare(mesh.Constant, scope.KindConstant, hostShape)).
		RegisterFunc("form", declare(mesh.Class, scope.KindClass, formShape)).
		RegisterFunc("face", declare(mesh.ClassInterface, scope.KindInterface, faceShape)).
		RegisterFunc("task", declare(mesh.Function, scope.KindFunction, taskShape)).
		RegisterFunc("tree", declare(mesh.Template, scope.KindTemplate, treeShape)).
		RegisterFunc("suit", declare(mesh.Test, scope.KindTest, suitShape)).
		RegisterFunc("fuse", handleFuse).
		RegisterFunc("note", handleTopNote)
}

// Process dispatches the i-th top-level nest of a code card.
func Process(in *term.Input) error {
	return Table.Dispatch(in)
}

// promote swaps the payload of the input's arena node for p. Inputs without a
// node of their own are left alone.
func promote(in *term.Input, p tree.Payload) error {
	if in.Node == term.NoNode {
		return nil
	}
	return in.Base.Arena.Promote(in.Node, p)
}

// line returns the 1-based source line of the nest's head.
func line(in *term.Input) int {
	r := tree.TermRange(in.Nest)
	return r.Start.Line + 1
}

// current returns the declaration being built by the nearest declaration scope.
func current(in *term.Input) (*mesh.Declaration, error) {
	v, ok := scope.Get(in.Scope, keyDeclaration)
	if !ok {
		return nil, in.Fail(diag.ScopePropertyMissing(keyDeclaration))
	}
	d, ok := v.(*mesh.Declaration)
	if !ok {
		return nil, in.Fail(diag.ObjectNotType(keyDeclaration, "declaration"))
	}
	return d, nil
}

// name reads the static name term that follows a keyword.
func name(in *term.Input) (string, error) {
	if len(in.Nest.Nests) == 0 {
		return "", in.Fail(diag.TermMissing(in.Card.Path, "name", "`"+in.Name()+"`"))
	}
	first := in.Nest.Nests[0]
	if term.Classify(first) != term.StaticTerm {
		child := in.Child(first, 0)
		return "", in.Fail(diag.UnhandledTermCase(in.Card.Path, "", in.Name(), child.Excerpt()))
	}
	n, _ := term.StaticName(first)
	return n, nil
}

// rest dispatches every child after the name through shape. Children written
// inline after the name (`host x <value>`) hang off the name nest and are
// dispatched first.
func rest(in *term.Input, shape *term.Table) error {
	if len(in.Nest.Nests) > 0 {
		if err := shape.Children(in.Child(in.Nest.Nests[0], 0)); err != nil {
			return err
		}
	}
	for i := 1; i < len(in.Nest.Nests); i++ {
		if err := shape.Dispatch(in.Child(in.Nest.Nests[i], i)); err != nil {
			return err
		}
	}
	return nil
}

// declare builds a handler for a named declaration of kind k. The handler opens
// a declaration scope so nested `hide` terms can mark the declaration hidden.
func declare(k mesh.Kind, sk scope.Kind, shape *term.Table) func(in *term.Input) error {
	return func(in *term.Input) error {
		n, err := name(in)
		if err != nil {
			return err
		}
		d := &mesh.Declaration{Kind: k, Name: n, Card: in.Card.Path, Line: line(in)}
		s := scope.Extend(sk, scope.Data{keyHidden: false, keyDeclaration: d}, in.Scope)
		if err := rest(in.WithScope(s), shape); err != nil {
			return err
		}
		if hidden, _ := scope.Get(s, keyHidden); hidden == true {
			d.Hidden = true
		}
		in.Base.Log.Debug("declaration", "kind", k.String(), "name", n, "hidden", d.Hidden)
		return promote(in, d)
	}
}

func handleFuse(in *term.Input) error {
	n, err := name(in)
	if err != nil {
		return err
	}
	if err := rest(in, fuseShape); err != nil {
		return err
	}
	return promote(in, &mesh.Inject{Name: n, Card: in.Card.Path, Line: line(in)})
}

func handleTopNote(in *term.Input) error {
	text, err := texts(in)
	if err != nil {
		return err
	}
	return promote(in, &mesh.Note{Text: text})
}
