package term

import (
	"cardmesh/internal/card"
	"cardmesh/internal/diag"
	"cardmesh/internal/scope"
	"cardmesh/internal/tree"
)

// NoNode marks an input whose nest has no arena node of its own.
const NoNode tree.NodeID = -1

// Input is the state handed to a handler for one nest.
type Input struct {
	Base    *card.Base
	Card    *card.Card
	Nest    *tree.Nest
	Node    tree.NodeID
	Parents []*tree.Nest
	Index   int
	Scope   *scope.Scope
}

// Child derives the input for the i-th child nest of in.
func (in *Input) Child(n *tree.Nest, i int) *Input {
	parents := make([]*tree.Nest, len(in.Parents), len(in.Parents)+1)
	copy(parents, in.Parents)
	return &Input{
		Base:    in.Base,
		Card:    in.Card,
		Nest:    n,
		Node:    NoNode,
		Parents: append(parents, in.Nest),
		Index:   i,
		Scope:   in.Scope,
	}
}

// WithScope returns a copy of in bound to s.
func (in *Input) WithScope(s *scope.Scope) *Input {
	out := *in
	out.Scope = s
	return &out
}

// Name returns the static keyword of the nest, or "".
func (in *Input) Name() string {
	name, _ := StaticName(in.Nest)
	return name
}

// ParentName returns the static keyword of the enclosing nest, or "".
func (in *Input) ParentName() string {
	if len(in.Parents) == 0 {
		return ""
	}
	name, _ := StaticName(in.Parents[len(in.Parents)-1])
	return name
}

// Excerpt highlights the nest's term or single-line text in the card source.
func (in *Input) Excerpt() string {
	r := tree.TermRange(in.Nest)
	if r.IsZero() {
		r = tree.TextRange(in.Nest)
	}
	if r.IsZero() {
		r = leafRange(in.Nest)
	}
	return diag.Highlight(in.Card.TextByLine, r)
}

func leafRange(n *tree.Nest) diag.Range {
	if n == nil || len(n.Lines) == 0 {
		return diag.Range{}
	}
	leaf, ok := n.Lines[0].(*tree.Leaf)
	if !ok {
		return diag.Range{}
	}
	t := leaf.Token
	return diag.Range{
		Start: diag.Cursor{Line: t.Start.Line, Character: t.Start.Character},
		End:   diag.Cursor{Line: t.End.Line, Character: t.End.Character},
	}
}

// Fail raises d against the input's card.
func (in *Input) Fail(d diag.Diagnostic) error {
	if d.File == "" {
		d.File = in.Card.Path
	}
	return diag.Raise(d)
}

// Each runs fn over every child nest of in, stopping at the first error.
func (in *Input) Each(fn func(child *Input) error) error {
	for i, n := range in.Nest.Nests {
		if err := fn(in.Child(n, i)); err != nil {
			return err
		}
	}
	return nil
}
