// Package resolver drives parsing and resolution of cards into symbol meshes,
// following imports and exports across cards at most once per path.
package resolver

import (
	"path/filepath"

	"cardmesh/internal/card"
	"cardmesh/internal/code"
	"cardmesh/internal/mesh"
	"cardmesh/internal/scope"
	"cardmesh/internal/term"
	"cardmesh/internal/tree"
)

// Resolver resolves cards on a Base.
type Resolver struct {
	targets *TargetChain
}

// New creates a resolver over targets, code modules being the fallback.
func New(targets ...Target) *Resolver {
	return &Resolver{targets: NewTargetChain(CodeTarget{}, targets...)}
}

// NewDefault creates a resolver that treats paths matching deckPatterns as
// decks and everything else as code.
func NewDefault(deckPatterns ...string) (*Resolver, error) {
	dt, err := NewDeckTarget(deckPatterns...)
	if err != nil {
		return nil, err
	}
	return New(dt), nil
}

// Targets returns the resolver's target chain.
func (r *Resolver) Targets() *TargetChain {
	return r.targets
}

// Handle parses and resolves the card at path unless the run already has it.
// A re-entrant call for a card still being resolved returns at once, so import
// cycles terminate. The first failure aborts the run: it is recorded on b and
// returned by every later call.
func (r *Resolver) Handle(b *card.Base, path string) error {
	if err := b.Err(); err != nil {
		return err
	}
	path = filepath.Clean(path)

	c, created := b.Cards.Claim(path)
	if !created {
		b.Stats.Skipped.Add(1)
		return nil
	}

	t := r.targets.Select(path)
	c.Target = t.Name()
	b.Log.Debug("card claimed", "path", path, "target", c.Target)

	if err := card.Parse(b, c); err != nil {
		return b.Fail(err)
	}
	if err := t.Resolve(r, b, c); err != nil {
		return b.Fail(err)
	}
	return nil
}

// Module returns the symbol mesh of a card once its tree has been promoted.
func Module(b *card.Base, c *card.Card) (*mesh.Module, bool) {
	if !c.Bound {
		return nil, false
	}
	m, ok := b.Arena.Get(c.Seed).(*mesh.Module)
	return m, ok
}

// containerScope is the root scope every top-level term of c is walked in.
func containerScope(c *card.Card) *scope.Scope {
	return scope.Extend(scope.KindContainer, scope.Data{"path": c.Path}, nil)
}

func (r *Resolver) resolveCode(b *card.Base, c *card.Card) error {
	br, ok := card.Branch(b, c)
	if !ok {
		return nil
	}

	s := containerScope(c)
	for i, id := range br.Children {
		in := &term.Input{Base: b, Card: c, Nest: br.Nest.Nests[i], Node: id, Index: i, Scope: s}
		if err := code.Process(in); err != nil {
			return err
		}
	}

	decls, complete := declarations(b.Arena, br.Children)
	if !complete {
		b.Stats.Partial.Add(1)
		b.Log.Debug("card left partial", "path", c.Path)
		return r.follow(b, decls)
	}

	m, err := mesh.Build(c.Path, decls)
	if err != nil {
		return err
	}
	if err := b.Arena.Promote(c.Seed, m); err != nil {
		return err
	}
	b.Stats.Promoted.Add(1)
	for kind, names := range m.Dupes {
		b.Log.Warn("duplicate declaration", "path", c.Path, "kind", kind.String(), "names", names)
	}
	b.Log.Debug("card promoted", "path", c.Path, "imports", len(m.Imports), "exports", len(m.Exports))

	if err := r.each(b, m.Imports); err != nil {
		return err
	}
	return r.each(b, m.Exports)
}

// declarations collects the declarations among ids in order. complete is false
// when any node is neither a declaration nor an ignorable note.
func declarations(a *tree.Arena, ids []tree.NodeID) (decls []*mesh.Declaration, complete bool) {
	complete = true
	for _, id := range ids {
		switch p := a.Get(id).(type) {
		case *mesh.Declaration:
			decls = append(decls, p)
		case *mesh.Note:
		default:
			complete = false
		}
	}
	return decls, complete
}

// follow resolves the targets referenced from a card that could not be
// promoted, imports before exports.
func (r *Resolver) follow(b *card.Base, decls []*mesh.Declaration) error {
	var imports, exports []*mesh.Declaration
	for _, d := range decls {
		switch d.Kind {
		case mesh.Import:
			imports = append(imports, d)
		case mesh.Export:
			exports = append(exports, d)
		}
	}
	if err := r.each(b, imports); err != nil {
		return err
	}
	return r.each(b, exports)
}

func (r *Resolver) each(b *card.Base, decls []*mesh.Declaration) error {
	for _, d := range decls {
		if err := r.Handle(b, d.Path); err != nil {
			return err
		}
	}
	return nil
}
