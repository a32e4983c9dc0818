package graph

import (
	"cardmesh/internal/card"
	"cardmesh/internal/deck"
	"cardmesh/internal/mesh"
	"cardmesh/internal/tree"
)

// FromBase converts the cards of a resolved run into a graph and links the
// recorded selections.
func FromBase(b *card.Base) *Graph {
	g := NewGraph()
	for _, c := range b.Cards.Sorted() {
		node := &Module{Path: c.Path, Target: c.Target, State: StatePending}
		g.AddModule(node)
		if !c.Bound {
			continue
		}

		switch p := b.Arena.Get(c.Seed).(type) {
		case *mesh.Module:
			node.State = StatePromoted
			for _, d := range p.Declarations() {
				g.AddSymbol(FromDeclaration(p.Path, d))
				for _, base := range d.Bases {
					if parent, ok := p.Lookup(mesh.Class, base); ok {
						g.AddEdge(SymbolID(p.Path, d.Kind.String(), d.Name), SymbolID(p.Path, mesh.Class.String(), parent.Name), RelationExtends)
					}
				}
			}
			g.addReferences(p.Path, p.Imports)
			g.addReferences(p.Path, p.Exports)
		case *deck.Deck:
			node.State = StateDeck
			node.Mark = p.Mark
			for _, path := range p.Bears {
				g.AddEdge(c.Path, path, RelationBears)
			}
		case *tree.Branch:
			node.State = StatePartial
			var refs []*mesh.Declaration
			for _, id := range p.Children {
				if d, ok := b.Arena.Get(id).(*mesh.Declaration); ok && d.IsTarget() {
					refs = append(refs, d)
				}
			}
			g.addReferences(c.Path, refs)
		}
	}
	g.LinkRelations()
	return g
}

func (g *Graph) addReferences(from string, decls []*mesh.Declaration) {
	for _, d := range decls {
		kind := RelationImports
		if d.Kind == mesh.Export {
			kind = RelationExports
		}
		g.AddEdge(from, d.Path, kind)
		for _, s := range d.Selections {
			g.AddSelection(Selection{
				From:   from,
				Target: d.Path,
				Kind:   s.Kind.String(),
				Name:   s.Name,
				Alias:  s.Alias,
				Line:   d.Line,
			})
		}
	}
}

// FromDeclaration converts a mesh declaration into a graph-domain Symbol.
func FromDeclaration(module string, d *mesh.Declaration) *Symbol {
	if d == nil {
		return nil
	}
	return &Symbol{
		ID:      SymbolID(module, d.Kind.String(), d.Name),
		Module:  module,
		Kind:    d.Kind.String(),
		Name:    d.Name,
		Hidden:  d.Hidden,
		Line:    d.Line,
		Members: d.Members,
		Bases:   d.Bases,
	}
}
