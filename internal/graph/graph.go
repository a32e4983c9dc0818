package graph

import (
	"sort"
)

// Edge represents a directed relationship between two nodes.
type Edge struct {
	From string       `json:"from"`
	To   string       `json:"to"`
	Kind RelationKind `json:"kind"`
}

// Graph manages modules, their symbols and the relationships between them.
type Graph struct {
	Modules    map[string]*Module `json:"modules"`
	Symbols    map[string]*Symbol `json:"symbols"`
	Edges      []Edge             `json:"edges"`
	Selections []Selection        `json:"selections,omitempty"`
	Unresolved []Unresolved       `json:"unresolved,omitempty"`

	// Name -> []ID, for lookups by bare declaration name.
	nameIndex map[string][]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Modules:   make(map[string]*Module),
		Symbols:   make(map[string]*Symbol),
		Edges:     []Edge{},
		nameIndex: make(map[string][]string),
	}
}

// AddModule adds or replaces a module node.
func (g *Graph) AddModule(m *Module) {
	if m == nil {
		return
	}
	g.Modules[m.Path] = m
}

// AddSymbol adds a symbol and indexes it by name.
func (g *Graph) AddSymbol(s *Symbol) {
	if s == nil {
		return
	}
	if _, exists := g.Symbols[s.ID]; !exists {
		g.nameIndex[s.Name] = append(g.nameIndex[s.Name], s.ID)
	}
	g.Symbols[s.ID] = s
}

// AddEdge records a relationship.
func (g *Graph) AddEdge(from, to string, kind RelationKind) {
	g.Edges = append(g.Edges, Edge{From: from, To: to, Kind: kind})
}

// AddSelection records a name to be linked by LinkRelations.
func (g *Graph) AddSelection(s Selection) {
	g.Selections = append(g.Selections, s)
}

// Reindex rebuilds the name index, e.g. after the graph was decoded from JSON.
func (g *Graph) Reindex() {
	g.nameIndex = make(map[string][]string, len(g.Symbols))
	ids := make([]string, 0, len(g.Symbols))
	for id := range g.Symbols {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s := g.Symbols[id]
		g.nameIndex[s.Name] = append(g.nameIndex[s.Name], id)
	}
}

// LinkRelations resolves every recorded selection against the public symbols
// of its target module. Selections into a module that is not promoted yet (a
// cycle peer) are kept as pending rather than failing.
func (g *Graph) LinkRelations() {
	edges := g.Edges[:0]
	for _, e := range g.Edges {
		if e.Kind != RelationSelects {
			edges = append(edges, e)
		}
	}
	g.Edges = edges
	g.Unresolved = nil

	for _, sel := range g.Selections {
		target, ok := g.Modules[sel.Target]
		if !ok || target.State != StatePromoted {
			g.Unresolved = append(g.Unresolved, Unresolved{Selection: sel, Reason: ReasonPending})
			continue
		}
		sym, ok := g.Symbols[SymbolID(sel.Target, sel.Kind, sel.Name)]
		switch {
		case !ok:
			g.Unresolved = append(g.Unresolved, Unresolved{Selection: sel, Reason: ReasonNoCandidate})
		case sym.Hidden:
			g.Unresolved = append(g.Unresolved, Unresolved{Selection: sel, Reason: ReasonHidden})
		default:
			g.AddEdge(sel.From, sym.ID, RelationSelects)
		}
	}
}

// Lookup returns the symbols named name across all modules.
func (g *Graph) Lookup(name string) []*Symbol {
	var out []*Symbol
	for _, id := range g.nameIndex[name] {
		if s, ok := g.Symbols[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// GetDependencies returns the modules the given module imports, exports or bears.
func (g *Graph) GetDependencies(path string) []*Module {
	var deps []*Module
	for _, edge := range g.Edges {
		if edge.From == path {
			if m, ok := g.Modules[edge.To]; ok {
				deps = append(deps, m)
			}
		}
	}
	return deps
}

// GetDependents returns the modules that reference the given module.
func (g *Graph) GetDependents(path string) []*Module {
	var deps []*Module
	for _, edge := range g.Edges {
		if edge.To == path {
			if m, ok := g.Modules[edge.From]; ok {
				deps = append(deps, m)
			}
		}
	}
	return deps
}

// SymbolsOf returns the symbols of module ordered by id.
func (g *Graph) SymbolsOf(module string) []*Symbol {
	var out []*Symbol
	for _, s := range g.Symbols {
		if s.Module == module {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SortedModules returns module nodes ordered by path.
func (g *Graph) SortedModules() []*Module {
	out := make([]*Module, 0, len(g.Modules))
	for _, m := range g.Modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
