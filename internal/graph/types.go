package graph

type RelationKind string

const (
	RelationImports RelationKind = "imports"
	RelationExports RelationKind = "exports"
	RelationBears   RelationKind = "bears"
	RelationSelects RelationKind = "selects"
	RelationExtends RelationKind = "extends"
)

type UnresolvedReason string

const (
	ReasonNoCandidate UnresolvedReason = "no_candidate"
	ReasonHidden      UnresolvedReason = "hidden"
	ReasonPending     UnresolvedReason = "pending"
)

// ModuleState describes how far resolution got for a card.
type ModuleState string

const (
	StatePromoted ModuleState = "promoted"
	StatePartial  ModuleState = "partial"
	StateDeck     ModuleState = "deck"
	StatePending  ModuleState = "pending"
)

// Module is the graph-domain node for one card.
type Module struct {
	Path   string      `json:"path"`
	Target string      `json:"target"`
	State  ModuleState `json:"state"`
	Mark   string      `json:"mark,omitempty"`
}

// Symbol is a declaration of a promoted module.
type Symbol struct {
	ID      string   `json:"id"`
	Module  string   `json:"module"`
	Kind    string   `json:"kind"`
	Name    string   `json:"name"`
	Hidden  bool     `json:"hidden,omitempty"`
	Line    int      `json:"line"`
	Members []string `json:"members,omitempty"`
	Bases   []string `json:"bases,omitempty"`
}

// Selection is a name an importing module pulls from a target module.
type Selection struct {
	From   string `json:"from"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Alias  string `json:"alias,omitempty"`
	Line   int    `json:"line"`
}

// Unresolved is a selection that did not link to a public symbol.
type Unresolved struct {
	Selection Selection        `json:"selection"`
	Reason    UnresolvedReason `json:"reason"`
}

// SymbolID builds the id of the declaration kind/name in module.
func SymbolID(module, kind, name string) string {
	return module + "#" + kind + "/" + name
}
