// Package deck processes presentation documents: the manifest card at the root
// of a published deck, naming its version and the code modules it bears.
package deck

import (
	"strings"

	"cardmesh/internal/card"
	"cardmesh/internal/code"
	"cardmesh/internal/diag"
	"cardmesh/internal/scope"
	"cardmesh/internal/term"
)

// Deck is the resolved manifest. Bears holds absolute card paths.
type Deck struct {
	Path  string   `json:"path"`
	Host  string   `json:"host"`
	Name  string   `json:"name"`
	Mark  string   `json:"mark,omitempty"`
	Bears []string `json:"bears,omitempty"`
	Notes []string `json:"notes,omitempty"`
}

func (*Deck) Shape() string { return "deck" }

const keyDeck = "deck"

var (
	table     = term.NewTable("deck")
	deckShape = term.NewShape("deck")
	textShape = term.NewShape("text")
)

func init() {
	table.
		RegisterFunc("deck", handleDeck).
		RegisterFunc("note", handleNote)

	deckShape.
		RegisterFunc("mark", handleMark).
		RegisterFunc("bear", handleBear).
		RegisterFunc("note", handleNote)

	textShape.Accept(term.StaticText, term.Skip)
}

// Process walks a parsed deck card, promotes its root to a Deck and returns it.
// The caller resolves the bear targets.
func Process(b *card.Base, c *card.Card) (*Deck, error) {
	br, ok := card.Branch(b, c)
	if !ok {
		return nil, diag.Raise(diag.ObjectNotType(c.Path, "branch"))
	}
	d := &Deck{Path: c.Path}
	root := scope.Extend(scope.KindContainer, scope.Data{"path": c.Path}, nil)
	s := scope.Extend(scope.KindDeck, scope.Data{keyDeck: d}, root)
	for i, id := range br.Children {
		in := &term.Input{Base: b, Card: c, Nest: br.Nest.Nests[i], Node: id, Index: i, Scope: s}
		if err := table.Dispatch(in); err != nil {
			return nil, err
		}
	}
	if d.Host == "" {
		return nil, diag.Raise(diag.TermMissing(c.Path, "deck", "`"+c.Path+"`"))
	}
	if err := b.Arena.Promote(c.Seed, d); err != nil {
		return nil, err
	}
	return d, nil
}

func deckOf(in *term.Input) (*Deck, error) {
	v, _ := scope.Get(in.Scope, keyDeck)
	d, ok := v.(*Deck)
	if !ok {
		return nil, in.Fail(diag.ScopePropertyMissing(keyDeck))
	}
	return d, nil
}

func handleDeck(in *term.Input) error {
	d, err := deckOf(in)
	if err != nil {
		return err
	}
	if len(in.Nest.Nests) == 0 {
		return in.Fail(diag.TermMissing(in.Card.Path, "link", "`deck`"))
	}
	link, _ := term.Literal(in.Nest.Nests[0])
	parts := strings.Split(strings.TrimPrefix(link, "@"), "/")
	if term.Classify(in.Nest.Nests[0]) != term.Path || !strings.HasPrefix(link, "@") || len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return in.Fail(diag.InvalidDeckLink(in.Card.Path, link))
	}
	d.Host, d.Name = parts[0], parts[1]

	first := in.Child(in.Nest.Nests[0], 0)
	if err := deckShape.Children(first); err != nil {
		return err
	}
	for i := 1; i < len(in.Nest.Nests); i++ {
		if err := deckShape.Dispatch(in.Child(in.Nest.Nests[i], i)); err != nil {
			return err
		}
	}
	return nil
}

func handleMark(in *term.Input) error {
	d, err := deckOf(in)
	if err != nil {
		return err
	}
	if len(in.Nest.Nests) != 1 {
		return in.Fail(diag.InvalidNestChildrenLength(in.Card.Path, 1, in.Excerpt()))
	}
	switch term.Classify(in.Nest.Nests[0]) {
	case term.StaticText, term.Number:
	default:
		return in.Fail(diag.MissingString(in.Card.Path, "mark", "deck", in.Excerpt()))
	}
	d.Mark, _ = term.Literal(in.Nest.Nests[0])
	return nil
}

func handleBear(in *term.Input) error {
	d, err := deckOf(in)
	if err != nil {
		return err
	}
	_, path, err := code.Link(in)
	if err != nil {
		return err
	}
	d.Bears = append(d.Bears, path)
	for i := 1; i < len(in.Nest.Nests); i++ {
		if err := textShape.Dispatch(in.Child(in.Nest.Nests[i], i)); err != nil {
			return err
		}
	}
	return nil
}

func handleNote(in *term.Input) error {
	d, err := deckOf(in)
	if err != nil {
		return err
	}
	if err := textShape.Children(in); err != nil {
		return err
	}
	for _, n := range in.Nest.Nests {
		s, _ := term.Literal(n)
		d.Notes = append(d.Notes, s)
	}
	return nil
}
