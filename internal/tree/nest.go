// Package tree holds the parse units ("nests") assembled from a token stream and
// the arena that lets resolved nodes be promoted in place.
package tree

import (
	"strings"

	"cardmesh/internal/tokenizer"
)

// Item is one entry on a nest line: a *Term, a *Text or a *Leaf.
type Item interface {
	item()
}

// Link is one element of a term or text chain: a *Cord, a *Slot or a nested *Term.
type Link interface {
	link()
}

// Cord is a literal text span.
type Cord struct {
	Token tokenizer.Token
}

// Slot is an interpolation placeholder wrapping a sub-nest. Size is the number
// of braces in its delimiters.
type Slot struct {
	Size  int
	Open  tokenizer.Token
	Close tokenizer.Token
	Nest  *Nest
}

// Term is a keyword-led chain of cords, slots and nested terms. Open and Close
// hold the brackets of a nested term and stay zero on a line item.
type Term struct {
	Open  tokenizer.Token
	Close tokenizer.Token
	Links []Link
}

// IsNested reports whether the term was read from an evaluation.
func (t *Term) IsNested() bool {
	return t.Open.Kind == tokenizer.OpenEvaluation
}

// Text is a quoted text made of string cords and slots.
type Text struct {
	Open  tokenizer.Token
	Close tokenizer.Token
	Links []Link
}

// Leaf is a single-token item: path, number or hashtag.
type Leaf struct {
	Token tokenizer.Token
}

func (*Term) item() {}
func (*Text) item() {}
func (*Leaf) item() {}

func (*Cord) link() {}
func (*Slot) link() {}
func (*Term) link() {}

// Nest is the parse unit for one indentation level: its own line items and the
// child nests one level deeper, both in source order.
type Nest struct {
	Lines []Item
	Nests []*Nest
}

// IsEmpty reports whether the nest holds nothing.
func (n *Nest) IsEmpty() bool {
	return n == nil || (len(n.Lines) == 0 && len(n.Nests) == 0)
}

// HeadTerm returns the first line item when it is a term.
func (n *Nest) HeadTerm() (*Term, bool) {
	if n == nil || len(n.Lines) == 0 {
		return nil, false
	}
	t, ok := n.Lines[0].(*Term)
	return t, ok
}

// IsStatic reports whether the term is made of literal cords only.
func (t *Term) IsStatic() bool {
	for _, l := range t.Links {
		if _, ok := l.(*Cord); !ok {
			return false
		}
	}
	return len(t.Links) > 0
}

// Literal joins the cord texts of a static term.
func (t *Term) Literal() (string, bool) {
	if !t.IsStatic() {
		return "", false
	}
	var b strings.Builder
	for _, l := range t.Links {
		b.WriteString(l.(*Cord).Token.Text)
	}
	return b.String(), true
}

// IsStatic reports whether the text carries no interpolation.
func (t *Text) IsStatic() bool {
	for _, l := range t.Links {
		if _, ok := l.(*Slot); ok {
			return false
		}
	}
	return true
}

// Literal joins the string cords of a static text, resolving escapes.
func (t *Text) Literal() (string, bool) {
	if !t.IsStatic() {
		return "", false
	}
	var b strings.Builder
	for _, l := range t.Links {
		b.WriteString(unescape(l.(*Cord).Token.Text))
	}
	return b.String(), true
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
