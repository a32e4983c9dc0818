package tree

import (
	"cardmesh/internal/diag"
	"cardmesh/internal/tokenizer"
)

func tokenRange(t tokenizer.Token) diag.Range {
	return diag.Range{
		Start: diag.Cursor{Line: t.Start.Line, Character: t.Start.Character},
		End:   diag.Cursor{Line: t.End.Line, Character: t.End.Character},
	}
}

func before(a, b diag.Cursor) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
}

// fold widens a range; ok tracks whether anything has been folded yet.
type fold struct {
	r  diag.Range
	ok bool
}

func (f *fold) add(r diag.Range) {
	if !f.ok {
		f.r, f.ok = r, true
		return
	}
	if before(r.Start, f.r.Start) {
		f.r.Start = r.Start
	}
	if before(f.r.End, r.End) {
		f.r.End = r.End
	}
}

func (f *fold) token(t tokenizer.Token) {
	f.add(tokenRange(t))
}

func (f *fold) links(links []Link) {
	for _, l := range links {
		switch l := l.(type) {
		case *Cord:
			f.token(l.Token)
		case *Slot:
			f.token(l.Open)
			f.items(l.Nest)
			f.token(l.Close)
		case *Term:
			if l.IsNested() {
				f.token(l.Open)
			}
			f.links(l.Links)
			if l.IsNested() {
				f.token(l.Close)
			}
		}
	}
}

func (f *fold) items(n *Nest) {
	if n == nil {
		return
	}
	for _, it := range n.Lines {
		switch it := it.(type) {
		case *Term:
			f.links(it.Links)
		case *Text:
			f.token(it.Open)
			f.links(it.Links)
			f.token(it.Close)
		case *Leaf:
			f.token(it.Token)
		}
	}
}

// TermRange returns the source range of a nest's term expression: every link of
// its line items, descending into slot sub-nests and nested terms. The zero range
// is returned when the nest does not start with a term.
func TermRange(n *Nest) diag.Range {
	if _, ok := n.HeadTerm(); !ok {
		return diag.Range{}
	}
	var f fold
	f.items(n)
	return f.r
}

// TextRange spans the first to last string cord of a single-line text nest.
// Multi-line texts yield the zero range rather than a misleading highlight.
func TextRange(n *Nest) diag.Range {
	if n == nil || len(n.Lines) != 1 {
		return diag.Range{}
	}
	text, ok := n.Lines[0].(*Text)
	if !ok {
		return diag.Range{}
	}
	var first, last *Cord
	for _, l := range text.Links {
		c, ok := l.(*Cord)
		if !ok {
			continue
		}
		if c.Token.Kind == tokenizer.Line {
			return diag.Range{}
		}
		if first == nil {
			first = c
		}
		last = c
	}
	if first == nil || first.Token.Start.Line != last.Token.End.Line {
		return diag.Range{}
	}
	return diag.Range{
		Start: diag.Cursor{Line: first.Token.Start.Line, Character: first.Token.Start.Character},
		End:   diag.Cursor{Line: last.Token.End.Line, Character: last.Token.End.Character},
	}
}
