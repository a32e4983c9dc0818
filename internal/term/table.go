package term

import (
	"sort"

	"cardmesh/internal/diag"
)

// Handler processes one nest.
type Handler interface {
	Handle(in *Input) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(in *Input) error

func (f HandlerFunc) Handle(in *Input) error { return f(in) }

// Table routes nests to handlers: static terms by keyword, other shapes by hint.
//
// An open table reports unknown keywords as UnknownTerm and unexpected shapes as
// UnhandledNestCase. A closed table describes the children one parent accepts,
// and anything it does not list fails as UnhandledTermCase.
type Table struct {
	name   string
	closed bool
	terms  map[string]Handler
	hints  map[Hint]Handler
}

// NewTable creates an open table.
func NewTable(name string) *Table {
	return &Table{name: name, terms: make(map[string]Handler), hints: make(map[Hint]Handler)}
}

// NewShape creates a closed table for the children of name.
func NewShape(name string) *Table {
	t := NewTable(name)
	t.closed = true
	return t
}

// Register adds h for keyword, replacing any previous handler.
func (t *Table) Register(keyword string, h Handler) *Table {
	t.terms[keyword] = h
	return t
}

// RegisterFunc adds fn for keyword.
func (t *Table) RegisterFunc(keyword string, fn func(in *Input) error) *Table {
	return t.Register(keyword, HandlerFunc(fn))
}

// Accept adds h for every nest classified as hint.
func (t *Table) Accept(hint Hint, h Handler) *Table {
	t.hints[hint] = h
	return t
}

// AcceptFunc adds fn for hint.
func (t *Table) AcceptFunc(hint Hint, fn func(in *Input) error) *Table {
	return t.Accept(hint, HandlerFunc(fn))
}

// Name returns the table's name.
func (t *Table) Name() string {
	return t.name
}

// Keywords returns the registered keywords in order.
func (t *Table) Keywords() []string {
	out := make([]string, 0, len(t.terms))
	for k := range t.terms {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Dispatch routes in to its handler.
func (t *Table) Dispatch(in *Input) error {
	hint := Classify(in.Nest)
	if hint == DynamicTerm || hint == DynamicText {
		return in.Fail(diag.UnhandledTermInterpolation(in.Card.Path))
	}
	if h, ok := t.hints[hint]; ok {
		return h.Handle(in)
	}

	if hint == StaticTerm {
		name := in.Name()
		if h, ok := t.terms[name]; ok {
			return h.Handle(in)
		}
		if t.closed {
			return in.Fail(diag.UnhandledTermCase(in.Card.Path, name, t.name, in.Excerpt()))
		}
		return in.Fail(diag.UnknownTerm(in.Card.Path, name, in.ParentName(), in.Excerpt()))
	}

	if t.closed {
		return in.Fail(diag.UnhandledTermCase(in.Card.Path, "", t.name, in.Excerpt()))
	}
	return in.Fail(diag.UnhandledNestCase(in.Card.Path, hint.String(), in.ParentName(), in.Excerpt()))
}

// Children dispatches every child nest of in through t.
func (t *Table) Children(in *Input) error {
	return in.Each(t.Dispatch)
}

// Skip is a handler that accepts a nest and does nothing.
var Skip = HandlerFunc(func(*Input) error { return nil })
