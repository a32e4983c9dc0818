package code

import (
	"strings"

	"cardmesh/internal/diag"
	"cardmesh/internal/mesh"
	"cardmesh/internal/scope"
	"cardmesh/internal/term"
)

// Child shapes of each keyword. Anything a shape does not list fails as
// UnhandledTermCase.
var (
	hostShape = term.NewShape("host")
	formShape = term.NewShape("form")
	faceShape = term.NewShape("face")
	taskShape = term.NewShape("task")
	treeShape = term.NewShape("tree")
	suitShape = term.NewShape("suit")
	testShape = term.NewShape("test")
	fuseShape = term.NewShape("fuse")
	linkShape = term.NewShape("link")
	takeShape = term.NewShape("take")

	textShape = term.NewShape("text")
	walkShape = term.NewShape("walk")
	callShape = term.NewShape("call")

	loadBearShape = term.NewShape("bear")
)

func init() {
	hostShape.
		RegisterFunc("hide", handleHide).
		RegisterFunc("note", handleNote).
		AcceptFunc(term.StaticText, handleValue).
		AcceptFunc(term.Number, handleValue).
		AcceptFunc(term.Path, handleValue)

	for _, s := range []*term.Table{formShape, faceShape} {
		s.
			RegisterFunc("link", member(linkShape)).
			RegisterFunc("task", member(taskShape)).
			RegisterFunc("base", handleBase).
			RegisterFunc("hide", handleHide).
			RegisterFunc("note", handleNote)
	}

	taskShape.
		RegisterFunc("take", member(takeShape)).
		RegisterFunc("free", handleFree).
		RegisterFunc("hide", handleHide).
		RegisterFunc("note", handleNote).
		RegisterFunc("call", validate(callShape)).
		RegisterFunc("walk", validate(walkShape)).
		RegisterFunc("risk", validate(textShape)).
		RegisterFunc("save", validate(textShape))

	treeShape.
		RegisterFunc("take", member(takeShape)).
		RegisterFunc("hide", handleHide).
		RegisterFunc("note", handleNote).
		RegisterFunc("walk", validate(walkShape))

	suitShape.
		RegisterFunc("test", validate(testShape)).
		RegisterFunc("hide", handleHide).
		RegisterFunc("note", handleNote)

	testShape.
		Accept(term.StaticText, term.Skip).
		RegisterFunc("call", validate(callShape)).
		RegisterFunc("walk", validate(walkShape)).
		RegisterFunc("risk", validate(textShape)).
		RegisterFunc("note", handleNote)

	for _, s := range []*term.Table{linkShape, takeShape} {
		s.
			RegisterFunc("like", validate(walkShape)).
			RegisterFunc("hide", handleHide).
			RegisterFunc("note", handleNote)
	}

	for _, s := range []*term.Table{fuseShape, callShape} {
		s.
			Accept(term.StaticTerm, term.Skip).
			Accept(term.StaticText, term.Skip).
			Accept(term.Path, term.Skip).
			Accept(term.Number, term.Skip)
	}

	textShape.Accept(term.StaticText, term.Skip)
	walkShape.Accept(term.StaticTerm, term.Skip)
	loadBearShape.Accept(term.StaticText, term.Skip)
}

// validate checks the children of a nest against shape and records nothing.
func validate(shape *term.Table) func(in *term.Input) error {
	return shape.Children
}

// handleHide marks the enclosing declaration hidden. Outside a declaration
// scope there is no `hidden` key to assign and the assignment fails.
func handleHide(in *term.Input) error {
	if err := none(in, 0); err != nil {
		return err
	}
	if err := scope.Set(in.Scope, keyHidden, true); err != nil {
		if e, ok := diag.As(err); ok && e.File == "" {
			e.File = in.Card.Path
			e.Text = in.Excerpt()
		}
		return err
	}
	return nil
}

// none fails on any child of in from index from on. With from 1 the children
// of the name nest are refused too.
func none(in *term.Input, from int) error {
	if from == 1 && len(in.Nest.Nests) > 0 {
		if err := none(in.Child(in.Nest.Nests[0], 0), 0); err != nil {
			return err
		}
	}
	if len(in.Nest.Nests) <= from {
		return nil
	}
	child := in.Child(in.Nest.Nests[from], from)
	return child.Fail(diag.UnhandledTermCase(in.Card.Path, child.Name(), in.Name(), child.Excerpt()))
}

// texts joins the static text children of a nest.
func texts(in *term.Input) (string, error) {
	if err := textShape.Children(in); err != nil {
		return "", err
	}
	parts := make([]string, 0, len(in.Nest.Nests))
	for _, n := range in.Nest.Nests {
		s, _ := term.Literal(n)
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n"), nil
}

func handleNote(in *term.Input) error {
	text, err := texts(in)
	if err != nil {
		return err
	}
	if v, ok := scope.Get(in.Scope, keyDeclaration); ok {
		if d, ok := v.(*mesh.Declaration); ok {
			d.Notes = append(d.Notes, text)
		}
	}
	return nil
}

func handleValue(in *term.Input) error {
	d, err := current(in)
	if err != nil {
		return err
	}
	v, ok := term.Literal(in.Nest)
	if !ok {
		return in.Fail(diag.MissingString(in.Card.Path, "value", d.Name, in.Excerpt()))
	}
	d.Value = v
	return nil
}

func handleBase(in *term.Input) error {
	d, err := current(in)
	if err != nil {
		return err
	}
	n, err := name(in)
	if err != nil {
		return err
	}
	d.Bases = append(d.Bases, n)
	return rest(in, textShape)
}

func handleFree(in *term.Input) error {
	d, err := current(in)
	if err != nil {
		return err
	}
	n, err := name(in)
	if err != nil {
		return err
	}
	d.Value = n
	return rest(in, walkShape)
}

// member records a named child of the current declaration and checks its own
// children against shape inside a fresh declaration scope, so a `hide` below a
// member applies to the member only.
func member(shape *term.Table) func(in *term.Input) error {
	return func(in *term.Input) error {
		d, err := current(in)
		if err != nil {
			return err
		}
		n, err := name(in)
		if err != nil {
			return err
		}
		m := &mesh.Declaration{Kind: d.Kind, Name: n, Card: d.Card, Line: line(in)}
		s := scope.Extend(scope.KindStep, scope.Data{keyHidden: false, keyDeclaration: m}, in.Scope)
		if err := rest(in.WithScope(s), shape); err != nil {
			return err
		}
		if hidden, _ := scope.Get(s, keyHidden); hidden != true {
			d.Members = append(d.Members, n)
		}
		return nil
	}
}
