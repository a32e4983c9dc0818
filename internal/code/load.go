package code

import (
	"strings"

	"cardmesh/internal/card"
	"cardmesh/internal/diag"
	"cardmesh/internal/mesh"
	"cardmesh/internal/scope"
	"cardmesh/internal/term"
)

var (
	loadShape = term.NewShape("load")
	findShape = term.NewShape("find")
	bearShape = term.NewShape("bear")
)

// selectable maps the keywords usable in `find` to the kind they select.
var selectable = map[string]mesh.Kind{
	"host": mesh.Constant,
	"form": mesh.Class,
	"face": mesh.ClassInterface,
	"task": mesh.Function,
	"tree": mesh.Template,
	"suit": mesh.Test,
}

func init() {
	loadShape.
		RegisterFunc("find", handleFind).
		RegisterFunc("bear", handleLoadBear)

	for keyword := range selectable {
		findShape.RegisterFunc(keyword, handleSelect)
	}
	findShape.RegisterFunc("save", handleSave)

	bearShape.RegisterFunc("note", handleNote)
}

// Link resolves the target of a load or bear nest to an absolute card path.
func Link(in *term.Input) (link, path string, err error) {
	if len(in.Nest.Nests) == 0 {
		return "", "", in.Fail(diag.TermMissing(in.Card.Path, "link", "`"+in.Name()+"`"))
	}
	first := in.Child(in.Nest.Nests[0], 0)
	switch term.Classify(first.Nest) {
	case term.Path, term.StaticText:
	default:
		return "", "", first.Fail(diag.UnhandledTermCase(in.Card.Path, "", in.Name(), first.Excerpt()))
	}
	link, _ = term.Literal(first.Nest)
	if strings.HasPrefix(link, "@") && !strings.Contains(strings.Trim(link[1:], "/"), "/") {
		return "", "", in.Fail(diag.InvalidDeckLink(in.Card.Path, link))
	}
	path, ok := card.ResolveLink(in.Base.Loader, in.Card.Path, link)
	if !ok {
		return "", "", in.Fail(diag.UnresolvedPath(in.Card.Path, link))
	}
	return link, path, nil
}

func reference(in *term.Input, k mesh.Kind) (*mesh.Declaration, error) {
	link, path, err := Link(in)
	if err != nil {
		return nil, err
	}
	return &mesh.Declaration{Kind: k, Name: link, Link: link, Path: path, Card: in.Card.Path, Line: line(in)}, nil
}

func handleLoad(in *term.Input) error {
	d, err := reference(in, mesh.Import)
	if err != nil {
		return err
	}
	s := scope.Extend(scope.KindImport, scope.Data{keyDeclaration: d}, in.Scope)
	if err := rest(in.WithScope(s), loadShape); err != nil {
		return err
	}
	return promote(in, d)
}

func handleBear(in *term.Input) error {
	d, err := reference(in, mesh.Export)
	if err != nil {
		return err
	}
	s := scope.Extend(scope.KindExport, scope.Data{keyDeclaration: d}, in.Scope)
	if err := rest(in.WithScope(s), bearShape); err != nil {
		return err
	}
	return promote(in, d)
}

// handleFind opens a step scope tracking the latest selection so a following
// `save` can alias it.
func handleFind(in *term.Input) error {
	s := scope.Extend(scope.KindStep, scope.Data{keySelection: -1}, in.Scope)
	return findShape.Children(in.WithScope(s))
}

func handleSelect(in *term.Input) error {
	d, err := current(in)
	if err != nil {
		return err
	}
	n, err := name(in)
	if err != nil {
		return err
	}
	if err := none(in, 1); err != nil {
		return err
	}
	d.Selections = append(d.Selections, mesh.Selection{Kind: selectable[in.Name()], Name: n})
	return scope.Set(in.Scope, keySelection, len(d.Selections)-1)
}

func handleSave(in *term.Input) error {
	d, err := current(in)
	if err != nil {
		return err
	}
	alias, err := name(in)
	if err != nil {
		return err
	}
	if err := none(in, 1); err != nil {
		return err
	}
	v, _ := scope.Get(in.Scope, keySelection)
	i, _ := v.(int)
	if i < 0 || i >= len(d.Selections) {
		return in.Fail(diag.TermMissing(in.Card.Path, "find", "`save`"))
	}
	d.Selections[i].Alias = alias
	return nil
}

func handleLoadBear(in *term.Input) error {
	d, err := current(in)
	if err != nil {
		return err
	}
	if err := loadBearShape.Children(in); err != nil {
		return err
	}
	for _, n := range in.Nest.Nests {
		s, _ := term.Literal(n)
		d.Bears = append(d.Bears, s)
	}
	return nil
}
