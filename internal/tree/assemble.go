package tree

import (
	"strings"

	"cardmesh/internal/diag"
	"cardmesh/internal/tokenizer"
)

type assembler struct {
	res    *tokenizer.Result
	tokens []tokenizer.Token
	pos    int
}

type level struct {
	indent int
	nest   *Nest
}

// Assemble builds the nest tree of a tokenized card. The returned root nest has
// no line items; its children are the top-level nests of the card.
func Assemble(res *tokenizer.Result) (*Nest, error) {
	a := &assembler{res: res, tokens: res.Tokens}
	root := &Nest{}
	stack := []level{{indent: -1, nest: root}}

	for !a.eof() {
		indent, err := a.indentation()
		if err != nil {
			return nil, err
		}
		if a.peek().Kind == tokenizer.Line {
			a.next()
			continue
		}

		head, err := a.nest(false)
		if err != nil {
			return nil, err
		}
		if a.peek().Kind != tokenizer.Line {
			return nil, a.fail()
		}
		a.next()
		if head.IsEmpty() {
			continue
		}

		for stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		if indent > parent.indent+1 {
			return nil, a.fail()
		}
		parent.nest.Nests = append(parent.nest.Nests, head)
		stack = append(stack, level{indent: indent, nest: head})
	}

	return root, nil
}

// indentation counts leading two-space units. An evaluation opener swallows the
// spaces before it, so those count too.
func (a *assembler) indentation() (int, error) {
	indent := 0
	for a.peek().Kind == tokenizer.OpenIndentation {
		indent++
		a.next()
	}
	if t := a.peek(); t.Kind == tokenizer.OpenEvaluation {
		spaces := len(t.Text) - len(strings.TrimLeft(t.Text, " "))
		if spaces%2 != 0 {
			return 0, a.fail()
		}
		indent += spaces / 2
	}
	return indent, nil
}

// nest parses items up to the end of the line or an enclosing closer. inline
// nests stop at a comma so the caller can open a sibling.
func (a *assembler) nest(inline bool) (*Nest, error) {
	n := &Nest{}
	for {
		t := a.peek()
		switch t.Kind {
		case tokenizer.TermFragment, tokenizer.OpenInterpolation, tokenizer.OpenEvaluation:
			term, err := a.term()
			if err != nil {
				return nil, err
			}
			n.Lines = append(n.Lines, term)
		case tokenizer.OpenText:
			text, err := a.text()
			if err != nil {
				return nil, err
			}
			n.Lines = append(n.Lines, text)
		case tokenizer.Path, tokenizer.Decimal, tokenizer.SignedInteger, tokenizer.UnsignedInteger, tokenizer.Hashtag:
			a.next()
			n.Lines = append(n.Lines, &Leaf{Token: t})
		case tokenizer.Comment:
			a.next()
		case tokenizer.OpenNesting, tokenizer.OpenIndentation:
			a.next()
			if err := a.children(n); err != nil {
				return nil, err
			}
		case tokenizer.OpenParenthesis:
			a.next()
			if err := a.children(n); err != nil {
				return nil, err
			}
			if a.peek().Kind != tokenizer.CloseParenthesis {
				return nil, a.fail()
			}
			a.next()
		case tokenizer.Comma:
			if !inline {
				return nil, a.fail()
			}
			return n, nil
		case tokenizer.Line, tokenizer.CloseParenthesis, tokenizer.CloseInterpolation, tokenizer.CloseEvaluation:
			return n, nil
		default:
			return nil, a.fail()
		}
	}
}

// children parses a comma separated run of inline child nests into parent.
func (a *assembler) children(parent *Nest) error {
	for {
		child, err := a.nest(true)
		if err != nil {
			return err
		}
		if !child.IsEmpty() {
			parent.Nests = append(parent.Nests, child)
		}
		if a.peek().Kind != tokenizer.Comma {
			return nil
		}
		a.next()
	}
}

func (a *assembler) term() (*Term, error) {
	t := &Term{}
	for {
		tok := a.peek()
		switch tok.Kind {
		case tokenizer.TermFragment:
			a.next()
			t.Links = append(t.Links, &Cord{Token: tok})
		case tokenizer.OpenInterpolation:
			slot, err := a.slot()
			if err != nil {
				return nil, err
			}
			t.Links = append(t.Links, slot)
		case tokenizer.OpenEvaluation:
			open := a.next()
			inner, err := a.term()
			if err != nil {
				return nil, err
			}
			if a.peek().Kind != tokenizer.CloseEvaluation || len(inner.Links) == 0 {
				return nil, a.fail()
			}
			inner.Open, inner.Close = open, a.next()
			t.Links = append(t.Links, inner)
		default:
			return t, nil
		}
	}
}

func (a *assembler) slot() (*Slot, error) {
	open := a.next()
	body, err := a.nest(true)
	if err != nil {
		return nil, err
	}
	end := a.peek()
	if end.Kind != tokenizer.CloseInterpolation || len(end.Text) != len(open.Text) {
		return nil, a.fail()
	}
	a.next()
	return &Slot{Size: len(open.Text), Open: open, Close: end, Nest: body}, nil
}

func (a *assembler) text() (*Text, error) {
	t := &Text{Open: a.next()}
	for {
		tok := a.peek()
		switch tok.Kind {
		case tokenizer.String, tokenizer.Line:
			if a.eof() {
				return nil, a.fail()
			}
			a.next()
			t.Links = append(t.Links, &Cord{Token: tok})
		case tokenizer.OpenInterpolation:
			slot, err := a.slot()
			if err != nil {
				return nil, err
			}
			t.Links = append(t.Links, slot)
		case tokenizer.CloseText:
			t.Close = a.next()
			return t, nil
		default:
			return nil, a.fail()
		}
	}
}

func (a *assembler) peek() tokenizer.Token {
	if a.pos >= len(a.tokens) {
		return a.tokens[len(a.tokens)-1]
	}
	return a.tokens[a.pos]
}

func (a *assembler) next() tokenizer.Token {
	t := a.peek()
	if a.pos < len(a.tokens) {
		a.pos++
	}
	return t
}

// eof reports whether only the terminal line-break token remains.
func (a *assembler) eof() bool {
	return a.pos >= len(a.tokens)-1
}

func (a *assembler) fail() error {
	var hl diag.Range
	if a.pos > 0 {
		hl = tokenRange(a.tokens[a.pos-1])
	}
	if a.pos < len(a.tokens) {
		hl = tokenRange(a.tokens[a.pos])
	}
	d := diag.SyntaxToken(a.res.TextInLines, hl)
	d.File = a.res.Path
	return diag.Raise(d)
}
