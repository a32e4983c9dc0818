// Package term classifies nests and dispatches static keywords to a closed set
// of handlers.
package term

import (
	"cardmesh/internal/tokenizer"
	"cardmesh/internal/tree"
)

// Hint is the classification of a nest's leading line item.
type Hint int

const (
	Empty Hint = iota
	StaticTerm
	DynamicTerm
	StaticText
	DynamicText
	Path
	Number
	Hashtag
	Group
)

var hintNames = [...]string{
	Empty:       "empty",
	StaticTerm:  "static-term",
	DynamicTerm: "dynamic-term",
	StaticText:  "static-text",
	DynamicText: "dynamic-text",
	Path:        "path",
	Number:      "number",
	Hashtag:     "hashtag",
	Group:       "group",
}

func (h Hint) String() string {
	if int(h) < 0 || int(h) >= len(hintNames) {
		return "unknown"
	}
	return hintNames[h]
}

// Classify determines how a nest must be handled.
func Classify(n *tree.Nest) Hint {
	if n.IsEmpty() {
		return Empty
	}
	if len(n.Lines) == 0 {
		return Group
	}
	switch it := n.Lines[0].(type) {
	case *tree.Term:
		if it.IsStatic() {
			return StaticTerm
		}
		return DynamicTerm
	case *tree.Text:
		if it.IsStatic() {
			return StaticText
		}
		return DynamicText
	case *tree.Leaf:
		switch it.Token.Kind {
		case tokenizer.Path:
			return Path
		case tokenizer.Decimal, tokenizer.SignedInteger, tokenizer.UnsignedInteger:
			return Number
		case tokenizer.Hashtag:
			return Hashtag
		}
	}
	return Empty
}

// StaticName returns the literal keyword of a nest led by a static term.
func StaticName(n *tree.Nest) (string, bool) {
	t, ok := n.HeadTerm()
	if !ok {
		return "", false
	}
	return t.Literal()
}

// Literal returns the string value of a nest led by a static text or a leaf.
func Literal(n *tree.Nest) (string, bool) {
	if n == nil || len(n.Lines) == 0 {
		return "", false
	}
	switch it := n.Lines[0].(type) {
	case *tree.Text:
		return it.Literal()
	case *tree.Leaf:
		return it.Token.Text, true
	case *tree.Term:
		return it.Literal()
	}
	return "", false
}
