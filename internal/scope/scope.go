// Package scope implements the parent-linked binding environments used while
// walking a card.
package scope

import (
	"cardmesh/internal/diag"
)

// Kind names the construct that introduced a scope.
type Kind int

const (
	KindContainer Kind = iota
	KindStep
	KindClass
	KindInterface
	KindFunction
	KindConstant
	KindTemplate
	KindTest
	KindImport
	KindExport
	KindDeck
)

var kindNames = [...]string{
	KindContainer: "container",
	KindStep:      "step",
	KindClass:     "class",
	KindInterface: "interface",
	KindFunction:  "function",
	KindConstant:  "constant",
	KindTemplate:  "template",
	KindTest:      "test",
	KindImport:    "import",
	KindExport:    "export",
	KindDeck:      "deck",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Data is the flat binding table of one scope.
type Data map[string]any

// Scope is one environment. A child borrows its parent and never owns it.
type Scope struct {
	Kind   Kind
	Data   Data
	Parent *Scope
}

// Extend builds a scope of kind over data, enclosed by parent (may be nil).
func Extend(kind Kind, data Data, parent *Scope) *Scope {
	if data == nil {
		data = Data{}
	}
	return &Scope{Kind: kind, Data: data, Parent: parent}
}

// Get walks from s to the root and returns the value of the nearest scope that
// owns key. ok is false when no scope in the chain owns it.
func Get(s *Scope, key string) (value any, ok bool) {
	for ; s != nil; s = s.Parent {
		if v, has := s.Data[key]; has {
			return v, true
		}
	}
	return nil, false
}

// Owner returns the nearest scope, starting at s, that owns key.
func Owner(s *Scope, key string) (*Scope, bool) {
	for ; s != nil; s = s.Parent {
		if _, has := s.Data[key]; has {
			return s, true
		}
	}
	return nil, false
}

// Set assigns value in the nearest scope that already owns key. Assignment
// never declares: when no scope in the chain owns key nothing is created and a
// ScopePropertyMissing diagnostic is returned.
func Set(s *Scope, key string, value any) error {
	owner, ok := Owner(s, key)
	if !ok {
		return diag.Raise(diag.ScopePropertyMissing(key))
	}
	owner.Data[key] = value
	return nil
}
