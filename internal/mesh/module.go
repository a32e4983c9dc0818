package mesh

import (
	"sort"

	"cardmesh/internal/diag"
)

// Bucket splits one declaration kind into every declaration and the public ones.
type Bucket struct {
	All    map[string]*Declaration `json:"all"`
	Public map[string]*Declaration `json:"public"`
}

func newBucket() *Bucket {
	return &Bucket{All: make(map[string]*Declaration), Public: make(map[string]*Declaration)}
}

// put stores d, the last writer winning on a duplicate name.
func (b *Bucket) put(d *Declaration) {
	b.All[d.Name] = d
	if d.Hidden {
		delete(b.Public, d.Name)
		return
	}
	b.Public[d.Name] = d
}

// Names returns the sorted names in the all view.
func (b *Bucket) Names() []string {
	out := make([]string, 0, len(b.All))
	for name := range b.All {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Module is the symbol mesh of one code card.
type Module struct {
	Path    string            `json:"path"`
	Buckets map[Kind]*Bucket  `json:"buckets"`
	Imports []*Declaration    `json:"imports"`
	Exports []*Declaration    `json:"exports"`
	Dupes   map[Kind][]string `json:"duplicates,omitempty"`
}

func (*Module) Shape() string { return "module" }

// Bucketed lists the kinds that are bucketed by name.
var Bucketed = []Kind{Constant, Class, ClassInterface, Function, Template, Test}

// Build buckets decls into a new module. Imports and exports keep source order.
// Duplicate names within a bucket overwrite and are recorded in Dupes.
func Build(path string, decls []*Declaration) (*Module, error) {
	m := &Module{Path: path, Buckets: make(map[Kind]*Bucket, len(Bucketed))}
	for _, k := range Bucketed {
		m.Buckets[k] = newBucket()
	}

	for _, d := range decls {
		switch d.Kind {
		case Import:
			m.Imports = append(m.Imports, d)
		case Export:
			m.Exports = append(m.Exports, d)
		default:
			b, ok := m.Buckets[d.Kind]
			if !ok {
				return nil, diag.Raise(diag.NotImplemented(d.Kind.String()))
			}
			if _, dup := b.All[d.Name]; dup {
				if m.Dupes == nil {
					m.Dupes = make(map[Kind][]string)
				}
				m.Dupes[d.Kind] = append(m.Dupes[d.Kind], d.Name)
			}
			b.put(d)
		}
	}
	return m, nil
}

// Bucket returns the bucket for k, or nil when k is not bucketed.
func (m *Module) Bucket(k Kind) *Bucket {
	return m.Buckets[k]
}

// Public returns the public declaration of kind k named name.
func (m *Module) Public(k Kind, name string) (*Declaration, bool) {
	b := m.Buckets[k]
	if b == nil {
		return nil, false
	}
	d, ok := b.Public[name]
	return d, ok
}

// Lookup returns a declaration of kind k named name from the all view.
func (m *Module) Lookup(k Kind, name string) (*Declaration, bool) {
	b := m.Buckets[k]
	if b == nil {
		return nil, false
	}
	d, ok := b.All[name]
	return d, ok
}

// Declarations returns every bucketed declaration ordered by kind then name.
func (m *Module) Declarations() []*Declaration {
	var out []*Declaration
	for _, k := range Bucketed {
		b := m.Buckets[k]
		for _, name := range b.Names() {
			out = append(out, b.All[name])
		}
	}
	return out
}
