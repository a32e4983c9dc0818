// Package mesh holds declaration records and the per-module symbol mesh built
// from them.
package mesh

// Kind is the kind of a declaration.
type Kind int

const (
	Constant Kind = iota
	Class
	ClassInterface
	Function
	Template
	Test
	Import
	Export
)

var kindNames = [...]string{
	Constant:       "constant",
	Class:          "class",
	ClassInterface: "class-interface",
	Function:       "function",
	Template:       "template",
	Test:           "test",
	Import:         "import",
	Export:         "export",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Selection is one name pulled from an imported module.
type Selection struct {
	Kind  Kind   `json:"kind"`
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
}

// Local returns the name the selection is bound to in the importing module.
func (s Selection) Local() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// Declaration is a resolved top-level construct of a code card.
type Declaration struct {
	Kind   Kind   `json:"kind"`
	Name   string `json:"name"`
	Hidden bool   `json:"hidden,omitempty"`
	Card   string `json:"card"`
	Line   int    `json:"line"`

	// Link is the target as written and Path its absolute form (imports and exports).
	Link       string      `json:"link,omitempty"`
	Path       string      `json:"path,omitempty"`
	Selections []Selection `json:"selections,omitempty"`
	// Bears lists imported names the importing module passes on.
	Bears []string `json:"bears,omitempty"`

	// Members lists named children (class tasks and links, function parameters).
	Members []string `json:"members,omitempty"`
	// Bases lists the classes a class extends.
	Bases []string `json:"bases,omitempty"`
	Notes []string `json:"notes,omitempty"`
	Value string   `json:"value,omitempty"`
}

func (*Declaration) Shape() string { return "declaration" }

// IsTarget reports whether the declaration references another module.
func (d *Declaration) IsTarget() bool {
	return d.Kind == Import || d.Kind == Export
}

// Inject is a fuse site. It keeps the card's tree from being promoted.
type Inject struct {
	Name string `json:"name"`
	Card string `json:"card"`
	Line int    `json:"line"`
}

func (*Inject) Shape() string { return "inject" }

// Note is top-level static text. It is ignored when building the mesh.
type Note struct {
	Text string `json:"text"`
}

func (*Note) Shape() string { return "note" }
