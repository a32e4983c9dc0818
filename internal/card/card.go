// Package card holds source documents, the run-wide card registry and the Base
// run context threaded through parsing and resolution.
package card

import (
	"sort"
	"strings"
	"sync"

	"cardmesh/internal/tree"
)

// Card is one source document.
type Card struct {
	Path       string
	Text       string
	TextByLine []string

	// Seed is the arena node of the card's root nest. It is valid once Bound is true.
	Seed  tree.NodeID
	Bound bool

	// Target names the target category that handled the card ("code", "deck").
	Target string
}

// Directory returns the host directory for links written in the card.
func (c *Card) Directory(l Loader) string {
	return l.ResolveLinkHost(c.Path)
}

// Registry guarantees at most one card per absolute path for a run.
type Registry struct {
	mu    sync.Mutex
	cards map[string]*Card
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{cards: make(map[string]*Card)}
}

// Claim returns the card for path, creating it when absent. created is true
// only for the single caller that inserted it.
func (r *Registry) Claim(path string) (c *Card, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.cards[path]; ok {
		return c, false
	}
	c = &Card{Path: path}
	r.cards[path] = c
	r.order = append(r.order, path)
	return c, true
}

// Card returns the card for path, creating it when absent.
func (r *Registry) Card(path string) *Card {
	c, _ := r.Claim(path)
	return c
}

// Lookup returns the card registered for path.
func (r *Registry) Lookup(path string) (*Card, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[path]
	return c, ok
}

// Has reports whether path is registered.
func (r *Registry) Has(path string) bool {
	_, ok := r.Lookup(path)
	return ok
}

// Bind attaches the parsed text and root nest of c.
func (r *Registry) Bind(c *Card, text string, seed tree.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Text = text
	c.TextByLine = strings.Split(text, "\n")
	c.Seed = seed
	c.Bound = true
}

// Len returns the number of registered cards.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cards)
}

// Paths returns registered paths in registration order.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Sorted returns registered cards ordered by path.
func (r *Registry) Sorted() []*Card {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Card, 0, len(r.cards))
	for _, c := range r.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
