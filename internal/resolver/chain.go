package resolver

import (
	"fmt"
	"regexp"

	"cardmesh/internal/card"
	"cardmesh/internal/deck"
)

// DefaultDeckPattern matches the manifest card of a published deck.
const DefaultDeckPattern = `/deck/([^/]+)/([^/]+)/base\.link$`

// Target is one downstream category a card path can resolve to.
type Target interface {
	Name() string
	Match(path string) bool
	Resolve(r *Resolver, b *card.Base, c *card.Card) error
}

// TargetChain picks the first target whose matcher accepts a path and falls
// back to the last resort when none does.
type TargetChain struct {
	targets  []Target
	fallback Target
}

// NewTargetChain creates a chain over targets, tried in order.
func NewTargetChain(fallback Target, targets ...Target) *TargetChain {
	return &TargetChain{targets: targets, fallback: fallback}
}

// Register appends t ahead of the fallback.
func (c *TargetChain) Register(t Target) {
	c.targets = append(c.targets, t)
}

// Select returns the target for path.
func (c *TargetChain) Select(path string) Target {
	for _, t := range c.targets {
		if t.Match(path) {
			return t
		}
	}
	return c.fallback
}

// Names lists the targets in the order they are tried, fallback last.
func (c *TargetChain) Names() []string {
	out := make([]string, 0, len(c.targets)+1)
	for _, t := range c.targets {
		out = append(out, t.Name())
	}
	return append(out, c.fallback.Name())
}

// CodeTarget resolves ordinary code modules.
type CodeTarget struct{}

func (CodeTarget) Name() string { return "code" }

func (CodeTarget) Match(string) bool { return true }

func (CodeTarget) Resolve(r *Resolver, b *card.Base, c *card.Card) error {
	return r.resolveCode(b, c)
}

// DeckTarget resolves presentation documents whose path matches one of its
// patterns. The modules a deck bears are resolved as their own targets.
type DeckTarget struct {
	patterns []*regexp.Regexp
}

// NewDeckTarget compiles patterns; an empty list uses DefaultDeckPattern.
func NewDeckTarget(patterns ...string) (*DeckTarget, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultDeckPattern}
	}
	t := &DeckTarget{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid deck pattern %q: %w", p, err)
		}
		t.patterns = append(t.patterns, re)
	}
	return t, nil
}

func (t *DeckTarget) Name() string { return "deck" }

func (t *DeckTarget) Match(path string) bool {
	for _, re := range t.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func (t *DeckTarget) Resolve(r *Resolver, b *card.Base, c *card.Card) error {
	d, err := deck.Process(b, c)
	if err != nil {
		return err
	}
	for _, path := range d.Bears {
		if err := r.Handle(b, path); err != nil {
			return err
		}
	}
	return nil
}
