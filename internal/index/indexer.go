package index

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"cardmesh/internal/card"
	"cardmesh/internal/crawler"
	"cardmesh/internal/graph"
	"cardmesh/internal/posmap"
	"cardmesh/internal/resolver"
)

// Indexer orchestrates crawling, resolution and graph management.
type Indexer struct {
	crawler  *crawler.Crawler
	resolver *resolver.Resolver
	log      *slog.Logger

	// Strict turns selections with no candidate into a ModuleUnresolvable failure.
	Strict bool
	// Positions are registered on every run's position-map table.
	Positions map[string]posmap.Translator
}

// NewIndexer creates a new indexer.
func NewIndexer(c *crawler.Crawler, r *resolver.Resolver, log *slog.Logger) *Indexer {
	return &Indexer{
		crawler:  c,
		resolver: r,
		log:      log,
	}
}

// Resolver returns the resolver runs are driven with.
func (i *Indexer) Resolver() *resolver.Resolver {
	return i.resolver
}

// NewBase creates a run context for loader with the indexer's position maps.
func (i *Indexer) NewBase(loader card.Loader) *card.Base {
	b := card.NewBase(loader, i.log)
	for path, tr := range i.Positions {
		b.Positions.Register(path, tr)
	}
	return b
}

// BuildGraph resolves every card under root on one run and builds the graph.
func (i *Indexer) BuildGraph(root string) (*graph.Graph, *card.Base, error) {
	loader, err := card.NewFSLoader(root)
	if err != nil {
		return nil, nil, err
	}
	b := i.NewBase(loader)

	err = i.crawler.ScanProject(loader.Root(), func(path string) error {
		return i.resolver.Handle(b, path)
	})
	if err != nil {
		return nil, b, fmt.Errorf("scan failed: %w", err)
	}

	g := graph.FromBase(b)
	if i.Strict {
		if err := g.Strict(); err != nil {
			return g, b, b.Fail(err)
		}
	}
	return g, b, nil
}

// SaveGraph persists the graph to a JSON file.
func (i *Indexer) SaveGraph(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create graph file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(g); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return nil
}

// LoadGraph loads a graph from a JSON file.
func (i *Indexer) LoadGraph(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file: %w", err)
	}
	defer f.Close()

	g := graph.NewGraph()
	decoder := json.NewDecoder(f)
	if err := decoder.Decode(g); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}

	// The name index is not serialized.
	g.Reindex()

	return g, nil
}
