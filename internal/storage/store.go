package storage

import (
	"context"
	"time"

	"cardmesh/internal/graph"
)

// Run describes one persisted scan.
type Run struct {
	ID        string    `json:"id"`
	Root      string    `json:"root"`
	CreatedAt time.Time `json:"created_at"`
	Modules   int       `json:"modules"`
	Symbols   int       `json:"symbols"`
}

// Store persists graph snapshots.
type Store interface {
	GraphStore
	Close() error
}

// GraphStore defines operations for persisting the module graph.
type GraphStore interface {
	// SaveGraph replaces the stored snapshot with g and records the run.
	SaveGraph(ctx context.Context, run Run, g *graph.Graph) error

	// LoadGraph reads the stored snapshot.
	LoadGraph(ctx context.Context) (*graph.Graph, error)

	// GetModule retrieves a module by its path.
	GetModule(ctx context.Context, path string) (*graph.Module, error)

	// FindSymbolsByModule retrieves all symbols declared by a module.
	FindSymbolsByModule(ctx context.Context, path string) ([]*graph.Symbol, error)

	// LatestRun returns the most recently saved run.
	LatestRun(ctx context.Context) (*Run, error)
}
