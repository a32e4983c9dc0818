package card

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"cardmesh/internal/diag"
	"cardmesh/internal/posmap"
	"cardmesh/internal/tree"
)

// Stats counts resolver work for a run.
type Stats struct {
	Parsed   atomic.Int64
	Promoted atomic.Int64
	Partial  atomic.Int64
	Skipped  atomic.Int64
}

// Base is the run-wide context. One Base is built per run and passed to every
// parse and resolve call.
type Base struct {
	ID        uuid.UUID
	Cards     *Registry
	Arena     *tree.Arena
	Positions *posmap.Table
	Loader    Loader
	Log       *slog.Logger
	Stats     Stats

	mu  sync.Mutex
	err error
}

// NewBase creates a run context over loader. A nil logger discards output.
func NewBase(loader Loader, log *slog.Logger) *Base {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	id := uuid.New()
	return &Base{
		ID:        id,
		Cards:     NewRegistry(),
		Arena:     tree.NewArena(),
		Positions: posmap.NewTable(),
		Loader:    loader,
		Log:       log.With("run", id.String()),
	}
}

// Fail records the first fatal error of the run and returns it. Diagnostic
// errors get the run's position-map table attached.
func (b *Base) Fail(err error) error {
	if e, ok := diag.As(err); ok {
		e.WithPositions(b.Positions)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err == nil {
		b.err = err
	}
	return b.err
}

// Err returns the error that aborted the run, if any.
func (b *Base) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}
