package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cardmesh/internal/graph"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			root TEXT,
			created_at INTEGER,
			modules INTEGER,
			symbols INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS modules (
			path TEXT PRIMARY KEY,
			target TEXT,
			state TEXT,
			mark TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS symbols (
			id TEXT PRIMARY KEY,
			module TEXT,
			kind TEXT,
			name TEXT,
			hidden INTEGER,
			line INTEGER,
			details JSON
		);`,
		`CREATE TABLE IF NOT EXISTS edges (
			from_id TEXT,
			to_id TEXT,
			kind TEXT,
			PRIMARY KEY (from_id, to_id, kind)
		);`,
		`CREATE TABLE IF NOT EXISTS unresolved (
			from_id TEXT,
			target TEXT,
			kind TEXT,
			name TEXT,
			alias TEXT,
			line INTEGER,
			reason TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_module ON symbols(module);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

type symbolDetails struct {
	Members []string `json:"members,omitempty"`
	Bases   []string `json:"bases,omitempty"`
}

// SaveGraph replaces the snapshot. Modules, symbols, edges and unresolved
// selections absent from g are removed.
func (s *SQLiteStore) SaveGraph(ctx context.Context, run Run, g *graph.Graph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"modules", "symbols", "edges", "unresolved"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// 1. Save Modules
	modStmt, err := tx.PrepareContext(ctx, `INSERT INTO modules (path, target, state, mark) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer modStmt.Close()

	for _, m := range g.SortedModules() {
		if _, err := modStmt.ExecContext(ctx, m.Path, m.Target, string(m.State), m.Mark); err != nil {
			return err
		}
	}

	// 2. Save Symbols
	symStmt, err := tx.PrepareContext(ctx, `INSERT INTO symbols (id, module, kind, name, hidden, line, details) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer symStmt.Close()

	for _, sym := range g.Symbols {
		details, _ := json.Marshal(symbolDetails{Members: sym.Members, Bases: sym.Bases})
		if _, err := symStmt.ExecContext(ctx, sym.ID, sym.Module, sym.Kind, sym.Name, sym.Hidden, sym.Line, details); err != nil {
			return err
		}
	}

	// 3. Save Edges
	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (from_id, to_id, kind) VALUES (?, ?, ?)
		ON CONFLICT(from_id, to_id, kind) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	for _, edge := range g.Edges {
		if _, err := edgeStmt.ExecContext(ctx, edge.From, edge.To, string(edge.Kind)); err != nil {
			return err
		}
	}

	// 4. Save Unresolved selections
	unStmt, err := tx.PrepareContext(ctx, `INSERT INTO unresolved (from_id, target, kind, name, alias, line, reason) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer unStmt.Close()

	for _, u := range g.Unresolved {
		sel := u.Selection
		if _, err := unStmt.ExecContext(ctx, sel.From, sel.Target, sel.Kind, sel.Name, sel.Alias, sel.Line, string(u.Reason)); err != nil {
			return err
		}
	}

	// 5. Record the run
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, root, created_at, modules, symbols) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			root=excluded.root,
			created_at=excluded.created_at,
			modules=excluded.modules,
			symbols=excluded.symbols
	`, run.ID, run.Root, run.CreatedAt.UnixNano(), len(g.Modules), len(g.Symbols))
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadGraph(ctx context.Context) (*graph.Graph, error) {
	g := graph.NewGraph()

	// 1. Load Modules
	rows, err := s.db.QueryContext(ctx, "SELECT path, target, state, mark FROM modules")
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		g.AddModule(m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 2. Load Symbols
	syms, err := s.querySymbols(ctx, "SELECT id, module, kind, name, hidden, line, details FROM symbols")
	if err != nil {
		return nil, err
	}
	for _, sym := range syms {
		g.AddSymbol(sym)
	}

	// 3. Load Edges
	edgeRows, err := s.db.QueryContext(ctx, "SELECT from_id, to_id, kind FROM edges")
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var edge graph.Edge
		var kind string
		if err := edgeRows.Scan(&edge.From, &edge.To, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edge.Kind = graph.RelationKind(kind)
		g.Edges = append(g.Edges, edge)
	}

	// 4. Load Unresolved selections
	unRows, err := s.db.QueryContext(ctx, "SELECT from_id, target, kind, name, alias, line, reason FROM unresolved")
	if err != nil {
		return nil, fmt.Errorf("failed to query unresolved: %w", err)
	}
	defer unRows.Close()

	for unRows.Next() {
		var u graph.Unresolved
		var reason string
		sel := &u.Selection
		if err := unRows.Scan(&sel.From, &sel.Target, &sel.Kind, &sel.Name, &sel.Alias, &sel.Line, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan unresolved: %w", err)
		}
		u.Reason = graph.UnresolvedReason(reason)
		g.Unresolved = append(g.Unresolved, u)
	}

	return g, nil
}

func (s *SQLiteStore) GetModule(ctx context.Context, path string) (*graph.Module, error) {
	row := s.db.QueryRowContext(ctx, "SELECT path, target, state, mark FROM modules WHERE path = ?", path)
	return scanModule(row)
}

func (s *SQLiteStore) FindSymbolsByModule(ctx context.Context, path string) ([]*graph.Symbol, error) {
	return s.querySymbols(ctx, "SELECT id, module, kind, name, hidden, line, details FROM symbols WHERE module = ? ORDER BY id", path)
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, root, created_at, modules, symbols FROM runs ORDER BY created_at DESC LIMIT 1")

	var r Run
	var created int64
	if err := row.Scan(&r.ID, &r.Root, &created, &r.Modules, &r.Symbols); err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(0, created)
	return &r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanModule(row scanner) (*graph.Module, error) {
	var m graph.Module
	var state string
	if err := row.Scan(&m.Path, &m.Target, &state, &m.Mark); err != nil {
		return nil, err
	}
	m.State = graph.ModuleState(state)
	return &m, nil
}

func (s *SQLiteStore) querySymbols(ctx context.Context, query string, args ...any) ([]*graph.Symbol, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var out []*graph.Symbol
	for rows.Next() {
		var sym graph.Symbol
		var details []byte
		if err := rows.Scan(&sym.ID, &sym.Module, &sym.Kind, &sym.Name, &sym.Hidden, &sym.Line, &details); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		if len(details) > 0 {
			var d symbolDetails
			_ = json.Unmarshal(details, &d)
			sym.Members, sym.Bases = d.Members, d.Bases
		}
		out = append(out, &sym)
	}
	return out, rows.Err()
}
