// Package posmap maps coordinates inside generated artifacts back to the card
// source they were produced from.
package posmap

import (
	"path/filepath"
	"strings"
	"sync"
)

// Position is an original-source coordinate. Source is empty when the
// translator has no mapping for the requested location.
type Position struct {
	Source string `json:"source,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Translator looks up the original position for a generated line/column.
type Translator interface {
	OriginalPositionFor(line, column int) (Position, bool)
}

// Table holds one translator per generated file path for the whole run.
type Table struct {
	mu   sync.RWMutex
	maps map[string]Translator
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{maps: make(map[string]Translator)}
}

// Register installs tr for the generated file at path, replacing any previous entry.
func (t *Table) Register(path string, tr Translator) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maps[path] = tr
}

// Lookup returns the translator registered for path.
func (t *Table) Lookup(path string) (Translator, bool) {
	if t == nil {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if tr, ok := t.maps[path]; ok {
		return tr, true
	}
	tr, ok := t.maps[trimScheme(path)]
	return tr, ok
}

// Len returns the number of registered generated files.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.maps)
}

// Translate rewrites a generated coordinate to its original one when a translator
// is registered and knows the location. Relative sources are resolved against the
// generated file's directory. The rewritten path is not checked for existence.
func (t *Table) Translate(file string, line, column int) (string, int, int) {
	tr, ok := t.Lookup(file)
	if !ok {
		return file, line, column
	}
	pos, ok := tr.OriginalPositionFor(line, column)
	if !ok || pos.Source == "" {
		return file, line, column
	}
	source := trimScheme(pos.Source)
	if !filepath.IsAbs(source) {
		source = filepath.Join(filepath.Dir(trimScheme(file)), source)
	}
	return filepath.Clean(source), pos.Line, pos.Column
}

func trimScheme(path string) string {
	return strings.TrimPrefix(path, "file://")
}
