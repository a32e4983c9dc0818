package card

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Extension is the file extension of cards.
const Extension = ".link"

// BaseCard is the file name a directory link resolves to.
const BaseCard = "base" + Extension

// Loader is the text-loading collaborator.
type Loader interface {
	// ReadText returns the full text of the card at path.
	ReadText(path string) (string, error)
	// ResolveLinkHost returns the directory relative links in path resolve against.
	ResolveLinkHost(path string) string
	// Exists reports whether a card file exists at path.
	Exists(path string) bool
	// IsDir reports whether path is a directory.
	IsDir(path string) bool
	// Root is the project root that root-relative and deck links resolve under.
	Root() string
}

// ResolveLink turns a link written in the card at from into an absolute card path.
//
//	./x, ../x   relative to the card's directory
//	/x          relative to the loader root
//	@host/name  under <root>/deck/host/name
//
// Directories resolve to their base card and a missing extension is added.
// ok is false when the target does not exist.
func ResolveLink(l Loader, from, link string) (string, bool) {
	var p string
	switch {
	case strings.HasPrefix(link, "@"):
		p = filepath.Join(l.Root(), "deck", filepath.FromSlash(link[1:]))
	case strings.HasPrefix(link, "/"):
		p = filepath.Join(l.Root(), filepath.FromSlash(link))
	case strings.HasPrefix(link, "."):
		p = filepath.Join(l.ResolveLinkHost(from), filepath.FromSlash(link))
	default:
		return "", false
	}

	if l.IsDir(p) {
		p = filepath.Join(p, BaseCard)
	} else if filepath.Ext(p) != Extension {
		p += Extension
	}
	return p, l.Exists(p)
}

// FSLoader loads cards from the filesystem.
type FSLoader struct {
	root string
}

// NewFSLoader creates a loader rooted at root.
func NewFSLoader(root string) (*FSLoader, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	return &FSLoader{root: abs}, nil
}

func (l *FSLoader) ReadText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read card %s: %w", path, err)
	}
	return string(b), nil
}

func (l *FSLoader) ResolveLinkHost(path string) string {
	return filepath.Dir(path)
}

func (l *FSLoader) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (l *FSLoader) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (l *FSLoader) Root() string {
	return l.root
}

// MemoryLoader serves cards from a map keyed by slash-separated absolute path.
type MemoryLoader struct {
	root  string
	files map[string]string
	Reads map[string]int
}

// NewMemoryLoader creates an in-memory loader.
func NewMemoryLoader(root string, files map[string]string) *MemoryLoader {
	return &MemoryLoader{root: root, files: files, Reads: make(map[string]int)}
}

func (l *MemoryLoader) ReadText(p string) (string, error) {
	text, ok := l.files[p]
	if !ok {
		return "", fmt.Errorf("card %s: %w", p, os.ErrNotExist)
	}
	l.Reads[p]++
	return text, nil
}

func (l *MemoryLoader) ResolveLinkHost(p string) string {
	return path.Dir(p)
}

func (l *MemoryLoader) Exists(p string) bool {
	_, ok := l.files[p]
	return ok
}

func (l *MemoryLoader) IsDir(p string) bool {
	prefix := strings.TrimSuffix(p, "/") + "/"
	for name := range l.files {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (l *MemoryLoader) Root() string {
	return l.root
}
