package crawler

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Crawler scans a directory for card files.
type Crawler struct {
	extension string
	ignored   []string
}

// NewCrawler creates a new crawler for files ending in extension.
func NewCrawler(extension string) *Crawler {
	return &Crawler{
		extension: extension,
		ignored:   []string{".git", "node_modules", "testdata"},
	}
}

// ScanProject walks the root directory and streams the absolute path of every
// card file to onCard. Walking stops at the first error onCard returns.
func (c *Crawler) ScanProject(root string, onCard func(path string) error) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !strings.HasSuffix(d.Name(), c.extension) {
			return nil
		}
		return onCard(path)
	})
}
