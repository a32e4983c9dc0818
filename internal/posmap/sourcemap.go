package posmap

import (
	"fmt"
	"os"

	"github.com/go-sourcemap/sourcemap"
)

// SourceMap translates through a v3 source map file.
type SourceMap struct {
	consumer *sourcemap.Consumer
}

// ParseSourceMap decodes a source map. url is used to resolve relative sources.
func ParseSourceMap(url string, data []byte) (*SourceMap, error) {
	c, err := sourcemap.Parse(url, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source map %s: %w", url, err)
	}
	return &SourceMap{consumer: c}, nil
}

// LoadSourceMap reads and decodes the source map at path.
func LoadSourceMap(path string) (*SourceMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source map %s: %w", path, err)
	}
	return ParseSourceMap(path, data)
}

// OriginalPositionFor implements Translator. Lines are 1-based, columns 0-based.
func (m *SourceMap) OriginalPositionFor(line, column int) (Position, bool) {
	source, _, origLine, origColumn, ok := m.consumer.Source(line, column)
	if !ok {
		return Position{}, false
	}
	return Position{Source: source, Line: origLine, Column: origColumn}, true
}
