package posmap

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// markerRe matches `// @link <source>:<line>:<column>` comments emitted into generated Go.
var markerRe = regexp.MustCompile(`^//\s*@link\s+(.+):(\d+):(\d+)\s*$`)

type marker struct {
	genLine int
	source  string
	line    int
	column  int
}

// Markers translates a generated Go file through the position marker comments
// it carries. A marker applies to every line below it until the next marker.
type Markers struct {
	entries []marker
}

// LoadMarkers parses the generated Go file at path.
func LoadMarkers(ctx context.Context, path string) (*Markers, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read generated file %s: %w", path, err)
	}
	return ParseMarkers(ctx, src)
}

// ParseMarkers collects marker comments from Go source. Only real comment nodes
// are considered, so marker-like text inside string literals is ignored.
func ParseMarkers(ctx context.Context, src []byte) (*Markers, error) {
	lang := golang.GetLanguage()

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse generated source: %w", err)
	}

	query, err := sitter.NewQuery([]byte(`(comment) @comment`), lang)
	if err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}

	qc := sitter.NewQueryCursor()
	qc.Exec(query, tree.RootNode())

	m := &Markers{}
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range match.Captures {
			text := strings.TrimSpace(c.Node.Content(src))
			groups := markerRe.FindStringSubmatch(text)
			if groups == nil {
				continue
			}
			line, _ := strconv.Atoi(groups[2])
			column, _ := strconv.Atoi(groups[3])
			m.entries = append(m.entries, marker{
				genLine: int(c.Node.StartPoint().Row) + 1,
				source:  groups[1],
				line:    line,
				column:  column,
			})
		}
	}

	sort.SliceStable(m.entries, func(i, j int) bool {
		return m.entries[i].genLine < m.entries[j].genLine
	})
	return m, nil
}

// Len returns the number of markers found.
func (m *Markers) Len() int {
	return len(m.entries)
}

// OriginalPositionFor implements Translator. line is 1-based.
func (m *Markers) OriginalPositionFor(line, column int) (Position, bool) {
	i := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].genLine >= line
	})
	if i == 0 {
		return Position{}, false
	}
	e := m.entries[i-1]
	return Position{
		Source: e.source,
		Line:   e.line + (line - e.genLine - 1),
		Column: e.column,
	}, true
}
