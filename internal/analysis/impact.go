package analysis

import (
	"sort"

	"cardmesh/internal/git"
	"cardmesh/internal/graph"
)

// ImpactReport summarizes the modules and declarations affected by changes.
type ImpactReport struct {
	// DirectModules are the changed cards present in the graph.
	DirectModules []*graph.Module
	// DirectSymbols are the declarations enclosing a changed line.
	DirectSymbols []*graph.Symbol
	// Selectors are the modules importing a directly affected declaration by name.
	Selectors []*graph.Module
	// IndirectModules reach a changed card through imports, exports or bears.
	IndirectModules []*graph.Module
	// Unknown lists changed cards the graph has no module for.
	Unknown []string
}

// Analyzer performs impact analysis on the module graph.
type Analyzer struct {
	g *graph.Graph
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(g *graph.Graph) *Analyzer {
	return &Analyzer{g: g}
}

// AnalyzeImpact identifies which modules and declarations are affected by the given changes.
func (a *Analyzer) AnalyzeImpact(changes []git.ChangedFile) (*ImpactReport, error) {
	report := &ImpactReport{}

	seenDirect := make(map[string]bool)
	seenSymbol := make(map[string]bool)

	// 1. Direct impacts
	for _, change := range changes {
		m, ok := a.g.Modules[change.Path]
		if !ok {
			report.Unknown = append(report.Unknown, change.Path)
			continue
		}
		if !seenDirect[m.Path] {
			report.DirectModules = append(report.DirectModules, m)
			seenDirect[m.Path] = true
		}
		symbols := a.g.SymbolsOf(m.Path)
		for _, line := range change.ChangedLines {
			s := enclosing(symbols, line)
			if s != nil && !seenSymbol[s.ID] {
				report.DirectSymbols = append(report.DirectSymbols, s)
				seenSymbol[s.ID] = true
			}
		}
	}

	// 2. Modules selecting an affected declaration
	seenSelector := make(map[string]bool)
	for _, e := range a.g.Edges {
		if e.Kind != graph.RelationSelects || !seenSymbol[e.To] || seenSelector[e.From] {
			continue
		}
		if m, ok := a.g.Modules[e.From]; ok {
			report.Selectors = append(report.Selectors, m)
			seenSelector[e.From] = true
		}
	}

	// 3. Indirect impacts (transitive dependents)
	seenIndirect := make(map[string]bool)
	queue := append([]*graph.Module(nil), report.DirectModules...)
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		for _, dep := range a.g.GetDependents(m.Path) {
			if seenDirect[dep.Path] || seenIndirect[dep.Path] {
				continue
			}
			seenIndirect[dep.Path] = true
			report.IndirectModules = append(report.IndirectModules, dep)
			queue = append(queue, dep)
		}
	}

	sortModules(report.IndirectModules)
	sortModules(report.Selectors)
	return report, nil
}

// enclosing returns the declaration starting closest above line. Symbols only
// carry their first line, so a declaration is taken to run until the next one.
func enclosing(symbols []*graph.Symbol, line int) *graph.Symbol {
	var best *graph.Symbol
	for _, s := range symbols {
		if s.Line <= line && (best == nil || s.Line > best.Line) {
			best = s
		}
	}
	return best
}

func sortModules(ms []*graph.Module) {
	sort.Slice(ms, func(i, j int) bool { return ms[i].Path < ms[j].Path })
}
