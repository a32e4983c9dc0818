package graph

import (
	"fmt"
	"sort"

	"cardmesh/internal/diag"
)

func (g *Graph) UnresolvedReasonCounts() map[UnresolvedReason]int {
	counts := make(map[UnresolvedReason]int)
	if g == nil {
		return counts
	}
	for _, u := range g.Unresolved {
		reason := u.Reason
		if reason == "" {
			reason = ReasonNoCandidate
		}
		counts[reason]++
	}
	return counts
}

func (g *Graph) StateCounts() map[ModuleState]int {
	counts := make(map[ModuleState]int)
	if g == nil {
		return counts
	}
	for _, m := range g.Modules {
		counts[m.State]++
	}
	return counts
}

// Strict fails with ModuleUnresolvable for the first importing module, by path,
// holding selections that have no candidate in their target.
func (g *Graph) Strict() error {
	missing := make(map[string][]string)
	for _, u := range g.Unresolved {
		if u.Reason != ReasonNoCandidate {
			continue
		}
		s := u.Selection
		missing[s.From] = append(missing[s.From], fmt.Sprintf("%s %s from %s", s.Kind, s.Name, s.Target))
	}
	if len(missing) == 0 {
		return nil
	}
	froms := make([]string, 0, len(missing))
	for from := range missing {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	return diag.Raise(diag.ModuleUnresolvable(froms[0], missing[froms[0]]...))
}
