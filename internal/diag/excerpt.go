package diag

import (
	"fmt"
	"strconv"
	"strings"
)

// Cursor is a zero-based line/character coordinate in a card.
type Cursor struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a highlighted region. End.Character is exclusive.
type Range struct {
	Start Cursor `json:"start"`
	End   Cursor `json:"end"`
}

// IsZero reports whether r is the empty range at the origin.
func (r Range) IsZero() bool {
	return r == Range{}
}

// contextLines is how many lines are shown above and below the highlight.
const contextLines = 2

// Highlight renders lines around hl with a right-aligned line-number gutter and a
// tilde underline beneath the highlighted characters of the start line.
func Highlight(lines []string, hl Range) string {
	if len(lines) == 0 {
		lines = []string{""}
	}
	focus := clamp(hl.Start.Line, 0, len(lines)-1)
	first := max(0, focus-contextLines)
	last := min(focus+contextLines, len(lines)-1)

	pad := len(strconv.Itoa(last + 1))
	blank := strings.Repeat(" ", pad)

	var b strings.Builder
	fmt.Fprintf(&b, "%s |\n", blank)
	for i := first; i <= last; i++ {
		fmt.Fprintf(&b, "%*d | %s\n", pad, i+1, lines[i])
		if i != focus {
			continue
		}
		start := clamp(hl.Start.Character, 0, len(lines[i]))
		end := hl.End.Character
		if hl.End.Line != hl.Start.Line {
			end = len(lines[i])
		}
		end = max(end, start)
		fmt.Fprintf(&b, "%s | %s%s\n", blank, strings.Repeat(" ", start), strings.Repeat("~", end-start))
	}
	fmt.Fprintf(&b, "%s |", blank)
	return b.String()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
