package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cardmesh/internal/diag"
)

var (
	ColorError  = lipgloss.Color("#EF4444") // Red
	ColorAccent = lipgloss.Color("#F59E0B") // Amber
	ColorLink   = lipgloss.Color("#06B6D4") // Cyan
	ColorMuted  = lipgloss.Color("#6B7280") // Gray

	NoteStyle    = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	CodeStyle    = lipgloss.NewStyle().Foreground(ColorAccent)
	FileStyle    = lipgloss.NewStyle().Foreground(ColorLink).Underline(true)
	ExcerptStyle = lipgloss.NewStyle().PaddingLeft(4)
	FrameStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
)

// renderError formats err for the terminal. Diagnostics get their note, code,
// file, excerpt and translated call chain styled; other errors print as is.
func renderError(err error, frames bool) string {
	e, ok := diag.As(err)
	if !ok {
		return NoteStyle.Render(err.Error())
	}

	var b strings.Builder
	b.WriteString(NoteStyle.Render(e.Note))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s\n", CodeStyle.Render("code #"+e.Code.String()), FrameStyle.Render(e.Code.Name()))
	if e.File != "" {
		fmt.Fprintf(&b, "  file %s\n", FileStyle.Render(e.File))
	}
	if e.Text != "" {
		b.WriteString(ExcerptStyle.Render(e.Text))
		b.WriteString("\n")
	}
	if frames {
		for _, f := range e.Frames() {
			b.WriteString(FrameStyle.Render(fmt.Sprintf("    at %s (%s)", f.Function, f.Site())))
			b.WriteString("\n")
		}
	}
	return b.String()
}
