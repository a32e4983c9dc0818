package diag

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"cardmesh/internal/posmap"
)

// Diagnostic is a user-facing failure record.
type Diagnostic struct {
	Code Code   `json:"code"`
	Note string `json:"note"`
	File string `json:"file,omitempty"`
	Text string `json:"text,omitempty"`
}

// Frame is one call-chain entry. Column is zero when the runtime does not know it.
type Frame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column,omitempty"`
}

// maxFrames bounds the captured call chain.
const maxFrames = 32

// Error is a fatal diagnostic. It aborts the run that raised it.
type Error struct {
	Diagnostic
	frames    []uintptr
	positions *posmap.Table
}

// Raise captures the caller's call chain and wraps d as an error.
func Raise(d Diagnostic) *Error {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(2, pcs)
	return &Error{Diagnostic: d, frames: pcs[:n]}
}

// WithPositions attaches the run's position-map table so the rendered call chain
// is translated back to original coordinates.
func (e *Error) WithPositions(t *posmap.Table) *Error {
	if e.positions == nil {
		e.positions = t
	}
	return e
}

// Frames returns the call chain, translated through the attached table.
func (e *Error) Frames() []Frame {
	var out []Frame
	frames := runtime.CallersFrames(e.frames)
	for {
		f, more := frames.Next()
		if f.File != "" {
			file, line, column := f.File, f.Line, 0
			if e.positions != nil {
				file, line, column = e.positions.Translate(file, line, column)
			}
			out = append(out, Frame{Function: label(f.Function), File: file, Line: line, Column: column})
		}
		if !more {
			break
		}
	}
	return out
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message())
	b.WriteString("    list base\n")
	for _, f := range e.Frames() {
		fmt.Fprintf(&b, "      call <%s>\n", f.Function)
		fmt.Fprintf(&b, "        site <%s>\n", f.Site())
	}
	return b.String()
}

// Message renders the note, code, file and excerpt without the call chain.
func (e *Error) Message() string {
	d := e.Diagnostic
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "  note <%s>\n", d.Note)
	fmt.Fprintf(&b, "    code #%s\n", d.Code)
	switch {
	case d.File != "" && d.Text != "":
		fmt.Fprintf(&b, "    file <%s>, <\n", d.File)
		writeIndented(&b, d.Text)
		b.WriteString("    >\n")
	case d.File != "":
		fmt.Fprintf(&b, "    file <%s>\n", d.File)
	case d.Text != "":
		b.WriteString("    text <\n")
		writeIndented(&b, d.Text)
		b.WriteString("    >\n")
	}
	b.WriteString("\n")
	return b.String()
}

// Site renders file:line[:column].
func (f Frame) Site() string {
	if f.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", f.File, f.Line, f.Column)
	}
	return fmt.Sprintf("%s:%d", f.File, f.Line)
}

func writeIndented(b *strings.Builder, text string) {
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("      ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func label(fn string) string {
	if fn == "" {
		return "[anonymous]"
	}
	if i := strings.LastIndex(fn, "/"); i >= 0 {
		fn = fn[i+1:]
	}
	return fn
}

// As extracts a diagnostic error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the diagnostic code carried by err, or zero.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return 0
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
