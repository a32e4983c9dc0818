// Package tokenizer turns card text into a flat token stream.
//
// Scanning runs line by line against an ordered pattern list chosen by the mode
// on top of the lexical mode stack. Interpolation openers push a tree mode, so
// interpolated bodies accept the full structural syntax and nest arbitrarily;
// text openers push a text mode that only knows string bodies, escapes and
// interpolation openers.
package tokenizer

import (
	"regexp"
	"strings"

	"cardmesh/internal/diag"
)

type pattern struct {
	kind Kind
	re   *regexp.Regexp
}

// pathChar excludes whitespace, the path separator and every delimiter so a
// path never swallows the close of a group, slot or text.
const pathChar = `[^\s/{}<>\[\](),]`

// treePatterns is ordered by priority; the first match wins. Numerals come
// before hashtags, paths and term fragments so they are never read as names.
var treePatterns = []pattern{
	{CloseEvaluation, regexp.MustCompile(`^ *\] *`)},
	{CloseInterpolation, regexp.MustCompile(`^\}+`)},
	{CloseParenthesis, regexp.MustCompile(`^\)`)},
	{CloseText, regexp.MustCompile(`^>`)},
	{Comma, regexp.MustCompile(`^, +`)},
	{Comment, regexp.MustCompile(`^# [^\n]+`)},
	{Decimal, regexp.MustCompile(`^-?\d+\.\d+`)},
	{SignedInteger, regexp.MustCompile(`^-\d+\b`)},
	{UnsignedInteger, regexp.MustCompile(`^\d+\b`)},
	{Hashtag, regexp.MustCompile(`^#\w+`)},
	{OpenEvaluation, regexp.MustCompile(`^ *\[ *`)},
	{OpenIndentation, regexp.MustCompile(`^  `)},
	{OpenInterpolation, regexp.MustCompile(`^\{+`)},
	{OpenNesting, regexp.MustCompile(`^ `)},
	{OpenParenthesis, regexp.MustCompile(`^\(`)},
	{OpenText, regexp.MustCompile(`^<`)},
	{Path, regexp.MustCompile(`^(?:@` + pathChar + `+(?:/` + pathChar + `*)*|\.{1,2}(?:/` + pathChar + `*)*|(?:/` + pathChar + `+)+)`)},
	{TermFragment, regexp.MustCompile(`^-?[*~]?[a-z][a-z0-9]*(?:-[a-z0-9]+)*\??(?:/[a-z][a-z0-9]*(?:-[a-z0-9]+)*\??)*-?`)},
}

var textPatterns = []pattern{
	{CloseText, regexp.MustCompile(`^>`)},
	{OpenInterpolation, regexp.MustCompile(`^\{+`)},
	{String, regexp.MustCompile(`^(?:\\.|[^{>\\])+`)},
}

func patternsFor(m Mode) []pattern {
	if m == ModeText {
		return textPatterns
	}
	return treePatterns
}

// Result is a tokenized card.
type Result struct {
	Path        string
	Text        string
	TextInLines []string
	Tokens      []Token
}

type scanner struct {
	path   string
	lines  []string
	tokens []Token
	modes  []Mode

	line      int
	character int
	offset    int
}

// Tokenize scans text. Every line except the last is followed by a line-break
// token covering its "\n", and the stream always ends with one zero-width
// terminal line-break token, so joining token texts reproduces text exactly.
func Tokenize(path, text string) (*Result, error) {
	s := &scanner{
		path:  path,
		lines: strings.Split(text, "\n"),
		modes: []Mode{ModeTree},
	}

	for i, line := range s.lines {
		if err := s.scanLine(line); err != nil {
			return nil, err
		}
		if i < len(s.lines)-1 {
			s.emit(Line, "\n")
			s.line++
			s.character = 0
		}
	}

	if len(s.modes) != 1 {
		return nil, s.fail()
	}

	s.tokens = append(s.tokens, Token{
		Kind:   Line,
		Offset: Offset{Start: s.offset, End: s.offset},
		Start:  Position{Line: s.line, Character: s.character},
		End:    Position{Line: s.line, Character: s.character},
	})

	return &Result{Path: path, Text: text, TextInLines: s.lines, Tokens: s.tokens}, nil
}

func (s *scanner) scanLine(rest string) error {
	for rest != "" {
		matched := false
		for _, p := range patternsFor(s.top()) {
			loc := p.re.FindStringIndex(rest)
			if loc == nil || loc[1] == 0 {
				continue
			}
			text := rest[:loc[1]]
			if !s.shift(p.kind) {
				return s.fail()
			}
			s.emit(p.kind, text)
			rest = rest[loc[1]:]
			matched = true
			break
		}
		if !matched {
			return s.fail()
		}
	}
	return nil
}

// shift applies the mode-stack effect of kind. Closers must match the mode
// they close and may never pop the root entry.
func (s *scanner) shift(kind Kind) bool {
	switch kind {
	case OpenInterpolation:
		s.modes = append(s.modes, ModeTree)
	case OpenText:
		s.modes = append(s.modes, ModeText)
	case CloseInterpolation:
		if len(s.modes) < 2 || s.top() != ModeTree {
			return false
		}
		s.modes = s.modes[:len(s.modes)-1]
	case CloseText:
		if s.top() != ModeText {
			return false
		}
		s.modes = s.modes[:len(s.modes)-1]
	}
	return true
}

func (s *scanner) top() Mode {
	return s.modes[len(s.modes)-1]
}

func (s *scanner) emit(kind Kind, text string) {
	n := len(text)
	s.tokens = append(s.tokens, Token{
		Kind:   kind,
		Text:   text,
		Offset: Offset{Start: s.offset, End: s.offset + n},
		Start:  Position{Line: s.line, Character: s.character},
		End:    Position{Line: s.line, Character: s.character + n},
	})
	s.offset += n
	s.character += n
}

// fail builds a SyntaxTokenError highlighting the last produced token.
func (s *scanner) fail() error {
	var hl diag.Range
	if n := len(s.tokens); n > 0 {
		last := s.tokens[n-1]
		hl.Start = diag.Cursor{Line: last.Start.Line, Character: last.Start.Character}
		hl.End = diag.Cursor{Line: last.End.Line, Character: last.End.Character}
	}
	d := diag.SyntaxToken(s.lines, hl)
	d.File = s.path
	return diag.Raise(d)
}

// Depth reports the mode-stack depth after scanning tokens. Well-formed input
// always returns to 1.
func Depth(tokens []Token) int {
	depth := 1
	for _, t := range tokens {
		switch t.Kind {
		case OpenInterpolation, OpenText:
			depth++
		case CloseInterpolation, CloseText:
			depth--
		}
	}
	return depth
}
