package tokenizer

// Kind classifies a token.
type Kind int

const (
	CloseEvaluation Kind = iota
	CloseInterpolation
	CloseParenthesis
	CloseText
	Comma
	Comment
	Decimal
	Hashtag
	Line
	OpenEvaluation
	OpenIndentation
	OpenInterpolation
	OpenNesting
	OpenParenthesis
	OpenText
	Path
	SignedInteger
	String
	TermFragment
	UnsignedInteger
)

var kindNames = [...]string{
	CloseEvaluation:    "text-close-evaluation",
	CloseInterpolation: "text-close-interpolation",
	CloseParenthesis:   "text-close-parenthesis",
	CloseText:          "text-close-text",
	Comma:              "text-comma",
	Comment:            "text-comment",
	Decimal:            "text-decimal",
	Hashtag:            "text-hashtag",
	Line:               "text-line",
	OpenEvaluation:     "text-open-evaluation",
	OpenIndentation:    "text-open-indentation",
	OpenInterpolation:  "text-open-interpolation",
	OpenNesting:        "text-open-nesting",
	OpenParenthesis:    "text-open-parenthesis",
	OpenText:           "text-open-text",
	Path:               "text-path",
	SignedInteger:      "text-signed-integer",
	String:             "text-string",
	TermFragment:       "text-term-fragment",
	UnsignedInteger:    "text-unsigned-integer",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "text-unknown"
	}
	return kindNames[k]
}

// Position is a zero-based line/character coordinate.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Offset is a half-open byte range [Start, End) into the source text.
type Offset struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Token is one lexical unit. Tokens are never mutated after Tokenize returns.
type Token struct {
	Kind   Kind     `json:"kind"`
	Text   string   `json:"text"`
	Offset Offset   `json:"offset"`
	Start  Position `json:"start"`
	End    Position `json:"end"`
}

// Mode is an entry on the lexical mode stack.
type Mode int

const (
	// ModeTree parses full structural syntax.
	ModeTree Mode = iota
	// ModeText parses the body of a quoted text.
	ModeText
)

func (m Mode) String() string {
	if m == ModeText {
		return "text"
	}
	return "tree"
}
