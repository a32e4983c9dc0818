package diag

import "fmt"

// Code is a stable diagnostic identifier. Values never change once published,
// regardless of how the note is worded.
type Code int

const (
	CodeUnhandledTermInterpolation Code = 1
	CodeUnhandledTermCase          Code = 2
	CodeUnknownTerm                Code = 3
	CodeUnhandledNestCase          Code = 4
	CodeObjectNotType              Code = 7
	CodeInvalidDeckLink            Code = 8
	CodeInvalidNestChildrenLength  Code = 9
	CodeMissingString              Code = 11
	CodeUnresolvedPath             Code = 13
	CodeTermMissing                Code = 18
	CodeScopePropertyMissing       Code = 19
	CodeModuleUnresolvable         Code = 20
	CodeSyntaxToken                Code = 21
	CodeNotImplemented             Code = 22
)

var codeNames = map[Code]string{
	CodeUnhandledTermInterpolation: "UnhandledTermInterpolation",
	CodeUnhandledTermCase:          "UnhandledTermCase",
	CodeUnknownTerm:                "UnknownTerm",
	CodeUnhandledNestCase:          "UnhandledNestCase",
	CodeObjectNotType:              "ObjectNotType",
	CodeInvalidDeckLink:            "InvalidDeckLink",
	CodeInvalidNestChildrenLength:  "InvalidNestChildrenLength",
	CodeMissingString:              "MissingString",
	CodeUnresolvedPath:             "UnresolvedPath",
	CodeTermMissing:                "TermMissing",
	CodeScopePropertyMissing:       "ScopePropertyMissing",
	CodeModuleUnresolvable:         "ModuleUnresolvable",
	CodeSyntaxToken:                "SyntaxTokenError",
	CodeNotImplemented:             "NotImplemented",
}

// String renders the code as the four digit form shown to users.
func (c Code) String() string {
	return fmt.Sprintf("%04d", int(c))
}

// Name returns the symbolic name of the code.
func (c Code) Name() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "Unknown"
}
