package diag

import (
	"fmt"
	"strings"
)

func SyntaxToken(lines []string, hl Range) Diagnostic {
	return Diagnostic{
		Code: CodeSyntaxToken,
		Note: "Error in the structure of the text tree.",
		Text: Highlight(lines, hl),
	}
}

func UnhandledTermInterpolation(file string) Diagnostic {
	return Diagnostic{
		Code: CodeUnhandledTermInterpolation,
		File: file,
		Note: "We haven't implemented handling term interpolation yet.",
	}
}

// UnhandledTermCase reports a child term outside its parent's expected shapes.
func UnhandledTermCase(file, name, scope, excerpt string) Diagnostic {
	note := "Unhandled term case"
	if name != "" {
		note += fmt.Sprintf(" `%s`", name)
	}
	if scope != "" {
		note += fmt.Sprintf(" inside `%s`", scope)
	}
	return Diagnostic{Code: CodeUnhandledTermCase, File: file, Note: note + ".", Text: excerpt}
}

func UnknownTerm(file, name, inside, excerpt string) Diagnostic {
	note := fmt.Sprintf("Unknown term `%s`", name)
	if inside != "" {
		note += fmt.Sprintf(" inside `%s`", inside)
	}
	return Diagnostic{Code: CodeUnknownTerm, File: file, Note: note + ".", Text: excerpt}
}

func UnhandledNestCase(file, shape, scope, excerpt string) Diagnostic {
	note := fmt.Sprintf("We haven't implemented handling \"%ss\" yet", shape)
	if scope != "" {
		note += fmt.Sprintf(" on `%s`", scope)
	}
	return Diagnostic{Code: CodeUnhandledNestCase, File: file, Note: note + ".", Text: excerpt}
}

func ObjectNotType(object string, like ...string) Diagnostic {
	quoted := make([]string, len(like))
	for i, l := range like {
		quoted[i] = "`" + l + "`"
	}
	words := strings.Join(quoted, " or ")
	return Diagnostic{
		Code: CodeObjectNotType,
		Note: fmt.Sprintf("Object isn't type %s.", words),
		Text: object,
	}
}

func InvalidDeckLink(file, link string) Diagnostic {
	return Diagnostic{Code: CodeInvalidDeckLink, File: file, Note: fmt.Sprintf("Invalid deck link '%s'.", link)}
}

func InvalidNestChildrenLength(file string, length int, excerpt string) Diagnostic {
	return Diagnostic{
		Code: CodeInvalidNestChildrenLength,
		File: file,
		Note: fmt.Sprintf("Term doesn't have %d children.", length),
		Text: excerpt,
	}
}

func MissingString(file, property, name, excerpt string) Diagnostic {
	return Diagnostic{
		Code: CodeMissingString,
		File: file,
		Note: fmt.Sprintf("String property `%s <...>` missing in `%s`.", property, name),
		Text: excerpt,
	}
}

func UnresolvedPath(file, path string) Diagnostic {
	return Diagnostic{Code: CodeUnresolvedPath, File: file, Note: fmt.Sprintf("File not found %s.", path)}
}

func TermMissing(file, term, object string) Diagnostic {
	return Diagnostic{Code: CodeTermMissing, File: file, Note: fmt.Sprintf("Term %s is missing on %s.", term, object)}
}

func ScopePropertyMissing(property string) Diagnostic {
	return Diagnostic{Code: CodeScopePropertyMissing, Note: fmt.Sprintf("Scope is missing property %s.", property)}
}

func ModuleUnresolvable(file string, references ...string) Diagnostic {
	note := "Module has unresolvable references"
	if len(references) > 0 {
		note += ": " + strings.Join(references, ", ")
	}
	return Diagnostic{Code: CodeModuleUnresolvable, File: file, Note: note + "."}
}

func NotImplemented(what string) Diagnostic {
	return Diagnostic{Code: CodeNotImplemented, Note: fmt.Sprintf("Handling `%s` is not implemented yet.", what)}
}
