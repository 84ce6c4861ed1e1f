// Package feedback holds the diagnostic values every compiler stage reports.
package feedback

import (
	"fmt"

	"runa/pkg/ast"
)

// Severity separates blocking errors from advisories.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Classification constants name the stage that produced a diagnostic.
const (
	LexicalError    = "lexical error"
	SyntaxError     = "syntax error"
	SemanticError   = "semantic error"
	SemanticWarning = "semantic warning"
	TypeError       = "type error"
)

// Diagnostic is a message attached to a source position.
type Diagnostic struct {
	Severity       Severity
	Classification string
	Message        string
	Position       ast.Position
}

// Errorf builds an error diagnostic.
func Errorf(class string, pos ast.Position, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Error, Classification: class, Message: fmt.Sprintf(format, args...), Position: pos}
}

// Warningf builds a warning diagnostic.
func Warningf(class string, pos ast.Position, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Warning, Classification: class, Message: fmt.Sprintf(format, args...), Position: pos}
}

// String renders "line L, column C: message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d, column %d: %s", d.Position.Line, d.Position.Column, d.Message)
}

// Strings renders each diagnostic with String.
func Strings(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.String()
	}
	return out
}
