package compiler

import (
	"errors"

	"runa/pkg/ast"
	"runa/pkg/feedback"
)

// Frontend is the outcome of running every front-end stage on one source.
// Program is nil when the source did not parse.
type Frontend struct {
	Program  *ast.Program
	Errors   []feedback.Diagnostic
	Warnings []feedback.Diagnostic
}

// Valid reports whether the front end produced no errors.
func (f *Frontend) Valid() bool {
	return f.Program != nil && len(f.Errors) == 0
}

// Compile lexes, parses and analyzes src with g. It stops after the first
// stage that reports errors.
func (g *Grammar) Compile(src string) *Frontend {
	prog, lexErrs, err := g.Parse(src)
	out := &Frontend{Errors: LexDiagnostics(lexErrs)}
	if err != nil {
		out.Errors = append(out.Errors, ParseDiagnostic(err))
		return out
	}
	if len(lexErrs) > 0 {
		return out
	}
	out.Program = prog
	res := Analyze(prog)
	out.Errors = append(out.Errors, res.Errors...)
	out.Warnings = res.Warnings
	return out
}

// Compile runs the front end with the default grammar.
func Compile(src string) *Frontend {
	return defaultGrammar.Compile(src)
}

// LexDiagnostics converts lexer errors to diagnostics.
func LexDiagnostics(errs []*LexError) []feedback.Diagnostic {
	out := make([]feedback.Diagnostic, 0, len(errs))
	for _, e := range errs {
		out = append(out, feedback.Errorf(feedback.LexicalError, ast.Position{Line: e.Line, Column: e.Column}, "%s", e.Message))
	}
	return out
}

// ParseDiagnostic converts a parse failure to a diagnostic.
func ParseDiagnostic(err error) feedback.Diagnostic {
	var perr *ParseError
	if errors.As(err, &perr) {
		return feedback.Errorf(feedback.SyntaxError, ast.Position{Line: perr.Line, Column: perr.Column}, "%s", perr.Message)
	}
	return feedback.Errorf(feedback.SyntaxError, ast.Position{}, "%v", err)
}
