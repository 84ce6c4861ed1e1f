package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"runa/pkg/ast"
)

func TestDiagnostic(t *testing.T) {
	pos := ast.Position{Line: 3, Column: 7}

	e := Errorf(SemanticError, pos, "undefined name %q", "x")
	assert.Equal(t, Error, e.Severity)
	assert.Equal(t, SemanticError, e.Classification)
	assert.Equal(t, `line 3, column 7: undefined name "x"`, e.String())

	w := Warningf(SemanticWarning, pos, "process %q is never called", "p")
	assert.Equal(t, Warning, w.Severity)
	assert.Equal(t, "warning", w.Severity.String())
	assert.Equal(t, "error", e.Severity.String())

	assert.Equal(t, []string{e.String(), w.String()}, Strings([]Diagnostic{e, w}))
	assert.Empty(t, Strings(nil))
}
