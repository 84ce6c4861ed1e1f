// Package codegen emits Python (target A) and JavaScript (target B) source
// from a Runa AST.
package codegen

import (
	_ "embed"
	"fmt"
	"strings"
)

// Target selects the output language.
type Target string

const (
	Python     Target = "python"
	JavaScript Target = "javascript"
)

// Targets lists every supported target.
var Targets = []Target{Python, JavaScript}

var targetAliases = map[string]Target{
	"python":     Python,
	"py":         Python,
	"a":          Python,
	"javascript": JavaScript,
	"js":         JavaScript,
	"b":          JavaScript,
}

// UnsupportedTargetError is returned for an unknown target id.
type UnsupportedTargetError struct {
	Name string
}

func (e *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("unsupported target %q (want python or javascript)", e.Name)
}

// ParseTarget resolves a target id or alias, ignoring case.
func ParseTarget(name string) (Target, error) {
	if t, ok := targetAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t, nil
	}
	return "", &UnsupportedTargetError{Name: name}
}

// Extension returns the usual file extension for code of target t.
func (t Target) Extension() string {
	if t == JavaScript {
		return ".js"
	}
	return ".py"
}

//go:embed runtime/runa_runtime.py
var pythonRuntime string

//go:embed runtime/runa_runtime.js
var javascriptRuntime string

// Runtime returns the support shim generated code of target t relies on.
// Python code imports it as the module runa_runtime; JavaScript code carries
// it inline.
func Runtime(t Target) (string, error) {
	switch t {
	case Python:
		return pythonRuntime, nil
	case JavaScript:
		return javascriptRuntime, nil
	}
	return "", &UnsupportedTargetError{Name: string(t)}
}
