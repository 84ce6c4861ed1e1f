package compiler

import (
	"strings"
	"testing"

	"runa/pkg/ast"
)

func TestScope(t *testing.T) {
	t.Run("DefineAndLookup", func(t *testing.T) {
		global := NewScope(nil, ScopeBlock)
		if global.Kind() != ScopeGlobal {
			t.Errorf("a scope without parent should be global, got %v", global.Kind())
		}
		sym, ok := global.Define(&Symbol{Name: "x", Kind: SymbolVariable, Position: ast.Position{Line: 1, Column: 1}})
		if !ok || sym.Name != "x" {
			t.Fatalf("Define returned %v, %v", sym, ok)
		}
		if _, ok := global.Lookup("x"); !ok {
			t.Errorf("x should resolve")
		}
		if _, ok := global.Lookup("y"); ok {
			t.Errorf("y should not resolve")
		}
	})

	t.Run("Redeclaration", func(t *testing.T) {
		s := NewScope(nil, ScopeGlobal)
		s.Define(&Symbol{Name: "x", Position: ast.Position{Line: 1}})
		existing, ok := s.Define(&Symbol{Name: "x", Position: ast.Position{Line: 2}})
		if ok {
			t.Fatalf("second Define in the same scope should fail")
		}
		if existing.Position.Line != 1 {
			t.Errorf("expected the original symbol from line 1, got line %d", existing.Position.Line)
		}
	})

	t.Run("Shadowing", func(t *testing.T) {
		global := NewScope(nil, ScopeGlobal)
		global.Define(&Symbol{Name: "x", Kind: SymbolVariable})
		inner := NewScope(global, ScopeBlock)
		if _, ok := inner.Define(&Symbol{Name: "x", Kind: SymbolParameter}); !ok {
			t.Fatalf("shadowing in a child scope should succeed")
		}
		sym, _ := inner.Lookup("x")
		if sym.Kind != SymbolParameter {
			t.Errorf("lookup should find the innermost symbol, got %v", sym.Kind)
		}
		if _, ok := inner.LookupLocal("x"); !ok {
			t.Errorf("LookupLocal should see the child definition")
		}
		if inner.Parent() != global {
			t.Errorf("parent back-reference is wrong")
		}
	})

	t.Run("EnclosingFunction", func(t *testing.T) {
		global := NewScope(nil, ScopeGlobal)
		proc := NewScope(global, ScopeProcess)
		proc.async = true
		block := NewScope(proc, ScopeBlock)
		lambda := NewScope(block, ScopeLambda)

		if fn := block.enclosingFunction(); fn != proc || !fn.async {
			t.Errorf("block should be enclosed by the async process")
		}
		if fn := lambda.enclosingFunction(); fn != lambda {
			t.Errorf("a lambda is its own enclosing function")
		}
		if !lambda.inProcess() {
			t.Errorf("a lambda inside a process is in a process")
		}
		if global.inProcess() || global.enclosingFunction() != nil {
			t.Errorf("global scope is not inside a process")
		}
	})

	t.Run("String", func(t *testing.T) {
		global := NewScope(nil, ScopeGlobal)
		global.Define(&Symbol{Name: "b", Kind: SymbolProcess, Position: ast.Position{Line: 3}})
		global.Define(&Symbol{Name: "a", Kind: SymbolVariable, Position: ast.Position{Line: 1}})
		inner := NewScope(global, ScopeBlock)
		dump := inner.String()
		if !strings.Contains(dump, "Scope 1:\n  (empty)") {
			t.Errorf("expected the empty child scope first, got:\n%s", dump)
		}
		if strings.Index(dump, "a ") > strings.Index(dump, "b ") {
			t.Errorf("symbols should be sorted, got:\n%s", dump)
		}
		if !strings.Contains(dump, "process (line 3)") {
			t.Errorf("expected the symbol kind in the dump, got:\n%s", dump)
		}
	})
}
