package compiler

import (
	"fmt"
	"sort"
	"strings"

	"runa/pkg/ast"
)

// SymbolKind classifies what a name is bound to.
type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolParameter
	SymbolProcess
	SymbolBinding // bound by a Match pattern
)

var symbolKindNames = [...]string{
	SymbolVariable:  "variable",
	SymbolParameter: "parameter",
	SymbolProcess:   "process",
	SymbolBinding:   "pattern binding",
}

func (k SymbolKind) String() string {
	if int(k) >= 0 && int(k) < len(symbolKindNames) {
		return symbolKindNames[k]
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// ScopeKind records which construct opened a scope.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeBlock
	ScopeProcess
	ScopeLambda
)

// Symbol is the analyzer's record of a declared name.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Position   ast.Position
	Annotation ast.TypeExpr // nil unless declared with a type
	Parameters []string     // process parameters, in order
	Async      bool         // process declared with Async
}

// Scope maps names to symbols. Every scope except the global one has a parent.
type Scope struct {
	kind    ScopeKind
	async   bool
	parent  *Scope
	symbols map[string]*Symbol
}

// NewScope returns a scope nested in parent. A nil parent creates the global scope.
func NewScope(parent *Scope, kind ScopeKind) *Scope {
	if parent == nil {
		kind = ScopeGlobal
	}
	return &Scope{kind: kind, parent: parent, symbols: make(map[string]*Symbol)}
}

// Parent returns the enclosing scope, or nil for the global scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Kind returns the construct that opened s.
func (s *Scope) Kind() ScopeKind {
	return s.kind
}

// Define binds sym in s. If the name is already bound in s itself, the
// existing symbol is returned with false.
func (s *Scope) Define(sym *Symbol) (*Symbol, bool) {
	if existing, ok := s.symbols[sym.Name]; ok {
		return existing, false
	}
	s.symbols[sym.Name] = sym
	return sym, true
}

// LookupLocal searches s only.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// Lookup searches s and then each enclosing scope.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if sym, ok := scope.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// enclosingFunction returns the nearest process or lambda scope.
func (s *Scope) enclosingFunction() *Scope {
	for scope := s; scope != nil; scope = scope.parent {
		if scope.kind == ScopeProcess || scope.kind == ScopeLambda {
			return scope
		}
	}
	return nil
}

// inProcess reports whether s is nested inside a process body.
func (s *Scope) inProcess() bool {
	for scope := s; scope != nil; scope = scope.parent {
		if scope.kind == ScopeProcess {
			return true
		}
	}
	return false
}

// String returns a deterministically ordered dump of s and its parents.
func (s *Scope) String() string {
	var sb strings.Builder
	depth := 0
	for scope := s; scope != nil; scope = scope.parent {
		depth++
	}
	for scope := s; scope != nil; scope = scope.parent {
		depth--
		fmt.Fprintf(&sb, "Scope %d:\n", depth)
		if len(scope.symbols) == 0 {
			sb.WriteString("  (empty)\n")
			continue
		}
		names := make([]string, 0, len(scope.symbols))
		for name := range scope.symbols {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sym := scope.symbols[name]
			fmt.Fprintf(&sb, "  %-20s  %s (line %d)\n", name, sym.Kind, sym.Position.Line)
		}
	}
	return sb.String()
}
