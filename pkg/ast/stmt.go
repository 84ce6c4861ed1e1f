package ast

import (
	"fmt"
	"strings"
)

// Declaration binds a new name in the current scope.
//
//	Let total be price plus tax
type Declaration struct {
	Position
	Name  string
	Value Expr
}

// Assignment rebinds an existing name.
//
//	Set total to 0
type Assignment struct {
	Position
	Name  string
	Value Expr
}

// IfStatement holds a condition, a then-block and an optional Otherwise block.
// An "Otherwise If" chain is stored as an Else block holding a single IfStatement.
type IfStatement struct {
	Position
	Condition Expr
	Then      []Stmt
	Else      []Stmt
}

// ForEachStatement iterates Iterable binding Variable in a fresh scope.
//
//	For each item in items:
//	Async For each chunk in stream:
type ForEachStatement struct {
	Position
	Variable string
	Iterable Expr
	Body     []Stmt
	Async    bool
}

// ReturnStatement exits the enclosing process. Value is nil for a bare Return.
type ReturnStatement struct {
	Position
	Value Expr
}

// DisplayStatement prints a value.
type DisplayStatement struct {
	Position
	Value Expr
}

// ProcessDefinition declares an untyped process (function).
//
//	Process called "add" that takes a and b:
type ProcessDefinition struct {
	Position
	Name       string
	Parameters []string
	Body       []Stmt
	Async      bool
}

// MatchCase is one "When pattern:" arm of a Match statement.
type MatchCase struct {
	Position
	Pattern Pattern
	Body    []Stmt
}

func (c *MatchCase) String() string {
	return fmt.Sprintf("When %s: %s", c.Pattern, joinStmts(c.Body))
}

// MatchStatement tests Subject against Cases in order; the first match wins.
type MatchStatement struct {
	Position
	Subject Expr
	Cases   []*MatchCase
}

// TypeAlias names a type annotation.
//
//	Type UserId is Integer
type TypeAlias struct {
	Position
	Name   string
	Target TypeExpr
}

// TypedDeclaration is a declaration carrying an explicit annotation.
//
//	Let count (Integer) be 0
type TypedDeclaration struct {
	Position
	Name       string
	Annotation TypeExpr
	Value      Expr
}

// TypedParameter is a process parameter with an optional annotation.
type TypedParameter struct {
	Name string
	Type TypeExpr // nil when the parameter is unannotated
}

func (p TypedParameter) String() string {
	if p.Type == nil {
		return p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.Type)
}

// GenericParameter is a type parameter declared on a process.
type GenericParameter struct {
	Name string
}

// TypedProcessDefinition is a process with parameter and return annotations.
//
//	Process[T] called "first" that takes items (List[T]) returns (T):
type TypedProcessDefinition struct {
	Position
	Name       string
	Generics   []GenericParameter
	Parameters []TypedParameter
	Returns    TypeExpr // nil when no return annotation was written
	Body       []Stmt
	Async      bool
}

// ParameterNames returns the parameter names in declaration order.
func (d *TypedProcessDefinition) ParameterNames() []string {
	names := make([]string, len(d.Parameters))
	for i, p := range d.Parameters {
		names[i] = p.Name
	}
	return names
}

// ExpressionStatement evaluates an expression for its effect, typically a call.
type ExpressionStatement struct {
	Position
	Expr Expr
}

func (*Declaration) stmtNode()            {}
func (*Assignment) stmtNode()             {}
func (*IfStatement) stmtNode()            {}
func (*ForEachStatement) stmtNode()       {}
func (*ReturnStatement) stmtNode()        {}
func (*DisplayStatement) stmtNode()       {}
func (*ProcessDefinition) stmtNode()      {}
func (*MatchStatement) stmtNode()         {}
func (*TypeAlias) stmtNode()              {}
func (*TypedDeclaration) stmtNode()       {}
func (*TypedProcessDefinition) stmtNode() {}
func (*ExpressionStatement) stmtNode()    {}

func (s *Declaration) String() string {
	return fmt.Sprintf("Let %s be %s", s.Name, s.Value)
}

func (s *Assignment) String() string {
	return fmt.Sprintf("Set %s to %s", s.Name, s.Value)
}

func (s *IfStatement) String() string {
	out := fmt.Sprintf("If %s: { %s }", s.Condition, joinStmts(s.Then))
	if len(s.Else) > 0 {
		out += fmt.Sprintf(" Otherwise: { %s }", joinStmts(s.Else))
	}
	return out
}

func (s *ForEachStatement) String() string {
	prefix := ""
	if s.Async {
		prefix = "Async "
	}
	return fmt.Sprintf("%sFor each %s in %s: { %s }", prefix, s.Variable, s.Iterable, joinStmts(s.Body))
}

func (s *ReturnStatement) String() string {
	if s.Value == nil {
		return "Return"
	}
	return "Return " + s.Value.String()
}

func (s *DisplayStatement) String() string {
	return "Display " + s.Value.String()
}

func (s *ProcessDefinition) String() string {
	prefix := ""
	if s.Async {
		prefix = "Async "
	}
	return fmt.Sprintf("%sProcess %s(%s) { %s }", prefix, s.Name, strings.Join(s.Parameters, ", "), joinStmts(s.Body))
}

func (s *MatchStatement) String() string {
	cases := make([]string, len(s.Cases))
	for i, c := range s.Cases {
		cases[i] = c.String()
	}
	return fmt.Sprintf("Match %s: { %s }", s.Subject, strings.Join(cases, " | "))
}

func (s *TypeAlias) String() string {
	return fmt.Sprintf("Type %s is %s", s.Name, s.Target)
}

func (s *TypedDeclaration) String() string {
	return fmt.Sprintf("Let %s (%s) be %s", s.Name, s.Annotation, s.Value)
}

func (s *TypedProcessDefinition) String() string {
	prefix := ""
	if s.Async {
		prefix = "Async "
	}
	params := make([]string, len(s.Parameters))
	for i, p := range s.Parameters {
		params[i] = p.String()
	}
	generics := ""
	if len(s.Generics) > 0 {
		names := make([]string, len(s.Generics))
		for i, g := range s.Generics {
			names[i] = g.Name
		}
		generics = "[" + strings.Join(names, ", ") + "]"
	}
	ret := ""
	if s.Returns != nil {
		ret = " returns " + s.Returns.String()
	}
	return fmt.Sprintf("%sProcess%s %s(%s)%s { %s }", prefix, generics, s.Name, strings.Join(params, ", "), ret, joinStmts(s.Body))
}

func (s *ExpressionStatement) String() string {
	return s.Expr.String()
}
