// Package ast defines the syntax tree produced by the Runa parser.
//
// The tree is made of closed families of node types (statements, expressions,
// patterns and type annotations). Every node embeds a Position recording the
// first token of the production that built it.
package ast

import (
	"fmt"
	"strings"
)

// Position is a 1-based source location.
type Position struct {
	Line   int
	Column int
}

// Pos returns the position itself so that embedding types satisfy Node.
func (p Position) Pos() Position { return p }

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() Position
	String() string
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of a parsed compilation unit.
type Program struct {
	Statements []Stmt
}

func (p *Program) String() string {
	var sb strings.Builder
	for _, s := range p.Statements {
		sb.WriteString(s.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func joinStmts(stmts []Stmt) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.String()
	}
	return strings.Join(parts, "; ")
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
