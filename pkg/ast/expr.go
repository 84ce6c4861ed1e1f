package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator identifies a binary operation.
type Operator int

const (
	OpPlus Operator = iota
	OpMinus
	OpMultiply
	OpDivide
	OpModulo
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpEqual
	OpNotEqual
	OpAnd
	OpOr
)

var operatorWords = [...]string{
	OpPlus:         "plus",
	OpMinus:        "minus",
	OpMultiply:     "multiplied by",
	OpDivide:       "divided by",
	OpModulo:       "modulo",
	OpGreater:      "greater than",
	OpLess:         "less than",
	OpGreaterEqual: "greater than or equal to",
	OpLessEqual:    "less than or equal to",
	OpEqual:        "equal to",
	OpNotEqual:     "not equal to",
	OpAnd:          "and",
	OpOr:           "or",
}

func (op Operator) String() string {
	if int(op) >= 0 && int(op) < len(operatorWords) {
		return operatorWords[op]
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// IsArithmetic reports whether op computes a number (or concatenation for plus).
func (op Operator) IsArithmetic() bool {
	return op <= OpModulo
}

// IsComparison reports whether op compares its operands.
func (op Operator) IsComparison() bool {
	return op >= OpGreater && op <= OpNotEqual
}

// IsLogical reports whether op is "and" or "or".
func (op Operator) IsLogical() bool {
	return op == OpAnd || op == OpOr
}

// StringLiteral holds the decoded string value.
type StringLiteral struct {
	Position
	Value string
}

// NumberLiteral keeps the source text so emitters can reproduce it exactly.
type NumberLiteral struct {
	Position
	Text    string
	Value   float64
	IsFloat bool
}

// BooleanLiteral is True or False.
type BooleanLiteral struct {
	Position
	Value bool
}

// VariableReference names a variable or process.
type VariableReference struct {
	Position
	Name string
}

// BinaryOperation applies Op to Left and Right.
type BinaryOperation struct {
	Position
	Left  Expr
	Op    Operator
	Right Expr
}

// NamedArgument is a "name as value" argument.
type NamedArgument struct {
	Name  string
	Value Expr
}

// FunctionCall invokes a process or builtin.
//
//	add with a as 2 and b as 3
type FunctionCall struct {
	Position
	Name  string
	Args  []Expr
	Named []NamedArgument
}

// ListExpression is a list literal.
type ListExpression struct {
	Position
	Elements []Expr
}

// DictionaryEntry is one key/value pair of a dictionary literal.
type DictionaryEntry struct {
	Key   Expr
	Value Expr
}

// DictionaryExpression is a dictionary literal; entry order is preserved.
type DictionaryExpression struct {
	Position
	Entries []DictionaryEntry
}

// IndexAccess reads Target at Index.
//
//	items at index 0
type IndexAccess struct {
	Position
	Target Expr
	Index  Expr
}

// LambdaExpression is an anonymous single-expression process.
//
//	Lambda a and b: a plus b
type LambdaExpression struct {
	Position
	Parameters []string
	Body       Expr
}

// PipelineExpression feeds Left into the function Right.
//
//	numbers |> sum
type PipelineExpression struct {
	Position
	Left  Expr
	Right Expr
}

// PartialApplication fixes some arguments of Function.
//
//	Partial add with 5
type PartialApplication struct {
	Position
	Function Expr
	Args     []Expr
	Named    []NamedArgument
}

// CompositionExpression composes Functions right to left: the last one runs first.
//
//	compose trim with lowercase
type CompositionExpression struct {
	Position
	Functions []Expr
}

// MapExpression applies Function to each element of Collection.
type MapExpression struct {
	Position
	Function   Expr
	Collection Expr
}

// FilterExpression keeps the elements of Collection satisfying Predicate.
type FilterExpression struct {
	Position
	Collection Expr
	Predicate  Expr
}

// ReduceExpression folds Collection with Function. Initial may be nil.
type ReduceExpression struct {
	Position
	Collection Expr
	Function   Expr
	Initial    Expr
}

// AwaitExpression suspends until Value resolves.
type AwaitExpression struct {
	Position
	Value Expr
}

func (*StringLiteral) exprNode()         {}
func (*NumberLiteral) exprNode()         {}
func (*BooleanLiteral) exprNode()        {}
func (*VariableReference) exprNode()     {}
func (*BinaryOperation) exprNode()       {}
func (*FunctionCall) exprNode()          {}
func (*ListExpression) exprNode()        {}
func (*DictionaryExpression) exprNode()  {}
func (*IndexAccess) exprNode()           {}
func (*LambdaExpression) exprNode()      {}
func (*PipelineExpression) exprNode()    {}
func (*PartialApplication) exprNode()    {}
func (*CompositionExpression) exprNode() {}
func (*MapExpression) exprNode()         {}
func (*FilterExpression) exprNode()      {}
func (*ReduceExpression) exprNode()      {}
func (*AwaitExpression) exprNode()       {}

func (e *StringLiteral) String() string { return strconv.Quote(e.Value) }
func (e *NumberLiteral) String() string { return e.Text }

func (e *BooleanLiteral) String() string {
	if e.Value {
		return "True"
	}
	return "False"
}

func (e *VariableReference) String() string { return e.Name }

func (e *BinaryOperation) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func callArgs(args []Expr, named []NamedArgument) string {
	parts := make([]string, 0, len(args)+len(named))
	for _, a := range args {
		parts = append(parts, a.String())
	}
	for _, n := range named {
		parts = append(parts, n.Name+"="+n.Value.String())
	}
	return strings.Join(parts, ", ")
}

func (e *FunctionCall) String() string {
	return fmt.Sprintf("%s(%s)", e.Name, callArgs(e.Args, e.Named))
}

func (e *ListExpression) String() string {
	return "[" + joinExprs(e.Elements) + "]"
}

func (e *DictionaryExpression) String() string {
	parts := make([]string, len(e.Entries))
	for i, entry := range e.Entries {
		parts[i] = entry.Key.String() + ": " + entry.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (e *IndexAccess) String() string {
	return fmt.Sprintf("%s[%s]", e.Target, e.Index)
}

func (e *LambdaExpression) String() string {
	return fmt.Sprintf("Lambda(%s): %s", strings.Join(e.Parameters, ", "), e.Body)
}

func (e *PipelineExpression) String() string {
	return fmt.Sprintf("(%s |> %s)", e.Left, e.Right)
}

func (e *PartialApplication) String() string {
	return fmt.Sprintf("partial %s(%s)", e.Function, callArgs(e.Args, e.Named))
}

func (e *CompositionExpression) String() string {
	parts := make([]string, len(e.Functions))
	for i, f := range e.Functions {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, " . ") + ")"
}

func (e *MapExpression) String() string {
	return fmt.Sprintf("map(%s, %s)", e.Function, e.Collection)
}

func (e *FilterExpression) String() string {
	return fmt.Sprintf("filter(%s, %s)", e.Collection, e.Predicate)
}

func (e *ReduceExpression) String() string {
	if e.Initial == nil {
		return fmt.Sprintf("reduce(%s, %s)", e.Collection, e.Function)
	}
	return fmt.Sprintf("reduce(%s, %s, %s)", e.Collection, e.Function, e.Initial)
}

func (e *AwaitExpression) String() string {
	return "await " + e.Value.String()
}

// IsLiteral reports whether e is a string, number or boolean literal.
func IsLiteral(e Expr) bool {
	switch e.(type) {
	case *StringLiteral, *NumberLiteral, *BooleanLiteral:
		return true
	}
	return false
}
