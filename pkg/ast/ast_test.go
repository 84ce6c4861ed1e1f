package ast

import (
	"strings"
	"testing"
)

func num(text string) *NumberLiteral { return &NumberLiteral{Text: text} }

func ref(name string) *VariableReference { return &VariableReference{Name: name} }

// kinds records the statement kinds it is dispatched.
type kinds []string

func (k *kinds) add(s string)                                  { *k = append(*k, s) }
func (k *kinds) VisitDeclaration(*Declaration)                 { k.add("Declaration") }
func (k *kinds) VisitAssignment(*Assignment)                   { k.add("Assignment") }
func (k *kinds) VisitIf(*IfStatement)                          { k.add("If") }
func (k *kinds) VisitForEach(*ForEachStatement)                { k.add("ForEach") }
func (k *kinds) VisitReturn(*ReturnStatement)                  { k.add("Return") }
func (k *kinds) VisitDisplay(*DisplayStatement)                { k.add("Display") }
func (k *kinds) VisitProcess(*ProcessDefinition)               { k.add("Process") }
func (k *kinds) VisitMatch(*MatchStatement)                    { k.add("Match") }
func (k *kinds) VisitTypeAlias(*TypeAlias)                     { k.add("TypeAlias") }
func (k *kinds) VisitTypedDeclaration(*TypedDeclaration)       { k.add("TypedDeclaration") }
func (k *kinds) VisitTypedProcess(*TypedProcessDefinition)     { k.add("TypedProcess") }
func (k *kinds) VisitExpressionStatement(*ExpressionStatement) { k.add("ExpressionStatement") }

type bogus struct{ Position }

func (bogus) stmtNode()      {}
func (bogus) exprNode()      {}
func (bogus) String() string { return "bogus" }

func TestWalkStmts_Dispatch(t *testing.T) {
	stmts := []Stmt{
		&Declaration{Name: "x", Value: num("1")},
		&Assignment{Name: "x", Value: num("2")},
		&IfStatement{Condition: ref("x")},
		&ForEachStatement{Variable: "i", Iterable: ref("xs")},
		&ReturnStatement{},
		&DisplayStatement{Value: ref("x")},
		&ProcessDefinition{Name: "p"},
		&MatchStatement{Subject: ref("x")},
		&ExpressionStatement{Expr: &FunctionCall{Name: "p"}},
	}
	var got kinds
	WalkStmts(&got, stmts)
	want := "Declaration Assignment If ForEach Return Display Process Match ExpressionStatement"
	if strings.Join(got, " ") != want {
		t.Errorf("dispatch order = %v, want %s", got, want)
	}
}

func TestWalkStmt_UnknownKind(t *testing.T) {
	defer func() {
		r := recover()
		d, ok := r.(GeneratorDefect)
		if !ok {
			t.Fatalf("expected GeneratorDefect panic, got %v", r)
		}
		if !strings.Contains(d.Error(), "ast.bogus") {
			t.Errorf("unexpected message %q", d.Error())
		}
	}()
	var k kinds
	WalkStmt(&k, bogus{})
}

// printer renders expressions in prefix form to check VisitExpr dispatch.
type printer struct{}

func (printer) VisitString(e *StringLiteral) string   { return "str" }
func (printer) VisitNumber(e *NumberLiteral) string   { return e.Text }
func (printer) VisitBoolean(e *BooleanLiteral) string { return "bool" }
func (printer) VisitVariable(e *VariableReference) string {
	return e.Name
}
func (p printer) VisitBinary(e *BinaryOperation) string {
	return "(" + e.Op.String() + " " + VisitExpr[string](p, e.Left) + " " + VisitExpr[string](p, e.Right) + ")"
}
func (printer) VisitCall(e *FunctionCall) string                 { return "call " + e.Name }
func (printer) VisitList(e *ListExpression) string               { return "list" }
func (printer) VisitDictionary(e *DictionaryExpression) string   { return "dict" }
func (printer) VisitIndex(e *IndexAccess) string                 { return "index" }
func (printer) VisitLambda(e *LambdaExpression) string           { return "lambda" }
func (printer) VisitPipeline(e *PipelineExpression) string       { return "pipe" }
func (printer) VisitPartial(e *PartialApplication) string        { return "partial" }
func (printer) VisitComposition(e *CompositionExpression) string { return "compose" }
func (printer) VisitMap(e *MapExpression) string                 { return "map" }
func (printer) VisitFilter(e *FilterExpression) string           { return "filter" }
func (printer) VisitReduce(e *ReduceExpression) string           { return "reduce" }
func (printer) VisitAwait(e *AwaitExpression) string             { return "await" }

func TestVisitExpr(t *testing.T) {
	e := &BinaryOperation{
		Left:  num("1"),
		Op:    OpPlus,
		Right: &BinaryOperation{Left: ref("x"), Op: OpMultiply, Right: num("2")},
	}
	if got := VisitExpr[string](printer{}, e); got != "(plus 1 (multiplied by x 2))" {
		t.Errorf("VisitExpr = %q", got)
	}

	defer func() {
		if _, ok := recover().(GeneratorDefect); !ok {
			t.Errorf("expected GeneratorDefect for an unknown expression")
		}
	}()
	VisitExpr[string](printer{}, bogus{})
}

func TestInspect(t *testing.T) {
	proc := &ProcessDefinition{
		Name: "p",
		Body: []Stmt{&ReturnStatement{Value: ref("inner")}},
	}
	prog := []Stmt{
		&Declaration{Name: "x", Value: &FunctionCall{Name: "f", Args: []Expr{ref("a")}, Named: []NamedArgument{{Name: "k", Value: ref("b")}}}},
		proc,
		&IfStatement{Condition: ref("c"), Then: []Stmt{&DisplayStatement{Value: ref("d")}}, Else: []Stmt{&DisplayStatement{Value: ref("e")}}},
	}

	var names []string
	collect := func(skipProcesses bool) func(Node) bool {
		return func(n Node) bool {
			if _, ok := n.(*ProcessDefinition); ok && skipProcesses {
				return false
			}
			if v, ok := n.(*VariableReference); ok {
				names = append(names, v.Name)
			}
			return true
		}
	}

	for _, s := range prog {
		Inspect(s, collect(false))
	}
	if got := strings.Join(names, ","); got != "a,b,inner,c,d,e" {
		t.Errorf("Inspect visited %s", got)
	}

	names = nil
	for _, s := range prog {
		Inspect(s, collect(true))
	}
	if got := strings.Join(names, ","); got != "a,b,c,d,e" {
		t.Errorf("Inspect with pruning visited %s", got)
	}
}

func TestOperator(t *testing.T) {
	tests := []struct {
		op                           Operator
		word                         string
		arithmetic, compare, logical bool
	}{
		{OpPlus, "plus", true, false, false},
		{OpModulo, "modulo", true, false, false},
		{OpGreaterEqual, "greater than or equal to", false, true, false},
		{OpNotEqual, "not equal to", false, true, false},
		{OpOr, "or", false, false, true},
	}
	for _, tt := range tests {
		if tt.op.String() != tt.word {
			t.Errorf("%d.String() = %q, want %q", tt.op, tt.op.String(), tt.word)
		}
		if tt.op.IsArithmetic() != tt.arithmetic || tt.op.IsComparison() != tt.compare || tt.op.IsLogical() != tt.logical {
			t.Errorf("%s classified wrongly", tt.op)
		}
	}
	if got := Operator(99).String(); got != "Operator(99)" {
		t.Errorf("unknown operator renders as %q", got)
	}
}

func TestProgramString(t *testing.T) {
	prog := &Program{Statements: []Stmt{
		&Declaration{Name: "x", Value: &BinaryOperation{Left: num("1"), Op: OpPlus, Right: num("2")}},
		&DisplayStatement{Value: &StringLiteral{Value: "hi"}},
		&ReturnStatement{},
	}}
	want := "Let x be (1 plus 2)\nDisplay \"hi\"\nReturn\n"
	if got := prog.String(); got != want {
		t.Errorf("Program.String() = %q, want %q", got, want)
	}
	if !IsLiteral(num("3")) || IsLiteral(ref("x")) {
		t.Errorf("IsLiteral misclassifies")
	}
}
