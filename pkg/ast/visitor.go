package ast

import "fmt"

// StmtVisitor has one method per statement kind. Implementations that miss a
// kind do not compile.
type StmtVisitor interface {
	VisitDeclaration(*Declaration)
	VisitAssignment(*Assignment)
	VisitIf(*IfStatement)
	VisitForEach(*ForEachStatement)
	VisitReturn(*ReturnStatement)
	VisitDisplay(*DisplayStatement)
	VisitProcess(*ProcessDefinition)
	VisitMatch(*MatchStatement)
	VisitTypeAlias(*TypeAlias)
	VisitTypedDeclaration(*TypedDeclaration)
	VisitTypedProcess(*TypedProcessDefinition)
	VisitExpressionStatement(*ExpressionStatement)
}

// ExprVisitor has one method per expression kind, each producing an R.
type ExprVisitor[R any] interface {
	VisitString(*StringLiteral) R
	VisitNumber(*NumberLiteral) R
	VisitBoolean(*BooleanLiteral) R
	VisitVariable(*VariableReference) R
	VisitBinary(*BinaryOperation) R
	VisitCall(*FunctionCall) R
	VisitList(*ListExpression) R
	VisitDictionary(*DictionaryExpression) R
	VisitIndex(*IndexAccess) R
	VisitLambda(*LambdaExpression) R
	VisitPipeline(*PipelineExpression) R
	VisitPartial(*PartialApplication) R
	VisitComposition(*CompositionExpression) R
	VisitMap(*MapExpression) R
	VisitFilter(*FilterExpression) R
	VisitReduce(*ReduceExpression) R
	VisitAwait(*AwaitExpression) R
}

// GeneratorDefect reports a node kind outside the closed node set. It is only
// raised through panic and signals a bug in the compiler itself.
type GeneratorDefect struct {
	Node Node
}

func (d GeneratorDefect) Error() string {
	return fmt.Sprintf("unhandled node kind %T", d.Node)
}

// WalkStmt dispatches s to the matching method of v.
func WalkStmt(v StmtVisitor, s Stmt) {
	switch n := s.(type) {
	case *Declaration:
		v.VisitDeclaration(n)
	case *Assignment:
		v.VisitAssignment(n)
	case *IfStatement:
		v.VisitIf(n)
	case *ForEachStatement:
		v.VisitForEach(n)
	case *ReturnStatement:
		v.VisitReturn(n)
	case *DisplayStatement:
		v.VisitDisplay(n)
	case *ProcessDefinition:
		v.VisitProcess(n)
	case *MatchStatement:
		v.VisitMatch(n)
	case *TypeAlias:
		v.VisitTypeAlias(n)
	case *TypedDeclaration:
		v.VisitTypedDeclaration(n)
	case *TypedProcessDefinition:
		v.VisitTypedProcess(n)
	case *ExpressionStatement:
		v.VisitExpressionStatement(n)
	default:
		panic(GeneratorDefect{Node: s})
	}
}

// WalkStmts dispatches each statement in order.
func WalkStmts(v StmtVisitor, stmts []Stmt) {
	for _, s := range stmts {
		WalkStmt(v, s)
	}
}

// VisitExpr dispatches e to the matching method of v and returns its result.
func VisitExpr[R any](v ExprVisitor[R], e Expr) R {
	switch n := e.(type) {
	case *StringLiteral:
		return v.VisitString(n)
	case *NumberLiteral:
		return v.VisitNumber(n)
	case *BooleanLiteral:
		return v.VisitBoolean(n)
	case *VariableReference:
		return v.VisitVariable(n)
	case *BinaryOperation:
		return v.VisitBinary(n)
	case *FunctionCall:
		return v.VisitCall(n)
	case *ListExpression:
		return v.VisitList(n)
	case *DictionaryExpression:
		return v.VisitDictionary(n)
	case *IndexAccess:
		return v.VisitIndex(n)
	case *LambdaExpression:
		return v.VisitLambda(n)
	case *PipelineExpression:
		return v.VisitPipeline(n)
	case *PartialApplication:
		return v.VisitPartial(n)
	case *CompositionExpression:
		return v.VisitComposition(n)
	case *MapExpression:
		return v.VisitMap(n)
	case *FilterExpression:
		return v.VisitFilter(n)
	case *ReduceExpression:
		return v.VisitReduce(n)
	case *AwaitExpression:
		return v.VisitAwait(n)
	default:
		panic(GeneratorDefect{Node: e})
	}
}
