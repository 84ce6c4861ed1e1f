package ast

// Inspect traverses the tree rooted at n in depth-first pre-order, calling fn
// for each node. If fn returns false the children of that node are skipped.
// Patterns and type annotations are not visited.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch x := n.(type) {
	case *Declaration:
		Inspect(x.Value, fn)
	case *Assignment:
		Inspect(x.Value, fn)
	case *IfStatement:
		Inspect(x.Condition, fn)
		inspectStmts(x.Then, fn)
		inspectStmts(x.Else, fn)
	case *ForEachStatement:
		Inspect(x.Iterable, fn)
		inspectStmts(x.Body, fn)
	case *ReturnStatement:
		if x.Value != nil {
			Inspect(x.Value, fn)
		}
	case *DisplayStatement:
		Inspect(x.Value, fn)
	case *ProcessDefinition:
		inspectStmts(x.Body, fn)
	case *MatchStatement:
		Inspect(x.Subject, fn)
		for _, c := range x.Cases {
			inspectStmts(c.Body, fn)
		}
	case *TypedDeclaration:
		Inspect(x.Value, fn)
	case *TypedProcessDefinition:
		inspectStmts(x.Body, fn)
	case *ExpressionStatement:
		Inspect(x.Expr, fn)
	case *TypeAlias:
		// annotation only

	case *BinaryOperation:
		Inspect(x.Left, fn)
		Inspect(x.Right, fn)
	case *FunctionCall:
		inspectExprs(x.Args, fn)
		inspectNamed(x.Named, fn)
	case *ListExpression:
		inspectExprs(x.Elements, fn)
	case *DictionaryExpression:
		for _, e := range x.Entries {
			Inspect(e.Key, fn)
			Inspect(e.Value, fn)
		}
	case *IndexAccess:
		Inspect(x.Target, fn)
		Inspect(x.Index, fn)
	case *LambdaExpression:
		Inspect(x.Body, fn)
	case *PipelineExpression:
		Inspect(x.Left, fn)
		Inspect(x.Right, fn)
	case *PartialApplication:
		Inspect(x.Function, fn)
		inspectExprs(x.Args, fn)
		inspectNamed(x.Named, fn)
	case *CompositionExpression:
		inspectExprs(x.Functions, fn)
	case *MapExpression:
		Inspect(x.Function, fn)
		Inspect(x.Collection, fn)
	case *FilterExpression:
		Inspect(x.Collection, fn)
		Inspect(x.Predicate, fn)
	case *ReduceExpression:
		Inspect(x.Collection, fn)
		Inspect(x.Function, fn)
		if x.Initial != nil {
			Inspect(x.Initial, fn)
		}
	case *AwaitExpression:
		Inspect(x.Value, fn)
	case *StringLiteral, *NumberLiteral, *BooleanLiteral, *VariableReference:
		// leaves
	}
}

func inspectStmts(stmts []Stmt, fn func(Node) bool) {
	for _, s := range stmts {
		Inspect(s, fn)
	}
}

func inspectExprs(exprs []Expr, fn func(Node) bool) {
	for _, e := range exprs {
		Inspect(e, fn)
	}
}

func inspectNamed(named []NamedArgument, fn func(Node) bool) {
	for _, n := range named {
		Inspect(n.Value, fn)
	}
}
