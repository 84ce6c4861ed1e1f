package types

import (
	"fmt"

	"github.com/pkg/errors"

	"runa/pkg/ast"
)

// TypeError is a mismatch between an annotation and an inferred type.
type TypeError struct {
	Message  string
	Position ast.Position
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Position.Line, e.Position.Column, e.Message)
}

// Result is the outcome of Check.
type Result struct {
	Valid  bool
	Errors []*TypeError
	// Globals holds the types of top-level variables.
	Globals map[string]Type
	// Inferred holds the type of the value bound by each declaration.
	Inferred map[ast.Stmt]Type
}

// Check compares annotations in prog against inferred types. It reports every
// mismatch it finds rather than stopping at the first.
func Check(prog *ast.Program) *Result {
	c := &checker{
		env:      NewEnv(nil),
		inferred: make(map[ast.Stmt]Type),
	}
	c.inf = newInferer(c.env)
	c.stmts(prog.Statements)
	return &Result{
		Valid:    len(c.errors) == 0,
		Errors:   c.errors,
		Globals:  c.env.Vars(),
		Inferred: c.inferred,
	}
}

type checker struct {
	env      *Env
	inf      *inferer
	errors   []*TypeError
	inferred map[ast.Stmt]Type
	// returns holds the declared return type of each enclosing process, nil
	// for an unannotated one.
	returns []Type
}

var _ ast.StmtVisitor = (*checker)(nil)

func (c *checker) errorf(pos ast.Position, format string, args ...any) {
	c.errors = append(c.errors, &TypeError{Message: fmt.Sprintf(format, args...), Position: pos})
}

func (c *checker) stmts(stmts []ast.Stmt) {
	ast.WalkStmts(c, stmts)
}

// block checks stmts in a child environment.
func (c *checker) block(env *Env, stmts []ast.Stmt) {
	saved := c.env
	c.env = env
	c.inf.env = env
	defer func() {
		c.env = saved
		c.inf.env = saved
	}()
	c.stmts(stmts)
}

func (c *checker) infer(e ast.Expr) Type {
	c.calls(e)
	return c.inf.infer(e)
}

func (c *checker) resolve(te ast.TypeExpr, generics map[string]bool) Type {
	t, err := c.env.Resolve(te, generics)
	var unknown *UnknownTypeError
	if errors.As(err, &unknown) {
		c.errorf(unknown.Position, "unknown type %q", unknown.Name)
	}
	return t
}

func (c *checker) VisitDeclaration(s *ast.Declaration) {
	t := c.infer(s.Value)
	c.env.Set(s.Name, t)
	c.inferred[s] = t
}

func (c *checker) VisitTypedDeclaration(s *ast.TypedDeclaration) {
	declared := c.resolve(s.Annotation, nil)
	actual := c.infer(s.Value)
	if !Compatible(actual, declared) {
		c.errorf(s.Position, "cannot initialize %q of type %s with a value of type %s", s.Name, declared, actual)
	}
	c.env.Declare(s.Name, declared)
	c.inferred[s] = declared
}

func (c *checker) VisitAssignment(s *ast.Assignment) {
	actual := c.infer(s.Value)
	if declared, ok := c.env.Annotation(s.Name); ok {
		if !Compatible(actual, declared) {
			c.errorf(s.Position, "cannot assign a value of type %s to %q of type %s", actual, s.Name, declared)
		}
		return
	}
	if old, ok := c.env.Lookup(s.Name); ok {
		actual = Unify(old, actual)
	}
	c.env.Update(s.Name, actual)
}

func (c *checker) VisitIf(s *ast.IfStatement) {
	if t := c.infer(s.Condition); !Compatible(t, Boolean) {
		c.errorf(s.Position, "condition has type %s, expected Boolean", t)
	}
	c.block(c.env.Child(), s.Then)
	if s.Else != nil {
		c.block(c.env.Child(), s.Else)
	}
}

func (c *checker) VisitForEach(s *ast.ForEachStatement) {
	t := c.infer(s.Iterable)
	if !Compatible(t, &List{Element: Any}) {
		c.errorf(s.Position, "cannot iterate over a value of type %s", t)
	}
	env := c.env.Child()
	env.Set(s.Variable, ElementType(t))
	c.block(env, s.Body)
}

func (c *checker) VisitReturn(s *ast.ReturnStatement) {
	actual := Type(Nothing)
	if s.Value != nil {
		actual = c.infer(s.Value)
	}
	if len(c.returns) == 0 {
		return
	}
	expected := c.returns[len(c.returns)-1]
	if expected == nil {
		return
	}
	if !Compatible(actual, expected) {
		c.errorf(s.Position, "process returns %s, expected %s", actual, expected)
	}
}

func (c *checker) VisitDisplay(s *ast.DisplayStatement) {
	c.infer(s.Value)
}

func (c *checker) VisitExpressionStatement(s *ast.ExpressionStatement) {
	c.infer(s.Expr)
}

func (c *checker) VisitProcess(s *ast.ProcessDefinition) {
	c.env.DefineProcess(&Signature{Name: s.Name, Params: s.Parameters, Body: s.Body, Async: s.Async})
	env := c.env.Child()
	for _, p := range s.Parameters {
		env.Set(p, Any)
	}
	c.returns = append(c.returns, nil)
	c.block(env, s.Body)
	c.returns = c.returns[:len(c.returns)-1]
}

func (c *checker) VisitTypedProcess(s *ast.TypedProcessDefinition) {
	generics := make(map[string]bool, len(s.Generics))
	for _, g := range s.Generics {
		generics[g.Name] = true
	}
	// resolving here reports unknown annotation names once
	for _, p := range s.Parameters {
		if p.Type != nil {
			c.resolve(p.Type, generics)
		}
	}
	if s.Returns != nil {
		c.resolve(s.Returns, generics)
	}

	sig := TypedSignature(c.env, s)
	c.env.DefineProcess(sig)

	env := c.env.Child()
	for k, p := range sig.Params {
		env.Declare(p, sig.ParamTypes[k])
	}
	c.returns = append(c.returns, sig.Returns)
	c.block(env, s.Body)
	c.returns = c.returns[:len(c.returns)-1]
}

func (c *checker) VisitMatch(s *ast.MatchStatement) {
	subject := c.infer(s.Subject)
	for _, mc := range s.Cases {
		env := c.env.Child()
		BindPattern(env, mc.Pattern, subject)
		c.block(env, mc.Body)
	}
}

func (c *checker) VisitTypeAlias(s *ast.TypeAlias) {
	c.env.DefineAlias(s.Name, c.resolve(s.Target, nil))
}

// calls checks the arguments of every call to an annotated process inside e.
func (c *checker) calls(e ast.Expr) {
	if e == nil {
		return
	}
	ast.Inspect(e, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.LambdaExpression:
			return false
		case *ast.FunctionCall:
			c.checkCall(x)
		}
		return true
	})
}

func (c *checker) checkCall(call *ast.FunctionCall) {
	if _, ok := c.env.Lookup(call.Name); ok {
		return
	}
	sig, ok := c.env.Process(call.Name)
	if !ok || sig.ParamTypes == nil {
		return
	}
	check := func(k int, arg ast.Expr) {
		want := sig.ParamTypes[k]
		if want == nil {
			return
		}
		if _, generic := want.(*Generic); generic {
			return
		}
		got := c.inf.infer(arg)
		if !Compatible(got, want) {
			c.errorf(call.Position, "argument %q of %q has type %s, expected %s", sig.Params[k], sig.Name, got, want)
		}
	}
	for k, arg := range call.Args {
		if k < len(sig.Params) {
			check(k, arg)
		}
	}
	for _, n := range call.Named {
		for k, p := range sig.Params {
			if p == n.Name {
				check(k, n.Value)
			}
		}
	}
}
