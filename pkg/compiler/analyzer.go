package compiler

import (
	"errors"
	"regexp"

	"runa/pkg/ast"
	"runa/pkg/builtins"
	"runa/pkg/feedback"
	"runa/pkg/patterns"
)

// AnalysisResult holds the diagnostics of one analysis pass. Valid is true
// when Errors is empty; warnings never affect it.
type AnalysisResult struct {
	Valid    bool
	Errors   []feedback.Diagnostic
	Warnings []feedback.Diagnostic
}

// Analyzer resolves names and checks the structural rules the parser cannot.
// An Analyzer is single use; Analyze builds a fresh one per program.
type Analyzer struct {
	scope    *Scope
	aliases  map[string]ast.Position
	errors   []feedback.Diagnostic
	warnings []feedback.Diagnostic
}

var (
	_ ast.StmtVisitor           = (*Analyzer)(nil)
	_ ast.ExprVisitor[struct{}] = (*Analyzer)(nil)
)

// Analyze checks prog. Names resolve in order of appearance, except that a
// process is visible inside its own body.
func Analyze(prog *ast.Program) *AnalysisResult {
	a := &Analyzer{
		scope:   NewScope(nil, ScopeGlobal),
		aliases: make(map[string]ast.Position),
	}
	ast.WalkStmts(a, prog.Statements)
	for _, dead := range unreachableProcesses(prog.Statements) {
		name, _, _ := processOf(dead)
		a.warnf(dead.Pos(), "process %q is never called", name)
	}
	return &AnalysisResult{Valid: len(a.errors) == 0, Errors: a.errors, Warnings: a.warnings}
}

func (a *Analyzer) errorf(pos ast.Position, format string, args ...any) {
	a.errors = append(a.errors, feedback.Errorf(feedback.SemanticError, pos, format, args...))
}

func (a *Analyzer) warnf(pos ast.Position, format string, args ...any) {
	a.warnings = append(a.warnings, feedback.Warningf(feedback.SemanticWarning, pos, format, args...))
}

func (a *Analyzer) push(kind ScopeKind) *Scope {
	a.scope = NewScope(a.scope, kind)
	return a.scope
}

func (a *Analyzer) pop() {
	a.scope = a.scope.Parent()
}

func (a *Analyzer) block(stmts []ast.Stmt) {
	a.push(ScopeBlock)
	ast.WalkStmts(a, stmts)
	a.pop()
}

func (a *Analyzer) expr(e ast.Expr) {
	if e != nil {
		ast.VisitExpr[struct{}](a, e)
	}
}

func (a *Analyzer) define(sym *Symbol) {
	if existing, ok := a.scope.Define(sym); !ok {
		a.errorf(sym.Position, "%q is already declared in this scope (line %d)", sym.Name, existing.Position.Line)
	}
}

// requireAsync reports what unless the nearest process or lambda is async.
func (a *Analyzer) requireAsync(pos ast.Position, what string) {
	if fn := a.scope.enclosingFunction(); fn == nil || !fn.async {
		a.errorf(pos, "%s is only allowed inside an Async process", what)
	}
}

// Statements

func (a *Analyzer) VisitDeclaration(s *ast.Declaration) {
	a.expr(s.Value)
	a.define(&Symbol{Name: s.Name, Kind: SymbolVariable, Position: s.Position})
}

func (a *Analyzer) VisitTypedDeclaration(s *ast.TypedDeclaration) {
	a.expr(s.Value)
	a.define(&Symbol{Name: s.Name, Kind: SymbolVariable, Position: s.Position, Annotation: s.Annotation})
}

func (a *Analyzer) VisitAssignment(s *ast.Assignment) {
	a.expr(s.Value)
	sym, ok := a.scope.Lookup(s.Name)
	switch {
	case !ok:
		a.errorf(s.Position, "assignment to undeclared variable %q", s.Name)
	case sym.Kind == SymbolProcess:
		a.errorf(s.Position, "cannot assign to process %q", s.Name)
	}
}

func (a *Analyzer) VisitIf(s *ast.IfStatement) {
	a.expr(s.Condition)
	a.block(s.Then)
	if s.Else != nil {
		a.block(s.Else)
	}
}

func (a *Analyzer) VisitForEach(s *ast.ForEachStatement) {
	if s.Async {
		a.requireAsync(s.Position, "Async For each")
	}
	a.expr(s.Iterable)
	a.push(ScopeBlock)
	a.define(&Symbol{Name: s.Variable, Kind: SymbolVariable, Position: s.Position})
	ast.WalkStmts(a, s.Body)
	a.pop()
}

func (a *Analyzer) VisitReturn(s *ast.ReturnStatement) {
	if !a.scope.inProcess() {
		a.errorf(s.Position, "Return outside of a process")
	}
	a.expr(s.Value)
}

func (a *Analyzer) VisitDisplay(s *ast.DisplayStatement) {
	a.expr(s.Value)
}

func (a *Analyzer) VisitProcess(s *ast.ProcessDefinition) {
	a.process(s.Position, s.Name, s.Parameters, s.Async, s.Body)
}

func (a *Analyzer) VisitTypedProcess(s *ast.TypedProcessDefinition) {
	a.process(s.Position, s.Name, s.ParameterNames(), s.Async, s.Body)
}

func (a *Analyzer) process(pos ast.Position, name string, params []string, async bool, body []ast.Stmt) {
	a.define(&Symbol{Name: name, Kind: SymbolProcess, Position: pos, Parameters: params, Async: async})
	scope := a.push(ScopeProcess)
	scope.async = async
	for _, p := range params {
		if _, ok := scope.Define(&Symbol{Name: p, Kind: SymbolParameter, Position: pos}); !ok {
			a.errorf(pos, "duplicate parameter %q in process %q", p, name)
		}
	}
	ast.WalkStmts(a, body)
	a.pop()
}

func (a *Analyzer) VisitMatch(s *ast.MatchStatement) {
	a.expr(s.Subject)
	var catchAll *ast.MatchCase
	for _, c := range s.Cases {
		if catchAll != nil {
			a.warnf(c.Position, "unreachable case: the case on line %d matches every value", catchAll.Position.Line)
		}
		bindings, err := patterns.Bindings(c.Pattern)
		if err != nil {
			a.patternError(c, err)
		}
		a.push(ScopeBlock)
		for _, b := range bindings {
			a.scope.Define(&Symbol{Name: b.Name, Kind: SymbolBinding, Position: b.Position})
		}
		ast.WalkStmts(a, c.Body)
		a.pop()
		if catchAll == nil && patterns.IsCatchAll(c.Pattern) {
			catchAll = c
		}
	}
}

func (a *Analyzer) patternError(c *ast.MatchCase, err error) {
	var dup *patterns.DuplicateBindingError
	var perr *patterns.PatternError
	switch {
	case errors.As(err, &dup):
		a.errorf(dup.Second, "pattern binds %q more than once (first bound at line %d, column %d)",
			dup.Name, dup.First.Line, dup.First.Column)
	case errors.As(err, &perr):
		a.errorf(perr.Position, "%s", perr.Message)
	default:
		a.errorf(c.Position, "%v", err)
	}
}

func (a *Analyzer) VisitTypeAlias(s *ast.TypeAlias) {
	if first, ok := a.aliases[s.Name]; ok {
		a.errorf(s.Position, "type %q is already defined (line %d)", s.Name, first.Line)
		return
	}
	a.aliases[s.Name] = s.Position
}

func (a *Analyzer) VisitExpressionStatement(s *ast.ExpressionStatement) {
	a.expr(s.Expr)
}

// Expressions

func (a *Analyzer) VisitString(*ast.StringLiteral) struct{}   { return struct{}{} }
func (a *Analyzer) VisitNumber(*ast.NumberLiteral) struct{}   { return struct{}{} }
func (a *Analyzer) VisitBoolean(*ast.BooleanLiteral) struct{} { return struct{}{} }

func (a *Analyzer) VisitVariable(e *ast.VariableReference) struct{} {
	if _, ok := a.scope.Lookup(e.Name); !ok && !builtins.IsBuiltin(e.Name) {
		a.errorf(e.Position, "undefined name %q", e.Name)
	}
	return struct{}{}
}

func (a *Analyzer) VisitBinary(e *ast.BinaryOperation) struct{} {
	a.expr(e.Left)
	a.expr(e.Right)
	return struct{}{}
}

func (a *Analyzer) VisitCall(e *ast.FunctionCall) struct{} {
	for _, arg := range e.Args {
		a.expr(arg)
	}
	for _, n := range e.Named {
		a.expr(n.Value)
	}

	sym, ok := a.scope.Lookup(e.Name)
	switch {
	case ok && sym.Kind == SymbolProcess:
		a.checkArity(e, sym)
	case ok:
		// a variable may hold a lambda
	case builtins.IsBuiltin(e.Name):
		b, _ := builtins.Lookup(e.Name)
		if b.Arity != builtins.Variadic && len(e.Args) > b.Arity {
			a.errorf(e.Position, "%s takes %d arguments, got %d", e.Name, b.Arity, len(e.Args))
		}
		if e.Name == "format_string" {
			a.checkPlaceholders(e)
		}
	default:
		a.errorf(e.Position, "call to undefined process %q", e.Name)
	}
	return struct{}{}
}

func (a *Analyzer) checkArity(e *ast.FunctionCall, sym *Symbol) {
	params := sym.Parameters
	if len(e.Args) > len(params) {
		a.errorf(e.Position, "process %q takes %d arguments, got %d", e.Name, len(params), len(e.Args))
		return
	}
	given := make(map[string]bool, len(params))
	for _, p := range params[:len(e.Args)] {
		given[p] = true
	}
	index := make(map[string]bool, len(params))
	for _, p := range params {
		index[p] = true
	}
	for _, n := range e.Named {
		switch {
		case !index[n.Name]:
			a.errorf(e.Position, "process %q has no parameter %q", e.Name, n.Name)
		case given[n.Name]:
			a.errorf(e.Position, "argument %q given twice in call to %q", n.Name, e.Name)
		}
		given[n.Name] = true
	}
	for _, p := range params {
		if !given[p] {
			a.errorf(e.Position, "missing argument %q in call to %q", p, e.Name)
		}
	}
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func (a *Analyzer) checkPlaceholders(e *ast.FunctionCall) {
	if len(e.Args) == 0 {
		return
	}
	tmpl, ok := e.Args[0].(*ast.StringLiteral)
	if !ok {
		return
	}
	named := make(map[string]bool, len(e.Named))
	for _, n := range e.Named {
		named[n.Name] = true
	}
	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl.Value, -1) {
		if !named[m[1]] {
			a.warnf(tmpl.Position, "format placeholder {%s} has no matching argument", m[1])
		}
	}
}

func (a *Analyzer) VisitList(e *ast.ListExpression) struct{} {
	for _, el := range e.Elements {
		a.expr(el)
	}
	return struct{}{}
}

func (a *Analyzer) VisitDictionary(e *ast.DictionaryExpression) struct{} {
	for _, entry := range e.Entries {
		a.expr(entry.Key)
		a.expr(entry.Value)
	}
	return struct{}{}
}

func (a *Analyzer) VisitIndex(e *ast.IndexAccess) struct{} {
	a.expr(e.Target)
	a.expr(e.Index)
	return struct{}{}
}

func (a *Analyzer) VisitLambda(e *ast.LambdaExpression) struct{} {
	scope := a.push(ScopeLambda)
	for _, p := range e.Parameters {
		if _, ok := scope.Define(&Symbol{Name: p, Kind: SymbolParameter, Position: e.Position}); !ok {
			a.errorf(e.Position, "duplicate lambda parameter %q", p)
		}
	}
	a.expr(e.Body)
	a.pop()
	return struct{}{}
}

func (a *Analyzer) VisitPipeline(e *ast.PipelineExpression) struct{} {
	a.expr(e.Left)
	a.expr(e.Right)
	return struct{}{}
}

func (a *Analyzer) VisitPartial(e *ast.PartialApplication) struct{} {
	a.expr(e.Function)
	for _, arg := range e.Args {
		a.expr(arg)
	}
	for _, n := range e.Named {
		a.expr(n.Value)
	}
	return struct{}{}
}

func (a *Analyzer) VisitComposition(e *ast.CompositionExpression) struct{} {
	for _, f := range e.Functions {
		a.expr(f)
	}
	return struct{}{}
}

func (a *Analyzer) VisitMap(e *ast.MapExpression) struct{} {
	a.expr(e.Function)
	a.expr(e.Collection)
	return struct{}{}
}

func (a *Analyzer) VisitFilter(e *ast.FilterExpression) struct{} {
	a.expr(e.Collection)
	a.expr(e.Predicate)
	return struct{}{}
}

func (a *Analyzer) VisitReduce(e *ast.ReduceExpression) struct{} {
	a.expr(e.Collection)
	a.expr(e.Function)
	a.expr(e.Initial)
	return struct{}{}
}

func (a *Analyzer) VisitAwait(e *ast.AwaitExpression) struct{} {
	a.requireAsync(e.Position, "await")
	a.expr(e.Value)
	return struct{}{}
}
