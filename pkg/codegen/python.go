package codegen

import (
	"fmt"
	"strings"

	"runa/pkg/ast"
	"runa/pkg/patterns"
)

var pythonReserved = wordSet(
	"False", "None", "True", "and", "as", "assert", "async", "await", "break",
	"class", "continue", "def", "del", "elif", "else", "except", "finally", "for",
	"from", "global", "if", "import", "in", "is", "lambda", "nonlocal", "not",
	"or", "pass", "raise", "return", "try", "while", "with", "yield", "print",
)

// pythonRuntimeNames holds the names generated Python code calls unqualified.
var pythonRuntimeNames = runtimeNames("runa_is_type", "list", "dict", "len", "isinstance")

var pythonOperators = map[ast.Operator]string{
	ast.OpPlus:         "+",
	ast.OpMinus:        "-",
	ast.OpMultiply:     "*",
	ast.OpDivide:       "/",
	ast.OpModulo:       "%",
	ast.OpGreater:      ">",
	ast.OpLess:         "<",
	ast.OpGreaterEqual: ">=",
	ast.OpLessEqual:    "<=",
	ast.OpEqual:        "==",
	ast.OpNotEqual:     "!=",
	ast.OpAnd:          "and",
	ast.OpOr:           "or",
}

// pythonGenerator emits target A. Types appear only as trailing comments.
type pythonGenerator struct {
	emitter
}

var (
	_ ast.StmtVisitor         = (*pythonGenerator)(nil)
	_ ast.ExprVisitor[string] = (*pythonGenerator)(nil)
)

func newPythonGenerator(o options) *pythonGenerator {
	return &pythonGenerator{emitter: newEmitter(pythonReserved, pythonRuntimeNames, o)}
}

func (g *pythonGenerator) generate(prog *ast.Program) (string, error) {
	if g.opts.header {
		g.line("# Generated Python code from Runa")
		g.line("from runa_runtime import *")
		g.line("")
	}
	g.push(true)
	ast.WalkStmts(g, prog.Statements)
	return g.result()
}

func (g *pythonGenerator) expr(e ast.Expr) string {
	return ast.VisitExpr[string](g, e)
}

// block emits stmts one level deeper in the current scope.
func (g *pythonGenerator) block(stmts []ast.Stmt) {
	g.nested(func() {
		if len(stmts) == 0 {
			g.line("pass")
			return
		}
		ast.WalkStmts(g, stmts)
	})
}

// withComment appends a trailing comment when text is not empty.
func withComment(code, text string) string {
	if text == "" {
		return code
	}
	return code + "  # " + text
}

func (g *pythonGenerator) VisitDeclaration(s *ast.Declaration) {
	comment, _ := g.inferred(s)
	value := g.expr(s.Value)
	g.line("%s", withComment(g.bind(s.Name)+" = "+value, comment))
}

func (g *pythonGenerator) VisitTypedDeclaration(s *ast.TypedDeclaration) {
	value := g.expr(s.Value)
	g.line("%s", withComment(g.bind(s.Name)+" = "+value, "type: "+s.Annotation.String()))
}

func (g *pythonGenerator) VisitAssignment(s *ast.Assignment) {
	value := g.expr(s.Value)
	g.line("%s = %s", g.assign(s.Name), value)
}

// assign returns the emitted name of an assignment target and records it
// for a global or nonlocal declaration when an outer function owns it.
func (g *pythonGenerator) assign(name string) string {
	out, s := g.lookup(name)
	if s == nil {
		out = g.ident(name)
	}
	fn := owner(g.scope)
	holder := owner(s)
	if s == nil {
		holder = g.root()
	}
	switch {
	case holder == fn:
	case holder.parent == nil:
		fn.global[out] = true
	default:
		fn.nonlocal[out] = true
	}
	return out
}

// root returns the module scope.
func (g *pythonGenerator) root() *scope {
	s := g.scope
	for s.parent != nil {
		s = s.parent
	}
	return s
}

func (g *pythonGenerator) VisitIf(s *ast.IfStatement) {
	g.ifChain(s, "if")
}

func (g *pythonGenerator) ifChain(s *ast.IfStatement, keyword string) {
	g.line("%s %s:", keyword, g.expr(s.Condition))
	g.scoped(func() { g.block(s.Then) })
	if len(s.Else) == 1 {
		if next, ok := s.Else[0].(*ast.IfStatement); ok {
			g.ifChain(next, "elif")
			return
		}
	}
	if s.Else != nil {
		g.line("else:")
		g.scoped(func() { g.block(s.Else) })
	}
}

func (g *pythonGenerator) VisitForEach(s *ast.ForEachStatement) {
	keyword := "for"
	if s.Async {
		keyword = "async for"
	}
	iterable := g.expr(s.Iterable)
	g.scoped(func() {
		g.line("%s %s in %s:", keyword, g.bind(s.Variable), iterable)
		g.block(s.Body)
	})
}

func (g *pythonGenerator) VisitReturn(s *ast.ReturnStatement) {
	if s.Value == nil {
		g.line("return")
		return
	}
	g.line("return %s", g.expr(s.Value))
}

func (g *pythonGenerator) VisitDisplay(s *ast.DisplayStatement) {
	g.line("print(%s)", g.expr(s.Value))
}

func (g *pythonGenerator) VisitExpressionStatement(s *ast.ExpressionStatement) {
	g.line("%s", g.expr(s.Expr))
}

func (g *pythonGenerator) VisitProcess(s *ast.ProcessDefinition) {
	g.def(s.Name, s.Parameters, s.Body, s.Async, "")
}

func (g *pythonGenerator) VisitTypedProcess(s *ast.TypedProcessDefinition) {
	g.def(s.Name, s.ParameterNames(), s.Body, s.Async, "signature: "+signature(s))
}

func (g *pythonGenerator) def(name string, params []string, body []ast.Stmt, async bool, comment string) {
	keyword := "def"
	if async {
		keyword = "async def"
	}
	name = g.bind(name)
	g.push(true)
	fn := g.scope
	names := g.bindParams(params)
	g.line("%s", withComment(fmt.Sprintf("%s %s(%s):", keyword, name, strings.Join(names, ", ")), comment))

	mark := g.out.Len()
	g.scoped(func() { g.block(body) })
	g.pop()

	// global and nonlocal lines are only known once the body is emitted
	emitted := g.out.String()
	g.out.Reset()
	g.out.WriteString(emitted[:mark])
	g.nested(func() {
		if len(fn.global) > 0 {
			g.line("global %s", strings.Join(sortedKeys(fn.global), ", "))
		}
		if len(fn.nonlocal) > 0 {
			g.line("nonlocal %s", strings.Join(sortedKeys(fn.nonlocal), ", "))
		}
	})
	g.out.WriteString(emitted[mark:])
}

func (g *pythonGenerator) VisitMatch(s *ast.MatchStatement) {
	m, ok := g.compileMatch(s)
	if !ok {
		return
	}
	subject := g.nextMatch()
	g.line("%s = %s", subject, g.expr(m.Subject))
	for i, c := range m.Cases {
		switch {
		case c.CatchAll && i == 0:
			g.line("if True:")
		case c.CatchAll:
			g.line("else:")
		case i == 0:
			g.line("if %s:", g.cond(c.Test, subject))
		default:
			g.line("elif %s:", g.cond(c.Test, subject))
		}
		g.scoped(func() {
			g.nested(func() {
				for _, b := range c.Bindings {
					g.line("%s = %s", g.bind(b.Name), g.access(b.Value, subject))
				}
			})
			g.block(c.Body)
		})
		if c.CatchAll {
			return
		}
	}
	if m.NeedsDefault {
		g.line("else:")
		g.block(nil)
	}
}

func (g *pythonGenerator) VisitTypeAlias(s *ast.TypeAlias) {
	g.line("# type %s = %s", s.Name, s.Target)
}

func (g *pythonGenerator) access(a patterns.Access, root string) string {
	out := root
	for _, s := range a {
		switch s.Kind {
		case patterns.StepIndex:
			out = fmt.Sprintf("%s[%d]", out, s.Index)
		case patterns.StepFromEnd:
			out = fmt.Sprintf("%s[-%d]", out, s.Index)
		case patterns.StepKey:
			out = fmt.Sprintf("%s[%s]", out, g.expr(s.Key))
		case patterns.StepSlice:
			if s.End == 0 {
				out = fmt.Sprintf("%s[%d:]", out, s.Index)
			} else {
				out = fmt.Sprintf("%s[%d:-%d]", out, s.Index, s.End)
			}
		}
	}
	return out
}

func (g *pythonGenerator) cond(c patterns.Cond, root string) string {
	switch c := c.(type) {
	case patterns.Always:
		return "True"
	case patterns.IsList:
		return fmt.Sprintf("isinstance(%s, list)", g.access(c.Subject, root))
	case patterns.LengthEquals:
		return fmt.Sprintf("len(%s) == %d", g.access(c.Subject, root), c.Length)
	case patterns.LengthAtLeast:
		return fmt.Sprintf("len(%s) >= %d", g.access(c.Subject, root), c.Length)
	case patterns.IsDict:
		return fmt.Sprintf("isinstance(%s, dict)", g.access(c.Subject, root))
	case patterns.HasKey:
		return fmt.Sprintf("%s in %s", g.expr(c.Key), g.access(c.Subject, root))
	case patterns.Equals:
		return fmt.Sprintf("%s == %s", g.access(c.Subject, root), g.expr(c.Value))
	case patterns.IsType:
		return fmt.Sprintf("runa_is_type(%s, %s)", g.access(c.Subject, root), quote(c.TypeName))
	case patterns.And:
		terms := make([]string, len(c.Terms))
		for i, t := range c.Terms {
			terms[i] = g.cond(t, root)
		}
		return strings.Join(terms, " and ")
	}
	panic(fmt.Sprintf("unhandled pattern test %T", c))
}

func (g *pythonGenerator) VisitString(e *ast.StringLiteral) string { return quote(e.Value) }
func (g *pythonGenerator) VisitNumber(e *ast.NumberLiteral) string { return e.Text }

func (g *pythonGenerator) VisitBoolean(e *ast.BooleanLiteral) string {
	if e.Value {
		return "True"
	}
	return "False"
}

func (g *pythonGenerator) VisitVariable(e *ast.VariableReference) string {
	return g.ref(e.Name)
}

func (g *pythonGenerator) VisitBinary(e *ast.BinaryOperation) string {
	return fmt.Sprintf("(%s %s %s)", g.expr(e.Left), pythonOperators[e.Op], g.expr(e.Right))
}

// arguments renders positional then keyword arguments. key spells each
// keyword.
func (g *pythonGenerator) arguments(args []ast.Expr, named []ast.NamedArgument, key func(string) string) string {
	parts := make([]string, 0, len(args)+len(named))
	for _, a := range args {
		parts = append(parts, g.expr(a))
	}
	for _, n := range named {
		parts = append(parts, key(n.Name)+"="+g.expr(n.Value))
	}
	return strings.Join(parts, ", ")
}

func (g *pythonGenerator) VisitCall(e *ast.FunctionCall) string {
	if g.bound(e.Name) || !g.runtime[e.Name] {
		// keywords must match the parameter spelling of the def
		return fmt.Sprintf("%s(%s)", g.ref(e.Name), g.arguments(e.Args, e.Named, g.local))
	}
	if e.Name == "format_string" && len(e.Args) == 1 {
		if tmpl, ok := e.Args[0].(*ast.StringLiteral); ok {
			return fmt.Sprintf("%s.format(%s)", quote(tmpl.Value), g.arguments(nil, e.Named, g.ident))
		}
	}
	return fmt.Sprintf("%s(%s)", e.Name, g.arguments(e.Args, e.Named, g.ident))
}

func (g *pythonGenerator) VisitList(e *ast.ListExpression) string {
	return "[" + g.arguments(e.Elements, nil, nil) + "]"
}

func (g *pythonGenerator) VisitDictionary(e *ast.DictionaryExpression) string {
	entries := make([]string, len(e.Entries))
	for i, entry := range e.Entries {
		entries[i] = g.expr(entry.Key) + ": " + g.expr(entry.Value)
	}
	return "{" + strings.Join(entries, ", ") + "}"
}

func (g *pythonGenerator) VisitIndex(e *ast.IndexAccess) string {
	return fmt.Sprintf("%s[%s]", g.expr(e.Target), g.expr(e.Index))
}

func (g *pythonGenerator) VisitLambda(e *ast.LambdaExpression) string {
	g.push(true)
	defer g.pop()
	params := g.bindParams(e.Parameters)
	if len(params) == 0 {
		return fmt.Sprintf("(lambda: %s)", g.expr(e.Body))
	}
	return fmt.Sprintf("(lambda %s: %s)", strings.Join(params, ", "), g.expr(e.Body))
}

func (g *pythonGenerator) VisitPipeline(e *ast.PipelineExpression) string {
	return fmt.Sprintf("pipeline(%s, %s)", g.expr(e.Left), g.expr(e.Right))
}

func (g *pythonGenerator) VisitPartial(e *ast.PartialApplication) string {
	args := g.arguments(e.Args, e.Named, g.local)
	if args == "" {
		return fmt.Sprintf("partial(%s)", g.expr(e.Function))
	}
	return fmt.Sprintf("partial(%s, %s)", g.expr(e.Function), args)
}

func (g *pythonGenerator) VisitComposition(e *ast.CompositionExpression) string {
	return "compose(" + g.arguments(e.Functions, nil, nil) + ")"
}

func (g *pythonGenerator) VisitMap(e *ast.MapExpression) string {
	return fmt.Sprintf("map_function(%s, %s)", g.expr(e.Function), g.expr(e.Collection))
}

func (g *pythonGenerator) VisitFilter(e *ast.FilterExpression) string {
	return fmt.Sprintf("filter_function(%s, %s)", g.expr(e.Predicate), g.expr(e.Collection))
}

func (g *pythonGenerator) VisitReduce(e *ast.ReduceExpression) string {
	if e.Initial == nil {
		return fmt.Sprintf("reduce_function(%s, %s)", g.expr(e.Function), g.expr(e.Collection))
	}
	return fmt.Sprintf("reduce_function(%s, %s, %s)", g.expr(e.Function), g.expr(e.Collection), g.expr(e.Initial))
}

func (g *pythonGenerator) VisitAwait(e *ast.AwaitExpression) string {
	return fmt.Sprintf("(await %s)", g.expr(e.Value))
}
