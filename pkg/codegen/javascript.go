package codegen

import (
	"fmt"
	"strings"

	"runa/pkg/ast"
	"runa/pkg/patterns"
)

var javascriptReserved = wordSet(
	"arguments", "await", "break", "case", "catch", "class", "const", "continue",
	"debugger", "default", "delete", "do", "else", "enum", "eval", "export",
	"extends", "false", "finally", "for", "function", "if", "implements", "import",
	"in", "instanceof", "interface", "let", "new", "null", "package", "private",
	"protected", "public", "return", "static", "super", "switch", "this", "throw",
	"true", "try", "typeof", "undefined", "var", "void", "while", "with", "yield",
	"console",
)

// javascriptGlobals holds the globals the inline runtime and emitted code
// read. A script-level let of one of them would shadow it for the runtime.
var javascriptGlobals = runtimeNames(
	"Array", "Boolean", "Math", "Number", "Object", "String", "parseFloat", "parseInt",
)

var javascriptOperators = map[ast.Operator]string{
	ast.OpPlus:         "+",
	ast.OpMinus:        "-",
	ast.OpMultiply:     "*",
	ast.OpDivide:       "/",
	ast.OpModulo:       "%",
	ast.OpGreater:      ">",
	ast.OpLess:         "<",
	ast.OpGreaterEqual: ">=",
	ast.OpLessEqual:    "<=",
	ast.OpEqual:        "===",
	ast.OpNotEqual:     "!==",
	ast.OpAnd:          "&&",
	ast.OpOr:           "||",
}

// javascriptGenerator emits target B. Named arguments travel as one trailing
// object literal that each process unpacks in its prologue.
type javascriptGenerator struct {
	emitter
}

var (
	_ ast.StmtVisitor         = (*javascriptGenerator)(nil)
	_ ast.ExprVisitor[string] = (*javascriptGenerator)(nil)
)

func newJavaScriptGenerator(o options) *javascriptGenerator {
	return &javascriptGenerator{emitter: newEmitter(javascriptReserved, javascriptGlobals, o)}
}

func (g *javascriptGenerator) generate(prog *ast.Program) (string, error) {
	g.line("// Generated JavaScript code from Runa")
	if g.opts.header {
		g.raw(javascriptRuntime)
		g.line("")
	}
	g.push(true)
	ast.WalkStmts(g, prog.Statements)
	return g.result()
}

func (g *javascriptGenerator) expr(e ast.Expr) string {
	return ast.VisitExpr[string](g, e)
}

// block emits stmts inside braces the caller opens and closes, in a new
// block scope.
func (g *javascriptGenerator) block(stmts []ast.Stmt) {
	g.scoped(func() { g.body(stmts) })
}

// body emits stmts one level deeper in the current scope.
func (g *javascriptGenerator) body(stmts []ast.Stmt) {
	g.nested(func() { ast.WalkStmts(g, stmts) })
}

func lineComment(code, text string) string {
	if text == "" {
		return code
	}
	return code + " // " + text
}

func (g *javascriptGenerator) VisitDeclaration(s *ast.Declaration) {
	comment, _ := g.inferred(s)
	value := g.expr(s.Value)
	g.line("%s", lineComment(fmt.Sprintf("let %s = %s;", g.bind(s.Name), value), comment))
}

func (g *javascriptGenerator) VisitTypedDeclaration(s *ast.TypedDeclaration) {
	value := g.expr(s.Value)
	g.line("%s", lineComment(fmt.Sprintf("let %s = %s;", g.bind(s.Name), value), "type: "+s.Annotation.String()))
}

func (g *javascriptGenerator) VisitAssignment(s *ast.Assignment) {
	value := g.expr(s.Value)
	g.line("%s = %s;", g.ref(s.Name), value)
}

func (g *javascriptGenerator) VisitIf(s *ast.IfStatement) {
	g.line("if (%s) {", g.expr(s.Condition))
	g.block(s.Then)
	rest := s.Else
	for len(rest) == 1 {
		next, ok := rest[0].(*ast.IfStatement)
		if !ok {
			break
		}
		g.line("} else if (%s) {", g.expr(next.Condition))
		g.block(next.Then)
		rest = next.Else
	}
	if rest != nil {
		g.line("} else {")
		g.block(rest)
	}
	g.line("}")
}

func (g *javascriptGenerator) VisitForEach(s *ast.ForEachStatement) {
	keyword := "for"
	if s.Async {
		keyword = "for await"
	}
	iterable := g.expr(s.Iterable)
	g.scoped(func() {
		g.line("%s (let %s of %s) {", keyword, g.bind(s.Variable), iterable)
		g.body(s.Body)
		g.line("}")
	})
}

func (g *javascriptGenerator) VisitReturn(s *ast.ReturnStatement) {
	if s.Value == nil {
		g.line("return;")
		return
	}
	g.line("return %s;", g.expr(s.Value))
}

func (g *javascriptGenerator) VisitDisplay(s *ast.DisplayStatement) {
	g.line("console.log(%s);", g.expr(s.Value))
}

func (g *javascriptGenerator) VisitExpressionStatement(s *ast.ExpressionStatement) {
	g.line("%s;", g.expr(s.Expr))
}

func (g *javascriptGenerator) VisitProcess(s *ast.ProcessDefinition) {
	g.function(s.Name, s.Parameters, s.Body, s.Async, "")
}

func (g *javascriptGenerator) VisitTypedProcess(s *ast.TypedProcessDefinition) {
	g.function(s.Name, s.ParameterNames(), s.Body, s.Async, "signature: "+signature(s))
}

func (g *javascriptGenerator) function(name string, params []string, body []ast.Stmt, async bool, comment string) {
	keyword := "function"
	if async {
		keyword = "async function"
	}
	name = g.bind(name)
	g.push(true)
	defer g.pop()
	if len(params) == 0 {
		g.line("%s", lineComment(fmt.Sprintf("%s %s() {", keyword, name), comment))
		g.block(body)
		g.line("}")
		return
	}
	g.line("%s", lineComment(fmt.Sprintf("%s %s(...__args) {", keyword, name), comment))
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = quote(p)
	}
	locals := g.bindParams(params)
	g.nested(func() {
		g.line("let [%s] = __runa_args(__args, [%s]);", strings.Join(locals, ", "), strings.Join(names, ", "))
	})
	g.block(body)
	g.line("}")
}

func (g *javascriptGenerator) VisitMatch(s *ast.MatchStatement) {
	m, ok := g.compileMatch(s)
	if !ok {
		return
	}
	subject := g.nextMatch()
	g.line("const %s = %s;", subject, g.expr(m.Subject))
	for i, c := range m.Cases {
		switch {
		case c.CatchAll && i == 0:
			g.line("if (true) {")
		case c.CatchAll:
			g.line("} else {")
		case i == 0:
			g.line("if (%s) {", g.cond(c.Test, subject))
		default:
			g.line("} else if (%s) {", g.cond(c.Test, subject))
		}
		g.scoped(func() {
			g.nested(func() {
				for _, b := range c.Bindings {
					g.line("const %s = %s;", g.bind(b.Name), g.access(b.Value, subject))
				}
			})
			g.body(c.Body)
		})
		if c.CatchAll {
			g.line("}")
			return
		}
	}
	if m.NeedsDefault {
		g.line("} else {")
	}
	g.line("}")
}

func (g *javascriptGenerator) VisitTypeAlias(s *ast.TypeAlias) {
	g.line("// type %s = %s", s.Name, s.Target)
}

func (g *javascriptGenerator) access(a patterns.Access, root string) string {
	out := root
	for _, s := range a {
		switch s.Kind {
		case patterns.StepIndex:
			out = fmt.Sprintf("%s[%d]", out, s.Index)
		case patterns.StepFromEnd:
			out = fmt.Sprintf("%s[%s.length - %d]", out, out, s.Index)
		case patterns.StepKey:
			out = fmt.Sprintf("%s[%s]", out, g.expr(s.Key))
		case patterns.StepSlice:
			if s.End == 0 {
				out = fmt.Sprintf("%s.slice(%d)", out, s.Index)
			} else {
				out = fmt.Sprintf("%s.slice(%d, %s.length - %d)", out, s.Index, out, s.End)
			}
		}
	}
	return out
}

func (g *javascriptGenerator) cond(c patterns.Cond, root string) string {
	switch c := c.(type) {
	case patterns.Always:
		return "true"
	case patterns.IsList:
		return fmt.Sprintf("Array.isArray(%s)", g.access(c.Subject, root))
	case patterns.LengthEquals:
		return fmt.Sprintf("%s.length === %d", g.access(c.Subject, root), c.Length)
	case patterns.LengthAtLeast:
		return fmt.Sprintf("%s.length >= %d", g.access(c.Subject, root), c.Length)
	case patterns.IsDict:
		return fmt.Sprintf("__runa_is_dict(%s)", g.access(c.Subject, root))
	case patterns.HasKey:
		return fmt.Sprintf("Object.prototype.hasOwnProperty.call(%s, %s)", g.access(c.Subject, root), g.expr(c.Key))
	case patterns.Equals:
		return fmt.Sprintf("%s === %s", g.access(c.Subject, root), g.expr(c.Value))
	case patterns.IsType:
		return fmt.Sprintf("__runa_is_type(%s, %s)", g.access(c.Subject, root), quote(c.TypeName))
	case patterns.And:
		terms := make([]string, len(c.Terms))
		for i, t := range c.Terms {
			terms[i] = g.cond(t, root)
		}
		return strings.Join(terms, " && ")
	}
	panic(fmt.Sprintf("unhandled pattern test %T", c))
}

func (g *javascriptGenerator) VisitString(e *ast.StringLiteral) string { return quote(e.Value) }
func (g *javascriptGenerator) VisitNumber(e *ast.NumberLiteral) string { return e.Text }

func (g *javascriptGenerator) VisitBoolean(e *ast.BooleanLiteral) string {
	if e.Value {
		return "true"
	}
	return "false"
}

func (g *javascriptGenerator) VisitVariable(e *ast.VariableReference) string {
	return g.ref(e.Name)
}

func (g *javascriptGenerator) VisitBinary(e *ast.BinaryOperation) string {
	return fmt.Sprintf("(%s %s %s)", g.expr(e.Left), javascriptOperators[e.Op], g.expr(e.Right))
}

// arguments renders positional arguments followed by the named-argument
// object, when there are named arguments.
func (g *javascriptGenerator) arguments(args []ast.Expr, named []ast.NamedArgument) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range args {
		parts = append(parts, g.expr(a))
	}
	if len(named) > 0 {
		entries := []string{"__runa_named: true"}
		for _, n := range named {
			entries = append(entries, quote(n.Name)+": "+g.expr(n.Value))
		}
		parts = append(parts, "{"+strings.Join(entries, ", ")+"}")
	}
	return strings.Join(parts, ", ")
}

func (g *javascriptGenerator) VisitCall(e *ast.FunctionCall) string {
	return fmt.Sprintf("%s(%s)", g.ref(e.Name), g.arguments(e.Args, e.Named))
}

func (g *javascriptGenerator) VisitList(e *ast.ListExpression) string {
	return "[" + g.arguments(e.Elements, nil) + "]"
}

func (g *javascriptGenerator) VisitDictionary(e *ast.DictionaryExpression) string {
	entries := make([]string, len(e.Entries))
	for i, entry := range e.Entries {
		key := g.expr(entry.Key)
		if !ast.IsLiteral(entry.Key) {
			key = "[" + key + "]"
		}
		entries[i] = key + ": " + g.expr(entry.Value)
	}
	return "{" + strings.Join(entries, ", ") + "}"
}

func (g *javascriptGenerator) VisitIndex(e *ast.IndexAccess) string {
	return fmt.Sprintf("%s[%s]", g.expr(e.Target), g.expr(e.Index))
}

func (g *javascriptGenerator) VisitLambda(e *ast.LambdaExpression) string {
	g.push(true)
	defer g.pop()
	params := g.bindParams(e.Parameters)
	return fmt.Sprintf("((%s) => %s)", strings.Join(params, ", "), g.expr(e.Body))
}

func (g *javascriptGenerator) VisitPipeline(e *ast.PipelineExpression) string {
	return fmt.Sprintf("pipeline(%s, %s)", g.expr(e.Left), g.expr(e.Right))
}

func (g *javascriptGenerator) VisitPartial(e *ast.PartialApplication) string {
	args := g.arguments(e.Args, e.Named)
	if args == "" {
		return fmt.Sprintf("partial(%s)", g.expr(e.Function))
	}
	return fmt.Sprintf("partial(%s, %s)", g.expr(e.Function), args)
}

func (g *javascriptGenerator) VisitComposition(e *ast.CompositionExpression) string {
	return "compose(" + g.arguments(e.Functions, nil) + ")"
}

func (g *javascriptGenerator) VisitMap(e *ast.MapExpression) string {
	return fmt.Sprintf("map_function(%s, %s)", g.expr(e.Function), g.expr(e.Collection))
}

func (g *javascriptGenerator) VisitFilter(e *ast.FilterExpression) string {
	return fmt.Sprintf("filter_function(%s, %s)", g.expr(e.Predicate), g.expr(e.Collection))
}

func (g *javascriptGenerator) VisitReduce(e *ast.ReduceExpression) string {
	if e.Initial == nil {
		return fmt.Sprintf("reduce_function(%s, %s)", g.expr(e.Function), g.expr(e.Collection))
	}
	return fmt.Sprintf("reduce_function(%s, %s, %s)", g.expr(e.Function), g.expr(e.Collection), g.expr(e.Initial))
}

func (g *javascriptGenerator) VisitAwait(e *ast.AwaitExpression) string {
	return fmt.Sprintf("(await %s)", g.expr(e.Value))
}
