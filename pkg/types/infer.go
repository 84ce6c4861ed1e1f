package types

import (
	"runa/pkg/ast"
	"runa/pkg/builtins"
	"runa/pkg/patterns"
)

// Infer returns the type of e in env. It never fails: anything it cannot
// determine is Any.
func Infer(e ast.Expr, env *Env) Type {
	return newInferer(env).infer(e)
}

// inferer evaluates expression types. active guards call-site
// specialization of recursive processes.
type inferer struct {
	env    *Env
	active map[string]bool
}

var _ ast.ExprVisitor[Type] = (*inferer)(nil)

func newInferer(env *Env) *inferer {
	return &inferer{env: env, active: make(map[string]bool)}
}

func (i *inferer) infer(e ast.Expr) Type {
	if e == nil {
		return Nothing
	}
	return ast.VisitExpr[Type](i, e)
}

// in evaluates fn with env as the current environment.
func (i *inferer) in(env *Env, fn func() Type) Type {
	saved := i.env
	i.env = env
	defer func() { i.env = saved }()
	return fn()
}

func (i *inferer) VisitString(*ast.StringLiteral) Type   { return String }
func (i *inferer) VisitBoolean(*ast.BooleanLiteral) Type { return Boolean }

func (i *inferer) VisitNumber(e *ast.NumberLiteral) Type {
	if e.IsFloat {
		return Float
	}
	return Integer
}

func (i *inferer) VisitVariable(e *ast.VariableReference) Type {
	if t, ok := i.env.Lookup(e.Name); ok {
		return t
	}
	if sig, ok := i.env.Process(e.Name); ok {
		return sig.FunctionType()
	}
	if b, ok := builtins.Lookup(e.Name); ok {
		return builtinFunction(b)
	}
	return Any
}

func (i *inferer) VisitBinary(e *ast.BinaryOperation) Type {
	left, right := i.infer(e.Left), i.infer(e.Right)
	switch {
	case e.Op.IsComparison(), e.Op.IsLogical():
		return Boolean
	case e.Op == ast.OpPlus && (Equal(left, String) || Equal(right, String)):
		return String
	case IsNumeric(left) && IsNumeric(right):
		if e.Op == ast.OpDivide || Equal(left, Float) || Equal(right, Float) {
			return Float
		}
		return Integer
	}
	return Any
}

func (i *inferer) VisitCall(e *ast.FunctionCall) Type {
	args := make([]Type, len(e.Args))
	for k, a := range e.Args {
		args[k] = i.infer(a)
	}
	named := make(map[string]Type, len(e.Named))
	for _, n := range e.Named {
		named[n.Name] = i.infer(n.Value)
	}
	return i.call(e.Name, args, named)
}

// call infers the result of calling name with the given argument types.
func (i *inferer) call(name string, args []Type, named map[string]Type) Type {
	if t, ok := i.env.Lookup(name); ok {
		if fn, ok := t.(*Function); ok {
			return fn.Return
		}
		return Any
	}
	if sig, ok := i.env.Process(name); ok {
		return i.callProcess(sig, args, named)
	}
	if b, ok := builtins.Lookup(name); ok {
		return builtinResult(b, args)
	}
	return Any
}

func (i *inferer) callProcess(sig *Signature, args []Type, named map[string]Type) Type {
	bound := make([]Type, len(sig.Params))
	for k, p := range sig.Params {
		switch {
		case k < len(args):
			bound[k] = args[k]
		case named[p] != nil:
			bound[k] = named[p]
		default:
			bound[k] = Any
		}
	}

	if sig.Returns != nil {
		if len(sig.Generics) == 0 {
			return sig.Returns
		}
		subst := make(map[string]Type)
		for k, pt := range sig.ParamTypes {
			if pt != nil {
				bindGenerics(pt, bound[k], subst)
			}
		}
		return Substitute(sig.Returns, subst)
	}

	if i.active[sig.Name] {
		return Any
	}
	i.active[sig.Name] = true
	defer delete(i.active, sig.Name)

	env := NewEnv(sig.Env)
	for k, p := range sig.Params {
		t := bound[k]
		if sig.ParamTypes != nil && sig.ParamTypes[k] != nil && !IsAny(sig.ParamTypes[k]) {
			t = sig.ParamTypes[k]
		}
		env.Set(p, t)
	}
	returns := i.in(env, func() Type {
		var rs []Type
		i.body(sig.Body, &rs)
		if len(rs) == 0 {
			return Nothing
		}
		return UnifyAll(rs)
	})
	return returns
}

// body records variable types of stmts in the current environment and
// collects the types of Return statements.
func (i *inferer) body(stmts []ast.Stmt, returns *[]Type) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.Declaration:
			i.env.Set(n.Name, i.infer(n.Value))
		case *ast.TypedDeclaration:
			t, _ := i.env.Resolve(n.Annotation, nil)
			i.env.Declare(n.Name, t)
		case *ast.Assignment:
			t := i.infer(n.Value)
			if old, ok := i.env.Lookup(n.Name); ok {
				t = Unify(old, t)
			}
			i.env.Update(n.Name, t)
		case *ast.ReturnStatement:
			*returns = append(*returns, i.infer(n.Value))
		case *ast.IfStatement:
			i.in(i.env.Child(), func() Type { i.body(n.Then, returns); return nil })
			i.in(i.env.Child(), func() Type { i.body(n.Else, returns); return nil })
		case *ast.ForEachStatement:
			env := i.env.Child()
			env.Set(n.Variable, ElementType(i.infer(n.Iterable)))
			i.in(env, func() Type { i.body(n.Body, returns); return nil })
		case *ast.MatchStatement:
			subject := i.infer(n.Subject)
			for _, c := range n.Cases {
				env := i.env.Child()
				BindPattern(env, c.Pattern, subject)
				i.in(env, func() Type { i.body(c.Body, returns); return nil })
			}
		case *ast.ProcessDefinition:
			i.env.DefineProcess(&Signature{Name: n.Name, Params: n.Parameters, Body: n.Body, Async: n.Async})
		case *ast.TypedProcessDefinition:
			i.env.DefineProcess(TypedSignature(i.env, n))
		}
	}
}

func (i *inferer) VisitList(e *ast.ListExpression) Type {
	if len(e.Elements) == 0 {
		return &List{Element: Any}
	}
	elems := make([]Type, len(e.Elements))
	for k, el := range e.Elements {
		elems[k] = i.infer(el)
	}
	return &List{Element: UnifyAll(elems)}
}

func (i *inferer) VisitDictionary(e *ast.DictionaryExpression) Type {
	if len(e.Entries) == 0 {
		return &Dictionary{Key: Any, Value: Any}
	}
	keys := make([]Type, len(e.Entries))
	values := make([]Type, len(e.Entries))
	for k, entry := range e.Entries {
		keys[k] = i.infer(entry.Key)
		values[k] = i.infer(entry.Value)
	}
	return &Dictionary{Key: UnifyAll(keys), Value: UnifyAll(values)}
}

func (i *inferer) VisitIndex(e *ast.IndexAccess) Type {
	switch t := i.infer(e.Target).(type) {
	case *List:
		return t.Element
	case *Dictionary:
		return t.Value
	case *Primitive:
		if Equal(t, String) {
			return String
		}
	}
	return Any
}

func (i *inferer) VisitLambda(e *ast.LambdaExpression) Type {
	params := make([]Type, len(e.Parameters))
	for k := range params {
		params[k] = Any
	}
	return &Function{Params: params, Return: i.apply(e, params)}
}

// apply infers the result of calling the function expression fn.
func (i *inferer) apply(fn ast.Expr, args []Type) Type {
	switch f := fn.(type) {
	case *ast.LambdaExpression:
		env := i.env.Child()
		for k, p := range f.Parameters {
			t := Any
			if k < len(args) {
				t = args[k]
			}
			env.Set(p, t)
		}
		return i.in(env, func() Type { return i.infer(f.Body) })
	case *ast.VariableReference:
		return i.call(f.Name, args, nil)
	}
	if t, ok := i.infer(fn).(*Function); ok {
		return t.Return
	}
	return Any
}

func (i *inferer) VisitPipeline(e *ast.PipelineExpression) Type {
	return i.apply(e.Right, []Type{i.infer(e.Left)})
}

func (i *inferer) VisitPartial(e *ast.PartialApplication) Type {
	for _, a := range e.Args {
		i.infer(a)
	}
	ret := Any
	if fn, ok := i.infer(e.Function).(*Function); ok {
		ret = fn.Return
	}
	return &Function{Params: []Type{Any}, Return: ret}
}

func (i *inferer) VisitComposition(e *ast.CompositionExpression) Type {
	ret := Any
	if len(e.Functions) > 0 {
		if fn, ok := i.infer(e.Functions[0]).(*Function); ok {
			ret = fn.Return
		}
	}
	return &Function{Params: []Type{Any}, Return: ret}
}

func (i *inferer) VisitMap(e *ast.MapExpression) Type {
	el := ElementType(i.infer(e.Collection))
	return &List{Element: i.apply(e.Function, []Type{el})}
}

func (i *inferer) VisitFilter(e *ast.FilterExpression) Type {
	coll := i.infer(e.Collection)
	i.apply(e.Predicate, []Type{ElementType(coll)})
	if l, ok := coll.(*List); ok {
		return l
	}
	return &List{Element: Any}
}

func (i *inferer) VisitReduce(e *ast.ReduceExpression) Type {
	el := ElementType(i.infer(e.Collection))
	acc := el
	if e.Initial != nil {
		acc = i.infer(e.Initial)
	}
	r := i.apply(e.Function, []Type{acc, el})
	if IsAny(r) && e.Initial != nil {
		return acc
	}
	return r
}

func (i *inferer) VisitAwait(e *ast.AwaitExpression) Type {
	return i.infer(e.Value)
}

// ElementType returns the element type of a list, or Any.
func ElementType(t Type) Type {
	if l, ok := t.(*List); ok {
		return l.Element
	}
	return Any
}

// BindPattern binds the names a pattern introduces. A type guard around a
// bare name gives that name the guarded type; other bindings are Any.
func BindPattern(env *Env, p ast.Pattern, subject Type) {
	bindings, err := patterns.Bindings(p)
	if err != nil {
		return
	}
	for _, b := range bindings {
		env.Set(b.Name, Any)
	}
	switch n := p.(type) {
	case *ast.VariablePattern:
		env.Set(n.Name, subject)
	case *ast.TypePattern:
		if v, ok := n.Inner.(*ast.VariablePattern); ok {
			env.Set(v.Name, GuardType(n.TypeName))
		}
	}
}

// GuardType maps a runtime type-guard name to a Type.
func GuardType(name string) Type {
	switch name {
	case "Number":
		return NewUnion(Integer, Float)
	case "List":
		return &List{Element: Any}
	case "Dictionary":
		return &Dictionary{Key: Any, Value: Any}
	}
	if p, ok := primitives[name]; ok {
		return p
	}
	return Any
}

// TypedSignature builds the signature of an annotated process.
func TypedSignature(env *Env, d *ast.TypedProcessDefinition) *Signature {
	generics := make(map[string]bool, len(d.Generics))
	names := make([]string, len(d.Generics))
	for k, g := range d.Generics {
		generics[g.Name] = true
		names[k] = g.Name
	}
	sig := &Signature{Name: d.Name, Generics: names, Body: d.Body, Async: d.Async}
	sig.Params = d.ParameterNames()
	sig.ParamTypes = make([]Type, len(d.Parameters))
	for k, p := range d.Parameters {
		if p.Type == nil {
			sig.ParamTypes[k] = Any
			continue
		}
		sig.ParamTypes[k], _ = env.Resolve(p.Type, generics)
	}
	if d.Returns != nil {
		sig.Returns, _ = env.Resolve(d.Returns, generics)
	}
	return sig
}

func builtinFunction(b builtins.Builtin) *Function {
	if b.Arity == builtins.Variadic {
		return &Function{Return: builtinResult(b, nil), AnyArity: true}
	}
	params := make([]Type, b.Arity)
	for k := range params {
		params[k] = Any
	}
	return &Function{Params: params, Return: builtinResult(b, nil)}
}

func builtinResult(b builtins.Builtin, args []Type) Type {
	switch b.Returns {
	case "List":
		if b.Element != "" {
			return &List{Element: GuardType(b.Element)}
		}
		// list helpers keep the element type of their first argument
		if len(args) > 0 {
			if l, ok := args[0].(*List); ok {
				return l
			}
		}
		return &List{Element: Any}
	case "Dictionary":
		// dictionary helpers return their first argument
		if len(args) > 0 {
			if d, ok := args[0].(*Dictionary); ok {
				return d
			}
		}
		return &Dictionary{Key: Any, Value: Any}
	case "Any", "":
		return Any
	}
	return GuardType(b.Returns)
}

// bindGenerics matches a parameter type against an argument type and records
// the types bound to each type parameter.
func bindGenerics(param, arg Type, subst map[string]Type) {
	switch p := param.(type) {
	case *Generic:
		if prev, ok := subst[p.Name]; ok {
			subst[p.Name] = Unify(prev, arg)
		} else {
			subst[p.Name] = arg
		}
	case *List:
		if a, ok := arg.(*List); ok {
			bindGenerics(p.Element, a.Element, subst)
		}
	case *Dictionary:
		if a, ok := arg.(*Dictionary); ok {
			bindGenerics(p.Key, a.Key, subst)
			bindGenerics(p.Value, a.Value, subst)
		}
	case *Function:
		a, ok := arg.(*Function)
		if !ok {
			break
		}
		if !a.AnyArity && !p.AnyArity && len(a.Params) == len(p.Params) {
			for k := range p.Params {
				bindGenerics(p.Params[k], a.Params[k], subst)
			}
		}
		bindGenerics(p.Return, a.Return, subst)
	case *Parameterized:
		if a, ok := arg.(*Parameterized); ok && a.Name == p.Name && len(a.Args) == len(p.Args) {
			for k := range p.Args {
				bindGenerics(p.Args[k], a.Args[k], subst)
			}
		}
	}
}

// Substitute replaces bound type parameters in t. Unbound parameters become Any.
func Substitute(t Type, subst map[string]Type) Type {
	switch x := t.(type) {
	case *Generic:
		if s, ok := subst[x.Name]; ok {
			return s
		}
		return Any
	case *List:
		return &List{Element: Substitute(x.Element, subst)}
	case *Dictionary:
		return &Dictionary{Key: Substitute(x.Key, subst), Value: Substitute(x.Value, subst)}
	case *Function:
		params := make([]Type, len(x.Params))
		for k, p := range x.Params {
			params[k] = Substitute(p, subst)
		}
		return &Function{Params: params, Return: Substitute(x.Return, subst), AnyArity: x.AnyArity}
	case *Union:
		members := make([]Type, len(x.Members))
		for k, m := range x.Members {
			members[k] = Substitute(m, subst)
		}
		return NewUnion(members...)
	case *Parameterized:
		args := make([]Type, len(x.Args))
		for k, a := range x.Args {
			args[k] = Substitute(a, subst)
		}
		return &Parameterized{Name: x.Name, Args: args}
	}
	return t
}
