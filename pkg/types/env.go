package types

import (
	"fmt"

	"runa/pkg/ast"
)

// Signature describes a process for inference. Untyped processes have nil
// ParamTypes and Returns and are specialized at each call site.
type Signature struct {
	Name       string
	Params     []string
	ParamTypes []Type
	Returns    Type
	Generics   []string
	Body       []ast.Stmt
	Async      bool
	// Env is the environment the process was defined in.
	Env *Env
}

// Typed reports whether the process carries any annotation.
func (s *Signature) Typed() bool {
	return s.ParamTypes != nil || s.Returns != nil || len(s.Generics) > 0
}

// FunctionType returns the signature as a Function type.
func (s *Signature) FunctionType() *Function {
	params := make([]Type, len(s.Params))
	for i := range params {
		params[i] = Any
		if s.ParamTypes != nil && s.ParamTypes[i] != nil {
			params[i] = s.ParamTypes[i]
		}
	}
	ret := s.Returns
	if ret == nil {
		ret = Any
	}
	return &Function{Params: params, Return: ret}
}

// Env maps names to types. Lookups walk the parent chain.
type Env struct {
	parent    *Env
	vars      map[string]Type
	annotated map[string]Type
	procs     map[string]*Signature
	aliases   map[string]Type
}

// NewEnv returns an environment nested in parent, or a root when parent is nil.
func NewEnv(parent *Env) *Env {
	return &Env{
		parent:    parent,
		vars:      make(map[string]Type),
		annotated: make(map[string]Type),
		procs:     make(map[string]*Signature),
		aliases:   make(map[string]Type),
	}
}

// Child returns a new environment nested in e.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Lookup returns the type of a variable.
func (e *Env) Lookup(name string) (Type, bool) {
	for env := e; env != nil; env = env.parent {
		if t, ok := env.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Set binds name in e itself.
func (e *Env) Set(name string, t Type) {
	e.vars[name] = t
}

// Declare binds name with a fixed annotated type. Later assignments are
// checked against it.
func (e *Env) Declare(name string, t Type) {
	e.vars[name] = t
	e.annotated[name] = t
}

// Annotation returns the declared type of name, if it was annotated.
func (e *Env) Annotation(name string) (Type, bool) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			t, annotated := env.annotated[name]
			return t, annotated
		}
	}
	return nil, false
}

// Update rebinds an existing variable in the environment that owns it, or
// binds it in e when no environment does.
func (e *Env) Update(name string, t Type) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = t
			return
		}
	}
	e.vars[name] = t
}

// DefineProcess binds a process signature in e.
func (e *Env) DefineProcess(sig *Signature) {
	if sig.Env == nil {
		sig.Env = e
	}
	e.procs[sig.Name] = sig
}

// Process returns the signature of a process.
func (e *Env) Process(name string) (*Signature, bool) {
	for env := e; env != nil; env = env.parent {
		if sig, ok := env.procs[name]; ok {
			return sig, true
		}
	}
	return nil, false
}

// DefineAlias binds a type alias in e.
func (e *Env) DefineAlias(name string, t Type) {
	e.aliases[name] = t
}

func (e *Env) alias(name string) (Type, bool) {
	for env := e; env != nil; env = env.parent {
		if t, ok := env.aliases[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Vars returns the variables bound directly in e.
func (e *Env) Vars() map[string]Type {
	out := make(map[string]Type, len(e.vars))
	for k, v := range e.vars {
		out[k] = v
	}
	return out
}

// UnknownTypeError reports an annotation naming no known type.
type UnknownTypeError struct {
	Name     string
	Position ast.Position
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Name)
}

// Resolve converts an annotation to a Type. Names in generics resolve to
// type parameters. An unknown name resolves to Any with an error.
func (e *Env) Resolve(te ast.TypeExpr, generics map[string]bool) (Type, error) {
	switch n := te.(type) {
	case nil:
		return Any, nil
	case *ast.AnyType:
		return Any, nil
	case *ast.NamedType:
		if p, ok := primitives[n.Name]; ok {
			return p, nil
		}
		if generics[n.Name] {
			return &Generic{Name: n.Name}, nil
		}
		if t, ok := e.alias(n.Name); ok {
			return t, nil
		}
		switch n.Name {
		case "Number":
			return NewUnion(Integer, Float), nil
		case "List":
			return &List{Element: Any}, nil
		case "Dictionary":
			return &Dictionary{Key: Any, Value: Any}, nil
		case "Function":
			return &Function{Return: Any, AnyArity: true}, nil
		}
		return Any, &UnknownTypeError{Name: n.Name, Position: n.Position}
	case *ast.UnionType:
		members, err := e.resolveAll(n.Members, generics)
		return NewUnion(members...), err
	case *ast.ListType:
		el, err := e.Resolve(n.Element, generics)
		return &List{Element: el}, err
	case *ast.DictionaryType:
		k, err := e.Resolve(n.Key, generics)
		v, err2 := e.Resolve(n.Value, generics)
		if err == nil {
			err = err2
		}
		return &Dictionary{Key: k, Value: v}, err
	case *ast.FunctionType:
		params, err := e.resolveAll(n.Params, generics)
		ret, err2 := e.Resolve(n.Return, generics)
		if err == nil {
			err = err2
		}
		return &Function{Params: params, Return: ret}, err
	case *ast.GenericType:
		args, err := e.resolveAll(n.Args, generics)
		return &Parameterized{Name: n.Name, Args: args}, err
	}
	return Any, nil
}

func (e *Env) resolveAll(tes []ast.TypeExpr, generics map[string]bool) ([]Type, error) {
	out := make([]Type, len(tes))
	var first error
	for i, te := range tes {
		t, err := e.Resolve(te, generics)
		if err != nil && first == nil {
			first = err
		}
		out[i] = t
	}
	return out, first
}
