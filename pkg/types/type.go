// Package types implements the optional type layer: a structural type
// family, inference over expressions, and a checker that compares
// annotations against inferred types. Inference is advisory; it never fails
// and falls back to Any.
package types

import (
	"strings"
)

// Type is a closed family of structural types.
type Type interface {
	String() string
	typ()
}

// Primitive is one of the built-in scalar types.
type Primitive struct {
	Name string
}

// Built-in primitives.
var (
	Integer = &Primitive{Name: "Integer"}
	Float   = &Primitive{Name: "Float"}
	String  = &Primitive{Name: "String"}
	Boolean = &Primitive{Name: "Boolean"}
	Nothing = &Primitive{Name: "Nothing"}
)

var primitives = map[string]*Primitive{
	"Integer": Integer,
	"Float":   Float,
	"String":  String,
	"Boolean": Boolean,
	"Nothing": Nothing,
}

// AnyType is compatible with everything in both directions.
type AnyType struct{}

// Any is the single AnyType value.
var Any Type = &AnyType{}

// Union holds two or more alternatives.
type Union struct {
	Members []Type
}

// List is a homogeneous list.
type List struct {
	Element Type
}

// Dictionary maps Key to Value.
type Dictionary struct {
	Key   Type
	Value Type
}

// Function is the type of processes and lambdas. AnyArity marks a bare
// Function annotation or a variadic builtin; Params is then ignored and
// any parameter list matches.
type Function struct {
	Params   []Type
	Return   Type
	AnyArity bool
}

// Generic is a type parameter of a generic process.
type Generic struct {
	Name string
}

// Parameterized is a named type applied to arguments, such as Result[T].
type Parameterized struct {
	Name string
	Args []Type
}

func (*Primitive) typ()     {}
func (*AnyType) typ()       {}
func (*Union) typ()         {}
func (*List) typ()          {}
func (*Dictionary) typ()    {}
func (*Function) typ()      {}
func (*Generic) typ()       {}
func (*Parameterized) typ() {}

func (t *Primitive) String() string { return t.Name }
func (t *AnyType) String() string   { return "Any" }
func (t *Generic) String() string   { return t.Name }

func (t *Union) String() string {
	return joinTypes(t.Members, " | ")
}

func (t *List) String() string {
	return "List[" + t.Element.String() + "]"
}

func (t *Dictionary) String() string {
	return "Dictionary[" + t.Key.String() + ", " + t.Value.String() + "]"
}

func (t *Function) String() string {
	if t.AnyArity {
		return "(...) -> " + t.Return.String()
	}
	return "(" + joinTypes(t.Params, ", ") + ") -> " + t.Return.String()
}

func (t *Parameterized) String() string {
	return t.Name + "[" + joinTypes(t.Args, ", ") + "]"
}

func joinTypes(ts []Type, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}

// NewUnion flattens nested unions and drops duplicate members. A union of one
// member is that member; a union containing Any is Any.
func NewUnion(members ...Type) Type {
	var flat []Type
	var add func(t Type)
	add = func(t Type) {
		if u, ok := t.(*Union); ok {
			for _, m := range u.Members {
				add(m)
			}
			return
		}
		for _, seen := range flat {
			if Equal(seen, t) {
				return
			}
		}
		flat = append(flat, t)
	}
	for _, m := range members {
		add(m)
	}
	for _, m := range flat {
		if IsAny(m) {
			return Any
		}
	}
	switch len(flat) {
	case 0:
		return Any
	case 1:
		return flat[0]
	}
	return &Union{Members: flat}
}

// Equal reports structural equality. Union member order is ignored.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case *Primitive:
		y, ok := b.(*Primitive)
		return ok && x.Name == y.Name
	case *AnyType:
		_, ok := b.(*AnyType)
		return ok
	case *Generic:
		y, ok := b.(*Generic)
		return ok && x.Name == y.Name
	case *List:
		y, ok := b.(*List)
		return ok && Equal(x.Element, y.Element)
	case *Dictionary:
		y, ok := b.(*Dictionary)
		return ok && Equal(x.Key, y.Key) && Equal(x.Value, y.Value)
	case *Function:
		y, ok := b.(*Function)
		return ok && x.AnyArity == y.AnyArity && equalAll(x.Params, y.Params) && Equal(x.Return, y.Return)
	case *Parameterized:
		y, ok := b.(*Parameterized)
		return ok && x.Name == y.Name && equalAll(x.Args, y.Args)
	case *Union:
		y, ok := b.(*Union)
		if !ok || len(x.Members) != len(y.Members) {
			return false
		}
		for _, m := range x.Members {
			if !containsType(y.Members, m) {
				return false
			}
		}
		return true
	}
	return false
}

func equalAll(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func containsType(ts []Type, t Type) bool {
	for _, m := range ts {
		if Equal(m, t) {
			return true
		}
	}
	return false
}

// IsAny reports whether t is Any.
func IsAny(t Type) bool {
	_, ok := t.(*AnyType)
	return ok
}

// IsNumeric reports whether t is Integer or Float.
func IsNumeric(t Type) bool {
	return Equal(t, Integer) || Equal(t, Float)
}
