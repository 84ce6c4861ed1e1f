package ast

import "strings"

// TypeExpr is a type annotation as written in source. The types package
// resolves annotations into semantic types.
type TypeExpr interface {
	Node
	typeNode()
}

// NamedType refers to a primitive, an alias or a generic parameter by name.
type NamedType struct {
	Position
	Name string
}

// AnyType is the "Any" annotation.
type AnyType struct {
	Position
}

// UnionType is "A | B" or "Union[A, B]".
type UnionType struct {
	Position
	Members []TypeExpr
}

// ListType is "List[T]".
type ListType struct {
	Position
	Element TypeExpr
}

// DictionaryType is "Dictionary[K, V]".
type DictionaryType struct {
	Position
	Key   TypeExpr
	Value TypeExpr
}

// FunctionType is "(A, B) -> R".
type FunctionType struct {
	Position
	Params []TypeExpr
	Return TypeExpr
}

// GenericType is a parameterized name such as "Result[T, E]".
type GenericType struct {
	Position
	Name string
	Args []TypeExpr
}

func (*NamedType) typeNode()      {}
func (*AnyType) typeNode()        {}
func (*UnionType) typeNode()      {}
func (*ListType) typeNode()       {}
func (*DictionaryType) typeNode() {}
func (*FunctionType) typeNode()   {}
func (*GenericType) typeNode()    {}

func joinTypes(ts []TypeExpr, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}

func (t *NamedType) String() string      { return t.Name }
func (t *AnyType) String() string        { return "Any" }
func (t *UnionType) String() string      { return joinTypes(t.Members, " | ") }
func (t *ListType) String() string       { return "List[" + t.Element.String() + "]" }
func (t *DictionaryType) String() string { return "Dictionary[" + t.Key.String() + ", " + t.Value.String() + "]" }

func (t *FunctionType) String() string {
	return "(" + joinTypes(t.Params, ", ") + ") -> " + t.Return.String()
}

func (t *GenericType) String() string {
	return t.Name + "[" + joinTypes(t.Args, ", ") + "]"
}
