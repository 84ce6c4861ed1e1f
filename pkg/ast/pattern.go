package ast

import (
	"fmt"
	"strings"
)

// Pattern is the left-hand side of a "When" case. Patterns are plain data;
// they are interpreted by the patterns package.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern "_" matches anything and binds nothing.
type WildcardPattern struct {
	Position
}

// LiteralPattern matches values equal to a string, number or boolean literal.
type LiteralPattern struct {
	Position
	Value Expr
}

// VariablePattern matches anything and binds it to Name.
type VariablePattern struct {
	Position
	Name string
}

// RestPattern "...name" captures the middle of a list. It is only valid as an
// element of a ListPattern. Name is empty for an anonymous "...".
type RestPattern struct {
	Position
	Name string
}

// ListPattern matches lists element by element.
type ListPattern struct {
	Position
	Elements []Pattern
}

// RestIndex returns the index of the rest element, or -1.
func (p *ListPattern) RestIndex() int {
	for i, el := range p.Elements {
		if _, ok := el.(*RestPattern); ok {
			return i
		}
	}
	return -1
}

// DictionaryPatternEntry pairs a literal key with the pattern its value must match.
type DictionaryPatternEntry struct {
	Key   Expr
	Value Pattern
}

// DictionaryPattern matches dictionaries containing at least the listed keys.
type DictionaryPattern struct {
	Position
	Entries []DictionaryPatternEntry
}

// TypePattern matches values of the named runtime type, then Inner if present.
//
//	When Integer n:
type TypePattern struct {
	Position
	TypeName string
	Inner    Pattern
}

func (*WildcardPattern) patternNode()   {}
func (*LiteralPattern) patternNode()    {}
func (*VariablePattern) patternNode()   {}
func (*RestPattern) patternNode()       {}
func (*ListPattern) patternNode()       {}
func (*DictionaryPattern) patternNode() {}
func (*TypePattern) patternNode()       {}

func (p *WildcardPattern) String() string { return "_" }
func (p *LiteralPattern) String() string  { return p.Value.String() }
func (p *VariablePattern) String() string { return p.Name }
func (p *RestPattern) String() string     { return "..." + p.Name }

func (p *ListPattern) String() string {
	parts := make([]string, len(p.Elements))
	for i, el := range p.Elements {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (p *DictionaryPattern) String() string {
	parts := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		parts[i] = fmt.Sprintf("%s: %s", e.Key, e.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (p *TypePattern) String() string {
	if p.Inner == nil {
		return p.TypeName
	}
	return p.TypeName + " " + p.Inner.String()
}
