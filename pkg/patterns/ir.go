// Package patterns lowers Match statements into target-independent tests and
// bindings. Code generators render the result; Evaluate runs it directly
// against Go values.
package patterns

import (
	"fmt"
	"strings"

	"runa/pkg/ast"
)

// StepKind selects how a Step reaches into a value.
type StepKind int

const (
	StepIndex   StepKind = iota // element Index counted from the front
	StepFromEnd                 // element at length minus Index
	StepKey                     // dictionary entry Key
	StepSlice                   // elements from Index up to length minus End
)

// Step is one hop of an Access path.
type Step struct {
	Kind  StepKind
	Index int
	End   int
	Key   ast.Expr // literal key for StepKey
}

func (s Step) String() string {
	switch s.Kind {
	case StepIndex:
		return fmt.Sprintf("[%d]", s.Index)
	case StepFromEnd:
		return fmt.Sprintf("[len-%d]", s.Index)
	case StepKey:
		return "[" + s.Key.String() + "]"
	case StepSlice:
		return fmt.Sprintf("[%d:len-%d]", s.Index, s.End)
	}
	return "[?]"
}

// Access is a path from the materialized scrutinee to a nested value. The
// empty path is the scrutinee itself.
type Access []Step

// Then returns a new path extending a by s.
func (a Access) Then(s Step) Access {
	out := make(Access, len(a), len(a)+1)
	copy(out, a)
	return append(out, s)
}

func (a Access) String() string {
	var sb strings.Builder
	sb.WriteString("$")
	for _, s := range a {
		sb.WriteString(s.String())
	}
	return sb.String()
}

// Cond is a boolean test over the scrutinee.
type Cond interface {
	cond()
	String() string
}

// Always is the test of a pattern that matches anything.
type Always struct{}

// IsList tests that Subject is a list.
type IsList struct{ Subject Access }

// LengthEquals tests len(Subject) == Length.
type LengthEquals struct {
	Subject Access
	Length  int
}

// LengthAtLeast tests len(Subject) >= Length.
type LengthAtLeast struct {
	Subject Access
	Length  int
}

// IsDict tests that Subject is a dictionary.
type IsDict struct{ Subject Access }

// HasKey tests that the dictionary Subject contains Key.
type HasKey struct {
	Subject Access
	Key     ast.Expr
}

// Equals tests Subject against a literal.
type Equals struct {
	Subject Access
	Value   ast.Expr
}

// IsType tests the runtime type of Subject.
type IsType struct {
	Subject  Access
	TypeName string
}

// And holds terms evaluated left to right with short-circuiting. Later terms
// may assume earlier ones held.
type And struct{ Terms []Cond }

func (Always) cond()        {}
func (IsList) cond()        {}
func (LengthEquals) cond()  {}
func (LengthAtLeast) cond() {}
func (IsDict) cond()        {}
func (HasKey) cond()        {}
func (Equals) cond()        {}
func (IsType) cond()        {}
func (And) cond()           {}

func (Always) String() string          { return "true" }
func (c IsList) String() string        { return "is_list(" + c.Subject.String() + ")" }
func (c LengthEquals) String() string  { return fmt.Sprintf("len(%s) == %d", c.Subject, c.Length) }
func (c LengthAtLeast) String() string { return fmt.Sprintf("len(%s) >= %d", c.Subject, c.Length) }
func (c IsDict) String() string        { return "is_dict(" + c.Subject.String() + ")" }
func (c HasKey) String() string        { return fmt.Sprintf("%s in %s", c.Key, c.Subject) }
func (c Equals) String() string        { return fmt.Sprintf("%s == %s", c.Subject, c.Value) }
func (c IsType) String() string        { return fmt.Sprintf("is_type(%s, %s)", c.Subject, c.TypeName) }

func (c And) String() string {
	parts := make([]string, len(c.Terms))
	for i, t := range c.Terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " && ")
}

// Binding assigns the value at Value to Name before a case body runs.
type Binding struct {
	Name     string
	Value    Access
	Position ast.Position
}

// Case is one compiled When arm.
type Case struct {
	Test     Cond
	Bindings []Binding
	Body     []ast.Stmt
	CatchAll bool
	Position ast.Position
}

// Match is a compiled Match statement. Cases are tried in order and the first
// whose Test holds runs. NeedsDefault is set when no case is a catch-all, so
// emitters append an empty fallback branch.
type Match struct {
	Subject      ast.Expr
	Cases        []Case
	NeedsDefault bool
}
