package patterns

import (
	"fmt"

	"runa/pkg/ast"
)

// DuplicateBindingError reports a name bound twice in one pattern.
type DuplicateBindingError struct {
	Name   string
	First  ast.Position
	Second ast.Position
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("pattern binds %q more than once (line %d, column %d and line %d, column %d)",
		e.Name, e.First.Line, e.First.Column, e.Second.Line, e.Second.Column)
}

// PatternError reports a structurally invalid pattern.
type PatternError struct {
	Message  string
	Position ast.Position
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Position.Line, e.Position.Column, e.Message)
}

// IsCatchAll reports whether p matches every value: a wildcard or a bare name.
func IsCatchAll(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.WildcardPattern, *ast.VariablePattern:
		return true
	}
	return false
}

// Validate checks p for repeated bind names and misplaced rest elements.
func Validate(p ast.Pattern) error {
	_, err := collectBindings(p, nil)
	return err
}

// Bindings returns the bindings p produces, in pattern order.
func Bindings(p ast.Pattern) ([]Binding, error) {
	return collectBindings(p, nil)
}

func collectBindings(p ast.Pattern, at Access) ([]Binding, error) {
	var out []Binding
	seen := make(map[string]ast.Position)
	var walk func(p ast.Pattern, at Access) error
	bind := func(name string, pos ast.Position, at Access) error {
		if first, ok := seen[name]; ok {
			return &DuplicateBindingError{Name: name, First: first, Second: pos}
		}
		seen[name] = pos
		out = append(out, Binding{Name: name, Value: at, Position: pos})
		return nil
	}
	walk = func(p ast.Pattern, at Access) error {
		switch n := p.(type) {
		case *ast.WildcardPattern, *ast.LiteralPattern:
			return nil
		case *ast.VariablePattern:
			return bind(n.Name, n.Position, at)
		case *ast.TypePattern:
			if n.Inner == nil {
				return nil
			}
			return walk(n.Inner, at)
		case *ast.ListPattern:
			rest, after, err := restLayout(n)
			if err != nil {
				return err
			}
			for i, el := range n.Elements {
				switch {
				case rest < 0 || i < rest:
					if err := walk(el, at.Then(Step{Kind: StepIndex, Index: i})); err != nil {
						return err
					}
				case i == rest:
					if r := el.(*ast.RestPattern); r.Name != "" {
						if err := bind(r.Name, r.Position, at.Then(Step{Kind: StepSlice, Index: rest, End: after})); err != nil {
							return err
						}
					}
				default:
					if err := walk(el, at.Then(fromEnd(i, rest, after))); err != nil {
						return err
					}
				}
			}
			return nil
		case *ast.DictionaryPattern:
			for _, e := range n.Entries {
				if err := walk(e.Value, at.Then(Step{Kind: StepKey, Key: e.Key})); err != nil {
					return err
				}
			}
			return nil
		case *ast.RestPattern:
			return &PatternError{Message: "rest pattern outside a list pattern", Position: n.Position}
		}
		return &PatternError{Message: fmt.Sprintf("unsupported pattern %T", p), Position: p.Pos()}
	}
	if err := walk(p, at); err != nil {
		return nil, err
	}
	return out, nil
}

// restLayout returns the rest index (or -1) and the number of elements after it.
func restLayout(p *ast.ListPattern) (int, int, error) {
	rest := -1
	for i, el := range p.Elements {
		if _, ok := el.(*ast.RestPattern); ok {
			if rest >= 0 {
				return 0, 0, &PatternError{Message: "list pattern has more than one rest element", Position: el.Pos()}
			}
			rest = i
		}
	}
	if rest < 0 {
		return -1, 0, nil
	}
	return rest, len(p.Elements) - rest - 1, nil
}

// fromEnd addresses element i of a list pattern, which follows a rest element
// at index rest with after trailing elements. The first trailing element
// sits at len-after and the last at len-1.
func fromEnd(i, rest, after int) Step {
	offset := i - rest - 1
	return Step{Kind: StepFromEnd, Index: after - offset}
}

// Test builds the condition under which p matches the value at at.
func Test(p ast.Pattern, at Access) (Cond, error) {
	var terms []Cond
	if err := testTerms(p, at, &terms); err != nil {
		return nil, err
	}
	switch len(terms) {
	case 0:
		return Always{}, nil
	case 1:
		return terms[0], nil
	}
	return And{Terms: terms}, nil
}

func testTerms(p ast.Pattern, at Access, terms *[]Cond) error {
	switch n := p.(type) {
	case *ast.WildcardPattern, *ast.VariablePattern:
		return nil
	case *ast.LiteralPattern:
		*terms = append(*terms, Equals{Subject: at, Value: n.Value})
		return nil
	case *ast.TypePattern:
		*terms = append(*terms, IsType{Subject: at, TypeName: n.TypeName})
		if n.Inner == nil {
			return nil
		}
		return testTerms(n.Inner, at, terms)
	case *ast.ListPattern:
		rest, after, err := restLayout(n)
		if err != nil {
			return err
		}
		*terms = append(*terms, IsList{Subject: at})
		if rest < 0 {
			*terms = append(*terms, LengthEquals{Subject: at, Length: len(n.Elements)})
		} else {
			*terms = append(*terms, LengthAtLeast{Subject: at, Length: rest + after})
		}
		for i, el := range n.Elements {
			switch {
			case rest < 0 || i < rest:
				if err := testTerms(el, at.Then(Step{Kind: StepIndex, Index: i}), terms); err != nil {
					return err
				}
			case i > rest:
				if err := testTerms(el, at.Then(fromEnd(i, rest, after)), terms); err != nil {
					return err
				}
			}
		}
		return nil
	case *ast.DictionaryPattern:
		*terms = append(*terms, IsDict{Subject: at})
		for _, e := range n.Entries {
			*terms = append(*terms, HasKey{Subject: at, Key: e.Key})
			if err := testTerms(e.Value, at.Then(Step{Kind: StepKey, Key: e.Key}), terms); err != nil {
				return err
			}
		}
		return nil
	case *ast.RestPattern:
		return &PatternError{Message: "rest pattern outside a list pattern", Position: n.Position}
	}
	return &PatternError{Message: fmt.Sprintf("unsupported pattern %T", p), Position: p.Pos()}
}

// Compile lowers every case of m. It fails if any pattern is invalid.
func Compile(m *ast.MatchStatement) (*Match, error) {
	out := &Match{Subject: m.Subject, NeedsDefault: true}
	for _, c := range m.Cases {
		bindings, err := Bindings(c.Pattern)
		if err != nil {
			return nil, err
		}
		test, err := Test(c.Pattern, nil)
		if err != nil {
			return nil, err
		}
		catchAll := IsCatchAll(c.Pattern)
		if catchAll {
			out.NeedsDefault = false
		}
		out.Cases = append(out.Cases, Case{
			Test:     test,
			Bindings: bindings,
			Body:     c.Body,
			CatchAll: catchAll,
			Position: c.Position,
		})
	}
	return out, nil
}
