package patterns

import (
	"runa/pkg/ast"
)

// Evaluate runs m against value and returns the index of the first matching
// case with its bindings. Lists are []any, dictionaries map[string]any or
// map[any]any, numbers int, int64 or float64.
func Evaluate(m *Match, value any) (int, map[string]any, bool) {
	for i, c := range m.Cases {
		if !Holds(c.Test, value) {
			continue
		}
		bound := make(map[string]any, len(c.Bindings))
		for _, b := range c.Bindings {
			v, _ := Resolve(b.Value, value)
			bound[b.Name] = v
		}
		return i, bound, true
	}
	return -1, nil, false
}

// Holds reports whether c is true for root.
func Holds(c Cond, root any) bool {
	switch c := c.(type) {
	case Always:
		return true
	case And:
		for _, t := range c.Terms {
			if !Holds(t, root) {
				return false
			}
		}
		return true
	case IsList:
		v, ok := Resolve(c.Subject, root)
		_, isList := v.([]any)
		return ok && isList
	case LengthEquals:
		l, ok := listAt(c.Subject, root)
		return ok && len(l) == c.Length
	case LengthAtLeast:
		l, ok := listAt(c.Subject, root)
		return ok && len(l) >= c.Length
	case IsDict:
		v, ok := Resolve(c.Subject, root)
		return ok && isDict(v)
	case HasKey:
		v, ok := Resolve(c.Subject, root)
		if !ok {
			return false
		}
		_, found := lookup(v, literalValue(c.Key))
		return found
	case Equals:
		v, ok := Resolve(c.Subject, root)
		return ok && equal(v, literalValue(c.Value))
	case IsType:
		v, ok := Resolve(c.Subject, root)
		return ok && HasRuntimeType(v, c.TypeName)
	}
	return false
}

// Resolve follows a from root.
func Resolve(a Access, root any) (any, bool) {
	cur := root
	for _, s := range a {
		switch s.Kind {
		case StepIndex, StepFromEnd:
			l, ok := cur.([]any)
			if !ok {
				return nil, false
			}
			i := s.Index
			if s.Kind == StepFromEnd {
				i = len(l) - s.Index
			}
			if i < 0 || i >= len(l) {
				return nil, false
			}
			cur = l[i]
		case StepSlice:
			l, ok := cur.([]any)
			if !ok || s.Index > len(l)-s.End {
				return nil, false
			}
			cur = l[s.Index : len(l)-s.End]
		case StepKey:
			v, ok := lookup(cur, literalValue(s.Key))
			if !ok {
				return nil, false
			}
			cur = v
		}
	}
	return cur, true
}

// HasRuntimeType implements the built-in type guards. Booleans are never
// integers; Number accepts both numeric kinds.
func HasRuntimeType(v any, name string) bool {
	switch name {
	case "Integer":
		_, ok := toInt(v)
		return ok
	case "Float":
		_, ok := v.(float64)
		return ok
	case "Number":
		_, ok := toFloat(v)
		return ok
	case "String":
		_, ok := v.(string)
		return ok
	case "Boolean":
		_, ok := v.(bool)
		return ok
	case "List":
		_, ok := v.([]any)
		return ok
	case "Dictionary":
		return isDict(v)
	}
	return false
}

func listAt(a Access, root any) ([]any, bool) {
	v, ok := Resolve(a, root)
	if !ok {
		return nil, false
	}
	l, ok := v.([]any)
	return l, ok
}

func isDict(v any) bool {
	switch v.(type) {
	case map[string]any, map[any]any:
		return true
	}
	return false
}

func lookup(dict, key any) (any, bool) {
	switch d := dict.(type) {
	case map[string]any:
		k, ok := key.(string)
		if !ok {
			return nil, false
		}
		v, found := d[k]
		return v, found
	case map[any]any:
		if v, found := d[key]; found {
			return v, true
		}
		// numeric keys may be stored as either kind
		if f, ok := toFloat(key); ok {
			for k, v := range d {
				if g, ok := toFloat(k); ok && f == g {
					return v, true
				}
			}
		}
	}
	return nil, false
}

// literalValue converts a literal expression to its Go value.
func literalValue(e ast.Expr) any {
	switch l := e.(type) {
	case *ast.StringLiteral:
		return l.Value
	case *ast.BooleanLiteral:
		return l.Value
	case *ast.NumberLiteral:
		if l.IsFloat {
			return l.Value
		}
		return int64(l.Value)
	}
	return nil
}

func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	f, ok := v.(float64)
	return f, ok
}
