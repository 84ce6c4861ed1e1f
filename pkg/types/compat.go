package types

// Compatible reports whether a value of type source may be used where target
// is expected.
func Compatible(source, target Type) bool {
	if IsAny(source) || IsAny(target) || Equal(source, target) {
		return true
	}
	// a union source must fit whatever alternative it holds
	if u, ok := source.(*Union); ok {
		for _, m := range u.Members {
			if !Compatible(m, target) {
				return false
			}
		}
		return true
	}
	if u, ok := target.(*Union); ok {
		for _, m := range u.Members {
			if Compatible(source, m) {
				return true
			}
		}
		return false
	}
	if _, ok := target.(*Generic); ok {
		return true
	}

	switch s := source.(type) {
	case *Primitive:
		return s.Name == Integer.Name && Equal(target, Float)
	case *List:
		t, ok := target.(*List)
		return ok && Compatible(s.Element, t.Element)
	case *Dictionary:
		t, ok := target.(*Dictionary)
		return ok && Compatible(s.Key, t.Key) && Compatible(s.Value, t.Value)
	case *Function:
		t, ok := target.(*Function)
		if !ok {
			return false
		}
		if s.AnyArity || t.AnyArity {
			return Compatible(s.Return, t.Return)
		}
		if len(s.Params) != len(t.Params) {
			return false
		}
		for i := range s.Params {
			// parameters are contravariant
			if !Compatible(t.Params[i], s.Params[i]) {
				return false
			}
		}
		return Compatible(s.Return, t.Return)
	case *Parameterized:
		t, ok := target.(*Parameterized)
		if !ok || s.Name != t.Name || len(s.Args) != len(t.Args) {
			return false
		}
		for i := range s.Args {
			if !Compatible(s.Args[i], t.Args[i]) {
				return false
			}
		}
		return true
	case *Generic:
		// an unbound type parameter accepts and provides anything
		return true
	}
	return false
}

// Unify returns a type describing both a and b. Integer and Float unify to
// Float; containers unify element-wise; anything else incompatible is Any.
func Unify(a, b Type) Type {
	switch {
	case Equal(a, b):
		return a
	case IsAny(a) || IsAny(b):
		return Any
	case IsNumeric(a) && IsNumeric(b):
		return Float
	}
	switch x := a.(type) {
	case *List:
		if y, ok := b.(*List); ok {
			return &List{Element: Unify(x.Element, y.Element)}
		}
	case *Dictionary:
		if y, ok := b.(*Dictionary); ok {
			return &Dictionary{Key: Unify(x.Key, y.Key), Value: Unify(x.Value, y.Value)}
		}
	}
	if Compatible(a, b) && !IsAny(b) {
		return b
	}
	if Compatible(b, a) {
		return a
	}
	return Any
}

// UnifyAll folds Unify over ts. An empty slice unifies to Any.
func UnifyAll(ts []Type) Type {
	if len(ts) == 0 {
		return Any
	}
	out := ts[0]
	for _, t := range ts[1:] {
		out = Unify(out, t)
	}
	return out
}
