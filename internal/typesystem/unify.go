package typesystem

// CheckAndInfer unifies expected with actual against the resolution, learning bindings
// for placeholders on either side. It returns the best-known unified type.
// There is no subtyping: every position, including function arguments, unifies exactly.
func CheckAndInfer(expected, actual Type, r *TypeResolution) (Type, error) {
	u := &unifier{r: r}
	result, ok := u.meet(expected, actual)
	if !ok {
		return nil, u.failure(expected, actual)
	}
	return result, nil
}

type unifier struct {
	r     *TypeResolution
	arity *ArityMismatchError
}

func (u *unifier) failure(expected, actual Type) error {
	if u.arity != nil {
		return u.arity
	}
	return NewUnexpectedTypeError(u.r.Resolve(expected), u.r.Resolve(actual))
}

func (u *unifier) meet(expected, actual Type) (Type, bool) {
	eu, expectedUndecided := expected.(UndecidedType)
	au, actualUndecided := actual.(UndecidedType)
	switch {
	case expectedUndecided && actualUndecided:
		return u.union(eu.Index, au.Index)
	case expectedUndecided:
		return u.bind(eu.Index, actual)
	case actualUndecided:
		return u.bind(au.Index, expected)
	}

	switch e := expected.(type) {
	case PrimitiveType:
		a, ok := actual.(PrimitiveType)
		if !ok || a.Name != e.Name {
			return nil, false
		}
		return e, true

	case IdentifierType:
		a, ok := actual.(IdentifierType)
		if !ok || a.Module != e.Module || a.Identifier != e.Identifier {
			return nil, false
		}
		if len(e.TypeArguments) != len(a.TypeArguments) {
			u.recordArity("type arguments", len(e.TypeArguments), len(a.TypeArguments))
			return nil, false
		}
		args, ok := u.meetAll(e.TypeArguments, a.TypeArguments)
		if !ok {
			return nil, false
		}
		return NewIdentifierType(e.Module, e.Identifier, args...), true

	case TupleType:
		a, ok := actual.(TupleType)
		if !ok {
			return nil, false
		}
		if len(e.Elements) != len(a.Elements) {
			u.recordArity("tuple", len(e.Elements), len(a.Elements))
			return nil, false
		}
		elements, ok := u.meetAll(e.Elements, a.Elements)
		if !ok {
			return nil, false
		}
		return TupleType{Elements: elements}, true

	case FunctionType:
		a, ok := actual.(FunctionType)
		if !ok {
			return nil, false
		}
		if len(e.Arguments) != len(a.Arguments) {
			u.recordArity("arguments", len(e.Arguments), len(a.Arguments))
			return nil, false
		}
		args, ok := u.meetAll(e.Arguments, a.Arguments)
		if !ok {
			return nil, false
		}
		ret, ok := u.meet(e.Return, a.Return)
		if !ok {
			return nil, false
		}
		return FunctionType{Arguments: args, Return: ret}, true
	}
	return nil, false
}

func (u *unifier) meetAll(expected, actual []Type) ([]Type, bool) {
	result := make([]Type, len(expected))
	for i := range expected {
		t, ok := u.meet(expected[i], actual[i])
		if !ok {
			return nil, false
		}
		result[i] = t
	}
	return result, true
}

func (u *unifier) recordArity(kind string, expected, actual int) {
	if u.arity == nil {
		u.arity = NewArityMismatchError(kind, expected, actual)
	}
}

func (u *unifier) bind(index int, t Type) (Type, bool) {
	r := u.r
	root := r.find(index)
	t = r.PartiallyResolve(t)
	if other, ok := t.(UndecidedType); ok {
		return u.union(root, other.Index)
	}
	if known, ok := r.known[root]; ok {
		result, ok := u.meet(known, t)
		if !ok {
			return nil, false
		}
		resolved := r.Resolve(result)
		r.known[r.find(root)] = resolved
		return resolved, true
	}
	if r.occurs(root, t) {
		return nil, false
	}
	resolved := r.Resolve(t)
	r.known[root] = resolved
	return resolved, true
}

func (u *unifier) union(i, j int) (Type, bool) {
	r := u.r
	ri, rj := r.find(i), r.find(j)
	if ri == rj {
		return r.Resolve(UndecidedType{Index: ri}), true
	}
	ki, hasI := r.known[ri]
	kj, hasJ := r.known[rj]
	switch {
	case hasI && hasJ:
		delete(r.known, ri)
		delete(r.known, rj)
		root := r.link(ri, rj)
		r.known[root] = ki
		result, ok := u.meet(ki, kj)
		if !ok {
			return nil, false
		}
		resolved := r.Resolve(result)
		r.known[r.find(root)] = resolved
		return resolved, true
	case hasI:
		if r.occurs(rj, ki) {
			return nil, false
		}
		delete(r.known, ri)
		root := r.link(ri, rj)
		r.known[root] = ki
		return r.Resolve(ki), true
	case hasJ:
		if r.occurs(ri, kj) {
			return nil, false
		}
		delete(r.known, rj)
		root := r.link(ri, rj)
		r.known[root] = kj
		return r.Resolve(kj), true
	default:
		return UndecidedType{Index: r.link(ri, rj)}, true
	}
}
