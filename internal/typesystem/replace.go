package typesystem

// ReplaceTypeIdentifiers substitutes type parameters (identifier types without type
// arguments whose name is in mapping) with their replacement.
func ReplaceTypeIdentifiers(t Type, mapping map[string]Type) Type {
	if t == nil || len(mapping) == 0 {
		return t
	}
	return t.Apply(Subst(mapping))
}

// SubstFromParameters zips type parameter names with type arguments. Extra parameters
// (when fewer arguments are supplied) are left untouched.
func SubstFromParameters(parameters []string, arguments []Type) Subst {
	subst := make(Subst, len(parameters))
	for i, p := range parameters {
		if i >= len(arguments) {
			break
		}
		subst[p] = arguments[i]
	}
	return subst
}

// UndecideTypeParameters replaces each type parameter of t with a fresh placeholder from r.
// The placeholders are returned in parameter order.
func UndecideTypeParameters(t Type, parameters []string, r *TypeResolution) (Type, []Type) {
	if len(parameters) == 0 {
		return t, []Type{}
	}
	undecided := r.FreshN(len(parameters))
	return t.Apply(SubstFromParameters(parameters, undecided)), undecided
}

// UndecideTypeParametersOfAll is UndecideTypeParameters over several types sharing one
// instantiation (e.g. all fields of a generic class).
func UndecideTypeParametersOfAll(types []Type, parameters []string, r *TypeResolution) ([]Type, []Type) {
	undecided := r.FreshN(len(parameters))
	subst := SubstFromParameters(parameters, undecided)
	result := make([]Type, len(types))
	for i, t := range types {
		result[i] = t.Apply(subst)
	}
	return result, undecided
}

// ModuleReferencesOf collects the modules referenced by identifier types in t.
func ModuleReferencesOf(t Type, into map[ModuleReference]bool) {
	Walk(t, func(inner Type) {
		if id, ok := inner.(IdentifierType); ok {
			into[id.Module] = true
		}
	})
}
