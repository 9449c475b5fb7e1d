package typesystem

import "fmt"

// TypeResolution is the constraint store for one class member. Undecided types are dense
// indices into a disjoint-set forest; each root may carry the best-known concrete type of
// its alias class. Stored types are resolved at the time they are stored.
type TypeResolution struct {
	parent []int
	rank   []int
	known  map[int]Type
}

func NewTypeResolution() *TypeResolution {
	return &TypeResolution{known: make(map[int]Type)}
}

// Fresh allocates a new placeholder.
func (r *TypeResolution) Fresh() UndecidedType {
	index := len(r.parent)
	r.parent = append(r.parent, index)
	r.rank = append(r.rank, 0)
	return UndecidedType{Index: index}
}

// FreshN allocates n placeholders.
func (r *TypeResolution) FreshN(n int) []Type {
	result := make([]Type, n)
	for i := range result {
		result[i] = r.Fresh()
	}
	return result
}

// Size is the number of placeholders allocated so far.
func (r *TypeResolution) Size() int {
	return len(r.parent)
}

func (r *TypeResolution) find(index int) int {
	if index < 0 || index >= len(r.parent) {
		panic(fmt.Sprintf("undecided type %d was not allocated by this resolution", index))
	}
	root := index
	for r.parent[root] != root {
		root = r.parent[root]
	}
	for r.parent[index] != root {
		next := r.parent[index]
		r.parent[index] = root
		index = next
	}
	return root
}

// SameClass reports whether two placeholders are aliased.
func (r *TypeResolution) SameClass(i, j int) bool {
	return r.find(i) == r.find(j)
}

// KnownType returns the concrete type bound to i's alias class, if any.
func (r *TypeResolution) KnownType(i int) (Type, bool) {
	t, ok := r.known[r.find(i)]
	return t, ok
}

// PartiallyResolve dereferences only the outermost placeholder of t.
func (r *TypeResolution) PartiallyResolve(t Type) Type {
	u, ok := t.(UndecidedType)
	if !ok {
		return t
	}
	root := r.find(u.Index)
	if known, ok := r.known[root]; ok {
		return known
	}
	return UndecidedType{Index: root}
}

// Resolve substitutes every placeholder in t with its best-known type. Placeholders
// without a known type are replaced by the root of their alias class.
func (r *TypeResolution) Resolve(t Type) Type {
	switch typ := t.(type) {
	case UndecidedType:
		root := r.find(typ.Index)
		known, ok := r.known[root]
		if !ok {
			return UndecidedType{Index: root}
		}
		return r.Resolve(known)
	case IdentifierType:
		if len(typ.TypeArguments) == 0 {
			return typ
		}
		return NewIdentifierType(typ.Module, typ.Identifier, r.resolveAll(typ.TypeArguments)...)
	case TupleType:
		return TupleType{Elements: r.resolveAll(typ.Elements)}
	case FunctionType:
		return FunctionType{Arguments: r.resolveAll(typ.Arguments), Return: r.Resolve(typ.Return)}
	default:
		return t
	}
}

func (r *TypeResolution) resolveAll(types []Type) []Type {
	result := make([]Type, len(types))
	for i, t := range types {
		result[i] = r.Resolve(t)
	}
	return result
}

// IsFullyResolved reports whether t resolves to a type without placeholders.
func (r *TypeResolution) IsFullyResolved(t Type) bool {
	return !ContainsUndecided(r.Resolve(t))
}

// UndecidedIndices lists the alias roots still undecided in t, in first-occurrence order.
func (r *TypeResolution) UndecidedIndices(t Type) []int {
	var result []int
	seen := make(map[int]bool)
	Walk(r.Resolve(t), func(inner Type) {
		if u, ok := inner.(UndecidedType); ok && !seen[u.Index] {
			seen[u.Index] = true
			result = append(result, u.Index)
		}
	})
	return result
}

func (r *TypeResolution) occurs(root int, t Type) bool {
	found := false
	Walk(r.Resolve(t), func(inner Type) {
		if u, ok := inner.(UndecidedType); ok && u.Index == root {
			found = true
		}
	})
	return found
}

// Bind records that placeholder i stands for t and returns the best-known type of its
// alias class. A conflicting existing binding is an error.
func (r *TypeResolution) Bind(i int, t Type) (Type, error) {
	u := &unifier{r: r}
	result, ok := u.bind(i, t)
	if !ok {
		return nil, u.failure(UndecidedType{Index: i}, t)
	}
	return result, nil
}

// Union merges the alias classes of i and j.
func (r *TypeResolution) Union(i, j int) (Type, error) {
	u := &unifier{r: r}
	result, ok := u.union(i, j)
	if !ok {
		return nil, u.failure(UndecidedType{Index: i}, UndecidedType{Index: j})
	}
	return result, nil
}

// link attaches the smaller-rank root under the other and returns the surviving root.
func (r *TypeResolution) link(a, b int) int {
	if r.rank[a] < r.rank[b] {
		a, b = b, a
	}
	r.parent[b] = a
	if r.rank[a] == r.rank[b] {
		r.rank[a]++
	}
	return a
}
