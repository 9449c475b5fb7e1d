package modules

import (
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// refList is an insertion-ordered set of module references.
type refList struct {
	items   []typesystem.ModuleReference
	members *set.Set[typesystem.ModuleReference]
}

func newRefList(items ...typesystem.ModuleReference) *refList {
	l := &refList{members: set.New[typesystem.ModuleReference](len(items))}
	for _, item := range items {
		l.add(item)
	}
	return l
}

func (l *refList) add(ref typesystem.ModuleReference) {
	if l.members.Insert(ref) {
		l.items = append(l.items, ref)
	}
}

func (l *refList) remove(ref typesystem.ModuleReference) {
	if !l.members.Remove(ref) {
		return
	}
	l.items = slices.DeleteFunc(l.items, func(item typesystem.ModuleReference) bool { return item == ref })
}

func (l *refList) contains(ref typesystem.ModuleReference) bool {
	return l.members.Contains(ref)
}

func (l *refList) snapshot() []typesystem.ModuleReference {
	return slices.Clone(l.items)
}

// DependencyTracker keeps the import graph between modules: for every module the modules
// it depends on (forward) and the modules that depend on it (reverse).
type DependencyTracker struct {
	forward map[typesystem.ModuleReference]*refList
	reverse map[typesystem.ModuleReference]*refList
}

func NewDependencyTracker() *DependencyTracker {
	return &DependencyTracker{
		forward: make(map[typesystem.ModuleReference]*refList),
		reverse: make(map[typesystem.ModuleReference]*refList),
	}
}

// Update replaces the dependencies of module. Calling it without dependencies clears the
// module's forward edges.
func (t *DependencyTracker) Update(module typesystem.ModuleReference, dependencies ...typesystem.ModuleReference) {
	next := newRefList(lo.Uniq(dependencies)...)
	if previous, ok := t.forward[module]; ok {
		for _, old := range previous.items {
			if !next.contains(old) {
				if rev, ok := t.reverse[old]; ok {
					rev.remove(module)
					if len(rev.items) == 0 {
						delete(t.reverse, old)
					}
				}
			}
		}
	}
	for _, dep := range next.items {
		rev, ok := t.reverse[dep]
		if !ok {
			rev = newRefList()
			t.reverse[dep] = rev
		}
		rev.add(module)
	}
	if len(next.items) == 0 {
		delete(t.forward, module)
		return
	}
	t.forward[module] = next
}

// Forward returns the modules that module depends on, in insertion order.
func (t *DependencyTracker) Forward(module typesystem.ModuleReference) []typesystem.ModuleReference {
	if deps, ok := t.forward[module]; ok {
		return deps.snapshot()
	}
	return []typesystem.ModuleReference{}
}

// Reverse returns the modules that depend on module, in insertion order.
func (t *DependencyTracker) Reverse(module typesystem.ModuleReference) []typesystem.ModuleReference {
	if deps, ok := t.reverse[module]; ok {
		return deps.snapshot()
	}
	return []typesystem.ModuleReference{}
}

// AffectedBy returns module followed by every module that transitively depends on it,
// sorted.
func (t *DependencyTracker) AffectedBy(module typesystem.ModuleReference) []typesystem.ModuleReference {
	visited := set.From([]typesystem.ModuleReference{module})
	queue := []typesystem.ModuleReference{module}
	var dependents []typesystem.ModuleReference
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dependent := range t.Reverse(current) {
			if visited.Insert(dependent) {
				dependents = append(dependents, dependent)
				queue = append(queue, dependent)
			}
		}
	}
	slices.SortFunc(dependents, typesystem.ModuleReference.Compare)
	return append([]typesystem.ModuleReference{module}, dependents...)
}

// Modules lists every module with at least one dependency, sorted.
func (t *DependencyTracker) Modules() []typesystem.ModuleReference {
	refs := lo.Keys(t.forward)
	slices.SortFunc(refs, typesystem.ModuleReference.Compare)
	return refs
}
