package modules

import (
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/hashicorp/go-set/v3"
	"golang.org/x/exp/slices"
)

// TopologicalOrder orders modules so that every module comes after the modules it
// depends on. Dependencies outside of modules are ignored. Modules that sit on an import
// cycle are left out of the order and returned as strongly connected groups instead.
// The result is deterministic: roots are visited in sorted order and dependencies in
// insertion order.
func TopologicalOrder(modules []typesystem.ModuleReference, tracker *DependencyTracker) ([]typesystem.ModuleReference, [][]typesystem.ModuleReference) {
	roots := slices.Clone(modules)
	slices.SortFunc(roots, typesystem.ModuleReference.Compare)
	s := &sccState{
		tracker: tracker,
		known:   set.From(roots),
		index:   make(map[typesystem.ModuleReference]int),
		lowLink: make(map[typesystem.ModuleReference]int),
		onStack: set.New[typesystem.ModuleReference](len(roots)),
	}
	for _, root := range roots {
		if _, visited := s.index[root]; !visited {
			s.connect(root)
		}
	}
	return s.order, s.cycles
}

// sccState runs Tarjan's algorithm. Components are emitted dependencies first, which is
// exactly the checking order.
type sccState struct {
	tracker *DependencyTracker
	known   *set.Set[typesystem.ModuleReference]
	counter int
	index   map[typesystem.ModuleReference]int
	lowLink map[typesystem.ModuleReference]int
	stack   []typesystem.ModuleReference
	onStack *set.Set[typesystem.ModuleReference]
	order   []typesystem.ModuleReference
	cycles  [][]typesystem.ModuleReference
}

func (s *sccState) connect(module typesystem.ModuleReference) {
	s.index[module] = s.counter
	s.lowLink[module] = s.counter
	s.counter++
	s.stack = append(s.stack, module)
	s.onStack.Insert(module)

	for _, dep := range s.tracker.Forward(module) {
		if !s.known.Contains(dep) {
			continue
		}
		if _, visited := s.index[dep]; !visited {
			s.connect(dep)
			s.lowLink[module] = min(s.lowLink[module], s.lowLink[dep])
		} else if s.onStack.Contains(dep) {
			s.lowLink[module] = min(s.lowLink[module], s.index[dep])
		}
	}

	if s.lowLink[module] != s.index[module] {
		return
	}
	var component []typesystem.ModuleReference
	for {
		top := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		s.onStack.Remove(top)
		component = append(component, top)
		if top == module {
			break
		}
	}
	if len(component) == 1 && !slices.Contains(s.tracker.Forward(module), module) {
		s.order = append(s.order, module)
		return
	}
	slices.SortFunc(component, typesystem.ModuleReference.Compare)
	s.cycles = append(s.cycles, component)
}

// CyclePath returns a shortest import path from start back to itself that stays inside
// component, e.g. [A, B, A]. It returns nil when start is not on a cycle.
func CyclePath(start typesystem.ModuleReference, component []typesystem.ModuleReference, tracker *DependencyTracker) []typesystem.ModuleReference {
	inside := set.From(component)
	parent := make(map[typesystem.ModuleReference]typesystem.ModuleReference)
	visited := set.New[typesystem.ModuleReference](len(component))
	queue := []typesystem.ModuleReference{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dep := range tracker.Forward(current) {
			if !inside.Contains(dep) {
				continue
			}
			if dep == start {
				path := []typesystem.ModuleReference{start}
				for node := current; node != start; node = parent[node] {
					path = append(path, node)
				}
				path = append(path, start)
				slices.Reverse(path[1 : len(path)-1])
				return path
			}
			if visited.Insert(dep) {
				parent[dep] = current
				queue = append(queue, dep)
			}
		}
	}
	return nil
}
