package analyzer

import (
	"strings"

	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/diagnostics"
	"github.com/funvibe/tycheck/internal/modules"
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// CheckedForest is the result of a checking run.
type CheckedForest struct {
	Modules     ast.Forest
	Diagnostics []*diagnostics.DiagnosticError
}

// HandOff returns the checked trees for later stages. Trees are withheld as soon as any
// diagnostic was reported, since their types may be guesses.
func (c *CheckedForest) HandOff() (ast.Forest, bool) {
	if len(c.Diagnostics) > 0 {
		return nil, false
	}
	return c.Modules, true
}

// DiagnosticsOf returns the diagnostics reported against one module.
func (c *CheckedForest) DiagnosticsOf(ref typesystem.ModuleReference) []*diagnostics.DiagnosticError {
	return lo.Filter(c.Diagnostics, func(err *diagnostics.DiagnosticError, _ int) bool {
		return err.Module == ref
	})
}

// BuildDependencyTracker records the module references of every module of the forest.
func BuildDependencyTracker(forest ast.Forest) *modules.DependencyTracker {
	tracker := modules.NewDependencyTracker()
	for _, ref := range forest.Refs() {
		tracker.Update(ref, modules.CollectModuleReferences(forest[ref])...)
	}
	return tracker
}

// TypeCheckSources checks a whole forest from scratch. Modules on an import cycle are
// reported and left out; every other module is checked after its dependencies.
func TypeCheckSources(forest ast.Forest, builtins ModuleTypingContext) (*CheckedForest, *GlobalTypingContext) {
	collector := diagnostics.NewCollector()
	order, acyclic, cycleErrs := splitCycles(forest, BuildDependencyTracker(forest))
	collector.AddAll(cycleErrs)

	ctx, errs := BuildGlobalTypingContext(acyclic, builtins)
	collector.AddAll(errs)

	checked := make(ast.Forest, len(order))
	for _, ref := range order {
		module, moduleErrs := CheckModule(acyclic[ref], ctx)
		checked[ref] = module
		collector.AddAll(moduleErrs)
	}
	return &CheckedForest{Modules: checked, Diagnostics: collector.Errors()}, ctx
}

// TypeCheckSourcesIncrementally rebuilds the context entries of changed and re-checks those
// modules. changed should already contain everything that transitively depends on an
// edited module (see DependencyTracker.AffectedBy). Only the re-checked modules and their
// diagnostics are returned.
func TypeCheckSourcesIncrementally(forest ast.Forest, ctx *GlobalTypingContext, changed []typesystem.ModuleReference) *CheckedForest {
	collector := diagnostics.NewCollector()
	order, acyclic, cycleErrs := splitCycles(forest, BuildDependencyTracker(forest))
	collector.AddAll(lo.Filter(cycleErrs, func(err *diagnostics.DiagnosticError, _ int) bool {
		return slices.Contains(changed, err.Module)
	}))
	collector.AddAll(UpdateGlobalTypingContext(ctx, acyclic, changed))

	checked := make(ast.Forest)
	for _, ref := range order {
		if !slices.Contains(changed, ref) {
			continue
		}
		module, moduleErrs := CheckModule(acyclic[ref], ctx)
		checked[ref] = module
		collector.AddAll(moduleErrs)
	}
	return &CheckedForest{Modules: checked, Diagnostics: collector.Errors()}
}

// TypeCheckSingleModule checks a module that only depends on the builtins. It is meant for
// tests and quick experiments, and panics when the module does not check.
func TypeCheckSingleModule(module *ast.Module, builtins ModuleTypingContext) *ast.Module {
	result, _ := TypeCheckSources(ast.Forest{module.Reference: module}, builtins)
	if len(result.Diagnostics) > 0 {
		panic(diagnostics.Render(result.Diagnostics))
	}
	return result.Modules[module.Reference]
}

// splitCycles reports every module on an import cycle and returns the checking order of the
// remaining modules together with the forest restricted to them.
func splitCycles(forest ast.Forest, tracker *modules.DependencyTracker) ([]typesystem.ModuleReference, ast.Forest, []*diagnostics.DiagnosticError) {
	var errs []*diagnostics.DiagnosticError
	order, cycles := modules.TopologicalOrder(forest.Refs(), tracker)
	for _, component := range cycles {
		for _, ref := range component {
			path := modules.CyclePath(ref, component, tracker)
			rendered := strings.Join(lo.Map(path, func(m typesystem.ModuleReference, _ int) string {
				return m.String()
			}), " -> ")
			errs = append(errs, diagnostics.NewError(diagnostics.ErrCyclicDependency, ref, cycleImportRange(forest[ref], component), ref, rendered))
		}
	}
	acyclic := make(ast.Forest, len(order))
	for _, ref := range order {
		acyclic[ref] = forest[ref]
	}
	return order, acyclic, errs
}

// cycleImportRange points at the first import that stays inside the cycle.
func cycleImportRange(module *ast.Module, component []typesystem.ModuleReference) token.Range {
	for _, imp := range module.Imports {
		if slices.Contains(component, imp.Module) {
			return imp.Range
		}
	}
	return token.Dummy
}
