package service

import (
	"io"
	"log"
	"sync"

	"github.com/funvibe/tycheck/internal/analyzer"
	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/diagnostics"
	"github.com/funvibe/tycheck/internal/modules"
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Session keeps a checked forest up to date while modules are edited. Every edit re-checks
// the edited module and everything that depends on it, reusing the typing context of the
// rest of the forest.
type Session struct {
	ID uuid.UUID

	mu          sync.RWMutex
	logger      *log.Logger
	sources     ast.Forest
	checked     ast.Forest
	context     *analyzer.GlobalTypingContext
	tracker     *modules.DependencyTracker
	diagnostics map[typesystem.ModuleReference][]*diagnostics.DiagnosticError
}

// NewSession checks forest from scratch. A nil logger discards the session's log output.
func NewSession(forest ast.Forest, builtins analyzer.ModuleTypingContext, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Session{
		ID:          uuid.New(),
		logger:      logger,
		sources:     make(ast.Forest, len(forest)),
		diagnostics: make(map[typesystem.ModuleReference][]*diagnostics.DiagnosticError),
	}
	maps.Copy(s.sources, forest)

	result, ctx := analyzer.TypeCheckSources(s.sources, builtins)
	s.checked = result.Modules
	s.context = ctx
	s.tracker = analyzer.BuildDependencyTracker(s.sources)
	for _, err := range result.Diagnostics {
		s.diagnostics[err.Module] = append(s.diagnostics[err.Module], err)
	}
	s.logger.Printf("session %s: checked %d modules, %d diagnostics", s.ID, len(s.sources), len(result.Diagnostics))
	return s
}

// Update replaces (or adds) a module and re-checks it together with its dependents. It
// returns the re-checked modules.
func (s *Session) Update(module *ast.Module) []typesystem.ModuleReference {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := module.Reference
	affected := s.tracker.AffectedBy(ref)
	s.sources[ref] = module
	s.tracker.Update(ref, modules.CollectModuleReferences(module)...)
	s.recheck(affected)
	s.logger.Printf("session %s: updated %s, re-checked %d modules", s.ID, ref, len(affected))
	return affected
}

// Remove drops a module and re-checks the modules that depended on it. It returns the
// affected modules, the removed one included.
func (s *Session) Remove(ref typesystem.ModuleReference) []typesystem.ModuleReference {
	s.mu.Lock()
	defer s.mu.Unlock()

	affected := s.tracker.AffectedBy(ref)
	delete(s.sources, ref)
	s.tracker.Update(ref)
	s.recheck(affected)
	s.logger.Printf("session %s: removed %s, re-checked %d modules", s.ID, ref, len(affected))
	return affected
}

func (s *Session) recheck(affected []typesystem.ModuleReference) {
	result := analyzer.TypeCheckSourcesIncrementally(s.sources, s.context, affected)
	for _, ref := range affected {
		if module, ok := result.Modules[ref]; ok {
			s.checked[ref] = module
		} else {
			delete(s.checked, ref)
		}
		if errs := result.DiagnosticsOf(ref); len(errs) > 0 {
			s.diagnostics[ref] = errs
		} else {
			delete(s.diagnostics, ref)
		}
	}
}

// Modules lists the modules of the session, sorted.
func (s *Session) Modules() []typesystem.ModuleReference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sources.Refs()
}

// Diagnostics returns the diagnostics of one module.
func (s *Session) Diagnostics(ref typesystem.ModuleReference) []*diagnostics.DiagnosticError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.diagnostics[ref])
}

// AllDiagnostics returns the diagnostics of every module, sorted.
func (s *Session) AllDiagnostics() []*diagnostics.DiagnosticError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := lo.Flatten(lo.Values(s.diagnostics))
	diagnostics.Sort(all)
	return all
}

// CheckedModule returns the latest checked tree of a module. Modules on an import cycle have
// none.
func (s *Session) CheckedModule(ref typesystem.ModuleReference) (*ast.Module, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	module, ok := s.checked[ref]
	return module, ok
}

// QueryType finds the innermost checked expression of a module that contains pos.
func (s *Session) QueryType(ref typesystem.ModuleReference, pos token.Position) (typesystem.Type, token.Range, bool) {
	module, ok := s.CheckedModule(ref)
	if !ok {
		return nil, token.Dummy, false
	}
	var found ast.Expression
	for _, class := range module.Classes {
		for _, member := range class.Members {
			if !member.Range.IsDummy() && !member.Range.Contains(pos) {
				continue
			}
			ast.Inspect(member.Body, func(expr ast.Expression) bool {
				rng := expr.GetRange()
				if rng.IsDummy() || !rng.Contains(pos) {
					return false
				}
				if found == nil || found.GetRange().ContainsRange(rng) {
					found = expr
				}
				return true
			})
		}
	}
	if found == nil || found.GetType() == nil {
		return nil, token.Dummy, false
	}
	return found.GetType(), found.GetRange(), true
}
