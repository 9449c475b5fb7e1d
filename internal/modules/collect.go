package modules

import (
	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// CollectModuleReferences lists the modules a module depends on: its imports and every
// module mentioned by a type or a class member reference, except itself and Root.
func CollectModuleReferences(module *ast.Module) []typesystem.ModuleReference {
	found := make(map[typesystem.ModuleReference]bool)
	for _, imp := range module.Imports {
		found[imp.Module] = true
	}
	addType := func(t typesystem.Type) {
		if t != nil {
			typesystem.ModuleReferencesOf(t, found)
		}
	}
	for _, class := range module.Classes {
		if class.TypeDefinition != nil {
			for _, field := range class.TypeDefinition.Fields {
				addType(field.Type)
			}
		}
		for _, member := range class.Members {
			for _, param := range member.Parameters {
				addType(param.Type)
			}
			addType(member.ReturnType)
			ast.Inspect(member.Body, func(expr ast.Expression) bool {
				addType(expr.GetType())
				switch e := expr.(type) {
				case *ast.ClassMember:
					found[e.Module] = true
				case *ast.Lambda:
					for _, p := range e.Parameters {
						addType(p.Type)
					}
				case *ast.StatementBlock:
					for _, s := range e.Block.Statements {
						addType(s.TypeAnnotation)
					}
				}
				return true
			})
		}
	}
	delete(found, module.Reference)
	delete(found, typesystem.Root)
	refs := lo.Keys(found)
	slices.SortFunc(refs, typesystem.ModuleReference.Compare)
	return refs
}
