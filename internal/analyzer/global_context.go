package analyzer

import (
	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/diagnostics"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/hashicorp/go-set/v3"
)

// BuildGlobalTypingContext registers every class of the forest next to the builtins.
// Member bodies are not looked at. Once every class is known, member signatures are
// validated and a member whose signature names an unknown type is left out of the context.
func BuildGlobalTypingContext(forest ast.Forest, builtins ModuleTypingContext) (*GlobalTypingContext, []*diagnostics.DiagnosticError) {
	ctx := NewGlobalTypingContext()
	ctx.setModule(typesystem.Root, builtins)
	collector := diagnostics.NewCollector()
	refs := forest.Refs()
	for _, ref := range refs {
		ctx.setModule(ref, buildModuleTypingContext(forest[ref], collector))
	}
	for _, ref := range refs {
		dropIllFormedSignatures(ctx, forest[ref], collector)
	}
	return ctx, collector.Errors()
}

// UpdateGlobalTypingContext rebuilds the changed modules in place. A changed module that is
// no longer in the forest is dropped from the context. Untouched modules keep their entries,
// so the caller has to re-check everything that depends on a changed module.
func UpdateGlobalTypingContext(ctx *GlobalTypingContext, forest ast.Forest, changed []typesystem.ModuleReference) []*diagnostics.DiagnosticError {
	collector := diagnostics.NewCollector()
	for _, ref := range changed {
		if ref.IsRoot() {
			continue
		}
		module, ok := forest[ref]
		if !ok {
			ctx.removeModule(ref)
			continue
		}
		ctx.setModule(ref, buildModuleTypingContext(module, collector))
	}
	for _, ref := range changed {
		if module, ok := forest[ref]; ok && !ref.IsRoot() {
			dropIllFormedSignatures(ctx, module, collector)
		}
	}
	return collector.Errors()
}

func buildModuleTypingContext(module *ast.Module, collector *diagnostics.Collector) ModuleTypingContext {
	result := make(ModuleTypingContext, len(module.Classes))
	for _, class := range module.Classes {
		if _, exists := result[class.Name]; exists {
			collector.Add(diagnostics.NewError(diagnostics.ErrCollision, module.Reference, class.NameRange, class.Name))
			continue
		}
		typeParameters := uniqueTypeParameters(module.Reference, class.TypeParameters, collector)
		classType := newClassType(typeParameters, buildTypeDefinition(module.Reference, class.TypeDefinition, collector))
		registerMembers(module.Reference, class, classType, collector)
		result[class.Name] = classType
	}
	return result
}

// uniqueTypeParameters drops repeated type parameter names, reporting each repetition.
func uniqueTypeParameters(module typesystem.ModuleReference, params []ast.TypeParameter, collector *diagnostics.Collector) []string {
	seen := set.New[string](len(params))
	names := make([]string, 0, len(params))
	for _, p := range params {
		if !seen.Insert(p.Name) {
			collector.Add(diagnostics.NewError(diagnostics.ErrCollision, module, p.Range, p.Name))
			continue
		}
		names = append(names, p.Name)
	}
	return names
}

func buildTypeDefinition(module typesystem.ModuleReference, def *ast.TypeDefinition, collector *diagnostics.Collector) *TypeDefinition {
	if def == nil {
		return nil
	}
	result := &TypeDefinition{Kind: def.Kind, Mappings: make(map[string]FieldType, len(def.Fields))}
	for _, field := range def.Fields {
		if _, exists := result.Mappings[field.Name]; exists {
			collector.Add(diagnostics.NewError(diagnostics.ErrDuplicateFieldDeclaration, module, field.Range, field.Name))
			continue
		}
		result.Names = append(result.Names, field.Name)
		result.Mappings[field.Name] = FieldType{Type: field.Type, IsPublic: field.IsPublic}
	}
	return result
}

func registerMembers(module typesystem.ModuleReference, class *ast.Class, classType *ClassType, collector *diagnostics.Collector) {
	seen := set.New[string](len(class.Members))
	for _, member := range class.Members {
		if !seen.Insert(member.Name) {
			collector.Add(diagnostics.NewError(diagnostics.ErrCollision, module, member.NameRange, member.Name))
			continue
		}
		info := &MemberTypeInformation{
			IsPublic:       member.IsPublic,
			TypeParameters: uniqueTypeParameters(module, member.TypeParameters, collector),
			Type:           member.Type(),
		}
		if member.IsMethod {
			classType.Methods[member.Name] = info
		} else {
			classType.Functions[member.Name] = info
		}
	}
}

// dropIllFormedSignatures unregisters the members of module whose parameter or return types
// are not well defined, so references to them from anywhere report an unresolved name.
func dropIllFormedSignatures(ctx *GlobalTypingContext, module *ast.Module, collector *diagnostics.Collector) {
	moduleContext, ok := ctx.Module(module.Reference)
	if !ok {
		return
	}
	seenClasses := set.New[string](len(module.Classes))
	for _, class := range module.Classes {
		if !seenClasses.Insert(class.Name) {
			continue
		}
		classType := moduleContext[class.Name]
		access := NewAccessibleGlobalTypingContext(ctx, module.Reference, class.Name, classType.TypeParameters)
		seen := set.New[string](len(class.Members))
		for _, member := range class.Members {
			if !seen.Insert(member.Name) || validateSignature(member, access, collector) {
				continue
			}
			if member.IsMethod {
				delete(classType.Methods, member.Name)
			} else {
				delete(classType.Functions, member.Name)
			}
		}
	}
}
