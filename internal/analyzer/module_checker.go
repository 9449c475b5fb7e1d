package analyzer

import (
	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/config"
	"github.com/funvibe/tycheck/internal/diagnostics"
	"github.com/funvibe/tycheck/internal/symbols"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/hashicorp/go-set/v3"
)

// CheckModule checks every member body of module against ctx, which must already contain
// the module's own classes. The input tree is left untouched; the returned tree carries the
// inferred types.
func CheckModule(module *ast.Module, ctx *GlobalTypingContext) (*ast.Module, []*diagnostics.DiagnosticError) {
	collector := diagnostics.NewCollector()
	checkImports(module, ctx, collector)

	checked := &ast.Module{Reference: module.Reference, Imports: module.Imports}
	seen := set.New[string](len(module.Classes))
	for _, class := range module.Classes {
		if !seen.Insert(class.Name) {
			continue
		}
		checked.Classes = append(checked.Classes, checkClass(module.Reference, class, ctx, collector))
	}
	return checked, collector.Errors()
}

func checkImports(module *ast.Module, ctx *GlobalTypingContext, collector *diagnostics.Collector) {
	for _, imp := range module.Imports {
		imported, ok := ctx.Module(imp.Module)
		for _, member := range imp.Members {
			if !ok {
				collector.Add(diagnostics.NewError(diagnostics.ErrUnresolvedName, module.Reference, imp.Range, member.Name))
				continue
			}
			if _, exists := imported[member.Name]; !exists {
				collector.Add(diagnostics.NewError(diagnostics.ErrUnresolvedName, module.Reference, member.Range, member.Name))
			}
		}
	}
}

func checkClass(ref typesystem.ModuleReference, class *ast.Class, ctx *GlobalTypingContext, collector *diagnostics.Collector) *ast.Class {
	var typeParameters []string
	if classType, ok := ctx.Class(ref, class.Name); ok {
		typeParameters = classType.TypeParameters
	}
	access := NewAccessibleGlobalTypingContext(ctx, ref, class.Name, typeParameters)
	if class.TypeDefinition != nil {
		for _, field := range class.TypeDefinition.Fields {
			validateType(field.Type, access, field.Range, collector)
		}
	}

	checked := *class
	checked.Members = make([]*ast.Member, 0, len(class.Members))
	seen := set.New[string](len(class.Members))
	for _, member := range class.Members {
		if !seen.Insert(member.Name) {
			continue
		}
		checked.Members = append(checked.Members, checkMember(member, access, collector))
	}
	return &checked
}

// checkMember runs both passes over one member body. Each member gets its own type
// resolution, so placeholders never leak between members. The fixing pass is skipped when
// the first pass already failed, since its types are guesses.
func checkMember(member *ast.Member, classAccess *AccessibleGlobalTypingContext, collector *diagnostics.Collector) *ast.Member {
	access := classAccess.WithAdditionalTypeParameters(ast.TypeParameterNames(member.TypeParameters))
	memberCollector := diagnostics.NewCollector()
	validateSignature(member, classAccess, memberCollector)

	locals := symbols.NewLocalTypingContext()
	if member.IsMethod {
		locals.Define(config.ThisName, access.ThisType())
	}
	for _, p := range member.Parameters {
		if !locals.Define(p.Name, p.Type) {
			memberCollector.Add(diagnostics.NewError(diagnostics.ErrCollision, access.CurrentModule, p.Range, p.Name))
		}
	}

	resolution := typesystem.NewTypeResolution()
	body := newChecker(access, locals, resolution, memberCollector).check(member.Body, member.ReturnType)
	if !memberCollector.HasErrors() {
		body = newFixer(access.CurrentModule, resolution, memberCollector).fix(body, member.ReturnType)
	}
	collector.AddAll(memberCollector.Errors())

	checked := *member
	checked.Body = body
	return &checked
}
