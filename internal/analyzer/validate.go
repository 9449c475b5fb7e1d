package analyzer

import (
	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/diagnostics"
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
)

// validateType reports every identifier in t that names neither a type parameter in scope
// nor a class with a matching number of type arguments.
func validateType(t typesystem.Type, access *AccessibleGlobalTypingContext, rng token.Range, collector *diagnostics.Collector) bool {
	if t == nil {
		return true
	}
	ok := true
	typesystem.Walk(t, func(inner typesystem.Type) {
		id, isIdentifier := inner.(typesystem.IdentifierType)
		if !isIdentifier {
			return
		}
		if !access.IdentifierTypeIsWellDefined(id.Module, id.Identifier, len(id.TypeArguments)) {
			collector.Add(diagnostics.NewError(diagnostics.ErrNotWellDefinedIdentifier, access.CurrentModule, rng, id.Identifier))
			ok = false
		}
	})
	return ok
}

// validateSignature validates the parameter and return types of member with the member's own
// type parameters in scope next to the class ones.
func validateSignature(member *ast.Member, classAccess *AccessibleGlobalTypingContext, collector *diagnostics.Collector) bool {
	access := classAccess.WithAdditionalTypeParameters(ast.TypeParameterNames(member.TypeParameters))
	ok := true
	for _, p := range member.Parameters {
		rng := p.TypeRange
		if rng.IsDummy() {
			rng = p.Range
		}
		if !validateType(p.Type, access, rng, collector) {
			ok = false
		}
	}
	if !validateType(member.ReturnType, access, member.Range, collector) {
		ok = false
	}
	return ok
}
