package analyzer

import (
	"github.com/funvibe/tycheck/internal/config"
	"github.com/funvibe/tycheck/internal/typesystem"
)

// DefaultBuiltins is the builtin fragment registered at typesystem.Root. Every module sees
// it without an import.
func DefaultBuiltins() ModuleTypingContext {
	builtins := newClassType(nil, nil)
	fn := func(args []typesystem.Type, ret typesystem.Type, typeParameters ...string) *MemberTypeInformation {
		return &MemberTypeInformation{
			IsPublic:       true,
			TypeParameters: typeParameters,
			Type:           typesystem.NewFunctionType(args, ret),
		}
	}
	builtins.Functions[config.StringToIntFuncName] = fn([]typesystem.Type{typesystem.String}, typesystem.Int)
	builtins.Functions[config.IntToStringFuncName] = fn([]typesystem.Type{typesystem.Int}, typesystem.String)
	builtins.Functions[config.PrintlnFuncName] = fn([]typesystem.Type{typesystem.String}, typesystem.Unit)
	builtins.Functions[config.PanicFuncName] = fn(
		[]typesystem.Type{typesystem.String},
		typesystem.NewIdentifierType(typesystem.Root, config.PanicTypeParameter),
		config.PanicTypeParameter,
	)
	return ModuleTypingContext{config.BuiltinsClassName: builtins}
}
