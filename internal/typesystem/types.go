package typesystem

import (
	"fmt"
	"strings"

	"github.com/funvibe/tycheck/internal/config"
)

// Type is the interface for all types in our system.
// The set of implementations is closed: PrimitiveType, IdentifierType, TupleType,
// FunctionType and UndecidedType.
type Type interface {
	String() string
	// Apply replaces type identifiers named in the substitution.
	Apply(Subst) Type
	typeNode()
}

// Subst maps a type parameter name to its replacement.
type Subst map[string]Type

// PrimitiveType is one of unit, bool, int, string.
type PrimitiveType struct {
	Name string
}

func (t PrimitiveType) String() string   { return t.Name }
func (t PrimitiveType) Apply(Subst) Type { return t }
func (PrimitiveType) typeNode()          {}

var (
	Unit   Type = PrimitiveType{Name: config.UnitTypeName}
	Bool   Type = PrimitiveType{Name: config.BoolTypeName}
	Int    Type = PrimitiveType{Name: config.IntTypeName}
	String Type = PrimitiveType{Name: config.StringTypeName}
)

// IsPrimitiveName reports whether name denotes a primitive type.
func IsPrimitiveName(name string) bool {
	switch name {
	case config.UnitTypeName, config.BoolTypeName, config.IntTypeName, config.StringTypeName:
		return true
	}
	return false
}

// IdentifierType refers to a class (or a type parameter, which has no type arguments)
// defined in Module.
type IdentifierType struct {
	Module        ModuleReference
	Identifier    string
	TypeArguments []Type
}

func NewIdentifierType(module ModuleReference, identifier string, typeArguments ...Type) IdentifierType {
	if len(typeArguments) == 0 {
		typeArguments = nil
	}
	return IdentifierType{Module: module, Identifier: identifier, TypeArguments: typeArguments}
}

func (t IdentifierType) String() string {
	if len(t.TypeArguments) == 0 {
		return t.Identifier
	}
	return t.Identifier + "<" + joinTypes(t.TypeArguments, ", ") + ">"
}

func (t IdentifierType) Apply(s Subst) Type {
	if len(t.TypeArguments) == 0 {
		if replacement, ok := s[t.Identifier]; ok {
			return replacement
		}
		return t
	}
	return NewIdentifierType(t.Module, t.Identifier, applyAll(t.TypeArguments, s)...)
}

func (IdentifierType) typeNode() {}

// TupleType is an ordered product of element types.
type TupleType struct {
	Elements []Type
}

func NewTupleType(elements ...Type) TupleType {
	return TupleType{Elements: elements}
}

func (t TupleType) String() string {
	return "[" + joinTypes(t.Elements, " * ") + "]"
}

func (t TupleType) Apply(s Subst) Type {
	return TupleType{Elements: applyAll(t.Elements, s)}
}

func (TupleType) typeNode() {}

// FunctionType is (Arguments) -> Return.
type FunctionType struct {
	Arguments []Type
	Return    Type
}

func NewFunctionType(arguments []Type, ret Type) FunctionType {
	if arguments == nil {
		arguments = []Type{}
	}
	return FunctionType{Arguments: arguments, Return: ret}
}

func (t FunctionType) String() string {
	return "(" + joinTypes(t.Arguments, ", ") + ") -> " + t.Return.String()
}

func (t FunctionType) Apply(s Subst) Type {
	return FunctionType{Arguments: applyAll(t.Arguments, s), Return: t.Return.Apply(s)}
}

func (FunctionType) typeNode() {}

// UndecidedType is a placeholder whose index is only meaningful to the TypeResolution
// that allocated it.
type UndecidedType struct {
	Index int
}

func (t UndecidedType) String() string {
	if config.IsTestMode {
		return fmt.Sprintf("%s%d", config.UndecidedTypeRendered, t.Index)
	}
	return config.UndecidedTypeRendered
}

func (t UndecidedType) Apply(Subst) Type { return t }
func (UndecidedType) typeNode()          {}

func joinTypes(types []Type, sep string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}

func applyAll(types []Type, s Subst) []Type {
	result := make([]Type, len(types))
	for i, t := range types {
		result[i] = t.Apply(s)
	}
	return result
}

// Equal is exact structural equality. Identifier types also compare module references.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case PrimitiveType:
		bt, ok := b.(PrimitiveType)
		return ok && at.Name == bt.Name
	case IdentifierType:
		bt, ok := b.(IdentifierType)
		return ok && at.Module == bt.Module && at.Identifier == bt.Identifier && EqualAll(at.TypeArguments, bt.TypeArguments)
	case TupleType:
		bt, ok := b.(TupleType)
		return ok && EqualAll(at.Elements, bt.Elements)
	case FunctionType:
		bt, ok := b.(FunctionType)
		return ok && EqualAll(at.Arguments, bt.Arguments) && Equal(at.Return, bt.Return)
	case UndecidedType:
		bt, ok := b.(UndecidedType)
		return ok && at.Index == bt.Index
	default:
		return false
	}
}

// EqualAll compares two type lists position-wise.
func EqualAll(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Walk calls visit on t and every nested type, outermost first.
func Walk(t Type, visit func(Type)) {
	visit(t)
	switch typ := t.(type) {
	case IdentifierType:
		for _, arg := range typ.TypeArguments {
			Walk(arg, visit)
		}
	case TupleType:
		for _, e := range typ.Elements {
			Walk(e, visit)
		}
	case FunctionType:
		for _, arg := range typ.Arguments {
			Walk(arg, visit)
		}
		Walk(typ.Return, visit)
	}
}

// ContainsUndecided reports whether any placeholder occurs in t.
func ContainsUndecided(t Type) bool {
	found := false
	Walk(t, func(inner Type) {
		if _, ok := inner.(UndecidedType); ok {
			found = true
		}
	})
	return found
}
