package ast

import (
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
)

// TypeDefinitionKind distinguishes records from tagged unions.
type TypeDefinitionKind int

const (
	ObjectDefinition TypeDefinitionKind = iota
	VariantDefinition
)

func (k TypeDefinitionKind) String() string {
	if k == VariantDefinition {
		return "variant"
	}
	return "object"
}

// FieldDefinition is an object field or a variant tag with its payload type.
type FieldDefinition struct {
	Name     string
	Range    token.Range
	Type     typesystem.Type
	IsPublic bool
}

// TypeDefinition is the body of a class: `class B(val value: int)` (object) or
// `class C(Int(int), B(B))` (variant). Field order is declaration order.
type TypeDefinition struct {
	Range  token.Range
	Kind   TypeDefinitionKind
	Fields []*FieldDefinition
}

func (d *TypeDefinition) GetRange() token.Range { return d.Range }

// Names returns the field or tag names in declaration order.
func (d *TypeDefinition) Names() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}
