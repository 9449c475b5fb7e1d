package ast

import (
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Node is the base interface for all AST nodes.
type Node interface {
	GetRange() token.Range
}

// Expression is a Node that carries a type. In an unchecked tree the type may be nil
// (unknown); in a checked tree every expression type is fully resolved.
type Expression interface {
	Node
	GetType() typesystem.Type
	expressionNode()
}

// Forest maps module references to their trees.
type Forest map[typesystem.ModuleReference]*Module

// Refs returns the module references in the forest in sorted order.
func (f Forest) Refs() []typesystem.ModuleReference {
	refs := lo.Keys(f)
	slices.SortFunc(refs, typesystem.ModuleReference.Compare)
	return refs
}

// Module is the tree of one source module.
type Module struct {
	Reference typesystem.ModuleReference
	Imports   []*Import
	Classes   []*Class
}

func (m *Module) ClassNamed(name string) *Class {
	for _, c := range m.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ImportedMember is one class name listed in an import.
type ImportedMember struct {
	Name  string
	Range token.Range
}

// Import represents `import { A, B } from Some.Module`.
type Import struct {
	Range       token.Range
	Module      typesystem.ModuleReference
	ModuleRange token.Range
	Members     []ImportedMember
}

func (i *Import) GetRange() token.Range { return i.Range }

// TypeParameter is a declared generic parameter of a class or member.
type TypeParameter struct {
	Name  string
	Range token.Range
}

// TypeParameterNames extracts the names of the parameters.
func TypeParameterNames(params []TypeParameter) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

// Class is a class definition with its members.
type Class struct {
	Range          token.Range
	Name           string
	NameRange      token.Range
	TypeParameters []TypeParameter
	TypeDefinition *TypeDefinition
	Members        []*Member
}

func (c *Class) GetRange() token.Range { return c.Range }

// Parameter is a member parameter with a mandatory type annotation.
type Parameter struct {
	Name      string
	Range     token.Range
	Type      typesystem.Type
	TypeRange token.Range
}

// Member is a function (static) or method (instance) of a class.
type Member struct {
	Range          token.Range
	Name           string
	NameRange      token.Range
	IsPublic       bool
	IsMethod       bool
	TypeParameters []TypeParameter
	Parameters     []*Parameter
	ReturnType     typesystem.Type
	Body           Expression
}

func (m *Member) GetRange() token.Range { return m.Range }

// Type is the declared signature of the member.
func (m *Member) Type() typesystem.FunctionType {
	args := make([]typesystem.Type, len(m.Parameters))
	for i, p := range m.Parameters {
		args[i] = p.Type
	}
	return typesystem.NewFunctionType(args, m.ReturnType)
}
