package modules

import (
	"testing"

	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/stretchr/testify/assert"
)

func TestCollectModuleReferences(t *testing.T) {
	self := typesystem.NewModuleReference("Self")
	a := typesystem.NewModuleReference("A")
	b := typesystem.NewModuleReference("B")
	c := typesystem.NewModuleReference("C")
	d := typesystem.NewModuleReference("D")

	module := &ast.Module{
		Reference: self,
		Imports:   []*ast.Import{{Module: b, Members: []ast.ImportedMember{{Name: "B"}}}},
		Classes: []*ast.Class{{
			Name: "Self",
			TypeDefinition: &ast.TypeDefinition{Fields: []*ast.FieldDefinition{
				{Name: "f", Type: typesystem.NewIdentifierType(a, "A")},
				{Name: "g", Type: typesystem.NewIdentifierType(self, "Self")},
			}},
			Members: []*ast.Member{{
				Name:       "m",
				ReturnType: typesystem.Int,
				Body: &ast.FunctionCall{
					Range:  token.Dummy,
					Type:   typesystem.Int,
					Callee: &ast.ClassMember{Module: c, ClassName: "C", MemberName: "f"},
					Arguments: []ast.Expression{
						&ast.Lambda{
							Parameters: []*ast.LambdaParameter{{Name: "x", Type: typesystem.NewIdentifierType(d, "D")}},
							Body:       &ast.ClassMember{Module: typesystem.Root, ClassName: "Builtins", MemberName: "println"},
						},
					},
				},
			}},
		}},
	}

	assert.Equal(t, []typesystem.ModuleReference{a, b, c, d}, CollectModuleReferences(module))
}
