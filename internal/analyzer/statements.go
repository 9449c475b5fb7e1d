package analyzer

import (
	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/diagnostics"
	"github.com/funvibe/tycheck/internal/symbols"
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
)

func (c *checker) checkStatementBlock(e *ast.StatementBlock, expected typesystem.Type) ast.Expression {
	block := &ast.Block{Range: e.Block.Range}
	c.locals.WithNestedScope(symbols.ScopeBlock, func() {
		block.Statements = make([]*ast.ValStatement, 0, len(e.Block.Statements))
		for _, stmt := range e.Block.Statements {
			block.Statements = append(block.Statements, c.checkValStatement(stmt))
		}
		if e.Block.Expression != nil {
			block.Expression = c.check(e.Block.Expression, expected)
		}
	})
	if block.Expression == nil {
		return &ast.StatementBlock{Range: e.Range, Type: c.checkAndInfer(expected, typesystem.Unit, e.Range), Block: block}
	}
	return &ast.StatementBlock{Range: e.Range, Type: block.Expression.GetType(), Block: block}
}

func (c *checker) checkValStatement(stmt *ast.ValStatement) *ast.ValStatement {
	if stmt.TypeAnnotation != nil {
		validateType(stmt.TypeAnnotation, c.access, stmt.Range, c.collector)
	}
	value := c.check(stmt.Value, c.typeOrFresh(stmt.TypeAnnotation))
	valueType := c.resolution.PartiallyResolve(value.GetType())
	return &ast.ValStatement{
		Range:          stmt.Range,
		Pattern:        c.bindPattern(stmt.Pattern, valueType),
		TypeAnnotation: value.GetType(),
		Value:          value,
	}
}

func (c *checker) define(name string, t typesystem.Type, rng token.Range) {
	if !c.locals.Define(name, t) {
		c.report(diagnostics.ErrCollision, rng, name)
	}
}

// bindPattern introduces the names of pattern into the current scope. The returned pattern
// carries the type of every bound name.
func (c *checker) bindPattern(pattern ast.Pattern, valueType typesystem.Type) ast.Pattern {
	switch p := pattern.(type) {
	case *ast.TuplePattern:
		return c.bindTuplePattern(p, valueType)
	case *ast.ObjectPattern:
		return c.bindObjectPattern(p, valueType)
	case *ast.VariablePattern:
		c.define(p.Name, valueType, p.Range)
		return p
	default:
		return pattern
	}
}

func (c *checker) bindTuplePattern(p *ast.TuplePattern, valueType typesystem.Type) ast.Pattern {
	tuple, ok := valueType.(typesystem.TupleType)
	if !ok {
		if _, undecided := valueType.(typesystem.UndecidedType); undecided {
			c.report(diagnostics.ErrInsufficientTypeInferenceContext, p.Range)
		} else {
			c.report(diagnostics.ErrUnexpectedTypeKind, p.Range, "tuple", valueType)
		}
		return p
	}
	if len(tuple.Elements) != len(p.Names) {
		c.report(diagnostics.ErrArityMismatch, p.Range, "tuple", len(tuple.Elements), len(p.Names))
		return p
	}
	names := make([]*ast.TupleDestructuredName, len(p.Names))
	for i, n := range p.Names {
		names[i] = &ast.TupleDestructuredName{Name: n.Name, Range: n.Range, Type: tuple.Elements[i]}
		if n.Name != "" {
			c.define(n.Name, tuple.Elements[i], n.Range)
		}
	}
	return &ast.TuplePattern{Range: p.Range, Names: names}
}

func (c *checker) bindObjectPattern(p *ast.ObjectPattern, valueType typesystem.Type) ast.Pattern {
	id, ok := valueType.(typesystem.IdentifierType)
	if !ok {
		if _, undecided := valueType.(typesystem.UndecidedType); undecided {
			c.report(diagnostics.ErrInsufficientTypeInferenceContext, p.Range)
		} else {
			c.report(diagnostics.ErrUnexpectedTypeKind, p.Range, "identifier", valueType)
		}
		return p
	}
	if !c.access.isCurrentClass(id.Module, id.Identifier) {
		c.report(diagnostics.ErrIllegalOtherClassMatch, p.Range)
		return p
	}
	def, err := c.access.ResolveTypeDefinition(id, ast.ObjectDefinition)
	if err != nil {
		c.report(diagnostics.ErrUnsupportedClassTypeDefinition, p.Range, ast.ObjectDefinition)
		return p
	}
	names := make([]*ast.ObjectDestructuredName, 0, len(p.Names))
	for _, n := range p.Names {
		field, ok := def.Mappings[n.FieldName]
		if !ok {
			c.report(diagnostics.ErrUnresolvedName, n.FieldRange, n.FieldName)
			return p
		}
		bound := *n
		bound.Type = field.Type
		bound.FieldOrder = def.Order(n.FieldName)
		nameRange := n.FieldRange
		if n.Alias != "" {
			nameRange = n.AliasRange
		}
		c.define(bound.BoundName(), field.Type, nameRange)
		names = append(names, &bound)
	}
	return &ast.ObjectPattern{Range: p.Range, Names: names}
}
