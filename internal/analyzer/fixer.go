package analyzer

import (
	"fmt"

	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/diagnostics"
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"
)

// fixer is the second pass over a checked member body. It replaces every placeholder with
// its resolved type and confirms that each node agrees with the type its parent demands.
// A placeholder nothing has decided is reported once per alias class.
type fixer struct {
	module     typesystem.ModuleReference
	resolution *typesystem.TypeResolution
	collector  *diagnostics.Collector
	reported   *set.Set[int]
}

func newFixer(module typesystem.ModuleReference, resolution *typesystem.TypeResolution, collector *diagnostics.Collector) *fixer {
	return &fixer{module: module, resolution: resolution, collector: collector, reported: set.New[int](0)}
}

// fixType resolves t. A nil expected means the parent does not constrain the node.
func (f *fixer) fixType(t, expected typesystem.Type, rng token.Range) typesystem.Type {
	resolved := f.resolution.Resolve(t)
	if indices := f.resolution.UndecidedIndices(resolved); len(indices) > 0 {
		fresh := lo.Filter(indices, func(i int, _ int) bool { return f.reported.Insert(i) })
		if len(fresh) > 0 {
			f.collector.Add(diagnostics.NewError(diagnostics.ErrInsufficientTypeInferenceContext, f.module, rng))
		}
		return resolved
	}
	if expected != nil && !typesystem.Equal(expected, resolved) {
		f.collector.Add(diagnostics.NewError(diagnostics.ErrUnexpectedType, f.module, rng, expected, resolved))
		return expected
	}
	return resolved
}

// decided drops a type that still has placeholders so it is not used as a constraint.
func decided(t typesystem.Type) typesystem.Type {
	if t == nil || typesystem.ContainsUndecided(t) {
		return nil
	}
	return t
}

func (f *fixer) fixTypes(types []typesystem.Type, rng token.Range) []typesystem.Type {
	return lo.Map(types, func(t typesystem.Type, _ int) typesystem.Type {
		return f.fixType(t, nil, rng)
	})
}

func (f *fixer) fix(expr ast.Expression, expected typesystem.Type) ast.Expression {
	switch e := expr.(type) {
	case *ast.Literal:
		f.fixType(e.GetType(), expected, e.Range)
		return e
	case *ast.This:
		return &ast.This{Range: e.Range, Type: f.fixType(e.Type, expected, e.Range)}
	case *ast.Variable:
		return &ast.Variable{Range: e.Range, Type: f.fixType(e.Type, expected, e.Range), Name: e.Name}
	case *ast.ClassMember:
		fixed := *e
		fixed.Type = f.fixType(e.Type, expected, e.Range)
		fixed.TypeArguments = f.fixTypes(e.TypeArguments, e.Range)
		return &fixed
	case *ast.TupleConstructor:
		t := f.fixType(e.Type, expected, e.Range)
		tuple, _ := t.(typesystem.TupleType)
		elements := make([]ast.Expression, len(e.Elements))
		for i, element := range e.Elements {
			var elementType typesystem.Type
			if i < len(tuple.Elements) {
				elementType = decided(tuple.Elements[i])
			}
			elements[i] = f.fix(element, elementType)
		}
		return &ast.TupleConstructor{Range: e.Range, Type: t, Elements: elements}
	case *ast.ObjectConstructor:
		fields := lo.Map(e.Fields, func(field *ast.FieldConstructor, _ int) *ast.FieldConstructor {
			fixed := *field
			fixed.Type = f.fixType(field.Type, nil, field.Range)
			if field.Value != nil {
				fixed.Value = f.fix(field.Value, decided(fixed.Type))
			}
			return &fixed
		})
		return &ast.ObjectConstructor{Range: e.Range, Type: f.fixType(e.Type, expected, e.Range), Fields: fields}
	case *ast.VariantConstructor:
		fixed := *e
		fixed.Type = f.fixType(e.Type, expected, e.Range)
		fixed.Data = f.fix(e.Data, nil)
		return &fixed
	case *ast.FieldAccess:
		fixed := *e
		fixed.Type = f.fixType(e.Type, expected, e.Range)
		fixed.Object = f.fix(e.Object, nil)
		return &fixed
	case *ast.MethodAccess:
		fixed := *e
		fixed.Type = f.fixType(e.Type, expected, e.Range)
		fixed.TypeArguments = f.fixTypes(e.TypeArguments, e.Range)
		fixed.Object = f.fix(e.Object, nil)
		return &fixed
	case *ast.Unary:
		t := f.fixType(e.Type, expected, e.Range)
		return &ast.Unary{Range: e.Range, Type: t, Operator: e.Operator, Operand: f.fix(e.Operand, unaryOperandType(e.Operator))}
	case *ast.FunctionCall:
		return f.fixFunctionCall(e, expected)
	case *ast.Binary:
		return f.fixBinary(e, expected)
	case *ast.IfElse:
		t := f.fixType(e.Type, expected, e.Range)
		return &ast.IfElse{
			Range:     e.Range,
			Type:      t,
			Condition: f.fix(e.Condition, typesystem.Bool),
			Then:      f.fix(e.Then, decided(t)),
			Else:      f.fix(e.Else, decided(t)),
		}
	case *ast.Match:
		return f.fixMatch(e, expected)
	case *ast.Lambda:
		return f.fixLambda(e, expected)
	case *ast.StatementBlock:
		return f.fixStatementBlock(e, expected)
	default:
		panic(fmt.Sprintf("unknown expression %T", expr))
	}
}

func (f *fixer) fixFunctionCall(e *ast.FunctionCall, expected typesystem.Type) ast.Expression {
	callee := f.fix(e.Callee, nil)
	calleeType, _ := callee.GetType().(typesystem.FunctionType)
	arguments := make([]ast.Expression, len(e.Arguments))
	for i, arg := range e.Arguments {
		var argumentType typesystem.Type
		if i < len(calleeType.Arguments) {
			argumentType = decided(calleeType.Arguments[i])
		}
		arguments[i] = f.fix(arg, argumentType)
	}
	t := f.fixType(e.Type, expected, e.Range)
	if calleeType.Return != nil {
		f.fixType(calleeType.Return, decided(t), e.Range)
	}
	return &ast.FunctionCall{Range: e.Range, Type: t, Callee: callee, Arguments: arguments}
}

func (f *fixer) fixBinary(e *ast.Binary, expected typesystem.Type) ast.Expression {
	t := f.fixType(e.Type, expected, e.Range)
	fixed := &ast.Binary{Range: e.Range, Type: t, Operator: e.Operator}
	if e.Operator.Class() == ast.EqualityOperator {
		fixed.Left = f.fix(e.Left, nil)
		fixed.Right = f.fix(e.Right, decided(fixed.Left.GetType()))
		return fixed
	}
	operand, _ := binaryOperandType(e.Operator.Class())
	fixed.Left = f.fix(e.Left, operand)
	fixed.Right = f.fix(e.Right, operand)
	return fixed
}

func (f *fixer) fixMatch(e *ast.Match, expected typesystem.Type) ast.Expression {
	t := f.fixType(e.Type, expected, e.Range)
	subject := f.fix(e.Subject, nil)
	cases := lo.Map(e.Cases, func(mc *ast.MatchCase, _ int) *ast.MatchCase {
		fixed := *mc
		if mc.DataVariable != nil {
			fixed.DataVariable = &ast.DataVariable{
				Name:  mc.DataVariable.Name,
				Range: mc.DataVariable.Range,
				Type:  f.fixType(mc.DataVariable.Type, nil, mc.DataVariable.Range),
			}
		}
		fixed.Body = f.fix(mc.Body, decided(t))
		return &fixed
	})
	return &ast.Match{Range: e.Range, Type: t, Subject: subject, Cases: cases}
}

func (f *fixer) fixLambda(e *ast.Lambda, expected typesystem.Type) ast.Expression {
	t := f.fixType(e.Type, expected, e.Range)
	fn, _ := t.(typesystem.FunctionType)
	parameters := make([]*ast.LambdaParameter, len(e.Parameters))
	for i, p := range e.Parameters {
		var parameterType typesystem.Type
		if i < len(fn.Arguments) {
			parameterType = decided(fn.Arguments[i])
		}
		parameters[i] = &ast.LambdaParameter{Name: p.Name, Range: p.Range, Type: f.fixType(p.Type, parameterType, p.Range)}
	}
	captured := lo.Map(e.Captured, func(v ast.CapturedValue, _ int) ast.CapturedValue {
		return ast.CapturedValue{Name: v.Name, Type: f.fixType(v.Type, nil, e.Range)}
	})
	var returnType typesystem.Type
	if fn.Return != nil {
		returnType = decided(fn.Return)
	}
	return &ast.Lambda{Range: e.Range, Type: t, Parameters: parameters, Captured: captured, Body: f.fix(e.Body, returnType)}
}

func (f *fixer) fixStatementBlock(e *ast.StatementBlock, expected typesystem.Type) ast.Expression {
	block := &ast.Block{Range: e.Block.Range}
	block.Statements = lo.Map(e.Block.Statements, func(stmt *ast.ValStatement, _ int) *ast.ValStatement {
		annotation := f.fixType(stmt.TypeAnnotation, nil, stmt.Range)
		return &ast.ValStatement{
			Range:          stmt.Range,
			Pattern:        f.fixPattern(stmt.Pattern),
			TypeAnnotation: annotation,
			Value:          f.fix(stmt.Value, decided(annotation)),
		}
	})
	t := f.fixType(e.Type, expected, e.Range)
	if e.Block.Expression != nil {
		block.Expression = f.fix(e.Block.Expression, decided(t))
	} else {
		f.fixType(t, typesystem.Unit, e.Range)
	}
	return &ast.StatementBlock{Range: e.Range, Type: t, Block: block}
}

func (f *fixer) fixPattern(pattern ast.Pattern) ast.Pattern {
	switch p := pattern.(type) {
	case *ast.TuplePattern:
		return &ast.TuplePattern{Range: p.Range, Names: lo.Map(p.Names, func(n *ast.TupleDestructuredName, _ int) *ast.TupleDestructuredName {
			fixed := *n
			if n.Type != nil {
				fixed.Type = f.fixType(n.Type, nil, n.Range)
			}
			return &fixed
		})}
	case *ast.ObjectPattern:
		return &ast.ObjectPattern{Range: p.Range, Names: lo.Map(p.Names, func(n *ast.ObjectDestructuredName, _ int) *ast.ObjectDestructuredName {
			fixed := *n
			if n.Type != nil {
				fixed.Type = f.fixType(n.Type, nil, n.FieldRange)
			}
			return &fixed
		})}
	default:
		return pattern
	}
}
