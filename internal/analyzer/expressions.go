package analyzer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/config"
	"github.com/funvibe/tycheck/internal/diagnostics"
	"github.com/funvibe/tycheck/internal/symbols"
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// checker is the first pass over one member body. Every node is checked against an expected
// type and rebuilt with its inferred type, which may still mention placeholders of resolution.
// Failures are reported to collector and replaced by a best guess so checking continues.
type checker struct {
	access     *AccessibleGlobalTypingContext
	locals     *symbols.LocalTypingContext
	resolution *typesystem.TypeResolution
	collector  *diagnostics.Collector
}

func newChecker(access *AccessibleGlobalTypingContext, locals *symbols.LocalTypingContext, resolution *typesystem.TypeResolution, collector *diagnostics.Collector) *checker {
	return &checker{access: access, locals: locals, resolution: resolution, collector: collector}
}

func (c *checker) report(code diagnostics.ErrorCode, rng token.Range, args ...interface{}) {
	c.collector.Add(diagnostics.NewError(code, c.access.CurrentModule, rng, args...))
}

// checkAndInfer unifies and reports a failure at rng. On failure the expected type is the
// best guess.
func (c *checker) checkAndInfer(expected, actual typesystem.Type, rng token.Range) typesystem.Type {
	t, err := typesystem.CheckAndInfer(expected, actual, c.resolution)
	if err != nil {
		c.collector.Add(diagnostics.FromTypeError(c.access.CurrentModule, rng, err))
		return expected
	}
	return t
}

// typeOrFresh turns an unknown type into a new placeholder.
func (c *checker) typeOrFresh(t typesystem.Type) typesystem.Type {
	if t == nil {
		return c.resolution.Fresh()
	}
	return t
}

// basicCheck checks an expression against its own annotation, if any.
func (c *checker) basicCheck(expr ast.Expression) ast.Expression {
	return c.check(expr, c.typeOrFresh(expr.GetType()))
}

func (c *checker) check(expr ast.Expression, expected typesystem.Type) ast.Expression {
	switch e := expr.(type) {
	case *ast.Literal:
		c.checkAndInfer(expected, e.GetType(), e.Range)
		return e
	case *ast.This:
		return c.checkThis(e, expected)
	case *ast.Variable:
		return c.checkVariable(e, expected)
	case *ast.ClassMember:
		return c.checkClassMember(e, expected)
	case *ast.TupleConstructor:
		return c.checkTupleConstructor(e, expected)
	case *ast.ObjectConstructor:
		return c.checkObjectConstructor(e, expected)
	case *ast.VariantConstructor:
		return c.checkVariantConstructor(e, expected)
	case *ast.FieldAccess:
		return c.checkFieldAccess(e, expected)
	case *ast.Unary:
		return c.checkUnary(e, expected)
	case *ast.FunctionCall:
		return c.checkFunctionCall(e, expected)
	case *ast.Binary:
		return c.checkBinary(e, expected)
	case *ast.IfElse:
		return c.checkIfElse(e, expected)
	case *ast.Match:
		return c.checkMatch(e, expected)
	case *ast.Lambda:
		return c.checkLambda(e, expected)
	case *ast.StatementBlock:
		return c.checkStatementBlock(e, expected)
	case *ast.MethodAccess:
		panic("method access is produced by the checker and cannot be checked again")
	default:
		panic(fmt.Sprintf("unknown expression %T", expr))
	}
}

func (c *checker) checkThis(e *ast.This, expected typesystem.Type) ast.Expression {
	t, ok := c.locals.Lookup(config.ThisName)
	if !ok {
		c.report(diagnostics.ErrIllegalThis, e.Range)
		return &ast.This{Range: e.Range, Type: expected}
	}
	return &ast.This{Range: e.Range, Type: c.checkAndInfer(expected, t, e.Range)}
}

func (c *checker) checkVariable(e *ast.Variable, expected typesystem.Type) ast.Expression {
	var t typesystem.Type
	if e.Name == config.UnitVariableName {
		t = typesystem.Unit
	} else if local, ok := c.locals.Lookup(e.Name); ok {
		t = local
	} else {
		c.report(diagnostics.ErrUnresolvedName, e.Range, e.Name)
		return &ast.Variable{Range: e.Range, Type: expected, Name: e.Name}
	}
	return &ast.Variable{Range: e.Range, Type: c.checkAndInfer(expected, t, e.Range), Name: e.Name}
}

func (c *checker) checkClassMember(e *ast.ClassMember, expected typesystem.Type) ast.Expression {
	checked := *e
	t, typeArguments, ok := c.access.GetClassFunctionType(e.Module, e.ClassName, e.MemberName, c.resolution)
	if !ok {
		c.report(diagnostics.ErrUnresolvedName, e.Range, e.ClassName+"."+e.MemberName)
		checked.Type = expected
		return &checked
	}
	checked.Type = c.checkAndInfer(expected, t, e.Range)
	checked.TypeArguments = typeArguments
	return &checked
}

func (c *checker) checkTupleConstructor(e *ast.TupleConstructor, expected typesystem.Type) ast.Expression {
	elements := lo.Map(e.Elements, func(element ast.Expression, _ int) ast.Expression {
		return c.basicCheck(element)
	})
	local := typesystem.NewTupleType(lo.Map(elements, func(element ast.Expression, _ int) typesystem.Type {
		return element.GetType()
	})...)
	t := c.checkAndInfer(expected, local, e.Range)
	if _, ok := t.(typesystem.TupleType); !ok {
		t = local
	}
	return &ast.TupleConstructor{Range: e.Range, Type: t, Elements: elements}
}

func (c *checker) checkFieldConstructors(fields []*ast.FieldConstructor) ([]*ast.FieldConstructor, map[string]typesystem.Type) {
	declared := make(map[string]typesystem.Type, len(fields))
	checked := make([]*ast.FieldConstructor, 0, len(fields))
	for _, f := range fields {
		if _, exists := declared[f.Name]; exists {
			c.report(diagnostics.ErrDuplicateFieldDeclaration, f.Range, f.Name)
			continue
		}
		field := &ast.FieldConstructor{Range: f.Range, NameRange: f.NameRange, Name: f.Name}
		if f.Value != nil {
			field.Value = c.basicCheck(f.Value)
			field.Type = field.Value.GetType()
		} else {
			shorthand := c.basicCheck(&ast.Variable{Range: f.Range, Type: f.Type, Name: f.Name})
			field.Type = shorthand.GetType()
		}
		declared[f.Name] = field.Type
		checked = append(checked, field)
	}
	return checked, declared
}

func (c *checker) checkObjectConstructor(e *ast.ObjectConstructor, expected typesystem.Type) ast.Expression {
	def, classTypeParameters := c.access.GetCurrentClassTypeDefinition()
	if def == nil || def.Kind != ast.ObjectDefinition {
		c.report(diagnostics.ErrUnsupportedClassTypeDefinition, e.Range, ast.ObjectDefinition)
		return &ast.ObjectConstructor{Range: e.Range, Type: expected, Fields: e.Fields}
	}
	fields, declared := c.checkFieldConstructors(e.Fields)

	expectedNames := slices.Clone(def.Names)
	slices.Sort(expectedNames)
	actualNames := lo.Keys(declared)
	slices.Sort(actualNames)
	if !slices.Equal(expectedNames, actualNames) {
		c.report(diagnostics.ErrInconsistentFieldsInObject, e.Range, strings.Join(expectedNames, ", "), strings.Join(actualNames, ", "))
		for _, f := range fields {
			if _, ok := def.Mappings[f.Name]; !ok {
				c.report(diagnostics.ErrExtraFieldInObject, f.NameRange, f.Name)
			}
		}
		return &ast.ObjectConstructor{Range: e.Range, Type: expected, Fields: fields}
	}

	declaredTypes := lo.Map(def.Names, func(name string, _ int) typesystem.Type { return def.Mappings[name].Type })
	fieldTypes, undecided := typesystem.UndecideTypeParametersOfAll(declaredTypes, classTypeParameters, c.resolution)
	for _, f := range fields {
		f.Type = c.checkAndInfer(fieldTypes[def.Order(f.Name)], f.Type, f.Range)
	}
	local := typesystem.NewIdentifierType(c.access.CurrentModule, c.access.CurrentClass, c.partiallyResolveAll(undecided)...)
	t := c.checkAndInfer(expected, local, e.Range)
	if _, ok := t.(typesystem.IdentifierType); !ok {
		t = local
	}
	slices.SortStableFunc(fields, func(a, b *ast.FieldConstructor) int {
		return def.Order(a.Name) - def.Order(b.Name)
	})
	return &ast.ObjectConstructor{Range: e.Range, Type: t, Fields: fields}
}

func (c *checker) partiallyResolveAll(types []typesystem.Type) []typesystem.Type {
	return lo.Map(types, func(t typesystem.Type, _ int) typesystem.Type {
		return c.resolution.PartiallyResolve(t)
	})
}

func (c *checker) checkVariantConstructor(e *ast.VariantConstructor, expected typesystem.Type) ast.Expression {
	def, classTypeParameters := c.access.GetCurrentClassTypeDefinition()
	if def == nil || def.Kind != ast.VariantDefinition {
		c.report(diagnostics.ErrUnsupportedClassTypeDefinition, e.Range, ast.VariantDefinition)
		return &ast.VariantConstructor{Range: e.Range, Type: expected, Tag: e.Tag, TagRange: e.TagRange, Data: e.Data}
	}
	data := c.basicCheck(e.Data)
	mapping, ok := def.Mappings[e.Tag]
	if !ok {
		c.report(diagnostics.ErrUnresolvedName, e.Range, e.Tag)
		return &ast.VariantConstructor{Range: e.Range, Type: expected, Tag: e.Tag, TagRange: e.TagRange, Data: data}
	}
	dataType, undecided := typesystem.UndecideTypeParameters(mapping.Type, classTypeParameters, c.resolution)
	c.checkAndInfer(dataType, data.GetType(), data.GetRange())
	local := typesystem.NewIdentifierType(c.access.CurrentModule, c.access.CurrentClass, c.partiallyResolveAll(undecided)...)
	return &ast.VariantConstructor{
		Range:    e.Range,
		Type:     c.checkAndInfer(expected, local, e.Range),
		Tag:      e.Tag,
		TagRange: e.TagRange,
		TagOrder: def.Order(e.Tag),
		Data:     data,
	}
}

// checkFieldAccess first tries to read the name as a method of the receiver's class and
// falls back to an object field.
func (c *checker) checkFieldAccess(e *ast.FieldAccess, expected typesystem.Type) ast.Expression {
	object := c.basicCheck(e.Object)
	objectType := c.resolution.PartiallyResolve(object.GetType())
	failed := &ast.FieldAccess{Range: e.Range, Type: expected, Object: object, FieldName: e.FieldName, FieldNameRange: e.FieldNameRange}

	id, isIdentifier := objectType.(typesystem.IdentifierType)
	if isIdentifier {
		methodType, typeArguments, err := c.access.GetClassMethodType(id.Module, id.Identifier, e.FieldName, id.TypeArguments, c.resolution)
		if err == nil {
			return &ast.MethodAccess{
				Range:           e.Range,
				Type:            c.checkAndInfer(expected, methodType, e.Range),
				Object:          object,
				MethodName:      e.FieldName,
				MethodNameRange: e.FieldNameRange,
				TypeArguments:   typeArguments,
			}
		}
		var lookup *MethodLookupError
		if errors.As(err, &lookup) && lookup.UnresolvedName == "" {
			c.report(diagnostics.ErrTypeParameterSizeMismatch, e.Range, lookup.Expected, lookup.Actual)
			return failed
		}
	}
	if _, undecided := objectType.(typesystem.UndecidedType); undecided {
		c.report(diagnostics.ErrInsufficientTypeInferenceContext, object.GetRange())
		return failed
	}
	if !isIdentifier {
		c.report(diagnostics.ErrUnexpectedTypeKind, object.GetRange(), "identifier", objectType)
		return failed
	}
	def, err := c.access.ResolveTypeDefinition(id, ast.ObjectDefinition)
	if err != nil {
		c.report(diagnostics.ErrUnsupportedClassTypeDefinition, object.GetRange(), ast.ObjectDefinition)
		return failed
	}
	field, ok := def.Mappings[e.FieldName]
	if !ok || (!field.IsPublic && !c.access.isCurrentClass(id.Module, id.Identifier)) {
		c.report(diagnostics.ErrUnresolvedName, e.Range, e.FieldName)
		return failed
	}
	return &ast.FieldAccess{
		Range:          e.Range,
		Type:           c.checkAndInfer(expected, field.Type, e.Range),
		Object:         object,
		FieldName:      e.FieldName,
		FieldNameRange: e.FieldNameRange,
		FieldOrder:     def.Order(e.FieldName),
	}
}

func unaryOperandType(op ast.UnaryOperator) typesystem.Type {
	if op == ast.OperatorNot {
		return typesystem.Bool
	}
	return typesystem.Int
}

func (c *checker) checkUnary(e *ast.Unary, expected typesystem.Type) ast.Expression {
	t := unaryOperandType(e.Operator)
	c.checkAndInfer(expected, t, e.Range)
	return &ast.Unary{Range: e.Range, Type: t, Operator: e.Operator, Operand: c.check(e.Operand, t)}
}

// checkFunctionCall checks the callee against (fresh...) -> expected, so the expected return
// type reaches the callee before the arguments are looked at.
func (c *checker) checkFunctionCall(e *ast.FunctionCall, expected typesystem.Type) ast.Expression {
	expectedCallee := typesystem.NewFunctionType(c.resolution.FreshN(len(e.Arguments)), expected)
	callee := c.check(e.Callee, expectedCallee)
	calleeType, isFunction := c.resolution.PartiallyResolve(callee.GetType()).(typesystem.FunctionType)
	refined := calleeType
	if !isFunction || len(calleeType.Arguments) != len(e.Arguments) {
		refined = expectedCallee
	}
	arguments := make([]ast.Expression, len(e.Arguments))
	for i, arg := range e.Arguments {
		arguments[i] = c.check(arg, refined.Arguments[i])
	}
	if !isFunction {
		c.report(diagnostics.ErrUnexpectedTypeKind, e.Callee.GetRange(), "function", callee.GetType())
		return &ast.FunctionCall{Range: e.Range, Type: expected, Callee: callee, Arguments: arguments}
	}
	return &ast.FunctionCall{
		Range:     e.Range,
		Type:      c.checkAndInfer(expected, refined.Return, e.Range),
		Callee:    callee,
		Arguments: arguments,
	}
}

// binaryOperandType returns the operand and result types of operators whose operands have a
// fixed type.
func binaryOperandType(class ast.BinaryOperatorClass) (operand, result typesystem.Type) {
	switch class {
	case ast.ArithmeticOperator:
		return typesystem.Int, typesystem.Int
	case ast.ComparisonOperator:
		return typesystem.Int, typesystem.Bool
	case ast.BooleanOperator:
		return typesystem.Bool, typesystem.Bool
	case ast.ConcatOperator:
		return typesystem.String, typesystem.String
	default:
		return nil, typesystem.Bool
	}
}

func (c *checker) checkBinary(e *ast.Binary, expected typesystem.Type) ast.Expression {
	class := e.Operator.Class()
	if class == ast.UnknownOperator {
		panic(fmt.Sprintf("unknown binary operator %q", e.Operator))
	}
	operand, result := binaryOperandType(class)
	checked := &ast.Binary{Range: e.Range, Type: result, Operator: e.Operator}
	if class == ast.EqualityOperator {
		// The left operand decides the type the right one must have.
		checked.Left = c.basicCheck(e.Left)
		checked.Right = c.check(e.Right, checked.Left.GetType())
	} else {
		checked.Left = c.check(e.Left, operand)
		checked.Right = c.check(e.Right, operand)
	}
	c.checkAndInfer(expected, result, e.Range)
	return checked
}

func (c *checker) checkIfElse(e *ast.IfElse, expected typesystem.Type) ast.Expression {
	condition := c.check(e.Condition, typesystem.Bool)
	then := c.check(e.Then, expected)
	otherwise := c.check(e.Else, then.GetType())
	return &ast.IfElse{Range: e.Range, Type: otherwise.GetType(), Condition: condition, Then: then, Else: otherwise}
}

func (c *checker) checkMatch(e *ast.Match, expected typesystem.Type) ast.Expression {
	subject := c.basicCheck(e.Subject)
	subjectType := c.resolution.PartiallyResolve(subject.GetType())
	failed := &ast.Match{Range: e.Range, Type: expected, Subject: subject}

	id, ok := subjectType.(typesystem.IdentifierType)
	if !ok {
		if _, undecided := subjectType.(typesystem.UndecidedType); undecided {
			c.report(diagnostics.ErrInsufficientTypeInferenceContext, subject.GetRange())
		} else {
			c.report(diagnostics.ErrUnexpectedTypeKind, subject.GetRange(), "identifier", subjectType)
		}
		return failed
	}
	def, err := c.access.ResolveTypeDefinition(id, ast.VariantDefinition)
	if errors.Is(err, errIllegalOtherClassMatch) {
		c.report(diagnostics.ErrIllegalOtherClassMatch, subject.GetRange())
		return failed
	} else if err != nil {
		c.report(diagnostics.ErrUnsupportedClassTypeDefinition, subject.GetRange(), ast.VariantDefinition)
		return failed
	}

	remaining := set.From(def.Names)
	cases := make([]*ast.MatchCase, 0, len(e.Cases))
	for _, mc := range e.Cases {
		mapping, known := def.Mappings[mc.Tag]
		if !known || !remaining.Remove(mc.Tag) {
			c.report(diagnostics.ErrUnresolvedName, mc.Range, mc.Tag)
			continue
		}
		checked := &ast.MatchCase{Range: mc.Range, Tag: mc.Tag, TagRange: mc.TagRange, TagOrder: def.Order(mc.Tag)}
		c.locals.WithNestedScope(symbols.ScopeMatchArm, func() {
			if mc.DataVariable != nil {
				if !c.locals.Define(mc.DataVariable.Name, mapping.Type) {
					c.report(diagnostics.ErrCollision, mc.Range, mc.DataVariable.Name)
				}
				checked.DataVariable = &ast.DataVariable{Name: mc.DataVariable.Name, Range: mc.DataVariable.Range, Type: mapping.Type}
			}
			checked.Body = c.check(mc.Body, expected)
		})
		cases = append(cases, checked)
	}
	if !remaining.Empty() {
		unused := lo.Filter(def.Names, func(name string, _ int) bool { return remaining.Contains(name) })
		c.report(diagnostics.ErrNonExhaustiveMatch, e.Range, strings.Join(unused, ", "))
	}

	t := expected
	for i, mc := range cases {
		if i == 0 {
			t = mc.Body.GetType()
			continue
		}
		t = c.checkAndInfer(t, mc.Body.GetType(), e.Range)
	}
	return &ast.Match{Range: e.Range, Type: t, Subject: subject, Cases: cases}
}

// checkLambda unifies the lambda's shape with the expected type before the body is checked,
// so parameter types known from the context are available inside the body.
func (c *checker) checkLambda(e *ast.Lambda, expected typesystem.Type) ast.Expression {
	parameters := make([]*ast.LambdaParameter, len(e.Parameters))
	parameterTypes := make([]typesystem.Type, len(e.Parameters))
	for i, p := range e.Parameters {
		if p.Type != nil {
			validateType(p.Type, c.access, p.Range, c.collector)
		}
		parameterTypes[i] = c.typeOrFresh(p.Type)
		parameters[i] = &ast.LambdaParameter{Name: p.Name, Range: p.Range, Type: parameterTypes[i]}
	}
	returnType := c.resolution.Fresh()
	c.checkAndInfer(expected, typesystem.NewFunctionType(parameterTypes, returnType), e.Range)

	var body ast.Expression
	captured := c.locals.WithNestedScopeReturnCaptured(symbols.ScopeLambda, func() {
		for _, p := range parameters {
			if !c.locals.Define(p.Name, p.Type) {
				c.report(diagnostics.ErrCollision, p.Range, p.Name)
			}
		}
		body = c.check(e.Body, returnType)
	})

	t := c.checkAndInfer(expected, typesystem.NewFunctionType(parameterTypes, body.GetType()), e.Range)
	return &ast.Lambda{
		Range:      e.Range,
		Type:       t,
		Parameters: parameters,
		Captured: lo.Map(captured, func(s symbols.Symbol, _ int) ast.CapturedValue {
			return ast.CapturedValue{Name: s.Name, Type: s.Type}
		}),
		Body: body,
	}
}
