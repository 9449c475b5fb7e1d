package analyzer

import (
	"testing"

	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/config"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureModuleChecks(t *testing.T) {
	module := TypeCheckSingleModule(fixtureModule(), DefaultBuiltins())
	require.NotNil(t, module)
	assert.Len(t, module.Classes, 3)
}

// ---------------------------------------------------------------------------
// Diagnostics reported by the checker

func TestCheckerDiagnostics(t *testing.T) {
	boxInt := typ("Box", typesystem.Int)
	optInt := typ("Opt", typesystem.Int)

	tests := []struct {
		name     string
		class    string
		probe    *ast.Member
		expected []string
	}{
		{
			name:     "literal mismatch",
			class:    "Main",
			probe:    function("probe", typesystem.Bool, intLit(1)),
			expected: []string{"UnexpectedType: Expected: `bool`, actual: `int`."},
		},
		{
			name:     "unresolved variable",
			class:    "Main",
			probe:    function("probe", typesystem.Int, variable("y")),
			expected: []string{"UnresolvedName: Name `y` is not resolved."},
		},
		{
			name:  "unit variable",
			class: "Main",
			probe: function("probe", typesystem.Unit, variable(config.UnitVariableName)),
		},
		{
			name:     "this in a function",
			class:    "Box",
			probe:    function("probe", typesystem.Int, &ast.This{}),
			expected: []string{"IllegalThis: Keyword `this` cannot be used in this context."},
		},
		{
			name:  "this in a method",
			class: "Box",
			probe: method("probe", typ("Box", typ("T")), &ast.This{}),
		},
		{
			name:     "private function of another class",
			class:    "Main",
			probe:    function("probe", fnType(typesystem.Int), classMember(testModule, "Box", "internal")),
			expected: []string{"UnresolvedName: Name `Box.internal` is not resolved."},
		},
		{
			name:  "private function of the same class",
			class: "Box",
			probe: function("probe", fnType(typesystem.Int), classMember(testModule, "Box", "internal")),
		},
		{
			name:  "tuple",
			class: "Main",
			probe: function("probe", typesystem.NewTupleType(typesystem.Int, typesystem.Bool), tuple(intLit(1), boolLit(true))),
		},
		{
			name:     "tuple size",
			class:    "Main",
			probe:    function("probe", typesystem.NewTupleType(typesystem.Int, typesystem.Bool), tuple(intLit(1))),
			expected: []string{"ArityMismatch: Incorrect tuple size. Expected: 2, actual: 1."},
		},
		{
			name:     "object constructor outside an object class",
			class:    "Main",
			probe:    function("probe", typesystem.Int, object()),
			expected: []string{"UnsupportedClassTypeDefinition: Expect the current class to have `object` type definition, but it doesn't."},
		},
		{
			name:  "object constructor",
			class: "Box",
			probe: function("probe", boxInt, object(fieldValue("secret", intLit(1)), fieldValue("value", intLit(2)))),
		},
		{
			name:  "object constructor with inconsistent fields",
			class: "Box",
			probe: function("probe", boxInt, object(fieldValue("value", intLit(1)), fieldValue("extra", intLit(2)))),
			expected: []string{
				"ExtraFieldInObject: Field `extra` is not declared in the class.",
				"InconsistentFieldsInObject: Inconsistent fields. Expected: `secret, value`, actual: `extra, value`.",
			},
		},
		{
			name:  "object constructor with a repeated field",
			class: "Box",
			probe: function("probe", boxInt, object(
				fieldValue("value", intLit(1)), fieldValue("value", intLit(2)), fieldValue("secret", intLit(0)))),
			expected: []string{"DuplicateFieldDeclaration: Field name `value` is declared twice."},
		},
		{
			name:     "object constructor with a mistyped field",
			class:    "Box",
			probe:    function("probe", boxInt, object(fieldValue("value", strLit("s")), fieldValue("secret", intLit(0)))),
			expected: []string{"UnexpectedType: Expected: `Box<int>`, actual: `Box<string>`."},
		},
		{
			name:  "variant constructor",
			class: "Opt",
			probe: function("probe", optInt, variant("Some", intLit(1))),
		},
		{
			name:     "variant constructor with an unknown tag",
			class:    "Opt",
			probe:    function("probe", optInt, variant("Many", intLit(1))),
			expected: []string{"UnresolvedName: Name `Many` is not resolved."},
		},
		{
			name:     "variant constructor in an object class",
			class:    "Box",
			probe:    function("probe", optInt, variant("Some", intLit(1))),
			expected: []string{"UnsupportedClassTypeDefinition: Expect the current class to have `variant` type definition, but it doesn't."},
		},
		{
			name:     "field access on a primitive",
			class:    "Main",
			probe:    function("probe", typesystem.Int, field(intLit(1), "value")),
			expected: []string{"UnexpectedTypeKind: Expected kind: `identifier`, actual: `int`."},
		},
		{
			name:  "public field of another class",
			class: "Main",
			probe: function("probe", typesystem.Int, field(variable("b"), "value"), param("b", boxInt)),
		},
		{
			name:     "private field of another class",
			class:    "Main",
			probe:    function("probe", typesystem.Int, field(variable("b"), "secret"), param("b", boxInt)),
			expected: []string{"UnresolvedName: Name `secret` is not resolved."},
		},
		{
			name:     "private method of another class",
			class:    "Main",
			probe:    function("probe", typesystem.Int, call(field(variable("b"), "hidden")), param("b", boxInt)),
			expected: []string{"UnresolvedName: Name `hidden` is not resolved."},
		},
		{
			name:  "method of a generic class",
			class: "Main",
			probe: function("probe", typesystem.Int, call(field(variable("b"), "get")), param("b", boxInt)),
		},
		{
			name:  "field access on an unknown receiver",
			class: "Main",
			probe: function("probe", typesystem.Int, block(intLit(1),
				val(bind("f"), lambda(field(variable("x"), "value"), "x")))),
			expected: []string{"InsufficientTypeInferenceContext: There is not enough context information to decide the type of this expression."},
		},
		{
			name:  "unary",
			class: "Main",
			probe: function("probe", typesystem.Bool, &ast.Unary{Operator: ast.OperatorNot, Operand: boolLit(false)}),
		},
		{
			name:     "unary operand",
			class:    "Main",
			probe:    function("probe", typesystem.Int, &ast.Unary{Operator: ast.OperatorNegate, Operand: boolLit(false)}),
			expected: []string{"UnexpectedType: Expected: `int`, actual: `bool`."},
		},
		{
			name:     "arithmetic operand",
			class:    "Main",
			probe:    function("probe", typesystem.Int, binary(ast.OperatorPlus, intLit(1), boolLit(true))),
			expected: []string{"UnexpectedType: Expected: `int`, actual: `bool`."},
		},
		{
			name:  "comparison",
			class: "Main",
			probe: function("probe", typesystem.Bool, binary(ast.OperatorLt, intLit(1), intLit(2))),
		},
		{
			name:  "concatenation",
			class: "Main",
			probe: function("probe", typesystem.String, binary(ast.OperatorConcat, strLit("a"), strLit("b"))),
		},
		{
			name:     "equality decides by its left operand",
			class:    "Main",
			probe:    function("probe", typesystem.Bool, binary(ast.OperatorEq, intLit(1), boolLit(true))),
			expected: []string{"UnexpectedType: Expected: `int`, actual: `bool`."},
		},
		{
			name:     "binary result",
			class:    "Main",
			probe:    function("probe", typesystem.Int, binary(ast.OperatorAnd, boolLit(true), boolLit(false))),
			expected: []string{"UnexpectedType: Expected: `int`, actual: `bool`."},
		},
		{
			name:     "if branches",
			class:    "Main",
			probe:    function("probe", typesystem.Int, &ast.IfElse{Condition: boolLit(true), Then: intLit(1), Else: strLit("a")}),
			expected: []string{"UnexpectedType: Expected: `int`, actual: `string`."},
		},
		{
			name:     "if condition",
			class:    "Main",
			probe:    function("probe", typesystem.Int, &ast.IfElse{Condition: intLit(0), Then: intLit(1), Else: intLit(2)}),
			expected: []string{"UnexpectedType: Expected: `bool`, actual: `int`."},
		},
		{
			name:  "call of a generic builtin",
			class: "Main",
			probe: function("probe", typesystem.Int, call(builtin(config.PanicFuncName), strLit("boom"))),
		},
		{
			name:  "call of a non-function",
			class: "Main",
			probe: function("probe", typesystem.Int, call(intLit(1))),
			expected: []string{
				"UnexpectedType: Expected: `() -> int`, actual: `int`.",
				"UnexpectedTypeKind: Expected kind: `function`, actual: `int`.",
			},
		},
		{
			name:     "call with too many arguments",
			class:    "Main",
			probe:    function("probe", typesystem.String, call(builtin(config.IntToStringFuncName), intLit(1), intLit(2))),
			expected: []string{"ArityMismatch: Incorrect arguments size. Expected: 2, actual: 1."},
		},
		{
			name:     "call with a mistyped argument",
			class:    "Main",
			probe:    function("probe", typesystem.String, call(builtin(config.IntToStringFuncName), strLit("1"))),
			expected: []string{"UnexpectedType: Expected: `int`, actual: `string`."},
		},
		{
			name:  "lambda parameter learned from the expected type",
			class: "Main",
			probe: function("probe", fnType(typesystem.Int, typesystem.Int),
				lambda(binary(ast.OperatorPlus, variable("x"), intLit(1)), "x")),
		},
		{
			name:     "lambda parameter collision",
			class:    "Main",
			probe:    function("probe", fnType(typesystem.Int, typesystem.Int, typesystem.Int), lambda(variable("x"), "x", "x")),
			expected: []string{"Collision: Name `x` collides with a previously defined name."},
		},
		{
			name:  "match",
			class: "Opt",
			probe: function("probe", typesystem.Int,
				matchOn(variable("o"), matchCase("Some", "v", variable("v")), matchCase("None", "n", variable("n"))),
				param("o", optInt)),
		},
		{
			name:     "match without every tag",
			class:    "Opt",
			probe:    function("probe", typesystem.Int, matchOn(variable("o"), matchCase("Some", "v", variable("v"))), param("o", optInt)),
			expected: []string{"NonExhaustiveMatch: The following tags are not considered in the match: [None]."},
		},
		{
			name:  "match with an unknown tag",
			class: "Opt",
			probe: function("probe", typesystem.Int, matchOn(variable("o"),
				matchCase("Some", "v", variable("v")), matchCase("None", "", intLit(0)), matchCase("Many", "", intLit(1))),
				param("o", optInt)),
			expected: []string{"UnresolvedName: Name `Many` is not resolved."},
		},
		{
			name:  "match arms disagree",
			class: "Opt",
			probe: function("probe", typesystem.Bool, matchOn(variable("o"),
				matchCase("Some", "v", variable("v")), matchCase("None", "", boolLit(true))),
				param("o", optInt)),
			expected: []string{"UnexpectedType: Expected: `bool`, actual: `int`."},
		},
		{
			name:     "match on another class",
			class:    "Main",
			probe:    function("probe", typesystem.Int, matchOn(variable("o"), matchCase("Some", "v", variable("v"))), param("o", optInt)),
			expected: []string{"IllegalOtherClassMatch: It is illegal to match on a value of other class's type."},
		},
		{
			name:     "match on a primitive",
			class:    "Opt",
			probe:    function("probe", typesystem.Int, matchOn(intLit(1), matchCase("Some", "v", variable("v")))),
			expected: []string{"UnexpectedTypeKind: Expected kind: `identifier`, actual: `int`."},
		},
		{
			name:     "val shadows a parameter",
			class:    "Main",
			probe:    function("probe", typesystem.Int, block(variable("a"), val(bind("a"), intLit(1))), param("a", typesystem.Int)),
			expected: []string{"Collision: Name `a` collides with a previously defined name."},
		},
		{
			name:  "block without a result",
			class: "Main",
			probe: function("probe", typesystem.Unit, block(nil, val(bind("a"), intLit(1)))),
		},
		{
			name:     "block without a result where a value is expected",
			class:    "Main",
			probe:    function("probe", typesystem.Int, block(nil, val(bind("a"), intLit(1)))),
			expected: []string{"UnexpectedType: Expected: `int`, actual: `unit`."},
		},
		{
			name:  "tuple pattern",
			class: "Main",
			probe: function("probe", typesystem.String, block(variable("c"), val(
				&ast.TuplePattern{Names: []*ast.TupleDestructuredName{{Name: "a"}, {}, {Name: "c"}}},
				tuple(intLit(1), boolLit(true), strLit("s"))))),
		},
		{
			name:  "tuple pattern size",
			class: "Main",
			probe: function("probe", typesystem.Int, block(intLit(0), val(
				&ast.TuplePattern{Names: []*ast.TupleDestructuredName{{Name: "a"}, {Name: "b"}}},
				tuple(intLit(1), boolLit(true), strLit("s"))))),
			expected: []string{"ArityMismatch: Incorrect tuple size. Expected: 3, actual: 2."},
		},
		{
			name:  "object pattern",
			class: "Box",
			probe: function("probe", typesystem.Int, block(binary(ast.OperatorPlus, variable("v"), variable("secret")), val(
				&ast.ObjectPattern{Names: []*ast.ObjectDestructuredName{{FieldName: "value", Alias: "v"}, {FieldName: "secret"}}},
				variable("b"))), param("b", boxInt)),
		},
		{
			name:  "object pattern on another class",
			class: "Main",
			probe: function("probe", typesystem.Int, block(intLit(0), val(
				&ast.ObjectPattern{Names: []*ast.ObjectDestructuredName{{FieldName: "value"}}},
				variable("b"))), param("b", boxInt)),
			expected: []string{"IllegalOtherClassMatch: It is illegal to match on a value of other class's type."},
		},
		{
			name:  "object pattern with an unknown field",
			class: "Box",
			probe: function("probe", typesystem.Int, block(intLit(0), val(
				&ast.ObjectPattern{Names: []*ast.ObjectDestructuredName{{FieldName: "missing"}}},
				variable("b"))), param("b", boxInt)),
			expected: []string{"UnresolvedName: Name `missing` is not resolved."},
		},
		{
			name:     "parameter of an unknown class",
			class:    "Main",
			probe:    function("probe", typesystem.Int, intLit(1), param("x", typ("Unknown"))),
			expected: []string{"NotWellDefinedIdentifier: `Unknown` is not well defined."},
		},
		{
			name:     "class used without its type arguments",
			class:    "Main",
			probe:    function("probe", typesystem.Int, intLit(1), param("x", typ("Box"))),
			expected: []string{"NotWellDefinedIdentifier: `Box` is not well defined."},
		},
		{
			name:  "member type parameter",
			class: "Main",
			probe: generic(function("probe", typ("U"), variable("x"), param("x", typ("U"))), "U"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := checkProbe(t, tt.class, tt.probe)
			if len(tt.expected) == 0 {
				assert.Empty(t, describe(errs))
				return
			}
			assert.Equal(t, tt.expected, describe(errs))
		})
	}
}

// ---------------------------------------------------------------------------
// Checked trees

func TestFieldAccessBecomesMethodAccess(t *testing.T) {
	module, errs := checkProbe(t, "Main", function("probe", typesystem.Int,
		call(field(variable("b"), "get")), param("b", typ("Box", typesystem.Int))))
	require.Empty(t, errs)

	body := findMember(module, "Main", "probe").Body.(*ast.FunctionCall)
	access, ok := body.Callee.(*ast.MethodAccess)
	require.True(t, ok, "callee is %T", body.Callee)
	assert.Equal(t, "get", access.MethodName)
	assert.Equal(t, "() -> int", access.Type.String())
}

func TestOrdersAreRecorded(t *testing.T) {
	module, errs := checkProbe(t, "Box", function("probe", typesystem.Int,
		field(object(fieldValue("secret", intLit(2)), fieldValue("value", intLit(1))), "secret")))
	require.Empty(t, errs)

	access := findMember(module, "Box", "probe").Body.(*ast.FieldAccess)
	assert.Equal(t, 1, access.FieldOrder)
	constructor := access.Object.(*ast.ObjectConstructor)
	// Fields are reordered to declaration order.
	assert.Equal(t, "value", constructor.Fields[0].Name)
	assert.Equal(t, "secret", constructor.Fields[1].Name)
	assert.Equal(t, "Box<int>", constructor.Type.String())
}

func TestMatchRecordsTagOrderAndDataType(t *testing.T) {
	module, errs := checkProbe(t, "Opt", function("probe", typesystem.Int,
		matchOn(variable("o"), matchCase("None", "n", variable("n")), matchCase("Some", "v", variable("v"))),
		param("o", typ("Opt", typesystem.Int))))
	require.Empty(t, errs)

	match := findMember(module, "Opt", "probe").Body.(*ast.Match)
	require.Len(t, match.Cases, 2)
	assert.Equal(t, 1, match.Cases[0].TagOrder)
	assert.Equal(t, 0, match.Cases[1].TagOrder)
	assert.Equal(t, "int", match.Cases[1].DataVariable.Type.String())
}

func TestLambdaRecordsCapturedValues(t *testing.T) {
	module, errs := checkProbe(t, "Main", function("probe", fnType(typesystem.Int, typesystem.Int),
		block(lambda(binary(ast.OperatorPlus, variable("x"), variable("offset")), "x"),
			val(bind("offset"), variable("base"))),
		param("base", typesystem.Int)))
	require.Empty(t, errs)

	body := findMember(module, "Main", "probe").Body.(*ast.StatementBlock)
	l := body.Block.Expression.(*ast.Lambda)
	require.Len(t, l.Captured, 1)
	assert.Equal(t, "offset", l.Captured[0].Name)
	assert.Equal(t, "int", l.Captured[0].Type.String())
	assert.Equal(t, "int", l.Parameters[0].Type.String())
}

func TestInputTreeIsNotMutated(t *testing.T) {
	module := fixtureModule()
	_, _ = TypeCheckSources(ast.Forest{testModule: module}, DefaultBuiltins())

	get := findMember(module, "Box", "get").Body.(*ast.FieldAccess)
	assert.Nil(t, get.Type)
	assert.Nil(t, get.Object.GetType())
}
