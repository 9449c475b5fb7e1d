package analyzer

import (
	"fmt"
	"testing"

	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/config"
	"github.com/funvibe/tycheck/internal/diagnostics"
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
)

var testModule = typesystem.NewModuleReference("Test")

// line gives every node built on a distinct source line its own range, so diagnostics
// at different nodes never collapse into one.
func line(n int) token.Range {
	return token.NewRange(n, 1, n, 20)
}

func typ(name string, args ...typesystem.Type) typesystem.IdentifierType {
	return typesystem.NewIdentifierType(testModule, name, args...)
}

func fnType(ret typesystem.Type, args ...typesystem.Type) typesystem.FunctionType {
	return typesystem.NewFunctionType(args, ret)
}

func intLit(v int64) *ast.Literal { return &ast.Literal{Kind: ast.IntLiteral, IntValue: v} }
func boolLit(v bool) *ast.Literal { return &ast.Literal{Kind: ast.BoolLiteral, BoolValue: v} }
func strLit(v string) *ast.Literal { return &ast.Literal{Kind: ast.StringLiteral, StringValue: v} }
func variable(name string) *ast.Variable { return &ast.Variable{Name: name} }

func at(rng token.Range, name string) *ast.Variable {
	return &ast.Variable{Range: rng, Name: name}
}

func classMember(module typesystem.ModuleReference, class, name string) *ast.ClassMember {
	return &ast.ClassMember{Module: module, ClassName: class, MemberName: name}
}

func builtin(name string) *ast.ClassMember {
	return classMember(typesystem.Root, config.BuiltinsClassName, name)
}

func call(callee ast.Expression, args ...ast.Expression) *ast.FunctionCall {
	return &ast.FunctionCall{Callee: callee, Arguments: args}
}

func field(object ast.Expression, name string) *ast.FieldAccess {
	return &ast.FieldAccess{Object: object, FieldName: name}
}

func binary(op ast.BinaryOperator, left, right ast.Expression) *ast.Binary {
	return &ast.Binary{Operator: op, Left: left, Right: right}
}

func tuple(elements ...ast.Expression) *ast.TupleConstructor {
	return &ast.TupleConstructor{Elements: elements}
}

func object(fields ...*ast.FieldConstructor) *ast.ObjectConstructor {
	return &ast.ObjectConstructor{Fields: fields}
}

func fieldValue(name string, value ast.Expression) *ast.FieldConstructor {
	return &ast.FieldConstructor{Name: name, Value: value}
}

func variant(tag string, data ast.Expression) *ast.VariantConstructor {
	return &ast.VariantConstructor{Tag: tag, Data: data}
}

func matchOn(subject ast.Expression, cases ...*ast.MatchCase) *ast.Match {
	return &ast.Match{Subject: subject, Cases: cases}
}

func matchCase(tag, data string, body ast.Expression) *ast.MatchCase {
	mc := &ast.MatchCase{Tag: tag, Body: body}
	if data != "" {
		mc.DataVariable = &ast.DataVariable{Name: data}
	}
	return mc
}

func lambda(body ast.Expression, params ...string) *ast.Lambda {
	l := &ast.Lambda{Body: body}
	for _, p := range params {
		l.Parameters = append(l.Parameters, &ast.LambdaParameter{Name: p})
	}
	return l
}

func block(expr ast.Expression, stmts ...*ast.ValStatement) *ast.StatementBlock {
	return &ast.StatementBlock{Block: &ast.Block{Statements: stmts, Expression: expr}}
}

func val(pattern ast.Pattern, value ast.Expression) *ast.ValStatement {
	return &ast.ValStatement{Pattern: pattern, Value: value}
}

func bind(name string) *ast.VariablePattern {
	return &ast.VariablePattern{Name: name}
}

func param(name string, t typesystem.Type) *ast.Parameter {
	return &ast.Parameter{Name: name, Type: t}
}

func typeParams(names ...string) []ast.TypeParameter {
	params := make([]ast.TypeParameter, len(names))
	for i, n := range names {
		params[i] = ast.TypeParameter{Name: n}
	}
	return params
}

func function(name string, ret typesystem.Type, body ast.Expression, params ...*ast.Parameter) *ast.Member {
	return &ast.Member{Name: name, IsPublic: true, Parameters: params, ReturnType: ret, Body: body}
}

func method(name string, ret typesystem.Type, body ast.Expression, params ...*ast.Parameter) *ast.Member {
	m := function(name, ret, body, params...)
	m.IsMethod = true
	return m
}

func private(m *ast.Member) *ast.Member {
	m.IsPublic = false
	return m
}

func generic(m *ast.Member, names ...string) *ast.Member {
	m.TypeParameters = typeParams(names...)
	return m
}

// fixtureModule defines, in module Test:
//
//	class Box<T>(val value: T, private val secret: int)
//	  method get(): T = this.value
//	  private method hidden(): int = this.secret
//	  function of<T>(v: T): Box<T> = { value: v, secret: 0 }
//	  private function internal(): int = 0
//	class Opt<T>(Some(T), None(int))
//	  function none<T>(): Opt<T> = None(0)
//	class Main
//	  function main(): unit = { val b = Box.of(1); val x: int = b.get(); Builtins.println(Builtins.intToString(x)) }
func fixtureModule() *ast.Module {
	T := typ("T")
	box := &ast.Class{
		Name:           "Box",
		TypeParameters: typeParams("T"),
		TypeDefinition: &ast.TypeDefinition{Kind: ast.ObjectDefinition, Fields: []*ast.FieldDefinition{
			{Name: "value", Type: T, IsPublic: true},
			{Name: "secret", Type: typesystem.Int},
		}},
		Members: []*ast.Member{
			method("get", T, field(&ast.This{}, "value")),
			private(method("hidden", typesystem.Int, field(&ast.This{}, "secret"))),
			generic(function("of", typ("Box", T),
				object(fieldValue("value", variable("v")), fieldValue("secret", intLit(0))),
				param("v", T)), "T"),
			private(function("internal", typesystem.Int, intLit(0))),
		},
	}
	opt := &ast.Class{
		Name:           "Opt",
		TypeParameters: typeParams("T"),
		TypeDefinition: &ast.TypeDefinition{Kind: ast.VariantDefinition, Fields: []*ast.FieldDefinition{
			{Name: "Some", Type: T, IsPublic: true},
			{Name: "None", Type: typesystem.Int, IsPublic: true},
		}},
		Members: []*ast.Member{
			generic(function("none", typ("Opt", T), variant("None", intLit(0))), "T"),
		},
	}
	annotated := val(bind("x"), call(field(variable("b"), "get")))
	annotated.TypeAnnotation = typesystem.Int
	main := &ast.Class{
		Name: "Main",
		Members: []*ast.Member{
			function("main", typesystem.Unit, block(
				call(builtin(config.PrintlnFuncName), call(builtin(config.IntToStringFuncName), variable("x"))),
				val(bind("b"), call(classMember(testModule, "Box", "of"), intLit(1))),
				annotated,
			)),
		},
	}
	return &ast.Module{Reference: testModule, Classes: []*ast.Class{box, opt, main}}
}

// checkProbe adds probe to the named fixture class and checks the module.
func checkProbe(t *testing.T, className string, probe *ast.Member) (*ast.Module, []*diagnostics.DiagnosticError) {
	t.Helper()
	module := fixtureModule()
	class := module.ClassNamed(className)
	if class == nil {
		t.Fatalf("no fixture class %s", className)
	}
	class.Members = append(class.Members, probe)
	result, _ := TypeCheckSources(ast.Forest{testModule: module}, DefaultBuiltins())
	return result.Modules[testModule], result.Diagnostics
}

// describe renders diagnostics without their location.
func describe(errs []*diagnostics.DiagnosticError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return out
}

func findMember(module *ast.Module, className, memberName string) *ast.Member {
	class := module.ClassNamed(className)
	if class == nil {
		return nil
	}
	for _, m := range class.Members {
		if m.Name == memberName {
			return m
		}
	}
	return nil
}
