package forest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
	"gopkg.in/yaml.v3"
)

// DecodeModule decodes one module file. JSON input is accepted as well, since it is
// valid YAML. Unknown keys are rejected.
func DecodeModule(ref typesystem.ModuleReference, data []byte) (*ast.Module, error) {
	var file moduleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("module %s: %w", ref, err)
	}
	d := &decoder{module: ref}
	module, err := d.decodeModule(&file)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", ref, err)
	}
	return module, nil
}

type decoder struct {
	module typesystem.ModuleReference
}

// rangeOf parses an optional range, falling back to the enclosing node's range.
func rangeOf(s string, parent token.Range) (token.Range, error) {
	if s == "" {
		return parent, nil
	}
	return token.ParseRange(s)
}

func (d *decoder) decodeModule(file *moduleFile) (*ast.Module, error) {
	module := &ast.Module{Reference: d.module}
	imports := make(map[string]typesystem.ModuleReference)
	for _, node := range file.Imports {
		imp, err := d.decodeImport(node)
		if err != nil {
			return nil, err
		}
		for _, member := range imp.Members {
			imports[member.Name] = imp.Module
		}
		module.Imports = append(module.Imports, imp)
	}
	s := newScope(d.module, imports)
	for i := range file.Classes {
		class, err := d.decodeClass(&file.Classes[i], s)
		if err != nil {
			return nil, err
		}
		module.Classes = append(module.Classes, class)
	}
	return module, nil
}

func (d *decoder) decodeImport(node importNode) (*ast.Import, error) {
	rng, err := rangeOf(node.Range, token.Dummy)
	if err != nil {
		return nil, err
	}
	ref, err := ParseModulePath(node.From)
	if err != nil {
		return nil, fmt.Errorf("import at %s: %w", rng, err)
	}
	imp := &ast.Import{Range: rng, Module: ref, ModuleRange: rng}
	for _, name := range node.Classes {
		if !IsIdentifier(name) {
			return nil, fmt.Errorf("import at %s: invalid class name %q", rng, name)
		}
		imp.Members = append(imp.Members, ast.ImportedMember{Name: name, Range: rng})
	}
	return imp, nil
}

func (d *decoder) typeParameters(names []string, rng token.Range) ([]ast.TypeParameter, error) {
	params := make([]ast.TypeParameter, 0, len(names))
	for _, name := range names {
		if !IsIdentifier(name) {
			return nil, fmt.Errorf("%s: invalid type parameter %q", rng, name)
		}
		params = append(params, ast.TypeParameter{Name: name, Range: rng})
	}
	return params, nil
}

func (d *decoder) decodeClass(node *classNode, s *scope) (*ast.Class, error) {
	rng, err := rangeOf(node.Range, token.Dummy)
	if err != nil {
		return nil, err
	}
	if !IsIdentifier(node.Name) {
		return nil, fmt.Errorf("%s: invalid class name %q", rng, node.Name)
	}
	class := &ast.Class{Range: rng, Name: node.Name, NameRange: rng}
	if class.TypeParameters, err = d.typeParameters(node.TypeParameters, rng); err != nil {
		return nil, err
	}
	classScope := s.with(node.TypeParameters)

	switch {
	case node.Object != nil && node.Variant != nil:
		return nil, fmt.Errorf("class %s: object and variant are exclusive", node.Name)
	case node.Object != nil:
		class.TypeDefinition, err = d.decodeTypeDefinition(ast.ObjectDefinition, *node.Object, classScope, rng)
	case node.Variant != nil:
		class.TypeDefinition, err = d.decodeTypeDefinition(ast.VariantDefinition, *node.Variant, classScope, rng)
	}
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", node.Name, err)
	}

	for i := range node.Members {
		member, err := d.decodeMember(&node.Members[i], classScope, rng)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", node.Name, err)
		}
		class.Members = append(class.Members, member)
	}
	return class, nil
}

func (d *decoder) decodeTypeDefinition(kind ast.TypeDefinitionKind, fields []fieldNode, s *scope, parent token.Range) (*ast.TypeDefinition, error) {
	def := &ast.TypeDefinition{Range: parent, Kind: kind}
	for _, f := range fields {
		rng, err := rangeOf(f.Range, parent)
		if err != nil {
			return nil, err
		}
		if !IsIdentifier(f.Name) {
			return nil, fmt.Errorf("%s: invalid %s name %q", rng, kind, f.Name)
		}
		t, err := d.requiredType(f.Type, s, rng)
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, &ast.FieldDefinition{Name: f.Name, Range: rng, Type: t, IsPublic: f.Public})
	}
	return def, nil
}

func (d *decoder) requiredType(source string, s *scope, rng token.Range) (typesystem.Type, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%s: a type annotation is required", rng)
	}
	t, err := s.parseType(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rng, err)
	}
	if t == nil {
		return nil, fmt.Errorf("%s: a type annotation is required", rng)
	}
	return t, nil
}

// optionalType treats an empty annotation like `_`.
func (d *decoder) optionalType(source string, s *scope, rng token.Range) (typesystem.Type, error) {
	if source == "" {
		return nil, nil
	}
	t, err := s.parseType(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rng, err)
	}
	return t, nil
}

func (d *decoder) decodeMember(node *memberNode, s *scope, parent token.Range) (*ast.Member, error) {
	rng, err := rangeOf(node.Range, parent)
	if err != nil {
		return nil, err
	}
	if !IsIdentifier(node.Name) {
		return nil, fmt.Errorf("%s: invalid member name %q", rng, node.Name)
	}
	member := &ast.Member{Range: rng, Name: node.Name, NameRange: rng, IsPublic: node.Public}
	switch node.Kind {
	case "", memberKindFunction:
	case memberKindMethod:
		member.IsMethod = true
	default:
		return nil, fmt.Errorf("%s: member kind must be %s or %s, got %q", rng, memberKindFunction, memberKindMethod, node.Kind)
	}
	if member.TypeParameters, err = d.typeParameters(node.TypeParameters, rng); err != nil {
		return nil, err
	}
	memberScope := s.with(node.TypeParameters)
	for _, p := range node.Parameters {
		prng, err := rangeOf(p.Range, rng)
		if err != nil {
			return nil, err
		}
		t, err := d.requiredType(p.Type, memberScope, prng)
		if err != nil {
			return nil, err
		}
		member.Parameters = append(member.Parameters, &ast.Parameter{Name: p.Name, Range: prng, Type: t, TypeRange: prng})
	}
	if member.ReturnType, err = d.requiredType(node.Returns, memberScope, rng); err != nil {
		return nil, err
	}
	if member.Body, err = d.decodeExpr(&node.Body, memberScope, rng); err != nil {
		return nil, fmt.Errorf("member %s: %w", node.Name, err)
	}
	return member, nil
}

func (d *decoder) decodeExprs(nodes []exprNode, s *scope, parent token.Range) ([]ast.Expression, error) {
	exprs := make([]ast.Expression, 0, len(nodes))
	for i := range nodes {
		e, err := d.decodeExpr(&nodes[i], s, parent)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func (d *decoder) decodeExpr(n *exprNode, s *scope, parent token.Range) (ast.Expression, error) {
	rng, err := rangeOf(n.Range, parent)
	if err != nil {
		return nil, err
	}
	if kinds := n.kinds(); len(kinds) != 1 {
		if len(kinds) == 0 {
			return nil, fmt.Errorf("%s: expression has no kind", rng)
		}
		return nil, fmt.Errorf("%s: expression has several kinds: %s", rng, strings.Join(kinds, ", "))
	}

	switch {
	case n.Int != nil:
		return &ast.Literal{Range: rng, Kind: ast.IntLiteral, IntValue: *n.Int}, nil
	case n.Bool != nil:
		return &ast.Literal{Range: rng, Kind: ast.BoolLiteral, BoolValue: *n.Bool}, nil
	case n.String != nil:
		return &ast.Literal{Range: rng, Kind: ast.StringLiteral, StringValue: *n.String}, nil
	case n.This:
		return &ast.This{Range: rng}, nil
	case n.Var != "":
		return &ast.Variable{Range: rng, Name: n.Var}, nil
	case n.Member != "":
		return d.decodeClassMember(n.Member, s, rng)
	case n.Tuple != nil:
		elements, err := d.decodeExprs(n.Tuple, s, rng)
		if err != nil {
			return nil, err
		}
		if len(elements) < 2 {
			return nil, fmt.Errorf("%s: a tuple needs at least two elements", rng)
		}
		return &ast.TupleConstructor{Range: rng, Elements: elements}, nil
	case n.Object != nil:
		return d.decodeObject(*n.Object, s, rng)
	case n.Variant != nil:
		data, err := d.decodeExpr(&n.Variant.Data, s, rng)
		if err != nil {
			return nil, err
		}
		return &ast.VariantConstructor{Range: rng, Tag: n.Variant.Tag, TagRange: rng, Data: data}, nil
	case n.Field != nil:
		object, err := d.decodeExpr(&n.Field.Of, s, rng)
		if err != nil {
			return nil, err
		}
		return &ast.FieldAccess{Range: rng, Object: object, FieldName: n.Field.Name, FieldNameRange: rng}, nil
	case n.Unary != nil:
		return d.decodeUnary(n.Unary, s, rng)
	case n.Call != nil:
		callee, err := d.decodeExpr(&n.Call.Callee, s, rng)
		if err != nil {
			return nil, err
		}
		args, err := d.decodeExprs(n.Call.Args, s, rng)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Range: rng, Callee: callee, Arguments: args}, nil
	case n.Binary != nil:
		return d.decodeBinary(n.Binary, s, rng)
	case n.If != nil:
		parts, err := d.decodeExprs([]exprNode{n.If.Condition, n.If.Then, n.If.Else}, s, rng)
		if err != nil {
			return nil, err
		}
		return &ast.IfElse{Range: rng, Condition: parts[0], Then: parts[1], Else: parts[2]}, nil
	case n.Match != nil:
		return d.decodeMatch(n.Match, s, rng)
	case n.Lambda != nil:
		return d.decodeLambda(n.Lambda, s, rng)
	default:
		return d.decodeBlock(n.Block, s, rng)
	}
}

// decodeClassMember decodes `Class.member`.
func (d *decoder) decodeClassMember(reference string, s *scope, rng token.Range) (ast.Expression, error) {
	className, memberName, ok := strings.Cut(reference, ".")
	if !ok || !IsIdentifier(className) || !IsIdentifier(memberName) {
		return nil, fmt.Errorf("%s: member reference must look like Class.member, got %q", rng, reference)
	}
	return &ast.ClassMember{
		Range:           rng,
		Module:          s.classModule(className),
		ClassName:       className,
		ClassNameRange:  rng,
		MemberName:      memberName,
		MemberNameRange: rng,
	}, nil
}

func (d *decoder) decodeObject(fields []fieldValueNode, s *scope, rng token.Range) (ast.Expression, error) {
	object := &ast.ObjectConstructor{Range: rng}
	for _, f := range fields {
		frng, err := rangeOf(f.Range, rng)
		if err != nil {
			return nil, err
		}
		field := &ast.FieldConstructor{Range: frng, NameRange: frng, Name: f.Name}
		if f.Value != nil {
			if field.Value, err = d.decodeExpr(f.Value, s, frng); err != nil {
				return nil, err
			}
		}
		object.Fields = append(object.Fields, field)
	}
	return object, nil
}

func (d *decoder) decodeUnary(n *unaryNode, s *scope, rng token.Range) (ast.Expression, error) {
	op := ast.UnaryOperator(n.Op)
	if op != ast.OperatorNot && op != ast.OperatorNegate {
		return nil, fmt.Errorf("%s: unknown unary operator %q", rng, n.Op)
	}
	operand, err := d.decodeExpr(&n.Operand, s, rng)
	if err != nil {
		return nil, err
	}
	return &ast.Unary{Range: rng, Operator: op, Operand: operand}, nil
}

func (d *decoder) decodeBinary(n *binaryNode, s *scope, rng token.Range) (ast.Expression, error) {
	op := ast.BinaryOperator(n.Op)
	if op.Class() == ast.UnknownOperator {
		return nil, fmt.Errorf("%s: unknown binary operator %q", rng, n.Op)
	}
	parts, err := d.decodeExprs([]exprNode{n.Left, n.Right}, s, rng)
	if err != nil {
		return nil, err
	}
	return &ast.Binary{Range: rng, Operator: op, Left: parts[0], Right: parts[1]}, nil
}

func (d *decoder) decodeMatch(n *matchNode, s *scope, rng token.Range) (ast.Expression, error) {
	subject, err := d.decodeExpr(&n.Subject, s, rng)
	if err != nil {
		return nil, err
	}
	match := &ast.Match{Range: rng, Subject: subject}
	for i := range n.Cases {
		c := &n.Cases[i]
		crng, err := rangeOf(c.Range, rng)
		if err != nil {
			return nil, err
		}
		mc := &ast.MatchCase{Range: crng, Tag: c.Tag, TagRange: crng}
		if c.Data != "" && c.Data != UnknownType {
			mc.DataVariable = &ast.DataVariable{Name: c.Data, Range: crng}
		}
		if mc.Body, err = d.decodeExpr(&c.Body, s, crng); err != nil {
			return nil, err
		}
		match.Cases = append(match.Cases, mc)
	}
	return match, nil
}

func (d *decoder) decodeLambda(n *lambdaNode, s *scope, rng token.Range) (ast.Expression, error) {
	lambda := &ast.Lambda{Range: rng}
	for _, p := range n.Params {
		prng, err := rangeOf(p.Range, rng)
		if err != nil {
			return nil, err
		}
		t, err := d.optionalType(p.Type, s, prng)
		if err != nil {
			return nil, err
		}
		lambda.Parameters = append(lambda.Parameters, &ast.LambdaParameter{Name: p.Name, Range: prng, Type: t})
	}
	body, err := d.decodeExpr(&n.Body, s, rng)
	if err != nil {
		return nil, err
	}
	lambda.Body = body
	return lambda, nil
}

func (d *decoder) decodeBlock(n *blockNode, s *scope, rng token.Range) (ast.Expression, error) {
	block := &ast.Block{Range: rng}
	for i := range n.Statements {
		stmt, err := d.decodeVal(&n.Statements[i], s, rng)
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	if n.Result != nil {
		result, err := d.decodeExpr(n.Result, s, rng)
		if err != nil {
			return nil, err
		}
		block.Expression = result
	}
	return &ast.StatementBlock{Range: rng, Block: block}, nil
}

func (d *decoder) decodeVal(n *valNode, s *scope, parent token.Range) (*ast.ValStatement, error) {
	rng, err := rangeOf(n.Range, parent)
	if err != nil {
		return nil, err
	}
	pattern, err := d.decodePattern(&n.Pattern, rng)
	if err != nil {
		return nil, err
	}
	annotation, err := d.optionalType(n.Type, s, rng)
	if err != nil {
		return nil, err
	}
	value, err := d.decodeExpr(&n.Value, s, rng)
	if err != nil {
		return nil, err
	}
	return &ast.ValStatement{Range: rng, Pattern: pattern, TypeAnnotation: annotation, Value: value}, nil
}

func (d *decoder) decodePattern(p *patternNode, parent token.Range) (ast.Pattern, error) {
	rng, err := rangeOf(p.Range, parent)
	if err != nil {
		return nil, err
	}
	switch {
	case p.Tuple != nil:
		pattern := &ast.TuplePattern{Range: rng}
		for _, name := range p.Tuple {
			if name == UnknownType {
				name = ""
			}
			pattern.Names = append(pattern.Names, &ast.TupleDestructuredName{Name: name, Range: rng})
		}
		return pattern, nil
	case p.Object != nil:
		pattern := &ast.ObjectPattern{Range: rng}
		for _, entry := range p.Object {
			erng, err := rangeOf(entry.Range, rng)
			if err != nil {
				return nil, err
			}
			name := &ast.ObjectDestructuredName{FieldName: entry.Field, FieldRange: erng, Alias: entry.As}
			if entry.As != "" {
				name.AliasRange = erng
			}
			pattern.Names = append(pattern.Names, name)
		}
		return pattern, nil
	case p.Name == "" || p.Name == UnknownType:
		return &ast.WildcardPattern{Range: rng}, nil
	default:
		return &ast.VariablePattern{Range: rng, Name: p.Name}, nil
	}
}
