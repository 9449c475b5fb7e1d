package ast

import (
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
)

// LiteralKind tells which value field of a Literal is set.
type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	BoolLiteral
	StringLiteral
)

// Literal is an int, bool or string constant.
type Literal struct {
	Range       token.Range
	Kind        LiteralKind
	IntValue    int64
	BoolValue   bool
	StringValue string
}

func (e *Literal) GetRange() token.Range { return e.Range }
func (e *Literal) expressionNode()       {}

// GetType of a literal is decided by its kind.
func (e *Literal) GetType() typesystem.Type {
	switch e.Kind {
	case BoolLiteral:
		return typesystem.Bool
	case StringLiteral:
		return typesystem.String
	default:
		return typesystem.Int
	}
}

// This is the `this` keyword.
type This struct {
	Range token.Range
	Type  typesystem.Type
}

func (e *This) GetRange() token.Range    { return e.Range }
func (e *This) GetType() typesystem.Type { return e.Type }
func (e *This) expressionNode()          {}

// Variable refers to a local value.
type Variable struct {
	Range token.Range
	Type  typesystem.Type
	Name  string
}

func (e *Variable) GetRange() token.Range    { return e.Range }
func (e *Variable) GetType() typesystem.Type { return e.Type }
func (e *Variable) expressionNode()          {}

// ClassMember refers to a static function: `A.a`.
// TypeArguments is filled by the checker with the instantiation of the function's
// type parameters.
type ClassMember struct {
	Range           token.Range
	Type            typesystem.Type
	Module          typesystem.ModuleReference
	ClassName       string
	ClassNameRange  token.Range
	MemberName      string
	MemberNameRange token.Range
	TypeArguments   []typesystem.Type
}

func (e *ClassMember) GetRange() token.Range    { return e.Range }
func (e *ClassMember) GetType() typesystem.Type { return e.Type }
func (e *ClassMember) expressionNode()          {}

// TupleConstructor is `[e1, e2, ...]`.
type TupleConstructor struct {
	Range    token.Range
	Type     typesystem.Type
	Elements []Expression
}

func (e *TupleConstructor) GetRange() token.Range    { return e.Range }
func (e *TupleConstructor) GetType() typesystem.Type { return e.Type }
func (e *TupleConstructor) expressionNode()          {}

// FieldConstructor is one `name: value` entry of an object constructor. A nil Value is
// the shorthand `{ name }`, which reads the local value of the same name.
type FieldConstructor struct {
	Range     token.Range
	NameRange token.Range
	Name      string
	Type      typesystem.Type
	Value     Expression
}

// ObjectConstructor is `{ a: e1, b }` for the enclosing object class.
type ObjectConstructor struct {
	Range  token.Range
	Type   typesystem.Type
	Fields []*FieldConstructor
}

func (e *ObjectConstructor) GetRange() token.Range    { return e.Range }
func (e *ObjectConstructor) GetType() typesystem.Type { return e.Type }
func (e *ObjectConstructor) expressionNode()          {}

// VariantConstructor is `Tag(data)` for the enclosing variant class.
type VariantConstructor struct {
	Range    token.Range
	Type     typesystem.Type
	Tag      string
	TagRange token.Range
	TagOrder int
	Data     Expression
}

func (e *VariantConstructor) GetRange() token.Range    { return e.Range }
func (e *VariantConstructor) GetType() typesystem.Type { return e.Type }
func (e *VariantConstructor) expressionNode()          {}

// FieldAccess is `object.field`. FieldOrder is the declaration index of the field,
// filled by the checker.
type FieldAccess struct {
	Range          token.Range
	Type           typesystem.Type
	Object         Expression
	FieldName      string
	FieldNameRange token.Range
	FieldOrder     int
}

func (e *FieldAccess) GetRange() token.Range    { return e.Range }
func (e *FieldAccess) GetType() typesystem.Type { return e.Type }
func (e *FieldAccess) expressionNode()          {}

// MethodAccess is produced by the checker when `object.name` resolves to a method of
// the object's class. It never appears in unchecked input. TypeArguments instantiate the
// method's own type parameters, in declaration order.
type MethodAccess struct {
	Range           token.Range
	Type            typesystem.Type
	Object          Expression
	MethodName      string
	MethodNameRange token.Range
	TypeArguments   []typesystem.Type
}

func (e *MethodAccess) GetRange() token.Range    { return e.Range }
func (e *MethodAccess) GetType() typesystem.Type { return e.Type }
func (e *MethodAccess) expressionNode()          {}

type UnaryOperator string

const (
	OperatorNot    UnaryOperator = "!"
	OperatorNegate UnaryOperator = "-"
)

// Unary is `!e` or `-e`.
type Unary struct {
	Range    token.Range
	Type     typesystem.Type
	Operator UnaryOperator
	Operand  Expression
}

func (e *Unary) GetRange() token.Range    { return e.Range }
func (e *Unary) GetType() typesystem.Type { return e.Type }
func (e *Unary) expressionNode()          {}

// FunctionCall is `callee(arguments...)`.
type FunctionCall struct {
	Range     token.Range
	Type      typesystem.Type
	Callee    Expression
	Arguments []Expression
}

func (e *FunctionCall) GetRange() token.Range    { return e.Range }
func (e *FunctionCall) GetType() typesystem.Type { return e.Type }
func (e *FunctionCall) expressionNode()          {}

type BinaryOperator string

const (
	OperatorMul    BinaryOperator = "*"
	OperatorDiv    BinaryOperator = "/"
	OperatorMod    BinaryOperator = "%"
	OperatorPlus   BinaryOperator = "+"
	OperatorMinus  BinaryOperator = "-"
	OperatorLt     BinaryOperator = "<"
	OperatorLe     BinaryOperator = "<="
	OperatorGt     BinaryOperator = ">"
	OperatorGe     BinaryOperator = ">="
	OperatorEq     BinaryOperator = "=="
	OperatorNe     BinaryOperator = "!="
	OperatorAnd    BinaryOperator = "&&"
	OperatorOr     BinaryOperator = "||"
	OperatorConcat BinaryOperator = "::"
)

// BinaryOperatorClass groups operators by the operand types they require.
type BinaryOperatorClass int

const (
	ArithmeticOperator BinaryOperatorClass = iota // int operands, int result
	ComparisonOperator                            // int operands, bool result
	BooleanOperator                               // bool operands, bool result
	ConcatOperator                                // string operands, string result
	EqualityOperator                              // operands of one type, bool result
	UnknownOperator
)

func (op BinaryOperator) Class() BinaryOperatorClass {
	switch op {
	case OperatorMul, OperatorDiv, OperatorMod, OperatorPlus, OperatorMinus:
		return ArithmeticOperator
	case OperatorLt, OperatorLe, OperatorGt, OperatorGe:
		return ComparisonOperator
	case OperatorAnd, OperatorOr:
		return BooleanOperator
	case OperatorConcat:
		return ConcatOperator
	case OperatorEq, OperatorNe:
		return EqualityOperator
	default:
		return UnknownOperator
	}
}

// Binary is `left op right`.
type Binary struct {
	Range    token.Range
	Type     typesystem.Type
	Operator BinaryOperator
	Left     Expression
	Right    Expression
}

func (e *Binary) GetRange() token.Range    { return e.Range }
func (e *Binary) GetType() typesystem.Type { return e.Type }
func (e *Binary) expressionNode()          {}

// IfElse is `if c then e1 else e2`.
type IfElse struct {
	Range     token.Range
	Type      typesystem.Type
	Condition Expression
	Then      Expression
	Else      Expression
}

func (e *IfElse) GetRange() token.Range    { return e.Range }
func (e *IfElse) GetType() typesystem.Type { return e.Type }
func (e *IfElse) expressionNode()          {}

// DataVariable binds the payload of a matched tag.
type DataVariable struct {
	Name  string
	Range token.Range
	Type  typesystem.Type
}

// MatchCase is `| Tag data -> body`.
type MatchCase struct {
	Range        token.Range
	Tag          string
	TagRange     token.Range
	TagOrder     int
	DataVariable *DataVariable
	Body         Expression
}

// Match is `match (subject) { cases... }`.
type Match struct {
	Range   token.Range
	Type    typesystem.Type
	Subject Expression
	Cases   []*MatchCase
}

func (e *Match) GetRange() token.Range    { return e.Range }
func (e *Match) GetType() typesystem.Type { return e.Type }
func (e *Match) expressionNode()          {}

// LambdaParameter has an optional annotation; nil means "infer".
type LambdaParameter struct {
	Name  string
	Range token.Range
	Type  typesystem.Type
}

// Lambda is `(params) -> body`. Captured is filled by the checker with the outer local
// values the body reads.
type Lambda struct {
	Range      token.Range
	Type       typesystem.Type
	Parameters []*LambdaParameter
	Captured   []CapturedValue
	Body       Expression
}

// CapturedValue is an outer local value read by a lambda.
type CapturedValue struct {
	Name string
	Type typesystem.Type
}

func (e *Lambda) GetRange() token.Range    { return e.Range }
func (e *Lambda) GetType() typesystem.Type { return e.Type }
func (e *Lambda) expressionNode()          {}

// StatementBlock is `{ val ...; expression }`.
type StatementBlock struct {
	Range token.Range
	Type  typesystem.Type
	Block *Block
}

func (e *StatementBlock) GetRange() token.Range    { return e.Range }
func (e *StatementBlock) GetType() typesystem.Type { return e.Type }
func (e *StatementBlock) expressionNode()          {}
