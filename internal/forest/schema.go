package forest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// The structs below mirror the on-disk module format. A module file looks like:
//
//	imports:
//	  - from: A.B
//	    classes: [B]
//	classes:
//	  - name: C
//	    typeParameters: [T]
//	    variant:
//	      - { name: Int, type: int, public: true }
//	    members:
//	      - name: toInt
//	        kind: method
//	        public: true
//	        returns: int
//	        body: { match: { subject: { this: true }, cases: [...] } }
//
// Every node takes an optional `range: "line:col-line:col"`. Every expression is a mapping
// with exactly one kind key (`int`, `var`, `call`, ...).

type moduleFile struct {
	Imports []importNode `yaml:"imports"`
	Classes []classNode  `yaml:"classes"`
}

type importNode struct {
	From    string   `yaml:"from"`
	Classes []string `yaml:"classes"`
	Range   string   `yaml:"range"`
}

type classNode struct {
	Name           string       `yaml:"name"`
	Range          string       `yaml:"range"`
	TypeParameters []string     `yaml:"typeParameters"`
	Object         *[]fieldNode `yaml:"object"`
	Variant        *[]fieldNode `yaml:"variant"`
	Members        []memberNode `yaml:"members"`
}

type fieldNode struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Public bool   `yaml:"public"`
	Range  string `yaml:"range"`
}

const (
	memberKindFunction = "function"
	memberKindMethod   = "method"
)

type memberNode struct {
	Name           string      `yaml:"name"`
	Range          string      `yaml:"range"`
	Kind           string      `yaml:"kind"`
	Public         bool        `yaml:"public"`
	TypeParameters []string    `yaml:"typeParameters"`
	Parameters     []paramNode `yaml:"parameters"`
	Returns        string      `yaml:"returns"`
	Body           exprNode    `yaml:"body"`
}

type paramNode struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Range string `yaml:"range"`
}

type exprNode struct {
	Range   string            `yaml:"range"`
	Int     *int64            `yaml:"int"`
	Bool    *bool             `yaml:"bool"`
	String  *string           `yaml:"string"`
	This    bool              `yaml:"this"`
	Var     string            `yaml:"var"`
	Member  string            `yaml:"member"`
	Tuple   []exprNode        `yaml:"tuple"`
	Object  *[]fieldValueNode `yaml:"object"`
	Variant *variantNode      `yaml:"variant"`
	Field   *fieldAccessNode  `yaml:"field"`
	Unary   *unaryNode        `yaml:"unary"`
	Call    *callNode         `yaml:"call"`
	Binary  *binaryNode       `yaml:"binary"`
	If      *ifNode           `yaml:"if"`
	Match   *matchNode        `yaml:"match"`
	Lambda  *lambdaNode       `yaml:"lambda"`
	Block   *blockNode        `yaml:"block"`
}

// kinds lists the kind keys present on the node.
func (n *exprNode) kinds() []string {
	var kinds []string
	add := func(present bool, name string) {
		if present {
			kinds = append(kinds, name)
		}
	}
	add(n.Int != nil, "int")
	add(n.Bool != nil, "bool")
	add(n.String != nil, "string")
	add(n.This, "this")
	add(n.Var != "", "var")
	add(n.Member != "", "member")
	add(n.Tuple != nil, "tuple")
	add(n.Object != nil, "object")
	add(n.Variant != nil, "variant")
	add(n.Field != nil, "field")
	add(n.Unary != nil, "unary")
	add(n.Call != nil, "call")
	add(n.Binary != nil, "binary")
	add(n.If != nil, "if")
	add(n.Match != nil, "match")
	add(n.Lambda != nil, "lambda")
	add(n.Block != nil, "block")
	return kinds
}

type fieldValueNode struct {
	Name  string    `yaml:"name"`
	Value *exprNode `yaml:"value"`
	Range string    `yaml:"range"`
}

type variantNode struct {
	Tag  string   `yaml:"tag"`
	Data exprNode `yaml:"data"`
}

type fieldAccessNode struct {
	Of   exprNode `yaml:"of"`
	Name string   `yaml:"name"`
}

type unaryNode struct {
	Op      string   `yaml:"op"`
	Operand exprNode `yaml:"operand"`
}

type callNode struct {
	Callee exprNode   `yaml:"callee"`
	Args   []exprNode `yaml:"args"`
}

type binaryNode struct {
	Op    string   `yaml:"op"`
	Left  exprNode `yaml:"left"`
	Right exprNode `yaml:"right"`
}

type ifNode struct {
	Condition exprNode `yaml:"condition"`
	Then      exprNode `yaml:"then"`
	Else      exprNode `yaml:"else"`
}

type matchNode struct {
	Subject exprNode   `yaml:"subject"`
	Cases   []caseNode `yaml:"cases"`
}

type caseNode struct {
	Tag   string   `yaml:"tag"`
	Data  string   `yaml:"data"`
	Body  exprNode `yaml:"body"`
	Range string   `yaml:"range"`
}

type lambdaNode struct {
	Params []paramNode `yaml:"params"`
	Body   exprNode    `yaml:"body"`
}

type blockNode struct {
	Statements []valNode `yaml:"statements"`
	Result     *exprNode `yaml:"result"`
}

type valNode struct {
	Pattern patternNode `yaml:"val"`
	Type    string      `yaml:"type"`
	Value   exprNode    `yaml:"value"`
	Range   string      `yaml:"range"`
}

// patternNode is either a plain name (`val: x`, `val: _`) or a destructuring mapping
// (`val: { tuple: [a, _] }`, `val: { object: [{ field: a, as: b }] }`).
type patternNode struct {
	Name   string
	Tuple  []string
	Object []objectNameNode
	Range  string
}

type objectNameNode struct {
	Field string `yaml:"field"`
	As    string `yaml:"as"`
	Range string `yaml:"range"`
}

func (p *patternNode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		p.Name = value.Value
		return nil
	}
	var raw struct {
		Tuple  []string         `yaml:"tuple"`
		Object []objectNameNode `yaml:"object"`
		Range  string           `yaml:"range"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if (raw.Tuple == nil) == (raw.Object == nil) {
		return fmt.Errorf("line %d: a pattern needs exactly one of tuple or object", value.Line)
	}
	p.Tuple, p.Object, p.Range = raw.Tuple, raw.Object, raw.Range
	return nil
}
