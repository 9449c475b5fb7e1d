package ast

import (
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
)

// Block is the body of a statement block. Expression is nil when the block only binds
// values, in which case it evaluates to unit.
type Block struct {
	Range      token.Range
	Statements []*ValStatement
	Expression Expression
}

// ValStatement is `val pattern: annotation = value;`.
type ValStatement struct {
	Range          token.Range
	Pattern        Pattern
	TypeAnnotation typesystem.Type
	Value          Expression
}

func (s *ValStatement) GetRange() token.Range { return s.Range }

// Pattern is the left side of a val statement.
type Pattern interface {
	Node
	patternNode()
}

// TupleDestructuredName is one slot of a tuple pattern. An empty Name is a wildcard.
type TupleDestructuredName struct {
	Name  string
	Range token.Range
	Type  typesystem.Type
}

// TuplePattern is `[a, _, c]`.
type TuplePattern struct {
	Range token.Range
	Names []*TupleDestructuredName
}

func (p *TuplePattern) GetRange() token.Range { return p.Range }
func (p *TuplePattern) patternNode()          {}

// ObjectDestructuredName is `field` or `field as alias` inside an object pattern.
type ObjectDestructuredName struct {
	FieldName  string
	FieldRange token.Range
	Alias      string
	AliasRange token.Range
	Type       typesystem.Type
	FieldOrder int
}

// BoundName is the local name introduced by the entry.
func (n *ObjectDestructuredName) BoundName() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.FieldName
}

// ObjectPattern is `{ a, b as c }`.
type ObjectPattern struct {
	Range token.Range
	Names []*ObjectDestructuredName
}

func (p *ObjectPattern) GetRange() token.Range { return p.Range }
func (p *ObjectPattern) patternNode()          {}

// VariablePattern binds the whole value.
type VariablePattern struct {
	Range token.Range
	Name  string
}

func (p *VariablePattern) GetRange() token.Range { return p.Range }
func (p *VariablePattern) patternNode()          {}

// WildcardPattern discards the value.
type WildcardPattern struct {
	Range token.Range
}

func (p *WildcardPattern) GetRange() token.Range { return p.Range }
func (p *WildcardPattern) patternNode()          {}
