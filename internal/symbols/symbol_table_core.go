package symbols

import (
	"github.com/funvibe/tycheck/internal/typesystem"
)

type ScopeType int

const (
	ScopeMember   ScopeType = iota // Parameters and `this` of a class member
	ScopeLambda                    // Lambda parameters; records captured names
	ScopeBlock                     // Statement block
	ScopeMatchArm                  // A match arm and its data variable
)

func (s ScopeType) String() string {
	switch s {
	case ScopeMember:
		return "member"
	case ScopeLambda:
		return "lambda"
	case ScopeBlock:
		return "block"
	case ScopeMatchArm:
		return "match arm"
	default:
		return "unknown"
	}
}

// Symbol is a local value binding.
type Symbol struct {
	Name string
	Type typesystem.Type
}

// layer is one frame of the local typing context.
type layer struct {
	scopeType     ScopeType
	localValues   map[string]typesystem.Type
	capturedOrder []string
	captured      map[string]typesystem.Type
}

func newLayer(scopeType ScopeType) *layer {
	return &layer{
		scopeType:   scopeType,
		localValues: make(map[string]typesystem.Type),
		captured:    make(map[string]typesystem.Type),
	}
}

func (l *layer) capture(name string, t typesystem.Type) {
	if _, ok := l.captured[name]; !ok {
		l.capturedOrder = append(l.capturedOrder, name)
	}
	l.captured[name] = t
}

func (l *layer) capturedSymbols() []Symbol {
	result := make([]Symbol, len(l.capturedOrder))
	for i, name := range l.capturedOrder {
		result[i] = Symbol{Name: name, Type: l.captured[name]}
	}
	return result
}
