package forest

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/tycheck/internal/config"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/hashicorp/go-set/v3"
	"github.com/smasher164/xid"
)

// UnknownType is the annotation that leaves a type to inference.
const UnknownType = "_"

// scope resolves class names written in a module file to the module defining them.
type scope struct {
	module         typesystem.ModuleReference
	typeParameters *set.Set[string]
	imports        map[string]typesystem.ModuleReference
}

func newScope(module typesystem.ModuleReference, imports map[string]typesystem.ModuleReference) *scope {
	return &scope{module: module, typeParameters: set.New[string](0), imports: imports}
}

// with returns a scope that also sees names as type parameters.
func (s *scope) with(names []string) *scope {
	params := s.typeParameters.Copy()
	params.InsertSlice(names)
	return &scope{module: s.module, typeParameters: params, imports: s.imports}
}

// classModule resolves a class name: type parameters, then imports, then the builtins,
// then the current module.
func (s *scope) classModule(name string) typesystem.ModuleReference {
	if s.typeParameters.Contains(name) {
		return s.module
	}
	if ref, ok := s.imports[name]; ok {
		return ref
	}
	if name == config.BuiltinsClassName {
		return typesystem.Root
	}
	return s.module
}

// ParseType parses an annotation in module's scope with no imports or type parameters.
func ParseType(module typesystem.ModuleReference, source string) (typesystem.Type, error) {
	return newScope(module, nil).parseType(source)
}

// parseType parses the annotation syntax:
//
//	unit | bool | int | string | _
//	Name | Name<T1, T2>
//	[T1 * T2]
//	(T1, T2) -> R
//
// `_` yields nil.
func (s *scope) parseType(source string) (typesystem.Type, error) {
	if strings.TrimSpace(source) == UnknownType {
		return nil, nil
	}
	p := &typeParser{scope: s, source: source}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.rest())
	}
	return t, nil
}

type typeParser struct {
	scope  *scope
	source string
	pos    int
}

func (p *typeParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("type %q, offset %d: %s", p.source, p.pos, fmt.Sprintf(format, args...))
}

func (p *typeParser) done() bool   { return p.pos >= len(p.source) }
func (p *typeParser) rest() string { return p.source[p.pos:] }

func (p *typeParser) peek() rune {
	if p.done() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(p.rest())
	return r
}

func (p *typeParser) advance() {
	_, size := utf8.DecodeRuneInString(p.rest())
	p.pos += size
}

func (p *typeParser) skipSpace() {
	for !p.done() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

func (p *typeParser) consume(s string) bool {
	if len(p.rest()) >= len(s) && p.rest()[:len(s)] == s {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *typeParser) expect(s string) error {
	p.skipSpace()
	if !p.consume(s) {
		if p.done() {
			return p.errorf("expected %q, got end of input", s)
		}
		return p.errorf("expected %q", s)
	}
	return nil
}

func (p *typeParser) parse() (typesystem.Type, error) {
	p.skipSpace()
	switch {
	case p.consume("["):
		return p.parseTuple()
	case p.consume("("):
		return p.parseFunction()
	case isIdentifierStart(p.peek()):
		return p.parseIdentifier()
	case p.done():
		return nil, p.errorf("expected a type, got end of input")
	default:
		return nil, p.errorf("unexpected %q", string(p.peek()))
	}
}

func (p *typeParser) parseList(separator, closing string) ([]typesystem.Type, error) {
	var types []typesystem.Type
	p.skipSpace()
	if p.consume(closing) {
		return types, nil
	}
	for {
		t, err := p.parse()
		if err != nil {
			return nil, err
		}
		types = append(types, t)
		p.skipSpace()
		if p.consume(closing) {
			return types, nil
		}
		if err := p.expect(separator); err != nil {
			return nil, err
		}
	}
}

func (p *typeParser) parseTuple() (typesystem.Type, error) {
	elements, err := p.parseList("*", "]")
	if err != nil {
		return nil, err
	}
	if len(elements) < 2 {
		return nil, p.errorf("a tuple type needs at least two elements")
	}
	return typesystem.NewTupleType(elements...), nil
}

func (p *typeParser) parseFunction() (typesystem.Type, error) {
	arguments, err := p.parseList(",", ")")
	if err != nil {
		return nil, err
	}
	if err := p.expect("->"); err != nil {
		return nil, err
	}
	ret, err := p.parse()
	if err != nil {
		return nil, err
	}
	return typesystem.NewFunctionType(arguments, ret), nil
}

func (p *typeParser) parseIdentifier() (typesystem.Type, error) {
	name := p.identifier()
	if name == UnknownType {
		return nil, p.errorf("%s is only allowed as a whole annotation", UnknownType)
	}
	if typesystem.IsPrimitiveName(name) {
		return typesystem.PrimitiveType{Name: name}, nil
	}
	p.skipSpace()
	var arguments []typesystem.Type
	if p.consume("<") {
		args, err := p.parseList(",", ">")
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, p.errorf("empty type argument list for %s", name)
		}
		arguments = args
	}
	return typesystem.NewIdentifierType(p.scope.classModule(name), name, arguments...), nil
}

func (p *typeParser) identifier() string {
	start := p.pos
	p.advance()
	for !p.done() && xid.Continue(p.peek()) {
		p.advance()
	}
	return p.source[start:p.pos]
}

func isIdentifierStart(ch rune) bool {
	return ch == '_' || xid.Start(ch)
}

// IsIdentifier reports whether name is a valid class, member or module segment name.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, ch := range name {
		if i == 0 && !isIdentifierStart(ch) {
			return false
		}
		if i > 0 && !xid.Continue(ch) {
			return false
		}
	}
	return true
}
