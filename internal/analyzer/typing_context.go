package analyzer

import (
	"errors"

	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// MemberTypeInformation is the registered signature of a function or method.
type MemberTypeInformation struct {
	IsPublic       bool
	TypeParameters []string
	Type           typesystem.FunctionType
}

// FieldType is the type of an object field or the payload of a variant tag.
type FieldType struct {
	Type     typesystem.Type
	IsPublic bool
}

// TypeDefinition is the registered shape of a class. Names keeps declaration order.
type TypeDefinition struct {
	Kind     ast.TypeDefinitionKind
	Names    []string
	Mappings map[string]FieldType
}

// Order is the declaration index of name, or -1.
func (d *TypeDefinition) Order(name string) int {
	return slices.Index(d.Names, name)
}

// ClassType is everything other code may know about a class.
type ClassType struct {
	TypeParameters []string
	TypeDefinition *TypeDefinition
	Functions      map[string]*MemberTypeInformation
	Methods        map[string]*MemberTypeInformation
}

func newClassType(typeParameters []string, definition *TypeDefinition) *ClassType {
	return &ClassType{
		TypeParameters: typeParameters,
		TypeDefinition: definition,
		Functions:      make(map[string]*MemberTypeInformation),
		Methods:        make(map[string]*MemberTypeInformation),
	}
}

// ModuleTypingContext maps class names of one module to their types.
type ModuleTypingContext map[string]*ClassType

// GlobalTypingContext is the registry of every class visible to the checker, keyed by
// module. It is owned by one driver or session and is not safe for concurrent use.
type GlobalTypingContext struct {
	modules map[typesystem.ModuleReference]ModuleTypingContext
}

func NewGlobalTypingContext() *GlobalTypingContext {
	return &GlobalTypingContext{modules: make(map[typesystem.ModuleReference]ModuleTypingContext)}
}

func (g *GlobalTypingContext) Module(ref typesystem.ModuleReference) (ModuleTypingContext, bool) {
	m, ok := g.modules[ref]
	return m, ok
}

func (g *GlobalTypingContext) Class(ref typesystem.ModuleReference, className string) (*ClassType, bool) {
	m, ok := g.modules[ref]
	if !ok {
		return nil, false
	}
	c, ok := m[className]
	return c, ok
}

func (g *GlobalTypingContext) setModule(ref typesystem.ModuleReference, m ModuleTypingContext) {
	g.modules[ref] = m
}

func (g *GlobalTypingContext) removeModule(ref typesystem.ModuleReference) {
	delete(g.modules, ref)
}

// Modules lists the registered modules in sorted order, Root included.
func (g *GlobalTypingContext) Modules() []typesystem.ModuleReference {
	refs := lo.Keys(g.modules)
	slices.SortFunc(refs, typesystem.ModuleReference.Compare)
	return refs
}

var (
	errIllegalOtherClassMatch         = errors.New("illegal other class match")
	errUnsupportedClassTypeDefinition = errors.New("unsupported class type definition")
)

// MethodLookupError explains why a method could not be found on a class.
type MethodLookupError struct {
	UnresolvedName string
	Expected       int
	Actual         int
}

func (e *MethodLookupError) Error() string {
	if e.UnresolvedName != "" {
		return "unresolved name " + e.UnresolvedName
	}
	return "type parameter size mismatch"
}

// AccessibleGlobalTypingContext is the view of the global context from inside one class:
// it knows which private members are visible and which type parameters are in scope.
type AccessibleGlobalTypingContext struct {
	CurrentModule  typesystem.ModuleReference
	CurrentClass   string
	global         *GlobalTypingContext
	typeParameters *set.Set[string]
}

func NewAccessibleGlobalTypingContext(global *GlobalTypingContext, module typesystem.ModuleReference, className string, typeParameters []string) *AccessibleGlobalTypingContext {
	return &AccessibleGlobalTypingContext{
		CurrentModule:  module,
		CurrentClass:   className,
		global:         global,
		typeParameters: set.From(typeParameters),
	}
}

func (a *AccessibleGlobalTypingContext) classType(module typesystem.ModuleReference, className string) (*ClassType, bool) {
	return a.global.Class(module, className)
}

func (a *AccessibleGlobalTypingContext) isCurrentClass(module typesystem.ModuleReference, className string) bool {
	return module == a.CurrentModule && className == a.CurrentClass
}

// GetClassFunctionType returns the type of a static function with its type parameters
// replaced by fresh placeholders from r, and those placeholders in order.
func (a *AccessibleGlobalTypingContext) GetClassFunctionType(module typesystem.ModuleReference, className, member string, r *typesystem.TypeResolution) (typesystem.Type, []typesystem.Type, bool) {
	class, ok := a.classType(module, className)
	if !ok {
		return nil, nil, false
	}
	info, ok := class.Functions[member]
	if !ok {
		return nil, nil, false
	}
	if !info.IsPublic && !a.isCurrentClass(module, className) {
		return nil, nil, false
	}
	t, undecided := typesystem.UndecideTypeParameters(info.Type, info.TypeParameters, r)
	return t, undecided, true
}

// GetClassMethodType returns the type of a method on an instance of the class whose type
// arguments are classTypeArguments. The method's own type parameters are replaced by fresh
// placeholders from r, returned in order.
func (a *AccessibleGlobalTypingContext) GetClassMethodType(module typesystem.ModuleReference, className, method string, classTypeArguments []typesystem.Type, r *typesystem.TypeResolution) (typesystem.FunctionType, []typesystem.Type, error) {
	class, ok := a.classType(module, className)
	if !ok {
		return typesystem.FunctionType{}, nil, &MethodLookupError{UnresolvedName: className}
	}
	info, ok := class.Methods[method]
	if !ok || (!info.IsPublic && !a.isCurrentClass(module, className)) {
		return typesystem.FunctionType{}, nil, &MethodLookupError{UnresolvedName: method}
	}
	if len(classTypeArguments) != len(class.TypeParameters) {
		return typesystem.FunctionType{}, nil, &MethodLookupError{Expected: len(class.TypeParameters), Actual: len(classTypeArguments)}
	}
	partiallyFixed, undecided := typesystem.UndecideTypeParameters(info.Type, info.TypeParameters, r)
	fullyFixed := typesystem.ReplaceTypeIdentifiers(partiallyFixed, typesystem.SubstFromParameters(class.TypeParameters, classTypeArguments))
	return fullyFixed.(typesystem.FunctionType), undecided, nil
}

// GetCurrentClassTypeDefinition returns the definition of the enclosing class and its type
// parameters.
func (a *AccessibleGlobalTypingContext) GetCurrentClassTypeDefinition() (*TypeDefinition, []string) {
	class, ok := a.classType(a.CurrentModule, a.CurrentClass)
	if !ok || class.TypeDefinition == nil {
		return nil, nil
	}
	return class.TypeDefinition, class.TypeParameters
}

// ResolveTypeDefinition returns the fields or tags of the class named by t with t's type
// arguments substituted. Variant definitions are only visible from inside their own class.
func (a *AccessibleGlobalTypingContext) ResolveTypeDefinition(t typesystem.IdentifierType, kind ast.TypeDefinitionKind) (*TypeDefinition, error) {
	if kind == ast.VariantDefinition && !a.isCurrentClass(t.Module, t.Identifier) {
		return nil, errIllegalOtherClassMatch
	}
	class, ok := a.classType(t.Module, t.Identifier)
	if !ok || class.TypeDefinition == nil || class.TypeDefinition.Kind != kind {
		return nil, errUnsupportedClassTypeDefinition
	}
	subst := typesystem.SubstFromParameters(class.TypeParameters, t.TypeArguments)
	mappings := make(map[string]FieldType, len(class.TypeDefinition.Mappings))
	for name, field := range class.TypeDefinition.Mappings {
		mappings[name] = FieldType{Type: typesystem.ReplaceTypeIdentifiers(field.Type, subst), IsPublic: field.IsPublic}
	}
	return &TypeDefinition{Kind: kind, Names: class.TypeDefinition.Names, Mappings: mappings}, nil
}

// ThisType is the type of `this` inside the current class: the class applied to its own
// type parameters.
func (a *AccessibleGlobalTypingContext) ThisType() typesystem.IdentifierType {
	var args []typesystem.Type
	if class, ok := a.classType(a.CurrentModule, a.CurrentClass); ok {
		args = lo.Map(class.TypeParameters, func(p string, _ int) typesystem.Type {
			return typesystem.NewIdentifierType(a.CurrentModule, p)
		})
	}
	return typesystem.NewIdentifierType(a.CurrentModule, a.CurrentClass, args...)
}

// IdentifierTypeIsWellDefined reports whether an identifier type names a type parameter
// in scope (with no arguments) or a registered class with the right number of arguments.
func (a *AccessibleGlobalTypingContext) IdentifierTypeIsWellDefined(module typesystem.ModuleReference, className string, typeArgumentCount int) bool {
	if a.typeParameters.Contains(className) {
		return typeArgumentCount == 0
	}
	class, ok := a.classType(module, className)
	return ok && len(class.TypeParameters) == typeArgumentCount
}

// WithAdditionalTypeParameters returns a view that also has names in scope.
func (a *AccessibleGlobalTypingContext) WithAdditionalTypeParameters(names []string) *AccessibleGlobalTypingContext {
	params := a.typeParameters.Copy()
	params.InsertSlice(names)
	return &AccessibleGlobalTypingContext{
		CurrentModule:  a.CurrentModule,
		CurrentClass:   a.CurrentClass,
		global:         a.global,
		typeParameters: params,
	}
}
