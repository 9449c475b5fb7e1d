package diagnostics

import (
	"errors"
	"fmt"

	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
)

// ErrorCode is the kind of a diagnostic. Its value is what gets rendered in brackets.
type ErrorCode string

const (
	ErrUnexpectedType                   ErrorCode = "UnexpectedType"
	ErrUnexpectedTypeKind               ErrorCode = "UnexpectedTypeKind"
	ErrUnresolvedName                   ErrorCode = "UnresolvedName"
	ErrCollision                        ErrorCode = "Collision"
	ErrDuplicateFieldDeclaration        ErrorCode = "DuplicateFieldDeclaration"
	ErrInconsistentFieldsInObject       ErrorCode = "InconsistentFieldsInObject"
	ErrExtraFieldInObject               ErrorCode = "ExtraFieldInObject"
	ErrArityMismatch                    ErrorCode = "ArityMismatch"
	ErrTypeParameterSizeMismatch        ErrorCode = "TypeParameterSizeMismatch"
	ErrIllegalOtherClassMatch           ErrorCode = "IllegalOtherClassMatch"
	ErrIllegalThis                      ErrorCode = "IllegalThis"
	ErrUnsupportedClassTypeDefinition   ErrorCode = "UnsupportedClassTypeDefinition"
	ErrNonExhaustiveMatch               ErrorCode = "NonExhaustiveMatch"
	ErrInsufficientTypeInferenceContext ErrorCode = "InsufficientTypeInferenceContext"
	ErrNotWellDefinedIdentifier         ErrorCode = "NotWellDefinedIdentifier"
	ErrCyclicDependency                 ErrorCode = "CyclicDependency"
)

var errorMessages = map[ErrorCode]string{
	ErrUnexpectedType:                   "Expected: `%s`, actual: `%s`.",
	ErrUnexpectedTypeKind:               "Expected kind: `%s`, actual: `%s`.",
	ErrUnresolvedName:                   "Name `%s` is not resolved.",
	ErrCollision:                        "Name `%s` collides with a previously defined name.",
	ErrDuplicateFieldDeclaration:        "Field name `%s` is declared twice.",
	ErrInconsistentFieldsInObject:       "Inconsistent fields. Expected: `%s`, actual: `%s`.",
	ErrExtraFieldInObject:               "Field `%s` is not declared in the class.",
	ErrArityMismatch:                    "Incorrect %s size. Expected: %d, actual: %d.",
	ErrTypeParameterSizeMismatch:        "Incorrect type parameter size. Expected: %d, actual: %d.",
	ErrIllegalOtherClassMatch:           "It is illegal to match on a value of other class's type.",
	ErrIllegalThis:                      "Keyword `this` cannot be used in this context.",
	ErrUnsupportedClassTypeDefinition:   "Expect the current class to have `%s` type definition, but it doesn't.",
	ErrNonExhaustiveMatch:               "The following tags are not considered in the match: [%s].",
	ErrInsufficientTypeInferenceContext: "There is not enough context information to decide the type of this expression.",
	ErrNotWellDefinedIdentifier:         "`%s` is not well defined.",
	ErrCyclicDependency:                 "Module `%s` participates in an import cycle: %s.",
}

// DiagnosticError is a problem in the checked program, attached to a source range.
type DiagnosticError struct {
	Code    ErrorCode
	Module  typesystem.ModuleReference
	Range   token.Range
	Message string
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s:%s: [%s]: %s", e.Module.FileName(), e.Range, e.Code, e.Message)
}

// Key identifies a diagnostic for deduplication.
func (e *DiagnosticError) Key() string {
	return fmt.Sprintf("%s:%s:%s:%s", e.Module, e.Range, e.Code, e.Message)
}

// NewError formats the message of code with args.
func NewError(code ErrorCode, module typesystem.ModuleReference, rng token.Range, args ...interface{}) *DiagnosticError {
	template, ok := errorMessages[code]
	if !ok {
		template = string(code)
	}
	message := template
	if len(args) > 0 {
		message = fmt.Sprintf(template, args...)
	}
	return &DiagnosticError{Code: code, Module: module, Range: rng, Message: message}
}

// FromTypeError converts a unification failure into a diagnostic.
func FromTypeError(module typesystem.ModuleReference, rng token.Range, err error) *DiagnosticError {
	var unexpected *typesystem.UnexpectedTypeError
	if errors.As(err, &unexpected) {
		return NewError(ErrUnexpectedType, module, rng, unexpected.Expected, unexpected.Actual)
	}
	var arity *typesystem.ArityMismatchError
	if errors.As(err, &arity) {
		return NewError(ErrArityMismatch, module, rng, arity.Kind, arity.Expected, arity.Actual)
	}
	return &DiagnosticError{Code: ErrUnexpectedType, Module: module, Range: rng, Message: err.Error()}
}
