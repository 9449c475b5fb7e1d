package typesystem

import "fmt"

// UnexpectedTypeError indicates two types that cannot be unified.
// Both types are fully resolved against the store at the time of failure.
type UnexpectedTypeError struct {
	Expected Type
	Actual   Type
}

func (e *UnexpectedTypeError) Error() string {
	return fmt.Sprintf("Expected: `%s`, actual: `%s`.", e.Expected, e.Actual)
}

func NewUnexpectedTypeError(expected, actual Type) *UnexpectedTypeError {
	return &UnexpectedTypeError{Expected: expected, Actual: actual}
}

// ArityMismatchError indicates composite types of the same shape with a different
// number of components. Kind is "tuple", "arguments" or "type arguments".
type ArityMismatchError struct {
	Kind     string
	Expected int
	Actual   int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("Incorrect %s size. Expected: %d, actual: %d.", e.Kind, e.Expected, e.Actual)
}

func NewArityMismatchError(kind string, expected, actual int) *ArityMismatchError {
	return &ArityMismatchError{Kind: kind, Expected: expected, Actual: actual}
}
