package diagnostics

import (
	"testing"

	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendering(t *testing.T) {
	d := typesystem.NewModuleReference("D")
	tests := []struct {
		err      *DiagnosticError
		expected string
	}{
		{
			NewError(ErrUnresolvedName, d, token.NewRange(3, 3, 3, 22), "C"),
			"D.ty:3:3-3:22: [UnresolvedName]: Name `C` is not resolved.",
		},
		{
			NewError(ErrNonExhaustiveMatch, d, token.NewRange(1, 1, 1, 2), "A, B"),
			"D.ty:1:1-1:2: [NonExhaustiveMatch]: The following tags are not considered in the match: [A, B].",
		},
		{
			NewError(ErrInsufficientTypeInferenceContext, typesystem.NewModuleReference("A", "B"), token.NewRange(2, 5, 2, 6)),
			"A/B.ty:2:5-2:6: [InsufficientTypeInferenceContext]: There is not enough context information to decide the type of this expression.",
		},
		{
			NewError(ErrArityMismatch, d, token.NewRange(1, 1, 1, 2), "tuple", 2, 3),
			"D.ty:1:1-1:2: [ArityMismatch]: Incorrect tuple size. Expected: 2, actual: 3.",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.err.Error())
	}
}

func TestFromTypeError(t *testing.T) {
	m := typesystem.NewModuleReference("A")
	rng := token.NewRange(1, 1, 1, 5)

	err := FromTypeError(m, rng, typesystem.NewUnexpectedTypeError(typesystem.Int, typesystem.Bool))
	assert.Equal(t, ErrUnexpectedType, err.Code)
	assert.Equal(t, "Expected: `int`, actual: `bool`.", err.Message)

	err = FromTypeError(m, rng, typesystem.NewArityMismatchError("arguments", 1, 2))
	assert.Equal(t, ErrArityMismatch, err.Code)
	assert.Equal(t, "Incorrect arguments size. Expected: 1, actual: 2.", err.Message)
}

// ----

func TestCollectorDeduplicatesAndSorts(t *testing.T) {
	a := typesystem.NewModuleReference("A")
	b := typesystem.NewModuleReference("B")
	c := NewCollector()

	c.Add(NewError(ErrUnresolvedName, b, token.NewRange(1, 1, 1, 2), "x"))
	c.Add(NewError(ErrIllegalThis, a, token.NewRange(4, 1, 4, 5)))
	c.Add(NewError(ErrUnresolvedName, a, token.NewRange(2, 1, 2, 2), "y"))
	c.Add(NewError(ErrUnresolvedName, b, token.NewRange(1, 1, 1, 2), "x"))

	errs := c.Errors()
	require.Len(t, errs, 3)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t,
		"A.ty:2:1-2:2: [UnresolvedName]: Name `y` is not resolved.\n"+
			"A.ty:4:1-4:5: [IllegalThis]: Keyword `this` cannot be used in this context.\n"+
			"B.ty:1:1-1:2: [UnresolvedName]: Name `x` is not resolved.\n",
		Render(errs))
}

func TestCollectorKeepsDistinctMessagesAtSameRange(t *testing.T) {
	a := typesystem.NewModuleReference("A")
	c := NewCollector()
	rng := token.NewRange(1, 1, 1, 2)
	c.Add(NewError(ErrUnresolvedName, a, rng, "x"))
	c.Add(NewError(ErrUnresolvedName, a, rng, "y"))
	assert.True(t, c.HasErrors())
	assert.Equal(t, 2, c.Len())
}
