package typesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testModule = NewModuleReference("Test")

func id(name string, args ...Type) Type {
	return NewIdentifierType(testModule, name, args...)
}

func fn(ret Type, args ...Type) Type {
	return NewFunctionType(args, ret)
}

// ---------------------------------------------------------------------------
// Concrete types

func TestCheckAndInferConcrete(t *testing.T) {
	tests := []struct {
		name     string
		expected Type
		actual   Type
		ok       bool
	}{
		{"same primitive", Int, Int, true},
		{"different primitive", Int, Bool, false},
		{"primitive vs identifier", Unit, id("A"), false},
		{"same identifier", id("A", Int), id("A", Int), true},
		{"identifier different name", id("A"), id("B"), false},
		{"identifier different module", id("A"), NewIdentifierType(NewModuleReference("Other"), "A"), false},
		{"identifier different argument", id("A", Int), id("A", Bool), false},
		{"tuple", NewTupleType(Int, Bool), NewTupleType(Int, Bool), true},
		{"tuple element mismatch", NewTupleType(Int, Bool), NewTupleType(Int, Int), false},
		{"function", fn(Int, Bool), fn(Int, Bool), true},
		{"function return mismatch", fn(Int, Bool), fn(String, Bool), false},
		{"function argument mismatch", fn(Int, Bool), fn(Int, Int), false},
		{"function vs tuple", fn(Int), NewTupleType(Int), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTypeResolution()
			result, err := CheckAndInfer(tt.expected, tt.actual, r)
			if !tt.ok {
				require.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.True(t, Equal(tt.expected, result), "got %s", result)
		})
	}
}

func TestCheckAndInferReportsResolvedTypes(t *testing.T) {
	r := NewTypeResolution()
	u := r.Fresh()
	_, err := CheckAndInfer(u, Int, r)
	require.NoError(t, err)

	_, err = CheckAndInfer(NewTupleType(Bool, u), NewTupleType(Bool, String), r)
	var unexpected *UnexpectedTypeError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, "Expected: `[bool * int]`, actual: `[bool * string]`.", unexpected.Error())
}

func TestCheckAndInferArityMismatch(t *testing.T) {
	tests := []struct {
		name     string
		expected Type
		actual   Type
		message  string
	}{
		{"tuple", NewTupleType(Int, Int), NewTupleType(Int), "Incorrect tuple size. Expected: 2, actual: 1."},
		{"function", fn(Int, Int, Int), fn(Int, Int), "Incorrect arguments size. Expected: 2, actual: 1."},
		{"type arguments", id("A", Int), id("A"), "Incorrect type arguments size. Expected: 1, actual: 0."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckAndInfer(tt.expected, tt.actual, NewTypeResolution())
			var arity *ArityMismatchError
			require.ErrorAs(t, err, &arity)
			assert.Equal(t, tt.message, arity.Error())
		})
	}
}

// ---------------------------------------------------------------------------
// Undecided types

func TestCheckAndInferLearnsBinding(t *testing.T) {
	r := NewTypeResolution()
	u := r.Fresh()

	result, err := CheckAndInfer(u, Int, r)
	require.NoError(t, err)
	assert.Equal(t, Int, result)
	assert.Equal(t, Int, r.Resolve(u))

	// Re-unifying an already resolved placeholder is idempotent.
	result, err = CheckAndInfer(Int, u, r)
	require.NoError(t, err)
	assert.Equal(t, Int, result)
	assert.Equal(t, Int, r.Resolve(u))

	_, err = CheckAndInfer(u, Bool, r)
	require.Error(t, err)
	assert.Equal(t, Int, r.Resolve(u))
}

func TestCheckAndInferAliasingIsSymmetric(t *testing.T) {
	for _, swap := range []bool{false, true} {
		r := NewTypeResolution()
		a, b := r.Fresh(), r.Fresh()
		var err error
		if swap {
			_, err = CheckAndInfer(b, a, r)
		} else {
			_, err = CheckAndInfer(a, b, r)
		}
		require.NoError(t, err)
		assert.True(t, r.SameClass(a.Index, b.Index))

		_, err = CheckAndInfer(a, String, r)
		require.NoError(t, err)
		assert.Equal(t, String, r.Resolve(a))
		assert.Equal(t, String, r.Resolve(b))
	}
}

func TestCheckAndInferUnionOfBoundClasses(t *testing.T) {
	r := NewTypeResolution()
	a, b, c := r.Fresh(), r.Fresh(), r.Fresh()
	_, err := CheckAndInfer(a, NewTupleType(Int, c), r)
	require.NoError(t, err)
	_, err = CheckAndInfer(b, NewTupleType(Int, Bool), r)
	require.NoError(t, err)

	result, err := CheckAndInfer(a, b, r)
	require.NoError(t, err)
	assert.Equal(t, "[int * bool]", result.String())
	assert.Equal(t, Bool, r.Resolve(c))

	d := r.Fresh()
	_, err = CheckAndInfer(d, Int, r)
	require.NoError(t, err)
	_, err = CheckAndInfer(d, a, r)
	require.Error(t, err)
}

func TestCheckAndInferComposite(t *testing.T) {
	r := NewTypeResolution()
	args := r.FreshN(2)
	ret := r.Fresh()
	result, err := CheckAndInfer(fn(ret, args...), fn(id("A", Int), Int, String), r)
	require.NoError(t, err)
	assert.Equal(t, "(int, string) -> A<int>", result.String())
	assert.Equal(t, "A<int>", r.Resolve(ret).String())
}

func TestCheckAndInferOccursCheck(t *testing.T) {
	r := NewTypeResolution()
	a := r.Fresh()
	_, err := CheckAndInfer(a, NewTupleType(a, Int), r)
	require.Error(t, err)
	_, bound := r.KnownType(a.Index)
	assert.False(t, bound)
}

func TestCheckAndInferAllConcreteMismatchesFail(t *testing.T) {
	samples := []Type{
		Unit, Bool, Int, String,
		id("A"), id("A", Int), id("B"),
		NewTupleType(Int), NewTupleType(Int, Bool),
		fn(Int), fn(Int, Bool), fn(Bool, Int),
	}
	for _, t1 := range samples {
		for _, t2 := range samples {
			_, err := CheckAndInfer(t1, t2, NewTypeResolution())
			if Equal(t1, t2) {
				assert.NoError(t, err, "%s vs %s", t1, t2)
			} else {
				assert.Error(t, err, "%s vs %s", t1, t2)
			}
		}
	}
}
