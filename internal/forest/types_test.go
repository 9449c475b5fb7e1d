package forest

import (
	"testing"

	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRef = typesystem.NewModuleReference("Test")

func TestParseType(t *testing.T) {
	tests := []struct {
		source   string
		expected typesystem.Type
	}{
		{"int", typesystem.Int},
		{"  string ", typesystem.String},
		{"_", nil},
		{"Box", typesystem.NewIdentifierType(testRef, "Box")},
		{"Box<int>", typesystem.NewIdentifierType(testRef, "Box", typesystem.Int)},
		{"Pair<int, Box<bool>>", typesystem.NewIdentifierType(testRef, "Pair",
			typesystem.Int, typesystem.NewIdentifierType(testRef, "Box", typesystem.Bool))},
		{"[int * bool]", typesystem.NewTupleType(typesystem.Int, typesystem.Bool)},
		{"() -> unit", typesystem.NewFunctionType(nil, typesystem.Unit)},
		{"(int, bool) -> (int) -> string", typesystem.NewFunctionType(
			[]typesystem.Type{typesystem.Int, typesystem.Bool},
			typesystem.NewFunctionType([]typesystem.Type{typesystem.Int}, typesystem.String))},
		{"Builtins", typesystem.NewIdentifierType(typesystem.Root, "Builtins")},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got, err := ParseType(testRef, tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	tests := []struct {
		source string
		errMsg string
	}{
		{"", "expected a type, got end of input"},
		{"Box<>", "empty type argument list"},
		{"[int]", "at least two elements"},
		{"(int) int", `expected "->"`},
		{"int extra", `unexpected "extra"`},
		{"Box<_>", "only allowed as a whole annotation"},
		{"Box<int", `expected ","`},
		{"?", `unexpected "?"`},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, err := ParseType(testRef, tt.source)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestScopeResolutionOrder(t *testing.T) {
	other := typesystem.NewModuleReference("Other")
	s := newScope(testRef, map[string]typesystem.ModuleReference{"Box": other, "T": other}).with([]string{"T"})

	got, err := s.parseType("Box<T>")
	require.NoError(t, err)
	assert.Equal(t, typesystem.NewIdentifierType(other, "Box", typesystem.NewIdentifierType(testRef, "T")), got)

	got, err = s.parseType("Local")
	require.NoError(t, err)
	assert.Equal(t, testRef, got.(typesystem.IdentifierType).Module)
}

func TestIsIdentifier(t *testing.T) {
	for _, name := range []string{"a", "Box", "_x", "x1", "résumé"} {
		assert.True(t, IsIdentifier(name), name)
	}
	for _, name := range []string{"", "1x", "a-b", "a.b", " a"} {
		assert.False(t, IsIdentifier(name), name)
	}
}
