package builtins

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	b, ok := Lookup("split")
	require.True(t, ok)
	assert.Equal(t, 2, b.Arity)
	assert.Equal(t, "List", b.Returns)
	assert.Equal(t, "String", b.Element)
	assert.False(t, b.Helper)

	red, ok := Lookup("reduce_function")
	require.True(t, ok)
	assert.Equal(t, Variadic, red.Arity)
	assert.True(t, red.Helper)

	dict, ok := Lookup("add_to_dictionary")
	require.True(t, ok)
	assert.Equal(t, 3, dict.Arity)
	assert.Equal(t, "Dictionary", dict.Returns)
	for _, name := range []string{"remove_from_dictionary", "contains_value", "parse_number", "to_number", "to_boolean"} {
		assert.True(t, IsBuiltin(name), name)
	}

	_, ok = Lookup("print")
	assert.False(t, ok)
	assert.True(t, IsBuiltin("length"))
	assert.False(t, IsBuiltin("Length"))
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Len(t, names, len(table))
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "format_string")
	assert.Contains(t, names, "map_function")

	for _, b := range table {
		assert.NotEmpty(t, b.Returns, b.Name)
		if b.Element != "" {
			assert.Equal(t, "List", b.Returns, "%s has an element type but does not return a List", b.Name)
		}
	}
}
