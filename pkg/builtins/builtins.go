// Package builtins lists the functions every Runa program may call without
// declaring them. Both runtime shims in pkg/codegen implement each entry.
package builtins

import "sort"

// Variadic marks a builtin accepting any number of arguments.
const Variadic = -1

// Builtin describes one runtime-provided function.
type Builtin struct {
	Name string
	// Arity is the positional argument count, or Variadic.
	Arity int
	// Returns names the result type: a primitive name, "List", "Dictionary" or "Any".
	Returns string
	// Element names the element type of a List result, when known.
	Element string
	// Helper entries back emitted combinator code and are not meant to be
	// spelled by users, though calling them is allowed.
	Helper bool
}

var table = []Builtin{
	{Name: "format_string", Arity: 1, Returns: "String"},
	{Name: "format_message", Arity: 1, Returns: "String"},
	{Name: "length", Arity: 1, Returns: "Integer"},
	{Name: "to_string", Arity: 1, Returns: "String"},
	{Name: "to_integer", Arity: 1, Returns: "Integer"},
	{Name: "to_float", Arity: 1, Returns: "Float"},
	{Name: "contains", Arity: 2, Returns: "Boolean"},
	{Name: "add_to_list", Arity: 2, Returns: "List"},
	{Name: "remove_from_list", Arity: 2, Returns: "List"},
	{Name: "combine_lists", Arity: 2, Returns: "List"},
	{Name: "get_keys", Arity: 1, Returns: "List"},
	{Name: "get_values", Arity: 1, Returns: "List"},
	{Name: "has_key", Arity: 2, Returns: "Boolean"},
	{Name: "add_to_dictionary", Arity: 3, Returns: "Dictionary"},
	{Name: "remove_from_dictionary", Arity: 2, Returns: "Dictionary"},
	{Name: "contains_value", Arity: 2, Returns: "Boolean"},
	{Name: "parse_number", Arity: 1, Returns: "Any"},
	{Name: "to_number", Arity: 1, Returns: "Any"},
	{Name: "to_boolean", Arity: 1, Returns: "Boolean"},
	{Name: "uppercase", Arity: 1, Returns: "String"},
	{Name: "lowercase", Arity: 1, Returns: "String"},
	{Name: "trim", Arity: 1, Returns: "String"},
	{Name: "split", Arity: 2, Returns: "List", Element: "String"},
	{Name: "join", Arity: 2, Returns: "String"},
	{Name: "range_of", Arity: 2, Returns: "List", Element: "Integer"},
	{Name: "pipeline", Arity: 2, Returns: "Any", Helper: true},
	{Name: "partial", Arity: Variadic, Returns: "Any", Helper: true},
	{Name: "compose", Arity: Variadic, Returns: "Any", Helper: true},
	{Name: "map_function", Arity: 2, Returns: "List", Helper: true},
	{Name: "filter_function", Arity: 2, Returns: "List", Helper: true},
	{Name: "reduce_function", Arity: Variadic, Returns: "Any", Helper: true},
}

var byName = func() map[string]Builtin {
	m := make(map[string]Builtin, len(table))
	for _, b := range table {
		m[b.Name] = b
	}
	return m
}()

// Lookup returns the builtin called name.
func Lookup(name string) (Builtin, bool) {
	b, ok := byName[name]
	return b, ok
}

// IsBuiltin reports whether name is a builtin function.
func IsBuiltin(name string) bool {
	_, ok := byName[name]
	return ok
}

// Names returns every builtin name in sorted order.
func Names() []string {
	names := make([]string, 0, len(table))
	for _, b := range table {
		names = append(names, b.Name)
	}
	sort.Strings(names)
	return names
}
