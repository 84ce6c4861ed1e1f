package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runa/pkg/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, lexErrs, err := Parse(src)
	require.Empty(t, lexErrs)
	require.NoError(t, err)
	return prog
}

func parseErr(t *testing.T, src string) *ParseError {
	t.Helper()
	_, _, err := Parse(src)
	require.Error(t, err)
	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
	return perr
}

func TestParse_Declarations(t *testing.T) {
	prog := mustParse(t, "Let x be 1 plus 2 multiplied by 3\nSet x to x minus 1\n")
	require.Len(t, prog.Statements, 2)

	decl := prog.Statements[0].(*ast.Declaration)
	assert.Equal(t, "x", decl.Name)
	assert.Equal(t, "(1 plus (2 multiplied by 3))", decl.Value.String())
	assert.Equal(t, ast.Position{Line: 1, Column: 1}, decl.Position)

	set := prog.Statements[1].(*ast.Assignment)
	assert.Equal(t, "(x minus 1)", set.Value.String())
}

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a plus b minus c", "((a plus b) minus c)"},
		{"a or b and c", "(a or (b and c))"},
		{"a plus 1 is greater than b", "((a plus 1) greater than b)"},
		{"a less than or equal to b and c equal to d", "((a less than or equal to b) and (c equal to d))"},
		{"(a plus b) multiplied by c", "((a plus b) multiplied by c)"},
		{"xs at index 0 plus 1", "(xs[0] plus 1)"},
		{"d at key \"k\"", `d["k"]`},
		{"a modulo b divided by c", "((a modulo b) divided by c)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog := mustParse(t, "Let r be "+tt.src+"\n")
			assert.Equal(t, tt.want, prog.Statements[0].(*ast.Declaration).Value.String())
		})
	}
}

func TestParse_Calls(t *testing.T) {
	prog := mustParse(t, "Let s be add with a as 2 and b as 3\nLet n be length with xs\nshow\n")
	call := prog.Statements[0].(*ast.Declaration).Value.(*ast.FunctionCall)
	assert.Equal(t, "add", call.Name)
	require.Len(t, call.Named, 2)
	assert.Equal(t, "a", call.Named[0].Name)
	assert.Equal(t, "3", call.Named[1].Value.String())

	pos := prog.Statements[1].(*ast.Declaration).Value.(*ast.FunctionCall)
	assert.Len(t, pos.Args, 1)

	bare := prog.Statements[2].(*ast.ExpressionStatement).Expr.(*ast.FunctionCall)
	assert.Equal(t, "show", bare.Name)
	assert.Empty(t, bare.Args)

	t.Run("PositionalAfterNamed", func(t *testing.T) {
		perr := parseErr(t, "Let s be add with a as 2 and 3\n")
		assert.Contains(t, perr.Message, "positional argument after named")
	})
	t.Run("DuplicateNamed", func(t *testing.T) {
		perr := parseErr(t, "Let s be add with a as 2 and a as 3\n")
		assert.Contains(t, perr.Message, "duplicate named argument")
	})
}

func TestParse_FormatString(t *testing.T) {
	prog := mustParse(t, "Display \"Hi {name}\" with name as user\n")
	call := prog.Statements[0].(*ast.DisplayStatement).Value.(*ast.FunctionCall)
	assert.Equal(t, "format_string", call.Name)
	assert.Equal(t, `"Hi {name}"`, call.Args[0].String())
	assert.Equal(t, "name", call.Named[0].Name)
}

func TestParse_Process(t *testing.T) {
	src := `Process called "add" that takes a and b:
    Return a plus b
`
	prog := mustParse(t, src)
	proc := prog.Statements[0].(*ast.ProcessDefinition)
	assert.Equal(t, "add", proc.Name)
	assert.Equal(t, []string{"a", "b"}, proc.Parameters)
	require.Len(t, proc.Body, 1)
	assert.Equal(t, "(a plus b)", proc.Body[0].(*ast.ReturnStatement).Value.String())

	t.Run("InvalidName", func(t *testing.T) {
		perr := parseErr(t, "Process called \"two words\":\n    Return 1\n")
		assert.Contains(t, perr.Message, "not a valid identifier")
	})
	t.Run("NoParameters", func(t *testing.T) {
		prog := mustParse(t, "Process called \"hello\":\n    Display \"hi\"\n")
		assert.Empty(t, prog.Statements[0].(*ast.ProcessDefinition).Parameters)
	})
}

func TestParse_IfChain(t *testing.T) {
	src := `If x greater than 1:
    Display "big"
Otherwise If x equal to 1:
    Display "one"
Otherwise:
    Display "small"
`
	prog := mustParse(t, src)
	require.Len(t, prog.Statements, 1)
	outer := prog.Statements[0].(*ast.IfStatement)
	require.Len(t, outer.Else, 1)
	inner := outer.Else[0].(*ast.IfStatement)
	assert.Equal(t, "(x equal to 1)", inner.Condition.String())
	require.Len(t, inner.Else, 1)
	assert.IsType(t, &ast.DisplayStatement{}, inner.Else[0])
}

func TestParse_ForEachAndDefine(t *testing.T) {
	src := `Define xs as list containing 1, 2, 3
Define d as dictionary containing "a": 1, "b": 2
For each x in xs:
    Display x
`
	prog := mustParse(t, src)
	require.Len(t, prog.Statements, 3)
	list := prog.Statements[0].(*ast.Declaration).Value.(*ast.ListExpression)
	assert.Len(t, list.Elements, 3)
	dict := prog.Statements[1].(*ast.Declaration).Value.(*ast.DictionaryExpression)
	assert.Len(t, dict.Entries, 2)
	loop := prog.Statements[2].(*ast.ForEachStatement)
	assert.Equal(t, "x", loop.Variable)
	assert.False(t, loop.Async)
}

func TestParse_Literals(t *testing.T) {
	prog := mustParse(t, "Let a be [1, 2.5, \"s\", True]\nLet b be [\"k\": 1]\nLet c be [:]\nLet e be {\"k\": [1]}\n")
	assert.Equal(t, `[1, 2.5, "s", True]`, prog.Statements[0].(*ast.Declaration).Value.String())
	assert.IsType(t, &ast.DictionaryExpression{}, prog.Statements[1].(*ast.Declaration).Value)
	assert.Empty(t, prog.Statements[2].(*ast.Declaration).Value.(*ast.DictionaryExpression).Entries)
	assert.IsType(t, &ast.DictionaryExpression{}, prog.Statements[3].(*ast.Declaration).Value)

	num := prog.Statements[0].(*ast.Declaration).Value.(*ast.ListExpression).Elements[1].(*ast.NumberLiteral)
	assert.True(t, num.IsFloat)
	assert.Equal(t, 2.5, num.Value)
}

func TestParse_Match(t *testing.T) {
	src := `Match point:
    When [0, 0]:
        Display "origin"
    When {"x": x, "y": 0}:
        Display x
    When String s:
        Display s
    When Integer:
        Display "int"
    When name:
        Display name
`
	prog := mustParse(t, src)
	m := prog.Statements[0].(*ast.MatchStatement)
	require.Len(t, m.Cases, 5)
	assert.IsType(t, &ast.ListPattern{}, m.Cases[0].Pattern)
	assert.IsType(t, &ast.DictionaryPattern{}, m.Cases[1].Pattern)

	guard := m.Cases[2].Pattern.(*ast.TypePattern)
	assert.Equal(t, "String", guard.TypeName)
	assert.IsType(t, &ast.VariablePattern{}, guard.Inner)

	bare := m.Cases[3].Pattern.(*ast.TypePattern)
	assert.Nil(t, bare.Inner)

	assert.IsType(t, &ast.VariablePattern{}, m.Cases[4].Pattern)

	t.Run("NeedsCases", func(t *testing.T) {
		_, _, err := Parse("Match x:\n    Display x\n")
		assert.Error(t, err)
	})
}

func TestParse_Async(t *testing.T) {
	src := `Async Process called "fetch" that takes url:
    Let r be await get with url
    Async For each chunk in r:
        Display chunk
    Return r
`
	prog := mustParse(t, src)
	proc := prog.Statements[0].(*ast.ProcessDefinition)
	assert.True(t, proc.Async)
	decl := proc.Body[0].(*ast.Declaration)
	assert.IsType(t, &ast.AwaitExpression{}, decl.Value)
	assert.True(t, proc.Body[1].(*ast.ForEachStatement).Async)
}

func TestParse_Functional(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind ast.Expr
	}{
		{"Lambda", "Lambda a and b: a plus b", &ast.LambdaExpression{}},
		{"Pipeline", "xs |> total", &ast.PipelineExpression{}},
		{"Partial", "Partial add with 5", &ast.PartialApplication{}},
		{"Compose", "compose trim with lowercase", &ast.CompositionExpression{}},
		{"Map", "Map double over xs", &ast.MapExpression{}},
		{"Filter", "Filter xs using Lambda x: x greater than 1", &ast.FilterExpression{}},
		{"Reduce", "Reduce xs using add with initial 0", &ast.ReduceExpression{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustParse(t, "Let r be "+tt.src+"\n")
			assert.IsType(t, tt.kind, prog.Statements[0].(*ast.Declaration).Value)
		})
	}

	t.Run("ReduceInitial", func(t *testing.T) {
		prog := mustParse(t, "Let r be Reduce xs using add with initial 10\n")
		red := prog.Statements[0].(*ast.Declaration).Value.(*ast.ReduceExpression)
		assert.Equal(t, "add", red.Function.String())
		assert.Equal(t, "10", red.Initial.String())
	})

	t.Run("PipelineChains", func(t *testing.T) {
		prog := mustParse(t, "Let r be xs |> f |> g\n")
		pipe := prog.Statements[0].(*ast.Declaration).Value.(*ast.PipelineExpression)
		assert.Equal(t, "g", pipe.Right.String())
		assert.IsType(t, &ast.PipelineExpression{}, pipe.Left)
	})
}

func TestParse_Types(t *testing.T) {
	src := `Type Id is Integer | String
Let n (Integer) be 1
Process [T] called "first" that takes xs (List[T]) returns T:
    Return xs at 0
Process called "apply" that takes f ((Integer) -> Integer) and d (Dictionary[String, Any]):
    Return f with 1
`
	prog := mustParse(t, src)
	require.Len(t, prog.Statements, 4)

	alias := prog.Statements[0].(*ast.TypeAlias)
	assert.IsType(t, &ast.UnionType{}, alias.Target)

	typed := prog.Statements[1].(*ast.TypedDeclaration)
	assert.Equal(t, "Integer", typed.Annotation.String())

	first := prog.Statements[2].(*ast.TypedProcessDefinition)
	require.Len(t, first.Generics, 1)
	assert.Equal(t, "T", first.Generics[0].Name)
	assert.IsType(t, &ast.ListType{}, first.Parameters[0].Type)
	assert.Equal(t, "T", first.Returns.String())

	apply := prog.Statements[3].(*ast.TypedProcessDefinition)
	assert.IsType(t, &ast.FunctionType{}, apply.Parameters[0].Type)
	assert.IsType(t, &ast.DictionaryType{}, apply.Parameters[1].Type)

	t.Run("AnnotationsNeedExtension", func(t *testing.T) {
		g, err := NewGrammar()
		require.NoError(t, err)
		_, _, err = g.Parse("Let n (Integer) be 1\n")
		assert.Error(t, err)
	})
	t.Run("ListArity", func(t *testing.T) {
		perr := parseErr(t, "Let n (List[Integer, String]) be []\n")
		assert.Contains(t, perr.Message, "List takes one type argument")
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"MissingBe", "Let x 1\n", 1},
		{"BadIndent", "Display 1\n    Display 2\n", 2},
		{"UnclosedBlock", "If x:\nDisplay 1\n", 2},
		{"ExpressionStatement", "Display 1\n1 plus 2\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := parseErr(t, tt.src)
			assert.Equal(t, tt.line, perr.Line)
			assert.NotEmpty(t, perr.Snippet)
		})
	}
}

func TestGrammar_Composition(t *testing.T) {
	t.Run("Extensions", func(t *testing.T) {
		assert.Equal(t, []string{"core", "patterns", "async", "functional", "types"}, DefaultGrammar().Extensions())
	})
	t.Run("DuplicateExtension", func(t *testing.T) {
		_, err := NewGrammar(PatternsExtension, PatternsExtension)
		assert.Error(t, err)
	})
	t.Run("CoreOnlyRejectsMatch", func(t *testing.T) {
		g, err := NewGrammar()
		require.NoError(t, err)
		_, _, err = g.Parse("Match x:\n    When _:\n        Display x\n")
		assert.Error(t, err)
	})
}
