package transpiler

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"runa/pkg/codegen"
	"runa/pkg/compiler"
	"runa/pkg/types"
)

const addProgram = `Process called "add" that takes a and b:
    Return a plus b
Let sum be add with a as 2 and b as 3
Display sum
`

func newTestTranspiler(t *testing.T, opts ...Option) *Transpiler {
	t.Helper()
	tr, err := New(opts...)
	require.NoError(t, err)
	return tr
}

func TestTranspile_EndToEnd(t *testing.T) {
	tr := newTestTranspiler(t)

	res := tr.Transpile(addProgram, "python")
	require.True(t, res.Valid, "errors: %v", res.Errors)
	require.NotNil(t, res.Code)
	assert.Empty(t, res.Errors)
	assert.Contains(t, *res.Code, "def add(a, b):\n    return (a + b)\n")
	assert.Contains(t, *res.Code, "sum = add(a=2, b=3)")
	assert.NotEmpty(t, res.RunID)

	js := tr.Transpile(addProgram, "javascript")
	require.True(t, js.Valid)
	assert.Contains(t, *js.Code, `let sum = add({__runa_named: true, "a": 2, "b": 3});`)
	assert.NotEqual(t, res.RunID, js.RunID)

	prog, lexErrs, err := tr.Parse(addProgram)
	require.NoError(t, err)
	require.Empty(t, lexErrs)
	assert.True(t, tr.Analyze(prog).Valid)
	assert.Equal(t, types.Integer, tr.CheckTypes(prog).Globals["sum"])
}

func TestTranspile_Failures(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		target  string
		outcome string
		want    string
	}{
		{"Lexical", "Display \"unterminated\n", "python", OutcomeLexError, "line 1"},
		{"Syntax", "Let be 3\n", "python", OutcomeParseError, "line 1"},
		{"Semantic", "Display missing\n", "javascript", OutcomeSemantic, "missing"},
		{"UnsupportedTarget", "Let x be 1\n", "cobol", OutcomeUnsupportedTarget, "cobol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTranspiler(t)
			res := tr.Transpile(tt.src, tt.target)
			assert.False(t, res.Valid)
			assert.Nil(t, res.Code)
			require.NotEmpty(t, res.Errors)
			assert.Contains(t, strings.Join(res.Errors, "\n"), tt.want)

			label := unknownTarget
			if tgt, err := codegen.ParseTarget(tt.target); err == nil {
				label = string(tgt)
			}
			assert.Equal(t, 1.0, testutil.ToFloat64(tr.metrics.transpiles.WithLabelValues(label, tt.outcome)))
		})
	}
}

func TestTranspile_UnknownTargetLabel(t *testing.T) {
	tr := newTestTranspiler(t)
	for _, target := range []string{"cobol", "fortran", "x\ny"} {
		assert.False(t, tr.Transpile("Let x be 1\n", target).Valid)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(tr.metrics.transpiles.WithLabelValues(unknownTarget, OutcomeUnsupportedTarget)))
	assert.Equal(t, 1, testutil.CollectAndCount(tr.metrics.transpiles))
}

func TestTranspile_TypeErrorsDoNotBlock(t *testing.T) {
	tr := newTestTranspiler(t)
	res := tr.Transpile("Let n (Integer) be \"seven\"\nDisplay n\n", "python")

	assert.True(t, res.Valid)
	require.NotNil(t, res.Code)
	require.Len(t, res.TypeErrors, 1)
	assert.Contains(t, res.TypeErrors[0], `cannot initialize "n" of type Integer`)
	assert.Contains(t, res.Warnings, res.TypeErrors[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(tr.metrics.diagnostics.WithLabelValues("type error")))
}

func TestTranspile_TypeComments(t *testing.T) {
	plain := newTestTranspiler(t).Transpile("Let x be 1 plus 2.5\n", "python")
	require.True(t, plain.Valid)
	assert.NotContains(t, *plain.Code, "inferred")

	typed := newTestTranspiler(t, WithTypeComments()).Transpile("Let x be 1 plus 2.5\n", "python")
	require.True(t, typed.Valid)
	assert.Contains(t, *typed.Code, "x = (1 + 2.5)  # inferred: Float")
}

func TestTranspile_Warnings(t *testing.T) {
	res := newTestTranspiler(t).Transpile("Process called \"unused\":\n    Display 1\n", "python")
	assert.True(t, res.Valid)
	assert.Contains(t, strings.Join(res.Warnings, "\n"), `process "unused" is never called`)
}

func TestNew_Extensions(t *testing.T) {
	core := newTestTranspiler(t, WithExtensions())
	assert.Equal(t, []string{"core"}, core.Extensions())
	res := core.Transpile("Let f be Lambda x: x\n", "python")
	assert.False(t, res.Valid)

	full := newTestTranspiler(t)
	assert.Equal(t, []string{"core", "patterns", "async", "functional", "types"}, full.Extensions())

	_, err := New(WithExtensions(compiler.AsyncExtension, compiler.AsyncExtension))
	assert.Error(t, err)
}

func TestTranspile_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tr := newTestTranspiler(t, WithLogger(zap.New(core).Sugar()))

	res := tr.Transpile("Let x be 1\n", "python")
	require.True(t, res.Valid)
	assert.NotZero(t, logs.FilterMessageSnippet(res.RunID).FilterLevelExact(zapcore.DebugLevel).Len())

	bad := tr.Transpile("Display nope\n", "python")
	require.False(t, bad.Valid)
	assert.Equal(t, 1, logs.FilterMessageSnippet(bad.RunID).FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestMetrics_Registerer(t *testing.T) {
	reg := prometheus.NewRegistry()
	tr := newTestTranspiler(t, WithRegisterer(reg))
	tr.Transpile("Let x be 1\n", "js")

	n, err := testutil.GatherAndCount(reg, "runa_transpile_total", "runa_stage_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1+4, n)
	assert.Equal(t, 1.0, testutil.ToFloat64(tr.metrics.transpiles.WithLabelValues("javascript", OutcomeOK)))

	// A second Transpiler on the same registry collides.
	assert.Panics(t, func() { _, _ = New(WithRegisterer(reg)) })
}

func TestTranspile_Concurrent(t *testing.T) {
	tr := newTestTranspiler(t)
	want := *tr.Transpile(addProgram, "python").Code

	var wg sync.WaitGroup
	results := make([]*Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tr.Transpile(addProgram, "python")
		}(i)
	}
	wg.Wait()

	ids := make(map[string]bool)
	for i, res := range results {
		require.True(t, res.Valid, fmt.Sprintf("result %d", i))
		assert.Equal(t, want, *res.Code)
		ids[res.RunID] = true
	}
	assert.Len(t, ids, len(results))
	assert.Equal(t, float64(len(results)+1), testutil.ToFloat64(tr.metrics.transpiles.WithLabelValues("python", OutcomeOK)))
}

func TestPackageTranspile(t *testing.T) {
	res := Transpile("Let x be 5\n", "b")
	require.True(t, res.Valid)
	assert.Contains(t, *res.Code, "let x = 5;")
	assert.Same(t, Default(), Default())
}

func TestTranspiler_Stages(t *testing.T) {
	tr := newTestTranspiler(t, WithTypeComments())

	tokens, lexErrs := tr.Tokenize("Let x be 2.5\n")
	require.Empty(t, lexErrs)
	require.NotEmpty(t, tokens)
	assert.Equal(t, "Let", tokens[0].Lexeme)

	prog, _, err := tr.Parse("Let x be 2.5\n")
	require.NoError(t, err)
	code, err := tr.Generate(prog, codegen.JavaScript)
	require.NoError(t, err)
	assert.Contains(t, code, "let x = 2.5; // inferred: Float")

	_, err = tr.Generate(prog, codegen.Target("cobol"))
	var unsupported *codegen.UnsupportedTargetError
	assert.ErrorAs(t, err, &unsupported)
}
