package transpiler

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runa/pkg/codegen"
	"runa/pkg/types"
)

func TestInventoryProgram(t *testing.T) {
	// 1. Read source
	src, err := os.ReadFile("testdata/inventory.runa")
	require.NoError(t, err)

	tr := newTestTranspiler(t)

	// 2. Front end
	prog, lexErrs, err := tr.Parse(string(src))
	require.NoError(t, err)
	require.Empty(t, lexErrs)
	analysis := tr.Analyze(prog)
	require.True(t, analysis.Valid, "%v", analysis.Errors)

	// 3. Types
	typed := tr.CheckTypes(prog)
	assert.True(t, typed.Valid, "%v", typed.Errors)
	assert.Equal(t, types.Integer, typed.Globals["n"])
	assert.Equal(t, "List[String]", typed.Globals["items"].String())

	// 4. Generate both targets
	tests := []struct {
		target string
		want   []string
	}{
		{"python", []string{
			"def describe(item):",
			"    __match_1 = item",
			`    if __match_1 == "apple":`,
			`        return "red"`,
			"def total(xs):",
			"    for x in xs:",
			"        sum = (sum + x)",
			"for item in items:\n    print(describe(item))\n",
			"doubled = map_function((lambda n: (n * 2)), [1, 2, 3])",
			"big = filter_function((lambda n: (n > 2)), doubled)",
			"n = length(items)  # type: Integer",
			"if (n > 2):\n    print(\"many\")\nelse:\n    print(\"few\")\n",
		}},
		{"javascript", []string{
			"function describe(...__args) {",
			"    const __match_1 = item;",
			`    if (__match_1 === "apple") {`,
			"    for (let x of xs) {",
			"let doubled = map_function(((n) => (n * 2)), [1, 2, 3]);",
			"let big = filter_function(((n) => (n > 2)), doubled);",
			"console.log(total(big));",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			res := tr.Transpile(string(src), tt.target)
			require.True(t, res.Valid, "%v", res.Errors)
			assert.Empty(t, res.TypeErrors)
			for _, w := range tt.want {
				assert.Contains(t, *res.Code, w)
			}
		})
	}
}

// execute runs generated code with the target's interpreter and returns its
// output lines. The test is skipped when the interpreter is not installed.
func execute(t *testing.T, target codegen.Target, code string) []string {
	t.Helper()
	interpreter := map[codegen.Target]string{codegen.Python: "python3", codegen.JavaScript: "node"}[target]
	bin, err := exec.LookPath(interpreter)
	if err != nil {
		t.Skipf("%s not installed", interpreter)
	}

	dir := t.TempDir()
	if target == codegen.Python {
		shim, err := codegen.Runtime(codegen.Python)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "runa_runtime.py"), []byte(shim), 0o644))
	}
	main := filepath.Join(dir, "main"+target.Extension())
	require.NoError(t, os.WriteFile(main, []byte(code), 0o644))

	cmd := exec.Command(bin, main)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "%s", out)
	return strings.Split(strings.TrimSpace(string(out)), "\n")
}

func TestStockProgram(t *testing.T) {
	src, err := os.ReadFile("testdata/stock.runa")
	require.NoError(t, err)

	tr := newTestTranspiler(t)
	prog, _, err := tr.Parse(string(src))
	require.NoError(t, err)
	analysis := tr.Analyze(prog)
	require.True(t, analysis.Valid, "%v", analysis.Errors)
	typed := tr.CheckTypes(prog)
	assert.True(t, typed.Valid, "%v", typed.Errors)
	assert.Equal(t, "Dictionary[String, Integer]", typed.Globals["stock"].String())
	assert.Equal(t, types.Boolean, typed.Globals["ready"])

	tests := []struct {
		target codegen.Target
		want   []string
	}{
		{codegen.Python, []string{
			`stock = add_to_dictionary(stock, "pear", 5)`,
			`stock = remove_from_dictionary(stock, "apple")`,
			"found = contains_value(stock, 5)",
			`count = to_number("42")`,
			`price = parse_number("2.5")`,
			`ready = to_boolean("yes")`,
			"if ready:\n    x_1 = 2\n    print(x_1)\nprint(x)\n",
		}},
		{codegen.JavaScript, []string{
			`stock = add_to_dictionary(stock, "pear", 5);`,
			`let ready = to_boolean("yes");`,
			"if (ready) {\n    let x_1 = 2;\n    console.log(x_1);\n}\nconsole.log(x);\n",
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			res := tr.Transpile(string(src), string(tt.target))
			require.True(t, res.Valid, "%v", res.Errors)
			for _, w := range tt.want {
				assert.Contains(t, *res.Code, w)
			}

			assert.Equal(t, []string{"has five", "1", "43", "2.75", "2", "1"}, execute(t, tt.target, *res.Code))
		})
	}
}
