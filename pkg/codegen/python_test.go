package codegen

import (
	"testing"
)

func TestPython_EndToEnd(t *testing.T) {
	src := `Process called "add" that takes a and b:
    Return a plus b
Let sum be add with a as 2 and b as 3
`
	code := generate(t, src, Python)
	assertContains(t, code, "def add(a, b):\n    return (a + b)\n")
	assertContains(t, code, "sum = add(a=2, b=3)")
}

func TestPython_Statements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "Literals",
			src:  "Let s be \"hi\"\nLet f be 2.5\nLet b be True\nLet xs be [1, 2]\nLet d be [\"k\": 1]\n",
			want: []string{`s = "hi"`, "f = 2.5", "b = True", "xs = [1, 2]", `d = {"k": 1}`},
		},
		{
			name: "Operators",
			src:  "Let r be a equal to b and c not equal to d or e modulo 2 greater than 0\n",
			want: []string{"r = (((a == b) and (c != d)) or ((e % 2) > 0))"},
		},
		{
			name: "IfChain",
			src:  "If x greater than 1:\n    Display \"big\"\nOtherwise If x equal to 1:\n    Display \"one\"\nOtherwise:\n    Display \"small\"\n",
			want: []string{"if (x > 1):\n    print(\"big\")\nelif (x == 1):\n    print(\"one\")\nelse:\n    print(\"small\")\n"},
		},
		{
			name: "ForEach",
			src:  "For each item in items:\n    Display item\n",
			want: []string{"for item in items:\n    print(item)\n"},
		},
		{
			name: "Index",
			src:  "Let a be xs at index 0\nLet b be d at key \"k\"\n",
			want: []string{"a = xs[0]", `b = d["k"]`},
		},
		{
			name: "FormatString",
			src:  "Display \"Hi {name}\" with name as user\n",
			want: []string{`print("Hi {name}".format(name=user))`},
		},
		{
			name: "ExpressionStatement",
			src:  "greet with \"bob\"\nrefresh\n",
			want: []string{`greet("bob")`, "refresh()"},
		},
		{
			name: "ReservedNames",
			src:  "Let class be 1\nLet print be class plus 1\n",
			want: []string{"class_ = 1", "print_ = (class_ + 1)"},
		},
		{
			name: "TypeAlias",
			src:  "Type Id is Integer | String\n",
			want: []string{"# type Id = Integer | String"},
		},
		{
			name: "TypedProcess",
			src:  "Process [T] called \"first\" that takes xs (List[T]) returns T:\n    Return xs at 0\n",
			want: []string{"def first(xs):  # signature: [T] (xs: List[T]) -> T", "    return xs[0]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := generate(t, tt.src, Python)
			for _, w := range tt.want {
				assertContains(t, code, w)
			}
		})
	}
}

func TestPython_Functional(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"Lambda a and b: a plus b", "(lambda a, b: (a + b))"},
		{"xs |> total", "pipeline(xs, total)"},
		{"Partial add with 5", "partial(add, 5)"},
		{"compose trim with lowercase", "compose(trim, lowercase)"},
		{"Map double over xs", "map_function(double, xs)"},
		{"Filter xs using Lambda x: x greater than 1", "filter_function((lambda x: (x > 1)), xs)"},
		{"Reduce xs using add with initial 0", "reduce_function(add, xs, 0)"},
		{"Reduce xs using add", "reduce_function(add, xs)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assertContains(t, generate(t, "Let r be "+tt.src+"\n", Python), "r = "+tt.want)
		})
	}
}

func TestPython_Async(t *testing.T) {
	src := `Async Process called "fetch" that takes url:
    Let r be await get with url
    Async For each chunk in r:
        Display chunk
`
	code := generate(t, src, Python)
	assertContains(t, code, "async def fetch(url):")
	assertContains(t, code, "    r = (await get(url))")
	assertContains(t, code, "    async for chunk in r:")
}

func TestPython_Scoping(t *testing.T) {
	src := `Let count be 0
Process called "outer":
    Let total be 0
    Process called "inner":
        Set total to total plus 1
        Set count to count plus 1
    inner
    Set count to total
`
	code := generate(t, src, Python)
	assertContains(t, code, "def outer():\n    global count\n")
	assertContains(t, code, "    def inner():\n        global count\n        nonlocal total\n")
}

func TestPython_Match(t *testing.T) {
	src := `Match shape:
    When [first, ...middle, last]:
        Display first
    When {"name": n}:
        Display n
    When Integer n:
        Display n
    When "hello":
        Display "greeting"
    When other:
        Display other
`
	code := generate(t, src, Python)
	want := []string{
		"__match_1 = shape",
		"if isinstance(__match_1, list) and len(__match_1) >= 2:",
		"    first = __match_1[0]",
		"    middle = __match_1[1:-1]",
		"    last = __match_1[-1]",
		`elif isinstance(__match_1, dict) and "name" in __match_1:`,
		`    n = __match_1["name"]`,
		`elif runa_is_type(__match_1, "Integer"):`,
		`elif __match_1 == "hello":`,
		"else:\n    other = __match_1\n    print(other)",
	}
	for _, w := range want {
		assertContains(t, code, w)
	}

	t.Run("NoCatchAll", func(t *testing.T) {
		code := generate(t, "Match v:\n    When 1:\n        Display v\n", Python)
		assertContains(t, code, "if __match_1 == 1:\n    print(v)\nelse:\n    pass\n")
	})
	t.Run("CatchAllFirst", func(t *testing.T) {
		code := generate(t, "Match v:\n    When _:\n        Display 0\n    When 1:\n        Display 1\n", Python)
		assertContains(t, code, "if True:\n    print(0)\n")
		assertNotContains(t, code, "__match_1 == 1")
	})
	t.Run("TrailingRest", func(t *testing.T) {
		code := generate(t, "Match v:\n    When [h, ...t]:\n        Display t\n", Python)
		assertContains(t, code, "t = __match_1[1:]")
	})
	t.Run("DuplicateBinding", func(t *testing.T) {
		_, err := Generate(mustParse(t, "Match v:\n    When [x, x]:\n        Display x\n"), Python)
		if err == nil {
			t.Errorf("expected an error for a pattern binding x twice")
		}
	})
}

func TestPython_PatternHelpersSurviveUserBindings(t *testing.T) {
	src := `Let list be [1, 2, 3]
Let len be 2
Let dict be ["a": 1]
Let isinstance be False
Let runa_is_type be 0
Match list:
    When [a, ...rest]:
        Display rest
    When {"a": v}:
        Display v
    When Integer n:
        Display n
`
	code := generate(t, src, Python)
	want := []string{
		"list_ = [1, 2, 3]",
		"len_ = 2",
		`dict_ = {"a": 1}`,
		"isinstance_ = False",
		"runa_is_type_ = 0",
		"__match_1 = list_",
		"if isinstance(__match_1, list) and len(__match_1) >= 1:",
		"    rest = __match_1[1:]",
		`elif isinstance(__match_1, dict) and "a" in __match_1:`,
		`elif runa_is_type(__match_1, "Integer"):`,
	}
	for _, w := range want {
		assertContains(t, code, w)
	}
	assertNotContains(t, code, "\nlist = ")
	assertNotContains(t, code, "\nlen = ")
}
