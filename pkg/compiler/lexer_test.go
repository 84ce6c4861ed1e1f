package compiler

import (
	"fmt"
	"strings"
	"testing"
)

func tokenTypes(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func assertTypes(t *testing.T, src string, want ...TokenType) []Token {
	t.Helper()
	tokens, errs := Tokenize(src)
	if len(errs) > 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	got := tokenTypes(tokens)
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens %v, got %d %v", len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected %s, got %s (%q)", i, want[i], got[i], tokens[i].Lexeme)
		}
	}
	return tokens
}

func TestLexer_Keywords(t *testing.T) {
	tokens := assertTypes(t, `Let total be 42`,
		LET, IDENTIFIER, BE, INTEGER, NEWLINE, EOF)
	if tokens[1].Lexeme != "total" {
		t.Errorf("expected identifier 'total', got %q", tokens[1].Lexeme)
	}
	if tokens[3].Line != 1 || tokens[3].Column != 14 {
		t.Errorf("expected 42 at 1:14, got %d:%d", tokens[3].Line, tokens[3].Column)
	}
}

func TestLexer_Phrases(t *testing.T) {
	tests := []struct {
		src  string
		want TokenType
	}{
		{"a greater than b", GREATER},
		{"a greater than or equal to b", GREATER_EQUAL},
		{"a less than b", LESS},
		{"a less than or equal to b", LESS_EQUAL},
		{"a equal to b", EQUAL},
		{"a not equal to b", NOT_EQUAL},
		{"a multiplied by b", MULTIPLIED},
		{"a divided by b", DIVIDED},
		{"a modulo b", MODULO},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tokens := assertTypes(t, tt.src, IDENTIFIER, tt.want, IDENTIFIER, NEWLINE, EOF)
			if tokens[1].Column != 3 {
				t.Errorf("phrase should start at column 3, got %d", tokens[1].Column)
			}
		})
	}

	t.Run("PartialPhraseIsIdentifier", func(t *testing.T) {
		assertTypes(t, "greater or", IDENTIFIER, OR, NEWLINE, EOF)
	})
}

func TestLexer_Indentation(t *testing.T) {
	src := "If x:\n    Display x\n    If y:\n        Display y\nDisplay z\n"
	assertTypes(t, src,
		IF, IDENTIFIER, COLON, NEWLINE,
		INDENT, DISPLAY, IDENTIFIER, NEWLINE,
		IF, IDENTIFIER, COLON, NEWLINE,
		INDENT, DISPLAY, IDENTIFIER, NEWLINE,
		DEDENT, DEDENT, DISPLAY, IDENTIFIER, NEWLINE, EOF)
}

func TestLexer_BlankAndCommentLinesKeepIndent(t *testing.T) {
	src := "If x:\n    Display x\n\n# note\n        \n    Display y\n"
	assertTypes(t, src,
		IF, IDENTIFIER, COLON, NEWLINE,
		INDENT, DISPLAY, IDENTIFIER, NEWLINE,
		DISPLAY, IDENTIFIER, NEWLINE,
		DEDENT, EOF)
}

func TestLexer_TabsCountAsFour(t *testing.T) {
	src := "If x:\n\tDisplay x\n    Display y\n"
	assertTypes(t, src,
		IF, IDENTIFIER, COLON, NEWLINE,
		INDENT, DISPLAY, IDENTIFIER, NEWLINE,
		DISPLAY, IDENTIFIER, NEWLINE,
		DEDENT, EOF)
}

func TestLexer_BracketsSuppressNewlines(t *testing.T) {
	src := "Let xs be [1,\n    2,\n    3]\n"
	assertTypes(t, src,
		LET, IDENTIFIER, BE, LBRACKET, INTEGER, COMMA, INTEGER, COMMA, INTEGER, RBRACKET, NEWLINE, EOF)
}

func TestLexer_EOFClosesBlocks(t *testing.T) {
	assertTypes(t, "If x:\n    Display x",
		IF, IDENTIFIER, COLON, NEWLINE, INDENT, DISPLAY, IDENTIFIER, NEWLINE, DEDENT, EOF)
}

// nested opens depth blocks and closes back to column keep before the
// input ends.
func nested(depth, keep int, trailingNewline bool) string {
	var b strings.Builder
	for i := 0; i < depth; i++ {
		fmt.Fprintf(&b, "%sIf x:\n", strings.Repeat("    ", i))
	}
	fmt.Fprintf(&b, "%sDisplay x", strings.Repeat("    ", depth))
	if keep <= depth {
		fmt.Fprintf(&b, "\n%sDisplay y", strings.Repeat("    ", keep))
	}
	if trailingNewline {
		b.WriteString("\n")
	}
	return b.String()
}

func TestLexer_IndentDedentBalance(t *testing.T) {
	tests := []struct {
		depth, keep     int
		trailingNewline bool
	}{
		{1, 0, true},
		{1, 2, false},
		{3, 0, true},
		{3, 1, false},
		{8, 9, false},
		{8, 9, true},
		{8, 4, false},
		{16, 17, false},
		{16, 0, true},
		{32, 31, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("depth%d_keep%d_newline%v", tt.depth, tt.keep, tt.trailingNewline), func(t *testing.T) {
			tokens, errs := Tokenize(nested(tt.depth, tt.keep, tt.trailingNewline))
			if len(errs) > 0 {
				t.Fatalf("unexpected lex errors: %v", errs)
			}
			var indents, dedents, level, deepest int
			for _, tok := range tokens {
				switch tok.Type {
				case INDENT:
					indents++
					level++
				case DEDENT:
					dedents++
					level--
				}
				if level < 0 {
					t.Fatalf("DEDENT below column 0 at line %d", tok.Line)
				}
				if level > deepest {
					deepest = level
				}
			}
			if indents != dedents {
				t.Errorf("expected balanced layout, got %d INDENT and %d DEDENT", indents, dedents)
			}
			if indents != tt.depth || deepest != tt.depth {
				t.Errorf("expected %d levels, got %d INDENT reaching depth %d", tt.depth, indents, deepest)
			}
			if last := tokens[len(tokens)-1]; last.Type != EOF {
				t.Errorf("expected EOF last, got %s", last.Type)
			}
		})
	}
}

func TestLexer_InconsistentDedent(t *testing.T) {
	src := "If x:\n        Display x\n    Display y\n"
	tokens, errs := Tokenize(src)
	if len(errs) != 1 {
		t.Fatalf("expected 1 lex error, got %v", errs)
	}
	if errs[0].Line != 3 {
		t.Errorf("expected error on line 3, got %d", errs[0].Line)
	}
	if tokens[len(tokens)-1].Type != EOF {
		t.Errorf("lexing should continue to EOF")
	}
}

func TestLexer_Strings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"Plain", `"hello"`, "hello"},
		{"Escapes", `"a\nb\tc\\d\"e"`, "a\nb\tc\\d\"e"},
		{"Empty", `""`, ""},
		{"KeywordsInside", `"Let x be"`, "Let x be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := assertTypes(t, tt.src, STRING, NEWLINE, EOF)
			if tokens[0].Lexeme != tt.want {
				t.Errorf("expected %q, got %q", tt.want, tokens[0].Lexeme)
			}
		})
	}

	t.Run("Unterminated", func(t *testing.T) {
		_, errs := Tokenize("Display \"oops\n")
		if len(errs) != 1 {
			t.Fatalf("expected 1 error, got %v", errs)
		}
	})
}

func TestLexer_Numbers(t *testing.T) {
	tokens := assertTypes(t, "3 2.5", INTEGER, FLOAT, NEWLINE, EOF)
	if tokens[1].Lexeme != "2.5" {
		t.Errorf("expected 2.5, got %q", tokens[1].Lexeme)
	}
	_, errs := Tokenize("7.")
	if len(errs) != 1 {
		t.Errorf("a trailing dot is illegal, got errors %v", errs)
	}
}

func TestLexer_Symbols(t *testing.T) {
	assertTypes(t, "xs |> f -> [...rest, _] | {}",
		IDENTIFIER, PIPELINE, IDENTIFIER, ARROW, LBRACKET, ELLIPSIS, IDENTIFIER, COMMA, UNDERSCORE, RBRACKET,
		PIPE, LBRACE, RBRACE, NEWLINE, EOF)
}

func TestLexer_IllegalCharacter(t *testing.T) {
	tokens, errs := Tokenize("Let x be 1 @ 2")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs[0].Column != 12 {
		t.Errorf("expected column 12, got %d", errs[0].Column)
	}
	if got := tokenTypes(tokens); got[len(got)-3] != INTEGER {
		t.Errorf("the character after the illegal one should still be lexed, got %v", got)
	}
}

func TestLexer_ExtensionVocabulary(t *testing.T) {
	core, err := NewGrammar()
	if err != nil {
		t.Fatal(err)
	}
	tokens, _ := Lex("Match x", core.Vocabulary())
	if tokens[0].Type != IDENTIFIER {
		t.Errorf("without the patterns extension Match is an identifier, got %s", tokens[0].Type)
	}
	tokens, _ = Tokenize("Match x")
	if tokens[0].Type != MATCH {
		t.Errorf("the default grammar should know Match, got %s", tokens[0].Type)
	}
}

func TestLexer_Lazy(t *testing.T) {
	l := NewLexer("Let a be 1\nLet b be 2\n", DefaultGrammar().Vocabulary())
	first := l.Next()
	if first.Type != LET || first.Line != 1 {
		t.Fatalf("unexpected first token %v", first)
	}
	for tok := l.Next(); tok.Type != EOF; tok = l.Next() {
	}
	if tok := l.Next(); tok.Type != EOF {
		t.Errorf("Next after EOF should keep returning EOF, got %v", tok)
	}
}
