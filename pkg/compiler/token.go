package compiler

import (
	"fmt"

	"runa/pkg/ast"
)

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Layout
	NEWLINE // end of a logical line
	INDENT  // synthesized: line is deeper than the enclosing block
	DEDENT  // synthesized: one enclosing block closed

	// Literals
	IDENTIFIER // variable / process name
	STRING     // string literal "..."
	INTEGER    // 42
	FLOAT      // 2.5
	TRUE       // "True"
	FALSE      // "False"

	// Statement keywords
	LET        // "Let"
	SET        // "Set"
	BE         // "be"
	TO         // "to"
	AS         // "as"
	IF         // "If"
	OTHERWISE  // "Otherwise"
	FOR        // "For"
	EACH       // "each"
	IN         // "in"
	PROCESS    // "Process"
	CALLED     // "called"
	THAT       // "that"
	TAKES      // "takes"
	RETURN     // "Return"
	DISPLAY    // "Display"
	WITH       // "with"
	DEFINE     // "Define"
	CONTAINING // "containing"
	AT         // "at"
	IS         // "is"

	// Word operators (multi-word forms are single tokens)
	PLUS          // "plus"
	MINUS         // "minus"
	MULTIPLIED    // "multiplied by"
	DIVIDED       // "divided by"
	MODULO        // "modulo"
	GREATER       // "greater than"
	LESS          // "less than"
	GREATER_EQUAL // "greater than or equal to"
	LESS_EQUAL    // "less than or equal to"
	EQUAL         // "equal to"
	NOT_EQUAL     // "not equal to"
	AND           // "and"
	OR            // "or"
	NOT           // "not"

	// Pattern extension
	MATCH // "Match"
	WHEN  // "When"

	// Async extension
	ASYNC // "Async"
	AWAIT // "await"

	// Functional extension
	LAMBDA  // "Lambda"
	PARTIAL // "Partial"
	COMPOSE // "compose"
	MAP     // "Map"
	OVER    // "over"
	FILTER  // "Filter"
	USING   // "using"
	REDUCE  // "Reduce"
	INITIAL // "initial"

	// Type extension
	TYPE    // "Type"
	RETURNS // "returns"

	// Delimiters and symbols
	COLON      // :
	COMMA      // ,
	LPAREN     // (
	RPAREN     // )
	LBRACKET   // [
	RBRACKET   // ]
	LBRACE     // {
	RBRACE     // }
	PIPELINE   // |>
	PIPE       // |
	ARROW      // ->
	ELLIPSIS   // ...
	UNDERSCORE // _
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:           "EOF",
	NEWLINE:       "NEWLINE",
	INDENT:        "INDENT",
	DEDENT:        "DEDENT",
	IDENTIFIER:    "IDENTIFIER",
	STRING:        "STRING",
	INTEGER:       "INTEGER",
	FLOAT:         "FLOAT",
	TRUE:          "TRUE",
	FALSE:         "FALSE",
	LET:           "LET",
	SET:           "SET",
	BE:            "BE",
	TO:            "TO",
	AS:            "AS",
	IF:            "IF",
	OTHERWISE:     "OTHERWISE",
	FOR:           "FOR",
	EACH:          "EACH",
	IN:            "IN",
	PROCESS:       "PROCESS",
	CALLED:        "CALLED",
	THAT:          "THAT",
	TAKES:         "TAKES",
	RETURN:        "RETURN",
	DISPLAY:       "DISPLAY",
	WITH:          "WITH",
	DEFINE:        "DEFINE",
	CONTAINING:    "CONTAINING",
	AT:            "AT",
	IS:            "IS",
	PLUS:          "PLUS",
	MINUS:         "MINUS",
	MULTIPLIED:    "MULTIPLIED",
	DIVIDED:       "DIVIDED",
	MODULO:        "MODULO",
	GREATER:       "GREATER",
	LESS:          "LESS",
	GREATER_EQUAL: "GREATER_EQUAL",
	LESS_EQUAL:    "LESS_EQUAL",
	EQUAL:         "EQUAL",
	NOT_EQUAL:     "NOT_EQUAL",
	AND:           "AND",
	OR:            "OR",
	NOT:           "NOT",
	MATCH:         "MATCH",
	WHEN:          "WHEN",
	ASYNC:         "ASYNC",
	AWAIT:         "AWAIT",
	LAMBDA:        "LAMBDA",
	PARTIAL:       "PARTIAL",
	COMPOSE:       "COMPOSE",
	MAP:           "MAP",
	OVER:          "OVER",
	FILTER:        "FILTER",
	USING:         "USING",
	REDUCE:        "REDUCE",
	INITIAL:       "INITIAL",
	TYPE:          "TYPE",
	RETURNS:       "RETURNS",
	COLON:         "COLON",
	COMMA:         "COMMA",
	LPAREN:        "LPAREN",
	RPAREN:        "RPAREN",
	LBRACKET:      "LBRACKET",
	RBRACKET:      "RBRACKET",
	LBRACE:        "LBRACE",
	RBRACE:        "RBRACE",
	PIPELINE:      "PIPELINE",
	PIPE:          "PIPE",
	ARROW:         "ARROW",
	ELLIPSIS:      "ELLIPSIS",
	UNDERSCORE:    "UNDERSCORE",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched; decoded for strings
	Line   int    // 1-based source line
	Column int    // 1-based column of the first rune
}

// Pos returns the token position as an AST position.
func (t Token) Pos() ast.Position {
	return ast.Position{Line: t.Line, Column: t.Column}
}

func (t Token) String() string {
	return fmt.Sprintf("%-13s %-16q line %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}
