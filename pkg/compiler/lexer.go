package compiler

import (
	"fmt"
	"strings"
	"unicode"
)

// tabWidth is the number of columns a tab counts for when measuring indentation.
const tabWidth = 4

// LexError reports an illegal or malformed piece of input. Lexing continues
// after a LexError.
type LexError struct {
	Message string
	Line    int
	Column  int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Lexer holds all mutable state for a single scanning pass over src. Tokens
// are produced one at a time by Next.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // current 1-based column

	vocab   *Vocabulary
	indents []int   // indentation stack, seeded with 0
	pending []Token // synthesized tokens waiting to be returned
	depth   int     // bracket nesting; newlines inside brackets are ignored

	atLineStart bool
	last        TokenType // type of the last token returned
	emitted     bool      // whether any token other than layout was returned
	finished    bool
	errors      []*LexError
}

// NewLexer creates a lexer over src recognizing the keywords of vocab.
func NewLexer(src string, vocab *Vocabulary) *Lexer {
	if vocab == nil {
		vocab = NewVocabulary()
	}
	return &Lexer{
		src:         []rune(src),
		line:        1,
		col:         1,
		vocab:       vocab,
		indents:     []int{0},
		atLineStart: true,
		last:        NEWLINE,
	}
}

// Errors returns the lexical errors reported so far.
func (l *Lexer) Errors() []*LexError {
	return l.errors
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) errorf(line, col int, format string, args ...any) {
	l.errors = append(l.errors, &LexError{Message: fmt.Sprintf(format, args...), Line: line, Column: col})
}

// skipInlineSpace skips spaces, tabs and carriage returns but not newlines.
func (l *Lexer) skipInlineSpace() {
	for {
		switch l.peek() {
		case ' ', '\t', '\r':
			l.advance()
		default:
			return
		}
	}
}

// skipLineComment discards everything from the current position to end-of-line.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

func (l *Lexer) emit(tok Token) Token {
	l.last = tok.Type
	if tok.Type != NEWLINE && tok.Type != INDENT && tok.Type != DEDENT {
		l.emitted = true
	}
	return tok
}

func (l *Lexer) popPending() Token {
	tok := l.pending[0]
	l.pending = l.pending[1:]
	return l.emit(tok)
}

// measureIndent consumes the leading whitespace of a line and pushes
// INDENT/DEDENT tokens as needed. Blank and comment-only lines are left
// untouched.
func (l *Lexer) measureIndent() {
	width := 0
scan:
	for {
		switch l.peek() {
		case ' ':
			width++
		case '\t':
			width += tabWidth
		case '\r':
		default:
			break scan
		}
		l.advance()
	}
	switch l.peek() {
	case '\n', '#', 0:
		return
	}

	top := l.indents[len(l.indents)-1]
	switch {
	case width > top:
		l.indents = append(l.indents, width)
		l.pending = append(l.pending, Token{Type: INDENT, Line: l.line, Column: l.col})
	case width < top:
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			l.pending = append(l.pending, Token{Type: DEDENT, Line: l.line, Column: l.col})
		}
		if l.indents[len(l.indents)-1] != width {
			l.errorf(l.line, l.col, "inconsistent dedent to column %d", width)
		}
	}
}

// finish synthesizes the closing NEWLINE, DEDENTs and EOF.
func (l *Lexer) finish() {
	l.finished = true
	if l.emitted && l.last != NEWLINE && l.last != DEDENT {
		l.pending = append(l.pending, Token{Type: NEWLINE, Line: l.line, Column: l.col})
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.pending = append(l.pending, Token{Type: DEDENT, Line: l.line, Column: l.col})
	}
	l.pending = append(l.pending, Token{Type: EOF, Line: l.line, Column: l.col})
}

// Next returns the next token. After EOF it keeps returning EOF.
func (l *Lexer) Next() Token {
	for {
		if len(l.pending) > 0 {
			return l.popPending()
		}
		if l.finished {
			return Token{Type: EOF, Line: l.line, Column: l.col}
		}
		if l.atLineStart && l.depth == 0 {
			l.atLineStart = false
			l.measureIndent()
			if len(l.pending) > 0 {
				continue
			}
		}

		l.skipInlineSpace()
		r := l.peek()
		line, col := l.line, l.col

		switch {
		case r == 0:
			l.finish()
		case r == '\n':
			l.advance()
			if l.depth > 0 {
				continue
			}
			l.atLineStart = true
			if l.last == NEWLINE || l.last == DEDENT || l.last == INDENT || !l.emitted {
				continue
			}
			return l.emit(Token{Type: NEWLINE, Lexeme: "\\n", Line: line, Column: col})
		case r == '#':
			l.skipLineComment()
		case unicode.IsLetter(r) || r == '_':
			return l.emit(l.scanWord())
		case unicode.IsDigit(r):
			return l.emit(l.scanNumber())
		case r == '"':
			if tok, ok := l.scanString(); ok {
				return l.emit(tok)
			}
		default:
			if tok, ok := l.scanSymbol(); ok {
				return l.emit(tok)
			}
		}
	}
}

// scanIdentText collects letters, digits and underscores.
func (l *Lexer) scanIdentText() string {
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	return string(l.src[start:l.pos])
}

// scanWord collects an identifier, keyword or multi-word operator.
func (l *Lexer) scanWord() Token {
	line, col := l.line, l.col
	word := l.scanIdentText()
	if word == "_" {
		return Token{Type: UNDERSCORE, Lexeme: word, Line: line, Column: col}
	}

	for _, ph := range phrases[word] {
		if lexeme, ok := l.matchPhrase(ph); ok {
			return Token{Type: ph.tt, Lexeme: lexeme, Line: line, Column: col}
		}
	}

	tt := IDENTIFIER
	if kw, ok := l.vocab.Lookup(word); ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: word, Line: line, Column: col}
}

// matchPhrase tries to consume the words after the first word of ph on the
// current line. On failure the lexer position is restored.
func (l *Lexer) matchPhrase(ph phrase) (string, bool) {
	savePos, saveLine, saveCol := l.pos, l.line, l.col
	for _, want := range ph.words[1:] {
		l.skipInlineSpace()
		r := l.peek()
		if !unicode.IsLetter(r) {
			l.pos, l.line, l.col = savePos, saveLine, saveCol
			return "", false
		}
		if got := l.scanIdentText(); got != want {
			l.pos, l.line, l.col = savePos, saveLine, saveCol
			return "", false
		}
	}
	return strings.Join(ph.words, " "), true
}

// scanNumber collects an integer or a decimal literal.
func (l *Lexer) scanNumber() Token {
	line, col := l.line, l.col
	start := l.pos
	for unicode.IsDigit(l.peek()) {
		l.advance()
	}
	tt := INTEGER
	if l.peek() == '.' && unicode.IsDigit(l.peek2()) {
		tt = FLOAT
		l.advance()
		for unicode.IsDigit(l.peek()) {
			l.advance()
		}
	}
	return Token{Type: tt, Lexeme: string(l.src[start:l.pos]), Line: line, Column: col}
}

// scanString collects a double-quoted string and decodes its escapes. An
// unterminated string is reported and dropped.
func (l *Lexer) scanString() (Token, bool) {
	line, col := l.line, l.col
	l.advance() // opening quote
	var sb strings.Builder
	for {
		r := l.peek()
		switch r {
		case 0, '\n':
			l.errorf(line, col, "unterminated string literal")
			return Token{}, false
		case '"':
			l.advance()
			return Token{Type: STRING, Lexeme: sb.String(), Line: line, Column: col}, true
		case '\\':
			l.advance()
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case '"', '\\':
				sb.WriteRune(esc)
			case 0, '\n':
				l.errorf(line, col, "unterminated string literal")
				return Token{}, false
			default:
				l.errorf(l.line, l.col-2, "unknown escape sequence \\%c", esc)
			}
		default:
			sb.WriteRune(l.advance())
		}
	}
}

// scanSymbol handles punctuation. Illegal characters are reported and skipped.
func (l *Lexer) scanSymbol() (Token, bool) {
	line, col := l.line, l.col
	r := l.advance()
	tok := func(tt TokenType, lexeme string) (Token, bool) {
		return Token{Type: tt, Lexeme: lexeme, Line: line, Column: col}, true
	}
	switch r {
	case ':':
		return tok(COLON, ":")
	case ',':
		return tok(COMMA, ",")
	case '(':
		l.depth++
		return tok(LPAREN, "(")
	case ')':
		l.closeBracket()
		return tok(RPAREN, ")")
	case '[':
		l.depth++
		return tok(LBRACKET, "[")
	case ']':
		l.closeBracket()
		return tok(RBRACKET, "]")
	case '{':
		l.depth++
		return tok(LBRACE, "{")
	case '}':
		l.closeBracket()
		return tok(RBRACE, "}")
	case '|':
		if l.peek() == '>' {
			l.advance()
			return tok(PIPELINE, "|>")
		}
		return tok(PIPE, "|")
	case '-':
		if l.peek() == '>' {
			l.advance()
			return tok(ARROW, "->")
		}
	case '.':
		if l.peek() == '.' && l.peek2() == '.' {
			l.advance()
			l.advance()
			return tok(ELLIPSIS, "...")
		}
	}
	l.errorf(line, col, "illegal character %q", r)
	return Token{}, false
}

func (l *Lexer) closeBracket() {
	if l.depth > 0 {
		l.depth--
	}
}

// Lex drains a lexer over src using vocab and returns every token including
// the final EOF, plus any lexical errors.
func Lex(src string, vocab *Vocabulary) ([]Token, []*LexError) {
	l := NewLexer(src, vocab)
	var tokens []Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return tokens, l.Errors()
}
