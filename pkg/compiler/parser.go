package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"runa/pkg/ast"
)

// ParseError reports a malformed production. It aborts the parse.
type ParseError struct {
	Message string
	Line    int
	Column  int
	Snippet string
}

func (e *ParseError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d, column %d: %s\n  |> %s", e.Line, e.Column, e.Message, e.Snippet)
}

// Parser consumes tokens lazily from a Lexer and builds an AST.
//
// Core grammar (extensions add Match, Async, functional and typed forms):
//
//	program     = (NEWLINE | statement)* EOF
//	statement   = let | set | define | if | forEach | return | display | process | call
//	block       = ":" NEWLINE INDENT statement+ DEDENT
//	let         = "Let" IDENT "be" expression NEWLINE
//	set         = "Set" IDENT "to" expression NEWLINE
//	define      = "Define" IDENT "as" ("list" | "dictionary") "containing" items NEWLINE
//	if          = "If" expression block ("Otherwise" (if | block))?
//	forEach     = "For" "each" IDENT "in" expression block
//	process     = "Process" "called" STRING ("that" "takes" IDENT ("and" IDENT)*)? block
//	expression  = or ("|>" or)*
//	or          = and ("or" and)*
//	and         = comparison ("and" comparison)*
//	comparison  = additive ("is"? compareOp additive)*
//	additive    = multiplicative (("plus" | "minus") multiplicative)*
//	multiplicative = unary (("multiplied by" | "divided by" | "modulo") unary)*
//	postfix     = primary ("at" ("index" | "key")? primary)*
//	primary     = literal | IDENT ("with" arguments)? | "(" expression ")" | list | dictionary
//	arguments   = argument ("and" argument)*
//	argument    = (IDENT "as")? comparison
type Parser struct {
	lex         *Lexer
	grammar     *Grammar
	buf         []Token // lookahead buffer
	sourceLines []string
}

// NewParser returns a parser reading src with the vocabulary of g.
func (g *Grammar) NewParser(src string) *Parser {
	return &Parser{
		lex:         NewLexer(src, g.vocab),
		grammar:     g,
		sourceLines: strings.Split(src, "\n"),
	}
}

// LexErrors returns the lexical errors seen so far.
func (p *Parser) LexErrors() []*LexError {
	return p.lex.Errors()
}

// fmtError builds a ParseError pointing at tok with the offending source line.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	snippet := ""
	if idx := tok.Line - 1; idx >= 0 && idx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[idx])
	}
	return &ParseError{Message: msg, Line: tok.Line, Column: tok.Column, Snippet: snippet}
}

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) Token {
	for len(p.buf) <= offset {
		p.buf = append(p.buf, p.lex.Next())
	}
	return p.buf[offset]
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	return p.peekAt(0)
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if tok.Type != EOF {
		p.buf = p.buf[1:]
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s", tt, describe(tok))
	}
	return p.advance(), nil
}

// accept consumes the current token if it matches tt.
func (p *Parser) accept(tt TokenType) bool {
	if p.peek().Type == tt {
		p.advance()
		return true
	}
	return false
}

func describe(tok Token) string {
	switch tok.Type {
	case EOF, NEWLINE, INDENT, DEDENT:
		return tok.Type.String()
	}
	return fmt.Sprintf("%s (%q)", tok.Type, tok.Lexeme)
}

// endStatement consumes the NEWLINE terminating a simple statement.
func (p *Parser) endStatement() error {
	tok := p.peek()
	switch tok.Type {
	case NEWLINE:
		p.advance()
		return nil
	case EOF, DEDENT:
		return nil
	}
	return p.fmtError(tok, "expected end of line, got %s", describe(tok))
}

func (p *Parser) skipNewlines() {
	for p.peek().Type == NEWLINE {
		p.advance()
	}
}

// ParseProgram parses statements until EOF.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	p.skipNewlines()
	for p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
		p.skipNewlines()
	}
	return prog, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	tok := p.peek()
	if rule, ok := p.grammar.statements[tok.Type]; ok {
		return rule(p)
	}
	switch tok.Type {
	case INDENT:
		return nil, p.fmtError(tok, "unexpected indentation")
	case DEDENT, EOF:
		return nil, p.fmtError(tok, "expected a statement, got %s", describe(tok))
	}
	return p.parseExpressionStatement()
}

// parseBlock parses ":" NEWLINE INDENT statement+ DEDENT.
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}
	if _, err := p.expect(NEWLINE); err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(INDENT); err != nil {
		return nil, err
	}
	var body []ast.Stmt
	for {
		p.skipNewlines()
		tok := p.peek()
		if tok.Type == DEDENT {
			p.advance()
			break
		}
		if tok.Type == EOF {
			return nil, p.fmtError(tok, "unexpected end of input inside block")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	return body, nil
}

// parseLet handles "Let x be e" and, with annotations enabled, "Let x (T) be e".
func (p *Parser) parseLet() (ast.Stmt, error) {
	let := p.advance()
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	var annotation ast.TypeExpr
	if p.peek().Type == LPAREN {
		if !p.grammar.annotations {
			return nil, p.fmtError(p.peek(), "type annotations are not enabled")
		}
		if annotation, err = p.parseParenType(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(BE); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	if annotation != nil {
		return &ast.TypedDeclaration{Position: let.Pos(), Name: name.Lexeme, Annotation: annotation, Value: value}, nil
	}
	return &ast.Declaration{Position: let.Pos(), Name: name.Lexeme, Value: value}, nil
}

func (p *Parser) parseSet() (ast.Stmt, error) {
	set := p.advance()
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TO); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return &ast.Assignment{Position: set.Pos(), Name: name.Lexeme, Value: value}, nil
}

// parseDefine handles "Define x as list containing a, b" and the dictionary
// form "Define x as dictionary containing k: v". "Define x as e" declares x.
func (p *Parser) parseDefine() (ast.Stmt, error) {
	def := p.advance()
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(AS); err != nil {
		return nil, err
	}

	var value ast.Expr
	kind := p.peek()
	if kind.Type == IDENTIFIER && (kind.Lexeme == "list" || kind.Lexeme == "dictionary") && p.peekAt(1).Type == CONTAINING {
		p.advance()
		p.advance()
		if kind.Lexeme == "list" {
			value, err = p.parseContainedList(kind)
		} else {
			value, err = p.parseContainedDictionary(kind)
		}
	} else {
		value, err = p.parseExpression()
	}
	if err != nil {
		return nil, err
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return &ast.Declaration{Position: def.Pos(), Name: name.Lexeme, Value: value}, nil
}

func (p *Parser) parseContainedList(start Token) (ast.Expr, error) {
	list := &ast.ListExpression{Position: start.Pos()}
	for {
		el, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, el)
		if !p.accept(COMMA) {
			return list, nil
		}
	}
}

func (p *Parser) parseContainedDictionary(start Token) (ast.Expr, error) {
	dict := &ast.DictionaryExpression{Position: start.Pos()}
	for {
		entry, err := p.parseDictionaryEntry()
		if err != nil {
			return nil, err
		}
		dict.Entries = append(dict.Entries, entry)
		if !p.accept(COMMA) {
			return dict, nil
		}
	}
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	ifTok := p.advance()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStatement{Position: ifTok.Pos(), Condition: cond, Then: then}

	if p.peek().Type == OTHERWISE {
		p.advance()
		if p.peek().Type == IF {
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			stmt.Else = []ast.Stmt{nested}
		} else if stmt.Else, err = p.parseBlock(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseForEach() (ast.Stmt, error) {
	forTok := p.advance()
	return p.parseForEachRest(forTok, false)
}

// parseForEachRest parses "each x in e:" after the For token.
func (p *Parser) parseForEachRest(start Token, async bool) (ast.Stmt, error) {
	if _, err := p.expect(EACH); err != nil {
		return nil, err
	}
	variable, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(IN); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForEachStatement{Position: start.Pos(), Variable: variable.Lexeme, Iterable: iterable, Body: body, Async: async}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	ret := p.advance()
	stmt := &ast.ReturnStatement{Position: ret.Pos()}
	switch p.peek().Type {
	case NEWLINE, DEDENT, EOF:
	default:
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseDisplay() (ast.Stmt, error) {
	disp := p.advance()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return &ast.DisplayStatement{Position: disp.Pos(), Value: value}, nil
}

func (p *Parser) parseProcess() (ast.Stmt, error) {
	return p.parseProcessFrom(p.advance(), false)
}

// processParam is a parsed parameter before the typed/untyped form is chosen.
type processParam struct {
	name       string
	annotation ast.TypeExpr
}

// parseProcessFrom parses a process definition after its "Process" token.
func (p *Parser) parseProcessFrom(start Token, async bool) (ast.Stmt, error) {
	var generics []ast.GenericParameter
	if p.peek().Type == LBRACKET {
		if !p.grammar.annotations {
			return nil, p.fmtError(p.peek(), "generic parameters are not enabled")
		}
		var err error
		if generics, err = p.parseGenericParameters(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(CALLED); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(STRING)
	if err != nil {
		return nil, err
	}
	if !isIdentifier(nameTok.Lexeme) {
		return nil, p.fmtError(nameTok, "process name %q is not a valid identifier", nameTok.Lexeme)
	}

	var params []processParam
	if p.peek().Type == THAT {
		p.advance()
		if _, err := p.expect(TAKES); err != nil {
			return nil, err
		}
		if params, err = p.parseParameters(); err != nil {
			return nil, err
		}
	}

	var returns ast.TypeExpr
	if p.peek().Type == RETURNS {
		if returns, err = p.parseReturnAnnotation(); err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	typed := len(generics) > 0 || returns != nil
	for _, param := range params {
		typed = typed || param.annotation != nil
	}
	if !typed {
		names := make([]string, len(params))
		for i, param := range params {
			names[i] = param.name
		}
		return &ast.ProcessDefinition{Position: start.Pos(), Name: nameTok.Lexeme, Parameters: names, Body: body, Async: async}, nil
	}

	def := &ast.TypedProcessDefinition{
		Position: start.Pos(),
		Name:     nameTok.Lexeme,
		Generics: generics,
		Returns:  returns,
		Body:     body,
		Async:    async,
	}
	for _, param := range params {
		def.Parameters = append(def.Parameters, ast.TypedParameter{Name: param.name, Type: param.annotation})
	}
	return def, nil
}

// parseParameters parses "a and b" or, with annotations, "a (Integer) and b".
func (p *Parser) parseParameters() ([]processParam, error) {
	var params []processParam
	for {
		name, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		param := processParam{name: name.Lexeme}
		if p.peek().Type == LPAREN {
			if !p.grammar.annotations {
				return nil, p.fmtError(p.peek(), "type annotations are not enabled")
			}
			if param.annotation, err = p.parseParenType(); err != nil {
				return nil, err
			}
		}
		params = append(params, param)
		if !p.accept(AND) {
			return params, nil
		}
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// parseExpressionStatement parses a call used as a statement. A bare name
// in statement position calls the process of that name with no arguments.
func (p *Parser) parseExpressionStatement() (ast.Stmt, error) {
	start := p.peek()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	switch e := expr.(type) {
	case *ast.VariableReference:
		expr = &ast.FunctionCall{Position: e.Position, Name: e.Name}
	case *ast.FunctionCall, *ast.AwaitExpression, *ast.PipelineExpression:
	default:
		return nil, p.fmtError(start, "expected a statement, got expression %s", expr)
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Position: start.Pos(), Expr: expr}, nil
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (ast.Expr, error) {
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	for {
		rule, ok := p.grammar.infixes[p.peek().Type]
		if !ok {
			return expr, nil
		}
		if expr, err = rule(p, expr); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseOr() (ast.Expr, error) {
	expr, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == OR {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryOperation{Position: expr.Pos(), Left: expr, Op: ast.OpOr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	expr, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AND {
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryOperation{Position: expr.Pos(), Left: expr, Op: ast.OpAnd, Right: right}
	}
	return expr, nil
}

var comparisonOps = map[TokenType]ast.Operator{
	GREATER:       ast.OpGreater,
	LESS:          ast.OpLess,
	GREATER_EQUAL: ast.OpGreaterEqual,
	LESS_EQUAL:    ast.OpLessEqual,
	EQUAL:         ast.OpEqual,
	NOT_EQUAL:     ast.OpNotEqual,
}

// parseComparison handles the comparison phrases, each optionally preceded by "is".
func (p *Parser) parseComparison() (ast.Expr, error) {
	expr, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		tt := p.peek().Type
		if tt == IS {
			if _, ok := comparisonOps[p.peekAt(1).Type]; !ok {
				return expr, nil
			}
			p.advance()
			tt = p.peek().Type
		}
		op, ok := comparisonOps[tt]
		if !ok {
			return expr, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryOperation{Position: expr.Pos(), Left: expr, Op: op, Right: right}
	}
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == PLUS || p.peek().Type == MINUS {
		op := ast.OpPlus
		if p.advance().Type == MINUS {
			op = ast.OpMinus
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryOperation{Position: expr.Pos(), Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

var multiplicativeOps = map[TokenType]ast.Operator{
	MULTIPLIED: ast.OpMultiply,
	DIVIDED:    ast.OpDivide,
	MODULO:     ast.OpModulo,
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	expr, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := multiplicativeOps[p.peek().Type]
		if !ok {
			return expr, nil
		}
		p.advance()
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryOperation{Position: expr.Pos(), Left: expr, Op: op, Right: right}
	}
}

// parsePostfix handles "e at index i", "e at key k" and "e at i".
func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AT {
		p.advance()
		if tok := p.peek(); tok.Type == IDENTIFIER && (tok.Lexeme == "index" || tok.Lexeme == "key") && startsOperand(p.peekAt(1).Type) {
			p.advance()
		}
		index, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		expr = &ast.IndexAccess{Position: expr.Pos(), Target: expr, Index: index}
	}
	return expr, nil
}

// startsOperand reports whether tt can begin a primary expression.
func startsOperand(tt TokenType) bool {
	switch tt {
	case IDENTIFIER, STRING, INTEGER, FLOAT, TRUE, FALSE, LPAREN, LBRACKET, LBRACE:
		return true
	}
	return false
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()
	if rule, ok := p.grammar.prefixes[tok.Type]; ok {
		return rule(p)
	}
	switch tok.Type {
	case STRING:
		p.advance()
		lit := &ast.StringLiteral{Position: tok.Pos(), Value: tok.Lexeme}
		if p.peek().Type == WITH && p.peekAt(1).Type == IDENTIFIER && p.peekAt(2).Type == AS {
			p.advance()
			args, named, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			if len(args) > 0 {
				return nil, p.fmtError(tok, "format arguments must be named")
			}
			return &ast.FunctionCall{Position: tok.Pos(), Name: "format_string", Args: []ast.Expr{lit}, Named: named}, nil
		}
		return lit, nil
	case INTEGER, FLOAT:
		return p.numberLiteral(p.advance())
	case TRUE, FALSE:
		p.advance()
		return &ast.BooleanLiteral{Position: tok.Pos(), Value: tok.Type == TRUE}, nil
	case IDENTIFIER:
		p.advance()
		if p.peek().Type == WITH && p.peekAt(1).Type != INITIAL {
			p.advance()
			args, named, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			return &ast.FunctionCall{Position: tok.Pos(), Name: tok.Lexeme, Args: args, Named: named}, nil
		}
		return &ast.VariableReference{Position: tok.Pos(), Name: tok.Lexeme}, nil
	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case LBRACKET:
		return p.parseBracketLiteral()
	case LBRACE:
		return p.parseBraceDictionary()
	}
	return nil, p.fmtError(tok, "expected an expression, got %s", describe(tok))
}

func (p *Parser) numberLiteral(tok Token) (ast.Expr, error) {
	value, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		return nil, p.fmtError(tok, "invalid number %q", tok.Lexeme)
	}
	return &ast.NumberLiteral{Position: tok.Pos(), Text: tok.Lexeme, Value: value, IsFloat: tok.Type == FLOAT}, nil
}

// parseOperand parses a primary expression in which a bare name is never
// treated as a call. Combinator productions use it for function operands.
func (p *Parser) parseOperand() (ast.Expr, error) {
	tok := p.peek()
	if tok.Type == IDENTIFIER {
		p.advance()
		return &ast.VariableReference{Position: tok.Pos(), Name: tok.Lexeme}, nil
	}
	return p.parsePrimary()
}

// parseArguments parses "a and b" or "k as v and j as w". Positional
// arguments must come before named ones.
func (p *Parser) parseArguments() ([]ast.Expr, []ast.NamedArgument, error) {
	var args []ast.Expr
	var named []ast.NamedArgument
	seen := make(map[string]bool)
	for {
		tok := p.peek()
		if tok.Type == IDENTIFIER && p.peekAt(1).Type == AS {
			p.advance()
			p.advance()
			if seen[tok.Lexeme] {
				return nil, nil, p.fmtError(tok, "duplicate named argument %q", tok.Lexeme)
			}
			seen[tok.Lexeme] = true
			value, err := p.parseComparison()
			if err != nil {
				return nil, nil, err
			}
			named = append(named, ast.NamedArgument{Name: tok.Lexeme, Value: value})
		} else {
			if len(named) > 0 {
				return nil, nil, p.fmtError(tok, "positional argument after named arguments")
			}
			value, err := p.parseComparison()
			if err != nil {
				return nil, nil, err
			}
			args = append(args, value)
		}
		if !p.accept(AND) {
			return args, named, nil
		}
	}
}

// parseBracketLiteral parses "[a, b]", "[k: v]", "[]" and "[:]".
func (p *Parser) parseBracketLiteral() (ast.Expr, error) {
	open := p.advance()
	if p.accept(RBRACKET) {
		return &ast.ListExpression{Position: open.Pos()}, nil
	}
	if p.peek().Type == COLON && p.peekAt(1).Type == RBRACKET {
		p.advance()
		p.advance()
		return &ast.DictionaryExpression{Position: open.Pos()}, nil
	}

	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == COLON {
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		dict := &ast.DictionaryExpression{Position: open.Pos(), Entries: []ast.DictionaryEntry{{Key: first, Value: value}}}
		for p.accept(COMMA) {
			entry, err := p.parseDictionaryEntry()
			if err != nil {
				return nil, err
			}
			dict.Entries = append(dict.Entries, entry)
		}
		if _, err := p.expect(RBRACKET); err != nil {
			return nil, err
		}
		return dict, nil
	}

	list := &ast.ListExpression{Position: open.Pos(), Elements: []ast.Expr{first}}
	for p.accept(COMMA) {
		el, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, el)
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return nil, err
	}
	return list, nil
}

// parseBraceDictionary parses "{k: v, ...}" and "{}".
func (p *Parser) parseBraceDictionary() (ast.Expr, error) {
	open := p.advance()
	dict := &ast.DictionaryExpression{Position: open.Pos()}
	if p.accept(RBRACE) {
		return dict, nil
	}
	for {
		entry, err := p.parseDictionaryEntry()
		if err != nil {
			return nil, err
		}
		dict.Entries = append(dict.Entries, entry)
		if !p.accept(COMMA) {
			break
		}
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return dict, nil
}

func (p *Parser) parseDictionaryEntry() (ast.DictionaryEntry, error) {
	key, err := p.parseExpression()
	if err != nil {
		return ast.DictionaryEntry{}, err
	}
	if _, err := p.expect(COLON); err != nil {
		return ast.DictionaryEntry{}, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return ast.DictionaryEntry{}, err
	}
	return ast.DictionaryEntry{Key: key, Value: value}, nil
}
