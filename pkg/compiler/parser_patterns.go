package compiler

import (
	"unicode"

	"runa/pkg/ast"
)

// patternsExtension adds structural matching:
//
//	match    = "Match" expression ":" NEWLINE INDENT case+ DEDENT
//	case     = "When" pattern block
//	pattern  = "_" | literal | IDENT | TypeName pattern? | "[" elements "]" | "{" entries "}"
//	elements = (pattern | "..." IDENT?) ("," (pattern | "..." IDENT?))*
//	entries  = literal ":" pattern ("," literal ":" pattern)*
type patternsExtension struct{}

func (patternsExtension) Name() string { return "patterns" }

func (patternsExtension) Install(g *Grammar) error {
	if err := g.Keyword("Match", MATCH); err != nil {
		return err
	}
	if err := g.Keyword("When", WHEN); err != nil {
		return err
	}
	return g.Statement(MATCH, (*Parser).parseMatch)
}

// runtimeTypeNames are the names a bare capitalized pattern treats as a type guard.
var runtimeTypeNames = map[string]bool{
	"Integer":    true,
	"Float":      true,
	"Number":     true,
	"String":     true,
	"Boolean":    true,
	"List":       true,
	"Dictionary": true,
}

func (p *Parser) parseMatch() (ast.Stmt, error) {
	match := p.advance()
	subject, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
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

	stmt := &ast.MatchStatement{Position: match.Pos(), Subject: subject}
	for {
		p.skipNewlines()
		tok := p.peek()
		if tok.Type == DEDENT {
			p.advance()
			break
		}
		if tok.Type != WHEN {
			return nil, p.fmtError(tok, "expected When, got %s", describe(tok))
		}
		p.advance()
		pattern, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Cases = append(stmt.Cases, &ast.MatchCase{Position: tok.Pos(), Pattern: pattern, Body: body})
	}
	if len(stmt.Cases) == 0 {
		return nil, p.fmtError(match, "Match needs at least one When case")
	}
	return stmt, nil
}

// startsPattern reports whether tt can begin a pattern.
func startsPattern(tt TokenType) bool {
	switch tt {
	case UNDERSCORE, IDENTIFIER, STRING, INTEGER, FLOAT, TRUE, FALSE, LBRACKET, LBRACE:
		return true
	}
	return false
}

func (p *Parser) parsePattern() (ast.Pattern, error) {
	tok := p.peek()
	switch tok.Type {
	case UNDERSCORE:
		p.advance()
		return &ast.WildcardPattern{Position: tok.Pos()}, nil
	case STRING, INTEGER, FLOAT, TRUE, FALSE:
		lit, err := p.parsePatternLiteral()
		if err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Position: tok.Pos(), Value: lit}, nil
	case IDENTIFIER:
		p.advance()
		if isTypeName(tok.Lexeme) && startsPattern(p.peek().Type) {
			inner, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			return &ast.TypePattern{Position: tok.Pos(), TypeName: tok.Lexeme, Inner: inner}, nil
		}
		if runtimeTypeNames[tok.Lexeme] {
			return &ast.TypePattern{Position: tok.Pos(), TypeName: tok.Lexeme}, nil
		}
		return &ast.VariablePattern{Position: tok.Pos(), Name: tok.Lexeme}, nil
	case LBRACKET:
		return p.parseBracketPattern()
	case LBRACE:
		return p.parseBracePattern()
	case ELLIPSIS:
		return nil, p.fmtError(tok, "rest pattern is only allowed inside a list pattern")
	}
	return nil, p.fmtError(tok, "expected a pattern, got %s", describe(tok))
}

func isTypeName(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

// parsePatternLiteral parses the literal key or value of a pattern.
func (p *Parser) parsePatternLiteral() (ast.Expr, error) {
	tok := p.advance()
	switch tok.Type {
	case STRING:
		return &ast.StringLiteral{Position: tok.Pos(), Value: tok.Lexeme}, nil
	case TRUE, FALSE:
		return &ast.BooleanLiteral{Position: tok.Pos(), Value: tok.Type == TRUE}, nil
	case INTEGER, FLOAT:
		return p.numberLiteral(tok)
	}
	return nil, p.fmtError(tok, "expected a literal, got %s", describe(tok))
}

func (p *Parser) parseBracketPattern() (ast.Pattern, error) {
	open := p.advance()
	if p.accept(RBRACKET) {
		return &ast.ListPattern{Position: open.Pos()}, nil
	}
	if p.peek().Type == COLON && p.peekAt(1).Type == RBRACKET {
		p.advance()
		p.advance()
		return &ast.DictionaryPattern{Position: open.Pos()}, nil
	}
	if isLiteralToken(p.peek().Type) && p.peekAt(1).Type == COLON {
		entries, err := p.parsePatternEntries()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RBRACKET); err != nil {
			return nil, err
		}
		return &ast.DictionaryPattern{Position: open.Pos(), Entries: entries}, nil
	}

	list := &ast.ListPattern{Position: open.Pos()}
	for {
		tok := p.peek()
		if tok.Type == ELLIPSIS {
			p.advance()
			rest := &ast.RestPattern{Position: tok.Pos()}
			if p.peek().Type == IDENTIFIER {
				rest.Name = p.advance().Lexeme
			}
			list.Elements = append(list.Elements, rest)
		} else {
			el, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, el)
		}
		if !p.accept(COMMA) {
			break
		}
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return nil, err
	}
	return list, nil
}

func (p *Parser) parseBracePattern() (ast.Pattern, error) {
	open := p.advance()
	dict := &ast.DictionaryPattern{Position: open.Pos()}
	if p.accept(RBRACE) {
		return dict, nil
	}
	entries, err := p.parsePatternEntries()
	if err != nil {
		return nil, err
	}
	dict.Entries = entries
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return dict, nil
}

func (p *Parser) parsePatternEntries() ([]ast.DictionaryPatternEntry, error) {
	var entries []ast.DictionaryPatternEntry
	for {
		if !isLiteralToken(p.peek().Type) {
			return nil, p.fmtError(p.peek(), "dictionary pattern keys must be literals, got %s", describe(p.peek()))
		}
		key, err := p.parsePatternLiteral()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(COLON); err != nil {
			return nil, err
		}
		value, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.DictionaryPatternEntry{Key: key, Value: value})
		if !p.accept(COMMA) {
			return entries, nil
		}
	}
}

func isLiteralToken(tt TokenType) bool {
	switch tt {
	case STRING, INTEGER, FLOAT, TRUE, FALSE:
		return true
	}
	return false
}
