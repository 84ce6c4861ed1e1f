package compiler

import "runa/pkg/ast"

// typesExtension adds annotations:
//
//	alias    = "Type" IDENT "is" type NEWLINE
//	typedLet = "Let" IDENT "(" type ")" "be" expression
//	generics = "[" IDENT ("," IDENT)* "]"
//	returns  = "returns" ("(" type ")" | type)
//	type     = atom ("|" atom)*
//	atom     = "(" (type ("," type)*)? ")" ("->" type)? | IDENT ("[" type ("," type)* "]")?
type typesExtension struct{}

func (typesExtension) Name() string { return "types" }

func (typesExtension) Install(g *Grammar) error {
	if err := g.Keyword("Type", TYPE); err != nil {
		return err
	}
	if err := g.Keyword("returns", RETURNS); err != nil {
		return err
	}
	g.EnableAnnotations()
	return g.Statement(TYPE, (*Parser).parseTypeAlias)
}

func (p *Parser) parseTypeAlias() (ast.Stmt, error) {
	typeTok := p.advance()
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(IS); err != nil {
		return nil, err
	}
	target, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return &ast.TypeAlias{Position: typeTok.Pos(), Name: name.Lexeme, Target: target}, nil
}

// parseParenType parses "(" type ")".
func (p *Parser) parseParenType() (ast.TypeExpr, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *Parser) parseReturnAnnotation() (ast.TypeExpr, error) {
	p.advance() // returns; a parenthesized single type parses as a group
	return p.parseType()
}

func (p *Parser) parseGenericParameters() ([]ast.GenericParameter, error) {
	p.advance() // [
	var generics []ast.GenericParameter
	seen := make(map[string]bool)
	for {
		name, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if seen[name.Lexeme] {
			return nil, p.fmtError(name, "duplicate type parameter %q", name.Lexeme)
		}
		seen[name.Lexeme] = true
		generics = append(generics, ast.GenericParameter{Name: name.Lexeme})
		if !p.accept(COMMA) {
			break
		}
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return nil, err
	}
	return generics, nil
}

// parseType parses a type annotation, including unions.
func (p *Parser) parseType() (ast.TypeExpr, error) {
	first, err := p.parseTypeAtom()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != PIPE {
		return first, nil
	}
	union := &ast.UnionType{Position: first.Pos(), Members: []ast.TypeExpr{first}}
	for p.accept(PIPE) {
		member, err := p.parseTypeAtom()
		if err != nil {
			return nil, err
		}
		union.Members = append(union.Members, member)
	}
	return union, nil
}

func (p *Parser) parseTypeAtom() (ast.TypeExpr, error) {
	tok := p.peek()
	switch tok.Type {
	case LPAREN:
		return p.parseFunctionOrGroupedType()
	case IDENTIFIER:
		p.advance()
	default:
		return nil, p.fmtError(tok, "expected a type, got %s", describe(tok))
	}

	if p.peek().Type != LBRACKET {
		if tok.Lexeme == "Any" {
			return &ast.AnyType{Position: tok.Pos()}, nil
		}
		return &ast.NamedType{Position: tok.Pos(), Name: tok.Lexeme}, nil
	}

	p.advance() // [
	var args []ast.TypeExpr
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.accept(COMMA) {
			break
		}
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return nil, err
	}

	switch tok.Lexeme {
	case "List":
		if len(args) != 1 {
			return nil, p.fmtError(tok, "List takes one type argument, got %d", len(args))
		}
		return &ast.ListType{Position: tok.Pos(), Element: args[0]}, nil
	case "Dictionary":
		if len(args) != 2 {
			return nil, p.fmtError(tok, "Dictionary takes two type arguments, got %d", len(args))
		}
		return &ast.DictionaryType{Position: tok.Pos(), Key: args[0], Value: args[1]}, nil
	case "Union":
		return &ast.UnionType{Position: tok.Pos(), Members: args}, nil
	}
	return &ast.GenericType{Position: tok.Pos(), Name: tok.Lexeme, Args: args}, nil
}

// parseFunctionOrGroupedType parses "(A, B) -> R" or a parenthesized type.
func (p *Parser) parseFunctionOrGroupedType() (ast.TypeExpr, error) {
	open := p.advance()
	var params []ast.TypeExpr
	if p.peek().Type != RPAREN {
		for {
			param, err := p.parseType()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.accept(COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	if !p.accept(ARROW) {
		if len(params) != 1 {
			return nil, p.fmtError(open, "expected -> after parameter types")
		}
		return params[0], nil
	}
	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionType{Position: open.Pos(), Params: params, Return: ret}, nil
}
