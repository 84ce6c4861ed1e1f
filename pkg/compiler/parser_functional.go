package compiler

import "runa/pkg/ast"

// functionalExtension adds lambdas and function combinators:
//
//	lambda   = "Lambda" (IDENT ("and" IDENT)*)? ":" expression
//	pipeline = expression "|>" or
//	partial  = "Partial" operand "with" arguments
//	compose  = "compose" operand "with" operand ("and" operand)*
//	map      = "Map" function "over" additive
//	filter   = "Filter" additive "using" function
//	reduce   = "Reduce" additive "using" function ("with" "initial" additive)?
type functionalExtension struct{}

func (functionalExtension) Name() string { return "functional" }

func (functionalExtension) Install(g *Grammar) error {
	words := map[string]TokenType{
		"Lambda":  LAMBDA,
		"Partial": PARTIAL,
		"compose": COMPOSE,
		"Map":     MAP,
		"over":    OVER,
		"Filter":  FILTER,
		"using":   USING,
		"Reduce":  REDUCE,
		"initial": INITIAL,
	}
	for w, tt := range words {
		if err := g.Keyword(w, tt); err != nil {
			return err
		}
	}
	prefixes := []struct {
		tt   TokenType
		rule prefixRule
	}{
		{LAMBDA, (*Parser).parseLambda},
		{PARTIAL, (*Parser).parsePartial},
		{COMPOSE, (*Parser).parseCompose},
		{MAP, (*Parser).parseMap},
		{FILTER, (*Parser).parseFilter},
		{REDUCE, (*Parser).parseReduce},
	}
	for _, pr := range prefixes {
		if err := g.Prefix(pr.tt, pr.rule); err != nil {
			return err
		}
	}
	return g.Infix(PIPELINE, (*Parser).parsePipeline)
}

func (p *Parser) parseLambda() (ast.Expr, error) {
	lambda := p.advance()
	var params []string
	if p.peek().Type != COLON {
		for {
			name, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			params = append(params, name.Lexeme)
			if !p.accept(AND) {
				break
			}
		}
	}
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.LambdaExpression{Position: lambda.Pos(), Parameters: params, Body: body}, nil
}

func (p *Parser) parsePipeline(left ast.Expr) (ast.Expr, error) {
	p.advance()
	right, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	return &ast.PipelineExpression{Position: left.Pos(), Left: left, Right: right}, nil
}

// parseFunctionOperand parses the function argument of a combinator: a lambda
// or an operand that is never itself a call.
func (p *Parser) parseFunctionOperand() (ast.Expr, error) {
	if p.peek().Type == LAMBDA {
		return p.parseLambda()
	}
	return p.parseOperand()
}

func (p *Parser) parsePartial() (ast.Expr, error) {
	partial := p.advance()
	fn, err := p.parseFunctionOperand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(WITH); err != nil {
		return nil, err
	}
	args, named, err := p.parseArguments()
	if err != nil {
		return nil, err
	}
	return &ast.PartialApplication{Position: partial.Pos(), Function: fn, Args: args, Named: named}, nil
}

func (p *Parser) parseCompose() (ast.Expr, error) {
	compose := p.advance()
	first, err := p.parseFunctionOperand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(WITH); err != nil {
		return nil, err
	}
	expr := &ast.CompositionExpression{Position: compose.Pos(), Functions: []ast.Expr{first}}
	for {
		fn, err := p.parseFunctionOperand()
		if err != nil {
			return nil, err
		}
		expr.Functions = append(expr.Functions, fn)
		if !p.accept(AND) {
			return expr, nil
		}
	}
}

func (p *Parser) parseMap() (ast.Expr, error) {
	m := p.advance()
	fn, err := p.parseFunctionOperand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(OVER); err != nil {
		return nil, err
	}
	collection, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &ast.MapExpression{Position: m.Pos(), Function: fn, Collection: collection}, nil
}

func (p *Parser) parseFilter() (ast.Expr, error) {
	f := p.advance()
	collection, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(USING); err != nil {
		return nil, err
	}
	pred, err := p.parseFunctionOperand()
	if err != nil {
		return nil, err
	}
	return &ast.FilterExpression{Position: f.Pos(), Collection: collection, Predicate: pred}, nil
}

func (p *Parser) parseReduce() (ast.Expr, error) {
	r := p.advance()
	collection, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(USING); err != nil {
		return nil, err
	}
	fn, err := p.parseFunctionOperand()
	if err != nil {
		return nil, err
	}
	expr := &ast.ReduceExpression{Position: r.Pos(), Collection: collection, Function: fn}
	if p.peek().Type == WITH && p.peekAt(1).Type == INITIAL {
		p.advance()
		p.advance()
		if expr.Initial, err = p.parseAdditive(); err != nil {
			return nil, err
		}
	}
	return expr, nil
}
