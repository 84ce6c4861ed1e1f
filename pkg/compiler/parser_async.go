package compiler

import "runa/pkg/ast"

// asyncExtension adds asynchronous processes and iteration:
//
//	asyncStmt = "Async" (process | "For" forEach)
//	await     = "await" postfix
type asyncExtension struct{}

func (asyncExtension) Name() string { return "async" }

func (asyncExtension) Install(g *Grammar) error {
	if err := g.Keyword("Async", ASYNC); err != nil {
		return err
	}
	if err := g.Keyword("await", AWAIT); err != nil {
		return err
	}
	if err := g.Statement(ASYNC, (*Parser).parseAsync); err != nil {
		return err
	}
	return g.Prefix(AWAIT, (*Parser).parseAwait)
}

func (p *Parser) parseAsync() (ast.Stmt, error) {
	async := p.advance()
	switch tok := p.peek(); tok.Type {
	case PROCESS:
		p.advance()
		return p.parseProcessFrom(async, true)
	case FOR:
		p.advance()
		return p.parseForEachRest(async, true)
	default:
		return nil, p.fmtError(tok, "expected Process or For after Async, got %s", describe(tok))
	}
}

func (p *Parser) parseAwait() (ast.Expr, error) {
	await := p.advance()
	value, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	return &ast.AwaitExpression{Position: await.Pos(), Value: value}, nil
}
