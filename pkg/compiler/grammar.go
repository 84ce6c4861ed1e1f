package compiler

import (
	"fmt"

	"runa/pkg/ast"
)

// stmtRule parses a statement whose leading token is at p.peek().
type stmtRule func(p *Parser) (ast.Stmt, error)

// prefixRule parses a primary expression whose leading token is at p.peek().
type prefixRule func(p *Parser) (ast.Expr, error)

// infixRule continues an expression at the lowest precedence level. The
// operator token is at p.peek().
type infixRule func(p *Parser, left ast.Expr) (ast.Expr, error)

// Extension adds vocabulary and productions to a Grammar.
type Extension interface {
	Name() string
	Install(g *Grammar) error
}

// Grammar is a fixed composition of the core language and a list of
// extensions. A Grammar is never modified after NewGrammar returns, so one
// value can back any number of concurrent parses.
type Grammar struct {
	vocab       *Vocabulary
	statements  map[TokenType]stmtRule
	prefixes    map[TokenType]prefixRule
	infixes     map[TokenType]infixRule
	owners      map[string]string
	annotations bool
	installed   []string
	installing  string
}

// NewGrammar composes the core grammar with exts in order. Two extensions
// claiming the same leading token is an error.
func NewGrammar(exts ...Extension) (*Grammar, error) {
	g := &Grammar{
		vocab:      NewVocabulary(),
		statements: make(map[TokenType]stmtRule),
		prefixes:   make(map[TokenType]prefixRule),
		infixes:    make(map[TokenType]infixRule),
		owners:     make(map[string]string),
	}
	all := append([]Extension{coreExtension{}}, exts...)
	for _, ext := range all {
		g.installing = ext.Name()
		if err := ext.Install(g); err != nil {
			return nil, fmt.Errorf("extension %s: %w", ext.Name(), err)
		}
		g.installed = append(g.installed, ext.Name())
	}
	g.installing = ""
	return g, nil
}

func (g *Grammar) claim(kind string, tt TokenType) error {
	key := kind + ":" + tt.String()
	if owner, ok := g.owners[key]; ok {
		return fmt.Errorf("%s production for %s already registered by %s", kind, tt, owner)
	}
	g.owners[key] = g.installing
	return nil
}

// Keyword registers a reserved word.
func (g *Grammar) Keyword(word string, tt TokenType) error {
	return g.vocab.Add(word, tt)
}

// Statement registers a statement production keyed by its leading token.
func (g *Grammar) Statement(tt TokenType, rule stmtRule) error {
	if err := g.claim("statement", tt); err != nil {
		return err
	}
	g.statements[tt] = rule
	return nil
}

// Prefix registers a primary-expression production keyed by its leading token.
func (g *Grammar) Prefix(tt TokenType, rule prefixRule) error {
	if err := g.claim("prefix", tt); err != nil {
		return err
	}
	g.prefixes[tt] = rule
	return nil
}

// Infix registers a lowest-precedence, left-associative binary production.
func (g *Grammar) Infix(tt TokenType, rule infixRule) error {
	if err := g.claim("infix", tt); err != nil {
		return err
	}
	g.infixes[tt] = rule
	return nil
}

// EnableAnnotations turns on the typed forms of Let and Process.
func (g *Grammar) EnableAnnotations() {
	g.annotations = true
}

// Vocabulary returns the keyword table used to lex sources for this grammar.
func (g *Grammar) Vocabulary() *Vocabulary {
	return g.vocab
}

// Extensions returns the names of the installed extensions, core first.
func (g *Grammar) Extensions() []string {
	return append([]string(nil), g.installed...)
}

// coreExtension installs the statements every grammar has.
type coreExtension struct{}

func (coreExtension) Name() string { return "core" }

func (coreExtension) Install(g *Grammar) error {
	rules := []struct {
		tt   TokenType
		rule stmtRule
	}{
		{LET, (*Parser).parseLet},
		{SET, (*Parser).parseSet},
		{DEFINE, (*Parser).parseDefine},
		{IF, (*Parser).parseIf},
		{FOR, (*Parser).parseForEach},
		{RETURN, (*Parser).parseReturn},
		{DISPLAY, (*Parser).parseDisplay},
		{PROCESS, (*Parser).parseProcess},
	}
	for _, r := range rules {
		if err := g.Statement(r.tt, r.rule); err != nil {
			return err
		}
	}
	return nil
}

// Built-in extensions.
var (
	PatternsExtension   Extension = patternsExtension{}
	AsyncExtension      Extension = asyncExtension{}
	FunctionalExtension Extension = functionalExtension{}
	TypesExtension      Extension = typesExtension{}
)

var defaultGrammar = func() *Grammar {
	g, err := NewGrammar(PatternsExtension, AsyncExtension, FunctionalExtension, TypesExtension)
	if err != nil {
		panic(err)
	}
	return g
}()

// DefaultGrammar returns the grammar with every built-in extension installed.
func DefaultGrammar() *Grammar {
	return defaultGrammar
}

// LookupExtension returns the built-in extension called name.
func LookupExtension(name string) (Extension, bool) {
	for _, ext := range []Extension{PatternsExtension, AsyncExtension, FunctionalExtension, TypesExtension} {
		if ext.Name() == name {
			return ext, true
		}
	}
	return nil, false
}

// Tokenize lexes src with the default grammar's vocabulary.
func Tokenize(src string) ([]Token, []*LexError) {
	return defaultGrammar.Tokenize(src)
}

// Tokenize lexes src with the vocabulary of g.
func (g *Grammar) Tokenize(src string) ([]Token, []*LexError) {
	return Lex(src, g.vocab)
}

// Parse parses src with the default grammar. Lexical errors do not stop the
// parse and are returned alongside the program.
func Parse(src string) (*ast.Program, []*LexError, error) {
	return defaultGrammar.Parse(src)
}

// Parse parses src with g.
func (g *Grammar) Parse(src string) (*ast.Program, []*LexError, error) {
	p := g.NewParser(src)
	prog, err := p.ParseProgram()
	return prog, p.LexErrors(), err
}
