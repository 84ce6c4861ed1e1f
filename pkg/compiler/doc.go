// Package compiler provides the Runa front end: an indentation-aware lexer,
// an extensible recursive-descent parser, and the semantic analyzer.
//
// Pipeline: Runa source → Lex → Parse → Analyze → *ast.Program + diagnostics
package compiler
