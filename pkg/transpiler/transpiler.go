// Package transpiler runs the whole Runa pipeline: lexing, parsing,
// analysis, type checking and code generation.
package transpiler

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iotaledger/hive.go/logger"
	"github.com/pkg/errors"

	"runa/pkg/ast"
	"runa/pkg/codegen"
	"runa/pkg/compiler"
	"runa/pkg/feedback"
	"runa/pkg/types"
)

// Stage labels for runa_stage_duration_seconds.
const (
	StageParse     = "parse"
	StageAnalyze   = "analyze"
	StageTypeCheck = "typecheck"
	StageGenerate  = "generate"
)

// OutcomeUnsupportedTarget is recorded when the target id is unknown.
const OutcomeUnsupportedTarget = "unsupported_target"

// unknownTarget labels runs whose target id does not parse.
const unknownTarget = "unknown"

// Transpiler holds a composed grammar. It keeps no per-source state, so a
// single Transpiler may be shared between goroutines.
type Transpiler struct {
	*logger.WrappedLogger

	grammar      *compiler.Grammar
	metrics      *Metrics
	typeComments bool
}

// New builds a Transpiler from opts.
func New(opts ...Option) (*Transpiler, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	g, err := compiler.NewGrammar(cfg.extensions...)
	if err != nil {
		return nil, errors.Wrap(err, "composing grammar")
	}
	return &Transpiler{
		WrappedLogger: logger.NewWrappedLogger(cfg.log),
		grammar:       g,
		metrics:       NewMetrics(cfg.registerer),
		typeComments:  cfg.typeComments,
	}, nil
}

// Extensions names the grammar extensions installed, core first.
func (t *Transpiler) Extensions() []string {
	return t.grammar.Extensions()
}

// Tokenize lexes src.
func (t *Transpiler) Tokenize(src string) ([]compiler.Token, []*compiler.LexError) {
	return t.grammar.Tokenize(src)
}

// Parse lexes and parses src. Lexical errors are returned alongside the
// program; a parse failure yields a nil program and a *compiler.ParseError.
func (t *Transpiler) Parse(src string) (*ast.Program, []*compiler.LexError, error) {
	defer t.metrics.observeStage(StageParse, time.Now())
	return t.grammar.Parse(src)
}

// Analyze resolves names and checks structural rules in prog.
func (t *Transpiler) Analyze(prog *ast.Program) *compiler.AnalysisResult {
	defer t.metrics.observeStage(StageAnalyze, time.Now())
	return compiler.Analyze(prog)
}

// CheckTypes infers types and compares them against annotations.
func (t *Transpiler) CheckTypes(prog *ast.Program) *types.Result {
	defer t.metrics.observeStage(StageTypeCheck, time.Now())
	return types.Check(prog)
}

// Generate emits prog as target source. With type comments enabled the
// program is type checked first.
func (t *Transpiler) Generate(prog *ast.Program, target codegen.Target) (string, error) {
	var typed *types.Result
	if t.typeComments {
		typed = t.CheckTypes(prog)
	}
	return t.generate(prog, target, typed)
}

func (t *Transpiler) generate(prog *ast.Program, target codegen.Target, typed *types.Result) (string, error) {
	defer t.metrics.observeStage(StageGenerate, time.Now())
	var opts []codegen.Option
	if typed != nil {
		opts = append(opts, codegen.WithTypes(typed))
	}
	return codegen.Generate(prog, target, opts...)
}

// Transpile runs every stage on src and emits code for target. It stops
// with Valid false and a nil Code after a lexical, syntax or semantic
// error. Type errors are reported but never block generation.
func (t *Transpiler) Transpile(src, target string) *Result {
	res := &Result{RunID: uuid.NewString(), Valid: true}

	tgt, err := codegen.ParseTarget(target)
	if err != nil {
		t.LogWarnf("run %s: %s", res.RunID, err)
		t.metrics.recordTranspile(unknownTarget, OutcomeUnsupportedTarget)
		return res.fail(err.Error())
	}

	start := time.Now()
	prog, lexErrs, err := t.Parse(src)
	diags := compiler.LexDiagnostics(lexErrs)
	if err != nil {
		diags = append(diags, compiler.ParseDiagnostic(err))
	}
	if len(diags) > 0 {
		outcome := OutcomeParseError
		if len(lexErrs) > 0 {
			outcome = OutcomeLexError
		}
		return t.reject(res, tgt, outcome, diags)
	}
	t.LogDebugf("run %s: parsed %d statements in %s", res.RunID, len(prog.Statements), time.Since(start))

	analysis := t.Analyze(prog)
	res.Warnings = feedback.Strings(analysis.Warnings)
	t.metrics.recordDiagnostics(feedback.SemanticWarning, len(analysis.Warnings))
	if !analysis.Valid {
		return t.reject(res, tgt, OutcomeSemantic, analysis.Errors)
	}

	typed := t.CheckTypes(prog)
	for _, te := range typed.Errors {
		res.TypeErrors = append(res.TypeErrors, te.Error())
	}
	res.Warnings = append(res.Warnings, res.TypeErrors...)
	t.metrics.recordDiagnostics(feedback.TypeError, len(typed.Errors))
	if !typed.Valid {
		t.LogDebugf("run %s: %d type errors", res.RunID, len(typed.Errors))
	}

	if !t.typeComments {
		typed = nil
	}
	code, err := t.generate(prog, tgt, typed)
	if err != nil {
		t.LogWarnf("run %s: %s", res.RunID, err)
		t.metrics.recordTranspile(string(tgt), OutcomeGenerator)
		return res.fail(err.Error())
	}
	res.Code = &code
	t.metrics.recordTranspile(string(tgt), OutcomeOK)
	t.LogDebugf("run %s: emitted %d bytes of %s in %s", res.RunID, len(code), tgt, time.Since(start))
	return res
}

func (t *Transpiler) reject(res *Result, target codegen.Target, outcome string, diags []feedback.Diagnostic) *Result {
	for _, d := range diags {
		t.metrics.recordDiagnostics(d.Classification, 1)
	}
	t.metrics.recordTranspile(string(target), outcome)
	t.LogWarnf("run %s: %s with %d errors", res.RunID, outcome, len(diags))
	return res.fail(feedback.Strings(diags)...)
}

var (
	defaultOnce       sync.Once
	defaultTranspiler *Transpiler
)

// Default returns the shared Transpiler with every extension installed,
// no logging and unregistered metrics.
func Default() *Transpiler {
	defaultOnce.Do(func() {
		t, err := New()
		if err != nil {
			panic(err)
		}
		defaultTranspiler = t
	})
	return defaultTranspiler
}

// Transpile runs the pipeline with the default Transpiler.
func Transpile(src, target string) *Result {
	return Default().Transpile(src, target)
}
