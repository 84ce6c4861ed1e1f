package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"runa/pkg/codegen"
	"runa/pkg/compiler"
	"runa/pkg/feedback"
	"runa/pkg/transpiler"
)

const runtimeModule = "runa_runtime.py"

func buildAction(c *cli.Context) error {
	files := []string(c.Args())
	if len(files) == 0 {
		return cli.NewExitError("build: no input files", 1)
	}
	out, outDir := c.String("out"), c.String("out-dir")
	if out != "" && len(files) > 1 {
		return cli.NewExitError("build: --out needs exactly one input file", 1)
	}
	target, err := codegen.ParseTarget(c.String("target"))
	if err != nil {
		return exitError(err)
	}
	tr, err := newTranspiler(c)
	if err != nil {
		return exitError(err)
	}

	results := make([]*transpiler.Result, len(files))
	var g errgroup.Group
	if jobs := c.Int("jobs"); jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range files {
		g.Go(func() error {
			src, err := readSource(path)
			if err != nil {
				return err
			}
			results[i] = tr.Transpile(src, string(target))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return exitError(err)
	}

	rep := newReporter(c.App.ErrWriter, c.Bool("no-color"))
	strict := c.Bool("check-types")
	failed := 0
	dirs := make(map[string]bool)
	for i, path := range files {
		res := results[i]
		rep.result(path, res, strict)
		if !res.Valid || (strict && len(res.TypeErrors) > 0) {
			failed++
			continue
		}
		if out == "-" {
			fmt.Fprint(c.App.Writer, *res.Code)
			continue
		}
		dest := outputPath(path, out, outDir, target)
		if err := writeFile(dest, *res.Code); err != nil {
			return exitError(err)
		}
		dirs[filepath.Dir(dest)] = true
	}

	if c.Bool("emit-runtime") && target == codegen.Python {
		shim, err := codegen.Runtime(target)
		if err != nil {
			return exitError(err)
		}
		for dir := range dirs {
			if err := writeFile(filepath.Join(dir, runtimeModule), shim); err != nil {
				return exitError(err)
			}
		}
	}

	if failed > 0 {
		return cli.NewExitError(fmt.Sprintf("build: %d of %d files failed", failed, len(files)), 1)
	}
	return nil
}

// outputPath places the generated file for src. An explicit out wins, then
// outDir, then the directory of src.
func outputPath(src, out, outDir string, target codegen.Target) string {
	if out != "" {
		return out
	}
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + target.Extension()
	if outDir != "" {
		return filepath.Join(outDir, name)
	}
	return filepath.Join(filepath.Dir(src), name)
}

func writeFile(path, contents string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	return errors.Wrapf(os.WriteFile(path, []byte(contents), 0o644), "writing %s", path)
}

func checkAction(c *cli.Context) error {
	files := []string(c.Args())
	if len(files) == 0 {
		return cli.NewExitError("check: no input files", 1)
	}
	tr, err := newTranspiler(c)
	if err != nil {
		return exitError(err)
	}
	rep := newReporter(c.App.ErrWriter, c.Bool("no-color"))

	failed := 0
	for _, path := range files {
		src, err := readSource(path)
		if err != nil {
			return exitError(err)
		}
		diags := checkSource(tr, src)
		rep.diagnostics(path, diags)
		for _, d := range diags {
			if d.Severity == feedback.Error {
				failed++
				break
			}
		}
	}
	if failed > 0 {
		return cli.NewExitError(fmt.Sprintf("check: %d of %d files failed", failed, len(files)), 1)
	}
	return nil
}

// checkSource runs every front-end stage and the type checker on src.
func checkSource(tr *transpiler.Transpiler, src string) []feedback.Diagnostic {
	prog, lexErrs, err := tr.Parse(src)
	diags := compiler.LexDiagnostics(lexErrs)
	if err != nil {
		return append(diags, compiler.ParseDiagnostic(err))
	}
	if len(diags) > 0 {
		return diags
	}
	analysis := tr.Analyze(prog)
	diags = append(diags, analysis.Errors...)
	diags = append(diags, analysis.Warnings...)
	if !analysis.Valid {
		return diags
	}
	for _, te := range tr.CheckTypes(prog).Errors {
		diags = append(diags, feedback.Errorf(feedback.TypeError, te.Position, "%s", te.Message))
	}
	return diags
}

func tokensAction(c *cli.Context) error {
	src, tr, err := singleInput(c)
	if err != nil {
		return err
	}
	tokens, lexErrs := tr.Tokenize(src)
	for _, tok := range tokens {
		fmt.Fprintln(c.App.Writer, tok)
	}
	if len(lexErrs) > 0 {
		newReporter(c.App.ErrWriter, c.Bool("no-color")).diagnostics(c.Args().First(), compiler.LexDiagnostics(lexErrs))
		return cli.NewExitError("tokens: lexical errors", 1)
	}
	return nil
}

func astAction(c *cli.Context) error {
	src, tr, err := singleInput(c)
	if err != nil {
		return err
	}
	prog, lexErrs, err := tr.Parse(src)
	diags := compiler.LexDiagnostics(lexErrs)
	if err != nil {
		diags = append(diags, compiler.ParseDiagnostic(err))
	}
	if len(diags) > 0 {
		newReporter(c.App.ErrWriter, c.Bool("no-color")).diagnostics(c.Args().First(), diags)
		return cli.NewExitError("ast: source did not parse", 1)
	}
	fmt.Fprintln(c.App.Writer, prog.String())
	return nil
}

func singleInput(c *cli.Context) (string, *transpiler.Transpiler, error) {
	if c.NArg() != 1 {
		return "", nil, cli.NewExitError(c.Command.Name+": expected exactly one input file", 1)
	}
	src, err := readSource(c.Args().First())
	if err != nil {
		return "", nil, exitError(err)
	}
	tr, err := newTranspiler(c)
	if err != nil {
		return "", nil, exitError(err)
	}
	return src, tr, nil
}
