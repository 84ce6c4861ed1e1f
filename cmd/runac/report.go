package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"runa/pkg/feedback"
	"runa/pkg/transpiler"
)

// reporter prints diagnostics for one or more files.
type reporter struct {
	w        io.Writer
	errorC   *color.Color
	warningC *color.Color
	pathC    *color.Color
}

func newReporter(w io.Writer, noColor bool) *reporter {
	r := &reporter{
		w:        w,
		errorC:   color.New(color.FgRed, color.Bold),
		warningC: color.New(color.FgYellow),
		pathC:    color.New(color.Bold),
	}
	if noColor {
		r.errorC.DisableColor()
		r.warningC.DisableColor()
		r.pathC.DisableColor()
	}
	return r
}

func (r *reporter) message(path string, sev feedback.Severity, msg string) {
	c := r.errorC
	if sev == feedback.Warning {
		c = r.warningC
	}
	fmt.Fprintf(r.w, "%s: %s %s\n", r.pathC.Sprint(path), c.Sprint(sev.String()+":"), msg)
}

func (r *reporter) diagnostics(path string, diags []feedback.Diagnostic) {
	for _, d := range diags {
		r.message(path, d.Severity, d.String())
	}
}

// result prints the errors and warnings of a transpilation. Type errors are
// shown as errors when strict is set and as warnings otherwise.
func (r *reporter) result(path string, res *transpiler.Result, strict bool) {
	for _, msg := range res.Errors {
		r.message(path, feedback.Error, msg)
	}
	typeErrs := make(map[string]bool, len(res.TypeErrors))
	for _, msg := range res.TypeErrors {
		typeErrs[msg] = true
	}
	for _, msg := range res.Warnings {
		if strict && typeErrs[msg] {
			r.message(path, feedback.Error, msg)
			continue
		}
		r.message(path, feedback.Warning, msg)
	}
}
