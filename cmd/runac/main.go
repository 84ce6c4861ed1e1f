// Command runac compiles Runa source files to Python or JavaScript.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"runa/pkg/compiler"
	"runa/pkg/transpiler"
)

var (
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "log stage timings to stderr",
	}
	noColorFlag = cli.BoolFlag{
		Name:  "no-color",
		Usage: "hide colors in error and warning messages",
	}
	extensionsFlag = cli.StringFlag{
		Name:  "extensions",
		Value: "patterns,async,functional,types",
		Usage: "comma separated grammar extensions; empty for the core language only",
	}
	typeCommentsFlag = cli.BoolFlag{
		Name:  "type-comments",
		Usage: "annotate declarations with their inferred types",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "runac"
	app.Usage = "compile Runa programs to Python or JavaScript"
	app.Version = "0.1.0"
	app.ErrWriter = os.Stderr

	app.Commands = []cli.Command{
		{
			Name:        "build",
			Aliases:     []string{"b"},
			Usage:       "Compile file(s) to the target language",
			ArgsUsage:   "FILE...",
			Description: "Type errors are printed as warnings and the code is still written, so build exits 0 on type errors. Pass --check-types to exit 1 instead. Lexical, syntax and semantic errors always exit 1.",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:   "target, t",
					Value:  "python",
					Usage:  "output language: python (a) or javascript (b)",
					EnvVar: "RUNA_TARGET",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output path for a single input, - for stdout",
				},
				cli.StringFlag{
					Name:  "out-dir",
					Usage: "directory generated files are written to",
				},
				cli.BoolFlag{
					Name:  "check-types",
					Usage: "exit 1 on type errors instead of warning and exiting 0",
				},
				cli.BoolFlag{
					Name:  "emit-runtime",
					Usage: "write the Python runtime module beside the output",
				},
				cli.IntFlag{
					Name:  "jobs, j",
					Value: runtime.NumCPU(),
					Usage: "number of files compiled in parallel",
				},
				typeCommentsFlag,
				extensionsFlag,
				verboseFlag,
				noColorFlag,
			},
			Action: buildAction,
		},
		{
			Name:      "check",
			Aliases:   []string{"c"},
			Usage:     "Parse, analyze and type check file(s) without generating code",
			ArgsUsage: "FILE...",
			Flags:     []cli.Flag{extensionsFlag, verboseFlag, noColorFlag},
			Action:    checkAction,
		},
		{
			Name:      "tokens",
			Usage:     "Print the token stream of a file",
			ArgsUsage: "FILE",
			Flags:     []cli.Flag{extensionsFlag, noColorFlag},
			Action:    tokensAction,
		},
		{
			Name:      "ast",
			Usage:     "Print the syntax tree of a file",
			ArgsUsage: "FILE",
			Flags:     []cli.Flag{extensionsFlag, noColorFlag},
			Action:    astAction,
		},
	}

	app.Action = func(c *cli.Context) error {
		return cli.ShowAppHelp(c)
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newTranspiler builds a Transpiler from the flags shared by every command.
func newTranspiler(c *cli.Context) (*transpiler.Transpiler, error) {
	opts := []transpiler.Option{}

	if c.Bool("verbose") {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, errors.Wrap(err, "creating logger")
		}
		opts = append(opts, transpiler.WithLogger(log.Sugar()))
	}
	if c.Bool("type-comments") {
		opts = append(opts, transpiler.WithTypeComments())
	}

	exts, err := parseExtensions(c.String("extensions"))
	if err != nil {
		return nil, err
	}
	opts = append(opts, transpiler.WithExtensions(exts...))

	return transpiler.New(opts...)
}

func parseExtensions(list string) ([]compiler.Extension, error) {
	var exts []compiler.Extension
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ext, ok := compiler.LookupExtension(name)
		if !ok {
			return nil, errors.Errorf("unknown extension %q", name)
		}
		exts = append(exts, ext)
	}
	return exts, nil
}

func readSource(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", path)
	}
	return string(buf), nil
}

func exitError(err error) error {
	if err == nil {
		return nil
	}
	return cli.NewExitError(err.Error(), 1)
}
