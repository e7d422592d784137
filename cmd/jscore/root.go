package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/example/jscore/config"
	"github.com/example/jscore/interpreter"
	"github.com/example/jscore/logging"
	"github.com/example/jscore/runtime"
)

// version is set with -ldflags at release time.
var version = "dev"

// app holds the state shared by every subcommand.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	cfgFile string
	eval    string
	print   bool
	noColor bool

	cfg    *config.Config
	log    *log.Logger
	styles styles
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := fang.Execute(ctx, root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUncaught
}

// handleError prints command errors that were not reported already.
func handleError(w io.Writer, st fang.Styles, err error) {
	var ee *exitError
	if errors.As(err, &ee) {
		return
	}
	fang.DefaultErrorHandler(w, st, err)
}

func newRootCmd(a *app) *cobra.Command {
	d := config.Default()
	cmd := &cobra.Command{
		Use:   "jscore [file]",
		Short: "Run scripts on a tree-walking ECMAScript engine",
		Long: `jscore evaluates ECMAScript programs with a tree-walking interpreter.

With a file argument the file is run. With -e the given source is run.
Without either, jscore starts a REPL when stdin is a terminal and
otherwise runs the script read from stdin.

Exit status is 0 on success, 1 for an uncaught exception, 2 for a
syntax error and 3 when evaluation was aborted (stack overflow or
interrupt).`,
		Example: `  jscore script.js
  jscore -p -e '[1, 2, 3].map(x => x * 2)'
  echo 'console.log(1)' | jscore
  jscore --strict --max-depth 256 script.js`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: a.setup,
		RunE:              a.runRoot,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./jscore.yaml, then the user config dir)")
	pf.Bool("strict", d.Strict, "evaluate all code as strict mode code")
	pf.Int("max-depth", d.MaxCallDepth, "maximum function call depth")
	pf.String("log-level", d.LogLevel, "engine log level (debug, info, warn, error)")
	pf.BoolVar(&a.noColor, "no-color", false, "disable styled diagnostics")

	f := cmd.Flags()
	f.StringVarP(&a.eval, "eval", "e", "", "evaluate source text instead of a file")
	f.BoolVarP(&a.print, "print", "p", false, "print the program's completion value")

	cmd.AddCommand(newReplCmd(a), newASTCmd(a), newTest262Cmd(a))
	return cmd
}

// setup resolves configuration once flags are parsed.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	cfg, used, err := config.Load(config.LoadOptions{
		File: a.cfgFile,
		Flags: map[string]*pflag.Flag{
			config.KeyStrict:       flags.Lookup("strict"),
			config.KeyMaxCallDepth: flags.Lookup("max-depth"),
			config.KeyLogLevel:     flags.Lookup("log-level"),
		},
	})
	if err != nil {
		return err
	}
	if a.noColor {
		cfg.Color = false
	}
	logger, err := logging.New(a.stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	if used != "" {
		logger.Debug("loaded config", "file", used)
	}
	a.cfg, a.log, a.styles = cfg, logger, newStyles(a.stderr, cfg.Color)
	return nil
}

func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	switch {
	case cmd.Flags().Changed("eval"):
		return a.runSource(ctx, "<eval>", a.eval)
	case len(args) == 1 && args[0] != "-":
		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		return a.runSource(ctx, args[0], string(src))
	case len(args) == 0 && isTerminal(a.stdin):
		return a.repl()
	}
	src, err := io.ReadAll(a.stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return a.runSource(ctx, "<stdin>", string(src))
}

func (a *app) newInterpreter() *interpreter.Interpreter {
	return interpreter.New(
		interpreter.WithConfig(a.cfg),
		interpreter.WithLogger(a.log),
		interpreter.WithOutput(a.stdout),
		interpreter.WithErrorOutput(a.stderr),
	)
}

func (a *app) runSource(ctx context.Context, name, src string) error {
	v, err := a.newInterpreter().EvalFile(ctx, name, src)
	if err != nil {
		a.report(err)
		return &exitError{code: exitCode(err), err: err}
	}
	if a.print {
		fmt.Fprintln(a.stdout, runtime.Display(v))
	}
	return nil
}

// report prints an evaluation error to stderr.
func (a *app) report(err error) {
	var se *interpreter.SyntaxError
	var te *interpreter.ThrownError
	switch {
	case errors.As(err, &se):
		fmt.Fprintln(a.stderr, a.styles.label.Render("SyntaxError:")+" "+se.Message+a.styles.where(se.Position))
	case errors.As(err, &te):
		fmt.Fprintln(a.stderr, a.styles.label.Render("Uncaught")+" "+te.Display+a.styles.where(te.Position))
	case runtime.IsFatal(err):
		fmt.Fprintln(a.stderr, a.styles.fatal.Render("Aborted:")+" "+err.Error())
	default:
		fmt.Fprintln(a.stderr, a.styles.label.Render("Error:")+" "+err.Error())
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
