package interpreter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"

	"github.com/example/jscore/builtins"
	"github.com/example/jscore/config"
	"github.com/example/jscore/logging"
	"github.com/example/jscore/runtime"
)

// Signal types for control flow. Throw is not a signal: it travels as a Go
// error so that it can cross native frames.
type signalType int

const (
	sigNone signalType = iota
	sigReturn
	sigBreak
	sigContinue
)

type signal struct {
	typ   signalType
	value *runtime.Value
	label string // for labeled break/continue
}

func (s signal) abrupt() bool { return s.typ != sigNone }

// frame is the per-call evaluation state that does not live in the
// environment chain.
type frame struct {
	strict bool
	// varEnv receives var declarations and sloppy block functions.
	varEnv runtime.Environment
}

// Interpreter evaluates goja ASTs by tree-walking. One interpreter owns one
// realm; separate interpreters share nothing.
type Interpreter struct {
	realm  *runtime.Realm
	global *runtime.GlobalEnv
	cfg    *config.Config
	log    *log.Logger

	frame *frame
	depth int
	done  <-chan struct{}
	cause func() error

	// file and throwIdx locate the innermost statement an uncaught
	// exception passed through.
	file     *file.File
	throwIdx file.Idx
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger for evaluation diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(interp *Interpreter) { interp.log = l }
}

// WithConfig applies engine settings: strictness and the call-depth limit.
func WithConfig(cfg *config.Config) Option {
	return func(interp *Interpreter) { interp.cfg = cfg }
}

// WithOutput redirects console output.
func WithOutput(w io.Writer) Option {
	return func(interp *Interpreter) { interp.realm.Out = w }
}

// WithErrorOutput redirects console.warn and console.error.
func WithErrorOutput(w io.Writer) Option {
	return func(interp *Interpreter) { interp.realm.Err = w }
}

// New creates an interpreter with a fresh realm and all builtins
// installed.
func New(opts ...Option) *Interpreter {
	realm := runtime.NewRealm()
	interp := &Interpreter{
		realm:  realm,
		global: runtime.NewGlobalEnv(realm.GlobalObject),
		cfg:    config.Default(),
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(interp)
	}
	builtins.Setup(realm)
	realm.CompileFunction = interp.compileFunction
	interp.frame = &frame{strict: interp.cfg.Strict, varEnv: interp.global}
	return interp
}

// Realm returns the interpreter's intrinsics.
func (interp *Interpreter) Realm() *runtime.Realm {
	return interp.realm
}

// GlobalEnv returns the global environment record.
func (interp *Interpreter) GlobalEnv() *runtime.GlobalEnv {
	return interp.global
}

// Eval parses and evaluates a source string in the global scope.
func (interp *Interpreter) Eval(source string) (*runtime.Value, error) {
	return interp.EvalFile(context.Background(), "", source)
}

// EvalContext evaluates source, aborting between statements once ctx is
// done.
func (interp *Interpreter) EvalContext(ctx context.Context, source string) (*runtime.Value, error) {
	return interp.EvalFile(ctx, "", source)
}

// EvalFile evaluates source attributed to filename. The error, if any, is
// a *SyntaxError, a *ThrownError or a *runtime.FatalError.
func (interp *Interpreter) EvalFile(ctx context.Context, filename, source string) (result *runtime.Value, err error) {
	program, err := Parse(filename, source)
	if err != nil {
		interp.log.Debug("parse failed", "file", filename, "err", err)
		return nil, err
	}
	interp.log.Debug("eval", "file", filename, "bytes", len(source))

	interp.done, interp.cause = ctx.Done(), ctx.Err
	interp.file = program.File
	interp.throwIdx = 0
	interp.depth = 0
	interp.frame = &frame{strict: interp.cfg.Strict || hasUseStrict(program.Body), varEnv: interp.global}

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, runtime.Fatal(runtime.ErrInvariant, "%v", r)
			interp.log.Error("evaluation panicked", "err", r)
		}
	}()

	result, err = interp.runProgram(program)
	if err != nil {
		return nil, interp.hostError(err)
	}
	return result, nil
}

// Parse parses source into a goja program, converting parser failures into
// a *SyntaxError.
func Parse(filename, source string) (*ast.Program, error) {
	program, err := parser.ParseFile(nil, filename, source, 0)
	if err != nil {
		return nil, newSyntaxError(err)
	}
	return program, nil
}

func (interp *Interpreter) runProgram(program *ast.Program) (*runtime.Value, error) {
	if err := interp.declareGlobals(program); err != nil {
		return nil, err
	}
	sig, err := interp.execList(program.Body, interp.global)
	if err != nil {
		return nil, err
	}
	switch sig.typ {
	case sigBreak, sigContinue:
		return nil, runtime.NewSyntaxError("Illegal %s statement", sig.typ)
	}
	if sig.value == nil {
		return runtime.Undefined, nil
	}
	return sig.value, nil
}

func (t signalType) String() string {
	switch t {
	case sigReturn:
		return "return"
	case sigBreak:
		return "break"
	case sigContinue:
		return "continue"
	}
	return "none"
}

// checkInterrupt reports host cancellation. It is polled between
// statements and loop iterations.
func (interp *Interpreter) checkInterrupt() error {
	if interp.done == nil {
		return nil
	}
	select {
	case <-interp.done:
		return runtime.Fatal(runtime.ErrInterrupted, "%v", interp.cause())
	default:
		return nil
	}
}

func (interp *Interpreter) strict() bool {
	return interp.frame.strict
}

// compileFunction backs the Function constructor.
func (interp *Interpreter) compileFunction(params []string, body string) (*runtime.Value, error) {
	lit, err := parser.ParseFunction(strings.Join(params, ","), body)
	if err != nil {
		return nil, runtime.NewSyntaxError("%s", syntaxMessage(err))
	}
	fn, err := interp.makeFunction(lit, interp.global, false, "anonymous")
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(fn), nil
}

// position resolves an AST index in the current file.
func (interp *Interpreter) position(idx file.Idx) file.Position {
	if interp.file == nil || idx == 0 {
		return file.Position{}
	}
	return interp.file.Position(int(idx) - interp.file.Base())
}

// hasUseStrict reports whether a statement list opens with a "use strict"
// directive.
func hasUseStrict(list []ast.Statement) bool {
	for _, st := range list {
		es, ok := st.(*ast.ExpressionStatement)
		if !ok {
			return false
		}
		lit, ok := es.Expression.(*ast.StringLiteral)
		if !ok {
			return false
		}
		if lit.Literal == `"use strict"` || lit.Literal == `'use strict'` {
			return true
		}
	}
	return false
}

func unsupported(format string, args ...any) error {
	return runtime.NewSyntaxError("%s is not supported", fmt.Sprintf(format, args...))
}
