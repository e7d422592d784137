package interpreter

import (
	"errors"

	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"

	"github.com/example/jscore/runtime"
)

// ThrownError is an exception that escaped the program.
type ThrownError struct {
	Value    *runtime.Value
	Display  string
	Position file.Position

	err error
}

func (e *ThrownError) Error() string {
	if e.Position.Line > 0 {
		return "Uncaught " + e.Display + " (" + e.Position.String() + ")"
	}
	return "Uncaught " + e.Display
}

// Unwrap exposes the engine error (a *runtime.LanguageError or a
// *runtime.Exception) the throw originated from.
func (e *ThrownError) Unwrap() error { return e.err }

// Name returns the thrown error's name property, or "" when the value is
// not an object.
func (e *ThrownError) Name() string {
	if !e.Value.IsObject() {
		return ""
	}
	v, err := e.Value.Object.Get(runtime.StrKey("name"))
	if err != nil || v.Type != runtime.TypeString {
		return ""
	}
	return v.Str
}

// SyntaxError reports source text the parser rejected.
type SyntaxError struct {
	Message  string
	Position file.Position

	err error
}

func (e *SyntaxError) Error() string {
	if e.Position.Line > 0 {
		return "SyntaxError: " + e.Message + " (" + e.Position.String() + ")"
	}
	return "SyntaxError: " + e.Message
}

func (e *SyntaxError) Unwrap() error { return e.err }

func newSyntaxError(err error) *SyntaxError {
	se := &SyntaxError{Message: err.Error(), err: err}
	var list parser.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		se.Message = list[0].Message
		se.Position = list[0].Position
	}
	return se
}

func syntaxMessage(err error) string {
	return newSyntaxError(err).Message
}

// hostError converts an error that reached the program boundary into the
// host error surface. Fatal errors pass through unchanged.
func (interp *Interpreter) hostError(err error) error {
	if runtime.IsFatal(err) {
		interp.log.Warn("evaluation aborted", "err", err)
		return err
	}
	val, ok := interp.realm.ErrorValue(err)
	if !ok {
		return runtime.Fatal(runtime.ErrInvariant, "unexpected error: %v", err)
	}
	te := &ThrownError{
		Value:    val,
		Display:  runtime.Display(val),
		Position: interp.position(interp.throwIdx),
		err:      err,
	}
	interp.log.Debug("uncaught exception", "value", te.Display, "pos", te.Position.String())
	return te
}
