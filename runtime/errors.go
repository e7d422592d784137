package runtime

import (
	"errors"
	"fmt"
)

// ErrorKind names a native error constructor. The kind decides which
// prototype a materialized error object links to.
type ErrorKind int

const (
	KindError ErrorKind = iota
	KindTypeError
	KindRangeError
	KindReferenceError
	KindSyntaxError
	KindEvalError
	KindURIError
	numErrorKinds
)

var errorKindNames = [...]string{
	KindError:          "Error",
	KindTypeError:      "TypeError",
	KindRangeError:     "RangeError",
	KindReferenceError: "ReferenceError",
	KindSyntaxError:    "SyntaxError",
	KindEvalError:      "EvalError",
	KindURIError:       "URIError",
}

func (k ErrorKind) String() string {
	if k < 0 || k >= numErrorKinds {
		return "Error"
	}
	return errorKindNames[k]
}

// ErrorKinds lists every native error kind in registration order.
func ErrorKinds() []ErrorKind {
	kinds := make([]ErrorKind, 0, numErrorKinds)
	for k := KindError; k < numErrorKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// LanguageError is an error raised by the engine itself (a failed
// coercion, an unresolvable reference). It becomes an error object of
// the matching kind when script code or the host observes it.
type LanguageError struct {
	Kind    ErrorKind
	Message string
}

func (e *LanguageError) Error() string {
	return e.Kind.String() + ": " + e.Message
}

func newLanguageError(kind ErrorKind, format string, args []any) *LanguageError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &LanguageError{Kind: kind, Message: msg}
}

func NewTypeError(format string, args ...any) *LanguageError {
	return newLanguageError(KindTypeError, format, args)
}

func NewRangeError(format string, args ...any) *LanguageError {
	return newLanguageError(KindRangeError, format, args)
}

func NewReferenceError(format string, args ...any) *LanguageError {
	return newLanguageError(KindReferenceError, format, args)
}

func NewSyntaxError(format string, args ...any) *LanguageError {
	return newLanguageError(KindSyntaxError, format, args)
}

func NewEvalError(format string, args ...any) *LanguageError {
	return newLanguageError(KindEvalError, format, args)
}

func NewURIError(format string, args ...any) *LanguageError {
	return newLanguageError(KindURIError, format, args)
}

// Exception carries a value thrown by script code.
type Exception struct {
	Value *Value
}

func (e *Exception) Error() string {
	return "uncaught exception: " + Display(e.Value)
}

// Host-fatal conditions. These are defects or resource limits, never
// language-level outcomes, and script code cannot catch them.
var (
	ErrStackOverflow  = errors.New("maximum call stack size exceeded")
	ErrPrototypeDepth = errors.New("prototype chain exceeds depth limit")
	ErrInterrupted    = errors.New("evaluation interrupted")
	ErrInvariant      = errors.New("internal invariant violated")
)

// FatalError wraps one of the host-fatal sentinels with detail.
type FatalError struct {
	Err    error
	Detail string
}

func (e *FatalError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *FatalError) Unwrap() error { return e.Err }

func Fatal(sentinel error, format string, args ...any) *FatalError {
	return &FatalError{Err: sentinel, Detail: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err must bypass script-level exception handling.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// IsCatchable reports whether err is a language-level throw.
func IsCatchable(err error) bool {
	if err == nil || IsFatal(err) {
		return false
	}
	var le *LanguageError
	var ex *Exception
	return errors.As(err, &le) || errors.As(err, &ex)
}
