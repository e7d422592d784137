package main

import (
	"errors"

	"github.com/example/jscore/interpreter"
	"github.com/example/jscore/runtime"
)

// Process exit codes.
const (
	exitOK       = 0
	exitUncaught = 1
	exitSyntax   = 2
	exitFatal    = 3
)

// exitError carries the exit code for an error that has already been
// reported to the user.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// exitCode classifies an evaluation error.
func exitCode(err error) int {
	var se *interpreter.SyntaxError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &se):
		return exitSyntax
	case runtime.IsFatal(err):
		return exitFatal
	}
	return exitUncaught
}
