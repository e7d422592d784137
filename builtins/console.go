package builtins

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/example/jscore/runtime"
)

func consoleDefinition() Definition {
	return Definition{
		Name: "console",
		Statics: []Method{
			{Name: "assert", Fn: consoleAssert},
			{Name: "debug", Fn: consolePrint(false)},
			{Name: "error", Fn: consolePrint(true)},
			{Name: "info", Fn: consolePrint(false)},
			{Name: "log", Fn: consolePrint(false)},
			{Name: "warn", Fn: consolePrint(true)},
		},
	}
}

func consoleWriter(r *runtime.Realm, stderr bool) io.Writer {
	if stderr && r.Err != nil {
		return r.Err
	}
	return r.Out
}

func consolePrint(stderr bool) Native {
	return func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		line, err := formatLog(args)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(consoleWriter(r, stderr), line)
		return runtime.Undefined, nil
	}
}

func consoleAssert(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if argAt(args, 0).ToBoolean() {
		return runtime.Undefined, nil
	}
	msg := "Assertion failed"
	if len(args) > 1 {
		rest, err := formatLog(args[1:])
		if err != nil {
			return nil, err
		}
		msg += ": " + rest
	}
	fmt.Fprintln(consoleWriter(r, true), msg)
	return runtime.Undefined, nil
}

// formatLog joins arguments with spaces. A leading string argument is a
// format: %s, %d, %i, %f, %o, %O and %% consume or escape arguments.
func formatLog(args []*runtime.Value) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	var parts []string
	rest := args
	if args[0].Type == runtime.TypeString && strings.Contains(args[0].Str, "%") {
		s, used, err := substitute(args[0].Str, args[1:])
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
		rest = args[1+used:]
	} else {
		parts = append(parts, runtime.Display(args[0]))
		rest = args[1:]
	}
	for _, a := range rest {
		parts = append(parts, runtime.Display(a))
	}
	return strings.Join(parts, " "), nil
}

func substitute(format string, args []*runtime.Value) (string, int, error) {
	var sb strings.Builder
	used := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			sb.WriteByte(c)
			continue
		}
		verb := format[i+1]
		if verb == '%' {
			sb.WriteByte('%')
			i++
			continue
		}
		if !strings.ContainsRune("sdifoO", rune(verb)) || used >= len(args) {
			sb.WriteByte(c)
			continue
		}
		a := args[used]
		used++
		i++
		switch verb {
		case 's':
			sb.WriteString(runtime.Display(a))
		case 'd', 'i':
			n, err := runtime.ToNumber(a)
			if err != nil {
				return "", 0, err
			}
			if !math.IsNaN(n) {
				n = runtime.IntegerOrInfinity(n)
			}
			sb.WriteString(runtime.NumberToString(n))
		case 'f':
			n, err := runtime.ToNumber(a)
			if err != nil {
				return "", 0, err
			}
			sb.WriteString(runtime.NumberToString(n))
		default:
			sb.WriteString(runtime.Inspect(a))
		}
	}
	return sb.String(), used, nil
}
