package builtins

import (
	"bytes"
	"testing"

	"github.com/example/jscore/runtime"
)

func consoleBuffers(r *runtime.Realm) (out, errOut *bytes.Buffer) {
	return r.Out.(*bytes.Buffer), r.Err.(*bytes.Buffer)
}

func TestConsoleLog(t *testing.T) {
	r := newTestRealm()
	out, errOut := consoleBuffers(r)

	call(t, r, consolePrint(false), runtime.Undefined, str("hello"), num(42))
	if got := out.String(); got != "hello 42\n" {
		t.Errorf("console.log: got %q, want %q", got, "hello 42\n")
	}
	if errOut.Len() != 0 {
		t.Errorf("console.log wrote to stderr: %q", errOut.String())
	}
}

func TestConsoleError(t *testing.T) {
	r := newTestRealm()
	out, errOut := consoleBuffers(r)

	call(t, r, consolePrint(true), runtime.Undefined, str("error!"))
	if got := errOut.String(); got != "error!\n" {
		t.Errorf("console.error: got %q", got)
	}
	if out.Len() != 0 {
		t.Errorf("console.error wrote to stdout: %q", out.String())
	}
}

func TestConsoleAssert(t *testing.T) {
	r := newTestRealm()
	_, errOut := consoleBuffers(r)

	call(t, r, consoleAssert, runtime.Undefined, runtime.True, str("unused"))
	if errOut.Len() != 0 {
		t.Errorf("passing assert printed %q", errOut.String())
	}
	call(t, r, consoleAssert, runtime.Undefined, num(0), str("x is"), num(0))
	if got := errOut.String(); got != "Assertion failed: x is 0\n" {
		t.Errorf("assert: got %q", got)
	}
}

func TestFormatLog(t *testing.T) {
	r := newTestRealm()
	tests := []struct {
		name string
		args []*runtime.Value
		want string
	}{
		{"empty", nil, ""},
		{"array", []*runtime.Value{nums(r, 1, 2, 3)}, "[ 1, 2, 3 ]"},
		{"nested string", []*runtime.Value{strs(r, "a")}, `[ 'a' ]`},
		{"string verb", []*runtime.Value{str("%s!"), str("hi")}, "hi!"},
		{"integer verb", []*runtime.Value{str("%d items"), num(3.7)}, "3 items"},
		{"integer NaN", []*runtime.Value{str("%i"), str("x")}, "NaN"},
		{"float verb", []*runtime.Value{str("%f"), str("1.5")}, "1.5"},
		{"object verb", []*runtime.Value{str("%o"), str("q")}, `'q'`},
		{"percent", []*runtime.Value{str("100%%")}, "100%"},
		{"missing argument", []*runtime.Value{str("%s and %s"), str("a")}, "a and %s"},
		{"extra arguments", []*runtime.Value{str("%s"), str("a"), num(1)}, "a 1"},
		{"undefined", []*runtime.Value{runtime.Undefined, runtime.Null}, "undefined null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatLog(tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
