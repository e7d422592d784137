package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"jscore": func() {
			os.Exit(execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
		},
	})
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: filepath.Join("testdata", "script"),
		Setup: func(env *testscript.Env) error {
			env.Setenv("NO_COLOR", "1")
			return nil
		},
	})
}

func run(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = execute(context.Background(), append([]string{"--no-color"}, args...), strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stdout string
		stderr string
	}{
		{"ok", []string{"-e", "1"}, exitOK, "", ""},
		{"print", []string{"-p", "-e", "'a' + 1"}, exitOK, "a1\n", ""},
		{"print object", []string{"-p", "-e", "({a: [1, 'x']})"}, exitOK, "{ a: [ 1, 'x' ] }\n", ""},
		{"uncaught", []string{"-e", "throw new RangeError('nope')"}, exitUncaught, "", "Uncaught RangeError: nope"},
		{"uncaught primitive", []string{"-e", "throw 42"}, exitUncaught, "", "Uncaught 42"},
		{"syntax", []string{"-e", "var = 1"}, exitSyntax, "", "SyntaxError:"},
		{"unsupported syntax", []string{"-e", "function* g() {}"}, exitUncaught, "", "is not supported"},
		{"overflow", []string{"--max-depth", "40", "-e", "function f() { f() } f()"}, exitFatal, "", "Aborted: maximum call stack size exceeded"},
		{"strict flag", []string{"--strict", "-e", "undeclared = 1"}, exitUncaught, "", "ReferenceError"},
		{"sloppy", []string{"-p", "-e", "undeclared = 1"}, exitOK, "1\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := run(t, "", tt.args...)
			if code != tt.code {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tt.code, stderr)
			}
			if tt.stdout != "" && stdout != tt.stdout {
				t.Errorf("stdout = %q, want %q", stdout, tt.stdout)
			}
			if tt.stderr != "" && !strings.Contains(stderr, tt.stderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.stderr)
			}
		})
	}
}

func TestStdinScript(t *testing.T) {
	code, stdout, stderr := run(t, "console.log([1, 2].map(x => x * 3).join('-'))")
	if code != exitOK {
		t.Fatalf("exit code = %d: %s", code, stderr)
	}
	if stdout != "3-6\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestConsoleError(t *testing.T) {
	code, stdout, stderr := run(t, "", "-e", "console.error('bad'); console.log('good')")
	if code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if stdout != "good\n" || stderr != "bad\n" {
		t.Errorf("stdout = %q, stderr = %q", stdout, stderr)
	}
}

func TestConfigValidation(t *testing.T) {
	code, _, stderr := run(t, "", "--max-depth", "0", "-e", "1")
	if code == exitOK {
		t.Fatal("expected failure for a zero call depth")
	}
	if !strings.Contains(strings.ToLower(stderr), "max_call_depth must be positive") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"1 + 2", false},
		{"function f() {", true},
		{"[1, 2,", true},
		{"if (x) {\n  y()", true},
		{"var = 1", false},
		{"}", false},
	}
	for _, tt := range tests {
		if got := incomplete(tt.src); got != tt.want {
			t.Errorf("incomplete(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}
