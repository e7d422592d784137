package testrunner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const staJS = `function Test262Error(message) { this.message = message || ""; }
Test262Error.prototype.toString = function () { return "Test262Error: " + this.message; };
function $DONOTEVALUATE() { throw "Test262: This statement should not be evaluated."; }
`

const assertJS = `function assert(mustBeTrue, message) {
  if (mustBeTrue === true) return;
  throw new Test262Error(message || "Expected true");
}
assert.sameValue = function (actual, expected, message) {
  if (!Object.is(actual, expected)) {
    throw new Test262Error((message || "") + " Expected SameValue(" + String(actual) + ", " + String(expected) + ")");
  }
};
assert.throws = function (C, fn) {
  try { fn(); } catch (e) {
    if (e.constructor !== C) throw new Test262Error("wrong error constructor");
    return;
  }
  throw new Test262Error("Expected an exception");
};
`

// suite lays out a miniature test262 checkout.
func suite(t *testing.T, tests map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"harness/sta.js":    staJS,
		"harness/assert.js": assertJS,
		"harness/extra.js":  "function extraHelper() { return 42; }\n",
	}
	for name, src := range tests {
		files["test/"+name] = src
	}
	for name, src := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRunFile(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   Result
		msg    string
	}{
		{"pass", "assert.sameValue(1 + 1, 2);", Pass, ""},
		{"fail", `assert.sameValue(1, 2, "math");`, Fail, "Expected SameValue(1, 2)"},
		{"include", "/*---\nincludes: [extra.js]\n---*/\nassert.sameValue(extraHelper(), 42);", Pass, ""},
		{"negative parse", "/*---\nnegative:\n  phase: parse\n  type: SyntaxError\n---*/\n$DONOTEVALUATE();\nvar a = ;", Pass, ""},
		{"negative runtime", "/*---\nnegative:\n  phase: runtime\n  type: TypeError\n---*/\nnull.x;", Pass, ""},
		{"negative wrong type", "/*---\nnegative:\n  phase: runtime\n  type: RangeError\n---*/\nnull.x;", Fail, "expected RangeError"},
		{"negative no error", "/*---\nnegative:\n  phase: runtime\n  type: TypeError\n---*/\n1;", Fail, "expected TypeError"},
		{"only strict", "/*---\nflags: [onlyStrict]\n---*/\nassert.throws(ReferenceError, function () { undeclared = 1; });", Pass, ""},
		{"no strict", "/*---\nflags: [noStrict]\n---*/\nundeclared2 = 1; assert.sameValue(undeclared2, 1);", Pass, ""},
		{"both modes", "var f = function () { return this; };\nassert.sameValue(typeof f(), \"object\");", Fail, "strict mode"},
		{"raw", "/*---\nflags: [raw]\n---*/\nif (typeof assert !== \"undefined\") throw 1;", Pass, ""},
		{"unsupported feature", "/*---\nfeatures: [Proxy]\n---*/\nnew Proxy({}, {});", Skip, "Proxy"},
		{"module", "/*---\nflags: [module]\n---*/\nexport var x;", Skip, "module"},
		{"unsupported syntax", "function* g() {}", Skip, "not supported"},
		{"other realm", "var other = $262.createRealm();\nassert.sameValue(other.evalScript(\"1 + 2\"), 3);\nassert(other.global.Array !== Array);", Pass, ""},
		{"own realm evalScript", `assert.throws(TypeError, function () { $262.evalScript("1"); });`, Pass, ""},
		{"bad front matter", "/*---\nflags: [\n---*/\n", Error, "front matter"},
	}
	files := make(map[string]string)
	for _, tt := range tests {
		files[strings.ReplaceAll(tt.name, " ", "-")+".js"] = tt.source
	}
	dir := suite(t, files)
	rn := New(Config{Dir: dir})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel := "test/" + strings.ReplaceAll(tt.name, " ", "-") + ".js"
			got := rn.RunFile(context.Background(), filepath.Join(dir, filepath.FromSlash(rel)), rel)
			if got.Result != tt.want {
				t.Fatalf("got %s (%s), want %s", got.Result, got.Message, tt.want)
			}
			if !strings.Contains(got.Message, tt.msg) {
				t.Errorf("message %q does not contain %q", got.Message, tt.msg)
			}
			if got.Path != rel {
				t.Errorf("path: got %q", got.Path)
			}
		})
	}
}

func TestRunFileTimeout(t *testing.T) {
	dir := suite(t, map[string]string{"loop.js": "while (true) {}"})
	rn := New(Config{Dir: dir, Timeout: 50 * time.Millisecond})
	got := rn.RunFile(context.Background(), filepath.Join(dir, "test", "loop.js"), "loop.js")
	if got.Result != Error || !strings.Contains(got.Message, "timeout") {
		t.Errorf("got %s %q, want a timeout error", got.Result, got.Message)
	}
}

func TestRun(t *testing.T) {
	dir := suite(t, map[string]string{
		"a/pass.js":           "assert(true);",
		"a/fail.js":           "assert(false);",
		"b/skip.js":           "/*---\nfeatures: [BigInt]\n---*/\n1n;",
		"b/helper_FIXTURE.js": "throw 1;",
	})

	var seen []string
	rn := New(Config{Dir: dir, Jobs: 2, OnResult: func(tr TestResult) { seen = append(seen, tr.Path) }})
	results, summary, err := rn.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 || len(seen) != 3 {
		t.Fatalf("expected 3 results, got %d (%d observed)", len(results), len(seen))
	}
	if results[0].Path != "test/a/fail.js" || results[2].Path != "test/b/skip.js" {
		t.Errorf("results should be in discovery order: %v", results)
	}
	if summary.Total != 3 || summary.Passed != 1 || summary.Failed != 1 || summary.Skipped != 1 {
		t.Errorf("summary: %+v", summary)
	}
	if rate := summary.PassRate(); rate != 50 {
		t.Errorf("pass rate: got %v, want 50", rate)
	}
}

func TestDiscoverFilterAndLimit(t *testing.T) {
	dir := suite(t, map[string]string{
		"x/one.js":   "",
		"x/two.js":   "",
		"y/three.js": "",
	})
	files, err := New(Config{Dir: dir, Filter: "x/"}).Discover()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("filter: got %v", files)
	}
	files, err = New(Config{Dir: dir, Limit: 1}).Discover()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "one.js" {
		t.Errorf("limit: got %v", files)
	}
	if _, err := New(Config{Dir: filepath.Join(dir, "missing")}).Discover(); err == nil {
		t.Error("expected an error for a missing checkout")
	}
}
