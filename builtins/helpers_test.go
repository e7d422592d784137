package builtins

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/example/jscore/runtime"
)

func newTestRealm() *runtime.Realm {
	r := runtime.NewRealm()
	r.Out = &bytes.Buffer{}
	r.Err = &bytes.Buffer{}
	Setup(r)
	return r
}

func num(f float64) *runtime.Value { return runtime.NewNumber(f) }
func str(s string) *runtime.Value  { return runtime.NewString(s) }

func nums(r *runtime.Realm, fs ...float64) *runtime.Value {
	vals := make([]*runtime.Value, len(fs))
	for i, f := range fs {
		vals[i] = num(f)
	}
	return r.NewArrayValue(vals)
}

func strs(r *runtime.Realm, ss ...string) *runtime.Value {
	return stringList(r, ss)
}

// call invokes a native and fails the test on error.
func call(t *testing.T, r *runtime.Realm, fn Native, this *runtime.Value, args ...*runtime.Value) *runtime.Value {
	t.Helper()
	v, err := fn(r, this, args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

// callErr invokes a native that must fail with a language error of kind.
func callErr(t *testing.T, r *runtime.Realm, kind runtime.ErrorKind, fn Native, this *runtime.Value, args ...*runtime.Value) {
	t.Helper()
	_, err := fn(r, this, args)
	assertKind(t, err, kind)
}

func assertKind(t *testing.T, err error, kind runtime.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got no error", kind)
	}
	var le *runtime.LanguageError
	if !errors.As(err, &le) {
		t.Fatalf("expected %s, got %T: %v", kind, err, err)
	}
	if le.Kind != kind {
		t.Fatalf("expected %s, got %s: %s", kind, le.Kind, le.Message)
	}
}

// global reads a property of the global object.
func global(t *testing.T, r *runtime.Realm, name string) *runtime.Value {
	t.Helper()
	v, err := r.GlobalObject.Get(runtime.StrKey(name))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func getProp(t *testing.T, v *runtime.Value, name string) *runtime.Value {
	t.Helper()
	if !v.IsObject() {
		t.Fatalf("expected object, got %s", runtime.Inspect(v))
	}
	p, err := v.Object.Get(runtime.StrKey(name))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// elems reads an array-like into a slice.
func elems(t *testing.T, v *runtime.Value) []*runtime.Value {
	t.Helper()
	list, err := runtime.ListFromArrayLike(v)
	if err != nil {
		t.Fatal(err)
	}
	return list
}

// inspect renders a value for comparison in table tests.
func inspect(v *runtime.Value) string { return runtime.Inspect(v) }

func expectInspect(t *testing.T, got *runtime.Value, want string) {
	t.Helper()
	if s := inspect(got); s != want {
		t.Errorf("got %s, want %s", s, want)
	}
}

// collect drains an iterator object through its next method.
func collect(t *testing.T, r *runtime.Realm, it *runtime.Value) []*runtime.Value {
	t.Helper()
	var out []*runtime.Value
	err := r.Iterate(it, func(v *runtime.Value) (bool, error) {
		out = append(out, v)
		return true, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func nativeFn(r *runtime.Realm, name string, fn Native) *runtime.Value {
	return runtime.NewObject(r.NewNativeFunction(name, 0, fn.bind(r)))
}

// invoke calls a function object and fails the test on error.
func invoke(t *testing.T, fn *runtime.Value, this *runtime.Value, args ...*runtime.Value) *runtime.Value {
	t.Helper()
	if !runtime.IsCallable(fn) {
		t.Fatalf("%s is not callable", inspect(fn))
	}
	v, err := fn.Object.Call(this, args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

// construct runs fn as a constructor and fails the test on error.
func construct(t *testing.T, fn *runtime.Value, args ...*runtime.Value) *runtime.Value {
	t.Helper()
	v, err := fn.Object.Construct(args, fn.Object)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

// invokeMethod looks up name on obj and calls it with obj as receiver.
func invokeMethod(t *testing.T, obj *runtime.Value, name string, args ...*runtime.Value) *runtime.Value {
	t.Helper()
	return invoke(t, getProp(t, obj, name), obj, args...)
}

func negativeZero() float64 { return math.Copysign(0, -1) }
