package builtins

import (
	"testing"

	"github.com/example/jscore/runtime"
)

func TestBooleanConstructor(t *testing.T) {
	r := newTestRealm()
	ctor := global(t, r, "Boolean")
	tests := []struct {
		arg  *runtime.Value
		want bool
	}{
		{num(0), false},
		{num(1), true},
		{runtime.NaN, false},
		{str(""), false},
		{str("x"), true},
		{runtime.Null, false},
		{runtime.NewObject(r.NewPlainObject()), true},
	}
	for _, tt := range tests {
		if got := invoke(t, ctor, runtime.Undefined, tt.arg); got.Bool != tt.want {
			t.Errorf("Boolean(%s): expected %v, got %v", inspect(tt.arg), tt.want, got.Bool)
		}
	}
	if got := invoke(t, ctor, runtime.Undefined); got.Bool {
		t.Error("Boolean() should be false")
	}

	wrapped := construct(t, ctor, num(0))
	expectInspect(t, wrapped, "[Boolean: false]")
	if !wrapped.ToBoolean() {
		t.Error("new Boolean(false) should be truthy")
	}
}

func TestBooleanToString(t *testing.T) {
	r := newTestRealm()
	expectInspect(t, call(t, r, booleanToString, runtime.True), `'true'`)
	expectInspect(t, call(t, r, booleanToString, runtime.False), `'false'`)
	wrapped := runtime.NewObject(r.NewWrapper(runtime.True, r.BooleanPrototype))
	expectInspect(t, call(t, r, booleanToString, wrapped), `'true'`)
	callErr(t, r, runtime.KindTypeError, booleanToString, num(1))
}

func TestBooleanValueOf(t *testing.T) {
	r := newTestRealm()
	wrapped := runtime.NewObject(r.NewWrapper(runtime.False, r.BooleanPrototype))
	if v := call(t, r, booleanValueOf, wrapped); v.Type != runtime.TypeBoolean || v.Bool {
		t.Errorf("valueOf: expected false, got %s", inspect(v))
	}
	callErr(t, r, runtime.KindTypeError, booleanValueOf, str("true"))
}
