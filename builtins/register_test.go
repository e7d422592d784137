package builtins

import (
	"testing"

	"github.com/example/jscore/runtime"
)

func TestSetupInstallsGlobals(t *testing.T) {
	r := newTestRealm()
	names := []string{
		"Object", "Function", "Array", "String", "Number", "Boolean",
		"Symbol", "Error", "TypeError", "ReferenceError", "SyntaxError",
		"RangeError", "URIError", "EvalError",
		"RegExp", "Map", "Set", "WeakMap", "WeakSet", "Reflect",
		"Math", "JSON", "console", "globalThis",
		"parseInt", "parseFloat", "isNaN", "isFinite",
		"encodeURI", "decodeURI", "encodeURIComponent", "decodeURIComponent",
		"escape", "unescape", "eval", "undefined", "NaN", "Infinity",
	}
	for _, name := range names {
		if !r.GlobalObject.HasOwnProperty(runtime.StrKey(name)) {
			t.Errorf("missing global: %s", name)
		}
	}
}

func TestSetupWiresConstructors(t *testing.T) {
	r := newTestRealm()
	tests := []struct {
		name  string
		proto *runtime.Object
	}{
		{"Object", r.ObjectPrototype},
		{"Function", r.FunctionPrototype},
		{"Array", r.ArrayPrototype},
		{"String", r.StringPrototype},
		{"RegExp", r.RegExpPrototype},
		{"Symbol", r.SymbolPrototype},
		{"Error", r.ErrorPrototype(runtime.KindError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctor := global(t, r, tt.name)
			if got := getProp(t, ctor, "prototype"); got.Object != tt.proto {
				t.Errorf("%s.prototype is not the realm intrinsic", tt.name)
			}
			back, _ := tt.proto.GetOwnProperty(runtime.StrKey("constructor"))
			if back == nil || back.Value.Object != ctor.Object {
				t.Errorf("%s.prototype.constructor does not point back", tt.name)
			}
			if ctor.Object.GetPrototype() != r.FunctionPrototype {
				t.Errorf("%s should inherit from Function.prototype", tt.name)
			}
			p, _ := r.GlobalObject.GetOwnProperty(runtime.StrKey(tt.name))
			if !p.Writable || p.Enumerable || !p.Configurable {
				t.Errorf("global %s attributes: %+v", tt.name, p)
			}
		})
	}
}

func TestRealmsAreIsolated(t *testing.T) {
	a, b := newTestRealm(), newTestRealm()
	if a.ArrayPrototype == b.ArrayPrototype {
		t.Fatal("realms should not share intrinsics")
	}
	aPush := getProp(t, runtime.NewObject(a.ArrayPrototype), "push")
	bPush := getProp(t, runtime.NewObject(b.ArrayPrototype), "push")
	if aPush.Object == bPush.Object {
		t.Error("builtin function objects should be per realm")
	}
	a.ArrayPrototype.DefineData("extra", num(1), runtime.AttrDefault)
	if b.ArrayPrototype.HasOwnProperty(runtime.StrKey("extra")) {
		t.Error("mutating one realm leaked into another")
	}
}
