package builtins

import (
	"testing"

	"github.com/example/jscore/runtime"
)

func TestSymbolCall(t *testing.T) {
	r := newTestRealm()
	a := call(t, r, symbolCall, runtime.Undefined, str("test"))
	b := call(t, r, symbolCall, runtime.Undefined, str("test"))
	if a.Type != runtime.TypeSymbol {
		t.Fatalf("expected symbol, got %s", inspect(a))
	}
	if a.Symbol == b.Symbol {
		t.Error("each Symbol() call should produce a distinct symbol")
	}

	tests := []struct {
		args     []*runtime.Value
		str      string
		describe string
	}{
		{[]*runtime.Value{str("x")}, "Symbol(x)", "'x'"},
		{[]*runtime.Value{str("")}, "Symbol()", "''"},
		{nil, "Symbol()", "undefined"},
		{[]*runtime.Value{num(1)}, "Symbol(1)", "'1'"},
	}
	for _, tt := range tests {
		sym := call(t, r, symbolCall, runtime.Undefined, tt.args...)
		if got := call(t, r, symbolToString, sym); got.Str != tt.str {
			t.Errorf("toString: got %q, want %q", got.Str, tt.str)
		}
		expectInspect(t, call(t, r, symbolDescription, sym), tt.describe)
	}

	callErr(t, r, runtime.KindTypeError, symbolToString, str("x"))
}

func TestSymbolRegistry(t *testing.T) {
	r := newTestRealm()
	s1 := call(t, r, symbolFor, runtime.Undefined, str("shared"))
	s2 := call(t, r, symbolFor, runtime.Undefined, str("shared"))
	if s1.Symbol != s2.Symbol {
		t.Error("Symbol.for should return the same symbol for the same key")
	}
	if got := call(t, r, symbolKeyFor, runtime.Undefined, s1); got.Str != "shared" {
		t.Errorf("keyFor: got %s", inspect(got))
	}

	local := call(t, r, symbolCall, runtime.Undefined, str("shared"))
	if got := call(t, r, symbolKeyFor, runtime.Undefined, local); !got.IsUndefined() {
		t.Errorf("keyFor unregistered: got %s", inspect(got))
	}
	callErr(t, r, runtime.KindTypeError, symbolKeyFor, runtime.Undefined, str("shared"))

	other := newTestRealm()
	if call(t, other, symbolFor, runtime.Undefined, str("shared")).Symbol == s1.Symbol {
		t.Error("registries should be per realm")
	}
}

func TestSymbolWrapper(t *testing.T) {
	r := newTestRealm()
	sym := call(t, r, symbolCall, runtime.Undefined, str("w"))
	obj, err := r.ToObject(sym)
	if err != nil {
		t.Fatal(err)
	}
	w := runtime.NewObject(obj)
	if got := call(t, r, symbolValueOf, w); got.Symbol != sym.Symbol {
		t.Error("valueOf on a wrapper should unwrap the symbol")
	}
	if got := getProp(t, w, "description"); got.Str != "w" {
		t.Errorf("description via wrapper: got %s", inspect(got))
	}

	ctor := global(t, r, "Symbol")
	if runtime.IsConstructor(ctor) {
		t.Error("Symbol should not be a constructor")
	}
	iter := getProp(t, ctor, "iterator")
	if iter.Symbol != runtime.SymIterator {
		t.Error("Symbol.iterator should be the shared well-known symbol")
	}
	p, _ := ctor.Object.GetOwnProperty(runtime.StrKey("iterator"))
	if p.Writable || p.Enumerable || p.Configurable {
		t.Errorf("Symbol.iterator attributes: %+v", p)
	}
}
