package runtime

import (
	"errors"
	"testing"
)

func expectKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	var le *LanguageError
	if !errors.As(err, &le) {
		t.Fatalf("expected %s, got %v", kind, err)
	}
	if le.Kind != kind {
		t.Fatalf("expected %s, got %s: %s", kind, le.Kind, le.Message)
	}
}

func TestHasBindingIsOwnScopeOnly(t *testing.T) {
	outer := NewDeclarativeEnv(nil)
	outer.CreateBinding("x", BindLet, NewNumber(1))
	inner := NewDeclarativeEnv(outer)
	if inner.HasBinding("x") {
		t.Error("HasBinding must not consult the parent")
	}
	ref := ResolveBinding(inner, "x", false)
	if ref.Env() != outer {
		t.Error("resolution should land on the outer record")
	}
}

func TestShadowingDoesNotMutateOuter(t *testing.T) {
	r := NewRealm()
	outer := NewDeclarativeEnv(nil)
	outer.CreateBinding("x", BindLet, NewNumber(1))
	inner := NewDeclarativeEnv(outer)
	inner.CreateBinding("x", BindLet, NewNumber(2))

	if err := ResolveBinding(inner, "x", true).Write(r, NewNumber(3)); err != nil {
		t.Fatal(err)
	}
	v, _ := outer.GetBindingValue("x")
	if v.Number != 1 {
		t.Errorf("outer binding changed to %v", v.Number)
	}
	v, _ = inner.GetBindingValue("x")
	if v.Number != 3 {
		t.Errorf("inner binding is %v", v.Number)
	}
}

func TestCreateBindingOverwritesSilently(t *testing.T) {
	env := NewDeclarativeEnv(nil)
	env.CreateBinding("x", BindConst, NewNumber(1))
	env.CreateBinding("x", BindVar, NewNumber(2))
	v, _ := env.GetBindingValue("x")
	if v.Number != 2 {
		t.Errorf("expected 2, got %v", v.Number)
	}
}

func TestUnresolvableReference(t *testing.T) {
	r := NewRealm()
	env := NewGlobalEnv(r.GlobalObject)
	ref := ResolveBinding(env, "missing", false)
	if !ref.IsUnresolvable() {
		t.Fatal("expected unresolvable reference")
	}
	_, err := ref.Read(r)
	expectKind(t, err, KindReferenceError)

	strict := ResolveBinding(env, "missing", true)
	expectKind(t, strict.Write(r, True), KindReferenceError)

	if err := ref.Write(r, True); err != nil {
		t.Fatalf("sloppy write failed: %v", err)
	}
	if !r.GlobalObject.HasOwnProperty(StrKey("missing")) {
		t.Error("sloppy write should create a global property")
	}
}

func TestConstAndDeadZone(t *testing.T) {
	r := NewRealm()
	env := NewDeclarativeEnv(nil)
	env.CreateBinding("c", BindConst, NewNumber(1))
	expectKind(t, env.GetBinding("c").Write(r, NewNumber(2)), KindTypeError)

	env.CreateBinding("l", BindLet, nil)
	_, err := env.GetBinding("l").Read(r)
	expectKind(t, err, KindReferenceError)
	env.InitializeBinding("l", NewNumber(5))
	v, err := env.GetBinding("l").Read(r)
	if err != nil || v.Number != 5 {
		t.Errorf("expected 5 after initialization, got %v %v", v, err)
	}
}

func TestSelfBinding(t *testing.T) {
	env := NewDeclarativeEnv(nil)
	env.CreateBinding("f", BindSelf, NewString("fn"))
	if err := env.SetMutableBinding("f", NewNumber(1), false); err != nil {
		t.Fatalf("sloppy write should be ignored, got %v", err)
	}
	v, err := env.GetBindingValue("f")
	if err != nil || v.Str != "fn" {
		t.Errorf("binding changed: %v %v", v, err)
	}
	expectKind(t, env.SetMutableBinding("f", NewNumber(1), true), KindTypeError)
}

func TestGlobalPrefersLexicalMap(t *testing.T) {
	r := NewRealm()
	g := NewGlobalEnv(r.GlobalObject)
	g.CreateGlobalVar("x", NewString("object"))
	g.CreateBinding("x", BindLet, NewString("lexical"))

	v, err := ResolveBinding(g, "x", false).Read(r)
	if err != nil || v.Str != "lexical" {
		t.Errorf("expected lexical binding, got %v %v", v, err)
	}
	g.CreateGlobalVar("y", NewNumber(1))
	ref := g.GetBinding("y")
	if !ref.IsPropertyReference() || ref.Base().Object != r.GlobalObject {
		t.Error("var bindings should resolve to the global object")
	}
}

func TestPropertyReferenceOnPrimitive(t *testing.T) {
	r := NewRealm()
	ref := NewPropertyReference(NewString("abc"), StrKey("length"), true)
	v, err := ref.Read(r)
	if err != nil || v.Number != 3 {
		t.Fatalf("expected 3, got %v %v", v, err)
	}
	expectKind(t, ref.Write(r, NewNumber(1)), KindTypeError)

	nullRef := NewPropertyReference(Null, StrKey("x"), false)
	_, err = nullRef.Read(r)
	expectKind(t, err, KindTypeError)
}

func TestFunctionEnvThis(t *testing.T) {
	env := NewFunctionEnv(nil, nil, nil, nil)
	if _, err := env.This(); err == nil {
		t.Error("expected uninitialized this to fail")
	}
	if err := env.BindThis(True); err != nil {
		t.Fatal(err)
	}
	if err := env.BindThis(True); err == nil {
		t.Error("expected second BindThis to fail")
	}
	inner := NewDeclarativeEnv(env)
	if ThisEnvironment(inner) != Environment(env) {
		t.Error("ThisEnvironment should skip declarative records")
	}
}
