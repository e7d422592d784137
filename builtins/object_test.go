package builtins

import (
	"testing"

	"github.com/example/jscore/runtime"
)

// plainObject builds {k0: v0, k1: v1, ...} from alternating pairs.
func plainObject(r *runtime.Realm, kv ...any) *runtime.Value {
	obj := r.NewPlainObject()
	for i := 0; i+1 < len(kv); i += 2 {
		var v *runtime.Value
		switch x := kv[i+1].(type) {
		case float64:
			v = num(x)
		case int:
			v = num(float64(x))
		case string:
			v = str(x)
		case *runtime.Value:
			v = x
		}
		obj.CreateDataProperty(runtime.StrKey(kv[i].(string)), v)
	}
	return runtime.NewObject(obj)
}

func TestObjectKeysValuesEntries(t *testing.T) {
	r := newTestRealm()
	obj := plainObject(r, "b", 1, "a", 2, "10", 3, "2", 4)
	obj.Object.DefineData("hidden", num(5), runtime.AttrHidden)
	obj.Object.DefineOwnProperty(runtime.SymKey(runtime.SymIterator), runtime.DataDescriptor(num(6), runtime.AttrDefault))

	expectInspect(t, call(t, r, objectKeys, runtime.Undefined, obj), "[ '2', '10', 'b', 'a' ]")
	expectInspect(t, call(t, r, objectValues, runtime.Undefined, obj), "[ 4, 3, 1, 2 ]")
	entries := elems(t, call(t, r, objectEntries, runtime.Undefined, obj))
	expectInspect(t, entries[2], "[ 'b', 1 ]")

	expectInspect(t, call(t, r, objectKeys, runtime.Undefined, str("ab")), "[ '0', '1' ]")
	callErr(t, r, runtime.KindTypeError, objectKeys, runtime.Undefined, runtime.Null)
}

func TestObjectFromEntries(t *testing.T) {
	r := newTestRealm()
	entries := r.NewArrayValue([]*runtime.Value{
		r.NewArrayValue([]*runtime.Value{str("x"), num(1)}),
		r.NewArrayValue([]*runtime.Value{num(2), str("two")}),
	})
	expectInspect(t, call(t, r, objectFromEntries, runtime.Undefined, entries), "{ '2': 'two', x: 1 }")
	callErr(t, r, runtime.KindTypeError, objectFromEntries, runtime.Undefined, nums(r, 1))
}

func TestObjectAssign(t *testing.T) {
	r := newTestRealm()
	target := plainObject(r, "a", 1)
	src := plainObject(r, "b", 2, "a", 3)
	src.Object.DefineData("hidden", num(4), runtime.AttrHidden)

	got := call(t, r, objectAssign, runtime.Undefined, target, runtime.Null, src, str("xy"))
	if got.Object != target.Object {
		t.Error("assign should return the target")
	}
	expectInspect(t, target, "{ '0': 'x', '1': 'y', a: 3, b: 2 }")

	frozen := plainObject(r, "a", 1)
	frozen.Object.Freeze()
	callErr(t, r, runtime.KindTypeError, objectAssign, runtime.Undefined, frozen, plainObject(r, "a", 2))
}

func TestObjectCreate(t *testing.T) {
	r := newTestRealm()
	proto := plainObject(r, "greet", "hello")
	child := call(t, r, objectCreate, runtime.Undefined, proto)
	if got := getProp(t, child, "greet"); got.Str != "hello" {
		t.Errorf("inherited: got %s", inspect(got))
	}
	if child.Object.HasOwnProperty(runtime.StrKey("greet")) {
		t.Error("greet should not be own")
	}

	bare := call(t, r, objectCreate, runtime.Undefined, runtime.Null)
	if bare.Object.GetPrototype() != nil {
		t.Error("Object.create(null) should have a null prototype")
	}

	props := plainObject(r, "x", plainObject(r, "value", 1, "enumerable", runtime.True))
	withProps := call(t, r, objectCreate, runtime.Undefined, runtime.Null, props)
	p, ok := withProps.Object.GetOwnProperty(runtime.StrKey("x"))
	if !ok || p.Writable || !p.Enumerable || p.Configurable {
		t.Errorf("descriptor defaults: got %+v", p)
	}

	callErr(t, r, runtime.KindTypeError, objectCreate, runtime.Undefined, num(1))
}

func TestObjectDefineProperty(t *testing.T) {
	r := newTestRealm()
	obj := plainObject(r)
	getter := nativeFn(r, "get", func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return str("computed"), nil
	})

	call(t, r, objectDefineProperty, runtime.Undefined, obj, str("c"), plainObject(r, "get", getter))
	if got := getProp(t, obj, "c"); got.Str != "computed" {
		t.Errorf("getter: got %s", inspect(got))
	}
	desc := call(t, r, objectGetOwnPropertyDescriptor, runtime.Undefined, obj, str("c"))
	expectInspect(t, desc, "{ get: [Function: get], set: undefined, enumerable: false, configurable: false }")

	call(t, r, objectDefineProperty, runtime.Undefined, obj, str("v"), plainObject(r, "value", 1))
	callErr(t, r, runtime.KindTypeError, objectDefineProperty, runtime.Undefined, obj, str("v"), plainObject(r, "value", 2))

	bad := plainObject(r, "get", getter, "value", 1)
	callErr(t, r, runtime.KindTypeError, objectDefineProperty, runtime.Undefined, obj, str("z"), bad)
	callErr(t, r, runtime.KindTypeError, objectDefineProperty, runtime.Undefined, obj, str("z"), plainObject(r, "get", 1))
	callErr(t, r, runtime.KindTypeError, objectDefineProperty, runtime.Undefined, num(1), str("z"), plainObject(r))

	if got := call(t, r, objectGetOwnPropertyDescriptor, runtime.Undefined, obj, str("missing")); !got.IsUndefined() {
		t.Errorf("missing descriptor: got %s", inspect(got))
	}
}

func TestObjectDefinePropertiesIsAtomicOnBadDescriptor(t *testing.T) {
	r := newTestRealm()
	obj := plainObject(r)
	props := plainObject(r, "a", plainObject(r, "value", 1), "b", num(2))
	callErr(t, r, runtime.KindTypeError, objectDefineProperties, runtime.Undefined, obj, props)
	if obj.Object.HasOwnProperty(runtime.StrKey("a")) {
		t.Error("no property should be defined when a descriptor is invalid")
	}
}

func TestObjectFreezeSeal(t *testing.T) {
	r := newTestRealm()
	obj := plainObject(r, "x", 1)

	call(t, r, objectSeal, runtime.Undefined, obj)
	if got := call(t, r, objectIsSealed, runtime.Undefined, obj); !got.Bool {
		t.Error("isSealed after seal: expected true")
	}
	if got := call(t, r, objectIsFrozen, runtime.Undefined, obj); got.Bool {
		t.Error("sealed object with writable data should not be frozen")
	}
	call(t, r, objectFreeze, runtime.Undefined, obj)
	if got := call(t, r, objectIsFrozen, runtime.Undefined, obj); !got.Bool {
		t.Error("isFrozen after freeze: expected true")
	}
	if ok, _ := obj.Object.Set(runtime.StrKey("x"), num(2), obj); ok {
		t.Error("write to frozen property should fail")
	}
	if got := call(t, r, objectIsFrozen, runtime.Undefined, num(1)); !got.Bool {
		t.Error("primitives are frozen")
	}

	ext := plainObject(r)
	call(t, r, objectPreventExtensions, runtime.Undefined, ext)
	if got := call(t, r, objectIsExtensible, runtime.Undefined, ext); got.Bool {
		t.Error("isExtensible after preventExtensions: expected false")
	}
	if got := call(t, r, objectIsSealed, runtime.Undefined, ext); !got.Bool {
		t.Error("empty non-extensible object is sealed")
	}
}

func TestObjectIs(t *testing.T) {
	r := newTestRealm()
	obj := plainObject(r)
	tests := []struct {
		a, b *runtime.Value
		want bool
	}{
		{runtime.NaN, runtime.NaN, true},
		{num(0), runtime.NewNumber(negativeZero()), false},
		{str("a"), str("a"), true},
		{obj, obj, true},
		{obj, plainObject(r), false},
		{runtime.Undefined, runtime.Null, false},
	}
	for _, tt := range tests {
		if got := call(t, r, objectIs, runtime.Undefined, tt.a, tt.b); got.Bool != tt.want {
			t.Errorf("Object.is(%s, %s): got %v", inspect(tt.a), inspect(tt.b), got.Bool)
		}
	}
}

func TestObjectPrototypes(t *testing.T) {
	r := newTestRealm()
	obj := plainObject(r)
	if got := call(t, r, objectGetPrototypeOf, runtime.Undefined, obj); got.Object != r.ObjectPrototype {
		t.Error("getPrototypeOf plain object should be Object.prototype")
	}
	if got := call(t, r, objectGetPrototypeOf, runtime.Undefined, str("s")); got.Object != r.StringPrototype {
		t.Error("getPrototypeOf string should be String.prototype")
	}

	a, b := plainObject(r), plainObject(r)
	call(t, r, objectSetPrototypeOf, runtime.Undefined, a, b)
	callErr(t, r, runtime.KindTypeError, objectSetPrototypeOf, runtime.Undefined, b, a)
	callErr(t, r, runtime.KindTypeError, objectSetPrototypeOf, runtime.Undefined, a, num(1))
	if got := call(t, r, objectSetPrototypeOf, runtime.Undefined, num(1), runtime.Null); got.Number != 1 {
		t.Error("setPrototypeOf on a primitive returns it")
	}

	if got := call(t, r, objectProtoIsPrototypeOf, b, a); !got.Bool {
		t.Error("b.isPrototypeOf(a): expected true")
	}
	if got := call(t, r, objectProtoGetProto, a); got.Object != b.Object {
		t.Error("__proto__ getter: wrong prototype")
	}
	call(t, r, objectProtoSetProto, a, runtime.Null)
	if a.Object.GetPrototype() != nil {
		t.Error("__proto__ setter: expected null prototype")
	}
}

func TestObjectHasOwnProperty(t *testing.T) {
	r := newTestRealm()
	obj := plainObject(r, "own", 1)
	if got := call(t, r, objectProtoHasOwnProperty, obj, str("own")); !got.Bool {
		t.Error("hasOwnProperty own: expected true")
	}
	if got := call(t, r, objectProtoHasOwnProperty, obj, str("toString")); got.Bool {
		t.Error("hasOwnProperty inherited: expected false")
	}
	if got := call(t, r, objectHasOwn, runtime.Undefined, strs(r, "a"), num(0)); !got.Bool {
		t.Error("Object.hasOwn(['a'], 0): expected true")
	}
	if got := call(t, r, objectProtoPropertyIsEnumerable, nums(r, 1), str("length")); got.Bool {
		t.Error("array length is not enumerable")
	}
}

func TestObjectToString(t *testing.T) {
	r := newTestRealm()
	tagged := plainObject(r)
	tagged.Object.DefineOwnProperty(runtime.SymKey(runtime.SymToStringTag), runtime.DataDescriptor(str("Custom"), runtime.AttrHidden))

	tests := []struct {
		this *runtime.Value
		want string
	}{
		{runtime.Undefined, "[object Undefined]"},
		{runtime.Null, "[object Null]"},
		{plainObject(r), "[object Object]"},
		{nums(r, 1), "[object Array]"},
		{num(1), "[object Number]"},
		{str("s"), "[object String]"},
		{runtime.True, "[object Boolean]"},
		{global(t, r, "Object"), "[object Function]"},
		{construct(t, global(t, r, "Error")), "[object Error]"},
		{global(t, r, "Math"), "[object Math]"},
		{construct(t, global(t, r, "Map")), "[object Map]"},
		{tagged, "[object Custom]"},
	}
	for _, tt := range tests {
		if got := call(t, r, objectProtoToString, tt.this); got.Str != tt.want {
			t.Errorf("toString(%s): got %q, want %q", inspect(tt.this), got.Str, tt.want)
		}
	}
}

func TestObjectConstructor(t *testing.T) {
	r := newTestRealm()
	ctor := global(t, r, "Object")
	if got := invoke(t, ctor, runtime.Undefined); got.Object.GetPrototype() != r.ObjectPrototype {
		t.Error("Object() should create a plain object")
	}
	wrapped := invoke(t, ctor, runtime.Undefined, num(3))
	expectInspect(t, wrapped, "[Number: 3]")
	obj := plainObject(r)
	if got := invoke(t, ctor, runtime.Undefined, obj); got.Object != obj.Object {
		t.Error("Object(obj) should return obj")
	}
}
