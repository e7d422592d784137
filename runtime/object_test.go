package runtime

import (
	"errors"
	"slices"
	"testing"
)

func keyNames(o *Object) []string {
	var out []string
	for k := range o.OwnKeys() {
		out = append(out, k.String())
	}
	return out
}

func TestDefineThenGet(t *testing.T) {
	o := NewOrdinaryObject(nil)
	if !o.DefineOwnProperty(StrKey("x"), DataDescriptor(NewNumber(7), AttrDefault)) {
		t.Fatal("define failed")
	}
	v, err := o.Get(StrKey("x"))
	if err != nil {
		t.Fatal(err)
	}
	if v.Number != 7 {
		t.Errorf("expected 7, got %v", v.Number)
	}
}

func TestNonConfigurableRejectsAttributeChanges(t *testing.T) {
	o := NewOrdinaryObject(nil)
	o.DefineOwnProperty(StrKey("x"), DataDescriptor(NewNumber(1), Writable))

	tests := []struct {
		name string
		desc PropertyDescriptor
		ok   bool
	}{
		{"make enumerable", PropertyDescriptor{Enumerable: true, HasEnumerable: true}, false},
		{"make configurable", PropertyDescriptor{Configurable: true, HasConfigurable: true}, false},
		{"same enumerable", PropertyDescriptor{Enumerable: false, HasEnumerable: true}, true},
		{"to accessor", AccessorDescriptor(nil, nil, AttrNone), false},
		{"new value while writable", PropertyDescriptor{Value: NewNumber(2), HasValue: true}, true},
		{"drop writable", PropertyDescriptor{Writable: false, HasWritable: true}, true},
		{"widen writable", PropertyDescriptor{Writable: true, HasWritable: true}, false},
		{"change frozen value", PropertyDescriptor{Value: NewNumber(3), HasValue: true}, false},
		{"same frozen value", PropertyDescriptor{Value: NewNumber(2), HasValue: true}, true},
	}
	for _, tt := range tests {
		if got := o.DefineOwnProperty(StrKey("x"), tt.desc); got != tt.ok {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.ok, got)
		}
	}
}

func TestConvertingKindReplacesDescriptor(t *testing.T) {
	o := NewOrdinaryObject(nil)
	o.DefineOwnProperty(StrKey("x"), DataDescriptor(NewNumber(1), AttrDefault))
	getter := NewObjectOfClass(ClassFunction, nil)
	getter.Callable = func(this *Value, args []*Value) (*Value, error) {
		return NewString("got"), nil
	}
	if !o.DefineOwnProperty(StrKey("x"), PropertyDescriptor{Get: getter, HasGet: true}) {
		t.Fatal("conversion failed")
	}
	p, _ := o.GetOwnProperty(StrKey("x"))
	if !p.IsAccessor || p.Value != nil || p.Writable {
		t.Errorf("expected a clean accessor, got %+v", p)
	}
	if !p.Enumerable || !p.Configurable {
		t.Errorf("expected enumerable/configurable to carry over, got %+v", p)
	}
	v, _ := o.Get(StrKey("x"))
	if v.Str != "got" {
		t.Errorf("expected getter result, got %v", Display(v))
	}
}

func TestNonExtensibleRejectsNewKeys(t *testing.T) {
	o := NewOrdinaryObject(nil)
	o.PreventExtensions()
	if o.DefineOwnProperty(StrKey("x"), DataDescriptor(True, AttrDefault)) {
		t.Error("expected define on non-extensible object to fail")
	}
	ok, err := o.Set(StrKey("x"), True, NewObject(o))
	if err != nil || ok {
		t.Errorf("expected silent failure, got %v %v", ok, err)
	}
}

func TestPrototypeLookupAndShadowing(t *testing.T) {
	parent := NewOrdinaryObject(nil)
	parent.CreateDataProperty(StrKey("x"), NewNumber(1))
	child := NewOrdinaryObject(parent)

	v, _ := child.Get(StrKey("x"))
	if v.Number != 1 {
		t.Fatalf("expected inherited 1, got %v", v.Number)
	}
	ok, err := child.Set(StrKey("x"), NewNumber(2), NewObject(child))
	if !ok || err != nil {
		t.Fatalf("set failed: %v %v", ok, err)
	}
	if !child.HasOwnProperty(StrKey("x")) {
		t.Error("expected child to gain an own property")
	}
	pv, _ := parent.Get(StrKey("x"))
	if pv.Number != 1 {
		t.Errorf("parent was mutated: %v", pv.Number)
	}
}

func TestInheritedReadOnlyBlocksShadowing(t *testing.T) {
	parent := NewOrdinaryObject(nil)
	parent.DefineOwnProperty(StrKey("x"), DataDescriptor(NewNumber(1), AttrNone))
	child := NewOrdinaryObject(parent)
	ok, _ := child.Set(StrKey("x"), NewNumber(2), NewObject(child))
	if ok || child.HasOwnProperty(StrKey("x")) {
		t.Error("expected the read-only inherited property to block assignment")
	}
}

func TestAccessorReceiverIsOriginalObject(t *testing.T) {
	parent := NewOrdinaryObject(nil)
	var seen *Value
	getter := NewObjectOfClass(ClassFunction, nil)
	getter.Callable = func(this *Value, args []*Value) (*Value, error) {
		seen = this
		return Undefined, nil
	}
	setter := NewObjectOfClass(ClassFunction, nil)
	var setThis *Value
	setter.Callable = func(this *Value, args []*Value) (*Value, error) {
		setThis = this
		return Undefined, nil
	}
	parent.DefineOwnProperty(StrKey("p"), AccessorDescriptor(getter, setter, Configurable))
	child := NewOrdinaryObject(parent)
	childVal := NewObject(child)

	child.Get(StrKey("p"))
	if seen == nil || seen.Object != child {
		t.Error("getter did not receive the child as this")
	}
	child.Set(StrKey("p"), True, childVal)
	if setThis == nil || setThis.Object != child {
		t.Error("setter did not receive the child as this")
	}
	if child.HasOwnProperty(StrKey("p")) {
		t.Error("setter path must not create an own property")
	}
}

func TestAccessorWithoutSetterFails(t *testing.T) {
	o := NewOrdinaryObject(nil)
	o.DefineOwnProperty(StrKey("p"), AccessorDescriptor(nil, nil, Configurable))
	ok, err := o.Set(StrKey("p"), True, NewObject(o))
	if ok || err != nil {
		t.Errorf("expected silent failure, got %v %v", ok, err)
	}
	v, _ := o.Get(StrKey("p"))
	if v != Undefined {
		t.Errorf("expected undefined from missing getter, got %v", Display(v))
	}
}

func TestDelete(t *testing.T) {
	o := NewOrdinaryObject(nil)
	o.CreateDataProperty(StrKey("a"), True)
	o.DefineOwnProperty(StrKey("b"), DataDescriptor(True, Writable))
	if !o.Delete(StrKey("a")) || o.HasOwnProperty(StrKey("a")) {
		t.Error("expected configurable property to be removed")
	}
	if o.Delete(StrKey("b")) || !o.HasOwnProperty(StrKey("b")) {
		t.Error("expected non-configurable property to stay")
	}
	if !o.Delete(StrKey("missing")) {
		t.Error("deleting a missing key succeeds")
	}
}

func TestOwnKeysOrder(t *testing.T) {
	o := NewOrdinaryObject(nil)
	s1 := NewSymbol("first", true)
	s2 := NewSymbol("second", true)
	for _, k := range []PropertyKey{StrKey("b"), SymKey(s1), StrKey("10"), StrKey("a"), StrKey("2"), SymKey(s2), StrKey("01"), StrKey("1")} {
		o.CreateDataProperty(k, True)
	}
	got := keyNames(o)
	want := []string{"1", "2", "10", "b", "a", "01", "Symbol(first)", "Symbol(second)"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	o.Delete(StrKey("b"))
	o.CreateDataProperty(StrKey("b"), True)
	got = keyNames(o)
	want = []string{"1", "2", "10", "a", "01", "b", "Symbol(first)", "Symbol(second)"}
	if !slices.Equal(got, want) {
		t.Errorf("after re-insert expected %v, got %v", want, got)
	}
}

func TestOwnKeysStopsEarly(t *testing.T) {
	o := NewOrdinaryObject(nil)
	o.CreateDataProperty(StrKey("a"), True)
	o.CreateDataProperty(StrKey("b"), True)
	n := 0
	for range o.OwnKeys() {
		n++
		break
	}
	if n != 1 {
		t.Errorf("expected a single iteration, got %d", n)
	}
}

func TestSetPrototypeRejectsCycles(t *testing.T) {
	a := NewOrdinaryObject(nil)
	b := NewOrdinaryObject(a)
	c := NewOrdinaryObject(b)
	if a.SetPrototype(c) {
		t.Fatal("expected cycle to be rejected")
	}
	if a.GetPrototype() != nil {
		t.Error("failed SetPrototype changed the link")
	}
	if a.SetPrototype(a) {
		t.Error("expected self-link to be rejected")
	}
	d := NewOrdinaryObject(nil)
	d.PreventExtensions()
	if d.SetPrototype(a) {
		t.Error("expected non-extensible object to refuse a new prototype")
	}
}

func TestPrototypeDepthIsFatal(t *testing.T) {
	o := NewOrdinaryObject(nil)
	for range MaxPrototypeDepth + 5 {
		o = NewOrdinaryObject(o)
	}
	_, err := o.Get(StrKey("missing"))
	if !errors.Is(err, ErrPrototypeDepth) {
		t.Fatalf("expected ErrPrototypeDepth, got %v", err)
	}
	if IsCatchable(err) {
		t.Error("depth violation must not be catchable")
	}
}

func TestArrayLength(t *testing.T) {
	arr := NewArray(nil, []*Value{NewNumber(1), NewNumber(2), NewNumber(3)})
	n, _ := LengthOf(arr)
	if n != 3 {
		t.Fatalf("expected length 3, got %d", n)
	}
	arr.CreateDataProperty(IndexKey(9), True)
	if n, _ = LengthOf(arr); n != 10 {
		t.Errorf("expected length 10 after sparse write, got %d", n)
	}
	ok, err := arr.Set(lengthKey, NewNumber(1), NewObject(arr))
	if !ok || err != nil {
		t.Fatalf("truncate failed: %v %v", ok, err)
	}
	if arr.HasOwnProperty(IndexKey(1)) || arr.HasOwnProperty(IndexKey(9)) {
		t.Error("expected truncated indices to be removed")
	}
	if _, err := arr.Set(lengthKey, NewNumber(-1), NewObject(arr)); err == nil {
		t.Error("expected RangeError for negative length")
	}
	if slices.Contains(keyNames(arr), "length") && arr.props[lengthKey].Enumerable {
		t.Error("length must not be enumerable")
	}
}

func TestStringWrapperIndices(t *testing.T) {
	r := NewRealm()
	obj, err := r.ToObject(NewString("héllo"))
	if err != nil {
		t.Fatal(err)
	}
	v, _ := obj.Get(StrKey("1"))
	if v.Str != "é" {
		t.Errorf("expected é, got %q", v.Str)
	}
	l, _ := obj.Get(lengthKey)
	if l.Number != 5 {
		t.Errorf("expected length 5, got %v", l.Number)
	}
	if obj.Delete(StrKey("0")) {
		t.Error("string indices are not deletable")
	}
	want := []string{"0", "1", "2", "3", "4", "length"}
	if got := keyNames(obj); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFreeze(t *testing.T) {
	o := NewOrdinaryObject(nil)
	o.CreateDataProperty(StrKey("a"), True)
	o.Freeze()
	if !o.IsFrozen() {
		t.Fatal("expected frozen")
	}
	if ok, _ := o.Set(StrKey("a"), False, NewObject(o)); ok {
		t.Error("frozen property accepted a write")
	}
}
