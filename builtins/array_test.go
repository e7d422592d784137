package builtins

import (
	"testing"

	"github.com/example/jscore/runtime"
)

func TestArrayPushPop(t *testing.T) {
	r := newTestRealm()
	arr := nums(r, 1, 2, 3)

	length := call(t, r, arrayPush, arr, num(4))
	if length.Number != 4 {
		t.Errorf("push: expected length 4, got %v", length.Number)
	}
	popped := call(t, r, arrayPop, arr)
	if popped.Number != 4 {
		t.Errorf("pop: expected 4, got %v", popped.Number)
	}
	empty := r.NewArrayValue(nil)
	if v := call(t, r, arrayPop, empty); !v.IsUndefined() {
		t.Errorf("pop on empty: expected undefined, got %s", inspect(v))
	}
}

func TestArrayShiftUnshift(t *testing.T) {
	r := newTestRealm()
	arr := nums(r, 1, 2, 3)

	shifted := call(t, r, arrayShift, arr)
	if shifted.Number != 1 {
		t.Errorf("shift: expected 1, got %v", shifted.Number)
	}
	length := call(t, r, arrayUnshift, arr, num(-1), num(0))
	if length.Number != 4 {
		t.Errorf("unshift: expected length 4, got %v", length.Number)
	}
	expectInspect(t, arr, "[ -1, 0, 2, 3 ]")
}

func TestArrayShiftKeepsHoles(t *testing.T) {
	r := newTestRealm()
	arr := r.NewArrayValue([]*runtime.Value{num(1), num(2), num(3)})
	arr.Object.Delete(runtime.IndexKey(1))

	call(t, r, arrayShift, arr)
	expectInspect(t, arr, "[ <1 empty items>, 3 ]")
}

func TestArraySlice(t *testing.T) {
	r := newTestRealm()
	tests := []struct {
		args []*runtime.Value
		want string
	}{
		{[]*runtime.Value{num(1), num(3)}, "[ 2, 3 ]"},
		{[]*runtime.Value{num(-2)}, "[ 4, 5 ]"},
		{nil, "[ 1, 2, 3, 4, 5 ]"},
		{[]*runtime.Value{num(3), num(1)}, "[]"},
		{[]*runtime.Value{num(0), num(-4)}, "[ 1 ]"},
	}
	for _, tt := range tests {
		arr := nums(r, 1, 2, 3, 4, 5)
		got := call(t, r, arraySlice, arr, tt.args...)
		expectInspect(t, got, tt.want)
	}
}

func TestArraySplice(t *testing.T) {
	r := newTestRealm()
	arr := nums(r, 1, 2, 3, 4, 5)

	removed := call(t, r, arraySplice, arr, num(1), num(2), num(10), num(20), num(30))
	expectInspect(t, removed, "[ 2, 3 ]")
	expectInspect(t, arr, "[ 1, 10, 20, 30, 4, 5 ]")

	removed = call(t, r, arraySplice, arr, num(-2))
	expectInspect(t, removed, "[ 4, 5 ]")
	expectInspect(t, arr, "[ 1, 10, 20, 30 ]")
}

func TestArraySearch(t *testing.T) {
	r := newTestRealm()
	arr := r.NewArrayValue([]*runtime.Value{num(1), num(2), runtime.NaN, num(2), num(1)})

	tests := []struct {
		name string
		fn   Native
		args []*runtime.Value
		want string
	}{
		{"indexOf", arrayIndexOf, []*runtime.Value{num(2)}, "1"},
		{"indexOf from", arrayIndexOf, []*runtime.Value{num(2), num(2)}, "3"},
		{"indexOf missing", arrayIndexOf, []*runtime.Value{num(9)}, "-1"},
		{"indexOf NaN", arrayIndexOf, []*runtime.Value{runtime.NaN}, "-1"},
		{"lastIndexOf", arrayLastIndexOf, []*runtime.Value{num(1)}, "4"},
		{"lastIndexOf from", arrayLastIndexOf, []*runtime.Value{num(2), num(-3)}, "1"},
		{"includes", arrayIncludes, []*runtime.Value{num(2)}, "true"},
		{"includes NaN", arrayIncludes, []*runtime.Value{runtime.NaN}, "true"},
		{"includes missing", arrayIncludes, []*runtime.Value{num(7)}, "false"},
		{"at", arrayAt, []*runtime.Value{num(-1)}, "1"},
		{"at out of range", arrayAt, []*runtime.Value{num(10)}, "undefined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectInspect(t, call(t, r, tt.fn, arr, tt.args...), tt.want)
		})
	}
}

func TestArrayCallbacks(t *testing.T) {
	r := newTestRealm()
	double := nativeFn(r, "double", func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return num(args[0].Number * 2), nil
	})
	even := nativeFn(r, "even", func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return runtime.NewBool(int(args[0].Number)%2 == 0), nil
	})
	positive := nativeFn(r, "positive", func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return runtime.NewBool(args[0].Number > 0), nil
	})

	tests := []struct {
		name string
		fn   Native
		cb   *runtime.Value
		want string
	}{
		{"map", arrayMap, double, "[ 2, 4, 6, 8 ]"},
		{"filter", arrayFilter, even, "[ 2, 4 ]"},
		{"find", arrayFind, even, "2"},
		{"findIndex", arrayFindIndex, even, "1"},
		{"findLast", arrayFindLast, even, "4"},
		{"findLastIndex", arrayFindLastIndex, even, "3"},
		{"some", arraySome, even, "true"},
		{"every", arrayEvery, even, "false"},
		{"every positive", arrayEvery, positive, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectInspect(t, call(t, r, tt.fn, nums(r, 1, 2, 3, 4), tt.cb), tt.want)
		})
	}

	callErr(t, r, runtime.KindTypeError, arrayMap, nums(r, 1), num(3))
}

func TestArrayForEachSkipsHoles(t *testing.T) {
	r := newTestRealm()
	arr := nums(r, 1, 2, 3)
	arr.Object.Delete(runtime.IndexKey(1))

	visits := 0
	cb := nativeFn(r, "cb", func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		visits++
		return runtime.Undefined, nil
	})
	call(t, r, arrayForEach, arr, cb)
	if visits != 2 {
		t.Errorf("forEach: expected 2 visits, got %d", visits)
	}
}

func TestArrayReduce(t *testing.T) {
	r := newTestRealm()
	concat := nativeFn(r, "concat", func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		a, _ := runtime.ToString(args[0])
		b, _ := runtime.ToString(args[1])
		return str(a + b), nil
	})

	expectInspect(t, call(t, r, arrayReduce, nums(r, 1, 2, 3), concat), `'123'`)
	expectInspect(t, call(t, r, arrayReduce, nums(r, 1, 2, 3), concat, str(">")), `'>123'`)
	expectInspect(t, call(t, r, arrayReduceRight, nums(r, 1, 2, 3), concat), `'321'`)
	callErr(t, r, runtime.KindTypeError, arrayReduce, r.NewArrayValue(nil), concat)
}

func TestArraySort(t *testing.T) {
	r := newTestRealm()

	arr := r.NewArrayValue([]*runtime.Value{num(10), runtime.Undefined, num(9), num(1)})
	call(t, r, arraySort, arr)
	expectInspect(t, arr, "[ 1, 10, 9, undefined ]")

	byNumber := nativeFn(r, "cmp", func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return num(args[0].Number - args[1].Number), nil
	})
	arr = nums(r, 10, 9, 1)
	call(t, r, arraySort, arr, byNumber)
	expectInspect(t, arr, "[ 1, 9, 10 ]")

	callErr(t, r, runtime.KindTypeError, arraySort, nums(r, 2, 1), num(1))

	failing := nativeFn(r, "cmp", func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return nil, runtime.NewRangeError("boom")
	})
	callErr(t, r, runtime.KindRangeError, arraySort, nums(r, 2, 1), failing)
}

func TestArraySortStable(t *testing.T) {
	r := newTestRealm()
	pairs := make([]*runtime.Value, 0, 6)
	for i, k := range []float64{2, 1, 2, 1, 2, 1} {
		obj := r.NewPlainObject()
		obj.CreateDataProperty(runtime.StrKey("k"), num(k))
		obj.CreateDataProperty(runtime.StrKey("i"), num(float64(i)))
		pairs = append(pairs, runtime.NewObject(obj))
	}
	arr := r.NewArrayValue(pairs)
	byKey := nativeFn(r, "cmp", func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		a, _ := args[0].Object.Get(runtime.StrKey("k"))
		b, _ := args[1].Object.Get(runtime.StrKey("k"))
		return num(a.Number - b.Number), nil
	})
	call(t, r, arraySort, arr, byKey)

	var order []float64
	for _, v := range elems(t, arr) {
		i, _ := v.Object.Get(runtime.StrKey("i"))
		order = append(order, i.Number)
	}
	want := []float64{1, 3, 5, 0, 2, 4}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("sort not stable: got %v, want %v", order, want)
		}
	}
}

func TestArrayReverse(t *testing.T) {
	r := newTestRealm()
	arr := nums(r, 1, 2, 3)
	call(t, r, arrayReverse, arr)
	expectInspect(t, arr, "[ 3, 2, 1 ]")
}

func TestArrayJoin(t *testing.T) {
	r := newTestRealm()
	arr := r.NewArrayValue([]*runtime.Value{num(1), runtime.Null, str("a"), runtime.Undefined})
	expectInspect(t, call(t, r, arrayJoin, arr), `'1,,a,'`)
	expectInspect(t, call(t, r, arrayJoin, arr, str(" - ")), `'1 -  - a - '`)

	cyclic := nums(r, 1, 2)
	cyclic.Object.CreateDataProperty(runtime.IndexKey(2), cyclic)
	expectInspect(t, call(t, r, arrayJoin, cyclic), `'1,2,'`)

	expectInspect(t, call(t, r, arrayToString, nums(r, 1, 2)), `'1,2'`)
}

func TestArrayConcat(t *testing.T) {
	r := newTestRealm()
	got := call(t, r, arrayConcat, nums(r, 1, 2), nums(r, 3), num(4), str("x"))
	expectInspect(t, got, `[ 1, 2, 3, 4, 'x' ]`)
}

func TestArrayFlat(t *testing.T) {
	r := newTestRealm()
	inner := r.NewArrayValue([]*runtime.Value{num(3), nums(r, 4, 5)})
	arr := r.NewArrayValue([]*runtime.Value{num(1), nums(r, 2), inner})

	expectInspect(t, call(t, r, arrayFlat, arr), "[ 1, 2, 3, [ 4, 5 ] ]")
	expectInspect(t, call(t, r, arrayFlat, arr, runtime.PosInf), "[ 1, 2, 3, 4, 5 ]")

	pair := nativeFn(r, "pair", func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return r.NewArrayValue([]*runtime.Value{args[0], args[0]}), nil
	})
	expectInspect(t, call(t, r, arrayFlatMap, nums(r, 1, 2), pair), "[ 1, 1, 2, 2 ]")
}

func TestArrayFill(t *testing.T) {
	r := newTestRealm()
	arr := nums(r, 1, 2, 3, 4)
	call(t, r, arrayFill, arr, num(0), num(1), num(-1))
	expectInspect(t, arr, "[ 1, 0, 0, 4 ]")
}

func TestArrayStatics(t *testing.T) {
	r := newTestRealm()
	if v := call(t, r, arrayIsArray, runtime.Undefined, nums(r)); !v.Bool {
		t.Error("isArray: expected true for array")
	}
	if v := call(t, r, arrayIsArray, runtime.Undefined, runtime.NewObject(r.NewPlainObject())); v.Bool {
		t.Error("isArray: expected false for plain object")
	}
	expectInspect(t, call(t, r, arrayOf, runtime.Undefined, num(7)), "[ 7 ]")
	expectInspect(t, call(t, r, arrayFrom, runtime.Undefined, str("ab")), `[ 'a', 'b' ]`)
	expectInspect(t, call(t, r, arrayFrom, runtime.Undefined, num(1)), "[]")
	callErr(t, r, runtime.KindTypeError, arrayFrom, runtime.Undefined, runtime.Null)
}

func TestArrayConstructor(t *testing.T) {
	r := newTestRealm()
	v, err := arrayConstruct(r, []*runtime.Value{num(3)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	expectInspect(t, v, "[ <3 empty items> ]")

	_, err = arrayConstruct(r, []*runtime.Value{num(-1)}, nil)
	assertKind(t, err, runtime.KindRangeError)
	_, err = arrayConstruct(r, []*runtime.Value{num(1.5)}, nil)
	assertKind(t, err, runtime.KindRangeError)
}

func TestArrayIterators(t *testing.T) {
	r := newTestRealm()
	arr := strs(r, "a", "b")

	keys := collect(t, r, call(t, r, arrayKeys, arr))
	if len(keys) != 2 || keys[1].Number != 1 {
		t.Errorf("keys: got %v", keys)
	}
	entries := collect(t, r, call(t, r, arrayEntries, arr))
	if len(entries) != 2 {
		t.Fatalf("entries: expected 2, got %d", len(entries))
	}
	expectInspect(t, entries[1], `[ 1, 'b' ]`)

	iter := global(t, r, "Array")
	proto := getProp(t, iter, "prototype")
	values := getProp(t, proto, "values")
	sym, err := proto.Object.Get(runtime.SymKey(runtime.SymIterator))
	if err != nil {
		t.Fatal(err)
	}
	if values.Object != sym.Object {
		t.Error("Array.prototype[Symbol.iterator] should be Array.prototype.values")
	}
}
