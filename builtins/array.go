package builtins

import (
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/example/jscore/runtime"
)

// joining holds the arrays whose join is in progress so that cyclic
// arrays render their back edges as empty strings.
var joining sync.Map

func arrayDefinition(r *runtime.Realm) Definition {
	return Definition{
		Name:      "Array",
		Length:    1,
		Prototype: r.ArrayPrototype,
		Call: func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
			return arrayConstruct(r, args, nil)
		},
		Construct: arrayConstruct,
		Methods: []Method{
			{Name: "at", Length: 1, Fn: arrayAt},
			{Name: "concat", Length: 1, Fn: arrayConcat},
			{Name: "entries", Fn: arrayEntries},
			{Name: "every", Length: 1, Fn: arrayEvery},
			{Name: "fill", Length: 1, Fn: arrayFill},
			{Name: "filter", Length: 1, Fn: arrayFilter},
			{Name: "find", Length: 1, Fn: arrayFind},
			{Name: "findIndex", Length: 1, Fn: arrayFindIndex},
			{Name: "findLast", Length: 1, Fn: arrayFindLast},
			{Name: "findLastIndex", Length: 1, Fn: arrayFindLastIndex},
			{Name: "flat", Fn: arrayFlat},
			{Name: "flatMap", Length: 1, Fn: arrayFlatMap},
			{Name: "forEach", Length: 1, Fn: arrayForEach},
			{Name: "includes", Length: 1, Fn: arrayIncludes},
			{Name: "indexOf", Length: 1, Fn: arrayIndexOf},
			{Name: "join", Length: 1, Fn: arrayJoin},
			{Name: "keys", Fn: arrayKeys},
			{Name: "lastIndexOf", Length: 1, Fn: arrayLastIndexOf},
			{Name: "map", Length: 1, Fn: arrayMap},
			{Name: "pop", Fn: arrayPop},
			{Name: "push", Length: 1, Fn: arrayPush},
			{Name: "reduce", Length: 1, Fn: arrayReduce},
			{Name: "reduceRight", Length: 1, Fn: arrayReduceRight},
			{Name: "reverse", Fn: arrayReverse},
			{Name: "shift", Fn: arrayShift},
			{Name: "slice", Length: 2, Fn: arraySlice},
			{Name: "some", Length: 1, Fn: arraySome},
			{Name: "sort", Length: 1, Fn: arraySort},
			{Name: "splice", Length: 2, Fn: arraySplice},
			{Name: "toString", Fn: arrayToString},
			{Name: "unshift", Length: 1, Fn: arrayUnshift},
		},
		Statics: []Method{
			{Name: "isArray", Length: 1, Fn: arrayIsArray},
			{Name: "of", Fn: arrayOf},
			{Name: "from", Length: 1, Fn: arrayFrom},
		},
	}
}

// installArray installs Array and makes values and Symbol.iterator the
// same function object.
func installArray(r *runtime.Realm) {
	Install(r, arrayDefinition(r))
	values := setMethod(r, r.ArrayPrototype, Method{Name: "values", Fn: arrayValues})
	r.ArrayPrototype.DefineOwnProperty(runtime.SymKey(runtime.SymIterator),
		runtime.DataDescriptor(runtime.NewObject(values), runtime.AttrHidden))
}

func arrayConstruct(r *runtime.Realm, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
	proto, err := prototypeFrom(newTarget, r.ArrayPrototype)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 && args[0].Type == runtime.TypeNumber {
		n := args[0].Number
		if n < 0 || n > math.MaxUint32 || n != math.Trunc(n) {
			return nil, runtime.NewRangeError("Invalid array length")
		}
		arr := runtime.NewArray(proto, nil)
		arr.DefineOwnProperty(runtime.StrKey("length"), runtime.PropertyDescriptor{Value: args[0], HasValue: true})
		return runtime.NewObject(arr), nil
	}
	return runtime.NewObject(runtime.NewArray(proto, args)), nil
}

// arrayThis is ToObject(this) plus its length, the preamble of every
// generic array method.
func arrayThis(r *runtime.Realm, this *runtime.Value, method string) (*runtime.Object, int, error) {
	obj, err := thisObject(r, this, "Array.prototype."+method)
	if err != nil {
		return nil, 0, err
	}
	n, err := runtime.LengthOf(obj)
	if err != nil {
		return nil, 0, err
	}
	return obj, n, nil
}

func setLength(obj *runtime.Object, n int) error {
	return setProp(obj, runtime.StrKey("length"), runtime.NewNumber(float64(n)))
}

// element reads obj[i], reporting whether the index is present at all.
func element(obj *runtime.Object, i int) (*runtime.Value, bool, error) {
	key := runtime.IndexKey(i)
	has, err := obj.HasProperty(key)
	if err != nil || !has {
		return runtime.Undefined, false, err
	}
	v, err := obj.Get(key)
	return v, true, err
}

func arrayIsArray(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewBool(runtime.IsArray(argAt(args, 0))), nil
}

func arrayOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return r.NewArrayValue(slices.Clone(args)), nil
}

func arrayFrom(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	items, mapArg := argAt(args, 0), argAt(args, 1)
	var mapFn *runtime.Object
	if !mapArg.IsUndefined() {
		if !runtime.IsCallable(mapArg) {
			return nil, runtime.NewTypeError("%s is not a function", runtime.Display(mapArg))
		}
		mapFn = mapArg.Object
	}
	if items.IsNullish() {
		return nil, runtime.NewTypeError("%s is not iterable", runtime.Display(items))
	}
	var out []*runtime.Value
	add := func(v *runtime.Value) error {
		if mapFn != nil {
			var err error
			if v, err = mapFn.Call(argAt(args, 2), []*runtime.Value{v, runtime.NewNumber(float64(len(out)))}); err != nil {
				return err
			}
		}
		out = append(out, v)
		return nil
	}

	iterFn, err := runtime.GetMethod(r, items, runtime.SymKey(runtime.SymIterator))
	if err != nil {
		return nil, err
	}
	if iterFn != nil {
		err = r.Iterate(items, func(v *runtime.Value) (bool, error) {
			return true, add(v)
		})
	} else {
		var list []*runtime.Value
		if list, err = runtime.ListFromArrayLike(runtime.NewObject(mustObject(r, items))); err == nil {
			for _, v := range list {
				if err = add(v); err != nil {
					break
				}
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return r.NewArrayValue(out), nil
}

func mustObject(r *runtime.Realm, v *runtime.Value) *runtime.Object {
	obj, _ := r.ToObject(v)
	return obj
}

func arrayPush(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, "push")
	if err != nil {
		return nil, err
	}
	for _, v := range args {
		if err := setIndex(obj, n, v); err != nil {
			return nil, err
		}
		n++
	}
	if err := setLength(obj, n); err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(n)), nil
}

func arrayPop(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, "pop")
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return runtime.Undefined, setLength(obj, 0)
	}
	v, err := obj.Get(runtime.IndexKey(n - 1))
	if err != nil {
		return nil, err
	}
	if err := deleteProp(obj, runtime.IndexKey(n-1)); err != nil {
		return nil, err
	}
	return v, setLength(obj, n-1)
}

// shiftElements moves [from, n) to start at to, preserving holes.
func shiftElements(obj *runtime.Object, from, to, n int) error {
	move := func(i int) error {
		v, ok, err := element(obj, from+i)
		if err != nil {
			return err
		}
		if ok {
			return setIndex(obj, to+i, v)
		}
		return deleteProp(obj, runtime.IndexKey(to+i))
	}
	count := n - from
	if to < from {
		for i := range count {
			if err := move(i); err != nil {
				return err
			}
		}
		return nil
	}
	for i := count - 1; i >= 0; i-- {
		if err := move(i); err != nil {
			return err
		}
	}
	return nil
}

func arrayShift(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, "shift")
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return runtime.Undefined, setLength(obj, 0)
	}
	first, err := obj.Get(runtime.IndexKey(0))
	if err != nil {
		return nil, err
	}
	if err := shiftElements(obj, 1, 0, n); err != nil {
		return nil, err
	}
	if err := deleteProp(obj, runtime.IndexKey(n-1)); err != nil {
		return nil, err
	}
	return first, setLength(obj, n-1)
}

func arrayUnshift(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, "unshift")
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		if err := shiftElements(obj, 0, len(args), n); err != nil {
			return nil, err
		}
		for i, v := range args {
			if err := setIndex(obj, i, v); err != nil {
				return nil, err
			}
		}
	}
	n += len(args)
	return runtime.NewNumber(float64(n)), setLength(obj, n)
}

func arraySlice(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, "slice")
	if err != nil {
		return nil, err
	}
	start, err := relativeIndex(argAt(args, 0), n, 0)
	if err != nil {
		return nil, err
	}
	end, err := relativeIndex(argAt(args, 1), n, n)
	if err != nil {
		return nil, err
	}
	out := runtime.NewArray(r.ArrayPrototype, nil)
	k := 0
	for i := start; i < end; i++ {
		v, ok, err := element(obj, i)
		if err != nil {
			return nil, err
		}
		if ok {
			out.CreateDataProperty(runtime.IndexKey(k), v)
		}
		k++
	}
	if err := setLength(out, k); err != nil {
		return nil, err
	}
	return runtime.NewObject(out), nil
}

func arraySplice(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, "splice")
	if err != nil {
		return nil, err
	}
	start, err := relativeIndex(argAt(args, 0), n, 0)
	if err != nil {
		return nil, err
	}
	var deleteCount int
	switch {
	case len(args) == 0:
		deleteCount = 0
	case len(args) == 1:
		deleteCount = n - start
	default:
		dc, err := runtime.ToIntegerOrInfinity(args[1])
		if err != nil {
			return nil, err
		}
		deleteCount = int(math.Min(math.Max(dc, 0), float64(n-start)))
	}
	var items []*runtime.Value
	if len(args) > 2 {
		items = args[2:]
	}

	removed := runtime.NewArray(r.ArrayPrototype, nil)
	for i := range deleteCount {
		v, ok, err := element(obj, start+i)
		if err != nil {
			return nil, err
		}
		if ok {
			removed.CreateDataProperty(runtime.IndexKey(i), v)
		}
	}
	if err := setLength(removed, deleteCount); err != nil {
		return nil, err
	}

	if len(items) != deleteCount {
		if err := shiftElements(obj, start+deleteCount, start+len(items), n); err != nil {
			return nil, err
		}
		for i := n - 1; i >= n-deleteCount+len(items); i-- {
			if err := deleteProp(obj, runtime.IndexKey(i)); err != nil {
				return nil, err
			}
		}
	}
	for i, v := range items {
		if err := setIndex(obj, start+i, v); err != nil {
			return nil, err
		}
	}
	if err := setLength(obj, n-deleteCount+len(items)); err != nil {
		return nil, err
	}
	return runtime.NewObject(removed), nil
}

func arrayConcat(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisObject(r, this, "Array.prototype.concat")
	if err != nil {
		return nil, err
	}
	out := runtime.NewArray(r.ArrayPrototype, nil)
	k := 0
	for _, item := range append([]*runtime.Value{runtime.NewObject(obj)}, args...) {
		if !runtime.IsArray(item) {
			out.CreateDataProperty(runtime.IndexKey(k), item)
			k++
			continue
		}
		n, err := runtime.LengthOf(item.Object)
		if err != nil {
			return nil, err
		}
		for i := range n {
			v, ok, err := element(item.Object, i)
			if err != nil {
				return nil, err
			}
			if ok {
				out.CreateDataProperty(runtime.IndexKey(k), v)
			}
			k++
		}
	}
	if err := setLength(out, k); err != nil {
		return nil, err
	}
	return runtime.NewObject(out), nil
}

func arrayJoin(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, "join")
	if err != nil {
		return nil, err
	}
	sep := ","
	if s := argAt(args, 0); !s.IsUndefined() {
		if sep, err = runtime.ToString(s); err != nil {
			return nil, err
		}
	}
	if _, busy := joining.LoadOrStore(obj, struct{}{}); busy {
		return runtime.EmptyStr, nil
	}
	defer joining.Delete(obj)

	var sb strings.Builder
	for i := range n {
		if i > 0 {
			sb.WriteString(sep)
		}
		v, err := obj.Get(runtime.IndexKey(i))
		if err != nil {
			return nil, err
		}
		if v.IsNullish() {
			continue
		}
		s, err := runtime.ToString(v)
		if err != nil {
			return nil, err
		}
		sb.WriteString(s)
	}
	return runtime.NewString(sb.String()), nil
}

func arrayToString(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisObject(r, this, "Array.prototype.toString")
	if err != nil {
		return nil, err
	}
	join, err := obj.Get(runtime.StrKey("join"))
	if err != nil {
		return nil, err
	}
	if !runtime.IsCallable(join) {
		return objectProtoToString(r, runtime.NewObject(obj), nil)
	}
	return join.Object.Call(runtime.NewObject(obj), nil)
}

func arrayReverse(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, "reverse")
	if err != nil {
		return nil, err
	}
	for lo, hi := 0, n-1; lo < hi; lo, hi = lo+1, hi-1 {
		lv, lok, err := element(obj, lo)
		if err != nil {
			return nil, err
		}
		hv, hok, err := element(obj, hi)
		if err != nil {
			return nil, err
		}
		for _, sw := range []struct {
			idx int
			v   *runtime.Value
			ok  bool
		}{{lo, hv, hok}, {hi, lv, lok}} {
			if sw.ok {
				err = setIndex(obj, sw.idx, sw.v)
			} else {
				err = deleteProp(obj, runtime.IndexKey(sw.idx))
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return runtime.NewObject(obj), nil
}

func arrayIndexOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, "indexOf")
	if err != nil {
		return nil, err
	}
	start, err := relativeIndex(argAt(args, 1), n, 0)
	if err != nil {
		return nil, err
	}
	target := argAt(args, 0)
	for i := start; i < n; i++ {
		v, ok, err := element(obj, i)
		if err != nil {
			return nil, err
		}
		if ok && runtime.StrictEquals(v, target) {
			return runtime.NewNumber(float64(i)), nil
		}
	}
	return runtime.NewNumber(-1), nil
}

func arrayLastIndexOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, "lastIndexOf")
	if err != nil {
		return nil, err
	}
	from := n - 1
	if len(args) > 1 {
		f, err := runtime.ToIntegerOrInfinity(args[1])
		if err != nil {
			return nil, err
		}
		if f < 0 {
			f += float64(n)
		}
		from = int(math.Min(f, float64(n-1)))
	}
	target := argAt(args, 0)
	for i := from; i >= 0; i-- {
		v, ok, err := element(obj, i)
		if err != nil {
			return nil, err
		}
		if ok && runtime.StrictEquals(v, target) {
			return runtime.NewNumber(float64(i)), nil
		}
	}
	return runtime.NewNumber(-1), nil
}

func arrayIncludes(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, "includes")
	if err != nil {
		return nil, err
	}
	start, err := relativeIndex(argAt(args, 1), n, 0)
	if err != nil {
		return nil, err
	}
	target := argAt(args, 0)
	for i := start; i < n; i++ {
		v, err := obj.Get(runtime.IndexKey(i))
		if err != nil {
			return nil, err
		}
		if runtime.SameValueZero(v, target) {
			return runtime.True, nil
		}
	}
	return runtime.False, nil
}

func arrayAt(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, "at")
	if err != nil {
		return nil, err
	}
	f, err := runtime.ToIntegerOrInfinity(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	if f < 0 {
		f += float64(n)
	}
	if f < 0 || f >= float64(n) {
		return runtime.Undefined, nil
	}
	return obj.Get(runtime.IndexKey(int(f)))
}

func arrayFill(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, "fill")
	if err != nil {
		return nil, err
	}
	start, err := relativeIndex(argAt(args, 1), n, 0)
	if err != nil {
		return nil, err
	}
	end, err := relativeIndex(argAt(args, 2), n, n)
	if err != nil {
		return nil, err
	}
	for i := start; i < end; i++ {
		if err := setIndex(obj, i, argAt(args, 0)); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(obj), nil
}

// eachElement calls visit for every present index of this in order, with
// the callback and thisArg the iteration methods share. visit returning
// false stops the walk.
func eachElement(r *runtime.Realm, this *runtime.Value, args []*runtime.Value, method string,
	visit func(fn *runtime.Object, i int, v *runtime.Value, res *runtime.Value) (bool, error)) (*runtime.Object, int, error) {
	obj, n, err := arrayThis(r, this, method)
	if err != nil {
		return nil, 0, err
	}
	fn, err := callbackArg(args, 0)
	if err != nil {
		return nil, 0, err
	}
	thisArg := argAt(args, 1)
	for i := range n {
		v, ok, err := element(obj, i)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			continue
		}
		res, err := fn.Call(thisArg, []*runtime.Value{v, runtime.NewNumber(float64(i)), runtime.NewObject(obj)})
		if err != nil {
			return nil, 0, err
		}
		more, err := visit(fn, i, v, res)
		if err != nil {
			return nil, 0, err
		}
		if !more {
			break
		}
	}
	return obj, n, nil
}

func arrayForEach(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	_, _, err := eachElement(r, this, args, "forEach", func(_ *runtime.Object, _ int, _, _ *runtime.Value) (bool, error) {
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return runtime.Undefined, nil
}

func arrayMap(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	out := runtime.NewArray(r.ArrayPrototype, nil)
	_, n, err := eachElement(r, this, args, "map", func(_ *runtime.Object, i int, _, res *runtime.Value) (bool, error) {
		out.CreateDataProperty(runtime.IndexKey(i), res)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if err := setLength(out, n); err != nil {
		return nil, err
	}
	return runtime.NewObject(out), nil
}

func arrayFilter(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	var kept []*runtime.Value
	_, _, err := eachElement(r, this, args, "filter", func(_ *runtime.Object, _ int, v, res *runtime.Value) (bool, error) {
		if res.ToBoolean() {
			kept = append(kept, v)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return r.NewArrayValue(kept), nil
}

func arraySome(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	found := false
	_, _, err := eachElement(r, this, args, "some", func(_ *runtime.Object, _ int, _, res *runtime.Value) (bool, error) {
		found = res.ToBoolean()
		return !found, nil
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(found), nil
}

func arrayEvery(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	all := true
	_, _, err := eachElement(r, this, args, "every", func(_ *runtime.Object, _ int, _, res *runtime.Value) (bool, error) {
		all = res.ToBoolean()
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(all), nil
}

// findElement implements find, findIndex and their Last variants. Unlike
// the other iteration methods they visit holes as undefined.
func findElement(r *runtime.Realm, this *runtime.Value, args []*runtime.Value, method string, reverse bool) (*runtime.Value, int, error) {
	obj, n, err := arrayThis(r, this, method)
	if err != nil {
		return nil, 0, err
	}
	fn, err := callbackArg(args, 0)
	if err != nil {
		return nil, 0, err
	}
	for k := range n {
		i := k
		if reverse {
			i = n - 1 - k
		}
		v, err := obj.Get(runtime.IndexKey(i))
		if err != nil {
			return nil, 0, err
		}
		res, err := fn.Call(argAt(args, 1), []*runtime.Value{v, runtime.NewNumber(float64(i)), runtime.NewObject(obj)})
		if err != nil {
			return nil, 0, err
		}
		if res.ToBoolean() {
			return v, i, nil
		}
	}
	return runtime.Undefined, -1, nil
}

func arrayFind(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	v, _, err := findElement(r, this, args, "find", false)
	return v, err
}

func arrayFindIndex(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	_, i, err := findElement(r, this, args, "findIndex", false)
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(i)), nil
}

func arrayFindLast(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	v, _, err := findElement(r, this, args, "findLast", true)
	return v, err
}

func arrayFindLastIndex(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	_, i, err := findElement(r, this, args, "findLastIndex", true)
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(i)), nil
}

func reduce(r *runtime.Realm, this *runtime.Value, args []*runtime.Value, method string, right bool) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, method)
	if err != nil {
		return nil, err
	}
	fn, err := callbackArg(args, 0)
	if err != nil {
		return nil, err
	}
	index := func(k int) int {
		if right {
			return n - 1 - k
		}
		return k
	}
	k := 0
	var acc *runtime.Value
	if len(args) > 1 {
		acc = args[1]
	} else {
		for ; k < n && acc == nil; k++ {
			v, ok, err := element(obj, index(k))
			if err != nil {
				return nil, err
			}
			if ok {
				acc = v
			}
		}
		if acc == nil {
			return nil, runtime.NewTypeError("Reduce of empty array with no initial value")
		}
	}
	for ; k < n; k++ {
		i := index(k)
		v, ok, err := element(obj, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if acc, err = fn.Call(runtime.Undefined, []*runtime.Value{acc, v, runtime.NewNumber(float64(i)), runtime.NewObject(obj)}); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func arrayReduce(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return reduce(r, this, args, "reduce", false)
}

func arrayReduceRight(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return reduce(r, this, args, "reduceRight", true)
}

// sortCompare orders two defined elements: through the comparator when
// one is given, else by UTF-16 string order.
func sortCompare(cmp *runtime.Object, a, b *runtime.Value) (int, error) {
	if cmp != nil {
		res, err := cmp.Call(runtime.Undefined, []*runtime.Value{a, b})
		if err != nil {
			return 0, err
		}
		f, err := runtime.ToNumber(res)
		switch {
		case err != nil:
			return 0, err
		case f < 0:
			return -1, nil
		case f > 0:
			return 1, nil
		}
		return 0, nil
	}
	as, err := runtime.ToString(a)
	if err != nil {
		return 0, err
	}
	bs, err := runtime.ToString(b)
	if err != nil {
		return 0, err
	}
	return runtime.CompareStrings(as, bs), nil
}

// arraySort is a stable sort. Undefined elements sort after all others
// and holes after those.
func arraySort(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	var cmp *runtime.Object
	if c := argAt(args, 0); !c.IsUndefined() {
		if !runtime.IsCallable(c) {
			return nil, runtime.NewTypeError("The comparison function must be either a function or undefined")
		}
		cmp = c.Object
	}
	obj, n, err := arrayThis(r, this, "sort")
	if err != nil {
		return nil, err
	}
	var vals []*runtime.Value
	undefs := 0
	for i := range n {
		v, ok, err := element(obj, i)
		if err != nil {
			return nil, err
		}
		switch {
		case !ok:
		case v.IsUndefined():
			undefs++
		default:
			vals = append(vals, v)
		}
	}
	var sortErr error
	slices.SortStableFunc(vals, func(a, b *runtime.Value) int {
		if sortErr != nil {
			return 0
		}
		c, err := sortCompare(cmp, a, b)
		if err != nil {
			sortErr = err
		}
		return c
	})
	if sortErr != nil {
		return nil, sortErr
	}
	i := 0
	for _, v := range vals {
		if err := setIndex(obj, i, v); err != nil {
			return nil, err
		}
		i++
	}
	for range undefs {
		if err := setIndex(obj, i, runtime.Undefined); err != nil {
			return nil, err
		}
		i++
	}
	for ; i < n; i++ {
		if err := deleteProp(obj, runtime.IndexKey(i)); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(obj), nil
}

func flatten(r *runtime.Realm, out []*runtime.Value, src *runtime.Object, n int, depth float64) ([]*runtime.Value, error) {
	for i := range n {
		v, ok, err := element(src, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if depth > 0 && runtime.IsArray(v) {
			m, err := runtime.LengthOf(v.Object)
			if err != nil {
				return nil, err
			}
			if out, err = flatten(r, out, v.Object, m, depth-1); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func arrayFlat(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, n, err := arrayThis(r, this, "flat")
	if err != nil {
		return nil, err
	}
	depth := 1.0
	if d := argAt(args, 0); !d.IsUndefined() {
		if depth, err = runtime.ToIntegerOrInfinity(d); err != nil {
			return nil, err
		}
	}
	out, err := flatten(r, nil, obj, n, depth)
	if err != nil {
		return nil, err
	}
	return r.NewArrayValue(out), nil
}

func arrayFlatMap(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	var out []*runtime.Value
	_, _, err := eachElement(r, this, args, "flatMap", func(_ *runtime.Object, _ int, _, res *runtime.Value) (bool, error) {
		if !runtime.IsArray(res) {
			out = append(out, res)
			return true, nil
		}
		m, err := runtime.LengthOf(res.Object)
		if err != nil {
			return false, err
		}
		out, err = flatten(r, out, res.Object, m, 0)
		return true, err
	})
	if err != nil {
		return nil, err
	}
	return r.NewArrayValue(out), nil
}

func arrayKeys(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisObject(r, this, "Array.prototype.keys")
	if err != nil {
		return nil, err
	}
	return arrayIterator(r, obj, iterKeys), nil
}

func arrayValues(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisObject(r, this, "Array.prototype.values")
	if err != nil {
		return nil, err
	}
	return arrayIterator(r, obj, iterValues), nil
}

func arrayEntries(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisObject(r, this, "Array.prototype.entries")
	if err != nil {
		return nil, err
	}
	return arrayIterator(r, obj, iterEntries), nil
}
