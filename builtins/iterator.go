package builtins

import (
	"github.com/example/jscore/runtime"
)

// stepper produces the next value of a native iterator; ok is false once
// the sequence is exhausted.
type stepper func() (v *runtime.Value, ok bool, err error)

// nativeIterator is the internal slot of iterator objects created by
// builtins. Once exhausted it stays exhausted.
type nativeIterator struct {
	step stepper
	done bool
}

// installIterators populates %IteratorPrototype% and
// %ArrayIteratorPrototype%.
func installIterators(r *runtime.Realm) {
	setMethod(r, r.IteratorPrototype, Method{Symbol: runtime.SymIterator, Fn: iteratorSelf})
	initIteratorPrototype(r, r.ArrayIteratorPrototype, "Array Iterator")
}

// newIteratorPrototype creates a prototype for a family of native
// iterators such as "String Iterator".
func newIteratorPrototype(r *runtime.Realm, tag string) *runtime.Object {
	proto := runtime.NewOrdinaryObject(r.IteratorPrototype)
	initIteratorPrototype(r, proto, tag)
	return proto
}

func initIteratorPrototype(r *runtime.Realm, proto *runtime.Object, tag string) {
	setMethod(r, proto, Method{Name: "next", Fn: iteratorNext})
	proto.DefineOwnProperty(runtime.SymKey(runtime.SymToStringTag),
		runtime.DataDescriptor(runtime.NewString(tag), runtime.Configurable))
}

func newIterator(proto *runtime.Object, step stepper) *runtime.Value {
	it := runtime.NewObjectOfClass(runtime.ClassIterator, proto)
	it.Internal = &nativeIterator{step: step}
	return runtime.NewObject(it)
}

func iteratorSelf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return this, nil
}

func iteratorNext(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	var it *nativeIterator
	if this.IsObject() {
		it, _ = this.Object.Internal.(*nativeIterator)
	}
	if it == nil {
		return nil, runtime.NewTypeError("next method called on incompatible receiver %s", runtime.Display(this))
	}
	if it.done {
		return r.IterResult(runtime.Undefined, true), nil
	}
	v, ok, err := it.step()
	if err != nil {
		return nil, err
	}
	if !ok {
		it.done = true
		return r.IterResult(runtime.Undefined, true), nil
	}
	return r.IterResult(v, false), nil
}

// arrayIteratorKind selects what an array iterator yields.
type arrayIteratorKind int

const (
	iterValues arrayIteratorKind = iota
	iterKeys
	iterEntries
)

// arrayIterator walks any array-like by index, re-reading length on
// every step so growth during iteration is observed.
func arrayIterator(r *runtime.Realm, obj *runtime.Object, kind arrayIteratorKind) *runtime.Value {
	i := 0
	return newIterator(r.ArrayIteratorPrototype, func() (*runtime.Value, bool, error) {
		n, err := runtime.LengthOf(obj)
		if err != nil {
			return nil, false, err
		}
		if i >= n {
			return nil, false, nil
		}
		idx := i
		i++
		key := runtime.NewNumber(float64(idx))
		if kind == iterKeys {
			return key, true, nil
		}
		v, err := obj.Get(runtime.IndexKey(idx))
		if err != nil {
			return nil, false, err
		}
		if kind == iterEntries {
			return r.NewArrayValue([]*runtime.Value{key, v}), true, nil
		}
		return v, true, nil
	})
}
