package builtins

import (
	"math"

	"github.com/example/jscore/runtime"
)

func argAt(args []*runtime.Value, i int) *runtime.Value {
	if i < len(args) && args[i] != nil {
		return args[i]
	}
	return runtime.Undefined
}

// prototypeFrom reads newTarget.prototype, falling back to the intrinsic
// when there is no new target or it has no object prototype.
func prototypeFrom(newTarget, fallback *runtime.Object) (*runtime.Object, error) {
	if newTarget == nil {
		return fallback, nil
	}
	v, err := newTarget.Get(runtime.StrKey("prototype"))
	if err != nil {
		return nil, err
	}
	if v.IsObject() {
		return v.Object, nil
	}
	return fallback, nil
}

// thisObject is ToObject(this) with the method name in the error.
func thisObject(r *runtime.Realm, this *runtime.Value, method string) (*runtime.Object, error) {
	if this.IsNullish() {
		return nil, runtime.NewTypeError("%s called on null or undefined", method)
	}
	return r.ToObject(this)
}

// thisPrimitive unwraps this when it is a primitive of type t or a
// wrapper around one.
func thisPrimitive(this *runtime.Value, t runtime.ValueType, method string) (*runtime.Value, error) {
	if this.Type == t {
		return this, nil
	}
	if this.IsObject() && this.Object.Primitive != nil && this.Object.Primitive.Type == t {
		return this.Object.Primitive, nil
	}
	return nil, runtime.NewTypeError("%s requires that 'this' be a %s", method, typeName(t))
}

func typeName(t runtime.ValueType) string {
	switch t {
	case runtime.TypeBoolean:
		return "Boolean"
	case runtime.TypeNumber:
		return "Number"
	case runtime.TypeString:
		return "String"
	case runtime.TypeSymbol:
		return "Symbol"
	}
	return "Object"
}

// thisString is RequireObjectCoercible(this) followed by ToString.
func thisString(this *runtime.Value, method string) (string, error) {
	if this.IsNullish() {
		return "", runtime.NewTypeError("String.prototype.%s called on null or undefined", method)
	}
	return runtime.ToString(this)
}

// callbackArg returns args[i] as a function or fails the way array
// methods do.
func callbackArg(args []*runtime.Value, i int) (*runtime.Object, error) {
	fn := argAt(args, i)
	if !runtime.IsCallable(fn) {
		return nil, runtime.NewTypeError("%s is not a function", runtime.Display(fn))
	}
	return fn.Object, nil
}

// relativeIndex resolves a possibly negative position argument against
// length n, clamped to [0, n].
func relativeIndex(v *runtime.Value, n, dflt int) (int, error) {
	if v.IsUndefined() {
		return dflt, nil
	}
	f, err := runtime.ToIntegerOrInfinity(v)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return int(math.Max(0, float64(n)+f)), nil
	}
	return int(math.Min(f, float64(n))), nil
}

func setIndex(obj *runtime.Object, i int, v *runtime.Value) error {
	return setProp(obj, runtime.IndexKey(i), v)
}

// setProp is Set(obj, key, v, true): failure throws.
func setProp(obj *runtime.Object, key runtime.PropertyKey, v *runtime.Value) error {
	ok, err := obj.Set(key, v, runtime.NewObject(obj))
	if err != nil {
		return err
	}
	if !ok {
		return runtime.NewTypeError("Cannot assign to read only property '%s' of object", key.String())
	}
	return nil
}

func deleteProp(obj *runtime.Object, key runtime.PropertyKey) error {
	if !obj.Delete(key) {
		return runtime.NewTypeError("Cannot delete property '%s' of %s", key.String(), runtime.Display(runtime.NewObject(obj)))
	}
	return nil
}

func stringList(r *runtime.Realm, strs []string) *runtime.Value {
	vals := make([]*runtime.Value, len(strs))
	for i, s := range strs {
		vals[i] = runtime.NewString(s)
	}
	return r.NewArrayValue(vals)
}
