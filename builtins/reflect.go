package builtins

import (
	"github.com/example/jscore/runtime"
)

func reflectDefinition() Definition {
	return Definition{
		Name: "Reflect",
		Statics: []Method{
			{Name: "apply", Length: 3, Fn: reflectApply},
			{Name: "construct", Length: 2, Fn: reflectConstruct},
			{Name: "defineProperty", Length: 3, Fn: reflectDefineProperty},
			{Name: "deleteProperty", Length: 2, Fn: reflectDeleteProperty},
			{Name: "get", Length: 2, Fn: reflectGet},
			{Name: "getOwnPropertyDescriptor", Length: 2, Fn: reflectGetOwnPropertyDescriptor},
			{Name: "getPrototypeOf", Length: 1, Fn: reflectGetPrototypeOf},
			{Name: "has", Length: 2, Fn: reflectHas},
			{Name: "isExtensible", Length: 1, Fn: reflectIsExtensible},
			{Name: "ownKeys", Length: 1, Fn: reflectOwnKeys},
			{Name: "preventExtensions", Length: 1, Fn: reflectPreventExtensions},
			{Name: "set", Length: 3, Fn: reflectSet},
			{Name: "setPrototypeOf", Length: 2, Fn: reflectSetPrototypeOf},
		},
	}
}

// reflectTarget requires the first argument to be an object; Reflect never
// coerces its target.
func reflectTarget(args []*runtime.Value, method string) (*runtime.Object, error) {
	t := argAt(args, 0)
	if !t.IsObject() {
		return nil, runtime.NewTypeError("Reflect.%s called on non-object", method)
	}
	return t.Object, nil
}

func reflectKey(args []*runtime.Value, method string) (*runtime.Object, runtime.PropertyKey, error) {
	obj, err := reflectTarget(args, method)
	if err != nil {
		return nil, runtime.PropertyKey{}, err
	}
	key, err := runtime.ToPropertyKey(argAt(args, 1))
	return obj, key, err
}

func reflectApply(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	fn := argAt(args, 0)
	if !runtime.IsCallable(fn) {
		return nil, runtime.NewTypeError("%s is not a function", runtime.Display(fn))
	}
	list, err := runtime.ListFromArrayLike(argAt(args, 2))
	if err != nil {
		return nil, err
	}
	return fn.Object.Call(argAt(args, 1), list)
}

func reflectConstruct(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	target := argAt(args, 0)
	if !runtime.IsConstructor(target) {
		return nil, runtime.NewTypeError("%s is not a constructor", runtime.Display(target))
	}
	newTarget := target
	if len(args) > 2 {
		newTarget = args[2]
		if !runtime.IsConstructor(newTarget) {
			return nil, runtime.NewTypeError("%s is not a constructor", runtime.Display(newTarget))
		}
	}
	list, err := runtime.ListFromArrayLike(argAt(args, 1))
	if err != nil {
		return nil, err
	}
	return target.Object.Construct(list, newTarget.Object)
}

func reflectDefineProperty(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, key, err := reflectKey(args, "defineProperty")
	if err != nil {
		return nil, err
	}
	desc, err := toPropertyDescriptor(argAt(args, 2))
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(obj.DefineOwnProperty(key, desc)), nil
}

func reflectDeleteProperty(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, key, err := reflectKey(args, "deleteProperty")
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(obj.Delete(key)), nil
}

func reflectGet(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, key, err := reflectKey(args, "get")
	if err != nil {
		return nil, err
	}
	receiver := runtime.NewObject(obj)
	if len(args) > 2 {
		receiver = args[2]
	}
	return obj.GetWithReceiver(key, receiver)
}

func reflectSet(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, key, err := reflectKey(args, "set")
	if err != nil {
		return nil, err
	}
	receiver := runtime.NewObject(obj)
	if len(args) > 3 {
		receiver = args[3]
	}
	ok, err := obj.Set(key, argAt(args, 2), receiver)
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(ok), nil
}

func reflectHas(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, key, err := reflectKey(args, "has")
	if err != nil {
		return nil, err
	}
	ok, err := obj.HasProperty(key)
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(ok), nil
}

func reflectGetOwnPropertyDescriptor(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, key, err := reflectKey(args, "getOwnPropertyDescriptor")
	if err != nil {
		return nil, err
	}
	p, ok := obj.GetOwnProperty(key)
	if !ok {
		return runtime.Undefined, nil
	}
	return fromProperty(r, p), nil
}

func reflectGetPrototypeOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := reflectTarget(args, "getPrototypeOf")
	if err != nil {
		return nil, err
	}
	return protoValue(obj), nil
}

func reflectSetPrototypeOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := reflectTarget(args, "setPrototypeOf")
	if err != nil {
		return nil, err
	}
	proto := argAt(args, 1)
	switch {
	case proto.Type == runtime.TypeNull:
		return runtime.NewBool(obj.SetPrototype(nil)), nil
	case proto.IsObject():
		return runtime.NewBool(obj.SetPrototype(proto.Object)), nil
	}
	return nil, runtime.NewTypeError("Object prototype may only be an Object or null: %s", runtime.Display(proto))
}

func reflectIsExtensible(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := reflectTarget(args, "isExtensible")
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(obj.IsExtensible()), nil
}

func reflectPreventExtensions(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := reflectTarget(args, "preventExtensions")
	if err != nil {
		return nil, err
	}
	obj.PreventExtensions()
	return runtime.True, nil
}

func reflectOwnKeys(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := reflectTarget(args, "ownKeys")
	if err != nil {
		return nil, err
	}
	var keys []*runtime.Value
	for key := range obj.OwnKeys() {
		keys = append(keys, key.ToValue())
	}
	return r.NewArrayValue(keys), nil
}
