package builtins

import (
	"github.com/example/jscore/runtime"
)

func objectDefinition(r *runtime.Realm) Definition {
	return Definition{
		Name:      "Object",
		Length:    1,
		Prototype: r.ObjectPrototype,
		Call: func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
			return objectConstruct(r, args, nil)
		},
		Construct: objectConstruct,
		Methods: []Method{
			{Name: "hasOwnProperty", Length: 1, Fn: objectProtoHasOwnProperty},
			{Name: "isPrototypeOf", Length: 1, Fn: objectProtoIsPrototypeOf},
			{Name: "propertyIsEnumerable", Length: 1, Fn: objectProtoPropertyIsEnumerable},
			{Name: "toString", Fn: objectProtoToString},
			{Name: "toLocaleString", Fn: objectProtoToLocaleString},
			{Name: "valueOf", Fn: objectProtoValueOf},
		},
		Accessors: []Accessor{
			{Name: "__proto__", Get: objectProtoGetProto, Set: objectProtoSetProto},
		},
		Statics: []Method{
			{Name: "keys", Length: 1, Fn: objectKeys},
			{Name: "values", Length: 1, Fn: objectValues},
			{Name: "entries", Length: 1, Fn: objectEntries},
			{Name: "fromEntries", Length: 1, Fn: objectFromEntries},
			{Name: "assign", Length: 2, Fn: objectAssign},
			{Name: "create", Length: 2, Fn: objectCreate},
			{Name: "defineProperty", Length: 3, Fn: objectDefineProperty},
			{Name: "defineProperties", Length: 2, Fn: objectDefineProperties},
			{Name: "getOwnPropertyDescriptor", Length: 2, Fn: objectGetOwnPropertyDescriptor},
			{Name: "getOwnPropertyDescriptors", Length: 1, Fn: objectGetOwnPropertyDescriptors},
			{Name: "getOwnPropertyNames", Length: 1, Fn: objectGetOwnPropertyNames},
			{Name: "getOwnPropertySymbols", Length: 1, Fn: objectGetOwnPropertySymbols},
			{Name: "getPrototypeOf", Length: 1, Fn: objectGetPrototypeOf},
			{Name: "setPrototypeOf", Length: 2, Fn: objectSetPrototypeOf},
			{Name: "hasOwn", Length: 2, Fn: objectHasOwn},
			{Name: "freeze", Length: 1, Fn: objectFreeze},
			{Name: "isFrozen", Length: 1, Fn: objectIsFrozen},
			{Name: "seal", Length: 1, Fn: objectSeal},
			{Name: "isSealed", Length: 1, Fn: objectIsSealed},
			{Name: "preventExtensions", Length: 1, Fn: objectPreventExtensions},
			{Name: "isExtensible", Length: 1, Fn: objectIsExtensible},
			{Name: "is", Length: 2, Fn: objectIs},
		},
	}
}

func objectConstruct(r *runtime.Realm, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
	proto, err := prototypeFrom(newTarget, r.ObjectPrototype)
	if err != nil {
		return nil, err
	}
	if proto != r.ObjectPrototype {
		return runtime.NewObject(runtime.NewOrdinaryObject(proto)), nil
	}
	v := argAt(args, 0)
	if v.IsNullish() {
		return runtime.NewObject(r.NewPlainObject()), nil
	}
	obj, err := r.ToObject(v)
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(obj), nil
}

// objectArg is ToObject(args[0]) for the static helpers.
func objectArg(r *runtime.Realm, args []*runtime.Value) (*runtime.Object, error) {
	return r.ToObject(argAt(args, 0))
}

func objectProtoHasOwnProperty(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	key, err := runtime.ToPropertyKey(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	obj, err := thisObject(r, this, "Object.prototype.hasOwnProperty")
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(obj.HasOwnProperty(key)), nil
}

func objectProtoIsPrototypeOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	v := argAt(args, 0)
	if !v.IsObject() {
		return runtime.False, nil
	}
	obj, err := thisObject(r, this, "Object.prototype.isPrototypeOf")
	if err != nil {
		return nil, err
	}
	depth := 0
	for p := v.Object.GetPrototype(); p != nil; p = p.GetPrototype() {
		if depth++; depth > runtime.MaxPrototypeDepth {
			return nil, runtime.Fatal(runtime.ErrPrototypeDepth, "in isPrototypeOf")
		}
		if p == obj {
			return runtime.True, nil
		}
	}
	return runtime.False, nil
}

func objectProtoPropertyIsEnumerable(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	key, err := runtime.ToPropertyKey(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	obj, err := thisObject(r, this, "Object.prototype.propertyIsEnumerable")
	if err != nil {
		return nil, err
	}
	p, ok := obj.GetOwnProperty(key)
	return runtime.NewBool(ok && p.Enumerable), nil
}

// builtinTag is the tag Object.prototype.toString uses before consulting
// Symbol.toStringTag.
func builtinTag(obj *runtime.Object) string {
	switch obj.Class {
	case runtime.ClassArray, runtime.ClassFunction, runtime.ClassError, runtime.ClassBoolean,
		runtime.ClassNumber, runtime.ClassString, runtime.ClassRegExp, runtime.ClassArguments:
		return obj.Class.String()
	}
	if obj.IsCallable() {
		return "Function"
	}
	return "Object"
}

func objectProtoToString(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	switch {
	case this.IsUndefined():
		return runtime.NewString("[object Undefined]"), nil
	case this.Type == runtime.TypeNull:
		return runtime.NewString("[object Null]"), nil
	}
	obj, err := r.ToObject(this)
	if err != nil {
		return nil, err
	}
	tag := builtinTag(obj)
	t, err := obj.Get(runtime.SymKey(runtime.SymToStringTag))
	if err != nil {
		return nil, err
	}
	if t.Type == runtime.TypeString {
		tag = t.Str
	}
	return runtime.NewString("[object " + tag + "]"), nil
}

func objectProtoToLocaleString(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	fn, err := runtime.GetMethod(r, this, runtime.StrKey("toString"))
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, runtime.NewTypeError("toString is not a function")
	}
	return fn.Call(this, nil)
}

func objectProtoValueOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisObject(r, this, "Object.prototype.valueOf")
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(obj), nil
}

func objectProtoGetProto(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisObject(r, this, "Object.prototype.__proto__")
	if err != nil {
		return nil, err
	}
	return protoValue(obj), nil
}

func objectProtoSetProto(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if this.IsNullish() {
		return nil, runtime.NewTypeError("Object.prototype.__proto__ called on null or undefined")
	}
	proto := argAt(args, 0)
	if !this.IsObject() || (!proto.IsObject() && proto.Type != runtime.TypeNull) {
		return runtime.Undefined, nil
	}
	if !this.Object.SetPrototype(proto.Object) {
		return nil, runtime.NewTypeError("Cyclic __proto__ value")
	}
	return runtime.Undefined, nil
}

func protoValue(obj *runtime.Object) *runtime.Value {
	if p := obj.GetPrototype(); p != nil {
		return runtime.NewObject(p)
	}
	return runtime.Null
}

// enumerableOwn visits the enumerable own string keys of obj in order.
func enumerableOwn(obj *runtime.Object, fn func(key runtime.PropertyKey) error) error {
	for key := range obj.OwnKeys() {
		if key.IsSymbol() {
			continue
		}
		p, ok := obj.GetOwnProperty(key)
		if !ok || !p.Enumerable {
			continue
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	return nil
}

func objectKeys(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := objectArg(r, args)
	if err != nil {
		return nil, err
	}
	var out []*runtime.Value
	err = enumerableOwn(obj, func(key runtime.PropertyKey) error {
		out = append(out, key.ToValue())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.NewArrayValue(out), nil
}

func objectValues(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := objectArg(r, args)
	if err != nil {
		return nil, err
	}
	var out []*runtime.Value
	err = enumerableOwn(obj, func(key runtime.PropertyKey) error {
		v, err := obj.Get(key)
		out = append(out, v)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.NewArrayValue(out), nil
}

func objectEntries(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := objectArg(r, args)
	if err != nil {
		return nil, err
	}
	var out []*runtime.Value
	err = enumerableOwn(obj, func(key runtime.PropertyKey) error {
		v, err := obj.Get(key)
		out = append(out, r.NewArrayValue([]*runtime.Value{key.ToValue(), v}))
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.NewArrayValue(out), nil
}

func objectFromEntries(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj := r.NewPlainObject()
	err := r.Iterate(argAt(args, 0), func(entry *runtime.Value) (bool, error) {
		if !entry.IsObject() {
			return false, runtime.NewTypeError("Iterator value %s is not an entry object", runtime.Display(entry))
		}
		k, err := entry.Object.Get(runtime.IndexKey(0))
		if err != nil {
			return false, err
		}
		v, err := entry.Object.Get(runtime.IndexKey(1))
		if err != nil {
			return false, err
		}
		key, err := runtime.ToPropertyKey(k)
		if err != nil {
			return false, err
		}
		obj.CreateDataProperty(key, v)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(obj), nil
}

func objectAssign(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	target, err := objectArg(r, args)
	if err != nil {
		return nil, err
	}
	for _, src := range args[1:] {
		if src.IsNullish() {
			continue
		}
		from, err := r.ToObject(src)
		if err != nil {
			return nil, err
		}
		for key := range from.OwnKeys() {
			p, ok := from.GetOwnProperty(key)
			if !ok || !p.Enumerable {
				continue
			}
			v, err := from.Get(key)
			if err != nil {
				return nil, err
			}
			if err := setProp(target, key, v); err != nil {
				return nil, err
			}
		}
	}
	return runtime.NewObject(target), nil
}

func objectCreate(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	proto := argAt(args, 0)
	if !proto.IsObject() && proto.Type != runtime.TypeNull {
		return nil, runtime.NewTypeError("Object prototype may only be an Object or null: %s", runtime.Display(proto))
	}
	obj := runtime.NewOrdinaryObject(proto.Object)
	if props := argAt(args, 1); !props.IsUndefined() {
		if err := defineProperties(r, obj, props); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(obj), nil
}

// toPropertyDescriptor converts a descriptor object into its partial form.
func toPropertyDescriptor(v *runtime.Value) (runtime.PropertyDescriptor, error) {
	var desc runtime.PropertyDescriptor
	if !v.IsObject() {
		return desc, runtime.NewTypeError("Property description must be an object: %s", runtime.Display(v))
	}
	obj := v.Object
	field := func(name string) (*runtime.Value, bool, error) {
		key := runtime.StrKey(name)
		has, err := obj.HasProperty(key)
		if err != nil || !has {
			return nil, false, err
		}
		val, err := obj.Get(key)
		return val, true, err
	}

	if val, ok, err := field("enumerable"); err != nil {
		return desc, err
	} else if ok {
		desc.Enumerable, desc.HasEnumerable = val.ToBoolean(), true
	}
	if val, ok, err := field("configurable"); err != nil {
		return desc, err
	} else if ok {
		desc.Configurable, desc.HasConfigurable = val.ToBoolean(), true
	}
	if val, ok, err := field("value"); err != nil {
		return desc, err
	} else if ok {
		desc.Value, desc.HasValue = val, true
	}
	if val, ok, err := field("writable"); err != nil {
		return desc, err
	} else if ok {
		desc.Writable, desc.HasWritable = val.ToBoolean(), true
	}
	if val, ok, err := field("get"); err != nil {
		return desc, err
	} else if ok {
		if !val.IsUndefined() && !runtime.IsCallable(val) {
			return desc, runtime.NewTypeError("Getter must be a function: %s", runtime.Display(val))
		}
		desc.Get, desc.HasGet = val.Object, true
	}
	if val, ok, err := field("set"); err != nil {
		return desc, err
	} else if ok {
		if !val.IsUndefined() && !runtime.IsCallable(val) {
			return desc, runtime.NewTypeError("Setter must be a function: %s", runtime.Display(val))
		}
		desc.Set, desc.HasSet = val.Object, true
	}
	if desc.IsAccessor() && desc.IsData() {
		return desc, runtime.NewTypeError("Invalid property descriptor. Cannot both specify accessors and a value or writable attribute")
	}
	return desc, nil
}

// fromProperty builds the descriptor object getOwnPropertyDescriptor
// returns.
func fromProperty(r *runtime.Realm, p *runtime.Property) *runtime.Value {
	obj := r.NewPlainObject()
	if p.IsAccessor {
		obj.CreateDataProperty(runtime.StrKey("get"), functionOrUndefined(p.Getter))
		obj.CreateDataProperty(runtime.StrKey("set"), functionOrUndefined(p.Setter))
	} else {
		obj.CreateDataProperty(runtime.StrKey("value"), p.Value)
		obj.CreateDataProperty(runtime.StrKey("writable"), runtime.NewBool(p.Writable))
	}
	obj.CreateDataProperty(runtime.StrKey("enumerable"), runtime.NewBool(p.Enumerable))
	obj.CreateDataProperty(runtime.StrKey("configurable"), runtime.NewBool(p.Configurable))
	return runtime.NewObject(obj)
}

func functionOrUndefined(fn *runtime.Object) *runtime.Value {
	if fn == nil {
		return runtime.Undefined
	}
	return runtime.NewObject(fn)
}

func objectDefineProperty(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	target := argAt(args, 0)
	if !target.IsObject() {
		return nil, runtime.NewTypeError("Object.defineProperty called on non-object")
	}
	key, err := runtime.ToPropertyKey(argAt(args, 1))
	if err != nil {
		return nil, err
	}
	desc, err := toPropertyDescriptor(argAt(args, 2))
	if err != nil {
		return nil, err
	}
	if err := target.Object.DefinePropertyOrThrow(key, desc); err != nil {
		return nil, err
	}
	return target, nil
}

func objectDefineProperties(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	target := argAt(args, 0)
	if !target.IsObject() {
		return nil, runtime.NewTypeError("Object.defineProperties called on non-object")
	}
	if err := defineProperties(r, target.Object, argAt(args, 1)); err != nil {
		return nil, err
	}
	return target, nil
}

// defineProperties reads every descriptor before applying any.
func defineProperties(r *runtime.Realm, obj *runtime.Object, props *runtime.Value) error {
	src, err := r.ToObject(props)
	if err != nil {
		return err
	}
	type pending struct {
		key  runtime.PropertyKey
		desc runtime.PropertyDescriptor
	}
	var list []pending
	for key := range src.OwnKeys() {
		p, ok := src.GetOwnProperty(key)
		if !ok || !p.Enumerable {
			continue
		}
		v, err := src.Get(key)
		if err != nil {
			return err
		}
		desc, err := toPropertyDescriptor(v)
		if err != nil {
			return err
		}
		list = append(list, pending{key, desc})
	}
	for _, p := range list {
		if err := obj.DefinePropertyOrThrow(p.key, p.desc); err != nil {
			return err
		}
	}
	return nil
}

func objectGetOwnPropertyDescriptor(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := objectArg(r, args)
	if err != nil {
		return nil, err
	}
	key, err := runtime.ToPropertyKey(argAt(args, 1))
	if err != nil {
		return nil, err
	}
	p, ok := obj.GetOwnProperty(key)
	if !ok {
		return runtime.Undefined, nil
	}
	return fromProperty(r, p), nil
}

func objectGetOwnPropertyDescriptors(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := objectArg(r, args)
	if err != nil {
		return nil, err
	}
	out := r.NewPlainObject()
	for key := range obj.OwnKeys() {
		if p, ok := obj.GetOwnProperty(key); ok {
			out.CreateDataProperty(key, fromProperty(r, p))
		}
	}
	return runtime.NewObject(out), nil
}

func ownKeysOf(r *runtime.Realm, args []*runtime.Value, symbols bool) (*runtime.Value, error) {
	obj, err := objectArg(r, args)
	if err != nil {
		return nil, err
	}
	var out []*runtime.Value
	for key := range obj.OwnKeys() {
		if key.IsSymbol() == symbols {
			out = append(out, key.ToValue())
		}
	}
	return r.NewArrayValue(out), nil
}

func objectGetOwnPropertyNames(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return ownKeysOf(r, args, false)
}

func objectGetOwnPropertySymbols(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return ownKeysOf(r, args, true)
}

func objectGetPrototypeOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := objectArg(r, args)
	if err != nil {
		return nil, err
	}
	return protoValue(obj), nil
}

func objectSetPrototypeOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	target, proto := argAt(args, 0), argAt(args, 1)
	if target.IsNullish() {
		return nil, runtime.NewTypeError("Object.setPrototypeOf called on null or undefined")
	}
	if !proto.IsObject() && proto.Type != runtime.TypeNull {
		return nil, runtime.NewTypeError("Object prototype may only be an Object or null: %s", runtime.Display(proto))
	}
	if !target.IsObject() {
		return target, nil
	}
	if !target.Object.SetPrototype(proto.Object) {
		if !target.Object.IsExtensible() {
			return nil, runtime.NewTypeError("%s is not extensible", runtime.Display(target))
		}
		return nil, runtime.NewTypeError("Cyclic __proto__ value")
	}
	return target, nil
}

func objectHasOwn(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := objectArg(r, args)
	if err != nil {
		return nil, err
	}
	key, err := runtime.ToPropertyKey(argAt(args, 1))
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(obj.HasOwnProperty(key)), nil
}

func objectFreeze(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	v := argAt(args, 0)
	if v.IsObject() {
		v.Object.Freeze()
	}
	return v, nil
}

func objectIsFrozen(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	v := argAt(args, 0)
	return runtime.NewBool(!v.IsObject() || v.Object.IsFrozen()), nil
}

func objectSeal(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	v := argAt(args, 0)
	if !v.IsObject() {
		return v, nil
	}
	v.Object.PreventExtensions()
	for key := range v.Object.OwnKeys() {
		v.Object.DefineOwnProperty(key, runtime.PropertyDescriptor{HasConfigurable: true})
	}
	return v, nil
}

func objectIsSealed(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	v := argAt(args, 0)
	if !v.IsObject() {
		return runtime.True, nil
	}
	if v.Object.IsExtensible() {
		return runtime.False, nil
	}
	for key := range v.Object.OwnKeys() {
		if p, ok := v.Object.GetOwnProperty(key); ok && p.Configurable {
			return runtime.False, nil
		}
	}
	return runtime.True, nil
}

func objectPreventExtensions(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	v := argAt(args, 0)
	if v.IsObject() {
		v.Object.PreventExtensions()
	}
	return v, nil
}

func objectIsExtensible(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	v := argAt(args, 0)
	return runtime.NewBool(v.IsObject() && v.Object.IsExtensible()), nil
}

func objectIs(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewBool(runtime.SameValue(argAt(args, 0), argAt(args, 1))), nil
}
