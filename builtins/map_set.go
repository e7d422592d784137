package builtins

import (
	"math"

	"github.com/example/jscore/runtime"
)

// hashKey normalizes a value under SameValueZero so it can index a Go map.
type hashKey struct {
	t   runtime.ValueType
	num float64
	nan bool
	str string
	obj *runtime.Object
	sym *runtime.Symbol
	b   bool
}

func keyOf(v *runtime.Value) hashKey {
	k := hashKey{t: v.Type}
	switch v.Type {
	case runtime.TypeNumber:
		switch {
		case math.IsNaN(v.Number):
			k.nan = true
		case v.Number == 0:
			k.num = 0
		default:
			k.num = v.Number
		}
	case runtime.TypeString:
		k.str = v.Str
	case runtime.TypeBoolean:
		k.b = v.Bool
	case runtime.TypeObject:
		k.obj = v.Object
	case runtime.TypeSymbol:
		k.sym = v.Symbol
	}
	return k
}

type collectionEntry struct {
	key     *runtime.Value
	value   *runtime.Value
	deleted bool
}

// collection is the insertion-ordered store behind Map and Set. Deleted
// entries stay in place as tombstones so live iterators keep their
// position.
type collection struct {
	entries []*collectionEntry
	index   map[hashKey]*collectionEntry
	size    int
}

func newCollection() *collection {
	return &collection{index: make(map[hashKey]*collectionEntry)}
}

func (c *collection) get(k *runtime.Value) (*collectionEntry, bool) {
	e, ok := c.index[keyOf(k)]
	return e, ok
}

func (c *collection) set(k, v *runtime.Value) {
	if e, ok := c.get(k); ok {
		e.value = v
		return
	}
	if k.Type == runtime.TypeNumber && k.Number == 0 {
		k = runtime.Zero
	}
	e := &collectionEntry{key: k, value: v}
	c.entries = append(c.entries, e)
	c.index[keyOf(k)] = e
	c.size++
}

func (c *collection) remove(k *runtime.Value) bool {
	e, ok := c.get(k)
	if !ok {
		return false
	}
	e.deleted = true
	delete(c.index, keyOf(k))
	c.size--
	return true
}

func (c *collection) clear() {
	for _, e := range c.entries {
		e.deleted = true
	}
	c.index = make(map[hashKey]*collectionEntry)
	c.size = 0
}

// each visits live entries in insertion order, including ones added
// during the walk.
func (c *collection) each(fn func(e *collectionEntry) error) error {
	for i := 0; i < len(c.entries); i++ {
		if e := c.entries[i]; !e.deleted {
			if err := fn(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *collection) iterator(proto *runtime.Object, yield func(e *collectionEntry) *runtime.Value) *runtime.Value {
	i := 0
	return newIterator(proto, func() (*runtime.Value, bool, error) {
		for i < len(c.entries) {
			e := c.entries[i]
			i++
			if !e.deleted {
				return yield(e), true, nil
			}
		}
		return nil, false, nil
	})
}

type mapData struct{ *collection }
type setData struct{ *collection }

func thisMap(this *runtime.Value, method string) (*collection, error) {
	if this.IsObject() {
		if m, ok := this.Object.Internal.(mapData); ok {
			return m.collection, nil
		}
	}
	return nil, runtime.NewTypeError("Method Map.prototype.%s called on incompatible receiver %s", method, runtime.Display(this))
}

func thisSet(this *runtime.Value, method string) (*collection, error) {
	if this.IsObject() {
		if s, ok := this.Object.Internal.(setData); ok {
			return s.collection, nil
		}
	}
	return nil, runtime.NewTypeError("Method Set.prototype.%s called on incompatible receiver %s", method, runtime.Display(this))
}

// installCollections installs Map, Set, WeakMap and WeakSet.
func installCollections(r *runtime.Realm) {
	mapProto := r.NewPlainObject()
	mapIter := newIteratorPrototype(r, "Map Iterator")
	Install(r, mapDefinition(r, mapProto, mapIter))
	aliasMethod(mapProto, "entries", runtime.SymKey(runtime.SymIterator))

	setProto := r.NewPlainObject()
	setIter := newIteratorPrototype(r, "Set Iterator")
	Install(r, setDefinition(r, setProto, setIter))
	aliasMethod(setProto, "values", runtime.StrKey("keys"))
	aliasMethod(setProto, "values", runtime.SymKey(runtime.SymIterator))

	Install(r, weakDefinition(r, "WeakMap", true))
	Install(r, weakDefinition(r, "WeakSet", false))
}

// aliasMethod makes key refer to the same function object as name.
func aliasMethod(proto *runtime.Object, name string, key runtime.PropertyKey) {
	if p, ok := proto.GetOwnProperty(runtime.StrKey(name)); ok {
		proto.DefineOwnProperty(key, runtime.DataDescriptor(p.Value, runtime.AttrHidden))
	}
}

// fillCollection feeds every element of iterable to add, the common
// constructor step of Map and Set.
func fillCollection(r *runtime.Realm, obj *runtime.Object, iterable *runtime.Value, adder string,
	add func(adderFn *runtime.Object, v *runtime.Value) error) error {
	if iterable.IsNullish() {
		return nil
	}
	fn, err := obj.Get(runtime.StrKey(adder))
	if err != nil {
		return err
	}
	if !runtime.IsCallable(fn) {
		return runtime.NewTypeError("'%s' returned for property '%s' of object is not a function", runtime.Display(fn), adder)
	}
	return r.Iterate(iterable, func(v *runtime.Value) (bool, error) {
		return true, add(fn.Object, v)
	})
}

func collectionConstruct(r *runtime.Realm, newTarget *runtime.Object, fallback *runtime.Object, internal any) (*runtime.Object, error) {
	proto, err := prototypeFrom(newTarget, fallback)
	if err != nil {
		return nil, err
	}
	obj := runtime.NewOrdinaryObject(proto)
	obj.Internal = internal
	return obj, nil
}

func requireNew(name string) Native {
	return func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return nil, runtime.NewTypeError("Constructor %s requires 'new'", name)
	}
}

func mapDefinition(r *runtime.Realm, proto, iterProto *runtime.Object) Definition {
	return Definition{
		Name:      "Map",
		Prototype: proto,
		Call:      requireNew("Map"),
		Construct: func(r *runtime.Realm, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
			obj, err := collectionConstruct(r, newTarget, proto, mapData{newCollection()})
			if err != nil {
				return nil, err
			}
			err = fillCollection(r, obj, argAt(args, 0), "set", func(set *runtime.Object, entry *runtime.Value) error {
				if !entry.IsObject() {
					return runtime.NewTypeError("Iterator value %s is not an entry object", runtime.Display(entry))
				}
				k, err := entry.Object.Get(runtime.IndexKey(0))
				if err != nil {
					return err
				}
				v, err := entry.Object.Get(runtime.IndexKey(1))
				if err != nil {
					return err
				}
				_, err = set.Call(runtime.NewObject(obj), []*runtime.Value{k, v})
				return err
			})
			if err != nil {
				return nil, err
			}
			return runtime.NewObject(obj), nil
		},
		Methods: []Method{
			{Name: "clear", Fn: mapClear},
			{Name: "delete", Length: 1, Fn: mapDelete},
			{Name: "entries", Fn: mapIterator(iterProto, "entries")},
			{Name: "forEach", Length: 1, Fn: mapForEach},
			{Name: "get", Length: 1, Fn: mapGet},
			{Name: "has", Length: 1, Fn: mapHas},
			{Name: "keys", Fn: mapIterator(iterProto, "keys")},
			{Name: "set", Length: 2, Fn: mapSet},
			{Name: "values", Fn: mapIterator(iterProto, "values")},
		},
		Accessors: []Accessor{
			{Name: "size", Get: mapSize},
		},
		ProtoData: []Constant{
			{Symbol: runtime.SymToStringTag, Value: runtime.NewString("Map"), Attrs: runtime.Configurable},
		},
		Statics: []Method{
			{Name: "groupBy", Length: 2, Fn: mapGroupBy(proto)},
		},
	}
}

func mapGet(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	c, err := thisMap(this, "get")
	if err != nil {
		return nil, err
	}
	if e, ok := c.get(argAt(args, 0)); ok {
		return e.value, nil
	}
	return runtime.Undefined, nil
}

func mapSet(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	c, err := thisMap(this, "set")
	if err != nil {
		return nil, err
	}
	c.set(argAt(args, 0), argAt(args, 1))
	return this, nil
}

func mapHas(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	c, err := thisMap(this, "has")
	if err != nil {
		return nil, err
	}
	_, ok := c.get(argAt(args, 0))
	return runtime.NewBool(ok), nil
}

func mapDelete(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	c, err := thisMap(this, "delete")
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(c.remove(argAt(args, 0))), nil
}

func mapClear(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	c, err := thisMap(this, "clear")
	if err != nil {
		return nil, err
	}
	c.clear()
	return runtime.Undefined, nil
}

func mapSize(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	c, err := thisMap(this, "size")
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(c.size)), nil
}

func mapForEach(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	c, err := thisMap(this, "forEach")
	if err != nil {
		return nil, err
	}
	fn, err := callbackArg(args, 0)
	if err != nil {
		return nil, err
	}
	err = c.each(func(e *collectionEntry) error {
		_, err := fn.Call(argAt(args, 1), []*runtime.Value{e.value, e.key, this})
		return err
	})
	if err != nil {
		return nil, err
	}
	return runtime.Undefined, nil
}

func mapIterator(proto *runtime.Object, kind string) Native {
	return func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		c, err := thisMap(this, kind)
		if err != nil {
			return nil, err
		}
		return c.iterator(proto, func(e *collectionEntry) *runtime.Value {
			switch kind {
			case "keys":
				return e.key
			case "values":
				return e.value
			}
			return r.NewArrayValue([]*runtime.Value{e.key, e.value})
		}), nil
	}
}

func mapGroupBy(proto *runtime.Object) Native {
	return func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		fn, err := callbackArg(args, 1)
		if err != nil {
			return nil, err
		}
		groups := newCollection()
		k := 0
		err = r.Iterate(argAt(args, 0), func(v *runtime.Value) (bool, error) {
			key, err := fn.Call(runtime.Undefined, []*runtime.Value{v, runtime.NewNumber(float64(k))})
			if err != nil {
				return false, err
			}
			k++
			e, ok := groups.get(key)
			if !ok {
				groups.set(key, r.NewArrayValue(nil))
				e, _ = groups.get(key)
			}
			arr := e.value.Object
			n, err := runtime.LengthOf(arr)
			if err != nil {
				return false, err
			}
			return true, setIndex(arr, n, v)
		})
		if err != nil {
			return nil, err
		}
		obj := runtime.NewOrdinaryObject(proto)
		obj.Internal = mapData{groups}
		return runtime.NewObject(obj), nil
	}
}

func setDefinition(r *runtime.Realm, proto, iterProto *runtime.Object) Definition {
	return Definition{
		Name:      "Set",
		Prototype: proto,
		Call:      requireNew("Set"),
		Construct: func(r *runtime.Realm, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
			obj, err := collectionConstruct(r, newTarget, proto, setData{newCollection()})
			if err != nil {
				return nil, err
			}
			err = fillCollection(r, obj, argAt(args, 0), "add", func(add *runtime.Object, v *runtime.Value) error {
				_, err := add.Call(runtime.NewObject(obj), []*runtime.Value{v})
				return err
			})
			if err != nil {
				return nil, err
			}
			return runtime.NewObject(obj), nil
		},
		Methods: []Method{
			{Name: "add", Length: 1, Fn: setAdd},
			{Name: "clear", Fn: setClear},
			{Name: "delete", Length: 1, Fn: setDelete},
			{Name: "entries", Fn: setIterator(iterProto, true)},
			{Name: "forEach", Length: 1, Fn: setForEach},
			{Name: "has", Length: 1, Fn: setHas},
			{Name: "values", Fn: setIterator(iterProto, false)},
		},
		Accessors: []Accessor{
			{Name: "size", Get: setSize},
		},
		ProtoData: []Constant{
			{Symbol: runtime.SymToStringTag, Value: runtime.NewString("Set"), Attrs: runtime.Configurable},
		},
	}
}

func setAdd(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	c, err := thisSet(this, "add")
	if err != nil {
		return nil, err
	}
	v := argAt(args, 0)
	c.set(v, v)
	return this, nil
}

func setHas(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	c, err := thisSet(this, "has")
	if err != nil {
		return nil, err
	}
	_, ok := c.get(argAt(args, 0))
	return runtime.NewBool(ok), nil
}

func setDelete(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	c, err := thisSet(this, "delete")
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(c.remove(argAt(args, 0))), nil
}

func setClear(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	c, err := thisSet(this, "clear")
	if err != nil {
		return nil, err
	}
	c.clear()
	return runtime.Undefined, nil
}

func setSize(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	c, err := thisSet(this, "size")
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(c.size)), nil
}

func setForEach(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	c, err := thisSet(this, "forEach")
	if err != nil {
		return nil, err
	}
	fn, err := callbackArg(args, 0)
	if err != nil {
		return nil, err
	}
	err = c.each(func(e *collectionEntry) error {
		_, err := fn.Call(argAt(args, 1), []*runtime.Value{e.key, e.key, this})
		return err
	})
	if err != nil {
		return nil, err
	}
	return runtime.Undefined, nil
}

func setIterator(proto *runtime.Object, entries bool) Native {
	return func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		c, err := thisSet(this, "values")
		if err != nil {
			return nil, err
		}
		return c.iterator(proto, func(e *collectionEntry) *runtime.Value {
			if entries {
				return r.NewArrayValue([]*runtime.Value{e.key, e.key})
			}
			return e.key
		}), nil
	}
}

// weakStore backs WeakMap and WeakSet. Keys are held strongly; the
// runtime has no collector hooks to observe reachability.
type weakStore struct {
	isMap bool
	items map[*runtime.Object]*runtime.Value
}

func weakDefinition(r *runtime.Realm, name string, isMap bool) Definition {
	proto := r.NewPlainObject()
	receiver := func(v *runtime.Value, method string) (*weakStore, error) {
		if v.IsObject() {
			if w, ok := v.Object.Internal.(*weakStore); ok && w.isMap == isMap {
				return w, nil
			}
		}
		return nil, runtime.NewTypeError("Method %s.prototype.%s called on incompatible receiver %s", name, method, runtime.Display(v))
	}
	keyArg := func(args []*runtime.Value) (*runtime.Object, bool) {
		k := argAt(args, 0)
		return k.Object, k.IsObject()
	}
	has := func(r *runtime.Realm, v *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		w, err := receiver(v, "has")
		if err != nil {
			return nil, err
		}
		k, ok := keyArg(args)
		if !ok {
			return runtime.False, nil
		}
		_, found := w.items[k]
		return runtime.NewBool(found), nil
	}
	del := func(r *runtime.Realm, v *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		w, err := receiver(v, "delete")
		if err != nil {
			return nil, err
		}
		k, ok := keyArg(args)
		if !ok {
			return runtime.False, nil
		}
		_, found := w.items[k]
		delete(w.items, k)
		return runtime.NewBool(found), nil
	}
	put := func(method string) Native {
		return func(r *runtime.Realm, v *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
			w, err := receiver(v, method)
			if err != nil {
				return nil, err
			}
			k, ok := keyArg(args)
			if !ok {
				return nil, runtime.NewTypeError("Invalid value used in %s", name)
			}
			w.items[k] = argAt(args, 1)
			return v, nil
		}
	}

	def := Definition{
		Name:      name,
		Prototype: proto,
		Call:      requireNew(name),
		Methods: []Method{
			{Name: "delete", Length: 1, Fn: del},
			{Name: "has", Length: 1, Fn: has},
		},
		ProtoData: []Constant{
			{Symbol: runtime.SymToStringTag, Value: runtime.NewString(name), Attrs: runtime.Configurable},
		},
	}
	adder := "add"
	if isMap {
		adder = "set"
		def.Methods = append(def.Methods,
			Method{Name: "get", Length: 1, Fn: func(r *runtime.Realm, v *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
				w, err := receiver(v, "get")
				if err != nil {
					return nil, err
				}
				if k, ok := keyArg(args); ok {
					if val, found := w.items[k]; found {
						return val, nil
					}
				}
				return runtime.Undefined, nil
			}},
			Method{Name: "set", Length: 2, Fn: put("set")})
	} else {
		def.Methods = append(def.Methods, Method{Name: "add", Length: 1, Fn: put("add")})
	}
	def.Construct = func(r *runtime.Realm, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
		obj, err := collectionConstruct(r, newTarget, proto, &weakStore{isMap: isMap, items: make(map[*runtime.Object]*runtime.Value)})
		if err != nil {
			return nil, err
		}
		err = fillCollection(r, obj, argAt(args, 0), adder, func(fn *runtime.Object, v *runtime.Value) error {
			callArgs := []*runtime.Value{v}
			if isMap {
				if !v.IsObject() {
					return runtime.NewTypeError("Iterator value %s is not an entry object", runtime.Display(v))
				}
				k, err := v.Object.Get(runtime.IndexKey(0))
				if err != nil {
					return err
				}
				val, err := v.Object.Get(runtime.IndexKey(1))
				if err != nil {
					return err
				}
				callArgs = []*runtime.Value{k, val}
			}
			_, err := fn.Call(runtime.NewObject(obj), callArgs)
			return err
		})
		if err != nil {
			return nil, err
		}
		return runtime.NewObject(obj), nil
	}
	return def
}
