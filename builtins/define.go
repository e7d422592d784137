package builtins

import (
	"github.com/example/jscore/runtime"
)

// Native is the Go shape of a builtin function. The realm is passed
// explicitly so the same function value can serve any number of realms.
type Native func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error)

// NativeConstruct implements [[Construct]] for a builtin constructor.
type NativeConstruct func(r *runtime.Realm, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error)

// Method is a function-valued property. Symbol, when set, replaces Name
// as the key.
type Method struct {
	Name   string
	Symbol *runtime.Symbol
	Length int
	Fn     Native
}

// Accessor is a getter/setter pair; either half may be nil.
type Accessor struct {
	Name   string
	Symbol *runtime.Symbol
	Get    Native
	Set    Native
}

// Constant is a data property with explicit attributes.
type Constant struct {
	Name   string
	Symbol *runtime.Symbol
	Value  *runtime.Value
	Attrs  runtime.Attr
}

// Definition describes one global builtin. With Call set it installs a
// function (a constructor when Construct is also set); without Call it
// installs a namespace object such as Math.
type Definition struct {
	Name   string
	Length int
	// Prototype becomes the constructor's prototype property. Methods,
	// Accessors and ProtoData are installed on it.
	Prototype *runtime.Object
	Call      Native
	Construct NativeConstruct

	Methods   []Method
	Accessors []Accessor
	ProtoData []Constant

	// Statics and Constants go on the constructor or namespace object.
	Statics   []Method
	Constants []Constant
}

// Install builds def in realm r, binds it as a global and returns the
// constructor or namespace object.
func Install(r *runtime.Realm, def Definition) *runtime.Object {
	var obj *runtime.Object
	if def.Call == nil {
		obj = r.NewPlainObject()
		obj.DefineOwnProperty(runtime.SymKey(runtime.SymToStringTag),
			runtime.DataDescriptor(runtime.NewString(def.Name), runtime.Configurable))
	} else {
		obj = r.NewNativeFunction(def.Name, def.Length, def.Call.bind(r))
		if def.Construct != nil {
			obj.Constructor = def.Construct.bind(r)
		}
	}
	if def.Prototype != nil {
		obj.DefineData("prototype", runtime.NewObject(def.Prototype), runtime.AttrNone)
		if def.Call != nil {
			def.Prototype.DefineData("constructor", runtime.NewObject(obj), runtime.AttrHidden)
		}
		setMethods(r, def.Prototype, def.Methods)
		setAccessors(r, def.Prototype, def.Accessors)
		setConstants(def.Prototype, def.ProtoData)
	}
	setMethods(r, obj, def.Statics)
	setConstants(obj, def.Constants)
	r.GlobalObject.DefineData(def.Name, runtime.NewObject(obj), runtime.AttrHidden)
	return obj
}

func (fn Native) bind(r *runtime.Realm) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return fn(r, this, args)
	}
}

func (fn NativeConstruct) bind(r *runtime.Realm) runtime.ConstructFunc {
	return func(args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
		return fn(r, args, newTarget)
	}
}

func propertyKey(name string, sym *runtime.Symbol) runtime.PropertyKey {
	if sym != nil {
		return runtime.SymKey(sym)
	}
	return runtime.StrKey(name)
}

// functionName is the name property a method keyed by name or sym gets.
func functionName(name string, sym *runtime.Symbol) string {
	if sym != nil {
		return "[" + sym.Description + "]"
	}
	return name
}

func setMethods(r *runtime.Realm, obj *runtime.Object, methods []Method) {
	for _, m := range methods {
		setMethod(r, obj, m)
	}
}

func setMethod(r *runtime.Realm, obj *runtime.Object, m Method) *runtime.Object {
	fn := r.NewNativeFunction(functionName(m.Name, m.Symbol), m.Length, m.Fn.bind(r))
	obj.DefineOwnProperty(propertyKey(m.Name, m.Symbol), runtime.DataDescriptor(runtime.NewObject(fn), runtime.AttrHidden))
	return fn
}

func setAccessors(r *runtime.Realm, obj *runtime.Object, accessors []Accessor) {
	for _, a := range accessors {
		name := functionName(a.Name, a.Symbol)
		var get, set *runtime.Object
		if a.Get != nil {
			get = r.NewNativeFunction("get "+name, 0, a.Get.bind(r))
		}
		if a.Set != nil {
			set = r.NewNativeFunction("set "+name, 1, a.Set.bind(r))
		}
		obj.DefineOwnProperty(propertyKey(a.Name, a.Symbol), runtime.AccessorDescriptor(get, set, runtime.Configurable))
	}
}

func setConstants(obj *runtime.Object, constants []Constant) {
	for _, c := range constants {
		obj.DefineOwnProperty(propertyKey(c.Name, c.Symbol), runtime.DataDescriptor(c.Value, c.Attrs))
	}
}
