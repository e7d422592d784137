package builtins

import (
	"github.com/example/jscore/runtime"
)

// installErrors creates Error and the native error constructors. Each
// subtype constructor inherits from Error, each subtype prototype from
// Error.prototype.
func installErrors(r *runtime.Realm) {
	var base *runtime.Object
	for _, kind := range runtime.ErrorKinds() {
		def := errorDefinition(r, kind)
		ctor := Install(r, def)
		if kind == runtime.KindError {
			base = ctor
			continue
		}
		ctor.SetPrototype(base)
	}
}

func errorDefinition(r *runtime.Realm, kind runtime.ErrorKind) Definition {
	proto := r.ErrorPrototype(kind)
	def := Definition{
		Name:      kind.String(),
		Length:    1,
		Prototype: proto,
		Call: func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
			return newError(r, args, proto)
		},
		Construct: func(r *runtime.Realm, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
			p, err := prototypeFrom(newTarget, proto)
			if err != nil {
				return nil, err
			}
			return newError(r, args, p)
		},
		ProtoData: []Constant{
			{Name: "name", Value: runtime.NewString(kind.String()), Attrs: runtime.AttrHidden},
			{Name: "message", Value: runtime.EmptyStr, Attrs: runtime.AttrHidden},
		},
	}
	if kind == runtime.KindError {
		def.Methods = []Method{{Name: "toString", Fn: errorToString}}
	}
	return def
}

// newError builds an error from (message, options). Without a message
// argument the object has no own message and reads the prototype's.
func newError(r *runtime.Realm, args []*runtime.Value, proto *runtime.Object) (*runtime.Value, error) {
	msg, hasMsg := "", false
	if m := argAt(args, 0); !m.IsUndefined() {
		s, err := runtime.ToString(m)
		if err != nil {
			return nil, err
		}
		msg, hasMsg = s, true
	}
	obj := r.NewErrorWithPrototype(proto, msg, hasMsg)
	if opts := argAt(args, 1); opts.IsObject() {
		has, err := opts.Object.HasProperty(runtime.StrKey("cause"))
		if err != nil {
			return nil, err
		}
		if has {
			cause, err := opts.Object.Get(runtime.StrKey("cause"))
			if err != nil {
				return nil, err
			}
			obj.DefineData("cause", cause, runtime.AttrHidden)
		}
	}
	return runtime.NewObject(obj), nil
}

func errorToString(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if !this.IsObject() {
		return nil, runtime.NewTypeError("Error.prototype.toString requires that 'this' be an Object")
	}
	name, err := stringProp(this.Object, "name", "Error")
	if err != nil {
		return nil, err
	}
	msg, err := stringProp(this.Object, "message", "")
	if err != nil {
		return nil, err
	}
	switch {
	case name == "":
		return runtime.NewString(msg), nil
	case msg == "":
		return runtime.NewString(name), nil
	}
	return runtime.NewString(name + ": " + msg), nil
}

// stringProp reads obj[name] as a string, using dflt when it is undefined.
func stringProp(obj *runtime.Object, name, dflt string) (string, error) {
	v, err := obj.Get(runtime.StrKey(name))
	if err != nil {
		return "", err
	}
	if v.IsUndefined() {
		return dflt, nil
	}
	return runtime.ToString(v)
}
