package builtins

import (
	"github.com/example/jscore/runtime"
)

func booleanDefinition(r *runtime.Realm) Definition {
	return Definition{
		Name:      "Boolean",
		Length:    1,
		Prototype: r.BooleanPrototype,
		Call: func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
			return runtime.NewBool(argAt(args, 0).ToBoolean()), nil
		},
		Construct: func(r *runtime.Realm, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
			proto, err := prototypeFrom(newTarget, r.BooleanPrototype)
			if err != nil {
				return nil, err
			}
			return runtime.NewObject(r.NewWrapper(runtime.NewBool(argAt(args, 0).ToBoolean()), proto)), nil
		},
		Methods: []Method{
			{Name: "toString", Fn: booleanToString},
			{Name: "valueOf", Fn: booleanValueOf},
		},
	}
}

func booleanToString(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	b, err := thisPrimitive(this, runtime.TypeBoolean, "Boolean.prototype.toString")
	if err != nil {
		return nil, err
	}
	if b.Bool {
		return runtime.NewString("true"), nil
	}
	return runtime.NewString("false"), nil
}

func booleanValueOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return thisPrimitive(this, runtime.TypeBoolean, "Boolean.prototype.valueOf")
}
