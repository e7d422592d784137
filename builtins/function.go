package builtins

import (
	"fmt"

	"github.com/example/jscore/runtime"
)

// boundFunction is the internal slot of a function made by bind.
type boundFunction struct {
	target *runtime.Object
	this   *runtime.Value
	args   []*runtime.Value
}

func (b *boundFunction) Target() *runtime.Object { return b.target }

func functionDefinition(r *runtime.Realm) Definition {
	return Definition{
		Name:      "Function",
		Length:    1,
		Prototype: r.FunctionPrototype,
		Call: func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
			return functionConstruct(r, args, nil)
		},
		Construct: functionConstruct,
		Methods: []Method{
			{Name: "call", Length: 1, Fn: functionCall},
			{Name: "apply", Length: 2, Fn: functionApply},
			{Name: "bind", Length: 1, Fn: functionBind},
			{Name: "toString", Fn: functionToString},
		},
		ProtoData: []Constant{
			{Name: "length", Value: runtime.Zero, Attrs: runtime.Configurable},
			{Name: "name", Value: runtime.EmptyStr, Attrs: runtime.Configurable},
		},
	}
}

// installFunction finishes Function.prototype once the constructor
// exists: Symbol.hasInstance is neither writable nor configurable.
func installFunction(r *runtime.Realm) {
	Install(r, functionDefinition(r))
	fn := r.NewNativeFunction("[Symbol.hasInstance]", 1, Native(functionHasInstance).bind(r))
	r.FunctionPrototype.DefineOwnProperty(runtime.SymKey(runtime.SymHasInstance),
		runtime.DataDescriptor(runtime.NewObject(fn), runtime.AttrNone))
}

// functionConstruct compiles new Function(p1, ..., body) through the
// evaluator hook. The result is always a sloppy global-scope function.
func functionConstruct(r *runtime.Realm, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
	if r.CompileFunction == nil {
		return nil, runtime.NewEvalError("Code generation from strings is not available")
	}
	var params []string
	body := ""
	for i, a := range args {
		s, err := runtime.ToString(a)
		if err != nil {
			return nil, err
		}
		if i == len(args)-1 {
			body = s
		} else {
			params = append(params, s)
		}
	}
	return r.CompileFunction(params, body)
}

func thisFunction(this *runtime.Value, method string) (*runtime.Object, error) {
	if !runtime.IsCallable(this) {
		return nil, runtime.NewTypeError("Function.prototype.%s called on non-function %s", method, runtime.Display(this))
	}
	return this.Object, nil
}

func functionCall(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	fn, err := thisFunction(this, "call")
	if err != nil {
		return nil, err
	}
	var rest []*runtime.Value
	if len(args) > 1 {
		rest = args[1:]
	}
	return fn.Call(argAt(args, 0), rest)
}

func functionApply(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	fn, err := thisFunction(this, "apply")
	if err != nil {
		return nil, err
	}
	list, err := runtime.ListFromArrayLike(argAt(args, 1))
	if err != nil {
		return nil, err
	}
	return fn.Call(argAt(args, 0), list)
}

func functionBind(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	target, err := thisFunction(this, "bind")
	if err != nil {
		return nil, err
	}
	b := &boundFunction{target: target, this: argAt(args, 0)}
	if len(args) > 1 {
		b.args = append(b.args, args[1:]...)
	}

	length := 0.0
	if has := target.HasOwnProperty(runtime.StrKey("length")); has {
		l, err := target.Get(runtime.StrKey("length"))
		if err != nil {
			return nil, err
		}
		if l.Type == runtime.TypeNumber {
			length = max(0, runtime.IntegerOrInfinity(l.Number)-float64(len(b.args)))
		}
	}
	name, err := target.Get(runtime.StrKey("name"))
	if err != nil {
		return nil, err
	}
	nameStr := ""
	if name.Type == runtime.TypeString {
		nameStr = name.Str
	}

	obj := runtime.NewObjectOfClass(runtime.ClassFunction, target.GetPrototype())
	obj.Internal = b
	obj.Callable = func(_ *runtime.Value, callArgs []*runtime.Value) (*runtime.Value, error) {
		return target.Call(b.this, b.withArgs(callArgs))
	}
	if target.IsConstructor() {
		obj.Constructor = func(callArgs []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
			if newTarget == obj {
				newTarget = target
			}
			return target.Construct(b.withArgs(callArgs), newTarget)
		}
	}
	obj.DefineData("length", runtime.NewNumber(length), runtime.Configurable)
	obj.DefineData("name", runtime.NewString("bound "+nameStr), runtime.Configurable)
	return runtime.NewObject(obj), nil
}

func (b *boundFunction) withArgs(args []*runtime.Value) []*runtime.Value {
	if len(b.args) == 0 {
		return args
	}
	all := make([]*runtime.Value, 0, len(b.args)+len(args))
	return append(append(all, b.args...), args...)
}

func functionToString(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if !runtime.IsCallable(this) {
		return nil, runtime.NewTypeError("Function.prototype.toString requires that 'this' be a Function")
	}
	if src, ok := this.Object.Internal.(interface{ SourceText() string }); ok && src.SourceText() != "" {
		return runtime.NewString(src.SourceText()), nil
	}
	name := ""
	if p, ok := this.Object.GetOwnProperty(runtime.StrKey("name")); ok && !p.IsAccessor && p.Value.Type == runtime.TypeString {
		name = p.Value.Str
	}
	return runtime.NewString(fmt.Sprintf("function %s() { [native code] }", name)), nil
}

func functionHasInstance(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	ok, err := runtime.OrdinaryHasInstance(this, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(ok), nil
}
