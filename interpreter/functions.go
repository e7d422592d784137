package interpreter

import (
	"slices"

	"github.com/dop251/goja/ast"

	"github.com/example/jscore/runtime"
)

// function is the Internal slot of script-defined function objects.
type function struct {
	name   string
	params *ast.ParameterList
	body   []ast.Statement
	expr   ast.Expression // concise arrow body
	decls  []*ast.VariableDeclaration
	env    runtime.Environment
	strict bool
	arrow  bool
	home   *runtime.Object
	source string
	class  *classInfo
}

// classInfo is present on class constructors.
type classInfo struct {
	derived bool
	// implicit is set when the class body has no constructor method.
	implicit bool
	fields   []field
	env      runtime.Environment
	proto    *runtime.Object
}

// field is an instance field: its key is computed once, when the class is
// defined, and its initializer runs for every instance.
type field struct {
	key  runtime.PropertyKey
	init ast.Expression
}

func (f *function) IsClassConstructor() bool { return f.class != nil }

// SourceText is the function's source as written.
func (f *function) SourceText() string { return f.source }

// newFunctionObject creates the callable object for f. Constructors are
// added separately by makeConstructor.
func (interp *Interpreter) newFunctionObject(f *function) *runtime.Object {
	obj := runtime.NewObjectOfClass(runtime.ClassFunction, interp.realm.FunctionPrototype)
	obj.Internal = f
	obj.Callable = func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return interp.call(f, obj, this, args)
	}
	obj.DefineData("length", runtime.NewNumber(float64(expectedArgs(f.params))), runtime.Configurable)
	obj.DefineData("name", runtime.NewString(f.name), runtime.Configurable)
	return obj
}

// makeConstructor gives obj a [[Construct]] behavior and links it with
// proto through the prototype and constructor properties.
func (interp *Interpreter) makeConstructor(obj *runtime.Object, f *function, proto *runtime.Object, writable bool) {
	obj.Constructor = func(args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
		return interp.construct(f, obj, args, newTarget)
	}
	proto.DefineData("constructor", runtime.NewObject(obj), runtime.AttrHidden)
	attrs := runtime.AttrNone
	if writable {
		attrs = runtime.Writable
	}
	obj.DefineData("prototype", runtime.NewObject(proto), attrs)
}

// makeFunction creates an ordinary function from a declaration or
// expression.
func (interp *Interpreter) makeFunction(lit *ast.FunctionLiteral, env runtime.Environment, strict bool, name string) (*runtime.Object, error) {
	if lit.Async || lit.Generator {
		return nil, unsupported("async and generator functions")
	}
	f := &function{
		name:   name,
		params: lit.ParameterList,
		body:   lit.Body.List,
		decls:  lit.DeclarationList,
		env:    env,
		strict: strict || hasUseStrict(lit.Body.List),
		source: lit.Source,
	}
	obj := interp.newFunctionObject(f)
	interp.makeConstructor(obj, f, interp.realm.NewPlainObject(), true)
	return obj, nil
}

// makeMethod creates a method, getter or setter. Methods are not
// constructors and resolve super through home.
func (interp *Interpreter) makeMethod(lit *ast.FunctionLiteral, env runtime.Environment, home *runtime.Object, name string) (*runtime.Object, error) {
	if lit.Async || lit.Generator {
		return nil, unsupported("async and generator methods")
	}
	f := &function{
		name:   name,
		params: lit.ParameterList,
		body:   lit.Body.List,
		decls:  lit.DeclarationList,
		env:    env,
		strict: interp.strict() || hasUseStrict(lit.Body.List),
		home:   home,
		source: lit.Source,
	}
	return interp.newFunctionObject(f), nil
}

func (interp *Interpreter) evalFunction(lit *ast.FunctionLiteral, env runtime.Environment, name string) (*runtime.Value, error) {
	if lit.Name == nil {
		fn, err := interp.makeFunction(lit, env, interp.strict(), name)
		if err != nil {
			return nil, err
		}
		return runtime.NewObject(fn), nil
	}
	// A named function expression sees its own name in a scope of its own.
	own := lit.Name.Name.String()
	scope := runtime.NewDeclarativeEnv(env)
	fn, err := interp.makeFunction(lit, scope, interp.strict(), own)
	if err != nil {
		return nil, err
	}
	v := runtime.NewObject(fn)
	scope.CreateBinding(own, runtime.BindSelf, v)
	return v, nil
}

func (interp *Interpreter) evalArrow(lit *ast.ArrowFunctionLiteral, env runtime.Environment, name string) (*runtime.Value, error) {
	if lit.Async {
		return nil, unsupported("async arrow functions")
	}
	f := &function{
		name:   name,
		params: lit.ParameterList,
		decls:  lit.DeclarationList,
		env:    env,
		strict: interp.strict(),
		arrow:  true,
		source: lit.Source,
	}
	switch body := lit.Body.(type) {
	case *ast.BlockStatement:
		f.body = body.List
		f.strict = f.strict || hasUseStrict(body.List)
	case *ast.ExpressionBody:
		f.expr = body.Expression
	}
	return runtime.NewObject(interp.newFunctionObject(f)), nil
}

func (interp *Interpreter) call(f *function, callee *runtime.Object, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if f.class != nil {
		return nil, runtime.NewTypeError("Class constructor %s cannot be invoked without 'new'", f.name)
	}
	if this == nil {
		this = runtime.Undefined
	}
	v, _, err := interp.invoke(f, callee, this, args, nil)
	return v, err
}

// invoke runs f's body in a fresh environment. A nil this leaves the this
// binding uninitialized (derived constructors before super()).
func (interp *Interpreter) invoke(f *function, callee *runtime.Object, this *runtime.Value, args []*runtime.Value, newTarget *runtime.Value) (*runtime.Value, *runtime.FunctionEnv, error) {
	if interp.depth >= interp.cfg.MaxCallDepth {
		interp.log.Warn("call depth limit reached", "limit", interp.cfg.MaxCallDepth, "function", f.name)
		return nil, nil, runtime.Fatal(runtime.ErrStackOverflow, "depth limit %d", interp.cfg.MaxCallDepth)
	}
	interp.depth++
	saved := interp.frame
	defer func() {
		interp.depth--
		interp.frame = saved
	}()

	var env runtime.Environment
	var fenv *runtime.FunctionEnv
	if f.arrow {
		env = runtime.NewDeclarativeEnv(f.env)
	} else {
		fenv = runtime.NewFunctionEnv(f.env, callee, interp.bindThis(f, this), newTarget)
		fenv.HomeObject = f.home
		env = fenv
	}
	interp.frame = &frame{strict: f.strict, varEnv: env}

	if err := interp.bindParameters(f, env, args); err != nil {
		return nil, fenv, err
	}
	if err := interp.declareFunctionBody(f, env); err != nil {
		return nil, fenv, err
	}
	if f.expr != nil {
		v, err := interp.eval(f.expr, env)
		return v, fenv, err
	}
	sig, err := interp.execList(f.body, env)
	if err != nil {
		return nil, fenv, err
	}
	if sig.typ == sigReturn && sig.value != nil {
		return sig.value, fenv, nil
	}
	return runtime.Undefined, fenv, nil
}

// bindThis computes the this value a call sees. Sloppy functions replace
// nullish receivers with the global object and box primitives.
func (interp *Interpreter) bindThis(f *function, this *runtime.Value) *runtime.Value {
	if this == nil || f.strict {
		return this
	}
	if this.IsNullish() {
		return runtime.NewObject(interp.realm.GlobalObject)
	}
	if this.IsPrimitive() {
		obj, err := interp.realm.ToObject(this)
		if err == nil {
			return runtime.NewObject(obj)
		}
	}
	return this
}

func (interp *Interpreter) bindParameters(f *function, env runtime.Environment, args []*runtime.Value) error {
	names := paramNames(f.params)
	for _, name := range names {
		env.CreateBinding(name, runtime.BindParam, runtime.Undefined)
	}
	if !f.arrow && !slices.Contains(names, "arguments") {
		env.CreateBinding("arguments", runtime.BindVar, interp.argumentsObject(args))
	}
	if f.params == nil {
		return nil
	}
	for i, p := range f.params.List {
		v := runtime.Undefined
		if i < len(args) {
			v = args[i]
		}
		if v.IsUndefined() && p.Initializer != nil {
			var err error
			if v, err = interp.evalNamed(p.Initializer, env, targetName(p.Target)); err != nil {
				return err
			}
		}
		if err := interp.bindTarget(p.Target, v, env, bindInit); err != nil {
			return err
		}
	}
	if f.params.Rest != nil {
		var rest []*runtime.Value
		if len(args) > len(f.params.List) {
			rest = args[len(f.params.List):]
		}
		return interp.bindTarget(f.params.Rest, interp.realm.NewArrayValue(rest), env, bindInit)
	}
	return nil
}

// argumentsObject builds an unmapped arguments object.
func (interp *Interpreter) argumentsObject(args []*runtime.Value) *runtime.Value {
	obj := runtime.NewObjectOfClass(runtime.ClassArguments, interp.realm.ObjectPrototype)
	for i, a := range args {
		obj.CreateDataProperty(runtime.IndexKey(i), a)
	}
	obj.DefineData("length", runtime.NewNumber(float64(len(args))), runtime.AttrHidden)
	if values, err := interp.realm.ArrayPrototype.Get(runtime.StrKey("values")); err == nil && runtime.IsCallable(values) {
		obj.DefineOwnProperty(runtime.SymKey(runtime.SymIterator), runtime.DataDescriptor(values, runtime.AttrHidden))
	}
	return runtime.NewObject(obj)
}

func paramNames(params *ast.ParameterList) []string {
	if params == nil {
		return nil
	}
	var names []string
	for _, p := range params.List {
		names = append(names, boundNames(p.Target)...)
	}
	if params.Rest != nil {
		names = append(names, boundNames(params.Rest)...)
	}
	return names
}

// expectedArgs is the function's length: parameters before the first
// default or rest.
func expectedArgs(params *ast.ParameterList) int {
	if params == nil {
		return 0
	}
	n := 0
	for _, p := range params.List {
		if p.Initializer != nil {
			break
		}
		n++
	}
	return n
}

func (interp *Interpreter) construct(f *function, callee *runtime.Object, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
	var this *runtime.Value
	if f.class == nil || !f.class.derived {
		proto, err := prototypeFor(newTarget, interp.realm.ObjectPrototype)
		if err != nil {
			return nil, err
		}
		obj := runtime.NewOrdinaryObject(proto)
		this = runtime.NewObject(obj)
		if f.class != nil {
			if err := interp.initFields(f.class, obj); err != nil {
				return nil, err
			}
		}
	}
	if f.class != nil && f.class.implicit {
		if f.class.derived {
			return interp.superConstruct(f, callee, args, newTarget)
		}
		return this, nil
	}

	result, fenv, err := interp.invoke(f, callee, this, args, runtime.NewObject(newTarget))
	if err != nil {
		return nil, err
	}
	if result.IsObject() {
		return result, nil
	}
	if f.class != nil && f.class.derived && !result.IsUndefined() {
		return nil, runtime.NewTypeError("Derived constructors may only return object or undefined")
	}
	return fenv.This()
}

// prototypeFor reads newTarget.prototype, falling back when it is not an
// object.
func prototypeFor(newTarget *runtime.Object, fallback *runtime.Object) (*runtime.Object, error) {
	v, err := newTarget.Get(runtime.StrKey("prototype"))
	if err != nil {
		return nil, err
	}
	if v.IsObject() {
		return v.Object, nil
	}
	return fallback, nil
}

// superConstruct is the implicit constructor of a derived class: it
// forwards all arguments to the parent.
func (interp *Interpreter) superConstruct(f *function, callee *runtime.Object, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
	parent := callee.GetPrototype()
	if !parent.IsConstructor() {
		return nil, runtime.NewTypeError("Super constructor %s of anonymous class is not a constructor", describeObject(parent))
	}
	result, err := parent.Construct(args, newTarget)
	if err != nil {
		return nil, err
	}
	if err := interp.initFields(f.class, result.Object); err != nil {
		return nil, err
	}
	return result, nil
}

func (interp *Interpreter) evalSuperCall(argList []ast.Expression, env runtime.Environment) (*runtime.Value, error) {
	fenv, ok := runtime.ThisEnvironment(env).(*runtime.FunctionEnv)
	if !ok || fenv.Function == nil {
		return nil, runtime.NewSyntaxError("'super' keyword unexpected here")
	}
	f, _ := fenv.Function.Internal.(*function)
	if f == nil || f.class == nil || !f.class.derived {
		return nil, runtime.NewSyntaxError("'super' keyword unexpected here")
	}
	parent := fenv.Function.GetPrototype()
	if !parent.IsConstructor() {
		return nil, runtime.NewTypeError("Super constructor %s of anonymous class is not a constructor", describeObject(parent))
	}
	args, err := interp.evalArgs(argList, env)
	if err != nil {
		return nil, err
	}
	result, err := parent.Construct(args, fenv.NewTarget.Object)
	if err != nil {
		return nil, err
	}
	if err := fenv.BindThis(result); err != nil {
		return nil, err
	}
	if err := interp.initFields(f.class, result.Object); err != nil {
		return nil, err
	}
	return result, nil
}

// initFields defines the instance fields on a freshly constructed object,
// in declaration order.
func (interp *Interpreter) initFields(c *classInfo, obj *runtime.Object) error {
	if len(c.fields) == 0 {
		return nil
	}
	saved := interp.frame
	defer func() { interp.frame = saved }()
	for _, fd := range c.fields {
		v := runtime.Undefined
		if fd.init != nil {
			fenv := runtime.NewFunctionEnv(c.env, nil, runtime.NewObject(obj), runtime.Undefined)
			fenv.HomeObject = c.proto
			interp.frame = &frame{strict: true, varEnv: fenv}
			var err error
			if v, err = interp.evalNamed(fd.init, fenv, functionName(fd.key)); err != nil {
				return err
			}
		}
		if err := obj.DefinePropertyOrThrow(fd.key, runtime.DataDescriptor(v, runtime.AttrDefault)); err != nil {
			return err
		}
	}
	return nil
}

// staticElement is a static field or static block, run in order once the
// class binding is initialized.
type staticElement struct {
	key   runtime.PropertyKey
	init  ast.Expression
	block *ast.ClassStaticBlock
}

func (interp *Interpreter) evalClass(c *ast.ClassLiteral, env runtime.Environment, name string) (*runtime.Value, error) {
	if c.Name != nil {
		name = c.Name.Name.String()
	}
	classEnv := runtime.NewDeclarativeEnv(env)
	if c.Name != nil {
		classEnv.CreateBinding(name, runtime.BindConst, nil)
	}
	saved := interp.frame
	interp.frame = &frame{strict: true, varEnv: saved.varEnv}
	defer func() { interp.frame = saved }()

	protoParent := interp.realm.ObjectPrototype
	ctorParent := interp.realm.FunctionPrototype
	derived := c.SuperClass != nil
	if derived {
		sv, err := interp.eval(c.SuperClass, classEnv)
		if err != nil {
			return nil, err
		}
		switch {
		case sv.Type == runtime.TypeNull:
			protoParent = nil
		case !runtime.IsConstructor(sv):
			return nil, runtime.NewTypeError("Class extends value %s is not a constructor or null", runtime.Inspect(sv))
		default:
			pp, err := sv.Object.Get(runtime.StrKey("prototype"))
			if err != nil {
				return nil, err
			}
			switch {
			case pp.Type == runtime.TypeNull:
				protoParent = nil
			case pp.IsObject():
				protoParent = pp.Object
			default:
				return nil, runtime.NewTypeError("Class extends value does not have valid prototype property %s", runtime.Inspect(pp))
			}
			ctorParent = sv.Object
		}
	}

	proto := runtime.NewOrdinaryObject(protoParent)
	info := &classInfo{derived: derived, env: classEnv, proto: proto}
	f := &function{name: name, env: classEnv, strict: true, home: proto, source: c.Source, class: info}
	var ctorLit *ast.FunctionLiteral
	for _, el := range c.Body {
		if m, ok := el.(*ast.MethodDefinition); ok && !m.Static && !m.Computed && isConstructorKey(m.Key) {
			ctorLit = m.Body
		}
	}
	if ctorLit == nil {
		info.implicit = true
	} else {
		f.params, f.body, f.decls = ctorLit.ParameterList, ctorLit.Body.List, ctorLit.DeclarationList
	}
	ctor := interp.newFunctionObject(f)
	ctor.SetPrototype(ctorParent)
	interp.makeConstructor(ctor, f, proto, false)

	var statics []staticElement
	for _, el := range c.Body {
		switch e := el.(type) {
		case *ast.MethodDefinition:
			if e.Body == ctorLit {
				continue
			}
			target := proto
			if e.Static {
				target = ctor
			}
			key, err := interp.propertyKey(e.Key, e.Computed, classEnv)
			if err != nil {
				return nil, err
			}
			if err := interp.defineMethod(target, key, e.Kind, e.Body, classEnv, false); err != nil {
				return nil, err
			}
		case *ast.FieldDefinition:
			key, err := interp.propertyKey(e.Key, e.Computed, classEnv)
			if err != nil {
				return nil, err
			}
			if e.Static {
				statics = append(statics, staticElement{key: key, init: e.Initializer})
			} else {
				info.fields = append(info.fields, field{key: key, init: e.Initializer})
			}
		case *ast.ClassStaticBlock:
			statics = append(statics, staticElement{block: e})
		}
	}

	ctorVal := runtime.NewObject(ctor)
	if c.Name != nil {
		classEnv.InitializeBinding(name, ctorVal)
	}
	for _, s := range statics {
		if err := interp.runStatic(s, ctor, classEnv); err != nil {
			return nil, err
		}
	}
	return ctorVal, nil
}

func (interp *Interpreter) runStatic(s staticElement, ctor *runtime.Object, classEnv runtime.Environment) error {
	fenv := runtime.NewFunctionEnv(classEnv, nil, runtime.NewObject(ctor), runtime.Undefined)
	fenv.HomeObject = ctor
	interp.frame = &frame{strict: true, varEnv: fenv}
	if s.block != nil {
		f := &function{body: s.block.Block.List, decls: s.block.DeclarationList, strict: true}
		if err := interp.declareFunctionBody(f, fenv); err != nil {
			return err
		}
		_, err := interp.execList(f.body, fenv)
		return err
	}
	v := runtime.Undefined
	if s.init != nil {
		var err error
		if v, err = interp.evalNamed(s.init, fenv, functionName(s.key)); err != nil {
			return err
		}
	}
	return ctor.DefinePropertyOrThrow(s.key, runtime.DataDescriptor(v, runtime.AttrDefault))
}

// defineMethod installs a method or accessor from an object literal or
// class body. Class members are non-enumerable.
func (interp *Interpreter) defineMethod(target *runtime.Object, key runtime.PropertyKey, kind ast.PropertyKind, lit *ast.FunctionLiteral, env runtime.Environment, enumerable bool) error {
	name := functionName(key)
	desc := runtime.PropertyDescriptor{
		Enumerable:      enumerable,
		Configurable:    true,
		HasEnumerable:   true,
		HasConfigurable: true,
	}
	switch kind {
	case ast.PropertyKindGet:
		fn, err := interp.makeMethod(lit, env, target, "get "+name)
		if err != nil {
			return err
		}
		desc.Get, desc.HasGet = fn, true
	case ast.PropertyKindSet:
		fn, err := interp.makeMethod(lit, env, target, "set "+name)
		if err != nil {
			return err
		}
		desc.Set, desc.HasSet = fn, true
	default:
		fn, err := interp.makeMethod(lit, env, target, name)
		if err != nil {
			return err
		}
		desc.Value, desc.HasValue = runtime.NewObject(fn), true
		desc.Writable, desc.HasWritable = true, true
	}
	return target.DefinePropertyOrThrow(key, desc)
}

// functionName derives a function's name from the property key it is
// stored under.
func functionName(key runtime.PropertyKey) string {
	if !key.IsSymbol() {
		return key.Name()
	}
	if sym := key.Symbol(); sym.HasDescription {
		return "[" + sym.Description + "]"
	}
	return ""
}

func isConstructorKey(key ast.Expression) bool {
	switch k := key.(type) {
	case *ast.StringLiteral:
		return k.Value.String() == "constructor"
	case *ast.Identifier:
		return k.Name.String() == "constructor"
	}
	return false
}

func describeObject(o *runtime.Object) string {
	if o == nil {
		return "null"
	}
	return runtime.Inspect(runtime.NewObject(o))
}
