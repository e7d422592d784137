package runtime

// BindingKind records how a binding was declared.
type BindingKind int

const (
	BindVar BindingKind = iota
	BindLet
	BindConst
	BindClass
	BindFunction
	BindParam
	BindCatch
	// BindSelf is the immutable name of a named function expression.
	// Writes to it fail silently outside strict code.
	BindSelf
)

func (k BindingKind) String() string {
	switch k {
	case BindLet:
		return "let"
	case BindConst:
		return "const"
	case BindClass:
		return "class"
	case BindFunction:
		return "function"
	case BindParam:
		return "param"
	case BindCatch:
		return "catch"
	case BindSelf:
		return "self"
	default:
		return "var"
	}
}

// Lexical reports whether the kind is block scoped with a dead zone.
func (k BindingKind) Lexical() bool {
	return k == BindLet || k == BindConst || k == BindClass
}

type Binding struct {
	Value       *Value
	Kind        BindingKind
	Initialized bool
}

// Environment is a scope record. HasBinding looks at the record only;
// walking the chain is the evaluator's job.
type Environment interface {
	HasBinding(name string) bool
	// CreateBinding inserts or silently replaces a binding. A nil value
	// leaves the binding uninitialized.
	CreateBinding(name string, kind BindingKind, v *Value)
	InitializeBinding(name string, v *Value)
	GetBinding(name string) Reference
	GetBindingValue(name string) (*Value, error)
	SetMutableBinding(name string, v *Value, strict bool) error
	Outer() Environment
}

// DeclarativeEnv is a scope record backed by its own binding map.
type DeclarativeEnv struct {
	bindings map[string]*Binding
	outer    Environment
}

func NewDeclarativeEnv(outer Environment) *DeclarativeEnv {
	return &DeclarativeEnv{bindings: make(map[string]*Binding), outer: outer}
}

func (e *DeclarativeEnv) Outer() Environment { return e.outer }

func (e *DeclarativeEnv) HasBinding(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

// Lookup returns the binding record itself.
func (e *DeclarativeEnv) Lookup(name string) (*Binding, bool) {
	b, ok := e.bindings[name]
	return b, ok
}

func (e *DeclarativeEnv) CreateBinding(name string, kind BindingKind, v *Value) {
	e.bindings[name] = &Binding{Value: v, Kind: kind, Initialized: v != nil}
}

func (e *DeclarativeEnv) InitializeBinding(name string, v *Value) {
	b, ok := e.bindings[name]
	if !ok {
		e.CreateBinding(name, BindVar, v)
		return
	}
	b.Value = v
	b.Initialized = true
}

func (e *DeclarativeEnv) GetBinding(name string) Reference {
	return Reference{env: e, name: name}
}

func (e *DeclarativeEnv) GetBindingValue(name string) (*Value, error) {
	b, ok := e.bindings[name]
	if !ok {
		return nil, NewReferenceError("%s is not defined", name)
	}
	if !b.Initialized {
		return nil, NewReferenceError("Cannot access '%s' before initialization", name)
	}
	return b.Value, nil
}

func (e *DeclarativeEnv) SetMutableBinding(name string, v *Value, strict bool) error {
	b, ok := e.bindings[name]
	if !ok {
		return NewReferenceError("%s is not defined", name)
	}
	if !b.Initialized {
		return NewReferenceError("Cannot access '%s' before initialization", name)
	}
	switch b.Kind {
	case BindConst:
		return NewTypeError("Assignment to constant variable.")
	case BindSelf:
		if strict {
			return NewTypeError("Assignment to constant variable.")
		}
		return nil
	}
	b.Value = v
	return nil
}

// Names lists the bindings of this record.
func (e *DeclarativeEnv) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	return names
}

// FunctionEnv is the record created for each call of a non-arrow
// function.
type FunctionEnv struct {
	DeclarativeEnv
	Function   *Object
	NewTarget  *Value
	HomeObject *Object

	thisValue *Value
}

// NewFunctionEnv creates the call record. A nil this leaves the this
// binding uninitialized until super() runs.
func NewFunctionEnv(outer Environment, fn *Object, this, newTarget *Value) *FunctionEnv {
	return &FunctionEnv{
		DeclarativeEnv: DeclarativeEnv{bindings: make(map[string]*Binding), outer: outer},
		Function:       fn,
		NewTarget:      orUndefined(newTarget),
		thisValue:      this,
	}
}

func (e *FunctionEnv) GetBinding(name string) Reference {
	return Reference{env: e, name: name}
}

// This returns the this binding, failing inside a derived constructor
// before super() has run.
func (e *FunctionEnv) This() (*Value, error) {
	if e.thisValue == nil {
		return nil, NewReferenceError("Must call super constructor in derived class before accessing 'this' or returning from derived constructor")
	}
	return e.thisValue, nil
}

// BindThis initializes the this binding once.
func (e *FunctionEnv) BindThis(v *Value) error {
	if e.thisValue != nil {
		return NewReferenceError("Super constructor may only be called once")
	}
	e.thisValue = v
	return nil
}

// GlobalEnv layers a lexical binding map over the global object. Lexical
// declarations live in the map; var and function declarations are
// properties of the global object.
type GlobalEnv struct {
	DeclarativeEnv
	Object *Object
}

func NewGlobalEnv(global *Object) *GlobalEnv {
	return &GlobalEnv{
		DeclarativeEnv: DeclarativeEnv{bindings: make(map[string]*Binding)},
		Object:         global,
	}
}

func (e *GlobalEnv) Outer() Environment { return nil }

func (e *GlobalEnv) HasBinding(name string) bool {
	if e.DeclarativeEnv.HasBinding(name) {
		return true
	}
	ok, _ := e.Object.HasProperty(StrKey(name))
	return ok
}

// HasLexicalBinding reports whether name is a let, const or class binding.
func (e *GlobalEnv) HasLexicalBinding(name string) bool {
	return e.DeclarativeEnv.HasBinding(name)
}

// GetBinding prefers the lexical map; otherwise the reference targets the
// global object's property.
func (e *GlobalEnv) GetBinding(name string) Reference {
	if e.DeclarativeEnv.HasBinding(name) {
		return Reference{env: e, name: name}
	}
	return Reference{base: NewObject(e.Object), key: StrKey(name), name: name}
}

func (e *GlobalEnv) GetBindingValue(name string) (*Value, error) {
	if e.DeclarativeEnv.HasBinding(name) {
		return e.DeclarativeEnv.GetBindingValue(name)
	}
	key := StrKey(name)
	ok, err := e.Object.HasProperty(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewReferenceError("%s is not defined", name)
	}
	return e.Object.Get(key)
}

func (e *GlobalEnv) SetMutableBinding(name string, v *Value, strict bool) error {
	if e.DeclarativeEnv.HasBinding(name) {
		return e.DeclarativeEnv.SetMutableBinding(name, v, strict)
	}
	key := StrKey(name)
	if strict {
		ok, err := e.Object.HasProperty(key)
		if err != nil {
			return err
		}
		if !ok {
			return NewReferenceError("%s is not defined", name)
		}
	}
	ok, err := e.Object.Set(key, v, NewObject(e.Object))
	if err != nil {
		return err
	}
	if !ok && strict {
		return NewTypeError("Cannot assign to read only property '%s' of object", name)
	}
	return nil
}

// CreateGlobalVar declares a var or function name on the global object.
// An existing property keeps its value unless v is non-nil.
func (e *GlobalEnv) CreateGlobalVar(name string, v *Value) {
	key := StrKey(name)
	if e.Object.HasOwnProperty(key) {
		if v != nil {
			e.Object.Set(key, v, NewObject(e.Object))
		}
		return
	}
	e.Object.DefineOwnProperty(key, DataDescriptor(orUndefined(v), Writable|Enumerable))
}

// ResolveBinding walks from env outward and returns the reference of the
// first record that has name, or an unresolvable reference.
func ResolveBinding(env Environment, name string, strict bool) Reference {
	for e := env; e != nil; e = e.Outer() {
		if e.HasBinding(name) {
			ref := e.GetBinding(name)
			ref.strict = strict
			return ref
		}
	}
	return Reference{name: name, strict: strict}
}

// ThisEnvironment returns the nearest record that provides a this
// binding: a function record or the global record.
func ThisEnvironment(env Environment) Environment {
	for e := env; e != nil; e = e.Outer() {
		switch e.(type) {
		case *FunctionEnv, *GlobalEnv:
			return e
		}
	}
	return nil
}
