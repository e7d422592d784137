package runtime

import (
	"errors"
	"io"
	"os"
)

// Realm owns the intrinsic objects of one program instance. Every
// prototype a value can link to without script involvement lives here,
// and the evaluator and builtins receive the realm explicitly. Two realms
// never share intrinsics.
type Realm struct {
	ObjectPrototype        *Object
	FunctionPrototype      *Object
	ArrayPrototype         *Object
	StringPrototype        *Object
	NumberPrototype        *Object
	BooleanPrototype       *Object
	SymbolPrototype        *Object
	RegExpPrototype        *Object
	IteratorPrototype      *Object
	ArrayIteratorPrototype *Object

	GlobalObject *Object

	// Out receives console output; Err receives console.warn and
	// console.error.
	Out io.Writer
	Err io.Writer
	// CompileFunction builds a function from source text for the
	// Function constructor. The interpreter installs it.
	CompileFunction func(params []string, body string) (*Value, error)

	errorPrototypes [numErrorKinds]*Object
	symbolRegistry  map[string]*Symbol
}

// NewRealm creates the intrinsic prototypes with their links in place but
// without methods; builtins populate them.
func NewRealm() *Realm {
	r := &Realm{Out: os.Stdout, Err: os.Stderr, symbolRegistry: make(map[string]*Symbol)}
	r.ObjectPrototype = NewOrdinaryObject(nil)
	r.FunctionPrototype = NewObjectOfClass(ClassFunction, r.ObjectPrototype)
	r.FunctionPrototype.Callable = func(this *Value, args []*Value) (*Value, error) {
		return Undefined, nil
	}
	r.ArrayPrototype = NewArray(r.ObjectPrototype, nil)
	r.StringPrototype = NewObjectOfClass(ClassString, r.ObjectPrototype)
	r.StringPrototype.Primitive = EmptyStr
	r.NumberPrototype = NewObjectOfClass(ClassNumber, r.ObjectPrototype)
	r.NumberPrototype.Primitive = Zero
	r.BooleanPrototype = NewObjectOfClass(ClassBoolean, r.ObjectPrototype)
	r.BooleanPrototype.Primitive = False
	r.SymbolPrototype = NewOrdinaryObject(r.ObjectPrototype)
	r.RegExpPrototype = NewOrdinaryObject(r.ObjectPrototype)
	r.IteratorPrototype = NewOrdinaryObject(r.ObjectPrototype)
	r.ArrayIteratorPrototype = NewOrdinaryObject(r.IteratorPrototype)

	base := NewOrdinaryObject(r.ObjectPrototype)
	r.errorPrototypes[KindError] = base
	for _, kind := range ErrorKinds()[1:] {
		r.errorPrototypes[kind] = NewOrdinaryObject(base)
	}

	r.GlobalObject = NewOrdinaryObject(r.ObjectPrototype)
	return r
}

// ErrorPrototype returns the prototype shared by errors of the given kind.
func (r *Realm) ErrorPrototype(kind ErrorKind) *Object {
	if kind < 0 || kind >= numErrorKinds {
		kind = KindError
	}
	return r.errorPrototypes[kind]
}

// NewError builds an error object. The message is an own property; the
// name comes from the prototype.
func (r *Realm) NewError(kind ErrorKind, msg string) *Object {
	return r.NewErrorWithPrototype(r.ErrorPrototype(kind), msg, true)
}

func (r *Realm) NewErrorWithPrototype(proto *Object, msg string, hasMsg bool) *Object {
	obj := NewObjectOfClass(ClassError, proto)
	if hasMsg {
		obj.DefineData("message", NewString(msg), AttrDefault)
	}
	return obj
}

// ErrorValue extracts the script-visible value of a language-level error,
// materializing engine-raised errors into error objects. It reports false
// for host-fatal and foreign errors.
func (r *Realm) ErrorValue(err error) (*Value, bool) {
	if err == nil || IsFatal(err) {
		return nil, false
	}
	var ex *Exception
	if errors.As(err, &ex) {
		return ex.Value, true
	}
	var le *LanguageError
	if errors.As(err, &le) {
		return NewObject(r.NewError(le.Kind, le.Message)), true
	}
	return nil, false
}

// NewNativeFunction wraps a Go function as a non-constructible function
// object.
func (r *Realm) NewNativeFunction(name string, length int, fn CallableFunc) *Object {
	obj := NewObjectOfClass(ClassFunction, r.FunctionPrototype)
	obj.Callable = fn
	obj.DefineData("length", NewNumber(float64(length)), Configurable)
	obj.DefineData("name", NewString(name), Configurable)
	return obj
}

// NewPlainObject creates an empty object linked to Object.prototype.
func (r *Realm) NewPlainObject() *Object {
	return NewOrdinaryObject(r.ObjectPrototype)
}

// NewArrayValue creates an array linked to Array.prototype.
func (r *Realm) NewArrayValue(elems []*Value) *Value {
	return NewObject(NewArray(r.ArrayPrototype, elems))
}

// SymbolFor returns the registry symbol for key, creating it on first use.
func (r *Realm) SymbolFor(key string) *Symbol {
	if sym, ok := r.symbolRegistry[key]; ok {
		return sym
	}
	sym := NewSymbol(key, true)
	r.symbolRegistry[key] = sym
	return sym
}

// SymbolKeyFor is the inverse of SymbolFor.
func (r *Realm) SymbolKeyFor(sym *Symbol) (string, bool) {
	for k, s := range r.symbolRegistry {
		if s == sym {
			return k, true
		}
	}
	return "", false
}
