package runtime

import (
	"cmp"
	"iter"
	"math"
	"slices"
)

// Class tags the internal slot layout of an object. The evaluator and the
// builtins dispatch on it instead of on Go types.
type Class int

const (
	ClassObject Class = iota
	ClassFunction
	ClassArray
	ClassError
	ClassBoolean
	ClassNumber
	ClassString
	ClassSymbol
	ClassRegExp
	ClassArguments
	ClassIterator
)

func (c Class) String() string {
	switch c {
	case ClassFunction:
		return "Function"
	case ClassArray:
		return "Array"
	case ClassError:
		return "Error"
	case ClassBoolean:
		return "Boolean"
	case ClassNumber:
		return "Number"
	case ClassString:
		return "String"
	case ClassSymbol:
		return "Symbol"
	case ClassRegExp:
		return "RegExp"
	case ClassArguments:
		return "Arguments"
	case ClassIterator:
		return "Iterator"
	default:
		return "Object"
	}
}

// CallableFunc is the Go function signature for JS callable objects.
type CallableFunc func(this *Value, args []*Value) (*Value, error)

// ConstructFunc implements [[Construct]]; newTarget is the constructor the
// new expression was applied to.
type ConstructFunc func(args []*Value, newTarget *Object) (*Value, error)

// MaxPrototypeDepth bounds every prototype chain walk.
const MaxPrototypeDepth = 10000

var lengthKey = StrKey("length")

// Object is the backing record of an object value.
type Object struct {
	Class       Class
	Callable    CallableFunc
	Constructor ConstructFunc
	// Primitive is the payload of Boolean, Number, String and Symbol wrappers.
	Primitive *Value
	// Internal holds class-specific slot data (function metadata, regexp
	// state, iterator state).
	Internal any

	proto      *Object
	extensible bool
	props      map[PropertyKey]*Property
	seq        uint64
}

// NewOrdinaryObject creates a plain extensible object.
func NewOrdinaryObject(proto *Object) *Object {
	return NewObjectOfClass(ClassObject, proto)
}

func NewObjectOfClass(class Class, proto *Object) *Object {
	return &Object{
		Class:      class,
		proto:      proto,
		extensible: true,
		props:      make(map[PropertyKey]*Property),
	}
}

func (o *Object) GetPrototype() *Object { return o.proto }
func (o *Object) IsExtensible() bool    { return o.extensible }
func (o *Object) PreventExtensions()    { o.extensible = false }
func (o *Object) IsCallable() bool      { return o != nil && o.Callable != nil }
func (o *Object) IsConstructor() bool   { return o != nil && o.Constructor != nil }

// SetPrototype replaces the prototype link. It fails when the object is
// not extensible or when proto would make the chain cyclic.
func (o *Object) SetPrototype(proto *Object) bool {
	if proto == o.proto {
		return true
	}
	if !o.extensible {
		return false
	}
	depth := 0
	for p := proto; p != nil; p = p.proto {
		if p == o {
			return false
		}
		if depth++; depth > MaxPrototypeDepth {
			return false
		}
	}
	o.proto = proto
	return true
}

// GetOwnProperty returns the own descriptor for key. The returned
// property aliases the stored one.
func (o *Object) GetOwnProperty(key PropertyKey) (*Property, bool) {
	if o.Class == ClassString && o.Primitive != nil {
		if p, ok := stringOwnProperty(o.Primitive.Str, key); ok {
			return p, true
		}
	}
	p, ok := o.props[key]
	return p, ok
}

func (o *Object) HasOwnProperty(key PropertyKey) bool {
	_, ok := o.GetOwnProperty(key)
	return ok
}

// HasProperty checks own properties and the prototype chain.
func (o *Object) HasProperty(key PropertyKey) (bool, error) {
	depth := 0
	for obj := o; obj != nil; obj = obj.proto {
		if depth++; depth > MaxPrototypeDepth {
			return false, protoDepthError(key)
		}
		if obj.HasOwnProperty(key) {
			return true, nil
		}
	}
	return false, nil
}

// Get reads key with the object itself as receiver.
func (o *Object) Get(key PropertyKey) (*Value, error) {
	return o.GetWithReceiver(key, NewObject(o))
}

// GetWithReceiver walks the prototype chain from o. Accessors found
// anywhere on the chain run with receiver as this.
func (o *Object) GetWithReceiver(key PropertyKey, receiver *Value) (*Value, error) {
	depth := 0
	for obj := o; obj != nil; obj = obj.proto {
		if depth++; depth > MaxPrototypeDepth {
			return nil, protoDepthError(key)
		}
		p, ok := obj.GetOwnProperty(key)
		if !ok {
			continue
		}
		if p.IsAccessor {
			if p.Getter == nil {
				return Undefined, nil
			}
			return p.Getter.Call(receiver, nil)
		}
		return p.Value, nil
	}
	return Undefined, nil
}

// Set performs an ordinary property assignment. A false result with a nil
// error is a silent failure; strict callers turn it into a TypeError.
func (o *Object) Set(key PropertyKey, v *Value, receiver *Value) (bool, error) {
	var found *Property
	depth := 0
	for obj := o; obj != nil; obj = obj.proto {
		if depth++; depth > MaxPrototypeDepth {
			return false, protoDepthError(key)
		}
		if p, ok := obj.GetOwnProperty(key); ok {
			found = p
			break
		}
	}
	if found != nil {
		if found.IsAccessor {
			if found.Setter == nil {
				return false, nil
			}
			if _, err := found.Setter.Call(receiver, []*Value{v}); err != nil {
				return false, err
			}
			return true, nil
		}
		if !found.Writable {
			return false, nil
		}
	}
	if !receiver.IsObject() {
		return false, nil
	}
	recv := receiver.Object
	if recv.Class == ClassArray && key == lengthKey {
		return recv.setArrayLength(v)
	}
	if existing, ok := recv.GetOwnProperty(key); ok {
		if existing.IsAccessor || !existing.Writable {
			return false, nil
		}
		return recv.DefineOwnProperty(key, PropertyDescriptor{Value: v, HasValue: true}), nil
	}
	return recv.DefineOwnProperty(key, DataDescriptor(v, AttrDefault)), nil
}

// DefineOwnProperty validates desc against the current own descriptor and
// applies it. It reports false when the object is not extensible or when
// a non-configurable property would change.
func (o *Object) DefineOwnProperty(key PropertyKey, desc PropertyDescriptor) bool {
	switch o.Class {
	case ClassArray:
		if key == lengthKey {
			return o.defineArrayLength(desc)
		}
		if idx, ok := key.ArrayIndex(); ok && o.props[lengthKey] != nil {
			lenProp := o.props[lengthKey]
			length := uint32(lenProp.Value.Number)
			if idx >= length && !lenProp.Writable {
				return false
			}
			if !o.validateAndApply(key, desc) {
				return false
			}
			if idx >= length {
				lenProp.Value = NewNumber(float64(idx) + 1)
			}
			return true
		}
	case ClassString:
		if o.Primitive != nil {
			if p, ok := stringOwnProperty(o.Primitive.Str, key); ok {
				return isCompatible(p, desc)
			}
		}
	}
	return o.validateAndApply(key, desc)
}

// DefineData installs a data property, ignoring failure. It is meant for
// setting up fresh objects.
func (o *Object) DefineData(name string, v *Value, attrs Attr) {
	o.DefineOwnProperty(StrKey(name), DataDescriptor(v, attrs))
}

// CreateDataProperty defines an enumerable, writable, configurable own
// property.
func (o *Object) CreateDataProperty(key PropertyKey, v *Value) bool {
	return o.DefineOwnProperty(key, DataDescriptor(v, AttrDefault))
}

// DefinePropertyOrThrow is DefineOwnProperty with failure raised as a
// TypeError.
func (o *Object) DefinePropertyOrThrow(key PropertyKey, desc PropertyDescriptor) error {
	if !o.DefineOwnProperty(key, desc) {
		return NewTypeError("Cannot redefine property: %s", key.String())
	}
	return nil
}

func (o *Object) validateAndApply(key PropertyKey, desc PropertyDescriptor) bool {
	current, ok := o.props[key]
	if !ok {
		if !o.extensible {
			return false
		}
		p := desc.toProperty()
		o.seq++
		p.order = o.seq
		if o.props == nil {
			o.props = make(map[PropertyKey]*Property)
		}
		o.props[key] = p
		return true
	}
	if !isCompatible(current, desc) {
		return false
	}
	applyDescriptor(current, desc)
	return true
}

func isCompatible(cur *Property, desc PropertyDescriptor) bool {
	if cur.Configurable {
		return true
	}
	if desc.HasConfigurable && desc.Configurable {
		return false
	}
	if desc.HasEnumerable && desc.Enumerable != cur.Enumerable {
		return false
	}
	if desc.IsGeneric() {
		return true
	}
	if desc.IsAccessor() != cur.IsAccessor {
		return false
	}
	if cur.IsAccessor {
		if desc.HasGet && desc.Get != cur.Getter {
			return false
		}
		return !desc.HasSet || desc.Set == cur.Setter
	}
	if !cur.Writable {
		if desc.HasWritable && desc.Writable {
			return false
		}
		if desc.HasValue && !SameValue(orUndefined(desc.Value), cur.Value) {
			return false
		}
	}
	return true
}

func applyDescriptor(cur *Property, desc PropertyDescriptor) {
	if !desc.IsGeneric() && desc.IsAccessor() != cur.IsAccessor {
		enumerable, configurable, order := cur.Enumerable, cur.Configurable, cur.order
		*cur = *desc.toProperty()
		if !desc.HasEnumerable {
			cur.Enumerable = enumerable
		}
		if !desc.HasConfigurable {
			cur.Configurable = configurable
		}
		cur.order = order
		return
	}
	if desc.HasValue {
		cur.Value = orUndefined(desc.Value)
	}
	if desc.HasWritable {
		cur.Writable = desc.Writable
	}
	if desc.HasGet {
		cur.Getter = desc.Get
	}
	if desc.HasSet {
		cur.Setter = desc.Set
	}
	if desc.HasEnumerable {
		cur.Enumerable = desc.Enumerable
	}
	if desc.HasConfigurable {
		cur.Configurable = desc.Configurable
	}
}

// Delete removes an own property. Deleting a missing key succeeds;
// deleting a non-configurable one fails.
func (o *Object) Delete(key PropertyKey) bool {
	if o.Class == ClassString && o.Primitive != nil {
		if _, ok := stringOwnProperty(o.Primitive.Str, key); ok {
			return false
		}
	}
	p, ok := o.props[key]
	if !ok {
		return true
	}
	if !p.Configurable {
		return false
	}
	delete(o.props, key)
	return true
}

// OwnKeys yields own keys: array indices ascending, then the remaining
// string keys in insertion order, then symbols in insertion order. The
// key set is captured when iteration starts.
func (o *Object) OwnKeys() iter.Seq[PropertyKey] {
	return func(yield func(PropertyKey) bool) {
		for _, k := range o.orderedKeys() {
			if !yield(k) {
				return
			}
		}
	}
}

// Keys collects OwnKeys into a slice.
func (o *Object) Keys() []PropertyKey {
	return o.orderedKeys()
}

type orderedKey struct {
	key   PropertyKey
	index uint32
	order uint64
}

func (o *Object) orderedKeys() []PropertyKey {
	var indices, names, symbols []orderedKey
	for k, p := range o.props {
		if k.IsSymbol() {
			symbols = append(symbols, orderedKey{key: k, order: p.order})
		} else if idx, ok := k.ArrayIndex(); ok {
			indices = append(indices, orderedKey{key: k, index: idx})
		} else {
			names = append(names, orderedKey{key: k, order: p.order})
		}
	}
	slices.SortFunc(indices, func(a, b orderedKey) int { return cmp.Compare(a.index, b.index) })
	slices.SortFunc(names, func(a, b orderedKey) int { return cmp.Compare(a.order, b.order) })
	slices.SortFunc(symbols, func(a, b orderedKey) int { return cmp.Compare(a.order, b.order) })

	keys := make([]PropertyKey, 0, len(o.props)+1)
	if o.Class == ClassString && o.Primitive != nil {
		n := StringLength(o.Primitive.Str)
		for i := 0; i < n; i++ {
			keys = append(keys, IndexKey(i))
		}
	}
	for _, k := range indices {
		keys = append(keys, k.key)
	}
	if o.Class == ClassString && o.Primitive != nil {
		keys = append(keys, lengthKey)
	}
	for _, k := range names {
		keys = append(keys, k.key)
	}
	for _, k := range symbols {
		keys = append(keys, k.key)
	}
	return keys
}

// Freeze makes every own property non-configurable (and data properties
// non-writable) and prevents extensions.
func (o *Object) Freeze() {
	o.extensible = false
	for _, p := range o.props {
		p.Configurable = false
		if !p.IsAccessor {
			p.Writable = false
		}
	}
}

func (o *Object) IsFrozen() bool {
	if o.extensible {
		return false
	}
	for _, p := range o.props {
		if p.Configurable || (!p.IsAccessor && p.Writable) {
			return false
		}
	}
	return true
}

// Call invokes the object as a function.
func (o *Object) Call(this *Value, args []*Value) (*Value, error) {
	if o.Callable == nil {
		return nil, NewTypeError("object is not a function")
	}
	return o.Callable(this, args)
}

// Construct invokes the object as a constructor.
func (o *Object) Construct(args []*Value, newTarget *Object) (*Value, error) {
	if o.Constructor == nil {
		return nil, NewTypeError("object is not a constructor")
	}
	if newTarget == nil {
		newTarget = o
	}
	return o.Constructor(args, newTarget)
}

func (o *Object) setArrayLength(v *Value) (bool, error) {
	f, err := ToNumber(v)
	if err != nil {
		return false, err
	}
	n, ok := arrayLengthFrom(NewNumber(f))
	if !ok {
		return false, NewRangeError("Invalid array length")
	}
	return o.defineArrayLength(PropertyDescriptor{Value: NewNumber(float64(n)), HasValue: true}), nil
}

func (o *Object) defineArrayLength(desc PropertyDescriptor) bool {
	lenProp := o.props[lengthKey]
	if lenProp == nil || !desc.HasValue {
		return o.validateAndApply(lengthKey, desc)
	}
	newLen, ok := arrayLengthFrom(desc.Value)
	if !ok {
		return false
	}
	oldLen := uint32(lenProp.Value.Number)
	desc.Value = NewNumber(float64(newLen))
	if newLen >= oldLen {
		return o.validateAndApply(lengthKey, desc)
	}
	if !lenProp.Writable {
		return false
	}
	var doomed []uint32
	for k := range o.props {
		if idx, ok := k.ArrayIndex(); ok && idx >= newLen {
			doomed = append(doomed, idx)
		}
	}
	slices.SortFunc(doomed, func(a, b uint32) int { return cmp.Compare(b, a) })
	for _, idx := range doomed {
		if !o.Delete(IndexKey(int(idx))) {
			lenProp.Value = NewNumber(float64(idx) + 1)
			return false
		}
	}
	return o.validateAndApply(lengthKey, desc)
}

func arrayLengthFrom(v *Value) (uint32, bool) {
	var f float64
	switch v.Type {
	case TypeNumber:
		f = v.Number
	case TypeString, TypeBoolean, TypeNull:
		f = primitiveToNumber(v)
	default:
		return 0, false
	}
	if f < 0 || f > math.MaxUint32 || f != math.Trunc(f) {
		return 0, false
	}
	return uint32(f), true
}

func protoDepthError(key PropertyKey) error {
	return Fatal(ErrPrototypeDepth, "while looking up %q", key.String())
}

func orUndefined(v *Value) *Value {
	if v == nil {
		return Undefined
	}
	return v
}
