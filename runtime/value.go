package runtime

import (
	"math"
	"strconv"
	"sync/atomic"
)

// ValueType represents the type of a JavaScript value.
type ValueType int

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeSymbol
	TypeObject
)

func (t ValueType) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value represents a JavaScript value. Values are never mutated after
// construction; an Object value is a handle onto a shared *Object.
type Value struct {
	Type   ValueType
	Bool   bool
	Number float64
	Str    string
	Object *Object
	Symbol *Symbol
}

var (
	Undefined = &Value{Type: TypeUndefined}
	Null      = &Value{Type: TypeNull}
	True      = &Value{Type: TypeBoolean, Bool: true}
	False     = &Value{Type: TypeBoolean, Bool: false}
	NaN       = &Value{Type: TypeNumber, Number: math.NaN()}
	PosInf    = &Value{Type: TypeNumber, Number: math.Inf(1)}
	NegInf    = &Value{Type: TypeNumber, Number: math.Inf(-1)}
	Zero      = &Value{Type: TypeNumber, Number: 0}
	EmptyStr  = &Value{Type: TypeString}
)

func NewNumber(n float64) *Value {
	return &Value{Type: TypeNumber, Number: n}
}

func NewString(s string) *Value {
	if s == "" {
		return EmptyStr
	}
	return &Value{Type: TypeString, Str: s}
}

func NewBool(b bool) *Value {
	if b {
		return True
	}
	return False
}

func NewObject(obj *Object) *Value {
	return &Value{Type: TypeObject, Object: obj}
}

func NewSymbolValue(sym *Symbol) *Value {
	return &Value{Type: TypeSymbol, Symbol: sym}
}

func (v *Value) IsUndefined() bool { return v == nil || v.Type == TypeUndefined }
func (v *Value) IsNullish() bool   { return v == nil || v.Type == TypeUndefined || v.Type == TypeNull }
func (v *Value) IsObject() bool    { return v != nil && v.Type == TypeObject }
func (v *Value) IsPrimitive() bool { return v == nil || v.Type != TypeObject }

// ToBoolean implements the ECMAScript ToBoolean abstract operation. It is
// total: no value makes it fail or run script code.
func (v *Value) ToBoolean() bool {
	if v == nil {
		return false
	}
	switch v.Type {
	case TypeBoolean:
		return v.Bool
	case TypeNumber:
		return v.Number != 0 && !math.IsNaN(v.Number)
	case TypeString:
		return v.Str != ""
	case TypeSymbol, TypeObject:
		return true
	default:
		return false
	}
}

// Symbol is a unique, optionally described, primitive identity.
type Symbol struct {
	Description    string
	HasDescription bool
	id             uint64
}

var symbolSeq atomic.Uint64

// NewSymbol returns a fresh symbol. An empty description is distinct from
// no description: Symbol() and Symbol("") print differently.
func NewSymbol(desc string, hasDesc bool) *Symbol {
	return &Symbol{Description: desc, HasDescription: hasDesc, id: symbolSeq.Add(1)}
}

func (s *Symbol) String() string {
	return "Symbol(" + s.Description + ")"
}

// Well-known symbols are shared by every realm.
var (
	SymIterator    = NewSymbol("Symbol.iterator", true)
	SymToPrimitive = NewSymbol("Symbol.toPrimitive", true)
	SymHasInstance = NewSymbol("Symbol.hasInstance", true)
	SymToStringTag = NewSymbol("Symbol.toStringTag", true)
)

// PropertyKey is an interned string-or-symbol key. It is comparable and is
// used directly as a map key by the object store.
type PropertyKey struct {
	name string
	sym  *Symbol
}

func StrKey(s string) PropertyKey     { return PropertyKey{name: s} }
func SymKey(s *Symbol) PropertyKey    { return PropertyKey{sym: s} }
func (k PropertyKey) IsSymbol() bool  { return k.sym != nil }
func (k PropertyKey) Symbol() *Symbol { return k.sym }
func (k PropertyKey) Name() string    { return k.name }

func (k PropertyKey) String() string {
	if k.sym != nil {
		return k.sym.String()
	}
	return k.name
}

// ToValue returns the key as a string or symbol value.
func (k PropertyKey) ToValue() *Value {
	if k.sym != nil {
		return NewSymbolValue(k.sym)
	}
	return NewString(k.name)
}

// ArrayIndex reports whether the key is a canonical array index
// ("0", "1", ... up to 2^32-2).
func (k PropertyKey) ArrayIndex() (uint32, bool) {
	if k.sym != nil {
		return 0, false
	}
	return parseArrayIndex(k.name)
}

func parseArrayIndex(s string) (uint32, bool) {
	if s == "" || len(s) > 10 {
		return 0, false
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

// IndexKey builds the key for an array index.
func IndexKey(i int) PropertyKey {
	return StrKey(strconv.Itoa(i))
}

// SameValue implements the SameValue algorithm (Object.is).
func SameValue(a, b *Value) bool {
	if a.Type == TypeNumber && b.Type == TypeNumber {
		if math.IsNaN(a.Number) && math.IsNaN(b.Number) {
			return true
		}
		if a.Number == 0 && b.Number == 0 {
			return math.Signbit(a.Number) == math.Signbit(b.Number)
		}
		return a.Number == b.Number
	}
	return StrictEquals(a, b)
}

// SameValueZero is SameValue except that +0 and -0 are equal.
func SameValueZero(a, b *Value) bool {
	if a.Type == TypeNumber && b.Type == TypeNumber {
		if math.IsNaN(a.Number) && math.IsNaN(b.Number) {
			return true
		}
		return a.Number == b.Number
	}
	return StrictEquals(a, b)
}

// StrictEquals implements === comparison.
func StrictEquals(a, b *Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return a.Bool == b.Bool
	case TypeNumber:
		return a.Number == b.Number
	case TypeString:
		return a.Str == b.Str
	case TypeSymbol:
		return a.Symbol == b.Symbol
	case TypeObject:
		return a.Object == b.Object
	default:
		return false
	}
}
