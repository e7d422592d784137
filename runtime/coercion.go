package runtime

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Hint selects the conversion order of ToPrimitive.
type Hint int

const (
	HintDefault Hint = iota
	HintNumber
	HintString
)

func (h Hint) String() string {
	switch h {
	case HintNumber:
		return "number"
	case HintString:
		return "string"
	default:
		return "default"
	}
}

// ToPrimitive converts v to a primitive. Objects consult Symbol.toPrimitive
// first, then valueOf and toString in the order the hint dictates.
func ToPrimitive(v *Value, hint Hint) (*Value, error) {
	if v.Type != TypeObject {
		return v, nil
	}
	exotic, err := v.Object.Get(SymKey(SymToPrimitive))
	if err != nil {
		return nil, err
	}
	if !exotic.IsNullish() {
		if !IsCallable(exotic) {
			return nil, NewTypeError("Symbol.toPrimitive is not a function")
		}
		res, err := exotic.Object.Call(v, []*Value{NewString(hint.String())})
		if err != nil {
			return nil, err
		}
		if res.IsObject() {
			return nil, NewTypeError("Cannot convert object to primitive value")
		}
		return res, nil
	}
	return OrdinaryToPrimitive(v.Object, hint)
}

// OrdinaryToPrimitive tries toString before valueOf for the string hint
// and the reverse otherwise.
func OrdinaryToPrimitive(obj *Object, hint Hint) (*Value, error) {
	order := [2]string{"valueOf", "toString"}
	if hint == HintString {
		order = [2]string{"toString", "valueOf"}
	}
	this := NewObject(obj)
	for _, name := range order {
		method, err := obj.Get(StrKey(name))
		if err != nil {
			return nil, err
		}
		if !IsCallable(method) {
			continue
		}
		res, err := method.Object.Call(this, nil)
		if err != nil {
			return nil, err
		}
		if !res.IsObject() {
			return res, nil
		}
	}
	return nil, NewTypeError("Cannot convert object to primitive value")
}

// ToNumber implements the ECMAScript ToNumber abstract operation.
func ToNumber(v *Value) (float64, error) {
	switch v.Type {
	case TypeNumber:
		return v.Number, nil
	case TypeSymbol:
		return 0, NewTypeError("Cannot convert a Symbol value to a number")
	case TypeObject:
		prim, err := ToPrimitive(v, HintNumber)
		if err != nil {
			return 0, err
		}
		return ToNumber(prim)
	default:
		return primitiveToNumber(v), nil
	}
}

func primitiveToNumber(v *Value) float64 {
	switch v.Type {
	case TypeNull:
		return 0
	case TypeBoolean:
		if v.Bool {
			return 1
		}
		return 0
	case TypeNumber:
		return v.Number
	case TypeString:
		return StringToNumber(v.Str)
	default:
		return math.NaN()
	}
}

// IsSpace reports whether r is script whitespace or a line terminator.
func IsSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0xA0, 0xFEFF, 0x2028, 0x2029:
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// TrimSpace strips script whitespace from both ends of s.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, IsSpace)
}

// StringToNumber parses s with the StringNumericLiteral grammar.
func StringToNumber(s string) float64 {
	s = TrimSpace(s)
	if s == "" {
		return 0
	}
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			return parseRadixDigits(s[2:], 16)
		case 'o', 'O':
			return parseRadixDigits(s[2:], 8)
		case 'b', 'B':
			return parseRadixDigits(s[2:], 2)
		}
	}
	body := s
	if body[0] == '+' || body[0] == '-' {
		body = body[1:]
	}
	if body == "Infinity" {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	if !isDecimalLiteral(body) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

func parseRadixDigits(s string, radix int) float64 {
	if s == "" {
		return math.NaN()
	}
	var n float64
	for _, c := range s {
		d := digitValue(c)
		if d < 0 || d >= radix {
			return math.NaN()
		}
		n = n*float64(radix) + float64(d)
	}
	return n
}

func digitValue(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

// isDecimalLiteral matches digits [. digits] [e [+-] digits] with at
// least one mantissa digit.
func isDecimalLiteral(s string) bool {
	i, digits := 0, 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

// ToString implements the ECMAScript ToString abstract operation. Symbols
// never convert implicitly.
func ToString(v *Value) (string, error) {
	switch v.Type {
	case TypeString:
		return v.Str, nil
	case TypeSymbol:
		return "", NewTypeError("Cannot convert a Symbol value to a string")
	case TypeObject:
		prim, err := ToPrimitive(v, HintString)
		if err != nil {
			return "", err
		}
		return ToString(prim)
	default:
		return primitiveToString(v), nil
	}
}

func primitiveToString(v *Value) string {
	switch v.Type {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case TypeNumber:
		return NumberToString(v.Number)
	case TypeString:
		return v.Str
	case TypeSymbol:
		return v.Symbol.String()
	}
	return ""
}

// NumberToString formats f the way Number.prototype.toString does with
// radix 10: the shortest digits that round-trip, in plain notation for
// exponents in [-7, 21) and exponential notation otherwise.
func NumberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case f == 0:
		return "0"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f < 0:
		return "-" + NumberToString(-f)
	}
	if f < 1e21 && f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mant, expPart, _ := strings.Cut(sci, "e")
	digits := strings.Replace(mant, ".", "", 1)
	e, _ := strconv.Atoi(expPart)
	k, n := len(digits), e+1

	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}
	sign := "+"
	if n-1 < 0 {
		sign = "-"
	}
	exp := strconv.Itoa(abs(n - 1))
	if k == 1 {
		return digits + "e" + sign + exp
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + exp
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ToObject boxes primitives into wrapper objects of this realm.
func (r *Realm) ToObject(v *Value) (*Object, error) {
	switch v.Type {
	case TypeObject:
		return v.Object, nil
	case TypeUndefined, TypeNull:
		return nil, NewTypeError("Cannot convert undefined or null to object")
	case TypeBoolean:
		return r.newWrapper(ClassBoolean, r.BooleanPrototype, v), nil
	case TypeNumber:
		return r.newWrapper(ClassNumber, r.NumberPrototype, v), nil
	case TypeString:
		return r.newWrapper(ClassString, r.StringPrototype, v), nil
	case TypeSymbol:
		return r.newWrapper(ClassSymbol, r.SymbolPrototype, v), nil
	}
	return nil, NewTypeError("Cannot convert value to object")
}

// NewWrapper boxes a primitive with an explicit prototype, for wrapper
// constructors invoked through subclasses.
func (r *Realm) NewWrapper(v *Value, proto *Object) *Object {
	obj, _ := r.ToObject(v)
	if proto != nil {
		obj.proto = proto
	}
	return obj
}

func (r *Realm) newWrapper(class Class, proto *Object, v *Value) *Object {
	obj := NewObjectOfClass(class, proto)
	obj.Primitive = v
	return obj
}

// ToPropertyKey converts v to a string or symbol key.
func ToPropertyKey(v *Value) (PropertyKey, error) {
	switch v.Type {
	case TypeString:
		return StrKey(v.Str), nil
	case TypeSymbol:
		return SymKey(v.Symbol), nil
	case TypeNumber:
		return StrKey(NumberToString(v.Number)), nil
	}
	prim, err := ToPrimitive(v, HintString)
	if err != nil {
		return PropertyKey{}, err
	}
	if prim.Type == TypeSymbol {
		return SymKey(prim.Symbol), nil
	}
	s, err := ToString(prim)
	return StrKey(s), err
}

// ToNumeric is ToNumber after a number-hinted ToPrimitive.
func ToNumeric(v *Value) (float64, error) {
	return ToNumber(v)
}

// ToIntegerOrInfinity truncates toward zero; NaN becomes 0.
func ToIntegerOrInfinity(v *Value) (float64, error) {
	f, err := ToNumber(v)
	if err != nil {
		return 0, err
	}
	return IntegerOrInfinity(f), nil
}

func IntegerOrInfinity(f float64) float64 {
	if math.IsNaN(f) || f == 0 {
		return 0
	}
	return math.Trunc(f)
}

// ToInt32 converts with modular arithmetic to a signed 32-bit integer.
func ToInt32(v *Value) (int32, error) {
	f, err := ToNumber(v)
	if err != nil {
		return 0, err
	}
	return Int32(f), nil
}

// ToUint32 converts with modular arithmetic to an unsigned 32-bit integer.
func ToUint32(v *Value) (uint32, error) {
	f, err := ToNumber(v)
	if err != nil {
		return 0, err
	}
	return Uint32(f), nil
}

func Uint32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Mod(math.Trunc(f), 4294967296)
	if f < 0 {
		f += 4294967296
	}
	return uint32(f)
}

func Int32(f float64) int32 {
	return int32(Uint32(f))
}

// ToLength clamps to an integer in [0, 2^53-1].
func ToLength(v *Value) (float64, error) {
	f, err := ToIntegerOrInfinity(v)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, nil
	}
	return math.Min(f, 1<<53-1), nil
}

// IsCallable reports whether v is a function object.
func IsCallable(v *Value) bool {
	return v.IsObject() && v.Object.Callable != nil
}

// IsConstructor reports whether v can be used with new.
func IsConstructor(v *Value) bool {
	return v.IsObject() && v.Object.Constructor != nil
}

// Typeof implements the typeof operator.
func Typeof(v *Value) string {
	switch v.Type {
	case TypeNull:
		return "object"
	case TypeObject:
		if v.Object.Callable != nil {
			return "function"
		}
		return "object"
	}
	return v.Type.String()
}

// GetMethod reads a method from v, returning nil when it is absent.
func GetMethod(r *Realm, v *Value, key PropertyKey) (*Object, error) {
	obj, err := r.ToObject(v)
	if err != nil {
		return nil, err
	}
	m, err := obj.GetWithReceiver(key, v)
	if err != nil {
		return nil, err
	}
	if m.IsNullish() {
		return nil, nil
	}
	if !IsCallable(m) {
		return nil, NewTypeError("%s is not a function", Display(m))
	}
	return m.Object, nil
}

// LooseEquals implements the == operator.
func LooseEquals(a, b *Value) (bool, error) {
	if a.Type == b.Type {
		return StrictEquals(a, b), nil
	}
	if a.IsNullish() && b.IsNullish() {
		return true, nil
	}
	switch {
	case a.Type == TypeNumber && b.Type == TypeString:
		return a.Number == StringToNumber(b.Str), nil
	case a.Type == TypeString && b.Type == TypeNumber:
		return StringToNumber(a.Str) == b.Number, nil
	case a.Type == TypeBoolean:
		return LooseEquals(NewNumber(primitiveToNumber(a)), b)
	case b.Type == TypeBoolean:
		return LooseEquals(a, NewNumber(primitiveToNumber(b)))
	case b.Type == TypeObject && (a.Type == TypeNumber || a.Type == TypeString || a.Type == TypeSymbol):
		prim, err := ToPrimitive(b, HintDefault)
		if err != nil {
			return false, err
		}
		return LooseEquals(a, prim)
	case a.Type == TypeObject && (b.Type == TypeNumber || b.Type == TypeString || b.Type == TypeSymbol):
		prim, err := ToPrimitive(a, HintDefault)
		if err != nil {
			return false, err
		}
		return LooseEquals(prim, b)
	}
	return false, nil
}

// OrdinaryHasInstance walks obj's prototype chain looking for C.prototype.
func OrdinaryHasInstance(c *Value, v *Value) (bool, error) {
	if !IsCallable(c) {
		return false, nil
	}
	if bound, ok := c.Object.Internal.(interface{ Target() *Object }); ok {
		return OrdinaryHasInstance(NewObject(bound.Target()), v)
	}
	if !v.IsObject() {
		return false, nil
	}
	protoVal, err := c.Object.Get(StrKey("prototype"))
	if err != nil {
		return false, err
	}
	if !protoVal.IsObject() {
		return false, NewTypeError("Function has non-object prototype '%s' in instanceof check", Display(protoVal))
	}
	depth := 0
	for p := v.Object.proto; p != nil; p = p.proto {
		if depth++; depth > MaxPrototypeDepth {
			return false, Fatal(ErrPrototypeDepth, "in instanceof")
		}
		if p == protoVal.Object {
			return true, nil
		}
	}
	return false, nil
}

// CompareStrings orders strings by UTF-16 code units.
func CompareStrings(a, b string) int {
	if isASCII(a) && isASCII(b) {
		return strings.Compare(a, b)
	}
	ua, ub := CodeUnits(a), CodeUnits(b)
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	return len(ua) - len(ub)
}
