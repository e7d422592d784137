package builtins

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/example/jscore/runtime"
)

const maxSafeInteger = 1<<53 - 1

func numberDefinition(r *runtime.Realm) Definition {
	return Definition{
		Name:      "Number",
		Length:    1,
		Prototype: r.NumberPrototype,
		Call: func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
			n, err := numberArg(args)
			if err != nil {
				return nil, err
			}
			return runtime.NewNumber(n), nil
		},
		Construct: func(r *runtime.Realm, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
			n, err := numberArg(args)
			if err != nil {
				return nil, err
			}
			proto, err := prototypeFrom(newTarget, r.NumberPrototype)
			if err != nil {
				return nil, err
			}
			return runtime.NewObject(r.NewWrapper(runtime.NewNumber(n), proto)), nil
		},
		Methods: []Method{
			{Name: "toString", Length: 1, Fn: numberToString},
			{Name: "toLocaleString", Fn: numberToString},
			{Name: "toFixed", Length: 1, Fn: numberToFixed},
			{Name: "toPrecision", Length: 1, Fn: numberToPrecision},
			{Name: "toExponential", Length: 1, Fn: numberToExponential},
			{Name: "valueOf", Fn: numberValueOf},
		},
		Statics: []Method{
			{Name: "isInteger", Length: 1, Fn: numberIsInteger},
			{Name: "isFinite", Length: 1, Fn: numberIsFinite},
			{Name: "isNaN", Length: 1, Fn: numberIsNaN},
			{Name: "isSafeInteger", Length: 1, Fn: numberIsSafeInteger},
		},
		Constants: []Constant{
			{Name: "EPSILON", Value: runtime.NewNumber(0x1p-52)},
			{Name: "MAX_SAFE_INTEGER", Value: runtime.NewNumber(maxSafeInteger)},
			{Name: "MIN_SAFE_INTEGER", Value: runtime.NewNumber(-maxSafeInteger)},
			{Name: "MAX_VALUE", Value: runtime.NewNumber(math.MaxFloat64)},
			{Name: "MIN_VALUE", Value: runtime.NewNumber(math.SmallestNonzeroFloat64)},
			{Name: "NaN", Value: runtime.NaN},
			{Name: "POSITIVE_INFINITY", Value: runtime.PosInf},
			{Name: "NEGATIVE_INFINITY", Value: runtime.NegInf},
		},
	}
}

func numberArg(args []*runtime.Value) (float64, error) {
	if len(args) == 0 {
		return 0, nil
	}
	return runtime.ToNumber(args[0])
}

func thisNumber(this *runtime.Value, method string) (float64, error) {
	v, err := thisPrimitive(this, runtime.TypeNumber, "Number.prototype."+method)
	if err != nil {
		return 0, err
	}
	return v.Number, nil
}

// digitsArg reads an optional digit-count argument and range-checks it.
func digitsArg(v *runtime.Value, lo, hi int, method string) (int, error) {
	f, err := runtime.ToIntegerOrInfinity(v)
	if err != nil {
		return 0, err
	}
	if f < float64(lo) || f > float64(hi) {
		return 0, runtime.NewRangeError("%s() argument must be between %d and %d", method, lo, hi)
	}
	return int(f), nil
}

func numberToString(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, err := thisNumber(this, "toString")
	if err != nil {
		return nil, err
	}
	radix := 10
	if a := argAt(args, 0); !a.IsUndefined() {
		if radix, err = digitsArg(a, 2, 36, "toString"); err != nil {
			return nil, runtime.NewRangeError("toString() radix must be between 2 and 36")
		}
	}
	if radix == 10 || math.IsNaN(n) || math.IsInf(n, 0) {
		return runtime.NewString(runtime.NumberToString(n)), nil
	}
	return runtime.NewString(formatRadix(n, radix)), nil
}

// formatRadix renders n in a non-decimal radix: the exact integer part,
// then fraction digits until the remainder vanishes or precision runs out.
func formatRadix(n float64, radix int) string {
	neg := n < 0
	n = math.Abs(n)
	intPart := math.Floor(n)
	frac := n - intPart

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	if intPart < 1<<63 {
		sb.WriteString(strconv.FormatUint(uint64(intPart), radix))
	} else {
		i, _ := big.NewFloat(intPart).Int(nil)
		sb.WriteString(i.Text(radix))
	}
	if frac > 0 {
		sb.WriteByte('.')
		for i := 0; i < 52 && frac > 0; i++ {
			frac *= float64(radix)
			d := int(frac)
			frac -= float64(d)
			sb.WriteByte("0123456789abcdefghijklmnopqrstuvwxyz"[d])
		}
	}
	return sb.String()
}

// exactDecimal returns the exact decimal expansion of a finite
// non-negative float as an integer digit string and the position of the
// decimal point within it.
func exactDecimal(x float64) (digits string, point int) {
	s := new(big.Float).SetFloat64(x).Text('f', 1100)
	intPart, fracPart, _ := strings.Cut(s, ".")
	fracPart = strings.TrimRight(fracPart, "0")
	return intPart + fracPart, len(intPart)
}

// roundDigits keeps the first n digits of digits, rounding half away from
// zero. carry reports that rounding added a leading digit.
func roundDigits(digits string, n int) (out string, carry bool) {
	if n >= len(digits) {
		return digits + strings.Repeat("0", n-len(digits)), false
	}
	if n < 0 {
		return "", false
	}
	buf := []byte(digits[:n])
	if digits[n] >= '5' {
		i := n - 1
		for ; i >= 0; i-- {
			if buf[i] < '9' {
				buf[i]++
				break
			}
			buf[i] = '0'
		}
		if i < 0 {
			return "1" + string(buf), true
		}
	}
	return string(buf), false
}

func numberToFixed(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	x, err := thisNumber(this, "toFixed")
	if err != nil {
		return nil, err
	}
	f, err := digitsArg(argAt(args, 0), 0, 100, "toFixed")
	if err != nil {
		return nil, err
	}
	if math.IsNaN(x) || math.Abs(x) >= 1e21 {
		return runtime.NewString(runtime.NumberToString(x)), nil
	}
	return runtime.NewString(toFixed(x, f)), nil
}

func toFixed(x float64, f int) string {
	sign := ""
	if x < 0 {
		sign, x = "-", -x
	}
	digits, point := exactDecimal(x)
	m, carry := roundDigits(digits, point+f)
	if carry {
		point++
	}
	intPart, fracPart := m[:point], m[point:]
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	if f == 0 {
		return sign + intPart
	}
	return sign + intPart + "." + fracPart
}

// significant returns x rounded to p significant digits and the decimal
// exponent of the first digit.
func significant(x float64, p int) (string, int) {
	if x == 0 {
		return strings.Repeat("0", p), 0
	}
	digits, point := exactDecimal(x)
	lead := len(digits) - len(strings.TrimLeft(digits, "0"))
	m, carry := roundDigits(digits[lead:], p)
	e := point - lead - 1
	if carry {
		e++
		m = m[:p]
	}
	return m, e
}

func numberToPrecision(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	x, err := thisNumber(this, "toPrecision")
	if err != nil {
		return nil, err
	}
	if argAt(args, 0).IsUndefined() {
		return runtime.NewString(runtime.NumberToString(x)), nil
	}
	p, err := digitsArg(argAt(args, 0), 1, 100, "toPrecision")
	if err != nil {
		return nil, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return runtime.NewString(runtime.NumberToString(x)), nil
	}
	sign := ""
	if x < 0 {
		sign, x = "-", -x
	}
	m, e := significant(x, p)
	if e < -6 || e >= p {
		return runtime.NewString(sign + exponential(m, e)), nil
	}
	switch {
	case e == p-1:
		return runtime.NewString(sign + m), nil
	case e >= 0:
		return runtime.NewString(sign + m[:e+1] + "." + m[e+1:]), nil
	}
	return runtime.NewString(sign + "0." + strings.Repeat("0", -(e+1)) + m), nil
}

func exponential(m string, e int) string {
	s := m[:1]
	if len(m) > 1 {
		s += "." + m[1:]
	}
	if e >= 0 {
		return s + "e+" + strconv.Itoa(e)
	}
	return s + "e-" + strconv.Itoa(-e)
}

func numberToExponential(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	x, err := thisNumber(this, "toExponential")
	if err != nil {
		return nil, err
	}
	fArg := argAt(args, 0)
	f, err := runtime.ToIntegerOrInfinity(fArg)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return runtime.NewString(runtime.NumberToString(x)), nil
	}
	if f < 0 || f > 100 {
		return nil, runtime.NewRangeError("toExponential() argument must be between 0 and 100")
	}
	sign := ""
	if x < 0 {
		sign, x = "-", -x
	}
	if fArg.IsUndefined() {
		// As many digits as needed to represent x uniquely.
		s := strconv.FormatFloat(x, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		e, _ := strconv.Atoi(exp)
		return runtime.NewString(sign + exponential(strings.Replace(mant, ".", "", 1), e)), nil
	}
	m, e := significant(x, int(f)+1)
	return runtime.NewString(sign + exponential(m, e)), nil
}

func numberValueOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return thisPrimitive(this, runtime.TypeNumber, "Number.prototype.valueOf")
}

func isIntegral(v *runtime.Value) bool {
	return v.Type == runtime.TypeNumber && !math.IsInf(v.Number, 0) && !math.IsNaN(v.Number) && math.Trunc(v.Number) == v.Number
}

func numberIsInteger(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewBool(isIntegral(argAt(args, 0))), nil
}

func numberIsFinite(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	a := argAt(args, 0)
	return runtime.NewBool(a.Type == runtime.TypeNumber && !math.IsNaN(a.Number) && !math.IsInf(a.Number, 0)), nil
}

func numberIsNaN(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	a := argAt(args, 0)
	return runtime.NewBool(a.Type == runtime.TypeNumber && math.IsNaN(a.Number)), nil
}

func numberIsSafeInteger(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	a := argAt(args, 0)
	return runtime.NewBool(isIntegral(a) && math.Abs(a.Number) <= maxSafeInteger), nil
}
