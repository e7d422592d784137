package builtins

import (
	"math"
	"math/bits"
	"math/rand/v2"

	"github.com/example/jscore/runtime"
)

func mathDefinition() Definition {
	def := Definition{
		Name: "Math",
		Constants: []Constant{
			{Name: "E", Value: runtime.NewNumber(math.E)},
			{Name: "LN10", Value: runtime.NewNumber(math.Ln10)},
			{Name: "LN2", Value: runtime.NewNumber(math.Ln2)},
			{Name: "LOG10E", Value: runtime.NewNumber(math.Log10E)},
			{Name: "LOG2E", Value: runtime.NewNumber(math.Log2E)},
			{Name: "PI", Value: runtime.NewNumber(math.Pi)},
			{Name: "SQRT1_2", Value: runtime.NewNumber(1 / math.Sqrt2)},
			{Name: "SQRT2", Value: runtime.NewNumber(math.Sqrt2)},
		},
		Statics: []Method{
			{Name: "atan2", Length: 2, Fn: binary(math.Atan2)},
			{Name: "clz32", Length: 1, Fn: mathClz32},
			{Name: "hypot", Length: 2, Fn: mathHypot},
			{Name: "imul", Length: 2, Fn: mathImul},
			{Name: "max", Length: 2, Fn: extremum(math.Inf(-1), true)},
			{Name: "min", Length: 2, Fn: extremum(math.Inf(1), false)},
			{Name: "pow", Length: 2, Fn: binary(pow)},
			{Name: "random", Fn: mathRandom},
		},
	}
	for _, u := range []struct {
		name string
		fn   func(float64) float64
	}{
		{"abs", math.Abs}, {"acos", math.Acos}, {"acosh", math.Acosh}, {"asin", math.Asin},
		{"asinh", math.Asinh}, {"atan", math.Atan}, {"atanh", math.Atanh}, {"cbrt", math.Cbrt},
		{"ceil", math.Ceil}, {"cos", math.Cos}, {"cosh", math.Cosh}, {"exp", math.Exp},
		{"expm1", math.Expm1}, {"floor", math.Floor}, {"fround", fround}, {"log", math.Log},
		{"log10", math.Log10}, {"log1p", math.Log1p}, {"log2", math.Log2}, {"round", round},
		{"sign", sign}, {"sin", math.Sin}, {"sinh", math.Sinh}, {"sqrt", math.Sqrt},
		{"tan", math.Tan}, {"tanh", math.Tanh}, {"trunc", math.Trunc},
	} {
		def.Statics = append(def.Statics, Method{Name: u.name, Length: 1, Fn: unary(u.fn)})
	}
	return def
}

func unary(fn func(float64) float64) Native {
	return func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		x, err := runtime.ToNumber(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(fn(x)), nil
	}
}

func binary(fn func(float64, float64) float64) Native {
	return func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		x, err := runtime.ToNumber(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		y, err := runtime.ToNumber(argAt(args, 1))
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(fn(x, y)), nil
	}
}

// round rounds half toward +Infinity and keeps the sign of zero.
func round(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x == math.Trunc(x) {
		return x
	}
	if x < 0 && x >= -0.5 {
		return math.Copysign(0, -1)
	}
	return math.Floor(x + 0.5)
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x
}

func fround(x float64) float64 { return float64(float32(x)) }

// pow differs from math.Pow where the exponent is NaN or the base is ±1
// with an infinite exponent.
func pow(x, y float64) float64 {
	if math.IsNaN(y) {
		return math.NaN()
	}
	if math.Abs(x) == 1 && math.IsInf(y, 0) {
		return math.NaN()
	}
	return math.Pow(x, y)
}

// extremum implements max and min: NaN wins, and +0 beats -0 for max.
func extremum(init float64, isMax bool) Native {
	return func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		result := init
		for _, a := range args {
			x, err := runtime.ToNumber(a)
			if err != nil {
				return nil, err
			}
			switch {
			case math.IsNaN(result):
			case math.IsNaN(x):
				result = x
			case isMax && (x > result || x == 0 && result == 0 && !math.Signbit(x)):
				result = x
			case !isMax && (x < result || x == 0 && result == 0 && math.Signbit(x)):
				result = x
			}
		}
		return runtime.NewNumber(result), nil
	}
}

func mathHypot(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	nums := make([]float64, len(args))
	for i, a := range args {
		x, err := runtime.ToNumber(a)
		if err != nil {
			return nil, err
		}
		nums[i] = x
	}
	sum, sawNaN := 0.0, false
	for _, x := range nums {
		if math.IsInf(x, 0) {
			return runtime.PosInf, nil
		}
		if math.IsNaN(x) {
			sawNaN = true
		}
		sum = math.Hypot(sum, x)
	}
	if sawNaN {
		return runtime.NaN, nil
	}
	return runtime.NewNumber(sum), nil
}

func mathClz32(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, err := runtime.ToUint32(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(bits.LeadingZeros32(n))), nil
}

func mathImul(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	a, err := runtime.ToInt32(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	b, err := runtime.ToInt32(argAt(args, 1))
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(a * b)), nil
}

func mathRandom(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewNumber(rand.Float64()), nil
}
