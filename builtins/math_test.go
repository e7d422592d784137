package builtins

import (
	"math"
	"testing"

	"github.com/example/jscore/runtime"
)

func sameNumber(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b && math.Signbit(a) == math.Signbit(b)
}

func mathFn(t *testing.T, r *runtime.Realm, name string) *runtime.Value {
	t.Helper()
	return getProp(t, global(t, r, "Math"), name)
}

func TestMathConstants(t *testing.T) {
	r := newTestRealm()
	m := global(t, r, "Math")
	if got := getProp(t, m, "PI"); got.Number != math.Pi {
		t.Errorf("PI: got %v", got.Number)
	}
	if got := getProp(t, m, "SQRT1_2"); math.Abs(got.Number-math.Sqrt(0.5)) > 1e-16 {
		t.Errorf("SQRT1_2: got %v", got.Number)
	}
	p, _ := m.Object.GetOwnProperty(runtime.StrKey("E"))
	if p.Writable || p.Enumerable || p.Configurable {
		t.Error("Math.E should be read-only")
	}
	tag, _ := m.Object.Get(runtime.SymKey(runtime.SymToStringTag))
	if tag.Str != "Math" {
		t.Errorf("toStringTag: got %s", inspect(tag))
	}
}

func TestMathUnary(t *testing.T) {
	r := newTestRealm()
	negZero := math.Copysign(0, -1)
	tests := []struct {
		fn   string
		in   float64
		want float64
	}{
		{"abs", -5, 5},
		{"floor", 3.7, 3},
		{"floor", -3.2, -4},
		{"ceil", 3.2, 4},
		{"ceil", -0.5, negZero},
		{"round", 3.5, 4},
		{"round", 3.4, 3},
		{"round", -3.5, -3},
		{"round", -0.4, negZero},
		{"round", 0.4, 0},
		{"sign", -3, -1},
		{"sign", 7, 1},
		{"sign", negZero, negZero},
		{"sign", math.NaN(), math.NaN()},
		{"trunc", 4.7, 4},
		{"trunc", -4.7, -4},
		{"sqrt", 16, 4},
		{"sqrt", -1, math.NaN()},
		{"cbrt", 27, 3},
		{"fround", 5.5, 5.5},
		{"fround", 5.05, float64(float32(5.05))},
		{"log2", 8, 3},
		{"exp", 0, 1},
	}
	for _, tt := range tests {
		got := invoke(t, mathFn(t, r, tt.fn), runtime.Undefined, num(tt.in))
		if !sameNumber(got.Number, tt.want) {
			t.Errorf("Math.%s(%v): got %v, want %v", tt.fn, tt.in, got.Number, tt.want)
		}
	}
	if got := invoke(t, mathFn(t, r, "abs"), runtime.Undefined, str("-2")); got.Number != 2 {
		t.Errorf("Math.abs('-2'): got %v", got.Number)
	}
	if got := invoke(t, mathFn(t, r, "abs"), runtime.Undefined); !math.IsNaN(got.Number) {
		t.Errorf("Math.abs(): got %v", got.Number)
	}
}

func TestMathMinMax(t *testing.T) {
	r := newTestRealm()
	negZero := math.Copysign(0, -1)
	tests := []struct {
		name string
		fn   Native
		args []float64
		want float64
	}{
		{"max", extremum(math.Inf(-1), true), []float64{1, 5, 3}, 5},
		{"max empty", extremum(math.Inf(-1), true), nil, math.Inf(-1)},
		{"max NaN", extremum(math.Inf(-1), true), []float64{1, math.NaN(), 3}, math.NaN()},
		{"max zeros", extremum(math.Inf(-1), true), []float64{negZero, 0}, 0},
		{"min", extremum(math.Inf(1), false), []float64{4, -2, 3}, -2},
		{"min empty", extremum(math.Inf(1), false), nil, math.Inf(1)},
		{"min zeros", extremum(math.Inf(1), false), []float64{0, negZero}, negZero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := make([]*runtime.Value, len(tt.args))
			for i, f := range tt.args {
				args[i] = num(f)
			}
			got := call(t, r, tt.fn, runtime.Undefined, args...)
			if !sameNumber(got.Number, tt.want) {
				t.Errorf("got %v, want %v", got.Number, tt.want)
			}
		})
	}
}

func TestMathPow(t *testing.T) {
	tests := []struct{ x, y, want float64 }{
		{2, 10, 1024},
		{4, 0.5, 2},
		{2, -1, 0.5},
		{math.NaN(), 0, 1},
		{1, math.NaN(), math.NaN()},
		{1, math.Inf(1), math.NaN()},
		{-1, math.Inf(-1), math.NaN()},
		{0, -1, math.Inf(1)},
	}
	for _, tt := range tests {
		if got := pow(tt.x, tt.y); !sameNumber(got, tt.want) {
			t.Errorf("pow(%v, %v): got %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestMathRandom(t *testing.T) {
	r := newTestRealm()
	for range 100 {
		v := call(t, r, mathRandom, runtime.Undefined)
		if v.Number < 0 || v.Number >= 1 {
			t.Fatalf("random: %v out of [0, 1)", v.Number)
		}
	}
}

func TestMathIntegerOps(t *testing.T) {
	r := newTestRealm()
	tests := []struct {
		name string
		fn   Native
		args []*runtime.Value
		want float64
	}{
		{"clz32 1", mathClz32, []*runtime.Value{num(1)}, 31},
		{"clz32 0", mathClz32, []*runtime.Value{num(0)}, 32},
		{"clz32 negative", mathClz32, []*runtime.Value{num(-1)}, 0},
		{"clz32 undefined", mathClz32, nil, 32},
		{"imul", mathImul, []*runtime.Value{num(3), num(4)}, 12},
		{"imul overflow", mathImul, []*runtime.Value{num(0xffffffff), num(5)}, -5},
		{"imul wrap", mathImul, []*runtime.Value{num(0x7fffffff), num(2)}, -2},
		{"hypot", mathHypot, []*runtime.Value{num(3), num(4)}, 5},
		{"hypot empty", mathHypot, nil, 0},
		{"hypot infinity beats NaN", mathHypot, []*runtime.Value{runtime.NaN, runtime.NegInf}, math.Inf(1)},
		{"hypot NaN", mathHypot, []*runtime.Value{runtime.NaN, num(1)}, math.NaN()},
		{"atan2", binary(math.Atan2), []*runtime.Value{num(0), num(-1)}, math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := call(t, r, tt.fn, runtime.Undefined, tt.args...)
			if !sameNumber(got.Number, tt.want) {
				t.Errorf("got %v, want %v", got.Number, tt.want)
			}
		})
	}
}
