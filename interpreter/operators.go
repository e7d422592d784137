package interpreter

import (
	"math"

	"github.com/dop251/goja/token"

	"github.com/example/jscore/runtime"
)

// comparison is the result of the abstract relational comparison;
// cmpUndefined means a NaN was involved.
type comparison int

const (
	cmpFalse comparison = iota
	cmpTrue
	cmpUndefined
)

// binaryOp applies a non-short-circuiting binary operator to evaluated
// operands.
func (interp *Interpreter) binaryOp(op token.Token, left, right *runtime.Value) (*runtime.Value, error) {
	switch op {
	case token.PLUS:
		return add(left, right)
	case token.STRICT_EQUAL:
		return runtime.NewBool(runtime.StrictEquals(left, right)), nil
	case token.STRICT_NOT_EQUAL:
		return runtime.NewBool(!runtime.StrictEquals(left, right)), nil
	case token.EQUAL, token.NOT_EQUAL:
		eq, err := runtime.LooseEquals(left, right)
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(eq == (op == token.EQUAL)), nil
	case token.LESS:
		c, err := lessThan(left, right, true)
		return runtime.NewBool(c == cmpTrue), err
	case token.GREATER:
		c, err := lessThan(right, left, false)
		return runtime.NewBool(c == cmpTrue), err
	case token.LESS_OR_EQUAL:
		c, err := lessThan(right, left, false)
		return runtime.NewBool(c == cmpFalse), err
	case token.GREATER_OR_EQUAL:
		c, err := lessThan(left, right, true)
		return runtime.NewBool(c == cmpFalse), err
	case token.INSTANCEOF:
		return interp.instanceOf(left, right)
	case token.IN:
		if !right.IsObject() {
			return nil, runtime.NewTypeError("Cannot use 'in' operator to search for '%s' in %s", runtime.Display(left), runtime.Display(right))
		}
		key, err := runtime.ToPropertyKey(left)
		if err != nil {
			return nil, err
		}
		ok, err := right.Object.HasProperty(key)
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(ok), nil
	}

	a, err := runtime.ToNumeric(left)
	if err != nil {
		return nil, err
	}
	b, err := runtime.ToNumeric(right)
	if err != nil {
		return nil, err
	}
	switch op {
	case token.MINUS:
		return runtime.NewNumber(a - b), nil
	case token.MULTIPLY:
		return runtime.NewNumber(a * b), nil
	case token.SLASH:
		return runtime.NewNumber(a / b), nil
	case token.REMAINDER:
		return runtime.NewNumber(math.Mod(a, b)), nil
	case token.EXPONENT:
		return runtime.NewNumber(jsPow(a, b)), nil
	case token.AND:
		return runtime.NewNumber(float64(runtime.Int32(a) & runtime.Int32(b))), nil
	case token.OR:
		return runtime.NewNumber(float64(runtime.Int32(a) | runtime.Int32(b))), nil
	case token.EXCLUSIVE_OR:
		return runtime.NewNumber(float64(runtime.Int32(a) ^ runtime.Int32(b))), nil
	case token.SHIFT_LEFT:
		return runtime.NewNumber(float64(runtime.Int32(a) << (runtime.Uint32(b) & 31))), nil
	case token.SHIFT_RIGHT:
		return runtime.NewNumber(float64(runtime.Int32(a) >> (runtime.Uint32(b) & 31))), nil
	case token.UNSIGNED_SHIFT_RIGHT:
		return runtime.NewNumber(float64(runtime.Uint32(a) >> (runtime.Uint32(b) & 31))), nil
	}
	return nil, runtime.NewSyntaxError("Unexpected token %s", op)
}

// add implements +: string concatenation when either primitive operand is
// a string, numeric addition otherwise.
func add(left, right *runtime.Value) (*runtime.Value, error) {
	lp, err := runtime.ToPrimitive(left, runtime.HintDefault)
	if err != nil {
		return nil, err
	}
	rp, err := runtime.ToPrimitive(right, runtime.HintDefault)
	if err != nil {
		return nil, err
	}
	if lp.Type == runtime.TypeString || rp.Type == runtime.TypeString {
		ls, err := runtime.ToString(lp)
		if err != nil {
			return nil, err
		}
		rs, err := runtime.ToString(rp)
		if err != nil {
			return nil, err
		}
		return runtime.NewString(ls + rs), nil
	}
	a, err := runtime.ToNumeric(lp)
	if err != nil {
		return nil, err
	}
	b, err := runtime.ToNumeric(rp)
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(a + b), nil
}

// lessThan computes x < y. leftFirst fixes the order in which the
// operands are converted.
func lessThan(x, y *runtime.Value, leftFirst bool) (comparison, error) {
	var px, py *runtime.Value
	var err error
	if leftFirst {
		if px, err = runtime.ToPrimitive(x, runtime.HintNumber); err != nil {
			return cmpFalse, err
		}
		if py, err = runtime.ToPrimitive(y, runtime.HintNumber); err != nil {
			return cmpFalse, err
		}
	} else {
		if py, err = runtime.ToPrimitive(y, runtime.HintNumber); err != nil {
			return cmpFalse, err
		}
		if px, err = runtime.ToPrimitive(x, runtime.HintNumber); err != nil {
			return cmpFalse, err
		}
	}
	if px.Type == runtime.TypeString && py.Type == runtime.TypeString {
		if runtime.CompareStrings(px.Str, py.Str) < 0 {
			return cmpTrue, nil
		}
		return cmpFalse, nil
	}
	nx, err := runtime.ToNumeric(px)
	if err != nil {
		return cmpFalse, err
	}
	ny, err := runtime.ToNumeric(py)
	if err != nil {
		return cmpFalse, err
	}
	if math.IsNaN(nx) || math.IsNaN(ny) {
		return cmpUndefined, nil
	}
	if nx < ny {
		return cmpTrue, nil
	}
	return cmpFalse, nil
}

func jsPow(base, exp float64) float64 {
	switch {
	case math.IsNaN(exp):
		return math.NaN()
	case exp == 0:
		return 1
	case (base == 1 || base == -1) && math.IsInf(exp, 0):
		return math.NaN()
	}
	return math.Pow(base, exp)
}

func (interp *Interpreter) instanceOf(v, target *runtime.Value) (*runtime.Value, error) {
	if !target.IsObject() {
		return nil, runtime.NewTypeError("Right-hand side of 'instanceof' is not an object")
	}
	h, err := runtime.GetMethod(interp.realm, target, runtime.SymKey(runtime.SymHasInstance))
	if err != nil {
		return nil, err
	}
	if h != nil {
		res, err := h.Call(target, []*runtime.Value{v})
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(res.ToBoolean()), nil
	}
	if !runtime.IsCallable(target) {
		return nil, runtime.NewTypeError("Right-hand side of 'instanceof' is not callable")
	}
	ok, err := runtime.OrdinaryHasInstance(target, v)
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(ok), nil
}
