package interpreter

import (
	"errors"
	"math/big"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"

	"github.com/example/jscore/builtins"
	"github.com/example/jscore/runtime"
)

// errShortCircuit unwinds an optional chain whose base is nullish. It
// never escapes the enclosing OptionalChain node.
var errShortCircuit = errors.New("optional chain short-circuited")

func (interp *Interpreter) eval(expr ast.Expression, env runtime.Environment) (*runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return numberLiteral(e)
	case *ast.StringLiteral:
		return runtime.NewString(e.Value.String()), nil
	case *ast.BooleanLiteral:
		return runtime.NewBool(e.Value), nil
	case *ast.NullLiteral:
		return runtime.Null, nil
	case *ast.TemplateLiteral:
		if e.Tag != nil {
			return interp.evalTaggedTemplate(e, env)
		}
		return interp.evalTemplate(e, env)
	case *ast.RegExpLiteral:
		return builtins.NewRegExp(interp.realm, e.Pattern, e.Flags)
	case *ast.Identifier:
		return runtime.ResolveBinding(env, e.Name.String(), interp.strict()).Read(interp.realm)
	case *ast.ThisExpression:
		return resolveThis(env)
	case *ast.ArrayLiteral:
		return interp.evalArray(e, env)
	case *ast.ObjectLiteral:
		return interp.evalObject(e, env)
	case *ast.FunctionLiteral:
		return interp.evalFunction(e, env, "")
	case *ast.ArrowFunctionLiteral:
		return interp.evalArrow(e, env, "")
	case *ast.ClassLiteral:
		return interp.evalClass(e, env, "")
	case *ast.DotExpression, *ast.BracketExpression:
		ref, err := interp.evalRef(e, env)
		if err != nil {
			return nil, err
		}
		return ref.Read(interp.realm)
	case *ast.CallExpression:
		return interp.evalCall(e, env)
	case *ast.NewExpression:
		return interp.evalNew(e, env)
	case *ast.UnaryExpression:
		return interp.evalUnary(e, env)
	case *ast.BinaryExpression:
		return interp.evalBinary(e, env)
	case *ast.AssignExpression:
		return interp.evalAssign(e, env)
	case *ast.ConditionalExpression:
		test, err := interp.eval(e.Test, env)
		if err != nil {
			return nil, err
		}
		if test.ToBoolean() {
			return interp.eval(e.Consequent, env)
		}
		return interp.eval(e.Alternate, env)
	case *ast.SequenceExpression:
		var v *runtime.Value
		for _, item := range e.Sequence {
			var err error
			if v, err = interp.eval(item, env); err != nil {
				return nil, err
			}
		}
		return v, nil
	case *ast.OptionalChain:
		v, err := interp.eval(e.Expression, env)
		if errors.Is(err, errShortCircuit) {
			return runtime.Undefined, nil
		}
		return v, err
	case *ast.Optional:
		v, err := interp.eval(e.Expression, env)
		if err != nil {
			return nil, err
		}
		if v.IsNullish() {
			return nil, errShortCircuit
		}
		return v, nil
	case *ast.MetaProperty:
		if e.Meta.Name == "new" && e.Property.Name == "target" {
			if fenv, ok := runtime.ThisEnvironment(env).(*runtime.FunctionEnv); ok {
				return fenv.NewTarget, nil
			}
			return runtime.Undefined, nil
		}
		return nil, unsupported("%s.%s", e.Meta.Name, e.Property.Name)
	case *ast.SuperExpression:
		return nil, runtime.NewSyntaxError("'super' keyword unexpected here")
	case *ast.YieldExpression:
		return nil, unsupported("yield")
	case *ast.AwaitExpression:
		return nil, unsupported("await")
	case *ast.PrivateDotExpression:
		return nil, unsupported("private member #%s", e.Identifier.Name)
	case *ast.SpreadElement, *ast.BadExpression:
		return nil, runtime.NewSyntaxError("Unexpected token")
	}
	return nil, runtime.Fatal(runtime.ErrInvariant, "unknown expression %T", expr)
}

func numberLiteral(e *ast.NumberLiteral) (*runtime.Value, error) {
	switch n := e.Value.(type) {
	case int64:
		return runtime.NewNumber(float64(n)), nil
	case float64:
		return runtime.NewNumber(n), nil
	case *big.Int:
		return nil, unsupported("BigInt literal %s", e.Literal)
	}
	return nil, runtime.NewSyntaxError("Invalid number %s", e.Literal)
}

func resolveThis(env runtime.Environment) (*runtime.Value, error) {
	switch e := runtime.ThisEnvironment(env).(type) {
	case *runtime.FunctionEnv:
		return e.This()
	case *runtime.GlobalEnv:
		return runtime.NewObject(e.Object), nil
	}
	return runtime.Undefined, nil
}

// evalNamed evaluates an initializer, naming it after its binding when it
// is an anonymous function or class.
func (interp *Interpreter) evalNamed(expr ast.Expression, env runtime.Environment, name string) (*runtime.Value, error) {
	if name != "" {
		switch e := expr.(type) {
		case *ast.FunctionLiteral:
			if e.Name == nil {
				return interp.evalFunction(e, env, name)
			}
		case *ast.ArrowFunctionLiteral:
			return interp.evalArrow(e, env, name)
		case *ast.ClassLiteral:
			if e.Name == nil {
				return interp.evalClass(e, env, name)
			}
		}
	}
	return interp.eval(expr, env)
}

func targetName(target ast.Expression) string {
	if id, ok := target.(*ast.Identifier); ok {
		return id.Name.String()
	}
	return ""
}

func (interp *Interpreter) evalTemplate(e *ast.TemplateLiteral, env runtime.Environment) (*runtime.Value, error) {
	var sb strings.Builder
	for i, el := range e.Elements {
		sb.WriteString(el.Parsed.String())
		if i < len(e.Expressions) {
			v, err := interp.eval(e.Expressions[i], env)
			if err != nil {
				return nil, err
			}
			s, err := runtime.ToString(v)
			if err != nil {
				return nil, err
			}
			sb.WriteString(s)
		}
	}
	return runtime.NewString(sb.String()), nil
}

// evalTaggedTemplate calls the tag with a frozen strings array (cooked
// strings plus a frozen raw array) followed by the substitutions.
func (interp *Interpreter) evalTaggedTemplate(e *ast.TemplateLiteral, env runtime.Environment) (*runtime.Value, error) {
	fn, this, err := interp.evalCallee(e.Tag, env)
	if err != nil {
		return nil, err
	}
	cooked := make([]*runtime.Value, len(e.Elements))
	raw := make([]*runtime.Value, len(e.Elements))
	for i, el := range e.Elements {
		cooked[i] = runtime.Undefined
		if el.Valid {
			cooked[i] = runtime.NewString(el.Parsed.String())
		}
		raw[i] = runtime.NewString(el.Literal)
	}
	rawArr := runtime.NewArray(interp.realm.ArrayPrototype, raw)
	rawArr.Freeze()
	strs := runtime.NewArray(interp.realm.ArrayPrototype, cooked)
	strs.DefineData("raw", runtime.NewObject(rawArr), runtime.AttrNone)
	strs.Freeze()

	args := []*runtime.Value{runtime.NewObject(strs)}
	for _, sub := range e.Expressions {
		v, err := interp.eval(sub, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	if !runtime.IsCallable(fn) {
		return nil, runtime.NewTypeError("%s is not a function", describe(e.Tag))
	}
	return fn.Object.Call(this, args)
}

func (interp *Interpreter) evalArray(e *ast.ArrayLiteral, env runtime.Environment) (*runtime.Value, error) {
	arr := runtime.NewArray(interp.realm.ArrayPrototype, nil)
	n := 0
	for _, el := range e.Value {
		switch el := el.(type) {
		case nil:
			n++
		case *ast.SpreadElement:
			src, err := interp.eval(el.Expression, env)
			if err != nil {
				return nil, err
			}
			err = interp.realm.Iterate(src, func(v *runtime.Value) (bool, error) {
				arr.CreateDataProperty(runtime.IndexKey(n), v)
				n++
				return true, nil
			})
			if err != nil {
				return nil, err
			}
		default:
			v, err := interp.eval(el, env)
			if err != nil {
				return nil, err
			}
			arr.CreateDataProperty(runtime.IndexKey(n), v)
			n++
		}
	}
	if _, err := arr.Set(runtime.StrKey("length"), runtime.NewNumber(float64(n)), runtime.NewObject(arr)); err != nil {
		return nil, err
	}
	return runtime.NewObject(arr), nil
}

func (interp *Interpreter) evalObject(e *ast.ObjectLiteral, env runtime.Environment) (*runtime.Value, error) {
	obj := interp.realm.NewPlainObject()
	for _, prop := range e.Value {
		switch p := prop.(type) {
		case *ast.PropertyShort:
			name := p.Name.Name.String()
			v, err := runtime.ResolveBinding(env, name, interp.strict()).Read(interp.realm)
			if err != nil {
				return nil, err
			}
			obj.CreateDataProperty(runtime.StrKey(name), v)
		case *ast.PropertyKeyed:
			if !p.Computed && p.Kind == ast.PropertyKindValue && isProtoKey(p.Key) {
				v, err := interp.eval(p.Value, env)
				if err != nil {
					return nil, err
				}
				switch {
				case v.IsObject():
					obj.SetPrototype(v.Object)
				case v.Type == runtime.TypeNull:
					obj.SetPrototype(nil)
				}
				continue
			}
			key, err := interp.propertyKey(p.Key, p.Computed, env)
			if err != nil {
				return nil, err
			}
			if p.Kind == ast.PropertyKindValue {
				v, err := interp.evalNamed(p.Value, env, functionName(key))
				if err != nil {
					return nil, err
				}
				obj.CreateDataProperty(key, v)
				continue
			}
			lit, ok := p.Value.(*ast.FunctionLiteral)
			if !ok {
				return nil, runtime.NewSyntaxError("Unexpected token")
			}
			if err := interp.defineMethod(obj, key, p.Kind, lit, env, true); err != nil {
				return nil, err
			}
		case *ast.SpreadElement:
			src, err := interp.eval(p.Expression, env)
			if err != nil {
				return nil, err
			}
			if err := interp.copyDataProperties(obj, src, nil); err != nil {
				return nil, err
			}
		}
	}
	return runtime.NewObject(obj), nil
}

func isProtoKey(key ast.Expression) bool {
	switch k := key.(type) {
	case *ast.StringLiteral:
		return k.Value.String() == "__proto__"
	case *ast.Identifier:
		return k.Name.String() == "__proto__"
	}
	return false
}

// copyDataProperties copies src's own enumerable properties onto target,
// skipping excluded keys.
func (interp *Interpreter) copyDataProperties(target *runtime.Object, src *runtime.Value, excluded []runtime.PropertyKey) error {
	if src.IsNullish() {
		return nil
	}
	from, err := interp.realm.ToObject(src)
	if err != nil {
		return err
	}
	for key := range from.OwnKeys() {
		if containsKey(excluded, key) {
			continue
		}
		p, ok := from.GetOwnProperty(key)
		if !ok || !p.Enumerable {
			continue
		}
		v, err := from.GetWithReceiver(key, src)
		if err != nil {
			return err
		}
		target.CreateDataProperty(key, v)
	}
	return nil
}

func containsKey(keys []runtime.PropertyKey, key runtime.PropertyKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// propertyKey evaluates an object literal or class member key.
func (interp *Interpreter) propertyKey(key ast.Expression, computed bool, env runtime.Environment) (runtime.PropertyKey, error) {
	if computed {
		v, err := interp.eval(key, env)
		if err != nil {
			return runtime.PropertyKey{}, err
		}
		return runtime.ToPropertyKey(v)
	}
	switch k := key.(type) {
	case *ast.StringLiteral:
		return runtime.StrKey(k.Value.String()), nil
	case *ast.Identifier:
		return runtime.StrKey(k.Name.String()), nil
	case *ast.NumberLiteral:
		v, err := numberLiteral(k)
		if err != nil {
			return runtime.PropertyKey{}, err
		}
		return runtime.StrKey(runtime.NumberToString(v.Number)), nil
	case *ast.PrivateIdentifier:
		return runtime.PropertyKey{}, unsupported("private member #%s", k.Name)
	}
	return runtime.PropertyKey{}, runtime.NewSyntaxError("Unexpected token")
}

// evalRef resolves an expression to an assignable location.
func (interp *Interpreter) evalRef(expr ast.Expression, env runtime.Environment) (runtime.Reference, error) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return runtime.ResolveBinding(env, e.Name.String(), interp.strict()), nil
	case *ast.DotExpression:
		key := runtime.StrKey(e.Identifier.Name.String())
		if _, ok := e.Left.(*ast.SuperExpression); ok {
			return interp.superRef(key, env)
		}
		base, err := interp.eval(e.Left, env)
		if err != nil {
			return runtime.Reference{}, err
		}
		return runtime.NewPropertyReference(base, key, interp.strict()), nil
	case *ast.BracketExpression:
		if _, ok := e.Left.(*ast.SuperExpression); ok {
			kv, err := interp.eval(e.Member, env)
			if err != nil {
				return runtime.Reference{}, err
			}
			key, err := runtime.ToPropertyKey(kv)
			if err != nil {
				return runtime.Reference{}, err
			}
			return interp.superRef(key, env)
		}
		base, err := interp.eval(e.Left, env)
		if err != nil {
			return runtime.Reference{}, err
		}
		kv, err := interp.eval(e.Member, env)
		if err != nil {
			return runtime.Reference{}, err
		}
		if base.IsNullish() {
			return runtime.Reference{}, runtime.NewTypeError("Cannot read properties of %s (reading '%s')", runtime.Display(base), runtime.Display(kv))
		}
		key, err := runtime.ToPropertyKey(kv)
		if err != nil {
			return runtime.Reference{}, err
		}
		return runtime.NewPropertyReference(base, key, interp.strict()), nil
	}
	return runtime.Reference{}, runtime.NewSyntaxError("Invalid left-hand side in assignment")
}

// superRef resolves super[key] against the home object of the nearest
// method.
func (interp *Interpreter) superRef(key runtime.PropertyKey, env runtime.Environment) (runtime.Reference, error) {
	fenv, ok := runtime.ThisEnvironment(env).(*runtime.FunctionEnv)
	if !ok || fenv.HomeObject == nil {
		return runtime.Reference{}, runtime.NewSyntaxError("'super' keyword unexpected here")
	}
	this, err := fenv.This()
	if err != nil {
		return runtime.Reference{}, err
	}
	home := fenv.HomeObject.GetPrototype()
	if home == nil {
		return runtime.Reference{}, runtime.NewTypeError("Cannot read properties of null (reading '%s')", key.String())
	}
	return runtime.NewSuperReference(runtime.NewObject(home), key, this, true), nil
}

// evalCallee evaluates the callee of a call and the this value it is
// called with.
func (interp *Interpreter) evalCallee(expr ast.Expression, env runtime.Environment) (fn, this *runtime.Value, err error) {
	switch c := expr.(type) {
	case *ast.Optional:
		fn, this, err := interp.evalCallee(c.Expression, env)
		if err != nil {
			return nil, nil, err
		}
		if fn.IsNullish() {
			return nil, nil, errShortCircuit
		}
		return fn, this, nil
	case *ast.DotExpression, *ast.BracketExpression:
		ref, err := interp.evalRef(c, env)
		if err != nil {
			return nil, nil, err
		}
		fn, err := ref.Read(interp.realm)
		if err != nil {
			return nil, nil, err
		}
		return fn, ref.Receiver(), nil
	}
	fn, err = interp.eval(expr, env)
	return fn, runtime.Undefined, err
}

func (interp *Interpreter) evalCall(e *ast.CallExpression, env runtime.Environment) (*runtime.Value, error) {
	if _, ok := e.Callee.(*ast.SuperExpression); ok {
		return interp.evalSuperCall(e.ArgumentList, env)
	}
	fn, this, err := interp.evalCallee(e.Callee, env)
	if err != nil {
		return nil, err
	}
	args, err := interp.evalArgs(e.ArgumentList, env)
	if err != nil {
		return nil, err
	}
	if !runtime.IsCallable(fn) {
		return nil, runtime.NewTypeError("%s is not a function", describe(e.Callee))
	}
	return fn.Object.Call(this, args)
}

func (interp *Interpreter) evalNew(e *ast.NewExpression, env runtime.Environment) (*runtime.Value, error) {
	callee, err := interp.eval(e.Callee, env)
	if err != nil {
		return nil, err
	}
	args, err := interp.evalArgs(e.ArgumentList, env)
	if err != nil {
		return nil, err
	}
	if !runtime.IsConstructor(callee) {
		return nil, runtime.NewTypeError("%s is not a constructor", describe(e.Callee))
	}
	return callee.Object.Construct(args, callee.Object)
}

func (interp *Interpreter) evalArgs(list []ast.Expression, env runtime.Environment) ([]*runtime.Value, error) {
	args := make([]*runtime.Value, 0, len(list))
	for _, a := range list {
		if spread, ok := a.(*ast.SpreadElement); ok {
			src, err := interp.eval(spread.Expression, env)
			if err != nil {
				return nil, err
			}
			err = interp.realm.Iterate(src, func(v *runtime.Value) (bool, error) {
				args = append(args, v)
				return true, nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}
		v, err := interp.eval(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// describe renders a callee expression for error messages.
func describe(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Name.String()
	case *ast.DotExpression:
		return describe(e.Left) + "." + e.Identifier.Name.String()
	case *ast.BracketExpression:
		return describe(e.Left) + "[...]"
	case *ast.Optional:
		return describe(e.Expression)
	case *ast.OptionalChain:
		return describe(e.Expression)
	case *ast.ThisExpression:
		return "this"
	case *ast.SuperExpression:
		return "super"
	case *ast.CallExpression:
		return describe(e.Callee) + "(...)"
	}
	return "expression"
}

func (interp *Interpreter) evalUnary(e *ast.UnaryExpression, env runtime.Environment) (*runtime.Value, error) {
	switch e.Operator {
	case token.TYPEOF:
		if id, ok := e.Operand.(*ast.Identifier); ok {
			ref := runtime.ResolveBinding(env, id.Name.String(), interp.strict())
			if ref.IsUnresolvable() {
				return runtime.NewString("undefined"), nil
			}
			v, err := ref.Read(interp.realm)
			if err != nil {
				return nil, err
			}
			return runtime.NewString(runtime.Typeof(v)), nil
		}
		v, err := interp.eval(e.Operand, env)
		if err != nil {
			return nil, err
		}
		return runtime.NewString(runtime.Typeof(v)), nil
	case token.DELETE:
		return interp.evalDelete(e.Operand, env)
	case token.INCREMENT, token.DECREMENT:
		return interp.evalUpdate(e, env)
	}

	v, err := interp.eval(e.Operand, env)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case token.VOID:
		return runtime.Undefined, nil
	case token.NOT:
		return runtime.NewBool(!v.ToBoolean()), nil
	case token.MINUS:
		n, err := runtime.ToNumeric(v)
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(-n), nil
	case token.PLUS:
		n, err := runtime.ToNumber(v)
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(n), nil
	case token.BITWISE_NOT:
		n, err := runtime.ToInt32(v)
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(float64(^n)), nil
	}
	return nil, runtime.NewSyntaxError("Unexpected token %s", e.Operator)
}

func (interp *Interpreter) evalDelete(operand ast.Expression, env runtime.Environment) (*runtime.Value, error) {
	switch o := operand.(type) {
	case *ast.Identifier:
		if interp.strict() {
			return nil, runtime.NewSyntaxError("Delete of an unqualified identifier in strict mode.")
		}
		ok, err := runtime.ResolveBinding(env, o.Name.String(), false).Delete(interp.realm)
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(ok), nil
	case *ast.DotExpression, *ast.BracketExpression:
		if isSuperMember(o) {
			return nil, runtime.NewReferenceError("Unsupported reference to 'super'")
		}
		ref, err := interp.evalRef(o, env)
		if err != nil {
			return nil, err
		}
		ok, err := ref.Delete(interp.realm)
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(ok), nil
	}
	if _, err := interp.eval(operand, env); err != nil {
		return nil, err
	}
	return runtime.True, nil
}

func isSuperMember(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.DotExpression:
		_, ok := e.Left.(*ast.SuperExpression)
		return ok
	case *ast.BracketExpression:
		_, ok := e.Left.(*ast.SuperExpression)
		return ok
	}
	return false
}

// evalUpdate implements prefix and postfix ++ and --.
func (interp *Interpreter) evalUpdate(e *ast.UnaryExpression, env runtime.Environment) (*runtime.Value, error) {
	ref, err := interp.evalRef(e.Operand, env)
	if err != nil {
		return nil, err
	}
	old, err := ref.Read(interp.realm)
	if err != nil {
		return nil, err
	}
	n, err := runtime.ToNumeric(old)
	if err != nil {
		return nil, err
	}
	next := n + 1
	if e.Operator == token.DECREMENT {
		next = n - 1
	}
	if err := ref.Write(interp.realm, runtime.NewNumber(next)); err != nil {
		return nil, err
	}
	if e.Postfix {
		return runtime.NewNumber(n), nil
	}
	return runtime.NewNumber(next), nil
}

func (interp *Interpreter) evalBinary(e *ast.BinaryExpression, env runtime.Environment) (*runtime.Value, error) {
	left, err := interp.eval(e.Left, env)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case token.LOGICAL_AND:
		if !left.ToBoolean() {
			return left, nil
		}
		return interp.eval(e.Right, env)
	case token.LOGICAL_OR:
		if left.ToBoolean() {
			return left, nil
		}
		return interp.eval(e.Right, env)
	case token.COALESCE:
		if !left.IsNullish() {
			return left, nil
		}
		return interp.eval(e.Right, env)
	}
	right, err := interp.eval(e.Right, env)
	if err != nil {
		return nil, err
	}
	return interp.binaryOp(e.Operator, left, right)
}

func (interp *Interpreter) evalAssign(e *ast.AssignExpression, env runtime.Environment) (*runtime.Value, error) {
	switch target := e.Left.(type) {
	case *ast.ArrayPattern, *ast.ObjectPattern:
		v, err := interp.eval(e.Right, env)
		if err != nil {
			return nil, err
		}
		return v, interp.bindTarget(target, v, env, bindAssign)
	}

	ref, err := interp.evalRef(e.Left, env)
	if err != nil {
		return nil, err
	}
	name := targetName(e.Left)
	var v *runtime.Value
	switch e.Operator {
	case token.ASSIGN:
		if v, err = interp.evalNamed(e.Right, env, name); err != nil {
			return nil, err
		}
	case token.LOGICAL_AND, token.LOGICAL_OR, token.COALESCE:
		cur, err := ref.Read(interp.realm)
		if err != nil {
			return nil, err
		}
		switch {
		case e.Operator == token.LOGICAL_AND && !cur.ToBoolean(),
			e.Operator == token.LOGICAL_OR && cur.ToBoolean(),
			e.Operator == token.COALESCE && !cur.IsNullish():
			return cur, nil
		}
		if v, err = interp.evalNamed(e.Right, env, name); err != nil {
			return nil, err
		}
	default:
		cur, err := ref.Read(interp.realm)
		if err != nil {
			return nil, err
		}
		right, err := interp.eval(e.Right, env)
		if err != nil {
			return nil, err
		}
		if v, err = interp.binaryOp(e.Operator, cur, right); err != nil {
			return nil, err
		}
	}
	if err := ref.Write(interp.realm, v); err != nil {
		return nil, err
	}
	return v, nil
}
