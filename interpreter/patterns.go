package interpreter

import (
	"github.com/dop251/goja/ast"

	"github.com/example/jscore/runtime"
)

// bindMode selects how identifiers in a target receive their value:
// assignment through the scope chain, or initialization of a binding
// already created in env.
type bindMode int

const (
	bindAssign bindMode = iota
	bindInit
)

// bindTarget stores v into an identifier, member expression or
// destructuring pattern.
func (interp *Interpreter) bindTarget(target ast.Expression, v *runtime.Value, env runtime.Environment, mode bindMode) error {
	switch t := target.(type) {
	case *ast.Identifier:
		name := t.Name.String()
		if mode == bindInit {
			env.InitializeBinding(name, v)
			return nil
		}
		return runtime.ResolveBinding(env, name, interp.strict()).Write(interp.realm, v)
	case *ast.AssignExpression:
		if v.IsUndefined() {
			var err error
			if v, err = interp.evalNamed(t.Right, env, targetName(t.Left)); err != nil {
				return err
			}
		}
		return interp.bindTarget(t.Left, v, env, mode)
	case *ast.Binding:
		if v.IsUndefined() && t.Initializer != nil {
			var err error
			if v, err = interp.evalNamed(t.Initializer, env, targetName(t.Target)); err != nil {
				return err
			}
		}
		return interp.bindTarget(t.Target, v, env, mode)
	case *ast.ArrayPattern:
		return interp.bindArray(t, v, env, mode)
	case *ast.ObjectPattern:
		return interp.bindObject(t, v, env, mode)
	case *ast.DotExpression, *ast.BracketExpression:
		ref, err := interp.evalRef(t, env)
		if err != nil {
			return err
		}
		return ref.Write(interp.realm, v)
	}
	return runtime.NewSyntaxError("Invalid destructuring assignment target")
}

func (interp *Interpreter) bindArray(t *ast.ArrayPattern, v *runtime.Value, env runtime.Environment, mode bindMode) error {
	it, err := interp.realm.GetIterator(v)
	if err != nil {
		return err
	}
	err = interp.bindElements(t, it, env, mode)
	it.Close()
	return err
}

// bindElements pulls one value per element, in order, so defaults and
// targets observe the iterator as it advances.
func (interp *Interpreter) bindElements(t *ast.ArrayPattern, it *runtime.Iterator, env runtime.Environment, mode bindMode) error {
	for _, el := range t.Elements {
		item, _, err := it.Step()
		if err != nil {
			return err
		}
		if el == nil {
			continue
		}
		if err := interp.bindTarget(el, item, env, mode); err != nil {
			return err
		}
	}
	if t.Rest == nil {
		return nil
	}
	var rest []*runtime.Value
	for {
		item, ok, err := it.Step()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		rest = append(rest, item)
	}
	return interp.bindTarget(t.Rest, interp.realm.NewArrayValue(rest), env, mode)
}

func (interp *Interpreter) bindObject(t *ast.ObjectPattern, v *runtime.Value, env runtime.Environment, mode bindMode) error {
	if v.IsNullish() {
		return runtime.NewTypeError("Cannot destructure '%s' as it is %s.", runtime.Display(v), runtime.Display(v))
	}
	var used []runtime.PropertyKey
	for _, prop := range t.Properties {
		switch p := prop.(type) {
		case *ast.PropertyShort:
			name := p.Name.Name.String()
			key := runtime.StrKey(name)
			val, err := runtime.NewPropertyReference(v, key, false).Read(interp.realm)
			if err != nil {
				return err
			}
			if val.IsUndefined() && p.Initializer != nil {
				if val, err = interp.evalNamed(p.Initializer, env, name); err != nil {
					return err
				}
			}
			if err := interp.bindTarget(&p.Name, val, env, mode); err != nil {
				return err
			}
			used = append(used, key)
		case *ast.PropertyKeyed:
			key, err := interp.propertyKey(p.Key, p.Computed, env)
			if err != nil {
				return err
			}
			val, err := runtime.NewPropertyReference(v, key, false).Read(interp.realm)
			if err != nil {
				return err
			}
			if err := interp.bindTarget(p.Value, val, env, mode); err != nil {
				return err
			}
			used = append(used, key)
		}
	}
	if t.Rest == nil {
		return nil
	}
	rest := interp.realm.NewPlainObject()
	if err := interp.copyDataProperties(rest, v, used); err != nil {
		return err
	}
	return interp.bindTarget(t.Rest, runtime.NewObject(rest), env, mode)
}
