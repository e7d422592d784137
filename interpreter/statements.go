package interpreter

import (
	"slices"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"

	"github.com/example/jscore/runtime"
)

// execList runs statements in order. The completion value is that of the
// last statement that produced one.
func (interp *Interpreter) execList(list []ast.Statement, env runtime.Environment) (signal, error) {
	var last *runtime.Value
	for _, st := range list {
		sig, err := interp.execStatement(st, env)
		if err != nil {
			return signal{}, err
		}
		if sig.value != nil {
			last = sig.value
		}
		if sig.abrupt() {
			if sig.value == nil && sig.typ != sigReturn {
				sig.value = last
			}
			return sig, nil
		}
	}
	return signal{value: last}, nil
}

func (interp *Interpreter) execStatement(st ast.Statement, env runtime.Environment) (signal, error) {
	if err := interp.checkInterrupt(); err != nil {
		return signal{}, err
	}
	sig, err := interp.exec(st, env, nil)
	if err != nil && interp.throwIdx == 0 {
		interp.throwIdx = st.Idx0()
	}
	return sig, err
}

// exec evaluates one statement. labels holds the label set of an
// enclosing labelled statement, consumed by loops for continue.
func (interp *Interpreter) exec(st ast.Statement, env runtime.Environment, labels []string) (signal, error) {
	switch s := st.(type) {
	case *ast.ExpressionStatement:
		v, err := interp.eval(s.Expression, env)
		return signal{value: v}, err
	case *ast.VariableStatement:
		return signal{}, interp.execVar(s.List, env)
	case *ast.LexicalDeclaration:
		return signal{}, interp.execLexical(s, env)
	case *ast.FunctionDeclaration, *ast.EmptyStatement, *ast.DebuggerStatement:
		return signal{}, nil
	case *ast.ClassDeclaration:
		name := s.Class.Name.Name.String()
		v, err := interp.evalClass(s.Class, env, name)
		if err != nil {
			return signal{}, err
		}
		env.InitializeBinding(name, v)
		return signal{}, nil
	case *ast.BlockStatement:
		return interp.execBlock(s.List, env)
	case *ast.IfStatement:
		return interp.execIf(s, env)
	case *ast.WhileStatement:
		return interp.execWhile(s, env, labels)
	case *ast.DoWhileStatement:
		return interp.execDoWhile(s, env, labels)
	case *ast.ForStatement:
		return interp.execFor(s, env, labels)
	case *ast.ForInStatement:
		return interp.execForIn(s, env, labels)
	case *ast.ForOfStatement:
		return interp.execForOf(s, env, labels)
	case *ast.SwitchStatement:
		return interp.execSwitch(s, env)
	case *ast.LabelledStatement:
		label := s.Label.Name.String()
		sig, err := interp.exec(s.Statement, env, append(slices.Clip(labels), label))
		if sig.typ == sigBreak && sig.label == label {
			sig = signal{value: sig.value}
		}
		return sig, err
	case *ast.BranchStatement:
		sig := signal{typ: sigBreak}
		if s.Token == token.CONTINUE {
			sig.typ = sigContinue
		}
		if s.Label != nil {
			sig.label = s.Label.Name.String()
		}
		return sig, nil
	case *ast.ReturnStatement:
		v := runtime.Undefined
		if s.Argument != nil {
			var err error
			if v, err = interp.eval(s.Argument, env); err != nil {
				return signal{}, err
			}
		}
		return signal{typ: sigReturn, value: v}, nil
	case *ast.ThrowStatement:
		v, err := interp.eval(s.Argument, env)
		if err != nil {
			return signal{}, err
		}
		return signal{}, &runtime.Exception{Value: v}
	case *ast.TryStatement:
		return interp.execTry(s, env)
	case *ast.WithStatement:
		return signal{}, unsupported("with statement")
	case *ast.BadStatement:
		return signal{}, runtime.NewSyntaxError("Unexpected token")
	}
	return signal{}, runtime.Fatal(runtime.ErrInvariant, "unknown statement %T", st)
}

func (interp *Interpreter) execVar(list []*ast.Binding, env runtime.Environment) error {
	for _, b := range list {
		if b.Initializer == nil {
			continue
		}
		if id, ok := b.Target.(*ast.Identifier); ok {
			name := id.Name.String()
			ref := runtime.ResolveBinding(env, name, interp.strict())
			v, err := interp.evalNamed(b.Initializer, env, name)
			if err != nil {
				return err
			}
			if err := ref.Write(interp.realm, v); err != nil {
				return err
			}
			continue
		}
		v, err := interp.eval(b.Initializer, env)
		if err != nil {
			return err
		}
		if err := interp.bindTarget(b.Target, v, env, bindAssign); err != nil {
			return err
		}
	}
	return nil
}

func (interp *Interpreter) execLexical(decl *ast.LexicalDeclaration, env runtime.Environment) error {
	for _, b := range decl.List {
		v := runtime.Undefined
		if b.Initializer != nil {
			var err error
			if v, err = interp.evalNamed(b.Initializer, env, targetName(b.Target)); err != nil {
				return err
			}
		}
		if err := interp.bindTarget(b.Target, v, env, bindInit); err != nil {
			return err
		}
	}
	return nil
}

func (interp *Interpreter) execBlock(list []ast.Statement, env runtime.Environment) (signal, error) {
	if hasScopedDecls(list) {
		block := runtime.NewDeclarativeEnv(env)
		if err := interp.declareBlock(list, block); err != nil {
			return signal{}, err
		}
		env = block
	}
	return interp.execList(list, env)
}

func (interp *Interpreter) execIf(s *ast.IfStatement, env runtime.Environment) (signal, error) {
	test, err := interp.eval(s.Test, env)
	if err != nil {
		return signal{}, err
	}
	var sig signal
	switch {
	case test.ToBoolean():
		sig, err = interp.execStatement(s.Consequent, env)
	case s.Alternate != nil:
		sig, err = interp.execStatement(s.Alternate, env)
	}
	if err == nil && sig.value == nil && !sig.abrupt() {
		sig.value = runtime.Undefined
	}
	return sig, err
}

// loopState tracks a loop's label set and completion value.
type loopState struct {
	labels []string
	value  *runtime.Value
}

func newLoop(labels []string) *loopState {
	return &loopState{labels: labels, value: runtime.Undefined}
}

// next folds one body completion into the loop. It reports whether to run
// another iteration; when it does not, out is the loop's own completion.
func (l *loopState) next(sig signal) (more bool, out signal) {
	if sig.value != nil {
		l.value = sig.value
	}
	switch sig.typ {
	case sigNone:
		return true, signal{}
	case sigBreak:
		if sig.label == "" {
			return false, l.done()
		}
	case sigContinue:
		if sig.label == "" || slices.Contains(l.labels, sig.label) {
			return true, signal{}
		}
	}
	if sig.value == nil && sig.typ != sigReturn {
		sig.value = l.value
	}
	return false, sig
}

func (l *loopState) done() signal {
	return signal{value: l.value}
}

func (interp *Interpreter) execWhile(s *ast.WhileStatement, env runtime.Environment, labels []string) (signal, error) {
	loop := newLoop(labels)
	for {
		test, err := interp.eval(s.Test, env)
		if err != nil {
			return signal{}, err
		}
		if !test.ToBoolean() {
			return loop.done(), nil
		}
		sig, err := interp.execStatement(s.Body, env)
		if err != nil {
			return signal{}, err
		}
		if more, out := loop.next(sig); !more {
			return out, nil
		}
	}
}

func (interp *Interpreter) execDoWhile(s *ast.DoWhileStatement, env runtime.Environment, labels []string) (signal, error) {
	loop := newLoop(labels)
	for {
		sig, err := interp.execStatement(s.Body, env)
		if err != nil {
			return signal{}, err
		}
		if more, out := loop.next(sig); !more {
			return out, nil
		}
		test, err := interp.eval(s.Test, env)
		if err != nil {
			return signal{}, err
		}
		if !test.ToBoolean() {
			return loop.done(), nil
		}
	}
}

func (interp *Interpreter) execFor(s *ast.ForStatement, env runtime.Environment, labels []string) (signal, error) {
	var perIteration []string
	switch init := s.Initializer.(type) {
	case *ast.ForLoopInitializerExpression:
		if _, err := interp.eval(init.Expression, env); err != nil {
			return signal{}, err
		}
	case *ast.ForLoopInitializerVarDeclList:
		if err := interp.execVar(init.List, env); err != nil {
			return signal{}, err
		}
	case *ast.ForLoopInitializerLexicalDecl:
		decl := &init.LexicalDeclaration
		loopEnv := runtime.NewDeclarativeEnv(env)
		kind := runtime.BindLet
		if decl.Token == token.CONST {
			kind = runtime.BindConst
		}
		var names []string
		for _, b := range decl.List {
			for _, name := range boundNames(b.Target) {
				loopEnv.CreateBinding(name, kind, nil)
				names = append(names, name)
			}
		}
		env = loopEnv
		if err := interp.execLexical(decl, env); err != nil {
			return signal{}, err
		}
		if kind == runtime.BindLet {
			perIteration = names
		}
	}

	loop := newLoop(labels)
	env = copyBindings(env, perIteration)
	for {
		if s.Test != nil {
			test, err := interp.eval(s.Test, env)
			if err != nil {
				return signal{}, err
			}
			if !test.ToBoolean() {
				return loop.done(), nil
			}
		}
		sig, err := interp.execStatement(s.Body, env)
		if err != nil {
			return signal{}, err
		}
		if more, out := loop.next(sig); !more {
			return out, nil
		}
		env = copyBindings(env, perIteration)
		if s.Update != nil {
			if _, err := interp.eval(s.Update, env); err != nil {
				return signal{}, err
			}
		}
	}
}

// copyBindings gives each iteration of a let-declared for loop a fresh
// copy of the loop variables, so closures capture one iteration each.
func copyBindings(env runtime.Environment, names []string) runtime.Environment {
	if len(names) == 0 {
		return env
	}
	cur := env.(*runtime.DeclarativeEnv)
	next := runtime.NewDeclarativeEnv(cur.Outer())
	for _, name := range names {
		b, _ := cur.Lookup(name)
		next.CreateBinding(name, b.Kind, b.Value)
	}
	return next
}

// forInKey is an enumerable string key and the object on the chain that
// owned it when enumeration started.
type forInKey struct {
	owner *runtime.Object
	key   runtime.PropertyKey
}

// enumerableKeys lists the enumerable string keys of obj and its
// prototypes. A key shadowed by a nearer property is reported once, or
// not at all when the nearer property is non-enumerable.
func enumerableKeys(obj *runtime.Object) ([]forInKey, error) {
	var keys []forInKey
	visited := make(map[runtime.PropertyKey]bool)
	depth := 0
	for o := obj; o != nil; o = o.GetPrototype() {
		if depth++; depth > runtime.MaxPrototypeDepth {
			return nil, runtime.Fatal(runtime.ErrPrototypeDepth, "in for-in")
		}
		for key := range o.OwnKeys() {
			if key.IsSymbol() || visited[key] {
				continue
			}
			visited[key] = true
			if p, ok := o.GetOwnProperty(key); ok && p.Enumerable {
				keys = append(keys, forInKey{owner: o, key: key})
			}
		}
	}
	return keys, nil
}

func (interp *Interpreter) execForIn(s *ast.ForInStatement, env runtime.Environment, labels []string) (signal, error) {
	src, err := interp.eval(s.Source, env)
	if err != nil {
		return signal{}, err
	}
	loop := newLoop(labels)
	if src.IsNullish() {
		return loop.done(), nil
	}
	obj, err := interp.realm.ToObject(src)
	if err != nil {
		return signal{}, err
	}
	keys, err := enumerableKeys(obj)
	if err != nil {
		return signal{}, err
	}
	for _, k := range keys {
		// Properties deleted during the loop are skipped.
		if !k.owner.HasOwnProperty(k.key) {
			continue
		}
		iterEnv, err := interp.bindForInto(s.Into, runtime.NewString(k.key.Name()), env)
		if err != nil {
			return signal{}, err
		}
		sig, err := interp.execStatement(s.Body, iterEnv)
		if err != nil {
			return signal{}, err
		}
		if more, out := loop.next(sig); !more {
			return out, nil
		}
	}
	return loop.done(), nil
}

func (interp *Interpreter) execForOf(s *ast.ForOfStatement, env runtime.Environment, labels []string) (signal, error) {
	src, err := interp.eval(s.Source, env)
	if err != nil {
		return signal{}, err
	}
	loop := newLoop(labels)
	var exit *signal
	err = interp.realm.Iterate(src, func(v *runtime.Value) (bool, error) {
		iterEnv, err := interp.bindForInto(s.Into, v, env)
		if err != nil {
			return false, err
		}
		sig, err := interp.execStatement(s.Body, iterEnv)
		if err != nil {
			return false, err
		}
		more, out := loop.next(sig)
		if !more {
			exit = &out
		}
		return more, nil
	})
	if err != nil {
		return signal{}, err
	}
	if exit != nil {
		return *exit, nil
	}
	return loop.done(), nil
}

// bindForInto binds the loop variable of a for-in or for-of iteration and
// returns the environment the body runs in.
func (interp *Interpreter) bindForInto(into ast.ForInto, v *runtime.Value, env runtime.Environment) (runtime.Environment, error) {
	switch t := into.(type) {
	case *ast.ForIntoVar:
		return env, interp.bindTarget(t.Binding.Target, v, env, bindAssign)
	case *ast.ForDeclaration:
		iterEnv := runtime.NewDeclarativeEnv(env)
		kind := runtime.BindLet
		if t.IsConst {
			kind = runtime.BindConst
		}
		for _, name := range boundNames(t.Target) {
			iterEnv.CreateBinding(name, kind, nil)
		}
		return iterEnv, interp.bindTarget(t.Target, v, iterEnv, bindInit)
	case *ast.ForIntoExpression:
		return env, interp.bindTarget(t.Expression, v, env, bindAssign)
	}
	return nil, runtime.Fatal(runtime.ErrInvariant, "unknown loop target %T", into)
}

func (interp *Interpreter) execSwitch(s *ast.SwitchStatement, env runtime.Environment) (signal, error) {
	disc, err := interp.eval(s.Discriminant, env)
	if err != nil {
		return signal{}, err
	}
	block := runtime.NewDeclarativeEnv(env)
	var all []ast.Statement
	for _, c := range s.Body {
		all = append(all, c.Consequent...)
	}
	if err := interp.declareBlock(all, block); err != nil {
		return signal{}, err
	}

	start := -1
	for i, c := range s.Body {
		if c.Test == nil {
			continue
		}
		v, err := interp.eval(c.Test, block)
		if err != nil {
			return signal{}, err
		}
		if runtime.StrictEquals(disc, v) {
			start = i
			break
		}
	}
	if start < 0 {
		start = s.Default
	}
	value := runtime.Undefined
	if start < 0 {
		return signal{value: value}, nil
	}
	for _, c := range s.Body[start:] {
		sig, err := interp.execList(c.Consequent, block)
		if err != nil {
			return signal{}, err
		}
		if sig.value != nil {
			value = sig.value
		}
		if sig.abrupt() {
			if sig.typ == sigBreak && sig.label == "" {
				return signal{value: value}, nil
			}
			if sig.value == nil && sig.typ != sigReturn {
				sig.value = value
			}
			return sig, nil
		}
	}
	return signal{value: value}, nil
}

func (interp *Interpreter) execTry(s *ast.TryStatement, env runtime.Environment) (signal, error) {
	sig, err := interp.execBlock(s.Body.List, env)
	if err != nil && s.Catch != nil && runtime.IsCatchable(err) {
		sig, err = interp.execCatch(s.Catch, err, env)
	}
	if s.Finally != nil && !runtime.IsFatal(err) {
		fsig, ferr := interp.execBlock(s.Finally.List, env)
		if ferr != nil {
			return signal{}, ferr
		}
		if fsig.abrupt() {
			return fsig, nil
		}
	}
	if err == nil && sig.value == nil && !sig.abrupt() {
		sig.value = runtime.Undefined
	}
	return sig, err
}

func (interp *Interpreter) execCatch(c *ast.CatchStatement, thrown error, env runtime.Environment) (signal, error) {
	val, ok := interp.realm.ErrorValue(thrown)
	if !ok {
		return signal{}, thrown
	}
	interp.throwIdx = 0
	catchEnv := runtime.NewDeclarativeEnv(env)
	if c.Parameter != nil {
		for _, name := range boundNames(c.Parameter) {
			catchEnv.CreateBinding(name, runtime.BindCatch, nil)
		}
		if err := interp.bindTarget(c.Parameter, val, catchEnv, bindInit); err != nil {
			return signal{}, err
		}
	}
	return interp.execBlock(c.Body.List, catchEnv)
}
