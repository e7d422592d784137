package interpreter

import (
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"

	"github.com/example/jscore/runtime"
)

// lexicalDecl is a let, const or class name declared directly in a
// statement list.
type lexicalDecl struct {
	name string
	kind runtime.BindingKind
}

func redeclared(name string) error {
	return runtime.NewSyntaxError("Identifier '%s' has already been declared", name)
}

// declareGlobals instantiates the top-level declarations of a script
// before any of it runs. Lexical names go to the lexical map; var and
// function names become properties of the global object.
func (interp *Interpreter) declareGlobals(program *ast.Program) error {
	g := interp.global
	strict := interp.strict()

	lex := lexicalDecls(program.Body)
	lexNames := make(map[string]bool, len(lex))
	for _, d := range lex {
		if lexNames[d.name] || g.HasLexicalBinding(d.name) {
			return redeclared(d.name)
		}
		if p, ok := g.Object.GetOwnProperty(runtime.StrKey(d.name)); ok && !p.Configurable {
			return redeclared(d.name)
		}
		lexNames[d.name] = true
	}

	vars := varNames(program.DeclarationList)
	funcs := functionDecls(program.Body)
	for _, name := range vars {
		if lexNames[name] || g.HasLexicalBinding(name) {
			return redeclared(name)
		}
	}
	for _, lit := range funcs {
		if name := lit.Name.Name.String(); lexNames[name] || g.HasLexicalBinding(name) {
			return redeclared(name)
		}
	}

	for _, d := range lex {
		g.CreateBinding(d.name, d.kind, nil)
	}
	for _, name := range vars {
		g.CreateGlobalVar(name, nil)
	}
	if !strict {
		walkBlockFunctions(program.Body, func(lit *ast.FunctionLiteral) {
			if name := lit.Name.Name.String(); !g.HasLexicalBinding(name) {
				g.CreateGlobalVar(name, nil)
			}
		})
	}
	for _, lit := range funcs {
		name := lit.Name.Name.String()
		fn, err := interp.makeFunction(lit, g, strict, name)
		if err != nil {
			return err
		}
		g.CreateGlobalVar(name, runtime.NewObject(fn))
	}
	return nil
}

// declareFunctionBody instantiates a function body's declarations in env,
// which already holds the parameters.
func (interp *Interpreter) declareFunctionBody(f *function, env runtime.Environment) error {
	for _, name := range varNames(f.decls) {
		if !env.HasBinding(name) {
			env.CreateBinding(name, runtime.BindVar, runtime.Undefined)
		}
	}
	lex := lexicalDecls(f.body)
	lexNames := make(map[string]bool, len(lex))
	for _, d := range lex {
		if (env.HasBinding(d.name) && d.name != "arguments") || lexNames[d.name] {
			return redeclared(d.name)
		}
		lexNames[d.name] = true
		env.CreateBinding(d.name, d.kind, nil)
	}
	if !f.strict {
		walkBlockFunctions(f.body, func(lit *ast.FunctionLiteral) {
			if name := lit.Name.Name.String(); !env.HasBinding(name) {
				env.CreateBinding(name, runtime.BindVar, runtime.Undefined)
			}
		})
	}
	for _, lit := range functionDecls(f.body) {
		name := lit.Name.Name.String()
		if lexNames[name] {
			return redeclared(name)
		}
		fn, err := interp.makeFunction(lit, env, f.strict, name)
		if err != nil {
			return err
		}
		env.CreateBinding(name, runtime.BindFunction, runtime.NewObject(fn))
	}
	return nil
}

// declareBlock instantiates the lexical declarations and function
// declarations of a block, switch body or catch body in env.
func (interp *Interpreter) declareBlock(list []ast.Statement, env *runtime.DeclarativeEnv) error {
	for _, d := range lexicalDecls(list) {
		if env.HasBinding(d.name) {
			return redeclared(d.name)
		}
		env.CreateBinding(d.name, d.kind, nil)
	}
	strict := interp.strict()
	for _, lit := range functionDecls(list) {
		name := lit.Name.Name.String()
		if b, ok := env.Lookup(name); ok && b.Kind.Lexical() {
			return redeclared(name)
		}
		obj, err := interp.makeFunction(lit, env, strict, name)
		if err != nil {
			return err
		}
		fn := runtime.NewObject(obj)
		env.CreateBinding(name, runtime.BindFunction, fn)
		if !strict {
			interp.annexBCopy(name, fn)
		}
	}
	return nil
}

// annexBCopy makes a sloppy-mode block function visible in the enclosing
// function or global scope, unless a lexical binding there shadows it.
func (interp *Interpreter) annexBCopy(name string, fn *runtime.Value) {
	switch env := interp.frame.varEnv.(type) {
	case *runtime.GlobalEnv:
		if !env.HasLexicalBinding(name) {
			env.CreateGlobalVar(name, fn)
		}
	case interface {
		Lookup(string) (*runtime.Binding, bool)
	}:
		if b, ok := env.Lookup(name); ok && (b.Kind == runtime.BindVar || b.Kind == runtime.BindFunction) {
			b.Value, b.Initialized = fn, true
		}
	}
}

// hasScopedDecls reports whether a statement list needs its own scope.
func hasScopedDecls(list []ast.Statement) bool {
	for _, st := range list {
		switch s := st.(type) {
		case *ast.LexicalDeclaration, *ast.ClassDeclaration, *ast.FunctionDeclaration:
			return true
		case *ast.LabelledStatement:
			if _, ok := unlabel(s).(*ast.FunctionDeclaration); ok {
				return true
			}
		}
	}
	return false
}

func lexicalDecls(list []ast.Statement) []lexicalDecl {
	var out []lexicalDecl
	for _, st := range list {
		switch s := st.(type) {
		case *ast.LexicalDeclaration:
			kind := runtime.BindLet
			if s.Token == token.CONST {
				kind = runtime.BindConst
			}
			for _, b := range s.List {
				for _, name := range boundNames(b.Target) {
					out = append(out, lexicalDecl{name: name, kind: kind})
				}
			}
		case *ast.ClassDeclaration:
			out = append(out, lexicalDecl{name: s.Class.Name.Name.String(), kind: runtime.BindClass})
		}
	}
	return out
}

// functionDecls returns the function declarations directly in list,
// including labelled ones.
func functionDecls(list []ast.Statement) []*ast.FunctionLiteral {
	var out []*ast.FunctionLiteral
	for _, st := range list {
		if fd, ok := unlabel(st).(*ast.FunctionDeclaration); ok {
			out = append(out, fd.Function)
		}
	}
	return out
}

func unlabel(st ast.Statement) ast.Statement {
	for {
		ls, ok := st.(*ast.LabelledStatement)
		if !ok {
			return st
		}
		st = ls.Statement
	}
}

func varNames(decls []*ast.VariableDeclaration) []string {
	var names []string
	for _, d := range decls {
		for _, b := range d.List {
			names = append(names, boundNames(b.Target)...)
		}
	}
	return names
}

// walkBlockFunctions visits function declarations nested in blocks below
// list, without entering nested functions.
func walkBlockFunctions(list []ast.Statement, visit func(*ast.FunctionLiteral)) {
	for _, st := range list {
		walkStatement(st, false, visit)
	}
}

func walkStatement(st ast.Statement, nested bool, visit func(*ast.FunctionLiteral)) {
	switch s := st.(type) {
	case *ast.FunctionDeclaration:
		if nested {
			visit(s.Function)
		}
	case *ast.LabelledStatement:
		walkStatement(s.Statement, nested, visit)
	case *ast.BlockStatement:
		walkList(s.List, visit)
	case *ast.IfStatement:
		walkStatement(s.Consequent, true, visit)
		if s.Alternate != nil {
			walkStatement(s.Alternate, true, visit)
		}
	case *ast.WhileStatement:
		walkStatement(s.Body, true, visit)
	case *ast.DoWhileStatement:
		walkStatement(s.Body, true, visit)
	case *ast.ForStatement:
		walkStatement(s.Body, true, visit)
	case *ast.ForInStatement:
		walkStatement(s.Body, true, visit)
	case *ast.ForOfStatement:
		walkStatement(s.Body, true, visit)
	case *ast.SwitchStatement:
		for _, c := range s.Body {
			walkList(c.Consequent, visit)
		}
	case *ast.TryStatement:
		walkList(s.Body.List, visit)
		if s.Catch != nil {
			walkList(s.Catch.Body.List, visit)
		}
		if s.Finally != nil {
			walkList(s.Finally.List, visit)
		}
	}
}

func walkList(list []ast.Statement, visit func(*ast.FunctionLiteral)) {
	for _, st := range list {
		walkStatement(st, true, visit)
	}
}

// boundNames lists the identifiers a binding target declares.
func boundNames(target ast.Expression) []string {
	switch t := target.(type) {
	case *ast.Identifier:
		return []string{t.Name.String()}
	case *ast.AssignExpression:
		return boundNames(t.Left)
	case *ast.Binding:
		return boundNames(t.Target)
	case *ast.ArrayPattern:
		var names []string
		for _, el := range t.Elements {
			if el != nil {
				names = append(names, boundNames(el)...)
			}
		}
		if t.Rest != nil {
			names = append(names, boundNames(t.Rest)...)
		}
		return names
	case *ast.ObjectPattern:
		var names []string
		for _, prop := range t.Properties {
			switch p := prop.(type) {
			case *ast.PropertyShort:
				names = append(names, p.Name.Name.String())
			case *ast.PropertyKeyed:
				names = append(names, boundNames(p.Value)...)
			}
		}
		if t.Rest != nil {
			names = append(names, boundNames(t.Rest)...)
		}
		return names
	}
	return nil
}
