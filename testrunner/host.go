package testrunner

import (
	"context"
	"errors"

	"github.com/example/jscore/config"
	"github.com/example/jscore/interpreter"
	"github.com/example/jscore/runtime"
)

// host is one realm under test together with the $262 object the harness
// expects.
type host struct {
	interp  *interpreter.Interpreter
	cfg     *config.Config
	running bool
	object  *runtime.Object
}

func newHost(cfg *config.Config) *host {
	h := &host{interp: interpreter.New(interpreter.WithConfig(cfg)), cfg: cfg}
	r := h.interp.Realm()

	native := func(name string, length int, fn runtime.CallableFunc) *runtime.Value {
		return runtime.NewObject(r.NewNativeFunction(name, length, fn))
	}
	noop := func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return runtime.Undefined, nil
	}

	obj := r.NewPlainObject()
	obj.DefineData("global", runtime.NewObject(r.GlobalObject), runtime.AttrHidden)
	obj.DefineData("gc", native("gc", 0, noop), runtime.AttrHidden)
	obj.DefineData("evalScript", native("evalScript", 1, h.evalScript), runtime.AttrHidden)
	obj.DefineData("createRealm", native("createRealm", 0, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return runtime.NewObject(newHost(h.cfg).object), nil
	}), runtime.AttrHidden)
	h.object = obj

	r.GlobalObject.DefineData("$262", runtime.NewObject(obj), runtime.AttrHidden)
	r.GlobalObject.DefineData("print", native("print", 1, noop), runtime.AttrHidden)
	return h
}

// evalScript runs source as a separate script in this host's realm. A
// realm cannot re-enter its own evaluator, so only realms made by
// createRealm support it while a test is running.
func (h *host) evalScript(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if h.running {
		return nil, runtime.NewTypeError("$262.evalScript is not supported on the running realm")
	}
	src := runtime.Undefined
	if len(args) > 0 {
		src = args[0]
	}
	s, err := runtime.ToString(src)
	if err != nil {
		return nil, err
	}
	h.running = true
	v, err := h.interp.EvalFile(context.Background(), "evalScript", s)
	h.running = false
	if err == nil {
		return v, nil
	}
	var te *interpreter.ThrownError
	if errors.As(err, &te) {
		return nil, &runtime.Exception{Value: te.Value}
	}
	var se *interpreter.SyntaxError
	if errors.As(err, &se) {
		return nil, runtime.NewSyntaxError("%s", se.Message)
	}
	return nil, err
}
