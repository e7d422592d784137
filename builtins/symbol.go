package builtins

import (
	"github.com/example/jscore/runtime"
)

// wellKnownSymbols are exposed as constants on the Symbol constructor.
var wellKnownSymbols = []struct {
	name string
	sym  *runtime.Symbol
}{
	{"iterator", runtime.SymIterator},
	{"toPrimitive", runtime.SymToPrimitive},
	{"hasInstance", runtime.SymHasInstance},
	{"toStringTag", runtime.SymToStringTag},
}

func symbolDefinition(r *runtime.Realm) Definition {
	def := Definition{
		Name:      "Symbol",
		Prototype: r.SymbolPrototype,
		Call:      symbolCall,
		Methods: []Method{
			{Name: "toString", Fn: symbolToString},
			{Name: "valueOf", Fn: symbolValueOf},
			{Symbol: runtime.SymToPrimitive, Length: 1, Fn: symbolValueOf},
		},
		Accessors: []Accessor{
			{Name: "description", Get: symbolDescription},
		},
		ProtoData: []Constant{
			{Symbol: runtime.SymToStringTag, Value: runtime.NewString("Symbol"), Attrs: runtime.Configurable},
		},
		Statics: []Method{
			{Name: "for", Length: 1, Fn: symbolFor},
			{Name: "keyFor", Length: 1, Fn: symbolKeyFor},
		},
	}
	for _, wk := range wellKnownSymbols {
		def.Constants = append(def.Constants, Constant{Name: wk.name, Value: runtime.NewSymbolValue(wk.sym)})
	}
	return def
}

// symbolCall creates a fresh symbol. Symbol has no [[Construct]], so new
// Symbol() fails in the evaluator.
func symbolCall(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	d := argAt(args, 0)
	if d.IsUndefined() {
		return runtime.NewSymbolValue(runtime.NewSymbol("", false)), nil
	}
	desc, err := runtime.ToString(d)
	if err != nil {
		return nil, err
	}
	return runtime.NewSymbolValue(runtime.NewSymbol(desc, true)), nil
}

func thisSymbol(this *runtime.Value, method string) (*runtime.Symbol, error) {
	v, err := thisPrimitive(this, runtime.TypeSymbol, "Symbol.prototype."+method)
	if err != nil {
		return nil, err
	}
	return v.Symbol, nil
}

func symbolToString(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	sym, err := thisSymbol(this, "toString")
	if err != nil {
		return nil, err
	}
	return runtime.NewString(sym.String()), nil
}

func symbolValueOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	sym, err := thisSymbol(this, "valueOf")
	if err != nil {
		return nil, err
	}
	return runtime.NewSymbolValue(sym), nil
}

func symbolDescription(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	sym, err := thisSymbol(this, "description")
	if err != nil {
		return nil, err
	}
	if !sym.HasDescription {
		return runtime.Undefined, nil
	}
	return runtime.NewString(sym.Description), nil
}

func symbolFor(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	key, err := runtime.ToString(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewSymbolValue(r.SymbolFor(key)), nil
}

func symbolKeyFor(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	a := argAt(args, 0)
	if a.Type != runtime.TypeSymbol {
		return nil, runtime.NewTypeError("%s is not a symbol", runtime.Display(a))
	}
	if key, ok := r.SymbolKeyFor(a.Symbol); ok {
		return runtime.NewString(key), nil
	}
	return runtime.Undefined, nil
}
