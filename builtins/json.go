package builtins

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/example/jscore/runtime"
)

func jsonDefinition() Definition {
	return Definition{
		Name: "JSON",
		Statics: []Method{
			{Name: "parse", Length: 2, Fn: jsonParse},
			{Name: "stringify", Length: 3, Fn: jsonStringify},
		},
	}
}

func jsonParse(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	text, err := runtime.ToString(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	result, err := decodeJSON(r, dec)
	if err == nil {
		if _, tail := dec.Token(); tail != io.EOF {
			err = errors.New("unexpected data after top-level value")
		}
	}
	if err != nil {
		return nil, runtime.NewSyntaxError("%s is not valid JSON: %v", runtime.QuoteString(text), err)
	}
	if reviver := argAt(args, 1); runtime.IsCallable(reviver) {
		root := r.NewPlainObject()
		root.CreateDataProperty(runtime.StrKey(""), result)
		return internalize(r, reviver.Object, root, runtime.StrKey(""))
	}
	return result, nil
}

// decodeJSON reads one value from the token stream. Object members are
// created in source order.
func decodeJSON(r *runtime.Realm, dec *json.Decoder) (*runtime.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return runtime.Null, nil
	case bool:
		return runtime.NewBool(t), nil
	case string:
		return runtime.NewString(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil && !math.IsInf(f, 0) {
			return nil, err
		}
		return runtime.NewNumber(f), nil
	case json.Delim:
		switch t {
		case '[':
			var elems []*runtime.Value
			for dec.More() {
				v, err := decodeJSON(r, dec)
				if err != nil {
					return nil, err
				}
				elems = append(elems, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return r.NewArrayValue(elems), nil
		case '{':
			obj := r.NewPlainObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := kt.(string)
				v, err := decodeJSON(r, dec)
				if err != nil {
					return nil, err
				}
				obj.CreateDataProperty(runtime.StrKey(key), v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return runtime.NewObject(obj), nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// internalize applies a reviver bottom-up, deleting members it maps to
// undefined.
func internalize(r *runtime.Realm, reviver, holder *runtime.Object, key runtime.PropertyKey) (*runtime.Value, error) {
	val, err := holder.Get(key)
	if err != nil {
		return nil, err
	}
	if val.IsObject() {
		var keys []runtime.PropertyKey
		if runtime.IsArray(val) {
			n, err := runtime.LengthOf(val.Object)
			if err != nil {
				return nil, err
			}
			for i := range n {
				keys = append(keys, runtime.IndexKey(i))
			}
		} else if err := enumerableOwn(val.Object, func(k runtime.PropertyKey) error {
			keys = append(keys, k)
			return nil
		}); err != nil {
			return nil, err
		}
		for _, k := range keys {
			nv, err := internalize(r, reviver, val.Object, k)
			if err != nil {
				return nil, err
			}
			if nv.IsUndefined() {
				val.Object.Delete(k)
			} else {
				val.Object.CreateDataProperty(k, nv)
			}
		}
	}
	return reviver.Call(runtime.NewObject(holder), []*runtime.Value{key.ToValue(), val})
}

// stringifier carries the state of one JSON.stringify call.
type stringifier struct {
	r        *runtime.Realm
	replacer *runtime.Object
	allow    []runtime.PropertyKey
	gap      string
	stack    []*runtime.Object
}

func jsonStringify(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	st := &stringifier{r: r}
	if rep := argAt(args, 1); runtime.IsCallable(rep) {
		st.replacer = rep.Object
	} else if runtime.IsArray(rep) {
		list, err := propertyList(rep.Object)
		if err != nil {
			return nil, err
		}
		st.allow = list
	}
	gap, err := gapArg(argAt(args, 2))
	if err != nil {
		return nil, err
	}
	st.gap = gap

	wrapper := r.NewPlainObject()
	wrapper.CreateDataProperty(runtime.StrKey(""), argAt(args, 0))
	var sb strings.Builder
	ok, err := st.property(&sb, wrapper, runtime.StrKey(""), "")
	if err != nil {
		return nil, err
	}
	if !ok {
		return runtime.Undefined, nil
	}
	return runtime.NewString(sb.String()), nil
}

// propertyList turns a replacer array into the allowed key list: strings
// and numbers (or their wrappers), without duplicates.
func propertyList(arr *runtime.Object) ([]runtime.PropertyKey, error) {
	n, err := runtime.LengthOf(arr)
	if err != nil {
		return nil, err
	}
	list := []runtime.PropertyKey{}
	seen := make(map[string]bool)
	for i := range n {
		v, err := arr.Get(runtime.IndexKey(i))
		if err != nil {
			return nil, err
		}
		prim := v
		if v.IsObject() && v.Object.Primitive != nil {
			prim = v.Object.Primitive
		}
		if prim.Type != runtime.TypeString && prim.Type != runtime.TypeNumber {
			continue
		}
		s, err := runtime.ToString(v)
		if err != nil {
			return nil, err
		}
		if !seen[s] {
			seen[s] = true
			list = append(list, runtime.StrKey(s))
		}
	}
	return list, nil
}

func gapArg(space *runtime.Value) (string, error) {
	if space.IsObject() && space.Object.Primitive != nil {
		switch space.Object.Primitive.Type {
		case runtime.TypeNumber, runtime.TypeString:
			var err error
			if space.Object.Primitive.Type == runtime.TypeNumber {
				var n float64
				n, err = runtime.ToNumber(space)
				space = runtime.NewNumber(n)
			} else {
				var s string
				s, err = runtime.ToString(space)
				space = runtime.NewString(s)
			}
			if err != nil {
				return "", err
			}
		}
	}
	switch space.Type {
	case runtime.TypeNumber:
		n := int(math.Min(10, runtime.IntegerOrInfinity(space.Number)))
		if n < 1 {
			return "", nil
		}
		return strings.Repeat(" ", n), nil
	case runtime.TypeString:
		return runtime.Substring(space.Str, 0, 10), nil
	}
	return "", nil
}

// property serializes holder[key]. It reports false when the value has no
// JSON representation (undefined, functions, symbols).
func (st *stringifier) property(sb *strings.Builder, holder *runtime.Object, key runtime.PropertyKey, indent string) (bool, error) {
	val, err := holder.Get(key)
	if err != nil {
		return false, err
	}
	if val.IsObject() {
		toJSON, err := val.Object.Get(runtime.StrKey("toJSON"))
		if err != nil {
			return false, err
		}
		if runtime.IsCallable(toJSON) {
			if val, err = toJSON.Object.Call(val, []*runtime.Value{key.ToValue()}); err != nil {
				return false, err
			}
		}
	}
	if st.replacer != nil {
		if val, err = st.replacer.Call(runtime.NewObject(holder), []*runtime.Value{key.ToValue(), val}); err != nil {
			return false, err
		}
	}
	if val.IsObject() && val.Object.Primitive != nil {
		switch val.Object.Class {
		case runtime.ClassNumber:
			n, err := runtime.ToNumber(val)
			if err != nil {
				return false, err
			}
			val = runtime.NewNumber(n)
		case runtime.ClassString:
			s, err := runtime.ToString(val)
			if err != nil {
				return false, err
			}
			val = runtime.NewString(s)
		case runtime.ClassBoolean:
			val = val.Object.Primitive
		}
	}

	switch val.Type {
	case runtime.TypeNull:
		sb.WriteString("null")
	case runtime.TypeBoolean:
		sb.WriteString(strconv.FormatBool(val.Bool))
	case runtime.TypeString:
		quoteJSON(sb, val.Str)
	case runtime.TypeNumber:
		if math.IsNaN(val.Number) || math.IsInf(val.Number, 0) {
			sb.WriteString("null")
		} else {
			sb.WriteString(runtime.NumberToString(val.Number))
		}
	case runtime.TypeObject:
		if runtime.IsCallable(val) {
			return false, nil
		}
		if runtime.IsArray(val) {
			return true, st.array(sb, val.Object, indent)
		}
		return true, st.object(sb, val.Object, indent)
	default:
		return false, nil
	}
	return true, nil
}

func (st *stringifier) enter(obj *runtime.Object) error {
	for _, o := range st.stack {
		if o == obj {
			return runtime.NewTypeError("Converting circular structure to JSON")
		}
	}
	st.stack = append(st.stack, obj)
	return nil
}

func (st *stringifier) leave() { st.stack = st.stack[:len(st.stack)-1] }

// wrap joins serialized members in open/close with the configured gap.
func (st *stringifier) wrap(sb *strings.Builder, open, close byte, parts []string, indent, inner string) {
	sb.WriteByte(open)
	if len(parts) > 0 {
		if st.gap == "" {
			sb.WriteString(strings.Join(parts, ","))
		} else {
			sb.WriteString("\n" + inner)
			sb.WriteString(strings.Join(parts, ",\n"+inner))
			sb.WriteString("\n" + indent)
		}
	}
	sb.WriteByte(close)
}

func (st *stringifier) object(sb *strings.Builder, obj *runtime.Object, indent string) error {
	if err := st.enter(obj); err != nil {
		return err
	}
	defer st.leave()
	inner := indent + st.gap

	keys := st.allow
	if keys == nil {
		if err := enumerableOwn(obj, func(k runtime.PropertyKey) error {
			keys = append(keys, k)
			return nil
		}); err != nil {
			return err
		}
	}
	sep := ":"
	if st.gap != "" {
		sep = ": "
	}
	var parts []string
	for _, k := range keys {
		var member strings.Builder
		quoteJSON(&member, k.Name())
		member.WriteString(sep)
		ok, err := st.property(&member, obj, k, inner)
		if err != nil {
			return err
		}
		if ok {
			parts = append(parts, member.String())
		}
	}
	st.wrap(sb, '{', '}', parts, indent, inner)
	return nil
}

func (st *stringifier) array(sb *strings.Builder, arr *runtime.Object, indent string) error {
	if err := st.enter(arr); err != nil {
		return err
	}
	defer st.leave()
	inner := indent + st.gap
	n, err := runtime.LengthOf(arr)
	if err != nil {
		return err
	}
	parts := make([]string, 0, n)
	for i := range n {
		var elem strings.Builder
		ok, err := st.property(&elem, arr, runtime.IndexKey(i), inner)
		if err != nil {
			return err
		}
		if !ok {
			parts = append(parts, "null")
			continue
		}
		parts = append(parts, elem.String())
	}
	st.wrap(sb, '[', ']', parts, indent, inner)
	return nil
}

func quoteJSON(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 {
				fmt.Fprintf(sb, `\u%04x`, c)
			} else {
				sb.WriteRune(c)
			}
		}
	}
	sb.WriteByte('"')
}
