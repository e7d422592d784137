package builtins

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/example/jscore/runtime"
)

// flagOrder is the canonical order of the flags property.
const flagOrder = "dgimsuy"

// regExp is the internal slot of RegExp instances.
type regExp struct {
	source string
	flags  string
	re     *regexp2.Regexp
}

func (x *regExp) String() string { return "/" + x.source + "/" + x.flags }

func (x *regExp) has(flag byte) bool { return strings.IndexByte(x.flags, flag) >= 0 }

// regMatch is one successful match in UTF-16 code unit offsets. Unmatched
// groups have start -1.
type regMatch struct {
	spans [][2]int
	names []string
}

func (m *regMatch) start() int { return m.spans[0][0] }
func (m *regMatch) end() int   { return m.spans[0][1] }

func (m *regMatch) group(s string, i int) *runtime.Value {
	sp := m.spans[i]
	if sp[0] < 0 {
		return runtime.Undefined
	}
	return runtime.NewString(runtime.Substring(s, sp[0], sp[1]))
}

// namedGroups returns the groups object of a match, or undefined when the
// pattern has no named groups.
func (m *regMatch) namedGroups(s string) *runtime.Value {
	var obj *runtime.Object
	for i, name := range m.names {
		if name == "" {
			continue
		}
		if obj == nil {
			obj = runtime.NewOrdinaryObject(nil)
		}
		obj.CreateDataProperty(runtime.StrKey(name), m.group(s, i))
	}
	if obj == nil {
		return runtime.Undefined
	}
	return runtime.NewObject(obj)
}

// input converts s to the rune sequence the engine matches over. Without
// the u flag each UTF-16 code unit is one rune, so rune offsets are code
// unit offsets. With it, pos maps rune offsets back to code units.
func (x *regExp) input(s string) (runes []rune, pos []int) {
	units := runtime.CodeUnits(s)
	if !x.has('u') {
		runes = make([]rune, len(units))
		for i, u := range units {
			runes[i] = rune(u)
		}
		return runes, nil
	}
	runes = []rune(s)
	pos = make([]int, len(runes)+1)
	for i, r := range runes {
		w := 1
		if r >= 0x10000 {
			w = 2
		}
		pos[i+1] = pos[i] + w
	}
	return runes, pos
}

// matchAt runs the pattern starting at code unit offset start. It
// returns nil when there is no match at or after start.
func (x *regExp) matchAt(s string, start int) (*regMatch, error) {
	runes, pos := x.input(s)
	from := start
	if pos != nil {
		from = 0
		for from < len(runes) && pos[from] < start {
			from++
		}
	}
	if from > len(runes) {
		return nil, nil
	}
	m, err := x.re.FindRunesMatchStartingAt(runes, from)
	if err != nil {
		return nil, runtime.NewSyntaxError("Invalid regular expression: %s: %s", x, err)
	}
	if m == nil {
		return nil, nil
	}
	unit := func(i int) int {
		if pos == nil {
			return i
		}
		return pos[i]
	}
	groups := m.Groups()
	out := &regMatch{spans: make([][2]int, len(groups)), names: make([]string, len(groups))}
	for i, g := range groups {
		if _, err := strconv.Atoi(g.Name); err != nil {
			out.names[i] = g.Name
		}
		if len(g.Captures) == 0 {
			out.spans[i] = [2]int{-1, -1}
			continue
		}
		out.spans[i] = [2]int{unit(g.Index), unit(g.Index + g.Length)}
	}
	return out, nil
}

func parseFlags(flags string) (regexp2.RegexOptions, string, error) {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	seen := make(map[rune]bool)
	for _, f := range flags {
		if seen[f] || !strings.ContainsRune(flagOrder, f) {
			return 0, "", runtime.NewSyntaxError("Invalid regular expression flags '%s'", flags)
		}
		seen[f] = true
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'u':
			opts |= regexp2.Unicode
		}
	}
	var canon strings.Builder
	for _, f := range flagOrder {
		if seen[f] {
			canon.WriteRune(f)
		}
	}
	return opts, canon.String(), nil
}

// NewRegExp compiles pattern with flags and returns a RegExp instance.
// Malformed patterns and flags are SyntaxErrors.
func NewRegExp(r *runtime.Realm, pattern, flags string) (*runtime.Value, error) {
	return newRegExp(r, pattern, flags, r.RegExpPrototype)
}

func newRegExp(r *runtime.Realm, pattern, flags string, proto *runtime.Object) (*runtime.Value, error) {
	opts, canon, err := parseFlags(flags)
	if err != nil {
		return nil, err
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, runtime.NewSyntaxError("Invalid regular expression: /%s/: %s", pattern, err)
	}
	source := pattern
	if source == "" {
		source = "(?:)"
	}
	obj := runtime.NewObjectOfClass(runtime.ClassRegExp, proto)
	obj.Internal = &regExp{source: source, flags: canon, re: re}
	obj.DefineData("lastIndex", runtime.Zero, runtime.Writable)
	return runtime.NewObject(obj), nil
}

func asRegExp(v *runtime.Value) (*regExp, bool) {
	if !v.IsObject() {
		return nil, false
	}
	x, ok := v.Object.Internal.(*regExp)
	return x, ok
}

func regexpDefinition(r *runtime.Realm) Definition {
	def := Definition{
		Name:      "RegExp",
		Length:    2,
		Prototype: r.RegExpPrototype,
		Call:      regexpCall,
		Construct: regexpConstruct,
		Methods: []Method{
			{Name: "exec", Length: 1, Fn: regexpExec},
			{Name: "test", Length: 1, Fn: regexpTest},
			{Name: "toString", Fn: regexpToString},
		},
		Accessors: []Accessor{
			{Name: "source", Get: regexpSource},
			{Name: "flags", Get: regexpFlags},
		},
	}
	for _, f := range []struct {
		name string
		flag byte
	}{
		{"dotAll", 's'}, {"global", 'g'}, {"hasIndices", 'd'}, {"ignoreCase", 'i'},
		{"multiline", 'm'}, {"sticky", 'y'}, {"unicode", 'u'},
	} {
		def.Accessors = append(def.Accessors, Accessor{Name: f.name, Get: flagGetter(f.name, f.flag)})
	}
	return def
}

// regexpCall returns a RegExp argument unchanged when no flags are given,
// otherwise it behaves like new RegExp.
func regexpCall(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if p := argAt(args, 0); argAt(args, 1).IsUndefined() {
		if _, ok := asRegExp(p); ok {
			return p, nil
		}
	}
	return regexpConstruct(r, args, nil)
}

func regexpConstruct(r *runtime.Realm, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
	proto, err := prototypeFrom(newTarget, r.RegExpPrototype)
	if err != nil {
		return nil, err
	}
	p, f := argAt(args, 0), argAt(args, 1)
	var pattern, flags string
	if x, ok := asRegExp(p); ok {
		pattern, flags = x.source, x.flags
	} else if !p.IsUndefined() {
		if pattern, err = runtime.ToString(p); err != nil {
			return nil, err
		}
	}
	if !f.IsUndefined() {
		if flags, err = runtime.ToString(f); err != nil {
			return nil, err
		}
	}
	return newRegExp(r, pattern, flags, proto)
}

func thisRegExp(this *runtime.Value, method string) (*regExp, error) {
	x, ok := asRegExp(this)
	if !ok {
		return nil, runtime.NewTypeError("RegExp.prototype.%s called on incompatible receiver %s", method, runtime.Display(this))
	}
	return x, nil
}

func flagGetter(name string, flag byte) Native {
	return func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		if this.IsObject() && this.Object == r.RegExpPrototype {
			return runtime.Undefined, nil
		}
		x, err := thisRegExp(this, name)
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(x.has(flag)), nil
	}
}

func regexpSource(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if this.IsObject() && this.Object == r.RegExpPrototype {
		return runtime.NewString("(?:)"), nil
	}
	x, err := thisRegExp(this, "source")
	if err != nil {
		return nil, err
	}
	return runtime.NewString(x.source), nil
}

func regexpFlags(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if this.IsObject() && this.Object == r.RegExpPrototype {
		return runtime.EmptyStr, nil
	}
	x, err := thisRegExp(this, "flags")
	if err != nil {
		return nil, err
	}
	return runtime.NewString(x.flags), nil
}

func regexpToString(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if !this.IsObject() {
		return nil, runtime.NewTypeError("RegExp.prototype.toString called on incompatible receiver %s", runtime.Display(this))
	}
	source, err := this.Object.Get(runtime.StrKey("source"))
	if err != nil {
		return nil, err
	}
	flags, err := this.Object.Get(runtime.StrKey("flags"))
	if err != nil {
		return nil, err
	}
	ss, err := runtime.ToString(source)
	if err != nil {
		return nil, err
	}
	fs, err := runtime.ToString(flags)
	if err != nil {
		return nil, err
	}
	return runtime.NewString("/" + ss + "/" + fs), nil
}

// execRaw is the lastIndex protocol of exec without building the result
// array. Global and sticky patterns resume from and update lastIndex.
func execRaw(obj *runtime.Object, x *regExp, s string) (*regMatch, error) {
	lastKey := runtime.StrKey("lastIndex")
	lv, err := obj.Get(lastKey)
	if err != nil {
		return nil, err
	}
	last, err := runtime.ToLength(lv)
	if err != nil {
		return nil, err
	}
	resume := x.has('g') || x.has('y')
	if !resume {
		last = 0
	}
	fail := func() (*regMatch, error) {
		if resume {
			return nil, setProp(obj, lastKey, runtime.Zero)
		}
		return nil, nil
	}
	if last > float64(runtime.StringLength(s)) {
		return fail()
	}
	m, err := x.matchAt(s, int(last))
	if err != nil {
		return nil, err
	}
	if m == nil || (x.has('y') && m.start() != int(last)) {
		return fail()
	}
	if resume {
		if err := setProp(obj, lastKey, runtime.NewNumber(float64(m.end()))); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// matchResult builds the array exec returns.
func matchResult(r *runtime.Realm, m *regMatch, s string) *runtime.Value {
	vals := make([]*runtime.Value, len(m.spans))
	for i := range m.spans {
		vals[i] = m.group(s, i)
	}
	arr := r.NewArrayValue(vals)
	arr.Object.CreateDataProperty(runtime.StrKey("index"), runtime.NewNumber(float64(m.start())))
	arr.Object.CreateDataProperty(runtime.StrKey("input"), runtime.NewString(s))
	arr.Object.CreateDataProperty(runtime.StrKey("groups"), m.namedGroups(s))
	return arr
}

func regexpExecString(r *runtime.Realm, obj *runtime.Object, x *regExp, s string) (*runtime.Value, error) {
	m, err := execRaw(obj, x, s)
	if err != nil || m == nil {
		return runtime.Null, err
	}
	return matchResult(r, m, s), nil
}

func regexpExec(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	x, err := thisRegExp(this, "exec")
	if err != nil {
		return nil, err
	}
	s, err := runtime.ToString(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return regexpExecString(r, this.Object, x, s)
}

func regexpTest(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	x, err := thisRegExp(this, "test")
	if err != nil {
		return nil, err
	}
	s, err := runtime.ToString(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	m, err := execRaw(this.Object, x, s)
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(m != nil), nil
}

// advance steps past an empty match, by a whole code point in unicode mode.
func advance(x *regExp, s string, i int) int {
	if x.has('u') {
		if u, ok := runtime.CodeUnitAt(s, i); ok && u >= 0xD800 && u <= 0xDBFF {
			if v, ok := runtime.CodeUnitAt(s, i+1); ok && v >= 0xDC00 && v <= 0xDFFF {
				return i + 2
			}
		}
	}
	return i + 1
}

// allMatches collects every match of a global pattern from the start of s,
// leaving lastIndex at zero.
func allMatches(obj *runtime.Object, x *regExp, s string) ([]*regMatch, error) {
	if err := setProp(obj, runtime.StrKey("lastIndex"), runtime.Zero); err != nil {
		return nil, err
	}
	var out []*regMatch
	for {
		m, err := execRaw(obj, x, s)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return out, nil
		}
		out = append(out, m)
		if m.start() == m.end() {
			if err := setProp(obj, runtime.StrKey("lastIndex"), runtime.NewNumber(float64(advance(x, s, m.end())))); err != nil {
				return nil, err
			}
		}
	}
}

// expandReplacement applies the $ patterns of a replacement template.
func expandReplacement(tmpl, s string, m *regMatch) string {
	if !strings.Contains(tmpl, "$") {
		return tmpl
	}
	var sb strings.Builder
	ncap := len(m.spans) - 1
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '$' || i+1 >= len(tmpl) {
			sb.WriteByte(c)
			continue
		}
		next := tmpl[i+1]
		switch {
		case next == '$':
			sb.WriteByte('$')
			i++
		case next == '&':
			sb.WriteString(runtime.Substring(s, m.start(), m.end()))
			i++
		case next == '`':
			sb.WriteString(runtime.Substring(s, 0, m.start()))
			i++
		case next == '\'':
			sb.WriteString(runtime.Substring(s, m.end(), runtime.StringLength(s)))
			i++
		case next >= '0' && next <= '9':
			n := int(next - '0')
			width := 1
			if i+2 < len(tmpl) && tmpl[i+2] >= '0' && tmpl[i+2] <= '9' {
				if nn := n*10 + int(tmpl[i+2]-'0'); nn >= 1 && nn <= ncap {
					n, width = nn, 2
				}
			}
			if n < 1 || n > ncap {
				sb.WriteByte('$')
				continue
			}
			if g := m.group(s, n); !g.IsUndefined() {
				sb.WriteString(g.Str)
			}
			i += width
		case next == '<' && hasNames(m):
			end := strings.IndexByte(tmpl[i+2:], '>')
			if end < 0 {
				sb.WriteByte('$')
				continue
			}
			name := tmpl[i+2 : i+2+end]
			for gi, gn := range m.names {
				if gn == name {
					if g := m.group(s, gi); !g.IsUndefined() {
						sb.WriteString(g.Str)
					}
				}
			}
			i += 2 + end
		default:
			sb.WriteByte('$')
		}
	}
	return sb.String()
}

func hasNames(m *regMatch) bool {
	for _, n := range m.names {
		if n != "" {
			return true
		}
	}
	return false
}

// replacer produces the replacement text for one match, calling a
// function replacement or expanding a template.
func replacer(r *runtime.Realm, replaceValue *runtime.Value) (func(s string, m *regMatch) (string, error), error) {
	if runtime.IsCallable(replaceValue) {
		fn := replaceValue.Object
		return func(s string, m *regMatch) (string, error) {
			args := make([]*runtime.Value, 0, len(m.spans)+3)
			for i := range m.spans {
				args = append(args, m.group(s, i))
			}
			args = append(args, runtime.NewNumber(float64(m.start())), runtime.NewString(s))
			if groups := m.namedGroups(s); !groups.IsUndefined() {
				args = append(args, groups)
			}
			res, err := fn.Call(runtime.Undefined, args)
			if err != nil {
				return "", err
			}
			return runtime.ToString(res)
		}, nil
	}
	tmpl, err := runtime.ToString(replaceValue)
	if err != nil {
		return nil, err
	}
	return func(s string, m *regMatch) (string, error) {
		return expandReplacement(tmpl, s, m), nil
	}, nil
}

// spliceMatches rebuilds s with every match replaced.
func spliceMatches(s string, matches []*regMatch, replace func(string, *regMatch) (string, error)) (string, error) {
	var sb strings.Builder
	pos := 0
	for _, m := range matches {
		if m.start() < pos {
			continue
		}
		rep, err := replace(s, m)
		if err != nil {
			return "", err
		}
		sb.WriteString(runtime.Substring(s, pos, m.start()))
		sb.WriteString(rep)
		pos = m.end()
	}
	sb.WriteString(runtime.Substring(s, pos, runtime.StringLength(s)))
	return sb.String(), nil
}

func regexpReplace(r *runtime.Realm, obj *runtime.Object, x *regExp, s string, replaceValue *runtime.Value) (*runtime.Value, error) {
	rep, err := replacer(r, replaceValue)
	if err != nil {
		return nil, err
	}
	var matches []*regMatch
	if x.has('g') {
		if matches, err = allMatches(obj, x, s); err != nil {
			return nil, err
		}
	} else {
		m, err := execRaw(obj, x, s)
		if err != nil {
			return nil, err
		}
		if m != nil {
			matches = append(matches, m)
		}
	}
	out, err := spliceMatches(s, matches, rep)
	if err != nil {
		return nil, err
	}
	return runtime.NewString(out), nil
}

// regexpSplit splits s around matches of x, including captures in the
// output, up to limit pieces.
func regexpSplit(r *runtime.Realm, x *regExp, s string, limit int) (*runtime.Value, error) {
	var parts []*runtime.Value
	n := runtime.StringLength(s)
	if limit == 0 {
		return r.NewArrayValue(nil), nil
	}
	if n == 0 {
		m, err := x.matchAt(s, 0)
		if err != nil {
			return nil, err
		}
		if m != nil && m.end() == 0 {
			return r.NewArrayValue(nil), nil
		}
		return stringList(r, []string{s}), nil
	}
	p, q := 0, 0
	for q < n {
		m, err := x.matchAt(s, q)
		if err != nil {
			return nil, err
		}
		if m == nil || m.start() >= n {
			break
		}
		if m.end() == p {
			q = advance(x, s, m.start())
			continue
		}
		parts = append(parts, runtime.NewString(runtime.Substring(s, p, m.start())))
		if len(parts) == limit {
			return r.NewArrayValue(parts), nil
		}
		for i := 1; i < len(m.spans); i++ {
			parts = append(parts, m.group(s, i))
			if len(parts) == limit {
				return r.NewArrayValue(parts), nil
			}
		}
		p, q = m.end(), m.end()
	}
	parts = append(parts, runtime.NewString(runtime.Substring(s, p, n)))
	return r.NewArrayValue(parts), nil
}
