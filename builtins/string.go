package builtins

import (
	"math"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/example/jscore/runtime"
)

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// stringDefinition builds String. Its iterator objects share stringIter as
// prototype and matchAll results share regexpIter.
func stringDefinition(r *runtime.Realm, stringIter, regexpIter *runtime.Object) Definition {
	return Definition{
		Name:      "String",
		Length:    1,
		Prototype: r.StringPrototype,
		Call:      stringCall,
		Construct: stringConstruct,
		Methods: []Method{
			{Name: "at", Length: 1, Fn: stringAt},
			{Name: "charAt", Length: 1, Fn: stringCharAt},
			{Name: "charCodeAt", Length: 1, Fn: stringCharCodeAt},
			{Name: "codePointAt", Length: 1, Fn: stringCodePointAt},
			{Name: "concat", Length: 1, Fn: stringConcat},
			{Name: "endsWith", Length: 1, Fn: stringEndsWith},
			{Name: "includes", Length: 1, Fn: stringIncludes},
			{Name: "indexOf", Length: 1, Fn: stringIndexOf},
			{Name: "lastIndexOf", Length: 1, Fn: stringLastIndexOf},
			{Name: "localeCompare", Length: 1, Fn: stringLocaleCompare},
			{Name: "match", Length: 1, Fn: stringMatch},
			{Name: "matchAll", Length: 1, Fn: stringMatchAll(regexpIter)},
			{Name: "normalize", Fn: stringNormalize},
			{Name: "padEnd", Length: 1, Fn: stringPadEnd},
			{Name: "padStart", Length: 1, Fn: stringPadStart},
			{Name: "repeat", Length: 1, Fn: stringRepeat},
			{Name: "replace", Length: 2, Fn: stringReplace},
			{Name: "replaceAll", Length: 2, Fn: stringReplaceAll},
			{Name: "search", Length: 1, Fn: stringSearch},
			{Name: "slice", Length: 2, Fn: stringSlice},
			{Name: "split", Length: 2, Fn: stringSplit},
			{Name: "startsWith", Length: 1, Fn: stringStartsWith},
			{Name: "substr", Length: 2, Fn: stringSubstr},
			{Name: "substring", Length: 2, Fn: stringSubstring},
			{Name: "toLocaleLowerCase", Fn: stringToLowerCase},
			{Name: "toLocaleUpperCase", Fn: stringToUpperCase},
			{Name: "toLowerCase", Fn: stringToLowerCase},
			{Name: "toString", Fn: stringValueOf},
			{Name: "toUpperCase", Fn: stringToUpperCase},
			{Name: "trim", Fn: stringTrim},
			{Name: "trimEnd", Fn: stringTrimEnd},
			{Name: "trimStart", Fn: stringTrimStart},
			{Name: "valueOf", Fn: stringValueOf},
			{Symbol: runtime.SymIterator, Fn: stringIterator(stringIter)},

			{Name: "anchor", Length: 1, Fn: htmlMethod("a", "name")},
			{Name: "big", Fn: htmlMethod("big", "")},
			{Name: "bold", Fn: htmlMethod("b", "")},
			{Name: "fixed", Fn: htmlMethod("tt", "")},
			{Name: "italics", Fn: htmlMethod("i", "")},
			{Name: "link", Length: 1, Fn: htmlMethod("a", "href")},
			{Name: "small", Fn: htmlMethod("small", "")},
			{Name: "strike", Fn: htmlMethod("strike", "")},
			{Name: "sub", Fn: htmlMethod("sub", "")},
			{Name: "sup", Fn: htmlMethod("sup", "")},
		},
		Statics: []Method{
			{Name: "fromCharCode", Length: 1, Fn: stringFromCharCode},
			{Name: "fromCodePoint", Length: 1, Fn: stringFromCodePoint},
			{Name: "raw", Length: 1, Fn: stringRaw},
		},
	}
}

// installString installs String and aliases trimLeft and trimRight to the
// same function objects as trimStart and trimEnd.
func installString(r *runtime.Realm) {
	stringIter := newIteratorPrototype(r, "String Iterator")
	regexpIter := newIteratorPrototype(r, "RegExp String Iterator")
	Install(r, stringDefinition(r, stringIter, regexpIter))
	for _, alias := range [][2]string{{"trimLeft", "trimStart"}, {"trimRight", "trimEnd"}} {
		if p, ok := r.StringPrototype.GetOwnProperty(runtime.StrKey(alias[1])); ok {
			r.StringPrototype.DefineData(alias[0], p.Value, runtime.AttrHidden)
		}
	}
}

func stringCall(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if len(args) == 0 {
		return runtime.EmptyStr, nil
	}
	if args[0].Type == runtime.TypeSymbol {
		return runtime.NewString(args[0].Symbol.String()), nil
	}
	s, err := runtime.ToString(args[0])
	if err != nil {
		return nil, err
	}
	return runtime.NewString(s), nil
}

func stringConstruct(r *runtime.Realm, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
	s := ""
	if len(args) > 0 {
		var err error
		if s, err = runtime.ToString(args[0]); err != nil {
			return nil, err
		}
	}
	proto, err := prototypeFrom(newTarget, r.StringPrototype)
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(r.NewWrapper(runtime.NewString(s), proto)), nil
}

func stringValueOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return thisPrimitive(this, runtime.TypeString, "String.prototype.valueOf")
}

// position reads an integer position argument, defaulting to dflt when
// absent.
func position(v *runtime.Value, dflt float64) (float64, error) {
	if v.IsUndefined() {
		return dflt, nil
	}
	return runtime.ToIntegerOrInfinity(v)
}

func clampPos(f float64, n int) int {
	return int(math.Max(0, math.Min(f, float64(n))))
}

func stringAt(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "at")
	if err != nil {
		return nil, err
	}
	n := runtime.StringLength(s)
	f, err := runtime.ToIntegerOrInfinity(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	if f < 0 {
		f += float64(n)
	}
	if f < 0 || f >= float64(n) {
		return runtime.Undefined, nil
	}
	return runtime.NewString(runtime.Substring(s, int(f), int(f)+1)), nil
}

func stringCharAt(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "charAt")
	if err != nil {
		return nil, err
	}
	f, err := runtime.ToIntegerOrInfinity(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	if f < 0 || f >= float64(runtime.StringLength(s)) {
		return runtime.EmptyStr, nil
	}
	return runtime.NewString(runtime.Substring(s, int(f), int(f)+1)), nil
}

func stringCharCodeAt(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "charCodeAt")
	if err != nil {
		return nil, err
	}
	f, err := runtime.ToIntegerOrInfinity(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	if f < 0 || f >= float64(runtime.StringLength(s)) {
		return runtime.NaN, nil
	}
	u, _ := runtime.CodeUnitAt(s, int(f))
	return runtime.NewNumber(float64(u)), nil
}

func stringCodePointAt(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "codePointAt")
	if err != nil {
		return nil, err
	}
	f, err := runtime.ToIntegerOrInfinity(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	units := runtime.CodeUnits(s)
	if f < 0 || f >= float64(len(units)) {
		return runtime.Undefined, nil
	}
	i := int(f)
	if utf16.IsSurrogate(rune(units[i])) && i+1 < len(units) {
		if cp := utf16.DecodeRune(rune(units[i]), rune(units[i+1])); cp != 0xFFFD {
			return runtime.NewNumber(float64(cp)), nil
		}
	}
	return runtime.NewNumber(float64(units[i])), nil
}

func stringConcat(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "concat")
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString(s)
	for _, a := range args {
		as, err := runtime.ToString(a)
		if err != nil {
			return nil, err
		}
		sb.WriteString(as)
	}
	return runtime.NewString(sb.String()), nil
}

// indexUnits finds needle in hay at or after from, in code units.
func indexUnits(hay, needle []uint16, from int) int {
	for i := max(from, 0); i+len(needle) <= len(hay); i++ {
		if equalUnits(hay[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func lastIndexUnits(hay, needle []uint16, from int) int {
	for i := min(from, len(hay)-len(needle)); i >= 0; i-- {
		if equalUnits(hay[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func equalUnits(a, b []uint16) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// searchArgs reads this and a search string, rejecting RegExp arguments
// where the method forbids them.
func searchArgs(this *runtime.Value, args []*runtime.Value, method string) (s, search string, err error) {
	if s, err = thisString(this, method); err != nil {
		return "", "", err
	}
	if _, ok := asRegExp(argAt(args, 0)); ok {
		return "", "", runtime.NewTypeError("First argument to String.prototype.%s must not be a regular expression", method)
	}
	search, err = runtime.ToString(argAt(args, 0))
	return s, search, err
}

func stringIndexOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "indexOf")
	if err != nil {
		return nil, err
	}
	search, err := runtime.ToString(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	f, err := runtime.ToIntegerOrInfinity(argAt(args, 1))
	if err != nil {
		return nil, err
	}
	units := runtime.CodeUnits(s)
	return runtime.NewNumber(float64(indexUnits(units, runtime.CodeUnits(search), clampPos(f, len(units))))), nil
}

func stringLastIndexOf(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "lastIndexOf")
	if err != nil {
		return nil, err
	}
	search, err := runtime.ToString(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	units := runtime.CodeUnits(s)
	from := len(units)
	if n, err := runtime.ToNumber(argAt(args, 1)); err != nil {
		return nil, err
	} else if !math.IsNaN(n) {
		from = clampPos(runtime.IntegerOrInfinity(n), len(units))
	}
	return runtime.NewNumber(float64(lastIndexUnits(units, runtime.CodeUnits(search), from))), nil
}

func stringIncludes(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, search, err := searchArgs(this, args, "includes")
	if err != nil {
		return nil, err
	}
	f, err := runtime.ToIntegerOrInfinity(argAt(args, 1))
	if err != nil {
		return nil, err
	}
	units := runtime.CodeUnits(s)
	return runtime.NewBool(indexUnits(units, runtime.CodeUnits(search), clampPos(f, len(units))) >= 0), nil
}

func stringStartsWith(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, search, err := searchArgs(this, args, "startsWith")
	if err != nil {
		return nil, err
	}
	f, err := runtime.ToIntegerOrInfinity(argAt(args, 1))
	if err != nil {
		return nil, err
	}
	units, needle := runtime.CodeUnits(s), runtime.CodeUnits(search)
	start := clampPos(f, len(units))
	if start+len(needle) > len(units) {
		return runtime.False, nil
	}
	return runtime.NewBool(equalUnits(units[start:start+len(needle)], needle)), nil
}

func stringEndsWith(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, search, err := searchArgs(this, args, "endsWith")
	if err != nil {
		return nil, err
	}
	units, needle := runtime.CodeUnits(s), runtime.CodeUnits(search)
	f, err := position(argAt(args, 1), float64(len(units)))
	if err != nil {
		return nil, err
	}
	end := clampPos(f, len(units))
	start := end - len(needle)
	if start < 0 {
		return runtime.False, nil
	}
	return runtime.NewBool(equalUnits(units[start:end], needle)), nil
}

func stringSlice(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "slice")
	if err != nil {
		return nil, err
	}
	n := runtime.StringLength(s)
	start, err := relativeIndex(argAt(args, 0), n, 0)
	if err != nil {
		return nil, err
	}
	end, err := relativeIndex(argAt(args, 1), n, n)
	if err != nil {
		return nil, err
	}
	return runtime.NewString(runtime.Substring(s, start, end)), nil
}

func stringSubstring(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "substring")
	if err != nil {
		return nil, err
	}
	n := runtime.StringLength(s)
	a, err := runtime.ToIntegerOrInfinity(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	b, err := position(argAt(args, 1), float64(n))
	if err != nil {
		return nil, err
	}
	start, end := clampPos(a, n), clampPos(b, n)
	if start > end {
		start, end = end, start
	}
	return runtime.NewString(runtime.Substring(s, start, end)), nil
}

func stringSubstr(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "substr")
	if err != nil {
		return nil, err
	}
	n := runtime.StringLength(s)
	start, err := relativeIndex(argAt(args, 0), n, 0)
	if err != nil {
		return nil, err
	}
	length, err := position(argAt(args, 1), float64(n))
	if err != nil {
		return nil, err
	}
	end := clampPos(float64(start)+math.Max(length, 0), n)
	return runtime.NewString(runtime.Substring(s, start, end)), nil
}

func stringToUpperCase(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "toUpperCase")
	if err != nil {
		return nil, err
	}
	return runtime.NewString(upper.String(s)), nil
}

func stringToLowerCase(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "toLowerCase")
	if err != nil {
		return nil, err
	}
	return runtime.NewString(lower.String(s)), nil
}

func stringLocaleCompare(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "localeCompare")
	if err != nil {
		return nil, err
	}
	that, err := runtime.ToString(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(collate.New(language.Und).CompareString(s, that))), nil
}

func stringNormalize(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "normalize")
	if err != nil {
		return nil, err
	}
	form := "NFC"
	if f := argAt(args, 0); !f.IsUndefined() {
		if form, err = runtime.ToString(f); err != nil {
			return nil, err
		}
	}
	forms := map[string]norm.Form{"NFC": norm.NFC, "NFD": norm.NFD, "NFKC": norm.NFKC, "NFKD": norm.NFKD}
	nf, ok := forms[form]
	if !ok {
		return nil, runtime.NewRangeError("The normalization form should be one of NFC, NFD, NFKC, NFKD.")
	}
	return runtime.NewString(nf.String(s)), nil
}

func stringTrim(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "trim")
	if err != nil {
		return nil, err
	}
	return runtime.NewString(runtime.TrimSpace(s)), nil
}

func stringTrimStart(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "trimStart")
	if err != nil {
		return nil, err
	}
	return runtime.NewString(strings.TrimLeftFunc(s, runtime.IsSpace)), nil
}

func stringTrimEnd(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "trimEnd")
	if err != nil {
		return nil, err
	}
	return runtime.NewString(strings.TrimRightFunc(s, runtime.IsSpace)), nil
}

func stringRepeat(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "repeat")
	if err != nil {
		return nil, err
	}
	n, err := runtime.ToIntegerOrInfinity(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	if n < 0 || math.IsInf(n, 1) {
		return nil, runtime.NewRangeError("Invalid count value: %s", runtime.NumberToString(n))
	}
	if s == "" || n == 0 {
		return runtime.EmptyStr, nil
	}
	if n*float64(len(s)) > 1<<29 {
		return nil, runtime.NewRangeError("Invalid string length")
	}
	return runtime.NewString(strings.Repeat(s, int(n))), nil
}

func pad(this *runtime.Value, args []*runtime.Value, method string, atStart bool) (*runtime.Value, error) {
	s, err := thisString(this, method)
	if err != nil {
		return nil, err
	}
	maxLen, err := runtime.ToLength(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	filler := " "
	if f := argAt(args, 1); !f.IsUndefined() {
		if filler, err = runtime.ToString(f); err != nil {
			return nil, err
		}
	}
	n := runtime.StringLength(s)
	if int(maxLen) <= n || filler == "" {
		return runtime.NewString(s), nil
	}
	if maxLen > 1<<29 {
		return nil, runtime.NewRangeError("Invalid string length")
	}
	fill := int(maxLen) - n
	fu := runtime.CodeUnits(filler)
	units := make([]uint16, fill)
	for i := range units {
		units[i] = fu[i%len(fu)]
	}
	padding := runtime.StringFromCodeUnits(units)
	if atStart {
		return runtime.NewString(padding + s), nil
	}
	return runtime.NewString(s + padding), nil
}

func stringPadStart(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return pad(this, args, "padStart", true)
}

func stringPadEnd(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return pad(this, args, "padEnd", false)
}

func stringSplit(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "split")
	if err != nil {
		return nil, err
	}
	limit := math.MaxUint32
	if l := argAt(args, 1); !l.IsUndefined() {
		u, err := runtime.ToUint32(l)
		if err != nil {
			return nil, err
		}
		limit = int(u)
	}
	sepArg := argAt(args, 0)
	if x, ok := asRegExp(sepArg); ok {
		return regexpSplit(r, x, s, limit)
	}
	if sepArg.IsUndefined() {
		if limit == 0 {
			return r.NewArrayValue(nil), nil
		}
		return stringList(r, []string{s}), nil
	}
	sep, err := runtime.ToString(sepArg)
	if err != nil {
		return nil, err
	}
	if limit == 0 {
		return r.NewArrayValue(nil), nil
	}
	units, su := runtime.CodeUnits(s), runtime.CodeUnits(sep)
	var parts []string
	if len(su) == 0 {
		for i := 0; i < len(units) && len(parts) < limit; i++ {
			parts = append(parts, runtime.StringFromCodeUnits(units[i:i+1]))
		}
		return stringList(r, parts), nil
	}
	p := 0
	for {
		q := indexUnits(units, su, p)
		if q < 0 {
			break
		}
		parts = append(parts, runtime.StringFromCodeUnits(units[p:q]))
		if len(parts) == limit {
			return stringList(r, parts), nil
		}
		p = q + len(su)
	}
	parts = append(parts, runtime.StringFromCodeUnits(units[p:]))
	return stringList(r, parts), nil
}

// literalMatch describes an occurrence of a plain search string so it can
// share the replacement machinery of RegExp matches.
func literalMatch(start, length int) *regMatch {
	return &regMatch{spans: [][2]int{{start, start + length}}, names: []string{""}}
}

func stringReplace(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "replace")
	if err != nil {
		return nil, err
	}
	if x, ok := asRegExp(argAt(args, 0)); ok {
		return regexpReplace(r, argAt(args, 0).Object, x, s, argAt(args, 1))
	}
	search, err := runtime.ToString(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	rep, err := replacer(r, argAt(args, 1))
	if err != nil {
		return nil, err
	}
	su := runtime.CodeUnits(search)
	i := indexUnits(runtime.CodeUnits(s), su, 0)
	if i < 0 {
		return runtime.NewString(s), nil
	}
	out, err := spliceMatches(s, []*regMatch{literalMatch(i, len(su))}, rep)
	if err != nil {
		return nil, err
	}
	return runtime.NewString(out), nil
}

func stringReplaceAll(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "replaceAll")
	if err != nil {
		return nil, err
	}
	if x, ok := asRegExp(argAt(args, 0)); ok {
		if !x.has('g') {
			return nil, runtime.NewTypeError("replaceAll must be called with a global RegExp")
		}
		return regexpReplace(r, argAt(args, 0).Object, x, s, argAt(args, 1))
	}
	search, err := runtime.ToString(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	rep, err := replacer(r, argAt(args, 1))
	if err != nil {
		return nil, err
	}
	units, su := runtime.CodeUnits(s), runtime.CodeUnits(search)
	step := max(len(su), 1)
	var matches []*regMatch
	for i := indexUnits(units, su, 0); i >= 0; i = indexUnits(units, su, i+step) {
		matches = append(matches, literalMatch(i, len(su)))
		if i+step > len(units) {
			break
		}
	}
	out, err := spliceMatches(s, matches, rep)
	if err != nil {
		return nil, err
	}
	return runtime.NewString(out), nil
}

// regexpArg returns the argument as a RegExp, compiling it from its string
// form (with flags) when it is not one.
func regexpArg(r *runtime.Realm, v *runtime.Value, flags string) (*runtime.Object, *regExp, error) {
	if x, ok := asRegExp(v); ok {
		return v.Object, x, nil
	}
	pattern := ""
	if !v.IsUndefined() {
		var err error
		if pattern, err = runtime.ToString(v); err != nil {
			return nil, nil, err
		}
	}
	rv, err := NewRegExp(r, pattern, flags)
	if err != nil {
		return nil, nil, err
	}
	return rv.Object, rv.Object.Internal.(*regExp), nil
}

func stringMatch(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "match")
	if err != nil {
		return nil, err
	}
	obj, x, err := regexpArg(r, argAt(args, 0), "")
	if err != nil {
		return nil, err
	}
	if !x.has('g') {
		return regexpExecString(r, obj, x, s)
	}
	matches, err := allMatches(obj, x, s)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return runtime.Null, nil
	}
	strs := make([]string, len(matches))
	for i, m := range matches {
		strs[i] = runtime.Substring(s, m.start(), m.end())
	}
	return stringList(r, strs), nil
}

func stringMatchAll(proto *runtime.Object) Native {
	return func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		s, err := thisString(this, "matchAll")
		if err != nil {
			return nil, err
		}
		if x, ok := asRegExp(argAt(args, 0)); ok && !x.has('g') {
			return nil, runtime.NewTypeError("String.prototype.matchAll called with a non-global RegExp argument")
		}
		src, x, err := regexpArg(r, argAt(args, 0), "g")
		if err != nil {
			return nil, err
		}
		// Iterate over a private copy so the caller's lastIndex is untouched.
		clone, err := newRegExp(r, x.source, x.flags, r.RegExpPrototype)
		if err != nil {
			return nil, err
		}
		last, err := src.Get(runtime.StrKey("lastIndex"))
		if err != nil {
			return nil, err
		}
		if err := setProp(clone.Object, runtime.StrKey("lastIndex"), last); err != nil {
			return nil, err
		}
		cx := clone.Object.Internal.(*regExp)
		return newIterator(proto, func() (*runtime.Value, bool, error) {
			m, err := execRaw(clone.Object, cx, s)
			if err != nil || m == nil {
				return nil, false, err
			}
			if m.start() == m.end() {
				next := runtime.NewNumber(float64(advance(cx, s, m.end())))
				if err := setProp(clone.Object, runtime.StrKey("lastIndex"), next); err != nil {
					return nil, false, err
				}
			}
			return matchResult(r, m, s), true, nil
		}), nil
	}
}

func stringSearch(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "search")
	if err != nil {
		return nil, err
	}
	_, x, err := regexpArg(r, argAt(args, 0), "")
	if err != nil {
		return nil, err
	}
	m, err := x.matchAt(s, 0)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return runtime.NewNumber(-1), nil
	}
	return runtime.NewNumber(float64(m.start())), nil
}

// stringIterator yields code points, pairing surrogates.
func stringIterator(proto *runtime.Object) Native {
	return func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		s, err := thisString(this, "[Symbol.iterator]")
		if err != nil {
			return nil, err
		}
		units := runtime.CodeUnits(s)
		i := 0
		return newIterator(proto, func() (*runtime.Value, bool, error) {
			if i >= len(units) {
				return nil, false, nil
			}
			w := 1
			if utf16.IsSurrogate(rune(units[i])) && i+1 < len(units) &&
				utf16.DecodeRune(rune(units[i]), rune(units[i+1])) != 0xFFFD {
				w = 2
			}
			v := runtime.NewString(runtime.StringFromCodeUnits(units[i : i+w]))
			i += w
			return v, true, nil
		}), nil
	}
}

func stringFromCharCode(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	units := make([]uint16, len(args))
	for i, a := range args {
		n, err := runtime.ToNumber(a)
		if err != nil {
			return nil, err
		}
		units[i] = uint16(runtime.Uint32(n))
	}
	return runtime.NewString(runtime.StringFromCodeUnits(units)), nil
}

func stringFromCodePoint(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	var sb strings.Builder
	for _, a := range args {
		n, err := runtime.ToNumber(a)
		if err != nil {
			return nil, err
		}
		if n != math.Trunc(n) || n < 0 || n > 0x10FFFF {
			return nil, runtime.NewRangeError("Invalid code point %s", runtime.NumberToString(n))
		}
		sb.WriteRune(rune(n))
	}
	return runtime.NewString(sb.String()), nil
}

func stringRaw(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	cooked, err := r.ToObject(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	rawV, err := cooked.Get(runtime.StrKey("raw"))
	if err != nil {
		return nil, err
	}
	raw, err := r.ToObject(rawV)
	if err != nil {
		return nil, err
	}
	n, err := runtime.LengthOf(raw)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for i := range n {
		v, err := raw.Get(runtime.IndexKey(i))
		if err != nil {
			return nil, err
		}
		seg, err := runtime.ToString(v)
		if err != nil {
			return nil, err
		}
		sb.WriteString(seg)
		if i+1 < n && i+1 < len(args) {
			sub, err := runtime.ToString(args[i+1])
			if err != nil {
				return nil, err
			}
			sb.WriteString(sub)
		}
	}
	return runtime.NewString(sb.String()), nil
}

// htmlMethod builds one of the legacy HTML wrapper methods.
func htmlMethod(tag, attr string) Native {
	return func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		s, err := thisString(this, tag)
		if err != nil {
			return nil, err
		}
		open := "<" + tag
		if attr != "" {
			v, err := runtime.ToString(argAt(args, 0))
			if err != nil {
				return nil, err
			}
			open += " " + attr + `="` + strings.ReplaceAll(v, `"`, "&quot;") + `"`
		}
		return runtime.NewString(open + ">" + s + "</" + tag + ">"), nil
	}
}
