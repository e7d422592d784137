package builtins

import (
	"math"
	"testing"

	"github.com/example/jscore/runtime"
)

func TestStringAccessors(t *testing.T) {
	r := newTestRealm()
	s := str("hello")
	tests := []struct {
		name string
		fn   Native
		arg  *runtime.Value
		want string
	}{
		{"charAt 1", stringCharAt, num(1), "'e'"},
		{"charAt out of range", stringCharAt, num(10), "''"},
		{"charAt default", stringCharAt, runtime.Undefined, "'h'"},
		{"at -1", stringAt, num(-1), "'o'"},
		{"at -6", stringAt, num(-6), "undefined"},
		{"charCodeAt 0", stringCharCodeAt, num(0), "104"},
		{"charCodeAt out of range", stringCharCodeAt, num(5), "NaN"},
		{"codePointAt past end", stringCodePointAt, num(5), "undefined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectInspect(t, call(t, r, tt.fn, s, tt.arg), tt.want)
		})
	}
}

func TestStringSurrogates(t *testing.T) {
	r := newTestRealm()
	s := str("a😀b")
	wrapped, err := r.ToObject(s)
	if err != nil {
		t.Fatal(err)
	}
	if got := getProp(t, runtime.NewObject(wrapped), "length"); got.Number != 4 {
		t.Errorf("length: got %v, want 4", got.Number)
	}
	if got := call(t, r, stringCodePointAt, s, num(1)); got.Number != 0x1F600 {
		t.Errorf("codePointAt(1): got %x", int(got.Number))
	}
	if got := call(t, r, stringCodePointAt, s, num(2)); got.Number != 0xDE00 {
		t.Errorf("codePointAt(2): got %x", int(got.Number))
	}
	if got := call(t, r, stringCharCodeAt, s, num(1)); got.Number != 0xD83D {
		t.Errorf("charCodeAt(1): got %x", int(got.Number))
	}

	it := call(t, r, stringIterator(newIteratorPrototype(r, "String Iterator")), s)
	var got []string
	for _, v := range collect(t, r, it) {
		got = append(got, v.Str)
	}
	if len(got) != 3 || got[1] != "😀" {
		t.Errorf("iteration: got %q", got)
	}
}

func TestStringSearch(t *testing.T) {
	r := newTestRealm()
	s := str("hello world, hello")
	tests := []struct {
		name string
		fn   Native
		args []*runtime.Value
		want string
	}{
		{"indexOf", stringIndexOf, []*runtime.Value{str("hello")}, "0"},
		{"indexOf from", stringIndexOf, []*runtime.Value{str("hello"), num(1)}, "13"},
		{"indexOf missing", stringIndexOf, []*runtime.Value{str("xyz")}, "-1"},
		{"indexOf empty past end", stringIndexOf, []*runtime.Value{str(""), num(99)}, "18"},
		{"lastIndexOf", stringLastIndexOf, []*runtime.Value{str("hello")}, "13"},
		{"lastIndexOf from", stringLastIndexOf, []*runtime.Value{str("hello"), num(12)}, "0"},
		{"lastIndexOf NaN from", stringLastIndexOf, []*runtime.Value{str("o"), runtime.NaN}, "17"},
		{"includes", stringIncludes, []*runtime.Value{str("world")}, "true"},
		{"includes from", stringIncludes, []*runtime.Value{str("world"), num(7)}, "false"},
		{"startsWith", stringStartsWith, []*runtime.Value{str("hello")}, "true"},
		{"startsWith at", stringStartsWith, []*runtime.Value{str("world"), num(6)}, "true"},
		{"endsWith", stringEndsWith, []*runtime.Value{str("hello")}, "true"},
		{"endsWith at", stringEndsWith, []*runtime.Value{str("world"), num(11)}, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectInspect(t, call(t, r, tt.fn, s, tt.args...), tt.want)
		})
	}

	re := mustRegExp(t, r, "o", "")
	for _, fn := range []Native{stringIncludes, stringStartsWith, stringEndsWith} {
		callErr(t, r, runtime.KindTypeError, fn, s, re)
	}
}

func TestStringSlicing(t *testing.T) {
	r := newTestRealm()
	s := str("abcdef")
	tests := []struct {
		name string
		fn   Native
		args []*runtime.Value
		want string
	}{
		{"slice", stringSlice, []*runtime.Value{num(1), num(3)}, "bc"},
		{"slice negative", stringSlice, []*runtime.Value{num(-2)}, "ef"},
		{"slice crossed", stringSlice, []*runtime.Value{num(4), num(2)}, ""},
		{"substring swapped", stringSubstring, []*runtime.Value{num(4), num(2)}, "cd"},
		{"substring negative", stringSubstring, []*runtime.Value{num(-3), num(2)}, "ab"},
		{"substring NaN", stringSubstring, []*runtime.Value{runtime.NaN}, "abcdef"},
		{"substr", stringSubstr, []*runtime.Value{num(1), num(2)}, "bc"},
		{"substr negative start", stringSubstr, []*runtime.Value{num(-3), num(2)}, "de"},
		{"substr negative length", stringSubstr, []*runtime.Value{num(1), num(-1)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := call(t, r, tt.fn, s, tt.args...); got.Str != tt.want {
				t.Errorf("got %q, want %q", got.Str, tt.want)
			}
		})
	}
}

func TestStringTransforms(t *testing.T) {
	r := newTestRealm()
	tests := []struct {
		name string
		fn   Native
		this string
		args []*runtime.Value
		want string
	}{
		{"toUpperCase", stringToUpperCase, "Hello", nil, "HELLO"},
		{"toUpperCase sharp s", stringToUpperCase, "straße", nil, "STRASSE"},
		{"toLowerCase", stringToLowerCase, "HeLLo", nil, "hello"},
		{"trim", stringTrim, " \t\n hi \u00a0\ufeff", nil, "hi"},
		{"trimStart", stringTrimStart, "  hi  ", nil, "hi  "},
		{"trimEnd", stringTrimEnd, "  hi  ", nil, "  hi"},
		{"repeat", stringRepeat, "ab", []*runtime.Value{num(3)}, "ababab"},
		{"repeat zero", stringRepeat, "ab", []*runtime.Value{num(0)}, ""},
		{"padStart", stringPadStart, "5", []*runtime.Value{num(3), str("0")}, "005"},
		{"padStart cycle", stringPadStart, "abc", []*runtime.Value{num(10), str("123")}, "1231231abc"},
		{"padEnd default filler", stringPadEnd, "ab", []*runtime.Value{num(4)}, "ab  "},
		{"padEnd shorter", stringPadEnd, "abc", []*runtime.Value{num(2)}, "abc"},
		{"padEnd empty filler", stringPadEnd, "abc", []*runtime.Value{num(6), str("")}, "abc"},
		{"concat", stringConcat, "a", []*runtime.Value{num(1), runtime.Null}, "a1null"},
		{"normalize NFD", stringNormalize, "\u00e9", []*runtime.Value{str("NFD")}, "e\u0301"},
		{"normalize default", stringNormalize, "e\u0301", nil, "\u00e9"},
		{"anchor", htmlMethod("a", "name"), "x", []*runtime.Value{str(`"q"`)}, `<a name="&quot;q&quot;">x</a>`},
		{"bold", htmlMethod("b", ""), "x", nil, "<b>x</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := call(t, r, tt.fn, str(tt.this), tt.args...); got.Str != tt.want {
				t.Errorf("got %q, want %q", got.Str, tt.want)
			}
		})
	}

	callErr(t, r, runtime.KindRangeError, stringRepeat, str("a"), num(-1))
	callErr(t, r, runtime.KindRangeError, stringRepeat, str("a"), runtime.NewNumber(math.Inf(1)))
	callErr(t, r, runtime.KindRangeError, stringNormalize, str("a"), str("NFX"))
	callErr(t, r, runtime.KindTypeError, stringTrim, runtime.Undefined)
	callErr(t, r, runtime.KindTypeError, stringToUpperCase, runtime.Null)
}

func TestStringLocaleCompare(t *testing.T) {
	r := newTestRealm()
	if got := call(t, r, stringLocaleCompare, str("a"), str("b")); got.Number >= 0 {
		t.Errorf("'a' vs 'b': got %v", got.Number)
	}
	if got := call(t, r, stringLocaleCompare, str("b"), str("a")); got.Number <= 0 {
		t.Errorf("'b' vs 'a': got %v", got.Number)
	}
	if got := call(t, r, stringLocaleCompare, str("x"), str("x")); got.Number != 0 {
		t.Errorf("'x' vs 'x': got %v", got.Number)
	}
}

func TestStringSplit(t *testing.T) {
	r := newTestRealm()
	tests := []struct {
		name string
		this string
		args []*runtime.Value
		want string
	}{
		{"comma", "a,b,c", []*runtime.Value{str(",")}, "[ 'a', 'b', 'c' ]"},
		{"limit", "a,b,c", []*runtime.Value{str(","), num(2)}, "[ 'a', 'b' ]"},
		{"limit zero", "a,b", []*runtime.Value{str(","), num(0)}, "[]"},
		{"empty separator", "abc", []*runtime.Value{str("")}, "[ 'a', 'b', 'c' ]"},
		{"no separator", "abc", nil, "[ 'abc' ]"},
		{"empty string", "", []*runtime.Value{str(",")}, "[ '' ]"},
		{"empty both", "", []*runtime.Value{str("")}, "[]"},
		{"multi-char", "a::b::", []*runtime.Value{str("::")}, "[ 'a', 'b', '' ]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectInspect(t, call(t, r, stringSplit, str(tt.this), tt.args...), tt.want)
		})
	}

	re := mustRegExp(t, r, `\s*(,)\s*`, "")
	expectInspect(t, call(t, r, stringSplit, str("a , b"), re), "[ 'a', ',', 'b' ]")
}

func TestStringReplace(t *testing.T) {
	r := newTestRealm()
	upper := nativeFn(r, "upper", func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return call(t, r, stringToUpperCase, args[0]), nil
	})
	tests := []struct {
		name    string
		fn      Native
		this    string
		pattern *runtime.Value
		with    *runtime.Value
		want    string
	}{
		{"first only", stringReplace, "aXbXc", str("X"), str("-"), "a-bXc"},
		{"missing", stringReplace, "abc", str("z"), str("-"), "abc"},
		{"dollar patterns", stringReplace, "abc", str("b"), str("[$`|$&|$']"), "a[a|b|c]c"},
		{"function", stringReplace, "abc", str("b"), upper, "aBc"},
		{"all", stringReplaceAll, "aXbXc", str("X"), str("-"), "a-b-c"},
		{"all empty", stringReplaceAll, "ab", str(""), str("_"), "_a_b_"},
		{"regexp", stringReplace, "2024-05", mustRegExp(t, r, `(\d+)-(\d+)`, ""), str("$2/$1"), "05/2024"},
		{"regexp global", stringReplace, "a1b22", mustRegExp(t, r, `\d`, "g"), str("#"), "a#b##"},
		{"regexp named", stringReplace, "john smith", mustRegExp(t, r, `(?<first>\w+) (?<last>\w+)`, ""), str("$<last>, $<first>"), "smith, john"},
		{"regexp function", stringReplaceAll, "a-b", mustRegExp(t, r, `[a-z]`, "g"), upper, "A-B"},
		{"regexp empty matches", stringReplace, "ab", mustRegExp(t, r, "", "g"), str("."), ".a.b."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := call(t, r, tt.fn, str(tt.this), tt.pattern, tt.with); got.Str != tt.want {
				t.Errorf("got %q, want %q", got.Str, tt.want)
			}
		})
	}

	callErr(t, r, runtime.KindTypeError, stringReplaceAll, str("a"), mustRegExp(t, r, "a", ""), str("b"))
}

func TestStringReplaceCallbackArgs(t *testing.T) {
	r := newTestRealm()
	var seen []*runtime.Value
	record := nativeFn(r, "record", func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		seen = args
		return runtime.EmptyStr, nil
	})
	call(t, r, stringReplace, str("xaby"), mustRegExp(t, r, `a(b)(c)?`, ""), record)
	expectInspect(t, r.NewArrayValue(seen), "[ 'ab', 'b', undefined, 1, 'xaby' ]")
}

func TestStringMatch(t *testing.T) {
	r := newTestRealm()
	expectInspect(t, call(t, r, stringMatch, str("a1b22"), mustRegExp(t, r, `\d+`, "g")), "[ '1', '22' ]")
	expectInspect(t, call(t, r, stringMatch, str("abc"), mustRegExp(t, r, `\d`, "g")), "null")
	expectInspect(t, call(t, r, stringMatch, str("abc"), str("b")), "[ 'b', index: 1, input: 'abc', groups: undefined ]")

	if got := call(t, r, stringSearch, str("abc"), str("c")); got.Number != 2 {
		t.Errorf("search: got %v", got.Number)
	}
	if got := call(t, r, stringSearch, str("abc"), mustRegExp(t, r, "z", "")); got.Number != -1 {
		t.Errorf("search missing: got %v", got.Number)
	}
}

func TestStringMatchAll(t *testing.T) {
	r := newTestRealm()
	matchAll := stringMatchAll(newIteratorPrototype(r, "RegExp String Iterator"))
	re := mustRegExp(t, r, `(\d)`, "g")
	it := call(t, r, matchAll, str("a1b2"), re)

	var got []string
	for _, m := range collect(t, r, it) {
		got = append(got, elems(t, m)[1].Str+"@"+runtime.NumberToString(getProp(t, m, "index").Number))
	}
	if len(got) != 2 || got[0] != "1@1" || got[1] != "2@3" {
		t.Errorf("matchAll: got %q", got)
	}
	if last := getProp(t, re, "lastIndex"); last.Number != 0 {
		t.Errorf("matchAll must not move the caller's lastIndex, got %v", last.Number)
	}

	callErr(t, r, runtime.KindTypeError, matchAll, str("a"), mustRegExp(t, r, "a", ""))
}

func TestStringStatics(t *testing.T) {
	r := newTestRealm()
	if got := call(t, r, stringFromCharCode, runtime.Undefined, num(72), num(105), num(65536+33)); got.Str != "Hi!" {
		t.Errorf("fromCharCode: got %q", got.Str)
	}
	if got := call(t, r, stringFromCodePoint, runtime.Undefined, num(0x1F600)); got.Str != "😀" {
		t.Errorf("fromCodePoint: got %q", got.Str)
	}
	callErr(t, r, runtime.KindRangeError, stringFromCodePoint, runtime.Undefined, num(-1))
	callErr(t, r, runtime.KindRangeError, stringFromCodePoint, runtime.Undefined, num(1.5))
	callErr(t, r, runtime.KindRangeError, stringFromCodePoint, runtime.Undefined, num(0x110000))

	template := runtime.NewObject(r.NewPlainObject())
	template.Object.CreateDataProperty(runtime.StrKey("raw"), strs(r, "a", "b", "c"))
	if got := call(t, r, stringRaw, runtime.Undefined, template, num(1), num(2), num(3)); got.Str != "a1b2c" {
		t.Errorf("raw: got %q", got.Str)
	}
}

func TestStringConstructor(t *testing.T) {
	r := newTestRealm()
	ctor := global(t, r, "String")
	tests := []struct {
		arg  *runtime.Value
		want string
	}{
		{num(42), "42"},
		{runtime.Null, "null"},
		{runtime.NewSymbolValue(r.SymbolFor("k")), "Symbol(k)"},
		{nums(r, 1, 2), "1,2"},
	}
	for _, tt := range tests {
		if got := invoke(t, ctor, runtime.Undefined, tt.arg); got.Str != tt.want {
			t.Errorf("String(%s): got %q, want %q", inspect(tt.arg), got.Str, tt.want)
		}
	}
	if got := invoke(t, ctor, runtime.Undefined); got.Str != "" {
		t.Errorf("String(): got %q", got.Str)
	}

	w := construct(t, ctor, str("ab"))
	expectInspect(t, w, "[String: 'ab']")
	if got := getProp(t, w, "1"); got.Str != "b" {
		t.Errorf("wrapper index: got %s", inspect(got))
	}
	if got := call(t, r, stringValueOf, w); got.Str != "ab" {
		t.Errorf("valueOf: got %q", got.Str)
	}
	callErr(t, r, runtime.KindTypeError, stringValueOf, num(1))

	trimLeft := getProp(t, runtime.NewObject(r.StringPrototype), "trimLeft")
	trimStart := getProp(t, runtime.NewObject(r.StringPrototype), "trimStart")
	if trimLeft.Object != trimStart.Object {
		t.Error("trimLeft should be the same function as trimStart")
	}
}
