package builtins

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/example/jscore/runtime"
)

// installGlobals defines the value properties and functions of the global
// object itself.
func installGlobals(r *runtime.Realm) {
	g := r.GlobalObject
	g.DefineData("globalThis", runtime.NewObject(g), runtime.AttrHidden)
	g.DefineData("NaN", runtime.NaN, runtime.AttrNone)
	g.DefineData("Infinity", runtime.PosInf, runtime.AttrNone)
	g.DefineData("undefined", runtime.Undefined, runtime.AttrNone)
	setMethods(r, g, []Method{
		{Name: "decodeURI", Length: 1, Fn: uriDecoder(";/?:@&=+$,#")},
		{Name: "decodeURIComponent", Length: 1, Fn: uriDecoder("")},
		{Name: "encodeURI", Length: 1, Fn: uriEncoder(";/?:@&=+$,-_.!~*'()#")},
		{Name: "encodeURIComponent", Length: 1, Fn: uriEncoder("-_.!~*'()")},
		{Name: "escape", Length: 1, Fn: globalEscape},
		{Name: "eval", Length: 1, Fn: globalEval},
		{Name: "isFinite", Length: 1, Fn: globalIsFinite},
		{Name: "isNaN", Length: 1, Fn: globalIsNaN},
		{Name: "parseFloat", Length: 1, Fn: globalParseFloat},
		{Name: "parseInt", Length: 2, Fn: globalParseInt},
		{Name: "unescape", Length: 1, Fn: globalUnescape},
	})
}

func globalIsNaN(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, err := runtime.ToNumber(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(math.IsNaN(n)), nil
}

func globalIsFinite(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, err := runtime.ToNumber(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
}

func globalEval(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return nil, runtime.NewEvalError("eval is not supported")
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 36
}

func globalParseInt(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := runtime.ToString(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	s = strings.TrimLeftFunc(s, runtime.IsSpace)
	radix32, err := runtime.ToInt32(argAt(args, 1))
	if err != nil {
		return nil, err
	}
	radix := int(radix32)

	sign := 1.0
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	stripPrefix := true
	if radix != 0 {
		if radix < 2 || radix > 36 {
			return runtime.NaN, nil
		}
		stripPrefix = radix == 16
	} else {
		radix = 10
	}
	if stripPrefix && len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s, radix = s[2:], 16
	}
	end := 0
	for end < len(s) && digitValue(s[end]) < radix {
		end++
	}
	if end == 0 {
		return runtime.NaN, nil
	}
	digits := s[:end]
	if radix == 10 {
		// Decimal strings round correctly through ParseFloat, even past 2^53.
		f, _ := strconv.ParseFloat(digits, 64)
		return runtime.NewNumber(sign * f), nil
	}
	f := 0.0
	for i := range len(digits) {
		f = f*float64(radix) + float64(digitValue(digits[i]))
	}
	return runtime.NewNumber(sign * f), nil
}

// decimalPrefix returns the longest prefix of s that is a
// StrDecimalLiteral.
func decimalPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return s[:i+len("Infinity")]
	}
	digits := func() int {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		return i - start
	}
	n := digits()
	if i < len(s) && s[i] == '.' {
		i++
		if n += digits(); n == 0 {
			i--
		}
	}
	if n == 0 {
		return ""
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		mark := i
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if digits() == 0 {
			i = mark
		}
	}
	return s[:i]
}

func globalParseFloat(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := runtime.ToString(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	prefix := decimalPrefix(strings.TrimLeftFunc(s, runtime.IsSpace))
	if prefix == "" {
		return runtime.NaN, nil
	}
	switch strings.TrimLeft(prefix, "+-") {
	case "Infinity":
		if prefix[0] == '-' {
			return runtime.NegInf, nil
		}
		return runtime.PosInf, nil
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil && !math.IsInf(f, 0) {
		return runtime.NaN, nil
	}
	return runtime.NewNumber(f), nil
}

const hexDigits = "0123456789ABCDEF"

func isURIUnreserved(c uint16, extra string) bool {
	return c < utf8.RuneSelf && (c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		strings.IndexByte(extra, byte(c)) >= 0)
}

// uriEncoder percent-encodes the UTF-8 form of every code point outside
// the unreserved set. Strings hold no lone surrogates, so every code
// point is encodable.
func uriEncoder(unreserved string) Native {
	return func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		s, err := runtime.ToString(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		var sb strings.Builder
		for _, cp := range s {
			if cp < utf8.RuneSelf && isURIUnreserved(uint16(cp), unreserved) {
				sb.WriteRune(cp)
				continue
			}
			var buf [utf8.UTFMax]byte
			for _, b := range buf[:utf8.EncodeRune(buf[:], cp)] {
				sb.WriteByte('%')
				sb.WriteByte(hexDigits[b>>4])
				sb.WriteByte(hexDigits[b&0xF])
			}
		}
		return runtime.NewString(sb.String()), nil
	}
}

func hexByte(s string, i int) (byte, bool) {
	if i+2 > len(s) {
		return 0, false
	}
	hi, lo := digitValue(s[i]), digitValue(s[i+1])
	if hi >= 16 || lo >= 16 {
		return 0, false
	}
	return byte(hi<<4 | lo), true
}

// uriDecoder reverses percent-encoding of well-formed UTF-8 sequences,
// leaving escapes of characters in reserved intact.
func uriDecoder(reserved string) Native {
	return func(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		s, err := runtime.ToString(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		malformed := runtime.NewURIError("URI malformed")
		var sb strings.Builder
		for i := 0; i < len(s); i++ {
			if s[i] != '%' {
				sb.WriteByte(s[i])
				continue
			}
			b, ok := hexByte(s, i+1)
			if !ok {
				return nil, malformed
			}
			if b < utf8.RuneSelf {
				if strings.IndexByte(reserved, b) >= 0 {
					sb.WriteString(s[i : i+3])
				} else {
					sb.WriteByte(b)
				}
				i += 2
				continue
			}
			n := 0
			switch {
			case b&0xE0 == 0xC0:
				n = 2
			case b&0xF0 == 0xE0:
				n = 3
			case b&0xF8 == 0xF0:
				n = 4
			default:
				return nil, malformed
			}
			seq := []byte{b}
			for k := 1; k < n; k++ {
				j := i + 3*k
				if j >= len(s) || s[j] != '%' {
					return nil, malformed
				}
				cb, ok := hexByte(s, j+1)
				if !ok || cb&0xC0 != 0x80 {
					return nil, malformed
				}
				seq = append(seq, cb)
			}
			cp, size := utf8.DecodeRune(seq)
			if cp == utf8.RuneError || size != n {
				return nil, malformed
			}
			sb.WriteRune(cp)
			i += 3*n - 1
		}
		return runtime.NewString(sb.String()), nil
	}
}

func isEscapeSafe(c uint16) bool {
	return isURIUnreserved(c, "@*_+-./")
}

// globalEscape applies the legacy escape encoding to UTF-16 code units.
func globalEscape(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := runtime.ToString(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, cu := range runtime.CodeUnits(s) {
		switch {
		case isEscapeSafe(cu):
			sb.WriteByte(byte(cu))
		case cu <= 0xFF:
			fmt.Fprintf(&sb, "%%%02X", cu)
		default:
			fmt.Fprintf(&sb, "%%u%04X", cu)
		}
	}
	return runtime.NewString(sb.String()), nil
}

func globalUnescape(r *runtime.Realm, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := runtime.ToString(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	in := runtime.CodeUnits(s)
	hexAt := func(i, n int) (uint16, bool) {
		if i+n > len(in) {
			return 0, false
		}
		var v uint16
		for _, c := range in[i : i+n] {
			d := 36
			if c < utf8.RuneSelf {
				d = digitValue(byte(c))
			}
			if d >= 16 {
				return 0, false
			}
			v = v<<4 | uint16(d)
		}
		return v, true
	}
	out := make([]uint16, 0, len(in))
	for i := 0; i < len(in); i++ {
		if in[i] == '%' {
			if i+1 < len(in) && in[i+1] == 'u' {
				if v, ok := hexAt(i+2, 4); ok {
					out = append(out, v)
					i += 5
					continue
				}
			}
			if v, ok := hexAt(i+1, 2); ok {
				out = append(out, v)
				i += 2
				continue
			}
		}
		out = append(out, in[i])
	}
	return runtime.NewString(runtime.StringFromCodeUnits(out)), nil
}
