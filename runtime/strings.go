package runtime

import (
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// Script strings are sequences of UTF-16 code units while Go strings hold
// UTF-8. These helpers give length and indexing their script meaning.
// Lone surrogates produced by slicing decode to U+FFFD.

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// StringLength returns the length of s in UTF-16 code units.
func StringLength(s string) int {
	if isASCII(s) {
		return len(s)
	}
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// CodeUnits returns s as UTF-16.
func CodeUnits(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// StringFromCodeUnits builds a string from UTF-16 code units.
func StringFromCodeUnits(units []uint16) string {
	return string(utf16.Decode(units))
}

// CodeUnitAt returns the code unit at index i.
func CodeUnitAt(s string, i int) (uint16, bool) {
	if i < 0 {
		return 0, false
	}
	if isASCII(s) {
		if i >= len(s) {
			return 0, false
		}
		return uint16(s[i]), true
	}
	units := CodeUnits(s)
	if i >= len(units) {
		return 0, false
	}
	return units[i], true
}

// Substring returns code units [start, end) of s. Bounds are clamped.
func Substring(s string, start, end int) string {
	if isASCII(s) {
		start, end = clampRange(start, end, len(s))
		return s[start:end]
	}
	units := CodeUnits(s)
	start, end = clampRange(start, end, len(units))
	return StringFromCodeUnits(units[start:end])
}

func clampRange(start, end, n int) (int, int) {
	start = max(0, min(start, n))
	end = max(start, min(end, n))
	return start, end
}

// stringOwnProperty synthesizes the read-only index and length
// properties of String wrapper objects.
func stringOwnProperty(s string, key PropertyKey) (*Property, bool) {
	if key == lengthKey {
		return &Property{Value: NewNumber(float64(StringLength(s)))}, true
	}
	idx, ok := key.ArrayIndex()
	if !ok {
		return nil, false
	}
	if int(idx) >= StringLength(s) {
		return nil, false
	}
	return &Property{Value: NewString(Substring(s, int(idx), int(idx)+1)), Enumerable: true}, true
}

// QuoteString renders s as a single-quoted literal for display.
func QuoteString(s string) string {
	q := strconv.Quote(s)
	body := q[1 : len(q)-1]
	out := make([]byte, 0, len(body)+2)
	out = append(out, '\'')
	for i := 0; i < len(body); i++ {
		switch {
		case body[i] == '\\' && i+1 < len(body):
			if body[i+1] == '"' {
				out = append(out, '"')
			} else {
				out = append(out, '\\', body[i+1])
			}
			i++
		case body[i] == '\'':
			out = append(out, '\\', '\'')
		default:
			out = append(out, body[i])
		}
	}
	return string(append(out, '\''))
}
