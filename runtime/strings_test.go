package runtime

import "testing"

func TestStringLength(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"héllo", 5},
		{"\U0001F600", 2},
		{"a\U0001F600b", 4},
	}
	for _, tt := range tests {
		if got := StringLength(tt.s); got != tt.want {
			t.Errorf("StringLength(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
}

func TestCodeUnitAt(t *testing.T) {
	s := "a\U0001F600"
	tests := []struct {
		i    int
		want uint16
		ok   bool
	}{
		{0, 'a', true},
		{1, 0xD83D, true},
		{2, 0xDE00, true},
		{3, 0, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		got, ok := CodeUnitAt(s, tt.i)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CodeUnitAt(%d) = %#x, %v, want %#x, %v", tt.i, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSubstring(t *testing.T) {
	tests := []struct {
		s          string
		start, end int
		want       string
	}{
		{"hello", 1, 3, "el"},
		{"hello", -5, 2, "he"},
		{"hello", 3, 99, "lo"},
		{"hello", 4, 2, ""},
		{"x\U0001F600y", 1, 3, "\U0001F600"},
		{"x\U0001F600y", 1, 2, "�"},
		{"héllo", 1, 2, "é"},
	}
	for _, tt := range tests {
		if got := Substring(tt.s, tt.start, tt.end); got != tt.want {
			t.Errorf("Substring(%q, %d, %d) = %q, want %q", tt.s, tt.start, tt.end, got, tt.want)
		}
	}
}

func TestCodeUnitsRoundTrip(t *testing.T) {
	for _, s := range []string{"", "plain", "\U0001F600 ok", "日本"} {
		if got := StringFromCodeUnits(CodeUnits(s)); got != s {
			t.Errorf("round trip of %q gave %q", s, got)
		}
	}
}

func TestQuoteString(t *testing.T) {
	tests := map[string]string{
		"plain":      `'plain'`,
		`say "hi"`:   `'say "hi"'`,
		"it's":       `'it\'s'`,
		"tab\there":  `'tab\there'`,
		`back\slash`: `'back\\slash'`,
	}
	for in, want := range tests {
		if got := QuoteString(in); got != want {
			t.Errorf("QuoteString(%q) = %s, want %s", in, got, want)
		}
	}
}
