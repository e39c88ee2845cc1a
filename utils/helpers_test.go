package utils

import "testing"

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		input string
		exp   string
	}{
		{input: "  依珊  ", exp: "依珊"},
		{input: "Lisa\x00", exp: "Lisa"},
		{input: "", exp: ""},
	}

	for _, tc := range tests {
		if got := SanitizeString(tc.input); got != tc.exp {
			t.Fatalf("%q: expected %q, got %q", tc.input, tc.exp, got)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		input string
		n     int
		exp   string
	}{
		{input: "基礎彩妝", n: 2, exp: "基礎"},
		{input: "基礎彩妝", n: 10, exp: "基礎彩妝"},
		{input: "abc", n: 3, exp: "abc"},
		{input: "", n: 5, exp: ""},
	}

	for _, tc := range tests {
		if got := TruncateRunes(tc.input, tc.n); got != tc.exp {
			t.Fatalf("%q/%d: expected %q, got %q", tc.input, tc.n, tc.exp, got)
		}
	}
}

func TestIsValidTimeRange(t *testing.T) {
	tests := []struct {
		input string
		exp   bool
	}{
		{input: "10:00-11:00", exp: true},
		{input: "20:00-21:00", exp: true},
		{input: "10:00", exp: false},
		{input: "10:00-11:00-12:00", exp: false},
		{input: "1000-1100", exp: false},
		{input: "aa:00-11:00", exp: false},
		{input: "", exp: false},
	}

	for _, tc := range tests {
		if got := IsValidTimeRange(tc.input); got != tc.exp {
			t.Fatalf("%q: expected %v, got %v", tc.input, tc.exp, got)
		}
	}
}
