package utils

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString removes dangerous characters from string
func SanitizeString(input string) string {
	// Remove null bytes and control characters
	input = strings.ReplaceAll(input, "\x00", "")

	// Trim whitespace
	input = strings.TrimSpace(input)

	return input
}

// TruncateRunes shortens a string to at most n runes. Occupant descriptors
// are mostly CJK, so byte-based truncation would split characters.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// IsValidTimeRange checks the "HH:MM-HH:MM" shape of a slot time.
func IsValidTimeRange(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return false
	}
	for _, p := range parts {
		if len(p) != 5 || p[2] != ':' {
			return false
		}
		for i, c := range p {
			if i == 2 {
				continue
			}
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}
