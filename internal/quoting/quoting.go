// Package quoting provides SQL identifier quoting utilities.
package quoting

import "strings"

// DoubleQuote quotes a SQL identifier using double quotes (ANSI SQL).
// Internal double quotes are escaped by doubling them.
func DoubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Unquote strips surrounding double quotes from an identifier and collapses
// doubled internal quotes. Unquoted identifiers pass through unchanged.
func Unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}

// NeedsQuoting reports whether an identifier cannot be written bare: it is
// empty, starts with a digit, or contains characters outside [A-Za-z0-9_].
func NeedsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return true
			}
		default:
			return true
		}
	}
	return false
}

// QuoteIfNeeded double-quotes an identifier only when it cannot be written
// bare.
func QuoteIfNeeded(s string) string {
	if NeedsQuoting(s) {
		return DoubleQuote(s)
	}
	return s
}
