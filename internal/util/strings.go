package util

import "strings"

// SingleLine collapses every run of line breaks in s into a single space so
// that s can be rendered as exactly one line.
func SingleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r'
	}), " ")
}
