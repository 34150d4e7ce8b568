// Package charclass provides the Unicode scanner primitives shared by the
// lexer and path model: UTF-8 decoding and the character-class predicates
// that drive identifier, digit, whitespace and path recognition.
//
// Decode is a thin wrapper over unicode/utf8 for inline rune decoding; the
// predicates below are the single source of truth so the lexer, the path
// model and the hierarchical lexer never diverge on what counts as a
// letter or a forbidden filesystem byte.
package charclass

import (
	"unicode"
	"unicode/utf8"
)

// Decode reads one rune from s and reports its byte width. A width of 0
// signals ill-formed UTF-8 at s[0].
func Decode(s string) (r rune, width int) {
	if len(s) == 0 {
		return 0, 0
	}
	r, width = utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && width <= 1 {
		return r, 0
	}
	return r, width
}

// IsLetter reports whether ch can start or continue an identifier.
func IsLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

// IsDigit reports whether ch is a decimal digit.
func IsDigit(ch rune) bool {
	return unicode.IsDigit(ch)
}

// IsHexDigit reports whether ch is a hex digit (0-9, a-f, A-F).
func IsHexDigit(ch rune) bool {
	return unicode.IsDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// IsSpace reports whether ch is insignificant whitespace.
func IsSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

// ForbiddenPathChars lists the bytes a canonical path may never contain,
// beyond the structural rules (no empty segment, no bare '.'/'..' except
// the leading '../' prefix).
const ForbiddenPathChars = "\\?*|\"<>,;=~"

// IsForbiddenFSChar reports whether ch is disallowed inside a path segment.
func IsForbiddenFSChar(ch rune) bool {
	if ch < 0x20 {
		return true
	}
	for _, f := range ForbiddenPathChars {
		if ch == f {
			return true
		}
	}
	return false
}
