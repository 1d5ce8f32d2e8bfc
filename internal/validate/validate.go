// Package validate normalizes and checks user-supplied profile fields before
// they reach the store.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field limits, counted in characters.
const (
	MaxNameLen     = 100
	MaxEmailLen    = 254
	MaxHobbiesLen  = 200
	MaxLocationLen = 100
	IdentifierLen  = 24

	minEmailLen = 3
)

var (
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s]+$`)
	identifierRe = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)
)

// NormalizeText trims surrounding whitespace and silently truncates the
// result to maxLen characters.
func NormalizeText(value string, maxLen int) string {
	s := strings.TrimSpace(value)
	if maxLen < 0 {
		maxLen = 0
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen])
}

// IsNonEmptyString reports whether value has any non-whitespace content.
func IsNonEmptyString(value string) bool {
	return strings.TrimSpace(value) != ""
}

// IsStorableText reports whether value is valid UTF-8 without NUL bytes,
// which text columns refuse.
func IsStorableText(value string) bool {
	return utf8.ValidString(value) && !strings.ContainsRune(value, 0)
}

// IsValidEmail is a permissive local@domain.tld shape check, not RFC 5322.
func IsValidEmail(value string) bool {
	s := strings.TrimSpace(value)
	n := utf8.RuneCountInString(s)
	if n < minEmailLen || n > MaxEmailLen {
		return false
	}
	return emailRe.MatchString(s)
}

// IsValidIdentifier reports whether value is exactly 24 hex characters.
func IsValidIdentifier(value string) bool {
	return identifierRe.MatchString(value)
}
