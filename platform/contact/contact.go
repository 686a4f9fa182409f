// Package contact validates and normalizes the contact details people type
// into the chat widget and intake forms. Functions are pure and never panic.
package contact

import (
	"strings"
	"unicode"
)

const (
	minPhoneDigits = 8
	maxPhoneDigits = 15
)

// ValidateEmail reports whether s has the shape local@domain.tld.
// Deliverability is not checked.
func ValidateEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsFunc(s, unicode.IsSpace) {
		return false
	}

	at := strings.IndexByte(s, '@')
	if at <= 0 || at != strings.LastIndexByte(s, '@') {
		return false
	}

	domain := s[at+1:]
	if !strings.Contains(domain, ".") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return false
		}
	}
	return true
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidatePhone strips spaces, tabs and hyphens (plus one leading '+'),
// then requires 8 to 15 digits. It returns the digit string on success.
func ValidatePhone(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "+")

	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		switch {
		case r == '-' || unicode.IsSpace(r):
			continue
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			return "", false
		}
	}

	digits := b.String()
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", false
	}
	return digits, true
}

// Details is a normalized contact pair. Empty fields were absent or invalid.
type Details struct {
	Email string
	Phone string
}

// HasAny reports whether at least one contact method survived validation.
func (d Details) HasAny() bool {
	return d.Email != "" || d.Phone != ""
}

// Normalize validates email and phone independently and keeps the valid ones.
func Normalize(email, phone string) Details {
	var d Details
	if ValidateEmail(email) {
		d.Email = NormalizeEmail(email)
	}
	if digits, ok := ValidatePhone(phone); ok {
		d.Phone = digits
	}
	return d
}
