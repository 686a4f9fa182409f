// Package phone provides phone number formatting for staff-facing output.
// Stored lead phones are plain digit strings (see platform/contact); this
// package turns them into dialable E.164 and readable international forms.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "CL"

func parse(digits string) (*phonenumbers.PhoneNumber, bool) {
	trimmed := strings.TrimSpace(digits)
	if trimmed == "" {
		return nil, false
	}

	// Digit strings that already carry a country code parse as international.
	candidates := []string{trimmed}
	if !strings.HasPrefix(trimmed, "+") {
		candidates = []string{"+" + trimmed, trimmed}
	}

	for _, candidate := range candidates {
		number, err := phonenumbers.Parse(candidate, defaultRegion)
		if err != nil {
			continue
		}
		if phonenumbers.IsValidNumber(number) {
			return number, true
		}
	}
	return nil, false
}

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	number, ok := parse(input)
	if !ok {
		return strings.TrimSpace(input)
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// FormatInternational renders a number like "+56 9 1234 5678".
// Unparseable input is returned trimmed.
func FormatInternational(input string) string {
	number, ok := parse(input)
	if !ok {
		return strings.TrimSpace(input)
	}
	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}
