// Package shortcode generates the human-friendly references staff read
// out over the phone, such as L-7KQ2ZP for leads and C-M4D9XA for cases.
package shortcode

import (
	"crypto/rand"
	"strings"
)

// Prefixes in use.
const (
	PrefixLead = "L"
	PrefixCase = "C"
)

// MaxAttempts bounds insert retries on a short code collision.
const MaxAttempts = 5

const (
	alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	length   = 6
)

// New returns prefix + "-" + 6 random characters. Ambiguous characters
// (0/O, 1/I) are left out of the alphabet.
func New(prefix string) string {
	buf := make([]byte, length)
	_, _ = rand.Read(buf)

	var b strings.Builder
	b.Grow(len(prefix) + 1 + length)
	b.WriteString(prefix)
	b.WriteByte('-')
	for _, v := range buf {
		b.WriteByte(alphabet[int(v)%len(alphabet)])
	}
	return b.String()
}
