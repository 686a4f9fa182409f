package service

import (
	"regexp"
	"strings"

	"legal_intake_backend/internal/chat/leadblock"
	"legal_intake_backend/internal/chat/policy"
	"legal_intake_backend/internal/chat/repository"
	"legal_intake_backend/platform/contact"
)

var (
	emailToken = regexp.MustCompile(`[^\s@<>()"',;]+@[^\s@<>()"',;]+`)
	phoneToken = regexp.MustCompile(`\+?\d[\d \-]{6,20}\d`)
	namePhrase = regexp.MustCompile(`(?i:\b(?:me llamo|mi nombre es|soy))\s+(\p{Lu}[\p{L}'\-]*(?:\s+\p{Lu}[\p{L}'\-]*){0,3})`)
)

// deriveSlots rebuilds what the conversation has collected. The newest
// lead block in an assistant turn wins; user turns fill whatever the
// blocks do not cover (a contact the person typed, a stated name).
func deriveSlots(history []repository.Message, closed bool) policy.Slots {
	slots := policy.Slots{Closed: closed}

	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg.Role != repository.RoleAssistant {
			continue
		}
		if c, ok := leadblock.Extract(msg.Content); ok {
			slots.Name = c.Name
			slots.Matter = c.Matter
			slots.Contact = candidateContact(c)
			break
		}
	}

	for _, msg := range history {
		if msg.Role != repository.RoleUser {
			continue
		}
		if slots.Contact == "" {
			slots.Contact = contactIn(msg.Content)
		}
		if slots.Name == "" {
			slots.Name = nameIn(msg.Content)
		}
	}

	return slots
}

func candidateContact(c leadblock.Candidate) string {
	d := contact.Normalize(c.Email, c.Phone)
	if d.Email != "" {
		return d.Email
	}
	return d.Phone
}

func contactIn(text string) string {
	for _, token := range emailToken.FindAllString(text, -1) {
		token = strings.TrimRight(token, ".")
		if contact.ValidateEmail(token) {
			return contact.NormalizeEmail(token)
		}
	}
	for _, token := range phoneToken.FindAllString(text, -1) {
		if digits, ok := contact.ValidatePhone(token); ok {
			return digits
		}
	}
	return ""
}

func nameIn(text string) string {
	m := namePhrase.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
