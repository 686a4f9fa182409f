// Package leadblock finds the machine-readable lead record the assistant
// embeds in its reply once it has collected everything:
//
//	Gracias María, un abogado te contactará.
//	<LEAD>{"name":"María","email":null,"phone":"56912345678","motivo":"arriendo"}</LEAD>
//
// Parsing is tolerant: a missing, unterminated or malformed block means
// "no candidate yet" and is never reported as an error. The model writes
// these blocks and occasionally gets them wrong; the dialogue simply
// continues.
package leadblock

import (
	"encoding/json"
	"strings"
)

const (
	StartTag = "<LEAD>"
	EndTag   = "</LEAD>"
)

// Candidate is an unvalidated lead record taken from assistant output.
type Candidate struct {
	Name   string
	Email  string
	Phone  string
	Matter string
}

// rawBlock accepts the field spellings the model has been seen to use.
type rawBlock struct {
	Name     *string `json:"name"`
	Nombre   *string `json:"nombre"`
	Email    *string `json:"email"`
	Correo   *string `json:"correo"`
	Phone    *string `json:"phone"`
	Telefono *string `json:"telefono"`
	Motivo   *string `json:"motivo"`
	Caso     *string `json:"caso"`
	Matter   *string `json:"matter"`
}

// locate returns the byte offsets of the first complete block, tags included.
func locate(text string) (start, end int, ok bool) {
	start = strings.Index(text, StartTag)
	if start < 0 {
		return 0, 0, false
	}
	rel := strings.Index(text[start+len(StartTag):], EndTag)
	if rel < 0 {
		return 0, 0, false
	}
	end = start + len(StartTag) + rel + len(EndTag)
	return start, end, true
}

// Extract parses the first <LEAD>...</LEAD> block in text. It returns false
// when there is no complete block or the block is not a JSON object.
func Extract(text string) (Candidate, bool) {
	start, end, ok := locate(text)
	if !ok {
		return Candidate{}, false
	}

	inner := strings.TrimSpace(text[start+len(StartTag) : end-len(EndTag)])
	inner = stripCodeFence(inner)

	var raw rawBlock
	if err := json.Unmarshal([]byte(inner), &raw); err != nil {
		return Candidate{}, false
	}

	return Candidate{
		Name:   firstOf(raw.Name, raw.Nombre),
		Email:  firstOf(raw.Email, raw.Correo),
		Phone:  firstOf(raw.Phone, raw.Telefono),
		Matter: firstOf(raw.Motivo, raw.Caso, raw.Matter),
	}, true
}

// Visible returns text with the first complete block removed. This is what
// the person chatting sees. Text without a complete block is returned
// trimmed but otherwise unchanged.
func Visible(text string) string {
	start, end, ok := locate(text)
	if !ok {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:start] + text[end:])
}

// stripCodeFence removes a ```json fence some models wrap around the object.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func firstOf(values ...*string) string {
	for _, v := range values {
		if v == nil {
			continue
		}
		if trimmed := strings.TrimSpace(*v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
