// Package policy holds the fixed system instruction given to the completion
// provider and renders it together with what has already been collected in
// the conversation.
package policy

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_policy.yaml
var defaultPolicyYAML []byte

// Stage is the dialogue position derived from the collected slots.
type Stage string

const (
	StageCollectingName    Stage = "COLLECTING_NAME"
	StageCollectingContact Stage = "COLLECTING_CONTACT"
	StageCollectingMatter  Stage = "COLLECTING_MATTER"
	StageReadyToClose      Stage = "READY_TO_CLOSE"
	StageClosed            Stage = "CLOSED"
)

// Slot keys, in collection order.
const (
	SlotName    = "name"
	SlotContact = "contact"
	SlotMatter  = "matter"
)

// Slots is what the conversation has produced so far. Empty means missing.
type Slots struct {
	Name    string
	Contact string
	Matter  string
	Closed  bool
}

// Value returns the slot value for key.
func (s Slots) Value(key string) string {
	switch key {
	case SlotName:
		return s.Name
	case SlotContact:
		return s.Contact
	case SlotMatter:
		return s.Matter
	}
	return ""
}

// Stage derives the dialogue position.
func (s Slots) Stage() Stage {
	switch {
	case s.Closed:
		return StageClosed
	case s.Name == "":
		return StageCollectingName
	case s.Contact == "":
		return StageCollectingContact
	case s.Matter == "":
		return StageCollectingMatter
	default:
		return StageReadyToClose
	}
}

// SlotSpec describes one piece of information to collect.
type SlotSpec struct {
	Key      string `yaml:"key"`
	Label    string `yaml:"label"`
	Question string `yaml:"question"`
}

// Policy is the parsed system policy document.
type Policy struct {
	AssistantName string     `yaml:"assistant_name"`
	FirmName      string     `yaml:"firm_name"`
	Language      string     `yaml:"language"`
	Persona       string     `yaml:"persona"`
	Slots         []SlotSpec `yaml:"slots"`
	Rules         []string   `yaml:"rules"`
	Closing       string     `yaml:"closing"`
}

// Default returns the embedded policy.
func Default() (*Policy, error) {
	return Parse(defaultPolicyYAML)
}

// Load reads a policy file, or the embedded default when path is empty.
func Load(path string) (*Policy, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chat policy: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a policy document.
func Parse(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse chat policy: %w", err)
	}
	if strings.TrimSpace(p.Persona) == "" || strings.TrimSpace(p.Closing) == "" {
		return nil, fmt.Errorf("chat policy: persona and closing are required")
	}
	seen := map[string]bool{}
	for _, slot := range p.Slots {
		seen[slot.Key] = true
	}
	for _, key := range []string{SlotName, SlotContact, SlotMatter} {
		if !seen[key] {
			return nil, fmt.Errorf("chat policy: slot %q is missing", key)
		}
	}
	return &p, nil
}

// Render produces the system instruction for one turn. Collected slots are
// listed so the provider does not ask for them again, and the next missing
// slot is named explicitly.
func (p *Policy) Render(slots Slots) string {
	var b strings.Builder

	b.WriteString(strings.ReplaceAll(p.Persona, "{{firm}}", p.FirmName))
	b.WriteString("\n")
	if p.AssistantName != "" {
		fmt.Fprintf(&b, "Te presentas como %s.\n", p.AssistantName)
	}
	if p.Language != "" {
		fmt.Fprintf(&b, "Idioma y tono: %s.\n", p.Language)
	}

	b.WriteString("\nReglas:\n")
	for _, rule := range p.Rules {
		fmt.Fprintf(&b, "- %s\n", rule)
	}

	b.WriteString("\nEstado de la conversación:\n")
	var next *SlotSpec
	for i := range p.Slots {
		slot := p.Slots[i]
		if value := slots.Value(slot.Key); value != "" {
			fmt.Fprintf(&b, "- %s: ya recopilado (%s)\n", slot.Label, value)
			continue
		}
		fmt.Fprintf(&b, "- %s: pendiente\n", slot.Label)
		if next == nil {
			next = &p.Slots[i]
		}
	}

	switch {
	case slots.Closed:
		b.WriteString("\nLos datos ya fueron registrados. Responde con cortesía y no vuelvas a emitir el bloque de datos.\n")
	case next != nil:
		fmt.Fprintf(&b, "\nSiguiente paso: obtener %s. Pregunta sugerida: %q\n", next.Label, next.Question)
	default:
		b.WriteString("\nSiguiente paso: cerrar la conversación.\n")
	}

	b.WriteString("\n")
	b.WriteString(p.Closing)
	return b.String()
}
