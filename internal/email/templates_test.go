package email

import (
	"strings"
	"testing"
)

func TestRenderNewLeadEscapesInput(t *testing.T) {
	html, err := RenderNewLead(NewLead{
		ShortCode: "L-ABCDEF",
		Name:      "Ana <script>alert(1)</script>",
		Phone:     "912345678",
		Matter:    "Despido injustificado",
		Channel:   "bot",
		LeadURL:   "https://admin.example.cl/leads/1",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("expected lead name to be escaped")
	}
	for _, want := range []string{"L-ABCDEF", "Despido injustificado", "912345678", "https://admin.example.cl/leads/1"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in rendered email", want)
		}
	}
	if strings.Contains(html, "Correo") {
		t.Fatalf("expected empty email row to be omitted")
	}
}

func TestRenderCasePromoted(t *testing.T) {
	html, err := RenderCasePromoted(CasePromoted{CaseShortCode: "C-XYZ234", LeadName: "Ana", Description: "Despido"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "C-XYZ234") || strings.Contains(html, "Ver caso") {
		t.Fatalf("unexpected case email: %s", html)
	}
}
