package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title    string
	Heading  string
	CTALabel string
	CTAURL   string
}

type newLeadEmailData struct {
	baseEmailData
	Lead NewLead
}

type casePromotedEmailData struct {
	baseEmailData
	Case CasePromoted
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderNewLead renders the new-lead notification body.
func RenderNewLead(lead NewLead) (string, error) {
	return renderEmailTemplate("new_lead.html", newLeadEmailData{
		baseEmailData: baseEmailData{
			Title:    "Nuevo lead",
			Heading:  "Nuevo lead " + lead.ShortCode,
			CTALabel: "Ver lead",
			CTAURL:   lead.LeadURL,
		},
		Lead: lead,
	})
}

// RenderCasePromoted renders the case-opened notification body.
func RenderCasePromoted(promoted CasePromoted) (string, error) {
	return renderEmailTemplate("case_promoted.html", casePromotedEmailData{
		baseEmailData: baseEmailData{
			Title:    "Caso abierto",
			Heading:  "Caso " + promoted.CaseShortCode + " abierto",
			CTALabel: "Ver caso",
			CTAURL:   promoted.CaseURL,
		},
		Case: promoted,
	})
}
