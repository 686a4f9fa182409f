// Package email renders and delivers staff notification emails.
package email

import "context"

// NewLead is what the intake inbox is told about a new lead.
type NewLead struct {
	ShortCode string
	Name      string
	Email     string
	Phone     string
	Matter    string
	Channel   string
	LeadURL   string
}

// CasePromoted is what the intake inbox is told about a newly opened case.
type CasePromoted struct {
	CaseShortCode string
	LeadName      string
	Description   string
	CaseURL       string
}

// Sender delivers staff notifications.
type Sender interface {
	SendNewLeadEmail(ctx context.Context, lead NewLead) error
	SendCasePromotedEmail(ctx context.Context, promoted CasePromoted) error
}

// NoopSender drops every message. It is used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendNewLeadEmail(context.Context, NewLead) error { return nil }

func (NoopSender) SendCasePromotedEmail(context.Context, CasePromoted) error { return nil }
