package notification

import (
	"context"
	"errors"
	"strings"

	"legal_intake_backend/internal/email"
	"legal_intake_backend/internal/scheduler"
	"legal_intake_backend/platform/phone"
)

const maxMatterPreviewRunes = 500

type leadNotice struct {
	ShortCode string
	Name      string
	Email     string
	Phone     string
	PhoneE164 string
	Matter    string
	Channel   string
	URL       string
}

type caseNotice struct {
	ShortCode   string
	LeadName    string
	Description string
	URL         string
}

// Dispatcher delivers notifications over every configured channel. It is
// used inline by the API when no queue is configured and by the worker.
type Dispatcher struct {
	mail    email.Sender
	slack   SlackPoster
	baseURL string
}

// NewDispatcher creates a dispatcher. slack may be nil.
func NewDispatcher(mail email.Sender, slack SlackPoster, appBaseURL string) *Dispatcher {
	if mail == nil {
		mail = email.NoopSender{}
	}
	return &Dispatcher{mail: mail, slack: slack, baseURL: strings.TrimRight(appBaseURL, "/")}
}

// NotifyNewLead tells the intake inbox about a lead. Every channel is
// attempted; the errors are joined.
func (d *Dispatcher) NotifyNewLead(ctx context.Context, p scheduler.NewLeadPayload) error {
	notice := leadNotice{
		ShortCode: p.ShortCode,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     phone.FormatInternational(p.Phone),
		PhoneE164: phone.NormalizeE164(p.Phone),
		Matter:    preview(p.Matter),
		Channel:   p.Channel,
		URL:       d.baseURL + "/leads/" + p.LeadID,
	}

	var errs []error
	if err := d.mail.SendNewLeadEmail(ctx, email.NewLead{
		ShortCode: notice.ShortCode,
		Name:      notice.Name,
		Email:     notice.Email,
		Phone:     notice.Phone,
		Matter:    notice.Matter,
		Channel:   notice.Channel,
		LeadURL:   notice.URL,
	}); err != nil {
		errs = append(errs, err)
	}
	if d.slack != nil {
		if err := d.slack.Post(ctx, newLeadSlackMessage(notice)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyCasePromoted tells the intake inbox that a case was opened.
func (d *Dispatcher) NotifyCasePromoted(ctx context.Context, p scheduler.CasePromotedPayload) error {
	notice := caseNotice{
		ShortCode:   p.CaseShortCode,
		LeadName:    p.LeadName,
		Description: preview(p.Description),
		URL:         d.baseURL + "/cases/" + p.CaseID,
	}

	var errs []error
	if err := d.mail.SendCasePromotedEmail(ctx, email.CasePromoted{
		CaseShortCode: notice.ShortCode,
		LeadName:      notice.LeadName,
		Description:   notice.Description,
		CaseURL:       notice.URL,
	}); err != nil {
		errs = append(errs, err)
	}
	if d.slack != nil {
		if err := d.slack.Post(ctx, casePromotedSlackMessage(notice)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func preview(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= maxMatterPreviewRunes {
		return string(runes)
	}
	return string(runes[:maxMatterPreviewRunes]) + "…"
}

var _ scheduler.NotificationHandler = (*Dispatcher)(nil)
