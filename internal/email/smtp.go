package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"legal_intake_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers notifications to the intake inbox over SMTP via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
	inbox     string
}

// NewSMTPSender creates a sender from the SMTP settings.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
		inbox:     cfg.GetIntakeInbox(),
	}
}

func (s *SMTPSender) send(ctx context.Context, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(s.inbox); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) SendNewLeadEmail(ctx context.Context, lead NewLead) error {
	content, err := RenderNewLead(lead)
	if err != nil {
		return err
	}
	return s.send(ctx, fmt.Sprintf(subjectNewLeadFmt, lead.ShortCode, lead.Name), content)
}

func (s *SMTPSender) SendCasePromotedEmail(ctx context.Context, promoted CasePromoted) error {
	content, err := RenderCasePromoted(promoted)
	if err != nil {
		return err
	}
	return s.send(ctx, fmt.Sprintf(subjectCasePromotedFmt, promoted.CaseShortCode, promoted.LeadName), content)
}
