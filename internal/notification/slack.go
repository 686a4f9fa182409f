package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// SlackPoster sends a message to an incoming webhook.
type SlackPoster interface {
	Post(ctx context.Context, msg *slack.WebhookMessage) error
}

// SlackWebhook posts to a Slack incoming webhook URL.
type SlackWebhook struct {
	url string
}

func NewSlackWebhook(url string) *SlackWebhook {
	return &SlackWebhook{url: url}
}

func (s *SlackWebhook) Post(ctx context.Context, msg *slack.WebhookMessage) error {
	if err := slack.PostWebhookContext(ctx, s.url, msg); err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}

const (
	slackColorLead = "#2e86de"
	slackColorCase = "#27ae60"
)

func newLeadSlackMessage(lead leadNotice) *slack.WebhookMessage {
	fields := []slack.AttachmentField{
		{Title: "Canal", Value: lead.Channel, Short: true},
	}
	if lead.Email != "" {
		fields = append(fields, slack.AttachmentField{Title: "Correo", Value: lead.Email, Short: true})
	}
	if lead.Phone != "" {
		value := lead.Phone
		if strings.HasPrefix(lead.PhoneE164, "+") {
			value = fmt.Sprintf("<tel:%s|%s>", lead.PhoneE164, lead.Phone)
		}
		fields = append(fields, slack.AttachmentField{Title: "Teléfono", Value: value, Short: true})
	}
	if lead.Matter != "" {
		fields = append(fields, slack.AttachmentField{Title: "Motivo", Value: lead.Matter})
	}

	return &slack.WebhookMessage{
		Text: fmt.Sprintf("Nuevo lead %s: %s", lead.ShortCode, lead.Name),
		Attachments: []slack.Attachment{{
			Color:     slackColorLead,
			Title:     lead.Name,
			TitleLink: lead.URL,
			Fields:    fields,
		}},
	}
}

func casePromotedSlackMessage(c caseNotice) *slack.WebhookMessage {
	return &slack.WebhookMessage{
		Text: fmt.Sprintf("Caso %s abierto para %s", c.ShortCode, c.LeadName),
		Attachments: []slack.Attachment{{
			Color:     slackColorCase,
			Title:     c.ShortCode,
			TitleLink: c.URL,
			Text:      c.Description,
		}},
	}
}
