package service

import (
	"context"
	"errors"
	"strings"

	"legal_intake_backend/internal/chat/repository"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// Completer produces the next assistant message for a transcript.
type Completer interface {
	Complete(ctx context.Context, system string, history []repository.Message) (string, error)
}

var errEmptyCompletion = errors.New("completion provider returned no text")

// LLMCompleter drives any ADK model.LLM with a single non-streaming call.
type LLMCompleter struct {
	llm         model.LLM
	temperature float32
}

// NewLLMCompleter wraps llm. Temperature is kept low so the model sticks
// to the policy wording.
func NewLLMCompleter(llm model.LLM) *LLMCompleter {
	return &LLMCompleter{llm: llm, temperature: 0.3}
}

// Name is the underlying model identifier, used in logs.
func (c *LLMCompleter) Name() string {
	return c.llm.Name()
}

func (c *LLMCompleter) Complete(ctx context.Context, system string, history []repository.Message) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		var role genai.Role = genai.RoleUser
		if msg.Role == repository.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	temperature := c.temperature
	req := &model.LLMRequest{
		Contents: contents,
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			Temperature:       &temperature,
		},
	}

	var out strings.Builder
	for resp, err := range c.llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", err
		}
		if resp == nil || resp.Content == nil {
			continue
		}
		for _, part := range resp.Content.Parts {
			if part != nil {
				out.WriteString(part.Text)
			}
		}
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}
