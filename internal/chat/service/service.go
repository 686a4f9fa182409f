// Package service runs the intake dialogue: one call to HandleTurn per
// message typed into the chat widget.
//
// The dialogue position (name, then contact, then matter) is not stored.
// Each turn re-derives it from the persisted transcript and renders it into
// the system policy, so the provider is told which slots are already filled.
package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"legal_intake_backend/internal/chat/leadblock"
	"legal_intake_backend/internal/chat/policy"
	"legal_intake_backend/internal/chat/repository"
	"legal_intake_backend/platform/apperr"
	"legal_intake_backend/platform/contact"
	"legal_intake_backend/platform/logger"
	"legal_intake_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Turn outcomes.
const (
	OutcomeContinue  = "continue"
	OutcomeLeadReady = "lead-ready"
)

// Lead ingestion statuses as reported back to the chat client.
const (
	LeadInserted = "inserted"
	LeadDeduped  = "deduped"
	LeadRejected = "rejected"
)

// ProviderFailureMessage is shown by the widget whenever a turn fails.
const ProviderFailureMessage = "Tuve un problema, por favor repite tu último mensaje o comparte tus datos de contacto directamente."

// MaxMessageRunes is the default cap on a single user message.
const MaxMessageRunes = 2000

const (
	msgConversationMissing = "conversation not found"
	msgLeadNotRecorded     = "failed to record lead"
)

// ConversationStore persists transcripts.
type ConversationStore interface {
	Create(ctx context.Context, messages []repository.Message) (repository.Conversation, error)
	Get(ctx context.Context, id uuid.UUID) (repository.Conversation, error)
	AppendMessages(ctx context.Context, id uuid.UUID, messages []repository.Message) error
	MarkLeadCaptured(ctx context.Context, id uuid.UUID, leadID uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	List(ctx context.Context, params repository.ListParams) ([]repository.Summary, int, error)
}

// LeadIngester receives a candidate that passed contact validation.
type LeadIngester interface {
	IngestConversationLead(ctx context.Context, conversationID uuid.UUID, candidate leadblock.Candidate) (LeadOutcome, error)
}

// LeadOutcome is the ingestion result for a conversation's candidate.
type LeadOutcome struct {
	LeadID    uuid.UUID
	ShortCode string
	Status    string
}

// TurnResult is what the chat widget receives.
type TurnResult struct {
	Reply          string
	ConversationID uuid.UUID
	Outcome        string
	Stage          policy.Stage
	Lead           *LeadOutcome
}

// Options tune the orchestrator.
type Options struct {
	// ProviderTimeout bounds the completion call. Zero means no bound.
	ProviderTimeout time.Duration
	// MaxMessageRunes caps a single user message. Longer messages are
	// rejected, not truncated.
	MaxMessageRunes int
}

type Service struct {
	store     ConversationStore
	completer Completer
	leads     LeadIngester
	policy    *policy.Policy
	log       *logger.Logger
	opts      Options
	now       func() time.Time
}

func New(store ConversationStore, completer Completer, leads LeadIngester, pol *policy.Policy, log *logger.Logger, opts Options) *Service {
	if opts.MaxMessageRunes <= 0 {
		opts.MaxMessageRunes = MaxMessageRunes
	}
	return &Service{
		store:     store,
		completer: completer,
		leads:     leads,
		policy:    pol,
		log:       log,
		opts:      opts,
		now:       time.Now,
	}
}

// HandleTurn processes one user message. conversationID nil starts a new
// conversation. Nothing is persisted when the provider call fails.
//
// When lead ingestion fails the turn has already been saved; the error is
// returned together with a result carrying the conversation id so the
// client can resend on the same conversation.
func (s *Service) HandleTurn(ctx context.Context, conversationID *uuid.UUID, userText string) (TurnResult, error) {
	text := sanitize.ChatMessage(userText, 0)
	if text == "" {
		return TurnResult{}, apperr.Validation("message is required")
	}
	if utf8.RuneCountInString(text) > s.opts.MaxMessageRunes {
		return TurnResult{}, apperr.Validation("message is too long")
	}
	started := s.now()

	existing := s.loadConversation(ctx, conversationID)
	closed := existing.Status == repository.StatusSuccess

	turns := []repository.Message{{Role: repository.RoleUser, Content: text, At: started.UTC()}}
	transcript := make([]repository.Message, 0, len(existing.Messages)+2)
	transcript = append(transcript, existing.Messages...)
	transcript = append(transcript, turns[0])

	slots := deriveSlots(transcript, closed)
	system := s.policy.Render(slots)

	reply, err := s.complete(ctx, system, transcript)
	if err != nil {
		s.log.ProviderError(s.providerName(), err)
		return TurnResult{}, apperr.Wrap(apperr.KindUnavailable, ProviderFailureMessage, err).WithOp("chat.HandleTurn")
	}

	answer := repository.Message{Role: repository.RoleAssistant, Content: reply, At: s.now().UTC()}
	turns = append(turns, answer)
	transcript = append(transcript, answer)

	convID, err := s.persist(ctx, existing.ID, turns)
	if err != nil {
		s.log.DatabaseError("chat.persist", err)
		return TurnResult{}, apperr.Wrap(apperr.KindInternal, "failed to save conversation", err)
	}

	result := TurnResult{
		Reply:          leadblock.Visible(reply),
		ConversationID: convID,
		Outcome:        OutcomeContinue,
		Stage:          deriveSlots(transcript, closed).Stage(),
	}

	if candidate, ok := leadblock.Extract(reply); ok && candidateReady(candidate) {
		outcome, err := s.leads.IngestConversationLead(ctx, convID, candidate)
		if err != nil {
			return result, ingestionError(convID, err)
		}
		if outcome.Status != LeadRejected {
			result.Outcome = OutcomeLeadReady
			result.Lead = &outcome
			result.Stage = policy.StageClosed
			if !closed {
				if err := s.store.MarkLeadCaptured(ctx, convID, outcome.LeadID); err != nil {
					// The lead exists; only the conversation bookkeeping failed.
					s.log.DatabaseError("chat.mark_lead_captured", err)
				}
			}
		}
	}

	s.log.ChatTurn(convID.String(), result.Outcome, len(transcript), float64(s.now().Sub(started).Milliseconds()))
	return result, nil
}

// TurnErrorDetails is attached to a failed turn whose transcript was saved.
type TurnErrorDetails struct {
	ConversationID uuid.UUID `json:"conversationId"`
}

func ingestionError(convID uuid.UUID, err error) error {
	kind := apperr.GetKind(err)
	if kind == apperr.KindUnknown {
		kind = apperr.KindInternal
	}
	return apperr.Wrap(kind, msgLeadNotRecorded, err).
		WithOp("chat.HandleTurn").
		WithDetails(TurnErrorDetails{ConversationID: convID})
}

// loadConversation returns the stored conversation. A missing id or a
// conversation that no longer exists yields an empty one with no id. A
// failed read keeps the caller's id with an empty history: the assistant
// loses its memory for this turn, and the turn is still appended to the
// stored conversation.
func (s *Service) loadConversation(ctx context.Context, conversationID *uuid.UUID) repository.Conversation {
	if conversationID == nil {
		return repository.Conversation{}
	}
	conv, err := s.store.Get(ctx, *conversationID)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("conversation not found, starting a new one", "conversation_id", conversationID.String())
		return repository.Conversation{}
	}
	if err != nil {
		s.log.Warn("conversation history unavailable, continuing without it",
			"conversation_id", conversationID.String(), "error", err)
		return repository.Conversation{ID: *conversationID}
	}
	return conv
}

func (s *Service) complete(ctx context.Context, system string, transcript []repository.Message) (string, error) {
	if s.opts.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ProviderTimeout)
		defer cancel()
	}
	return s.completer.Complete(ctx, system, transcript)
}

// persist appends the turn to a known conversation or inserts a new one.
// A conversation that disappeared in the meantime is re-created.
func (s *Service) persist(ctx context.Context, id uuid.UUID, turns []repository.Message) (uuid.UUID, error) {
	if id != uuid.Nil {
		err := s.store.AppendMessages(ctx, id, turns)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return uuid.Nil, err
		}
	}
	created, err := s.store.Create(ctx, turns)
	if err != nil {
		return uuid.Nil, err
	}
	return created.ID, nil
}

func (s *Service) providerName() string {
	if named, ok := s.completer.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "unknown"
}

// candidateReady applies the ingestion precondition: a name and at least
// one contact method that passes validation.
func candidateReady(c leadblock.Candidate) bool {
	return strings.TrimSpace(c.Name) != "" && contact.Normalize(c.Email, c.Phone).HasAny()
}

// ConversationView is a transcript prepared for staff display.
type ConversationView struct {
	repository.Conversation
	Stage policy.Stage
}

// List returns conversation summaries, newest activity first.
func (s *Service) List(ctx context.Context, status *string, limit, offset int) ([]repository.Summary, int, error) {
	if status != nil && !repository.IsValidStatus(*status) {
		return nil, 0, apperr.Validation("invalid conversation status")
	}
	return s.store.List(ctx, repository.ListParams{Status: status, Limit: limit, Offset: offset})
}

// Get returns a transcript for display. Lead blocks are removed from
// assistant messages; staff see the structured lead on the lead record.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (ConversationView, error) {
	conv, err := s.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ConversationView{}, apperr.NotFound(msgConversationMissing)
	}
	if err != nil {
		return ConversationView{}, err
	}

	stage := deriveSlots(conv.Messages, conv.Status == repository.StatusSuccess).Stage()
	display := make([]repository.Message, len(conv.Messages))
	for i, msg := range conv.Messages {
		display[i] = msg
		if msg.Role == repository.RoleAssistant {
			display[i].Content = leadblock.Visible(msg.Content)
		}
	}
	conv.Messages = display
	return ConversationView{Conversation: conv, Stage: stage}, nil
}

// SetStatus is the staff transition (e.g. marking a conversation as spam).
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !repository.IsValidStatus(status) {
		return apperr.Validation("invalid conversation status")
	}
	err := s.store.SetStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgConversationMissing)
	}
	return err
}
