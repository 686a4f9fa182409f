package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"legal_intake_backend/internal/chat/leadblock"
	"legal_intake_backend/internal/chat/policy"
	"legal_intake_backend/internal/chat/repository"
	"legal_intake_backend/internal/chat/service"
	"legal_intake_backend/internal/chat/transport"
	"legal_intake_backend/platform/httpkit"
	"legal_intake_backend/platform/logger"
	"legal_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const fmtExpectedCode = "expected %d, got %d: %s"

type memoryStore struct {
	convs map[uuid.UUID]repository.Conversation
}

func (m *memoryStore) Create(_ context.Context, messages []repository.Message) (repository.Conversation, error) {
	conv := repository.Conversation{ID: uuid.New(), Messages: messages, Status: repository.StatusActive}
	m.convs[conv.ID] = conv
	return conv, nil
}

func (m *memoryStore) Get(_ context.Context, id uuid.UUID) (repository.Conversation, error) {
	conv, ok := m.convs[id]
	if !ok {
		return repository.Conversation{}, repository.ErrNotFound
	}
	return conv, nil
}

func (m *memoryStore) AppendMessages(_ context.Context, id uuid.UUID, messages []repository.Message) error {
	conv, ok := m.convs[id]
	if !ok {
		return repository.ErrNotFound
	}
	conv.Messages = append(conv.Messages, messages...)
	m.convs[id] = conv
	return nil
}

func (m *memoryStore) MarkLeadCaptured(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (m *memoryStore) SetStatus(context.Context, uuid.UUID, string) error { return nil }

func (m *memoryStore) List(context.Context, repository.ListParams) ([]repository.Summary, int, error) {
	return nil, 0, nil
}

type stubCompleter struct {
	reply string
	err   error
}

func (s stubCompleter) Complete(context.Context, string, []repository.Message) (string, error) {
	return s.reply, s.err
}

type stubIngester struct {
	err error
}

func (s stubIngester) IngestConversationLead(context.Context, uuid.UUID, leadblock.Candidate) (service.LeadOutcome, error) {
	if s.err != nil {
		return service.LeadOutcome{}, s.err
	}
	return service.LeadOutcome{LeadID: uuid.New(), ShortCode: "L-ABCDEF", Status: service.LeadInserted}, nil
}

func newTestEngine(t *testing.T, store *memoryStore, completer service.Completer, ingester service.LeadIngester) *gin.Engine {
	t.Helper()
	pol, err := policy.Default()
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	svc := service.New(store, completer, ingester, pol, logger.Nop(), service.Options{})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(svc, validator.New()).RegisterPublicRoutes(r.Group("/chat"))
	return r
}

func postTurn(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat/turns", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestTurnProviderFailureIsServiceUnavailable(t *testing.T) {
	store := &memoryStore{convs: map[uuid.UUID]repository.Conversation{}}
	r := newTestEngine(t, store, stubCompleter{err: errors.New("upstream timeout")}, stubIngester{})

	rec := postTurn(r, `{"message":"Hola"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf(fmtExpectedCode, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
	}
	var resp httpkit.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != service.ProviderFailureMessage {
		t.Fatalf("expected the recoverable message, got %q", resp.Error)
	}
	if len(store.convs) != 0 {
		t.Fatalf("nothing may be stored on provider failure")
	}
}

func TestTurnReturnsConversationAndHidesLeadBlock(t *testing.T) {
	store := &memoryStore{convs: map[uuid.UUID]repository.Conversation{}}
	reply := `Gracias Ana.<LEAD>{"name":"Ana","email":"ana@correo.cl","phone":null,"motivo":"despido"}</LEAD>`
	r := newTestEngine(t, store, stubCompleter{reply: reply}, stubIngester{})

	rec := postTurn(r, `{"message":"Soy Ana, ana@correo.cl, me despidieron"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf(fmtExpectedCode, http.StatusOK, rec.Code, rec.Body.String())
	}
	var resp transport.TurnResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ConversationID == uuid.Nil || resp.Outcome != service.OutcomeLeadReady || resp.LeadID == nil {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Reply != "Gracias Ana." {
		t.Fatalf("expected the block stripped from the reply, got %q", resp.Reply)
	}
}

func TestTurnIngestionFailureCarriesConversationID(t *testing.T) {
	store := &memoryStore{convs: map[uuid.UUID]repository.Conversation{}}
	reply := `Listo.<LEAD>{"name":"Ana","email":"ana@correo.cl","phone":null,"motivo":"x"}</LEAD>`
	r := newTestEngine(t, store, stubCompleter{reply: reply}, stubIngester{err: errors.New("insert failed")})

	rec := postTurn(r, `{"message":"Soy Ana, ana@correo.cl"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf(fmtExpectedCode, http.StatusInternalServerError, rec.Code, rec.Body.String())
	}
	var resp struct {
		Details struct {
			ConversationID uuid.UUID `json:"conversationId"`
		} `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := store.convs[resp.Details.ConversationID]; !ok {
		t.Fatalf("expected the saved conversation id in the error body, got %s", rec.Body.String())
	}
}

func TestTurnValidatesMessage(t *testing.T) {
	store := &memoryStore{convs: map[uuid.UUID]repository.Conversation{}}
	r := newTestEngine(t, store, stubCompleter{reply: "hola"}, stubIngester{})

	if rec := postTurn(r, `{"message":""}`); rec.Code != http.StatusBadRequest {
		t.Fatalf(fmtExpectedCode, http.StatusBadRequest, rec.Code, rec.Body.String())
	}
	long := strings.Repeat("a", service.MaxMessageRunes+1)
	if rec := postTurn(r, `{"message":"`+long+`"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf(fmtExpectedCode, http.StatusBadRequest, rec.Code, rec.Body.String())
	}
	if len(store.convs) != 0 {
		t.Fatalf("invalid messages must not be stored")
	}
}
