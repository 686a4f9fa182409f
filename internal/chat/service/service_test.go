package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"legal_intake_backend/internal/chat/leadblock"
	"legal_intake_backend/internal/chat/policy"
	"legal_intake_backend/internal/chat/repository"
	"legal_intake_backend/platform/apperr"
	"legal_intake_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	fmtUnexpectedErr     = "unexpected error: %v"
	fmtExpectedOutcome   = "expected outcome %s, got %s"
	fmtExpectedCompleted = "expected %d provider calls, got %d"
)

type fakeStore struct {
	convs      map[uuid.UUID]repository.Conversation
	getErr     error
	appends    int
	creates    int
	marked     map[uuid.UUID]uuid.UUID
	statusSets map[uuid.UUID]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		convs:      map[uuid.UUID]repository.Conversation{},
		marked:     map[uuid.UUID]uuid.UUID{},
		statusSets: map[uuid.UUID]string{},
	}
}

func (f *fakeStore) Create(_ context.Context, messages []repository.Message) (repository.Conversation, error) {
	f.creates++
	conv := repository.Conversation{ID: uuid.New(), Messages: append([]repository.Message(nil), messages...), Status: repository.StatusActive}
	f.convs[conv.ID] = conv
	return conv, nil
}

func (f *fakeStore) Get(_ context.Context, id uuid.UUID) (repository.Conversation, error) {
	if f.getErr != nil {
		return repository.Conversation{}, f.getErr
	}
	conv, ok := f.convs[id]
	if !ok {
		return repository.Conversation{}, repository.ErrNotFound
	}
	return conv, nil
}

func (f *fakeStore) AppendMessages(_ context.Context, id uuid.UUID, messages []repository.Message) error {
	conv, ok := f.convs[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.appends++
	conv.Messages = append(append([]repository.Message(nil), conv.Messages...), messages...)
	f.convs[id] = conv
	return nil
}

func (f *fakeStore) MarkLeadCaptured(_ context.Context, id uuid.UUID, leadID uuid.UUID) error {
	conv, ok := f.convs[id]
	if !ok {
		return repository.ErrNotFound
	}
	conv.Status = repository.StatusSuccess
	conv.LeadID = &leadID
	f.convs[id] = conv
	f.marked[id] = leadID
	return nil
}

func (f *fakeStore) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	if _, ok := f.convs[id]; !ok {
		return repository.ErrNotFound
	}
	f.statusSets[id] = status
	return nil
}

func (f *fakeStore) List(context.Context, repository.ListParams) ([]repository.Summary, int, error) {
	return nil, 0, nil
}

type fakeCompleter struct {
	replies    []string
	err        error
	calls      int
	lastSystem string
	lastLen    int
}

func (f *fakeCompleter) Complete(_ context.Context, system string, history []repository.Message) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastLen = len(history)
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

type fakeIngester struct {
	calls     []leadblock.Candidate
	seen      map[uuid.UUID]uuid.UUID
	err       error
	rejectAll bool
}

func (f *fakeIngester) IngestConversationLead(_ context.Context, conversationID uuid.UUID, c leadblock.Candidate) (LeadOutcome, error) {
	f.calls = append(f.calls, c)
	if f.err != nil {
		return LeadOutcome{}, f.err
	}
	if f.rejectAll {
		return LeadOutcome{Status: LeadRejected}, nil
	}
	if f.seen == nil {
		f.seen = map[uuid.UUID]uuid.UUID{}
	}
	if id, ok := f.seen[conversationID]; ok {
		return LeadOutcome{LeadID: id, Status: LeadDeduped}, nil
	}
	id := uuid.New()
	f.seen[conversationID] = id
	return LeadOutcome{LeadID: id, ShortCode: "L-ABC123", Status: LeadInserted}, nil
}

func newTestService(t *testing.T, store *fakeStore, completer *fakeCompleter, ingester *fakeIngester) *Service {
	t.Helper()
	pol, err := policy.Default()
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	return New(store, completer, ingester, pol, logger.Nop(), Options{})
}

func TestHandleTurnNewConversationContinues(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{replies: []string{"¡Hola! ¿Con quién tengo el gusto de hablar?"}}
	ingester := &fakeIngester{}
	svc := newTestService(t, store, completer, ingester)

	res, err := svc.HandleTurn(context.Background(), nil, "Hola")
	if err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}
	if res.Outcome != OutcomeContinue {
		t.Fatalf(fmtExpectedOutcome, OutcomeContinue, res.Outcome)
	}
	if res.ConversationID == uuid.Nil || store.creates != 1 {
		t.Fatalf("expected a new conversation to be minted")
	}
	stored := store.convs[res.ConversationID].Messages
	if len(stored) != 2 || stored[0].Role != repository.RoleUser || stored[1].Role != repository.RoleAssistant {
		t.Fatalf("unexpected stored transcript %+v", stored)
	}
	if res.Stage != policy.StageCollectingName {
		t.Fatalf("expected name collection stage, got %s", res.Stage)
	}
	if len(ingester.calls) != 0 {
		t.Fatalf("no ingestion expected without a lead block")
	}
}

func TestHandleTurnLeadReadyWithKnownSlots(t *testing.T) {
	store := newFakeStore()
	existing := repository.Conversation{
		ID:     uuid.New(),
		Status: repository.StatusActive,
		Messages: []repository.Message{
			{Role: repository.RoleUser, Content: "Hola, me llamo María"},
			{Role: repository.RoleAssistant, Content: "Gracias María. ¿Me dejas un teléfono o correo?"},
			{Role: repository.RoleUser, Content: "+56 9 1234 5678"},
			{Role: repository.RoleAssistant, Content: "Perfecto. Cuéntame tu situación."},
		},
	}
	store.convs[existing.ID] = existing

	reply := "Gracias María, un abogado te llamará pronto.\n<LEAD>{\"name\":\"María\",\"email\":null,\"phone\":\"56912345678\",\"caso\":\"arriendo\"}</LEAD>"
	completer := &fakeCompleter{replies: []string{reply}}
	ingester := &fakeIngester{}
	svc := newTestService(t, store, completer, ingester)

	res, err := svc.HandleTurn(context.Background(), &existing.ID, "Mi arrendador no me devuelve la garantía")
	if err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}

	if !strings.Contains(completer.lastSystem, "nombre: ya recopilado (María)") ||
		!strings.Contains(completer.lastSystem, "correo o teléfono: ya recopilado (56912345678)") {
		t.Fatalf("expected collected slots in system policy:\n%s", completer.lastSystem)
	}
	if completer.lastLen != 5 {
		t.Fatalf("expected provider to receive 5 turns, got %d", completer.lastLen)
	}
	if res.Outcome != OutcomeLeadReady || res.Lead == nil || res.Lead.Status != LeadInserted {
		t.Fatalf("expected inserted lead, got %+v", res)
	}
	if len(ingester.calls) != 1 || ingester.calls[0].Phone != "56912345678" || ingester.calls[0].Matter != "arriendo" {
		t.Fatalf("unexpected ingestion calls %+v", ingester.calls)
	}
	if strings.Contains(res.Reply, "<LEAD>") {
		t.Fatalf("lead block must not be shown to the user: %q", res.Reply)
	}
	stored := store.convs[existing.ID]
	if !strings.Contains(stored.Messages[len(stored.Messages)-1].Content, "<LEAD>") {
		t.Fatalf("raw assistant text including the block must be stored")
	}
	if store.marked[existing.ID] != res.Lead.LeadID || stored.Status != repository.StatusSuccess {
		t.Fatalf("expected conversation to be linked to the lead")
	}
	if store.creates != 0 || store.appends != 1 || len(stored.Messages) != 6 {
		t.Fatalf("expected the turn appended to the existing conversation, creates=%d appends=%d messages=%d",
			store.creates, store.appends, len(stored.Messages))
	}
}

func TestHandleTurnRepeatedBlockIsDeduped(t *testing.T) {
	store := newFakeStore()
	block := "Listo.\n<LEAD>{\"name\":\"Ana\",\"email\":\"ana@correo.cl\",\"phone\":null,\"motivo\":\"despido\"}</LEAD>"
	completer := &fakeCompleter{replies: []string{block}}
	ingester := &fakeIngester{}
	svc := newTestService(t, store, completer, ingester)

	first, err := svc.HandleTurn(context.Background(), nil, "Soy Ana, ana@correo.cl, me despidieron")
	if err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}
	second, err := svc.HandleTurn(context.Background(), &first.ConversationID, "¿Me confirmas?")
	if err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}
	if second.Lead == nil || second.Lead.Status != LeadDeduped || second.Lead.LeadID != first.Lead.LeadID {
		t.Fatalf("expected deduped outcome with the same lead id, got %+v", second.Lead)
	}
	if !strings.Contains(completer.lastSystem, "ya fueron registrados") {
		t.Fatalf("expected closed conversation to be reflected in the policy")
	}
}

func TestHandleTurnInvalidCandidateKeepsCollecting(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{replies: []string{`Gracias Juan.<LEAD>{"name":"Juan","email":null,"phone":"invalid","motivo":"x"}</LEAD>`}}
	ingester := &fakeIngester{}
	svc := newTestService(t, store, completer, ingester)

	res, err := svc.HandleTurn(context.Background(), nil, "Soy Juan")
	if err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}
	if res.Outcome != OutcomeContinue || len(ingester.calls) != 0 {
		t.Fatalf("invalid contact must not reach ingestion, outcome=%s calls=%d", res.Outcome, len(ingester.calls))
	}
}

func TestHandleTurnProviderFailurePersistsNothing(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{err: errors.New("connection reset")}
	svc := newTestService(t, store, completer, &fakeIngester{})

	_, err := svc.HandleTurn(context.Background(), nil, "Hola")
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if store.creates != 0 || store.appends != 0 {
		t.Fatalf("no transcript may be written on provider failure")
	}
}

func TestHandleTurnRejectsBlankMessage(t *testing.T) {
	completer := &fakeCompleter{replies: []string{"x"}}
	svc := newTestService(t, newFakeStore(), completer, &fakeIngester{})

	_, err := svc.HandleTurn(context.Background(), nil, "  \n\t ")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if completer.calls != 0 {
		t.Fatalf(fmtExpectedCompleted, 0, completer.calls)
	}
}

func TestHandleTurnHistoryReadFailureKeepsConversation(t *testing.T) {
	store := newFakeStore()
	existing := repository.Conversation{
		ID:     uuid.New(),
		Status: repository.StatusActive,
		Messages: []repository.Message{
			{Role: repository.RoleUser, Content: "Hola, soy Pedro"},
			{Role: repository.RoleAssistant, Content: "Hola Pedro. ¿Un teléfono o correo?"},
			{Role: repository.RoleUser, Content: "pedro@correo.cl"},
			{Role: repository.RoleAssistant, Content: "Gracias. ¿Cuál es tu consulta?"},
		},
	}
	store.convs[existing.ID] = existing
	store.getErr = errors.New("db down")
	completer := &fakeCompleter{replies: []string{"¿Podrías repetirlo?"}}
	svc := newTestService(t, store, completer, &fakeIngester{})

	res, err := svc.HandleTurn(context.Background(), &existing.ID, "Tengo un problema laboral")
	if err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}
	if completer.lastLen != 1 {
		t.Fatalf("expected provider to see only the new turn, got %d", completer.lastLen)
	}
	if res.ConversationID != existing.ID || store.creates != 0 {
		t.Fatalf("expected the same conversation, got %s (creates=%d)", res.ConversationID, store.creates)
	}
	if got := len(store.convs[existing.ID].Messages); got != 6 {
		t.Fatalf("expected the turn appended to the 4 stored messages, got %d", got)
	}

	store.getErr = nil
	if _, err := svc.HandleTurn(context.Background(), &res.ConversationID, "¿Sigues ahí?"); err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}
	if completer.lastLen != 7 {
		t.Fatalf("expected the full history after recovery, provider saw %d messages", completer.lastLen)
	}
}

func TestHandleTurnStaleConversationStartsNewOne(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{replies: []string{"¡Hola!"}}
	svc := newTestService(t, store, completer, &fakeIngester{})

	stale := uuid.New()
	res, err := svc.HandleTurn(context.Background(), &stale, "Hola")
	if err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}
	if res.ConversationID == stale || store.creates != 1 {
		t.Fatalf("expected a new conversation for an unknown id")
	}
}

func TestHandleTurnIngestionFailureReturnsConversation(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{replies: []string{`ok<LEAD>{"name":"Ana","email":"a@b.cl","phone":null,"motivo":"x"}</LEAD>`}}
	ingester := &fakeIngester{err: apperr.Wrap(apperr.KindInternal, "failed to store lead", errors.New("insert failed"))}
	svc := newTestService(t, store, completer, ingester)

	res, err := svc.HandleTurn(context.Background(), nil, "Ana, a@b.cl, x")
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected store failure to surface, got %v", err)
	}
	if res.ConversationID == uuid.Nil {
		t.Fatalf("expected the saved conversation id alongside the error")
	}
	if _, ok := store.convs[res.ConversationID]; !ok || store.creates != 1 {
		t.Fatalf("expected the turn to be saved under the returned id")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	details, ok := appErr.Details.(TurnErrorDetails)
	if !ok || details.ConversationID != res.ConversationID {
		t.Fatalf("expected conversation id in error details, got %+v", appErr.Details)
	}

	ingester.err = nil
	retry, err := svc.HandleTurn(context.Background(), &res.ConversationID, "Ana, a@b.cl, x")
	if err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}
	if retry.ConversationID != res.ConversationID || retry.Outcome != OutcomeLeadReady {
		t.Fatalf("expected resend on the same conversation to capture the lead, got %+v", retry)
	}
}

func TestHandleTurnRejectsOverlongMessage(t *testing.T) {
	completer := &fakeCompleter{replies: []string{"x"}}
	svc := newTestService(t, newFakeStore(), completer, &fakeIngester{})

	_, err := svc.HandleTurn(context.Background(), nil, strings.Repeat("á", MaxMessageRunes+1))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if completer.calls != 0 {
		t.Fatalf(fmtExpectedCompleted, 0, completer.calls)
	}

	if _, err := svc.HandleTurn(context.Background(), nil, strings.Repeat("á", MaxMessageRunes)); err != nil {
		t.Fatalf("message at the limit must pass: %v", err)
	}
}

func TestGetStripsLeadBlocks(t *testing.T) {
	store := newFakeStore()
	conv := repository.Conversation{
		ID:     uuid.New(),
		Status: repository.StatusSuccess,
		Messages: []repository.Message{
			{Role: repository.RoleUser, Content: "datos"},
			{Role: repository.RoleAssistant, Content: "Gracias.<LEAD>{\"name\":\"Ana\"}</LEAD>"},
		},
	}
	store.convs[conv.ID] = conv
	svc := newTestService(t, store, &fakeCompleter{replies: []string{"x"}}, &fakeIngester{})

	view, err := svc.Get(context.Background(), conv.ID)
	if err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}
	if view.Messages[1].Content != "Gracias." || view.Stage != policy.StageClosed {
		t.Fatalf("unexpected view %+v", view)
	}
	if !strings.Contains(store.convs[conv.ID].Messages[1].Content, "<LEAD>") {
		t.Fatalf("display stripping must not mutate the stored transcript")
	}

	if _, err := svc.Get(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetStatusValidates(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeCompleter{replies: []string{"x"}}, &fakeIngester{})

	if err := svc.SetStatus(context.Background(), uuid.New(), "archived"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.SetStatus(context.Background(), uuid.New(), repository.StatusSpam); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
