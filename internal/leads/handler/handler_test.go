package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"legal_intake_backend/internal/events"
	"legal_intake_backend/internal/leads/ingestion"
	"legal_intake_backend/internal/leads/repository"
	"legal_intake_backend/internal/leads/transport"
	"legal_intake_backend/platform/logger"
	"legal_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const fmtExpectedCode = "expected %d, got %d: %s"

type fakeLeadStore struct {
	inserted []repository.InsertParams
}

func (f *fakeLeadStore) Insert(_ context.Context, params repository.InsertParams) (repository.Lead, error) {
	f.inserted = append(f.inserted, params)
	return repository.Lead{
		ID:        uuid.New(),
		ShortCode: "L-ABCDEF",
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Source:    params.Source,
		Channel:   params.Channel,
		Status:    repository.StatusNew,
	}, nil
}

func (f *fakeLeadStore) GetByID(context.Context, uuid.UUID) (repository.Lead, error) {
	return repository.Lead{}, repository.ErrNotFound
}

func newTestEngine(store *fakeLeadStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	ing := ingestion.New(store, nil, events.NewInMemoryBus(log), log)
	val := validator.New()

	r := gin.New()
	NewPublicHandler(ing, val).RegisterRoutes(r.Group("/leads"))
	New(nil, ing, val).RegisterRoutes(r.Group("/admin/leads"))
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPublicCreateWithoutContactIsRejected(t *testing.T) {
	store := &fakeLeadStore{}
	r := newTestEngine(store)

	rec := postJSON(r, "/leads", `{"name":"Pedro","matter":"me despidieron"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf(fmtExpectedCode, http.StatusBadRequest, rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), ingestion.ReasonMissingContact) {
		t.Fatalf("expected rejection reason in body, got %s", rec.Body.String())
	}
	if len(store.inserted) != 0 {
		t.Fatalf("no row may be inserted, got %d", len(store.inserted))
	}

	rec = postJSON(r, "/leads", `{"name":"Pedro","email":"no-es-correo","phone":"12"}`)
	if rec.Code != http.StatusBadRequest || len(store.inserted) != 0 {
		t.Fatalf("invalid contact details must be rejected, got %d with %d inserts", rec.Code, len(store.inserted))
	}
}

func TestPublicCreateStoresLead(t *testing.T) {
	store := &fakeLeadStore{}
	r := newTestEngine(store)

	rec := postJSON(r, "/leads", `{"name":"pedro soto","phone":"+56 9 1234 5678","matter":"arriendo"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf(fmtExpectedCode, http.StatusCreated, rec.Code, rec.Body.String())
	}
	var resp transport.CreateLeadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == uuid.Nil || resp.ShortCode != "L-ABCDEF" || resp.Status != ingestion.StatusInserted {
		t.Fatalf("unexpected response %+v", resp)
	}
	got := store.inserted[0]
	if got.Source != repository.SourceForm || got.Channel != repository.ChannelForm {
		t.Fatalf("expected form/form provenance, got %s/%s", got.Source, got.Channel)
	}
	if got.Phone == nil || *got.Phone != "56912345678" {
		t.Fatalf("expected phone stored as digits, got %v", got.Phone)
	}
}

func TestPublicCreateCoercesUnknownChannel(t *testing.T) {
	tests := []struct {
		channel string
		want    string
	}{
		{channel: "landing", want: repository.ChannelLanding},
		{channel: "facebook", want: repository.ChannelLanding},
		{channel: "bot", want: repository.ChannelLanding},
		{channel: "manual", want: repository.ChannelLanding},
		{channel: "FORM", want: repository.ChannelForm},
	}

	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			store := &fakeLeadStore{}
			r := newTestEngine(store)

			rec := postJSON(r, "/leads", `{"name":"Pedro","phone":"56912345678","channel":"`+tt.channel+`"}`)
			if rec.Code != http.StatusCreated {
				t.Fatalf(fmtExpectedCode, http.StatusCreated, rec.Code, rec.Body.String())
			}
			if len(store.inserted) != 1 || store.inserted[0].Channel != tt.want {
				t.Fatalf("expected channel %s, got %+v", tt.want, store.inserted)
			}
			if store.inserted[0].Source != repository.SourceForm {
				t.Fatalf("public leads are form leads, got %s", store.inserted[0].Source)
			}
		})
	}
}

func TestAdminCreateManualLead(t *testing.T) {
	store := &fakeLeadStore{}
	r := newTestEngine(store)

	rec := postJSON(r, "/admin/leads", `{"name":"Rosa","email":"rosa@correo.cl"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf(fmtExpectedCode, http.StatusCreated, rec.Code, rec.Body.String())
	}
	if store.inserted[0].Channel != repository.ChannelManual {
		t.Fatalf("expected manual channel, got %s", store.inserted[0].Channel)
	}

	rec = postJSON(r, "/admin/leads", `{"name":"Rosa"}`)
	if rec.Code != http.StatusBadRequest || len(store.inserted) != 1 {
		t.Fatalf("manual lead without contact must be refused, got %d with %d inserts", rec.Code, len(store.inserted))
	}
}
