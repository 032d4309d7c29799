package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/theialabs/theia-relay/internal/biz/domain"
	"github.com/theialabs/theia-relay/internal/biz/usecase"
)

type stubStatusRepo struct {
	directive domain.RelayDirective
}

func (f *stubStatusRepo) GetDirective(ctx context.Context) (domain.RelayDirective, error) {
	return f.directive, nil
}
func (f *stubStatusRepo) SetStatus(ctx context.Context, status domain.UserStatus) error {
	f.directive.Status = status
	return nil
}
func (f *stubStatusRepo) SetSendPolicy(ctx context.Context, policy domain.SendPolicy) error {
	f.directive.SendPolicy = policy
	return nil
}
func (f *stubStatusRepo) SetContext(ctx context.Context, hint string) error {
	f.directive.Context = hint
	return nil
}
func (f *stubStatusRepo) GetProfile(ctx context.Context) (*domain.StyleProfile, error) {
	return nil, nil
}
func (f *stubStatusRepo) EnsureUser(ctx context.Context) error { return nil }

type stubLogs struct {
	records []domain.RelayLogRecord
}

func (f *stubLogs) Append(ctx context.Context, rec *domain.RelayLogRecord) error {
	f.records = append(f.records, *rec)
	return nil
}
func (f *stubLogs) ListSince(ctx context.Context, since time.Time) ([]domain.RelayLogRecord, error) {
	var out []domain.RelayLogRecord
	for _, r := range f.records {
		if !r.CreatedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}
func (f *stubLogs) ListRecent(ctx context.Context, limit int, fromUser, toUser string) ([]domain.RelayLogRecord, error) {
	var out []domain.RelayLogRecord
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		r := f.records[i]
		if fromUser != "" && r.FromUser != fromUser {
			continue
		}
		if toUser != "" && r.ToUser != toUser {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
func (f *stubLogs) LastRecordTo(ctx context.Context, userID string) (*domain.RelayLogRecord, error) {
	return nil, nil
}

type stubPrefs struct {
	denied map[string]bool
}

func (f *stubPrefs) AutoRespondAllowed(ctx context.Context, contactID string) (bool, error) {
	return !f.denied[contactID], nil
}
func (f *stubPrefs) SetAutoRespondAllowed(ctx context.Context, contactID string, allowed bool) error {
	if f.denied == nil {
		f.denied = make(map[string]bool)
	}
	f.denied[contactID] = !allowed
	return nil
}

func newTestServer() (*Server, *stubStatusRepo, *stubLogs, *stubPrefs) {
	status := &stubStatusRepo{directive: domain.DefaultDirective()}
	logs := &stubLogs{}
	prefs := &stubPrefs{}
	statusUC := usecase.NewStatusUsecase(status)
	digestUC := usecase.NewDigestUsecase(logs, "ou_primary", 2)
	return NewServer(statusUC, digestUC, logs, prefs, 0), status, logs, prefs
}

func TestHandleStatus_GetAndPost(t *testing.T) {
	srv, status, _, _ := newTestServer()
	status.directive.Status = domain.StatusBusy

	req := httptest.NewRequest(http.MethodGet, "/api/relay/status", nil)
	rec := httptest.NewRecorder()
	srv.handleStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var got map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["status"] != "busy" {
		t.Errorf("Expected busy status, got %v", got["status"])
	}
	if got["status_message"] == "" {
		t.Error("Expected a status message")
	}

	body := strings.NewReader(`{"status":"away"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/relay/status", body)
	rec = httptest.NewRecorder()
	srv.handleStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if status.directive.Status != domain.StatusAway {
		t.Errorf("Expected status persisted, got %s", status.directive.Status)
	}
}

func TestHandleStatus_InvalidStatus(t *testing.T) {
	srv, _, _, _ := newTestServer()

	body := strings.NewReader(`{"status":"bogus"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/relay/status", body)
	rec := httptest.NewRecorder()
	srv.handleStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid status, got %d", rec.Code)
	}
}

func TestHandleMessages_LimitAndFilter(t *testing.T) {
	srv, _, logs, _ := newTestServer()
	now := time.Now()
	logs.records = []domain.RelayLogRecord{
		{ID: 1, FromUser: "alice", ToUser: "ou_primary", OriginalText: "one", Method: domain.RelayMethodManual, CreatedAt: now},
		{ID: 2, FromUser: "bob", ToUser: "ou_primary", OriginalText: "two", Method: domain.RelayMethodUrgent, IsUrgent: true, CreatedAt: now},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/relay/messages?from=bob", nil)
	rec := httptest.NewRecorder()
	srv.handleMessages(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var got struct {
		Messages []messageView `json:"messages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(got.Messages) != 1 || got.Messages[0].FromUser != "bob" {
		t.Fatalf("Expected bob's record only, got %+v", got.Messages)
	}
	if !got.Messages[0].IsUrgent || got.Messages[0].Method != "urgent" {
		t.Errorf("Expected urgent flags round-tripped, got %+v", got.Messages[0])
	}
}

func TestHandleDigest(t *testing.T) {
	srv, _, logs, _ := newTestServer()
	logs.records = []domain.RelayLogRecord{
		{FromUser: "alice", ToUser: "ou_primary", Method: domain.RelayMethodManual, CreatedAt: time.Now()},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/relay/digest?hours=3", nil)
	rec := httptest.NewRecorder()
	srv.handleDigest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var got map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !strings.Contains(got["digest"], "last 3 hours") {
		t.Errorf("Expected digest text, got %q", got["digest"])
	}
}

func TestHandlePreferences(t *testing.T) {
	srv, _, _, prefs := newTestServer()

	body := strings.NewReader(`{"contact_id":"alice","auto_respond_allowed":false}`)
	req := httptest.NewRequest(http.MethodPost, "/api/relay/preferences", body)
	rec := httptest.NewRecorder()
	srv.handlePreferences(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !prefs.denied["alice"] {
		t.Error("Expected opt-out persisted")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/relay/preferences?contact_id=alice", nil)
	rec = httptest.NewRecorder()
	srv.handlePreferences(rec, req)

	var got map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["auto_respond_allowed"] != false {
		t.Errorf("Expected opt-out reflected, got %v", got)
	}
}

func TestHandlePreferences_MissingField(t *testing.T) {
	srv, _, _, _ := newTestServer()

	body := strings.NewReader(`{"contact_id":"alice"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/relay/preferences", body)
	rec := httptest.NewRecorder()
	srv.handlePreferences(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing field, got %d", rec.Code)
	}
}
