package server

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/theialabs/theia-relay/feishu"
	"github.com/theialabs/theia-relay/internal/biz/domain"
	"github.com/theialabs/theia-relay/internal/biz/usecase"
	"github.com/theialabs/theia-relay/internal/service"
)

const (
	testPrimaryUser = "ou_primary"
	testPrimaryChat = "oc_primary"
)

type fakeMessages struct {
	sent []string
	conv []string
}

func (f *fakeMessages) SendText(ctx context.Context, conversationID, text string) error {
	f.conv = append(f.conv, conversationID)
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeMessages) to(conversationID string) []string {
	var texts []string
	for i, c := range f.conv {
		if c == conversationID {
			texts = append(texts, f.sent[i])
		}
	}
	return texts
}

type fakeStatusRepo struct {
	directive domain.RelayDirective
}

func (f *fakeStatusRepo) GetDirective(ctx context.Context) (domain.RelayDirective, error) {
	return f.directive, nil
}
func (f *fakeStatusRepo) SetStatus(ctx context.Context, status domain.UserStatus) error {
	f.directive.Status = status
	return nil
}
func (f *fakeStatusRepo) SetSendPolicy(ctx context.Context, policy domain.SendPolicy) error {
	f.directive.SendPolicy = policy
	return nil
}
func (f *fakeStatusRepo) SetContext(ctx context.Context, hint string) error {
	f.directive.Context = hint
	return nil
}
func (f *fakeStatusRepo) GetProfile(ctx context.Context) (*domain.StyleProfile, error) {
	return nil, nil
}
func (f *fakeStatusRepo) EnsureUser(ctx context.Context) error { return nil }

type fakePrefs struct{}

func (f *fakePrefs) AutoRespondAllowed(ctx context.Context, contactID string) (bool, error) {
	return true, nil
}
func (f *fakePrefs) SetAutoRespondAllowed(ctx context.Context, contactID string, allowed bool) error {
	return nil
}

type fakeLogs struct {
	records []domain.RelayLogRecord
}

func (f *fakeLogs) Append(ctx context.Context, rec *domain.RelayLogRecord) error {
	rec.ID = int64(len(f.records) + 1)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	f.records = append(f.records, *rec)
	return nil
}
func (f *fakeLogs) ListSince(ctx context.Context, since time.Time) ([]domain.RelayLogRecord, error) {
	return nil, nil
}
func (f *fakeLogs) ListRecent(ctx context.Context, limit int, fromUser, toUser string) ([]domain.RelayLogRecord, error) {
	return nil, nil
}
func (f *fakeLogs) LastRecordTo(ctx context.Context, userID string) (*domain.RelayLogRecord, error) {
	return nil, nil
}

type fakeDrafts struct {
	drafts map[int64]*domain.PendingDraft
	nextID int64
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{drafts: make(map[int64]*domain.PendingDraft), nextID: 1}
}

func (f *fakeDrafts) GetActive(ctx context.Context, contactID string, now time.Time) (*domain.PendingDraft, error) {
	var latest *domain.PendingDraft
	for _, d := range f.drafts {
		if d.ContactID != contactID || !d.IsActive(now) {
			continue
		}
		if latest == nil || d.CreatedAt.After(latest.CreatedAt) {
			latest = d
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}
func (f *fakeDrafts) Create(ctx context.Context, draft *domain.PendingDraft) error {
	draft.ID = f.nextID
	f.nextID++
	copied := *draft
	f.drafts[draft.ID] = &copied
	return nil
}
func (f *fakeDrafts) UpdateBody(ctx context.Context, id int64, body string, expiresAt time.Time) error {
	if d, ok := f.drafts[id]; ok {
		d.Body = body
		d.ExpiresAt = expiresAt
	}
	return nil
}
func (f *fakeDrafts) Delete(ctx context.Context, id int64) error {
	delete(f.drafts, id)
	return nil
}

type fakeGenerator struct {
	response string
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.response, nil
}

func newTestServer(t *testing.T, messages *fakeMessages) *FeishuServer {
	t.Helper()
	status := &fakeStatusRepo{directive: domain.RelayDirective{
		Status:     domain.StatusBusy,
		SendPolicy: domain.PolicyDraft,
	}}
	gen := &fakeGenerator{response: "I'll get back to you shortly."}

	composer := usecase.NewComposerUsecase(gen, usecase.DefaultComposerConfig)
	statusUC := usecase.NewStatusUsecase(status)
	draftUC := usecase.NewDraftUsecase(newFakeDrafts(), messages, composer, 2*time.Hour)
	digestUC := usecase.NewDigestUsecase(&fakeLogs{}, testPrimaryUser, 2)

	svc := service.NewRelayService(statusUC, draftUC, digestUC, composer,
		&fakePrefs{}, &fakeLogs{}, messages, testPrimaryUser, testPrimaryChat)

	return NewFeishuServer(nil, svc, testPrimaryUser)
}

func contactEvent(msgID, text string) feishu.Message {
	return feishu.Message{
		ChatID:   "conv-a",
		MsgID:    msgID,
		SenderID: "alice",
		Content:  text,
	}
}

// Back-to-back draft commands must take effect in arrival order: an edit
// followed by send dispatches the edited body, not the original draft.
func TestFeishuServer_EditThenSendKeepsOrder(t *testing.T) {
	messages := &fakeMessages{}
	srv := newTestServer(t, messages)

	srv.handleMessage(contactEvent("m1", "are you around?"))
	srv.handleMessage(contactEvent("m2", "edit: text me instead, heading out"))
	srv.handleMessage(contactEvent("m3", "send"))

	toContact := messages.to("conv-a")
	if len(toContact) == 0 {
		t.Fatal("Expected outbound messages to the contact")
	}
	final := toContact[len(toContact)-1]
	if !strings.HasPrefix(final, "▸ ") {
		t.Fatalf("Expected wrapped outbound after approval, got %q", final)
	}
	if !strings.Contains(final, "text me instead, heading out") {
		t.Errorf("Expected edited body dispatched, got %q", final)
	}
	if strings.Contains(final, "I'll get back to you shortly.") {
		t.Errorf("Expected original draft body replaced before send, got %q", final)
	}
}

func TestFeishuServer_DuplicateMessageIgnored(t *testing.T) {
	messages := &fakeMessages{}
	srv := newTestServer(t, messages)

	srv.handleMessage(contactEvent("m1", "are you around?"))
	before := len(messages.sent)

	srv.handleMessage(contactEvent("m1", "are you around?"))
	if len(messages.sent) != before {
		t.Errorf("Expected duplicate msgID dropped, sent grew from %d to %d", before, len(messages.sent))
	}
}
