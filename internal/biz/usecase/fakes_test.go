package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/theialabs/theia-relay/internal/biz/domain"
)

// fakeGenerator returns a canned response or error
type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (g *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

// fakeMessageRepo records sent messages
type fakeMessageRepo struct {
	sent []sentMessage
	err  error
}

type sentMessage struct {
	conversationID string
	text           string
}

func (m *fakeMessageRepo) SendText(ctx context.Context, conversationID, text string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{conversationID, text})
	return nil
}

// fakeDraftRepo is an in-memory draft store
type fakeDraftRepo struct {
	drafts map[int64]*domain.PendingDraft
	nextID int64
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{drafts: make(map[int64]*domain.PendingDraft), nextID: 1}
}

func (r *fakeDraftRepo) GetActive(ctx context.Context, contactID string, now time.Time) (*domain.PendingDraft, error) {
	var latest *domain.PendingDraft
	for _, d := range r.drafts {
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

func (r *fakeDraftRepo) Create(ctx context.Context, draft *domain.PendingDraft) error {
	draft.ID = r.nextID
	r.nextID++
	copied := *draft
	r.drafts[draft.ID] = &copied
	return nil
}

func (r *fakeDraftRepo) UpdateBody(ctx context.Context, id int64, body string, expiresAt time.Time) error {
	d, ok := r.drafts[id]
	if !ok {
		return errors.New("draft not found")
	}
	d.Body = body
	d.ExpiresAt = expiresAt
	return nil
}

func (r *fakeDraftRepo) Delete(ctx context.Context, id int64) error {
	delete(r.drafts, id)
	return nil
}

// fakeRelayLogRepo is an in-memory relay log
type fakeRelayLogRepo struct {
	records []domain.RelayLogRecord
	err     error
}

func (r *fakeRelayLogRepo) Append(ctx context.Context, record *domain.RelayLogRecord) error {
	if r.err != nil {
		return r.err
	}
	record.ID = int64(len(r.records) + 1)
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeRelayLogRepo) ListSince(ctx context.Context, since time.Time) ([]domain.RelayLogRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	var result []domain.RelayLogRecord
	for _, rec := range r.records {
		if !rec.CreatedAt.Before(since) {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (r *fakeRelayLogRepo) ListRecent(ctx context.Context, limit int, fromUser, toUser string) ([]domain.RelayLogRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	var result []domain.RelayLogRecord
	for i := len(r.records) - 1; i >= 0 && len(result) < limit; i-- {
		rec := r.records[i]
		if fromUser != "" && rec.FromUser != fromUser {
			continue
		}
		if toUser != "" && rec.ToUser != toUser {
			continue
		}
		result = append(result, rec)
	}
	return result, nil
}

func (r *fakeRelayLogRepo) LastRecordTo(ctx context.Context, userID string) (*domain.RelayLogRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].ToUser == userID {
			copied := r.records[i]
			return &copied, nil
		}
	}
	return nil, nil
}
