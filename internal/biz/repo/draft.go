package repo

import (
	"context"
	"time"

	"github.com/theialabs/theia-relay/internal/biz/domain"
)

// DraftRepo is the pending-draft store interface (SQLite).
// Expiry is a filter predicate on lookup, not an active sweep.
type DraftRepo interface {
	// GetActive returns the contact's latest non-expired draft, or nil
	GetActive(ctx context.Context, contactID string, now time.Time) (*domain.PendingDraft, error)

	// Create persists a new draft and fills in its ID
	Create(ctx context.Context, draft *domain.PendingDraft) error

	// UpdateBody replaces the body and refreshes the expiry
	UpdateBody(ctx context.Context, id int64, body string, expiresAt time.Time) error

	// Delete removes a draft
	Delete(ctx context.Context, id int64) error
}
