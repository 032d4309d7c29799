package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/theialabs/theia-relay/internal/biz/domain"
	"github.com/theialabs/theia-relay/internal/biz/repo"
)

// draftRepo stores staged replies awaiting contact approval. Expired rows
// are never returned; they are left in place and overwritten by the next
// staging cycle.
type draftRepo struct {
	db *sql.DB
}

// NewDraftRepo creates a new pending draft repository
func NewDraftRepo(db *sql.DB) (repo.DraftRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS pending_drafts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			contact_id TEXT NOT NULL,
			conversation_id TEXT NOT NULL,
			body TEXT NOT NULL,
			context TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create pending_drafts table: %w", err)
	}
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_drafts_contact ON pending_drafts(contact_id, expires_at)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft index: %w", err)
	}
	return &draftRepo{db: db}, nil
}

// GetActive returns the newest unexpired draft for a contact, or nil
func (r *draftRepo) GetActive(ctx context.Context, contactID string, now time.Time) (*domain.PendingDraft, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, contact_id, conversation_id, body, context, created_at, expires_at
		FROM pending_drafts
		WHERE contact_id = ? AND expires_at > ?
		ORDER BY created_at DESC
		LIMIT 1
	`, contactID, now.Unix())

	var d domain.PendingDraft
	var createdAt, expiresAt int64
	err := row.Scan(&d.ID, &d.ContactID, &d.ConversationID, &d.Body, &d.Context, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query draft: %w", err)
	}
	d.CreatedAt = time.Unix(createdAt, 0)
	d.ExpiresAt = time.Unix(expiresAt, 0)
	return &d, nil
}

// Create inserts a new draft and assigns its ID
func (r *draftRepo) Create(ctx context.Context, draft *domain.PendingDraft) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_drafts (contact_id, conversation_id, body, context, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, draft.ContactID, draft.ConversationID, draft.Body, draft.Context,
		draft.CreatedAt.Unix(), draft.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert draft: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read draft id: %w", err)
	}
	draft.ID = id
	return nil
}

// UpdateBody replaces the draft text and refreshes the expiry
func (r *draftRepo) UpdateBody(ctx context.Context, id int64, body string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE pending_drafts SET body = ?, expires_at = ? WHERE id = ?
	`, body, expiresAt.Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}
	return nil
}

// Delete removes a draft by ID
func (r *draftRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
