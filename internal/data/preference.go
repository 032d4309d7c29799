package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/theialabs/theia-relay/internal/biz/repo"
)

// preferenceRepo stores per-contact opt-outs. Contacts allow auto-response
// unless a row says otherwise.
type preferenceRepo struct {
	db *sql.DB
}

// NewPreferenceRepo creates a new contact preference repository
func NewPreferenceRepo(db *sql.DB) (repo.PreferenceRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS contact_preferences (
			contact_id TEXT PRIMARY KEY,
			auto_respond_allowed INTEGER NOT NULL DEFAULT 1,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact_preferences table: %w", err)
	}
	return &preferenceRepo{db: db}, nil
}

// AutoRespondAllowed reports whether a contact accepts automated replies
func (r *preferenceRepo) AutoRespondAllowed(ctx context.Context, contactID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT auto_respond_allowed FROM contact_preferences WHERE contact_id = ?
	`, contactID)

	var allowed int
	err := row.Scan(&allowed)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("failed to query preference: %w", err)
	}
	return allowed != 0, nil
}

// SetAutoRespondAllowed records a contact's opt-in/opt-out
func (r *preferenceRepo) SetAutoRespondAllowed(ctx context.Context, contactID string, allowed bool) error {
	val := 0
	if allowed {
		val = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contact_preferences (contact_id, auto_respond_allowed, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(contact_id) DO UPDATE SET
			auto_respond_allowed = excluded.auto_respond_allowed,
			updated_at = excluded.updated_at
	`, contactID, val, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to set preference: %w", err)
	}
	return nil
}
