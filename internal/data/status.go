package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/theialabs/theia-relay/internal/biz/domain"
	"github.com/theialabs/theia-relay/internal/biz/repo"
)

// statusRepo implements the status store over SQLite.
// The relay serves a single primary user, so both tables hold one row.
type statusRepo struct {
	db *sql.DB
}

// NewStatusRepo creates a new status repository
func NewStatusRepo(db *sql.DB) (repo.StatusRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS user_status (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			status TEXT NOT NULL,
			send_policy TEXT NOT NULL,
			context TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create user_status table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS user_profile (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			tone TEXT NOT NULL,
			common_phrases TEXT NOT NULL,
			emoji_usage TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create user_profile table: %w", err)
	}

	return &statusRepo{db: db}, nil
}

// GetDirective reads the current status/policy/context snapshot
func (r *statusRepo) GetDirective(ctx context.Context) (domain.RelayDirective, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT status, send_policy, context FROM user_status WHERE id = 1
	`)

	var status, policy, hint string
	err := row.Scan(&status, &policy, &hint)
	if err == sql.ErrNoRows {
		return domain.DefaultDirective(), nil
	}
	if err != nil {
		return domain.DefaultDirective(), fmt.Errorf("failed to query status: %w", err)
	}

	directive := domain.DefaultDirective()
	if parsed, ok := domain.ParseUserStatus(status); ok {
		directive.Status = parsed
	}
	if domain.SendPolicy(policy) == domain.PolicyYolo {
		directive.SendPolicy = domain.PolicyYolo
	}
	directive.Context = hint
	return directive, nil
}

// SetStatus updates the availability status
func (r *statusRepo) SetStatus(ctx context.Context, status domain.UserStatus) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_status (id, status, send_policy, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at
	`, string(status), string(domain.PolicyDraft), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	return nil
}

// SetSendPolicy updates the draft/yolo flag
func (r *statusRepo) SetSendPolicy(ctx context.Context, policy domain.SendPolicy) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_status (id, status, send_policy, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET send_policy = excluded.send_policy, updated_at = excluded.updated_at
	`, string(domain.StatusAvailable), string(policy), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to set send policy: %w", err)
	}
	return nil
}

// SetContext updates the free-text directive hint
func (r *statusRepo) SetContext(ctx context.Context, hint string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE user_status SET context = ?, updated_at = ? WHERE id = 1
	`, hint, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to set context: %w", err)
	}
	return nil
}

// GetProfile reads the communication-style profile
func (r *statusRepo) GetProfile(ctx context.Context) (*domain.StyleProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT tone, common_phrases, emoji_usage FROM user_profile WHERE id = 1
	`)

	var tone, phrasesJSON, emojiUsage string
	err := row.Scan(&tone, &phrasesJSON, &emojiUsage)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	var phrases []string
	_ = json.Unmarshal([]byte(phrasesJSON), &phrases)

	return &domain.StyleProfile{
		Tone:          tone,
		CommonPhrases: phrases,
		EmojiUsage:    emojiUsage,
	}, nil
}

// EnsureUser seeds the status row and default profile if absent
func (r *statusRepo) EnsureUser(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_status (id, status, send_policy, updated_at)
		VALUES (1, ?, ?, ?)
	`, string(domain.StatusAvailable), string(domain.PolicyDraft), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to seed status: %w", err)
	}

	profile := domain.DefaultStyleProfile()
	phrasesJSON, _ := json.Marshal(profile.CommonPhrases)
	_, err = r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_profile (id, tone, common_phrases, emoji_usage)
		VALUES (1, ?, ?, ?)
	`, profile.Tone, string(phrasesJSON), profile.EmojiUsage)
	if err != nil {
		return fmt.Errorf("failed to seed profile: %w", err)
	}
	return nil
}
