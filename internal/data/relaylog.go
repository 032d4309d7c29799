package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/theialabs/theia-relay/internal/biz/domain"
	"github.com/theialabs/theia-relay/internal/biz/repo"
)

type relayLogRepo struct {
	db *sql.DB
}

// NewRelayLogRepo creates a new relay log repository
func NewRelayLogRepo(db *sql.DB) (repo.RelayLogRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS relay_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id TEXT NOT NULL,
			from_user TEXT NOT NULL,
			to_user TEXT NOT NULL,
			original_text TEXT NOT NULL,
			relayed_text TEXT NOT NULL,
			method TEXT NOT NULL,
			is_urgent INTEGER NOT NULL DEFAULT 0,
			auto_responded INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create relay_messages table: %w", err)
	}
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_relay_created ON relay_messages(created_at)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create relay log index: %w", err)
	}
	return &relayLogRepo{db: db}, nil
}

// Append records a relay event and assigns its ID
func (r *relayLogRepo) Append(ctx context.Context, rec *domain.RelayLogRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO relay_messages
			(conversation_id, from_user, to_user, original_text, relayed_text, method, is_urgent, auto_responded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ConversationID, rec.FromUser, rec.ToUser, rec.OriginalText, rec.RelayedText,
		string(rec.Method), boolToInt(rec.IsUrgent), boolToInt(rec.AutoResponded), rec.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert relay record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read relay record id: %w", err)
	}
	rec.ID = id
	return nil
}

// ListSince returns records at or after the cutoff, oldest first
func (r *relayLogRepo) ListSince(ctx context.Context, since time.Time) ([]domain.RelayLogRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, from_user, to_user, original_text, relayed_text, method, is_urgent, auto_responded, created_at
		FROM relay_messages
		WHERE created_at >= ?
		ORDER BY created_at ASC, id ASC
	`, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query relay records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListRecent returns the newest records first, optionally filtered by sender
// or recipient
func (r *relayLogRepo) ListRecent(ctx context.Context, limit int, fromUser, toUser string) ([]domain.RelayLogRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, conversation_id, from_user, to_user, original_text, relayed_text, method, is_urgent, auto_responded, created_at
		FROM relay_messages
		WHERE 1 = 1
	`
	args := []interface{}{}
	if fromUser != "" {
		query += " AND from_user = ?"
		args = append(args, fromUser)
	}
	if toUser != "" {
		query += " AND to_user = ?"
		args = append(args, toUser)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query relay records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// LastRecordTo returns the newest record addressed to the given user, or nil
func (r *relayLogRepo) LastRecordTo(ctx context.Context, userID string) (*domain.RelayLogRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, conversation_id, from_user, to_user, original_text, relayed_text, method, is_urgent, auto_responded, created_at
		FROM relay_messages
		WHERE to_user = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userID)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last record: %w", err)
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*domain.RelayLogRecord, error) {
	var rec domain.RelayLogRecord
	var method string
	var isUrgent, autoResponded int
	var createdAt int64
	err := row.Scan(&rec.ID, &rec.ConversationID, &rec.FromUser, &rec.ToUser,
		&rec.OriginalText, &rec.RelayedText, &method, &isUrgent, &autoResponded, &createdAt)
	if err != nil {
		return nil, err
	}
	rec.Method = domain.RelayMethod(method)
	rec.IsUrgent = isUrgent != 0
	rec.AutoResponded = autoResponded != 0
	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]domain.RelayLogRecord, error) {
	var records []domain.RelayLogRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relay record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate relay records: %w", err)
	}
	return records, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
