package repo

import (
	"context"
	"time"

	"github.com/theialabs/theia-relay/internal/biz/domain"
)

// RelayLogRepo is the append-only relay log interface (SQLite)
type RelayLogRepo interface {
	// Append stores one relay record
	Append(ctx context.Context, record *domain.RelayLogRecord) error

	// ListSince returns records created at or after the given time,
	// oldest first
	ListSince(ctx context.Context, since time.Time) ([]domain.RelayLogRecord, error)

	// ListRecent returns the newest records, optionally filtered by
	// sender/recipient (for the read API)
	ListRecent(ctx context.Context, limit int, fromUser, toUser string) ([]domain.RelayLogRecord, error)

	// LastRecordTo returns the newest record addressed to the given
	// user, or nil (used for reply threading)
	LastRecordTo(ctx context.Context, userID string) (*domain.RelayLogRecord, error)
}
