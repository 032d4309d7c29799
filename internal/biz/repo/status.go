package repo

import (
	"context"

	"github.com/theialabs/theia-relay/internal/biz/domain"
)

// StatusRepo is the status store interface.
// Responsible for the primary user's availability, send policy,
// directive context, and style profile (SQLite).
type StatusRepo interface {
	// GetDirective reads the current status/policy/context snapshot
	GetDirective(ctx context.Context) (domain.RelayDirective, error)

	// SetStatus updates the availability status
	SetStatus(ctx context.Context, status domain.UserStatus) error

	// SetSendPolicy updates the draft/yolo flag
	SetSendPolicy(ctx context.Context, policy domain.SendPolicy) error

	// SetContext updates the free-text directive hint
	SetContext(ctx context.Context, hint string) error

	// GetProfile reads the communication-style profile
	GetProfile(ctx context.Context) (*domain.StyleProfile, error)

	// EnsureUser seeds the status row and default profile if absent
	EnsureUser(ctx context.Context) error
}
