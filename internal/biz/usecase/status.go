package usecase

import (
	"context"
	"fmt"

	"github.com/theialabs/theia-relay/internal/biz/domain"
	"github.com/theialabs/theia-relay/internal/biz/repo"
)

// StatusUsecase handles the primary user's availability, send policy
// and style profile
type StatusUsecase struct {
	statusRepo repo.StatusRepo
}

// NewStatusUsecase creates a new status usecase
func NewStatusUsecase(statusRepo repo.StatusRepo) *StatusUsecase {
	return &StatusUsecase{statusRepo: statusRepo}
}

// Directive reads the current relay directive. Read failures degrade to
// the safe default (available, draft policy) so the relay keeps
// working.
func (uc *StatusUsecase) Directive(ctx context.Context) domain.RelayDirective {
	directive, err := uc.statusRepo.GetDirective(ctx)
	if err != nil {
		fmt.Printf("[Status] Directive read failed, defaulting to available: %v\n", err)
		return domain.DefaultDirective()
	}
	return directive
}

// SetStatus updates the availability status
func (uc *StatusUsecase) SetStatus(ctx context.Context, status domain.UserStatus) error {
	if err := uc.statusRepo.SetStatus(ctx, status); err != nil {
		return &domain.PersistenceError{Op: "set status", Err: err}
	}
	return nil
}

// SetSendPolicy updates the draft/yolo flag
func (uc *StatusUsecase) SetSendPolicy(ctx context.Context, policy domain.SendPolicy) error {
	if err := uc.statusRepo.SetSendPolicy(ctx, policy); err != nil {
		return &domain.PersistenceError{Op: "set send policy", Err: err}
	}
	return nil
}

// SetContext updates the free-text directive hint
func (uc *StatusUsecase) SetContext(ctx context.Context, hint string) error {
	if err := uc.statusRepo.SetContext(ctx, hint); err != nil {
		return &domain.PersistenceError{Op: "set context", Err: err}
	}
	return nil
}

// Profile reads the style profile, or nil when unavailable (the
// composer substitutes the default)
func (uc *StatusUsecase) Profile(ctx context.Context) *domain.StyleProfile {
	profile, err := uc.statusRepo.GetProfile(ctx)
	if err != nil {
		fmt.Printf("[Status] Profile read failed: %v\n", err)
		return nil
	}
	return profile
}

// EnsureUser seeds the status row and default profile at startup
func (uc *StatusUsecase) EnsureUser(ctx context.Context) error {
	if err := uc.statusRepo.EnsureUser(ctx); err != nil {
		return &domain.PersistenceError{Op: "initialize user", Err: err}
	}
	return nil
}
