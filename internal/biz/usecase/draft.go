package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/theialabs/theia-relay/internal/biz/domain"
	"github.com/theialabs/theia-relay/internal/biz/repo"
)

// DraftUsecase runs the draft/send policy engine: staging generated
// replies as pending drafts and processing the contact's approval
// commands.
type DraftUsecase struct {
	draftRepo   repo.DraftRepo
	messageRepo repo.MessageRepo
	composer    *ComposerUsecase
	expiry      time.Duration
}

// NewDraftUsecase creates a new draft usecase
func NewDraftUsecase(
	draftRepo repo.DraftRepo,
	messageRepo repo.MessageRepo,
	composer *ComposerUsecase,
	expiry time.Duration,
) *DraftUsecase {
	return &DraftUsecase{
		draftRepo:   draftRepo,
		messageRepo: messageRepo,
		composer:    composer,
		expiry:      expiry,
	}
}

// Expiry returns the configured draft time-to-live
func (uc *DraftUsecase) Expiry() time.Duration {
	return uc.expiry
}

// Stage creates a pending draft for the contact and sends them the
// approval preview. Any previously active draft is replaced so a
// contact only ever operates on one.
func (uc *DraftUsecase) Stage(ctx context.Context, contactID, conversationID, body, contextHint string) (*domain.PendingDraft, error) {
	now := time.Now()

	if existing, err := uc.draftRepo.GetActive(ctx, contactID, now); err != nil {
		return nil, &domain.PersistenceError{Op: "get active draft", Err: err}
	} else if existing != nil {
		if err := uc.draftRepo.Delete(ctx, existing.ID); err != nil {
			return nil, &domain.PersistenceError{Op: "replace draft", Err: err}
		}
	}

	draft := &domain.PendingDraft{
		ContactID:      contactID,
		ConversationID: conversationID,
		Body:           body,
		Context:        contextHint,
		CreatedAt:      now,
		ExpiresAt:      now.Add(uc.expiry),
	}
	if err := uc.draftRepo.Create(ctx, draft); err != nil {
		return nil, &domain.PersistenceError{Op: "create draft", Err: err}
	}

	preview := uc.composer.DraftPreview(body, uc.expiry)
	if err := uc.messageRepo.SendText(ctx, conversationID, preview); err != nil {
		return nil, fmt.Errorf("send draft preview: %w", err)
	}

	return draft, nil
}

// HandleApproval processes a contact's send/cancel/edit command against
// their active draft. Returns the dispatched text for send actions.
// A command with no active draft yields a domain.NotFoundError; the
// caller treats that as a silent no-op.
func (uc *DraftUsecase) HandleApproval(ctx context.Context, contactID, conversationID string, action domain.DraftAction, editBody string) (string, error) {
	now := time.Now()

	draft, err := uc.draftRepo.GetActive(ctx, contactID, now)
	if err != nil {
		return "", &domain.PersistenceError{Op: "get active draft", Err: err}
	}
	if draft == nil {
		return "", &domain.NotFoundError{Resource: "active draft"}
	}

	switch action {
	case domain.DraftActionSend:
		outbound := uc.composer.WrapOutbound(draft.Body, now)
		if err := uc.messageRepo.SendText(ctx, conversationID, outbound); err != nil {
			return "", fmt.Errorf("dispatch draft: %w", err)
		}
		if err := uc.draftRepo.Delete(ctx, draft.ID); err != nil {
			return outbound, &domain.PersistenceError{Op: "delete sent draft", Err: err}
		}
		return outbound, nil

	case domain.DraftActionCancel:
		if err := uc.draftRepo.Delete(ctx, draft.ID); err != nil {
			return "", &domain.PersistenceError{Op: "delete cancelled draft", Err: err}
		}
		if err := uc.messageRepo.SendText(ctx, conversationID, "Okay, draft discarded."); err != nil {
			return "", fmt.Errorf("confirm cancel: %w", err)
		}
		return "", nil

	case domain.DraftActionEdit:
		// Replace the body verbatim, bypassing the generator, and
		// refresh the expiry window
		expiresAt := now.Add(uc.expiry)
		if err := uc.draftRepo.UpdateBody(ctx, draft.ID, editBody, expiresAt); err != nil {
			return "", &domain.PersistenceError{Op: "edit draft", Err: err}
		}
		preview := uc.composer.DraftPreview(editBody, uc.expiry)
		if err := uc.messageRepo.SendText(ctx, conversationID, preview); err != nil {
			return "", fmt.Errorf("send edit preview: %w", err)
		}
		return "", nil

	default:
		return "", nil
	}
}
