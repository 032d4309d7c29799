package domain

import (
	"testing"
	"time"
)

func TestPendingDraft_IsActive(t *testing.T) {
	now := time.Now()
	draft := &PendingDraft{
		ContactID: "contact-1",
		Body:      "I'll get back to you soon.",
		CreatedAt: now,
		ExpiresAt: now.Add(2 * time.Hour),
	}

	if !draft.IsActive(now) {
		t.Error("Expected fresh draft to be active")
	}
	if draft.IsActive(now.Add(2 * time.Hour)) {
		t.Error("Expected draft to be inactive at expiry boundary")
	}
	if draft.IsActive(now.Add(3 * time.Hour)) {
		t.Error("Expected expired draft to be inactive")
	}
}

func TestPendingDraft_Edit(t *testing.T) {
	now := time.Now()
	draft := &PendingDraft{
		Body:      "original body",
		CreatedAt: now.Add(-90 * time.Minute),
		ExpiresAt: now.Add(30 * time.Minute),
	}

	draft.Edit("replacement body", 2*time.Hour, now)

	if draft.Body != "replacement body" {
		t.Errorf("Expected body replaced, got %q", draft.Body)
	}
	if !draft.ExpiresAt.Equal(now.Add(2 * time.Hour)) {
		t.Errorf("Expected expiry refreshed to now+2h, got %v", draft.ExpiresAt)
	}
}
