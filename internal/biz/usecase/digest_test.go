package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/theialabs/theia-relay/internal/biz/domain"
)

func TestDigest_EmptyWindow(t *testing.T) {
	uc := NewDigestUsecase(&fakeRelayLogRepo{}, "me", 2)

	text, err := uc.Build(context.Background(), 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(text, "last 2 hours") {
		t.Errorf("Expected default window in header, got %q", text)
	}
	if !strings.Contains(text, "No messages during this period.") {
		t.Errorf("Expected empty-window message, got %q", text)
	}
}

func TestDigest_GroupsInFirstSeenOrder(t *testing.T) {
	now := time.Now()
	logs := &fakeRelayLogRepo{records: []domain.RelayLogRecord{
		{FromUser: "x", ToUser: "me", CreatedAt: now.Add(-90 * time.Minute)},
		{FromUser: "x", ToUser: "me", IsUrgent: true, CreatedAt: now.Add(-80 * time.Minute)},
		{FromUser: "x", ToUser: "x", AutoResponded: true, CreatedAt: now.Add(-70 * time.Minute)},
		{FromUser: "y", ToUser: "me", CreatedAt: now.Add(-60 * time.Minute)},
		{FromUser: "z", ToUser: "me", CreatedAt: now.Add(-5 * time.Hour)}, // outside window
	}}
	uc := NewDigestUsecase(logs, "me", 2)

	text, err := uc.Build(context.Background(), 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(text, "Total: 4 messages") {
		t.Errorf("Expected total of 4, got %q", text)
	}
	if !strings.Contains(text, "• x: 3 messages (1 urgent) (1 auto-responded)") {
		t.Errorf("Expected grouped stats for x, got %q", text)
	}
	if !strings.Contains(text, "• y: 1 message") {
		t.Errorf("Expected singular form for y, got %q", text)
	}
	if strings.Contains(text, "z:") {
		t.Errorf("Expected records outside window excluded, got %q", text)
	}
	if strings.Index(text, "• x:") > strings.Index(text, "• y:") {
		t.Errorf("Expected first-seen order x before y, got %q", text)
	}
}
