package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theialabs/theia-relay/internal/biz/domain"
	"github.com/theialabs/theia-relay/internal/biz/repo"
)

// DigestUsecase aggregates relay activity over a time window
type DigestUsecase struct {
	logRepo       repo.RelayLogRepo
	primaryUserID string
	defaultHours  int
}

// NewDigestUsecase creates a new digest usecase
func NewDigestUsecase(logRepo repo.RelayLogRepo, primaryUserID string, defaultHours int) *DigestUsecase {
	if defaultHours <= 0 {
		defaultHours = domain.DefaultDigestHours
	}
	return &DigestUsecase{
		logRepo:       logRepo,
		primaryUserID: primaryUserID,
		defaultHours:  defaultHours,
	}
}

// Build renders the digest text for the last hoursBack hours, grouping
// records by counterpart in first-seen order
func (uc *DigestUsecase) Build(ctx context.Context, hoursBack int) (string, error) {
	if hoursBack <= 0 {
		hoursBack = uc.defaultHours
	}

	since := time.Now().Add(-time.Duration(hoursBack) * time.Hour)
	records, err := uc.logRepo.ListSince(ctx, since)
	if err != nil {
		return "", &domain.PersistenceError{Op: "list relay records", Err: err}
	}

	header := fmt.Sprintf("📊 Message Digest (last %d hours):", hoursBack)
	if len(records) == 0 {
		return header + "\nNo messages during this period.", nil
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString(fmt.Sprintf("\nTotal: %d messages\n", len(records)))

	for _, g := range domain.GroupByCounterpart(records, uc.primaryUserID) {
		plural := "message"
		if g.Count > 1 {
			plural = "messages"
		}
		b.WriteString(fmt.Sprintf("\n• %s: %d %s", g.Counterpart, g.Count, plural))
		if g.Urgent > 0 {
			b.WriteString(fmt.Sprintf(" (%d urgent)", g.Urgent))
		}
		if g.AutoResponded > 0 {
			b.WriteString(fmt.Sprintf(" (%d auto-responded)", g.AutoResponded))
		}
	}

	return b.String(), nil
}
