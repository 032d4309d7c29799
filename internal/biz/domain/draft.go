package domain

import "time"

// PendingDraft is a generated reply awaiting the contact's approval
type PendingDraft struct {
	ID             int64
	ContactID      string
	ConversationID string
	Body           string
	Context        string
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// IsActive reports whether the draft can still be operated on.
// An expired draft is treated as absent everywhere.
func (d *PendingDraft) IsActive(now time.Time) bool {
	return now.Before(d.ExpiresAt)
}

// Edit replaces the body verbatim and refreshes the expiry window
func (d *PendingDraft) Edit(body string, ttl time.Duration, now time.Time) {
	d.Body = body
	d.ExpiresAt = now.Add(ttl)
}
