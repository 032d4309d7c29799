package domain

import "time"

// RelayMethod describes how a message was relayed
type RelayMethod string

const (
	RelayMethodManual RelayMethod = "manual"
	RelayMethodAuto   RelayMethod = "auto"
	RelayMethodUrgent RelayMethod = "urgent"
)

// RelayLogRecord is an immutable record of one relay event
type RelayLogRecord struct {
	ID             int64
	ConversationID string
	FromUser       string
	ToUser         string
	OriginalText   string
	RelayedText    string
	Method         RelayMethod
	IsUrgent       bool
	AutoResponded  bool
	CreatedAt      time.Time
}

// Counterpart returns the non-primary-user side of the record
func (r *RelayLogRecord) Counterpart(primaryUserID string) string {
	if r.FromUser == primaryUserID {
		return r.ToUser
	}
	return r.FromUser
}

// DigestGroup summarizes relay activity for one counterpart
type DigestGroup struct {
	Counterpart   string
	Count         int
	Urgent        int
	AutoResponded int
}

// GroupByCounterpart groups records by counterpart in first-seen order
func GroupByCounterpart(records []RelayLogRecord, primaryUserID string) []DigestGroup {
	index := make(map[string]int)
	var groups []DigestGroup

	for _, r := range records {
		counterpart := r.Counterpart(primaryUserID)
		i, ok := index[counterpart]
		if !ok {
			i = len(groups)
			index[counterpart] = i
			groups = append(groups, DigestGroup{Counterpart: counterpart})
		}
		groups[i].Count++
		if r.IsUrgent {
			groups[i].Urgent++
		}
		if r.AutoResponded {
			groups[i].AutoResponded++
		}
	}

	return groups
}
