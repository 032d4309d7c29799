package domain

import "strings"

// UserStatus represents the primary user's availability status
type UserStatus string

const (
	StatusAvailable UserStatus = "available"
	StatusBusy      UserStatus = "busy"
	StatusAway      UserStatus = "away"
	StatusSleep     UserStatus = "sleep"
	StatusDND       UserStatus = "dnd"
)

// AllStatuses lists every valid status value
var AllStatuses = []UserStatus{StatusAvailable, StatusBusy, StatusAway, StatusSleep, StatusDND}

// ParseUserStatus parses a status string, case-insensitive
func ParseUserStatus(s string) (UserStatus, bool) {
	for _, status := range AllStatuses {
		if string(status) == strings.ToLower(strings.TrimSpace(s)) {
			return status, true
		}
	}
	return "", false
}

// StatusMessage returns the human description used in generation prompts
func StatusMessage(s UserStatus) string {
	switch s {
	case StatusAvailable:
		return "I'm available now!"
	case StatusBusy:
		return "I'm busy at the moment but will respond when I can."
	case StatusAway:
		return "I'm away from my phone right now."
	case StatusSleep:
		return "I'm sleeping right now, will respond in the morning."
	case StatusDND:
		return "I'm in Do Not Disturb mode. For urgent matters, please call."
	default:
		return "I'm currently unavailable."
	}
}

// SendPolicy controls whether generated replies are staged or sent immediately
type SendPolicy string

const (
	PolicyDraft SendPolicy = "draft"
	PolicyYolo  SendPolicy = "yolo"
)

// RelayDirective is a read snapshot of the primary user's relay settings
type RelayDirective struct {
	Status     UserStatus
	SendPolicy SendPolicy
	Context    string // optional free-text hint for the generator
}

// DefaultDirective is used when the status store has no row or fails to read
func DefaultDirective() RelayDirective {
	return RelayDirective{
		Status:     StatusAvailable,
		SendPolicy: PolicyDraft,
	}
}

// StyleProfile describes the primary user's communication style
type StyleProfile struct {
	Tone          string
	CommonPhrases []string
	EmojiUsage    string
}

// DefaultStyleProfile is seeded at initialization
func DefaultStyleProfile() *StyleProfile {
	return &StyleProfile{
		Tone:          "friendly",
		CommonPhrases: []string{"sounds good", "let me check", "thanks"},
		EmojiUsage:    "moderate",
	}
}
