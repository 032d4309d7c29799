package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CommandType identifies a parsed relay command
type CommandType string

const (
	CommandNone        CommandType = "none"
	CommandSend        CommandType = "send"
	CommandReply       CommandType = "reply"
	CommandStatusCheck CommandType = "status_check"
	CommandStatusSet   CommandType = "status_set"
	CommandDigest      CommandType = "digest"
	CommandContextSet  CommandType = "context_set"
)

// DefaultDigestHours is the window used when /digest has no argument
const DefaultDigestHours = 2

// Command is a parsed instruction from the primary user's own message
type Command struct {
	Type      CommandType
	Target    string     // send: contact identifier
	Message   string     // send/reply/context: payload text
	Status    UserStatus // status_set: requested status
	HoursBack int        // digest: lookback window
}

var (
	sendRegex  = regexp.MustCompile(`(?is)^@([\w+\-]+)\s+send:\s*(.+)$`)
	replyRegex = regexp.MustCompile(`(?is)^reply:\s*(.+)$`)
)

// ParseCommand parses the primary user's message into a relay command.
// Unrecognized text yields CommandNone; a recognized command with a bad
// argument (e.g. "/status bogus") yields a *ValidationError so the user
// gets actionable feedback instead of silent fallthrough.
func ParseCommand(text string) (*Command, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &Command{Type: CommandNone}, nil
	}

	if m := sendRegex.FindStringSubmatch(trimmed); m != nil {
		return &Command{
			Type:    CommandSend,
			Target:  strings.TrimSpace(m[1]),
			Message: strings.TrimSpace(m[2]),
		}, nil
	}

	if m := replyRegex.FindStringSubmatch(trimmed); m != nil {
		return &Command{
			Type:    CommandReply,
			Message: strings.TrimSpace(m[1]),
		}, nil
	}

	// Slash commands match on the exact first token so ordinary text
	// like "/digested today" stays ordinary
	parts := strings.Fields(trimmed)

	if strings.EqualFold(parts[0], "/status") {
		if len(parts) < 2 {
			return nil, &ValidationError{Message: "Invalid status command. Use: /status [available|busy|away|sleep|dnd|check]"}
		}
		if strings.EqualFold(parts[1], "check") {
			return &Command{Type: CommandStatusCheck}, nil
		}
		status, ok := ParseUserStatus(parts[1])
		if !ok {
			return nil, &ValidationError{Message: "Invalid status command. Use: /status [available|busy|away|sleep|dnd|check]"}
		}
		return &Command{Type: CommandStatusSet, Status: status}, nil
	}

	if strings.EqualFold(parts[0], "/digest") {
		hours := DefaultDigestHours
		if len(parts) > 1 {
			parsed, err := strconv.Atoi(parts[1])
			if err != nil || parsed <= 0 {
				return nil, &ValidationError{Message: fmt.Sprintf("Invalid digest window %q. Use: /digest [hours]", parts[1])}
			}
			hours = parsed
		}
		return &Command{Type: CommandDigest, HoursBack: hours}, nil
	}

	if strings.EqualFold(parts[0], "/context") {
		rest := strings.TrimSpace(trimmed[len(parts[0]):])
		if rest == "" {
			return nil, &ValidationError{Message: "Usage: /context <hint> or /context clear"}
		}
		if strings.EqualFold(rest, "clear") {
			rest = ""
		}
		return &Command{Type: CommandContextSet, Message: rest}, nil
	}

	return &Command{Type: CommandNone}, nil
}

// DraftAction identifies a contact's draft-lifecycle command
type DraftAction string

const (
	DraftActionNone   DraftAction = "none"
	DraftActionSend   DraftAction = "send"
	DraftActionCancel DraftAction = "cancel"
	DraftActionEdit   DraftAction = "edit"
)

var editRegex = regexp.MustCompile(`(?is)^edit:\s*(.+)$`)

// ParseDraftCommand parses a contact message as a draft approval command.
// Returns the replacement body for edit actions.
func ParseDraftCommand(text string) (DraftAction, string) {
	trimmed := strings.TrimSpace(text)

	if strings.EqualFold(trimmed, "send") {
		return DraftActionSend, ""
	}
	if strings.EqualFold(trimmed, "cancel") {
		return DraftActionCancel, ""
	}
	if m := editRegex.FindStringSubmatch(trimmed); m != nil {
		return DraftActionEdit, strings.TrimSpace(m[1])
	}

	return DraftActionNone, ""
}

// DetectPolicyToggle recognizes the free-text phrases that flip the send
// policy ("go yolo" / "stop yolo"). Returns the requested policy.
func DetectPolicyToggle(text string) (SendPolicy, bool) {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "stop yolo") {
		return PolicyDraft, true
	}
	if strings.Contains(lower, "go yolo") {
		return PolicyYolo, true
	}
	return "", false
}
