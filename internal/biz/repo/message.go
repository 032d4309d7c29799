package repo

import "context"

// MessageRepo is the outbound transport interface.
// Responsible for delivering text to a conversation.
type MessageRepo interface {
	// SendText sends a text message to a conversation
	SendText(ctx context.Context, conversationID, text string) error
}
