package data

import (
	"context"
	"fmt"

	"github.com/theialabs/theia-relay/feishu"
	"github.com/theialabs/theia-relay/internal/biz/repo"
)

// feishuRepo sends outbound text through the Feishu client
type feishuRepo struct {
	client *feishu.Client
}

// NewFeishuRepo creates a message repository over a Feishu client
func NewFeishuRepo(client *feishu.Client) repo.MessageRepo {
	return &feishuRepo{client: client}
}

func (r *feishuRepo) SendText(ctx context.Context, conversationID, text string) error {
	if err := r.client.SendText(conversationID, text); err != nil {
		return fmt.Errorf("failed to send to %s: %w", conversationID, err)
	}
	return nil
}
