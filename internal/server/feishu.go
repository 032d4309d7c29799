package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/theialabs/theia-relay/feishu"
	"github.com/theialabs/theia-relay/internal/service"
)

// FeishuServer bridges the Feishu event stream and the relay service
type FeishuServer struct {
	feishuClient  *feishu.Client
	relaySvc      *service.RelayService
	primaryUserID string

	// Message deduplication cache
	seenMsgsMu sync.RWMutex
	seenMsgs   map[string]time.Time // msgID -> timestamp
}

// NewFeishuServer creates a new Feishu server
func NewFeishuServer(
	feishuClient *feishu.Client,
	relaySvc *service.RelayService,
	primaryUserID string,
) *FeishuServer {
	return &FeishuServer{
		feishuClient:  feishuClient,
		relaySvc:      relaySvc,
		primaryUserID: primaryUserID,
		seenMsgs:      make(map[string]time.Time),
	}
}

// Start registers the message handler and blocks on the event stream
func (s *FeishuServer) Start() error {
	s.feishuClient.OnMessage(s.handleMessage)
	return s.feishuClient.Start()
}

// Stop stops the server
func (s *FeishuServer) Stop() {
	s.feishuClient.Stop()
}

// handleMessage normalizes a Feishu message and hands it to the relay.
// The event stream delivers messages serially and the relay is invoked
// inline, so messages from one sender keep their arrival order. Draft
// approvals depend on that: an edit followed by send must apply the
// edit first.
func (s *FeishuServer) handleMessage(msg feishu.Message) {
	fmt.Printf("[Server] Received from %s (chat=%s): %s\n",
		msg.SenderID, msg.ChatID, truncate(msg.Content, 50))

	if s.isMessageSeen(msg.MsgID) {
		fmt.Printf("[Server] Duplicate message ignored: %s\n", msg.MsgID)
		return
	}
	s.markMessageSeen(msg.MsgID)

	inbound := service.InboundMessage{
		Sender:         msg.SenderID,
		ConversationID: msg.ChatID,
		Text:           msg.Content,
		IsFromPrimary:  msg.SenderID == s.primaryUserID,
	}

	s.relaySvc.HandleMessage(context.Background(), inbound)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// isMessageSeen checks if a message has been processed
func (s *FeishuServer) isMessageSeen(msgID string) bool {
	s.seenMsgsMu.RLock()
	defer s.seenMsgsMu.RUnlock()
	_, exists := s.seenMsgs[msgID]
	return exists
}

// markMessageSeen marks a message as processed
func (s *FeishuServer) markMessageSeen(msgID string) {
	s.seenMsgsMu.Lock()
	defer s.seenMsgsMu.Unlock()
	s.seenMsgs[msgID] = time.Now()

	// Clean up records older than 5 minutes to prevent memory leaks
	cutoff := time.Now().Add(-5 * time.Minute)
	for id, ts := range s.seenMsgs {
		if ts.Before(cutoff) {
			delete(s.seenMsgs, id)
		}
	}
}
