package feishu

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	larkws "github.com/larksuite/oapi-sdk-go/v3/ws"
)

// Message is a text message received over the event stream
type Message struct {
	ChatID     string
	MsgID      string
	ChatType   string
	SenderID   string
	SenderType string
	Content    string
	CreateTime string
}

type Client struct {
	appID     string
	appSecret string
	larkCli   *lark.Client
	wsCli     *larkws.Client
	onMessage func(Message)
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a Feishu client. The API client is ready immediately;
// the event stream starts on Start.
func NewClient(appID, appSecret string) *Client {
	return &Client{
		appID:     appID,
		appSecret: appSecret,
		larkCli:   lark.NewClient(appID, appSecret),
	}
}

func (c *Client) OnMessage(handler func(Message)) {
	c.onMessage = handler
}

// Start opens the WebSocket event connection and blocks until Stop
func (c *Client) Start() error {
	c.ctx, c.cancel = context.WithCancel(context.Background())

	eventHandler := dispatcher.NewEventDispatcher("", "").
		OnP2MessageReceiveV1(func(ctx context.Context, event *larkim.P2MessageReceiveV1) error {
			c.handleMessage(event)
			return nil
		})

	c.wsCli = larkws.NewClient(c.appID, c.appSecret,
		larkws.WithEventHandler(eventHandler),
		larkws.WithLogLevel(larkcore.LogLevelInfo),
	)

	fmt.Println("[Feishu] Starting WebSocket connection...")
	return c.wsCli.Start(c.ctx)
}

func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Client) handleMessage(event *larkim.P2MessageReceiveV1) {
	msg := event.Event.Message
	if msg == nil {
		return
	}

	if msg.MessageType == nil || *msg.MessageType != "text" {
		return
	}

	var textContent struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(*msg.Content), &textContent); err != nil {
		fmt.Printf("[Feishu] Failed to parse content: %v\n", err)
		return
	}

	m := Message{
		Content: textContent.Text,
	}
	if msg.ChatId != nil {
		m.ChatID = *msg.ChatId
	}
	if msg.MessageId != nil {
		m.MsgID = *msg.MessageId
	}
	if msg.ChatType != nil {
		m.ChatType = *msg.ChatType
	}
	if msg.CreateTime != nil {
		m.CreateTime = *msg.CreateTime
	}
	if sender := event.Event.Sender; sender != nil {
		if sender.SenderType != nil {
			m.SenderType = *sender.SenderType
		}
		if sender.SenderId != nil && sender.SenderId.OpenId != nil {
			m.SenderID = *sender.SenderId.OpenId
		}
	}

	// Skip messages sent by bots, including our own
	if m.SenderType == "app" {
		return
	}

	fmt.Printf("[Feishu] Received message from %s in chat %s: %s\n", m.SenderID, m.ChatID, truncate(m.Content, 50))

	if c.onMessage != nil {
		c.onMessage(m)
	}
}

// SendText sends a plain text message to a chat
func (c *Client) SendText(chatID, text string) error {
	content := map[string]string{"text": text}
	contentJSON, _ := json.Marshal(content)

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(larkim.MsgTypeText).
			Content(string(contentJSON)).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(context.Background(), req)
	if err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("send message error: %s", resp.Msg)
	}

	fmt.Printf("[Feishu] Message sent to %s\n", chatID)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
