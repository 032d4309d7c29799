package mcpserver

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RelayMCPServer exposes the relay's state and actions as MCP tools so
// an agent can operate the relay from a stdio session
type RelayMCPServer struct {
	server *mcp.Server
}

// StatusInfo is the relay status snapshot returned to the agent
type StatusInfo struct {
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`
	SendPolicy    string `json:"send_policy"`
	Context       string `json:"context,omitempty"`
}

// GetStatusCallback returns the current relay status
type GetStatusCallback func(ctx context.Context) (StatusInfo, error)

// SetStatusCallback updates the relay status
type SetStatusCallback func(ctx context.Context, status string) (StatusInfo, error)

// GetDigestCallback builds the activity digest for a window
type GetDigestCallback func(ctx context.Context, hours int) (string, error)

// SendMessageCallback relays a message to a conversation
type SendMessageCallback func(ctx context.Context, conversationID, content string) error

// Callbacks holds the callback functions for MCP tools
type Callbacks struct {
	GetStatus   GetStatusCallback
	SetStatus   SetStatusCallback
	GetDigest   GetDigestCallback
	SendMessage SendMessageCallback
}

var (
	globalCallbacks *Callbacks
	serverMu        sync.Mutex
)

// NewServer creates a new relay MCP server
func NewServer(callbacks *Callbacks) *RelayMCPServer {
	serverMu.Lock()
	defer serverMu.Unlock()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "relay-tools",
		Version: "v1.0.0",
	}, nil)

	rs := &RelayMCPServer{server: server}
	globalCallbacks = callbacks
	rs.registerTools()

	return rs
}

func (s *RelayMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "relay_get_status",
		Description: "Get the relay user's current availability status, send policy and context hint.",
	}, handleGetStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "relay_set_status",
		Description: "Set the relay user's availability status. Valid values: available, busy, away, sleep, dnd.",
	}, handleSetStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "relay_get_digest",
		Description: "Get a digest of relayed messages over the last N hours, grouped by contact.",
	}, handleGetDigest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "relay_send_message",
		Description: "Send a text message to a conversation through the relay.",
	}, handleSendMessage)
}

// GetStatusInput is empty - no input needed
type GetStatusInput struct{}

// GetStatusOutput contains the current relay status
type GetStatusOutput struct {
	StatusInfo
	Error string `json:"error,omitempty"`
}

func handleGetStatus(ctx context.Context, req *mcp.CallToolRequest, input GetStatusInput) (*mcp.CallToolResult, GetStatusOutput, error) {
	if globalCallbacks == nil || globalCallbacks.GetStatus == nil {
		return nil, GetStatusOutput{Error: "callback not configured"}, nil
	}

	info, err := globalCallbacks.GetStatus(ctx)
	if err != nil {
		return nil, GetStatusOutput{Error: err.Error()}, nil
	}
	return nil, GetStatusOutput{StatusInfo: info}, nil
}

// SetStatusInput is the input for relay_set_status
type SetStatusInput struct {
	Status string `json:"status" jsonschema:"description=The new status: available, busy, away, sleep or dnd"`
}

// SetStatusOutput is the output for relay_set_status
type SetStatusOutput struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

func handleSetStatus(ctx context.Context, req *mcp.CallToolRequest, input SetStatusInput) (*mcp.CallToolResult, SetStatusOutput, error) {
	if globalCallbacks == nil || globalCallbacks.SetStatus == nil {
		return nil, SetStatusOutput{Success: false, Error: "callback not configured"}, nil
	}

	info, err := globalCallbacks.SetStatus(ctx, input.Status)
	if err != nil {
		return nil, SetStatusOutput{Success: false, Error: err.Error()}, nil
	}
	return nil, SetStatusOutput{Success: true, Status: info.Status}, nil
}

// GetDigestInput specifies the lookback window
type GetDigestInput struct {
	Hours int `json:"hours,omitempty" jsonschema:"description=Lookback window in hours (default 2)"`
}

// GetDigestOutput contains the rendered digest
type GetDigestOutput struct {
	Digest string `json:"digest,omitempty"`
	Error  string `json:"error,omitempty"`
}

func handleGetDigest(ctx context.Context, req *mcp.CallToolRequest, input GetDigestInput) (*mcp.CallToolResult, GetDigestOutput, error) {
	if globalCallbacks == nil || globalCallbacks.GetDigest == nil {
		return nil, GetDigestOutput{Error: "callback not configured"}, nil
	}

	digest, err := globalCallbacks.GetDigest(ctx, input.Hours)
	if err != nil {
		return nil, GetDigestOutput{Error: err.Error()}, nil
	}
	return nil, GetDigestOutput{Digest: digest}, nil
}

// SendMessageInput is the input for relay_send_message
type SendMessageInput struct {
	ConversationID string `json:"conversation_id" jsonschema:"description=The chat to send to"`
	Content        string `json:"content" jsonschema:"description=The message content to send"`
}

// SendMessageOutput is the output for relay_send_message
type SendMessageOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func handleSendMessage(ctx context.Context, req *mcp.CallToolRequest, input SendMessageInput) (*mcp.CallToolResult, SendMessageOutput, error) {
	if globalCallbacks == nil || globalCallbacks.SendMessage == nil {
		return nil, SendMessageOutput{Success: false, Error: "callback not configured"}, nil
	}
	if input.ConversationID == "" {
		return nil, SendMessageOutput{Success: false, Error: "conversation_id is required"}, nil
	}

	if err := globalCallbacks.SendMessage(ctx, input.ConversationID, input.Content); err != nil {
		return nil, SendMessageOutput{Success: false, Error: err.Error()}, nil
	}
	return nil, SendMessageOutput{Success: true}, nil
}

// Run starts the MCP server with stdio transport
func (s *RelayMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetServer returns the underlying MCP server
func (s *RelayMCPServer) GetServer() *mcp.Server {
	return s.server
}
