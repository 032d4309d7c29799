package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PromptsConfig contains all prompt and template text loaded from YAML
type PromptsConfig struct {
	Responder ResponderPrompts `yaml:"responder"`
	Notify    NotifyPrompts    `yaml:"notify"`
	Outbound  OutboundFormat   `yaml:"outbound"`
}

// ResponderPrompts drive the auto-response generator
type ResponderPrompts struct {
	// SystemTemplate supports {status}, {status_message}, {style} and
	// {context} placeholders
	SystemTemplate  string `yaml:"system_template"`
	FallbackMessage string `yaml:"fallback_message"`
	Signature       string `yaml:"signature"`
}

// NotifyPrompts are the deterministic notification templates
type NotifyPrompts struct {
	// UrgentTemplate supports {sender} and {text}
	UrgentTemplate string `yaml:"urgent_template"`
	// ForwardTemplate supports {sender} and {text}
	ForwardTemplate string `yaml:"forward_template"`
	// AutoRespondTemplate supports {sender}, {inbound} and {outbound}
	AutoRespondTemplate string `yaml:"auto_respond_template"`
	// DraftStagedTemplate supports {sender}, {inbound} and {outbound}
	DraftStagedTemplate string `yaml:"draft_staged_template"`
	// DraftPreviewTemplate supports {body} and {expiry_minutes}
	DraftPreviewTemplate string `yaml:"draft_preview_template"`
}

// OutboundFormat controls the deterministic wrapper on approved replies
type OutboundFormat struct {
	HeaderGlyph     string `yaml:"header_glyph"`
	ReferencePrefix string `yaml:"reference_prefix"`
	MaxBodyLines    int    `yaml:"max_body_lines"`
}

// DefaultPromptsConfig returns the compiled-in defaults
func DefaultPromptsConfig() *PromptsConfig {
	return &PromptsConfig{
		Responder: ResponderPrompts{
			SystemTemplate: `You are Theia, an AI assistant responding on behalf of a user who is {status}.

{style}

Your task: Respond naturally and briefly (1-2 sentences) to acknowledge the message.
Let them know the user will get back to them soon.
Be warm and helpful.

Context: {status_message}. {context}`,
			FallbackMessage: "Thanks for your message! The person you're trying to reach is currently unavailable. They'll get back to you soon.",
			Signature:       "— Theia (AI Assistant)",
		},
		Notify: NotifyPrompts{
			UrgentTemplate:      "🚨 URGENT from {sender}:\n\"{text}\"",
			ForwardTemplate:     "📨 From {sender}:\n\"{text}\"\n\nReply with: Reply: [your message]",
			AutoRespondTemplate: "✅ Auto-responded to {sender}:\n\nTheir message:\n\"{inbound}\"\n\nMy response:\n\"{outbound}\"",
			DraftStagedTemplate: "📝 Draft staged for {sender}:\n\nTheir message:\n\"{inbound}\"\n\nDraft:\n\"{outbound}\"",
			DraftPreviewTemplate: "Here's a draft reply (expires in {expiry_minutes} min):\n\n{body}\n\nReply \"send\" to approve, \"cancel\" to discard, or \"edit: <your text>\" to replace it.",
		},
		Outbound: OutboundFormat{
			HeaderGlyph:     "▸",
			ReferencePrefix: "THEIA",
			MaxBodyLines:    6,
		},
	}
}

// LoadPromptsConfig loads prompt configuration from a YAML file,
// falling back to defaults when no file is found
func LoadPromptsConfig(configPath string) (*PromptsConfig, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/prompts.yaml",
			"./configs/prompts.yaml",
			"/etc/theia-relay/prompts.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "prompts.yaml"))
		}
	}

	var data []byte
	var loadedPath string

	for _, p := range paths {
		if p == "" {
			continue
		}
		if b, err := os.ReadFile(p); err == nil {
			data = b
			loadedPath = p
			break
		}
	}

	cfg := DefaultPromptsConfig()
	if data == nil {
		fmt.Println("[Config] No prompts.yaml found, using defaults")
		return cfg, nil
	}

	fmt.Printf("[Config] Loading prompts from: %s\n", loadedPath)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultPromptsConfig(), fmt.Errorf("parse prompts config: %w", err)
	}
	if cfg.Outbound.MaxBodyLines <= 0 {
		cfg.Outbound.MaxBodyLines = 6
	}
	return cfg, nil
}
