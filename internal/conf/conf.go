package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents application configuration
type Config struct {
	// Feishu transport configuration
	Feishu FeishuConfig

	// Primary user configuration
	Primary PrimaryConfig

	// OpenAI-compatible generation provider (optional)
	OpenAI OpenAIConfig

	// Relay engine configuration
	Relay RelayConfig

	// HTTP read API configuration (optional)
	API APIConfig

	// Prompts configuration (loaded from YAML)
	Prompts *PromptsConfig

	// Debug mode
	Debug bool
}

// FeishuConfig contains Feishu transport credentials
type FeishuConfig struct {
	AppID     string
	AppSecret string
}

// PrimaryConfig identifies the primary user the relay acts for
type PrimaryConfig struct {
	UserID string // the primary user's open id on the transport
	ChatID string // the p2p conversation used for notifications and commands
}

// OpenAIConfig contains generation provider configuration
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // optional, for OpenAI-compatible endpoints
	Model   string
}

// RelayConfig contains relay engine configuration
type RelayConfig struct {
	DBPath             string
	DraftExpiryMinutes int
	DigestDefaultHours int
}

// APIConfig contains the HTTP read API configuration
type APIConfig struct {
	Port int // 0 disables the API
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	dbPath := os.Getenv("RELAY_DB_PATH")
	if dbPath == "" {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".theia-relay", "relay.db")
	}

	draftExpiryMin := 120
	if val := os.Getenv("DRAFT_EXPIRY_MINUTES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			draftExpiryMin = parsed
		}
	}

	digestHours := 2
	if val := os.Getenv("DIGEST_DEFAULT_HOURS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			digestHours = parsed
		}
	}

	apiPort := 0
	if val := os.Getenv("API_PORT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			apiPort = parsed
		}
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	promptsConfig, _ := LoadPromptsConfig(os.Getenv("PROMPTS_CONFIG_PATH"))

	return &Config{
		Feishu: FeishuConfig{
			AppID:     os.Getenv("FEISHU_APP_ID"),
			AppSecret: os.Getenv("FEISHU_APP_SECRET"),
		},
		Primary: PrimaryConfig{
			UserID: os.Getenv("PRIMARY_USER_ID"),
			ChatID: os.Getenv("PRIMARY_CHAT_ID"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   model,
		},
		Relay: RelayConfig{
			DBPath:             dbPath,
			DraftExpiryMinutes: draftExpiryMin,
			DigestDefaultHours: digestHours,
		},
		API: APIConfig{
			Port: apiPort,
		},
		Prompts: promptsConfig,
		Debug:   os.Getenv("DEBUG") == "true",
	}
}

// DraftExpiry returns the draft time-to-live as a duration
func (c *RelayConfig) DraftExpiry() time.Duration {
	return time.Duration(c.DraftExpiryMinutes) * time.Minute
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Feishu.AppID == "" || c.Feishu.AppSecret == "" {
		return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "required"}
	}
	if c.Primary.UserID == "" {
		return &ConfigError{Field: "PRIMARY_USER_ID", Message: "required"}
	}
	if c.Primary.ChatID == "" {
		return &ConfigError{Field: "PRIMARY_CHAT_ID", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
