package data

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/theialabs/theia-relay/internal/biz/domain"
	"github.com/theialabs/theia-relay/internal/biz/repo"
)

// openaiRepo generates reply drafts through an OpenAI-compatible endpoint
type openaiRepo struct {
	client *openai.Client
	model  string
}

// NewOpenAIRepo creates a generator repository. Returns nil when no API key
// is configured; callers fall back to canned replies.
func NewOpenAIRepo(apiKey, baseURL, model string) repo.GeneratorRepo {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &openaiRepo{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Generate produces a short reply from system and user prompts
func (r *openaiRepo) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("chat completion: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.GenerationError{Err: fmt.Errorf("no response choices")}
	}

	return resp.Choices[0].Message.Content, nil
}
