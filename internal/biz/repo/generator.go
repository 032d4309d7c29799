package repo

import "context"

// GeneratorRepo is the text-generation provider interface
type GeneratorRepo interface {
	// Generate produces free-form text from a system and user prompt.
	// Fails with a domain.GenerationError on provider/network fault.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
