// Package embeddings wraps external text-embedding services behind a
// single batched interface. One vector is returned per input text.
package embeddings

import "context"

// Provider turns a batch of texts into one embedding vector per text.
// Implementations may fail as a whole but never return a partial batch.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Name() string
}

// NewProvider picks the configured embedding backend, preferring Cohere
// over OpenAI when both keys are present. Returns nil when neither is
// configured; callers treat a nil provider as "embeddings unavailable".
func NewProvider(cohereAPIKey, cohereModel, openaiAPIKey, openaiModel string) Provider {
	if cohereAPIKey != "" {
		return NewCohereProvider(cohereAPIKey, cohereModel)
	}
	if openaiAPIKey != "" {
		return NewOpenAIProvider(openaiAPIKey, openaiModel)
	}
	return nil
}
