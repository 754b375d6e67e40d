package embeddings

import (
	"context"
	"errors"
	"fmt"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

const defaultCohereModel = "embed-english-v3.0"

// CohereProvider calls the Cohere Embed API (v2)
type CohereProvider struct {
	client *cohereclient.Client
	model  string
}

func NewCohereProvider(apiKey, model string) *CohereProvider {
	if model == "" {
		model = defaultCohereModel
	}
	return &CohereProvider{
		client: cohereclient.NewClient(cohereclient.WithToken(apiKey)),
		model:  model,
	}
}

func (c *CohereProvider) Name() string { return "cohere" }

func (c *CohereProvider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	resp, err := c.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Texts:          texts,
		Model:          c.model,
		InputType:      cohere.EmbedInputTypeSearchDocument,
		EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
	})
	if err != nil {
		return nil, fmt.Errorf("cohere embed: %w", err)
	}
	if resp == nil || resp.Embeddings == nil || resp.Embeddings.Float == nil {
		return nil, errors.New("cohere embed: no float embeddings in response")
	}

	vectors := resp.Embeddings.Float
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("cohere embed: got %d embeddings for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}
