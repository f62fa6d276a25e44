package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder uses the OpenAI API for embeddings.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dim    int
}

// NewOpenAIEmbedder creates an OpenAI embedder. The API key is read from
// the named environment variable.
func NewOpenAIEmbedder(model, apiKeyEnv string) (*OpenAIEmbedder, error) {
	key := os.Getenv(apiKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", apiKeyEnv)
	}
	dim := 1536 // text-embedding-3-small
	if model == "text-embedding-3-large" {
		dim = 3072
	}
	return &OpenAIEmbedder{
		client: openai.NewClient(key),
		model:  model,
		dim:    dim,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (e *OpenAIEmbedder) Name() string { return "openai" }

// Dimension returns the embedding dimension for the configured model.
func (e *OpenAIEmbedder) Dimension() int { return e.dim }

// Embed generates an L2-normalized embedding for the text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if len(text) == 0 {
		return nil, errors.New("cannot embed empty text")
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	v32 := resp.Data[0].Embedding
	vec := make([]float64, len(v32))
	for i := range v32 {
		vec[i] = float64(v32[i])
	}
	l2normalize(vec)
	return vec, nil
}

// l2normalize normalizes a vector to unit length in place.
func l2normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := 1.0 / math.Sqrt(sum)
	for i := range v {
		v[i] *= inv
	}
}
