package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// OllamaEmbedder talks to an Ollama (or OpenAI-compatible) embeddings
// endpoint. Both response shapes are accepted so the same client works
// against either API.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	client     *http.Client
	maxRetries int

	mu        sync.Mutex
	dimension int
}

// OllamaConfig configures the embeddings endpoint.
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewOllamaEmbedder creates the embeddings client.
func NewOllamaEmbedder(cfg OllamaConfig) *OllamaEmbedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "all-minilm"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &OllamaEmbedder{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		client:     &http.Client{Timeout: t},
		maxRetries: 5,
	}
}

// Name returns the identifier of this embedder implementation.
func (e *OllamaEmbedder) Name() string { return "ollama" }

// Dimension returns the vector length, known after the first Embed call.
func (e *OllamaEmbedder) Dimension() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimension
}

func (e *OllamaEmbedder) setDimension(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dimension == 0 {
		e.dimension = n
	}
}

// Embed returns an embedding vector for the given text, retrying transient
// failures with exponential backoff.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	type reqBody struct {
		Input  string `json:"input,omitempty"`
		Prompt string `json:"prompt,omitempty"`
		Model  string `json:"model"`
	}
	url := fmt.Sprintf("%s/api/embeddings", e.baseURL)
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		body := reqBody{Input: text, Prompt: text, Model: e.model}
		data, _ := json.Marshal(body)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt < e.maxRetries {
				time.Sleep(retryDelay(attempt))
				continue
			}
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					_ = resp.Body.Close()
					time.Sleep(time.Duration(secs) * time.Second)
				} else {
					_ = resp.Body.Close()
					time.Sleep(retryDelay(attempt))
				}
			} else {
				_ = resp.Body.Close()
				time.Sleep(retryDelay(attempt))
			}
			if attempt < e.maxRetries {
				continue
			}
			return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
		}

		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			if attempt < e.maxRetries {
				time.Sleep(retryDelay(attempt))
				continue
			}
			return nil, err
		}

		if vec := decodeEmbedding(payload); len(vec) > 0 {
			e.setDimension(len(vec))
			return vec, nil
		}
		if attempt < e.maxRetries {
			time.Sleep(retryDelay(attempt))
			continue
		}
	}
	return nil, errors.New("no embedding returned")
}

// decodeEmbedding accepts the OpenAI-compatible shape first, then the
// Ollama-native one.
func decodeEmbedding(payload []byte) []float64 {
	var openaiOut struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil {
		if len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
			return openaiOut.Data[0].Embedding
		}
	}
	var ollamaOut struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil {
		return ollamaOut.Embedding
	}
	return nil
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
