package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ragchat/internal/domain"
)

// Store is a minimal REST client to Qdrant. It assumes cosine distance and
// creates the collection on first write.
type Store struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

// Config contains connection details for a Qdrant instance.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewStore creates a Qdrant-backed vector store client.
func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Store) Add(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	if len(chunks) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}
	points := make([]map[string]any, len(chunks))
	for i, ch := range chunks {
		points[i] = map[string]any{
			"id":     ch.ID,
			"vector": vectors[i],
			"payload": map[string]any{
				"source":   ch.Source,
				"index":    ch.Index,
				"text":     ch.Text,
				"metadata": ch.Metadata,
			},
		}
	}
	body := map[string]any{"points": points}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

func (s *Store) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 3
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64         `json:"score"`
			Payload json.RawMessage `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		var payload struct {
			Source   string            `json:"source"`
			Index    int               `json:"index"`
			Text     string            `json:"text"`
			Metadata map[string]string `json:"metadata"`
		}
		if err := json.Unmarshal(r.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decoding qdrant payload: %w", err)
		}
		results = append(results, domain.SearchResult{
			Chunk: domain.Chunk{
				Source:   payload.Source,
				Index:    payload.Index,
				Text:     payload.Text,
				Metadata: payload.Metadata,
			},
			Score: r.Score,
		})
	}
	return results, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/count", s.url, s.collection), map[string]any{"exact": true}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) ensureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid vector dimension")
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 if the collection already exists with the same
	// schema; anything else propagates.
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

func (s *Store) putJSON(ctx context.Context, url string, body any) error {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Store) postJSON(ctx context.Context, url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
