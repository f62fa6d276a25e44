package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// OllamaGenerator calls a local Ollama server's /api/generate endpoint.
// Requests pass through a rate limiter and a circuit breaker so a wedged
// model process fails fast instead of piling up timed-out requests.
type OllamaGenerator struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker
	limiter     *rate.Limiter
	log         *slog.Logger
}

// Options tunes generation; zero values fall back to sensible defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Stream      bool    `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// NewOllamaGenerator creates a generator for the given Ollama base URL
// (e.g. http://localhost:11434) and model name.
func NewOllamaGenerator(baseURL, model string, opts Options, log *slog.Logger) *OllamaGenerator {
	if opts.Temperature == 0 {
		opts.Temperature = 0.8
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 2000
	}
	if opts.Timeout == 0 {
		opts.Timeout = 120 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ollama-generate",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &OllamaGenerator{
		baseURL:     baseURL,
		model:       model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		client:      &http.Client{Timeout: opts.Timeout},
		breaker:     breaker,
		limiter:     rate.NewLimiter(rate.Limit(2), 4),
		log:         log,
	}
}

// Generate produces a completion for the prompt.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	result, err := g.breaker.Execute(func() (any, error) {
		return g.generate(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return "", errors.New("language model temporarily unavailable")
		}
		return "", err
	}
	return result.(string), nil
}

func (g *OllamaGenerator) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:       g.model,
		Prompt:      prompt,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("encoding generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, truncate(data, 200))
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama error: %s", out.Error)
	}

	g.log.Debug("generation complete", "model", g.model, "duration", time.Since(start), "chars", len(out.Response))
	return out.Response, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
