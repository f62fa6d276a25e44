package rag

import (
	"context"
	"fmt"
	"log/slog"

	"ragchat/internal/domain"
)

// Pipeline answers questions by retrieving relevant chunks and asking the
// language model to respond from them.
type Pipeline struct {
	embedder domain.Embedder
	store    domain.VectorStore
	gen      domain.Generator
	topK     int
	log      *slog.Logger
}

// NewPipeline wires a retrieval pipeline. topK <= 0 means the default of 3.
func NewPipeline(embedder domain.Embedder, store domain.VectorStore, gen domain.Generator, topK int, log *slog.Logger) *Pipeline {
	if topK <= 0 {
		topK = 3
	}
	return &Pipeline{
		embedder: embedder,
		store:    store,
		gen:      gen,
		topK:     topK,
		log:      log,
	}
}

// Answer runs the full retrieve-then-generate flow for one question. The
// returned string is always safe to show the user: on failure it carries an
// apology with the error detail, and the error is returned alongside so
// callers can also report a failure status.
func (p *Pipeline) Answer(ctx context.Context, question string) (string, error) {
	answer, err := p.answer(ctx, question)
	if err != nil {
		p.log.Error("answering failed", "err", err)
		return fmt.Sprintf("Sorry, an error occurred: %v", err), err
	}
	return answer, nil
}

func (p *Pipeline) answer(ctx context.Context, question string) (string, error) {
	vec, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embedding question: %w", err)
	}

	results, err := p.store.Search(ctx, vec, p.topK)
	if err != nil {
		return "", fmt.Errorf("searching store: %w", err)
	}
	p.log.Debug("retrieved context", "results", len(results))

	// An empty store yields an empty context; the model is still asked so
	// it can fall back to general knowledge or decline.
	chunks := make([]string, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk.Text
	}

	raw, err := p.gen.Generate(ctx, buildPrompt(chunks, question))
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return sanitize(raw), nil
}
