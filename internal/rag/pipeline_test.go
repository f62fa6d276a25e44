package rag

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/domain"
	"ragchat/internal/embedding"
	"ragchat/internal/vectorstore/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoGenerator returns its prompt so tests can inspect assembly.
type echoGenerator struct{}

func (echoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return prompt, nil
}

type fixedGenerator struct {
	answer string
	err    error
}

func (f fixedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f.answer, f.err
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips think block", "A<think>reasoning here</think>C", "AC"},
		{"strips multiline block", "A<think>line one\nline two</think>B", "AB"},
		{"multiple blocks", "<think>x</think>A<think>y</think>B", "AB"},
		{"no markers untouched", "plain answer", "plain answer"},
		{"unterminated left alone", "A<think>never closed", "A<think>never closed"},
		{"trims whitespace", "  <think>x</think> answer  ", "answer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitize(tt.in))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt([]string{"first chunk", "second chunk"}, "what is go?")
	assert.Contains(t, p, "first chunk\n\nsecond chunk")
	assert.Contains(t, p, "Question: what is go?")
	assert.NotContains(t, p, "{context}")
	assert.NotContains(t, p, "{question}")
}

func TestPipeline_AnswerUsesRetrievedContext(t *testing.T) {
	embedder := embedding.NewHashEmbedder(64)
	store := memory.NewStore()

	texts := []string{
		"the capital of france is paris",
		"go was designed at google",
		"sqlite stores data in a single file",
	}
	chunks := make([]domain.Chunk, len(texts))
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{ID: text, Text: text}
		vec, err := embedder.Embed(context.Background(), text)
		require.NoError(t, err)
		vectors[i] = vec
	}
	require.NoError(t, store.Add(context.Background(), chunks, vectors))

	p := NewPipeline(embedder, store, echoGenerator{}, 2, discardLogger())
	prompt, err := p.Answer(context.Background(), "what is the capital of france?")
	require.NoError(t, err)

	assert.Contains(t, prompt, "the capital of france is paris")
	assert.Contains(t, prompt, "Question: what is the capital of france?")

	// Only topK chunks make it into the context.
	count := 0
	for _, text := range texts {
		if strings.Contains(prompt, text) {
			count++
		}
	}
	assert.Equal(t, 2, count)

	// Best match leads the context.
	best := strings.Index(prompt, "the capital of france is paris")
	ctxStart := strings.Index(prompt, "Context:")
	require.Greater(t, best, ctxStart)
}

func TestPipeline_EmptyStoreStillGenerates(t *testing.T) {
	p := NewPipeline(embedding.NewHashEmbedder(64), memory.NewStore(),
		fixedGenerator{answer: "general knowledge answer"}, 3, discardLogger())

	answer, err := p.Answer(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "general knowledge answer", answer)
}

func TestPipeline_GeneratorFailureYieldsApology(t *testing.T) {
	p := NewPipeline(embedding.NewHashEmbedder(64), memory.NewStore(),
		fixedGenerator{err: errors.New("model down")}, 3, discardLogger())

	answer, err := p.Answer(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(answer, "Sorry, an error occurred:"))
	assert.Contains(t, answer, "model down")
}

func TestPipeline_SanitizesGeneratorOutput(t *testing.T) {
	p := NewPipeline(embedding.NewHashEmbedder(64), memory.NewStore(),
		fixedGenerator{answer: "<think>step 1\nstep 2</think>The answer is 42."}, 3, discardLogger())

	answer, err := p.Answer(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "The answer is 42.", answer)
}
