package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// HashEmbedder is a deterministic, stateless feature-hashing vectorizer.
// Tokens are hashed into a fixed number of buckets and the bucket counts
// are L2-normalized. It needs no network and no corpus preparation, which
// makes it suitable for tests and offline runs; identical text always
// produces the identical vector.
type HashEmbedder struct {
	dim          int
	tokenPattern *regexp.Regexp
}

// NewHashEmbedder creates a hashing embedder with the given dimension.
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 256
	}
	return &HashEmbedder{
		dim:          dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *HashEmbedder) Name() string { return "hash" }

// Dimension returns the fixed vector length.
func (e *HashEmbedder) Dimension() int { return e.dim }

// Embed maps the text's tokens into hash buckets and returns the
// L2-normalized bucket counts.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dim)
	tokens := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	for _, tok := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dim]++
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}
