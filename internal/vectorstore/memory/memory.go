package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"ragchat/internal/domain"
)

// Store is an in-memory vector store using brute-force cosine similarity.
// Reads may run concurrently; writes take the write lock.
type Store struct {
	mu      sync.RWMutex
	chunks  []domain.Chunk
	vectors [][]float64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store { return &Store{} }

func (s *Store) Add(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 3
	}
	results := make([]domain.SearchResult, 0, len(s.chunks))
	for i := range s.chunks {
		results = append(results, domain.SearchResult{
			Chunk: s.chunks[i],
			Score: Cosine(s.vectors[i], vector),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

func (s *Store) Close() error { return nil }

// Cosine computes the cosine similarity of two vectors. Mismatched or zero
// vectors score zero.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
