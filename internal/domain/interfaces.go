package domain

import "context"

// UnknownSource marks documents without a stable on-disk identity,
// e.g. rows loaded from a database. Such documents bypass hash
// deduplication entirely.
const UnknownSource = "unknown"

// Document is a single unit of loaded content before chunking.
type Document struct {
	Content  string
	Source   string
	Metadata map[string]string
}

// Chunk is a bounded, possibly overlapping piece of a document's text,
// the unit that gets embedded and retrieved.
type Chunk struct {
	ID       string
	Text     string
	Source   string
	Index    int
	Metadata map[string]string
}

// SearchResult is a retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Loader produces documents from one configured source. A loader failure
// is its own; aggregation over loaders must not abort on it.
type Loader interface {
	Name() string
	Load(ctx context.Context) ([]Document, error)
}

// Chunker splits a document's text into chunks suitable for embedding.
type Chunker interface {
	Split(doc Document) []Chunk
}

// Embedder converts free text into a fixed-length numeric vector.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorStore persists chunk vectors and answers nearest-neighbor queries.
// Search returns results ordered by descending similarity; fewer than topK
// stored vectors is not an error.
type VectorStore interface {
	Add(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Generator is a synchronous text generation capability.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Ledger records digests of already-ingested files.
type Ledger interface {
	Contains(digest string) bool
	Record(digest string) error
}
