package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"ragchat/internal/domain"
)

// Pipeline brings the vector store up to date with the configured document
// set: load, dedup against the ledger, chunk, embed, store.
type Pipeline struct {
	loader   domain.Loader
	chunker  domain.Chunker
	embedder domain.Embedder
	store    domain.VectorStore
	ledger   domain.Ledger
	log      *slog.Logger
}

// Report summarizes one ingestion run.
type Report struct {
	Documents int
	Skipped   int
	Chunks    int
}

// NewPipeline wires an ingestion pipeline from its collaborators.
func NewPipeline(loader domain.Loader, chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, ledger domain.Ledger, log *slog.Logger) *Pipeline {
	return &Pipeline{
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		ledger:   ledger,
		log:      log,
	}
}

// Run executes one ingestion pass. Documents whose file digest is already in
// the ledger are skipped entirely. All new chunks are embedded and stored in
// a single batch; digests are recorded only after the store write succeeds,
// so a failed run records nothing and stays retryable.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	var report Report

	docs, err := p.loader.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("loading documents: %w", err)
	}
	report.Documents = len(docs)
	p.log.Info("documents loaded", "count", len(docs))

	var newChunks []domain.Chunk
	pending := make(map[string]struct{})

	for _, doc := range docs {
		if doc.Source != domain.UnknownSource {
			digest, err := HashFile(doc.Source)
			if err != nil {
				// Unreadable source file: ingest without dedup rather
				// than dropping the document.
				p.log.Warn("hashing failed, ingesting without dedup", "source", doc.Source, "err", err)
			} else {
				if p.ledger.Contains(digest) {
					p.log.Info("skipping already ingested file", "source", doc.Source)
					report.Skipped++
					continue
				}
				if _, seen := pending[digest]; seen {
					p.log.Info("skipping duplicate within run", "source", doc.Source)
					report.Skipped++
					continue
				}
				pending[digest] = struct{}{}
			}
		}

		newChunks = append(newChunks, p.chunker.Split(doc)...)
	}

	if len(newChunks) > 0 {
		vectors := make([][]float64, len(newChunks))
		for i, ch := range newChunks {
			vec, err := p.embedder.Embed(ctx, ch.Text)
			if err != nil {
				return report, fmt.Errorf("embedding chunk %d: %w", i, err)
			}
			vectors[i] = vec
		}
		if err := p.store.Add(ctx, newChunks, vectors); err != nil {
			return report, fmt.Errorf("storing %d chunks: %w", len(newChunks), err)
		}
	}
	report.Chunks = len(newChunks)

	// Record digests only now that the chunks are durably stored.
	for digest := range pending {
		if err := p.ledger.Record(digest); err != nil {
			return report, fmt.Errorf("recording digest: %w", err)
		}
	}

	p.log.Info("ingestion complete", "chunks", report.Chunks, "skipped", report.Skipped)
	return report, nil
}
