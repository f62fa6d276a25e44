package loader

import (
	"context"
	"log/slog"

	"ragchat/internal/domain"
)

// Aggregate composes several loader variants into one. A failing variant
// contributes nothing but never aborts the whole load; the failure is
// logged and the remaining variants still run.
type Aggregate struct {
	loaders []domain.Loader
	log     *slog.Logger
}

// NewAggregate builds an aggregate over the given loaders.
func NewAggregate(log *slog.Logger, loaders ...domain.Loader) *Aggregate {
	return &Aggregate{loaders: loaders, log: log}
}

// Name identifies the aggregate loader.
func (a *Aggregate) Name() string { return "aggregate" }

// Load concatenates the documents of every variant.
func (a *Aggregate) Load(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	for _, l := range a.loaders {
		part, err := l.Load(ctx)
		if err != nil {
			a.log.Warn("loader failed, continuing", "loader", l.Name(), "err", err)
			continue
		}
		docs = append(docs, part...)
	}
	return docs, nil
}
