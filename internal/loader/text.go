package loader

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ragchat/internal/domain"
)

// TextLoader walks a directory tree and loads every plain-text file.
// A single unreadable file is logged and skipped.
type TextLoader struct {
	dir string
	log *slog.Logger
}

// NewTextLoader creates a loader over the given directory.
func NewTextLoader(dir string, log *slog.Logger) *TextLoader {
	return &TextLoader{dir: dir, log: log}
}

// Name identifies the text loader.
func (l *TextLoader) Name() string { return "text" }

// Load reads every *.txt file under the directory. The document source is
// the file path, which gives it a stable dedup identity.
func (l *TextLoader) Load(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".txt") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			l.log.Warn("skipping unreadable text file", "path", path, "err", err)
			return nil
		}
		docs = append(docs, domain.Document{
			Content: string(data),
			Source:  path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
