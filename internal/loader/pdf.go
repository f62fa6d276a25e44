package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"ragchat/internal/domain"
)

// PDFLoader walks a directory tree and extracts text from every PDF.
// A corrupt or unreadable PDF is logged and skipped.
type PDFLoader struct {
	dir string
	log *slog.Logger
}

// NewPDFLoader creates a loader over the given directory.
func NewPDFLoader(dir string, log *slog.Logger) *PDFLoader {
	return &PDFLoader{dir: dir, log: log}
}

// Name identifies the PDF loader.
func (l *PDFLoader) Name() string { return "pdf" }

// Load extracts plain text from every *.pdf file under the directory.
// The document source is the file path.
func (l *PDFLoader) Load(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		text, err := extractText(path)
		if err != nil {
			l.log.Warn("skipping unreadable pdf", "path", path, "err", err)
			return nil
		}
		if strings.TrimSpace(text) == "" {
			l.log.Warn("pdf contains no extractable text", "path", path)
			return nil
		}
		docs = append(docs, domain.Document{
			Content: text,
			Source:  path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func extractText(path string) (text string, err error) {
	// The pdf library panics on some malformed files; keep that contained
	// to the single document.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf extraction panicked: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	r, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", fmt.Errorf("reading text from %s: %w", path, err)
	}
	return buf.String(), nil
}
