package chunker

import (
	"strings"

	"github.com/google/uuid"

	"ragchat/internal/domain"
)

// RecursiveChunker splits text into overlapping windows, preferring cuts on
// natural boundaries: paragraph first, then line, word, and finally hard
// character cuts when nothing else fits.
type RecursiveChunker struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewRecursiveChunker creates a chunker producing chunks of at most
// chunkSize characters where adjacent chunks share roughly overlap
// trailing characters. overlap must stay below chunkSize.
func NewRecursiveChunker(chunkSize, overlap int) *RecursiveChunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &RecursiveChunker{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: []string{"\n\n", "\n", " ", ""},
	}
}

// Split chunks the document's content. Empty content yields no chunks;
// content shorter than the chunk size yields exactly one. Each chunk
// inherits the document's metadata and is stamped with its source.
func (c *RecursiveChunker) Split(doc domain.Document) []domain.Chunk {
	pieces := c.splitText(doc.Content, c.separators)

	chunks := make([]domain.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		text := strings.TrimSpace(piece)
		if text == "" {
			continue
		}
		meta := make(map[string]string, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		if doc.Source != domain.UnknownSource {
			meta["source"] = doc.Source
		}
		chunks = append(chunks, domain.Chunk{
			ID:       uuid.NewString(),
			Text:     text,
			Source:   doc.Source,
			Index:    len(chunks),
			Metadata: meta,
		})
	}
	return chunks
}

// splitText recursively splits text on the best available separator and
// merges the resulting parts back into windows of at most chunkSize.
func (c *RecursiveChunker) splitText(text string, separators []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= c.chunkSize {
		return []string{text}
	}

	sep := ""
	var remaining []string
	for i, s := range separators {
		if s == "" {
			break
		}
		if strings.Contains(text, s) {
			sep = s
			remaining = separators[i+1:]
			break
		}
	}
	if sep == "" {
		return c.hardCut(text)
	}

	parts := strings.Split(text, sep)

	var out []string
	var pending []string
	flush := func() {
		if len(pending) > 0 {
			out = append(out, c.merge(pending, sep)...)
			pending = nil
		}
	}
	for _, part := range parts {
		if len(part) <= c.chunkSize {
			pending = append(pending, part)
			continue
		}
		// Oversized part: emit what we have, then recurse with finer
		// separators.
		flush()
		out = append(out, c.splitText(part, remaining)...)
	}
	flush()
	return out
}

// merge greedily joins parts into windows bounded by chunkSize, carrying
// trailing parts within the overlap budget into the next window.
func (c *RecursiveChunker) merge(parts []string, sep string) []string {
	var out []string
	var window []string
	windowLen := 0

	for _, part := range parts {
		add := len(part)
		if len(window) > 0 {
			add += len(sep)
		}
		if windowLen+add > c.chunkSize && len(window) > 0 {
			out = append(out, strings.Join(window, sep))
			// Shrink the carry-over until it is within the overlap AND the
			// incoming part still fits next to it.
			for len(window) > 0 && (windowLen > c.overlap || windowLen+len(sep)+len(part) > c.chunkSize) {
				windowLen -= len(window[0])
				if len(window) > 1 {
					windowLen -= len(sep)
				}
				window = window[1:]
			}
			add = len(part)
			if len(window) > 0 {
				add += len(sep)
			}
		}
		window = append(window, part)
		windowLen += add
	}
	if len(window) > 0 {
		out = append(out, strings.Join(window, sep))
	}
	return out
}

// hardCut slices text into fixed windows stepping by chunkSize-overlap.
func (c *RecursiveChunker) hardCut(text string) []string {
	step := c.chunkSize - c.overlap
	if step <= 0 {
		step = c.chunkSize
	}
	var out []string
	for start := 0; start < len(text); start += step {
		end := start + c.chunkSize
		if end > len(text) {
			end = len(text)
		}
		out = append(out, text[start:end])
		if end == len(text) {
			break
		}
	}
	return out
}
