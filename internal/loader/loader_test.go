package loader

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTextLoader_LoadsTxtFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("beta"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.md"), []byte("nope"), 0o644))

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "c.txt"), []byte("gamma"), 0o644))

	docs, err := NewTextLoader(dir, discardLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	contents := map[string]bool{}
	for _, d := range docs {
		contents[d.Content] = true
		assert.NotEqual(t, domain.UnknownSource, d.Source)
		assert.FileExists(t, d.Source)
	}
	assert.True(t, contents["alpha"])
	assert.True(t, contents["beta"])
	assert.True(t, contents["gamma"])
}

func TestTextLoader_EmptyDir(t *testing.T) {
	docs, err := NewTextLoader(t.TempDir(), discardLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestPDFLoader_SkipsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a pdf"), 0o644))

	docs, err := NewPDFLoader(dir, discardLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSQLLoader_EmptyDSNContributesNothing(t *testing.T) {
	l := NewSQLLoader("sqlite", "", "SELECT id, title, content FROM documents", discardLogger())
	docs, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSQLLoader_LoadsRowsAsUnknownSource(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "docs.db")
	seedDocumentsTable(t, dsn)

	l := NewSQLLoader("sqlite", dsn, "SELECT id, title, content FROM documents", discardLogger())
	docs, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	for _, d := range docs {
		assert.Equal(t, domain.UnknownSource, d.Source)
		assert.NotEmpty(t, d.Metadata["title"])
		assert.Contains(t, d.Content, "content: ")
	}
}

func seedDocumentsTable(t *testing.T, dsn string) {
	t.Helper()
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE documents (id INTEGER PRIMARY KEY, title TEXT, content TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO documents (title, content) VALUES
		('First', 'first row content'),
		('Second', 'second row content')`)
	require.NoError(t, err)
}

type failingLoader struct{}

func (failingLoader) Name() string { return "failing" }
func (failingLoader) Load(ctx context.Context) ([]domain.Document, error) {
	return nil, errors.New("source unreachable")
}

type staticLoader struct{ docs []domain.Document }

func (staticLoader) Name() string { return "static" }
func (s staticLoader) Load(ctx context.Context) ([]domain.Document, error) {
	return s.docs, nil
}

func TestAggregate_ToleratesFailingVariant(t *testing.T) {
	ok := staticLoader{docs: []domain.Document{{Content: "kept", Source: "kept.txt"}}}
	agg := NewAggregate(discardLogger(), failingLoader{}, ok)

	docs, err := agg.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "kept", docs[0].Content)
}

func TestAggregate_ConcatenatesInOrder(t *testing.T) {
	a := staticLoader{docs: []domain.Document{{Content: "one"}, {Content: "two"}}}
	b := staticLoader{docs: []domain.Document{{Content: "three"}}}

	docs, err := NewAggregate(discardLogger(), a, b).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "one", docs[0].Content)
	assert.Equal(t, "three", docs[2].Content)
}
