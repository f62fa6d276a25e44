package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"ragchat/internal/domain"
)

// ErrStoreMissing is returned by OpenExisting when the database file is
// absent. The serving process treats this as fatal at startup.
var ErrStoreMissing = errors.New("vector store database not found")

// Store is a durable vector store backed by a single SQLite file. Vectors
// are stored as little-endian float64 blobs; similarity ranking is
// brute-force cosine over all rows.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the store at path, creating the schema and any
// missing parent directories. Used by the ingestion process.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	return open(path)
}

// OpenExisting opens the store at path and fails with ErrStoreMissing when
// the file does not exist. The serving process must not start against an
// empty location; run ingestion first.
func OpenExisting(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (run ingestion first)", ErrStoreMissing, path)
		}
		return nil, fmt.Errorf("checking store path %s: %w", path, err)
	}
	return open(path)
}

func open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS chunks (
			id       TEXT PRIMARY KEY,
			source   TEXT NOT NULL,
			idx      INTEGER NOT NULL,
			text     TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			vector   BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating chunks table: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Add inserts chunk/vector pairs in one transaction.
func (s *Store) Add(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, source, idx, text, metadata, vector) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, ch := range chunks {
		meta, err := json.Marshal(ch.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for chunk %s: %w", ch.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, ch.ID, ch.Source, ch.Index, ch.Text, string(meta), encodeVector(vectors[i])); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", ch.ID, err)
		}
	}
	return tx.Commit()
}

// Search scans all stored vectors and returns the topK nearest by cosine
// similarity, best first. Fewer stored rows than topK returns them all.
func (s *Store) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 3
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, idx, text, metadata, vector FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var (
			ch   domain.Chunk
			meta string
			blob []byte
		)
		if err := rows.Scan(&ch.ID, &ch.Source, &ch.Index, &ch.Text, &meta, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		if err := json.Unmarshal([]byte(meta), &ch.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata for chunk %s: %w", ch.ID, err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding vector for chunk %s: %w", ch.ID, err)
		}
		results = append(results, domain.SearchResult{Chunk: ch, Score: cosine(vec, vector)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk rows: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

func encodeVector(vec []float64) []byte {
	buf := new(bytes.Buffer)
	for _, v := range vec {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		buf.Write(b[:])
	}
	return buf.Bytes()
}

func decodeVector(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, errors.New("malformed vector blob")
	}
	vec := make([]float64, len(blob)/8)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return vec, nil
}

func cosine(a, b []float64) float64 {
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
