package loader

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"ragchat/internal/domain"
)

// SQLLoader turns the rows of a query against a relational source into
// documents. Rows have no stable on-disk identity, so their documents
// carry the "unknown" source and bypass hash deduplication.
type SQLLoader struct {
	driver string
	dsn    string
	query  string
	log    *slog.Logger
}

// NewSQLLoader creates a loader for the given driver/DSN/query. An empty
// DSN is allowed and makes the loader contribute zero documents.
func NewSQLLoader(driver, dsn, query string, log *slog.Logger) *SQLLoader {
	return &SQLLoader{driver: driver, dsn: dsn, query: query, log: log}
}

// Name identifies the SQL loader.
func (l *SQLLoader) Name() string { return "sql" }

// Load runs the configured query and renders each row as one document:
// the content is "column: value" lines, the metadata holds the raw column
// values as strings.
func (l *SQLLoader) Load(ctx context.Context) ([]domain.Document, error) {
	if l.dsn == "" {
		return nil, nil
	}

	db, err := sql.Open(l.driver, l.dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, l.query)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var docs []domain.Document
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		var b strings.Builder
		meta := make(map[string]string, len(cols))
		for i, col := range cols {
			v := stringify(values[i])
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s: %s", col, v)
			meta[col] = v
		}
		docs = append(docs, domain.Document{
			Content:  b.String(),
			Source:   domain.UnknownSource,
			Metadata: meta,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	l.log.Debug("sql source loaded", "rows", len(docs))
	return docs, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
