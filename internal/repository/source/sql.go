package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/kailas-cloud/plotsearch/internal/domain"
)

// SQL reads documents by running a query that yields title and plot columns, in that order.
// PostgreSQL DSNs (postgres:// or postgresql://) use pgx; anything else is a SQLite path or URI.
type SQL struct {
	dsn   string
	query string
}

// NewSQL creates a SQL source.
func NewSQL(dsn, query string) *SQL {
	return &SQL{dsn: dsn, query: query}
}

// Close is a no-op; connections live only for the duration of Load.
func (s *SQL) Close() error { return nil }

// Load opens the database, runs the query and returns rows in result order.
func (s *SQL) Load(ctx context.Context) ([]domain.Document, error) {
	driver, dsn := driverFor(s.dsn)

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	defer func() { _ = conn.Close() }()

	rows, err := conn.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	if len(cols) != 2 {
		return nil, fmt.Errorf("%w: query must return (title, plot), got %v", ErrMissingColumn, cols)
	}

	var docs []domain.Document
	for rows.Next() {
		var title, plot sql.NullString
		if err := rows.Scan(&title, &plot); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, document(title.String, plot.String))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

func driverFor(dsn string) (driver, normalized string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx", dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://")
	default:
		return "sqlite", dsn
	}
}
