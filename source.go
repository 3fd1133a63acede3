package plotsearch

import (
	"context"
	"slices"

	"github.com/kailas-cloud/plotsearch/internal/domain"
	"github.com/kailas-cloud/plotsearch/internal/repository/source"
)

// Document is a single movie. Its identity is its position in the corpus.
type Document struct {
	Title string
	Plot  string
}

// Source loads the full corpus. It is called once per initialization attempt
// and must return documents in a stable order.
type Source interface {
	Load(ctx context.Context) ([]Document, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]Document, error)

// Load implements Source.
func (f SourceFunc) Load(ctx context.Context) ([]Document, error) { return f(ctx) }

// Documents returns a Source serving a fixed in-memory corpus.
func Documents(docs ...Document) Source {
	docs = slices.Clone(docs)
	return SourceFunc(func(context.Context) ([]Document, error) {
		return slices.Clone(docs), nil
	})
}

// CSVFile returns a Source reading a CSV file with title and plot columns.
func CSVFile(path string) Source {
	return repoSource{inner: source.NewCSV(path)}
}

// ParquetFile returns a Source reading title and plot columns of a Parquet file.
func ParquetFile(path string) Source {
	return repoSource{inner: source.NewParquet(path)}
}

// SQLQuery returns a Source running query against dsn. The query must select
// exactly two columns, title and plot. postgres:// DSNs use pgx; anything else
// opens a SQLite database.
func SQLQuery(dsn, query string) Source {
	return repoSource{inner: source.NewSQL(dsn, query)}
}

type repoSource struct {
	inner interface {
		Load(ctx context.Context) ([]domain.Document, error)
	}
}

func (s repoSource) Load(ctx context.Context) ([]Document, error) {
	docs, err := s.inner.Load(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by the source
	}
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = Document{Title: d.Title, Plot: d.Plot}
	}
	return out, nil
}

// sourceAdapter wraps public Source to satisfy the internal search source.
type sourceAdapter struct {
	inner Source
}

func (a sourceAdapter) Load(ctx context.Context) ([]domain.Document, error) {
	docs, err := a.inner.Load(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by the search service
	}
	out := make([]domain.Document, len(docs))
	for i, d := range docs {
		out[i] = domain.Document{Title: d.Title, Plot: d.Plot}
	}
	return out, nil
}
