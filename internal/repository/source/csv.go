package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/plotsearch/internal/domain"
)

// CSV reads documents from a CSV file whose header names a title and a plot column.
// Extra columns are ignored; rows keep file order.
type CSV struct {
	path string
}

// NewCSV creates a CSV source.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Load reads the whole file.
func (s *CSV) Load(ctx context.Context) ([]domain.Document, error) {
	f, err := os.Open(filepath.Clean(s.path))
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadCSV(ctx, f)
}

// Close is a no-op.
func (s *CSV) Close() error { return nil }

// ReadCSV parses documents from r.
func ReadCSV(ctx context.Context, r io.Reader) ([]domain.Document, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	titleCol, plotCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case FieldTitle:
			titleCol = i
		case FieldPlot:
			plotCol = i
		}
	}
	if titleCol < 0 || plotCol < 0 {
		return nil, fmt.Errorf("%w: csv header %v needs %q and %q", ErrMissingColumn, header, FieldTitle, FieldPlot)
	}

	var docs []domain.Document
	for {
		if err := ctx.Err(); err != nil {
			return nil, err //nolint:wrapcheck // caller's own cancellation
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := cr.FieldPos(0)
		if titleCol >= len(rec) || plotCol >= len(rec) {
			return nil, fmt.Errorf("csv line %d: expected at least %d fields, got %d",
				line, max(titleCol, plotCol)+1, len(rec))
		}
		docs = append(docs, document(rec[titleCol], rec[plotCol]))
	}

	return docs, nil
}
