package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/plotsearch/internal/domain"
)

// Parquet reads documents from a parquet file with flat title and plot string columns.
// Other columns are ignored; rows keep file order.
type Parquet struct {
	path string
}

// NewParquet creates a parquet source.
func NewParquet(path string) *Parquet {
	return &Parquet{path: path}
}

// Close is a no-op.
func (s *Parquet) Close() error { return nil }

// Load reads every row group in order.
func (s *Parquet) Load(ctx context.Context) ([]domain.Document, error) {
	f, err := os.Open(filepath.Clean(s.path))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	titleCol, plotCol := resolveColumns(pf)
	if titleCol < 0 || plotCol < 0 {
		return nil, fmt.Errorf("%w: parquet schema needs %q and %q", ErrMissingColumn, FieldTitle, FieldPlot)
	}

	docs := make([]domain.Document, 0, int(pf.NumRows()))
	for _, rg := range pf.RowGroups() {
		if err := ctx.Err(); err != nil {
			return nil, err //nolint:wrapcheck // caller's own cancellation
		}
		docs, err = readRowGroup(rg, titleCol, plotCol, docs)
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// resolveColumns finds the leaf indexes of the title and plot columns.
func resolveColumns(pf *parquet.File) (title, plot int) {
	title, plot = -1, -1
	for i, path := range pf.Schema().Columns() {
		if len(path) != 1 {
			continue
		}
		switch path[0] {
		case FieldTitle:
			title = i
		case FieldPlot:
			plot = i
		}
	}
	return title, plot
}

func readRowGroup(rg parquet.RowGroup, titleCol, plotCol int, docs []domain.Document) ([]domain.Document, error) {
	rows := parquet.NewRowGroupReader(rg)
	defer func() { _ = rows.Close() }()

	buf := make([]parquet.Row, 256)
	for {
		n, readErr := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			var title, plot string
			for _, v := range row {
				if v.IsNull() {
					continue
				}
				switch v.Column() {
				case titleCol:
					title = v.String()
				case plotCol:
					plot = v.String()
				}
			}
			docs = append(docs, document(title, plot))
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return docs, nil
			}
			return nil, fmt.Errorf("read parquet rows: %w", readErr)
		}
	}
}
