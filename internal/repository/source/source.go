// Package source loads movie documents from files, SQL databases and Redis hashes.
// Every implementation returns documents in a stable order so corpus positions
// and ranking tie-breaks are reproducible across runs.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/plotsearch/internal/config"
	"github.com/kailas-cloud/plotsearch/internal/db"
	"github.com/kailas-cloud/plotsearch/internal/db/redis"
	"github.com/kailas-cloud/plotsearch/internal/domain"
)

// Column and field names shared by every tabular source.
const (
	FieldTitle = "title"
	FieldPlot  = "plot"
)

// ErrMissingColumn signals a source without a title or plot column.
var ErrMissingColumn = errors.New("missing required column")

// Source loads the full document set.
type Source interface {
	Load(ctx context.Context) ([]domain.Document, error)
	Close() error
}

// New builds the source selected by cfg.Source.
func New(cfg config.CorpusConfig, logger *zap.Logger) (Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Source {
	case config.SourceCSV:
		return NewCSV(cfg.Path), nil
	case config.SourceParquet:
		return NewParquet(cfg.Path), nil
	case config.SourceSQL:
		return NewSQL(cfg.DSN, cfg.Query), nil
	case config.SourceRedis:
		rc := redis.Config{Addrs: cfg.Redis.Addrs, Password: cfg.Redis.Password}
		return NewRedis(func() (HashStore, error) {
			s, err := redis.NewStore(rc)
			if err != nil {
				return nil, fmt.Errorf("connect redis: %w", err)
			}
			return s, nil
		}, cfg.Redis.KeyPattern, logger), nil
	default:
		return nil, fmt.Errorf("unknown corpus source %q", cfg.Source)
	}
}

// HashStore is the subset of db.Store the Redis source needs.
type HashStore interface {
	db.HashReader
	Close()
}

func document(title, plot string) domain.Document {
	return domain.Document{Title: strings.TrimSpace(title), Plot: plot}
}
