package source

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"github.com/kailas-cloud/plotsearch/internal/db"
	"github.com/kailas-cloud/plotsearch/internal/domain"
)

const redisFetchChunk = 500

// Redis reads documents from hashes whose keys match a pattern.
// Documents are ordered by natural key order, so movie:2 precedes movie:10.
// A hash without a title field is titled by its key.
type Redis struct {
	connect func() (HashStore, error)
	pattern string
	logger  *zap.Logger

	mu    sync.Mutex
	store HashStore
}

// NewRedis creates a Redis source. connect is called on the first Load and
// again after a failed connection attempt.
func NewRedis(connect func() (HashStore, error), pattern string, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{connect: connect, pattern: pattern, logger: logger}
}

// Load scans matching keys and fetches their hashes.
func (s *Redis) Load(ctx context.Context) ([]domain.Document, error) {
	store, err := s.conn()
	if err != nil {
		return nil, err
	}

	keys, err := store.Scan(ctx, s.pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.pattern, err)
	}
	keys = slices.Compact(sortNatural(keys))

	docs := make([]domain.Document, 0, len(keys))
	for offset := 0; offset < len(keys); offset += redisFetchChunk {
		chunk := keys[offset:min(offset+redisFetchChunk, len(keys))]

		hashes, err := store.HGetAllMulti(ctx, chunk)
		if errors.Is(err, db.ErrWrongType) {
			hashes, err = s.fetchEach(ctx, store, chunk)
		}
		if err != nil {
			return nil, fmt.Errorf("fetch documents: %w", err)
		}

		for i, h := range hashes {
			if len(h) == 0 {
				continue
			}
			title := h[FieldTitle]
			if strings.TrimSpace(title) == "" {
				title = chunk[i]
			}
			docs = append(docs, document(title, h[FieldPlot]))
		}
	}

	s.logger.Debug("Loaded documents from redis",
		zap.String("pattern", s.pattern),
		zap.Int("keys", len(keys)),
		zap.Int("documents", len(docs)),
	)
	return docs, nil
}

// Close releases the connection if one was opened.
func (s *Redis) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		s.store.Close()
		s.store = nil
	}
	return nil
}

func (s *Redis) conn() (HashStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		store, err := s.connect()
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	return s.store, nil
}

// fetchEach reads hashes one key at a time, skipping keys that hold other types.
func (s *Redis) fetchEach(ctx context.Context, store HashStore, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, key := range keys {
		h, err := store.HGetAll(ctx, key)
		switch {
		case err == nil:
			out[i] = h
		case errors.Is(err, db.ErrWrongType):
			s.logger.Warn("Skipping non-hash key", zap.String("key", key))
		case errors.Is(err, db.ErrKeyNotFound):
		default:
			return nil, err //nolint:wrapcheck // wrapped by caller
		}
	}
	return out, nil
}

// sortNatural orders keys comparing digit runs numerically.
func sortNatural(keys []string) []string {
	slices.SortStableFunc(keys, naturalCompare)
	return keys
}

func naturalCompare(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	default:
		return 0
	}
}
