package search

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/kailas-cloud/plotsearch/internal/domain"
)

// --- Mocks ---

type stubSource struct {
	docs  []domain.Document
	errs  []error // consumed one per call; nil entries succeed
	calls atomic.Int32

	started chan struct{} // closed on the first Load call when non-nil
	gate    chan struct{} // Load blocks until closed when non-nil
	once    sync.Once
}

func (s *stubSource) Load(ctx context.Context) ([]domain.Document, error) {
	n := int(s.calls.Add(1))
	if s.started != nil {
		s.once.Do(func() { close(s.started) })
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= len(s.errs) && s.errs[n-1] != nil {
		return nil, s.errs[n-1]
	}
	return s.docs, nil
}

// vocabEmbedder counts occurrences of each vocabulary word in the text.
type vocabEmbedder struct {
	vocab  []string
	tokens int
	err    error
	calls  atomic.Int32
}

func (e *vocabEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.calls.Add(1)
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	vec := make([]float32, len(e.vocab))
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		for i, v := range e.vocab {
			if w == v {
				vec[i]++
			}
		}
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: e.tokens}, nil
}

func movieVocab() *vocabEmbedder {
	return &vocabEmbedder{vocab: []string{
		"agent", "paris", "secret", "spy", "gardener", "roses", "seasons", "ship", "ocean", "robot",
	}}
}

func spyCorpus() []domain.Document {
	return []domain.Document{
		{Title: "Spy City", Plot: "A secret agent infiltrates Paris to stop a plot"},
		{Title: "Garden Tales", Plot: "A gardener tends roses through the seasons"},
	}
}

func largerCorpus() []domain.Document {
	return []domain.Document{
		{Title: "Spy City", Plot: "A secret agent infiltrates Paris to stop a plot"},
		{Title: "Garden Tales", Plot: "A gardener tends roses through the seasons"},
		{Title: "Deep Blue", Plot: "A ship is lost on the ocean"},
		{Title: "Tin Heart", Plot: "A robot learns to love"},
		{Title: "Paris Nights", Plot: "Paris after dark"},
	}
}
