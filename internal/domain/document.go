package domain

import (
	"fmt"
	"strings"
)

// Document is a single corpus record. Its identity is its position in the corpus.
type Document struct {
	Title string
	Plot  string
}

// Validate rejects documents whose plot carries no text to embed.
func (d Document) Validate() error {
	if strings.TrimSpace(d.Plot) == "" {
		return fmt.Errorf("%w: %q has an empty plot", ErrInvalidDocument, d.Title)
	}
	return nil
}
