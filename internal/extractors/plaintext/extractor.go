package plaintext

import (
	"strings"
	"unicode/utf8"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// Extractor handles plain text files. Form feeds split the content
// into pages; files without them yield a single page.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".txt", ".text", ".log"}
}

// Extract splits the file content into pages.
func (e *Extractor) Extract(_ string, data []byte) ([]domain.Page, error) {
	if !utf8.Valid(data) {
		return nil, domain.ErrInvalidInput
	}
	return SplitPages(string(data)), nil
}

// SplitPages splits text on form feed characters and numbers the
// resulting pages from 1. Empty pages are dropped.
func SplitPages(text string) []domain.Page {
	parts := strings.Split(text, "\f")
	pages := make([]domain.Page, 0, len(parts))
	number := 0
	for _, part := range parts {
		number++
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pages = append(pages, domain.Page{
			Number: number,
			Text:   part,
		})
	}
	return pages
}
