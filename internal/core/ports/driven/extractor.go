package driven

import "github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"

// PageExtractor turns an uploaded file into plain-text pages. Binary
// formats (PDF, DOCX) are treated as black boxes behind this port; the
// pipeline only sees the extracted pages.
type PageExtractor interface {
	// Extract returns the plain-text pages of the file content.
	Extract(filename string, data []byte) ([]domain.Page, error)

	// SupportedExtensions returns lowercase extensions (with dot) this
	// extractor handles, e.g. ".txt".
	SupportedExtensions() []string
}

// ExtractorRegistry resolves the extractor for an uploaded file.
type ExtractorRegistry interface {
	// ForFilename returns the extractor for the file's extension, or
	// domain.ErrUnsupportedType when no extractor handles it.
	ForFilename(filename string) (PageExtractor, error)
}
