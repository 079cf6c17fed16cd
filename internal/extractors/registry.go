package extractors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to their page extractors.
type Registry struct {
	byExtension map[string]driven.PageExtractor
}

// NewRegistry creates a registry covering the given extractors. Later
// registrations win when two extractors claim the same extension.
func NewRegistry(extractors ...driven.PageExtractor) *Registry {
	r := &Registry{
		byExtension: make(map[string]driven.PageExtractor),
	}
	for _, ex := range extractors {
		for _, ext := range ex.SupportedExtensions() {
			r.byExtension[strings.ToLower(ext)] = ex
		}
	}
	return r
}

// ForFilename returns the extractor for a filename's extension.
// Returns ErrUnsupportedType when no extractor claims the extension,
// so unsupported files are rejected before any persistence happens.
func (r *Registry) ForFilename(filename string) (driven.PageExtractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return nil, fmt.Errorf("%w: %q has no extension", domain.ErrUnsupportedType, filename)
	}
	ex, ok := r.byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, ext)
	}
	return ex, nil
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
