// Package chunker provides fixed-size text chunking for ingested
// pages.
package chunker

import (
	"github.com/google/uuid"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Chunker splits page text into fixed-size overlapping windows.
// Windows never span page boundaries, so every chunk carries an exact
// page number for citations.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Split chunks all pages of a document. Positions number chunks
// consecutively across pages in reading order. Sizes are measured in
// runes so multi-byte text windows stay the intended length.
func (c *Chunker) Split(pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	position := 0

	for _, page := range pages {
		for _, window := range c.splitText(page.Text) {
			chunks = append(chunks, domain.Chunk{
				ID:       uuid.New().String(),
				Content:  window,
				Position: position,
				Page:     page.Number,
			})
			position++
		}
	}

	return chunks
}

// splitText splits text into windows of chunkSize runes, each sharing
// exactly overlap runes with its predecessor. A text no longer than
// one window yields a single chunk.
func (c *Chunker) splitText(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)
	step := c.chunkSize - c.overlap

	windows := make([]string, 0, total/step+1)
	start := 0
	for {
		end := start + c.chunkSize
		if end > total {
			end = total
		}
		windows = append(windows, string(runes[start:end]))
		if end == total {
			break
		}
		start += step
	}

	return windows
}
