package driving

import (
	"context"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
)

// IngestionService feeds uploaded documents into a persona's knowledge
// base: chunk store rows plus vector index entries.
type IngestionService interface {
	// Ingest splits the uploaded file into overlapping chunks, embeds
	// them and stores them. Returns the number of chunks created.
	Ingest(ctx context.Context, personaID, filename string, data []byte) (int, error)

	// ListDocuments returns the files ingested for a persona.
	ListDocuments(ctx context.Context, personaID string) ([]domain.DocumentListing, error)

	// Detach removes a file's chunks from the chunk store. The vector
	// index keeps stale entries until the next Reindex or Ingest
	// (lazy rebuild policy).
	Detach(ctx context.Context, personaID, filename string) error

	// Reindex rebuilds the persona's vector index from the chunk
	// store, re-embedding chunks whose vectors are missing.
	Reindex(ctx context.Context, personaID string) (int, error)
}
