package driven

import (
	"context"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
)

// PersonaStore persists persona records. Backed by SQLite.
type PersonaStore interface {
	// Save stores a new persona. A duplicate name yields
	// domain.ErrAlreadyExists.
	Save(ctx context.Context, p *domain.Persona) error

	// Get retrieves a persona by ID.
	Get(ctx context.Context, id string) (*domain.Persona, error)

	// List returns all personas ordered by name.
	List(ctx context.Context) ([]domain.Persona, error)

	// Update modifies an existing persona.
	Update(ctx context.Context, p *domain.Persona) error

	// Delete removes a persona. Owned documents, chunks and messages
	// are removed in the same transaction via cascade.
	Delete(ctx context.Context, id string) error
}

// ChunkStore persists documents and their chunks. Backed by SQLite.
type ChunkStore interface {
	// SaveDocument stores a document row together with its chunks in
	// one transaction. beforeCommit, when non-nil, runs after all rows
	// are written and before the transaction commits; returning an
	// error aborts the whole transaction. The ingestion pipeline uses
	// it to persist the vector index inside the store transaction so a
	// chunk row never outlives a failed index update.
	SaveDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk, beforeCommit func() error) error

	// ListDocuments returns listings of all files ingested for a persona.
	ListDocuments(ctx context.Context, personaID string) ([]domain.DocumentListing, error)

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetPersonaChunks returns all chunks for a persona ordered by
	// document, then position. Used for index rebuilds.
	GetPersonaChunks(ctx context.Context, personaID string) ([]domain.Chunk, error)

	// DeleteByFilename removes all documents (and chunks) a file
	// contributed to a persona. domain.ErrNotFound when the persona
	// has no such file.
	DeleteByFilename(ctx context.Context, personaID, filename string) error
}

// MessageStore persists the append-only conversation log.
type MessageStore interface {
	// Append durably writes one turn. The turn is visible to the next
	// List before Append returns.
	Append(ctx context.Context, t *domain.Turn) error

	// List returns all turns for a persona, oldest first.
	List(ctx context.Context, personaID string) ([]domain.Turn, error)
}
