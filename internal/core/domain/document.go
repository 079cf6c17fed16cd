package domain

import "time"

// Document represents one uploaded source file attached to a persona.
// The extracted text itself is not kept; only its chunks are.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// PersonaID links to the owning Persona.
	PersonaID string

	// Filename is the original upload name, used for listing and detach.
	Filename string

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Chunk is a bounded, overlap-preserving fragment of ingested document
// text, the unit of retrieval. Chunks are immutable once created.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// PersonaID links to the owning Persona. Denormalised so a persona's
	// whole retrieval corpus can be loaded without joins.
	PersonaID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Page is the page number of the source text the chunk starts on.
	Page int

	// Embedding is the vector representation for similarity search.
	Embedding []float32
}

// Page is one unit of extracted plain text from a source file.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the extracted plain text of the page.
	Text string
}

// DocumentListing summarises one ingested file for listing endpoints.
type DocumentListing struct {
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}
