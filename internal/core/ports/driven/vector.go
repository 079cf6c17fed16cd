package driven

import "context"

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Distance is the squared L2 distance to the query vector.
	// Smaller is more relevant.
	Distance float64
}

// IndexSearcher is the read-only view of one persona's vector index.
type IndexSearcher interface {
	// Search finds the k nearest neighbours to the query vector,
	// ordered by ascending distance, ties broken by insertion order.
	Search(query []float32, k int) []VectorHit

	// Len returns the number of indexed vectors.
	Len() int

	// IsEmpty reports whether the index holds no vectors.
	IsEmpty() bool

	// Release returns the handle. Every acquired handle must be
	// released; the handle must not be used afterwards.
	Release()
}

// PersonaIndex is an exclusive handle on one persona's vector index.
// The holder may mutate and persist; no other handle for the same
// persona can be open at the same time.
type PersonaIndex interface {
	IndexSearcher

	// Add inserts a vector for the given chunk ID.
	Add(chunkID string, embedding []float32) error

	// Reset discards all vectors, leaving an empty index.
	Reset()

	// Persist writes the full index snapshot to durable storage.
	// The write is atomic: a crash mid-persist leaves the previous
	// snapshot intact.
	Persist() error
}

// VectorIndexProvider hands out per-persona index handles. Handles are
// acquired at the start of a request and released at the end; there is
// no shared long-lived index object.
//
// Acquiring an exclusive handle serialises load→mutate→persist
// sequences per persona. Read handles may be held concurrently with
// other read handles but never overlap a persist.
type VectorIndexProvider interface {
	// Acquire opens the persona's index for mutation, loading the
	// persisted snapshot. A corrupt or missing snapshot yields a fresh
	// empty index, never an error.
	Acquire(ctx context.Context, personaID string) (PersonaIndex, error)

	// AcquireRead opens the persona's index for search only.
	AcquireRead(ctx context.Context, personaID string) (IndexSearcher, error)

	// Remove deletes the persona's snapshot from durable storage.
	// Used by persona cascade delete.
	Remove(personaID string) error
}
