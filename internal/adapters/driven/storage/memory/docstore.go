package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// SaveDocument stores a document and its chunks, calling beforeCommit
// before making the rows visible. An error from beforeCommit discards
// the document entirely, matching the transactional SQLite behaviour.
func (s *ChunkStore) SaveDocument(_ context.Context, doc *domain.Document, chunks []domain.Chunk, beforeCommit func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if beforeCommit != nil {
		if err := beforeCommit(); err != nil {
			return err
		}
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	s.documents[doc.ID] = *doc
	s.chunks[doc.ID] = append([]domain.Chunk(nil), chunks...)
	return nil
}

// ListDocuments returns listings of ingested files for a persona.
func (s *ChunkStore) ListDocuments(_ context.Context, personaID string) ([]domain.DocumentListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.DocumentListing
	for id := range s.documents {
		doc := s.documents[id]
		if doc.PersonaID != personaID {
			continue
		}
		result = append(result, domain.DocumentListing{
			DocumentID: doc.ID,
			Filename:   doc.Filename,
			ChunkCount: len(s.chunks[doc.ID]),
			CreatedAt:  doc.CreatedAt,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Filename != result[j].Filename {
			return result[i].Filename < result[j].Filename
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *ChunkStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chunks := range s.chunks {
		for _, chunk := range chunks {
			if chunk.ID == id {
				return &chunk, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// GetPersonaChunks returns all chunks for a persona in ingestion order.
func (s *ChunkStore) GetPersonaChunks(_ context.Context, personaID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if doc.PersonaID == personaID {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})

	var result []domain.Chunk
	for _, doc := range docs {
		result = append(result, s.chunks[doc.ID]...)
	}
	return result, nil
}

// DeleteByFilename removes all documents a file contributed to a persona.
func (s *ChunkStore) DeleteByFilename(_ context.Context, personaID, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := false
	for id := range s.documents {
		doc := s.documents[id]
		if doc.PersonaID == personaID && doc.Filename == filename {
			delete(s.documents, id)
			delete(s.chunks, id)
			deleted = true
		}
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}
