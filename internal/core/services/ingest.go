package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/chunker"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driving"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService feeds uploaded documents into a persona's knowledge
// base.
type IngestionService struct {
	personaStore driven.PersonaStore
	chunkStore   driven.ChunkStore
	extractors   driven.ExtractorRegistry
	embedder     driven.EmbeddingService
	indexes      driven.VectorIndexProvider
	splitter     *chunker.Chunker
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	personaStore driven.PersonaStore,
	chunkStore driven.ChunkStore,
	extractors driven.ExtractorRegistry,
	embedder driven.EmbeddingService,
	indexes driven.VectorIndexProvider,
	splitter *chunker.Chunker,
) *IngestionService {
	if splitter == nil {
		splitter = chunker.New()
	}
	return &IngestionService{
		personaStore: personaStore,
		chunkStore:   chunkStore,
		extractors:   extractors,
		embedder:     embedder,
		indexes:      indexes,
		splitter:     splitter,
	}
}

// Ingest splits the uploaded file into overlapping chunks, embeds them
// and stores them. The vector index snapshot is persisted inside the
// chunk store transaction, so a persist failure leaves no chunk rows
// behind.
func (s *IngestionService) Ingest(ctx context.Context, personaID, filename string, data []byte) (int, error) {
	if _, err := s.personaStore.Get(ctx, personaID); err != nil {
		return 0, err
	}

	// Unsupported extensions fail before anything is read or written.
	extractor, err := s.extractors.ForFilename(filename)
	if err != nil {
		return 0, err
	}

	pages, err := extractor.Extract(filename, data)
	if err != nil {
		return 0, fmt.Errorf("extracting %q: %w", filename, err)
	}
	if len(pages) == 0 {
		return 0, fmt.Errorf("%w: %q has no extractable text", domain.ErrInvalidInput, filename)
	}

	doc := &domain.Document{
		ID:        uuid.NewString(),
		PersonaID: personaID,
		Filename:  filename,
	}

	chunks := s.splitter.Split(pages)
	texts := make([]string, len(chunks))
	for i := range chunks {
		chunks[i].DocumentID = doc.ID
		chunks[i].PersonaID = personaID
		texts[i] = chunks[i].Content
	}

	// Embedding failure aborts before any store write.
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	index, err := s.indexes.Acquire(ctx, personaID)
	if err != nil {
		return 0, err
	}
	defer index.Release()

	err = s.chunkStore.SaveDocument(ctx, doc, chunks, func() error {
		for i := range chunks {
			if err := index.Add(chunks[i].ID, chunks[i].Embedding); err != nil {
				return err
			}
		}
		return index.Persist()
	})
	if err != nil {
		return 0, fmt.Errorf("storing %q: %w", filename, err)
	}

	logger.Info("Ingested %q for persona %s: %d pages, %d chunks", filename, personaID, len(pages), len(chunks))
	return len(chunks), nil
}

// ListDocuments returns the files ingested for a persona.
func (s *IngestionService) ListDocuments(ctx context.Context, personaID string) ([]domain.DocumentListing, error) {
	if _, err := s.personaStore.Get(ctx, personaID); err != nil {
		return nil, err
	}
	return s.chunkStore.ListDocuments(ctx, personaID)
}

// Detach removes a file's chunks from the chunk store. Stale vectors
// stay in the index until the next Reindex; searches may still surface
// them but hydration drops chunks that no longer exist.
func (s *IngestionService) Detach(ctx context.Context, personaID, filename string) error {
	if _, err := s.personaStore.Get(ctx, personaID); err != nil {
		return err
	}
	if err := s.chunkStore.DeleteByFilename(ctx, personaID, filename); err != nil {
		return err
	}
	logger.Info("Detached %q from persona %s; reindex to drop stale vectors", filename, personaID)
	return nil
}

// Reindex rebuilds the persona's vector index from the chunk store,
// re-embedding chunks whose stored vectors are missing. Returns the
// number of indexed vectors.
func (s *IngestionService) Reindex(ctx context.Context, personaID string) (int, error) {
	if _, err := s.personaStore.Get(ctx, personaID); err != nil {
		return 0, err
	}

	chunks, err := s.chunkStore.GetPersonaChunks(ctx, personaID)
	if err != nil {
		return 0, err
	}

	// Collect chunks whose vectors were never stored.
	var missing []int
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		texts := make([]string, len(missing))
		for j, i := range missing {
			texts[j] = chunks[i].Content
		}
		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("re-embedding %d chunks: %w", len(missing), err)
		}
		for j, i := range missing {
			chunks[i].Embedding = embeddings[j]
		}
	}

	index, err := s.indexes.Acquire(ctx, personaID)
	if err != nil {
		return 0, err
	}
	defer index.Release()

	index.Reset()
	for i := range chunks {
		if err := index.Add(chunks[i].ID, chunks[i].Embedding); err != nil {
			return 0, fmt.Errorf("indexing chunk %s: %w", chunks[i].ID, err)
		}
	}
	if err := index.Persist(); err != nil {
		return 0, fmt.Errorf("persisting index for persona %s: %w", personaID, err)
	}

	logger.Info("Reindexed persona %s: %d vectors", personaID, len(chunks))
	return len(chunks), nil
}
