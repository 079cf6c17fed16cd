package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driving"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/logger"
)

// Ensure PersonaService implements the interface.
var _ driving.PersonaService = (*PersonaService)(nil)

// PersonaService manages persona lifecycles.
type PersonaService struct {
	personaStore driven.PersonaStore
	indexes      driven.VectorIndexProvider
}

// NewPersonaService creates a new persona service.
func NewPersonaService(
	personaStore driven.PersonaStore,
	indexes driven.VectorIndexProvider,
) *PersonaService {
	return &PersonaService{
		personaStore: personaStore,
		indexes:      indexes,
	}
}

// Create registers a new persona. The vector index stays absent until
// the first ingestion; a missing snapshot reads as an empty index.
func (s *PersonaService) Create(ctx context.Context, p domain.Persona) (*domain.Persona, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	if err := s.personaStore.Save(ctx, &p); err != nil {
		return nil, fmt.Errorf("creating persona %q: %w", p.Name, err)
	}

	logger.Info("Created persona %q (%s)", p.Name, p.ID)
	return &p, nil
}

// Get retrieves a persona by ID.
func (s *PersonaService) Get(ctx context.Context, id string) (*domain.Persona, error) {
	return s.personaStore.Get(ctx, id)
}

// List returns all personas ordered by name.
func (s *PersonaService) List(ctx context.Context) ([]domain.Persona, error) {
	return s.personaStore.List(ctx)
}

// Update modifies name, description or boundary text.
func (s *PersonaService) Update(ctx context.Context, p domain.Persona) (*domain.Persona, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.personaStore.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	existing.Name = p.Name
	existing.Description = p.Description
	existing.BoundaryText = p.BoundaryText

	if err := s.personaStore.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("updating persona %s: %w", p.ID, err)
	}
	return existing, nil
}

// Delete removes the persona. Documents, chunks and the message log
// cascade inside the store; the index snapshot is removed here.
func (s *PersonaService) Delete(ctx context.Context, id string) error {
	if err := s.personaStore.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.indexes.Remove(id); err != nil {
		// The persona row is already gone; an orphaned snapshot reads
		// as a fresh index if the ID is ever reused.
		logger.Warn("Failed to remove index snapshot for persona %s: %v", id, err)
	}

	logger.Info("Deleted persona %s", id)
	return nil
}
