// Package memory provides in-memory implementations of the storage
// ports, used primarily for testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
)

// Ensure PersonaStore implements the interface.
var _ driven.PersonaStore = (*PersonaStore)(nil)

// PersonaStore is an in-memory implementation of driven.PersonaStore.
type PersonaStore struct {
	mu       sync.RWMutex
	personas map[string]domain.Persona
}

// NewPersonaStore creates a new in-memory persona store.
func NewPersonaStore() *PersonaStore {
	return &PersonaStore{
		personas: make(map[string]domain.Persona),
	}
}

// Save stores a new persona.
func (s *PersonaStore) Save(_ context.Context, p *domain.Persona) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.personas {
		if existing.Name == p.Name {
			return domain.ErrAlreadyExists
		}
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.personas[p.ID] = *p
	return nil
}

// Get retrieves a persona by ID.
func (s *PersonaStore) Get(_ context.Context, id string) (*domain.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.personas[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// List returns all personas ordered by name.
func (s *PersonaStore) List(_ context.Context) ([]domain.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Persona, 0, len(s.personas))
	for id := range s.personas {
		result = append(result, s.personas[id])
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Update modifies an existing persona.
func (s *PersonaStore) Update(_ context.Context, p *domain.Persona) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.personas[p.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, existing := range s.personas {
		if id != p.ID && existing.Name == p.Name {
			return domain.ErrAlreadyExists
		}
	}
	p.UpdatedAt = time.Now().UTC()
	s.personas[p.ID] = *p
	return nil
}

// Delete removes a persona.
func (s *PersonaStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.personas[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.personas, id)
	return nil
}
