package driving

import (
	"context"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
)

// PersonaService manages persona lifecycles.
type PersonaService interface {
	// Create registers a new persona and its empty vector index.
	Create(ctx context.Context, p domain.Persona) (*domain.Persona, error)

	// Get retrieves a persona by ID.
	Get(ctx context.Context, id string) (*domain.Persona, error)

	// List returns all personas ordered by name.
	List(ctx context.Context) ([]domain.Persona, error)

	// Update modifies name, description or boundary text.
	Update(ctx context.Context, p domain.Persona) (*domain.Persona, error)

	// Delete removes the persona and cascades to its chunks, message
	// log and vector index snapshot.
	Delete(ctx context.Context, id string) error
}
