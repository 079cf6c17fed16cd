package driving

import (
	"context"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
)

// ChatService answers end-user queries against a persona's knowledge
// base and conversation history.
type ChatService interface {
	// Query runs the full pipeline: context retrieval, prompt
	// assembly, guarded generation, and conversation log update.
	// A *domain.GuardrailError is returned when generation exhausted
	// its re-ask budget; the caller must surface err.Fallback, never
	// the rejected model output.
	Query(ctx context.Context, personaID, query string) (*domain.GuardedAnswer, error)

	// History returns the persona's full conversation log, oldest
	// first.
	History(ctx context.Context, personaID string) ([]domain.Turn, error)
}
