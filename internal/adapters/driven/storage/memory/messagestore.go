package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
)

// Ensure MessageStore implements the interface.
var _ driven.MessageStore = (*MessageStore)(nil)

// MessageStore is an in-memory implementation of driven.MessageStore.
type MessageStore struct {
	mu      sync.RWMutex
	nextSeq int64
	turns   map[string][]domain.Turn
}

// NewMessageStore creates a new in-memory message store.
func NewMessageStore() *MessageStore {
	return &MessageStore{
		turns: make(map[string][]domain.Turn),
	}
}

// Append adds one conversation turn to a persona's log.
func (s *MessageStore) Append(_ context.Context, t *domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	t.Seq = s.nextSeq
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	s.turns[t.PersonaID] = append(s.turns[t.PersonaID], *t)
	return nil
}

// List returns all turns for a persona, oldest first.
func (s *MessageStore) List(_ context.Context, personaID string) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Turn(nil), s.turns[personaID]...), nil
}
