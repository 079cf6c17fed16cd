package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driving"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// DefaultWindowExchanges is the number of prior exchanges included in
// each prompt.
const DefaultWindowExchanges = 5

// ChatService answers end-user queries against a persona's knowledge
// base and conversation history.
type ChatService struct {
	personaStore driven.PersonaStore
	messageStore driven.MessageStore
	indexes      driven.VectorIndexProvider
	assembler    *PromptAssembler
	engine       *GenerationEngine

	windowExchanges int

	// requireKnowledgeBase rejects queries against personas that never
	// received a document instead of answering from general knowledge.
	requireKnowledgeBase bool

	// logLocks serializes conversation log writes per persona so a
	// concurrent query cannot split an exchange.
	mu       sync.Mutex
	logLocks map[string]*sync.Mutex
}

// ChatConfig tunes the chat service.
type ChatConfig struct {
	// WindowExchanges is the memory window size in exchanges.
	WindowExchanges int

	// RequireKnowledgeBase turns on strict mode: personas without any
	// indexed documents reject queries with ErrNoKnowledgeBase.
	RequireKnowledgeBase bool
}

// NewChatService creates a new chat service.
func NewChatService(
	personaStore driven.PersonaStore,
	messageStore driven.MessageStore,
	indexes driven.VectorIndexProvider,
	assembler *PromptAssembler,
	engine *GenerationEngine,
	cfg ChatConfig,
) *ChatService {
	if cfg.WindowExchanges <= 0 {
		cfg.WindowExchanges = DefaultWindowExchanges
	}
	return &ChatService{
		personaStore:         personaStore,
		messageStore:         messageStore,
		indexes:              indexes,
		assembler:            assembler,
		engine:               engine,
		windowExchanges:      cfg.WindowExchanges,
		requireKnowledgeBase: cfg.RequireKnowledgeBase,
		logLocks:             make(map[string]*sync.Mutex),
	}
}

// Query runs the full pipeline: memory load, prompt assembly, guarded
// generation, then the synchronous conversation log update. The log is
// only written after a complete accepted or failed outcome; an
// upstream error leaves the conversation untouched.
func (s *ChatService) Query(ctx context.Context, personaID, query string) (*domain.GuardedAnswer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	persona, err := s.personaStore.Get(ctx, personaID)
	if err != nil {
		return nil, err
	}

	if s.requireKnowledgeBase {
		if err := s.checkKnowledgeBase(ctx, personaID); err != nil {
			return nil, err
		}
	}

	turns, err := s.messageStore.List(ctx, personaID)
	if err != nil {
		return nil, fmt.Errorf("loading history for persona %s: %w", personaID, err)
	}
	window := domain.WindowTurns(turns, s.windowExchanges)

	messages, err := s.assembler.Assemble(ctx, persona, query, window)
	if err != nil {
		return nil, err
	}

	answer, genErr := s.engine.Generate(ctx, messages)

	var guardErr *domain.GuardrailError
	switch {
	case genErr == nil:
		if err := s.appendExchange(ctx, personaID, query, answer.Response); err != nil {
			return nil, err
		}
		return answer, nil

	case errors.As(genErr, &guardErr):
		// The fallback becomes the assistant turn; the rejected output
		// stays out of the log.
		if err := s.appendExchange(ctx, personaID, query, guardErr.Fallback); err != nil {
			return nil, err
		}
		return nil, genErr

	default:
		return nil, genErr
	}
}

// History returns the persona's full conversation log, oldest first.
func (s *ChatService) History(ctx context.Context, personaID string) ([]domain.Turn, error) {
	if _, err := s.personaStore.Get(ctx, personaID); err != nil {
		return nil, err
	}
	return s.messageStore.List(ctx, personaID)
}

// logLock returns the write lock for a persona's conversation log.
func (s *ChatService) logLock(personaID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.logLocks[personaID]
	if !ok {
		lock = &sync.Mutex{}
		s.logLocks[personaID] = lock
	}
	return lock
}

// appendExchange durably writes both turns of a completed exchange.
// The append is serialized per persona so the user turn and its
// answer stay adjacent in the log; the turns are visible to the next
// History before Query returns.
func (s *ChatService) appendExchange(ctx context.Context, personaID, query, response string) error {
	lock := s.logLock(personaID)
	lock.Lock()
	defer lock.Unlock()

	userTurn := &domain.Turn{
		PersonaID: personaID,
		Role:      domain.RoleUser,
		Content:   query,
	}
	if err := s.messageStore.Append(ctx, userTurn); err != nil {
		return fmt.Errorf("appending user turn: %w", err)
	}

	assistantTurn := &domain.Turn{
		PersonaID: personaID,
		Role:      domain.RoleAssistant,
		Content:   response,
	}
	if err := s.messageStore.Append(ctx, assistantTurn); err != nil {
		return fmt.Errorf("appending assistant turn: %w", err)
	}

	logger.Debug("Appended exchange for persona %s (seq %d, %d)", personaID, userTurn.Seq, assistantTurn.Seq)
	return nil
}

// checkKnowledgeBase enforces strict mode: the persona must have at
// least one indexed vector.
func (s *ChatService) checkKnowledgeBase(ctx context.Context, personaID string) error {
	index, err := s.indexes.AcquireRead(ctx, personaID)
	if err != nil {
		return err
	}
	defer index.Release()

	if index.IsEmpty() {
		return fmt.Errorf("%w: persona %s has no ingested documents", domain.ErrNoKnowledgeBase, personaID)
	}
	return nil
}
