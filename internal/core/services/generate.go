package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/guardrails"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/logger"
)

// Generation states, logged as each query moves through the engine.
const (
	statePending    = "PENDING"
	stateGenerating = "GENERATING"
	stateValidating = "VALIDATING"
	stateAccepted   = "ACCEPTED"
	stateRetry      = "RETRY"
	stateFailed     = "FAILED"
)

// Default engine tuning.
const (
	DefaultMaxReasks        = 2
	DefaultTemperature      = 0.7
	DefaultAttemptTimeout   = 60 * time.Second
	DefaultTransportRetries = 2
	defaultBackoff          = 500 * time.Millisecond
)

// EngineConfig tunes the generation engine. Zero values fall back to
// the defaults.
type EngineConfig struct {
	// MaxReasks is the guardrail re-ask budget per query.
	MaxReasks int

	// Temperature is the sampling temperature passed to the model.
	Temperature float64

	// AttemptTimeout bounds each model call.
	AttemptTimeout time.Duration

	// TransportRetries is the retry count for upstream transport
	// failures, separate from the guardrail re-ask budget. Zero means
	// DefaultTransportRetries; a negative value disables retries.
	TransportRetries int

	// MaxWords caps accepted response length.
	MaxWords int
}

// GenerationEngine runs the guarded generation state machine: call the
// model against the structured output schema, validate, re-ask with
// corrective feedback, and classify irrecoverable failures into safe
// fallback messages.
type GenerationEngine struct {
	llm    driven.LLMService
	checks []guardrails.Check
	cfg    EngineConfig
}

// NewGenerationEngine creates a new generation engine with the default
// check sequence.
func NewGenerationEngine(llm driven.LLMService, cfg EngineConfig) *GenerationEngine {
	if cfg.MaxReasks <= 0 {
		cfg.MaxReasks = DefaultMaxReasks
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}
	switch {
	case cfg.TransportRetries == 0:
		cfg.TransportRetries = DefaultTransportRetries
	case cfg.TransportRetries < 0:
		cfg.TransportRetries = 0
	}
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = guardrails.DefaultMaxWords
	}
	return &GenerationEngine{
		llm:    llm,
		checks: guardrails.DefaultChecks(),
		cfg:    cfg,
	}
}

// answerSchema is the structured output contract sent to the model.
func answerSchema() *driven.ResponseSchema {
	return &driven.ResponseSchema{
		Properties: map[string]string{
			"response":        "string",
			"sentiment_score": "number",
			"safety_flag":     "string",
		},
		Required: []string{"response"},
		Nullable: []string{"sentiment_score", "safety_flag"},
	}
}

// Generate runs the state machine until an answer is accepted or the
// re-ask budget is exhausted. On exhaustion it returns a
// *domain.GuardrailError carrying the safe fallback; the rejected
// model output is logged for audit and never returned.
func (e *GenerationEngine) Generate(ctx context.Context, messages []driven.ChatMessage) (*domain.GuardedAnswer, error) {
	opts := driven.ChatOptions{
		Temperature: e.cfg.Temperature,
		Schema:      answerSchema(),
	}

	logger.Debug("Generation %s: %d messages, re-ask budget %d", statePending, len(messages), e.cfg.MaxReasks)

	var lastViolations []domain.GuardrailViolation
	conversation := append([]driven.ChatMessage(nil), messages...)

	for attempt := 0; attempt <= e.cfg.MaxReasks; attempt++ {
		logger.Debug("Generation %s: attempt %d/%d", stateGenerating, attempt+1, e.cfg.MaxReasks+1)
		raw, err := e.callModel(ctx, conversation, opts)
		if err != nil {
			return nil, err
		}

		logger.Debug("Generation %s: %d bytes of model output", stateValidating, len(raw))
		answer, violations := e.validate(raw)
		if len(violations) == 0 {
			logger.Debug("Generation %s after %d attempt(s)", stateAccepted, attempt+1)
			return answer, nil
		}

		lastViolations = violations
		logger.Audit("Generation %s attempt=%d checks=%s output=%q",
			stateRetry, attempt+1, violationChecks(violations), raw)

		// Feed the rejection back so the next attempt can correct it.
		conversation = append(conversation,
			driven.ChatMessage{Role: domain.RoleAssistant, Content: raw},
			driven.ChatMessage{Role: domain.RoleUser, Content: correctiveMessage(violations)},
		)
	}

	fallback := guardrails.Fallback(lastViolations[0].Check)
	logger.Audit("Generation %s: budget exhausted, checks=%s, fallback served",
		stateFailed, violationChecks(lastViolations))

	return nil, &domain.GuardrailError{
		Violations: lastViolations,
		Fallback:   fallback,
	}
}

// callModel invokes the LLM with a bounded timeout per attempt and a
// small retry-with-backoff loop for transport failures.
func (e *GenerationEngine) callModel(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var lastErr error
	for try := 0; try <= e.cfg.TransportRetries; try++ {
		if try > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(defaultBackoff << (try - 1)):
			}
			logger.Debug("Retrying model call (%d/%d)", try, e.cfg.TransportRetries)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
		raw, err := e.llm.Chat(attemptCtx, messages, opts)
		cancel()
		if err == nil {
			return raw, nil
		}
		lastErr = err

		// Only transport/upstream failures are worth retrying.
		if !errors.Is(err, domain.ErrUpstream) && !errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("model call failed after %d retries: %w", e.cfg.TransportRetries, lastErr)
}

// validate parses the raw model output against the answer schema and
// runs the ordered guardrail checks on the response text.
func (e *GenerationEngine) validate(raw string) (*domain.GuardedAnswer, []domain.GuardrailViolation) {
	var answer domain.GuardedAnswer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return nil, []domain.GuardrailViolation{{
			Check:  guardrails.CheckSchema,
			Reason: fmt.Sprintf("çıktı geçerli JSON değil: %v", err),
		}}
	}
	if strings.TrimSpace(answer.Response) == "" {
		return nil, []domain.GuardrailViolation{{
			Check:  guardrails.CheckSchema,
			Reason: "response alanı boş",
		}}
	}

	meta := guardrails.Metadata{MaxWords: e.cfg.MaxWords}
	var violations []domain.GuardrailViolation
	for _, check := range e.checks {
		if err := check.Validate(answer.Response, meta); err != nil {
			violations = append(violations, domain.GuardrailViolation{
				Check:  check.Name,
				Reason: err.Error(),
			})
		}
	}
	if len(violations) > 0 {
		return nil, violations
	}
	return &answer, nil
}

// correctiveMessage turns the failed checks into the re-ask feedback.
func correctiveMessage(violations []domain.GuardrailViolation) string {
	reasons := make([]string, len(violations))
	for i, v := range violations {
		reasons[i] = fmt.Sprintf("- %s: %s", v.Check, v.Reason)
	}
	return fmt.Sprintf(`Önceki yanıtın aşağıdaki kurallara takıldı:
%s

Aynı soruyu bu kurallara uyarak, aynı JSON şemasıyla yeniden yanıtla.`, strings.Join(reasons, "\n"))
}

func violationChecks(violations []domain.GuardrailViolation) string {
	names := make([]string, len(violations))
	for i, v := range violations {
		names[i] = v.Check
	}
	return strings.Join(names, ",")
}
