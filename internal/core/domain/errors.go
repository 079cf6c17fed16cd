package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unsupported uploaded file type.
	// Ingestion fails fast with this error before any partial write.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrUpstream indicates an embedding or model call failed or timed
	// out after the retry budget was exhausted.
	ErrUpstream = errors.New("upstream service error")

	// ErrNoKnowledgeBase indicates a persona has never had a successful
	// ingestion. Only surfaced when the deployment requires a knowledge
	// base before answering; the default policy is to answer from
	// general knowledge instead.
	ErrNoKnowledgeBase = errors.New("no knowledge base yet")

	// ErrGuardrailFailure indicates generation exhausted its re-ask
	// budget without producing output that passes the content checks.
	ErrGuardrailFailure = errors.New("guardrail failure")

	// ErrReadOnly indicates a mutation was attempted through a
	// read-only vector index handle.
	ErrReadOnly = errors.New("index handle is read-only")
)

// GuardrailError carries the violations that exhausted the re-ask
// budget plus the user-safe fallback message to return instead of the
// rejected model output. It wraps ErrGuardrailFailure.
type GuardrailError struct {
	// Violations are the checks that failed on the final attempt.
	Violations []GuardrailViolation

	// Fallback is the pre-authored user-safe message.
	Fallback string
}

// Error implements the error interface.
func (e *GuardrailError) Error() string {
	if len(e.Violations) == 0 {
		return "guardrail failure"
	}
	return fmt.Sprintf("guardrail failure: %s (%s)", e.Violations[0].Check, e.Violations[0].Reason)
}

// Unwrap makes errors.Is(err, ErrGuardrailFailure) hold.
func (e *GuardrailError) Unwrap() error {
	return ErrGuardrailFailure
}
