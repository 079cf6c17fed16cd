package driven

import "context"

// LLMService produces chat completions for the guarded generation
// engine.
//
// Implementations may include:
//   - Google Gemini (gemini-2.5-flash and friends)
//   - Ollama (local models)
type LLMService interface {
	// Chat conducts a multi-turn conversation and returns the raw model
	// output. When opts.Schema is set the implementation should steer
	// the model towards that JSON shape; the engine still parses and
	// validates the output regardless of backend support.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// Schema, when non-nil, asks the backend for structured JSON output.
	Schema *ResponseSchema
}

// ResponseSchema describes the required JSON output shape for a
// structured generation request.
type ResponseSchema struct {
	// Properties maps field names to primitive types ("string", "number").
	Properties map[string]string

	// Required lists fields the model must emit.
	Required []string

	// Nullable lists fields that may be null.
	Nullable []string
}
