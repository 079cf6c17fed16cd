package services

import (
	"context"
	"fmt"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
)

// mockEmbedder returns scripted vectors by text, falling back to a
// deterministic vector derived from the text.
type mockEmbedder struct {
	vectors map[string][]float32
	dim     int
	err     error
	calls   int
}

var _ driven.EmbeddingService = (*mockEmbedder)(nil)

func newMockEmbedder(dim int) *mockEmbedder {
	return &mockEmbedder{
		vectors: make(map[string][]float32),
		dim:     dim,
	}
}

func (m *mockEmbedder) set(text string, vec []float32) {
	m.vectors[text] = vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	vec := make([]float32, m.dim)
	for i, b := range []byte(text) {
		vec[i%m.dim] += float32(b) / 255
	}
	return vec, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int   { return m.dim }
func (m *mockEmbedder) ModelName() string { return "mock-embedder" }
func (m *mockEmbedder) Close() error      { return nil }

// mockLLM replays a scripted sequence of responses. Each call shifts
// the queue; errors are returned in place of their response.
type mockLLM struct {
	responses []string
	errs      []error
	calls     [][]driven.ChatMessage
}

var _ driven.LLMService = (*mockLLM)(nil)

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	call := len(m.calls)
	m.calls = append(m.calls, append([]driven.ChatMessage(nil), messages...))
	if call < len(m.errs) && m.errs[call] != nil {
		return "", m.errs[call]
	}
	if call >= len(m.responses) {
		return "", fmt.Errorf("%w: mock exhausted after %d calls", domain.ErrUpstream, call)
	}
	return m.responses[call], nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Close() error      { return nil }

// goodAnswer wraps text in the structured output schema.
func goodAnswer(text string) string {
	return fmt.Sprintf(`{"response": %q, "sentiment_score": 0.5, "safety_flag": null}`, text)
}
