// Package gemini provides an LLM service adapter using the Google
// Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel             = "gemini-2.5-flash"
	DefaultRequestsPerMinute = 60
)

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key. Required.
	APIKey string

	// Model is the generative model to use (default: gemini-2.5-flash).
	Model string

	// RequestsPerMinute caps the generation request rate.
	RequestsPerMinute int
}

// LLMService provides chat completion using the Gemini API.
type LLMService struct {
	client    *genai.Client
	modelName string
	limiter   *rate.Limiter
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", domain.ErrInvalidInput)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &LLMService{
		client:    client,
		modelName: cfg.Model,
		limiter:   rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
	}, nil
}

// Chat conducts a multi-turn conversation and returns the model's
// reply. System messages become the system instruction; when a
// response schema is set the model is constrained to JSON output.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: no messages", domain.ErrInvalidInput)
	}

	model := s.client.GenerativeModel(s.modelName)
	if opts.Temperature > 0 {
		model.SetTemperature(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if opts.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = toGenaiSchema(opts.Schema)
	}

	// Fold system messages into the system instruction; the Gemini
	// chat API only accepts user and model roles in history.
	var systemParts []genai.Part
	var history []*genai.Content
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			systemParts = append(systemParts, genai.Text(msg.Content))
		case domain.RoleAssistant:
			history = append(history, &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})
		default:
			history = append(history, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})
		}
	}
	if len(systemParts) > 0 {
		model.SystemInstruction = &genai.Content{Parts: systemParts}
	}
	if len(history) == 0 {
		return "", fmt.Errorf("%w: no user messages", domain.ErrInvalidInput)
	}

	last := history[len(history)-1]
	session := model.StartChat()
	session.History = history[:len(history)-1]

	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", fmt.Errorf("%w: gemini chat: %v", domain.ErrUpstream, err)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned empty response", domain.ErrUpstream)
	}
	return text, nil
}

// ModelName returns the name of the generative model being used.
func (s *LLMService) ModelName() string {
	return s.modelName
}

// Close releases the underlying API client.
func (s *LLMService) Close() error {
	return s.client.Close()
}

// toGenaiSchema converts the port-level response schema into the
// Gemini schema format.
func toGenaiSchema(schema *driven.ResponseSchema) *genai.Schema {
	nullable := make(map[string]bool, len(schema.Nullable))
	for _, name := range schema.Nullable {
		nullable[name] = true
	}

	properties := make(map[string]*genai.Schema, len(schema.Properties))
	for name, typ := range schema.Properties {
		properties[name] = &genai.Schema{
			Type:     toGenaiType(typ),
			Nullable: nullable[name],
		}
	}

	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
		Required:   schema.Required,
	}
}

func toGenaiType(typ string) genai.Type {
	switch typ {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
