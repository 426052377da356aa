package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/qui-ball/virtualGM/internal/config"
	"github.com/qui-ball/virtualGM/pkg/chat"
)

// LLMService defines the interface for interacting with the narrative model
type LLMService interface {
	// InitModel prepares the model on startup
	InitModel(ctx context.Context, modelName string) error

	// Chat sends the system prompt, conversation and tool surface and
	// returns the model's text and ordered tool calls
	Chat(ctx context.Context, req *chat.ModelRequest) (*chat.ModelResponse, error)
}

// NewLLMService builds the adapter for the configured provider.
func NewLLMService(cfg *config.Config, logger *slog.Logger) (LLMService, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenRouter:
		return NewOpenRouterService(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.ModelName, cfg.LLMTimeout, logger), nil
	case config.ProviderAnthropic:
		return NewAnthropicService(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, cfg.ModelName, cfg.LLMTimeout, logger), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

// toolArguments normalizes provider-supplied arguments into valid JSON.
// Malformed arguments are kept as a JSON string so the call still decodes
// to a validation error instead of corrupting the conversation.
func toolArguments(raw string) json.RawMessage {
	if raw == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	quoted, _ := json.Marshal(raw)
	return json.RawMessage(quoted)
}

// toolCallID returns the provider's call ID, or a fresh one when the
// provider left it empty. Tool results are matched to calls by this ID.
func toolCallID(id string) string {
	if id != "" {
		return id
	}
	return "call_" + uuid.NewString()
}
