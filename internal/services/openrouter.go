package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/qui-ball/virtualGM/pkg/chat"
)

const DefaultOpenRouterTemperature = 0.7

// OpenRouterService implements LLMService over the OpenAI-compatible
// chat completions API, with function tools.
type OpenRouterService struct {
	client    *openai.Client
	modelName string
	logger    *slog.Logger
}

func NewOpenRouterService(apiKey, baseURL, modelName string, timeout time.Duration, logger *slog.Logger) *OpenRouterService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenRouterService{
		client:    openai.NewClientWithConfig(cfg),
		modelName: modelName,
		logger:    logger,
	}
}

func (o *OpenRouterService) InitModel(ctx context.Context, modelName string) error {
	if modelName != "" {
		o.modelName = modelName
	}
	return nil
}

func (o *OpenRouterService) Chat(ctx context.Context, req *chat.ModelRequest) (*chat.ModelResponse, error) {
	resp, err := o.client.CreateChatCompletion(ctx, o.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("openrouter chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("received empty response from API")
	}

	msg := resp.Choices[0].Message
	out := &chat.ModelResponse{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, chat.ToolCall{
			ID:        toolCallID(tc.ID),
			Name:      tc.Function.Name,
			Arguments: toolArguments(tc.Function.Arguments),
		})
	}

	if o.logger != nil {
		o.logger.Debug("OpenRouter response",
			"model", resp.Model,
			"finish_reason", resp.Choices[0].FinishReason,
			"prompt_tokens", resp.Usage.PromptTokens,
			"completion_tokens", resp.Usage.CompletionTokens,
			"tool_calls", len(out.ToolCalls))
	}
	return out, nil
}

func (o *OpenRouterService) buildRequest(req *chat.ModelRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, toOpenAIMessage(m))
	}

	tools := make([]openai.Tool, 0, len(req.Tools))
	for _, t := range req.Tools {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	return openai.ChatCompletionRequest{
		Model:       o.modelName,
		Messages:    messages,
		Tools:       tools,
		Temperature: DefaultOpenRouterTemperature,
	}
}

func toOpenAIMessage(m chat.ChatMessage) openai.ChatCompletionMessage {
	switch m.Role {
	case chat.ChatRoleTool:
		return openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
	case chat.ChatRoleAgent:
		out := openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: m.Content,
		}
		for _, tc := range m.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}
		return out
	default:
		return openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
}
