package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/qui-ball/virtualGM/pkg/chat"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"

	DefaultAnthropicTemperature = 0.7
	DefaultAnthropicMaxTokens   = 2048
)

// AnthropicService implements LLMService for Anthropic Claude
type AnthropicService struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
	logger     *slog.Logger
}

type AnthropicChatRequest struct {
	Model       string                  `json:"model"`
	MaxTokens   int                     `json:"max_tokens"`
	Temperature *float64                `json:"temperature,omitempty"`
	System      []AnthropicContentBlock `json:"system,omitempty"`
	Messages    []AnthropicMessage      `json:"messages"`
	Tools       []AnthropicTool         `json:"tools,omitempty"`
}

type AnthropicMessage struct {
	Role    string                  `json:"role"`
	Content []AnthropicContentBlock `json:"content"`
}

// AnthropicContentBlock covers text, tool_use and tool_result blocks.
type AnthropicContentBlock struct {
	Type         string                 `json:"type"`
	Text         string                 `json:"text,omitempty"`
	ID           string                 `json:"id,omitempty"`
	Name         string                 `json:"name,omitempty"`
	Input        json.RawMessage        `json:"input,omitempty"`
	ToolUseID    string                 `json:"tool_use_id,omitempty"`
	Content      string                 `json:"content,omitempty"`
	CacheControl *AnthropicCacheControl `json:"cache_control,omitempty"`
}

// AnthropicCacheControl marks a prompt caching breakpoint.
type AnthropicCacheControl struct {
	Type string `json:"type"`
}

var ephemeralCache = &AnthropicCacheControl{Type: "ephemeral"}

// withCacheBreakpoints marks the system prompt and the last block of the
// last user message as prompt caching breakpoints, two of the four the API
// allows. It returns the system blocks.
func withCacheBreakpoints(system string, messages []AnthropicMessage) []AnthropicContentBlock {
	var blocks []AnthropicContentBlock
	if system != "" {
		blocks = []AnthropicContentBlock{{Type: "text", Text: system, CacheControl: ephemeralCache}}
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != "user" {
			continue
		}
		if n := len(messages[i].Content); n > 0 {
			messages[i].Content[n-1].CacheControl = ephemeralCache
		}
		break
	}
	return blocks
}

type AnthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type AnthropicChatResponse struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []AnthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens              int `json:"input_tokens"`
		OutputTokens             int `json:"output_tokens"`
		CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
		CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnthropicService(apiKey, baseURL, modelName string, timeout time.Duration, logger *slog.Logger) *AnthropicService {
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	return &AnthropicService{
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (a *AnthropicService) InitModel(ctx context.Context, modelName string) error {
	if modelName != "" {
		a.modelName = modelName
	}
	return nil
}

// toAnthropicMessages converts the conversation into content blocks.
// Tool results travel in user messages, and consecutive messages with the
// same role are merged since the API requires alternating roles.
func toAnthropicMessages(messages []chat.ChatMessage) (string, []AnthropicMessage) {
	var systemParts []string
	var out []AnthropicMessage

	push := func(role string, blocks ...AnthropicContentBlock) {
		if len(blocks) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			return
		}
		out = append(out, AnthropicMessage{Role: role, Content: blocks})
	}

	for _, msg := range messages {
		switch msg.Role {
		case chat.ChatRoleSystem:
			systemParts = append(systemParts, msg.Content)
		case chat.ChatRoleTool:
			push("user", AnthropicContentBlock{
				Type:      "tool_result",
				ToolUseID: msg.ToolCallID,
				Content:   msg.Content,
			})
		case chat.ChatRoleAgent:
			var blocks []AnthropicContentBlock
			if strings.TrimSpace(msg.Content) != "" {
				blocks = append(blocks, AnthropicContentBlock{Type: "text", Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				input := tc.Arguments
				if len(input) == 0 {
					input = json.RawMessage("{}")
				}
				blocks = append(blocks, AnthropicContentBlock{
					Type:  "tool_use",
					ID:    tc.ID,
					Name:  tc.Name,
					Input: input,
				})
			}
			push("assistant", blocks...)
		default:
			if strings.TrimSpace(msg.Content) != "" {
				push("user", AnthropicContentBlock{Type: "text", Text: msg.Content})
			}
		}
	}

	return strings.Join(systemParts, "\n\n"), out
}

// chatCompletion makes a messages request to Anthropic
func (a *AnthropicService) chatCompletion(ctx context.Context, req *chat.ModelRequest) (*AnthropicChatResponse, error) {
	extraSystem, messages := toAnthropicMessages(req.Messages)
	system := req.System
	if extraSystem != "" {
		system = strings.TrimSpace(system + "\n\n" + extraSystem)
	}

	temperature := DefaultAnthropicTemperature
	anthropicReq := AnthropicChatRequest{
		Model:       a.modelName,
		MaxTokens:   DefaultAnthropicMaxTokens,
		Temperature: &temperature,
		System:      withCacheBreakpoints(system, messages),
		Messages:    messages,
	}
	for _, t := range req.Tools {
		anthropicReq.Tools = append(anthropicReq.Tools, AnthropicTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters,
		})
	}

	reqBody, err := json.Marshal(anthropicReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set required Anthropic headers
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var anthropicResp AnthropicChatResponse
	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if anthropicResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", anthropicResp.Error.Message)
	}
	return &anthropicResp, nil
}

func (a *AnthropicService) Chat(ctx context.Context, req *chat.ModelRequest) (*chat.ModelResponse, error) {
	resp, err := a.chatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	out := &chat.ModelResponse{}
	var text strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			out.ToolCalls = append(out.ToolCalls, chat.ToolCall{
				ID:        toolCallID(block.ID),
				Name:      block.Name,
				Arguments: toolArguments(string(block.Input)),
			})
		}
	}
	out.Content = text.String()

	if a.logger != nil {
		a.logger.Debug("Anthropic response",
			"model", resp.Model,
			"stop_reason", resp.StopReason,
			"input_tokens", resp.Usage.InputTokens,
			"output_tokens", resp.Usage.OutputTokens,
			"cache_read_tokens", resp.Usage.CacheReadInputTokens,
			"cache_write_tokens", resp.Usage.CacheCreationInputTokens,
			"tool_calls", len(out.ToolCalls))
	}
	return out, nil
}
