package chat

import (
	"encoding/json"
	"slices"
)

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // GM model
	ChatRoleSystem = "system"    // Instructions and game state
	ChatRoleTool   = "tool"      // Tool results
)

// ChatMessage is a single provider-neutral message in the conversation.
// Assistant messages may carry tool calls; tool messages answer one call
// by ToolCallID.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolSpec describes a callable tool. Parameters is a JSON Schema object.
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ModelRequest is everything sent to the narrative model for one call.
type ModelRequest struct {
	System   string        `json:"system"`
	Messages []ChatMessage `json:"messages"`
	Tools    []ToolSpec    `json:"tools,omitempty"`
}

// ModelResponse is one model reply: free text, ordered tool calls, or both.
type ModelResponse struct {
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// AssistantMessage converts a response into the history entry that
// records it.
func (r *ModelResponse) AssistantMessage() ChatMessage {
	return ChatMessage{
		Role:      ChatRoleAgent,
		Content:   r.Content,
		ToolCalls: slices.Clone(r.ToolCalls),
	}
}

// UserMessage builds a player message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: ChatRoleUser, Content: content}
}

// ToolResultMessage builds the answer to one tool call.
func ToolResultMessage(call ToolCall, content string) ChatMessage {
	return ChatMessage{
		Role:       ChatRoleTool,
		Content:    content,
		ToolCallID: call.ID,
		Name:       call.Name,
	}
}
