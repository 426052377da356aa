package prompts

import (
	"fmt"
	"strings"

	"github.com/qui-ball/virtualGM/pkg/chat"
	"github.com/qui-ball/virtualGM/pkg/state"
	"github.com/qui-ball/virtualGM/pkg/tools"
)

// Builder constructs the model request for one call using a fluent interface.
// It separates prompt building logic from game state management.
type Builder struct {
	gs      *state.GameState
	flow    tools.ExperienceFlow
	notes   string
	history []chat.ChatMessage
	tools   []chat.ToolSpec
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{flow: tools.FlowApproveFirst}
}

// WithGameState sets the state serialized into the system prompt.
func (b *Builder) WithGameState(gs *state.GameState) *Builder {
	b.gs = gs
	return b
}

// WithFlow selects the Experience flow instructions.
func (b *Builder) WithFlow(flow tools.ExperienceFlow) *Builder {
	b.flow = flow
	return b
}

// WithNotes sets the notes carried over from the previous turn.
func (b *Builder) WithNotes(notes string) *Builder {
	b.notes = notes
	return b
}

// WithHistory sets the conversation so far.
func (b *Builder) WithHistory(msgs []chat.ChatMessage) *Builder {
	b.history = msgs
	return b
}

// WithTools sets the tool manifest.
func (b *Builder) WithTools(specs []chat.ToolSpec) *Builder {
	b.tools = specs
	return b
}

// Build constructs the request.
func (b *Builder) Build() (*chat.ModelRequest, error) {
	if b.gs == nil {
		return nil, fmt.Errorf("gamestate is required")
	}
	if b.gs.PC == nil {
		return nil, fmt.Errorf("gamestate has no player character")
	}
	system, err := b.systemPrompt()
	if err != nil {
		return nil, fmt.Errorf("error building system prompt: %w", err)
	}
	return &chat.ModelRequest{
		System:   system,
		Messages: b.history,
		Tools:    b.tools,
	}, nil
}

func (b *Builder) systemPrompt() (string, error) {
	var sb strings.Builder

	flowPrompt := ApproveFirstFlowPrompt
	if b.flow == tools.FlowProvisional {
		flowPrompt = ProvisionalFlowPrompt
	}
	sb.WriteString(fmt.Sprintf(BaseSystemPrompt, flowPrompt, b.gs.PC.Name))
	sb.WriteString("\n\n" + CampaignPrimer)

	snapshot, err := b.gs.Snapshot()
	if err != nil {
		return "", err
	}
	sb.WriteString("\n\n" + GameStateHeader + "\n```json\n" + snapshot + "\n```")

	if notes := strings.TrimSpace(b.notes); notes != "" {
		sb.WriteString("\n\n" + NotesHeader + "\n" + notes)
	}
	return sb.String(), nil
}

// Opening returns the primed exchange that starts a session.
func Opening(pcName string) []chat.ChatMessage {
	return []chat.ChatMessage{
		chat.UserMessage(fmt.Sprintf(OpeningRequest, pcName)),
		{Role: chat.ChatRoleAgent, Content: OpeningScene},
	}
}
