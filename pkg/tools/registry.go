package tools

import (
	"context"
	"fmt"

	"github.com/qui-ball/virtualGM/pkg/chat"
	"github.com/qui-ball/virtualGM/pkg/errs"
)

// Tool names.
const (
	ToolNarrate              = "narrate"
	ToolDeclare              = "declare"
	ToolRollDice             = "roll_dice"
	ToolSpendFear            = "spend_fear"
	ToolCreateAdversary      = "create_adversary"
	ToolRemoveAdversary      = "remove_adversary"
	ToolUpdateCharacterState = "update_character_state"
	ToolCreateCountdown      = "create_countdown"
	ToolUpdateCountdown      = "update_countdown"
	ToolRemoveCountdown      = "remove_countdown"
	ToolEndTurn              = "end_turn"
	ToolPlayerRollDice       = "player_roll_dice"
	ToolPlayerTakeDamage     = "player_take_damage"
	ToolPlayerProposeAction  = "player_propose_action"
)

// Registry is the tool surface for one Experience flow.
type Registry struct {
	flow  ExperienceFlow
	tools []*Tool
	index map[string]*Tool
}

// NewRegistry builds the tool surface. player_propose_action is only
// offered in the approve-first flow.
func NewRegistry(flow ExperienceFlow) (*Registry, error) {
	if _, err := ParseExperienceFlow(string(flow)); err != nil {
		return nil, err
	}

	builders := []func() (*Tool, error){
		narrateTool,
		declareTool,
		rollDiceTool,
		spendFearTool,
		createAdversaryTool,
		removeAdversaryTool,
		updateCharacterStateTool,
		createCountdownTool,
		updateCountdownTool,
		removeCountdownTool,
		endTurnTool,
		playerTakeDamageTool,
	}
	if flow == FlowApproveFirst {
		builders = append(builders, playerProposeActionTool, playerRollDiceTool)
	} else {
		builders = append(builders, playerRollDiceProvisionalTool)
	}

	r := &Registry{flow: flow, index: make(map[string]*Tool, len(builders))}
	for _, build := range builders {
		t, err := build()
		if err != nil {
			return nil, err
		}
		if _, dup := r.index[t.Name]; dup {
			return nil, fmt.Errorf("tool %s registered twice", t.Name)
		}
		r.tools = append(r.tools, t)
		r.index[t.Name] = t
	}
	return r, nil
}

// Flow returns the Experience flow the registry was built for.
func (r *Registry) Flow() ExperienceFlow { return r.flow }

// Specs returns the tool manifest in registration order.
func (r *Registry) Specs() []chat.ToolSpec {
	specs := make([]chat.ToolSpec, len(r.tools))
	for i, t := range r.tools {
		specs[i] = t.Spec()
	}
	return specs
}

// Lookup finds a tool by name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.index[name]
	return t, ok
}

// Dispatch runs one call. Recoverable engine errors become an immediate
// ERROR result for the model; any other error is returned.
func (r *Registry) Dispatch(ctx context.Context, env *Env, call chat.ToolCall) (Outcome, error) {
	t, ok := r.index[call.Name]
	if !ok {
		return Immediate(FormatError(errs.NotFound(call.Name, "unknown tool"))), nil
	}

	if t.Kind == KindDeferred {
		if err := t.check(env, call.Arguments); err != nil {
			return r.recover(call, err)
		}
		return Deferred(&Request{Call: call, tool: t}), nil
	}

	out, err := t.run(ctx, env, call.Arguments)
	if err != nil {
		return r.recover(call, err)
	}
	return out, nil
}

// Resolve completes a deferred call with the player and returns the
// result text for the model.
func (r *Registry) Resolve(ctx context.Context, env *Env, req *Request) (string, error) {
	if req == nil || req.tool == nil {
		return "", fmt.Errorf("resolve: not a deferred request")
	}
	out, err := req.tool.resolve(ctx, env, req.Call.Arguments)
	if err != nil {
		if errs.IsRecoverable(err) {
			return FormatError(err), nil
		}
		return "", fmt.Errorf("failed to resolve %s: %w", req.Call.Name, err)
	}
	return out, nil
}

func (r *Registry) recover(call chat.ToolCall, err error) (Outcome, error) {
	if errs.IsRecoverable(err) {
		return Immediate(FormatError(err)), nil
	}
	return Outcome{}, fmt.Errorf("tool %s failed: %w", call.Name, err)
}
