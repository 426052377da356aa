// Package turn runs the GM turn cycle: model calls, ordered tool dispatch,
// suspension for deferred player decisions and resumption.
package turn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qui-ball/virtualGM/pkg/chat"
	"github.com/qui-ball/virtualGM/pkg/prompts"
	"github.com/qui-ball/virtualGM/pkg/tools"
)

// ErrEmptyUtterance is returned for a blank player line.
var ErrEmptyUtterance = errors.New("player utterance is empty")

// Model is the narrative model boundary.
type Model interface {
	Chat(ctx context.Context, req *chat.ModelRequest) (*chat.ModelResponse, error)
}

// EventSink receives turn lifecycle events. Publishing failures are logged
// and never fail a turn.
type EventSink interface {
	PublishPhaseChanged(ctx context.Context, gameID uuid.UUID, from, to string) error
	PublishToolDispatched(ctx context.Context, gameID uuid.UUID, tool, callID, kind string) error
	PublishTurnCompleted(ctx context.Context, gameID uuid.UUID, rounds int) error
	PublishTurnFailed(ctx context.Context, gameID uuid.UUID, errMsg string) error
}

// Result summarizes a completed player turn.
type Result struct {
	// Rounds is the number of model calls the turn took.
	Rounds int
	// ToolCalls is the number of tool calls the model emitted.
	ToolCalls int
	// Deferred is the number of deferred calls resolved with the player.
	Deferred int
	// Notes are the continuity notes from end_turn, if any.
	Notes string
}

// pendingCall is a deferred request and the position of its call in the
// model's batch. Provider call IDs are not trusted to be unique.
type pendingCall struct {
	index int
	req   *tools.Request
}

// Orchestrator owns the conversation and drives the game state through
// tool calls. It is single-threaded: one turn at a time.
type Orchestrator struct {
	model    Model
	registry *tools.Registry
	env      *tools.Env
	history  *chat.History
	logger   *slog.Logger
	events   EventSink

	phase   Phase
	notes   string
	pending []pendingCall
}

// New creates an orchestrator over an existing conversation.
func New(model Model, registry *tools.Registry, env *tools.Env, history *chat.History, logger *slog.Logger) *Orchestrator {
	if history == nil {
		history = chat.NewHistory()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		model:    model,
		registry: registry,
		env:      env,
		history:  history,
		logger:   logger,
		phase:    PhaseAwaitingPlayerInput,
	}
}

// WithEvents sets the event sink for turn lifecycle events
// Returns the Orchestrator for method chaining
func (o *Orchestrator) WithEvents(sink EventSink) *Orchestrator {
	o.events = sink
	return o
}

// Phase returns the current phase.
func (o *Orchestrator) Phase() Phase { return o.phase }

// Notes returns the continuity notes carried into the next turn.
func (o *Orchestrator) Notes() string { return o.notes }

// History returns the conversation.
func (o *Orchestrator) History() *chat.History { return o.history }

// PlayerTurn runs one full turn for a line of player text. It returns only
// once every deferred call has been resolved and the model has ended its
// turn. On a model or transport failure the game state, conversation and
// notes are restored to what they were before the turn.
func (o *Orchestrator) PlayerTurn(ctx context.Context, utterance string) (*Result, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, ErrEmptyUtterance
	}

	snapshot := o.env.Game.Clone()
	mark := o.history.Len()
	notes := o.notes

	o.history.Append(chat.UserMessage(utterance))
	res, err := o.run(ctx)
	if err != nil {
		o.env.Game.Restore(snapshot)
		o.history.Truncate(mark)
		o.notes = notes
		o.pending = nil
		o.logger.Error("Turn failed, state restored", "error", err, "game_id", o.env.Game.ID.String())
		o.publish(ctx, func(s EventSink) error {
			return s.PublishTurnFailed(ctx, o.env.Game.ID, err.Error())
		})
		o.setPhase(ctx, PhaseAwaitingPlayerInput)
		return nil, err
	}

	o.setPhase(ctx, PhaseTurnComplete)
	o.publish(ctx, func(s EventSink) error {
		return s.PublishTurnCompleted(ctx, o.env.Game.ID, res.Rounds)
	})
	o.setPhase(ctx, PhaseAwaitingPlayerInput)
	return res, nil
}

func (o *Orchestrator) run(ctx context.Context) (*Result, error) {
	res := &Result{}
	for {
		o.setPhase(ctx, PhaseModelTurnActive)
		resp, err := o.callModel(ctx)
		if err != nil {
			return nil, err
		}
		res.Rounds++
		res.ToolCalls += len(resp.ToolCalls)
		o.history.Append(resp.AssistantMessage())

		if len(resp.ToolCalls) == 0 {
			// A plain reply ends the turn; its text is narration.
			if text := strings.TrimSpace(resp.Content); text != "" {
				o.env.Player.Narrate(text)
			}
			return res, nil
		}

		results, ended, notes, err := o.dispatch(ctx, resp.ToolCalls)
		if err != nil {
			return nil, err
		}

		if len(o.pending) > 0 {
			n, err := o.resolvePending(ctx, results)
			if err != nil {
				return nil, err
			}
			res.Deferred += n
		}

		for i, call := range resp.ToolCalls {
			o.history.Append(chat.ToolResultMessage(call, results[i]))
		}

		if ended {
			o.notes = notes
			res.Notes = notes
			return res, nil
		}
	}
}

func (o *Orchestrator) callModel(ctx context.Context) (*chat.ModelResponse, error) {
	req, err := prompts.New().
		WithGameState(o.env.Game).
		WithFlow(o.registry.Flow()).
		WithNotes(o.notes).
		WithHistory(o.history.Messages()).
		WithTools(o.registry.Specs()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build model request: %w", err)
	}

	start := time.Now()
	resp, err := o.model.Chat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("model returned no response")
	}
	o.logger.Info("Model responded",
		"duration", time.Since(start),
		"tool_calls", len(resp.ToolCalls),
		"has_text", resp.Content != "")
	return resp, nil
}

// dispatch runs calls in order. Once a deferred call is seen, later
// deferred calls join the batch and every other call is skipped with a
// NOT EXECUTED result. Calls after end_turn are skipped the same way.
// results holds one entry per call; deferred entries are filled later.
func (o *Orchestrator) dispatch(ctx context.Context, calls []chat.ToolCall) (results []string, ended bool, notes string, err error) {
	results = make([]string, len(calls))
	o.pending = nil
	var firstDeferred string

	for i, call := range calls {
		switch {
		case ended:
			results[i] = notExecuted(call, "end_turn was already called")
			o.logger.Warn("Tool call after end_turn skipped", "tool", call.Name, "call_id", call.ID)
			continue
		case firstDeferred != "" && !o.isDeferred(call):
			results[i] = notExecuted(call, "it came after the player request "+firstDeferred)
			o.logger.Info("Tool call after deferred call skipped", "tool", call.Name, "call_id", call.ID)
			continue
		}

		o.setPhase(ctx, PhaseToolExecuting)
		out, err := o.registry.Dispatch(ctx, o.env, call)
		if err != nil {
			return nil, false, "", err
		}
		o.logger.Info("Tool dispatched", "tool", call.Name, "call_id", call.ID, "kind", out.Kind.String())
		o.publish(ctx, func(s EventSink) error {
			return s.PublishToolDispatched(ctx, o.env.Game.ID, call.Name, call.ID, out.Kind.String())
		})

		switch out.Kind {
		case tools.KindDeferred:
			o.pending = append(o.pending, pendingCall{index: i, req: out.Request})
			if firstDeferred == "" {
				firstDeferred = call.Name
			}
		case tools.KindTerminal:
			results[i] = out.Result
			ended, notes = true, out.Notes
		default:
			results[i] = out.Result
		}
	}

	return results, ended, notes, nil
}

// resolvePending runs the player-facing side of each deferred call in
// request order and stores each result at its call's position.
func (o *Orchestrator) resolvePending(ctx context.Context, results []string) (int, error) {
	o.setPhase(ctx, PhaseSuspended)
	resolved := 0
	for len(o.pending) > 0 {
		p := o.pending[0]
		out, err := o.registry.Resolve(ctx, o.env, p.req)
		if err != nil {
			return resolved, err
		}
		results[p.index] = out
		o.pending = o.pending[1:]
		resolved++
		o.logger.Info("Deferred call resolved", "tool", p.req.Call.Name, "call_id", p.req.Call.ID)
	}
	return resolved, nil
}

func (o *Orchestrator) isDeferred(call chat.ToolCall) bool {
	t, ok := o.registry.Lookup(call.Name)
	return ok && t.Kind == tools.KindDeferred
}

func notExecuted(call chat.ToolCall, why string) string {
	return fmt.Sprintf("NOT EXECUTED: %s was skipped because %s in the same response. Re-issue it after reading the result if it still applies.", call.Name, why)
}

func (o *Orchestrator) setPhase(ctx context.Context, p Phase) {
	if o.phase == p {
		return
	}
	from := o.phase
	o.phase = p
	o.logger.Debug("Turn phase changed", "from", from.String(), "to", p.String())
	o.publish(ctx, func(s EventSink) error {
		return s.PublishPhaseChanged(ctx, o.env.Game.ID, from.String(), p.String())
	})
}

func (o *Orchestrator) publish(_ context.Context, fn func(EventSink) error) {
	if o.events == nil {
		return
	}
	if err := fn(o.events); err != nil {
		o.logger.Warn("Failed to publish turn event", "error", err)
	}
}
