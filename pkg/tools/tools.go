// Package tools defines the operations the narrative model may call.
//
// Immediate tools run against the game state at dispatch and answer the
// model right away. Deferred tools only validate at dispatch; they are
// resolved later with the player through Registry.Resolve. end_turn is
// terminal.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/qui-ball/virtualGM/pkg/chat"
	"github.com/qui-ball/virtualGM/pkg/dice"
	"github.com/qui-ball/virtualGM/pkg/errs"
	"github.com/qui-ball/virtualGM/pkg/state"
)

// ExperienceFlow selects when Hope is spent on an Experience.
type ExperienceFlow string

const (
	// FlowApproveFirst collects the Experience with player_propose_action;
	// the model approves it and Hope is spent when the roll is made.
	FlowApproveFirst ExperienceFlow = "approve_first"
	// FlowProvisional collects the Experience at roll time and spends Hope
	// immediately; the model may refund it and ask for a new roll.
	FlowProvisional ExperienceFlow = "provisional"
)

// ParseExperienceFlow validates a flow name.
func ParseExperienceFlow(s string) (ExperienceFlow, error) {
	switch f := ExperienceFlow(s); f {
	case FlowApproveFirst, FlowProvisional:
		return f, nil
	default:
		return "", fmt.Errorf("unknown experience flow %q (want %q or %q)", s, FlowApproveFirst, FlowProvisional)
	}
}

// Player is the human side of the session as seen by the tools.
type Player interface {
	// Narrate shows GM narration.
	Narrate(text string)
	// Declare shows a GM ruling or mechanical announcement.
	Declare(text string)
	// Notify shows a system line such as a roll result.
	Notify(text string)
	// Ask shows prompt and waits for one line of input.
	Ask(ctx context.Context, prompt string) (string, error)
}

// Env is what a tool call runs against.
type Env struct {
	Game   *state.GameState
	Player Player
	Roller *dice.Roller
	Flow   ExperienceFlow
	Logger *slog.Logger
}

// Kind classifies a dispatched call.
type Kind int

const (
	KindImmediate Kind = iota
	KindDeferred
	KindTerminal
)

func (k Kind) String() string {
	switch k {
	case KindDeferred:
		return "deferred"
	case KindTerminal:
		return "terminal"
	default:
		return "immediate"
	}
}

// Request is a validated deferred call waiting for the player.
type Request struct {
	Call chat.ToolCall
	tool *Tool
}

// Outcome is the tagged result of dispatching one call. Result is set for
// immediate calls, Request for deferred calls and Notes for the terminal
// call.
type Outcome struct {
	Kind    Kind
	Result  string
	Request *Request
	Notes   string
}

// Immediate builds an immediate outcome.
func Immediate(result string) Outcome { return Outcome{Kind: KindImmediate, Result: result} }

// Deferred builds a deferred outcome.
func Deferred(req *Request) Outcome { return Outcome{Kind: KindDeferred, Request: req} }

// Terminal builds the end-of-turn outcome.
func Terminal(notes string) Outcome {
	return Outcome{Kind: KindTerminal, Result: "Turn ended.", Notes: notes}
}

// Tool is one entry of the tool surface.
type Tool struct {
	Name        string
	Description string
	Kind        Kind
	schema      json.RawMessage
	// run executes an immediate or terminal call.
	run func(ctx context.Context, env *Env, raw json.RawMessage) (Outcome, error)
	// check validates a deferred call at dispatch.
	check func(env *Env, raw json.RawMessage) error
	// resolve completes a deferred call with the player.
	resolve func(ctx context.Context, env *Env, raw json.RawMessage) (string, error)
}

// Spec returns the manifest entry sent to the model.
func (t *Tool) Spec() chat.ToolSpec {
	return chat.ToolSpec{Name: t.Name, Description: t.Description, Parameters: t.schema}
}

type validator interface {
	Validate() error
}

func decode[A any](raw json.RawMessage) (A, error) {
	var args A
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, errs.Validation("arguments", "could not parse arguments: %v", err)
	}
	if v, ok := any(&args).(validator); ok {
		if err := v.Validate(); err != nil {
			return args, err
		}
	}
	return args, nil
}

func schemaFor[A any]() (json.RawMessage, error) {
	s, err := jsonschema.For[A](nil)
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

func immediateTool[A any](name, desc string, fn func(ctx context.Context, env *Env, args A) (string, error)) (*Tool, error) {
	schema, err := schemaFor[A]()
	if err != nil {
		return nil, fmt.Errorf("failed to build schema for %s: %w", name, err)
	}
	return &Tool{
		Name:        name,
		Description: desc,
		Kind:        KindImmediate,
		schema:      schema,
		run: func(ctx context.Context, env *Env, raw json.RawMessage) (Outcome, error) {
			args, err := decode[A](raw)
			if err != nil {
				return Outcome{}, err
			}
			out, err := fn(ctx, env, args)
			if err != nil {
				return Outcome{}, err
			}
			return Immediate(out), nil
		},
	}, nil
}

func terminalTool[A any](name, desc string, fn func(args A) string) (*Tool, error) {
	schema, err := schemaFor[A]()
	if err != nil {
		return nil, fmt.Errorf("failed to build schema for %s: %w", name, err)
	}
	return &Tool{
		Name:        name,
		Description: desc,
		Kind:        KindTerminal,
		schema:      schema,
		run: func(_ context.Context, _ *Env, raw json.RawMessage) (Outcome, error) {
			args, err := decode[A](raw)
			if err != nil {
				return Outcome{}, err
			}
			return Terminal(fn(args)), nil
		},
	}, nil
}

func deferredTool[A any](name, desc string,
	check func(env *Env, args A) error,
	resolve func(ctx context.Context, env *Env, args A) (string, error),
) (*Tool, error) {
	schema, err := schemaFor[A]()
	if err != nil {
		return nil, fmt.Errorf("failed to build schema for %s: %w", name, err)
	}
	return &Tool{
		Name:        name,
		Description: desc,
		Kind:        KindDeferred,
		schema:      schema,
		check: func(env *Env, raw json.RawMessage) error {
			args, err := decode[A](raw)
			if err != nil {
				return err
			}
			if check != nil {
				return check(env, args)
			}
			return nil
		},
		resolve: func(ctx context.Context, env *Env, raw json.RawMessage) (string, error) {
			args, err := decode[A](raw)
			if err != nil {
				return "", err
			}
			return resolve(ctx, env, args)
		},
	}, nil
}

// FormatError renders a recoverable engine error as a tool result.
func FormatError(err error) string {
	var e *errs.Error
	if errors.As(err, &e) {
		if e.Subject != "" {
			return fmt.Sprintf("ERROR (%s): %s: %s. Nothing was changed; correct the call and try again.", e.Kind, e.Subject, e.Message)
		}
		return fmt.Sprintf("ERROR (%s): %s. Nothing was changed; correct the call and try again.", e.Kind, e.Message)
	}
	return "ERROR: " + err.Error()
}
