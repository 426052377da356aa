package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/qui-ball/virtualGM/pkg/actor"
	"github.com/qui-ball/virtualGM/pkg/dice"
	"github.com/qui-ball/virtualGM/pkg/errs"
	"github.com/qui-ball/virtualGM/pkg/state"
)

type textArgs struct {
	Text string `json:"text" jsonschema:"text shown to the player"`
}

func (a *textArgs) Validate() error {
	if strings.TrimSpace(a.Text) == "" {
		return errs.Validation("text", "must not be empty")
	}
	return nil
}

func narrateTool() (*Tool, error) {
	return immediateTool(ToolNarrate,
		"Show story narration to the player. Never narrate the outcome of a roll before its result is known.",
		func(_ context.Context, env *Env, args textArgs) (string, error) {
			env.Player.Narrate(args.Text)
			return "Narration shown to the player.", nil
		})
}

func declareTool() (*Tool, error) {
	return immediateTool(ToolDeclare,
		"Show a GM ruling or mechanical announcement to the player, such as an adversary acting or a countdown ticking.",
		func(_ context.Context, env *Env, args textArgs) (string, error) {
			env.Player.Declare(args.Text)
			return "Declaration shown to the player.", nil
		})
}

type rollDiceArgs struct {
	Count    int    `json:"count" jsonschema:"number of dice, at least 1"`
	Die      string `json:"die" jsonschema:"die kind: d4, d6, d8, d10, d12, d20 or d100"`
	Modifier int    `json:"modifier,omitempty" jsonschema:"flat modifier added to the sum"`
	Reason   string `json:"reason,omitempty" jsonschema:"what the roll is for"`
}

func rollDiceTool() (*Tool, error) {
	return immediateTool(ToolRollDice,
		"Roll dice for the GM: adversary attacks, damage, random tables. Not for the player's 2d12 duality roll; use player_roll_dice for that.",
		func(_ context.Context, env *Env, args rollDiceArgs) (string, error) {
			die, err := dice.ParseDie(args.Die)
			if err != nil {
				return "", errs.Validation("die", "%v; supported kinds are d4, d6, d8, d10, d12, d20, d100", err)
			}
			if args.Count < 1 {
				return "", errs.Validation("count", "must be at least 1, got %d", args.Count)
			}
			if dice.IsDuality(args.Count, die) {
				return "", errs.WrongPath("die", "2d12 is the player's duality roll; use player_roll_dice")
			}
			rolls, err := env.Roller.Roll(args.Count, die)
			if err != nil {
				return "", errs.Validation("die", "%v", err)
			}
			total := dice.Sum(rolls) + args.Modifier
			out := dice.Format(args.Count, die, rolls)
			if args.Modifier != 0 {
				out += fmt.Sprintf(" %+d = %d", args.Modifier, total)
			}
			if args.Reason != "" {
				out += " (" + args.Reason + ")"
			}
			if env.Logger != nil {
				env.Logger.Debug("GM roll", "count", args.Count, "die", die.String(), "rolls", rolls, "total", total)
			}
			return "GM rolled " + out + ".", nil
		})
}

type spendFearArgs struct {
	Amount int    `json:"amount" jsonschema:"Fear to spend, at least 1"`
	Reason string `json:"reason,omitempty" jsonschema:"the GM move the Fear pays for"`
}

func spendFearTool() (*Tool, error) {
	return immediateTool(ToolSpendFear,
		"Spend Fear from the GM's pool. Fails without change if the pool is too small.",
		func(_ context.Context, env *Env, args spendFearArgs) (string, error) {
			left, err := env.Game.SpendFear(args.Amount)
			if err != nil {
				return "", err
			}
			env.Player.Notify(fmt.Sprintf("The GM spends %d Fear.", args.Amount))
			out := fmt.Sprintf("Spent %d Fear. Fear pool: %d.", args.Amount, left)
			if args.Reason != "" {
				out = fmt.Sprintf("Spent %d Fear (%s). Fear pool: %d.", args.Amount, args.Reason, left)
			}
			return out, nil
		})
}

func createAdversaryTool() (*Tool, error) {
	return immediateTool(ToolCreateAdversary,
		"Add an adversary to the scene. Ids must be unique, e.g. 'Goblin 1', 'Goblin 2'.",
		func(_ context.Context, env *Env, spec actor.AdversarySpec) (string, error) {
			a, err := env.Game.CreateAdversary(spec)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Created adversary %q: HP %d/%d, Stress %d/%d, Difficulty %d, attack %+d.",
				a.ID, a.HP, a.HPMax, a.Stress, a.StressMax, a.Difficulty, a.AttackModifier), nil
		})
}

type idArgs struct {
	ID string `json:"id" jsonschema:"adversary id"`
}

func removeAdversaryTool() (*Tool, error) {
	return immediateTool(ToolRemoveAdversary,
		"Remove an adversary that has been defeated or has left the scene.",
		func(_ context.Context, env *Env, args idArgs) (string, error) {
			a, err := env.Game.RemoveAdversary(args.ID)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Removed adversary %q.", a.ID), nil
		})
}

type updateStateArgs struct {
	Target           string   `json:"target" jsonschema:"'pc' for the player character, or an adversary id"`
	HP               int      `json:"hp,omitempty" jsonschema:"signed HP change; for the PC only healing, damage goes through player_take_damage"`
	Stress           int      `json:"stress,omitempty" jsonschema:"signed stress change; stress past the maximum is lost as HP"`
	Hope             int      `json:"hope,omitempty" jsonschema:"signed Hope change, PC only"`
	ArmorSlots       int      `json:"armor_slots,omitempty" jsonschema:"signed armor slot change, PC only"`
	AddConditions    []string `json:"add_conditions,omitempty" jsonschema:"condition labels to add"`
	RemoveConditions []string `json:"remove_conditions,omitempty" jsonschema:"condition labels to remove"`
}

func (a *updateStateArgs) delta() *state.CharacterStateDelta {
	return &state.CharacterStateDelta{
		HP:               a.HP,
		Stress:           a.Stress,
		Hope:             a.Hope,
		ArmorSlots:       a.ArmorSlots,
		AddConditions:    a.AddConditions,
		RemoveConditions: a.RemoveConditions,
	}
}

func updateCharacterStateTool() (*Tool, error) {
	return immediateTool(ToolUpdateCharacterState,
		"Apply relative changes to a character: HP, stress, Hope, armor slots and conditions. Damage to the PC must use player_take_damage.",
		func(_ context.Context, env *Env, args updateStateArgs) (string, error) {
			c, err := env.Game.ResolveTarget(args.Target)
			if err != nil {
				return "", err
			}
			d := args.delta()
			if d.IsEmpty() {
				return fmt.Sprintf("No changes requested for %s; nothing was applied.", c.DisplayName()), nil
			}
			changes, err := env.Game.ApplyDelta(args.Target, d, env.Logger)
			if err != nil {
				return "", err
			}
			switch c := c.(type) {
			case *actor.PlayerCharacter:
				for _, line := range changes {
					env.Player.Notify(line)
				}
			case *actor.Adversary:
				if d.HP < 0 && c.IsDefeated() {
					changes = append(changes, fmt.Sprintf("%s is defeated (0 HP). Remove it with %s once the scene moves on.", c.DisplayName(), ToolRemoveAdversary))
				}
			}
			return strings.Join(changes, "\n"), nil
		})
}

type createCountdownArgs struct {
	Name         string `json:"name" jsonschema:"unique countdown name"`
	InitialValue int    `json:"initial_value" jsonschema:"starting value, 0 or more"`
}

func createCountdownTool() (*Tool, error) {
	return immediateTool(ToolCreateCountdown,
		"Start a countdown that triggers when it reaches 0.",
		func(_ context.Context, env *Env, args createCountdownArgs) (string, error) {
			if err := env.Game.CreateCountdown(args.Name, args.InitialValue); err != nil {
				return "", err
			}
			return fmt.Sprintf("Countdown %q created at %d.", strings.TrimSpace(args.Name), args.InitialValue), nil
		})
}

type updateCountdownArgs struct {
	Name  string `json:"name" jsonschema:"countdown name"`
	Delta int    `json:"delta" jsonschema:"signed change, usually -1"`
}

func updateCountdownTool() (*Tool, error) {
	return immediateTool(ToolUpdateCountdown,
		"Move a countdown. It never goes below 0 and stays at 0 until removed.",
		func(_ context.Context, env *Env, args updateCountdownArgs) (string, error) {
			u, err := env.Game.UpdateCountdown(args.Name, args.Delta)
			if err != nil {
				return "", err
			}
			return u.String(), nil
		})
}

type nameArgs struct {
	Name string `json:"name" jsonschema:"countdown name"`
}

func removeCountdownTool() (*Tool, error) {
	return immediateTool(ToolRemoveCountdown,
		"Remove a countdown that is resolved or no longer relevant.",
		func(_ context.Context, env *Env, args nameArgs) (string, error) {
			v, err := env.Game.RemoveCountdown(args.Name)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Countdown %q removed at %d.", strings.TrimSpace(args.Name), v), nil
		})
}

type endTurnArgs struct {
	Notes string `json:"notes,omitempty" jsonschema:"private continuity notes for your next turn"`
}

func endTurnTool() (*Tool, error) {
	return terminalTool(ToolEndTurn,
		"End the GM turn and hand control back to the player. Call it last, after every result has been narrated.",
		func(args endTurnArgs) string { return strings.TrimSpace(args.Notes) })
}
