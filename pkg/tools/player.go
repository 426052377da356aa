package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/qui-ball/virtualGM/pkg/actor"
	"github.com/qui-ball/virtualGM/pkg/dice"
	"github.com/qui-ball/virtualGM/pkg/errs"
	"github.com/qui-ball/virtualGM/pkg/state"
)

// normalize folds an answer for comparison.
func normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// parseYesNo accepts y, yes, n and no in any case.
func parseYesNo(s string) (bool, bool) {
	switch normalize(s) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}

// askUntil repeats prompt until parse accepts the answer. parse returns a
// problem to show the player when it rejects one.
func askUntil[T any](ctx context.Context, p Player, prompt string, parse func(string) (T, string)) (T, error) {
	for {
		line, err := p.Ask(ctx, prompt)
		if err != nil {
			var zero T
			return zero, err
		}
		v, problem := parse(line)
		if problem == "" {
			return v, nil
		}
		p.Notify(problem)
	}
}

func askText(ctx context.Context, p Player, prompt string) (string, error) {
	return askUntil(ctx, p, prompt, func(s string) (string, string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return "", "Please type a response."
		}
		return s, ""
	})
}

func askDie(ctx context.Context, p Player, label string) (int, error) {
	return askUntil(ctx, p, label+" die (1-12): ", func(s string) (int, string) {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 1 || n > 12 {
			return 0, "Enter a whole number from 1 to 12."
		}
		return n, ""
	})
}

func experienceMenu(pc *actor.PlayerCharacter) string {
	names := pc.ExperienceNames()
	opts := make([]string, len(names))
	for i, n := range names {
		opts[i] = fmt.Sprintf("%s (+%d)", n, pc.Experiences[n])
	}
	return strings.Join(opts, ", ")
}

type chosenExperience struct {
	Name          string
	Bonus         int
	Justification string
}

// askExperience offers the PC's Experiences. It returns nil when the
// player skips or cannot pay Hope.
func askExperience(ctx context.Context, env *Env) (*chosenExperience, error) {
	pc := env.Game.PC
	if len(pc.Experiences) == 0 {
		return nil, nil
	}
	if pc.Hope < 1 {
		env.Player.Notify("You have no Hope, so no Experience can be used.")
		return nil, nil
	}
	prompt := fmt.Sprintf("Use an Experience for 1 Hope (you have %d)? %s. Name it or press Enter to skip: ",
		pc.Hope, experienceMenu(pc))
	name, err := askUntil(ctx, env.Player, prompt, func(s string) (string, string) {
		if strings.TrimSpace(s) == "" {
			return "", ""
		}
		canonical, _, ok := pc.Experience(s)
		if !ok {
			return "", fmt.Sprintf("%q is not one of your Experiences.", strings.TrimSpace(s))
		}
		return canonical, ""
	})
	if err != nil || name == "" {
		return nil, err
	}
	why, err := askText(ctx, env.Player, fmt.Sprintf("How does %s help here? ", name))
	if err != nil {
		return nil, err
	}
	_, bonus, _ := pc.Experience(name)
	return &chosenExperience{Name: name, Bonus: bonus, Justification: why}, nil
}

type rollRequest struct {
	Action     string `json:"action" jsonschema:"what the player attempts and your ruling, shown before the roll"`
	Trait      string `json:"trait,omitempty" jsonschema:"trait rolled, e.g. Agility"`
	Modifier   int    `json:"modifier,omitempty" jsonschema:"trait and other modifiers added to the roll"`
	Difficulty *int   `json:"difficulty,omitempty" jsonschema:"difficulty to meet or beat; omit for an open roll"`
}

func (a *rollRequest) Validate() error {
	if strings.TrimSpace(a.Action) == "" {
		return errs.Validation("action", "must describe the attempt and ruling")
	}
	if a.Difficulty != nil && *a.Difficulty < 0 {
		return errs.Validation("difficulty", "must be non-negative, got %d", *a.Difficulty)
	}
	return nil
}

func (a *rollRequest) ruling() string {
	s := "Roll 2d12"
	if a.Modifier != 0 {
		s += fmt.Sprintf(" %+d", a.Modifier)
	}
	if a.Trait != "" {
		s += " (" + a.Trait + ")"
	}
	if a.Difficulty != nil {
		s += fmt.Sprintf(" vs Difficulty %d", *a.Difficulty)
	}
	return s + ": " + strings.TrimSpace(a.Action)
}

type approvedRollArgs struct {
	Action     string `json:"action" jsonschema:"what the player attempts and your ruling, shown before the roll"`
	Trait      string `json:"trait,omitempty" jsonschema:"trait rolled, e.g. Agility"`
	Modifier   int    `json:"modifier,omitempty" jsonschema:"trait and other modifiers added to the roll"`
	Difficulty *int   `json:"difficulty,omitempty" jsonschema:"difficulty to meet or beat; omit for an open roll"`
	Experience string `json:"experience,omitempty" jsonschema:"an Experience you approved after player_propose_action; 1 Hope is spent when rolling"`
}

func (a *approvedRollArgs) request() rollRequest {
	return rollRequest{Action: a.Action, Trait: a.Trait, Modifier: a.Modifier, Difficulty: a.Difficulty}
}

func (a *approvedRollArgs) Validate() error {
	r := a.request()
	return r.Validate()
}

// experienceStep picks the Experience for a roll once the ruling is
// accepted. The note, if any, is passed on to the model.
type experienceStep func() (exp *chosenExperience, note string, err error)

func playerRollDiceTool() (*Tool, error) {
	return deferredTool(ToolPlayerRollDice,
		"Ask the player to make a duality roll (2d12 Hope and Fear) for a risky action. The player may object to the ruling instead of rolling. Wait for the result before narrating.",
		func(env *Env, args approvedRollArgs) error {
			if args.Experience == "" {
				return nil
			}
			if _, _, ok := env.Game.PC.Experience(args.Experience); !ok {
				return errs.Validation("experience", "%q is not one of the PC's Experiences (%s)",
					args.Experience, experienceMenu(env.Game.PC))
			}
			return nil
		},
		func(ctx context.Context, env *Env, args approvedRollArgs) (string, error) {
			return resolveRoll(ctx, env, args.request(), func() (*chosenExperience, string, error) {
				if args.Experience == "" {
					return nil, "", nil
				}
				name, bonus, ok := env.Game.PC.Experience(args.Experience)
				if !ok {
					return nil, fmt.Sprintf("Experience %q is unknown, so no bonus was applied.", args.Experience), nil
				}
				if env.Game.PC.Hope < 1 {
					env.Player.Notify(fmt.Sprintf("No Hope to spend; %s does not apply.", name))
					return nil, fmt.Sprintf("Experience %s was approved but the PC had no Hope, so no bonus was applied.", name), nil
				}
				return &chosenExperience{Name: name, Bonus: bonus}, "", nil
			})
		})
}

func playerRollDiceProvisionalTool() (*Tool, error) {
	return deferredTool(ToolPlayerRollDice,
		"Ask the player to make a duality roll (2d12 Hope and Fear) for a risky action. The player may object to the ruling instead of rolling, and may add an Experience with a justification, spending 1 Hope. Wait for the result before narrating.",
		nil,
		func(ctx context.Context, env *Env, args rollRequest) (string, error) {
			return resolveRoll(ctx, env, args, func() (*chosenExperience, string, error) {
				exp, err := askExperience(ctx, env)
				return exp, "", err
			})
		})
}

// resolveRoll runs the ruling, negotiation, Experience and dice steps of
// a duality roll. experience is called once the player accepts the ruling.
func resolveRoll(ctx context.Context, env *Env, args rollRequest, experience experienceStep) (string, error) {
	p := env.Player
	pc := env.Game.PC

	p.Declare(args.ruling())
	choice, err := p.Ask(ctx, "Press Enter to roll, 'm' to enter your own dice, or type an objection to the ruling: ")
	if err != nil {
		return "", err
	}
	manual := false
	switch c := normalize(choice); c {
	case "":
	case "m", "manual":
		manual = true
	default:
		return fmt.Sprintf("NEGOTIATION (no roll was made). The player objects to the ruling %q: %q. "+
			"Weigh the objection, explain your decision, then call player_roll_dice again with the same or a revised ruling.",
			args.ruling(), strings.TrimSpace(choice)), nil
	}

	exp, note, err := experience()
	if err != nil {
		return "", err
	}
	hopeBefore := pc.Hope
	if exp != nil {
		pc.Hope--
	}

	var hope, fear int
	if manual {
		if hope, err = askDie(ctx, p, "Hope"); err != nil {
			return "", err
		}
		if fear, err = askDie(ctx, p, "Fear"); err != nil {
			return "", err
		}
	} else {
		rolls, err := env.Roller.Roll(2, dice.D12)
		if err != nil {
			return "", err
		}
		hope, fear = rolls[0], rolls[1]
	}

	bonus := 0
	if exp != nil {
		bonus = exp.Bonus
	}
	res, err := dice.EvaluateDuality(hope, fear, args.Modifier+bonus, args.Difficulty)
	if err != nil {
		return "", errs.Validation("dice", "%v", err)
	}
	fearGained := env.Game.RecordDualityRoll(hope, fear)

	if env.Logger != nil {
		env.Logger.Info("Player duality roll",
			"hope", hope, "fear", fear, "total", res.Total,
			"outcome", res.Outcome.String(), "manual", manual, "fear_gained", fearGained)
	}

	p.Notify(playerRollLine(res, exp))
	return rollResultText(env, args, res, exp, note, hopeBefore, fearGained, manual), nil
}

func playerRollLine(res dice.DualityResult, exp *chosenExperience) string {
	s := dice.Format(2, dice.D12, []int{res.Hope, res.Fear})
	if res.Modifier != 0 {
		s += fmt.Sprintf(" %+d", res.Modifier)
	}
	if exp != nil {
		s += fmt.Sprintf(" (incl. %s +%d)", exp.Name, exp.Bonus)
	}
	s += fmt.Sprintf(" = %d: %s", res.Total, res.Outcome)
	return s
}

func rollResultText(env *Env, args rollRequest, res dice.DualityResult, exp *chosenExperience, note string, hopeBefore int, fearGained, manual bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ROLL RESULT for %q: Hope die %d, Fear die %d", strings.TrimSpace(args.Action), res.Hope, res.Fear)
	if manual {
		b.WriteString(" (entered by the player)")
	}
	fmt.Fprintf(&b, ", modifier %+d", args.Modifier)
	if exp != nil {
		fmt.Fprintf(&b, ", Experience %s %+d", exp.Name, exp.Bonus)
	}
	fmt.Fprintf(&b, ", total %d", res.Total)
	if res.Difficulty != nil {
		fmt.Fprintf(&b, " vs Difficulty %d", *res.Difficulty)
	}
	fmt.Fprintf(&b, ". Outcome: %s.", res.Outcome)
	if res.IsCrit {
		b.WriteString(" The dice match: critical success.")
	}
	if fearGained {
		fmt.Fprintf(&b, " The GM gains 1 Fear (pool now %d).", env.Game.FearPool)
	}
	if exp != nil {
		fmt.Fprintf(&b, " 1 Hope spent on %s (Hope %d -> %d).", exp.Name, hopeBefore, env.Game.PC.Hope)
		if exp.Justification != "" {
			fmt.Fprintf(&b, " Player's justification: %q. If it does not fit the fiction, refund the Hope with update_character_state (target pc, hope +1), explain why, and call player_roll_dice again; the player rolls without the Experience.", exp.Justification)
		}
	}
	if note != "" {
		b.WriteString(" " + note)
	}
	return b.String()
}

type takeDamageArgs struct {
	Damage int    `json:"damage" jsonschema:"rolled damage total before thresholds"`
	Source string `json:"source,omitempty" jsonschema:"what dealt the damage"`
}

func (a *takeDamageArgs) Validate() error {
	if a.Damage < 0 {
		return errs.Validation("damage", "must be non-negative, got %d", a.Damage)
	}
	return nil
}

func playerTakeDamageTool() (*Tool, error) {
	return deferredTool(ToolPlayerTakeDamage,
		"Deal damage to the player character. The damage is compared to their thresholds and the player may mark one armor slot to reduce it by one step.",
		nil,
		func(ctx context.Context, env *Env, args takeDamageArgs) (string, error) {
			pc := env.Game.PC
			plan, err := state.PlanDamage(pc, args.Damage)
			if err != nil {
				return "", err
			}

			head := fmt.Sprintf("Incoming damage: %d", plan.Damage)
			if args.Source != "" {
				head += " from " + args.Source
			}
			env.Player.Declare(fmt.Sprintf("%s (%s band, %d HP).", head, plan.Band, plan.BaseMarks))

			useArmor := false
			if plan.ArmorAvailable {
				prompt := fmt.Sprintf("Mark an armor slot to reduce this from %d HP to %d HP? You have %d/%d slots. (y/n): ",
					plan.BaseMarks, plan.ReducedMarks, pc.ArmorSlots, pc.ArmorSlotsMax)
				useArmor, err = askUntil(ctx, env.Player, prompt, func(s string) (bool, string) {
					v, ok := parseYesNo(s)
					if !ok {
						return false, "Answer y or n."
					}
					return v, ""
				})
				if err != nil {
					return "", err
				}
			}

			report := state.ApplyDamage(pc, plan, useArmor)
			if env.Logger != nil {
				env.Logger.Info("Player took damage",
					"damage", report.Damage, "band", report.Band.String(),
					"armor_used", report.ArmorUsed, "hp_after", report.HPAfter)
			}
			env.Player.Notify(fmt.Sprintf("You mark %d HP (HP %d/%d, armor %d/%d).",
				report.HPMarked, report.HPAfter, report.HPMax, report.ArmorAfter, report.ArmorMax))

			out := "DAMAGE RESULT: " + report.String()
			if report.HPAfter == 0 {
				out += " The PC is at 0 HP."
			}
			return out, nil
		})
}

type proposeActionArgs struct {
	Prompt string `json:"prompt" jsonschema:"the situation or question put to the player"`
}

func (a *proposeActionArgs) Validate() error {
	if strings.TrimSpace(a.Prompt) == "" {
		return errs.Validation("prompt", "must not be empty")
	}
	return nil
}

func playerProposeActionTool() (*Tool, error) {
	return deferredTool(ToolPlayerProposeAction,
		"Before a risky roll, ask the player how they approach it and whether an Experience applies. No dice are rolled and no Hope is spent. Judge the justification, then call player_roll_dice with experience set only if you approve it.",
		nil,
		func(ctx context.Context, env *Env, args proposeActionArgs) (string, error) {
			env.Player.Declare(strings.TrimSpace(args.Prompt))
			approach, err := askText(ctx, env.Player, "How do you approach this? ")
			if err != nil {
				return "", err
			}
			exp, err := askExperience(ctx, env)
			if err != nil {
				return "", err
			}

			out := fmt.Sprintf("PLAYER PROPOSAL: approach: %q.", approach)
			if exp == nil {
				return out + " No Experience proposed.", nil
			}
			return out + fmt.Sprintf(" Proposed Experience: %s (+%d), justification: %q. The PC has %d Hope. "+
				"If the justification fits, pass experience %q to player_roll_dice (1 Hope is spent when rolling); otherwise explain and omit it.",
				exp.Name, exp.Bonus, exp.Justification, env.Game.PC.Hope, exp.Name), nil
		})
}
