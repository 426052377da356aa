package state

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/qui-ball/virtualGM/pkg/actor"
	"github.com/qui-ball/virtualGM/pkg/errs"
)

// DeltaWorker applies a CharacterStateDelta to one character. The whole
// delta is validated before any field changes.
type DeltaWorker struct {
	target actor.Character
	delta  *CharacterStateDelta
	logger *slog.Logger
}

// NewDeltaWorker creates a new delta worker for one character
func NewDeltaWorker(target actor.Character, delta *CharacterStateDelta, logger *slog.Logger) *DeltaWorker {
	return &DeltaWorker{
		target: target,
		delta:  delta,
		logger: logger,
	}
}

// Validate checks every field of the delta against the target variant.
func (dw *DeltaWorker) Validate() error {
	d := dw.delta
	if d == nil {
		return nil
	}
	_, isPC := dw.target.(*actor.PlayerCharacter)
	if d.Hope != 0 && !isPC {
		return errs.InvalidOperation("hope", "%s has no Hope; only the player character does", dw.target.DisplayName())
	}
	if d.ArmorSlots != 0 && !isPC {
		return errs.InvalidOperation("armor_slots", "%s has no armor slots; only the player character does", dw.target.DisplayName())
	}
	for _, c := range d.AddConditions {
		if strings.TrimSpace(c) == "" {
			return errs.Validation("add_conditions", "condition labels must not be empty")
		}
	}
	for _, c := range d.RemoveConditions {
		if strings.TrimSpace(c) == "" {
			return errs.Validation("remove_conditions", "condition labels must not be empty")
		}
		if slices.ContainsFunc(d.AddConditions, func(a string) bool { return strings.TrimSpace(a) == strings.TrimSpace(c) }) {
			return errs.Validation("remove_conditions", "%q is both added and removed", strings.TrimSpace(c))
		}
	}
	return nil
}

// Apply validates and applies the delta, returning one description per
// change in application order.
func (dw *DeltaWorker) Apply() ([]string, error) {
	if err := dw.Validate(); err != nil {
		return nil, err
	}
	name := dw.target.DisplayName()
	if dw.delta.IsEmpty() {
		return []string{fmt.Sprintf("No changes to %s.", name)}, nil
	}

	d := dw.delta
	v := dw.target.Base()
	var changes []string

	if d.HP != 0 {
		before := v.HP
		v.HP = clamp(v.HP+d.HP, 0, v.HPMax)
		changes = append(changes, describe(name, "HP", before, v.HP, v.HPMax))
	}

	if d.Stress != 0 {
		before := v.Stress
		tentative := v.Stress + d.Stress
		overflow := max(0, tentative-v.StressMax)
		v.Stress = clamp(tentative, 0, v.StressMax)
		changes = append(changes, describe(name, "Stress", before, v.Stress, v.StressMax))
		if overflow > 0 {
			hpBefore := v.HP
			v.HP = max(0, v.HP-overflow)
			changes = append(changes, fmt.Sprintf("%s stress overflowed by %d: HP %d -> %d/%d", name, overflow, hpBefore, v.HP, v.HPMax))
		}
	}

	if pc, ok := dw.target.(*actor.PlayerCharacter); ok {
		if d.Hope != 0 {
			before := pc.Hope
			pc.Hope = clamp(pc.Hope+d.Hope, 0, actor.HopeMax)
			changes = append(changes, describe(name, "Hope", before, pc.Hope, actor.HopeMax))
		}
		if d.ArmorSlots != 0 {
			before := pc.ArmorSlots
			pc.ArmorSlots = clamp(pc.ArmorSlots+d.ArmorSlots, 0, pc.ArmorSlotsMax)
			changes = append(changes, describe(name, "Armor slots", before, pc.ArmorSlots, pc.ArmorSlotsMax))
		}
	}

	for _, c := range d.AddConditions {
		c = strings.TrimSpace(c)
		if v.AddCondition(c) {
			changes = append(changes, fmt.Sprintf("%s gained condition %q", name, c))
		} else {
			changes = append(changes, fmt.Sprintf("%s already has condition %q", name, c))
		}
	}
	for _, c := range d.RemoveConditions {
		c = strings.TrimSpace(c)
		if v.RemoveCondition(c) {
			changes = append(changes, fmt.Sprintf("%s lost condition %q", name, c))
		} else {
			changes = append(changes, fmt.Sprintf("%s did not have condition %q", name, c))
		}
	}

	if dw.logger != nil {
		dw.logger.Debug("Applied character delta",
			"target", name,
			"hp", v.HP,
			"stress", v.Stress,
			"changes", len(changes))
	}
	return changes, nil
}

func describe(name, field string, before, after, limit int) string {
	if before == after {
		return fmt.Sprintf("%s %s unchanged at %d/%d", name, field, after, limit)
	}
	return fmt.Sprintf("%s %s %d -> %d/%d", name, field, before, after, limit)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
