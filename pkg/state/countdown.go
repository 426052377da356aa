package state

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/qui-ball/virtualGM/pkg/errs"
)

// CountdownUpdate is the result of moving a countdown.
type CountdownUpdate struct {
	Name     string `json:"name"`
	Previous int    `json:"previous"`
	Value    int    `json:"value"`
	// Triggered is set when this update brought the countdown to 0.
	Triggered bool `json:"triggered"`
}

// AtZero reports whether the countdown now sits at 0.
func (u CountdownUpdate) AtZero() bool { return u.Value == 0 }

func (u CountdownUpdate) String() string {
	switch {
	case u.Triggered:
		return fmt.Sprintf("Countdown %q: %d -> 0. REACHED 0: the countdown has triggered.", u.Name, u.Previous)
	case u.AtZero():
		return fmt.Sprintf("Countdown %q stays at 0 (already triggered).", u.Name)
	default:
		return fmt.Sprintf("Countdown %q: %d -> %d.", u.Name, u.Previous, u.Value)
	}
}

func (gs *GameState) countdownKey(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if _, ok := gs.Countdowns[name]; ok {
		return name, true
	}
	for k := range gs.Countdowns {
		if strings.EqualFold(k, name) {
			return k, true
		}
	}
	return "", false
}

// CountdownNames returns countdown names in sorted order.
func (gs *GameState) CountdownNames() []string {
	return slices.Sorted(maps.Keys(gs.Countdowns))
}

// CreateCountdown starts a new countdown at initial.
func (gs *GameState) CreateCountdown(name string, initial int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.Validation("name", "must not be empty")
	}
	if initial < 0 {
		return errs.Validation("initial_value", "must be non-negative, got %d", initial)
	}
	if existing, ok := gs.countdownKey(name); ok {
		return errs.Duplicate(existing, "a countdown with this name already exists (value %d)", gs.Countdowns[existing])
	}
	if gs.Countdowns == nil {
		gs.Countdowns = make(map[string]int)
	}
	gs.Countdowns[name] = initial
	return nil
}

// UpdateCountdown moves a countdown by delta, flooring at 0. A countdown
// at 0 is kept until removed.
func (gs *GameState) UpdateCountdown(name string, delta int) (CountdownUpdate, error) {
	key, ok := gs.countdownKey(name)
	if !ok {
		return CountdownUpdate{}, errs.NotFound(name, "no countdown with that name")
	}
	prev := gs.Countdowns[key]
	next := max(0, prev+delta)
	gs.Countdowns[key] = next
	return CountdownUpdate{
		Name:      key,
		Previous:  prev,
		Value:     next,
		Triggered: next == 0 && prev > 0,
	}, nil
}

// RemoveCountdown deletes a countdown and returns its last value.
func (gs *GameState) RemoveCountdown(name string) (int, error) {
	key, ok := gs.countdownKey(name)
	if !ok {
		return 0, errs.NotFound(name, "no countdown with that name")
	}
	v := gs.Countdowns[key]
	delete(gs.Countdowns, key)
	return v, nil
}
