package actor

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/qui-ball/virtualGM/pkg/errs"
)

// HopeMax is the ceiling of a player character's Hope.
const HopeMax = 6

// PlayerCharacter is the runtime state of the single player character.
// Hope, armor, evasion and Experiences exist only on this variant.
type PlayerCharacter struct {
	Vitals        `yaml:",inline"`
	Name          string         `json:"name" yaml:"name"`
	Class         string         `json:"class,omitempty" yaml:"class,omitempty"`
	Ancestry      string         `json:"ancestry,omitempty" yaml:"ancestry,omitempty"`
	Level         int            `json:"level,omitempty" yaml:"level,omitempty"`
	Hope          int            `json:"hope" yaml:"hope"`
	ArmorSlots    int            `json:"armor_slots" yaml:"armor_slots"`
	ArmorSlotsMax int            `json:"armor_slots_max" yaml:"armor_slots_max"`
	Evasion       int            `json:"evasion" yaml:"evasion"`
	Traits        map[string]int `json:"traits,omitempty" yaml:"traits,omitempty"`
	Experiences   map[string]int `json:"experiences,omitempty" yaml:"experiences,omitempty"`
}

var _ Character = (*PlayerCharacter)(nil)

// DisplayName returns the character's name.
func (pc *PlayerCharacter) DisplayName() string { return pc.Name }

// Base returns the shared vitals.
func (pc *PlayerCharacter) Base() *Vitals { return &pc.Vitals }

// Validate checks the shared and PC-only invariants.
func (pc *PlayerCharacter) Validate() error {
	if strings.TrimSpace(pc.Name) == "" {
		return errs.Validation("name", "must not be empty")
	}
	if err := pc.Vitals.Validate(); err != nil {
		return err
	}
	if pc.Hope < 0 || pc.Hope > HopeMax {
		return errs.Validation("hope", "must be between 0 and %d, got %d", HopeMax, pc.Hope)
	}
	if pc.ArmorSlotsMax < 0 {
		return errs.Validation("armor_slots_max", "must be non-negative, got %d", pc.ArmorSlotsMax)
	}
	if pc.ArmorSlots < 0 || pc.ArmorSlots > pc.ArmorSlotsMax {
		return errs.Validation("armor_slots", "must be between 0 and armor_slots_max (%d), got %d", pc.ArmorSlotsMax, pc.ArmorSlots)
	}
	if pc.Evasion < 0 {
		return errs.Validation("evasion", "must be non-negative, got %d", pc.Evasion)
	}
	for name := range pc.Experiences {
		if strings.TrimSpace(name) == "" {
			return errs.Validation("experiences", "names must not be empty")
		}
	}
	return nil
}

// Experience looks up an Experience bonus by name, ignoring case.
// It returns the canonical name as written on the sheet.
func (pc *PlayerCharacter) Experience(name string) (string, int, bool) {
	want := strings.TrimSpace(name)
	if bonus, ok := pc.Experiences[want]; ok {
		return want, bonus, true
	}
	for k, bonus := range pc.Experiences {
		if strings.EqualFold(k, want) {
			return k, bonus, true
		}
	}
	return "", 0, false
}

// ExperienceNames returns the Experience names in sorted order.
func (pc *PlayerCharacter) ExperienceNames() []string {
	return slices.Sorted(maps.Keys(pc.Experiences))
}

// Clone returns a deep copy.
func (pc *PlayerCharacter) Clone() *PlayerCharacter {
	if pc == nil {
		return nil
	}
	out := *pc
	out.Vitals = pc.Vitals.clone()
	out.Traits = maps.Clone(pc.Traits)
	out.Experiences = maps.Clone(pc.Experiences)
	return &out
}

// Summary is a one-line status for the player display.
func (pc *PlayerCharacter) Summary() string {
	s := fmt.Sprintf("%s  HP %d/%d  Stress %d/%d  Hope %d/%d  Armor %d/%d",
		pc.Name, pc.HP, pc.HPMax, pc.Stress, pc.StressMax, pc.Hope, HopeMax, pc.ArmorSlots, pc.ArmorSlotsMax)
	if len(pc.Conditions) > 0 {
		s += "  [" + strings.Join(pc.Conditions, ", ") + "]"
	}
	return s
}
