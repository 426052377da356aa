package actor

import (
	"strings"

	"github.com/qui-ball/virtualGM/pkg/errs"
)

// Adversary is a GM-controlled opponent created during play.
// Difficulty and attack modifier exist only on this variant.
type Adversary struct {
	Vitals
	ID             string `json:"id"`
	Name           string `json:"name,omitempty"`
	Description    string `json:"description,omitempty"`
	Difficulty     int    `json:"difficulty"`
	AttackModifier int    `json:"attack_modifier"`
}

var _ Character = (*Adversary)(nil)

// AdversarySpec is the creation request for an adversary. HP defaults to
// HPMax when nil.
type AdversarySpec struct {
	ID              string   `json:"id" jsonschema:"unique adversary id, e.g. 'Goblin 1'"`
	Name            string   `json:"name,omitempty" jsonschema:"display name, defaults to the id"`
	Description     string   `json:"description,omitempty" jsonschema:"short description for continuity"`
	HP              *int     `json:"hp,omitempty" jsonschema:"current HP, defaults to hp_max"`
	HPMax           int      `json:"hp_max" jsonschema:"maximum HP, at least 1"`
	Stress          int      `json:"stress,omitempty"`
	StressMax       int      `json:"stress_max,omitempty"`
	MinorThreshold  int      `json:"minor_threshold,omitempty"`
	MajorThreshold  int      `json:"major_threshold,omitempty"`
	SevereThreshold *int     `json:"severe_threshold,omitempty"`
	Difficulty      int      `json:"difficulty,omitempty" jsonschema:"target number for rolls against this adversary"`
	AttackModifier  int      `json:"attack_modifier,omitempty"`
	Conditions      []string `json:"conditions,omitempty"`
}

// NewAdversary validates a spec and builds the adversary.
func NewAdversary(spec AdversarySpec) (*Adversary, error) {
	id := strings.TrimSpace(spec.ID)
	if id == "" {
		return nil, errs.Validation("id", "must not be empty")
	}
	a := &Adversary{
		Vitals: Vitals{
			HP:              spec.HPMax,
			HPMax:           spec.HPMax,
			Stress:          spec.Stress,
			StressMax:       spec.StressMax,
			MinorThreshold:  spec.MinorThreshold,
			MajorThreshold:  spec.MajorThreshold,
			SevereThreshold: spec.SevereThreshold,
			Conditions:      append([]string(nil), spec.Conditions...),
		},
		ID:             id,
		Name:           strings.TrimSpace(spec.Name),
		Description:    spec.Description,
		Difficulty:     spec.Difficulty,
		AttackModifier: spec.AttackModifier,
	}
	if spec.HP != nil {
		a.HP = *spec.HP
	}
	if a.Name == "" {
		a.Name = id
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	a.normalizeConditions()
	return a, nil
}

// DisplayName returns the name, falling back to the id.
func (a *Adversary) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// Base returns the shared vitals.
func (a *Adversary) Base() *Vitals { return &a.Vitals }

// Validate checks the shared and adversary-only invariants.
func (a *Adversary) Validate() error {
	if err := a.Vitals.Validate(); err != nil {
		return err
	}
	if a.Difficulty < 0 {
		return errs.Validation("difficulty", "must be non-negative, got %d", a.Difficulty)
	}
	return nil
}

// IsDefeated reports whether the adversary has no HP left.
func (a *Adversary) IsDefeated() bool {
	return a.HP <= 0
}

// Clone returns a deep copy.
func (a *Adversary) Clone() *Adversary {
	if a == nil {
		return nil
	}
	out := *a
	out.Vitals = a.Vitals.clone()
	return &out
}
