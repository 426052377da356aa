package actor

import (
	"slices"
	"strings"

	"github.com/qui-ball/virtualGM/pkg/errs"
)

// Vitals is the mechanical state shared by the player character and
// adversaries: hit points, stress, damage thresholds and conditions.
type Vitals struct {
	HP              int      `json:"hp" yaml:"hp"`
	HPMax           int      `json:"hp_max" yaml:"hp_max"`
	Stress          int      `json:"stress" yaml:"stress"`
	StressMax       int      `json:"stress_max" yaml:"stress_max"`
	MinorThreshold  int      `json:"minor_threshold" yaml:"minor_threshold"`
	MajorThreshold  int      `json:"major_threshold" yaml:"major_threshold"`
	SevereThreshold *int     `json:"severe_threshold,omitempty" yaml:"severe_threshold,omitempty"`
	Conditions      []string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// Character is implemented by both character variants. Base exposes the
// shared vitals for mutation by the delta engine.
type Character interface {
	DisplayName() string
	Base() *Vitals
}

// Validate checks the shared invariants.
func (v *Vitals) Validate() error {
	if v.HPMax < 1 {
		return errs.Validation("hp_max", "must be at least 1, got %d", v.HPMax)
	}
	if v.HP < 0 || v.HP > v.HPMax {
		return errs.Validation("hp", "must be between 0 and hp_max (%d), got %d", v.HPMax, v.HP)
	}
	if v.StressMax < 0 {
		return errs.Validation("stress_max", "must be non-negative, got %d", v.StressMax)
	}
	if v.Stress < 0 || v.Stress > v.StressMax {
		return errs.Validation("stress", "must be between 0 and stress_max (%d), got %d", v.StressMax, v.Stress)
	}
	if v.MinorThreshold < 0 {
		return errs.Validation("minor_threshold", "must be non-negative, got %d", v.MinorThreshold)
	}
	if v.MajorThreshold < 0 {
		return errs.Validation("major_threshold", "must be non-negative, got %d", v.MajorThreshold)
	}
	if v.SevereThreshold != nil && *v.SevereThreshold < 0 {
		return errs.Validation("severe_threshold", "must be non-negative, got %d", *v.SevereThreshold)
	}
	for _, c := range v.Conditions {
		if strings.TrimSpace(c) == "" {
			return errs.Validation("conditions", "labels must not be empty")
		}
	}
	return nil
}

// HasCondition reports whether label is present.
func (v *Vitals) HasCondition(label string) bool {
	return slices.Contains(v.Conditions, label)
}

// AddCondition adds label if absent and reports whether it was added.
func (v *Vitals) AddCondition(label string) bool {
	if v.HasCondition(label) {
		return false
	}
	v.Conditions = append(v.Conditions, label)
	return true
}

// RemoveCondition removes label if present and reports whether it was removed.
func (v *Vitals) RemoveCondition(label string) bool {
	i := slices.Index(v.Conditions, label)
	if i < 0 {
		return false
	}
	v.Conditions = slices.Delete(v.Conditions, i, i+1)
	return true
}

// normalizeConditions trims labels and drops duplicates, keeping first
// occurrence order.
func (v *Vitals) normalizeConditions() {
	if len(v.Conditions) == 0 {
		v.Conditions = nil
		return
	}
	seen := make(map[string]bool, len(v.Conditions))
	out := make([]string, 0, len(v.Conditions))
	for _, c := range v.Conditions {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	v.Conditions = out
}

func (v *Vitals) clone() Vitals {
	out := *v
	if v.SevereThreshold != nil {
		s := *v.SevereThreshold
		out.SevereThreshold = &s
	}
	out.Conditions = slices.Clone(v.Conditions)
	return out
}
