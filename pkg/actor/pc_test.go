package actor

import (
	"errors"
	"testing"

	"github.com/qui-ball/virtualGM/pkg/errs"
)

func testPC() *PlayerCharacter {
	severe := 20
	return &PlayerCharacter{
		Vitals: Vitals{
			HP: 6, HPMax: 6, Stress: 0, StressMax: 6,
			MinorThreshold: 7, MajorThreshold: 14, SevereThreshold: &severe,
		},
		Name:          "Marlowe Fairwind",
		Hope:          2,
		ArmorSlots:    3,
		ArmorSlotsMax: 3,
		Evasion:       10,
		Experiences:   map[string]int{"Silver Tongue": 2, "Sailor's Instincts": 2},
	}
}

func TestPlayerCharacter_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(pc *PlayerCharacter)
		field  string
	}{
		{"valid", func(pc *PlayerCharacter) {}, ""},
		{"empty name", func(pc *PlayerCharacter) { pc.Name = " " }, "name"},
		{"hp over max", func(pc *PlayerCharacter) { pc.HP = 7 }, "hp"},
		{"negative hp", func(pc *PlayerCharacter) { pc.HP = -1 }, "hp"},
		{"hp_max zero", func(pc *PlayerCharacter) { pc.HPMax = 0; pc.HP = 0 }, "hp_max"},
		{"stress over max", func(pc *PlayerCharacter) { pc.Stress = 7 }, "stress"},
		{"hope over six", func(pc *PlayerCharacter) { pc.Hope = 7 }, "hope"},
		{"armor over max", func(pc *PlayerCharacter) { pc.ArmorSlots = 4 }, "armor_slots"},
		{"negative evasion", func(pc *PlayerCharacter) { pc.Evasion = -1 }, "evasion"},
		{"negative severe", func(pc *PlayerCharacter) { s := -1; pc.SevereThreshold = &s }, "severe_threshold"},
		{"blank condition", func(pc *PlayerCharacter) { pc.Conditions = []string{""} }, "conditions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := testPC()
			tt.mutate(pc)
			err := pc.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var e *errs.Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *errs.Error, got %v", err)
			}
			if e.Kind != errs.KindValidation || e.Subject != tt.field {
				t.Errorf("got %s on %q, want ValidationError on %q", e.Kind, e.Subject, tt.field)
			}
		})
	}
}

func TestPlayerCharacter_Experience(t *testing.T) {
	pc := testPC()

	name, bonus, ok := pc.Experience("silver tongue")
	if !ok || name != "Silver Tongue" || bonus != 2 {
		t.Errorf("Experience(silver tongue) = %q, %d, %v", name, bonus, ok)
	}
	if _, _, ok := pc.Experience("Blacksmith"); ok {
		t.Error("expected unknown experience to miss")
	}

	names := pc.ExperienceNames()
	if len(names) != 2 || names[0] != "Sailor's Instincts" {
		t.Errorf("ExperienceNames() = %v", names)
	}
}

func TestPlayerCharacter_Clone(t *testing.T) {
	pc := testPC()
	pc.Conditions = []string{"Vulnerable"}

	c := pc.Clone()
	c.Conditions[0] = "Hidden"
	*c.SevereThreshold = 99
	c.Experiences["Silver Tongue"] = 5

	if pc.Conditions[0] != "Vulnerable" {
		t.Error("clone shares conditions")
	}
	if *pc.SevereThreshold != 20 {
		t.Error("clone shares severe threshold")
	}
	if pc.Experiences["Silver Tongue"] != 2 {
		t.Error("clone shares experiences")
	}
}

func TestVitals_Conditions(t *testing.T) {
	v := &Vitals{HP: 1, HPMax: 1}

	if !v.AddCondition("Restrained") {
		t.Error("first add should report true")
	}
	if v.AddCondition("Restrained") {
		t.Error("second add should report false")
	}
	if len(v.Conditions) != 1 {
		t.Errorf("expected 1 condition, got %v", v.Conditions)
	}
	if !v.RemoveCondition("Restrained") {
		t.Error("remove should report true")
	}
	if v.RemoveCondition("Restrained") {
		t.Error("second remove should report false")
	}
}

func TestPlayerCharacter_Summary(t *testing.T) {
	pc := testPC()
	pc.Conditions = []string{"Vulnerable"}
	want := "Marlowe Fairwind  HP 6/6  Stress 0/6  Hope 2/6  Armor 3/3  [Vulnerable]"
	if got := pc.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
