package actor

import (
	"strings"
	"testing"
)

func TestDefaultSheet(t *testing.T) {
	pc, err := DefaultSheet()
	if err != nil {
		t.Fatalf("DefaultSheet() failed: %v", err)
	}
	if pc.Name != "Marlowe Fairwind" {
		t.Errorf("unexpected name %q", pc.Name)
	}
	if pc.HP != pc.HPMax {
		t.Errorf("expected full HP, got %d/%d", pc.HP, pc.HPMax)
	}
	if pc.MinorThreshold != 7 || pc.MajorThreshold != 14 {
		t.Errorf("unexpected thresholds %d/%d", pc.MinorThreshold, pc.MajorThreshold)
	}
	if pc.SevereThreshold == nil || *pc.SevereThreshold != 20 {
		t.Errorf("unexpected severe threshold %v", pc.SevereThreshold)
	}
	if len(pc.Experiences) == 0 {
		t.Error("expected experiences")
	}
}

func TestLoadSheet(t *testing.T) {
	t.Run("explicit hp is kept", func(t *testing.T) {
		pc, err := LoadSheet([]byte("name: Ash\nhp: 2\nhp_max: 5\n"))
		if err != nil {
			t.Fatal(err)
		}
		if pc.HP != 2 {
			t.Errorf("expected HP 2, got %d", pc.HP)
		}
	})

	t.Run("invalid sheet", func(t *testing.T) {
		_, err := LoadSheet([]byte("name: Ash\nhp_max: 5\nhope: 9\n"))
		if err == nil || !strings.Contains(err.Error(), "hope") {
			t.Errorf("expected hope validation error, got %v", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		if _, err := LoadSheet([]byte("name: [")); err == nil {
			t.Error("expected parse error")
		}
	})
}
