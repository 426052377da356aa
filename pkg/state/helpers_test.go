package state

import (
	"testing"

	"github.com/qui-ball/virtualGM/pkg/actor"
)

func newTestPC() *actor.PlayerCharacter {
	return &actor.PlayerCharacter{
		Vitals: actor.Vitals{
			HP: 6, HPMax: 6, StressMax: 6,
			MinorThreshold: 7, MajorThreshold: 14,
		},
		Name:          "Marlowe Fairwind",
		Hope:          2,
		ArmorSlots:    0,
		ArmorSlotsMax: 3,
		Evasion:       10,
	}
}

func newTestGame(t *testing.T) *GameState {
	t.Helper()
	gs := NewGameState(newTestPC(), StartingFearPerPC)
	if _, err := gs.CreateAdversary(actor.AdversarySpec{ID: "Goblin 1", HPMax: 3, StressMax: 2, Difficulty: 11}); err != nil {
		t.Fatalf("failed to create adversary: %v", err)
	}
	return gs
}
