package state

import (
	"encoding/json"
	"fmt"

	"github.com/qui-ball/virtualGM/pkg/actor"
)

// PromptState is the game state view serialized into the model's context.
// Adversaries are listed in id order so the serialization is stable.
type PromptState struct {
	FearPool    int                    `json:"fear_pool"`
	PC          *actor.PlayerCharacter `json:"pc"`
	Adversaries []*actor.Adversary     `json:"adversaries"`
	Countdowns  map[string]int         `json:"countdowns"`
}

func ToPromptState(gs *GameState) *PromptState {
	ps := &PromptState{
		FearPool:    gs.FearPool,
		PC:          gs.PC,
		Adversaries: make([]*actor.Adversary, 0, len(gs.Adversaries)),
		Countdowns:  gs.Countdowns,
	}
	for _, id := range gs.AdversaryIDs() {
		ps.Adversaries = append(ps.Adversaries, gs.Adversaries[id])
	}
	if ps.Countdowns == nil {
		ps.Countdowns = map[string]int{}
	}
	return ps
}

// Snapshot returns the prompt state as indented JSON.
func (gs *GameState) Snapshot() (string, error) {
	data, err := json.MarshalIndent(ToPromptState(gs), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal game state: %w", err)
	}
	return string(data), nil
}
