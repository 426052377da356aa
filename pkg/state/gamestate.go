package state

import (
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/qui-ball/virtualGM/pkg/actor"
	"github.com/qui-ball/virtualGM/pkg/errs"
)

// StartingFearPerPC is the Fear the GM holds per player character at
// session start.
const StartingFearPerPC = 1

// GameState is the authoritative mechanical state of one session. It is
// owned by the turn orchestrator and handed to each tool call; it is not
// safe for concurrent use.
type GameState struct {
	ID          uuid.UUID                   `json:"id"`
	FearPool    int                         `json:"fear_pool"`
	PC          *actor.PlayerCharacter      `json:"pc"`
	Adversaries map[string]*actor.Adversary `json:"adversaries"`
	Countdowns  map[string]int              `json:"countdowns"`
}

// NewGameState creates a session around the given PC with the given
// starting Fear per PC.
func NewGameState(pc *actor.PlayerCharacter, fearPerPC int) *GameState {
	if fearPerPC < 0 {
		fearPerPC = 0
	}
	return &GameState{
		ID:          uuid.New(),
		FearPool:    fearPerPC,
		PC:          pc,
		Adversaries: make(map[string]*actor.Adversary),
		Countdowns:  make(map[string]int),
	}
}

// Clone returns a deep copy, used to roll back a failed turn.
func (gs *GameState) Clone() *GameState {
	out := &GameState{
		ID:          gs.ID,
		FearPool:    gs.FearPool,
		PC:          gs.PC.Clone(),
		Adversaries: make(map[string]*actor.Adversary, len(gs.Adversaries)),
		Countdowns:  maps.Clone(gs.Countdowns),
	}
	if out.Countdowns == nil {
		out.Countdowns = make(map[string]int)
	}
	for id, a := range gs.Adversaries {
		out.Adversaries[id] = a.Clone()
	}
	return out
}

// Restore replaces the contents of gs with those of snap.
func (gs *GameState) Restore(snap *GameState) {
	*gs = *snap.Clone()
}

// isPCTarget reports whether target names the player character.
func (gs *GameState) isPCTarget(target string) bool {
	t := strings.TrimSpace(target)
	if strings.EqualFold(t, "pc") || strings.EqualFold(t, "player") {
		return true
	}
	return gs.PC != nil && strings.EqualFold(t, gs.PC.Name)
}

// ResolveTarget finds a character by "pc", "player", the PC's name or an
// adversary id. Names and ids match case-insensitively.
func (gs *GameState) ResolveTarget(target string) (actor.Character, error) {
	if strings.TrimSpace(target) == "" {
		return nil, errs.Validation("target", "must not be empty")
	}
	if gs.isPCTarget(target) {
		if gs.PC == nil {
			return nil, errs.NotFound(target, "no player character in this session")
		}
		return gs.PC, nil
	}
	if a, ok := gs.Adversary(target); ok {
		return a, nil
	}
	return nil, errs.NotFound(target, "no character with that name or id; known targets: %s", strings.Join(gs.targetNames(), ", "))
}

func (gs *GameState) targetNames() []string {
	names := []string{"pc"}
	return append(names, gs.AdversaryIDs()...)
}

// Adversary looks up an adversary by id, ignoring case.
func (gs *GameState) Adversary(id string) (*actor.Adversary, bool) {
	key, ok := gs.adversaryKey(id)
	if !ok {
		return nil, false
	}
	return gs.Adversaries[key], true
}

func (gs *GameState) adversaryKey(id string) (string, bool) {
	id = strings.TrimSpace(id)
	if _, ok := gs.Adversaries[id]; ok {
		return id, true
	}
	for k := range gs.Adversaries {
		if strings.EqualFold(k, id) {
			return k, true
		}
	}
	return "", false
}

// AdversaryIDs returns adversary ids in sorted order.
func (gs *GameState) AdversaryIDs() []string {
	return slices.Sorted(maps.Keys(gs.Adversaries))
}

// CreateAdversary adds a new adversary. The id must not collide with an
// existing adversary or with a name that resolves to the PC.
func (gs *GameState) CreateAdversary(spec actor.AdversarySpec) (*actor.Adversary, error) {
	a, err := actor.NewAdversary(spec)
	if err != nil {
		return nil, err
	}
	if _, exists := gs.adversaryKey(a.ID); exists {
		return nil, errs.Duplicate(a.ID, "an adversary with this id already exists")
	}
	if gs.isPCTarget(a.ID) {
		return nil, errs.Duplicate(a.ID, "id is reserved for the player character")
	}
	if gs.Adversaries == nil {
		gs.Adversaries = make(map[string]*actor.Adversary)
	}
	gs.Adversaries[a.ID] = a
	return a, nil
}

// RemoveAdversary deletes an adversary and returns it.
func (gs *GameState) RemoveAdversary(id string) (*actor.Adversary, error) {
	key, ok := gs.adversaryKey(id)
	if !ok {
		return nil, errs.NotFound(id, "no adversary with that id")
	}
	a := gs.Adversaries[key]
	delete(gs.Adversaries, key)
	return a, nil
}

// ApplyDelta resolves target and applies d to it. Negative HP on the PC
// is rejected; PC damage goes through the damage-intake protocol.
func (gs *GameState) ApplyDelta(target string, d *CharacterStateDelta, logger *slog.Logger) ([]string, error) {
	c, err := gs.ResolveTarget(target)
	if err != nil {
		return nil, err
	}
	if _, isPC := c.(*actor.PlayerCharacter); isPC && d != nil && d.HP < 0 {
		return nil, errs.WrongPath("hp", "damage to %s must use player_take_damage so the player can choose whether to mark an armor slot", c.DisplayName())
	}
	return NewDeltaWorker(c, d, logger).Apply()
}
