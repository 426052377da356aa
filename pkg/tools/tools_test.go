package tools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qui-ball/virtualGM/pkg/actor"
	"github.com/qui-ball/virtualGM/pkg/chat"
	"github.com/qui-ball/virtualGM/pkg/dice"
	"github.com/qui-ball/virtualGM/pkg/state"
)

func newTestEnv(t *testing.T, flow ExperienceFlow, answers ...string) (*Registry, *Env, *MockPlayer) {
	t.Helper()
	pc, err := actor.DefaultSheet()
	require.NoError(t, err)
	pc.ArmorSlots = 0

	reg, err := NewRegistry(flow)
	require.NoError(t, err)

	player := NewMockPlayer(answers...)
	env := &Env{
		Game:   state.NewGameState(pc, state.StartingFearPerPC),
		Player: player,
		Roller: dice.NewSeededRoller(42),
		Flow:   flow,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return reg, env, player
}

func call(name, args string) chat.ToolCall {
	return chat.ToolCall{ID: "call_" + name, Name: name, Arguments: json.RawMessage(args)}
}

func dispatch(t *testing.T, reg *Registry, env *Env, name, args string) Outcome {
	t.Helper()
	out, err := reg.Dispatch(context.Background(), env, call(name, args))
	require.NoError(t, err)
	return out
}

func resolve(t *testing.T, reg *Registry, env *Env, name, args string) string {
	t.Helper()
	out := dispatch(t, reg, env, name, args)
	require.Equal(t, KindDeferred, out.Kind, "result: %s", out.Result)
	res, err := reg.Resolve(context.Background(), env, out.Request)
	require.NoError(t, err)
	return res
}

func TestNewRegistry(t *testing.T) {
	names := func(r *Registry) []string {
		var out []string
		for _, s := range r.Specs() {
			out = append(out, s.Name)
		}
		return out
	}

	approve, err := NewRegistry(FlowApproveFirst)
	require.NoError(t, err)
	assert.Contains(t, names(approve), ToolPlayerProposeAction)
	assert.Contains(t, names(approve), ToolPlayerRollDice)

	provisional, err := NewRegistry(FlowProvisional)
	require.NoError(t, err)
	assert.NotContains(t, names(provisional), ToolPlayerProposeAction)
	assert.Contains(t, names(provisional), ToolPlayerRollDice)

	_, err = NewRegistry("sometimes")
	assert.Error(t, err)

	for _, s := range approve.Specs() {
		var schema map[string]any
		require.NoError(t, json.Unmarshal(s.Parameters, &schema), s.Name)
		assert.Equal(t, "object", schema["type"], s.Name)
		assert.NotEmpty(t, s.Description, s.Name)
	}

	roll, _ := approve.Lookup(ToolPlayerRollDice)
	assert.Contains(t, string(roll.Spec().Parameters), "experience")
	roll, _ = provisional.Lookup(ToolPlayerRollDice)
	assert.NotContains(t, string(roll.Spec().Parameters), "experience")
}

func TestDispatch_Immediate(t *testing.T) {
	t.Run("narrate and declare reach the player", func(t *testing.T) {
		reg, env, player := newTestEnv(t, FlowApproveFirst)
		out := dispatch(t, reg, env, ToolNarrate, `{"text":"The trees hum."}`)
		assert.Equal(t, KindImmediate, out.Kind)
		dispatch(t, reg, env, ToolDeclare, `{"text":"The goblin attacks."}`)
		assert.Equal(t, []string{"The trees hum."}, player.Narrations)
		assert.Equal(t, []string{"The goblin attacks."}, player.Declarations)
	})

	t.Run("roll_dice rejects the duality roll", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst)
		out := dispatch(t, reg, env, ToolRollDice, `{"count":2,"die":"d12"}`)
		assert.True(t, strings.HasPrefix(out.Result, "ERROR (WrongPath)"), out.Result)
	})

	t.Run("roll_dice rolls other dice", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst)
		out := dispatch(t, reg, env, ToolRollDice, `{"count":1,"die":"d20","modifier":3,"reason":"goblin attack"}`)
		assert.True(t, strings.HasPrefix(out.Result, "GM rolled 1d20 ["), out.Result)
		assert.Contains(t, out.Result, "goblin attack")
	})

	t.Run("roll_dice rejects unsupported dice", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst)
		out := dispatch(t, reg, env, ToolRollDice, `{"count":1,"die":"d7"}`)
		assert.True(t, strings.HasPrefix(out.Result, "ERROR (ValidationError)"), out.Result)
	})

	t.Run("unknown tool", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst)
		out := dispatch(t, reg, env, "summon_dragon", `{}`)
		assert.True(t, strings.HasPrefix(out.Result, "ERROR (NotFound)"), out.Result)
	})

	t.Run("malformed arguments", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst)
		out := dispatch(t, reg, env, ToolSpendFear, `{"amount":"lots"}`)
		assert.True(t, strings.HasPrefix(out.Result, "ERROR (ValidationError)"), out.Result)
	})

	t.Run("spend_fear shortfall", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst)
		out := dispatch(t, reg, env, ToolSpendFear, `{"amount":3}`)
		assert.Contains(t, out.Result, "short by 2")
		assert.Equal(t, 1, env.Game.FearPool)

		out = dispatch(t, reg, env, ToolSpendFear, `{"amount":1,"reason":"spotlight the goblin"}`)
		assert.Equal(t, "Spent 1 Fear (spotlight the goblin). Fear pool: 0.", out.Result)
	})

	t.Run("duplicate adversary leaves the first unchanged", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst)
		out := dispatch(t, reg, env, ToolCreateAdversary, `{"id":"Goblin 1","hp_max":3,"difficulty":11}`)
		assert.Contains(t, out.Result, `Created adversary "Goblin 1"`)
		out = dispatch(t, reg, env, ToolCreateAdversary, `{"id":"Goblin 1","hp_max":8}`)
		assert.True(t, strings.HasPrefix(out.Result, "ERROR (DuplicateEntity)"), out.Result)
		g, _ := env.Game.Adversary("Goblin 1")
		assert.Equal(t, 3, g.HPMax)

		out = dispatch(t, reg, env, ToolRemoveAdversary, `{"id":"Goblin 1"}`)
		assert.Equal(t, `Removed adversary "Goblin 1".`, out.Result)
	})

	t.Run("countdown lifecycle", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst)
		dispatch(t, reg, env, ToolCreateCountdown, `{"name":"Ritual","initial_value":2}`)
		out := dispatch(t, reg, env, ToolUpdateCountdown, `{"name":"Ritual","delta":-2}`)
		assert.Contains(t, out.Result, "REACHED 0")
		out = dispatch(t, reg, env, ToolUpdateCountdown, `{"name":"Ritual","delta":-1}`)
		assert.Contains(t, out.Result, "stays at 0")
		assert.Equal(t, 0, env.Game.Countdowns["Ritual"])
		out = dispatch(t, reg, env, ToolUpdateCountdown, `{"name":"Flood","delta":-1}`)
		assert.True(t, strings.HasPrefix(out.Result, "ERROR (NotFound)"), out.Result)
		out = dispatch(t, reg, env, ToolRemoveCountdown, `{"name":"Ritual"}`)
		assert.Contains(t, out.Result, "removed")
	})

	t.Run("end_turn is terminal", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst)
		out := dispatch(t, reg, env, ToolEndTurn, `{"notes":" goblin fled north "}`)
		assert.Equal(t, KindTerminal, out.Kind)
		assert.Equal(t, "goblin fled north", out.Notes)
	})
}

func TestDispatch_UpdateCharacterState(t *testing.T) {
	t.Run("pc damage must use player_take_damage", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst)
		out := dispatch(t, reg, env, ToolUpdateCharacterState, `{"target":"pc","hp":-2}`)
		assert.True(t, strings.HasPrefix(out.Result, "ERROR (WrongPath)"), out.Result)
		assert.Contains(t, out.Result, ToolPlayerTakeDamage)
		assert.Equal(t, 6, env.Game.PC.HP)
	})

	t.Run("empty delta is an explained no-op", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst)
		out := dispatch(t, reg, env, ToolUpdateCharacterState, `{"target":"pc"}`)
		assert.Contains(t, out.Result, "No changes requested for Marlowe Fairwind")
	})

	t.Run("unknown target", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst)
		out := dispatch(t, reg, env, ToolUpdateCharacterState, `{"target":"Goblin 7","stress":1}`)
		assert.True(t, strings.HasPrefix(out.Result, "ERROR (NotFound)"), out.Result)
	})

	t.Run("hope on adversary", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst)
		dispatch(t, reg, env, ToolCreateAdversary, `{"id":"Goblin 1","hp_max":3}`)
		out := dispatch(t, reg, env, ToolUpdateCharacterState, `{"target":"Goblin 1","hope":1}`)
		assert.True(t, strings.HasPrefix(out.Result, "ERROR (InvalidOperation)"), out.Result)
	})

	t.Run("adversary brought to 0 HP is reported defeated", func(t *testing.T) {
		reg, env, player := newTestEnv(t, FlowApproveFirst)
		dispatch(t, reg, env, ToolCreateAdversary, `{"id":"Goblin 1","hp_max":3}`)

		out := dispatch(t, reg, env, ToolUpdateCharacterState, `{"target":"Goblin 1","hp":-1}`)
		assert.NotContains(t, out.Result, "defeated")

		out = dispatch(t, reg, env, ToolUpdateCharacterState, `{"target":"Goblin 1","hp":-5}`)
		assert.Contains(t, out.Result, "Goblin 1 is defeated (0 HP)")
		assert.Contains(t, out.Result, ToolRemoveAdversary)
		assert.Empty(t, player.Notices)
	})

	t.Run("pc changes are shown to the player", func(t *testing.T) {
		reg, env, player := newTestEnv(t, FlowApproveFirst)
		out := dispatch(t, reg, env, ToolUpdateCharacterState, `{"target":"pc","stress":1,"add_conditions":["Vulnerable"]}`)
		assert.Contains(t, out.Result, "Stress 0 -> 1/6")
		assert.Len(t, player.Notices, 2)
		assert.True(t, env.Game.PC.HasCondition("Vulnerable"))
	})
}

func TestDispatch_DeferredDoesNotExecute(t *testing.T) {
	reg, env, player := newTestEnv(t, FlowApproveFirst)

	out := dispatch(t, reg, env, ToolPlayerTakeDamage, `{"damage":4}`)
	assert.Equal(t, KindDeferred, out.Kind)
	assert.Equal(t, 6, env.Game.PC.HP)
	assert.Empty(t, player.Prompts)

	out = dispatch(t, reg, env, ToolPlayerTakeDamage, `{"damage":-4}`)
	assert.Equal(t, KindImmediate, out.Kind)
	assert.True(t, strings.HasPrefix(out.Result, "ERROR (ValidationError)"), out.Result)

	out = dispatch(t, reg, env, ToolPlayerRollDice, `{"action":"climb","experience":"Blacksmith"}`)
	assert.Equal(t, KindImmediate, out.Kind)
	assert.Contains(t, out.Result, "Blacksmith")
}

func TestPlayerTakeDamage(t *testing.T) {
	t.Run("below minor without armor", func(t *testing.T) {
		reg, env, player := newTestEnv(t, FlowApproveFirst)
		res := resolve(t, reg, env, ToolPlayerTakeDamage, `{"damage":4,"source":"goblin dagger"}`)
		assert.Equal(t, 5, env.Game.PC.HP)
		assert.Empty(t, player.Prompts, "no armor means no armor prompt")
		assert.Contains(t, res, "below minor band")
		assert.Contains(t, player.Declarations[0], "goblin dagger")
	})

	t.Run("armor accepted", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst, "y")
		env.Game.PC.ArmorSlots = 1
		res := resolve(t, reg, env, ToolPlayerTakeDamage, `{"damage":4}`)
		assert.Equal(t, 6, env.Game.PC.HP)
		assert.Equal(t, 0, env.Game.PC.ArmorSlots)
		assert.Contains(t, res, "1 armor slot used")
	})

	t.Run("bad answer is asked again", func(t *testing.T) {
		reg, env, player := newTestEnv(t, FlowApproveFirst, "maybe", "NO")
		env.Game.PC.ArmorSlots = 2
		resolve(t, reg, env, ToolPlayerTakeDamage, `{"damage":14}`)
		assert.Len(t, player.Prompts, 2)
		assert.Equal(t, 4, env.Game.PC.HP)
		assert.Equal(t, 2, env.Game.PC.ArmorSlots)
	})

	t.Run("input closed mid-resolution is fatal", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst)
		env.Game.PC.ArmorSlots = 1
		out := dispatch(t, reg, env, ToolPlayerTakeDamage, `{"damage":4}`)
		_, err := reg.Resolve(context.Background(), env, out.Request)
		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestPlayerRollDice(t *testing.T) {
	t.Run("manual entry with fear gains fear", func(t *testing.T) {
		reg, env, player := newTestEnv(t, FlowApproveFirst, "m", "3", "7")
		res := resolve(t, reg, env, ToolPlayerRollDice, `{"action":"leap the gap","trait":"Agility","modifier":1,"difficulty":10}`)
		assert.Contains(t, res, "Hope die 3, Fear die 7")
		assert.Contains(t, res, "Success with Fear")
		assert.Equal(t, 2, env.Game.FearPool)
		assert.Contains(t, player.Declarations[0], "Roll 2d12 +1 (Agility) vs Difficulty 10")
	})

	t.Run("matching dice are a crit without fear", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst, "m", "5", "5")
		res := resolve(t, reg, env, ToolPlayerRollDice, `{"action":"pick the lock","difficulty":20}`)
		assert.Contains(t, res, "Critical Success")
		assert.Equal(t, 1, env.Game.FearPool)
		assert.Equal(t, 2, env.Game.PC.Hope, "hope is not awarded by the engine")
	})

	t.Run("bad manual die is asked again", func(t *testing.T) {
		reg, env, player := newTestEnv(t, FlowApproveFirst, "m", "13", "x", "4", "2")
		resolve(t, reg, env, ToolPlayerRollDice, `{"action":"sprint"}`)
		assert.Len(t, player.Prompts, 5)
	})

	t.Run("automatic roll", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst, "")
		res := resolve(t, reg, env, ToolPlayerRollDice, `{"action":"sprint"}`)
		assert.True(t, strings.HasPrefix(res, "ROLL RESULT"), res)
	})

	t.Run("negotiation makes no roll", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst, "I have a rope, this should be easier")
		res := resolve(t, reg, env, ToolPlayerRollDice, `{"action":"climb","difficulty":15}`)
		assert.True(t, strings.HasPrefix(res, "NEGOTIATION"), res)
		assert.Contains(t, res, "I have a rope")
		assert.Equal(t, 1, env.Game.FearPool)
		assert.Equal(t, 2, env.Game.PC.Hope)
	})

	t.Run("approved experience spends hope at roll time", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst, "m", "6", "4")
		res := resolve(t, reg, env, ToolPlayerRollDice, `{"action":"talk past the guard","modifier":2,"difficulty":13,"experience":"silver tongue"}`)
		assert.Equal(t, 1, env.Game.PC.Hope)
		assert.Contains(t, res, "Experience Silver Tongue +2")
		assert.Contains(t, res, "total 14")
	})

	t.Run("approved experience without hope gives no bonus", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowApproveFirst, "m", "6", "4")
		env.Game.PC.Hope = 0
		res := resolve(t, reg, env, ToolPlayerRollDice, `{"action":"talk past the guard","experience":"Silver Tongue"}`)
		assert.Equal(t, 0, env.Game.PC.Hope)
		assert.Contains(t, res, "no bonus was applied")
		assert.Contains(t, res, "total 10")
	})

	t.Run("provisional experience is collected at roll time", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowProvisional, "m", "Pirate", "sailor's instincts", "I've climbed rigging all my life", "4", "2")
		res := resolve(t, reg, env, ToolPlayerRollDice, `{"action":"climb the mast","difficulty":10}`)
		assert.Equal(t, 1, env.Game.PC.Hope)
		assert.Contains(t, res, "Experience Sailor's Instincts +2")
		assert.Contains(t, res, "refund the Hope with update_character_state")
	})

	t.Run("provisional roll may skip the experience", func(t *testing.T) {
		reg, env, _ := newTestEnv(t, FlowProvisional, "m", "", "4", "2")
		res := resolve(t, reg, env, ToolPlayerRollDice, `{"action":"climb the mast"}`)
		assert.Equal(t, 2, env.Game.PC.Hope)
		assert.NotContains(t, res, "Experience")
	})
}

func TestPlayerProposeAction(t *testing.T) {
	reg, env, player := newTestEnv(t, FlowApproveFirst, "", "I swing across on the rigging", "Sailor's Instincts", "I grew up on ships")
	res := resolve(t, reg, env, ToolPlayerProposeAction, `{"prompt":"The deck is on fire. What do you do?"}`)

	assert.Equal(t, []string{"The deck is on fire. What do you do?"}, player.Declarations)
	assert.Contains(t, res, "I swing across on the rigging")
	assert.Contains(t, res, "Proposed Experience: Sailor's Instincts (+2)")
	assert.Equal(t, 2, env.Game.PC.Hope, "proposal spends nothing")
	assert.Equal(t, 1, env.Game.FearPool, "proposal rolls nothing")
}
