package turn

// Phase is the orchestrator's position in the turn cycle.
type Phase int

const (
	PhaseAwaitingPlayerInput Phase = iota
	PhaseModelTurnActive
	PhaseToolExecuting
	PhaseSuspended
	PhaseTurnComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingPlayerInput:
		return "awaiting_player_input"
	case PhaseModelTurnActive:
		return "model_turn_active"
	case PhaseToolExecuting:
		return "tool_executing"
	case PhaseSuspended:
		return "suspended"
	case PhaseTurnComplete:
		return "turn_complete"
	default:
		return "unknown"
	}
}
