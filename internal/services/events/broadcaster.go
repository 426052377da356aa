package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/qui-ball/virtualGM/pkg/turn"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeSessionStarted EventType = "session.started"
	EventTypePhaseChanged   EventType = "turn.phase_changed"
	EventTypeToolDispatched EventType = "turn.tool_dispatched"
	EventTypeTurnCompleted  EventType = "turn.completed"
	EventTypeTurnFailed     EventType = "turn.failed"
)

// ChannelPrefix prefixes the per-session Pub/Sub channel.
const ChannelPrefix = "virtualgm-events:"

// Event represents a generic event structure
type Event struct {
	Type   EventType      `json:"type"`
	GameID string         `json:"game_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// Broadcaster publishes session events to Redis Pub/Sub
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// Ensure Broadcaster can serve as the orchestrator's event sink
var _ turn.EventSink = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel returns the channel name for a session.
func Channel(gameID uuid.UUID) string {
	return ChannelPrefix + gameID.String()
}

// PublishSessionStarted publishes a session.started event
func (b *Broadcaster) PublishSessionStarted(ctx context.Context, gameID uuid.UUID, pcName string, flow string) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeSessionStarted,
		GameID: gameID.String(),
		Data: map[string]any{
			"pc":              pcName,
			"experience_flow": flow,
		},
	})
}

// PublishPhaseChanged publishes a turn.phase_changed event
func (b *Broadcaster) PublishPhaseChanged(ctx context.Context, gameID uuid.UUID, from, to string) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypePhaseChanged,
		GameID: gameID.String(),
		Data: map[string]any{
			"from": from,
			"to":   to,
		},
	})
}

// PublishToolDispatched publishes a turn.tool_dispatched event
func (b *Broadcaster) PublishToolDispatched(ctx context.Context, gameID uuid.UUID, tool, callID, kind string) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeToolDispatched,
		GameID: gameID.String(),
		Data: map[string]any{
			"tool":    tool,
			"call_id": callID,
			"kind":    kind,
		},
	})
}

// PublishTurnCompleted publishes a turn.completed event
func (b *Broadcaster) PublishTurnCompleted(ctx context.Context, gameID uuid.UUID, rounds int) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeTurnCompleted,
		GameID: gameID.String(),
		Data: map[string]any{
			"status": "completed",
			"rounds": rounds,
		},
	})
}

// PublishTurnFailed publishes a turn.failed event
func (b *Broadcaster) PublishTurnFailed(ctx context.Context, gameID uuid.UUID, errorMsg string) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeTurnFailed,
		GameID: gameID.String(),
		Data: map[string]any{
			"status": "failed",
			"error":  errorMsg,
		},
	})
}

// publishToGame publishes an event to the session channel
func (b *Broadcaster) publishToGame(ctx context.Context, gameID uuid.UUID, event Event) error {
	channel := Channel(gameID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}
