package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBroadcaster(t *testing.T) (*Broadcaster, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := Connect(context.Background(), mr.Addr(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewBroadcaster(client, logger), client
}

func receive(t *testing.T, sub *redis.PubSub) Event {
	t.Helper()
	select {
	case msg := <-sub.Channel():
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBroadcaster_PublishesToSessionChannel(t *testing.T) {
	b, client := setupBroadcaster(t)
	ctx := context.Background()
	gameID := uuid.New()

	sub := client.Subscribe(ctx, Channel(gameID))
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, b.PublishSessionStarted(ctx, gameID, "Marlowe Fairwind", "approve_first"))
	require.NoError(t, b.PublishPhaseChanged(ctx, gameID, "awaiting_player_input", "model_turn_active"))
	require.NoError(t, b.PublishToolDispatched(ctx, gameID, "player_roll_dice", "call_1", "deferred"))
	require.NoError(t, b.PublishTurnCompleted(ctx, gameID, 2))
	require.NoError(t, b.PublishTurnFailed(ctx, gameID, "model call failed"))

	ev := receive(t, sub)
	assert.Equal(t, EventTypeSessionStarted, ev.Type)
	assert.Equal(t, gameID.String(), ev.GameID)
	assert.Equal(t, "Marlowe Fairwind", ev.Data["pc"])

	ev = receive(t, sub)
	assert.Equal(t, EventTypePhaseChanged, ev.Type)
	assert.Equal(t, "model_turn_active", ev.Data["to"])

	ev = receive(t, sub)
	assert.Equal(t, EventTypeToolDispatched, ev.Type)
	assert.Equal(t, "deferred", ev.Data["kind"])

	ev = receive(t, sub)
	assert.Equal(t, EventTypeTurnCompleted, ev.Type)
	assert.Equal(t, float64(2), ev.Data["rounds"])

	ev = receive(t, sub)
	assert.Equal(t, EventTypeTurnFailed, ev.Type)
	assert.Equal(t, "model call failed", ev.Data["error"])
}

func TestBroadcaster_PublishFailsWhenClosed(t *testing.T) {
	b, client := setupBroadcaster(t)
	require.NoError(t, client.Close())

	err := b.PublishTurnCompleted(context.Background(), uuid.New(), 1)
	assert.Error(t, err)
}

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		in       string
		wantAddr string
		wantErr  bool
	}{
		{"localhost:6379", "localhost:6379", false},
		{"redis://cache:6380/2", "cache:6380", false},
		{"", "", true},
		{"http://nope", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			opts, err := parseRedisURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, opts.Addr)
		})
	}
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Connect(ctx, "127.0.0.1:1", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
