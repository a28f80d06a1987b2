package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypePhaseAdvanced         EventType = "phase.advanced"
	EventTypePlayerEvicted         EventType = "player.evicted"
	EventTypeGameStarted           EventType = "game.started"
	EventTypeGameEnded             EventType = "game.ended"
	EventTypeAutosaveFailed        EventType = "autosave.failed"
	EventTypeConfessionalGenerated EventType = "confessional.generated"
	EventTypeConfessionalFailed    EventType = "confessional.failed"
)

// Event is one fire-and-forget notification for UI sinks (toasts, chat
// feeds). Delivery is best-effort; game logic never depends on it.
type Event struct {
	Type   EventType              `json:"type"`
	GameID string                 `json:"game_id,omitempty"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// Broadcaster publishes events to Redis Pub/Sub for client distribution.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

func gameChannel(gameID uuid.UUID) string {
	return fmt.Sprintf("house-events:%s", gameID.String())
}

// Publish sends an event on the game's channel. Errors are logged and
// swallowed; broadcast is not allowed to affect gameplay.
func (b *Broadcaster) Publish(ctx context.Context, gameID uuid.UUID, event Event) {
	event.GameID = gameID.String()
	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "type", event.Type, "error", err)
		return
	}
	if err := b.redisClient.Publish(ctx, gameChannel(gameID), data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "type", event.Type, "game_id", gameID, "error", err)
	}
}

// PublishPhaseAdvanced announces a completed phase transition.
func (b *Broadcaster) PublishPhaseAdvanced(ctx context.Context, gameID uuid.UUID, week int, phase string, statusMessage string) {
	b.Publish(ctx, gameID, Event{
		Type: EventTypePhaseAdvanced,
		Data: map[string]interface{}{
			"week":           week,
			"phase":          phase,
			"status_message": statusMessage,
		},
	})
}

// PublishAutosaveFailed surfaces a failed autosave as a retryable toast.
func (b *Broadcaster) PublishAutosaveFailed(ctx context.Context, gameID uuid.UUID, cause string) {
	b.Publish(ctx, gameID, Event{
		Type: EventTypeAutosaveFailed,
		Data: map[string]interface{}{
			"message": "Autosave failed, your progress may not be saved",
			"cause":   cause,
			"retry":   true,
		},
	})
}

// Subscribe returns a channel of raw event payloads for a game. The
// caller owns the returned PubSub and must close it.
func (b *Broadcaster) Subscribe(ctx context.Context, gameID uuid.UUID) (*redis.PubSub, error) {
	ps := b.redisClient.Subscribe(ctx, gameChannel(gameID))
	if _, err := ps.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to game events: %w", err)
	}
	return ps, nil
}
