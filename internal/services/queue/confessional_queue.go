package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const confessionalQueueKey = "confessionals:pending"

// ConfessionalRequest asks the worker to generate one diary-room
// confessional for an AI houseguest after a phase event.
type ConfessionalRequest struct {
	RequestID string    `json:"request_id"`
	GameID    uuid.UUID `json:"game_id"`
	PlayerID  string    `json:"player_id"`
	Phase     string    `json:"phase"`
	Prompt    string    `json:"prompt"`
	QueuedAt  time.Time `json:"queued_at"`
}

// ConfessionalQueue is a Redis list of pending confessional requests,
// shared by the API (producer) and the worker (consumer).
type ConfessionalQueue struct {
	client *Client
}

// NewConfessionalQueue creates a queue over the given client.
func NewConfessionalQueue(client *Client) *ConfessionalQueue {
	return &ConfessionalQueue{client: client}
}

// Enqueue adds a confessional request to the end of the queue.
func (q *ConfessionalQueue) Enqueue(ctx context.Context, req ConfessionalRequest) error {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	if req.QueuedAt.IsZero() {
		req.QueuedAt = time.Now()
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal confessional request: %w", err)
	}
	if err := q.client.rdb.RPush(ctx, confessionalQueueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue confessional request: %w", err)
	}
	return nil
}

// BlockingDequeue pops the next request, blocking up to timeout.
// Returns nil when the queue stays empty (a normal condition).
func (q *ConfessionalQueue) BlockingDequeue(ctx context.Context, timeout time.Duration) (*ConfessionalRequest, error) {
	res, err := q.client.rdb.BLPop(ctx, timeout, confessionalQueueKey).Result()
	if err != nil {
		if err == redis.Nil || ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue confessional request: %w", err)
	}
	// BLPop returns [key, value].
	if len(res) != 2 {
		return nil, nil
	}
	var req ConfessionalRequest
	if err := json.Unmarshal([]byte(res[1]), &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal confessional request: %w", err)
	}
	return &req, nil
}

// Depth returns the number of pending requests.
func (q *ConfessionalQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, confessionalQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}

// Clear removes all pending requests.
func (q *ConfessionalQueue) Clear(ctx context.Context) error {
	if err := q.client.rdb.Del(ctx, confessionalQueueKey).Err(); err != nil {
		return fmt.Errorf("failed to clear confessional queue: %w", err)
	}
	return nil
}
