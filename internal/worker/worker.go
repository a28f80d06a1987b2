package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/house-engine/internal/services/events"
	"github.com/jwebster45206/house-engine/internal/services/queue"
)

const (
	dequeueTimeout = 5 * time.Second
	gameLockTTL    = 30 * time.Second
)

// Worker consumes the confessional queue. Multiple workers may run;
// a per-game Redis lock keeps two workers from mutating the same game
// concurrently.
type Worker struct {
	id          string
	queue       *queue.ConfessionalQueue
	processor   *ConfessionalProcessor
	broadcaster *events.Broadcaster
	redisClient *redis.Client
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a worker. An empty workerID gets a generated one.
func New(q *queue.ConfessionalQueue, processor *ConfessionalProcessor, redisClient *redis.Client, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:          workerID,
		queue:       q,
		processor:   processor,
		broadcaster: events.NewBroadcaster(redisClient, log),
		redisClient: redisClient,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins processing requests from the queue. It returns only
// after Stop is called.
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.processNextRequest(); err != nil {
				w.log.Error("Error processing request", "error", err, "worker_id", w.id)
				// Continue processing even on error
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// processNextRequest pulls the next request from the queue and processes it
func (w *Worker) processNextRequest() error {
	ctx, cancel := context.WithTimeout(w.ctx, dequeueTimeout+time.Second)
	defer cancel()

	req, err := w.queue.BlockingDequeue(ctx, dequeueTimeout)
	if err != nil {
		return fmt.Errorf("failed to dequeue request: %w", err)
	}
	if req == nil {
		// Queue is empty or timeout occurred, which is normal.
		return nil
	}

	w.log.Info("Received confessional request",
		"worker_id", w.id,
		"request_id", req.RequestID,
		"game_id", req.GameID.String(),
		"player_id", req.PlayerID,
	)

	locked, err := w.acquireGameLock(req.GameID)
	if err != nil {
		return fmt.Errorf("failed to acquire game lock: %w", err)
	}
	if !locked {
		// Another worker holds this game. Re-queue and move on.
		w.log.Info("Game already locked, re-queueing request",
			"worker_id", w.id,
			"request_id", req.RequestID,
			"game_id", req.GameID.String(),
		)
		if err := w.queue.Enqueue(w.ctx, *req); err != nil {
			return fmt.Errorf("failed to re-queue request: %w", err)
		}
		return nil
	}
	defer w.releaseGameLock(req.GameID)

	return w.processRequest(req)
}

func (w *Worker) acquireGameLock(gameID uuid.UUID) (bool, error) {
	lockKey := fmt.Sprintf("game-lock:%s", gameID.String())
	return w.redisClient.SetNX(w.ctx, lockKey, w.id, gameLockTTL).Result()
}

func (w *Worker) releaseGameLock(gameID uuid.UUID) {
	lockKey := fmt.Sprintf("game-lock:%s", gameID.String())

	// Only delete if we own the lock
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)

	if err := script.Run(w.ctx, w.redisClient, []string{lockKey}, w.id).Err(); err != nil {
		w.log.Error("Failed to release game lock", "error", err, "game_id", gameID.String())
	}
}

func (w *Worker) processRequest(req *queue.ConfessionalRequest) error {
	start := time.Now()

	text, err := w.processor.Process(w.ctx, req)
	if err != nil {
		w.log.Error("Confessional processing failed",
			"worker_id", w.id,
			"request_id", req.RequestID,
			"error", err,
		)
		w.broadcaster.Publish(w.ctx, req.GameID, events.Event{
			Type: events.EventTypeConfessionalFailed,
			Data: map[string]interface{}{
				"request_id": req.RequestID,
				"player_id":  req.PlayerID,
				"error":      err.Error(),
			},
		})
		return fmt.Errorf("failed to process confessional: %w", err)
	}

	w.log.Info("Confessional processed",
		"worker_id", w.id,
		"request_id", req.RequestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	w.broadcaster.Publish(w.ctx, req.GameID, events.Event{
		Type: events.EventTypeConfessionalGenerated,
		Data: map[string]interface{}{
			"request_id":  req.RequestID,
			"player_id":   req.PlayerID,
			"phase":       req.Phase,
			"text":        text,
			"duration_ms": time.Since(start).Milliseconds(),
		},
	})
	return nil
}
