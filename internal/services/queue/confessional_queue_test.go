package queue

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	redisURL := "redis://" + mr.Addr()

	client, err := NewClient(redisURL, logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create queue client: %v", err)
	}

	return client, mr
}

func TestConfessionalQueue_EnqueueAndDequeue(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewConfessionalQueue(client)
	ctx := context.Background()
	gameID := uuid.New()

	requests := []ConfessionalRequest{
		{GameID: gameID, PlayerID: "ai-1", Phase: "eviction", Prompt: "React to the eviction"},
		{GameID: gameID, PlayerID: "ai-2", Phase: "eviction", Prompt: "React to the eviction"},
	}
	for _, req := range requests {
		if err := q.Enqueue(ctx, req); err != nil {
			t.Fatalf("Failed to enqueue: %v", err)
		}
	}

	depth, err := q.Depth(ctx)
	if err != nil {
		t.Fatalf("Failed to get depth: %v", err)
	}
	if depth != len(requests) {
		t.Errorf("Expected depth %d, got %d", len(requests), depth)
	}

	// FIFO order, with defaults filled in.
	for _, want := range requests {
		got, err := q.BlockingDequeue(ctx, time.Second)
		if err != nil {
			t.Fatalf("Failed to dequeue: %v", err)
		}
		if got == nil {
			t.Fatal("Expected a request, got nil")
		}
		if got.PlayerID != want.PlayerID {
			t.Errorf("Expected player %s, got %s", want.PlayerID, got.PlayerID)
		}
		if got.GameID != gameID {
			t.Errorf("Expected game %s, got %s", gameID, got.GameID)
		}
		if got.RequestID == "" {
			t.Error("Expected a generated request ID")
		}
		if got.QueuedAt.IsZero() {
			t.Error("Expected a queued-at timestamp")
		}
	}

	depth, _ = q.Depth(ctx)
	if depth != 0 {
		t.Errorf("Expected empty queue, got depth %d", depth)
	}
}

func TestConfessionalQueue_DequeueEmpty(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewConfessionalQueue(client)

	got, err := q.BlockingDequeue(context.Background(), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Empty dequeue should not error: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil from an empty queue, got %+v", got)
	}
}

func TestConfessionalQueue_Clear(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewConfessionalQueue(client)
	ctx := context.Background()

	q.Enqueue(ctx, ConfessionalRequest{GameID: uuid.New(), PlayerID: "ai-1"})
	q.Enqueue(ctx, ConfessionalRequest{GameID: uuid.New(), PlayerID: "ai-2"})

	if err := q.Clear(ctx); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}

	depth, _ := q.Depth(ctx)
	if depth != 0 {
		t.Errorf("Expected empty queue after clear, got depth %d", depth)
	}
}
