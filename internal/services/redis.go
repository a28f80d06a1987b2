package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/house-engine/pkg/game"
)

const (
	gameKeyPrefix = "housegame:"
	gameIndexKey  = "housegame:index"
)

// RedisStorage implements the Storage interface using Redis. Game
// states are JSON blobs; a sorted set indexes them by last update for
// the saved-games list.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. redisURL is a
// full URL (redis://host:port), the same format the queue client takes.
func NewRedisStorage(redisURL string, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &RedisStorage{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

func gameKey(id uuid.UUID) string {
	return gameKeyPrefix + id.String()
}

func (r *RedisStorage) SaveGame(ctx context.Context, gs *game.GameState) error {
	gs.UpdatedAt = time.Now()

	data, err := json.Marshal(gs)
	if err != nil {
		r.logger.Error("Failed to marshal game state", "game_id", gs.ID, "error", err)
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	if err := r.client.Set(ctx, gameKey(gs.ID), string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save game state", "game_id", gs.ID, "error", err)
		return fmt.Errorf("failed to save game state: %w", err)
	}

	err = r.client.ZAdd(ctx, gameIndexKey, redis.Z{
		Score:  float64(gs.UpdatedAt.UnixMilli()),
		Member: gs.ID.String(),
	}).Err()
	if err != nil {
		r.logger.Error("Failed to index game state", "game_id", gs.ID, "error", err)
		return fmt.Errorf("failed to index game state: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadGame(ctx context.Context, id uuid.UUID) (*game.GameState, error) {
	cmd := r.client.Get(ctx, gameKey(id))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			r.logger.Warn("Game state not found", "game_id", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load game state", "game_id", id, "error", err)
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}

	var gs game.GameState
	if err := json.Unmarshal([]byte(cmd.Val()), &gs); err != nil {
		r.logger.Error("Failed to unmarshal game state", "game_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	return &gs, nil
}

func (r *RedisStorage) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, gameKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete game state", "game_id", id, "error", err)
		return fmt.Errorf("failed to delete game state: %w", err)
	}
	if err := r.client.ZRem(ctx, gameIndexKey, id.String()).Err(); err != nil {
		r.logger.Error("Failed to unindex game state", "game_id", id, "error", err)
		return fmt.Errorf("failed to unindex game state: %w", err)
	}
	return nil
}

func (r *RedisStorage) ListGames(ctx context.Context) ([]SavedGameMeta, error) {
	ids, err := r.client.ZRevRange(ctx, gameIndexKey, 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to list game states: %w", err)
	}

	metas := make([]SavedGameMeta, 0, len(ids))
	for _, idStr := range ids {
		id, err := uuid.Parse(idStr)
		if err != nil {
			r.logger.Warn("Skipping malformed game index entry", "member", idStr)
			continue
		}
		gs, err := r.LoadGame(ctx, id)
		if err != nil {
			return nil, err
		}
		if gs == nil {
			// Index entry outlived its blob; drop it.
			_ = r.client.ZRem(ctx, gameIndexKey, idStr).Err()
			continue
		}
		metas = append(metas, SavedGameMeta{
			ID:          gs.ID,
			Mode:        gs.Mode,
			Week:        gs.Week,
			Phase:       gs.Phase,
			PlayerCount: len(gs.Roster.Players),
			UpdatedAt:   gs.UpdatedAt,
		})
	}
	return metas, nil
}
