package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/house-engine/pkg/game"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// SavedGameMeta is a list entry for the saved-games screen, ordered by
// most recently updated.
type SavedGameMeta struct {
	ID          uuid.UUID  `json:"id"`
	Mode        game.Mode  `json:"mode"`
	Week        int        `json:"week"`
	Phase       game.Phase `json:"phase"`
	PlayerCount int        `json:"player_count"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Storage defines the interface for game state persistence.
type Storage interface {
	HealthChecker
	Closer

	// SaveGame saves a game state keyed by its ID.
	SaveGame(ctx context.Context, gs *game.GameState) error

	// LoadGame retrieves a game state by ID.
	// Returns nil if the game doesn't exist.
	LoadGame(ctx context.Context, id uuid.UUID) (*game.GameState, error)

	// DeleteGame removes a game state by ID.
	DeleteGame(ctx context.Context, id uuid.UUID) error

	// ListGames returns saved game metadata, most recently updated first.
	ListGames(ctx context.Context) ([]SavedGameMeta, error)
}
