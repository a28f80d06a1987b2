package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/house-engine/pkg/game"
)

// MockStorage is an in-memory Storage implementation for testing.
// States are round-tripped through JSON so tests see the same copy
// semantics as the Redis implementation.
type MockStorage struct {
	mu    sync.Mutex
	games map[uuid.UUID][]byte

	// Overridable failure hooks.
	SaveGameFunc   func(ctx context.Context, gs *game.GameState) error
	LoadGameFunc   func(ctx context.Context, id uuid.UUID) (*game.GameState, error)
	DeleteGameFunc func(ctx context.Context, id uuid.UUID) error
	ListGamesFunc  func(ctx context.Context) ([]SavedGameMeta, error)
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates an empty in-memory store.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		games: make(map[uuid.UUID][]byte),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }
func (m *MockStorage) Close() error                   { return nil }

func (m *MockStorage) SaveGame(ctx context.Context, gs *game.GameState) error {
	if m.SaveGameFunc != nil {
		return m.SaveGameFunc(ctx, gs)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	gs.UpdatedAt = time.Now()
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}
	m.games[gs.ID] = data
	return nil
}

func (m *MockStorage) LoadGame(ctx context.Context, id uuid.UUID) (*game.GameState, error) {
	if m.LoadGameFunc != nil {
		return m.LoadGameFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	var gs game.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	return &gs, nil
}

func (m *MockStorage) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if m.DeleteGameFunc != nil {
		return m.DeleteGameFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

func (m *MockStorage) ListGames(ctx context.Context) ([]SavedGameMeta, error) {
	if m.ListGamesFunc != nil {
		return m.ListGamesFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	metas := make([]SavedGameMeta, 0, len(m.games))
	for id, data := range m.games {
		var gs game.GameState
		if err := json.Unmarshal(data, &gs); err != nil {
			return nil, err
		}
		metas = append(metas, SavedGameMeta{
			ID:          id,
			Mode:        gs.Mode,
			Week:        gs.Week,
			Phase:       gs.Phase,
			PlayerCount: len(gs.Roster.Players),
			UpdatedAt:   gs.UpdatedAt,
		})
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}
