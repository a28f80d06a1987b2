package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jwebster45206/house-engine/pkg/game"
)

// DefaultAutosaveInterval is how often a playing game is snapshotted in
// addition to phase-completion saves.
const DefaultAutosaveInterval = 5 * time.Minute

// Autosaver snapshots game state on an interval and on demand. Save
// failures are logged and reported through the optional failure hook
// (surfaced as a toast upstream); they never interrupt gameplay.
type Autosaver struct {
	storage  Storage
	logger   *slog.Logger
	interval time.Duration

	// OnFailure, when set, is notified of failed saves.
	OnFailure func(gs *game.GameState, err error)

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewAutosaver creates an autosaver with the given interval (zero means
// the 5-minute default).
func NewAutosaver(storage Storage, interval time.Duration, logger *slog.Logger) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{
		storage:  storage,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the interval loop. current returns the games to save on
// each tick, typically every playing session; an empty result skips the
// tick. Start is idempotent; a second call replaces the previous loop.
func (a *Autosaver) Start(ctx context.Context, current func() []*game.GameState) {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	ctx, a.cancel = context.WithCancel(ctx)
	a.mu.Unlock()

	go func() {
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, gs := range current() {
					a.SaveNow(ctx, gs)
				}
			}
		}
	}()
}

// Stop cancels the interval loop. Safe to call on every teardown path.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// SaveNow saves immediately, swallowing (but logging and reporting)
// failures.
func (a *Autosaver) SaveNow(ctx context.Context, gs *game.GameState) {
	if err := a.storage.SaveGame(ctx, gs); err != nil {
		a.logger.Error("Autosave failed", "game_id", gs.ID, "error", err)
		if a.OnFailure != nil {
			a.OnFailure(gs, err)
		}
		return
	}
	a.logger.Debug("Autosave complete", "game_id", gs.ID, "week", gs.Week, "phase", gs.Phase)
}
