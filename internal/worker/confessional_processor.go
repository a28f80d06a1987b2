package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/house-engine/internal/director"
	"github.com/jwebster45206/house-engine/internal/services"
	"github.com/jwebster45206/house-engine/internal/services/queue"
	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/house"
)

// ConfessionalProcessor turns one queued confessional request into
// diary-room dialogue, records it as a memory on the player, and
// persists the updated game. Generation goes through the decision
// engine, which supplies the character profile, the player's freshest
// memories, and the per-request timeout.
type ConfessionalProcessor struct {
	storage  services.Storage
	director *director.Engine
	logger   *slog.Logger
}

// NewConfessionalProcessor creates a processor.
func NewConfessionalProcessor(storage services.Storage, dir *director.Engine, logger *slog.Logger) *ConfessionalProcessor {
	return &ConfessionalProcessor{
		storage:  storage,
		director: dir,
		logger:   logger,
	}
}

// Process generates the confessional for a request and returns the
// dialogue text.
func (p *ConfessionalProcessor) Process(ctx context.Context, req *queue.ConfessionalRequest) (string, error) {
	gs, err := p.storage.LoadGame(ctx, req.GameID)
	if err != nil {
		return "", fmt.Errorf("failed to load game: %w", err)
	}
	if gs == nil || gs.Roster == nil {
		return "", fmt.Errorf("game %s not found", req.GameID)
	}

	player, err := gs.Roster.Get(req.PlayerID)
	if err != nil {
		return "", fmt.Errorf("failed to find player: %w", err)
	}

	d, err := p.director.RequestDialogue(ctx, player, director.Situation{
		Phase:  game.Phase(req.Phase),
		Prompt: req.Prompt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate confessional: %w", err)
	}

	p.director.AddMemory(player, house.MemoryEntry{
		Type:        "confessional",
		Week:        gs.Week,
		Description: d.Text,
		Impact:      house.ImpactNeutral,
		Importance:  2,
		Emotion:     d.Emotion,
		Timestamp:   time.Now(),
	})

	if err := p.storage.SaveGame(ctx, gs); err != nil {
		return "", fmt.Errorf("failed to save game after confessional: %w", err)
	}

	return d.Text, nil
}
