package worker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/house-engine/internal/director"
	"github.com/jwebster45206/house-engine/internal/services"
	"github.com/jwebster45206/house-engine/internal/services/queue"
	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/house"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testDirector(gen services.DialogueGenerator) *director.Engine {
	return director.NewEngine(gen, time.Second, testLogger())
}

func savedGame(t *testing.T, storage services.Storage) *game.GameState {
	t.Helper()
	gs := game.NewGameState(game.ModeSingle, house.NewRoster(
		house.NewAIPlayer("ai-1", "Marisol"),
		house.NewAIPlayer("ai-2", "Dex"),
	))
	gs.Week = 2
	require.NoError(t, storage.SaveGame(context.Background(), gs))
	return gs
}

func TestProcess(t *testing.T) {
	storage := services.NewMockStorage()
	gs := savedGame(t, storage)

	gen := services.NewMockDialogueGenerator()
	gen.GenerateFunc = func(ctx context.Context, req services.DialogueRequest) (*services.DialogueResponse, error) {
		return &services.DialogueResponse{
			Text:    "Winning that veto changed everything for me.",
			Emotion: "confident",
		}, nil
	}

	p := NewConfessionalProcessor(storage, testDirector(gen), testLogger())
	text, err := p.Process(context.Background(), &queue.ConfessionalRequest{
		RequestID: uuid.New().String(),
		GameID:    gs.ID,
		PlayerID:  "ai-1",
		Phase:     "veto_ceremony",
		Prompt:    "Talk about the veto ceremony.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Winning that veto changed everything for me.", text)

	// The confessional is stored on the player as a memory.
	saved, err := storage.LoadGame(context.Background(), gs.ID)
	require.NoError(t, err)
	player, err := saved.Roster.Get("ai-1")
	require.NoError(t, err)
	assert.Equal(t, "confident", player.Emotion)
	require.Len(t, player.Memory, 1)
	assert.Equal(t, "confessional", player.Memory[0].Type)
	assert.Equal(t, 2, player.Memory[0].Week)
	assert.Equal(t, "Winning that veto changed everything for me.", player.Memory[0].Description)
	assert.Equal(t, "confident", player.Memory[0].Emotion)

	// The other houseguest is untouched.
	other, err := saved.Roster.Get("ai-2")
	require.NoError(t, err)
	assert.Empty(t, other.Memory)
}

func TestProcess_GameNotFound(t *testing.T) {
	p := NewConfessionalProcessor(services.NewMockStorage(), testDirector(services.NewMockDialogueGenerator()), testLogger())

	_, err := p.Process(context.Background(), &queue.ConfessionalRequest{
		GameID:   uuid.New(),
		PlayerID: "ai-1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestProcess_PlayerNotFound(t *testing.T) {
	storage := services.NewMockStorage()
	gs := savedGame(t, storage)

	p := NewConfessionalProcessor(storage, testDirector(services.NewMockDialogueGenerator()), testLogger())
	_, err := p.Process(context.Background(), &queue.ConfessionalRequest{
		GameID:   gs.ID,
		PlayerID: "ghost",
	})
	require.Error(t, err)
}

func TestProcess_GeneratorError(t *testing.T) {
	storage := services.NewMockStorage()
	gs := savedGame(t, storage)

	gen := services.NewMockDialogueGenerator()
	gen.GenerateFunc = func(ctx context.Context, req services.DialogueRequest) (*services.DialogueResponse, error) {
		return nil, errors.New("model unavailable")
	}

	p := NewConfessionalProcessor(storage, testDirector(gen), testLogger())
	_, err := p.Process(context.Background(), &queue.ConfessionalRequest{
		GameID:   gs.ID,
		PlayerID: "ai-1",
	})
	require.Error(t, err)

	// Nothing was written on failure.
	saved, err2 := storage.LoadGame(context.Background(), gs.ID)
	require.NoError(t, err2)
	player, _ := saved.Roster.Get("ai-1")
	assert.Empty(t, player.Memory)
}
