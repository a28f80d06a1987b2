package director

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/house-engine/internal/services"
	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/house"
)

func testSituation() Situation {
	return Situation{
		Phase:   game.PhaseNomination,
		Prompt:  "Choose your two nominees.",
		Options: []string{"p2", "p3", "p4"},
	}
}

func TestRequestDecision(t *testing.T) {
	mock := services.NewMockDialogueGenerator()
	mock.GenerateFunc = func(ctx context.Context, req services.DialogueRequest) (*services.DialogueResponse, error) {
		return &services.DialogueResponse{
			SelectedOption: "p3",
			Reasoning:      "p3 threw me under the bus last week",
		}, nil
	}
	e := NewEngine(mock, time.Second, slog.Default())
	p := house.NewAIPlayer("p1", "Marisol")

	d, err := e.RequestDecision(context.Background(), p, testSituation())
	require.NoError(t, err)
	assert.Equal(t, "p3", d.Selection)
	assert.Equal(t, "p3 threw me under the bus last week", d.Reasoning)
	assert.False(t, d.Fallback)
	assert.False(t, e.IsThinking("p1"))

	// The request carried the player's profile and options through.
	require.Len(t, mock.GenerateCalls, 1)
	req := mock.GenerateCalls[0]
	assert.Equal(t, services.ResponseTypeDecision, req.ResponseType)
	assert.Equal(t, []string{"p2", "p3", "p4"}, req.Options)
	assert.Contains(t, req.PlayerProfile, "Marisol")
}

func TestRequestDecision_FallbackOnError(t *testing.T) {
	mock := services.NewMockDialogueGenerator()
	mock.GenerateFunc = func(ctx context.Context, req services.DialogueRequest) (*services.DialogueResponse, error) {
		return nil, errors.New("model unavailable")
	}
	e := NewEngine(mock, time.Second, slog.Default())
	p := house.NewAIPlayer("p1", "Marisol")

	d, err := e.RequestDecision(context.Background(), p, testSituation())
	require.NoError(t, err, "generator failure must not surface as an error")
	assert.Equal(t, "p2", d.Selection)
	assert.True(t, d.Fallback)
	assert.NotEmpty(t, d.Reasoning)
}

func TestRequestDecision_NoOptions(t *testing.T) {
	e := NewEngine(services.NewMockDialogueGenerator(), time.Second, slog.Default())
	p := house.NewAIPlayer("p1", "Marisol")

	_, err := e.RequestDecision(context.Background(), p, Situation{Phase: game.PhaseNomination})
	require.Error(t, err)
}

func TestRequestDecisionAsync(t *testing.T) {
	mock := services.NewMockDialogueGenerator()
	e := NewEngine(mock, time.Second, slog.Default())
	p := house.NewAIPlayer("p1", "Marisol")

	var wg sync.WaitGroup
	wg.Add(1)
	var got Decision
	e.RequestDecisionAsync(context.Background(), p, testSituation(), func(d Decision) {
		got = d
		wg.Done()
	})
	wg.Wait()

	assert.Equal(t, "p2", got.Selection)
	assert.False(t, e.IsThinking("p1"))
}

func TestIsThinking(t *testing.T) {
	block := make(chan struct{})
	mock := services.NewMockDialogueGenerator()
	mock.GenerateFunc = func(ctx context.Context, req services.DialogueRequest) (*services.DialogueResponse, error) {
		<-block
		return &services.DialogueResponse{SelectedOption: req.Options[0]}, nil
	}
	e := NewEngine(mock, time.Second, slog.Default())
	p := house.NewAIPlayer("p1", "Marisol")

	done := make(chan struct{})
	go func() {
		_, _ = e.RequestDecision(context.Background(), p, testSituation())
		close(done)
	}()

	assert.Eventually(t, func() bool { return e.IsThinking("p1") }, time.Second, 5*time.Millisecond)
	close(block)
	<-done
	assert.False(t, e.IsThinking("p1"))
}

func TestRequestDialogue(t *testing.T) {
	mock := services.NewMockDialogueGenerator()
	mock.GenerateFunc = func(ctx context.Context, req services.DialogueRequest) (*services.DialogueResponse, error) {
		return &services.DialogueResponse{Text: "I can't trust anyone in this house.", Emotion: "Anxious "}, nil
	}
	e := NewEngine(mock, time.Second, slog.Default())
	p := house.NewAIPlayer("p1", "Marisol")

	d, err := e.RequestDialogue(context.Background(), p, Situation{Phase: game.PhaseEviction, Prompt: "React to the vote."})
	require.NoError(t, err)
	assert.Equal(t, "I can't trust anyone in this house.", d.Text)
	// The player's displayed emotion is normalized.
	assert.Equal(t, "anxious", p.Emotion)
}

func TestRequestDialogue_Error(t *testing.T) {
	mock := services.NewMockDialogueGenerator()
	mock.GenerateFunc = func(ctx context.Context, req services.DialogueRequest) (*services.DialogueResponse, error) {
		return nil, errors.New("timeout")
	}
	e := NewEngine(mock, time.Second, slog.Default())
	p := house.NewAIPlayer("p1", "Marisol")

	_, err := e.RequestDialogue(context.Background(), p, Situation{Phase: game.PhaseEviction})
	require.Error(t, err)
	assert.Empty(t, p.Emotion)
}

func TestRecentMemory_FreshestFirst(t *testing.T) {
	p := house.NewAIPlayer("p1", "Marisol")
	now := time.Now()
	for _, entry := range []house.MemoryEntry{
		{Description: "old and minor", Importance: 1, Timestamp: now.Add(-72 * time.Hour)},
		{Description: "recent betrayal", Importance: 9, Timestamp: now.Add(-time.Hour)},
		{Description: "won a competition", Importance: 6, Timestamp: now.Add(-2 * time.Hour)},
	} {
		p.AddMemory(entry, house.DefaultMemoryLimit)
	}

	got := recentMemory(p, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "recent betrayal", got[0].Description)
	assert.Equal(t, "won a competition", got[1].Description)
}
