package director

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/house-engine/internal/services"
	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/house"
)

func turnGame(phase game.Phase, players ...*house.Player) (*game.Machine, *game.GameState) {
	m := game.NewMachine(game.DefaultRules(), rand.New(rand.NewPCG(1, 2)))
	gs := game.NewGameState(game.ModeSingle, house.NewRoster(players...))
	gs.Phase = phase
	return m, gs
}

func TestPlayTurn_AIHoHNominates(t *testing.T) {
	hoh := house.NewAIPlayer("ai-1", "Marisol")
	hoh.Status = house.StatusHoH
	m, gs := turnGame(game.PhaseNomination,
		hoh,
		house.NewHumanPlayer("h1", "Jo", false),
		house.NewAIPlayer("ai-2", "Dex"),
		house.NewAIPlayer("ai-3", "Tanya"),
	)
	gs.HoH = "ai-1"

	mock := services.NewMockDialogueGenerator()
	e := NewEngine(mock, time.Second, slog.Default())

	require.NoError(t, e.PlayTurn(context.Background(), m, gs))

	// The default mock picks the first option of each decision.
	assert.Equal(t, []string{"h1", "ai-2"}, gs.Nominees)
	for _, id := range gs.Nominees {
		p, err := gs.Roster.Get(id)
		require.NoError(t, err)
		assert.Equal(t, house.StatusNominated, p.Status)
	}

	// Two decisions went out; the second excludes the first pick.
	require.Len(t, mock.GenerateCalls, 2)
	assert.Equal(t, []string{"Jo", "Dex", "Tanya"}, mock.GenerateCalls[0].Options)
	assert.Equal(t, []string{"Dex", "Tanya"}, mock.GenerateCalls[1].Options)
	assert.Contains(t, mock.GenerateCalls[0].Context, "Dex")
}

func TestPlayTurn_HumanHoHIsLeftAlone(t *testing.T) {
	m, gs := turnGame(game.PhaseNomination,
		house.NewHumanPlayer("h1", "Jo", false),
		house.NewAIPlayer("ai-1", "Marisol"),
		house.NewAIPlayer("ai-2", "Dex"),
	)
	gs.HoH = "h1"

	mock := services.NewMockDialogueGenerator()
	e := NewEngine(mock, time.Second, slog.Default())

	require.NoError(t, e.PlayTurn(context.Background(), m, gs))
	assert.Empty(t, gs.Nominees)
	assert.Empty(t, mock.GenerateCalls)
}

func TestPlayTurn_SelectionByName(t *testing.T) {
	hoh := house.NewAIPlayer("ai-1", "Marisol")
	m, gs := turnGame(game.PhaseNomination,
		hoh,
		house.NewHumanPlayer("h1", "Jo", false),
		house.NewAIPlayer("ai-2", "Dex"),
		house.NewAIPlayer("ai-3", "Tanya"),
	)
	gs.HoH = "ai-1"

	mock := services.NewMockDialogueGenerator()
	mock.GenerateFunc = func(ctx context.Context, req services.DialogueRequest) (*services.DialogueResponse, error) {
		return &services.DialogueResponse{SelectedOption: req.Options[len(req.Options)-1]}, nil
	}
	e := NewEngine(mock, time.Second, slog.Default())

	require.NoError(t, e.PlayTurn(context.Background(), m, gs))
	assert.Equal(t, []string{"ai-3", "ai-2"}, gs.Nominees)
}

func TestPlayTurn_AIVetoHolderKeeps(t *testing.T) {
	nominee1 := house.NewHumanPlayer("h1", "Jo", false)
	nominee1.Status = house.StatusNominated
	nominee2 := house.NewAIPlayer("ai-3", "Tanya")
	nominee2.Status = house.StatusNominated
	m, gs := turnGame(game.PhaseVetoCeremony,
		house.NewAIPlayer("ai-1", "Marisol"),
		house.NewAIPlayer("ai-2", "Dex"),
		nominee1,
		nominee2,
	)
	gs.HoH = "ai-2"
	gs.Veto = "ai-1"
	gs.Nominees = []string{"h1", "ai-3"}

	mock := services.NewMockDialogueGenerator()
	e := NewEngine(mock, time.Second, slog.Default())

	// The default mock picks the first option, which is keeping the veto.
	require.NoError(t, e.PlayTurn(context.Background(), m, gs))
	assert.True(t, gs.VetoDecided)
	assert.False(t, gs.VetoUsed)
	assert.Equal(t, []string{"h1", "ai-3"}, gs.FinalNominees)
}

func TestPlayTurn_NominatedHolderSavesSelf(t *testing.T) {
	holder := house.NewAIPlayer("ai-1", "Marisol")
	holder.Status = house.StatusNominated
	nominee := house.NewAIPlayer("ai-3", "Tanya")
	nominee.Status = house.StatusNominated
	m, gs := turnGame(game.PhaseVetoCeremony,
		holder,
		house.NewAIPlayer("ai-2", "Dex"),
		nominee,
		house.NewHumanPlayer("h1", "Jo", false),
		house.NewAIPlayer("ai-4", "Omar"),
	)
	gs.HoH = "ai-2"
	gs.Veto = "ai-1"
	gs.Nominees = []string{"ai-1", "ai-3"}

	mock := services.NewMockDialogueGenerator()
	e := NewEngine(mock, time.Second, slog.Default())

	require.NoError(t, e.PlayTurn(context.Background(), m, gs))
	assert.True(t, gs.VetoUsed)
	assert.Equal(t, "ai-1", gs.VetoSaved)
	// The AI HoH named the first replacement candidate.
	assert.Equal(t, "h1", gs.VetoReplacement)
	assert.True(t, gs.IsNominee("h1"))
	assert.False(t, gs.IsNominee("ai-1"))
}

func TestPlayTurn_UseWithHumanHoHKeepsVeto(t *testing.T) {
	nominee1 := house.NewAIPlayer("ai-2", "Dex")
	nominee1.Status = house.StatusNominated
	nominee2 := house.NewAIPlayer("ai-3", "Tanya")
	nominee2.Status = house.StatusNominated
	m, gs := turnGame(game.PhaseVetoCeremony,
		house.NewAIPlayer("ai-1", "Marisol"),
		house.NewHumanPlayer("h1", "Jo", false),
		nominee1,
		nominee2,
	)
	gs.HoH = "h1"
	gs.Veto = "ai-1"
	gs.Nominees = []string{"ai-2", "ai-3"}

	mock := services.NewMockDialogueGenerator()
	mock.GenerateFunc = func(ctx context.Context, req services.DialogueRequest) (*services.DialogueResponse, error) {
		// Always try to use the veto.
		return &services.DialogueResponse{SelectedOption: req.Options[len(req.Options)-1]}, nil
	}
	e := NewEngine(mock, time.Second, slog.Default())

	// The replacement is the human HoH's call, so the ceremony resolves
	// with the veto unused instead of stalling.
	require.NoError(t, e.PlayTurn(context.Background(), m, gs))
	assert.True(t, gs.VetoDecided)
	assert.False(t, gs.VetoUsed)
}

func TestPlayTurn_AIVotersVote(t *testing.T) {
	nominee1 := house.NewHumanPlayer("h1", "Jo", false)
	nominee1.Status = house.StatusNominated
	nominee2 := house.NewAIPlayer("ai-3", "Tanya")
	nominee2.Status = house.StatusNominated
	m, gs := turnGame(game.PhaseEvictionVoting,
		house.NewAIPlayer("ai-1", "Marisol"),
		house.NewAIPlayer("ai-2", "Dex"),
		nominee1,
		nominee2,
		house.NewHumanPlayer("h2", "Sam", false),
		house.NewAIPlayer("ai-4", "Omar"),
	)
	gs.HoH = "ai-2"
	gs.Nominees = []string{"h1", "ai-3"}
	gs.FinalNominees = []string{"h1", "ai-3"}
	gs.VetoDecided = true
	gs.Votes = map[string]string{"ai-1": "ai-3"}

	mock := services.NewMockDialogueGenerator()
	e := NewEngine(mock, time.Second, slog.Default())

	require.NoError(t, e.PlayTurn(context.Background(), m, gs))

	// ai-1's existing vote stands, ai-4 voted the default first target,
	// and the human voter h2 was left alone.
	assert.Equal(t, "ai-3", gs.Votes["ai-1"])
	assert.Equal(t, "h1", gs.Votes["ai-4"])
	_, voted := gs.Votes["h2"]
	assert.False(t, voted)
}

func TestPlayTurn_AIJurorsVote(t *testing.T) {
	finalist1 := house.NewAIPlayer("ai-1", "Marisol")
	finalist2 := house.NewAIPlayer("ai-2", "Dex")
	juror1 := house.NewAIPlayer("ai-3", "Tanya")
	juror1.Status = house.StatusJuror
	juror2 := house.NewAIPlayer("ai-4", "Omar")
	juror2.Status = house.StatusJuror
	humanJuror := house.NewHumanPlayer("h1", "Jo", false)
	humanJuror.Status = house.StatusJuror
	m, gs := turnGame(game.PhaseJuryVoting,
		finalist1, finalist2, juror1, juror2, humanJuror,
	)
	gs.Finalists = []string{"ai-1", "ai-2"}
	gs.JuryVotes = map[string]string{"ai-4": "ai-2"}

	mock := services.NewMockDialogueGenerator()
	e := NewEngine(mock, time.Second, slog.Default())

	require.NoError(t, e.PlayTurn(context.Background(), m, gs))
	assert.Equal(t, "ai-1", gs.JuryVotes["ai-3"])
	assert.Equal(t, "ai-2", gs.JuryVotes["ai-4"])
	_, voted := gs.JuryVotes["h1"]
	assert.False(t, voted)
}

func TestPlayTurn_QuietPhases(t *testing.T) {
	m, gs := turnGame(game.PhaseHoHCompetition,
		house.NewAIPlayer("ai-1", "Marisol"),
		house.NewAIPlayer("ai-2", "Dex"),
	)

	mock := services.NewMockDialogueGenerator()
	e := NewEngine(mock, time.Second, slog.Default())

	require.NoError(t, e.PlayTurn(context.Background(), m, gs))
	assert.Empty(t, mock.GenerateCalls)
}
