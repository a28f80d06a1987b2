package game

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/house-engine/pkg/house"
)

func playerIDs(players []*house.Player) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.ID)
	}
	return out
}

func TestHoHCompetitors_Lockout(t *testing.T) {
	m, gs := newTestGame(t, 5)
	gs.LastHoH = "p1"

	got := playerIDs(m.HoHCompetitors(gs))
	assert.Equal(t, []string{"p2", "p3", "p4", "p5"}, got)

	// At final three everyone competes.
	for _, id := range []string{"p4", "p5"} {
		p, _ := gs.Roster.Get(id)
		p.Status = house.StatusEvicted
	}
	got = playerIDs(m.HoHCompetitors(gs))
	assert.Equal(t, []string{"p1", "p2", "p3"}, got)
}

func TestVetoCompetitors_DrawRule(t *testing.T) {
	rules := DefaultRules()
	rules.VetoDraw = "draw"
	m := NewMachine(rules, rand.New(rand.NewPCG(3, 4)))

	roster := house.NewRoster()
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"} {
		require.NoError(t, roster.Add(house.NewAIPlayer(id, id)))
	}
	gs := NewGameState(ModeSingle, roster)
	gs.HoH = "p1"
	gs.Nominees = []string{"p2", "p3"}

	got := m.VetoCompetitors(gs)
	require.Len(t, got, 6)

	ids := playerIDs(got)
	assert.Contains(t, ids, "p1")
	assert.Contains(t, ids, "p2")
	assert.Contains(t, ids, "p3")
}

func TestVetoCompetitors_SmallHouseSkipsDraw(t *testing.T) {
	rules := DefaultRules()
	rules.VetoDraw = "draw"
	m := NewMachine(rules, rand.New(rand.NewPCG(3, 4)))

	roster := house.NewRoster()
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		require.NoError(t, roster.Add(house.NewAIPlayer(id, id)))
	}
	gs := NewGameState(ModeSingle, roster)
	gs.HoH = "p1"
	gs.Nominees = []string{"p2", "p3"}

	assert.Len(t, m.VetoCompetitors(gs), 5)
}

func TestRunCompetition(t *testing.T) {
	m, gs := newTestGame(t, 5)

	winnerID, err := m.RunCompetition(gs)
	require.NoError(t, err)

	eligible := playerIDs(m.HoHCompetitors(gs))
	assert.Contains(t, eligible, winnerID)
}

func TestRunCompetition_WrongPhase(t *testing.T) {
	m, gs := newTestGame(t, 5)
	gs.Phase = PhaseEvictionVoting

	_, err := m.RunCompetition(gs)
	require.Error(t, err)
	assert.True(t, house.IsValidation(err))
}
