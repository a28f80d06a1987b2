package session

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/house"
)

// fakeClock captures AfterFunc callbacks for deterministic countdown
// tests.
type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) game.Timer {
	t := &fakeTimer{fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) fire() {
	for _, t := range c.timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

func testController(clock game.Clock) *Controller {
	return NewController(Config{
		Rules:   game.DefaultRules(),
		AICount: 3,
		Clock:   clock,
		RNG:     rand.New(rand.NewPCG(1, 2)),
	})
}

func playerIdentity() Identity {
	return Identity{IsAuthenticated: true, PlayerID: "h1", Name: "jo ann"}
}

func TestCreateSinglePlayerGame(t *testing.T) {
	c := testController(nil)

	gs, err := c.CreateSinglePlayerGame(playerIdentity())
	require.NoError(t, err)

	assert.Equal(t, StatePlaying, c.Lifecycle())
	assert.Equal(t, game.ModeSingle, gs.Mode)
	assert.Equal(t, game.PhaseHoHCompetition, gs.Phase)
	assert.Len(t, gs.Roster.Players, 4) // 1 human + 3 AI
	assert.Equal(t, 1, gs.DayCount)
	assert.Equal(t, DefaultActionsPerDay, gs.ActionsRemaining)

	// The display name is title-cased.
	human, err := gs.Roster.Get("h1")
	require.NoError(t, err)
	assert.Equal(t, "Jo Ann", human.Name)
	assert.True(t, human.IsHuman)

	// Only one game per controller.
	_, err = c.CreateSinglePlayerGame(playerIdentity())
	require.Error(t, err)
}

func TestCreateSinglePlayerGame_AuthRules(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		wantErr bool
	}{
		{"unauthenticated", Identity{PlayerID: "x", Name: "X"}, true},
		{"guest", Identity{IsAuthenticated: true, IsGuest: true, PlayerID: "x", Name: "X"}, true},
		{"admin bypasses guest check", Identity{IsGuest: true, IsAdmin: true, PlayerID: "x", Name: "X"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testController(nil)
			_, err := c.CreateSinglePlayerGame(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, StateIdle, c.Lifecycle())
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestMultiplayerLobby(t *testing.T) {
	clock := newFakeClock()
	c := testController(clock)

	code, err := c.CreateMultiplayerGame("host")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(roomCodeAlphabet, r), "unexpected rune %q", r)
	}
	assert.Equal(t, StateLobby, c.Lifecycle())

	// Join is case-insensitive on the room code.
	_, err = c.JoinMultiplayerGame(strings.ToLower(code), "guest one")
	require.NoError(t, err)

	_, err = c.JoinMultiplayerGame("WRONG1", "nobody")
	require.Error(t, err)

	require.NoError(t, c.StartNow())
	assert.Equal(t, StatePlaying, c.Lifecycle())

	gs := c.Game()
	require.NotNil(t, gs)
	assert.Equal(t, game.ModeMulti, gs.Mode)
	assert.Equal(t, code, gs.RoomCode)
	assert.Len(t, gs.Roster.Humans(), 2)
	assert.Len(t, gs.Roster.Players, 5) // 2 humans + 3 AI
}

func TestStartNow_NeedsTwoHumans(t *testing.T) {
	clock := newFakeClock()
	c := testController(clock)
	_, err := c.CreateMultiplayerGame("host")
	require.NoError(t, err)

	err = c.StartNow()
	require.Error(t, err)
	assert.Equal(t, StateLobby, c.Lifecycle())
}

func TestLobbyCountdown_AutoStarts(t *testing.T) {
	clock := newFakeClock()
	c := testController(clock)
	code, err := c.CreateMultiplayerGame("host")
	require.NoError(t, err)
	_, err = c.JoinMultiplayerGame(code, "guest")
	require.NoError(t, err)

	clock.fire()
	assert.Equal(t, StatePlaying, c.Lifecycle())
}

func TestLobbyCountdown_ResetsWithoutPlayers(t *testing.T) {
	clock := newFakeClock()
	c := testController(clock)
	_, err := c.CreateMultiplayerGame("host")
	require.NoError(t, err)

	clock.fire()
	assert.Equal(t, StateIdle, c.Lifecycle())
	assert.Empty(t, c.RoomCode())
}

func TestReadyDrivesAdvance_SinglePlayer(t *testing.T) {
	c := testController(nil)
	gs, err := c.CreateSinglePlayerGame(playerIdentity())
	require.NoError(t, err)

	// The phase cannot advance until the HoH is assigned, so the ready
	// signal's force-advance is dropped without wedging the game.
	require.NoError(t, c.MarkReady(game.PhaseHoHCompetition, "h1"))
	assert.Equal(t, game.PhaseHoHCompetition, gs.Phase)

	require.NoError(t, c.Machine().AssignHoH(gs, "ai-1"))
	require.NoError(t, c.Advance())
	assert.Equal(t, game.PhaseNomination, gs.Phase)
}

func TestActionBudget(t *testing.T) {
	c := testController(nil)
	gs, err := c.CreateSinglePlayerGame(playerIdentity())
	require.NoError(t, err)

	for i := 0; i < DefaultActionsPerDay; i++ {
		require.NoError(t, c.SpendAction())
	}
	err = c.SpendAction()
	require.Error(t, err)
	assert.Equal(t, 0, gs.ActionsRemaining)

	require.NoError(t, c.AdvanceDay())
	assert.Equal(t, 2, gs.DayCount)
	assert.Equal(t, DefaultActionsPerDay, gs.ActionsRemaining)
	require.NoError(t, c.SpendAction())
}

func TestReset(t *testing.T) {
	c := testController(nil)
	_, err := c.CreateSinglePlayerGame(playerIdentity())
	require.NoError(t, err)

	c.Reset()
	assert.Equal(t, StateIdle, c.Lifecycle())
	assert.Nil(t, c.Game())
	assert.Nil(t, c.Machine())
	assert.Nil(t, c.Progress())

	// A fresh game can start on the same controller.
	_, err = c.CreateSinglePlayerGame(playerIdentity())
	require.NoError(t, err)
}

func TestResume(t *testing.T) {
	roster := house.NewRoster(
		house.NewHumanPlayer("h1", "Jo", false),
		house.NewAIPlayer("ai-1", "Marisol"),
		house.NewAIPlayer("ai-2", "Dex"),
	)
	saved := game.NewGameState(game.ModeSingle, roster)
	saved.Week = 3
	saved.Phase = game.PhaseNomination
	saved.HoH = "ai-1"

	c := testController(nil)
	require.NoError(t, c.Resume(saved))

	assert.Equal(t, StatePlaying, c.Lifecycle())
	assert.Same(t, saved, c.Game())
	require.NotNil(t, c.Progress())
	assert.Equal(t, game.PhaseNomination, c.Progress().Snapshot().Phase)

	// Resuming twice is rejected.
	err := c.Resume(saved)
	require.Error(t, err)
}

func TestResume_FinishedGame(t *testing.T) {
	roster := house.NewRoster(house.NewAIPlayer("ai-1", "Marisol"))
	saved := game.NewGameState(game.ModeSingle, roster)
	saved.Phase = game.PhaseFinale
	saved.Winner = "ai-1"

	c := testController(nil)
	require.NoError(t, c.Resume(saved))
	assert.Equal(t, StateEnded, c.Lifecycle())
}

func TestResume_Validation(t *testing.T) {
	c := testController(nil)
	require.Error(t, c.Resume(nil))

	_, err := c.CreateSinglePlayerGame(playerIdentity())
	require.NoError(t, err)
	saved := game.NewGameState(game.ModeSingle, house.NewRoster())
	require.Error(t, c.Resume(saved))
}
