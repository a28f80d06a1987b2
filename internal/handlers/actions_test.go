package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/house-engine/internal/director"
	"github.com/jwebster45206/house-engine/internal/services"
	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/session"
)

// liveGame creates a singleplayer game through the hub and returns the
// actions handler wired to it. The decision engine runs over the mock
// generator, which picks the first option of every decision.
func liveGame(t *testing.T) (*ActionsHandler, *game.GameState, *services.MockStorage) {
	t.Helper()
	hub := testHub()
	storage := services.NewMockStorage()
	dir := director.NewEngine(services.NewMockDialogueGenerator(), time.Second, testLogger())

	ctrl := hub.NewController()
	gs, err := ctrl.CreateSinglePlayerGame(testIdentity())
	require.NoError(t, err)
	hub.Register(ctrl)

	return NewActionsHandler(hub, storage, dir, testLogger()), gs, storage
}

func TestActionsHandler_AssignHoH(t *testing.T) {
	h, gs, storage := liveGame(t)

	w := postJSON(t, h, "/v1/games/"+gs.ID.String()+"/actions", ActionRequest{
		Type:     "assign_hoh",
		PlayerID: "ai-1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got game.GameState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "ai-1", got.HoH)

	// Successful actions are persisted.
	saved, err := storage.LoadGame(context.Background(), gs.ID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "ai-1", saved.HoH)
}

func TestActionsHandler_ValidationErrorIs422(t *testing.T) {
	h, gs, _ := liveGame(t)

	// Nominating during the HoH competition is a rules violation.
	w := postJSON(t, h, "/v1/games/"+gs.ID.String()+"/actions", ActionRequest{
		Type:       "nominate",
		NomineeIDs: []string{"ai-1", "ai-2"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestActionsHandler_UnknownType(t *testing.T) {
	h, gs, _ := liveGame(t)
	w := postJSON(t, h, "/v1/games/"+gs.ID.String()+"/actions", ActionRequest{Type: "flip_table"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActionsHandler_UnknownGame(t *testing.T) {
	h, _, _ := liveGame(t)
	w := postJSON(t, h, "/v1/games/6f9619ff-8b86-4d01-b42d-00cf4fc964ff/actions", ActionRequest{Type: "assign_hoh"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postJSON(t, h, "/v1/games/not-a-uuid/actions", ActionRequest{Type: "assign_hoh"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActionsHandler_RunCompetition(t *testing.T) {
	h, gs, _ := liveGame(t)

	w := postJSON(t, h, "/v1/games/"+gs.ID.String()+"/actions", ActionRequest{Type: "run_competition"})
	require.Equal(t, http.StatusOK, w.Code)

	var result CompetitionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.WinnerID)
	require.NotNil(t, result.Game)
	// The winner is recorded as HoH in the same step.
	assert.Equal(t, result.WinnerID, result.Game.HoH)
}

func TestActionsHandler_Advance(t *testing.T) {
	h, gs, _ := liveGame(t)

	// Advancing without an HoH is rejected.
	w := postJSON(t, h, "/v1/games/"+gs.ID.String()+"/advance", struct{}{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	postJSON(t, h, "/v1/games/"+gs.ID.String()+"/actions", ActionRequest{Type: "assign_hoh", PlayerID: "ai-1"})

	w = postJSON(t, h, "/v1/games/"+gs.ID.String()+"/advance", struct{}{})
	require.Equal(t, http.StatusOK, w.Code)

	var got game.GameState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, game.PhaseNomination, got.Phase)
}

func TestActionsHandler_ReadyAndProgress(t *testing.T) {
	h, gs, _ := liveGame(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/games/"+gs.ID.String()+"/progress", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var snap game.ProgressSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, game.PhaseHoHCompetition, snap.Phase)
	assert.Equal(t, 0, snap.CompletedCount)
	assert.Equal(t, 1, snap.TotalCount)

	// A singleplayer ready mark triggers a force-advance attempt, which
	// fails quietly here because no HoH is assigned yet.
	rec := postJSON(t, h, "/v1/games/"+gs.ID.String()+"/ready", ReadyRequest{
		Phase:    game.PhaseHoHCompetition,
		PlayerID: "h1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.CompletedCount)
	assert.True(t, snap.Completed)
}

func TestActionsHandler_AITurn(t *testing.T) {
	h, gs, _ := liveGame(t)

	// Hand HoH to an AI houseguest and move to nominations.
	postJSON(t, h, "/v1/games/"+gs.ID.String()+"/actions", ActionRequest{Type: "assign_hoh", PlayerID: "ai-1"})
	postJSON(t, h, "/v1/games/"+gs.ID.String()+"/advance", struct{}{})

	w := postJSON(t, h, "/v1/games/"+gs.ID.String()+"/actions", ActionRequest{Type: "ai_turn"})
	require.Equal(t, http.StatusOK, w.Code)

	var got game.GameState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	// The engine nominated for the AI HoH; the mock generator always
	// picks the first candidate of each decision.
	assert.Equal(t, []string{"h1", "ai-2"}, got.Nominees)
}

func TestActionsHandler_AITurnLeavesHumanInputs(t *testing.T) {
	h, gs, _ := liveGame(t)

	// The human holds HoH, so the nomination stays theirs to make.
	postJSON(t, h, "/v1/games/"+gs.ID.String()+"/actions", ActionRequest{Type: "assign_hoh", PlayerID: "h1"})
	postJSON(t, h, "/v1/games/"+gs.ID.String()+"/advance", struct{}{})

	w := postJSON(t, h, "/v1/games/"+gs.ID.String()+"/actions", ActionRequest{Type: "ai_turn"})
	require.Equal(t, http.StatusOK, w.Code)

	var got game.GameState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Empty(t, got.Nominees)
}

func TestActionsHandler_SpendActionAndAdvanceDay(t *testing.T) {
	h, gs, _ := liveGame(t)

	for i := 0; i < session.DefaultActionsPerDay; i++ {
		w := postJSON(t, h, "/v1/games/"+gs.ID.String()+"/actions", ActionRequest{Type: "spend_action"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	// The budget is exhausted.
	w := postJSON(t, h, "/v1/games/"+gs.ID.String()+"/actions", ActionRequest{Type: "spend_action"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = postJSON(t, h, "/v1/games/"+gs.ID.String()+"/actions", ActionRequest{Type: "advance_day"})
	require.Equal(t, http.StatusOK, w.Code)

	var got game.GameState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.DayCount)
	assert.Equal(t, session.DefaultActionsPerDay, got.ActionsRemaining)
}
