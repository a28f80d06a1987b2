package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/house-engine/internal/director"
	"github.com/jwebster45206/house-engine/internal/services"
	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/house"
	"github.com/jwebster45206/house-engine/pkg/session"
)

// ActionRequest is the body for POST /v1/games/{id}/actions. Type
// selects the operation; the remaining fields are per-type payload.
type ActionRequest struct {
	Type string `json:"type"`

	PlayerID string `json:"player_id,omitempty"`

	// nominate
	NomineeIDs []string `json:"nominee_ids,omitempty"`

	// resolve_veto
	Used          bool   `json:"used,omitempty"`
	SavedID       string `json:"saved_id,omitempty"`
	ReplacementID string `json:"replacement_id,omitempty"`

	// cast_vote / jury_vote
	VoterID    string `json:"voter_id,omitempty"`
	NomineeID  string `json:"nominee_id,omitempty"`
	JurorID    string `json:"juror_id,omitempty"`
	FinalistID string `json:"finalist_id,omitempty"`

	// use_powerup
	NewNominees []string `json:"new_nominees,omitempty"`
}

// ReadyRequest is the body for POST /v1/games/{id}/ready.
type ReadyRequest struct {
	Phase    game.Phase `json:"phase"`
	PlayerID string     `json:"player_id"`
}

// CompetitionResult is returned by the run_competition action.
type CompetitionResult struct {
	WinnerID string          `json:"winner_id"`
	Game     *game.GameState `json:"game"`
}

// ActionsHandler applies phase actions to a live game.
// Routes:
// POST /v1/games/{id}/actions  - Apply one phase action (see ActionRequest)
// POST /v1/games/{id}/advance  - Advance the phase machine
// POST /v1/games/{id}/ready    - Mark a player ready for the current phase
// GET /v1/games/{id}/progress  - Read the readiness snapshot
type ActionsHandler struct {
	hub      *Hub
	storage  services.Storage
	director *director.Engine
	logger   *slog.Logger
}

func NewActionsHandler(hub *Hub, storage services.Storage, dir *director.Engine, logger *slog.Logger) *ActionsHandler {
	return &ActionsHandler{
		hub:      hub,
		storage:  storage,
		director: dir,
		logger:   logger,
	}
}

func (h *ActionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")
	idStr, rest, _ := strings.Cut(path, "/")
	gameID, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	ctrl := h.hub.Get(gameID)
	if ctrl == nil {
		writeError(w, h.logger, http.StatusNotFound, "No live game with that ID")
		return
	}

	switch {
	case rest == "actions" && r.Method == http.MethodPost:
		h.handleAction(w, r, ctrl)
	case rest == "advance" && r.Method == http.MethodPost:
		h.handleAdvance(w, r, ctrl)
	case rest == "ready" && r.Method == http.MethodPost:
		h.handleReady(w, r, ctrl)
	case rest == "progress" && r.Method == http.MethodGet:
		h.handleProgress(w, ctrl)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ActionsHandler) handleAction(w http.ResponseWriter, r *http.Request, ctrl *session.Controller) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	gs := ctrl.Game()
	m := ctrl.Machine()
	if gs == nil || m == nil {
		writeError(w, h.logger, http.StatusConflict, "Game has not started")
		return
	}

	var err error
	switch req.Type {
	case "assign_hoh":
		err = m.AssignHoH(gs, req.PlayerID)
	case "run_competition":
		var winnerID string
		winnerID, err = m.RunCompetition(gs)
		if err == nil {
			// Record the simulated result in the same step.
			if gs.Phase == game.PhasePoVCompetition {
				err = m.AssignVeto(gs, winnerID)
			} else {
				err = m.AssignHoH(gs, winnerID)
			}
		}
		if err == nil {
			h.save(r.Context(), gs)
			writeJSON(w, h.logger, http.StatusOK, CompetitionResult{WinnerID: winnerID, Game: gs})
			return
		}
	case "nominate":
		err = m.Nominate(gs, req.NomineeIDs)
	case "assign_veto":
		err = m.AssignVeto(gs, req.PlayerID)
	case "resolve_veto":
		err = m.ResolveVeto(gs, req.Used, req.SavedID, req.ReplacementID)
	case "cast_vote":
		err = m.CastVote(gs, req.VoterID, req.NomineeID)
	case "jury_vote":
		err = m.CastJuryVote(gs, req.JurorID, req.FinalistID)
	case "use_powerup":
		err = m.UsePowerup(gs, req.PlayerID, game.PowerupPlay{NewNominees: req.NewNominees})
	case "ai_turn":
		// Resolve the current phase's pending AI inputs through the
		// decision engine.
		err = h.director.PlayTurn(r.Context(), m, gs)
	case "spend_action":
		err = ctrl.SpendAction()
	case "advance_day":
		err = ctrl.AdvanceDay()
	default:
		writeError(w, h.logger, http.StatusBadRequest, "Unknown action type: "+req.Type)
		return
	}

	if err != nil {
		status := http.StatusInternalServerError
		if house.IsValidation(err) {
			status = http.StatusUnprocessableEntity
		}
		h.logger.Warn("Action rejected", "type", req.Type, "game_id", gs.ID, "error", err)
		writeError(w, h.logger, status, err.Error())
		return
	}

	h.save(r.Context(), gs)
	writeJSON(w, h.logger, http.StatusOK, gs)
}

func (h *ActionsHandler) handleAdvance(w http.ResponseWriter, r *http.Request, ctrl *session.Controller) {
	if err := ctrl.Advance(); err != nil {
		status := http.StatusInternalServerError
		if house.IsValidation(err) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, h.logger, status, err.Error())
		return
	}
	gs := ctrl.Game()
	h.save(r.Context(), gs)
	writeJSON(w, h.logger, http.StatusOK, gs)
}

func (h *ActionsHandler) handleReady(w http.ResponseWriter, r *http.Request, ctrl *session.Controller) {
	var req ReadyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if err := ctrl.MarkReady(req.Phase, req.PlayerID); err != nil {
		writeError(w, h.logger, http.StatusConflict, err.Error())
		return
	}
	h.handleProgress(w, ctrl)
}

func (h *ActionsHandler) handleProgress(w http.ResponseWriter, ctrl *session.Controller) {
	progress := ctrl.Progress()
	if progress == nil {
		writeError(w, h.logger, http.StatusConflict, "Game has not started")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, progress.Snapshot())
}

// save persists the game after a successful action. Failures are logged
// but never fail the request; the next phase change retries.
func (h *ActionsHandler) save(ctx context.Context, gs *game.GameState) {
	if gs == nil {
		return
	}
	if err := h.storage.SaveGame(ctx, gs); err != nil {
		h.logger.Error("Failed to save game after action", "game_id", gs.ID, "error", err)
	}
}
