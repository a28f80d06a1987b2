package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/house-engine/internal/services"
	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/session"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// GamesHandler manages game lifecycle.
// Routes:
// POST /v1/games             - Create a game (singleplayer) or lobby (multiplayer)
// POST /v1/games/join        - Join a multiplayer lobby by room code
// GET /v1/games              - List saved games, most recent first
// GET /v1/games/{id}         - Read a game (live controller preferred, storage fallback)
// POST /v1/games/{id}/resume - Load a saved game into a live session
// DELETE /v1/games/{id}      - Delete a saved game and reset its session
type GamesHandler struct {
	hub     *Hub
	storage services.Storage
	logger  *slog.Logger
}

func NewGamesHandler(hub *Hub, storage services.Storage, logger *slog.Logger) *GamesHandler {
	return &GamesHandler{
		hub:     hub,
		storage: storage,
		logger:  logger,
	}
}

// CreateGameRequest is the body for POST /v1/games.
type CreateGameRequest struct {
	Mode     game.Mode        `json:"mode"`
	Name     string           `json:"name"`
	Identity session.Identity `json:"identity"`
}

// CreateLobbyResponse is returned for multiplayer creates.
type CreateLobbyResponse struct {
	RoomCode string `json:"room_code"`
}

// JoinGameRequest is the body for POST /v1/games/join.
type JoinGameRequest struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name"`
}

func (h *GamesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/games")
	path = strings.Trim(path, "/")

	if path == "join" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.handleJoin(w, r)
		return
	}

	if path == "" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET")
		}
		return
	}

	idStr, rest, _ := strings.Cut(path, "/")
	gameID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid game ID", "id", idStr, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	switch {
	case rest == "resume" && r.Method == http.MethodPost:
		h.handleResume(w, r, gameID)
	case rest == "" && r.Method == http.MethodGet:
		h.handleRead(w, r, gameID)
	case rest == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, gameID)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *GamesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	switch req.Mode {
	case game.ModeSingle, "":
		ctrl := h.hub.NewController()
		gs, err := ctrl.CreateSinglePlayerGame(req.Identity)
		if err != nil {
			writeError(w, h.logger, http.StatusForbidden, err.Error())
			return
		}
		h.hub.Register(ctrl)
		if err := h.storage.SaveGame(r.Context(), gs); err != nil {
			h.logger.Error("Failed to save new game", "error", err, "game_id", gs.ID)
		}
		writeJSON(w, h.logger, http.StatusCreated, gs)

	case game.ModeMulti:
		ctrl := h.hub.NewController()
		code, err := ctrl.CreateMultiplayerGame(req.Name)
		if err != nil {
			writeError(w, h.logger, http.StatusConflict, err.Error())
			return
		}
		h.hub.RegisterLobby(code, ctrl)
		writeJSON(w, h.logger, http.StatusCreated, CreateLobbyResponse{RoomCode: code})

	default:
		writeError(w, h.logger, http.StatusBadRequest, "mode must be \"single\" or \"multi\"")
	}
}

func (h *GamesHandler) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	ctrl := h.hub.GetByRoomCode(req.RoomCode)
	if ctrl == nil {
		writeError(w, h.logger, http.StatusNotFound, "No lobby found for room code")
		return
	}
	p, err := ctrl.JoinMultiplayerGame(req.RoomCode, req.Name)
	if err != nil {
		writeError(w, h.logger, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}

func (h *GamesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	games, err := h.storage.ListGames(r.Context())
	if err != nil {
		h.logger.Error("Failed to list games", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list games")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, games)
}

func (h *GamesHandler) handleRead(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	if ctrl := h.hub.Get(gameID); ctrl != nil {
		if gs := ctrl.Game(); gs != nil {
			writeJSON(w, h.logger, http.StatusOK, gs)
			return
		}
	}

	gs, err := h.storage.LoadGame(r.Context(), gameID)
	if err != nil {
		h.logger.Error("Failed to load game", "error", err, "game_id", gameID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, gs)
}

func (h *GamesHandler) handleResume(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	if h.hub.Get(gameID) != nil {
		writeError(w, h.logger, http.StatusConflict, "Game is already live")
		return
	}
	gs, err := h.storage.LoadGame(r.Context(), gameID)
	if err != nil {
		h.logger.Error("Failed to load game for resume", "error", err, "game_id", gameID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return
	}

	ctrl := h.hub.NewController()
	if err := ctrl.Resume(gs); err != nil {
		writeError(w, h.logger, http.StatusConflict, err.Error())
		return
	}
	h.hub.Register(ctrl)
	h.logger.Info("Game resumed", "game_id", gameID, "week", gs.Week, "phase", gs.Phase)
	writeJSON(w, h.logger, http.StatusOK, gs)
}

func (h *GamesHandler) handleDelete(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	h.hub.Remove(gameID)
	if err := h.storage.DeleteGame(r.Context(), gameID); err != nil {
		h.logger.Error("Failed to delete game", "error", err, "game_id", gameID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	h.logger.Debug("Game deleted", "game_id", gameID)
	w.WriteHeader(http.StatusNoContent)
}
