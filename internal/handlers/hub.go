package handlers

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/session"
)

// Hub tracks live session controllers by game ID and room code. Saved
// games not currently in play live only in storage.
type Hub struct {
	mu         sync.Mutex
	newSession func() *session.Controller
	byGame     map[uuid.UUID]*session.Controller
	byRoomCode map[string]*session.Controller
}

// NewHub creates a hub. newSession builds a fresh idle controller with
// the server's configured rules.
func NewHub(newSession func() *session.Controller) *Hub {
	return &Hub{
		newSession: newSession,
		byGame:     make(map[uuid.UUID]*session.Controller),
		byRoomCode: make(map[string]*session.Controller),
	}
}

// NewController creates a fresh idle controller. It is not tracked
// until Register or RegisterLobby indexes it.
func (h *Hub) NewController() *session.Controller {
	return h.newSession()
}

// Register indexes a controller by its started game's ID and, when
// present, its room code.
func (h *Hub) Register(c *session.Controller) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gs := c.Game(); gs != nil {
		h.byGame[gs.ID] = c
	}
	if code := c.RoomCode(); code != "" {
		h.byRoomCode[strings.ToUpper(code)] = c
	}
}

// RegisterLobby indexes a lobby-only controller by room code before its
// game exists.
func (h *Hub) RegisterLobby(code string, c *session.Controller) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byRoomCode[strings.ToUpper(code)] = c
}

// Get returns the live controller for a game, or nil.
func (h *Hub) Get(gameID uuid.UUID) *session.Controller {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.byGame[gameID]
}

// GetByRoomCode returns the controller for a lobby room code, or nil.
func (h *Hub) GetByRoomCode(code string) *session.Controller {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.byRoomCode[strings.ToUpper(code)]
}

// LiveGames snapshots the game state of every session currently in
// play. Lobbies and ended sessions are skipped. This is the autosaver's
// tick source.
func (h *Hub) LiveGames() []*game.GameState {
	h.mu.Lock()
	controllers := make([]*session.Controller, 0, len(h.byGame))
	for _, c := range h.byGame {
		controllers = append(controllers, c)
	}
	h.mu.Unlock()

	var out []*game.GameState
	for _, c := range controllers {
		if c.Lifecycle() != session.StatePlaying {
			continue
		}
		if gs := c.Game(); gs != nil {
			out = append(out, gs)
		}
	}
	return out
}

// Remove drops a controller from the indexes and resets it.
func (h *Hub) Remove(gameID uuid.UUID) {
	h.mu.Lock()
	c := h.byGame[gameID]
	delete(h.byGame, gameID)
	if c != nil {
		if code := c.RoomCode(); code != "" {
			delete(h.byRoomCode, strings.ToUpper(code))
		}
	}
	h.mu.Unlock()
	if c != nil {
		c.Reset()
	}
}
