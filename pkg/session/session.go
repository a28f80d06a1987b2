package session

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/house"
)

// Lifecycle is the overall session state.
type Lifecycle string

const (
	StateIdle    Lifecycle = "idle"
	StateLobby   Lifecycle = "lobby"
	StatePlaying Lifecycle = "playing"
	StateEnded   Lifecycle = "ended"
)

// Identity is the read-only view of the authenticated user supplied by
// the auth collaborator. The core never mutates it.
type Identity struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	IsGuest         bool   `json:"is_guest"`
	IsAdmin         bool   `json:"is_admin"`
	PlayerID        string `json:"player_id"`
	Name            string `json:"name"`
}

// DefaultActionsPerDay is the narrative action budget per in-game day.
const DefaultActionsPerDay = 3

// DefaultLobbyCountdown is how long a multiplayer lobby waits before
// auto-starting (or resetting, if fewer than two humans joined).
const DefaultLobbyCountdown = 30 * time.Second

// aiNamePool supplies AI houseguest names in join order.
var aiNamePool = []string{
	"Marisol", "Dex", "Tanya", "Omar", "Brie", "Felix",
	"Nadia", "Cole", "Priya", "Hutch", "Gwen", "Silas",
	"Remy", "Opal", "Jonas", "Vera",
}

// roomCodeAlphabet avoids ambiguous characters (0/O, 1/I/L).
const roomCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const roomCodeLength = 6

// Config tunes a session controller.
type Config struct {
	Rules          game.Rules
	AICount        int
	ActionsPerDay  int
	LobbyCountdown time.Duration
	ReadyCountdown time.Duration
	Clock          game.Clock
	RNG            *rand.Rand
	Logger         *slog.Logger
}

// Controller owns one game's lifecycle: idle -> lobby -> playing ->
// ended, with Reset returning to idle from anywhere. It wires the phase
// machine and progress coordinator together and tracks the narrative
// day/action budget.
type Controller struct {
	mu sync.Mutex

	cfg     Config
	log     *slog.Logger
	rng     *rand.Rand
	clock   game.Clock
	titling cases.Caser

	state    Lifecycle
	game     *game.GameState
	machine  *game.Machine
	progress *game.Coordinator

	roomCode      string
	pendingHumans []*house.Player
	lobbyTimer    game.Timer

	// onPhaseChange is notified after every successful phase advance,
	// for autosave and event broadcast. May be nil.
	onPhaseChange func(*game.GameState)
}

// NewController creates an idle controller.
func NewController(cfg Config) *Controller {
	if cfg.ActionsPerDay <= 0 {
		cfg.ActionsPerDay = DefaultActionsPerDay
	}
	if cfg.LobbyCountdown <= 0 {
		cfg.LobbyCountdown = DefaultLobbyCountdown
	}
	if cfg.Clock == nil {
		cfg.Clock = game.RealClock()
	}
	if cfg.RNG == nil {
		cfg.RNG = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.AICount <= 0 {
		cfg.AICount = 7
	}
	return &Controller{
		cfg:     cfg,
		log:     cfg.Logger,
		rng:     cfg.RNG,
		clock:   cfg.Clock,
		titling: cases.Title(language.English),
		state:   StateIdle,
	}
}

// OnPhaseChange registers a callback invoked after each successful
// phase advance. Used for autosave and event broadcast.
func (c *Controller) OnPhaseChange(fn func(*game.GameState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPhaseChange = fn
}

// Lifecycle returns the current session state.
func (c *Controller) Lifecycle() Lifecycle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Game returns the active game state, or nil before the game starts.
func (c *Controller) Game() *game.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game
}

// Machine returns the phase machine, or nil before the game starts.
func (c *Controller) Machine() *game.Machine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine
}

// Progress returns the readiness coordinator, or nil before the game
// starts.
func (c *Controller) Progress() *game.Coordinator {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// RoomCode returns the lobby room code, empty for singleplayer.
func (c *Controller) RoomCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode
}

// CreateSinglePlayerGame starts a singleplayer game for the given
// identity: one human plus the configured number of AI houseguests.
// Guests are rejected unless the admin bypass applies.
func (c *Controller) CreateSinglePlayerGame(id Identity) (*game.GameState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return nil, fmt.Errorf("cannot create a game from state %q", c.state)
	}
	if !id.IsAdmin {
		if !id.IsAuthenticated {
			return nil, fmt.Errorf("sign in to start a game")
		}
		if id.IsGuest {
			return nil, fmt.Errorf("guests cannot start a singleplayer game")
		}
	}

	human := house.NewHumanPlayer(id.PlayerID, c.displayName(id.Name), id.IsAdmin)
	roster := c.buildRoster([]*house.Player{human})
	c.startLocked(game.ModeSingle, roster)
	c.log.Info("Singleplayer game created", "game_id", c.game.ID, "players", len(roster.Players))
	return c.game, nil
}

// CreateMultiplayerGame opens a lobby with a short room code and starts
// the auto-start countdown. The game launches when the countdown
// elapses with at least two humans joined; otherwise the session resets
// to idle.
func (c *Controller) CreateMultiplayerGame(hostName string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return "", fmt.Errorf("cannot open a lobby from state %q", c.state)
	}

	c.roomCode = c.generateRoomCode()
	host := house.NewHumanPlayer("host", c.displayName(hostName), false)
	c.pendingHumans = []*house.Player{host}
	c.state = StateLobby

	c.lobbyTimer = c.clock.AfterFunc(c.cfg.LobbyCountdown, c.autoStart)
	c.log.Info("Multiplayer lobby opened", "room_code", c.roomCode)
	return c.roomCode, nil
}

// JoinMultiplayerGame adds a human player to a pending lobby.
func (c *Controller) JoinMultiplayerGame(code, name string) (*house.Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLobby {
		return nil, fmt.Errorf("no lobby is open")
	}
	if !strings.EqualFold(code, c.roomCode) {
		return nil, fmt.Errorf("unknown room code %q", code)
	}
	p := house.NewHumanPlayer(fmt.Sprintf("guest-%d", len(c.pendingHumans)), c.displayName(name), false)
	c.pendingHumans = append(c.pendingHumans, p)
	c.log.Info("Player joined lobby", "room_code", c.roomCode, "name", p.Name)
	return p, nil
}

// StartNow launches a multiplayer lobby immediately instead of waiting
// out the countdown. At least two humans must have joined.
func (c *Controller) StartNow() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLobby {
		return fmt.Errorf("no lobby is open")
	}
	if len(c.pendingHumans) < 2 {
		return fmt.Errorf("need at least 2 humans to start, have %d", len(c.pendingHumans))
	}
	c.stopLobbyTimerLocked()
	c.launchMultiplayerLocked()
	return nil
}

func (c *Controller) autoStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLobby {
		return
	}
	if len(c.pendingHumans) < 2 {
		c.log.Info("Lobby countdown elapsed without enough players, resetting", "room_code", c.roomCode)
		c.resetLocked()
		return
	}
	c.launchMultiplayerLocked()
}

func (c *Controller) launchMultiplayerLocked() {
	roster := c.buildRoster(c.pendingHumans)
	code := c.roomCode
	c.startLocked(game.ModeMulti, roster)
	c.game.RoomCode = code
	c.log.Info("Multiplayer game started", "game_id", c.game.ID, "humans", len(roster.Humans()))
}

// startLocked transitions to playing with a fresh game state, machine,
// and readiness coordinator.
func (c *Controller) startLocked(mode game.Mode, roster *house.Roster) {
	c.game = game.NewGameState(mode, roster)
	c.game.DayCount = 1
	c.game.ActionsRemaining = c.cfg.ActionsPerDay
	c.machine = game.NewMachine(c.cfg.Rules, c.rng)
	c.progress = game.NewCoordinator(mode, func() int {
		return len(roster.Humans())
	}, c.cfg.ReadyCountdown, c.clock, c.forceAdvance)
	c.progress.SetPhase(c.game.Phase)
	c.pendingHumans = nil
	c.state = StatePlaying
}

// buildRoster fills the house out to humans + AICount AI players, each
// with randomized attributes.
func (c *Controller) buildRoster(humans []*house.Player) *house.Roster {
	roster := house.NewRoster(humans...)
	for i := 0; i < c.cfg.AICount; i++ {
		name := aiNamePool[i%len(aiNamePool)]
		ai := house.NewAIPlayer(fmt.Sprintf("ai-%d", i+1), name)
		ai.RandomizeAttributes(c.rng)
		roster.Players = append(roster.Players, ai)
	}
	return roster
}

// Resume adopts a previously saved game, returning the session to
// playing (or ended, for games saved at the finale).
func (c *Controller) Resume(gs *game.GameState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return fmt.Errorf("cannot resume a game from state %q", c.state)
	}
	if gs == nil || gs.Roster == nil {
		return fmt.Errorf("nothing to resume")
	}
	c.game = gs
	c.machine = game.NewMachine(c.cfg.Rules, c.rng)
	c.progress = game.NewCoordinator(gs.Mode, func() int {
		return len(gs.Roster.Humans())
	}, c.cfg.ReadyCountdown, c.clock, c.forceAdvance)
	c.progress.SetPhase(gs.Phase)
	c.roomCode = gs.RoomCode
	if gs.Phase == game.PhaseFinale {
		c.state = StateEnded
	} else {
		c.state = StatePlaying
	}
	c.log.Info("Game resumed", "game_id", gs.ID, "week", gs.Week, "phase", gs.Phase)
	return nil
}

// MarkReady forwards a phase-tagged ready signal to the coordinator.
func (c *Controller) MarkReady(phase game.Phase, playerID string) error {
	c.mu.Lock()
	progress := c.progress
	c.mu.Unlock()
	if progress == nil {
		return fmt.Errorf("no game in progress")
	}
	progress.MarkReady(phase, playerID)
	return nil
}

// Advance runs the phase machine and rolls the coordinator to the new
// phase. The session ends when the finale is reached.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advanceLocked()
}

func (c *Controller) advanceLocked() error {
	if c.state != StatePlaying {
		return fmt.Errorf("no game in progress")
	}
	if err := c.machine.Advance(c.game); err != nil {
		return err
	}
	c.game.UpdatedAt = c.clock.Now()
	c.progress.SetPhase(c.game.Phase)
	if c.game.Phase == game.PhaseFinale {
		c.state = StateEnded
		c.progress.Close()
	}
	if c.onPhaseChange != nil {
		go c.onPhaseChange(c.game)
	}
	return nil
}

// forceAdvance is the coordinator's countdown callback. A force-advance
// that fails validation (required inputs still missing) is logged and
// dropped rather than wedging the game.
func (c *Controller) forceAdvance(phase game.Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePlaying || c.game.Phase != phase {
		return
	}
	if err := c.advanceLocked(); err != nil {
		c.log.Warn("Force-advance skipped", "phase", phase, "error", err)
	}
}

// SpendAction consumes one narrative action from today's budget.
func (c *Controller) SpendAction() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePlaying {
		return fmt.Errorf("no game in progress")
	}
	if c.game.ActionsRemaining <= 0 {
		return fmt.Errorf("no actions remaining today, advance the day first")
	}
	c.game.ActionsRemaining--
	return nil
}

// AdvanceDay resets the action budget and increments the day counter.
func (c *Controller) AdvanceDay() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePlaying {
		return fmt.Errorf("no game in progress")
	}
	c.game.DayCount++
	c.game.ActionsRemaining = c.cfg.ActionsPerDay
	return nil
}

// Reset tears the session down to idle from any state, cancelling the
// lobby countdown and the readiness coordinator's timers.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Controller) resetLocked() {
	c.stopLobbyTimerLocked()
	if c.progress != nil {
		c.progress.Close()
		c.progress = nil
	}
	c.state = StateIdle
	c.game = nil
	c.machine = nil
	c.roomCode = ""
	c.pendingHumans = nil
}

func (c *Controller) stopLobbyTimerLocked() {
	if c.lobbyTimer != nil {
		c.lobbyTimer.Stop()
		c.lobbyTimer = nil
	}
}

func (c *Controller) generateRoomCode() string {
	var b strings.Builder
	for i := 0; i < roomCodeLength; i++ {
		b.WriteByte(roomCodeAlphabet[c.rng.IntN(len(roomCodeAlphabet))])
	}
	return b.String()
}

func (c *Controller) displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Houseguest"
	}
	return c.titling.String(strings.ToLower(name))
}
