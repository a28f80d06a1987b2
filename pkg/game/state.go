package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/house-engine/pkg/house"
)

// Mode distinguishes singleplayer from multiplayer sessions.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

// GameState is the persisted state of one game: the roster plus the
// working state of the current week. Alliances and relationships are
// embedded in the roster's players, not persisted separately.
type GameState struct {
	ID       uuid.UUID `json:"id"`
	Mode     Mode      `json:"mode"`
	RoomCode string    `json:"room_code,omitempty"`

	Week  int   `json:"week"`
	Phase Phase `json:"phase"`

	Roster *house.Roster `json:"roster"`

	HoH     string `json:"hoh_id,omitempty"`
	LastHoH string `json:"last_hoh_id,omitempty"`
	Veto    string `json:"veto_holder_id,omitempty"`

	// VetoDecided is set once the veto holder has announced a decision,
	// whether or not the veto was used.
	VetoUsed    bool `json:"veto_used"`
	VetoDecided bool `json:"veto_decided"`

	Nominees      []string `json:"nominees,omitempty"`
	FinalNominees []string `json:"final_nominees,omitempty"`

	// SelectedPlayers is a transient UI selection, round-tripped for
	// resume but carrying no game meaning.
	SelectedPlayers []string `json:"selected_players,omitempty"`

	Finalists []string          `json:"finalists,omitempty"`
	Votes     map[string]string `json:"votes,omitempty"`      // voter -> nominee
	JuryVotes map[string]string `json:"jury_votes,omitempty"` // juror -> finalist
	Evicted   string            `json:"evicted_id,omitempty"` // this week's evictee

	// Immune players cannot be nominated or evicted during the current
	// phase only. Cleared on every phase change.
	Immune []string `json:"immune,omitempty"`

	// VetoNullified blocks (or reverts) a veto use for the current week.
	VetoNullified bool `json:"veto_nullified,omitempty"`

	// VetoSaved and VetoReplacement record a used veto's outcome so the
	// original nominee pair can be reconstructed (and a nullify reverted).
	VetoSaved       string `json:"veto_saved,omitempty"`
	VetoReplacement string `json:"veto_replacement,omitempty"`

	Winner    string              `json:"winner_id,omitempty"`
	Summaries []house.WeekSummary `json:"summaries,omitempty"`

	StatusMessage string `json:"status_message,omitempty"`

	// Narrative-layer day tracking, orthogonal to the weekly cycle.
	DayCount         int `json:"day_count"`
	ActionsRemaining int `json:"actions_remaining"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGameState starts a game in week 1 at the HoH competition.
func NewGameState(mode Mode, roster *house.Roster) *GameState {
	now := time.Now()
	return &GameState{
		ID:        uuid.New(),
		Mode:      mode,
		Week:      1,
		Phase:     PhaseHoHCompetition,
		Roster:    roster,
		Votes:     make(map[string]string),
		JuryVotes: make(map[string]string),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsImmune reports whether the player holds phase immunity right now.
func (gs *GameState) IsImmune(playerID string) bool {
	for _, id := range gs.Immune {
		if id == playerID {
			return true
		}
	}
	return false
}

// IsNominee reports whether the player is currently on the block.
func (gs *GameState) IsNominee(playerID string) bool {
	for _, id := range gs.Nominees {
		if id == playerID {
			return true
		}
	}
	return false
}

// Voters returns the eviction voting body: every in-house player who is
// neither a nominee nor the sitting HoH. The HoH votes only to break a
// tie.
func (gs *GameState) Voters() []*house.Player {
	var out []*house.Player
	for _, p := range gs.Roster.InHouse() {
		if p.ID == gs.HoH || gs.IsNominee(p.ID) {
			continue
		}
		out = append(out, p)
	}
	return out
}
