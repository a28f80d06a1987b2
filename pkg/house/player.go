package house

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// PlayerStatus is a houseguest's current standing in the game.
// The empty string means active with no special role.
type PlayerStatus string

const (
	StatusActive    PlayerStatus = ""
	StatusHoH       PlayerStatus = "hoh"
	StatusNominated PlayerStatus = "nominated"
	StatusVeto      PlayerStatus = "veto"
	StatusSafe      PlayerStatus = "safe"
	StatusEvicted   PlayerStatus = "evicted"
	StatusJuror     PlayerStatus = "juror"
	StatusWinner    PlayerStatus = "winner"
)

// InHouse reports whether the player is still competing.
// Evicted players and jurors remain addressable for history,
// but are never eligible for competitions, nominations, or votes.
func (s PlayerStatus) InHouse() bool {
	switch s {
	case StatusEvicted, StatusJuror:
		return false
	}
	return true
}

// Powerup is a one-use special ability. Empty string means none held.
type Powerup string

const (
	PowerupNone     Powerup = ""
	PowerupImmunity Powerup = "immunity"
	PowerupCoup     Powerup = "coup"
	PowerupReplay   Powerup = "replay"
	PowerupNullify  Powerup = "nullify"
)

// AttributeKeys lists the skill attributes tracked per houseguest.
// Values are integers in [1,10].
var AttributeKeys = []string{
	"physical",
	"mental",
	"social",
	"endurance",
	"strategic",
	"loyalty",
	"temperament",
	"adaptability",
	"risk",
	"leadership",
	"deception",
	"independence",
	"general",
}

// PlayerStats are cumulative counters accrued over a season.
type PlayerStats struct {
	HoHWins         int `json:"hoh_wins"`
	PoVWins         int `json:"pov_wins"`
	TimesNominated  int `json:"times_nominated"`
	DaysInHouse     int `json:"days_in_house"`
	CompetitionsWon int `json:"competitions_won"`
	JuryVotes       int `json:"jury_votes"`
	Placement       int `json:"placement,omitempty"`
}

// Player is one houseguest. Players are created at game setup and never
// deleted; eviction is a status change so the social graph stays intact
// for history display.
type Player struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	IsHuman bool         `json:"is_human"`
	IsAdmin bool         `json:"is_admin,omitempty"`
	IsAI    bool         `json:"is_ai"`
	Status  PlayerStatus `json:"status,omitempty"`

	Attributes    map[string]int `json:"attributes,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
	Alliances     []string       `json:"alliances,omitempty"`
	Powerup       Powerup        `json:"powerup,omitempty"`
	Stats         PlayerStats    `json:"stats"`

	// Emotion is the currently displayed emotion for AI players.
	// History lives in Memory entries, which carry their own emotion tag.
	Emotion string        `json:"emotion,omitempty"`
	Memory  []MemoryEntry `json:"memory,omitempty"`
}

// NewHumanPlayer creates a human houseguest with default attributes.
func NewHumanPlayer(id, name string, isAdmin bool) *Player {
	return &Player{
		ID:         id,
		Name:       name,
		IsHuman:    true,
		IsAdmin:    isAdmin,
		Attributes: defaultAttributes(),
	}
}

// NewAIPlayer creates an AI houseguest with default attributes.
func NewAIPlayer(id, name string) *Player {
	return &Player{
		ID:         id,
		Name:       name,
		IsAI:       true,
		Attributes: defaultAttributes(),
	}
}

func defaultAttributes() map[string]int {
	attrs := make(map[string]int, len(AttributeKeys))
	for _, key := range AttributeKeys {
		attrs[key] = 5
	}
	return attrs
}

// RandomizeAttributes assigns each tracked attribute a value drawn
// uniformly from [1,10].
func (p *Player) RandomizeAttributes(rng *rand.Rand) {
	if p.Attributes == nil {
		p.Attributes = make(map[string]int, len(AttributeKeys))
	}
	for _, key := range AttributeKeys {
		p.Attributes[key] = rng.IntN(10) + 1
	}
}

// Attribute returns the named attribute, defaulting to 5 when unset.
func (p *Player) Attribute(key string) int {
	if v, ok := p.Attributes[key]; ok {
		return v
	}
	return 5
}

// HasAlliance reports whether the player's denormalized alliance view
// contains the given alliance name.
func (p *Player) HasAlliance(name string) bool {
	for _, a := range p.Alliances {
		if a == name {
			return true
		}
	}
	return false
}

// AddMemory appends an episodic memory entry, evicting the
// lowest-importance entry when the cap is exceeded. Entries are never
// removed for any other reason within a session.
func (p *Player) AddMemory(entry MemoryEntry, limit int) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	p.Memory = append(p.Memory, entry)
	if limit <= 0 || len(p.Memory) <= limit {
		return
	}
	lowest := 0
	for i, e := range p.Memory {
		if e.Importance < p.Memory[lowest].Importance {
			lowest = i
		}
	}
	p.Memory = append(p.Memory[:lowest], p.Memory[lowest+1:]...)
}

func (p *Player) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.ID)
}
