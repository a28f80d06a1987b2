package house

import (
	"fmt"
	"math/rand/v2"
)

// ValidationError is a locally rejected request. State is left unchanged
// when one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation error, as opposed to
// an infrastructure failure.
func IsValidation(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// Roster is the canonical player registry plus the alliance ledger.
// Players are never removed; eviction is a status flag.
type Roster struct {
	Players   []*Player   `json:"players"`
	Alliances []*Alliance `json:"alliances,omitempty"`
}

// NewRoster builds a roster from the given players.
func NewRoster(players ...*Player) *Roster {
	return &Roster{Players: players}
}

// Get returns the player with the given ID.
func (r *Roster) Get(id string) (*Player, error) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, newValidationError("player %q not found", id)
}

// Add appends a player to the roster. Duplicate IDs are rejected.
func (r *Roster) Add(p *Player) error {
	if _, err := r.Get(p.ID); err == nil {
		return newValidationError("player %q already exists", p.ID)
	}
	r.Players = append(r.Players, p)
	return nil
}

// PlayerPatch is a merge-patch over a player. Nil fields are left
// unchanged, so concurrent phase logic can update disjoint fields
// without clobbering each other.
type PlayerPatch struct {
	Name    *string       `json:"name,omitempty"`
	Status  *PlayerStatus `json:"status,omitempty"`
	Powerup *Powerup      `json:"powerup,omitempty"`
	Emotion *string       `json:"emotion,omitempty"`
	IsAdmin *bool         `json:"is_admin,omitempty"`
}

// Update applies a merge-patch to the player and returns it.
func (r *Roster) Update(id string, patch PlayerPatch) (*Player, error) {
	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Powerup != nil {
		p.Powerup = *patch.Powerup
	}
	if patch.Emotion != nil {
		p.Emotion = *patch.Emotion
	}
	if patch.IsAdmin != nil {
		p.IsAdmin = *patch.IsAdmin
	}
	return p, nil
}

// UpdateAttributes merges the given attribute values into the player's
// attribute map. Unmentioned attributes keep their values.
func (r *Roster) UpdateAttributes(id string, attrs map[string]int) (*Player, error) {
	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if p.Attributes == nil {
		p.Attributes = make(map[string]int, len(attrs))
	}
	for k, v := range attrs {
		p.Attributes[k] = v
	}
	return p, nil
}

// RandomizeAttributes redraws every tracked attribute for the player.
func (r *Roster) RandomizeAttributes(id string, rng *rand.Rand) (*Player, error) {
	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	p.RandomizeAttributes(rng)
	return p, nil
}

// InHouse returns players still competing, in roster order.
func (r *Roster) InHouse() []*Player {
	var out []*Player
	for _, p := range r.Players {
		if p.Status.InHouse() {
			out = append(out, p)
		}
	}
	return out
}

// Humans returns the human players still competing.
func (r *Roster) Humans() []*Player {
	var out []*Player
	for _, p := range r.Players {
		if p.IsHuman && p.Status.InHouse() {
			out = append(out, p)
		}
	}
	return out
}

// Jurors returns players whose status is juror, in eviction order.
func (r *Roster) Jurors() []*Player {
	var out []*Player
	for _, p := range r.Players {
		if p.Status == StatusJuror {
			out = append(out, p)
		}
	}
	return out
}
