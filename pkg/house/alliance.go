package house

import (
	"github.com/google/uuid"
)

// Alliance is a named group of players coordinating votes and strategy.
// Records are never deleted; membership may shrink to zero so history
// is preserved.
type Alliance struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// HasMember reports whether playerID is in the alliance.
func (a *Alliance) HasMember(playerID string) bool {
	for _, id := range a.Members {
		if id == playerID {
			return true
		}
	}
	return false
}

// CreateAlliance adds a new alliance with at least two members and
// mirrors the membership into each member's denormalized alliance view.
func (r *Roster) CreateAlliance(name string, memberIDs []string) (*Alliance, error) {
	if name == "" {
		return nil, newValidationError("alliance name cannot be empty")
	}
	if len(memberIDs) < 2 {
		return nil, newValidationError("an alliance needs at least 2 members")
	}
	for _, id := range memberIDs {
		if _, err := r.Get(id); err != nil {
			return nil, err
		}
	}

	a := &Alliance{
		ID:      uuid.New().String(),
		Name:    name,
		Members: append([]string(nil), memberIDs...),
	}
	r.Alliances = append(r.Alliances, a)
	for _, id := range memberIDs {
		p, _ := r.Get(id)
		if !p.HasAlliance(name) {
			p.Alliances = append(p.Alliances, name)
		}
	}
	return a, nil
}

// Alliance returns the alliance with the given ID.
func (r *Roster) Alliance(allianceID string) (*Alliance, error) {
	for _, a := range r.Alliances {
		if a.ID == allianceID {
			return a, nil
		}
	}
	return nil, newValidationError("alliance %q not found", allianceID)
}

// AddMember adds a player to an alliance. Adding an existing member is
// a no-op.
func (r *Roster) AddMember(allianceID, playerID string) error {
	a, err := r.Alliance(allianceID)
	if err != nil {
		return err
	}
	p, err := r.Get(playerID)
	if err != nil {
		return err
	}
	if a.HasMember(playerID) {
		return nil
	}
	a.Members = append(a.Members, playerID)
	if !p.HasAlliance(a.Name) {
		p.Alliances = append(p.Alliances, a.Name)
	}
	return nil
}

// RemoveMember removes a player from an alliance. Removing an absent
// member is a no-op. The alliance record survives even with no members.
func (r *Roster) RemoveMember(allianceID, playerID string) error {
	a, err := r.Alliance(allianceID)
	if err != nil {
		return err
	}
	for i, id := range a.Members {
		if id == playerID {
			a.Members = append(a.Members[:i], a.Members[i+1:]...)
			break
		}
	}
	if p, err := r.Get(playerID); err == nil {
		for i, name := range p.Alliances {
			if name == a.Name {
				p.Alliances = append(p.Alliances[:i], p.Alliances[i+1:]...)
				break
			}
		}
	}
	return nil
}
