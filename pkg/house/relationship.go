package house

import (
	"math/rand/v2"
)

// RelationshipType is one rung on the affinity scale between two
// houseguests, from strongly negative to strongly positive.
type RelationshipType string

const (
	RelNemesis   RelationshipType = "Nemesis"
	RelEnemy     RelationshipType = "Enemy"
	RelRival     RelationshipType = "Rival"
	RelCold      RelationshipType = "Cold"
	RelNeutral   RelationshipType = "Neutral"
	RelCordial   RelationshipType = "Cordial"
	RelFriend    RelationshipType = "Friend"
	RelAlly      RelationshipType = "Ally"
	RelRideOrDie RelationshipType = "Ride or Die"
)

// RelationshipScale orders the rungs from worst to best. Randomize draws
// uniformly from this slice.
var RelationshipScale = []RelationshipType{
	RelNemesis,
	RelEnemy,
	RelRival,
	RelCold,
	RelNeutral,
	RelCordial,
	RelFriend,
	RelAlly,
	RelRideOrDie,
}

// Relationship is a directed affinity edge originating from the player
// that holds it, pointing at TargetID. At most one edge exists per
// ordered pair.
type Relationship struct {
	TargetID    string           `json:"target_id"`
	Type        RelationshipType `json:"type"`
	ExtraPoints int              `json:"extra_points"` // fine-grained modifier in [-10,10]
	IsMutual    bool             `json:"is_mutual"`
	IsPermanent bool             `json:"is_permanent"`
}

// RelationshipPatch is a merge-patch over one edge. Nil fields are left
// unchanged.
type RelationshipPatch struct {
	Type        *RelationshipType `json:"type,omitempty"`
	ExtraPoints *int              `json:"extra_points,omitempty"`
	IsMutual    *bool             `json:"is_mutual,omitempty"`
	IsPermanent *bool             `json:"is_permanent,omitempty"`
}

func defaultRelationship(targetID string) Relationship {
	return Relationship{
		TargetID: targetID,
		Type:     RelNeutral,
	}
}

// relationship returns a pointer to the edge p->targetID, or nil.
func (p *Player) relationship(targetID string) *Relationship {
	for i := range p.Relationships {
		if p.Relationships[i].TargetID == targetID {
			return &p.Relationships[i]
		}
	}
	return nil
}

// ensureRelationship returns the edge p->targetID, creating it with
// Neutral defaults when absent.
func (p *Player) ensureRelationship(targetID string) *Relationship {
	if rel := p.relationship(targetID); rel != nil {
		return rel
	}
	p.Relationships = append(p.Relationships, defaultRelationship(targetID))
	return &p.Relationships[len(p.Relationships)-1]
}

// SetRelationship upserts the edge playerID->targetID and applies the
// patch. When the resulting edge is mutual, the reverse edge is written
// to match (type, extra points, permanence), created if absent.
func (r *Roster) SetRelationship(playerID, targetID string, patch RelationshipPatch) error {
	if playerID == targetID {
		return newValidationError("a player cannot hold a relationship with themselves")
	}
	player, err := r.Get(playerID)
	if err != nil {
		return err
	}
	target, err := r.Get(targetID)
	if err != nil {
		return err
	}

	rel := player.ensureRelationship(targetID)
	applyRelationshipPatch(rel, patch)

	if rel.IsMutual {
		mirror := target.ensureRelationship(playerID)
		mirror.Type = rel.Type
		mirror.ExtraPoints = rel.ExtraPoints
		mirror.IsPermanent = rel.IsPermanent
		mirror.IsMutual = true
	}
	return nil
}

func applyRelationshipPatch(rel *Relationship, patch RelationshipPatch) {
	if patch.Type != nil {
		rel.Type = *patch.Type
	}
	if patch.ExtraPoints != nil {
		rel.ExtraPoints = *patch.ExtraPoints
	}
	if patch.IsMutual != nil {
		rel.IsMutual = *patch.IsMutual
	}
	if patch.IsPermanent != nil {
		rel.IsPermanent = *patch.IsPermanent
	}
}

// RandomizeAll overwrites the relationship list of every in-house player
// with freshly drawn edges toward every other in-house player. Permanent
// edges are carried over untouched. Edges owned by or targeting evicted
// players are left stale for historical display.
func (r *Roster) RandomizeAll(rng *rand.Rand) {
	for _, p := range r.Players {
		if !p.Status.InHouse() {
			continue
		}
		fresh := make([]Relationship, 0, len(r.Players)-1)
		for _, t := range r.Players {
			if t.ID == p.ID {
				continue
			}
			if !t.Status.InHouse() {
				// Keep whatever edge already points at the evicted player.
				if old := p.relationship(t.ID); old != nil {
					fresh = append(fresh, *old)
				}
				continue
			}
			if old := p.relationship(t.ID); old != nil && old.IsPermanent {
				fresh = append(fresh, *old)
				continue
			}
			fresh = append(fresh, Relationship{
				TargetID:    t.ID,
				Type:        RelationshipScale[rng.IntN(len(RelationshipScale))],
				ExtraPoints: rng.IntN(21) - 10,
				IsMutual:    rng.Float64() < 0.3,
				IsPermanent: rng.Float64() < 0.15,
			})
		}
		p.Relationships = fresh
	}
}

// ResetPlayer sets every non-permanent edge from the given player toward
// in-house targets back to Neutral defaults.
func (r *Roster) ResetPlayer(playerID string) error {
	p, err := r.Get(playerID)
	if err != nil {
		return err
	}
	r.resetEdges(p)
	return nil
}

// ResetAll resets every in-house player's non-permanent edges toward
// in-house targets to Neutral defaults.
func (r *Roster) ResetAll() {
	for _, p := range r.Players {
		if !p.Status.InHouse() {
			continue
		}
		r.resetEdges(p)
	}
}

func (r *Roster) resetEdges(p *Player) {
	for i := range p.Relationships {
		rel := &p.Relationships[i]
		if rel.IsPermanent {
			continue
		}
		target, err := r.Get(rel.TargetID)
		if err != nil || !target.Status.InHouse() {
			continue
		}
		rel.Type = RelNeutral
		rel.ExtraPoints = 0
		rel.IsMutual = false
		rel.IsPermanent = false
	}
}

// SetAllPermanent toggles permanence on every existing edge of every
// player without touching type or extra points.
func (r *Roster) SetAllPermanent(permanent bool) {
	for _, p := range r.Players {
		for i := range p.Relationships {
			p.Relationships[i].IsPermanent = permanent
		}
	}
}

// Affinity sums the scale position and extra points of the edge
// playerID->targetID, for AI decision weighting. Neutral with no edge.
func (r *Roster) Affinity(playerID, targetID string) int {
	p, err := r.Get(playerID)
	if err != nil {
		return 0
	}
	rel := p.relationship(targetID)
	if rel == nil {
		return 0
	}
	pos := 0
	for i, t := range RelationshipScale {
		if t == rel.Type {
			pos = i - len(RelationshipScale)/2
			break
		}
	}
	return pos*5 + rel.ExtraPoints
}
