package game

import (
	"github.com/jwebster45206/house-engine/pkg/house"
)

// competitionWeights maps each competition to the attributes that
// matter for it.
var competitionWeights = map[Phase][]string{
	PhaseHoHCompetition:     {"physical", "mental", "endurance"},
	PhaseSpecialCompetition: {"physical", "strategic", "general"},
	PhasePoVCompetition:     {"physical", "strategic", "general"},
}

// HoHCompetitors returns the players eligible to compete for HoH. The
// outgoing HoH sits out under the lockout rule, lifted at final three.
func (m *Machine) HoHCompetitors(gs *GameState) []*house.Player {
	inHouse := gs.Roster.InHouse()
	if !m.rules.LastHoHLockout || gs.LastHoH == "" || len(inHouse) <= 3 {
		return inHouse
	}
	out := make([]*house.Player, 0, len(inHouse))
	for _, p := range inHouse {
		if p.ID == gs.LastHoH {
			continue
		}
		out = append(out, p)
	}
	return out
}

// VetoCompetitors returns the players eligible for the PoV competition
// under the configured draw rule: everyone in the house, or the HoH,
// both nominees, and three random others.
func (m *Machine) VetoCompetitors(gs *GameState) []*house.Player {
	inHouse := gs.Roster.InHouse()
	if m.rules.VetoDraw != "draw" || len(inHouse) <= 6 {
		return inHouse
	}

	locked := map[string]bool{gs.HoH: true}
	for _, id := range gs.Nominees {
		locked[id] = true
	}
	var pool []*house.Player
	out := make([]*house.Player, 0, 6)
	for _, p := range inHouse {
		if locked[p.ID] {
			out = append(out, p)
			continue
		}
		pool = append(pool, p)
	}
	m.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	for i := 0; i < 3 && i < len(pool); i++ {
		out = append(out, pool[i])
	}
	return out
}

// RunCompetition simulates the current phase's competition with an
// attribute-weighted random draw and returns the winner's ID. It is
// used when no explicit winner is supplied, typically for AI-only
// fields.
func (m *Machine) RunCompetition(gs *GameState) (string, error) {
	var competitors []*house.Player
	switch gs.Phase {
	case PhaseHoHCompetition, PhaseSpecialCompetition:
		competitors = m.HoHCompetitors(gs)
	case PhasePoVCompetition:
		competitors = m.VetoCompetitors(gs)
	default:
		return "", errValidation("no competition runs during %s", gs.Phase.Display())
	}
	if len(competitors) == 0 {
		return "", errValidation("no eligible competitors")
	}

	keys := competitionWeights[gs.Phase]
	total := 0
	weights := make([]int, len(competitors))
	for i, p := range competitors {
		w := 0
		for _, key := range keys {
			w += p.Attribute(key)
		}
		weights[i] = w
		total += w
	}

	roll := m.rng.IntN(total)
	for i, p := range competitors {
		roll -= weights[i]
		if roll < 0 {
			return p.ID, nil
		}
	}
	return competitors[len(competitors)-1].ID, nil
}
