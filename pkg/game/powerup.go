package game

import (
	"fmt"

	"github.com/jwebster45206/house-engine/pkg/house"
)

// PowerupPlay carries the optional inputs a powerup needs. Coup requires
// the replacement nominee pair.
type PowerupPlay struct {
	NewNominees []string `json:"new_nominees,omitempty"`
}

// UsePowerup plays the holder's powerup. Powerups are usable during the
// Nomination Ceremony, Veto Ceremony, and Eviction phases, and are
// consumed immediately regardless of outcome once past validation.
func (m *Machine) UsePowerup(gs *GameState, playerID string, play PowerupPlay) error {
	switch gs.Phase {
	case PhaseNomination, PhaseVetoCeremony, PhaseEvictionVoting, PhaseEviction:
	default:
		return errValidation("powerups cannot be used during %s", gs.Phase.Display())
	}
	p, err := gs.Roster.Get(playerID)
	if err != nil {
		return err
	}
	if p.Powerup == house.PowerupNone {
		return errValidation("%s holds no powerup", p.Name)
	}

	powerup := p.Powerup
	p.Powerup = house.PowerupNone

	switch powerup {
	case house.PowerupImmunity:
		return m.playImmunity(gs, p)
	case house.PowerupCoup:
		return m.playCoup(gs, p, play)
	case house.PowerupReplay:
		return m.playReplay(gs, p)
	case house.PowerupNullify:
		return m.playNullify(gs, p)
	}
	return errValidation("unknown powerup %q", powerup)
}

// playImmunity shields the holder from nomination and eviction targeting
// for the current phase only.
func (m *Machine) playImmunity(gs *GameState, p *house.Player) error {
	if !gs.IsImmune(p.ID) {
		gs.Immune = append(gs.Immune, p.ID)
	}
	gs.StatusMessage = fmt.Sprintf("%s is immune for this phase", p.Name)
	return nil
}

// playCoup overrides the HoH's nomination choice with the holder's own
// pair. Only meaningful once nominations exist.
func (m *Machine) playCoup(gs *GameState, p *house.Player, play PowerupPlay) error {
	if gs.Phase != PhaseNomination {
		return errValidation("the coup can only overturn nominations")
	}
	if len(play.NewNominees) != 2 {
		return errValidation("the coup requires exactly 2 replacement nominees")
	}
	if play.NewNominees[0] == play.NewNominees[1] {
		return errValidation("nominees must be distinct")
	}
	for _, id := range play.NewNominees {
		if id == p.ID {
			return errValidation("the coup holder cannot nominate themselves")
		}
		if err := m.checkNominable(gs, id); err != nil {
			return err
		}
	}

	for _, id := range gs.Nominees {
		if id == play.NewNominees[0] || id == play.NewNominees[1] {
			continue
		}
		old, _ := gs.Roster.Get(id)
		old.Status = house.StatusActive
		old.Stats.TimesNominated--
	}
	for _, id := range play.NewNominees {
		if gs.IsNominee(id) {
			continue
		}
		nom, _ := gs.Roster.Get(id)
		nom.Status = house.StatusNominated
		nom.Stats.TimesNominated++
	}
	gs.Nominees = append([]string(nil), play.NewNominees...)
	gs.StatusMessage = fmt.Sprintf("%s stages a coup and overturns the nominations", p.Name)
	return nil
}

// playReplay voids the most recent competition result and sends the
// house back to re-run it.
func (m *Machine) playReplay(gs *GameState, p *house.Player) error {
	switch gs.Phase {
	case PhaseNomination:
		if gs.HoH == "" {
			return errValidation("there is no HoH result to replay")
		}
		hoh, _ := gs.Roster.Get(gs.HoH)
		if hoh.Status == house.StatusHoH {
			hoh.Status = house.StatusActive
		}
		hoh.Stats.HoHWins--
		hoh.Stats.CompetitionsWon--
		gs.HoH = ""
		gs.Phase = PhaseHoHCompetition
		gs.StatusMessage = fmt.Sprintf("%s forces the HoH competition to be replayed", p.Name)
		return nil
	case PhaseVetoCeremony:
		if gs.Veto == "" {
			return errValidation("there is no veto result to replay")
		}
		if gs.VetoDecided {
			return errValidation("the veto decision has already been made")
		}
		holder, _ := gs.Roster.Get(gs.Veto)
		if holder.Status == house.StatusVeto {
			holder.Status = house.StatusActive
		}
		holder.Stats.PoVWins--
		holder.Stats.CompetitionsWon--
		gs.Veto = ""
		gs.Phase = PhasePoVCompetition
		gs.StatusMessage = fmt.Sprintf("%s forces the veto competition to be replayed", p.Name)
		return nil
	}
	return errValidation("there is no competition to replay during %s", gs.Phase.Display())
}

// playNullify cancels a veto use: a pending decision is forced unused,
// and an already-used veto is reverted, restoring the original nominees.
func (m *Machine) playNullify(gs *GameState, p *house.Player) error {
	if gs.Veto == "" {
		return errValidation("there is no veto to nullify")
	}
	gs.VetoNullified = true

	if gs.VetoDecided && gs.VetoUsed {
		saved, _ := gs.Roster.Get(gs.VetoSaved)
		if saved != nil {
			saved.Status = house.StatusNominated
		}
		if repl, err := gs.Roster.Get(gs.VetoReplacement); err == nil {
			repl.Status = house.StatusActive
			repl.Stats.TimesNominated--
		}
		for i, id := range gs.Nominees {
			if id == gs.VetoReplacement {
				gs.Nominees[i] = gs.VetoSaved
			}
		}
		gs.VetoUsed = false
		gs.VetoSaved = ""
		gs.VetoReplacement = ""
		gs.FinalNominees = append([]string(nil), gs.Nominees...)
	}
	gs.StatusMessage = fmt.Sprintf("%s nullifies the Power of Veto", p.Name)
	return nil
}
