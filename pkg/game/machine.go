package game

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/jwebster45206/house-engine/pkg/house"
)

// Rules are the configurable house rules. Defaults match the classic
// format; veto draw eligibility is deliberately a knob because the
// format itself varies it by house size.
type Rules struct {
	// JuryStartSize is the branch threshold at Weekly Summary: when the
	// in-house count is at or below it, the game moves to Jury Questions.
	JuryStartSize int `json:"jury_start_size"`

	// JurySize is how many late evictees become jurors rather than plain
	// evicted players.
	JurySize int `json:"jury_size"`

	// LastHoHLockout bars the outgoing HoH from winning again the next
	// week, lifted at final three.
	LastHoHLockout bool `json:"last_hoh_lockout"`

	// VetoDraw selects who competes in the PoV competition: "all"
	// in-house players, or "draw" (HoH, nominees, and three random
	// others).
	VetoDraw string `json:"veto_draw"`
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		JuryStartSize:  2,
		JurySize:       3,
		LastHoHLockout: true,
		VetoDraw:       "all",
	}
}

// Machine drives the weekly phase cycle. Every mutating method either
// applies its full contract or returns a validation error leaving the
// state untouched.
type Machine struct {
	rules Rules
	rng   *rand.Rand
}

// NewMachine creates a phase machine with the given rules.
func NewMachine(rules Rules, rng *rand.Rand) *Machine {
	return &Machine{rules: rules, rng: rng}
}

// Rules returns the machine's rule set.
func (m *Machine) Rules() Rules {
	return m.rules
}

func errValidation(format string, args ...any) error {
	return &house.ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AssignHoH records the HoH competition winner. The winner's status and
// stats are updated; any previous HoH status is cleared.
func (m *Machine) AssignHoH(gs *GameState, playerID string) error {
	if gs.Phase != PhaseHoHCompetition && gs.Phase != PhaseSpecialCompetition {
		return errValidation("cannot assign HoH during %s", gs.Phase.Display())
	}
	p, err := gs.Roster.Get(playerID)
	if err != nil {
		return err
	}
	if !p.Status.InHouse() {
		return errValidation("%s is out of the house and cannot win HoH", p.Name)
	}
	if m.rules.LastHoHLockout && playerID == gs.LastHoH && len(gs.Roster.InHouse()) > 3 {
		return errValidation("%s was HoH last week and cannot compete", p.Name)
	}

	if gs.HoH != "" && gs.HoH != playerID {
		if prev, err := gs.Roster.Get(gs.HoH); err == nil && prev.Status == house.StatusHoH {
			prev.Status = house.StatusActive
		}
	}
	p.Status = house.StatusHoH
	p.Stats.HoHWins++
	p.Stats.CompetitionsWon++
	gs.HoH = playerID
	gs.StatusMessage = fmt.Sprintf("%s is the new Head of Household", p.Name)
	return nil
}

// Nominate records the HoH's two nominees.
func (m *Machine) Nominate(gs *GameState, nomineeIDs []string) error {
	if gs.Phase != PhaseNomination {
		return errValidation("cannot nominate during %s", gs.Phase.Display())
	}
	if len(nomineeIDs) != 2 {
		return errValidation("exactly 2 nominees are required, got %d", len(nomineeIDs))
	}
	if nomineeIDs[0] == nomineeIDs[1] {
		return errValidation("nominees must be distinct")
	}
	for _, id := range nomineeIDs {
		if err := m.checkNominable(gs, id); err != nil {
			return err
		}
	}

	for _, id := range nomineeIDs {
		p, _ := gs.Roster.Get(id)
		p.Status = house.StatusNominated
		p.Stats.TimesNominated++
	}
	gs.Nominees = append([]string(nil), nomineeIDs...)
	gs.StatusMessage = "Nominations are locked in"
	return nil
}

func (m *Machine) checkNominable(gs *GameState, id string) error {
	p, err := gs.Roster.Get(id)
	if err != nil {
		return err
	}
	if !p.Status.InHouse() {
		return errValidation("%s is out of the house and cannot be nominated", p.Name)
	}
	if id == gs.HoH {
		return errValidation("the HoH cannot be nominated")
	}
	if gs.IsImmune(id) {
		return errValidation("%s is immune this phase", p.Name)
	}
	return nil
}

// AssignVeto records the PoV competition winner. The winner may be the
// HoH or a nominee; their existing status is preserved in that case.
func (m *Machine) AssignVeto(gs *GameState, playerID string) error {
	if gs.Phase != PhasePoVCompetition {
		return errValidation("cannot assign veto during %s", gs.Phase.Display())
	}
	p, err := gs.Roster.Get(playerID)
	if err != nil {
		return err
	}
	if !p.Status.InHouse() {
		return errValidation("%s is out of the house and cannot win the veto", p.Name)
	}

	if p.Status == house.StatusActive {
		p.Status = house.StatusVeto
	}
	p.Stats.PoVWins++
	p.Stats.CompetitionsWon++
	gs.Veto = playerID
	gs.StatusMessage = fmt.Sprintf("%s wins the Power of Veto", p.Name)
	return nil
}

// ResolveVeto records the veto holder's decision. When used, savedID
// comes off the block and the HoH's replacementID goes up; the final
// nominees snapshot is taken after resolution. A nullified veto is
// forced unused.
func (m *Machine) ResolveVeto(gs *GameState, used bool, savedID, replacementID string) error {
	if gs.Phase != PhaseVetoCeremony {
		return errValidation("cannot resolve veto during %s", gs.Phase.Display())
	}
	if gs.Veto == "" {
		return errValidation("no veto holder assigned")
	}
	if gs.VetoDecided {
		return errValidation("the veto decision has already been made")
	}
	if used && gs.VetoNullified {
		used = false
		gs.StatusMessage = "The veto has been nullified and cannot be used"
	}

	if used {
		if !gs.IsNominee(savedID) {
			return errValidation("%q is not on the block", savedID)
		}
		if err := m.checkNominable(gs, replacementID); err != nil {
			return err
		}
		if replacementID == gs.Veto {
			return errValidation("the veto holder cannot be named as replacement")
		}
		if gs.IsNominee(replacementID) {
			return errValidation("%q is already nominated", replacementID)
		}

		saved, _ := gs.Roster.Get(savedID)
		saved.Status = house.StatusSafe
		repl, _ := gs.Roster.Get(replacementID)
		repl.Status = house.StatusNominated
		repl.Stats.TimesNominated++

		for i, id := range gs.Nominees {
			if id == savedID {
				gs.Nominees[i] = replacementID
				break
			}
		}
		gs.VetoSaved = savedID
		gs.VetoReplacement = replacementID
		gs.StatusMessage = fmt.Sprintf("%s has been saved; %s takes their place", saved.Name, repl.Name)
	} else if gs.StatusMessage == "" {
		gs.StatusMessage = "The veto was not used"
	}

	gs.VetoUsed = used
	gs.VetoDecided = true
	gs.FinalNominees = append([]string(nil), gs.Nominees...)
	return nil
}

// CastVote records one eviction vote. Voters are in-house players who
// are neither nominated nor the HoH; re-casting overwrites, so
// duplicate delivery is harmless.
func (m *Machine) CastVote(gs *GameState, voterID, nomineeID string) error {
	if gs.Phase != PhaseEvictionVoting {
		return errValidation("cannot vote during %s", gs.Phase.Display())
	}
	voter, err := gs.Roster.Get(voterID)
	if err != nil {
		return err
	}
	eligible := false
	for _, v := range gs.Voters() {
		if v.ID == voterID {
			eligible = true
			break
		}
	}
	if !eligible {
		return errValidation("%s is not part of the voting body", voter.Name)
	}
	if !slices.Contains(gs.FinalNominees, nomineeID) {
		return errValidation("%q is not a final nominee", nomineeID)
	}
	if gs.IsImmune(nomineeID) {
		return errValidation("votes cannot target an immune player")
	}
	if gs.Votes == nil {
		gs.Votes = make(map[string]string)
	}
	gs.Votes[voterID] = nomineeID
	return nil
}

// CastJuryVote records one juror's vote for a finalist.
func (m *Machine) CastJuryVote(gs *GameState, jurorID, finalistID string) error {
	if gs.Phase != PhaseJuryVoting {
		return errValidation("cannot cast a jury vote during %s", gs.Phase.Display())
	}
	juror, err := gs.Roster.Get(jurorID)
	if err != nil {
		return err
	}
	if juror.Status != house.StatusJuror {
		return errValidation("%s is not a juror", juror.Name)
	}
	if !slices.Contains(gs.Finalists, finalistID) {
		return errValidation("%q is not a finalist", finalistID)
	}
	if gs.JuryVotes == nil {
		gs.JuryVotes = make(map[string]string)
	}
	gs.JuryVotes[jurorID] = finalistID
	return nil
}

// Advance validates the current phase's exit requirements and moves to
// the next phase, applying that transition's mutations. It returns a
// validation error when required inputs are missing.
func (m *Machine) Advance(gs *GameState) error {
	var next Phase

	switch gs.Phase {
	case PhaseHoHCompetition, PhaseSpecialCompetition:
		if gs.HoH == "" {
			return errValidation("an HoH must be assigned before nominations")
		}
		next = PhaseNomination

	case PhaseNomination:
		if len(gs.Nominees) != 2 {
			return errValidation("two nominees are required before the PoV competition")
		}
		next = PhasePoVCompetition

	case PhasePoVCompetition:
		if gs.Veto == "" {
			return errValidation("a veto holder must be assigned before the ceremony")
		}
		next = PhaseVetoCeremony

	case PhaseVetoCeremony:
		if !gs.VetoDecided {
			return errValidation("the veto decision has not been made")
		}
		if len(gs.FinalNominees) != 2 {
			return errValidation("final nominees are not settled")
		}
		next = PhaseEvictionVoting

	case PhaseEvictionVoting:
		for _, v := range gs.Voters() {
			if _, ok := gs.Votes[v.ID]; !ok {
				return errValidation("%s has not voted yet", v.Name)
			}
		}
		next = PhaseEviction

	case PhaseEviction:
		if gs.Evicted == "" {
			m.resolveEviction(gs)
		}
		next = PhaseWeeklySummary

	case PhaseWeeklySummary:
		next = m.weeklyBranch(gs)

	case PhaseJuryQuestions:
		if len(gs.Finalists) < 2 {
			return errValidation("finalists are not set")
		}
		next = PhaseJuryVoting

	case PhaseJuryVoting:
		for _, j := range gs.Roster.Jurors() {
			if _, ok := gs.JuryVotes[j.ID]; !ok {
				return errValidation("juror %s has not voted yet", j.Name)
			}
		}
		m.resolveJuryVote(gs)
		next = PhaseFinale

	case PhaseFinale:
		return errValidation("the game is over")

	default:
		return errValidation("unknown phase %q", gs.Phase)
	}

	if !CanTransition(gs.Phase, next) {
		return fmt.Errorf("illegal transition %s -> %s", gs.Phase, next)
	}

	gs.Phase = next
	gs.Immune = nil
	gs.SelectedPlayers = nil

	switch next {
	case PhaseHoHCompetition:
		m.startNewWeek(gs)
	case PhaseJuryQuestions:
		m.seatFinalists(gs)
	case PhaseFinale:
		if gs.Winner == "" {
			m.resolveFinaleWithoutJury(gs)
		}
	}
	return nil
}

// resolveEviction tallies the eviction votes and flips the loser's
// status. Ties are broken by the HoH's deciding vote, modeled as
// evicting the final nominee the HoH has the lower affinity for.
func (m *Machine) resolveEviction(gs *GameState) {
	counts := make(map[string]int, len(gs.FinalNominees))
	for _, nominee := range gs.Votes {
		counts[nominee]++
	}

	a, b := gs.FinalNominees[0], gs.FinalNominees[1]
	var evicted string
	switch {
	case gs.IsImmune(a):
		evicted = b
	case gs.IsImmune(b):
		evicted = a
	case counts[a] > counts[b]:
		evicted = a
	case counts[b] > counts[a]:
		evicted = b
	default:
		// HoH breaks the tie.
		if gs.Roster.Affinity(gs.HoH, a) <= gs.Roster.Affinity(gs.HoH, b) {
			evicted = a
		} else {
			evicted = b
		}
	}

	inHouseBefore := len(gs.Roster.InHouse())
	p, _ := gs.Roster.Get(evicted)
	if inHouseBefore <= m.rules.JurySize+2 {
		p.Status = house.StatusJuror
	} else {
		p.Status = house.StatusEvicted
	}
	p.Stats.Placement = inHouseBefore
	gs.Evicted = evicted
	gs.StatusMessage = fmt.Sprintf("%s has been evicted from the house", p.Name)

	gs.Summaries = append(gs.Summaries, house.WeekSummary{
		Week:          gs.Week,
		HoH:           gs.HoH,
		Nominees:      m.originalNominees(gs),
		VetoPlayers:   m.vetoPlayers(gs),
		VetoWinner:    gs.Veto,
		VetoUsed:      gs.VetoUsed,
		FinalNominees: append([]string(nil), gs.FinalNominees...),
		Evicted:       evicted,
		EvictionVotes: copyVotes(gs.Votes),
		Notes:         gs.StatusMessage,
	})
}

// originalNominees reconstructs the pre-veto nominee pair.
func (m *Machine) originalNominees(gs *GameState) []string {
	if !gs.VetoUsed || gs.VetoSaved == "" {
		return append([]string(nil), gs.FinalNominees...)
	}
	out := make([]string, 0, 2)
	for _, id := range gs.FinalNominees {
		if id == gs.VetoReplacement {
			out = append(out, gs.VetoSaved)
			continue
		}
		out = append(out, id)
	}
	return out
}

func (m *Machine) vetoPlayers(gs *GameState) []string {
	players := m.VetoCompetitors(gs)
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.ID)
	}
	return out
}

func copyVotes(votes map[string]string) map[string]string {
	out := make(map[string]string, len(votes))
	for k, v := range votes {
		out[k] = v
	}
	return out
}

// weeklyBranch decides where the Weekly Summary leads: jury endgame,
// direct finale, or another week.
func (m *Machine) weeklyBranch(gs *GameState) Phase {
	active := len(gs.Roster.InHouse())
	switch {
	case active <= m.rules.JuryStartSize:
		return PhaseJuryQuestions
	case active == 2:
		return PhaseFinale
	default:
		return PhaseHoHCompetition
	}
}

// startNewWeek rolls the working state over for the next cycle.
func (m *Machine) startNewWeek(gs *GameState) {
	gs.Week++
	gs.LastHoH = gs.HoH
	gs.HoH = ""
	gs.Veto = ""
	gs.VetoUsed = false
	gs.VetoDecided = false
	gs.VetoNullified = false
	gs.VetoSaved = ""
	gs.VetoReplacement = ""
	gs.Nominees = nil
	gs.FinalNominees = nil
	gs.Votes = make(map[string]string)
	gs.Evicted = ""
	gs.StatusMessage = fmt.Sprintf("Week %d begins", gs.Week)

	for _, p := range gs.Roster.InHouse() {
		switch p.Status {
		case house.StatusHoH, house.StatusNominated, house.StatusVeto, house.StatusSafe:
			p.Status = house.StatusActive
		}
		p.Stats.DaysInHouse += 7
	}
}

// seatFinalists records the remaining players as finalists for the jury
// endgame.
func (m *Machine) seatFinalists(gs *GameState) {
	gs.Finalists = nil
	for _, p := range gs.Roster.InHouse() {
		gs.Finalists = append(gs.Finalists, p.ID)
	}
	gs.StatusMessage = "The jury will now question the finalists"
}

// resolveJuryVote tallies jury votes and crowns the winner. A tie goes
// to the finalist with more competition wins, then fewer nominations,
// then seating order.
func (m *Machine) resolveJuryVote(gs *GameState) {
	counts := make(map[string]int, len(gs.Finalists))
	for _, finalist := range gs.JuryVotes {
		counts[finalist]++
	}
	for id, n := range counts {
		if p, err := gs.Roster.Get(id); err == nil {
			p.Stats.JuryVotes = n
		}
	}

	winner := gs.Finalists[0]
	for _, id := range gs.Finalists[1:] {
		if m.beatsForWinner(gs, id, winner, counts) {
			winner = id
		}
	}
	m.crownWinner(gs, winner)
}

func (m *Machine) beatsForWinner(gs *GameState, a, b string, counts map[string]int) bool {
	if counts[a] != counts[b] {
		return counts[a] > counts[b]
	}
	pa, _ := gs.Roster.Get(a)
	pb, _ := gs.Roster.Get(b)
	if pa.Stats.CompetitionsWon != pb.Stats.CompetitionsWon {
		return pa.Stats.CompetitionsWon > pb.Stats.CompetitionsWon
	}
	return pa.Stats.TimesNominated < pb.Stats.TimesNominated
}

// resolveFinaleWithoutJury handles the jury-disabled branch: the winner
// is the finalist with the stronger season record.
func (m *Machine) resolveFinaleWithoutJury(gs *GameState) {
	inHouse := gs.Roster.InHouse()
	if len(inHouse) == 0 {
		return
	}
	gs.Finalists = nil
	for _, p := range inHouse {
		gs.Finalists = append(gs.Finalists, p.ID)
	}
	winner := gs.Finalists[0]
	for _, id := range gs.Finalists[1:] {
		if m.beatsForWinner(gs, id, winner, map[string]int{}) {
			winner = id
		}
	}
	m.crownWinner(gs, winner)
}

func (m *Machine) crownWinner(gs *GameState, winnerID string) {
	place := 2
	for _, id := range gs.Finalists {
		p, err := gs.Roster.Get(id)
		if err != nil {
			continue
		}
		if id == winnerID {
			p.Status = house.StatusWinner
			p.Stats.Placement = 1
			continue
		}
		p.Stats.Placement = place
		place++
	}
	gs.Winner = winnerID
	if w, err := gs.Roster.Get(winnerID); err == nil {
		gs.StatusMessage = fmt.Sprintf("%s has won the season", w.Name)
	}
}
