package game

// Phase is one stage of the weekly elimination cycle.
type Phase string

const (
	PhaseHoHCompetition     Phase = "hoh_competition"
	PhaseNomination         Phase = "nomination_ceremony"
	PhasePoVCompetition     Phase = "pov_competition"
	PhaseVetoCeremony       Phase = "veto_ceremony"
	PhaseEvictionVoting     Phase = "eviction_voting"
	PhaseEviction           Phase = "eviction"
	PhaseWeeklySummary      Phase = "weekly_summary"
	PhaseSpecialCompetition Phase = "special_competition"
	PhaseJuryQuestions      Phase = "jury_questions"
	PhaseJuryVoting         Phase = "jury_voting"
	PhaseFinale             Phase = "finale"
)

// Display returns the human-readable phase name.
func (p Phase) Display() string {
	switch p {
	case PhaseHoHCompetition:
		return "HoH Competition"
	case PhaseNomination:
		return "Nomination Ceremony"
	case PhasePoVCompetition:
		return "PoV Competition"
	case PhaseVetoCeremony:
		return "Veto Ceremony"
	case PhaseEvictionVoting:
		return "Eviction Voting"
	case PhaseEviction:
		return "Eviction"
	case PhaseWeeklySummary:
		return "Weekly Summary"
	case PhaseSpecialCompetition:
		return "Special Competition"
	case PhaseJuryQuestions:
		return "Jury Questions"
	case PhaseJuryVoting:
		return "Jury Voting"
	case PhaseFinale:
		return "Finale"
	}
	return string(p)
}

// transitions is the legal transition table. Weekly Summary is the one
// branch point: its successor is computed by the machine, so all three
// successors are listed here.
var transitions = map[Phase][]Phase{
	PhaseHoHCompetition:     {PhaseNomination},
	PhaseNomination:         {PhasePoVCompetition},
	PhasePoVCompetition:     {PhaseVetoCeremony},
	PhaseVetoCeremony:       {PhaseEvictionVoting},
	PhaseEvictionVoting:     {PhaseEviction},
	PhaseEviction:           {PhaseWeeklySummary},
	PhaseWeeklySummary:      {PhaseHoHCompetition, PhaseJuryQuestions, PhaseFinale},
	PhaseSpecialCompetition: {PhaseNomination},
	PhaseJuryQuestions:      {PhaseJuryVoting},
	PhaseJuryVoting:         {PhaseFinale},
	PhaseFinale:             {},
}

// CanTransition reports whether from -> to is in the legal table.
func CanTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the phase has no successor.
func (p Phase) Terminal() bool {
	return len(transitions[p]) == 0
}
