package house

// WeekSummary is the immutable record of one completed weekly cycle.
// It is appended when the eviction resolves and never mutated afterward.
type WeekSummary struct {
	Week          int               `json:"week"`
	HoH           string            `json:"hoh,omitempty"`
	Nominees      []string          `json:"nominees,omitempty"`
	VetoPlayers   []string          `json:"veto_players,omitempty"`
	VetoWinner    string            `json:"veto_winner,omitempty"`
	VetoUsed      bool              `json:"veto_used"`
	FinalNominees []string          `json:"final_nominees,omitempty"`
	Evicted       string            `json:"evicted,omitempty"`
	EvictionVotes map[string]string `json:"eviction_votes,omitempty"` // voter -> nominee
	Notes         string            `json:"notes,omitempty"`
}
