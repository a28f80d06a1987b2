package house

import (
	"time"
)

// Memory impact tags.
const (
	ImpactPositive = "positive"
	ImpactNegative = "negative"
	ImpactNeutral  = "neutral"
)

// DefaultMemoryLimit bounds per-player memory growth over a long session.
// When exceeded, the lowest-importance entry is evicted.
const DefaultMemoryLimit = 200

// MemoryEntry is one episodic memory recorded for an AI houseguest.
// Entries are append-only; freshness decay is a weighting signal and
// never deletes anything by itself.
type MemoryEntry struct {
	Type        string    `json:"type"`
	Week        int       `json:"week"`
	Description string    `json:"description"`
	Impact      string    `json:"impact"` // positive, negative, neutral
	Importance  int       `json:"importance"`
	Emotion     string    `json:"emotion,omitempty"`
	Decay       float64   `json:"decay,omitempty"` // 0 means default 0.5
	Timestamp   time.Time `json:"timestamp"`
}

// Freshness scores how vivid a memory still is, on a 0-100 scale.
// It decreases with age and increases with importance:
//
//	clamp(0, 100, (100 - ageDays*10 + importance*5) * decay)
//
// Entries without an explicit decay factor use 0.5.
func (e MemoryEntry) Freshness(now time.Time) float64 {
	decay := e.Decay
	if decay == 0 {
		decay = 0.5
	}
	ageDays := now.Sub(e.Timestamp).Hours() / 24
	score := (100 - ageDays*10 + float64(e.Importance)*5) * decay
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
