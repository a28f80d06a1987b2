package director

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jwebster45206/house-engine/internal/services"
	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/house"
)

// DefaultDecisionTimeout bounds how long one AI decision may take
// before the deterministic fallback kicks in.
const DefaultDecisionTimeout = 20 * time.Second

// Situation describes what an AI houseguest is being asked to decide
// or talk about.
type Situation struct {
	Phase   game.Phase `json:"phase"`
	Prompt  string     `json:"prompt"`
	Options []string   `json:"options,omitempty"`
	Context string     `json:"context,omitempty"`
}

// Decision is a resolved AI choice. Fallback is set when the generator
// failed or timed out and the deterministic default was used instead.
type Decision struct {
	Selection string `json:"selection"`
	Reasoning string `json:"reasoning"`
	Fallback  bool   `json:"fallback,omitempty"`
}

// Dialogue is a resolved AI utterance with an optional emotion tag.
type Dialogue struct {
	Text    string `json:"text"`
	Emotion string `json:"emotion,omitempty"`
}

// Engine turns an AI houseguest plus a situation into a decision or
// dialogue without ever blocking a phase transition: every request has
// a timeout, and failures degrade to the first eligible option.
//
// Any number of players may be thinking at once; each player's
// thinking flag is tracked independently.
type Engine struct {
	gen     services.DialogueGenerator
	logger  *slog.Logger
	timeout time.Duration

	mu       sync.Mutex
	thinking map[string]bool
	memLimit int
}

// NewEngine creates a decision engine over the given generator. A zero
// timeout uses the default.
func NewEngine(gen services.DialogueGenerator, timeout time.Duration, logger *slog.Logger) *Engine {
	if timeout <= 0 {
		timeout = DefaultDecisionTimeout
	}
	return &Engine{
		gen:      gen,
		logger:   logger,
		timeout:  timeout,
		thinking: make(map[string]bool),
		memLimit: house.DefaultMemoryLimit,
	}
}

// IsThinking reports whether a decision request is in flight for the
// player. This is the only concurrency-visible state the UI reads.
func (e *Engine) IsThinking(playerID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.thinking[playerID]
}

func (e *Engine) setThinking(playerID string, v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v {
		e.thinking[playerID] = true
	} else {
		delete(e.thinking, playerID)
	}
}

// RequestDecision asks the generator to choose among the situation's
// options for the player. It always resolves: on generator error,
// timeout, or an empty option list mishap, the first option is chosen
// deterministically and the failure is logged.
func (e *Engine) RequestDecision(ctx context.Context, p *house.Player, sit Situation) (Decision, error) {
	if len(sit.Options) == 0 {
		return Decision{}, fmt.Errorf("situation offers no options")
	}

	e.setThinking(p.ID, true)
	defer e.setThinking(p.ID, false)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.gen.Generate(ctx, services.DialogueRequest{
		PlayerProfile: profileFor(p),
		Phase:         sit.Phase.Display(),
		Situation:     sit.Prompt,
		Context:       sit.Context,
		RecentMemory:  recentMemory(p, 5),
		ResponseType:  services.ResponseTypeDecision,
		Options:       sit.Options,
	})
	if err != nil {
		e.logger.Warn("AI decision failed, using fallback",
			"player_id", p.ID, "phase", sit.Phase, "error", err)
		return Decision{
			Selection: sit.Options[0],
			Reasoning: "went with my gut",
			Fallback:  true,
		}, nil
	}

	return Decision{
		Selection: resp.SelectedOption,
		Reasoning: resp.Reasoning,
	}, nil
}

// RequestDecisionAsync dispatches a decision request on its own
// goroutine and delivers the result to fn. Multiple players' requests
// may be in flight simultaneously.
func (e *Engine) RequestDecisionAsync(ctx context.Context, p *house.Player, sit Situation, fn func(Decision)) {
	go func() {
		d, err := e.RequestDecision(ctx, p, sit)
		if err != nil {
			e.logger.Error("AI decision request rejected", "player_id", p.ID, "error", err)
			return
		}
		fn(d)
	}()
}

// RequestDialogue asks the generator for in-character dialogue with an
// emotion tag. Failures degrade to silence rather than an error.
func (e *Engine) RequestDialogue(ctx context.Context, p *house.Player, sit Situation) (Dialogue, error) {
	e.setThinking(p.ID, true)
	defer e.setThinking(p.ID, false)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.gen.Generate(ctx, services.DialogueRequest{
		PlayerProfile:  profileFor(p),
		Phase:          sit.Phase.Display(),
		Situation:      sit.Prompt,
		Context:        sit.Context,
		RecentMemory:   recentMemory(p, 5),
		ResponseType:   services.ResponseTypeDialogue,
		IncludeEmotion: true,
	})
	if err != nil {
		e.logger.Warn("AI dialogue failed", "player_id", p.ID, "error", err)
		return Dialogue{}, err
	}
	if resp.Emotion != "" {
		e.SetEmotion(p, resp.Emotion)
	}
	return Dialogue{Text: resp.Text, Emotion: resp.Emotion}, nil
}

// AddMemory appends an episodic memory for the player, bounded by the
// engine's per-player limit.
func (e *Engine) AddMemory(p *house.Player, entry house.MemoryEntry) {
	e.mu.Lock()
	limit := e.memLimit
	e.mu.Unlock()
	p.AddMemory(entry, limit)
}

// SetEmotion overwrites the player's displayed emotion.
func (e *Engine) SetEmotion(p *house.Player, emotion string) {
	p.Emotion = strings.ToLower(strings.TrimSpace(emotion))
}

// profileFor renders a player into a short character profile for the
// generator.
func profileFor(p *house.Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.", p.Name)
	if len(p.Alliances) > 0 {
		fmt.Fprintf(&b, " Allied with: %s.", strings.Join(p.Alliances, ", "))
	}
	fmt.Fprintf(&b, " Social %d/10, strategic %d/10, loyalty %d/10, deception %d/10.",
		p.Attribute("social"), p.Attribute("strategic"),
		p.Attribute("loyalty"), p.Attribute("deception"))
	if p.Emotion != "" {
		fmt.Fprintf(&b, " Currently feeling %s.", p.Emotion)
	}
	return b.String()
}

// recentMemory returns up to n of the player's freshest memories.
func recentMemory(p *house.Player, n int) []house.MemoryEntry {
	if len(p.Memory) == 0 {
		return nil
	}
	now := time.Now()
	entries := append([]house.MemoryEntry(nil), p.Memory...)
	for i := 0; i < len(entries) && i < n; i++ {
		best := i
		for j := i + 1; j < len(entries); j++ {
			if entries[j].Freshness(now) > entries[best].Freshness(now) {
				best = j
			}
		}
		entries[i], entries[best] = entries[best], entries[i]
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
