package game

import (
	"sync"
	"time"
)

// Clock abstracts time for the coordinator so countdown behavior is
// testable without sleeping.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable scheduled call.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns a Clock backed by the time package.
func RealClock() Clock {
	return realClock{}
}

// DefaultReadyCountdown is how long stragglers get once quorum is met
// before the phase is force-advanced.
const DefaultReadyCountdown = 30 * time.Second

// ProgressSnapshot is the derived view of phase readiness.
type ProgressSnapshot struct {
	Phase               Phase   `json:"phase"`
	CompletedCount      int     `json:"completed_count"`
	TotalCount          int     `json:"total_count"`
	Percentage          float64 `json:"percentage"`
	Completed           bool    `json:"completed"`
	HasStartedCountdown bool    `json:"has_started_countdown"`
}

// Coordinator tracks which human players have signaled ready for the
// current phase. In singleplayer the first ready completes the phase
// immediately; in multiplayer a majority-of-humans quorum completes it
// and starts a countdown that force-advances past stragglers.
//
// Ready marks are treated as network-delivered: duplicates and marks
// tagged with a stale phase are ignored.
type Coordinator struct {
	mu sync.Mutex

	mode      Mode
	humans    func() int
	countdown time.Duration
	clock     Clock
	advance   func(Phase)

	phase            Phase
	ready            map[string]struct{}
	completed        bool
	countdownStarted bool
	timer            Timer
	closed           bool
}

// NewCoordinator creates a coordinator. humans reports the current
// human player count; advance is invoked (never under the lock) when a
// phase should move on.
func NewCoordinator(mode Mode, humans func() int, countdown time.Duration, clock Clock, advance func(Phase)) *Coordinator {
	if countdown <= 0 {
		countdown = DefaultReadyCountdown
	}
	if clock == nil {
		clock = RealClock()
	}
	return &Coordinator{
		mode:      mode,
		humans:    humans,
		countdown: countdown,
		clock:     clock,
		advance:   advance,
		ready:     make(map[string]struct{}),
	}
}

// SetPhase switches tracking to a new phase, discarding ready marks and
// cancelling any running countdown so a stale timer cannot fire into
// the new phase's state.
func (c *Coordinator) SetPhase(phase Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.phase = phase
	c.ready = make(map[string]struct{})
	c.completed = false
	c.countdownStarted = false
}

// MarkReady records a ready signal for the given phase. Marks for any
// phase other than the current one are ignored, as are duplicates.
func (c *Coordinator) MarkReady(phase Phase, playerID string) {
	c.mu.Lock()
	if c.closed || phase != c.phase {
		c.mu.Unlock()
		return
	}
	c.ready[playerID] = struct{}{}

	if c.completed {
		c.mu.Unlock()
		return
	}
	if len(c.ready) < c.quorumLocked() {
		c.mu.Unlock()
		return
	}
	c.completed = true

	if c.mode == ModeSingle {
		advance := c.advance
		c.mu.Unlock()
		if advance != nil {
			advance(phase)
		}
		return
	}

	c.countdownStarted = true
	c.timer = c.clock.AfterFunc(c.countdown, func() {
		c.mu.Lock()
		if c.closed || c.phase != phase {
			c.mu.Unlock()
			return
		}
		advance := c.advance
		c.mu.Unlock()
		if advance != nil {
			advance(phase)
		}
	})
	c.mu.Unlock()
}

func (c *Coordinator) quorumLocked() int {
	if c.mode == ModeSingle {
		return 1
	}
	n := c.humans()
	if n < 1 {
		n = 1
	}
	return (n + 1) / 2
}

// Clear resets tracking for the given phase, or all tracking when phase
// is "*". Any running countdown is cancelled.
func (c *Coordinator) Clear(phase Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if phase != "*" && phase != c.phase {
		return
	}
	c.stopTimerLocked()
	c.ready = make(map[string]struct{})
	c.completed = false
	c.countdownStarted = false
}

// Close cancels any pending countdown and rejects further marks.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.closed = true
}

func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Snapshot returns the derived progress view for the current phase.
func (c *Coordinator) Snapshot() ProgressSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.humans()
	if c.mode == ModeSingle {
		total = 1
	}
	pct := 0.0
	if total > 0 {
		pct = float64(len(c.ready)) / float64(total) * 100
	}
	return ProgressSnapshot{
		Phase:               c.phase,
		CompletedCount:      len(c.ready),
		TotalCount:          total,
		Percentage:          pct,
		Completed:           c.completed,
		HasStartedCountdown: c.countdownStarted,
	}
}
