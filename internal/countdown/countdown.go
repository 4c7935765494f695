// Package countdown derives remaining lease time from a slot's start
// timestamp and duration. The projection is purely local read-model state:
// it never mutates server state, it only signals expiry so the owning view
// can re-fetch the authoritative answer from the reclamation service.
package countdown

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"
)

// DefaultTickInterval is how often the remaining time is re-derived.
const DefaultTickInterval = time.Second

// Projector computes remaining-time-to-expiry for a lease and ticks it
// down locally without server round-trips. Changing the underlying start
// timestamp or duration by calling Start again resets the countdown; a
// projector whose owning view goes away must be disposed with Stop so the
// expiry callback can't fire against stale state.
type Projector struct {
	clock        quartz.Clock
	tickInterval time.Duration

	// onTick receives the freshly derived remaining time once per tick.
	onTick func(remaining time.Duration)
	// onExpired fires exactly once per Start when the remaining time
	// reaches zero.
	onExpired func()

	mu          sync.Mutex
	start       time.Time
	duration    time.Duration
	running     bool
	gen         uint64
	cancelTicks context.CancelFunc
	expireTimer *quartz.Timer
}

// NewProjector returns a stopped projector. Either callback may be nil.
func NewProjector(clock quartz.Clock, onTick func(time.Duration), onExpired func()) *Projector {
	return &Projector{
		clock:        clock,
		tickInterval: DefaultTickInterval,
		onTick:       onTick,
		onExpired:    onExpired,
	}
}

// remainingLocked derives the remaining time at the given instant. Never
// negative.
func (p *Projector) remainingLocked(now time.Time) time.Duration {
	remaining := p.start.Add(p.duration).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Remaining re-derives the remaining time from the current clock reading.
// Returns zero if the projector has never been started.
func (p *Projector) Remaining() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return 0
	}
	return p.remainingLocked(p.clock.Now())
}

// Start begins counting down from the given lease parameters, replacing
// any countdown already in progress. A lease that is already past its
// expiry instant fires the expired notification on the next clock event
// rather than synchronously.
func (p *Projector) Start(start time.Time, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	p.start = start
	p.duration = duration
	p.running = true
	p.gen++
	gen := p.gen

	ctx, cancel := context.WithCancel(context.Background())
	p.cancelTicks = cancel

	if p.onTick != nil {
		_ = p.clock.TickerFunc(ctx, p.tickInterval, func() error {
			p.mu.Lock()
			if !p.running || p.gen != gen {
				p.mu.Unlock()
				return nil
			}
			remaining := p.remainingLocked(p.clock.Now())
			p.mu.Unlock()

			p.onTick(remaining)
			return nil
		}, "countdown")
	}

	if p.onExpired != nil {
		p.expireTimer = p.clock.AfterFunc(p.remainingLocked(p.clock.Now()), func() {
			p.mu.Lock()
			// A Start or Stop that raced the timer firing wins.
			if !p.running || p.gen != gen {
				p.mu.Unlock()
				return
			}
			p.running = false
			p.stopLocked()
			p.mu.Unlock()

			p.onExpired()
		}, "countdown")
	}
}

// stopLocked cancels the ticker and the expiry timer. Callers hold p.mu.
func (p *Projector) stopLocked() {
	if p.cancelTicks != nil {
		p.cancelTicks()
		p.cancelTicks = nil
	}
	if p.expireTimer != nil {
		p.expireTimer.Stop()
		p.expireTimer = nil
	}
}

// Stop disposes of the countdown. No callbacks fire after Stop returns.
func (p *Projector) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.stopLocked()
}
