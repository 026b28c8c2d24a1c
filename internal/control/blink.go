package control

import (
	"sync"
	"time"
)

// Blinker runs a periodic tick while a condition holds. The tick callback
// returns false to end the cycle; Stop cancels it from outside. Start while
// a cycle is already running is a no-op, so rapid mute toggles never stack
// timers.
type Blinker struct {
	period time.Duration
	tick   func() bool

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewBlinker creates a stopped blinker with the given period and tick
// callback.
func NewBlinker(period time.Duration, tick func() bool) *Blinker {
	return &Blinker{period: period, tick: tick}
}

// Start begins the periodic cycle.
func (b *Blinker) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return
	}
	b.running = true
	b.done = make(chan struct{})
	go b.run(b.done)
}

// Stop cancels a running cycle.
func (b *Blinker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return
	}
	close(b.done)
	b.running = false
}

// Running reports whether a cycle is active.
func (b *Blinker) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *Blinker) run(done chan struct{}) {
	ticker := time.NewTicker(b.period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if !b.tick() {
				b.mu.Lock()
				// Only clear state if no newer cycle replaced this one.
				if b.done == done {
					b.running = false
				}
				b.mu.Unlock()
				return
			}
		case <-done:
			return
		}
	}
}
