package battle

import (
	"sync"
	"time"

	"github.com/cory-johannsen/cardbattle/internal/game/clock"
)

// TurnTimer fires a callback after a duration unless stopped.
// It is safe for concurrent use.
type TurnTimer struct {
	mu      sync.Mutex
	timer   clock.Timer
	stopped bool
	fired   bool
}

// NewTurnTimer starts a timer on clk that calls onFire after d.
//
// Precondition: d > 0; onFire must not be nil.
// Postcondition: onFire is called exactly once unless Stop returns true first.
func NewTurnTimer(clk clock.Clock, d time.Duration, onFire func()) *TurnTimer {
	tt := &TurnTimer{}
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.timer = clk.AfterFunc(d, func() {
		tt.mu.Lock()
		if tt.stopped {
			tt.mu.Unlock()
			return
		}
		tt.fired = true
		tt.mu.Unlock()
		onFire()
	})
	return tt
}

// Stop prevents the callback from firing. Safe to call multiple times.
//
// Postcondition: returns true only if this call prevented onFire from running.
func (tt *TurnTimer) Stop() bool {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if tt.stopped || tt.fired {
		return false
	}
	tt.stopped = true
	tt.timer.Stop()
	return true
}
