package battle

import (
	"sync"
	"time"

	"github.com/cory-johannsen/cardbattle/internal/game/clock"
)

// DefaultTurnTimeout is the time a player has to act before forfeiting.
const DefaultTurnTimeout = 30 * time.Second

// Deadline identifies one turn's time limit.
type Deadline struct {
	Seq       uint64
	Side      Side
	StartedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether now is at or past the deadline.
func (d Deadline) Expired(now time.Time) bool { return !now.Before(d.ExpiresAt) }

type pendingTurn struct {
	Deadline
	timer   *TurnTimer
	settled bool
}

// TurnScheduler arms one deadline per turn and arbitrates between the player's
// action and expiry: whichever settles the deadline first wins, the other is a
// no-op.
type TurnScheduler struct {
	mu      sync.Mutex
	clock   clock.Clock
	timeout time.Duration
	seq     uint64
	current *pendingTurn
}

// NewTurnScheduler creates a scheduler issuing deadlines timeout after each turn starts.
//
// Precondition: clk must be non-nil; timeout > 0.
func NewTurnScheduler(clk clock.Clock, timeout time.Duration) *TurnScheduler {
	return &TurnScheduler{clock: clk, timeout: timeout}
}

func (s *TurnScheduler) Now() time.Time         { return s.clock.Now() }
func (s *TurnScheduler) Timeout() time.Duration { return s.timeout }

// Begin starts side's turn, settling any deadline still pending. onExpire is
// called with the new deadline's Seq when the timeout elapses; it must call
// Settle to claim the expiry.
func (s *TurnScheduler) Begin(side Side, onExpire func(seq uint64)) Deadline {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settleLocked()
	s.seq++
	now := s.clock.Now()
	p := &pendingTurn{Deadline: Deadline{
		Seq:       s.seq,
		Side:      side,
		StartedAt: now,
		ExpiresAt: now.Add(s.timeout),
	}}
	seq := p.Seq
	p.timer = NewTurnTimer(s.clock, s.timeout, func() { onExpire(seq) })
	s.current = p
	return p.Deadline
}

// Settle claims the deadline identified by seq and stops its timer.
//
// Postcondition: returns true for exactly one caller per deadline.
func (s *TurnScheduler) Settle(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.Seq != seq || s.current.settled {
		return false
	}
	return s.settleLocked()
}

// Cancel settles the pending deadline, if any. It reports whether one was pending.
func (s *TurnScheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settleLocked()
}

func (s *TurnScheduler) settleLocked() bool {
	if s.current == nil || s.current.settled {
		return false
	}
	s.current.settled = true
	s.current.timer.Stop()
	return true
}

// Current returns the unsettled deadline, if any.
func (s *TurnScheduler) Current() (Deadline, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.settled {
		return Deadline{}, false
	}
	return s.current.Deadline, true
}
