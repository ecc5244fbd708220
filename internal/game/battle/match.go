package battle

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Match runs a Battle live: it arms a deadline for every turn, plays automated
// sides, and serializes player actions against deadline expiry.
//
// All state transitions happen under mu, so a player action and the expiry of
// the same turn can never both take effect.
type Match struct {
	mu        sync.Mutex
	battle    *Battle
	sched     *TurnScheduler
	logger    *zap.Logger
	broadcast func(Snapshot)
	onEnd     func(Snapshot)

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	done    chan struct{}
	started bool
	closed  bool
}

// MatchOption configures a Match.
type MatchOption func(*Match)

func WithMatchLogger(l *zap.Logger) MatchOption {
	return func(m *Match) { m.logger = l }
}

// WithBroadcast registers fn to receive a snapshot after every state change.
// fn runs while the match is locked and must not call back into the Match.
func WithBroadcast(fn func(Snapshot)) MatchOption {
	return func(m *Match) { m.broadcast = fn }
}

// WithOnEnd registers fn to run once when the battle reaches a terminal state.
// The same locking rule as WithBroadcast applies.
func WithOnEnd(fn func(Snapshot)) MatchOption {
	return func(m *Match) { m.onEnd = fn }
}

// NewMatch wraps b. Call Start to begin the first turn.
//
// Precondition: b must be active; sched must be non-nil.
func NewMatch(b *Battle, sched *TurnScheduler, opts ...MatchOption) *Match {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Match{
		battle: b,
		sched:  sched,
		logger: zap.NewNop(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(zap.String("battle_id", b.ID()))
	return m
}

func (m *Match) ID() string { return m.battle.ID() }

// Done is closed when the battle ends or the match is closed.
func (m *Match) Done() <-chan struct{} { return m.done }

// Start presents the first turn. Calling it more than once has no effect.
func (m *Match) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.closed {
		return
	}
	m.started = true
	m.logger.Info("match started",
		zap.String("player1", m.battle.Player(SideOne).Name()),
		zap.String("player2", m.battle.Player(SideTwo).Name()),
		zap.Duration("turn_timeout", m.sched.Timeout()),
	)
	m.presentTurnLocked()
	m.publishLocked()
}

// Submit performs side's action for the current turn.
//
// An action arriving at or after the turn deadline is rejected with
// ErrTurnExpired and the owner forfeits, if expiry has not already done so.
// Rule violations leave the turn and its deadline unchanged.
func (m *Match) Submit(side Side, a Action) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitLocked(side, a, 0)
}

func (m *Match) submitLocked(side Side, a Action, seq uint64) (Snapshot, error) {
	if !m.started {
		return m.snapshotLocked(), ErrNotStarted
	}
	if m.closed || m.battle.State().Terminal() {
		return m.snapshotLocked(), ErrBattleOver
	}
	if side != m.battle.Turn() {
		return m.snapshotLocked(), ErrNotYourTurn
	}
	d, ok := m.sched.Current()
	if !ok || (seq != 0 && d.Seq != seq) {
		return m.snapshotLocked(), ErrTurnExpired
	}
	if d.Expired(m.sched.Now()) {
		if m.sched.Settle(d.Seq) {
			m.forfeitLocked(d.Side)
		}
		return m.snapshotLocked(), ErrTurnExpired
	}

	if err := m.battle.Apply(side, a); err != nil {
		m.logger.Debug("action rejected",
			zap.Stringer("side", side),
			zap.Stringer("action", a),
			zap.Error(err),
		)
		return m.snapshotLocked(), err
	}
	m.sched.Settle(d.Seq)

	if m.battle.State().Terminal() {
		m.finishLocked()
	} else {
		m.presentTurnLocked()
		m.publishLocked()
	}
	return m.snapshotLocked(), nil
}

// Snapshot returns the current state including the pending deadline.
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Match) snapshotLocked() Snapshot {
	s := m.battle.Snapshot()
	if d, ok := m.sched.Current(); ok {
		s.Deadline = d.ExpiresAt
	}
	return s
}

func (m *Match) presentTurnLocked() {
	side := m.battle.Turn()
	d := m.sched.Begin(side, m.expire)
	m.logger.Debug("turn started",
		zap.Stringer("side", side),
		zap.Int("turn", m.battle.TurnNumber()),
		zap.Time("expires_at", d.ExpiresAt),
	)
	if ai, ok := m.battle.AI(side); ok {
		view := m.snapshotLocked()
		m.wg.Add(1)
		go m.playAI(ai, side, d.Seq, view)
	}
}

func (m *Match) expire(seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.battle.State().Terminal() {
		return
	}
	if !m.sched.Settle(seq) {
		return
	}
	m.forfeitLocked(m.battle.Turn())
}

func (m *Match) forfeitLocked(side Side) {
	if err := m.battle.Forfeit(side); err != nil {
		m.logger.Error("forfeit failed", zap.Stringer("side", side), zap.Error(err))
		return
	}
	m.logger.Info("turn deadline expired", zap.Stringer("side", side))
	m.finishLocked()
}

func (m *Match) finishLocked() {
	m.sched.Cancel()
	m.cancel()
	m.closeDoneLocked()
	snap := m.snapshotLocked()
	m.publishLocked()
	if m.onEnd != nil {
		m.onEnd(snap)
	}
	m.logger.Info("match ended", zap.Stringer("state", snap.State))
}

func (m *Match) closeDoneLocked() {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

func (m *Match) publishLocked() {
	if m.broadcast != nil {
		m.broadcast(m.snapshotLocked())
	}
}

// playAI decides and submits an automated side's action. A rejected choice is
// replaced by a basic attack so an automated side never stalls.
func (m *Match) playAI(ai *AIPlayer, side Side, seq uint64, view Snapshot) {
	defer m.wg.Done()
	action := ai.Decide(m.ctx, view, side)
	if m.ctx.Err() != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.submitLocked(side, action, seq)
	if err == nil || !IsRuleViolation(err) {
		return
	}
	m.logger.Warn("ai action rejected, falling back to basic attack",
		zap.Stringer("side", side),
		zap.Stringer("action", action),
		zap.Error(err),
	)
	if _, err := m.submitLocked(side, AbilityAction(AbilityBasic), seq); err != nil {
		m.logger.Error("ai fallback failed", zap.Stringer("side", side), zap.Error(err))
	}
}

// Close stops the match without a result and waits for automated players to
// return. It must not be called from a broadcast or end callback.
func (m *Match) Close() {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		m.sched.Cancel()
		m.cancel()
		m.closeDoneLocked()
	}
	m.mu.Unlock()
	m.wg.Wait()
}
