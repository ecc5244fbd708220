package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/game/ai"
	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/clock"
	"github.com/cory-johannsen/cardbattle/internal/l10n"
	"github.com/cory-johannsen/cardbattle/internal/observability"
	"github.com/cory-johannsen/cardbattle/internal/roster"
)

var (
	ErrBattleNotFound = errors.New("battle not found")
	ErrNotParticipant = errors.New("player is not in this battle")
	ErrRosterSize     = errors.New("roster has the wrong number of cards")
	ErrUnknownPolicy  = errors.New("unknown ai policy")
	ErrInvalidRequest = errors.New("invalid request")
)

// finishedRetention is how many ended battles stay queryable.
const finishedRetention = 1024

// ResultRecorder persists finished battles.
type ResultRecorder interface {
	RecordResult(ctx context.Context, res battle.Result) error
}

// BattleHandlerConfig holds battle rules for the handler.
type BattleHandlerConfig struct {
	TurnTimeout time.Duration
	BaseHP      int
	// RosterSize is the required roster length; 0 accepts any non-empty roster.
	RosterSize int
	// AIName and AIDeck seat the automated opponent of PvE battles.
	AIName        string
	AIDeck        []string
	AIPolicy      string
	DefaultLocale string
}

// StartRequest asks for a new battle. An empty Opponent starts a PvE battle
// against the configured AI deck.
type StartRequest struct {
	Challenger string
	Opponent   string
	Locale     string
	// Policy overrides the configured AI policy for this battle.
	Policy string
}

type seating struct {
	sides map[string]battle.Side
}

// BattleHandler starts battles from stored rosters and routes player actions
// to the right match and side.
//
// BattleHandler is safe for concurrent use. h.mu is never held while calling
// into a Match; matches call back into the handler while locked.
type BattleHandler struct {
	engine     *battle.Engine
	cards      battle.CardLookup
	rosters    roster.Source
	policies   *ai.Registry
	translator *l10n.Translator
	clock      clock.Clock
	results    ResultRecorder
	cfg        BattleHandlerConfig
	logger     *zap.Logger

	mu            sync.Mutex
	seats         map[string]seating
	watchers      map[string]map[int]chan battle.Snapshot
	nextWatcher   int
	finished      map[string]battle.Snapshot
	finishedOrder []string
	wg            sync.WaitGroup
}

// NewBattleHandler creates a BattleHandler.
//
// Precondition: every argument except results must be non-nil.
// results may be nil (finished battles are not persisted).
func NewBattleHandler(
	engine *battle.Engine,
	cards battle.CardLookup,
	rosters roster.Source,
	policies *ai.Registry,
	translator *l10n.Translator,
	clk clock.Clock,
	results ResultRecorder,
	cfg BattleHandlerConfig,
	logger *zap.Logger,
) *BattleHandler {
	if cfg.AIName == "" {
		cfg.AIName = "AI"
	}
	return &BattleHandler{
		engine:     engine,
		cards:      cards,
		rosters:    rosters,
		policies:   policies,
		translator: translator,
		clock:      clk,
		results:    results,
		cfg:        cfg,
		logger:     logger,
		seats:      make(map[string]seating),
		watchers:   make(map[string]map[int]chan battle.Snapshot),
		finished:   make(map[string]battle.Snapshot),
	}
}

// StartBattle seats the challenger as player one and starts the first turn.
//
// Postcondition: returns the opening snapshot; the battle is registered and its
// first deadline is running.
func (h *BattleHandler) StartBattle(ctx context.Context, req StartRequest) (battle.Snapshot, error) {
	if req.Challenger == "" {
		return battle.Snapshot{}, fmt.Errorf("%w: challenger must not be empty", ErrInvalidRequest)
	}
	if req.Opponent == req.Challenger {
		return battle.Snapshot{}, fmt.Errorf("%w: %s cannot battle themselves", ErrInvalidRequest, req.Challenger)
	}

	one, err := h.humanPlayer(ctx, req.Challenger)
	if err != nil {
		return battle.Snapshot{}, err
	}

	var two battle.Contender
	opponentName := req.Opponent
	if req.Opponent == "" {
		bot, err := h.aiPlayer(req.Policy)
		if err != nil {
			return battle.Snapshot{}, err
		}
		two = bot
		opponentName = bot.Name()
	} else {
		p, err := h.humanPlayer(ctx, req.Opponent)
		if err != nil {
			return battle.Snapshot{}, err
		}
		two = p
	}

	id := uuid.NewString()
	locale := req.Locale
	if locale == "" {
		locale = h.cfg.DefaultLocale
	}
	logger := observability.ForBattle(h.logger, id, req.Challenger, opponentName)
	b, err := battle.New(id, one, two,
		battle.WithPrinter(h.translator.Printer(locale)),
		battle.WithLogger(logger),
	)
	if err != nil {
		return battle.Snapshot{}, fmt.Errorf("creating battle: %w", err)
	}
	m := battle.NewMatch(b, battle.NewTurnScheduler(h.clock, h.cfg.TurnTimeout),
		battle.WithMatchLogger(logger),
		battle.WithBroadcast(h.publish),
		battle.WithOnEnd(h.onEnd),
	)

	sides := map[string]battle.Side{req.Challenger: battle.SideOne}
	if req.Opponent != "" {
		sides[req.Opponent] = battle.SideTwo
	}
	h.mu.Lock()
	h.seats[id] = seating{sides: sides}
	h.mu.Unlock()

	if err := h.engine.Add(m); err != nil {
		h.mu.Lock()
		delete(h.seats, id)
		h.mu.Unlock()
		return battle.Snapshot{}, err
	}
	m.Start()
	return m.Snapshot(), nil
}

func (h *BattleHandler) humanPlayer(ctx context.Context, owner string) (*battle.Player, error) {
	names, err := h.rosters.Roster(ctx, owner)
	if err != nil {
		return nil, err
	}
	if h.cfg.RosterSize > 0 && len(names) != h.cfg.RosterSize {
		return nil, fmt.Errorf("%w: %s has %d, need %d", ErrRosterSize, owner, len(names), h.cfg.RosterSize)
	}
	chars, err := battle.MaterializeRoster(h.cards, names, h.cfg.BaseHP)
	if err != nil {
		return nil, fmt.Errorf("roster of %s: %w", owner, err)
	}
	return battle.NewPlayer(owner, chars)
}

func (h *BattleHandler) aiPlayer(policyName string) (*battle.AIPlayer, error) {
	if policyName == "" {
		policyName = h.cfg.AIPolicy
	}
	policy, ok := h.policies.PolicyFor(policyName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policyName)
	}
	chars, err := battle.MaterializeRoster(h.cards, h.cfg.AIDeck, h.cfg.BaseHP)
	if err != nil {
		return nil, fmt.Errorf("ai deck: %w", err)
	}
	p, err := battle.NewPlayer(h.cfg.AIName, chars)
	if err != nil {
		return nil, err
	}
	return battle.NewAIPlayer(p, policy), nil
}

// Submit performs owner's action in battleID.
func (h *BattleHandler) Submit(battleID, owner string, a battle.Action) (battle.Snapshot, error) {
	m, side, err := h.seat(battleID, owner)
	if err != nil {
		return battle.Snapshot{}, err
	}
	return m.Submit(side, a)
}

func (h *BattleHandler) seat(battleID, owner string) (*battle.Match, battle.Side, error) {
	// onEnd records the final snapshot and drops the seats before the engine
	// forgets the match, so finished is read after the engine lookup.
	m, live := h.engine.Get(battleID)
	h.mu.Lock()
	_, ended := h.finished[battleID]
	side, seated := h.seats[battleID].sides[owner]
	h.mu.Unlock()
	switch {
	case ended:
		return nil, 0, fmt.Errorf("%w: %s", battle.ErrBattleOver, battleID)
	case !live:
		return nil, 0, fmt.Errorf("%w: %s", ErrBattleNotFound, battleID)
	case !seated:
		return nil, 0, fmt.Errorf("%w: %s", ErrNotParticipant, owner)
	}
	return m, side, nil
}

// Snapshot returns the state of a live or recently finished battle.
func (h *BattleHandler) Snapshot(battleID string) (battle.Snapshot, error) {
	if m, ok := h.engine.Get(battleID); ok {
		return m.Snapshot(), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.finished[battleID]; ok {
		return s, nil
	}
	return battle.Snapshot{}, fmt.Errorf("%w: %s", ErrBattleNotFound, battleID)
}

// Watch subscribes to battleID's snapshots. The channel always holds the most
// recent unseen snapshot and is closed when the battle ends or cancel is called.
func (h *BattleHandler) Watch(battleID string) (<-chan battle.Snapshot, func(), error) {
	ch := make(chan battle.Snapshot, 1)
	// ended must be called with h.mu held; it releases it on success.
	ended := func() bool {
		final, ok := h.finished[battleID]
		if !ok {
			return false
		}
		h.mu.Unlock()
		ch <- final
		close(ch)
		return true
	}

	// The engine drops a match only after onEnd has retained its final
	// snapshot, so finished is consulted on both sides of the engine lookup.
	h.mu.Lock()
	if ended() {
		return ch, func() {}, nil
	}
	h.mu.Unlock()
	m, ok := h.engine.Get(battleID)
	h.mu.Lock()
	if ended() {
		return ch, func() {}, nil
	}
	if !ok {
		h.mu.Unlock()
		return nil, nil, fmt.Errorf("%w: %s", ErrBattleNotFound, battleID)
	}
	ws, ok := h.watchers[battleID]
	if !ok {
		ws = make(map[int]chan battle.Snapshot)
		h.watchers[battleID] = ws
	}
	h.nextWatcher++
	id := h.nextWatcher
	ws[id] = ch
	h.mu.Unlock()

	// Snapshot takes the match lock, which publish holds while taking h.mu.
	initial := m.Snapshot()
	h.mu.Lock()
	if _, live := h.watchers[battleID][id]; live {
		select {
		case ch <- initial:
		default:
		}
	}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.watchers[battleID][id]; ok {
			delete(h.watchers[battleID], id)
			close(c)
		}
	}
	return ch, cancel, nil
}

// publish runs under the match lock.
func (h *BattleHandler) publish(s battle.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.watchers[s.BattleID] {
		offerLatest(ch, s)
	}
}

func offerLatest(ch chan battle.Snapshot, s battle.Snapshot) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

// onEnd runs under the match lock, so cleanup continues on its own goroutine.
func (h *BattleHandler) onEnd(s battle.Snapshot) {
	h.mu.Lock()
	h.finished[s.BattleID] = s
	h.finishedOrder = append(h.finishedOrder, s.BattleID)
	if len(h.finishedOrder) > finishedRetention {
		delete(h.finished, h.finishedOrder[0])
		h.finishedOrder = h.finishedOrder[1:]
	}
	for id, ch := range h.watchers[s.BattleID] {
		offerLatest(ch, s)
		close(ch)
		delete(h.watchers[s.BattleID], id)
	}
	delete(h.watchers, s.BattleID)
	delete(h.seats, s.BattleID)
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		h.engine.Remove(s.BattleID)
		res := s.Result()
		h.logger.Info("battle finished",
			zap.String("battle_id", res.BattleID),
			zap.Stringer("outcome", res.State),
			zap.String("winner", res.Winner),
			zap.String("forfeiter", res.Forfeiter),
			zap.Int("turns", res.Turns),
		)
		if h.results == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.results.RecordResult(ctx, res); err != nil {
			h.logger.Error("recording battle result", zap.String("battle_id", res.BattleID), zap.Error(err))
		}
	}()
}

// ActiveBattles returns the number of live battles.
func (h *BattleHandler) ActiveBattles() int { return h.engine.Len() }

// Close stops every live battle and waits for pending result writes.
func (h *BattleHandler) Close() {
	h.engine.CloseAll()
	h.mu.Lock()
	for id, ws := range h.watchers {
		for _, ch := range ws {
			close(ch)
		}
		delete(h.watchers, id)
	}
	h.mu.Unlock()
	h.wg.Wait()
}
