package battle

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/cory-johannsen/cardbattle/internal/l10n"
)

// Side identifies one of the two seats in a battle.
type Side int

const (
	SideOne Side = iota
	SideTwo
)

// Opponent returns the other side.
func (s Side) Opponent() Side { return 1 - s }

func (s Side) Valid() bool { return s == SideOne || s == SideTwo }

func (s Side) String() string {
	switch s {
	case SideOne:
		return "player1"
	case SideTwo:
		return "player2"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// State is the battle's lifecycle state.
type State int

const (
	StateActive State = iota
	StatePlayer1Won
	StatePlayer2Won
	StateForfeited
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePlayer1Won:
		return "player1_won"
	case StatePlayer2Won:
		return "player2_won"
	case StateForfeited:
		return "forfeited"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further actions are accepted.
func (s State) Terminal() bool { return s != StateActive }

func wonBy(side Side) State {
	if side == SideOne {
		return StatePlayer1Won
	}
	return StatePlayer2Won
}

// ActionType is the kind of turn action.
type ActionType int

const (
	ActionUnknown ActionType = iota
	ActionAbility
	ActionSwitch
)

func (t ActionType) String() string {
	switch t {
	case ActionAbility:
		return "ability"
	case ActionSwitch:
		return "switch"
	}
	return "unknown"
}

// Action is one turn's choice: use an ability or switch the active character.
type Action struct {
	Type    ActionType
	Ability AbilityKind
	Index   int
}

func AbilityAction(k AbilityKind) Action { return Action{Type: ActionAbility, Ability: k} }
func SwitchAction(index int) Action      { return Action{Type: ActionSwitch, Index: index} }

func (a Action) String() string {
	switch a.Type {
	case ActionAbility:
		return "ability:" + string(a.Ability)
	case ActionSwitch:
		return fmt.Sprintf("switch:%d", a.Index)
	}
	return "unknown"
}

// Battle is a two-player turn-based battle. It is not safe for concurrent use;
// Match serializes access for live play.
//
// Invariant: once State is terminal, no method mutates the battle.
type Battle struct {
	id         string
	contenders [2]Contender
	players    [2]*Player
	turn       Side
	turnNumber int
	state      State
	forfeiter  Side
	log        []string
	printer    *message.Printer
	logger     *zap.Logger
}

// Option configures a Battle.
type Option func(*Battle)

// WithPrinter renders the battle log through p.
func WithPrinter(p *message.Printer) Option {
	return func(b *Battle) { b.printer = p }
}

// WithLogger attaches a structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Battle) { b.logger = l }
}

// New creates an active battle where one moves first.
//
// Precondition: one and two must be distinct, non-nil contenders.
func New(id string, one, two Contender, opts ...Option) (*Battle, error) {
	p1, err := playerOf(one)
	if err != nil {
		return nil, fmt.Errorf("player one: %w", err)
	}
	p2, err := playerOf(two)
	if err != nil {
		return nil, fmt.Errorf("player two: %w", err)
	}
	if p1 == p2 {
		return nil, errors.New("a player cannot battle itself")
	}
	b := &Battle{
		id:         id,
		contenders: [2]Contender{one, two},
		players:    [2]*Player{p1, p2},
		turn:       SideOne,
		turnNumber: 1,
		state:      StateActive,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.printer == nil {
		b.printer = l10n.DefaultPrinter()
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	b.logger = b.logger.With(zap.String("battle_id", id))
	return b, nil
}

func (b *Battle) ID() string               { return b.id }
func (b *Battle) Turn() Side               { return b.turn }
func (b *Battle) TurnNumber() int          { return b.turnNumber }
func (b *Battle) State() State             { return b.state }
func (b *Battle) Player(side Side) *Player { return b.players[side] }

// AI returns the AIPlayer seated at side, if that side is automated.
func (b *Battle) AI(side Side) (*AIPlayer, bool) {
	ai, ok := b.contenders[side].(*AIPlayer)
	return ai, ok
}

// Log returns a copy of the battle log.
func (b *Battle) Log() []string {
	return append([]string(nil), b.log...)
}

// Winner returns the winning side when the battle ended by knockout.
func (b *Battle) Winner() (Side, bool) {
	switch b.state {
	case StatePlayer1Won:
		return SideOne, true
	case StatePlayer2Won:
		return SideTwo, true
	}
	return 0, false
}

// Forfeiter returns the side that forfeited, if any.
func (b *Battle) Forfeiter() (Side, bool) {
	if b.state != StateForfeited {
		return 0, false
	}
	return b.forfeiter, true
}

// Apply performs side's action for the current turn.
//
// A rejected action leaves the battle unchanged and the turn with side.
// An ability that reduces the defender's active character to zero hp ends the
// battle in side's favour; otherwise the turn passes to the opponent.
func (b *Battle) Apply(side Side, a Action) error {
	if b.state.Terminal() {
		return ErrBattleOver
	}
	if side != b.turn {
		return fmt.Errorf("%w: it is %s's turn", ErrNotYourTurn, b.turn)
	}
	attacker, defender := b.players[side], b.players[side.Opponent()]

	switch a.Type {
	case ActionAbility:
		ab, err := attacker.ability(a.Ability)
		if err != nil {
			return err
		}
		user, target := attacker.Active(), defender.Active()
		if err := Resolve(ab, attacker.roster, defender); err != nil {
			return err
		}
		b.record(l10n.KeyAbilityUsed, user.Name(), ab.Name, target.Name())
		b.logger.Debug("ability resolved",
			zap.Stringer("side", side),
			zap.String("ability", ab.Name),
			zap.String("target", target.Name()),
			zap.Int("target_hp", target.HP()),
			zap.Int("target_shield", target.Shield()),
		)
		if target.Defeated() {
			b.record(l10n.KeyDefeated, target.Name())
			b.record(l10n.KeyVictory, user.Name())
			b.state = wonBy(side)
			b.logger.Info("battle won",
				zap.Stringer("winner", side),
				zap.Int("turn", b.turnNumber),
			)
			return nil
		}
	case ActionSwitch:
		if err := attacker.SwitchCharacter(a.Index); err != nil {
			return err
		}
		b.record(l10n.KeySwitched, attacker.Name(), attacker.Active().Name())
	default:
		return fmt.Errorf("%w: %d", ErrUnknownAction, int(a.Type))
	}

	b.turn = side.Opponent()
	b.turnNumber++
	return nil
}

// Forfeit ends the battle with side as the forfeiting player.
func (b *Battle) Forfeit(side Side) error {
	if b.state.Terminal() {
		return ErrBattleOver
	}
	if !side.Valid() {
		return fmt.Errorf("forfeit: invalid side %d", int(side))
	}
	b.state = StateForfeited
	b.forfeiter = side
	b.record(l10n.KeyForfeit, b.players[side].Name())
	b.logger.Info("battle forfeited",
		zap.Stringer("side", side),
		zap.Int("turn", b.turnNumber),
	)
	return nil
}

func (b *Battle) record(key string, args ...any) {
	b.log = append(b.log, b.printer.Sprintf(key, args...))
}
