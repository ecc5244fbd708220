package battle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/cardbattle/internal/game/card"
)

// AbilityKind selects one of a card's three abilities.
type AbilityKind string

const (
	AbilityBasic    AbilityKind = "basic"
	AbilitySkill    AbilityKind = "skill"
	AbilityUltimate AbilityKind = "ultimate"
)

// AbilityKinds lists every valid kind in ascending strength.
var AbilityKinds = []AbilityKind{AbilityBasic, AbilitySkill, AbilityUltimate}

func (k AbilityKind) Valid() bool {
	switch k {
	case AbilityBasic, AbilitySkill, AbilityUltimate:
		return true
	}
	return false
}

// ParseAbilityKind parses s case-insensitively.
func ParseAbilityKind(s string) (AbilityKind, error) {
	k := AbilityKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAbilityKind, s)
	}
	return k, nil
}

// Player owns an ordered roster with exactly one active character.
//
// Invariant: 0 <= active < len(roster).
type Player struct {
	name   string
	roster []*Character
	active int
}

// NewPlayer creates a player whose first roster entry is active.
//
// Precondition: roster must be non-empty.
func NewPlayer(name string, roster []*Character) (*Player, error) {
	if len(roster) == 0 {
		return nil, fmt.Errorf("player %q: %w", name, ErrEmptyRoster)
	}
	return &Player{name: name, roster: append([]*Character(nil), roster...)}, nil
}

func (p *Player) Name() string       { return p.name }
func (p *Player) Active() *Character { return p.roster[p.active] }
func (p *Player) ActiveIndex() int   { return p.active }
func (p *Player) Len() int           { return len(p.roster) }

// Character returns the roster entry at i.
//
// Precondition: 0 <= i < Len().
func (p *Player) Character(i int) *Character { return p.roster[i] }

// Roster returns a copy of the roster slice; the characters are shared.
func (p *Player) Roster() []*Character {
	return append([]*Character(nil), p.roster...)
}

// SwitchCharacter makes the character at index active.
func (p *Player) SwitchCharacter(index int) error {
	if index < 0 || index >= len(p.roster) {
		return fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvalidSwitch, index, len(p.roster))
	}
	if index == p.active {
		return fmt.Errorf("%w: %s is already active", ErrInvalidSwitch, p.roster[index].Name())
	}
	p.active = index
	return nil
}

func (p *Player) ability(kind AbilityKind) (card.Ability, error) {
	c := p.Active().Card()
	switch kind {
	case AbilityBasic:
		return c.Basic(), nil
	case AbilitySkill:
		return c.Skill(), nil
	case AbilityUltimate:
		return c.Ultimate(), nil
	}
	return card.Ability{}, fmt.Errorf("%w: %q", ErrUnknownAbilityKind, kind)
}

// UseAbility resolves the active character's ability of the given kind against enemy.
func (p *Player) UseAbility(kind AbilityKind, enemy *Player) error {
	a, err := p.ability(kind)
	if err != nil {
		return err
	}
	return Resolve(a, p.roster, enemy)
}

func (p *Player) player() *Player { return p }

// Contender is either a *Player or an *AIPlayer.
type Contender interface {
	player() *Player
}

// DecisionPolicy chooses actions for an automated player. Implementations must
// always return a usable answer; they should fall back rather than fail.
type DecisionPolicy interface {
	// ChooseAbility returns the ability kind to use this turn.
	ChooseAbility(ctx context.Context, view Snapshot, self Side) AbilityKind
	// ChooseCharacterSwitch returns a roster index to switch to, or false to
	// use an ability instead.
	ChooseCharacterSwitch(ctx context.Context, view Snapshot, self Side) (int, bool)
}

// AIPlayer is a Player whose actions come from a DecisionPolicy.
type AIPlayer struct {
	*Player
	policy DecisionPolicy
}

// NewAIPlayer wraps p with policy.
//
// Precondition: p and policy must be non-nil.
func NewAIPlayer(p *Player, policy DecisionPolicy) *AIPlayer {
	return &AIPlayer{Player: p, policy: policy}
}

func (a *AIPlayer) Policy() DecisionPolicy { return a.policy }

// Decide asks the policy for this turn's action. A switch proposal wins over an
// ability choice when the policy makes one.
func (a *AIPlayer) Decide(ctx context.Context, view Snapshot, self Side) Action {
	if idx, ok := a.policy.ChooseCharacterSwitch(ctx, view, self); ok {
		return SwitchAction(idx)
	}
	return AbilityAction(a.policy.ChooseAbility(ctx, view, self))
}

func playerOf(c Contender) (*Player, error) {
	if c == nil {
		return nil, errors.New("nil contender")
	}
	p := c.player()
	if p == nil {
		return nil, errors.New("contender has no player")
	}
	return p, nil
}
