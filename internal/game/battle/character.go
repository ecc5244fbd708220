// Package battle implements the turn-based battle engine: characters built from
// cards, players with rosters, ability resolution, the battle state machine and
// the deadline-driven Match that serializes player actions against turn expiry.
package battle

import (
	"sort"

	"github.com/cory-johannsen/cardbattle/internal/game/card"
)

// DefaultHP is the hit points every character starts a battle with.
const DefaultHP = 10

// Character is a per-battle instance of a Card carrying mutable combat state.
//
// Invariant: hp >= 0 and shield >= 0 at all times.
type Character struct {
	card        *card.Card
	hp          int
	shield      int
	afflictions map[card.DamageType]struct{}
}

// CharacterOption customizes a Character at construction.
type CharacterOption func(*Character)

// WithHP sets starting hit points. Negative values floor at zero.
func WithHP(hp int) CharacterOption {
	return func(c *Character) { c.hp = max(hp, 0) }
}

// WithShield sets a starting shield. Negative values floor at zero.
func WithShield(shield int) CharacterOption {
	return func(c *Character) { c.shield = max(shield, 0) }
}

// NewCharacter creates a character for c with DefaultHP and no shield.
//
// Precondition: c must be non-nil.
func NewCharacter(c *card.Card, opts ...CharacterOption) *Character {
	ch := &Character{
		card:        c,
		hp:          DefaultHP,
		afflictions: make(map[card.DamageType]struct{}),
	}
	for _, opt := range opts {
		opt(ch)
	}
	return ch
}

func (c *Character) Card() *card.Card { return c.card }
func (c *Character) Name() string     { return c.card.Name() }
func (c *Character) HP() int          { return c.hp }
func (c *Character) Shield() int      { return c.shield }

// EffectiveHP is hp plus shield.
func (c *Character) EffectiveHP() int { return c.hp + c.shield }

// Defeated reports whether the character has no hit points left.
func (c *Character) Defeated() bool { return c.hp == 0 }

// HasAffliction reports whether dt has been applied to this character.
func (c *Character) HasAffliction(dt card.DamageType) bool {
	_, ok := c.afflictions[dt]
	return ok
}

// Afflictions returns the applied damage types in sorted order.
func (c *Character) Afflictions() []card.DamageType {
	out := make([]card.DamageType, 0, len(c.afflictions))
	for dt := range c.afflictions {
		out = append(out, dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// takeHit applies an attack: the affliction is recorded, the shield absorbs
// first and the remainder reduces hp, floored at zero.
//
// Postcondition: shield' = max(shield-damage, 0);
// hp' = max(hp - max(damage-shield, 0), 0).
func (c *Character) takeHit(damage int, dt card.DamageType) {
	damage = max(damage, 0)
	absorbed := min(c.shield, damage)
	shield := c.shield - absorbed
	hp := max(c.hp-(damage-absorbed), 0)

	c.afflictions[dt] = struct{}{}
	c.shield = shield
	c.hp = hp
}
