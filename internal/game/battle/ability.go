package battle

import (
	"fmt"

	"github.com/cory-johannsen/cardbattle/internal/game/card"
)

// Resolve applies ability a used by a member of allies against enemy.
//
// Attack abilities strike the enemy's active character. Buff abilities require
// at least one ally with effective hp above zero; their effect is undefined and
// they report ErrNotImplemented without changing state.
//
// Precondition: enemy must have a non-empty roster.
func Resolve(a card.Ability, allies []*Character, enemy *Player) error {
	switch a.Archetype {
	case card.ArchetypeAttack:
		enemy.Active().takeHit(a.Damage, a.DamageType)
		return nil
	case card.ArchetypeBuff:
		if !anyStanding(allies) {
			return fmt.Errorf("%w: %s has no standing ally to target", ErrInvalidAbilityUse, a.Name)
		}
		return fmt.Errorf("%w: buff effect of %s", ErrNotImplemented, a.Name)
	default:
		return fmt.Errorf("%w: %s has archetype %q", ErrInvalidAbilityUse, a.Name, a.Archetype)
	}
}

func anyStanding(chars []*Character) bool {
	for _, c := range chars {
		if c.EffectiveHP() > 0 {
			return true
		}
	}
	return false
}
