// Package ai provides DecisionPolicy implementations for automated battle
// players: uniform random choice, Lua scripts, and an LLM-backed policy.
package ai

import (
	"context"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/dice"
)

// RandomPolicy picks one of the three ability kinds uniformly at random and
// never switches characters.
type RandomPolicy struct {
	src dice.Source
}

// NewRandomPolicy returns a RandomPolicy drawing from src.
//
// Precondition: src must be non-nil.
func NewRandomPolicy(src dice.Source) *RandomPolicy {
	return &RandomPolicy{src: src}
}

func (p *RandomPolicy) ChooseAbility(context.Context, battle.Snapshot, battle.Side) battle.AbilityKind {
	return dice.Pick(p.src, battle.AbilityKinds)
}

func (p *RandomPolicy) ChooseCharacterSwitch(context.Context, battle.Snapshot, battle.Side) (int, bool) {
	return 0, false
}
