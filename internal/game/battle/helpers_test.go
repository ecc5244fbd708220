package battle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/card"
)

func hydro(name string) *card.Card {
	return card.MustNew(card.Spec{Name: name, Game: card.GameGenshin, Element: card.ElementHydro})
}

func ice(name string) *card.Card {
	return card.MustNew(card.Spec{Name: name, Game: card.GameZZZ, Element: card.ElementIce})
}

func newPlayer(t *testing.T, name string, chars ...*battle.Character) *battle.Player {
	t.Helper()
	p, err := battle.NewPlayer(name, chars)
	require.NoError(t, err)
	return p
}

func newBattle(t *testing.T, one, two battle.Contender) *battle.Battle {
	t.Helper()
	b, err := battle.New("b-1", one, two)
	require.NoError(t, err)
	return b
}

// duel returns a one-on-one battle of Furina (alice) against Lycaon (bob).
func duel(t *testing.T, bobOpts ...battle.CharacterOption) (*battle.Battle, *battle.Character, *battle.Character) {
	t.Helper()
	furina := battle.NewCharacter(hydro("Furina"))
	lycaon := battle.NewCharacter(ice("Lycaon"), bobOpts...)
	b := newBattle(t, newPlayer(t, "alice", furina), newPlayer(t, "bob", lycaon))
	return b, furina, lycaon
}

type fixedPolicy struct {
	kind     battle.AbilityKind
	switchTo int
	doSwitch bool
}

func (p fixedPolicy) ChooseAbility(context.Context, battle.Snapshot, battle.Side) battle.AbilityKind {
	return p.kind
}

func (p fixedPolicy) ChooseCharacterSwitch(context.Context, battle.Snapshot, battle.Side) (int, bool) {
	return p.switchTo, p.doSwitch
}
