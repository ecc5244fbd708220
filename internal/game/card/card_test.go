package card_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cardbattle/internal/game/card"
)

func TestNew_DerivesDamageTypeAndTiers(t *testing.T) {
	c, err := card.New(card.Spec{
		Name:    "Furina",
		Game:    card.GameGenshin,
		Element: card.ElementHydro,
	})
	require.NoError(t, err)

	assert.Equal(t, card.DamageWater, c.DamageType())
	assert.Equal(t, 1, c.Basic().Damage)
	assert.Equal(t, 3, c.Skill().Damage)
	assert.Equal(t, 4, c.Ultimate().Damage)
	for _, a := range []card.Ability{c.Basic(), c.Skill(), c.Ultimate()} {
		assert.Equal(t, card.DamageWater, a.DamageType)
		assert.Equal(t, card.ArchetypeAttack, a.Archetype)
	}
	assert.Equal(t, "Furina Basic", c.Basic().Name)
	assert.Equal(t, "Furina strikes an enemy.", c.Basic().Description)
	assert.Equal(t, "Furina unleashes a devastating ultimate attack.", c.Ultimate().Description)
}

func TestNew_AbilityOverrides(t *testing.T) {
	c, err := card.New(card.Spec{
		Name:    "Bailu",
		Game:    card.GameHSR,
		Element: card.ElementLightning,
		Skill:   card.AbilityText{Description: "Heals an ally.", Archetype: card.ArchetypeBuff},
	})
	require.NoError(t, err)
	assert.Equal(t, card.ArchetypeBuff, c.Skill().Archetype)
	assert.Equal(t, "Heals an ally.", c.Skill().Description)
	assert.Equal(t, card.ArchetypeAttack, c.Basic().Archetype)
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name string
		spec card.Spec
	}{
		{"empty name", card.Spec{Game: card.GameGenshin, Element: card.ElementPyro}},
		{"unknown game", card.Spec{Name: "X", Game: "Pokemon", Element: card.ElementPyro}},
		{"unknown element", card.Spec{Name: "X", Game: card.GameGenshin, Element: "Void"}},
		{"element from another game", card.Spec{Name: "X", Game: card.GameGenshin, Element: card.ElementQuantum}},
		{"bad archetype", card.Spec{Name: "X", Game: card.GameZZZ, Element: card.ElementEther, Basic: card.AbilityText{Archetype: "summon"}}},
		{"buff basic", card.Spec{Name: "X", Game: card.GameHSR, Element: card.ElementIce, Basic: card.AbilityText{Archetype: card.ArchetypeBuff}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := card.New(tc.spec)
			assert.Error(t, err)
		})
	}
}

func TestDamageTypeFor_SharedElementNames(t *testing.T) {
	dt, ok := card.DamageTypeFor(card.ElementPhysical)
	require.True(t, ok)
	assert.Equal(t, card.DamageEarth, dt)

	dt, ok = card.DamageTypeFor(card.ElementEther)
	require.True(t, ok)
	assert.Equal(t, card.DamageAura, dt)

	_, ok = card.DamageTypeFor("Void")
	assert.False(t, ok)
}

func TestProperty_EveryAllowedElementHasDamageType(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		game := rapid.SampledFrom([]card.Game{card.GameGenshin, card.GameHSR, card.GameZZZ}).Draw(rt, "game")
		el := rapid.SampledFrom([]card.Element{
			card.ElementPyro, card.ElementHydro, card.ElementCryo, card.ElementElectro, card.ElementAnemo,
			card.ElementGeo, card.ElementDendro, card.ElementPhysical, card.ElementWind, card.ElementFire,
			card.ElementIce, card.ElementLightning, card.ElementImaginary, card.ElementQuantum,
			card.ElementElectric, card.ElementEther,
		}).Draw(rt, "element")
		if !game.Allows(el) {
			return
		}
		c, err := card.New(card.Spec{Name: "C", Game: game, Element: el})
		require.NoError(rt, err)
		want, _ := card.DamageTypeFor(el)
		assert.Equal(rt, want, c.DamageType())
	})
}
