// Package card defines the immutable card templates that battles are built from.
package card

// Game identifies the franchise a card belongs to.
type Game string

const (
	GameGenshin Game = "Genshin Impact"
	GameHSR     Game = "Honkai: Star Rail"
	GameZZZ     Game = "Zenless Zone Zero"
)

// Element is the in-franchise element printed on a card. Several franchises share
// element names (Fire, Ice, Physical), so an Element is only meaningful together
// with its Game.
type Element string

const (
	ElementPyro    Element = "Pyro"
	ElementHydro   Element = "Hydro"
	ElementCryo    Element = "Cryo"
	ElementElectro Element = "Electro"
	ElementAnemo   Element = "Anemo"
	ElementGeo     Element = "Geo"
	ElementDendro  Element = "Dendro"

	ElementPhysical  Element = "Physical"
	ElementWind      Element = "Wind"
	ElementFire      Element = "Fire"
	ElementIce       Element = "Ice"
	ElementLightning Element = "Lightning"
	ElementImaginary Element = "Imaginary"
	ElementQuantum   Element = "Quantum"

	ElementElectric Element = "Electric"
	ElementEther    Element = "Ether"
)

// DamageType is the franchise-neutral elemental tag carried by an attack and
// recorded as an affliction on the character it hits.
type DamageType string

const (
	DamageFire        DamageType = "Fire"
	DamageWater       DamageType = "Water"
	DamageIce         DamageType = "Ice"
	DamageElectricity DamageType = "Electricity"
	DamageAir         DamageType = "Air"
	DamageEarth       DamageType = "Earth"
	DamagePlant       DamageType = "Plant"
	DamageAura        DamageType = "Aura"
)

// elementDamage maps every known element to its damage type.
var elementDamage = map[Element]DamageType{
	ElementPyro:    DamageFire,
	ElementHydro:   DamageWater,
	ElementCryo:    DamageIce,
	ElementElectro: DamageElectricity,
	ElementAnemo:   DamageAir,
	ElementGeo:     DamageEarth,
	ElementDendro:  DamagePlant,

	ElementPhysical:  DamageEarth,
	ElementWind:      DamageAir,
	ElementFire:      DamageFire,
	ElementIce:       DamageIce,
	ElementLightning: DamageElectricity,
	ElementImaginary: DamageAura,
	ElementQuantum:   DamageAura,

	ElementElectric: DamageElectricity,
	ElementEther:    DamageAura,
}

// gameElements lists the elements each franchise prints.
var gameElements = map[Game][]Element{
	GameGenshin: {ElementPyro, ElementHydro, ElementCryo, ElementElectro, ElementAnemo, ElementGeo, ElementDendro},
	GameHSR:     {ElementPhysical, ElementWind, ElementFire, ElementIce, ElementLightning, ElementImaginary, ElementQuantum},
	GameZZZ:     {ElementElectric, ElementEther, ElementFire, ElementIce, ElementPhysical},
}

// DamageTypeFor returns the damage type dealt by cards of element e.
//
// Postcondition: ok is false iff e is not a known element.
func DamageTypeFor(e Element) (DamageType, bool) {
	dt, ok := elementDamage[e]
	return dt, ok
}

// Valid reports whether g is a known franchise.
func (g Game) Valid() bool {
	_, ok := gameElements[g]
	return ok
}

// Allows reports whether franchise g prints element e.
func (g Game) Allows(e Element) bool {
	for _, el := range gameElements[g] {
		if el == e {
			return true
		}
	}
	return false
}
