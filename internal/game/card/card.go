package card

import "fmt"

// Damage tiers shared by every card.
const (
	BasicDamage    = 1
	SkillDamage    = 3
	UltimateDamage = 4
)

// Archetype is the closed set of ability behaviours. New behaviours are added as
// new archetypes; abilities never carry arbitrary code.
type Archetype string

const (
	// ArchetypeAttack hits the enemy's active character.
	ArchetypeAttack Archetype = "attack"
	// ArchetypeBuff targets the acting roster. Its effect is not implemented yet.
	ArchetypeBuff Archetype = "buff"
)

// Valid reports whether a is a known archetype.
func (a Archetype) Valid() bool {
	return a == ArchetypeAttack || a == ArchetypeBuff
}

// Ability is one of a card's three ability templates.
type Ability struct {
	Name        string
	Description string
	Archetype   Archetype
	Damage      int
	DamageType  DamageType
}

// Card is an immutable character template. A single *Card is shared by every
// Character built from it, across all battles; nothing may mutate it after New.
type Card struct {
	name        string
	description string
	game        Game
	element     Element
	basic       Ability
	skill       Ability
	ultimate    Ability
}

// AbilityText overrides the default description and archetype of one ability.
// Zero fields keep the defaults.
type AbilityText struct {
	Description string
	Archetype   Archetype
}

// Spec holds everything needed to build a Card.
type Spec struct {
	Name        string
	Description string
	Game        Game
	Element     Element
	Basic       AbilityText
	Skill       AbilityText
	Ultimate    AbilityText
}

// New validates spec and builds a Card. The damage type of all three abilities
// is derived once from the element.
//
// Postcondition: returns a non-nil Card or an error naming the first violation.
func New(spec Spec) (*Card, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("card: name must not be empty")
	}
	if !spec.Game.Valid() {
		return nil, fmt.Errorf("card %q: unknown game %q", spec.Name, spec.Game)
	}
	dt, ok := DamageTypeFor(spec.Element)
	if !ok {
		return nil, fmt.Errorf("card %q: unknown element %q", spec.Name, spec.Element)
	}
	if !spec.Game.Allows(spec.Element) {
		return nil, fmt.Errorf("card %q: element %q does not exist in %s", spec.Name, spec.Element, spec.Game)
	}

	c := &Card{
		name:        spec.Name,
		description: spec.Description,
		game:        spec.Game,
		element:     spec.Element,
	}
	var err error
	if c.basic, err = buildAbility(spec.Name, "Basic", fmt.Sprintf("%s strikes an enemy.", spec.Name), BasicDamage, dt, spec.Basic); err != nil {
		return nil, err
	}
	// Automated players fall back to the basic ability, so it must always land.
	if c.basic.Archetype != ArchetypeAttack {
		return nil, fmt.Errorf("card %q: Basic ability must be an %s, got %q", spec.Name, ArchetypeAttack, c.basic.Archetype)
	}
	if c.skill, err = buildAbility(spec.Name, "Skill", fmt.Sprintf("%s uses their unique ability.", spec.Name), SkillDamage, dt, spec.Skill); err != nil {
		return nil, err
	}
	if c.ultimate, err = buildAbility(spec.Name, "Ultimate", fmt.Sprintf("%s unleashes a devastating ultimate attack.", spec.Name), UltimateDamage, dt, spec.Ultimate); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNew is New that panics on error. Intended for tests and static tables.
func MustNew(spec Spec) *Card {
	c, err := New(spec)
	if err != nil {
		panic(err)
	}
	return c
}

func buildAbility(cardName, label, defaultDesc string, damage int, dt DamageType, text AbilityText) (Ability, error) {
	a := Ability{
		Name:        cardName + " " + label,
		Description: defaultDesc,
		Archetype:   ArchetypeAttack,
		Damage:      damage,
		DamageType:  dt,
	}
	if text.Description != "" {
		a.Description = text.Description
	}
	if text.Archetype != "" {
		if !text.Archetype.Valid() {
			return Ability{}, fmt.Errorf("card %q: %s ability has unknown archetype %q", cardName, label, text.Archetype)
		}
		a.Archetype = text.Archetype
	}
	return a, nil
}

func (c *Card) Name() string        { return c.name }
func (c *Card) Description() string { return c.description }
func (c *Card) Game() Game          { return c.game }
func (c *Card) Element() Element    { return c.element }

// DamageType returns the damage type all of this card's abilities deal.
func (c *Card) DamageType() DamageType { return c.basic.DamageType }

// Basic, Skill and Ultimate return copies of the ability templates.
func (c *Card) Basic() Ability    { return c.basic }
func (c *Card) Skill() Ability    { return c.skill }
func (c *Card) Ultimate() Ability { return c.ultimate }

// String renders the card the way the album lists it.
func (c *Card) String() string {
	return fmt.Sprintf("%s (%s, %s): %s", c.name, c.game, c.element, c.description)
}
