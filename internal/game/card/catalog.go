package card

import (
	"fmt"
	"sort"
)

// Catalog is the read-only name → Card registry built once at startup.
//
// Invariant: card names are unique. A Catalog is never mutated after NewCatalog
// returns, so it is safe for concurrent use by any number of battles.
type Catalog struct {
	cards map[string]*Card
}

// NewCatalog indexes cards by name.
//
// Precondition: every card must be non-nil.
// Postcondition: returns an error on the first duplicate name.
func NewCatalog(cards ...*Card) (*Catalog, error) {
	c := &Catalog{cards: make(map[string]*Card, len(cards))}
	for _, cd := range cards {
		if _, exists := c.cards[cd.Name()]; exists {
			return nil, fmt.Errorf("card catalog: duplicate card %q", cd.Name())
		}
		c.cards[cd.Name()] = cd
	}
	return c, nil
}

// Get returns the card called name, or (nil, false).
func (c *Catalog) Get(name string) (*Card, bool) {
	cd, ok := c.cards[name]
	return cd, ok
}

// Len returns the number of cards.
func (c *Catalog) Len() int { return len(c.cards) }

// All returns every card sorted by name.
func (c *Catalog) All() []*Card {
	out := make([]*Card, 0, len(c.cards))
	for _, cd := range c.cards {
		out = append(out, cd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// ByGame groups every card by franchise; each group is sorted by name.
func (c *Catalog) ByGame() map[Game][]*Card {
	out := make(map[Game][]*Card)
	for _, cd := range c.All() {
		out[cd.Game()] = append(out[cd.Game()], cd)
	}
	return out
}
