package battle

import (
	"fmt"

	"github.com/cory-johannsen/cardbattle/internal/game/card"
)

// CardLookup resolves card names. *card.Catalog satisfies it.
type CardLookup interface {
	Get(name string) (*card.Card, bool)
}

// MaterializeRoster builds fresh characters for names, in order, each with hp.
//
// Postcondition: returns ErrEmptyRoster for no names and ErrUnknownCard for the
// first name lookup cannot resolve.
func MaterializeRoster(lookup CardLookup, names []string, hp int) ([]*Character, error) {
	if len(names) == 0 {
		return nil, ErrEmptyRoster
	}
	roster := make([]*Character, 0, len(names))
	for _, name := range names {
		c, ok := lookup.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCard, name)
		}
		roster = append(roster, NewCharacter(c, WithHP(hp)))
	}
	return roster, nil
}
