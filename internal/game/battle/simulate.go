package battle

import (
	"fmt"
)

// Simulate plays b to completion with both sides using kind every turn and
// returns the final log. It gives up after maxTurns turns.
func Simulate(b *Battle, kind AbilityKind, maxTurns int) ([]string, error) {
	for i := 0; i < maxTurns && !b.State().Terminal(); i++ {
		if err := b.Apply(b.Turn(), AbilityAction(kind)); err != nil {
			return b.Log(), fmt.Errorf("simulating turn %d: %w", b.TurnNumber(), err)
		}
	}
	if !b.State().Terminal() {
		return b.Log(), fmt.Errorf("simulation did not finish within %d turns", maxTurns)
	}
	return b.Log(), nil
}
